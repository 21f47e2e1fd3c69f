package main

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/dmitrymomot/tinyhttp/core/health"
	"github.com/dmitrymomot/tinyhttp/core/request"
	"github.com/dmitrymomot/tinyhttp/core/response"
	"github.com/dmitrymomot/tinyhttp/core/router"
	"github.com/dmitrymomot/tinyhttp/middleware"
)

func newRouter(log *slog.Logger, checks ...func(context.Context) error) *router.Router {
	r := router.New(router.WithLogger(log))

	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness(log, checks...))

	r.Get("/hello", hello)
	r.Get("/users/:id", getUser)
	r.Post("/echo", echo)
	r.Handle(request.MethodGet, "/whoami", whoami{})

	return r
}

func hello(_ *request.Request, resp *response.Response) {
	resp.String(response.StatusOK, "Hello, World!")
}

func getUser(req *request.Request, resp *response.Response) {
	_ = resp.JSON(response.StatusOK, map[string]string{
		"id": req.PathParameter("id"),
	})
}

// echo answers with the JSON body it received.
func echo(req *request.Request, resp *response.Response) {
	var payload any
	if err := json.Unmarshal(req.Body(), &payload); err != nil {
		resp.Error(response.ErrBadRequest.WithMessage("body must be valid JSON"))
		return
	}
	_ = resp.JSON(response.StatusOK, payload)
}

type whoami struct{}

func (whoami) Handle(req *request.Request, resp *response.Response) {
	id, _ := middleware.GetRequestID(req)
	ip, _ := middleware.GetClientIP(req)
	_ = resp.JSON(response.StatusOK, map[string]string{
		"request_id": id,
		"client_ip":  ip,
	})
}
