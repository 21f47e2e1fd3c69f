package health

import (
	"github.com/dmitrymomot/tinyhttp/core/request"
	"github.com/dmitrymomot/tinyhttp/core/response"
)

// Liveness indicates if the service process is running.
// Always returns "ALIVE" with 200 OK. No dependency checks.
//
// Example:
//
//	r.Get("/health/live", health.Liveness)
func Liveness(_ *request.Request, resp *response.Response) {
	resp.String(response.StatusOK, "ALIVE")
}

// NoContent returns HTTP 204 without body. Ideal for high-frequency checks.
//
// Example:
//
//	r.Get("/ping", health.NoContent)
func NoContent(_ *request.Request, resp *response.Response) {
	resp.NoContent()
}
