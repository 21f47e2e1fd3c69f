package health

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/tinyhttp/core/logger"
	"github.com/dmitrymomot/tinyhttp/core/request"
	"github.com/dmitrymomot/tinyhttp/core/response"
	"github.com/dmitrymomot/tinyhttp/core/router"
)

// Readiness verifies all service dependencies are functioning.
// Returns "READY" if all checks pass, 503 Service Unavailable if any fail.
//
// Example:
//
//	r.Get("/health/ready", health.Readiness(
//		log,
//		pg.Healthcheck(pool),
//		redis.Healthcheck(client),
//	))
func Readiness(log *slog.Logger, fn ...func(context.Context) error) router.HandlerFunc {
	return func(req *request.Request, resp *response.Response) {
		ctx := req.Context()
		for _, f := range fn {
			if err := f(ctx); err != nil {
				log.ErrorContext(ctx, "Readiness check failed", logger.Error(err))
				resp.Error(response.ErrServiceUnavailable)
				return
			}
		}

		resp.String(response.StatusOK, "READY")
	}
}
