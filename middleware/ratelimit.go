package middleware

import (
	"io"
	"log/slog"
	"strconv"

	"github.com/dmitrymomot/tinyhttp/core/chain"
	"github.com/dmitrymomot/tinyhttp/core/logger"
	"github.com/dmitrymomot/tinyhttp/core/request"
	"github.com/dmitrymomot/tinyhttp/core/response"
	"github.com/dmitrymomot/tinyhttp/pkg/clientip"
	"github.com/dmitrymomot/tinyhttp/pkg/ratelimiter"
)

type rateLimitResultKey struct{}

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(req *request.Request) bool
	// Limiter is the rate limiting implementation to use
	Limiter ratelimiter.RateLimiter
	// KeyExtractor defines how to extract the rate limiting key from requests (default: client IP)
	KeyExtractor func(req *request.Request) string
	// SetHeaders adds X-RateLimit-* headers to every limited response
	SetHeaders bool
	// Logger receives limiter failures (default: discard)
	Logger *slog.Logger
}

type rateLimit struct {
	cfg RateLimitConfig
}

// RateLimit rejects requests whose key has exhausted its bucket with 429.
// A limiter failure rejects with 500.
// Panics if no limiter is provided.
func RateLimit(cfg RateLimitConfig) chain.Middleware {
	if cfg.Limiter == nil {
		panic("ratelimit middleware: limiter is required")
	}
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = func(req *request.Request) string {
			if ip, ok := GetClientIP(req); ok {
				return ip
			}
			return clientip.GetIP(req)
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &rateLimit{cfg: cfg}
}

func (m *rateLimit) Before(req *request.Request) {
	if m.cfg.Skip != nil && m.cfg.Skip(req) {
		return
	}

	key := m.cfg.KeyExtractor(req)
	result, err := m.cfg.Limiter.Allow(req.Context(), key)
	if err != nil {
		m.cfg.Logger.ErrorContext(req.Context(), "rate limiter failed",
			logger.Component("ratelimit"),
			logger.Error(err),
		)
		req.Reject(response.StatusInternalServerError.Int(), "")
		return
	}

	req.SetValue(rateLimitResultKey{}, result)
	if !result.Allowed() {
		req.Reject(response.StatusTooManyRequests.Int(), ratelimiter.ErrRateLimitExceeded.Error())
	}
}

// After sets:
//   - X-RateLimit-Limit: bucket capacity
//   - X-RateLimit-Remaining: tokens left, clamped to 0
//   - X-RateLimit-Reset: unix time of the next refill
//   - Retry-After: seconds to wait, only when denied
func (m *rateLimit) After(resp *response.Response) {
	if !m.cfg.SetHeaders || resp.Request() == nil {
		return
	}
	result, ok := resp.Request().Value(rateLimitResultKey{}).(*ratelimiter.Result)
	if !ok {
		return
	}

	resp.AddHeader("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	resp.AddHeader("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
	resp.AddHeader("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

	if retry := result.RetryAfter(); !result.Allowed() && retry > 0 {
		resp.AddHeader("Retry-After", strconv.Itoa(max(1, int(retry.Seconds()))))
	}
}
