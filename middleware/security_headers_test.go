package middleware_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/tinyhttp/core/request"
	"github.com/dmitrymomot/tinyhttp/core/response"
	"github.com/dmitrymomot/tinyhttp/middleware"
)

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	t.Run("balanced defaults", func(t *testing.T) {
		t.Parallel()

		resp := roundTrip(newRequest(t, "GET", "/"), response.StatusOK, middleware.SecurityHeaders())
		assert.Equal(t, "nosniff", resp.Header("X-Content-Type-Options"))
		assert.Equal(t, "SAMEORIGIN", resp.Header("X-Frame-Options"))
		assert.Equal(t, "max-age=31536000; includeSubDomains", resp.Header("Strict-Transport-Security"))
		_, ok := resp.Headers()["Content-Security-Policy"]
		assert.False(t, ok)
	})

	t.Run("strict", func(t *testing.T) {
		t.Parallel()

		resp := roundTrip(newRequest(t, "GET", "/"), response.StatusOK, middleware.SecurityHeadersStrict())
		assert.Equal(t, "DENY", resp.Header("X-Frame-Options"))
		assert.Equal(t, "no-referrer", resp.Header("Referrer-Policy"))
	})

	t.Run("development drops hsts and custom headers override", func(t *testing.T) {
		t.Parallel()

		cfg := middleware.BalancedSecurity
		cfg.IsDevelopment = true
		cfg.CustomHeaders = map[string]string{"X-Frame-Options": "DENY", "X-Powered-By": "tinyhttp"}

		resp := roundTrip(newRequest(t, "GET", "/"), response.StatusOK, middleware.SecurityHeadersWithConfig(cfg))
		_, ok := resp.Headers()["Strict-Transport-Security"]
		assert.False(t, ok)
		assert.Equal(t, "DENY", resp.Header("X-Frame-Options"))
		assert.Equal(t, "tinyhttp", resp.Header("X-Powered-By"))
	})

	t.Run("applied to rejected requests", func(t *testing.T) {
		t.Parallel()

		req := newRequest(t, "POST", "/", "Content-Type: application/json", "Content-Length: 100")
		resp := roundTrip(req, response.StatusOK, middleware.SecurityHeaders(), middleware.BodyLimitWithSize(10))
		assert.Equal(t, response.StatusRequestEntityTooLarge, resp.StatusCode())
		assert.Equal(t, "nosniff", resp.Header("X-Content-Type-Options"))
	})

	t.Run("skip", func(t *testing.T) {
		t.Parallel()

		cfg := middleware.StrictSecurity
		cfg.Skip = func(req *request.Request) bool { return req.Path() == "/raw" }

		resp := roundTrip(newRequest(t, "GET", "/raw"), response.StatusOK, middleware.SecurityHeadersWithConfig(cfg))
		assert.Empty(t, resp.Header("X-Frame-Options"))
	})
}
