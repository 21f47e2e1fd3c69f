package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tinyhttp/core/request"
	"github.com/dmitrymomot/tinyhttp/core/response"
	"github.com/dmitrymomot/tinyhttp/middleware"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestLogging(t *testing.T) {
	t.Parallel()

	newLogger := func() (*slog.Logger, *bytes.Buffer) {
		var buf bytes.Buffer
		return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
	}

	t.Run("logs completed request", func(t *testing.T) {
		t.Parallel()

		log, buf := newLogger()
		req := newRequest(t, "GET", "/users")
		roundTrip(req, response.StatusOK,
			middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: func() string { return "rid" }}),
			middleware.LoggingWithLogger(log),
		)

		recs := decodeLines(t, buf)
		require.Len(t, recs, 1)
		rec := recs[0]
		assert.Equal(t, "HTTP request completed", rec["msg"])
		assert.Equal(t, "INFO", rec["level"])
		assert.Equal(t, "GET", rec["method"])
		assert.Equal(t, "/users", rec["path"])
		assert.EqualValues(t, 200, rec["status_code"])
		assert.Equal(t, "rid", rec["request_id"])
		assert.Equal(t, "http", rec["component"])
		assert.Contains(t, rec, "latency")
	})

	t.Run("level follows status", func(t *testing.T) {
		t.Parallel()

		for status, level := range map[response.StatusCode]string{
			response.StatusNotFound:            "WARN",
			response.StatusInternalServerError: "ERROR",
		} {
			log, buf := newLogger()
			roundTrip(newRequest(t, "GET", "/"), status, middleware.LoggingWithLogger(log))

			recs := decodeLines(t, buf)
			require.Len(t, recs, 1)
			assert.Equal(t, level, recs[0]["level"])
		}
	})

	t.Run("rejection reason logged", func(t *testing.T) {
		t.Parallel()

		log, buf := newLogger()
		reject := middleware.BodyLimitWithSize(1)
		req := newRequest(t, "POST", "/", "Content-Type: application/json", "Content-Length: 10")
		roundTrip(req, response.StatusOK, middleware.LoggingWithLogger(log), reject)

		recs := decodeLines(t, buf)
		require.Len(t, recs, 1)
		assert.EqualValues(t, 413, recs[0]["status_code"])
		assert.Contains(t, recs[0]["reason"], "too large")
	})

	t.Run("request start and redacted headers", func(t *testing.T) {
		t.Parallel()

		log, buf := newLogger()
		req := newRequest(t, "GET", "/", "authorization: Bearer secret", "Accept: */*")
		roundTrip(req, response.StatusOK, middleware.LoggingWithConfig(middleware.LoggingConfig{
			Logger:     log,
			LogRequest: true,
			LogHeaders: true,
		}))

		recs := decodeLines(t, buf)
		require.Len(t, recs, 2)
		assert.Equal(t, "HTTP request started", recs[0]["msg"])

		headers, ok := recs[1]["request_headers"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "[REDACTED]", headers["authorization"])
		assert.Equal(t, "*/*", headers["Accept"])
		assert.NotContains(t, buf.String(), "secret")
	})

	t.Run("skip", func(t *testing.T) {
		t.Parallel()

		log, buf := newLogger()
		roundTrip(newRequest(t, "GET", "/health"), response.StatusOK, middleware.LoggingWithConfig(middleware.LoggingConfig{
			Logger: log,
			Skip:   func(req *request.Request) bool { return req.Path() == "/health" },
		}))

		assert.Empty(t, buf.String())
	})
}
