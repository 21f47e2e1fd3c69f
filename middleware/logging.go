package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/dmitrymomot/tinyhttp/core/chain"
	"github.com/dmitrymomot/tinyhttp/core/logger"
	"github.com/dmitrymomot/tinyhttp/core/request"
	"github.com/dmitrymomot/tinyhttp/core/response"
)

type loggingStartKey struct{}

// LoggingConfig configures the request/response logging middleware.
type LoggingConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(req *request.Request) bool

	// Logger is the slog logger to use (default: slog.Default())
	Logger *slog.Logger

	// LogLevel for successful requests (default: slog.LevelInfo)
	LogLevel slog.Level

	// LogRequest also logs when a request starts, at debug level
	LogRequest bool

	// LogHeaders adds request headers to the completion record
	LogHeaders bool

	// SensitiveHeaders are redacted when LogHeaders is set (matched case-insensitively)
	SensitiveHeaders []string

	// SlowRequestThreshold logs slow requests at warning level (default: 5s)
	SlowRequestThreshold time.Duration

	// Component name for structured logging
	Component string
}

type logging struct {
	cfg LoggingConfig
	now func() time.Time
}

// Logging logs every completed request with default configuration.
func Logging() chain.Middleware {
	return LoggingWithConfig(LoggingConfig{})
}

// LoggingWithLogger creates a logging middleware with a custom logger.
func LoggingWithLogger(log *slog.Logger) chain.Middleware {
	return LoggingWithConfig(LoggingConfig{Logger: log})
}

// LoggingWithConfig creates a logging middleware with custom configuration.
// Server errors are logged at error level, client errors and slow requests at warn.
func LoggingWithConfig(cfg LoggingConfig) chain.Middleware {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.LogLevel == 0 {
		cfg.LogLevel = slog.LevelInfo
	}
	if cfg.SensitiveHeaders == nil {
		cfg.SensitiveHeaders = []string{
			"Authorization",
			"Cookie",
			"X-Api-Key",
			"X-Auth-Token",
			"X-Csrf-Token",
		}
	}
	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}
	if cfg.Component == "" {
		cfg.Component = "http"
	}
	return &logging{cfg: cfg, now: time.Now}
}

func (m *logging) Before(req *request.Request) {
	if m.cfg.Skip != nil && m.cfg.Skip(req) {
		return
	}

	req.SetValue(loggingStartKey{}, m.now())

	if m.cfg.LogRequest {
		m.cfg.Logger.LogAttrs(req.Context(), slog.LevelDebug, "HTTP request started",
			logger.Component(m.cfg.Component),
			logger.Event("request"),
			logger.Method(req.Method().String()),
			logger.Path(req.Path()),
			logger.ClientIP(req.RemoteAddr()),
		)
	}
}

func (m *logging) After(resp *response.Response) {
	req := resp.Request()
	if req == nil {
		return
	}
	start, ok := req.Value(loggingStartKey{}).(time.Time)
	if !ok {
		return
	}

	latency := m.now().Sub(start)
	status := resp.StatusCode().Int()

	attrs := []slog.Attr{
		logger.Component(m.cfg.Component),
		logger.Event("response"),
		logger.Method(req.Method().String()),
		logger.Path(req.Path()),
		logger.StatusCode(status),
		logger.BytesIn(int64(len(req.Body()))),
		logger.BytesOut(int64(len(resp.Body()))),
		logger.Latency(latency),
	}
	if id, ok := GetRequestID(req); ok {
		attrs = append(attrs, logger.RequestID(id))
	}
	if ip, ok := GetClientIP(req); ok {
		attrs = append(attrs, logger.ClientIP(ip))
	} else {
		attrs = append(attrs, logger.ClientIP(req.RemoteAddr()))
	}
	if _, reason, rejected := req.Rejected(); rejected {
		attrs = append(attrs, logger.Reason(reason))
	}
	if m.cfg.LogHeaders {
		attrs = append(attrs, slog.Any("request_headers", m.redact(req.Headers())))
	}

	level := m.cfg.LogLevel
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	case latency > m.cfg.SlowRequestThreshold:
		level = slog.LevelWarn
		attrs = append(attrs, slog.Bool("slow_request", true))
	}

	m.cfg.Logger.LogAttrs(req.Context(), level, "HTTP request completed", attrs...)
}

func (m *logging) redact(headers map[string]string) map[string]string {
	return lo.MapValues(headers, func(v, k string) string {
		if lo.ContainsBy(m.cfg.SensitiveHeaders, func(s string) bool { return strings.EqualFold(s, k) }) {
			return "[REDACTED]"
		}
		return v
	})
}
