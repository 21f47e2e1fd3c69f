package middleware

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tinyhttp/core/chain"
	"github.com/dmitrymomot/tinyhttp/core/logger"
	"github.com/dmitrymomot/tinyhttp/core/request"
	"github.com/dmitrymomot/tinyhttp/core/response"
)

// requestIDContextKey is used as a key for storing request ID in request values and context.
type requestIDContextKey struct{}

// DefaultRequestIDHeader is the header carrying the request ID.
const DefaultRequestIDHeader = "X-Request-ID"

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(req *request.Request) bool
	// Generator creates new request IDs (default: UUID v4)
	Generator func() string
	// HeaderName specifies the header name for the request ID (default: "X-Request-ID")
	HeaderName string
	// UseExisting reuses an ID the client sent in HeaderName
	UseExisting bool
}

type requestID struct {
	cfg RequestIDConfig
}

// RequestID echoes the client's X-Request-ID or generates a UUID, exposing it
// to handlers, the request context and the response headers.
func RequestID() chain.Middleware {
	return RequestIDWithConfig(RequestIDConfig{UseExisting: true})
}

// RequestIDWithConfig creates a request ID middleware with custom configuration.
func RequestIDWithConfig(cfg RequestIDConfig) chain.Middleware {
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultRequestIDHeader
	}
	if cfg.Generator == nil {
		cfg.Generator = uuid.NewString
	}
	return &requestID{cfg: cfg}
}

func (m *requestID) Before(req *request.Request) {
	if m.cfg.Skip != nil && m.cfg.Skip(req) {
		return
	}

	var id string
	if m.cfg.UseExisting {
		id = req.HeaderFold(m.cfg.HeaderName)
	}
	if id == "" {
		id = m.cfg.Generator()
	}

	req.SetValue(requestIDContextKey{}, id)
	req.SetContext(context.WithValue(req.Context(), requestIDContextKey{}, id))
}

func (m *requestID) After(resp *response.Response) {
	req := resp.Request()
	if req == nil {
		return
	}
	if id, ok := GetRequestID(req); ok {
		resp.AddHeader(m.cfg.HeaderName, id)
	}
}

// GetRequestID retrieves the request ID stored by the middleware.
func GetRequestID(req *request.Request) (string, bool) {
	id, ok := req.Value(requestIDContextKey{}).(string)
	return id, ok
}

// RequestIDFromContext retrieves the request ID from a request context.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey{}).(string)
	return id, ok
}

// RequestIDExtractor adds the request ID to records logged with a request context.
// Pass it to logger.WithContextExtractors.
func RequestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id, ok := RequestIDFromContext(ctx)
	if !ok || id == "" {
		return slog.Attr{}, false
	}
	return logger.RequestID(id), true
}

var _ logger.ContextExtractor = RequestIDExtractor
