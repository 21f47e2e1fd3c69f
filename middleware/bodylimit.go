package middleware

import (
	"fmt"

	"github.com/dmitrymomot/tinyhttp/core/chain"
	"github.com/dmitrymomot/tinyhttp/core/request"
	"github.com/dmitrymomot/tinyhttp/core/response"
)

// BodyLimitConfig configures the body limit middleware.
type BodyLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(req *request.Request) bool
	// MaxSize is the largest accepted body in bytes (default: 4MB)
	MaxSize uint64
	// ContentTypeLimit overrides MaxSize per Content-Type
	ContentTypeLimit map[string]uint64
}

type bodyLimit struct {
	cfg BodyLimitConfig
}

// BodyLimit rejects requests whose body exceeds 4MB with 413.
func BodyLimit() chain.Middleware {
	return BodyLimitWithConfig(BodyLimitConfig{})
}

// BodyLimitWithSize rejects requests whose body exceeds maxSize bytes with 413.
func BodyLimitWithSize(maxSize uint64) chain.Middleware {
	return BodyLimitWithConfig(BodyLimitConfig{MaxSize: maxSize})
}

// BodyLimitWithConfig creates a body limit middleware with custom configuration.
// The server's parser limit still applies first; this one can only be tighter.
func BodyLimitWithConfig(cfg BodyLimitConfig) chain.Middleware {
	if cfg.MaxSize == 0 {
		cfg.MaxSize = 4 << 20
	}
	return &bodyLimit{cfg: cfg}
}

func (m *bodyLimit) Before(req *request.Request) {
	if m.cfg.Skip != nil && m.cfg.Skip(req) {
		return
	}

	limit := m.cfg.MaxSize
	if l, ok := m.cfg.ContentTypeLimit[req.Header(request.HeaderContentType)]; ok {
		limit = l
	}

	size := max(req.ContentLength(), uint64(len(req.Body())))
	if size > limit {
		req.Reject(response.StatusRequestEntityTooLarge.Int(),
			fmt.Sprintf("Request body too large. Size: %s, Maximum allowed: %s", formatBytes(size), formatBytes(limit)))
	}
}

func (m *bodyLimit) After(*response.Response) {}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
