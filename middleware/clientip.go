package middleware

import (
	"github.com/dmitrymomot/tinyhttp/core/chain"
	"github.com/dmitrymomot/tinyhttp/core/request"
	"github.com/dmitrymomot/tinyhttp/core/response"
	"github.com/dmitrymomot/tinyhttp/pkg/clientip"
)

type clientIPContextKey struct{}

// ClientIPConfig configures the client IP middleware.
type ClientIPConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(req *request.Request) bool
	// HeaderName is the response header echoing the IP when StoreInHeader is set
	HeaderName string
	// StoreInHeader adds the resolved IP to the response
	StoreInHeader bool
	// ValidateFunc can refuse a client; a non-nil error rejects the request with 403
	ValidateFunc func(req *request.Request, ip string) error
}

type clientIP struct {
	cfg ClientIPConfig
}

// ClientIP resolves the client address once per request for later middlewares and handlers.
func ClientIP() chain.Middleware {
	return ClientIPWithConfig(ClientIPConfig{})
}

// ClientIPWithConfig creates a client IP middleware with custom configuration.
func ClientIPWithConfig(cfg ClientIPConfig) chain.Middleware {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Client-IP"
	}
	return &clientIP{cfg: cfg}
}

func (m *clientIP) Before(req *request.Request) {
	if m.cfg.Skip != nil && m.cfg.Skip(req) {
		return
	}

	ip := clientip.GetIP(req)
	req.SetValue(clientIPContextKey{}, ip)

	if m.cfg.ValidateFunc != nil {
		if err := m.cfg.ValidateFunc(req, ip); err != nil {
			req.Reject(response.StatusForbidden.Int(), err.Error())
		}
	}
}

func (m *clientIP) After(resp *response.Response) {
	if !m.cfg.StoreInHeader || resp.Request() == nil {
		return
	}
	if ip, ok := GetClientIP(resp.Request()); ok {
		resp.AddHeader(m.cfg.HeaderName, ip)
	}
}

// GetClientIP returns the address resolved by the ClientIP middleware.
func GetClientIP(req *request.Request) (string, bool) {
	ip, ok := req.Value(clientIPContextKey{}).(string)
	return ip, ok
}
