// Package middleware provides chain.Middleware implementations for common
// cross-cutting concerns: request IDs, client IP resolution, request logging,
// rate limiting, security headers and body size limits.
//
// # Architecture
//
// Every middleware follows the same pattern:
//   - A default constructor for the common case
//   - A WithConfig constructor taking a configuration struct
//   - A Skip function in the config to bypass specific requests
//   - Getter helpers for values stored on the request
//
// Before hooks run in registration order ahead of routing; After hooks run in
// reverse order on the produced response. A middleware refuses a request by
// calling req.Reject with a status and a message. The server then skips the
// router and renders the rejection as a JSON error, and every After hook still
// sees that response.
//
// Values are passed between middlewares and handlers through request values:
//
//	id, ok := middleware.GetRequestID(req)
//	ip, ok := middleware.GetClientIP(req)
//
// # Recommended Order
//
//	srv := server.New(":8080", server.WithMiddleware(
//		middleware.RequestID(),
//		middleware.ClientIP(),
//		middleware.Logging(),
//		middleware.RateLimit(middleware.RateLimitConfig{Limiter: limiter, SetHeaders: true}),
//		middleware.SecurityHeaders(),
//		middleware.BodyLimit(),
//	))
//
// RequestID and ClientIP go first so the logging and rate limiting middlewares
// can use what they resolved.
//
// # Request ID
//
// RequestID reuses an incoming X-Request-ID or generates a UUID, stores it on
// the request and its context, and echoes it in the response. Register
// RequestIDExtractor with the logger so every log record carries it:
//
//	log := logger.New(logger.WithContextExtractors(middleware.RequestIDExtractor))
//
// # Client IP
//
// ClientIP resolves the client address with pkg/clientip. ValidateFunc can
// refuse clients (403):
//
//	middleware.ClientIPWithConfig(middleware.ClientIPConfig{
//		ValidateFunc: func(req *request.Request, ip string) error {
//			if blocked(ip) {
//				return errors.New("access denied")
//			}
//			return nil
//		},
//	})
//
// # Logging
//
// Logging records one "HTTP request completed" entry per request with method,
// path, status, sizes, latency and the request ID and client IP when known.
// 5xx responses log at error level; 4xx and slow requests at warn. With
// LogHeaders set, sensitive headers are redacted.
//
// # Rate Limiting
//
// RateLimit consumes one token per request from a ratelimiter.RateLimiter keyed
// by client IP. Exhausted keys get 429; a limiter failure gets 500. With
// SetHeaders the response carries X-RateLimit-Limit, X-RateLimit-Remaining,
// X-RateLimit-Reset and, when denied, Retry-After.
//
// # Security Headers
//
// SecurityHeaders adds the BalancedSecurity preset; StrictSecurity and
// DevelopmentSecurity are also provided. Headers are set on every response,
// rejected ones included.
//
// # Body Limit
//
// BodyLimit rejects requests whose declared or received body exceeds the
// configured size with 413. Limits can differ per Content-Type.
package middleware
