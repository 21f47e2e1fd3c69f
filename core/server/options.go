package server

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/tinyhttp/core/chain"
)

// Option configures server behavior.
type Option func(*Server)

// WithLogger sets a custom logger for server operations.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithShutdownTimeout sets the maximum time to wait for open connections on Stop.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.shutdown = timeout
	}
}

// WithReadTimeout bounds the wait for the rest of a partially received request.
func WithReadTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.readTimeout = timeout
	}
}

// WithWriteTimeout bounds writing one response.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.writeTimeout = timeout
	}
}

// WithIdleTimeout bounds the wait for the next request on a kept-alive connection.
func WithIdleTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.idleTimeout = timeout
	}
}

// WithMaxHeaderBytes limits the request line plus header block.
func WithMaxHeaderBytes(n int) Option {
	return func(s *Server) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.maxHeaderBytes = n
	}
}

// WithMaxBodyBytes limits the accepted Content-Length.
func WithMaxBodyBytes(n uint64) Option {
	return func(s *Server) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.maxBodyBytes = n
	}
}

// WithReadBufferSize sets the initial per-connection buffer size.
func WithReadBufferSize(n int) Option {
	return func(s *Server) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.readBufferSize = n
	}
}

// WithChain replaces the middleware chain.
func WithChain(c *chain.Chain) Option {
	return func(s *Server) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c != nil {
			s.chain = c
		}
	}
}

// WithMiddleware appends middlewares to the server's chain.
func WithMiddleware(mws ...chain.Middleware) Option {
	return func(s *Server) {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, m := range mws {
			s.chain.Register(m)
		}
	}
}
