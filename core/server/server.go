package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/tinyhttp/core/chain"
	"github.com/dmitrymomot/tinyhttp/core/logger"
	"github.com/dmitrymomot/tinyhttp/core/parser"
	"github.com/dmitrymomot/tinyhttp/core/request"
	"github.com/dmitrymomot/tinyhttp/core/response"
	"github.com/dmitrymomot/tinyhttp/core/router"
)

// Server accepts TCP connections, parses requests with a per-connection
// parser.Context and dispatches them through the middleware chain and router.
// Safe for concurrent use.
type Server struct {
	mu             sync.RWMutex
	addr           string
	chain          *chain.Chain
	logger         *slog.Logger
	shutdown       time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
	maxHeaderBytes int
	maxBodyBytes   uint64
	readBufferSize int
	listener       net.Listener
	running        bool

	inShutdown atomic.Bool
	connMu     sync.Mutex
	conns      map[net.Conn]struct{}
	connWG     sync.WaitGroup
}

// New creates a new Server with the given address and options.
// Defaults to 30-second graceful shutdown timeout, an empty chain and a no-op logger.
func New(addr string, opts ...Option) *Server {
	s := &Server{
		addr:           addr,
		chain:          chain.New(),
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		shutdown:       DefaultShutdownTimeout,
		readTimeout:    DefaultReadTimeout,
		writeTimeout:   DefaultWriteTimeout,
		idleTimeout:    DefaultIdleTimeout,
		maxHeaderBytes: DefaultMaxHeaderBytes,
		maxBodyBytes:   DefaultMaxBodyBytes,
		readBufferSize: DefaultReadBufferSize,
		conns:          make(map[net.Conn]struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Addr returns the bound listener address once serving, or the configured address.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Running reports whether the server is accepting connections.
func (s *Server) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Start listens on the configured address and serves until the context is
// canceled or accepting fails. Cancellation shuts the server down gracefully
// and returns context.Err(), or the shutdown error if Stop timed out.
func (s *Server) Start(ctx context.Context, r *router.Router) error {
	if r == nil {
		return ErrMissingRouter
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrListen, err)
	}
	return s.Serve(ctx, ln, r)
}

// Serve accepts connections on ln until ctx is canceled or Stop is called.
// It takes ownership of ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener, r *router.Router) error {
	if r == nil {
		_ = ln.Close()
		return ErrMissingRouter
	}

	if err := ctx.Err(); err != nil {
		_ = ln.Close()
		return err
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		_ = ln.Close()
		return ErrServerAlreadyRunning
	}
	s.running = true
	s.listener = ln
	s.inShutdown.Store(false)
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "starting server", "addr", ln.Addr().String())
		errCh <- s.acceptLoop(ctx, ln, r)
	}()

	select {
	case err := <-errCh:
		s.mu.Lock()
		s.running = false
		s.listener = nil
		s.mu.Unlock()
		return err
	case <-ctx.Done():
		stopErr := s.Stop()
		<-errCh
		if stopErr != nil {
			return stopErr
		}
		return ctx.Err()
	}
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener, r *router.Router) error {
	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.inShutdown.Load() {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				backoff = min(max(2*backoff, 5*time.Millisecond), time.Second)
				s.logger.Warn("accept failed, retrying", logger.Error(err), logger.Duration(backoff))
				time.Sleep(backoff)
				continue
			}
			return fmt.Errorf("%w: %w", ErrAccept, err)
		}
		backoff = 0

		if !s.trackConn(conn, true) {
			_ = conn.Close()
			continue
		}
		go s.serveConn(ctx, conn, r)
	}
}

// trackConn adds or removes conn from the open set. Adding fails once
// shutdown has started.
func (s *Server) trackConn(conn net.Conn, add bool) bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if add {
		if s.inShutdown.Load() {
			return false
		}
		s.conns[conn] = struct{}{}
		s.connWG.Add(1)
		return true
	}
	delete(s.conns, conn)
	s.connWG.Done()
	return true
}

// serveConn runs the read/parse/dispatch loop for one connection.
func (s *Server) serveConn(ctx context.Context, conn net.Conn, r *router.Router) {
	defer s.trackConn(conn, false)
	defer conn.Close()

	s.mu.RLock()
	bufSize, readTimeout, writeTimeout, idleTimeout := s.readBufferSize, s.readTimeout, s.writeTimeout, s.idleTimeout
	pc := parser.NewContext(
		parser.WithLogger(s.logger),
		parser.WithMaxHeaderBytes(s.maxHeaderBytes),
		parser.WithMaxBodyBytes(s.maxBodyBytes),
	)
	s.mu.RUnlock()

	buf := parser.NewBuffer(bufSize)
	remote := conn.RemoteAddr().String()
	log := s.logger.With(logger.ClientIP(remote))

	var eof bool
	for {
		res, err := pc.Parse(buf, time.Now())
		switch res {
		case parser.Complete:
			req := pc.Request()
			pc.Reset()
			req.SetRemoteAddr(remote)
			req.SetContext(ctx)

			resp := s.Dispatch(req, r)
			if s.inShutdown.Load() {
				resp.SetCloseConnection(true)
			}
			if err := s.write(conn, resp, writeTimeout); err != nil {
				log.Debug("write failed", logger.Error(err))
				return
			}
			if resp.CloseConnection() {
				return
			}
			continue

		case parser.Invalid:
			resp := response.New(nil)
			resp.Error(parseErrorResponse(err))
			resp.SetCloseConnection(true)
			if wErr := s.write(conn, resp, writeTimeout); wErr != nil {
				log.Debug("write failed", logger.Error(wErr))
			}
			return
		}

		// need more data
		if eof {
			return
		}
		idle := buf.Len() == 0 && pc.State() == parser.StateRequestLine
		if idle && s.inShutdown.Load() {
			return
		}
		timeout := readTimeout
		if idle {
			timeout = idleTimeout
		}
		if timeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(timeout))
		}
		// Stop may have set its wake-up deadline before ours replaced it
		if idle && s.inShutdown.Load() {
			return
		}

		n, err := buf.ReadOnce(conn)
		if err != nil {
			if n == 0 {
				if !errors.Is(err, io.EOF) && !idle {
					log.Debug("connection read failed", logger.Error(err), logger.State(pc.State().String()))
				}
				return
			}
			eof = true
		}
	}
}

func (s *Server) write(conn net.Conn, resp *response.Response, timeout time.Duration) error {
	if timeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	_, err := resp.WriteTo(conn)
	return err
}

func parseErrorResponse(err error) response.HTTPError {
	if errors.Is(err, parser.ErrHeadersTooLarge) || errors.Is(err, parser.ErrBodyTooLarge) {
		return response.ErrRequestEntityTooLarge
	}
	return response.ErrBadRequest
}

// Dispatch runs one complete request through the chain and router:
// before hooks, routing (skipped when a middleware rejected the request, 404 when
// nothing matched), after hooks. An unset status becomes 200. A panic in any
// stage is recovered and turns the response into a 500.
func (s *Server) Dispatch(req *request.Request, r *router.Router) *response.Response {
	resp := response.New(req)

	s.guard(req, resp, func() {
		s.chain.HandleRequest(req)

		if status, reason, rejected := req.Rejected(); rejected {
			httpErr := response.ErrorForStatus(response.StatusCode(status))
			if reason != "" {
				httpErr = httpErr.WithMessage(reason)
			}
			resp.Error(httpErr)
			return
		}

		if !r.Route(req, resp) {
			resp.Error(response.ErrNotFound)
		}
	})

	if resp.StatusCode() == response.StatusUnknown {
		resp.SetStatusCode(response.StatusOK)
	}

	s.guard(req, resp, func() {
		s.chain.HandleResponse(resp)
	})

	return resp
}

func (s *Server) guard(req *request.Request, resp *response.Response, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.ErrorContext(req.Context(), "panic while dispatching request",
				logger.Method(req.Method().String()),
				logger.Path(req.Path()),
				slog.Any("panic", rec),
			)
			resp.Error(response.ErrInternalServerError)
		}
	}()
	fn()
}

// Stop stops accepting, lets in-flight requests finish and closes idle
// connections, waiting at most the shutdown timeout.
// Returns immediately if the server is not running.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running || s.listener == nil {
		s.mu.Unlock()
		return nil
	}
	s.logger.Info("shutting down server gracefully", "timeout", s.shutdown)

	s.inShutdown.Store(true)
	err := s.listener.Close()
	s.running = false
	s.listener = nil
	timeout := s.shutdown
	s.mu.Unlock()

	if err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Error("listener close error", logger.Error(err))
	}

	// wake connections blocked in Read; busy ones finish their response first
	s.connMu.Lock()
	for conn := range s.conns {
		_ = conn.SetReadDeadline(time.Now())
	}
	s.connMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.connWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("server shutdown complete")
		return nil
	case <-time.After(timeout):
		s.connMu.Lock()
		open := len(s.conns)
		for conn := range s.conns {
			_ = conn.Close()
		}
		s.connMu.Unlock()
		s.logger.Error("server shutdown error", logger.Error(ErrShutdownTimeout), "open_connections", open)
		return fmt.Errorf("%w: %d", ErrShutdownTimeout, open)
	}
}

// Run provides errgroup compatibility for coordinated lifecycle management.
// The returned function serves until ctx is cancelled, then shuts down
// gracefully. Cancellation is not reported as an error.
func (s *Server) Run(ctx context.Context, r *router.Router) func() error {
	return func() error {
		err := s.Start(ctx, r)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	}
}

// Run is a convenience function that creates and runs a server with default settings.
// It returns once the server has shut down after ctx is canceled.
func Run(ctx context.Context, addr string, r *router.Router) error {
	return New(addr).Start(ctx, r)
}
