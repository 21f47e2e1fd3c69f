package router

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/dmitrymomot/tinyhttp/core/logger"
	"github.com/dmitrymomot/tinyhttp/core/request"
	"github.com/dmitrymomot/tinyhttp/core/response"
)

// Handler is the object form of a route target.
type Handler interface {
	Handle(req *request.Request, resp *response.Response)
}

// HandlerFunc is the callback form of a route target.
type HandlerFunc func(req *request.Request, resp *response.Response)

// Handle calls f(req, resp).
func (f HandlerFunc) Handle(req *request.Request, resp *response.Response) { f(req, resp) }

// RouteKey identifies an exact route.
type RouteKey struct {
	Method request.Method
	Path   string
}

func (k RouteKey) String() string { return k.Method.String() + " " + k.Path }

// Kind tells object handlers and callbacks apart. Within each tier handlers
// are tried before callbacks.
type Kind uint8

const (
	KindHandler Kind = iota
	KindCallback
)

func (k Kind) String() string {
	if k == KindHandler {
		return "handler"
	}
	return "callback"
}

// target is a tagged route target.
type target struct {
	kind    Kind
	handler Handler
}

type patternRoute struct {
	method  request.Method
	pattern *pathPattern
	target  target
}

// routes is an immutable snapshot of the routing tables.
type routes struct {
	exact    map[RouteKey][2]*target
	patterns []patternRoute
}

func (t *routes) clone() *routes {
	return &routes{
		exact:    maps.Clone(t.exact),
		patterns: slices.Clone(t.patterns),
	}
}

// Route describes one registration, as listed by Routes.
type Route struct {
	Method  string
	Path    string
	Kind    Kind
	Pattern bool
}

// Router resolves requests to handlers through an exact table and an ordered
// pattern list. Lookups read an immutable snapshot and never lock; registration
// copies the snapshot under a mutex, so routes may be added at any time.
type Router struct {
	mu     sync.Mutex
	tables atomic.Pointer[routes]
	logger *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger used for registration diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns an empty router.
func New(opts ...Option) *Router {
	r := &Router{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	r.tables.Store(&routes{exact: make(map[RouteKey][2]*target)})
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle registers an object handler for an exact (method, path) pair,
// replacing any handler previously registered for the same key.
func (r *Router) Handle(method request.Method, path string, h Handler) {
	r.addExact(method, path, target{kind: KindHandler, handler: h})
}

// HandleFunc registers a callback for an exact (method, path) pair.
func (r *Router) HandleFunc(method request.Method, path string, fn HandlerFunc) {
	var h Handler
	if fn != nil {
		h = fn
	}
	r.addExact(method, path, target{kind: KindCallback, handler: h})
}

// HandlePattern appends an object handler for a path pattern.
// Earlier registrations win when several patterns match.
func (r *Router) HandlePattern(method request.Method, pattern string, h Handler) {
	r.addPattern(method, pattern, target{kind: KindHandler, handler: h})
}

// HandlePatternFunc appends a callback for a path pattern.
func (r *Router) HandlePatternFunc(method request.Method, pattern string, fn HandlerFunc) {
	var h Handler
	if fn != nil {
		h = fn
	}
	r.addPattern(method, pattern, target{kind: KindCallback, handler: h})
}

// Get, Post, Put, Delete, Head and Options register a callback, choosing an
// exact or pattern route from the path syntax.
func (r *Router) Get(path string, fn HandlerFunc)     { r.auto(request.MethodGet, path, fn) }
func (r *Router) Post(path string, fn HandlerFunc)    { r.auto(request.MethodPost, path, fn) }
func (r *Router) Put(path string, fn HandlerFunc)     { r.auto(request.MethodPut, path, fn) }
func (r *Router) Delete(path string, fn HandlerFunc)  { r.auto(request.MethodDelete, path, fn) }
func (r *Router) Head(path string, fn HandlerFunc)    { r.auto(request.MethodHead, path, fn) }
func (r *Router) Options(path string, fn HandlerFunc) { r.auto(request.MethodOptions, path, fn) }

func (r *Router) auto(method request.Method, path string, fn HandlerFunc) {
	if isPattern(path) {
		r.HandlePatternFunc(method, path, fn)
		return
	}
	r.HandleFunc(method, path, fn)
}

func isPattern(path string) bool {
	return strings.Contains(path, "/:") || strings.ContainsAny(path, "{}")
}

func (r *Router) addExact(method request.Method, path string, t target) {
	mustValid(method, t)

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.tables.Load().clone()
	key := RouteKey{Method: method, Path: path}
	slots := next.exact[key]
	slots[t.kind] = &t
	next.exact[key] = slots
	r.tables.Store(next)

	r.logger.Debug("route registered",
		logger.Method(method.String()),
		logger.Path(path),
		slog.String("kind", t.kind.String()),
	)
}

func (r *Router) addPattern(method request.Method, pattern string, t target) {
	mustValid(method, t)

	compiled, err := compilePattern(pattern)
	if err != nil {
		panic(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.tables.Load().clone()
	entry := patternRoute{method: method, pattern: compiled, target: t}

	// handlers stay ahead of every callback; order within a kind is registration order
	at := len(next.patterns)
	if t.kind == KindHandler {
		if i := slices.IndexFunc(next.patterns, func(p patternRoute) bool {
			return p.target.kind == KindCallback
		}); i >= 0 {
			at = i
		}
	}
	next.patterns = slices.Insert(next.patterns, at, entry)
	r.tables.Store(next)

	r.logger.Debug("pattern route registered",
		logger.Method(method.String()),
		logger.Path(pattern),
		slog.String("kind", t.kind.String()),
	)
}

func mustValid(method request.Method, t target) {
	if !method.Valid() {
		panic(fmt.Errorf("%w: %s", ErrInvalidMethod, method))
	}
	if t.handler == nil {
		panic(ErrNilHandler)
	}
}

// Route resolves req and invokes the matching target. Resolution order is the
// exact table (handler, then callback), then pattern handlers, then pattern
// callbacks, each in registration order. On a pattern match the target receives
// a copy of req with path parameters bound and the body shared; req itself is
// not modified.
// Route reports false when nothing matched.
func (r *Router) Route(req *request.Request, resp *response.Response) bool {
	t := r.tables.Load()

	if slots, ok := t.exact[RouteKey{Method: req.Method(), Path: req.Path()}]; ok {
		for _, s := range slots {
			if s != nil {
				s.handler.Handle(req, resp)
				return true
			}
		}
	}

	for _, p := range t.patterns {
		if p.method != req.Method() {
			continue
		}
		values, ok := p.pattern.match(req.Path())
		if !ok {
			continue
		}
		params := make(map[string]string, len(p.pattern.names))
		for i, name := range p.pattern.names {
			params[name] = values[i]
		}
		p.target.handler.Handle(req.WithPathParameters(params), resp)
		return true
	}

	return false
}

// Routes lists registrations in resolution order: exact routes sorted by
// path then method, followed by pattern routes.
func (r *Router) Routes() []Route {
	t := r.tables.Load()

	exact := lo.Flatten(lo.MapToSlice(t.exact, func(k RouteKey, slots [2]*target) []Route {
		return lo.FilterMap(slots[:], func(s *target, _ int) (Route, bool) {
			if s == nil {
				return Route{}, false
			}
			return Route{Method: k.Method.String(), Path: k.Path, Kind: s.kind}, true
		})
	}))
	slices.SortFunc(exact, func(a, b Route) int {
		return cmp.Or(
			cmp.Compare(a.Path, b.Path),
			cmp.Compare(a.Method, b.Method),
			cmp.Compare(a.Kind, b.Kind),
		)
	})

	patterns := lo.Map(t.patterns, func(p patternRoute, _ int) Route {
		return Route{Method: p.method.String(), Path: p.pattern.raw, Kind: p.target.kind, Pattern: true}
	})

	return append(exact, patterns...)
}
