package chain

import (
	"github.com/dmitrymomot/tinyhttp/core/request"
	"github.com/dmitrymomot/tinyhttp/core/response"
)

// Middleware wraps dispatch. Before runs ahead of routing in registration
// order; After runs on the produced response in reverse order. A middleware
// refuses a request with request.Reject rather than by returning an error.
//
// Middlewares are shared by all connections; any internal state must be
// guarded by the middleware itself.
type Middleware interface {
	Before(req *request.Request)
	After(resp *response.Response)
}

// Linker is implemented by middlewares that want a reference to their successor.
type Linker interface {
	SetNext(next Middleware)
}

// Link can be embedded to satisfy Linker.
type Link struct {
	next Middleware
}

// SetNext records the successor.
func (l *Link) SetNext(next Middleware) { l.next = next }

// Next returns the successor, or nil for the last middleware.
func (l *Link) Next() Middleware { return l.next }

// Funcs adapts a pair of functions to Middleware. Either may be nil.
type Funcs struct {
	BeforeFunc func(req *request.Request)
	AfterFunc  func(resp *response.Response)
}

func (f Funcs) Before(req *request.Request) {
	if f.BeforeFunc != nil {
		f.BeforeFunc(req)
	}
}

func (f Funcs) After(resp *response.Response) {
	if f.AfterFunc != nil {
		f.AfterFunc(resp)
	}
}

// Chain is an ordered list of middlewares. Register everything before the
// chain starts serving; the chain itself does no locking.
type Chain struct {
	items []Middleware
}

// New returns a chain holding mws in order.
func New(mws ...Middleware) *Chain {
	c := &Chain{}
	for _, m := range mws {
		c.Register(m)
	}
	return c
}

// Register appends m and links the previous tail to it. Nil is ignored.
func (c *Chain) Register(m Middleware) {
	if m == nil {
		return
	}
	if n := len(c.items); n > 0 {
		if l, ok := c.items[n-1].(Linker); ok {
			l.SetNext(m)
		}
	}
	c.items = append(c.items, m)
}

// HandleRequest runs Before on every middleware in registration order.
func (c *Chain) HandleRequest(req *request.Request) {
	for _, m := range c.items {
		m.Before(req)
	}
}

// HandleResponse runs After on every middleware in reverse registration order.
func (c *Chain) HandleResponse(resp *response.Response) {
	for i := len(c.items) - 1; i >= 0; i-- {
		c.items[i].After(resp)
	}
}

// Len returns the number of registered middlewares.
func (c *Chain) Len() int { return len(c.items) }

// First returns the head of the chain, or nil when empty.
func (c *Chain) First() Middleware {
	if len(c.items) == 0 {
		return nil
	}
	return c.items[0]
}
