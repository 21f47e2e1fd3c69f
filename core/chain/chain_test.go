package chain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tinyhttp/core/chain"
	"github.com/dmitrymomot/tinyhttp/core/request"
	"github.com/dmitrymomot/tinyhttp/core/response"
)

type mockMiddleware struct {
	mock.Mock
}

func (m *mockMiddleware) Before(req *request.Request) { m.Called(req) }

func (m *mockMiddleware) After(resp *response.Response) { m.Called(resp) }

type linkedMiddleware struct {
	chain.Link
	chain.Funcs
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var calls []string
	record := func(name string) chain.Middleware {
		return chain.Funcs{
			BeforeFunc: func(*request.Request) { calls = append(calls, "before:"+name) },
			AfterFunc:  func(*response.Response) { calls = append(calls, "after:"+name) },
		}
	}

	c := chain.New(record("1"), record("2"), record("3"))
	req := request.New()
	resp := response.New(req)

	c.HandleRequest(req)
	c.HandleResponse(resp)

	assert.Equal(t, []string{
		"before:1", "before:2", "before:3",
		"after:3", "after:2", "after:1",
	}, calls)
}

func TestChain_MockExpectations(t *testing.T) {
	t.Parallel()

	req := request.New()
	resp := response.New(req)

	first := &mockMiddleware{}
	second := &mockMiddleware{}
	first.On("Before", req).Once()
	second.On("Before", req).Once()
	first.On("After", resp).Once()
	second.On("After", resp).Once()

	c := chain.New()
	c.Register(first)
	c.Register(second)
	require.Equal(t, 2, c.Len())

	c.HandleRequest(req)
	c.HandleResponse(resp)

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestChain_MutationsAreVisibleDownstream(t *testing.T) {
	t.Parallel()

	c := chain.New(
		chain.Funcs{BeforeFunc: func(r *request.Request) { r.SetValue("user", "alice") }},
		chain.Funcs{BeforeFunc: func(r *request.Request) {
			if r.Value("user") == "alice" {
				r.Reject(403, "alice is banned")
			}
		}},
	)

	req := request.New()
	c.HandleRequest(req)

	status, reason, ok := req.Rejected()
	assert.True(t, ok)
	assert.Equal(t, 403, status)
	assert.Equal(t, "alice is banned", reason)
}

func TestChain_RegisterLinksSuccessors(t *testing.T) {
	t.Parallel()

	a := &linkedMiddleware{}
	b := &linkedMiddleware{}
	plain := chain.Funcs{}
	d := &linkedMiddleware{}

	c := chain.New()
	c.Register(a)
	c.Register(nil)
	c.Register(b)
	c.Register(plain)
	c.Register(d)

	assert.Equal(t, 4, c.Len())
	assert.Same(t, a, c.First())
	assert.Same(t, b, a.Next())
	assert.Equal(t, chain.Middleware(plain), b.Next())
	assert.Nil(t, d.Next())
}

func TestChain_Empty(t *testing.T) {
	t.Parallel()

	c := chain.New()
	assert.Nil(t, c.First())
	assert.NotPanics(t, func() {
		c.HandleRequest(request.New())
		c.HandleResponse(response.New(nil))
	})
}
