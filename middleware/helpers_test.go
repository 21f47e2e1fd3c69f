package middleware_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tinyhttp/core/chain"
	"github.com/dmitrymomot/tinyhttp/core/request"
	"github.com/dmitrymomot/tinyhttp/core/response"
)

func newRequest(t *testing.T, method, path string, headers ...string) *request.Request {
	t.Helper()
	req := request.New()
	require.NoError(t, req.SetMethod(method))
	require.NoError(t, req.SetVersion(request.Version11))
	req.SetPath(path)
	req.SetRemoteAddr("192.0.2.1:40000")
	for _, h := range headers {
		require.NoError(t, req.AddHeader(h))
	}
	return req
}

// roundTrip runs req through mw with a handler answering status, mirroring
// how the server skips the handler for rejected requests.
func roundTrip(req *request.Request, status response.StatusCode, mws ...chain.Middleware) *response.Response {
	c := chain.New(mws...)
	c.HandleRequest(req)

	resp := response.New(req)
	if code, reason, rejected := req.Rejected(); rejected {
		httpErr := response.ErrorForStatus(response.StatusCode(code))
		if reason != "" {
			httpErr = httpErr.WithMessage(reason)
		}
		resp.Error(httpErr)
	} else {
		resp.String(status, "ok")
	}

	c.HandleResponse(resp)
	return resp
}
