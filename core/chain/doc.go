// Package chain runs middlewares around request dispatch using the onion model:
// Before hooks run outer to inner in registration order, After hooks run inner
// to outer.
//
//	c := chain.New(
//		middleware.RequestID(),
//		middleware.Logging(log),
//	)
//	c.HandleRequest(req)
//	if _, _, rejected := req.Rejected(); !rejected {
//		routed = r.Route(req, resp)
//	}
//	c.HandleResponse(resp)
//
// Middlewares embedding Link receive a reference to their successor when
// registered.
package chain
