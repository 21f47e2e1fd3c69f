// Package router dispatches complete requests to handlers.
//
// Two kinds of routes exist. Exact routes match a literal (method, path) pair
// through a hash lookup. Pattern routes match the whole path against a compiled
// pattern and bind named segments to request path parameters:
//
//	r := router.New()
//	r.HandleFunc(request.MethodGet, "/health", healthHandler)
//	r.HandlePatternFunc(request.MethodGet, "/user/:id/profile/:section", profileHandler)
//	r.HandlePatternFunc(request.MethodGet, "/files/{name}.{ext:[a-z]+}", fileHandler)
//
// Exact routes always win over pattern routes. Among patterns the earliest
// registration wins, with object handlers (Handle, HandlePattern) tried before
// callbacks (HandleFunc, HandlePatternFunc).
//
// Route returns false when nothing matches; mapping that to 404 is up to the
// caller. Registering a nil handler, an invalid method or a malformed pattern
// panics.
package router
