// Package request defines the canonical, mutable representation of one inbound
// HTTP request together with its self-validation rules.
//
// A Request is filled incrementally by the parser package and is handed to
// middleware and handlers only after SelfCheck succeeds:
//
//	req := request.New()
//	if err := req.SetMethod("POST"); err != nil {
//		return err
//	}
//	req.SetPath("/submit")
//	req.SetQueryParameters("debug=1&trace=on")
//	_ = req.AddHeader("Content-Type: application/json")
//	_ = req.AddHeader("Content-Length: 2")
//	req.SetBody([]byte("{}"))
//
//	if err := req.SelfCheck(); err != nil {
//		// not deliverable
//	}
//
// # Self-check rules
//
//   - GET, DELETE: the body must be empty.
//   - POST, PUT: the body must be non-empty, Content-Length must be positive and
//     Content-Type must be application/x-www-form-urlencoded or application/json.
//     A Content-Length that disagrees with the body is corrected, not rejected.
//   - HEAD, OPTIONS, INVALID: always valid.
//
// # Headers and parameters
//
// Header names are case-sensitive and stored as received, one value per name
// with the last write winning. Query parameters are parsed from the raw query
// string without percent-decoding. Path parameters are bound only by pattern
// route matches in the router package.
//
// Accessors such as Header, QueryParameter and PathParameter return "" for
// missing keys; the Lookup variants also report presence.
//
// # Diagnostics
//
// Request implements json.Marshaler for full dumps and slog.LogValuer for
// compact structured logging:
//
//	log.Debug("request parsed", slog.Any("request", req))
package request
