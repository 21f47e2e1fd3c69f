package request

import "errors"

var (
	ErrInvalidMethod        = errors.New("unrecognized request method")
	ErrUnsupportedVersion   = errors.New("unsupported HTTP version")
	ErrMalformedHeader      = errors.New("malformed header line")
	ErrInvalidContentLength = errors.New("invalid Content-Length value")

	// Self-check failures
	ErrBodyNotAllowed         = errors.New("request body not allowed for method")
	ErrBodyRequired           = errors.New("request body and positive Content-Length required for method")
	ErrUnsupportedContentType = errors.New("unsupported Content-Type")
)
