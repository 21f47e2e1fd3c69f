package parser

import "errors"

var (
	// Request line errors
	ErrMalformedRequestLine = errors.New("malformed request line")
	ErrUnknownMethod        = errors.New("unknown request method")
	ErrUnsupportedVersion   = errors.New("unsupported protocol version")

	// Header block errors
	ErrMalformedHeader      = errors.New("malformed header line")
	ErrInvalidContentLength = errors.New("invalid content length")
	ErrHeadersTooLarge      = errors.New("header block too large")

	// Body and validation errors
	ErrBodyTooLarge = errors.New("request body too large")
	ErrSelfCheck    = errors.New("request failed self-check")

	// Cursor errors
	ErrShortBuffer = errors.New("not enough buffered bytes")
)
