package router

import "errors"

// Registration errors. They are raised as panics because they indicate a
// programming mistake in route setup.
var (
	ErrInvalidPattern = errors.New("router: invalid route pattern")
	ErrInvalidMethod  = errors.New("router: invalid route method")
	ErrNilHandler     = errors.New("router: nil handler")
	ErrDuplicateParam = errors.New("router: duplicate path parameter")
)
