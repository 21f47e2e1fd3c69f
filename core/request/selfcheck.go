package request

import "fmt"

// SelfCheck runs the structural validation for the request method.
// GET and DELETE must not carry a body. POST and PUT must carry a body with a
// positive Content-Length and a form or JSON Content-Type; a Content-Length that
// disagrees with the body is corrected to the body size. Other methods always pass.
func (r *Request) SelfCheck() error {
	switch r.method {
	case MethodGet, MethodDelete:
		return checkBodyless(r)
	case MethodPost, MethodPut:
		return checkWithBody(r)
	default:
		return nil
	}
}

func checkBodyless(r *Request) error {
	if len(r.body) > 0 {
		return fmt.Errorf("%w: %s carries %d bytes", ErrBodyNotAllowed, r.method, len(r.body))
	}
	return nil
}

func checkWithBody(r *Request) error {
	if len(r.body) == 0 || r.contentLength == 0 {
		return fmt.Errorf("%w: %s", ErrBodyRequired, r.method)
	}

	ct := r.headers[HeaderContentType]
	if ct != ContentTypeForm && ct != ContentTypeJSON {
		return fmt.Errorf("%w: %q", ErrUnsupportedContentType, ct)
	}

	if r.contentLength != uint64(len(r.body)) {
		r.contentLength = uint64(len(r.body))
	}
	return nil
}
