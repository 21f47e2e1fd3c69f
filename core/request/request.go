package request

import (
	"context"
	"fmt"
	"maps"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	Version11 = "HTTP/1.1"
	Version10 = "HTTP/1.0"

	HeaderContentLength = "Content-Length"
	HeaderContentType   = "Content-Type"
	HeaderConnection    = "Connection"

	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json"
)

var (
	queryPairPattern  = regexp.MustCompile(`([^&=]+)=([^&]*)`)
	headerLinePattern = regexp.MustCompile(`([^&:=]+):\s*([^&]*)`)
)

// Request is the mutable representation of one inbound HTTP request.
// A Request is not safe for concurrent use; it belongs to one connection at a time.
type Request struct {
	method        Method
	version       string
	path          string
	query         map[string]string
	params        map[string]string
	headers       map[string]string
	contentLength uint64
	body          []byte
	receiveTime   time.Time
	remoteAddr    string

	ctx    context.Context
	values map[any]any

	rejectStatus int
	rejectReason string
}

// New returns an empty request with method INVALID.
func New() *Request {
	return &Request{
		query:   make(map[string]string),
		headers: make(map[string]string),
	}
}

// Method returns the request method.
func (r *Request) Method() Method { return r.method }

// SetMethod maps token to a Method. Unknown tokens leave the method INVALID
// and return ErrInvalidMethod.
func (r *Request) SetMethod(token string) error {
	m, ok := ParseMethod(token)
	r.method = m
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidMethod, token)
	}
	return nil
}

// SetMethodValue sets the method directly.
func (r *Request) SetMethodValue(m Method) { r.method = m }

// Version returns the protocol version string.
func (r *Request) Version() string { return r.version }

// SetVersion accepts only HTTP/1.1 and HTTP/1.0.
func (r *Request) SetVersion(v string) error {
	if v != Version11 && v != Version10 {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, v)
	}
	r.version = v
	return nil
}

// Path returns the path component without the query string.
func (r *Request) Path() string { return r.path }

// SetPath sets the path component.
func (r *Request) SetPath(p string) { r.path = p }

// SetQueryParameters parses a raw query string into key/value pairs.
// Pairs without '=' are skipped; repeated keys keep the last value.
func (r *Request) SetQueryParameters(raw string) {
	if r.query == nil {
		r.query = make(map[string]string)
	}
	for _, m := range queryPairPattern.FindAllStringSubmatch(raw, -1) {
		r.query[m[1]] = m[2]
	}
}

// QueryParameter returns the query value for key, or "".
func (r *Request) QueryParameter(key string) string { return r.query[key] }

// LookupQueryParameter returns the query value for key and whether it was present.
func (r *Request) LookupQueryParameter(key string) (string, bool) {
	v, ok := r.query[key]
	return v, ok
}

// QueryParameters returns a copy of all query parameters.
func (r *Request) QueryParameters() map[string]string { return maps.Clone(r.query) }

// SetPathParameter binds a pattern capture to key.
func (r *Request) SetPathParameter(key, value string) {
	if r.params == nil {
		r.params = make(map[string]string)
	}
	r.params[key] = value
}

// PathParameter returns the captured path value for key, or "".
func (r *Request) PathParameter(key string) string { return r.params[key] }

// LookupPathParameter returns the captured path value for key and whether it was bound.
func (r *Request) LookupPathParameter(key string) (string, bool) {
	v, ok := r.params[key]
	return v, ok
}

// PathParameters returns a copy of the captured path parameters.
// It is nil for requests resolved by an exact route.
func (r *Request) PathParameters() map[string]string { return maps.Clone(r.params) }

// AddHeader parses a single "Name: value" line (without CRLF) and stores it.
// A line without a name/value separator is rejected with ErrMalformedHeader.
func (r *Request) AddHeader(line string) error {
	m := headerLinePattern.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("%w: %q", ErrMalformedHeader, line)
	}
	return r.SetHeader(m[1], strings.TrimRight(m[2], " \t"))
}

// SetHeader stores a header value under the exact name, replacing any previous value.
// Content-Length is additionally parsed and cached.
func (r *Request) SetHeader(name, value string) error {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	if name == HeaderContentLength {
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidContentLength, value)
		}
		r.contentLength = n
	}
	r.headers[name] = value
	return nil
}

// Header returns the header value for the exact name, or "".
func (r *Request) Header(name string) string { return r.headers[name] }

// LookupHeader returns the header value for the exact name and whether it was present.
func (r *Request) LookupHeader(name string) (string, bool) {
	v, ok := r.headers[name]
	return v, ok
}

// HeaderFold returns the value of the first header whose name matches name
// case-insensitively, or "". An exact match is preferred.
func (r *Request) HeaderFold(name string) string {
	if v, ok := r.headers[name]; ok {
		return v
	}
	for k, v := range r.headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Headers returns a copy of all headers.
func (r *Request) Headers() map[string]string { return maps.Clone(r.headers) }

// ContentLength returns the declared (or self-check corrected) body length.
func (r *Request) ContentLength() uint64 { return r.contentLength }

// SetContentLength overrides the cached body length.
func (r *Request) SetContentLength(n uint64) { r.contentLength = n }

// Body returns the raw payload.
func (r *Request) Body() []byte { return r.body }

// SetBody replaces the raw payload.
func (r *Request) SetBody(b []byte) { r.body = b }

// AppendBody appends p to the payload.
func (r *Request) AppendBody(p []byte) { r.body = append(r.body, p...) }

// ReceiveTime is the moment the request line finished parsing.
func (r *Request) ReceiveTime() time.Time { return r.receiveTime }

// SetReceiveTime records the receive timestamp.
func (r *Request) SetReceiveTime(t time.Time) { r.receiveTime = t }

// RemoteAddr is the peer address supplied by the transport.
func (r *Request) RemoteAddr() string { return r.remoteAddr }

// SetRemoteAddr records the peer address.
func (r *Request) SetRemoteAddr(addr string) { r.remoteAddr = addr }

// Context returns the request context; never nil.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// SetContext replaces the request context.
func (r *Request) SetContext(ctx context.Context) { r.ctx = ctx }

// SetValue stores a request-scoped value shared between middleware hooks and handlers.
func (r *Request) SetValue(key, value any) {
	if r.values == nil {
		r.values = make(map[any]any)
	}
	r.values[key] = value
}

// Value returns a request-scoped value, or nil.
func (r *Request) Value(key any) any { return r.values[key] }

// Reject marks the request as refused by a middleware. Downstream stages must
// inspect Rejected and answer with status instead of routing.
func (r *Request) Reject(status int, reason string) {
	r.rejectStatus = status
	r.rejectReason = reason
}

// Rejected reports whether a middleware refused the request.
func (r *Request) Rejected() (status int, reason string, ok bool) {
	return r.rejectStatus, r.rejectReason, r.rejectStatus != 0
}

// Clone returns a copy whose maps and body can be modified without affecting r.
func (r *Request) Clone() *Request {
	c := *r
	c.query = maps.Clone(r.query)
	c.params = maps.Clone(r.params)
	c.headers = maps.Clone(r.headers)
	c.values = maps.Clone(r.values)
	if r.body != nil {
		c.body = append([]byte(nil), r.body...)
	}
	return &c
}

// WithPathParameters returns a copy of r carrying params as its path
// parameters. Maps are copied; the body is shared with r, so it must be
// treated as read-only.
func (r *Request) WithPathParameters(params map[string]string) *Request {
	c := *r
	c.query = maps.Clone(r.query)
	c.params = maps.Clone(params)
	c.headers = maps.Clone(r.headers)
	c.values = maps.Clone(r.values)
	return &c
}

// Swap exchanges every field of r and other.
func (r *Request) Swap(other *Request) {
	*r, *other = *other, *r
}

// Reset replaces r with an empty request.
func (r *Request) Reset() {
	r.Swap(New())
}

// KeepAlive reports whether the client asked to keep the connection open.
func (r *Request) KeepAlive() bool {
	conn := strings.ToLower(r.headers[HeaderConnection])
	if r.version == Version10 {
		return conn == "keep-alive"
	}
	return conn != "close"
}
