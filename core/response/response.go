package response

import (
	"bytes"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/dmitrymomot/tinyhttp/core/request"
)

const (
	HeaderContentType   = "Content-Type"
	HeaderContentLength = "Content-Length"
	HeaderConnection    = "Connection"
	HeaderLocation      = "Location"

	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeJSON = "application/json; charset=utf-8"
)

// Response is the outbound counterpart of a request, filled by handlers and
// after-hooks and serialized by the transport.
type Response struct {
	version string
	status  StatusCode
	message string
	close   bool
	headers map[string]string
	body    []byte
	req     *request.Request
}

// New returns a response answering req. The connection is closed after the
// response unless req asked to keep it open. A nil req yields a closing
// HTTP/1.1 response.
func New(req *request.Request) *Response {
	r := &Response{
		version: request.Version11,
		close:   true,
		headers: make(map[string]string),
		req:     req,
	}
	if req != nil {
		if v := req.Version(); v != "" {
			r.version = v
		}
		r.close = !req.KeepAlive()
	}
	return r
}

// Request returns the request this response answers; it may be nil.
func (r *Response) Request() *request.Request { return r.req }

// SetStatusLine sets all three status line components at once.
func (r *Response) SetStatusLine(version string, code StatusCode, message string) {
	r.version = version
	r.status = code
	r.message = message
}

// SetStatusCode sets the code and its standard reason phrase.
func (r *Response) SetStatusCode(code StatusCode) {
	r.status = code
	r.message = code.Text()
}

func (r *Response) StatusCode() StatusCode { return r.status }

func (r *Response) StatusMessage() string { return r.message }

func (r *Response) Version() string { return r.version }

// SetCloseConnection controls the Connection header and whether the
// transport closes the connection after writing.
func (r *Response) SetCloseConnection(v bool) { r.close = v }

func (r *Response) CloseConnection() bool { return r.close }

// AddHeader sets a header, replacing an existing value with the same name.
func (r *Response) AddHeader(name, value string) { r.headers[name] = value }

// Header returns the value of name, or "".
func (r *Response) Header(name string) string { return r.headers[name] }

// Headers returns a copy of all headers.
func (r *Response) Headers() map[string]string { return maps.Clone(r.headers) }

func (r *Response) SetContentType(ct string) { r.AddHeader(HeaderContentType, ct) }

// SetContentLength pins Content-Length. Without it WriteTo uses the body size.
func (r *Response) SetContentLength(n uint64) {
	r.AddHeader(HeaderContentLength, strconv.FormatUint(n, 10))
}

func (r *Response) SetBody(b []byte) { r.body = b }

func (r *Response) SetBodyString(s string) { r.body = []byte(s) }

func (r *Response) Body() []byte { return r.body }

// WriteTo serializes the response: status line, Connection, headers in name
// order, Content-Length, blank line, body. HEAD responses and 204 omit the body.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.Grow(128 + len(r.body))

	buf.WriteString(r.version)
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(int(r.status)))
	buf.WriteByte(' ')
	buf.WriteString(r.message)
	buf.WriteString("\r\n")

	if r.close {
		buf.WriteString("Connection: close\r\n")
	} else {
		buf.WriteString("Connection: Keep-Alive\r\n")
	}

	for _, name := range slices.Sorted(maps.Keys(r.headers)) {
		if name == HeaderConnection || name == HeaderContentLength {
			continue
		}
		buf.WriteString(name)
		buf.WriteString(": ")
		buf.WriteString(r.headers[name])
		buf.WriteString("\r\n")
	}

	writeBody := r.status != StatusNoContent &&
		(r.req == nil || r.req.Method() != request.MethodHead)

	if r.status != StatusNoContent {
		cl, ok := r.headers[HeaderContentLength]
		if !ok {
			cl = strconv.Itoa(len(r.body))
		}
		buf.WriteString(HeaderContentLength)
		buf.WriteString(": ")
		buf.WriteString(cl)
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")

	if writeBody {
		buf.Write(r.body)
	}
	return buf.WriteTo(w)
}
