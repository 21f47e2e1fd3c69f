package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/tinyhttp/core/logger"
	"github.com/dmitrymomot/tinyhttp/core/request"
)

const (
	// DefaultMaxHeaderBytes bounds the request line plus header block.
	DefaultMaxHeaderBytes = 1 << 20

	// DefaultMaxBodyBytes bounds the declared Content-Length.
	DefaultMaxBodyBytes = 10 << 20
)

var headerTerminator = []byte("\r\n\r\n")

// State is the position of a Context in the request grammar.
type State uint8

const (
	StateRequestLine State = iota
	StateHeaders
	StateBody
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateRequestLine:
		return "awaiting_request_line"
	case StateHeaders:
		return "awaiting_headers"
	case StateBody:
		return "awaiting_body"
	case StateComplete:
		return "complete"
	}
	return "unknown"
}

// Result is the outcome of one Parse call.
type Result uint8

const (
	// NeedMoreData means the buffer ends mid-request; no bytes were lost.
	NeedMoreData Result = iota
	// Complete means a full request passed self-check and is available via Request.
	Complete
	// Invalid means the input is malformed; the connection should answer 400 and close.
	Invalid
)

func (r Result) String() string {
	switch r {
	case NeedMoreData:
		return "need_more_data"
	case Complete:
		return "complete"
	case Invalid:
		return "invalid"
	}
	return "unknown"
}

// Context is the per-connection request parser. It is created once per
// connection and reused for every request on it; call Reset after taking a
// completed request. A Context is not safe for concurrent use.
type Context struct {
	state    State
	complete bool
	req      *request.Request

	// offset into the header block already searched for the terminator
	scanned int
	// request line bytes, counted against maxHeaderBytes
	lineBytes int

	maxHeaderBytes int
	maxBodyBytes   uint64
	logger         *slog.Logger
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger used to report parse outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxHeaderBytes limits the request line plus header block size.
func WithMaxHeaderBytes(n int) Option {
	return func(c *Context) {
		if n > 0 {
			c.maxHeaderBytes = n
		}
	}
}

// WithMaxBodyBytes limits the accepted Content-Length.
func WithMaxBodyBytes(n uint64) Option {
	return func(c *Context) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// NewContext returns a Context waiting for a request line.
func NewContext(opts ...Option) *Context {
	c := &Context{
		req:            request.New(),
		maxHeaderBytes: DefaultMaxHeaderBytes,
		maxBodyBytes:   DefaultMaxBodyBytes,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current parse state.
func (c *Context) State() State { return c.state }

// Complete reports whether the last Parse produced a deliverable request.
func (c *Context) Complete() bool { return c.complete }

// Request returns the request under construction. It is only meaningful to
// handlers once Complete reports true.
func (c *Context) Request() *request.Request { return c.req }

// Reset prepares the context for the next request on the same connection.
// The previously returned Request stays valid and is no longer referenced.
func (c *Context) Reset() {
	c.state = StateRequestLine
	c.complete = false
	c.scanned = 0
	c.lineBytes = 0
	c.req = request.New()
}

// Parse consumes as much of buf as the current request needs. Unconsumed bytes
// (an incomplete element, or a pipelined next request) remain in buf.
// The returned error is non-nil only for Invalid.
func (c *Context) Parse(buf *Buffer, receiveTime time.Time) (Result, error) {
	if c.state == StateComplete {
		return Complete, nil
	}

	res, err := c.advance(buf, receiveTime)
	switch res {
	case Invalid:
		c.logger.Warn("invalid request",
			logger.State(c.state.String()),
			logger.Error(err),
		)
	case NeedMoreData:
		c.logger.Debug("need more data",
			logger.State(c.state.String()),
			slog.Int("buffered", buf.Len()),
		)
	}
	return res, err
}

func (c *Context) advance(buf *Buffer, receiveTime time.Time) (Result, error) {
	for {
		var (
			res  Result
			err  error
			next State
		)

		switch c.state {
		case StateRequestLine:
			res, err = c.parseRequestLine(buf, receiveTime)
			next = StateHeaders
		case StateHeaders:
			res, err = c.parseHeaders(buf)
			next = StateBody
		case StateBody:
			res, err = c.parseBody(buf)
			next = StateComplete
		}

		if err != nil {
			return Invalid, err
		}
		if res == NeedMoreData {
			return NeedMoreData, nil
		}

		if next == StateComplete {
			return c.finish()
		}
		c.state = next
	}
}

// parseRequestLine handles METHOD SP TARGET SP VERSION CRLF.
func (c *Context) parseRequestLine(buf *Buffer, receiveTime time.Time) (Result, error) {
	end := buf.IndexCRLF()
	if end < 0 {
		if buf.Len() > c.maxHeaderBytes {
			return Invalid, fmt.Errorf("%w: request line exceeds %d bytes", ErrHeadersTooLarge, c.maxHeaderBytes)
		}
		return NeedMoreData, nil
	}
	if end+len(crlf) > c.maxHeaderBytes {
		return Invalid, fmt.Errorf("%w: request line exceeds %d bytes", ErrHeadersTooLarge, c.maxHeaderBytes)
	}

	line, err := buf.Peek(end)
	if err != nil {
		return Invalid, err
	}

	sp := bytes.IndexByte(line, ' ')
	if sp < 0 {
		return Invalid, fmt.Errorf("%w: missing method separator", ErrMalformedRequestLine)
	}
	method, rest := line[:sp], line[sp+1:]

	sp = bytes.IndexByte(rest, ' ')
	if sp < 0 {
		return Invalid, fmt.Errorf("%w: missing version separator", ErrMalformedRequestLine)
	}
	target, version := rest[:sp], rest[sp+1:]
	if len(target) == 0 {
		return Invalid, fmt.Errorf("%w: empty request target", ErrMalformedRequestLine)
	}

	if err := c.req.SetMethod(string(method)); err != nil {
		return Invalid, fmt.Errorf("%w: %w", ErrUnknownMethod, err)
	}

	path, query := target, []byte(nil)
	if q := bytes.IndexByte(target, '?'); q >= 0 {
		path, query = target[:q], target[q+1:]
	}
	c.req.SetPath(string(path))
	if len(query) > 0 {
		c.req.SetQueryParameters(string(query))
	}

	if err := c.req.SetVersion(string(version)); err != nil {
		return Invalid, fmt.Errorf("%w: %w", ErrUnsupportedVersion, err)
	}

	if err := buf.Retrieve(end + len(crlf)); err != nil {
		return Invalid, err
	}
	c.lineBytes = end + len(crlf)
	c.req.SetReceiveTime(receiveTime)
	return Complete, nil
}

// parseHeaders consumes the header block through its terminating blank line.
func (c *Context) parseHeaders(buf *Buffer) (Result, error) {
	if head, err := buf.Peek(len(crlf)); err == nil && bytes.Equal(head, crlf) {
		return Complete, buf.Retrieve(len(crlf))
	}

	limit := c.maxHeaderBytes - c.lineBytes
	end := buf.IndexFrom(c.scanned, headerTerminator)
	if end < 0 {
		if buf.Len() > limit {
			return Invalid, fmt.Errorf("%w: exceeds %d bytes", ErrHeadersTooLarge, c.maxHeaderBytes)
		}
		// the terminator may straddle the next read
		c.scanned = max(0, buf.Len()-len(headerTerminator)+1)
		return NeedMoreData, nil
	}
	if end+len(headerTerminator) > limit {
		return Invalid, fmt.Errorf("%w: exceeds %d bytes", ErrHeadersTooLarge, c.maxHeaderBytes)
	}

	// block keeps the CRLF of the last header line
	block, err := buf.Peek(end + len(crlf))
	if err != nil {
		return Invalid, err
	}
	for len(block) > 0 {
		i := bytes.Index(block, crlf)
		if i < 0 {
			return Invalid, fmt.Errorf("%w: unterminated line", ErrMalformedHeader)
		}
		line := block[:i]
		if bytes.IndexByte(line, '\n') >= 0 || bytes.IndexByte(line, '\r') >= 0 {
			return Invalid, fmt.Errorf("%w: bare line terminator in %q", ErrMalformedHeader, line)
		}
		if err := c.req.AddHeader(string(line)); err != nil {
			if errors.Is(err, request.ErrInvalidContentLength) {
				return Invalid, fmt.Errorf("%w: %w", ErrInvalidContentLength, err)
			}
			return Invalid, fmt.Errorf("%w: %w", ErrMalformedHeader, err)
		}
		block = block[i+len(crlf):]
	}

	c.scanned = 0
	return Complete, buf.Retrieve(end + len(headerTerminator))
}

// parseBody copies Content-Length bytes into the request, across as many
// Parse calls as it takes.
func (c *Context) parseBody(buf *Buffer) (Result, error) {
	want := c.req.ContentLength()
	if want == 0 {
		return Complete, nil
	}
	if want > c.maxBodyBytes {
		return Invalid, fmt.Errorf("%w: %d exceeds %d bytes", ErrBodyTooLarge, want, c.maxBodyBytes)
	}

	have := uint64(len(c.req.Body()))
	if have == 0 && c.req.Body() == nil {
		c.req.SetBody(make([]byte, 0, want))
	}

	n := min(want-have, uint64(buf.Len()))
	if n > 0 {
		p, err := buf.Next(int(n))
		if err != nil {
			return Invalid, err
		}
		c.req.AppendBody(p)
	}

	if uint64(len(c.req.Body())) < want {
		return NeedMoreData, nil
	}
	return Complete, nil
}

// finish runs the request self-check; the completion flag mirrors its result.
// A request that fails the check never reaches StateComplete.
func (c *Context) finish() (Result, error) {
	if err := c.req.SelfCheck(); err != nil {
		c.complete = false
		return Invalid, fmt.Errorf("%w: %w", ErrSelfCheck, err)
	}
	c.state = StateComplete
	c.complete = true
	return Complete, nil
}
