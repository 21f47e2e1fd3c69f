package request

import (
	"encoding/json"
	"log/slog"
)

// requestJSON is the diagnostic dump layout of a request.
type requestJSON struct {
	Method          string            `json:"method"`
	Version         string            `json:"version"`
	Path            string            `json:"path"`
	PathParameters  map[string]string `json:"pathParameters"`
	QueryParameters map[string]string `json:"queryParameters"`
	ReceiveTimeUS   int64             `json:"receiveTime_us"`
	Headers         map[string]string `json:"headers"`
	Content         string            `json:"content"`
	ContentLength   uint64            `json:"contentLength"`
}

// MarshalJSON renders the full request for diagnostics.
func (r *Request) MarshalJSON() ([]byte, error) {
	v := requestJSON{
		Method:          r.method.String(),
		Version:         r.version,
		Path:            r.path,
		PathParameters:  nonNil(r.params),
		QueryParameters: nonNil(r.query),
		Headers:         nonNil(r.headers),
		Content:         string(r.body),
		ContentLength:   r.contentLength,
	}
	if !r.receiveTime.IsZero() {
		v.ReceiveTimeUS = r.receiveTime.UnixMicro()
	}
	return json.Marshal(v)
}

// LogValue implements slog.LogValuer. The body is summarized by its size.
func (r *Request) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("method", r.method.String()),
		slog.String("path", r.path),
		slog.String("version", r.version),
		slog.Int("headers", len(r.headers)),
		slog.Uint64("content_length", r.contentLength),
	}
	if len(r.query) > 0 {
		attrs = append(attrs, slog.Any("query", r.query))
	}
	if len(r.params) > 0 {
		attrs = append(attrs, slog.Any("params", r.params))
	}
	if r.remoteAddr != "" {
		attrs = append(attrs, slog.String("remote_addr", r.remoteAddr))
	}
	return slog.GroupValue(attrs...)
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
