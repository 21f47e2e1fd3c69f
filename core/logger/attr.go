package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Helpers return an empty Attr for nil or empty input, so calls like
// log.Info("msg", logger.Error(err)) need no nil checks.

// Group nests attrs under name.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error attaches err under "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups non-nil errors under "errors", keyed by their argument index.
func Errors(errs ...error) slog.Attr {
	var as []slog.Attr
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

func Duration(d time.Duration) slog.Attr { return slog.Duration("duration", d) }

// Latency is the time spent serving one request.
func Latency(d time.Duration) slog.Attr { return slog.Duration("latency", d) }

// RequestID attaches the request correlation id.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

func Method(method string) slog.Attr { return slog.String("method", method) }

func Path(path string) slog.Attr { return slog.String("path", path) }

func StatusCode(code int) slog.Attr { return slog.Int("status_code", code) }

// ClientIP attaches the peer address.
func ClientIP(ip string) slog.Attr {
	if ip == "" {
		return slog.Attr{}
	}
	return slog.String("client_ip", ip)
}

func BytesIn(n int64) slog.Attr { return slog.Int64("bytes_in", n) }

func BytesOut(n int64) slog.Attr { return slog.Int64("bytes_out", n) }

// Component names the subsystem emitting the record.
func Component(name string) slog.Attr { return slog.String("component", name) }

func Event(name string) slog.Attr { return slog.String("event", name) }

// State records a state machine position.
func State(state string) slog.Attr { return slog.String("state", state) }

// Reason explains a rejection or failure in words.
func Reason(reason string) slog.Attr {
	if reason == "" {
		return slog.Attr{}
	}
	return slog.String("reason", reason)
}

// RetryCount records the attempt number of a retried operation.
func RetryCount(count int) slog.Attr { return slog.Int("retry_count", count) }
