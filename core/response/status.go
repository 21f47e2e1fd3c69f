package response

// StatusCode is an HTTP status code. Values mirror the wire numbers.
type StatusCode int

const (
	StatusUnknown StatusCode = 0

	StatusOK        StatusCode = 200
	StatusNoContent StatusCode = 204

	StatusMovedPermanently StatusCode = 301

	StatusBadRequest            StatusCode = 400
	StatusUnauthorized          StatusCode = 401
	StatusForbidden             StatusCode = 403
	StatusNotFound              StatusCode = 404
	StatusConflict              StatusCode = 409
	StatusRequestEntityTooLarge StatusCode = 413
	StatusTooManyRequests       StatusCode = 429

	StatusInternalServerError StatusCode = 500
	StatusServiceUnavailable  StatusCode = 503
)

var statusText = map[StatusCode]string{
	StatusOK:                    "OK",
	StatusNoContent:             "No Content",
	StatusMovedPermanently:      "Moved Permanently",
	StatusBadRequest:            "Bad Request",
	StatusUnauthorized:          "Unauthorized",
	StatusForbidden:             "Forbidden",
	StatusNotFound:              "Not Found",
	StatusConflict:              "Conflict",
	StatusRequestEntityTooLarge: "Request Entity Too Large",
	StatusTooManyRequests:       "Too Many Requests",
	StatusInternalServerError:   "Internal Server Error",
	StatusServiceUnavailable:    "Service Unavailable",
}

// Text returns the reason phrase for the code, or "Unknown".
func (c StatusCode) Text() string {
	if t, ok := statusText[c]; ok {
		return t
	}
	return "Unknown"
}

// Int returns the code as a plain int.
func (c StatusCode) Int() int { return int(c) }
