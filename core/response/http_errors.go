package response

// HTTPError is a structured error a handler can render with Error.
type HTTPError struct {
	Status  StatusCode     `json:"-"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// NewHTTPError returns a 500 error with the given message.
func NewHTTPError(message string) HTTPError {
	return HTTPError{
		Status:  StatusInternalServerError,
		Code:    "internal_server_error",
		Message: message,
	}
}

func (e HTTPError) Error() string { return e.Message }

// StatusCode returns the status the error renders with.
func (e HTTPError) StatusCode() StatusCode { return e.Status }

// WithMessage returns a copy with a different message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithDetails returns a copy carrying details.
func (e HTTPError) WithDetails(details map[string]any) HTTPError {
	e.Details = details
	return e
}

// WithError returns a copy whose details include the cause message.
func (e HTTPError) WithError(err error) HTTPError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details["cause"] = err.Error()
	e.Details = details
	return e
}

var (
	ErrBadRequest = HTTPError{
		Status:  StatusBadRequest,
		Code:    "bad_request",
		Message: StatusBadRequest.Text(),
	}
	ErrUnauthorized = HTTPError{
		Status:  StatusUnauthorized,
		Code:    "unauthorized",
		Message: StatusUnauthorized.Text(),
	}
	ErrForbidden = HTTPError{
		Status:  StatusForbidden,
		Code:    "forbidden",
		Message: StatusForbidden.Text(),
	}
	ErrNotFound = HTTPError{
		Status:  StatusNotFound,
		Code:    "not_found",
		Message: StatusNotFound.Text(),
	}
	ErrConflict = HTTPError{
		Status:  StatusConflict,
		Code:    "conflict",
		Message: StatusConflict.Text(),
	}
	ErrRequestEntityTooLarge = HTTPError{
		Status:  StatusRequestEntityTooLarge,
		Code:    "request_entity_too_large",
		Message: StatusRequestEntityTooLarge.Text(),
	}
	ErrTooManyRequests = HTTPError{
		Status:  StatusTooManyRequests,
		Code:    "too_many_requests",
		Message: StatusTooManyRequests.Text(),
	}

	ErrInternalServerError = HTTPError{
		Status:  StatusInternalServerError,
		Code:    "internal_server_error",
		Message: StatusInternalServerError.Text(),
	}
	ErrServiceUnavailable = HTTPError{
		Status:  StatusServiceUnavailable,
		Code:    "service_unavailable",
		Message: StatusServiceUnavailable.Text(),
	}
)

var errorsByStatus = map[StatusCode]HTTPError{
	StatusBadRequest:            ErrBadRequest,
	StatusUnauthorized:          ErrUnauthorized,
	StatusForbidden:             ErrForbidden,
	StatusNotFound:              ErrNotFound,
	StatusConflict:              ErrConflict,
	StatusRequestEntityTooLarge: ErrRequestEntityTooLarge,
	StatusTooManyRequests:       ErrTooManyRequests,
	StatusInternalServerError:   ErrInternalServerError,
	StatusServiceUnavailable:    ErrServiceUnavailable,
}

// ErrorForStatus returns the predefined error for code, or a generic error
// carrying code and its reason phrase.
func ErrorForStatus(code StatusCode) HTTPError {
	if e, ok := errorsByStatus[code]; ok {
		return e
	}
	return HTTPError{Status: code, Code: "error", Message: code.Text()}
}
