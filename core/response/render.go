package response

import (
	"encoding/json"
	"errors"
)

// String writes a text/plain body with the given status.
func (r *Response) String(code StatusCode, content string) {
	r.SetStatusCode(code)
	r.SetContentType(ContentTypeText)
	r.SetBodyString(content)
}

// JSON writes v as an application/json body with the given status. On an
// encoding failure the response is turned into a 500 and the error returned.
func (r *Response) JSON(code StatusCode, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		r.Error(ErrInternalServerError.WithError(err))
		return err
	}
	r.SetStatusCode(code)
	r.SetContentType(ContentTypeJSON)
	r.SetBody(data)
	return nil
}

// NoContent answers 204 without a body.
func (r *Response) NoContent() {
	r.SetStatusCode(StatusNoContent)
	r.SetBody(nil)
}

// Redirect answers 301 pointing at location.
func (r *Response) Redirect(location string) {
	r.SetStatusCode(StatusMovedPermanently)
	r.AddHeader(HeaderLocation, location)
	r.SetBody(nil)
}

// Error renders err as a JSON error body. An HTTPError keeps its status and
// code; any other error becomes a 500 without exposing its message.
func (r *Response) Error(err error) {
	var httpErr HTTPError
	if !errors.As(err, &httpErr) {
		httpErr = ErrInternalServerError
	}

	data, mErr := json.Marshal(httpErr)
	if mErr != nil {
		r.String(httpErr.Status, httpErr.Message)
		return
	}
	r.SetStatusCode(httpErr.Status)
	r.SetContentType(ContentTypeJSON)
	r.SetBody(data)
}
