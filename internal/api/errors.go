package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport matches every network-level failure, including deadlines.
var ErrTransport = errors.New("transport failure")

// TransportError reports that a request never produced an HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTransport) match any TransportError.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// FieldError is one structured validation failure reported by the server.
type FieldError struct {
	Label   string `json:"label,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode  int
	Detail      string
	FieldErrors []FieldError
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// parseAPIError extracts detail and field errors from an error body. The
// detail may be a string or a list of validation records carrying "msg".
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var raw struct {
		Detail json.RawMessage `json:"detail"`
		Data   struct {
			Errors []FieldError `json:"errors"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return apiErr
	}
	apiErr.FieldErrors = raw.Data.Errors

	var detail string
	if err := json.Unmarshal(raw.Detail, &detail); err == nil {
		apiErr.Detail = detail
		return apiErr
	}
	var records []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw.Detail, &records); err == nil && len(records) > 0 {
		apiErr.Detail = records[0].Msg
	}
	return apiErr
}

// Detail returns the server-provided detail string carried by err, or "".
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// FirstFieldError returns the first structured field error carried by err.
func FirstFieldError(err error) (FieldError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && len(apiErr.FieldErrors) > 0 {
		return apiErr.FieldErrors[0], true
	}
	return FieldError{}, false
}

// StatusCode returns the HTTP status carried by err, or 0 for non-API errors.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
