package apierr

import (
	"net/http"
)

const (
	DefaultMessage = "unknown error"
	DefaultCode    = 10001
)

// ServiceError is a call that went through at the transport level but whose
// body reports a failure (see Check).
type ServiceError struct {
	URL       string         // URL as passed to the verb
	Parameter map[string]any // per-call options: "query", "body", "json", "form_params" or "multipart"
	Response  *http.Response // headers etc. (body already consumed, see Body)
	Body      []byte         // raw body
	Message   string
	Code      int
}

// ErrorContext is what a caller needs to log or replay a failed call.
type ErrorContext struct {
	URL       string
	Parameter map[string]any
	Response  *http.Response
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return DefaultMessage
}

func (e *ServiceError) Context() ErrorContext {
	return ErrorContext{URL: e.URL, Parameter: e.Parameter, Response: e.Response}
}

// Status returns the HTTP status of the underlying response, 0 if there is none.
func (e *ServiceError) Status() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}
