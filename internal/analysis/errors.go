package analysis

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrorInvalidReference  ErrorKind = "invalid_reference"
	ErrorTransportFailure  ErrorKind = "transport_failure"
	ErrorBackendFailure    ErrorKind = "backend_failure"
	ErrorMalformedResponse ErrorKind = "malformed_response"
)

// Sentinels match any *Error of the same kind via errors.Is.
var (
	ErrInvalidReference  = &Error{Kind: ErrorInvalidReference}
	ErrTransportFailure  = &Error{Kind: ErrorTransportFailure}
	ErrBackendFailure    = &Error{Kind: ErrorBackendFailure}
	ErrMalformedResponse = &Error{Kind: ErrorMalformedResponse}
)

// Error is the only error type Submit returns.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == ErrorBackendFailure && e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Kind, e.StatusCode, e.Message)
	case e.Kind == ErrorBackendFailure:
		return fmt.Sprintf("%s: status %d", e.Kind, e.StatusCode)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf reports the kind of err, or "" when err is nil or not an analysis error.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func invalidReference(raw string) *Error {
	return &Error{Kind: ErrorInvalidReference, Message: fmt.Sprintf("unsupported document url %q", raw)}
}

func transportFailure(err error) *Error {
	return &Error{Kind: ErrorTransportFailure, Message: err.Error(), Err: err}
}

func backendFailure(status int, body string) *Error {
	return &Error{Kind: ErrorBackendFailure, StatusCode: status, Message: body}
}

func malformedResponse(err error) *Error {
	e := &Error{Kind: ErrorMalformedResponse, Err: err}
	if err != nil {
		e.Message = err.Error()
	}
	return e
}
