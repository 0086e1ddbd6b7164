package client

import (
	"errors"
	"fmt"

	"github.com/adamwoolhether/typedhttp/result"
)

// maxErrBodySize caps the amount of response body kept when
// building an error for an unexpected status code.
const maxErrBodySize = 4 << 10 // 4KB

// Handler receives the outcome of one [Send].
type Handler[T any] func(result.Result[T])

var (
	// ErrTransport is the sentinel wrapped by [TransportError].
	ErrTransport = errors.New("transport failure")
	// ErrMalformedURL is the sentinel wrapped by [MalformedURLError].
	ErrMalformedURL = errors.New("malformed url")
	// ErrEmptyResponse is the cause of a TransportError when the transport
	// reported neither a payload nor an error.
	ErrEmptyResponse = errors.New("empty response")
	// ErrUnexpectedStatusCode is the sentinel wrapped by [UnexpectedStatusError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrAuthFailure is joined with [ErrUnexpectedStatusCode] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
)

// TransportError reports a failed call to the transport.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%v: %s %s: %v", ErrTransport, e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// MalformedURLError reports that a request's url, with its query
// parameters appended, is not a usable absolute URL.
type MalformedURLError struct {
	URL string
	Err error
}

func (e *MalformedURLError) Error() string {
	return fmt.Sprintf("%v %q: %v", ErrMalformedURL, e.URL, e.Err)
}

func (e *MalformedURLError) Unwrap() error {
	return e.Err
}

func (e *MalformedURLError) Is(target error) bool {
	return target == ErrMalformedURL
}

// UnexpectedStatusError is returned when status checking is enabled and the
// server responds outside the 2xx range.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}
