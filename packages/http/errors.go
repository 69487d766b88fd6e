package http

import (
	"errors"
	"fmt"
)

var (
	// ErrIncorrectMiddlewareArity is returned when a middleware does not accept the payload.
	ErrIncorrectMiddlewareArity = errors.New("middleware must accept at least one parameter, the payload")
	// ErrUnsupportedMiddleware is returned by Use for callables of an unknown shape.
	ErrUnsupportedMiddleware = errors.New("unsupported middleware signature")
	// ErrInvalidResponseKind is returned when a response factory cannot produce responses.
	ErrInvalidResponseKind = errors.New("invalid response factory")
	// ErrNotARedirect is returned when asking a non-redirect response for its target.
	ErrNotARedirect = errors.New("response is not a redirect")
	// ErrRegistryFrozen is returned when mutating a registry after Freeze.
	ErrRegistryFrozen = errors.New("registry is frozen")
	// ErrNilErrorHandler is returned when a handler factory builds no handler.
	ErrNilErrorHandler = errors.New("error handler factory returned nil")
	// ErrUnsupportedPayload is returned when a payload cannot be turned into a query string.
	ErrUnsupportedPayload = errors.New("unsupported payload")
)

// TransferError reports a failure of the network call itself (connection refused,
// TLS failure, timeout), as opposed to an HTTP error status.
type TransferError struct {
	URL  string
	Body string
	Err  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer error: %v to URL %s", e.Err, e.URL)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
