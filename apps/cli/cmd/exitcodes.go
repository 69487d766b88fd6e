package cmd

import (
	"errors"

	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"
)

// Exit codes for riqwest CLI
const (
	// ExitSuccess indicates the request succeeded and passed every check
	ExitSuccess = 0

	// ExitCheckFailure indicates a response check rejected the response
	ExitCheckFailure = 1

	// ExitInputError indicates unusable request input (payload, middleware, templates)
	ExitInputError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// ExitError carries the exit code a failed command should terminate with
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

// classifyRequestError picks the exit code for an error returned by a request
func classifyRequestError(err error) error {
	var transferErr *rhttp.TransferError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &transferErr):
		return withExitCode(ExitNetworkError, err)
	case errors.Is(err, rhttp.ErrUnsupportedPayload),
		errors.Is(err, rhttp.ErrIncorrectMiddlewareArity),
		errors.Is(err, rhttp.ErrUnsupportedMiddleware):
		return withExitCode(ExitInputError, err)
	default:
		return withExitCode(ExitCheckFailure, err)
	}
}
