package assertions

import (
	"fmt"
	"strings"

	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"
)

// ExpectationError lists every assertion a response failed
type ExpectationError struct {
	Failures []*Result
}

func (e *ExpectationError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s %s: %s", f.Subject, f.Operator, f.Message)
	}
	return fmt.Sprintf("%d expectation(s) failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

type expectHandler struct {
	response   rhttp.Response
	assertions []*Assertion
}

// Expect fails responses that do not satisfy every assertion. All assertions
// are evaluated so the error reports each failure.
func Expect(assertions ...*Assertion) rhttp.HandlerFactory {
	return func(resp rhttp.Response) rhttp.ErrorHandler {
		return &expectHandler{response: resp, assertions: assertions}
	}
}

func (h *expectHandler) Handle() error {
	var failures []*Result
	for _, r := range EvaluateAll(h.response, h.assertions) {
		if !r.Passed {
			failures = append(failures, r)
		}
	}
	if len(failures) > 0 {
		return &ExpectationError{Failures: failures}
	}
	return nil
}
