package handlers

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"
	"github.com/xeipuuv/gojsonschema"
)

// StatusError is returned when a response carries an unexpected status code.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, truncate(e.Body, 200))
}

// SchemaError is returned when a response body does not match a JSON schema.
type SchemaError struct {
	Errors []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema validation failed: %s", strings.Join(e.Errors, "; "))
}

type statusHandler struct {
	response rhttp.Response
	allowed  []int
}

// Status fails responses with a 4xx or 5xx status.
func Status() rhttp.HandlerFactory {
	return func(resp rhttp.Response) rhttp.ErrorHandler {
		return &statusHandler{response: resp}
	}
}

// ExpectStatus fails responses whose status is not one of codes.
func ExpectStatus(codes ...int) rhttp.HandlerFactory {
	return func(resp rhttp.Response) rhttp.ErrorHandler {
		return &statusHandler{response: resp, allowed: codes}
	}
}

func (h *statusHandler) Handle() error {
	code := h.response.Code()
	if len(h.allowed) == 0 {
		if code >= 400 {
			return &StatusError{Code: code, Body: h.response.RawBody()}
		}
		return nil
	}
	for _, c := range h.allowed {
		if c == code {
			return nil
		}
	}
	return &StatusError{Code: code, Body: h.response.RawBody()}
}

type schemaHandler struct {
	response rhttp.Response
	schema   gojsonschema.JSONLoader
}

// Schema validates JSON response bodies against a JSON schema document.
func Schema(schema []byte) rhttp.HandlerFactory {
	loader := gojsonschema.NewBytesLoader(schema)
	return func(resp rhttp.Response) rhttp.ErrorHandler {
		return &schemaHandler{response: resp, schema: loader}
	}
}

// SchemaFile loads a schema from disk and returns a Schema handler for it.
func SchemaFile(path string) (rhttp.HandlerFactory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	if !rhttp.IsJSON(string(data)) {
		return nil, fmt.Errorf("schema file %s is not valid JSON", path)
	}
	return Schema(data), nil
}

func (h *schemaHandler) Handle() error {
	body := h.response.RawBody()
	if !rhttp.IsJSON(body) {
		return &SchemaError{Errors: []string{"response body is not JSON"}}
	}

	result, err := gojsonschema.Validate(h.schema, gojsonschema.NewStringLoader(body))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return &SchemaError{Errors: errs}
}

type containsHandler struct {
	response rhttp.Response
	needle   string
}

// BodyContains fails responses whose raw body does not contain needle.
func BodyContains(needle string) rhttp.HandlerFactory {
	return func(resp rhttp.Response) rhttp.ErrorHandler {
		return &containsHandler{response: resp, needle: needle}
	}
}

func (h *containsHandler) Handle() error {
	if strings.Contains(h.response.RawBody(), h.needle) {
		return nil
	}
	return fmt.Errorf("response body does not contain %q", h.needle)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "..."
}
