package http

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Response is the result of one dispatched request whose error handler
// chain has run.
type Response interface {
	Code() int
	RawBody() string
	// Body decodes a JSON body: a gjson.Result when asStructure is false,
	// plain maps, slices and scalars when true. Non-JSON bodies are
	// returned as the raw string.
	Body(asStructure bool) any
	Info() Info
	IsRedirect() bool
	RedirectURL() (string, error)
}

// ResponseFactory builds the response for a prepared exchange. It performs the
// dispatch and runs the error handler chain before returning.
type ResponseFactory func(ex *Exchange) (Response, error)

// Exchange is a prepared call together with what is needed to execute it.
type Exchange struct {
	call      *Call
	transport Transport
	registry  *Registry
}

// NewExchange prepares call for execution over transport. A nil registry
// means the default registry.
func NewExchange(call *Call, transport Transport, registry *Registry) *Exchange {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Exchange{call: call, transport: transport, registry: registry}
}

func (e *Exchange) Call() *Call {
	return e.call
}

func (e *Exchange) Registry() *Registry {
	return e.registry
}

// Execute runs the call. It blocks until the transport returns or the call
// timeout expires.
func (e *Exchange) Execute() (*DispatchResult, error) {
	return e.transport.Execute(context.Background(), e.call)
}

// BaseResponse is the built-in Response. Custom responses embed it and
// build themselves with Capture and CheckErrors.
type BaseResponse struct {
	code  int
	body  string
	info  Info
	chain []HandlerFactory
}

// NewResponse dispatches the exchange and runs the error handler chain.
func NewResponse(ex *Exchange) (Response, error) {
	base, err := Capture(ex)
	if err != nil {
		return nil, err
	}
	if err := base.CheckErrors(base); err != nil {
		return nil, err
	}
	return base, nil
}

// Capture performs the dispatch and records its result. A transfer error is
// logged and returned as *TransferError; no response is produced.
func Capture(ex *Exchange) (*BaseResponse, error) {
	result, err := ex.Execute()
	if err != nil {
		body := ""
		if result != nil {
			body = result.Body
		}
		ex.registry.Log(TagResponse, Fields{
			{Key: "Response Body", Value: body},
			{Key: "Transfer Error", Value: fmt.Sprintf("%v on URL %s", err, ex.call.URL)},
		})
		return nil, &TransferError{URL: ex.call.URL, Body: body, Err: err}
	}

	info := result.Info
	if info == nil {
		info = Info{}
	}
	ex.registry.Log(TagResponse, Fields{
		{Key: "Response Code", Value: result.StatusCode},
		{Key: "Response Body", Value: result.Body},
		{Key: "Response Info", Value: info},
	})

	return &BaseResponse{
		code:  result.StatusCode,
		body:  result.Body,
		info:  info,
		chain: ex.registry.ErrorHandlers(),
	}, nil
}

// CheckErrors runs the error handler chain captured with the response. Each
// handler is built fresh around self, which is the outermost response value
// (pass the embedding type for custom responses, or nil for r itself). The
// first handler error stops the chain and is returned unchanged.
func (r *BaseResponse) CheckErrors(self Response) error {
	if self == nil {
		self = r
	}
	for i, factory := range r.chain {
		h := factory(self)
		if h == nil {
			return fmt.Errorf("error handler %d: %w", i, ErrNilErrorHandler)
		}
		if err := h.Handle(); err != nil {
			return err
		}
	}
	return nil
}

func (r *BaseResponse) Code() int {
	return r.code
}

func (r *BaseResponse) RawBody() string {
	return r.body
}

func (r *BaseResponse) Info() Info {
	return r.info
}

func (r *BaseResponse) Body(asStructure bool) any {
	if !gjson.Valid(r.body) {
		return r.body
	}
	if !asStructure {
		return gjson.Parse(r.body)
	}
	var v any
	if err := json.Unmarshal([]byte(r.body), &v); err != nil {
		return r.body
	}
	return v
}

// DecodeBody unmarshals a JSON body into v.
func (r *BaseResponse) DecodeBody(v any) error {
	return json.Unmarshal([]byte(r.body), v)
}

// Get looks up a gjson path in the body.
func (r *BaseResponse) Get(path string) gjson.Result {
	return gjson.Get(r.body, path)
}

// IsRedirect is true for a 3xx status only when the transport also reported
// a redirect target.
func (r *BaseResponse) IsRedirect() bool {
	if r.code < 300 || r.code > 399 {
		return false
	}
	_, ok := r.info.RedirectURL()
	return ok
}

func (r *BaseResponse) RedirectURL() (string, error) {
	if !r.IsRedirect() {
		return "", ErrNotARedirect
	}
	target, _ := r.info.RedirectURL()
	return target, nil
}
