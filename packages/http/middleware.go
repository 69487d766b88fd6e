package http

import (
	"fmt"
	"reflect"
)

// Middleware mutates the payload before dispatch. The route is passed by
// reference; edits to it are visible to later middleware and to URL composition.
type Middleware func(payload any, route *string) (any, error)

// Pipeline is an ordered list of middleware. Append order is execution order.
type Pipeline struct {
	steps []Middleware
}

func (p *Pipeline) Append(m Middleware) error {
	if m == nil {
		return ErrIncorrectMiddlewareArity
	}
	p.steps = append(p.steps, m)
	return nil
}

func (p *Pipeline) Len() int {
	return len(p.steps)
}

// Apply folds the pipeline over payload. The first failing middleware aborts
// the fold; nothing is retried.
func (p *Pipeline) Apply(payload any, route *string) (any, error) {
	for i, m := range p.steps {
		var err error
		payload, err = m(payload, route)
		if err != nil {
			return nil, fmt.Errorf("middleware %d: %w", i, err)
		}
	}
	return payload, nil
}

// Adapt converts a loosely typed callable into a Middleware. Callables that
// take no parameters are rejected with ErrIncorrectMiddlewareArity.
func Adapt(fn any) (Middleware, error) {
	if fn == nil {
		return nil, ErrIncorrectMiddlewareArity
	}
	if v := reflect.ValueOf(fn); v.Kind() == reflect.Func && v.IsNil() {
		return nil, ErrIncorrectMiddlewareArity
	}

	switch f := fn.(type) {
	case Middleware:
		return f, nil
	case func(any, *string) (any, error):
		return Middleware(f), nil
	case func(any, *string) any:
		return func(payload any, route *string) (any, error) {
			return f(payload, route), nil
		}, nil
	case func(any) (any, error):
		return func(payload any, _ *string) (any, error) {
			return f(payload)
		}, nil
	case func(any) any:
		return func(payload any, _ *string) (any, error) {
			return f(payload), nil
		}, nil
	}

	t := reflect.TypeOf(fn)
	if t.Kind() == reflect.Func && t.NumIn() == 0 {
		return nil, ErrIncorrectMiddlewareArity
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedMiddleware, fn)
}
