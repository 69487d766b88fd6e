package http

import (
	"fmt"
	"sync"
)

// Log tags emitted by the client.
const (
	TagRequestOut = "REQUEST OUT"
	TagResponse   = "RESPONSE"
)

// Logger receives structured records about outgoing requests and responses.
type Logger interface {
	Log(tag string, record Fields)
}

// LoggerFunc adapts a function into a Logger.
type LoggerFunc func(tag string, record Fields)

func (f LoggerFunc) Log(tag string, record Fields) {
	f(tag, record)
}

// MultiLogger fans a record out to several loggers in order.
type MultiLogger []Logger

func (m MultiLogger) Log(tag string, record Fields) {
	for _, l := range m {
		if l != nil {
			l.Log(tag, record)
		}
	}
}

// ErrorHandler inspects a response after dispatch. Returning an error aborts
// the chain and fails the request.
type ErrorHandler interface {
	Handle() error
}

// HandlerFunc adapts a function into an ErrorHandler.
type HandlerFunc func() error

func (f HandlerFunc) Handle() error {
	return f()
}

// HandlerFactory builds a fresh ErrorHandler bound to one response.
type HandlerFactory func(resp Response) ErrorHandler

// Check turns a response check into a HandlerFactory.
func Check(fn func(resp Response) error) HandlerFactory {
	return func(resp Response) ErrorHandler {
		return HandlerFunc(func() error {
			return fn(resp)
		})
	}
}

// Registry holds the logging hook and the error handler chain shared by
// clients. It is meant to be filled during initialization and then frozen;
// reads are safe from any goroutine.
type Registry struct {
	mu       sync.RWMutex
	logger   Logger
	handlers []HandlerFactory
	frozen   bool
}

func NewRegistry() *Registry {
	return &Registry{}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by clients that
// were not given one explicitly.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// SetLogger installs the logger on the default registry.
func SetLogger(l Logger) error {
	return defaultRegistry.SetLogger(l)
}

// AddErrorHandler appends handlers to the default registry.
func AddErrorHandler(factories ...HandlerFactory) error {
	return defaultRegistry.AddErrorHandler(factories...)
}

func (r *Registry) SetLogger(l Logger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrRegistryFrozen
	}
	r.logger = l
	return nil
}

// AddErrorHandler appends handler factories. Handlers run in the order
// they were added.
func (r *Registry) AddErrorHandler(factories ...HandlerFactory) error {
	for i, f := range factories {
		if f == nil {
			return fmt.Errorf("error handler %d is nil", i)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrRegistryFrozen
	}
	r.handlers = append(r.handlers, factories...)
	return nil
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

func (r *Registry) Logger() Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logger
}

// ErrorHandlers returns a snapshot of the handler chain.
func (r *Registry) ErrorHandlers() []HandlerFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]HandlerFactory, len(r.handlers))
	copy(out, r.handlers)
	return out
}

// Log forwards a record to the installed logger, if any.
func (r *Registry) Log(tag string, record Fields) {
	if l := r.Logger(); l != nil {
		l.Log(tag, record)
	}
}
