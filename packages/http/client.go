package http

import (
	"fmt"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultSecurePort is used for https hosts without an explicit port
	DefaultSecurePort = 443
	// DefaultPort is used for every other host without an explicit port
	DefaultPort = 80

	secureScheme = "https://"
)

// Client holds connection-level configuration and issues requests against
// one host. A Client is not safe for concurrent mutation; confine it to one
// goroutine or synchronize AddHeader/AddMiddleware calls externally.
type Client struct {
	host        string
	port        int
	headers     *Headers
	pipeline    Pipeline
	timeout     time.Duration
	validateSSL bool
	transport   Transport
	registry    *Registry
	newResponse ResponseFactory
}

type ClientOption func(*Client)

// NewClient creates a client for host, which should carry its scheme
// (e.g. "https://api.example.com").
//
// Without WithPort the port comes from the host: a port written in the host
// wins, otherwise 443 for https hosts and 80 for everything else.
func NewClient(host string, opts ...ClientOption) *Client {
	c := &Client{
		host:        host,
		headers:     DefaultHeaders(),
		timeout:     DefaultTimeout,
		validateSSL: true,
		newResponse: NewResponse,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.port <= 0 {
		c.port = derivePort(host)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport()
	}
	if c.registry == nil {
		c.registry = DefaultRegistry()
	}

	return c
}

func WithPort(port int) ClientOption {
	return func(c *Client) {
		c.port = port
	}
}

func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		c.headers.SetAll(headers)
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithValidateSSL enables or disables TLS certificate and hostname
// verification. Verification is on by default.
func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.validateSSL = validate
	}
}

func WithTransport(t Transport) ClientOption {
	return func(c *Client) {
		c.transport = t
	}
}

// WithRegistry sets the logger and error handler registry. The default
// registry is used otherwise.
func WithRegistry(r *Registry) ClientOption {
	return func(c *Client) {
		c.registry = r
	}
}

// WithResponseFactory selects the Response variant. A nil factory keeps
// the built-in response.
func WithResponseFactory(f ResponseFactory) ClientOption {
	return func(c *Client) {
		if f != nil {
			c.newResponse = f
		}
	}
}

// WithMiddleware appends middleware in order. Nil entries are skipped.
func WithMiddleware(m ...Middleware) ClientOption {
	return func(c *Client) {
		for _, mw := range m {
			_ = c.pipeline.Append(mw)
		}
	}
}

// derivePort picks the port for a host given without one.
func derivePort(host string) int {
	raw := host
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	if u, err := neturl.Parse(raw); err == nil && u.Port() != "" {
		if p, err := strconv.Atoi(u.Port()); err == nil {
			return p
		}
	}
	lower := strings.ToLower(host)
	if strings.HasPrefix(lower, secureScheme) || strings.HasSuffix(lower, secureScheme) {
		return DefaultSecurePort
	}
	return DefaultPort
}

func (c *Client) Host() string {
	return c.host
}

func (c *Client) Port() int {
	return c.port
}

// Headers returns a copy of the current header set.
func (c *Client) Headers() *Headers {
	return c.headers.Clone()
}

func (c *Client) Registry() *Registry {
	return c.registry
}

// AddHeader sets a header for all following requests. Keys are case-insensitive.
func (c *Client) AddHeader(key, value string) {
	c.headers.Set(key, value)
}

func (c *Client) AddHeaders(headers map[string]string) {
	c.headers.SetAll(headers)
}

// AddMiddleware appends a payload mutator. Middleware runs in the order it
// was added.
func (c *Client) AddMiddleware(m Middleware) error {
	return c.pipeline.Append(m)
}

// Use registers a loosely typed middleware callable; see Adapt for the
// accepted shapes. Nothing is registered when an error is returned.
func (c *Client) Use(fn any) error {
	m, err := Adapt(fn)
	if err != nil {
		return err
	}
	return c.pipeline.Append(m)
}

// MiddlewareCount reports how many middleware are registered.
func (c *Client) MiddlewareCount() int {
	return c.pipeline.Len()
}

// SetResponseFactory selects the Response variant built for each request.
func (c *Client) SetResponseFactory(f ResponseFactory) error {
	if f == nil {
		return ErrInvalidResponseKind
	}
	c.newResponse = f
	return nil
}

func (c *Client) Get(route string, payload any, headers map[string]string) (Response, error) {
	return c.Request(http.MethodGet, route, payload, headers)
}

func (c *Client) Post(route string, payload any, headers map[string]string) (Response, error) {
	return c.Request(http.MethodPost, route, payload, headers)
}

func (c *Client) Put(route string, payload any, headers map[string]string) (Response, error) {
	return c.Request(http.MethodPut, route, payload, headers)
}

func (c *Client) Delete(route string, payload any, headers map[string]string) (Response, error) {
	return c.Request(http.MethodDelete, route, payload, headers)
}

// Request runs payload through the middleware, composes the URL, dispatches
// and returns the checked response. Per-call headers are merged into the
// client's headers and stay there for later requests.
func (c *Client) Request(method, route string, payload any, headers map[string]string) (Response, error) {
	method = strings.ToUpper(method)
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}

	payload, err := c.pipeline.Apply(payload, &route)
	if err != nil {
		return nil, err
	}

	query := ""
	if (method == http.MethodGet || method == http.MethodDelete) && !isEmptyPayload(payload) {
		q, err := BuildQuery(payload)
		if err != nil {
			return nil, err
		}
		if q != "" {
			sep := "?"
			if strings.Contains(route, "?") {
				sep = "&"
			}
			query = sep + q
		}
	}

	c.AddHeaders(headers)

	call, err := BuildCall(CallSpec{
		URL:         c.host + route + query,
		Port:        c.port,
		Method:      method,
		Payload:     payload,
		Header:      c.headers,
		Timeout:     c.timeout,
		ValidateSSL: c.validateSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, route, err)
	}

	var logged any
	if call.HasPayload {
		logged = call.Payload
	}
	c.registry.Log(TagRequestOut, Fields{
		{Key: "Method", Value: method},
		{Key: "Host", Value: c.host},
		{Key: "Port", Value: c.port},
		{Key: "Route", Value: route},
		{Key: "Headers", Value: c.headers.Map()},
		{Key: "Payload", Value: logged},
	})

	return c.newResponse(NewExchange(call, c.transport, c.registry))
}
