package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTransport answers every call with result/err and remembers the calls.
type recordingTransport struct {
	calls  []*Call
	result *DispatchResult
	err    error
}

func (t *recordingTransport) Execute(_ context.Context, call *Call) (*DispatchResult, error) {
	t.calls = append(t.calls, call)
	if t.err != nil {
		return nil, t.err
	}
	if t.result != nil {
		return t.result, nil
	}
	return &DispatchResult{StatusCode: 200, Body: `{}`, Info: Info{}}, nil
}

func (t *recordingTransport) last() *Call {
	return t.calls[len(t.calls)-1]
}

func newTestClient(host string, opts ...ClientOption) (*Client, *recordingTransport) {
	rt := &recordingTransport{}
	opts = append([]ClientOption{WithTransport(rt), WithRegistry(NewRegistry())}, opts...)
	return NewClient(host, opts...), rt
}

func TestNewClient_Port(t *testing.T) {
	tests := []struct {
		name string
		host string
		opts []ClientOption
		want int
	}{
		{"https host", "https://api.example.com", nil, 443},
		{"http host", "http://api.example.com", nil, 80},
		{"no scheme", "api.example.com", nil, 80},
		{"bare secure marker", "https://", nil, 443},
		{"port in host", "http://localhost:8080", nil, 8080},
		{"port without scheme", "127.0.0.1:8080", nil, 8080},
		{"named host port without scheme", "api.example.com:8443", nil, 8443},
		{"explicit port", "https://api.example.com", []ClientOption{WithPort(8443)}, 8443},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.host, tt.opts...)
			assert.Equal(t, tt.want, c.Port())
		})
	}
}

func TestClient_AddHeader_CaseInsensitive(t *testing.T) {
	c, _ := newTestClient("http://example.com")
	before := c.Headers().Len()

	c.AddHeader("X-Trace", "one")
	c.AddHeader("x-trace", "two")

	headers := c.Headers()
	assert.Equal(t, before+1, headers.Len())
	assert.Equal(t, "two", headers.Get("X-TRACE"))

	c.AddHeader("Content-Type", "text/plain")
	c.AddHeader("content-type", "application/xml")
	assert.Equal(t, before+1, c.Headers().Len())
	assert.Equal(t, "application/xml", c.Headers().Get("Content-Type"))
}

func TestNewClient_DefaultHeaders(t *testing.T) {
	c := NewClient("http://example.com", WithHeaders(map[string]string{"Accept-Encoding": "gzip"}))

	headers := c.Headers()
	assert.Equal(t, "application/json", headers.Get("content-type"))
	assert.Equal(t, "gzip", headers.Get("accept-encoding"))
	assert.Equal(t, "riqwest/"+Version, headers.Get("user-agent"))
}

func TestClient_MiddlewareOrder(t *testing.T) {
	c, rt := newTestClient("http://example.com")

	require.NoError(t, c.AddMiddleware(func(payload any, _ *string) (any, error) {
		return payload.(int) + 1, nil
	}))
	require.NoError(t, c.AddMiddleware(func(payload any, _ *string) (any, error) {
		return payload.(int) * 2, nil
	}))

	_, err := c.Post("/numbers", 3, nil)
	require.NoError(t, err)
	assert.Equal(t, "8", rt.last().Body)
}

func TestClient_MiddlewareEditsRoute(t *testing.T) {
	c, rt := newTestClient("http://example.com")
	require.NoError(t, c.AddMiddleware(func(payload any, route *string) (any, error) {
		*route = "/v2" + *route
		return payload, nil
	}))

	_, err := c.Get("users", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/v2/users", rt.last().URL)
}

func TestClient_MiddlewareError(t *testing.T) {
	c, rt := newTestClient("http://example.com")
	boom := errors.New("boom")
	require.NoError(t, c.AddMiddleware(func(any, *string) (any, error) {
		return nil, boom
	}))

	resp, err := c.Get("/", nil, nil)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, rt.calls)
}

func TestClient_AddMiddleware_Arity(t *testing.T) {
	c, _ := newTestClient("http://example.com")

	assert.ErrorIs(t, c.Use(func() any { return nil }), ErrIncorrectMiddlewareArity)
	assert.ErrorIs(t, c.Use(nil), ErrIncorrectMiddlewareArity)
	assert.ErrorIs(t, c.AddMiddleware(nil), ErrIncorrectMiddlewareArity)
	assert.ErrorIs(t, c.Use(func(x, y, z int) {}), ErrUnsupportedMiddleware)
	assert.Equal(t, 0, c.MiddlewareCount())

	require.NoError(t, c.Use(func(payload any) any { return payload }))
	assert.Equal(t, 1, c.MiddlewareCount())
}

func TestClient_Get_BuildsQuery(t *testing.T) {
	c, rt := newTestClient("http://example.com")

	_, err := c.Get("/items", NewFields("a", 1, "b", 2), nil)
	require.NoError(t, err)

	call := rt.last()
	assert.Equal(t, "http://example.com/items?a=1&b=2", call.URL)
	assert.Equal(t, "GET", call.Method())
	assert.False(t, call.HasBody)
}

func TestClient_Get_AppendsToRouteQuery(t *testing.T) {
	c, rt := newTestClient("http://example.com")

	_, err := c.Get("/x?a=1", NewFields("b", 2), nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/x?a=1&b=2", rt.last().URL)
}

func TestClient_Delete_BuildsQuery(t *testing.T) {
	c, rt := newTestClient("http://example.com")

	_, err := c.Delete("/items", map[string]any{"id": 7}, nil)
	require.NoError(t, err)

	call := rt.last()
	assert.Equal(t, "http://example.com/items?id=7", call.URL)
	assert.Equal(t, "DELETE", call.CustomRequest)
	assert.False(t, call.HasBody)
}

func TestClient_Get_EmptyPayload(t *testing.T) {
	c, rt := newTestClient("http://example.com")

	_, err := c.Get("/items", Fields{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/items", rt.last().URL)
}

func TestClient_Post_SendsJSONBody(t *testing.T) {
	c, rt := newTestClient("http://example.com")

	_, err := c.Post("/items", NewFields("a", 1, "b", 2), nil)
	require.NoError(t, err)

	call := rt.last()
	assert.Equal(t, "http://example.com/items", call.URL)
	assert.True(t, call.Post)
	assert.Equal(t, "POST", call.Method())
	assert.Equal(t, `{"a":1,"b":2}`, call.Body)
}

func TestClient_Put_OverridesMethod(t *testing.T) {
	c, rt := newTestClient("http://example.com")

	_, err := c.Put("/items/1", "raw text", nil)
	require.NoError(t, err)

	call := rt.last()
	assert.True(t, call.Post)
	assert.Equal(t, "PUT", call.Method())
	assert.Equal(t, "raw text", call.Body)
}

func TestClient_PerCallHeadersPersist(t *testing.T) {
	c, rt := newTestClient("http://example.com")

	_, err := c.Get("/", nil, map[string]string{"X-Request": "first"})
	require.NoError(t, err)
	assert.Equal(t, "first", rt.last().Header.Get("x-request"))

	_, err = c.Get("/", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "first", rt.last().Header.Get("x-request"))
	assert.Equal(t, "first", c.Headers().Get("X-Request"))
}

func TestClient_CallOptions(t *testing.T) {
	c, rt := newTestClient("https://example.com", WithValidateSSL(false))

	_, err := c.Get("/", nil, nil)
	require.NoError(t, err)

	call := rt.last()
	assert.True(t, call.InsecureSkipVerify)
	assert.Equal(t, 443, call.Port)
	assert.Equal(t, DefaultTimeout, call.Timeout)
	assert.Equal(t, DefaultAcceptEncoding, call.AcceptEncoding)
}

func TestClient_LogsRequestAndResponse(t *testing.T) {
	type entry struct {
		tag    string
		record Fields
	}
	var logged []entry

	registry := NewRegistry()
	require.NoError(t, registry.SetLogger(LoggerFunc(func(tag string, record Fields) {
		logged = append(logged, entry{tag, record})
	})))

	rt := &recordingTransport{result: &DispatchResult{StatusCode: 201, Body: `{"id":1}`, Info: Info{}}}
	c := NewClient("http://example.com", WithTransport(rt), WithRegistry(registry))

	_, err := c.Post("/users", NewFields("name", "ada"), nil)
	require.NoError(t, err)

	require.Len(t, logged, 2)
	assert.Equal(t, TagRequestOut, logged[0].tag)
	method, _ := logged[0].record.Get("Method")
	assert.Equal(t, "POST", method)
	route, _ := logged[0].record.Get("Route")
	assert.Equal(t, "/users", route)
	payload, _ := logged[0].record.Get("Payload")
	assert.Equal(t, `{"name":"ada"}`, payload)

	assert.Equal(t, TagResponse, logged[1].tag)
	code, _ := logged[1].record.Get("Response Code")
	assert.Equal(t, 201, code)
}

func TestClient_TransferErrorSkipsHandlers(t *testing.T) {
	var logged []Fields
	registry := NewRegistry()
	require.NoError(t, registry.SetLogger(LoggerFunc(func(tag string, record Fields) {
		if tag == TagResponse {
			logged = append(logged, record)
		}
	})))
	ran := 0
	require.NoError(t, registry.AddErrorHandler(Check(func(Response) error {
		ran++
		return nil
	})))

	rt := &recordingTransport{err: errors.New("connection refused")}
	c := NewClient("http://example.com", WithTransport(rt), WithRegistry(registry))

	resp, err := c.Get("/health", nil, nil)
	assert.Nil(t, resp)

	var transferErr *TransferError
	require.ErrorAs(t, err, &transferErr)
	assert.Equal(t, "http://example.com/health", transferErr.URL)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Error(), "http://example.com/health")
	assert.Equal(t, 0, ran)

	require.Len(t, logged, 1)
	msg, _ := logged[0].Get("Transfer Error")
	assert.Contains(t, msg, "on URL http://example.com/health")
}

func TestClient_HandlerChainOrder(t *testing.T) {
	var order []string
	built := 0
	factory := func(name string, fail error) HandlerFactory {
		return func(resp Response) ErrorHandler {
			built++
			return HandlerFunc(func() error {
				order = append(order, name)
				return fail
			})
		}
	}

	registry := NewRegistry()
	require.NoError(t, registry.AddErrorHandler(factory("h1", nil), factory("h2", nil)))
	rt := &recordingTransport{}
	c := NewClient("http://example.com", WithTransport(rt), WithRegistry(registry))

	_, err := c.Get("/", nil, nil)
	require.NoError(t, err)
	_, err = c.Get("/", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"h1", "h2", "h1", "h2"}, order)
	assert.Equal(t, 4, built)
}

func TestClient_HandlerErrorStopsChain(t *testing.T) {
	failure := errors.New("bad response")
	secondRan := false

	registry := NewRegistry()
	require.NoError(t, registry.AddErrorHandler(
		Check(func(Response) error { return failure }),
		Check(func(Response) error { secondRan = true; return nil }),
	))
	c := NewClient("http://example.com", WithTransport(&recordingTransport{}), WithRegistry(registry))

	resp, err := c.Get("/", nil, nil)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, failure)
	assert.False(t, secondRan)
}

func TestClient_NilErrorHandler(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.AddErrorHandler(func(Response) ErrorHandler { return nil }))
	c := NewClient("http://example.com", WithTransport(&recordingTransport{}), WithRegistry(registry))

	resp, err := c.Get("/", nil, nil)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrNilErrorHandler)
}

type auditedResponse struct {
	*BaseResponse
	audited bool
}

func newAuditedResponse(ex *Exchange) (Response, error) {
	base, err := Capture(ex)
	if err != nil {
		return nil, err
	}
	resp := &auditedResponse{BaseResponse: base, audited: true}
	if err := base.CheckErrors(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func TestClient_SetResponseFactory(t *testing.T) {
	var seen Response
	registry := NewRegistry()
	require.NoError(t, registry.AddErrorHandler(Check(func(resp Response) error {
		seen = resp
		return nil
	})))
	c := NewClient("http://example.com", WithTransport(&recordingTransport{}), WithRegistry(registry))

	assert.ErrorIs(t, c.SetResponseFactory(nil), ErrInvalidResponseKind)
	require.NoError(t, c.SetResponseFactory(newAuditedResponse))

	resp, err := c.Get("/", nil, nil)
	require.NoError(t, err)

	audited, ok := resp.(*auditedResponse)
	require.True(t, ok)
	assert.True(t, audited.audited)
	assert.Same(t, resp, seen)
}

func TestClient_AgainstServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "go lang", r.URL.Query().Get("q"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"hits": 2}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, WithRegistry(NewRegistry()))
	resp, err := c.Get("search", NewFields("q", "go lang"), nil)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.Code())
	assert.True(t, strings.Contains(resp.RawBody(), "hits"))
	assert.Equal(t, "application/json", resp.Info()[InfoContentType])
}

func TestClient_HostWithoutScheme(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	c := NewClient(host, WithRegistry(NewRegistry()))
	_, port, _ := strings.Cut(host, ":")
	assert.Equal(t, port, strconv.Itoa(c.Port()))

	resp, err := c.Get("/", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Code())
}
