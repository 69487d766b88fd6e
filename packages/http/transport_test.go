package http

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverPort(t *testing.T, server *httptest.Server) int {
	t.Helper()
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return port
}

func TestBuildCall(t *testing.T) {
	tests := []struct {
		method     string
		wantMethod string
		wantBody   bool
	}{
		{"GET", "GET", false},
		{"post", "POST", true},
		{"PUT", "PUT", true},
		{"DELETE", "DELETE", false},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			call, err := BuildCall(CallSpec{
				URL:         "http://example.com/x",
				Port:        80,
				Method:      tt.method,
				Payload:     map[string]int{"a": 1},
				Header:      DefaultHeaders(),
				ValidateSSL: true,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantMethod, call.Method())
			assert.Equal(t, tt.wantBody, call.HasBody)
			assert.Equal(t, `{"a":1}`, call.Payload)
			assert.False(t, call.InsecureSkipVerify)
			assert.Equal(t, DefaultTimeout, call.Timeout)
		})
	}
}

func TestBuildCall_HeadersAreCopied(t *testing.T) {
	headers := NewHeaders()
	headers.Set("A", "1")

	call, err := BuildCall(CallSpec{URL: "http://example.com", Method: "GET", Header: headers})
	require.NoError(t, err)
	headers.Set("A", "2")

	assert.Equal(t, "1", call.Header.Get("a"))
}

func TestBuildCall_EncodeError(t *testing.T) {
	_, err := BuildCall(CallSpec{URL: "http://example.com", Method: "POST", Payload: make(chan int)})
	assert.Error(t, err)
}

func TestHTTPTransport_Methods(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Method", r.Method)
		_, _ = w.Write(body)
	}))
	defer server.Close()

	transport := NewHTTPTransport()
	for _, method := range []string{"POST", "PUT"} {
		call, err := BuildCall(CallSpec{
			URL:     server.URL + "/echo",
			Port:    serverPort(t, server),
			Method:  method,
			Payload: "hello",
			Header:  NewHeaders(),
		})
		require.NoError(t, err)

		result, err := transport.Execute(context.Background(), call)
		require.NoError(t, err)
		assert.Equal(t, 200, result.StatusCode)
		assert.Equal(t, "hello", result.Body)
		header := result.Info[InfoHeader].(http.Header)
		assert.Equal(t, method, header.Get("X-Method"))
	}
}

func TestHTTPTransport_DoesNotFollowRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/final" {
			_, _ = w.Write([]byte("final"))
			return
		}
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	c := NewClient(server.URL, WithRegistry(NewRegistry()))
	resp, err := c.Get("/start", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, resp.Code())
	assert.True(t, resp.IsRedirect())
	target, err := resp.RedirectURL()
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/final", target)
}

func TestHTTPTransport_DecodesGzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultAcceptEncoding, r.Header.Get("Accept-Encoding"))
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, _ = zw.Write([]byte(`{"zipped":true}`))
		_ = zw.Close()
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(buf.Bytes())
	}))
	defer server.Close()

	call, err := BuildCall(CallSpec{URL: server.URL, Port: serverPort(t, server), Method: "GET", Header: NewHeaders()})
	require.NoError(t, err)

	result, err := NewHTTPTransport().Execute(context.Background(), call)
	require.NoError(t, err)
	assert.Equal(t, `{"zipped":true}`, result.Body)
}

func TestHTTPTransport_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient(server.URL, WithTimeout(50*time.Millisecond), WithRegistry(NewRegistry()))
	_, err := c.Get("/", nil, nil)

	var transferErr *TransferError
	require.ErrorAs(t, err, &transferErr)
	assert.Contains(t, err.Error(), "context deadline exceeded")
}

func TestHTTPTransport_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	host := server.URL
	server.Close()

	c := NewClient(host, WithRegistry(NewRegistry()))
	_, err := c.Get("/", nil, nil)

	var transferErr *TransferError
	require.ErrorAs(t, err, &transferErr)
	assert.Equal(t, host+"/", transferErr.URL)
}

func TestResolveURL(t *testing.T) {
	u, err := resolveURL("example.com/a?b=1", 8080)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com:8080/a?b=1", u.String())

	u, err = resolveURL("https://example.com:1/a", 443)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com:443/a", u.String())

	_, err = resolveURL("http:///nohost", 80)
	assert.Error(t, err)
}
