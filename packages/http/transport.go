package http

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the total time allowed for one call
	DefaultTimeout = 30 * time.Second
	// DefaultAcceptEncoding is offered when no accept-encoding header is set
	DefaultAcceptEncoding = "gzip, deflate"
)

// Info keys reported by HTTPTransport.
const (
	InfoURL         = "url"
	InfoHTTPCode    = "http_code"
	InfoContentType = "content_type"
	InfoTotalTime   = "total_time"
	InfoPrimaryPort = "primary_port"
	InfoHeader      = "header"
	InfoRedirectURL = "redirect_url"
)

// Info is the transfer metadata captured alongside a response.
type Info map[string]any

// RedirectURL returns the redirect target, if the transport reported one.
func (i Info) RedirectURL() (string, bool) {
	v, ok := i[InfoRedirectURL].(string)
	return v, ok && v != ""
}

// DispatchResult is what a single transport call produced.
type DispatchResult struct {
	StatusCode int
	Body       string
	Info       Info
}

// CallSpec is the logical request handed to BuildCall.
type CallSpec struct {
	URL         string
	Port        int
	Method      string
	Payload     any
	Header      *Headers
	Timeout     time.Duration
	ValidateSSL bool
}

// Call is the transport-level description of one outbound request.
type Call struct {
	URL  string
	Port int
	// Post is set when the call carries a body (POST and PUT).
	Post bool
	// CustomRequest overrides the verb for anything other than GET and POST.
	CustomRequest      string
	Header             *Headers
	Payload            string
	HasPayload         bool
	Body               string
	HasBody            bool
	InsecureSkipVerify bool
	AcceptEncoding     string
	Timeout            time.Duration
}

// Method returns the verb that goes on the wire.
func (c *Call) Method() string {
	if c.CustomRequest != "" {
		return c.CustomRequest
	}
	if c.Post {
		return http.MethodPost
	}
	return http.MethodGet
}

// BuildCall maps a logical request onto transport options. It performs no I/O.
func BuildCall(in CallSpec) (*Call, error) {
	method := strings.ToUpper(in.Method)
	call := &Call{
		URL:                in.URL,
		Port:               in.Port,
		Post:               method == http.MethodPost || method == http.MethodPut,
		Header:             in.Header.Clone(),
		InsecureSkipVerify: !in.ValidateSSL,
		AcceptEncoding:     DefaultAcceptEncoding,
		Timeout:            in.Timeout,
	}
	if call.Timeout <= 0 {
		call.Timeout = DefaultTimeout
	}
	if method != http.MethodGet && method != http.MethodPost {
		call.CustomRequest = method
	}

	encoded, ok, err := EncodePayload(in.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	call.Payload = encoded
	call.HasPayload = ok
	if call.Post && ok {
		call.Body = encoded
		call.HasBody = true
	}
	return call, nil
}

// Transport executes a call. A non-nil error is a transfer error: the call
// itself failed, as opposed to the server answering with an error status.
type Transport interface {
	Execute(ctx context.Context, call *Call) (*DispatchResult, error)
}

// TransportFunc adapts a function into a Transport.
type TransportFunc func(ctx context.Context, call *Call) (*DispatchResult, error)

func (f TransportFunc) Execute(ctx context.Context, call *Call) (*DispatchResult, error) {
	return f(ctx, call)
}

// HTTPTransport executes calls with net/http. Every call uses a fresh
// connection and redirects are reported, never followed.
type HTTPTransport struct {
	verified *http.Client
	insecure *http.Client
}

func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{
		verified: newHTTPClient(false),
		insecure: newHTTPClient(true),
	}
}

func newHTTPClient(skipVerify bool) *http.Client {
	transport := &http.Transport{
		Proxy:              http.ProxyFromEnvironment,
		DisableKeepAlives:  true,
		DisableCompression: true,
	}
	if skipVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}
	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (t *HTTPTransport) Execute(ctx context.Context, call *Call) (*DispatchResult, error) {
	target, err := resolveURL(call.URL, call.Port)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, call.Timeout)
	defer cancel()

	var body io.Reader
	if call.HasBody {
		body = strings.NewReader(call.Body)
	}
	req, err := http.NewRequestWithContext(ctx, call.Method(), target.String(), body)
	if err != nil {
		return nil, err
	}
	call.Header.Each(func(k, v string) {
		req.Header.Set(k, v)
	})
	if call.AcceptEncoding != "" && !call.Header.Has("Accept-Encoding") {
		req.Header.Set("Accept-Encoding", call.AcceptEncoding)
	}

	client := t.verified
	if call.InsecureSkipVerify {
		client = t.insecure
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	decoded, err := decodeBody(resp.Header.Get("Content-Encoding"), raw)
	if err != nil {
		return &DispatchResult{StatusCode: resp.StatusCode, Body: string(raw)}, err
	}

	info := Info{
		InfoURL:         target.String(),
		InfoHTTPCode:    resp.StatusCode,
		InfoContentType: resp.Header.Get("Content-Type"),
		InfoTotalTime:   time.Since(start),
		InfoPrimaryPort: call.Port,
		InfoHeader:      resp.Header.Clone(),
	}
	if loc, err := resp.Location(); err == nil {
		info[InfoRedirectURL] = loc.String()
	}

	return &DispatchResult{
		StatusCode: resp.StatusCode,
		Body:       string(decoded),
		Info:       info,
	}, nil
}

// resolveURL parses a composed URL, defaulting to http when it carries no
// scheme, and applies the call port.
func resolveURL(raw string, port int) (*neturl.URL, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := neturl.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("URL must have a host")
	}
	if port > 0 {
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(port))
	}
	return u, nil
}

func decodeBody(encoding string, raw []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip", "x-gzip":
		r, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	case "deflate":
		// servers disagree on whether deflate means zlib-wrapped or raw
		if r, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
			defer r.Close()
			return io.ReadAll(r)
		}
		r := flate.NewReader(bytes.NewReader(raw))
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("deflate body: %w", err)
		}
		return out, nil
	default:
		return raw, nil
	}
}
