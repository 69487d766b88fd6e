package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/riqwest/packages/assertions"
	"github.com/abdul-hamid-achik/riqwest/packages/core/config"
	"github.com/abdul-hamid-achik/riqwest/packages/core/env"
	"github.com/abdul-hamid-achik/riqwest/packages/db"
	"github.com/abdul-hamid-achik/riqwest/packages/handlers"
	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"
	"github.com/abdul-hamid-achik/riqwest/packages/metrics"
	"github.com/abdul-hamid-achik/riqwest/packages/middleware"
	"github.com/abdul-hamid-achik/riqwest/packages/output"
)

// session wires one configured client together with its loggers and checks
type session struct {
	opts     *requestOptions
	cfg      *config.Config
	client   *rhttp.Client
	route    string
	resolver *env.Resolver
	console  *output.ConsoleFormatter
	recorder *metrics.Recorder
	history  *db.History
	closers  []func() error
}

// newSession builds a client for target. With quiet set, per-request log
// lines are suppressed; history and metrics are still recorded.
func newSession(opts *requestOptions, target string, stdout, stderr io.Writer, quiet bool) (*session, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	s := &session{
		opts: opts,
		cfg:  cfg,
		console: output.NewConsoleFormatter(
			output.WithWriter(stdout),
			output.WithVerbose(cfg.GetVerbose()),
			output.WithNoColor(cfg.GetNoColor()),
		),
	}

	s.resolver, err = newResolver(opts, stderr)
	if err != nil {
		return nil, err
	}

	host, route, err := splitTarget(s.resolver.Resolve(target), cfg.Host)
	if err != nil {
		return nil, withExitCode(ExitUsageError, err)
	}
	s.route = route
	cfg.Headers = s.resolver.ResolveAll(cfg.Headers)

	registry := rhttp.NewRegistry()
	var loggers rhttp.MultiLogger
	if !quiet {
		if l := requestLogger(cfg, stderr); l != nil {
			loggers = append(loggers, l)
		}
	}
	if cfg.History != "" {
		s.history, err = db.Open(cfg.History)
		if err != nil {
			return nil, withExitCode(ExitConfigError, fmt.Errorf("open history: %w", err))
		}
		s.closers = append(s.closers, s.history.Close)
		loggers = append(loggers, s.history)
	}
	if opts.metricsAddr != "" {
		s.recorder = metrics.New()
		loggers = append(loggers, s.recorder)
		if err := s.serveMetrics(opts.metricsAddr, stderr); err != nil {
			s.Close()
			return nil, withExitCode(ExitConfigError, err)
		}
	}
	if len(loggers) > 0 {
		if err := registry.SetLogger(loggers); err != nil {
			s.Close()
			return nil, err
		}
	}

	if err := s.addChecks(registry); err != nil {
		s.Close()
		return nil, err
	}
	registry.Freeze()

	clientOpts := append(cfg.ClientOptions(), rhttp.WithRegistry(registry))
	if opts.requestID != "" {
		clientOpts = append(clientOpts, rhttp.WithMiddleware(middleware.RequestID(opts.requestID)))
	}
	s.client = rhttp.NewClient(host, clientOpts...)

	return s, nil
}

func newResolver(opts *requestOptions, stderr io.Writer) (*env.Resolver, error) {
	resolver := env.NewResolver()
	resolver.SetWarnFunc(func(format string, args ...any) {
		fmt.Fprintf(stderr, "warning: "+format+"\n", args...)
	})
	vars, err := env.LoadVariables(opts.envFile, opts.vars)
	switch {
	case errors.Is(err, env.ErrEnvFile):
		return nil, withExitCode(ExitConfigError, err)
	case err != nil:
		return nil, withExitCode(ExitUsageError, err)
	}
	resolver.SetVariables(vars)
	return resolver, nil
}

func requestLogger(cfg *config.Config, w io.Writer) rhttp.Logger {
	switch cfg.LogFormat {
	case config.LogFormatNone:
		return nil
	case config.LogFormatJSON:
		return output.NewJSONLogger(output.WithJSONWriter(w))
	case config.LogFormatSlog:
		level := slog.LevelInfo
		if cfg.GetVerbose() {
			level = slog.LevelDebug
		}
		return output.NewSlogLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	default:
		return output.NewConsoleFormatter(
			output.WithWriter(w),
			output.WithVerbose(cfg.GetVerbose()),
			output.WithNoColor(cfg.GetNoColor()),
		)
	}
}

func (s *session) addChecks(registry *rhttp.Registry) error {
	switch {
	case len(s.cfg.ExpectStatus) > 0:
		if err := registry.AddErrorHandler(handlers.ExpectStatus(s.cfg.ExpectStatus...)); err != nil {
			return err
		}
	case s.opts.fail:
		if err := registry.AddErrorHandler(handlers.Status()); err != nil {
			return err
		}
	}
	if len(s.opts.expect) > 0 {
		parsed, err := assertions.ParseAll(s.opts.expect)
		if err != nil {
			return withExitCode(ExitUsageError, err)
		}
		if err := registry.AddErrorHandler(assertions.Expect(parsed...)); err != nil {
			return err
		}
	}
	if s.cfg.Schema != "" {
		schema, err := handlers.SchemaFile(s.cfg.Schema)
		if err != nil {
			return withExitCode(ExitConfigError, err)
		}
		if err := registry.AddErrorHandler(schema); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) serveMetrics(addr string, stderr io.Writer) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.recorder.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(stderr, "warning: metrics server: %v\n", err)
		}
	}()
	s.closers = append(s.closers, srv.Close)
	fmt.Fprintf(stderr, "Prometheus metrics available at http://%s/metrics\n", ln.Addr())
	return nil
}

// payload reads the request payload. It is re-read on every call so watch
// mode picks up file edits.
func (s *session) payload() (any, error) {
	text := s.opts.data
	if s.opts.dataFile != "" {
		data, err := os.ReadFile(s.opts.dataFile)
		if err != nil {
			return nil, withExitCode(ExitInputError, fmt.Errorf("read payload: %w", err))
		}
		text = string(data)
	}
	text = strings.TrimSpace(s.resolver.Resolve(text))
	if text == "" {
		return nil, nil
	}
	if rhttp.IsJSON(text) {
		payload, err := rhttp.ParseJSON(text)
		if err != nil {
			return nil, withExitCode(ExitInputError, err)
		}
		return payload, nil
	}
	return text, nil
}

// send issues one request and classifies the failure, if any
func (s *session) send(method string) (rhttp.Response, error) {
	payload, err := s.payload()
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Request(method, s.route, payload, nil)
	if err != nil {
		return nil, classifyRequestError(err)
	}
	return resp, nil
}

func (s *session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}

// splitTarget separates an absolute URL into host and route. A bare route is
// combined with the configured host.
func splitTarget(target, configHost string) (string, string, error) {
	if !strings.Contains(target, "://") {
		if configHost == "" {
			return "", "", fmt.Errorf("%q is not an absolute URL and no host is configured", target)
		}
		return configHost, target, nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", "", fmt.Errorf("invalid URL %q: %w", target, err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("URL %q has no host", target)
	}
	route := u.EscapedPath()
	if u.RawQuery != "" {
		route += "?" + u.RawQuery
	}
	return u.Scheme + "://" + u.Host, route, nil
}
