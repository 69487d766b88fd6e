package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/riqwest/packages/core/config"
	"github.com/spf13/pflag"
	"golang.org/x/net/http/httpguts"
)

// requestOptions holds the flags shared by every command that sends requests
type requestOptions struct {
	configPath   string
	port         int
	headers      []string
	data         string
	dataFile     string
	vars         []string
	envFile      string
	insecure     bool
	timeout      string
	query        string
	expectStatus []int
	expect       []string
	fail         bool
	schema       string
	history      string
	logFormat    string
	noColor      bool
	verbose      bool
	requestID    string
	metricsAddr  string
}

func (o *requestOptions) bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.configPath, "config", getEnvString("RIQWEST_CONFIG", ""), "Path to config file (env: RIQWEST_CONFIG)")
	fs.IntVarP(&o.port, "port", "p", 0, "Port to connect to (default: from URL or scheme)")
	fs.StringArrayVarP(&o.headers, "header", "H", nil, "Request header as 'Name: value' (repeatable)")
	fs.StringVarP(&o.data, "data", "d", "", "Request payload; JSON objects become fields, other text is sent as-is")
	fs.StringVar(&o.dataFile, "data-file", "", "Read the request payload from a file")
	fs.StringArrayVar(&o.vars, "var", nil, "Template variable as NAME=value (repeatable)")
	fs.StringVar(&o.envFile, "env-file", getEnvString("RIQWEST_ENV_FILE", ""), "Path to .env file for template variables (env: RIQWEST_ENV_FILE)")
	fs.BoolVarP(&o.insecure, "insecure", "k", getEnvBool("RIQWEST_INSECURE", false), "Disable SSL certificate validation (env: RIQWEST_INSECURE)")
	fs.StringVar(&o.timeout, "timeout", getEnvString("RIQWEST_TIMEOUT", ""), "Request timeout (e.g., 30s, 500ms) (env: RIQWEST_TIMEOUT)")
	fs.StringVarP(&o.query, "query", "q", "", "Print only the body value at this gjson path")
	fs.IntSliceVar(&o.expectStatus, "expect-status", nil, "Fail unless the status code is one of these")
	fs.StringArrayVarP(&o.expect, "expect", "e", nil, "Fail unless the response satisfies 'subject operator [value]' (repeatable)")
	fs.BoolVarP(&o.fail, "fail", "f", false, "Fail on 4xx and 5xx responses")
	fs.StringVar(&o.schema, "schema", "", "Validate the response body against a JSON schema file")
	fs.StringVar(&o.history, "history", getEnvString("RIQWEST_HISTORY", ""), "Record requests in a SQLite database (env: RIQWEST_HISTORY)")
	fs.StringVar(&o.logFormat, "log-format", getEnvString("RIQWEST_LOG_FORMAT", ""), "Request log format: console, json, slog, none (env: RIQWEST_LOG_FORMAT)")
	fs.BoolVar(&o.noColor, "no-color", getEnvBool("RIQWEST_NO_COLOR", false), "Disable colored output (env: RIQWEST_NO_COLOR)")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "Log every request and response field")
	fs.StringVar(&o.requestID, "request-id", "", "Add a generated UUID to the payload under this field")
	fs.StringVar(&o.metricsAddr, "metrics-addr", getEnvString("RIQWEST_METRICS_ADDR", ""), "Serve Prometheus metrics on this address (env: RIQWEST_METRICS_ADDR)")
}

// loadConfig reads the config file and applies flag overrides on top of it
func (o *requestOptions) loadConfig() (*config.Config, error) {
	fileConfig, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	overrides := &config.Config{
		Port:         o.port,
		LogFormat:    o.logFormat,
		History:      o.history,
		ExpectStatus: o.expectStatus,
		Schema:       o.schema,
	}
	if o.timeout != "" {
		d, err := time.ParseDuration(o.timeout)
		if err != nil || d <= 0 {
			return nil, withExitCode(ExitUsageError, fmt.Errorf("invalid timeout value %q (use format like 30s, 1m, 500ms)", o.timeout))
		}
		overrides.Timeout = int(d.Milliseconds())
	}
	if o.insecure {
		overrides.ValidateSSL = config.BoolPtr(false)
	}
	if o.verbose {
		overrides.Verbose = config.BoolPtr(true)
	}
	if o.noColor {
		overrides.NoColor = config.BoolPtr(true)
	}
	if len(o.headers) > 0 {
		headers, err := parseHeaders(o.headers)
		if err != nil {
			return nil, withExitCode(ExitUsageError, err)
		}
		overrides.Headers = headers
	}

	cfg := fileConfig.Merge(overrides)
	if err := cfg.Validate(); err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}
	return cfg, nil
}

// parseHeaders converts "Name: value" strings into a header map
func parseHeaders(lines []string) (map[string]string, error) {
	headers := make(map[string]string, len(lines))
	for _, line := range lines {
		name, value, found := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if !found || !httpguts.ValidHeaderFieldName(name) {
			return nil, fmt.Errorf("invalid header %q, expected 'Name: value'", line)
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return nil, fmt.Errorf("invalid value for header %q", name)
		}
		headers[name] = value
	}
	return headers, nil
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
