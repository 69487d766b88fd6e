package output

import (
	"fmt"
	"io"
	"os"
	"sort"

	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"
	"github.com/fatih/color"
)

// formatValue formats a value for display, truncating or summarizing large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	case rhttp.Fields:
		return fmt.Sprintf("{object with %d keys}", len(val))
	case map[string]string:
		return fmt.Sprintf("{map with %d entries}", len(val))
	case map[string][]string:
		return fmt.Sprintf("{headers with %d entries}", len(val))
	case rhttp.Info:
		return fmt.Sprintf("{info with %d entries}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if maxLen > 0 && len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

// ConsoleFormatter prints log records and responses for humans. It
// implements rhttp.Logger.
type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stderr,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// Log prints a one-line summary of the record, and every field when verbose.
func (f *ConsoleFormatter) Log(tag string, record rhttp.Fields) {
	cyan := color.New(color.FgCyan).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	switch tag {
	case rhttp.TagRequestOut:
		method, _ := record.Get("Method")
		host, _ := record.Get("Host")
		port, _ := record.Get("Port")
		route, _ := record.Get("Route")
		fmt.Fprintf(f.writer, "%s %s %v%v (port %v)\n", cyan("→"), bold(method), host, route, port)
	case rhttp.TagResponse:
		if msg, ok := record.Get("Transfer Error"); ok {
			fmt.Fprintf(f.writer, "%s %s\n", red("x"), red(fmt.Sprint(msg)))
		} else {
			code, _ := record.Get("Response Code")
			fmt.Fprintf(f.writer, "%s %s\n", cyan("←"), statusColor(code)(fmt.Sprint(code)))
		}
	default:
		fmt.Fprintf(f.writer, "%s %s\n", cyan("•"), bold(tag))
	}

	if !f.verbose {
		return
	}
	for _, fld := range record {
		f.writeField(fld)
	}
}

func (f *ConsoleFormatter) writeField(fld rhttp.Field) {
	switch v := fld.Value.(type) {
	case map[string]string:
		fmt.Fprintf(f.writer, "    %s:\n", fld.Key)
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(f.writer, "      %s: %s\n", k, v[k])
		}
	case rhttp.Info:
		fmt.Fprintf(f.writer, "    %s:\n", fld.Key)
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(f.writer, "      %s = %s\n", k, formatValue(v[k], 100))
		}
	default:
		fmt.Fprintf(f.writer, "    %s: %s\n", fld.Key, formatValue(fld.Value, 200))
	}
}

// FormatResponse prints the status line followed by the body.
func (f *ConsoleFormatter) FormatResponse(resp rhttp.Response) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("Status:"), statusColor(resp.Code())(fmt.Sprint(resp.Code())))
	if target, err := resp.RedirectURL(); err == nil {
		fmt.Fprintf(f.writer, "%s %s\n", bold("Location:"), target)
	}
	fmt.Fprintf(f.writer, "\n%s\n", resp.RawBody())
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("riqwest"), version)
}

func statusColor(code any) func(a ...interface{}) string {
	c, _ := code.(int)
	switch {
	case c >= 500:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case c >= 400:
		return color.New(color.FgRed).SprintFunc()
	case c >= 300:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgGreen).SprintFunc()
	}
}
