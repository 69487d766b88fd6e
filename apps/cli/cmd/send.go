package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

type sendOptions struct {
	requestOptions
	watch bool
}

func newSendCmd() *cobra.Command {
	opts := &sendOptions{}
	cmd := &cobra.Command{
		Use:   "send <method> <url|route>",
		Short: "Send an HTTP request",
		Long: `Send a single HTTP request and print the response.

GET and DELETE payloads are encoded into the query string; POST and PUT
payloads are sent as the JSON body. Redirects are reported, never followed.

Examples:
  riqwest send GET https://api.example.com/users
  riqwest send POST https://api.example.com/users -d '{"name": "Ada"}'
  riqwest send GET /users/{{id}} --var id=42 --config .riqwest.yaml
  riqwest send PUT /users/1 --data-file user.json --watch`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, opts, args[0], args[1])
		},
	}
	opts.bind(cmd.Flags())
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-send whenever --data-file changes")
	return cmd
}

func newVerbCmd(method string) *cobra.Command {
	opts := &sendOptions{}
	cmd := &cobra.Command{
		Use:   strings.ToLower(method) + " <url|route>",
		Short: fmt.Sprintf("Send a %s request", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, opts, method, args[0])
		},
	}
	opts.bind(cmd.Flags())
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-send whenever --data-file changes")
	return cmd
}

func runSend(cmd *cobra.Command, opts *sendOptions, method, target string) error {
	if opts.watch && opts.dataFile == "" {
		return withExitCode(ExitUsageError, fmt.Errorf("--watch requires --data-file"))
	}

	s, err := newSession(&opts.requestOptions, target, cmd.OutOrStdout(), cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer s.Close()

	err = sendAndPrint(s, method, cmd.OutOrStdout())
	if !opts.watch {
		return err
	}
	if err != nil {
		s.console.FormatError(err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchPayload(ctx, s, method, cmd.OutOrStdout())
}

// sendAndPrint sends one request and writes the response, or the --query
// selection of its body, to w.
func sendAndPrint(s *session, method string, w io.Writer) error {
	resp, err := s.send(method)
	if err != nil {
		return err
	}
	printResponse(s, resp, w)
	return nil
}

func printResponse(s *session, resp rhttp.Response, w io.Writer) {
	if s.opts.query == "" {
		s.console.FormatResponse(resp)
		return
	}
	switch body := resp.Body(false).(type) {
	case gjson.Result:
		fmt.Fprintln(w, body.Get(s.opts.query).String())
	default:
		fmt.Fprintln(w, resp.RawBody())
	}
}

// watchPayload re-sends the request whenever the payload file is written,
// until ctx is done.
func watchPayload(ctx context.Context, s *session, method string, w io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(s.opts.dataFile)
	if err != nil {
		return err
	}
	// Watch the directory so editors that replace the file are still seen.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", target, err)
	}

	fmt.Fprintf(w, "\nWatching %s for changes... (press Ctrl+C to stop)\n\n", s.opts.dataFile)

	// Sends run on this goroutine. The debounce timer only signals.
	var (
		debounce *time.Timer
		fire     <-chan time.Time
		changed  string
	)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(WatchDebounceDelay)
			fire = debounce.C
			changed = event.Name

		case <-fire:
			fire = nil
			fmt.Fprintf(w, "\nFile changed: %s\nRe-sending...\n\n", changed)
			if err := sendAndPrint(s, method, w); err != nil {
				s.console.FormatError(err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.console.FormatError(fmt.Errorf("watcher error: %w", err))
		}
	}
}
