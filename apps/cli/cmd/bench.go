package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/riqwest/packages/bench"
	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"
	"github.com/spf13/cobra"
)

type benchOptions struct {
	requestOptions
	requests int
	rate     float64
	duration time.Duration
	json     bool
}

func newBenchCmd() *cobra.Command {
	opts := &benchOptions{}
	cmd := &cobra.Command{
		Use:   "bench <method> <url|route>",
		Short: "Send the same request repeatedly and summarize latencies",
		Long: `Send the same request sequentially, optionally paced, and report latency
percentiles, status codes, and failures.

Examples:
  riqwest bench GET https://api.example.com/health -n 200
  riqwest bench POST /orders -d '{"sku": "A1"}' --rate 20 --duration 30s
  riqwest bench GET /health -n 1000 --metrics-addr :9090`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, opts, args[0], args[1])
		},
	}
	opts.bind(cmd.Flags())
	cmd.Flags().IntVarP(&opts.requests, "requests", "n", getEnvInt("RIQWEST_BENCH_REQUESTS", 100), "Number of requests to send (env: RIQWEST_BENCH_REQUESTS)")
	cmd.Flags().Float64VarP(&opts.rate, "rate", "r", 0, "Target requests per second (0 = as fast as possible)")
	cmd.Flags().DurationVar(&opts.duration, "duration", 0, "Stop after this long even if requests remain")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output the summary as JSON")
	return cmd
}

func runBench(cmd *cobra.Command, opts *benchOptions, method, target string) error {
	cfg := bench.Config{
		Requests: opts.requests,
		Rate:     opts.rate,
		Duration: opts.duration,
	}
	if err := cfg.Validate(); err != nil {
		return withExitCode(ExitUsageError, err)
	}

	s, err := newSession(&opts.requestOptions, target, cmd.OutOrStdout(), cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := bench.Run(ctx, cfg, func() (rhttp.Response, error) {
		return s.send(method)
	})
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return err
		}
	} else {
		bench.Report(cmd.OutOrStdout(), summary)
	}

	if failed := summary.TransferErrors + summary.HandlerErrors; failed > 0 {
		return withExitCode(ExitCheckFailure, fmt.Errorf("%d of %d requests failed", failed, summary.TotalRequests))
	}
	return nil
}
