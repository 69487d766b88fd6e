package bench

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
)

// Report writes a human-readable summary
func Report(w io.Writer, s *Summary) {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(w, "\n%s\n", bold("Summary"))
	fmt.Fprintf(w, "  Requests:  %d in %s (%.1f req/s)\n", s.TotalRequests, s.Duration.Round(time.Millisecond), s.RPS)

	failed := s.TransferErrors + s.HandlerErrors
	if failed == 0 {
		fmt.Fprintf(w, "  Errors:    %s\n", green("0"))
	} else {
		fmt.Fprintf(w, "  Errors:    %s (%d transfer, %d handler, %.2f%%)\n",
			red(fmt.Sprint(failed)), s.TransferErrors, s.HandlerErrors, s.ErrorRate*100)
	}

	codes := make([]int, 0, len(s.StatusCodes))
	for code := range s.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		label := green(fmt.Sprint(code))
		if code >= 400 {
			label = red(fmt.Sprint(code))
		} else if code >= 300 {
			label = yellow(fmt.Sprint(code))
		}
		fmt.Fprintf(w, "  Status %s: %d\n", label, s.StatusCodes[code])
	}

	fmt.Fprintf(w, "\n%s\n", bold("Latency"))
	fmt.Fprintf(w, "  min %v  mean %v  max %v\n", s.Min, s.Mean, s.Max)
	fmt.Fprintf(w, "  p50 %v  p90 %v  p95 %v  p99 %v\n", s.P50, s.P90, s.P95, s.P99)
}
