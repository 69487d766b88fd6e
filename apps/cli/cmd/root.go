package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "riqwest",
		Short: "Send HTTP requests from the command line. No surprises.",
		Long: `riqwest sends one HTTP request at a time through a small, predictable
client: payload middleware, a single connection per request, no redirects
followed, and pluggable response checks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newSendCmd())
	for _, method := range []string{"GET", "POST", "PUT", "DELETE"} {
		root.AddCommand(newVerbCmd(method))
	}
	root.AddCommand(newBenchCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newVersionCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to a process exit code
func exitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUsageError
}
