package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/abdul-hamid-achik/riqwest/packages/core/config"
	"github.com/abdul-hamid-achik/riqwest/packages/db"
	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type historyOptions struct {
	configPath string
	database   string
	limit      int
	json       bool
	noColor    bool
}

func newHistoryCmd() *cobra.Command {
	opts := &historyOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show requests recorded with --history",
		Long: `Show the most recent request and response records stored by --history.

Examples:
  riqwest history --db history.db
  riqwest history --db sqlite://history.db -n 5 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", getEnvString("RIQWEST_CONFIG", ""), "Path to config file (env: RIQWEST_CONFIG)")
	cmd.Flags().StringVar(&opts.database, "db", getEnvString("RIQWEST_HISTORY", ""), "History database (default: history from config) (env: RIQWEST_HISTORY)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "Number of records to show")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output records as JSON")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", getEnvBool("RIQWEST_NO_COLOR", false), "Disable colored output (env: RIQWEST_NO_COLOR)")
	return cmd
}

func runHistory(cmd *cobra.Command, opts *historyOptions) error {
	database := opts.database
	if database == "" {
		cfg, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return withExitCode(ExitConfigError, err)
		}
		database = cfg.History
	}
	if database == "" {
		return withExitCode(ExitUsageError, fmt.Errorf("no history database: pass --db or set history in the config file"))
	}

	h, err := db.Open(database)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	defer h.Close()

	entries, err := h.Recent(opts.limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if opts.noColor {
		color.NoColor = true
	}
	dim := color.New(color.Faint).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	for _, e := range entries {
		fmt.Fprintf(out, "%s %s %s\n", dim(e.CreatedAt.Format("2006-01-02 15:04:05")), cyan(fmt.Sprintf("%-11s", e.Tag)), summarizeRecord(e))
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No requests recorded.")
	}
	return nil
}

func summarizeRecord(e db.Entry) string {
	switch e.Tag {
	case rhttp.TagRequestOut:
		return fmt.Sprintf("%v %v%v", e.Record["Method"], e.Record["Host"], e.Record["Route"])
	default:
		if transferErr, ok := e.Record["Transfer Error"]; ok {
			return fmt.Sprintf("x %v", transferErr)
		}
		return fmt.Sprintf("%v", e.Record["Response Code"])
	}
}
