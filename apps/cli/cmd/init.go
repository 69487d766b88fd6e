package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/riqwest/packages/core/config"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var force bool
	var host string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a riqwest configuration file",
		Long: `Create a .riqwest.yaml configuration file in the current directory.

Examples:
  riqwest init
  riqwest init --host https://api.example.com --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			return initConfig(cmd, filepath.Join(cwd, config.ConfigFilenames[0]), host, force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files")
	cmd.Flags().StringVar(&host, "host", "http://localhost:3000", "Host that bare routes are sent to")
	return cmd
}

func initConfig(cmd *cobra.Command, path, host string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("file already exists: %s (use --force to overwrite)", path)
		}
	}

	cfg := config.DefaultConfig()
	cfg.Host = host
	cfg.Headers = map[string]string{
		"Accept": "application/json",
	}
	if err := cfg.SaveConfig(path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", path)
	fmt.Fprintf(cmd.OutOrStdout(), "\nRun 'riqwest get /health' to send a request to %s.\n", host)
	return nil
}
