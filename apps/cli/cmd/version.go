package cmd

import (
	"fmt"

	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "riqwest version %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Client: %s\n", rhttp.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Built: %s\n", buildTime)
		},
	}
}
