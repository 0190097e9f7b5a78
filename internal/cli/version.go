package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewVersionCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version information for the judgeproxy CLI.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "judgeproxy CLI v%s\n", version)
			fmt.Fprintln(cmd.OutOrStdout(), "Compatible with judgeproxy API v1")
		},
	}

	return cmd
}
