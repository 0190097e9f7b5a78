package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the judgeproxy command tree
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "judgeproxy",
		Short:         "judgeproxy CLI - Run code on a Judge0 backend",
		Long:          `A command line interface for the judgeproxy code execution server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("url", "u", "http://localhost:8000", "judgeproxy API URL")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(
		NewExecuteCommand(),
		NewListCommand(),
		NewVersionCommand(version),
	)

	return rootCmd
}
