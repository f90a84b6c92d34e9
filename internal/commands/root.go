// Package commands implements the pocketbook command line.
package commands

import (
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "pocketbook",
		Short:   "Personal income and expense tracker",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newRenderCommand(),
		newListCommand(),
		newSummaryCommand(),
		newExportWorkerCommand(),
	)

	return rootCmd
}
