// Package cli implements the estateflow command line.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the top-level "estateflow" command and registers all subcommands
func NewRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "estateflow",
		Short:         "Real-estate price derivation and payment schedule service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Optional configuration file; environment variables take precedence")

	loadConfig := func() string { return configFile }

	root.AddCommand(
		newServeCmd(loadConfig),
		newMigrateCmd(loadConfig),
		newSeedCmd(loadConfig),
		newQuoteCmd(),
	)

	return root
}
