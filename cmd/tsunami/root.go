package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Tsunami CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tsunami",
		Short: "Tsunami - a dynamic plugin host",
		Long: `Tsunami loads independently compiled plugins at runtime, verifying
toolchain and interface versions before trusting them, and drives them
with a stream of trigger values.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewListCmd())

	return cmd
}
