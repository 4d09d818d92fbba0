// Package cli implements the FanPulse command-line interface using Cobra.
// Each subcommand maps to one progression engine operation.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fanpulse",
	Short: "FanPulse fan progression engine",
	Long: `FanPulse tracks fan points, tiers, weekly streaks, profile completion
and prize wheel spins. State lives in ~/.fanpulse (override with FANPULSE_HOME).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
