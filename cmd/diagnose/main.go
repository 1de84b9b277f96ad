// Package main provides the diagnose command for operators of the matching service.
package main

import (
	"fmt"
	"os"

	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Diagnostics for the TechSync matching service",
	Long:  "diagnose checks recommendation latency and outcomes against a running server and grades code files locally with the same evaluators the server uses.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := logger.InitWithFormat("text", os.Stderr); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if verbose {
			return logger.SetLevelString("debug")
		}
		return logger.SetLevelString("warn")
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
