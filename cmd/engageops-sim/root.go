package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "engageops-sim",
	Short: "Viral engagement simulation toolkit",
	Long:  "EngageOps-Sim grows view and like counters of content items along configurable curves, backed by synthetic engagement records.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(seedBotsCmd)
}
