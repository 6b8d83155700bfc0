package main

import (
	"time"

	"github.com/spf13/cobra"

	"engageops-sim/internal/tui"
)

var (
	dashAddr string
	dashPoll time.Duration
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the terminal dashboard",
	Long:  "dashboard connects to a running simulator's admin API and renders active simulations and pass results.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(tui.NewClient(dashAddr), dashPoll)
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashAddr, "addr", "http://localhost:8080", "Base URL of the admin API")
	dashboardCmd.Flags().DurationVar(&dashPoll, "poll", 2*time.Second, "Poll interval for API refreshes")
}
