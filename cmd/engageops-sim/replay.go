package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"engageops-sim/internal/config"
	"engageops-sim/internal/engine"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a snapshot log file",
	Long:  "replay feeds snapshots from a JSONL log file back into GreptimeDB or STDOUT, paced by their timestamps.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		var writer engine.SnapshotWriter
		var err error
		if replayPrintOnly {
			if term.IsTerminal(int(os.Stdout.Fd())) {
				writer = &engine.ColorStdoutWriter{}
			} else {
				writer = &engine.StdoutWriter{}
			}
		} else {
			writer, err = baseExporter(&config.Config{})
			if err != nil {
				return err
			}
		}
		return engine.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to snapshot log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print snapshots to STDOUT instead of writing to DB")
	replayCmd.MarkFlagRequired("input")
}
