package main

import (
	"os"

	"golang.org/x/term"

	"engageops-sim/internal/config"
	"engageops-sim/internal/engine"
)

// newExporter sets up the snapshot export chain based on config and env vars.
// It returns the writer and a cleanup function to close any resources.
func newExporter(cfg *config.Config, logFile string) (engine.SnapshotWriter, func(), error) {
	cleanup := func() {}

	writer, err := baseExporter(cfg)
	if err != nil {
		return nil, nil, err
	}

	if logFile == "" {
		logFile = cfg.Export.File
	}
	if logFile == "" {
		return writer, cleanup, nil
	}

	fw, err := engine.NewFileWriter(logFile)
	if err != nil {
		return nil, nil, err
	}
	cleanup = func() { fw.Close() }
	return engine.NewMultiWriter(writer, fw), cleanup, nil
}

// baseExporter chooses the underlying writer: GreptimeDB when an endpoint is
// configured, otherwise STDOUT (styled on interactive terminals).
func baseExporter(cfg *config.Config) (engine.SnapshotWriter, error) {
	endpoint := cfg.Export.GreptimeEndpoint
	if env := os.Getenv("GREPTIMEDB_ENDPOINT"); env != "" {
		endpoint = env
	}
	if endpoint != "" {
		table := cfg.Export.GreptimeTable
		if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
			table = env
		}
		return engine.NewGreptimeDBWriter(endpoint, "public", table)
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return &engine.ColorStdoutWriter{}, nil
	}
	return &engine.StdoutWriter{}, nil
}
