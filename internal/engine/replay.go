package engine

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"engageops-sim/internal/store"
)

// ReplayLog replays exported snapshots from r to writer, pacing them by
// their recorded timestamps. A speed > 1 accelerates playback; speed <= 0
// disables the artificial delay.
func ReplayLog(r io.Reader, writer SnapshotWriter, speed float64) error {
	dec := json.NewDecoder(r)
	var prev time.Time
	for {
		var snap store.Snapshot
		if err := dec.Decode(&snap); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !prev.IsZero() && speed > 0 {
			diff := snap.CreatedAt.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				time.Sleep(diff)
			}
		}
		if err := writer.WriteSnapshot(snap); err != nil {
			return err
		}
		prev = snap.CreatedAt
	}
}

// ReplayLogFile opens a snapshot export file and replays its rows.
func ReplayLogFile(path string, writer SnapshotWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayLog(f, writer, speed)
}
