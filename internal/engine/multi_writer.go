package engine

import "engageops-sim/internal/store"

// MultiWriter fans snapshots out to multiple writers.
type MultiWriter struct {
	writers []SnapshotWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(writers ...SnapshotWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteSnapshot sends a snapshot to all writers.
func (mw *MultiWriter) WriteSnapshot(snap store.Snapshot) error {
	for _, w := range mw.writers {
		if err := w.WriteSnapshot(snap); err != nil {
			return err
		}
	}
	return nil
}

// WriteSnapshots sends multiple snapshots to all writers, using batch mode
// where supported.
func (mw *MultiWriter) WriteSnapshots(snaps []store.Snapshot) error {
	for _, w := range mw.writers {
		if bw, ok := w.(batchSnapshotWriter); ok {
			if err := bw.WriteSnapshots(snaps); err != nil {
				return err
			}
			continue
		}
		for _, s := range snaps {
			if err := w.WriteSnapshot(s); err != nil {
				return err
			}
		}
	}
	return nil
}
