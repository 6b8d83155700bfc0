package engine

import "engageops-sim/internal/store"

// SnapshotWriter receives committed analytics snapshots for export.
type SnapshotWriter interface {
	WriteSnapshot(store.Snapshot) error
}

// Optional: writers can also support batch mode
type batchSnapshotWriter interface {
	WriteSnapshots([]store.Snapshot) error
}
