package engine

import (
	"encoding/json"
	"os"

	"engageops-sim/internal/store"
)

// FileWriter appends snapshots to a JSONL file.
type FileWriter struct {
	file *os.File
	enc  *json.Encoder
}

// NewFileWriter creates (or truncates) the export file at path.
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileWriter{file: f, enc: json.NewEncoder(f)}, nil
}

// WriteSnapshot logs a single snapshot.
func (f *FileWriter) WriteSnapshot(snap store.Snapshot) error {
	return f.enc.Encode(snap)
}

// WriteSnapshots logs multiple snapshots.
func (f *FileWriter) WriteSnapshots(snaps []store.Snapshot) error {
	for _, s := range snaps {
		if err := f.WriteSnapshot(s); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the underlying file.
func (f *FileWriter) Close() error {
	return f.file.Close()
}
