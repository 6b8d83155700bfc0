// Writer implementations printing snapshots to STDOUT
package engine

import (
	"encoding/json"
	"fmt"

	"engageops-sim/internal/store"

	"github.com/charmbracelet/lipgloss"
)

// StdoutWriter prints snapshots to STDOUT as JSON lines.
type StdoutWriter struct{}

// WriteSnapshot outputs a single snapshot.
func (w *StdoutWriter) WriteSnapshot(snap store.Snapshot) error {
	data, _ := json.Marshal(snap)
	fmt.Println(string(data))
	return nil
}

// WriteSnapshots outputs multiple snapshots.
func (w *StdoutWriter) WriteSnapshots(snaps []store.Snapshot) error {
	for _, s := range snaps {
		_ = w.WriteSnapshot(s)
	}
	return nil
}

var (
	idStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	viewStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	likeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	rateStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true)
	curveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
)

// ColorStdoutWriter prints one styled line per snapshot for interactive
// terminals.
type ColorStdoutWriter struct{}

// WriteSnapshot outputs a single styled snapshot line.
func (w *ColorStdoutWriter) WriteSnapshot(snap store.Snapshot) error {
	line := fmt.Sprintf("%s %s views=%s likes=%s rate=%s",
		snap.CreatedAt.Format("15:04:05"),
		idStyle.Render(snap.ContentID),
		viewStyle.Render(fmt.Sprintf("%d", snap.Views)),
		likeStyle.Render(fmt.Sprintf("%d", snap.Likes)),
		rateStyle.Render(fmt.Sprintf("%.2f%%", snap.EngagementRate)),
	)
	if shape, ok := snap.Metadata["curve_shape"].(string); ok {
		line += " " + curveStyle.Render(shape)
	}
	fmt.Println(line)
	return nil
}

// WriteSnapshots outputs multiple styled snapshot lines.
func (w *ColorStdoutWriter) WriteSnapshots(snaps []store.Snapshot) error {
	for _, s := range snaps {
		_ = w.WriteSnapshot(s)
	}
	return nil
}
