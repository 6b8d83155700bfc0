package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"engageops-sim/internal/engine"
	"engageops-sim/internal/registry"
)

func TestSimsMsgPopulatesTable(t *testing.T) {
	m := NewModel(NewClient("http://unused"), time.Second)

	updated, _ := m.Update(simsMsg{
		{
			Simulation:   registry.Simulation{TargetID: "content-1", Curve: "sigmoid", MaxViews: 10000, MaxLikes: 500},
			ElapsedHours: 36,
			Progress:     0.5,
		},
	})
	m = updated.(Model)

	rows := m.table.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0][0] != "content-1" || rows[0][1] != "sigmoid" {
		t.Errorf("unexpected row: %v", rows[0])
	}
	if rows[0][5] != "50%" {
		t.Errorf("unexpected progress cell: %q", rows[0][5])
	}
}

func TestPassMsgAppendsLog(t *testing.T) {
	m := NewModel(NewClient("http://unused"), time.Second)

	updated, _ := m.Update(passMsg{
		{TargetID: "content-1", Success: true, CurrentViews: 1200, DeltaViews: 200, CurrentLikes: 60, DeltaLikes: 10, Progress: 0.25},
		{TargetID: "content-2", Success: false, Error: "content item not found"},
	})
	m = updated.(Model)

	if len(m.logs) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(m.logs))
	}
	if !strings.Contains(m.logs[0], "content-1") || !strings.Contains(m.logs[0], "+200") {
		t.Errorf("unexpected pass line: %q", m.logs[0])
	}
	if !strings.Contains(m.logs[1], "FAIL") || !strings.Contains(m.logs[1], "content item not found") {
		t.Errorf("unexpected failure line: %q", m.logs[1])
	}
}

func TestErrMsgShownInFooter(t *testing.T) {
	m := NewModel(NewClient("http://unused"), time.Second)

	updated, _ := m.Update(errMsg{err: context.DeadlineExceeded})
	m = updated.(Model)

	if !strings.Contains(m.View(), "deadline exceeded") {
		t.Error("expected error to surface in the view")
	}
}

func TestStopDialogFlow(t *testing.T) {
	m := NewModel(NewClient("http://unused"), time.Second)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	m = updated.(Model)
	if !m.stopDialog {
		t.Fatal("expected stop dialog to open on 'x'")
	}

	for _, r := range "content-1" {
		updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(Model)
	}
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if m.stopDialog {
		t.Error("expected dialog to close on enter")
	}
	if cmd == nil {
		t.Error("expected a stop command to be issued")
	}
}

func TestClientAgainstAdminAPI(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/simulations", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]registry.Status{
			{Simulation: registry.Simulation{TargetID: "content-1"}, Progress: 0.1},
		})
	})
	mux.HandleFunc("/last-pass", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]engine.UpdateResult{{TargetID: "content-1", Success: true}})
	})
	mux.HandleFunc("/stop-simulation", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("target") != "content-1" {
			http.Error(w, "wrong target", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"stopped": "content-1"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	sims, err := c.ListSimulations(ctx)
	if err != nil {
		t.Fatalf("ListSimulations: %v", err)
	}
	if len(sims) != 1 || sims[0].TargetID != "content-1" {
		t.Errorf("unexpected simulations: %+v", sims)
	}

	results, err := c.LastPass(ctx)
	if err != nil {
		t.Fatalf("LastPass: %v", err)
	}
	if len(results) != 1 || !results[0].Success {
		t.Errorf("unexpected last pass: %+v", results)
	}

	if err := c.StopSimulation(ctx, "content-1"); err != nil {
		t.Errorf("StopSimulation: %v", err)
	}
	if err := c.StopSimulation(ctx, "other"); err == nil {
		t.Error("expected error stopping unknown target")
	}
}
