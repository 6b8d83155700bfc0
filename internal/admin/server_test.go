package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"engageops-sim/internal/engine"
	"engageops-sim/internal/registry"
	"engageops-sim/internal/store"
	"engageops-sim/internal/synth"
)

// memStore is a minimal in-memory store backing the engine under test.
type memStore struct {
	mu       sync.Mutex
	counters map[string]store.Counters
	actors   []string
}

type memTx struct{}

func (memTx) Commit() error   { return nil }
func (memTx) Rollback() error { return nil }

func (m *memStore) Begin(ctx context.Context) (store.Tx, error) { return memTx{}, nil }

func (m *memStore) GetCounters(ctx context.Context, id string) (store.Counters, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.counters[id]
	if !ok {
		return store.Counters{}, store.ErrNotFound
	}
	return c, nil
}

func (m *memStore) GetCountersBatch(ctx context.Context, ids []string) (map[string]store.Counters, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]store.Counters)
	for _, id := range ids {
		if c, ok := m.counters[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (m *memStore) LockCounters(ctx context.Context, tx store.Tx, id string) (store.Counters, error) {
	return m.GetCounters(ctx, id)
}

func (m *memStore) UpdateCounters(ctx context.Context, tx store.Tx, id string, views, likes int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.counters[id]
	if !ok {
		return store.ErrNotFound
	}
	c.Views, c.Likes = views, likes
	m.counters[id] = c
	return nil
}

func (m *memStore) ListBotActorIDs(ctx context.Context) ([]string, error) { return m.actors, nil }

func (m *memStore) ListLikers(ctx context.Context, tx store.Tx, id string) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

func (m *memStore) InsertViews(ctx context.Context, tx store.Tx, recs []store.ViewRecord) error {
	return nil
}

func (m *memStore) InsertLikes(ctx context.Context, tx store.Tx, recs []store.LikeRecord) error {
	return nil
}

func (m *memStore) InsertSnapshot(ctx context.Context, tx store.Tx, snap store.Snapshot) error {
	return nil
}

func newTestServer(t *testing.T) (*Server, *memStore) {
	t.Helper()
	st := &memStore{
		counters: map[string]store.Counters{
			"content-1": {Views: 100, Likes: 5},
		},
	}
	for i := 0; i < 10; i++ {
		st.actors = append(st.actors, fmt.Sprintf("bot-%03d", i))
	}
	rnd := rand.New(rand.NewSource(1))
	gen := synth.NewGenerator(st, st, synth.Options{}, rnd, nil)
	reg := registry.New(nil)
	eng := engine.New(st, st, st, st, gen, reg, nil, rnd, time.Now)
	return NewServer(eng, nil), st
}

func startBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return bytes.NewReader(b)
}

func TestStartSimulation(t *testing.T) {
	server, _ := newTestServer(t)

	body := startBody(t, map[string]any{
		"target_id":      "content-1",
		"max_views":      10000,
		"max_likes":      500,
		"like_ratio":     0.05,
		"duration_hours": 72,
		"curve":          "sigmoid",
	})
	req := httptest.NewRequest(http.MethodPost, "/simulations", body)
	w := httptest.NewRecorder()
	server.handleSimulations(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status Created, got %v", resp.StatusCode)
	}
	var sim registry.Simulation
	if err := json.NewDecoder(resp.Body).Decode(&sim); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if sim.TargetID != "content-1" || sim.InitialViews != 100 {
		t.Errorf("unexpected started simulation: %+v", sim)
	}
}

func TestStartSimulationFromProfile(t *testing.T) {
	server, _ := newTestServer(t)

	body := startBody(t, map[string]any{
		"target_id": "content-1",
		"profile":   "viral-spike",
	})
	req := httptest.NewRequest(http.MethodPost, "/simulations", body)
	w := httptest.NewRecorder()
	server.handleSimulations(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status Created, got %v", resp.StatusCode)
	}
	var sim registry.Simulation
	if err := json.NewDecoder(resp.Body).Decode(&sim); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if sim.MaxViews != 100000 || sim.DurationHours != 72 {
		t.Errorf("profile values not applied: %+v", sim)
	}
}

func TestStartSimulationErrors(t *testing.T) {
	server, _ := newTestServer(t)

	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{
			name: "unknown target",
			body: map[string]any{
				"target_id": "missing", "max_views": 100, "max_likes": 10,
				"like_ratio": 0.1, "duration_hours": 24, "curve": "linear",
			},
			want: http.StatusNotFound,
		},
		{
			name: "bad params",
			body: map[string]any{
				"target_id": "content-1", "max_views": 0, "max_likes": 10,
				"like_ratio": 0.1, "duration_hours": 24, "curve": "linear",
			},
			want: http.StatusBadRequest,
		},
		{
			name: "unknown profile",
			body: map[string]any{"target_id": "content-1", "profile": "nope"},
			want: http.StatusBadRequest,
		},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/simulations", startBody(t, tc.body))
		w := httptest.NewRecorder()
		server.handleSimulations(w, req)
		if w.Result().StatusCode != tc.want {
			t.Errorf("%s: expected status %d, got %d", tc.name, tc.want, w.Result().StatusCode)
		}
	}
}

func TestStopSimulation(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/simulations", startBody(t, map[string]any{
		"target_id": "content-1", "profile": "viral-spike",
	}))
	server.handleSimulations(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodPost, "/stop-simulation?target=content-1", nil)
	w := httptest.NewRecorder()
	server.handleStop(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected status OK, got %v", w.Result().StatusCode)
	}

	// Stopping again reports not found.
	w = httptest.NewRecorder()
	server.handleStop(w, httptest.NewRequest(http.MethodPost, "/stop-simulation?target=content-1", nil))
	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("expected status NotFound on second stop, got %v", w.Result().StatusCode)
	}
}

func TestStatusAndList(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/simulations", startBody(t, map[string]any{
		"target_id": "content-1", "profile": "viral-spike",
	}))
	server.handleSimulations(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	server.handleStatus(w, httptest.NewRequest(http.MethodGet, "/status?target=content-1", nil))
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected status OK, got %v", w.Result().StatusCode)
	}
	var status registry.Status
	if err := json.NewDecoder(w.Result().Body).Decode(&status); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if status.TargetID != "content-1" {
		t.Errorf("unexpected status: %+v", status)
	}

	w = httptest.NewRecorder()
	server.handleSimulations(w, httptest.NewRequest(http.MethodGet, "/simulations", nil))
	var list []registry.Status
	if err := json.NewDecoder(w.Result().Body).Decode(&list); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 active simulation, got %d", len(list))
	}
}

func TestRunPassUpdatesCounters(t *testing.T) {
	server, st := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/simulations", startBody(t, map[string]any{
		"target_id": "content-1", "profile": "viral-spike",
	}))
	server.handleSimulations(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	server.handleRunPass(w, httptest.NewRequest(http.MethodPost, "/run-pass", nil))
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected status OK, got %v", w.Result().StatusCode)
	}
	var results []engine.UpdateResult
	if err := json.NewDecoder(w.Result().Body).Decode(&results); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(results) != 1 || !results[0].Success {
		t.Fatalf("unexpected pass results: %+v", results)
	}

	c, err := st.GetCounters(context.Background(), "content-1")
	if err != nil {
		t.Fatalf("GetCounters: %v", err)
	}
	if c.Views < 100 {
		t.Errorf("views regressed: %d", c.Views)
	}

	// The same results are available from /last-pass.
	w = httptest.NewRecorder()
	server.handleLastPass(w, httptest.NewRequest(http.MethodGet, "/last-pass", nil))
	var last []engine.UpdateResult
	if err := json.NewDecoder(w.Result().Body).Decode(&last); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(last) != 1 || last[0].TargetID != results[0].TargetID {
		t.Errorf("last pass does not match run results: %+v", last)
	}
}

func TestHealthz(t *testing.T) {
	server, _ := newTestServer(t)

	srv := httptest.NewServer(server.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status OK, got %v", resp.StatusCode)
	}
}
