// In-memory table of active growth simulations
package registry

import (
	"sync"
	"time"

	"engageops-sim/internal/curve"
)

// Simulation is the immutable growth profile of one active simulation.
type Simulation struct {
	TargetID      string      `json:"target_id"`
	MaxViews      int64       `json:"max_views"`
	MaxLikes      int64       `json:"max_likes"`
	LikeRatio     float64     `json:"like_ratio"`
	DurationHours float64     `json:"duration_hours"`
	Curve         curve.Shape `json:"curve"`
	StartTime     time.Time   `json:"start_time"`
	InitialViews  int64       `json:"initial_views"`
	InitialLikes  int64       `json:"initial_likes"`
}

// Status is a Simulation enriched with elapsed time and progress. Progress
// is a read-only diagnostic and is not clamped above 1.
type Status struct {
	Simulation
	ElapsedHours float64 `json:"elapsed_hours"`
	Progress     float64 `json:"progress"`
}

// Registry owns the map of active simulations keyed by target content id.
// Start overwrites any existing entry for the same target; start/stop are
// operator actions, so last-write-wins is acceptable.
type Registry struct {
	mu   sync.RWMutex
	sims map[string]Simulation
	now  func() time.Time
}

// New creates an empty registry. now may be nil; it defaults to time.Now.
func New(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{sims: make(map[string]Simulation), now: now}
}

// Start registers sim, stamping it with the current time, and returns the
// stored entry. An existing simulation for the same target is replaced.
func (r *Registry) Start(sim Simulation) Simulation {
	sim.StartTime = r.now().UTC()
	r.mu.Lock()
	r.sims[sim.TargetID] = sim
	r.mu.Unlock()
	return sim
}

// Stop removes the simulation for targetID and reports whether one existed.
func (r *Registry) Stop(targetID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sims[targetID]
	delete(r.sims, targetID)
	return ok
}

// Get returns the simulation for targetID, if any.
func (r *Registry) Get(targetID string) (Simulation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sim, ok := r.sims[targetID]
	return sim, ok
}

// ListActive returns the status of every active simulation.
func (r *Registry) ListActive() []Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Status, 0, len(r.sims))
	for _, sim := range r.sims {
		out = append(out, r.status(sim))
	}
	return out
}

// Status returns the enriched status for targetID, if active.
func (r *Registry) Status(targetID string) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sim, ok := r.sims[targetID]
	if !ok {
		return Status{}, false
	}
	return r.status(sim), true
}

// IsComplete reports whether sim has run for its full duration.
func (r *Registry) IsComplete(sim Simulation) bool {
	return r.ElapsedHours(sim) >= sim.DurationHours
}

// ElapsedHours returns the hours since sim started.
func (r *Registry) ElapsedHours(sim Simulation) float64 {
	return r.now().Sub(sim.StartTime).Hours()
}

func (r *Registry) status(sim Simulation) Status {
	elapsed := r.ElapsedHours(sim)
	return Status{
		Simulation:   sim,
		ElapsedHours: elapsed,
		Progress:     elapsed / sim.DurationHours,
	}
}
