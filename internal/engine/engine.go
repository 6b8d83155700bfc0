// Engine orchestrating viral growth update passes
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"engageops-sim/internal/curve"
	"engageops-sim/internal/registry"
	"engageops-sim/internal/store"
	"engageops-sim/internal/synth"
)

// ErrInvalidGrowthParams rejects malformed simulation configs at start time,
// before anything is registered.
var ErrInvalidGrowthParams = errors.New("invalid growth parameters")

// Jitter bounds applied to the curve targets for realism. Applied to the
// target value, never to the delta, and always re-clamped against the
// observed floor so counters cannot decrease.
const (
	viewJitter = 0.05
	likeJitter = 0.075
)

// UpdateResult reports the outcome of one per-target update step.
type UpdateResult struct {
	TargetID     string  `json:"target_id"`
	Success      bool    `json:"success"`
	IsComplete   bool    `json:"is_complete"`
	CurrentViews int64   `json:"current_views,omitempty"`
	CurrentLikes int64   `json:"current_likes,omitempty"`
	DeltaViews   int64   `json:"delta_views,omitempty"`
	DeltaLikes   int64   `json:"delta_likes,omitempty"`
	Progress     float64 `json:"progress,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// Engine runs growth simulations against the content store. It holds no
// scheduling state of its own; it is a pure function of "now" plus stored
// state and is safe to invoke concurrently from timer and manual triggers.
type Engine struct {
	content  store.ContentStore
	likes    store.LikeIndex
	bulk     store.BulkWriter
	tx       store.TxProvider
	gen      *synth.Generator
	reg      *registry.Registry
	exporter SnapshotWriter
	rand     *rand.Rand
	now      func() time.Time

	mu       sync.Mutex
	lastPass []UpdateResult
}

// New wires an engine. exporter may be nil to disable snapshot export;
// rnd and now may be nil and default to a time-seeded source and time.Now.
func New(content store.ContentStore, likes store.LikeIndex, bulk store.BulkWriter, tx store.TxProvider, gen *synth.Generator, reg *registry.Registry, exporter SnapshotWriter, rnd *rand.Rand, now func() time.Time) *Engine {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{
		content:  content,
		likes:    likes,
		bulk:     bulk,
		tx:       tx,
		gen:      gen,
		reg:      reg,
		exporter: exporter,
		rand:     rnd,
		now:      now,
	}
}

// StartSimulation validates sim, captures the target's current counters as
// the growth baseline, and registers it. Starting again for an already
// active target replaces the previous simulation.
func (e *Engine) StartSimulation(ctx context.Context, sim registry.Simulation) (registry.Simulation, error) {
	if err := validate(sim); err != nil {
		return registry.Simulation{}, err
	}
	counters, err := e.content.GetCounters(ctx, sim.TargetID)
	if err != nil {
		return registry.Simulation{}, fmt.Errorf("resolve target %s: %w", sim.TargetID, err)
	}
	sim.InitialViews = counters.Views
	sim.InitialLikes = counters.Likes
	if sim.Curve == curve.Exponential && sim.InitialViews <= 0 {
		return registry.Simulation{}, fmt.Errorf("%w: exponential curve needs a non-zero starting view count", ErrInvalidGrowthParams)
	}
	return e.reg.Start(sim), nil
}

// StopSimulation removes the simulation for targetID and reports whether
// one was active. An update already in flight finishes its current step;
// the next pass simply no longer sees the target.
func (e *Engine) StopSimulation(targetID string) bool {
	return e.reg.Stop(targetID)
}

// GetStatus returns the enriched status for an active target.
func (e *Engine) GetStatus(targetID string) (registry.Status, bool) {
	return e.reg.Status(targetID)
}

// ListActive returns the status of all active simulations.
func (e *Engine) ListActive() []registry.Status {
	return e.reg.ListActive()
}

// LastPass returns the results of the most recent update pass.
func (e *Engine) LastPass() []UpdateResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]UpdateResult, len(e.lastPass))
	copy(out, e.lastPass)
	return out
}

func validate(sim registry.Simulation) error {
	switch {
	case sim.TargetID == "":
		return fmt.Errorf("%w: target id is required", ErrInvalidGrowthParams)
	case sim.DurationHours <= 0:
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidGrowthParams, sim.DurationHours)
	case sim.MaxViews <= 0:
		return fmt.Errorf("%w: max views must be positive, got %d", ErrInvalidGrowthParams, sim.MaxViews)
	case sim.MaxLikes < 0:
		return fmt.Errorf("%w: max likes must not be negative, got %d", ErrInvalidGrowthParams, sim.MaxLikes)
	case sim.LikeRatio < 0 || sim.LikeRatio > 1:
		return fmt.Errorf("%w: like ratio must be within [0,1], got %v", ErrInvalidGrowthParams, sim.LikeRatio)
	case !sim.Curve.Valid():
		return fmt.Errorf("%w: unknown curve shape %q", ErrInvalidGrowthParams, sim.Curve)
	}
	return nil
}
