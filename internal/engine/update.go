package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"engageops-sim/internal/curve"
	"engageops-sim/internal/logging"
	"engageops-sim/internal/metrics"
	"engageops-sim/internal/registry"
	"engageops-sim/internal/store"

	"github.com/google/uuid"
)

// RunUpdatePass advances every active simulation once. Counters for all
// targets are fetched in one batched read; a failing target never aborts
// the rest of the pass. Simulations that report completion are removed
// from the registry after the pass.
func (e *Engine) RunUpdatePass(ctx context.Context) []UpdateResult {
	log := logging.FromContext(ctx)
	statuses := e.reg.ListActive()
	if len(statuses) == 0 {
		return nil
	}

	ids := make([]string, len(statuses))
	for i, st := range statuses {
		ids[i] = st.TargetID
	}
	preloaded, err := e.content.GetCountersBatch(ctx, ids)
	if err != nil {
		// Fall back to per-target reads inside updateTarget.
		log.Error("batch counter read failed", "err", err)
		preloaded = nil
	}

	results := make([]UpdateResult, 0, len(statuses))
	var completed []string
	for _, st := range statuses {
		var pre *store.Counters
		if c, ok := preloaded[st.TargetID]; ok {
			pre = &c
		}
		res := e.updateTarget(ctx, st.Simulation, pre)
		if !res.Success {
			log.Error("target update failed", "target_id", res.TargetID, "err", res.Error)
		}
		if res.IsComplete {
			completed = append(completed, res.TargetID)
		}
		results = append(results, res)
	}

	for _, id := range completed {
		e.reg.Stop(id)
		log.Info("simulation complete", "target_id", id)
	}

	e.mu.Lock()
	e.lastPass = results
	e.mu.Unlock()
	return results
}

// updateTarget executes one update step for a single simulation. pre may
// carry counters the caller already batch-fetched; nil forces a read.
func (e *Engine) updateTarget(ctx context.Context, sim registry.Simulation, pre *store.Counters) UpdateResult {
	elapsed := e.reg.ElapsedHours(sim)
	progress := elapsed / sim.DurationHours

	if e.reg.IsComplete(sim) {
		return UpdateResult{TargetID: sim.TargetID, Success: true, IsComplete: true, Progress: progress}
	}

	var current store.Counters
	if pre != nil {
		current = *pre
	} else {
		var err error
		current, err = e.content.GetCounters(ctx, sim.TargetID)
		if err != nil {
			return failure(sim.TargetID, progress, err)
		}
	}

	// Provisional estimate against the pre-transaction read. Only a hint:
	// it decides whether a transaction is worth opening at all, and is
	// re-validated against the locked row before any write.
	jView, jLike, err := e.jitteredTargets(sim, elapsed)
	if err != nil {
		return failure(sim.TargetID, progress, err)
	}
	finalViews, finalLikes := clampTargets(jView, jLike, current)
	if finalViews == current.Views && finalLikes == current.Likes {
		return UpdateResult{
			TargetID:     sim.TargetID,
			Success:      true,
			CurrentViews: current.Views,
			CurrentLikes: current.Likes,
			Progress:     progress,
		}
	}

	snap, res, err := e.applyGrowth(ctx, sim, jView, jLike, progress, elapsed)
	if err != nil {
		return failure(sim.TargetID, progress, err)
	}
	if snap != nil && e.exporter != nil {
		// Export is best-effort; the transactional snapshot row is the
		// source of truth.
		if err := e.exporter.WriteSnapshot(*snap); err != nil {
			logging.FromContext(ctx).Error("snapshot export failed", "target_id", sim.TargetID, "err", err)
		}
	}
	return res
}

// applyGrowth performs the locked read-modify-write of step 9: re-read the
// counters under a row lock, redo the clamping against the locked values,
// write counters, append the analytics snapshot, and generate the backing
// synthetic records. Everything rolls back as a unit on failure.
func (e *Engine) applyGrowth(ctx context.Context, sim registry.Simulation, jView, jLike float64, progress, elapsed float64) (*store.Snapshot, UpdateResult, error) {
	tx, err := e.tx.Begin(ctx)
	if err != nil {
		return nil, UpdateResult{}, fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	locked, err := e.content.LockCounters(ctx, tx, sim.TargetID)
	if err != nil {
		return nil, UpdateResult{}, fmt.Errorf("lock counters: %w", err)
	}

	finalViews, finalLikes := clampTargets(jView, jLike, locked)
	newViews := finalViews - locked.Views
	newLikes := finalLikes - locked.Likes
	if newViews == 0 && newLikes == 0 {
		// A concurrent writer already caught up to the target.
		res := UpdateResult{
			TargetID:     sim.TargetID,
			Success:      true,
			CurrentViews: locked.Views,
			CurrentLikes: locked.Likes,
			Progress:     progress,
		}
		return nil, res, nil
	}

	if err := e.content.UpdateCounters(ctx, tx, sim.TargetID, finalViews, finalLikes); err != nil {
		return nil, UpdateResult{}, fmt.Errorf("update counters: %w", err)
	}

	snap := store.Snapshot{
		ID:             uuid.New().String(),
		ContentID:      sim.TargetID,
		Views:          finalViews,
		Likes:          finalLikes,
		Comments:       locked.Comments,
		Shares:         locked.Shares,
		EngagementRate: metrics.EngagementRate(finalViews, finalLikes, locked.Comments, locked.Shares),
		Metadata: map[string]any{
			"source":        "viral_simulation",
			"curve_shape":   string(sim.Curve),
			"elapsed_hours": elapsed,
			"progress":      progress,
		},
		CreatedAt: e.now().UTC(),
	}
	if err := e.bulk.InsertSnapshot(ctx, tx, snap); err != nil {
		return nil, UpdateResult{}, fmt.Errorf("insert snapshot: %w", err)
	}

	if newViews > 0 {
		if err := e.gen.GenerateViews(ctx, tx, sim.TargetID, int(newViews)); err != nil {
			return nil, UpdateResult{}, err
		}
	}
	if newLikes > 0 {
		likers, err := e.likes.ListLikers(ctx, tx, sim.TargetID)
		if err != nil {
			return nil, UpdateResult{}, fmt.Errorf("list likers: %w", err)
		}
		if _, err := e.gen.GenerateLikes(ctx, tx, sim.TargetID, int(newLikes), likers); err != nil {
			return nil, UpdateResult{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, UpdateResult{}, fmt.Errorf("commit: %w", err)
	}
	committed = true

	res := UpdateResult{
		TargetID:     sim.TargetID,
		Success:      true,
		CurrentViews: finalViews,
		CurrentLikes: finalLikes,
		DeltaViews:   newViews,
		DeltaLikes:   newLikes,
		Progress:     progress,
	}
	return &snap, res, nil
}

// jitteredTargets computes the curve targets for elapsed hours and applies
// the bounded jitter to each.
func (e *Engine) jitteredTargets(sim registry.Simulation, elapsed float64) (float64, float64, error) {
	targetViews, err := curve.Target(sim.Curve, elapsed, sim.DurationHours, sim.InitialViews, sim.MaxViews)
	if err != nil {
		return 0, 0, err
	}
	targetLikes := math.Min(math.Floor(targetViews*sim.LikeRatio), float64(sim.MaxLikes))
	targetLikes = math.Min(targetLikes, targetViews)

	jView := targetViews * (1 + (e.rand.Float64()*2-1)*viewJitter)
	jLike := targetLikes * (1 + (e.rand.Float64()*2-1)*likeJitter)
	return jView, jLike, nil
}

// clampTargets enforces the monotonicity and like<=view invariants against
// the observed counter floor.
func clampTargets(jView, jLike float64, floor store.Counters) (int64, int64) {
	views := int64(jView)
	likes := int64(jLike)
	if views < floor.Views {
		views = floor.Views
	}
	if likes < floor.Likes {
		likes = floor.Likes
	}
	if likes > views {
		likes = views
	}
	return views, likes
}

func failure(targetID string, progress float64, err error) UpdateResult {
	return UpdateResult{TargetID: targetID, Progress: progress, Error: err.Error()}
}

// Run invokes the update pass on a fixed interval until ctx is done.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	log := logging.FromContext(ctx)
	log.Info("starting update pass loop", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			results := e.RunUpdatePass(ctx)
			ok := 0
			for _, r := range results {
				if r.Success {
					ok++
				}
			}
			log.Info("update pass finished", "targets", len(results), "succeeded", ok)
		case <-ctx.Done():
			log.Info("stopping update pass loop")
			return
		}
	}
}
