package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"engageops-sim/internal/store"
)

// InsertViews adds a batch of synthetic view records inside tx.
func (s *Store) InsertViews(ctx context.Context, tx store.Tx, records []store.ViewRecord) error {
	if len(records) == 0 {
		return nil
	}
	xtx, err := unwrap(tx)
	if err != nil {
		return err
	}
	stmt, err := xtx.PrepareContext(ctx, `
		INSERT INTO content_views (id, content_id, account_id, origin_addr, client_signature, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`)
	if err != nil {
		return fmt.Errorf("prepare view insert: %w", mapError(err))
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ID, r.ContentID, r.ActorID, r.OriginAddr, r.ClientSignature, r.DurationMS, r.CreatedAt); err != nil {
			return fmt.Errorf("insert view record: %w", mapError(err))
		}
	}
	return nil
}

// InsertLikes adds a batch of synthetic like records inside tx. A conflict
// on (content_id, account_id) is skipped rather than failed: the exclusion
// set is read in the same transaction, but likes written by the outer
// system between passes are not worth failing the whole step over.
func (s *Store) InsertLikes(ctx context.Context, tx store.Tx, records []store.LikeRecord) error {
	if len(records) == 0 {
		return nil
	}
	xtx, err := unwrap(tx)
	if err != nil {
		return err
	}
	stmt, err := xtx.PrepareContext(ctx, `
		INSERT INTO content_likes (id, content_id, account_id, origin_addr, client_signature, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (content_id, account_id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare like insert: %w", mapError(err))
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ID, r.ContentID, r.ActorID, r.OriginAddr, r.ClientSignature, r.CreatedAt); err != nil {
			return fmt.Errorf("insert like record: %w", mapError(err))
		}
	}
	return nil
}

// InsertSnapshot appends one analytics snapshot inside tx.
func (s *Store) InsertSnapshot(ctx context.Context, tx store.Tx, snap store.Snapshot) error {
	xtx, err := unwrap(tx)
	if err != nil {
		return err
	}
	meta, err := json.Marshal(snap.Metadata)
	if err != nil {
		return fmt.Errorf("marshal snapshot metadata: %w", err)
	}
	_, err = xtx.ExecContext(ctx, `
		INSERT INTO analytics_snapshots (id, content_id, view_count, like_count, comment_count, share_count, engagement_rate, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		snap.ID, snap.ContentID, snap.Views, snap.Likes, snap.Comments, snap.Shares, snap.EngagementRate, meta, snap.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", mapError(err))
	}
	return nil
}
