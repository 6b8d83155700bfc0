// PostgreSQL implementation of the persistence contracts
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"engageops-sim/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const defaultTimeout = 10 * time.Second

// Store implements the content store, actor directory, like index, bulk
// writer, and transaction provider against one PostgreSQL database.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration
}

// Open connects to PostgreSQL and verifies the connection.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{db: db, timeout: defaultTimeout}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS content_items (
  id TEXT PRIMARY KEY,
  view_count BIGINT NOT NULL DEFAULT 0,
  like_count BIGINT NOT NULL DEFAULT 0,
  comment_count BIGINT NOT NULL DEFAULT 0,
  share_count BIGINT NOT NULL DEFAULT 0,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS accounts (
  id TEXT PRIMARY KEY,
  handle TEXT NOT NULL UNIQUE,
  is_bot BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS content_views (
  id TEXT PRIMARY KEY,
  content_id TEXT NOT NULL,
  account_id TEXT NOT NULL,
  origin_addr TEXT NOT NULL,
  client_signature TEXT NOT NULL,
  duration_ms INTEGER NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS content_views_content_idx ON content_views (content_id);

CREATE TABLE IF NOT EXISTS content_likes (
  id TEXT PRIMARY KEY,
  content_id TEXT NOT NULL,
  account_id TEXT NOT NULL,
  origin_addr TEXT NOT NULL,
  client_signature TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (content_id, account_id)
);

CREATE TABLE IF NOT EXISTS analytics_snapshots (
  id TEXT PRIMARY KEY,
  content_id TEXT NOT NULL,
  view_count BIGINT NOT NULL,
  like_count BIGINT NOT NULL,
  comment_count BIGINT NOT NULL,
  share_count BIGINT NOT NULL,
  engagement_rate DOUBLE PRECISION NOT NULL,
  metadata JSONB NOT NULL DEFAULT '{}',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS analytics_snapshots_content_idx ON analytics_snapshots (content_id, created_at);
`

// EnsureSchema creates the tables this store needs if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// pgTx wraps an sqlx transaction behind the store.Tx contract.
type pgTx struct {
	tx *sqlx.Tx
}

func (t *pgTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return mapError(err)
	}
	return nil
}

func (t *pgTx) Rollback() error {
	return t.tx.Rollback()
}

// Begin opens a serializable transaction. Serializable isolation is what
// lets the locked re-validation defend the monotonicity invariants against
// external writers, not just other simulation passes.
func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &pgTx{tx: tx}, nil
}

func unwrap(tx store.Tx) (*sqlx.Tx, error) {
	pt, ok := tx.(*pgTx)
	if !ok {
		return nil, fmt.Errorf("transaction does not belong to this store: %T", tx)
	}
	return pt.tx, nil
}

// GetCounters reads the counters of one content item.
func (s *Store) GetCounters(ctx context.Context, contentID string) (store.Counters, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var c store.Counters
	err := s.db.GetContext(ctx, &c, `
		SELECT view_count, like_count, comment_count, share_count
		FROM content_items
		WHERE id = $1`, contentID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Counters{}, store.ErrNotFound
	}
	if err != nil {
		return store.Counters{}, fmt.Errorf("get counters: %w", mapError(err))
	}
	return c, nil
}

// GetCountersBatch reads counters for many items in one query. Missing ids
// are absent from the result, not an error.
func (s *Store) GetCountersBatch(ctx context.Context, contentIDs []string) (map[string]store.Counters, error) {
	if len(contentIDs) == 0 {
		return map[string]store.Counters{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, view_count, like_count, comment_count, share_count
		FROM content_items
		WHERE id = ANY($1)`, pq.Array(contentIDs))
	if err != nil {
		return nil, fmt.Errorf("batch get counters: %w", mapError(err))
	}
	defer rows.Close()

	out := make(map[string]store.Counters, len(contentIDs))
	for rows.Next() {
		var row struct {
			ID string `db:"id"`
			store.Counters
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan counters row: %w", err)
		}
		out[row.ID] = row.Counters
	}
	return out, rows.Err()
}

// LockCounters re-reads the counters under an exclusive row lock.
func (s *Store) LockCounters(ctx context.Context, tx store.Tx, contentID string) (store.Counters, error) {
	xtx, err := unwrap(tx)
	if err != nil {
		return store.Counters{}, err
	}
	var c store.Counters
	err = xtx.GetContext(ctx, &c, `
		SELECT view_count, like_count, comment_count, share_count
		FROM content_items
		WHERE id = $1
		FOR UPDATE`, contentID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Counters{}, store.ErrNotFound
	}
	if err != nil {
		return store.Counters{}, fmt.Errorf("lock counters: %w", mapError(err))
	}
	return c, nil
}

// UpdateCounters writes new view and like counts inside tx.
func (s *Store) UpdateCounters(ctx context.Context, tx store.Tx, contentID string, views, likes int64) error {
	xtx, err := unwrap(tx)
	if err != nil {
		return err
	}
	res, err := xtx.ExecContext(ctx, `
		UPDATE content_items
		SET view_count = $2, like_count = $3, updated_at = now()
		WHERE id = $1`, contentID, views, likes)
	if err != nil {
		return fmt.Errorf("update counters: %w", mapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update counters: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListBotActorIDs returns the ids of all accounts flagged as bots.
func (s *Store) ListBotActorIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var ids []string
	if err := s.db.SelectContext(ctx, &ids, `SELECT id FROM accounts WHERE is_bot`); err != nil {
		return nil, fmt.Errorf("list bot actors: %w", mapError(err))
	}
	return ids, nil
}

// ListLikers returns the actor ids that already like a content item, read
// inside tx so the exclusion set is consistent with the locked row.
func (s *Store) ListLikers(ctx context.Context, tx store.Tx, contentID string) (map[string]struct{}, error) {
	xtx, err := unwrap(tx)
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := xtx.SelectContext(ctx, &ids, `
		SELECT account_id FROM content_likes WHERE content_id = $1`, contentID); err != nil {
		return nil, fmt.Errorf("list likers: %w", mapError(err))
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// mapError converts driver errors into the store's sentinel errors where a
// sentinel applies.
func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03": // serialization, deadlock, lock timeout
			return fmt.Errorf("%w: %v", store.ErrConflict, err)
		}
	}
	return err
}
