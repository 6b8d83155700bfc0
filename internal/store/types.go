// Persistence contracts and record shapes for the growth engine
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a content item does not exist.
var ErrNotFound = errors.New("content item not found")

// ErrConflict marks a store-level serialization failure. The caller rolls
// back and retries on the next scheduled pass, never within the same pass.
var ErrConflict = errors.New("concurrent update conflict")

// Counters holds the engagement counters of one content item.
type Counters struct {
	Views    int64 `json:"views" db:"view_count"`
	Likes    int64 `json:"likes" db:"like_count"`
	Comments int64 `json:"comments" db:"comment_count"`
	Shares   int64 `json:"shares" db:"share_count"`
}

// ViewRecord is a synthetic view attributed to a bot account. Repeat views
// by the same actor are allowed.
type ViewRecord struct {
	ID              string    `json:"id" db:"id"`
	ContentID       string    `json:"content_id" db:"content_id"`
	ActorID         string    `json:"actor_id" db:"account_id"`
	OriginAddr      string    `json:"origin_addr" db:"origin_addr"`
	ClientSignature string    `json:"client_signature" db:"client_signature"`
	DurationMS      int       `json:"duration_ms" db:"duration_ms"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// LikeRecord is a synthetic like attributed to a bot account. At most one
// like per actor and content item.
type LikeRecord struct {
	ID              string    `json:"id" db:"id"`
	ContentID       string    `json:"content_id" db:"content_id"`
	ActorID         string    `json:"actor_id" db:"account_id"`
	OriginAddr      string    `json:"origin_addr" db:"origin_addr"`
	ClientSignature string    `json:"client_signature" db:"client_signature"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Snapshot is an append-only record of a content item's counters at one
// point in time, plus the computed engagement rate.
type Snapshot struct {
	ID             string         `json:"id" db:"id"`
	ContentID      string         `json:"content_id" db:"content_id"`
	Views          int64          `json:"views" db:"view_count"`
	Likes          int64          `json:"likes" db:"like_count"`
	Comments       int64          `json:"comments" db:"comment_count"`
	Shares         int64          `json:"shares" db:"share_count"`
	EngagementRate float64        `json:"engagement_rate" db:"engagement_rate"`
	Metadata       map[string]any `json:"metadata" db:"metadata"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

// Tx is a unit of work spanning counter updates and record inserts.
// Commit and Rollback are terminal; either may be called once.
type Tx interface {
	Commit() error
	Rollback() error
}

// TxProvider begins serializable transactions.
type TxProvider interface {
	Begin(ctx context.Context) (Tx, error)
}

// ContentStore reads and writes content item counters.
type ContentStore interface {
	// GetCounters returns the counters of one item, or ErrNotFound.
	GetCounters(ctx context.Context, contentID string) (Counters, error)
	// GetCountersBatch returns counters for every id that exists; missing
	// ids are simply absent from the result.
	GetCountersBatch(ctx context.Context, contentIDs []string) (map[string]Counters, error)
	// LockCounters re-reads the counters under an exclusive row lock.
	LockCounters(ctx context.Context, tx Tx, contentID string) (Counters, error)
	// UpdateCounters writes new view and like counts inside tx.
	UpdateCounters(ctx context.Context, tx Tx, contentID string, views, likes int64) error
}

// ActorDirectory lists accounts eligible to back synthetic records.
type ActorDirectory interface {
	ListBotActorIDs(ctx context.Context) ([]string, error)
}

// LikeIndex answers which actors already like a content item.
type LikeIndex interface {
	ListLikers(ctx context.Context, tx Tx, contentID string) (map[string]struct{}, error)
}

// BulkWriter persists synthetic records and snapshots in bounded batches.
type BulkWriter interface {
	InsertViews(ctx context.Context, tx Tx, records []ViewRecord) error
	InsertLikes(ctx context.Context, tx Tx, records []LikeRecord) error
	InsertSnapshot(ctx context.Context, tx Tx, snap Snapshot) error
}
