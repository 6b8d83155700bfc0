package engine

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"strconv"

	"engageops-sim/internal/store"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	ingesterContext "github.com/GreptimeTeam/greptimedb-ingester-go/context"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

// GreptimeDBWriter exports snapshots to GreptimeDB via the ingester client.
// Snapshots are append-only time-series data, which is exactly what the
// store is built for.
type GreptimeDBWriter struct {
	client *greptime.Client
	db     string
	table  string
}

// NewGreptimeDBWriter creates a GreptimeDB writer. The snapshot table is
// auto-created by GreptimeDB on first write; the 90-day TTL is passed as an
// ingest hint since the ingester client has no SQL surface.
func NewGreptimeDBWriter(endpoint, database, tableName string) (*GreptimeDBWriter, error) {
	if tableName == "" {
		tableName = "engagement_snapshots"
	}
	cfg := greptime.NewConfig(endpoint).WithDatabase(database)
	if host, portStr, err := net.SplitHostPort(endpoint); err == nil {
		if port, perr := strconv.Atoi(portStr); perr == nil {
			cfg = greptime.NewConfig(host).WithPort(port).WithDatabase(database)
		}
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &GreptimeDBWriter{
		client: client,
		db:     database,
		table:  tableName,
	}, nil
}

// WriteSnapshot inserts a single snapshot.
func (w *GreptimeDBWriter) WriteSnapshot(snap store.Snapshot) error {
	return w.WriteSnapshots([]store.Snapshot{snap})
}

// WriteSnapshots inserts multiple snapshots.
func (w *GreptimeDBWriter) WriteSnapshots(snaps []store.Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	ctx := ingesterContext.New(context.Background(), ingesterContext.WithHint([]*ingesterContext.Hint{
		{Key: "ttl", Value: "90d"},
	}))

	tbl, err := table.New(w.table)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("content_id", types.STRING)
	tbl.AddFieldColumn("view_count", types.INT64)
	tbl.AddFieldColumn("like_count", types.INT64)
	tbl.AddFieldColumn("comment_count", types.INT64)
	tbl.AddFieldColumn("share_count", types.INT64)
	tbl.AddFieldColumn("engagement_rate", types.FLOAT64)
	tbl.AddFieldColumn("metadata", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, s := range snaps {
		meta, _ := json.Marshal(s.Metadata)
		tbl.AddRow(s.ContentID, s.Views, s.Likes, s.Comments, s.Shares, s.EngagementRate, string(meta), s.CreatedAt)
	}

	if _, err := w.client.Write(ctx, tbl); err != nil {
		log.Printf("[GreptimeDBWriter] Write failed: %v", err)
		return err
	}
	return nil
}
