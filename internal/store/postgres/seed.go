package postgres

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

var handleAdjectives = []string{
	"sunny", "quiet", "brave", "lucky", "swift", "mellow", "bright", "wild",
}

var handleNouns = []string{
	"otter", "falcon", "willow", "comet", "ember", "harbor", "meadow", "drift",
}

// SeedBotActors inserts count bot accounts with generated handles and
// returns how many were created. Handle collisions are retried with a
// fresh suffix rather than failed.
func (s *Store) SeedBotActors(ctx context.Context, count int) (int, error) {
	created := 0
	for i := 0; i < count; i++ {
		id := uuid.New().String()
		handle := fmt.Sprintf("%s_%s_%04d",
			handleAdjectives[rand.Intn(len(handleAdjectives))],
			handleNouns[rand.Intn(len(handleNouns))],
			rand.Intn(10000))
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO accounts (id, handle, is_bot)
			VALUES ($1, $2, TRUE)
			ON CONFLICT (handle) DO NOTHING`, id, handle)
		if err != nil {
			return created, fmt.Errorf("seed bot account: %w", mapError(err))
		}
		if n, _ := res.RowsAffected(); n == 0 {
			i-- // handle collision, try again
			continue
		}
		created++
	}
	return created, nil
}
