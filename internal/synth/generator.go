// Synthetic view/like record generation backed by bot accounts
package synth

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"engageops-sim/internal/store"

	"github.com/google/uuid"
)

// Defaults applied when Options fields are zero.
const (
	DefaultActorCap  = 50
	DefaultBatchSize = 100

	defaultViewDurationMinMS = 3000
	defaultViewDurationMaxMS = 180000
)

// ErrNoBotActors is returned when the directory has no bot accounts to
// attribute records to.
var ErrNoBotActors = errors.New("no bot actors available")

// clientSignatures is the fixed pool of simulated client fingerprints.
var clientSignatures = []string{
	"ios/17.5 app/12.4.1",
	"ios/16.6 app/12.2.0",
	"android/14 app/12.4.3",
	"android/13 app/12.1.7",
	"android/12 app/11.9.2",
	"web/chrome-126",
	"web/safari-17",
	"web/firefox-127",
}

// Options tunes generation. Zero values fall back to the defaults above.
type Options struct {
	ActorCap          int
	BatchSize         int
	ViewDurationMinMS int
	ViewDurationMaxMS int
}

// Generator builds synthetic engagement records and persists them in
// bounded batches through a BulkWriter.
type Generator struct {
	actors store.ActorDirectory
	bulk   store.BulkWriter
	opts   Options
	rand   *rand.Rand
	now    func() time.Time
}

// NewGenerator wires a generator to an actor directory and bulk writer.
// rnd and now may be nil; they default to a time-seeded source and time.Now.
func NewGenerator(actors store.ActorDirectory, bulk store.BulkWriter, opts Options, rnd *rand.Rand, now func() time.Time) *Generator {
	if opts.ActorCap <= 0 {
		opts.ActorCap = DefaultActorCap
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.ViewDurationMinMS <= 0 {
		opts.ViewDurationMinMS = defaultViewDurationMinMS
	}
	if opts.ViewDurationMaxMS <= opts.ViewDurationMinMS {
		opts.ViewDurationMaxMS = defaultViewDurationMaxMS
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{actors: actors, bulk: bulk, opts: opts, rand: rnd, now: now}
}

// GenerateViews persists count synthetic view records for a content item,
// cycling through a shuffled actor pool when count exceeds it.
func (g *Generator) GenerateViews(ctx context.Context, tx store.Tx, contentID string, count int) error {
	if count <= 0 {
		return nil
	}
	pool, err := g.actorPool(ctx)
	if err != nil {
		return err
	}
	if len(pool) > g.opts.ActorCap {
		pool = pool[:g.opts.ActorCap]
	}

	records := make([]store.ViewRecord, 0, count)
	for i := 0; i < count; i++ {
		records = append(records, store.ViewRecord{
			ID:              uuid.New().String(),
			ContentID:       contentID,
			ActorID:         pool[i%len(pool)],
			OriginAddr:      g.originAddr(),
			ClientSignature: g.clientSignature(),
			DurationMS:      g.viewDuration(),
			CreatedAt:       g.now().UTC(),
		})
	}

	for start := 0; start < len(records); start += g.opts.BatchSize {
		end := min(start+g.opts.BatchSize, len(records))
		if err := g.bulk.InsertViews(ctx, tx, records[start:end]); err != nil {
			return fmt.Errorf("insert view batch: %w", err)
		}
	}
	return nil
}

// GenerateLikes persists up to count like records from distinct actors not
// present in excluded. Fewer eligible actors than count is not an error;
// the shortfall is returned to the caller via the created count.
func (g *Generator) GenerateLikes(ctx context.Context, tx store.Tx, contentID string, count int, excluded map[string]struct{}) (int, error) {
	if count <= 0 {
		return 0, nil
	}
	pool, err := g.actorPool(ctx)
	if err != nil {
		return 0, err
	}

	eligible := pool[:0:0]
	for _, id := range pool {
		if _, ok := excluded[id]; !ok {
			eligible = append(eligible, id)
		}
	}
	if len(eligible) > count {
		eligible = eligible[:count]
	}

	records := make([]store.LikeRecord, 0, len(eligible))
	for _, actorID := range eligible {
		records = append(records, store.LikeRecord{
			ID:              uuid.New().String(),
			ContentID:       contentID,
			ActorID:         actorID,
			OriginAddr:      g.originAddr(),
			ClientSignature: g.clientSignature(),
			CreatedAt:       g.now().UTC(),
		})
	}

	for start := 0; start < len(records); start += g.opts.BatchSize {
		end := min(start+g.opts.BatchSize, len(records))
		if err := g.bulk.InsertLikes(ctx, tx, records[start:end]); err != nil {
			return 0, fmt.Errorf("insert like batch: %w", err)
		}
	}
	return len(records), nil
}

// actorPool returns the bot actor ids in uniformly shuffled order.
func (g *Generator) actorPool(ctx context.Context) ([]string, error) {
	ids, err := g.actors.ListBotActorIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bot actors: %w", err)
	}
	if len(ids) == 0 {
		return nil, ErrNoBotActors
	}
	return shuffled(ids, g.rand), nil
}

// shuffled returns an unbiased Fisher-Yates permutation of ids. The input
// slice is never mutated.
func shuffled(ids []string, rnd *rand.Rand) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func (g *Generator) originAddr() string {
	// Public-looking IPv4, first octet outside reserved low ranges.
	return fmt.Sprintf("%d.%d.%d.%d", g.rand.Intn(200)+20, g.rand.Intn(256), g.rand.Intn(256), g.rand.Intn(254)+1)
}

func (g *Generator) clientSignature() string {
	return clientSignatures[g.rand.Intn(len(clientSignatures))]
}

func (g *Generator) viewDuration() int {
	span := g.opts.ViewDurationMaxMS - g.opts.ViewDurationMinMS
	return g.opts.ViewDurationMinMS + g.rand.Intn(span+1)
}
