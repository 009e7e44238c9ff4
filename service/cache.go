package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/stackshelf/backend/models"
)

// RankingStore persists and serves ranking snapshots.
type RankingStore interface {
	FindFreshRanking(ctx context.Context, rankingType, category, period string, now time.Time) (*models.Ranking, error)
	InsertRanking(ctx context.Context, ranking *models.Ranking) error
	DeleteExpiredRankings(ctx context.Context, now time.Time) (int64, error)
}

// SnapshotGenerator is satisfied by *Generator.
type SnapshotGenerator interface {
	Generate(ctx context.Context, key RankingKey) (*models.Ranking, error)
}

// RankingCache serves ranking reads from the freshest stored snapshot and
// regenerates synchronously on a miss. Two concurrent misses for the same
// key may both regenerate and insert; the duplicates coexist harmlessly
// until Sweep removes whichever expires. Callers needing stricter behavior
// must serialize regeneration themselves.
type RankingCache struct {
	Store     RankingStore
	Generator SnapshotGenerator
	Now       func() time.Time
}

func NewRankingCache(store RankingStore, generator SnapshotGenerator) *RankingCache {
	return &RankingCache{Store: store, Generator: generator, Now: time.Now}
}

// Get returns the current snapshot for a key: the stored one when it is
// still fresh, otherwise a newly generated and persisted one. A failed
// regeneration fails the read; Get never falls back to expired or empty
// data.
func (c *RankingCache) Get(ctx context.Context, key RankingKey) (*models.Ranking, error) {
	now := c.Now()
	cached, err := c.Store.FindFreshRanking(ctx, key.Type, key.Category, key.Period, now)
	if err != nil {
		return nil, fmt.Errorf("ranking %s: cache lookup: %w", key, err)
	}
	if cached != nil {
		return cached, nil
	}

	ranking, err := c.Generator.Generate(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := c.Store.InsertRanking(ctx, ranking); err != nil {
		return nil, fmt.Errorf("ranking %s: store snapshot: %w", key, err)
	}
	log.Printf("ranking: regenerated %s (%d entries, expires %s)",
		key, len(ranking.Entries), ranking.ExpiresAt.Format(time.RFC3339))
	return ranking, nil
}

// Sweep deletes every snapshot that expired before now. Invoked by the
// scheduler, not self-triggered.
func (c *RankingCache) Sweep(ctx context.Context) (int64, error) {
	deleted, err := c.Store.DeleteExpiredRankings(ctx, c.Now())
	if err != nil {
		return 0, fmt.Errorf("sweep rankings: %w", err)
	}
	if deleted > 0 {
		log.Printf("ranking: swept %d expired snapshots", deleted)
	}
	return deleted, nil
}
