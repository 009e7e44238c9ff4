package store

import (
	"context"
	"time"

	"github.com/stackshelf/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindFreshRanking returns the most recently generated unexpired snapshot for
// a key, or nil on a cache miss. Stale rows are ignored, not deleted; the
// sweep job removes them.
func (db *DB) FindFreshRanking(ctx context.Context, rankingType, category, period string, now time.Time) (*models.Ranking, error) {
	filter := bson.M{
		"type":      rankingType,
		"period":    period,
		"expiresAt": bson.M{"$gt": now},
	}
	if category != "" {
		filter["category"] = category
	}
	var ranking models.Ranking
	err := db.Rankings().FindOne(ctx, filter,
		options.FindOne().SetSort(bson.M{"generatedAt": -1})).Decode(&ranking)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ranking, nil
}

func (db *DB) InsertRanking(ctx context.Context, ranking *models.Ranking) error {
	_, err := db.Rankings().InsertOne(ctx, ranking, options.InsertOne())
	return err
}

// DeleteExpiredRankings removes snapshots whose expiresAt is in the past and
// returns the number deleted.
func (db *DB) DeleteExpiredRankings(ctx context.Context, now time.Time) (int64, error) {
	res, err := db.Rankings().DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lt": now}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
