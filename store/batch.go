package store

import (
	"context"

	"github.com/stackshelf/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertBatchRun records a finished mention-batch execution.
func (db *DB) InsertBatchRun(ctx context.Context, run *models.BatchRun) error {
	_, err := db.BatchRuns().InsertOne(ctx, run, options.InsertOne())
	return err
}

// RecentBatchRuns returns the latest runs, newest first.
func (db *DB) RecentBatchRuns(ctx context.Context, limit int64) ([]models.BatchRun, error) {
	cur, err := db.BatchRuns().Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"startedAt": -1}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var runs []models.BatchRun
	if err := cur.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}
