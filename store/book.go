package store

import (
	"context"
	"time"

	"github.com/stackshelf/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error) {
	res, err := db.Books().InsertOne(ctx, book, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// ActiveBooks returns every active book, oldest first. The insertion order
// matters: the title index claims word tokens first-registered-wins, and
// ranking ties beyond the sort keys fall back to this scan order.
func (db *DB) ActiveBooks(ctx context.Context) ([]models.Book, error) {
	cur, err := db.Books().Find(ctx,
		bson.M{"status": models.BookStatusActive},
		options.Find().SetSort(bson.M{"createdAt": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// ListBooks returns books filtered by optional status and category, newest
// first, with skip/limit pagination.
func (db *DB) ListBooks(ctx context.Context, status, category string, skip, limit int64) ([]models.Book, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	if category != "" {
		filter["categories"] = category
	}
	opts := options.Find().SetSort(bson.M{"createdAt": -1}).SetSkip(skip).SetLimit(limit)
	cur, err := db.Books().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (db *DB) BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	err := db.Books().FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (db *DB) BookByNormalizedTitle(ctx context.Context, normalized string) (*models.Book, error) {
	var book models.Book
	err := db.Books().FindOne(ctx, bson.M{"normalizedTitle": normalized}).Decode(&book)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// UpdateBookStats writes the aggregator's recomputed fields in one $set.
func (db *DB) UpdateBookStats(ctx context.Context, id primitive.ObjectID, stats *models.BookStats) error {
	update := bson.M{
		"mentionCount":       stats.MentionCount,
		"uniqueArticleCount": stats.UniqueArticleCount,
		"firstMentionedAt":   stats.FirstMentionedAt,
		"lastMentionedAt":    stats.LastMentionedAt,
		"trendScore":         stats.TrendScore,
		"updatedAt":          time.Now(),
	}
	_, err := db.Books().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

// UpdateBookStatus sets a book's lifecycle status (active, inactive, merged).
func (db *DB) UpdateBookStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := db.Books().UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
