package store

import (
	"context"

	"github.com/stackshelf/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindMention returns the mention for a (book, article) pair, or nil if the
// pair has not been recorded. The recorder uses this for its idempotency
// check before inserting.
func (db *DB) FindMention(ctx context.Context, bookID, articleID primitive.ObjectID) (*models.Mention, error) {
	var m models.Mention
	err := db.Mentions().FindOne(ctx, bson.M{"bookId": bookID, "articleId": articleID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (db *DB) InsertMention(ctx context.Context, mention *models.Mention) (primitive.ObjectID, error) {
	res, err := db.Mentions().InsertOne(ctx, mention, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// MentionsForBook returns every mention for a book ordered by creation time
// ascending, the order the aggregator expects.
func (db *DB) MentionsForBook(ctx context.Context, bookID primitive.ObjectID) ([]models.Mention, error) {
	cur, err := db.Mentions().Find(ctx, bson.M{"bookId": bookID},
		options.Find().SetSort(bson.M{"createdAt": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var mentions []models.Mention
	if err := cur.All(ctx, &mentions); err != nil {
		return nil, err
	}
	return mentions, nil
}
