package store

import (
	"context"

	"github.com/stackshelf/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) InsertArticle(ctx context.Context, article *models.Article) (primitive.ObjectID, error) {
	res, err := db.Articles().InsertOne(ctx, article, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// ArticleBySourceID returns the article with the given upstream identifier,
// or nil if it has not been ingested.
func (db *DB) ArticleBySourceID(ctx context.Context, sourceID string) (*models.Article, error) {
	var article models.Article
	err := db.Articles().FindOne(ctx, bson.M{"sourceId": sourceID}).Decode(&article)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (db *DB) ArticleByID(ctx context.Context, id primitive.ObjectID) (*models.Article, error) {
	var article models.Article
	err := db.Articles().FindOne(ctx, bson.M{"_id": id}).Decode(&article)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (db *DB) RecentArticles(ctx context.Context, limit int64) ([]models.Article, error) {
	cur, err := db.Articles().Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"publishedAt": -1}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var articles []models.Article
	if err := cur.All(ctx, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}
