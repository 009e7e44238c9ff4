package store

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	log.Println("Connected to MongoDB")
	return &DB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (db *DB) Books() *mongo.Collection {
	return db.Database.Collection("books")
}

func (db *DB) Articles() *mongo.Collection {
	return db.Database.Collection("articles")
}

func (db *DB) Mentions() *mongo.Collection {
	return db.Database.Collection("mentions")
}

func (db *DB) Rankings() *mongo.Collection {
	return db.Database.Collection("rankings")
}

func (db *DB) BatchRuns() *mongo.Collection {
	return db.Database.Collection("batch_runs")
}

func (db *DB) Users() *mongo.Collection {
	return db.Database.Collection("users")
}

func (db *DB) DigestConfig() *mongo.Collection {
	return db.Database.Collection("digest_config")
}

func (db *DB) DigestLogs() *mongo.Collection {
	return db.Database.Collection("digest_logs")
}

// EnsureIndexes creates the indexes the pipeline relies on. The unique
// (bookId, articleId) index on mentions backs the recorder's idempotency
// check at the database level.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	_, err := db.Mentions().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "bookId", Value: 1}, {Key: "articleId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = db.Articles().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sourceId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = db.Rankings().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "type", Value: 1},
			{Key: "category", Value: 1},
			{Key: "period", Value: 1},
			{Key: "generatedAt", Value: -1},
		},
	})
	if err != nil {
		return err
	}
	_, err = db.Books().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "mentionCount", Value: -1}},
	})
	return err
}

func (db *DB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}
