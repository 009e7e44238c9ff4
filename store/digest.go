package store

import (
	"context"

	"github.com/stackshelf/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetDigestConfig returns the deployment's digest settings, or nil if none
// have been saved.
func (db *DB) GetDigestConfig(ctx context.Context) (*models.DigestConfig, error) {
	var cfg models.DigestConfig
	err := db.DigestConfig().FindOne(ctx, bson.M{}).Decode(&cfg)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpsertDigestConfig creates or replaces the single digest config document.
func (db *DB) UpsertDigestConfig(ctx context.Context, cfg *models.DigestConfig) error {
	set := bson.M{
		"smtpHost":     cfg.SMTPHost,
		"smtpPort":     cfg.SMTPPort,
		"smtpUser":     cfg.SMTPUser,
		"smtpPassword": cfg.SMTPPassword,
		"senderMail":   cfg.SenderMail,
		"recipients":   cfg.Recipients,
		"enabled":      cfg.Enabled,
	}
	opts := options.Update().SetUpsert(true)
	_, err := db.DigestConfig().UpdateOne(ctx, bson.M{}, bson.M{"$set": set}, opts)
	return err
}

func (db *DB) InsertDigestLog(ctx context.Context, entry *models.DigestLog) error {
	_, err := db.DigestLogs().InsertOne(ctx, entry, options.InsertOne())
	return err
}
