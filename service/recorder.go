package service

import (
	"context"
	"log"
	"time"

	"github.com/stackshelf/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MentionStore is the persistence surface the recorder writes through.
type MentionStore interface {
	FindMention(ctx context.Context, bookID, articleID primitive.ObjectID) (*models.Mention, error)
	InsertMention(ctx context.Context, mention *models.Mention) (primitive.ObjectID, error)
}

// StatsRecomputer is satisfied by *Aggregator.
type StatsRecomputer interface {
	Recompute(ctx context.Context, bookID primitive.ObjectID) error
}

// RecordResult reports what happened to each match in a batch.
type RecordResult struct {
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Recorder persists matcher output as mention records, exactly once per
// (book, article) pair, and keeps book stats in step with each insert.
type Recorder struct {
	Mentions MentionStore
	Stats    StatsRecomputer
	Now      func() time.Time
}

func NewRecorder(mentions MentionStore, stats StatsRecomputer) *Recorder {
	return &Recorder{Mentions: mentions, Stats: stats, Now: time.Now}
}

// Record inserts one mention per match, skipping pairs already recorded so
// re-processing an article is a no-op. Stats are recomputed synchronously
// after each successful insert so the caller observes updated counts.
//
// A failure on one match never aborts the rest: it is logged, counted in
// Failed, and processing continues. Record does not return an error.
func (r *Recorder) Record(ctx context.Context, articleID primitive.ObjectID, matches []Candidate) RecordResult {
	var result RecordResult
	for _, match := range matches {
		bookID := match.Book.ID
		existing, err := r.Mentions.FindMention(ctx, bookID, articleID)
		if err != nil {
			log.Printf("record: lookup mention book=%s article=%s: %v", bookID.Hex(), articleID.Hex(), err)
			result.Failed++
			continue
		}
		if existing != nil {
			result.Skipped++
			continue
		}

		mention := &models.Mention{
			BookID:      bookID,
			ArticleID:   articleID,
			MatchedText: match.MatchedText,
			Confidence:  match.Confidence,
			CreatedAt:   r.Now(),
		}
		if _, err := r.Mentions.InsertMention(ctx, mention); err != nil {
			// The unique (bookId, articleId) index catches pairs that
			// appeared between the lookup and the insert.
			if mongo.IsDuplicateKeyError(err) {
				result.Skipped++
				continue
			}
			log.Printf("record: insert mention book=%s article=%s: %v", bookID.Hex(), articleID.Hex(), err)
			result.Failed++
			continue
		}
		result.Saved++

		if err := r.Stats.Recompute(ctx, bookID); err != nil {
			log.Printf("record: recompute stats book=%s: %v", bookID.Hex(), err)
		}
	}
	return result
}
