package service

import (
	"context"
	"fmt"
	"time"

	"github.com/stackshelf/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// recentMentionWindow is the lookback used for the recency component of the
// trend score and for newcomer eligibility.
const recentMentionWindow = 30 * 24 * time.Hour

// MentionLister reads a book's full mention history.
type MentionLister interface {
	MentionsForBook(ctx context.Context, bookID primitive.ObjectID) ([]models.Mention, error)
}

// BookStatsWriter persists recomputed stats to the catalog.
type BookStatsWriter interface {
	UpdateBookStats(ctx context.Context, id primitive.ObjectID, stats *models.BookStats) error
}

// Aggregator recomputes a book's derived statistics from its full mention
// history. Recomputing from scratch instead of bumping counters keeps the
// stats correct even when earlier updates were missed or an article was
// processed twice; per-book mention volume is small enough that the extra
// reads don't matter.
type Aggregator struct {
	Mentions MentionLister
	Books    BookStatsWriter
	Now      func() time.Time
}

func NewAggregator(mentions MentionLister, books BookStatsWriter) *Aggregator {
	return &Aggregator{Mentions: mentions, Books: books, Now: time.Now}
}

// Recompute rebuilds and persists mentionCount, uniqueArticleCount,
// first/lastMentionedAt and the trend score for one book. The trend score is
// mentionCount + 2*mentions-in-the-last-30-days: linear recency weighting,
// recent mentions counted twice.
func (a *Aggregator) Recompute(ctx context.Context, bookID primitive.ObjectID) error {
	mentions, err := a.Mentions.MentionsForBook(ctx, bookID)
	if err != nil {
		return fmt.Errorf("load mentions for book %s: %w", bookID.Hex(), err)
	}

	now := a.Now()
	recentCutoff := now.Add(-recentMentionWindow)

	stats := &models.BookStats{MentionCount: len(mentions)}
	articles := make(map[primitive.ObjectID]bool)
	recent := 0
	for i := range mentions {
		m := &mentions[i]
		articles[m.ArticleID] = true
		if !m.CreatedAt.Before(recentCutoff) {
			recent++
		}
		if stats.FirstMentionedAt == nil || m.CreatedAt.Before(*stats.FirstMentionedAt) {
			t := m.CreatedAt
			stats.FirstMentionedAt = &t
		}
		if stats.LastMentionedAt == nil || m.CreatedAt.After(*stats.LastMentionedAt) {
			t := m.CreatedAt
			stats.LastMentionedAt = &t
		}
	}
	stats.UniqueArticleCount = len(articles)
	stats.TrendScore = float64(len(mentions) + 2*recent)

	if err := a.Books.UpdateBookStats(ctx, bookID, stats); err != nil {
		return fmt.Errorf("update stats for book %s: %w", bookID.Hex(), err)
	}
	return nil
}
