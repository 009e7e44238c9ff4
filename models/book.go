package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book status values. Merged books point at a surviving duplicate and are
// excluded from matching and rankings, same as inactive ones.
const (
	BookStatusActive   = "active"
	BookStatusInactive = "inactive"
	BookStatusMerged   = "merged"
)

var ValidBookStatuses = []string{BookStatusActive, BookStatusInactive, BookStatusMerged}

type Book struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	NormalizedTitle string             `bson:"normalizedTitle" json:"normalizedTitle"`
	Author          string             `bson:"author,omitempty" json:"author,omitempty"`
	ISBN            string             `bson:"isbn,omitempty" json:"isbn,omitempty"`
	URL             string             `bson:"url,omitempty" json:"url,omitempty"`
	CoverURL        string             `bson:"coverUrl,omitempty" json:"coverUrl,omitempty"`
	Categories      []string           `bson:"categories,omitempty" json:"categories,omitempty"`
	Status          string             `bson:"status" json:"status"`

	// Derived mention statistics. Written only by the stats aggregator;
	// the catalog API never accepts them from clients.
	MentionCount       int        `bson:"mentionCount" json:"mentionCount"`
	UniqueArticleCount int        `bson:"uniqueArticleCount" json:"uniqueArticleCount"`
	FirstMentionedAt   *time.Time `bson:"firstMentionedAt,omitempty" json:"firstMentionedAt,omitempty"`
	LastMentionedAt    *time.Time `bson:"lastMentionedAt,omitempty" json:"lastMentionedAt,omitempty"`
	TrendScore         float64    `bson:"trendScore" json:"trendScore"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// BookStats is the set of derived fields the aggregator recomputes and
// persists in a single update.
type BookStats struct {
	MentionCount       int        `bson:"mentionCount"`
	UniqueArticleCount int        `bson:"uniqueArticleCount"`
	FirstMentionedAt   *time.Time `bson:"firstMentionedAt"`
	LastMentionedAt    *time.Time `bson:"lastMentionedAt"`
	TrendScore         float64    `bson:"trendScore"`
}
