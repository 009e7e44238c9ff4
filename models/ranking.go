package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ranking types.
const (
	RankingTypeOverall  = "overall"
	RankingTypeTrending = "trending"
	RankingTypeCategory = "category"
	RankingTypeNewcomer = "newcomer"
)

// Ranking periods.
const (
	RankingPeriodAll   = "all"
	RankingPeriodWeek  = "week"
	RankingPeriodMonth = "month"
	RankingPeriodYear  = "year"
)

var (
	ValidRankingTypes   = []string{RankingTypeOverall, RankingTypeTrending, RankingTypeCategory, RankingTypeNewcomer}
	ValidRankingPeriods = []string{RankingPeriodAll, RankingPeriodWeek, RankingPeriodMonth, RankingPeriodYear}
)

// RankingEntry is one positioned book in a snapshot.
type RankingEntry struct {
	BookID       primitive.ObjectID `bson:"bookId" json:"bookId"`
	Title        string             `bson:"title" json:"title"`
	Rank         int                `bson:"rank" json:"rank"`
	Score        float64            `bson:"score" json:"score"`
	MentionCount int                `bson:"mentionCount" json:"mentionCount"`
	TrendScore   float64            `bson:"trendScore" json:"trendScore"`
}

// Ranking is a generated snapshot for one (type, category, period) key.
// Snapshots are superseded by newer inserts rather than updated; expired
// rows are removed by the sweep job. Category is empty unless Type is
// "category".
type Ranking struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type        string             `bson:"type" json:"type"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Period      string             `bson:"period" json:"period"`
	Entries     []RankingEntry     `bson:"entries" json:"entries"`
	TotalBooks  int                `bson:"totalBooks" json:"totalBooks"`
	GeneratedAt time.Time          `bson:"generatedAt" json:"generatedAt"`
	ExpiresAt   time.Time          `bson:"expiresAt" json:"expiresAt"`
}
