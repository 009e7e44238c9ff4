package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/stackshelf/backend/models"
)

// DefaultMaxRankingBooks caps snapshot size when the caller does not
// configure one.
const DefaultMaxRankingBooks = 1000

// DefaultRankingTTLs returns the per-period snapshot lifetimes. Hotter
// windows go stale faster.
func DefaultRankingTTLs() map[string]time.Duration {
	return map[string]time.Duration{
		models.RankingPeriodWeek:  1 * time.Hour,
		models.RankingPeriodMonth: 3 * time.Hour,
		models.RankingPeriodYear:  6 * time.Hour,
		models.RankingPeriodAll:   12 * time.Hour,
	}
}

// RankingKey identifies one snapshot. Category is set only for the category
// type.
type RankingKey struct {
	Type     string
	Category string
	Period   string
}

func (k RankingKey) String() string {
	if k.Category != "" {
		return k.Type + "/" + k.Category + "/" + k.Period
	}
	return k.Type + "/" + k.Period
}

// ActiveBookLister supplies the catalog scan the generator ranks over.
type ActiveBookLister interface {
	ActiveBooks(ctx context.Context) ([]models.Book, error)
}

// Generator computes ordered ranking snapshots from current book stats.
type Generator struct {
	Books    ActiveBookLister
	MaxBooks int
	TTLs     map[string]time.Duration
	Now      func() time.Time
}

func NewGenerator(books ActiveBookLister) *Generator {
	return &Generator{
		Books:    books,
		MaxBooks: DefaultMaxRankingBooks,
		TTLs:     DefaultRankingTTLs(),
		Now:      time.Now,
	}
}

// periodStart returns the inclusive lower bound on lastMentionedAt for a
// period: a rolling 7 days for week, the first of the current month, Jan 1
// of the current year, and the zero time for all.
func periodStart(period string, now time.Time) time.Time {
	switch period {
	case models.RankingPeriodWeek:
		return now.Add(-7 * 24 * time.Hour)
	case models.RankingPeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case models.RankingPeriodYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}
	}
}

// Generate produces the snapshot for one key. Sort orders and scores per
// type:
//
//	overall:  mentionCount desc, trendScore desc; score = mentionCount
//	trending: trendScore desc, mentionCount desc; score = trendScore
//	category: overall's order over books carrying the category
//	newcomer: first mentioned within 30 days; firstMentionedAt desc,
//	          mentionCount desc; score = floor(mentionCount*30 /
//	          max(1, daysSinceFirstMention)), a mention velocity
//
// Ties beyond the listed keys keep the catalog scan order, which is stable
// within a run. The snapshot is stamped with generatedAt and an expiresAt
// from the per-period TTL.
func (g *Generator) Generate(ctx context.Context, key RankingKey) (*models.Ranking, error) {
	books, err := g.Books.ActiveBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate ranking %s: load catalog: %w", key, err)
	}

	now := g.Now()
	start := periodStart(key.Period, now)
	newcomerCutoff := now.Add(-recentMentionWindow)

	eligible := make([]*models.Book, 0, len(books))
	for i := range books {
		b := &books[i]
		if key.Period != models.RankingPeriodAll {
			if b.LastMentionedAt == nil || b.LastMentionedAt.Before(start) {
				continue
			}
		}
		switch key.Type {
		case models.RankingTypeCategory:
			if !hasCategory(b, key.Category) {
				continue
			}
		case models.RankingTypeNewcomer:
			if b.FirstMentionedAt == nil || b.FirstMentionedAt.Before(newcomerCutoff) {
				continue
			}
		}
		eligible = append(eligible, b)
	}

	sort.SliceStable(eligible, lessFor(key.Type, eligible))

	maxBooks := g.MaxBooks
	if maxBooks <= 0 {
		maxBooks = DefaultMaxRankingBooks
	}
	top := eligible
	if len(top) > maxBooks {
		top = top[:maxBooks]
	}

	entries := make([]models.RankingEntry, len(top))
	for i, b := range top {
		entries[i] = models.RankingEntry{
			BookID:       b.ID,
			Title:        b.Title,
			Rank:         i + 1,
			Score:        scoreFor(key.Type, b, now),
			MentionCount: b.MentionCount,
			TrendScore:   b.TrendScore,
		}
	}

	ttl, ok := g.TTLs[key.Period]
	if !ok {
		ttl = DefaultRankingTTLs()[models.RankingPeriodAll]
	}
	return &models.Ranking{
		Type:        key.Type,
		Category:    key.Category,
		Period:      key.Period,
		Entries:     entries,
		TotalBooks:  len(eligible),
		GeneratedAt: now,
		ExpiresAt:   now.Add(ttl),
	}, nil
}

func hasCategory(b *models.Book, category string) bool {
	for _, c := range b.Categories {
		if c == category {
			return true
		}
	}
	return false
}

func lessFor(rankingType string, books []*models.Book) func(i, j int) bool {
	switch rankingType {
	case models.RankingTypeTrending:
		return func(i, j int) bool {
			if books[i].TrendScore != books[j].TrendScore {
				return books[i].TrendScore > books[j].TrendScore
			}
			return books[i].MentionCount > books[j].MentionCount
		}
	case models.RankingTypeNewcomer:
		return func(i, j int) bool {
			fi, fj := *books[i].FirstMentionedAt, *books[j].FirstMentionedAt
			if !fi.Equal(fj) {
				return fi.After(fj)
			}
			return books[i].MentionCount > books[j].MentionCount
		}
	default: // overall and category
		return func(i, j int) bool {
			if books[i].MentionCount != books[j].MentionCount {
				return books[i].MentionCount > books[j].MentionCount
			}
			return books[i].TrendScore > books[j].TrendScore
		}
	}
}

func scoreFor(rankingType string, b *models.Book, now time.Time) float64 {
	switch rankingType {
	case models.RankingTypeTrending:
		return b.TrendScore
	case models.RankingTypeNewcomer:
		days := int(now.Sub(*b.FirstMentionedAt).Hours() / 24)
		if days < 1 {
			days = 1
		}
		return math.Floor(float64(b.MentionCount) * 30 / float64(days))
	default:
		return float64(b.MentionCount)
	}
}
