package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/stackshelf/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory stand-in for *store.DB implementing every store
// interface the services consume.
type memStore struct {
	books      []models.Book
	mentions   []models.Mention
	articles   []models.Article
	rankings   []models.Ranking
	batchRuns  []models.BatchRun
	digestCfg  *models.DigestConfig
	digestLogs []models.DigestLog

	activeBooksErr   error
	insertMentionErr map[primitive.ObjectID]error // keyed by bookID
}

func newMemStore() *memStore {
	return &memStore{insertMentionErr: make(map[primitive.ObjectID]error)}
}

func (s *memStore) addBook(title string, mutate ...func(*models.Book)) *models.Book {
	book := models.Book{
		ID:              primitive.NewObjectID(),
		Title:           title,
		NormalizedTitle: Normalize(title),
		Status:          models.BookStatusActive,
		CreatedAt:       time.Now(),
	}
	for _, m := range mutate {
		m(&book)
	}
	s.books = append(s.books, book)
	return &s.books[len(s.books)-1]
}

func (s *memStore) ActiveBooks(ctx context.Context) ([]models.Book, error) {
	if s.activeBooksErr != nil {
		return nil, s.activeBooksErr
	}
	var out []models.Book
	for _, b := range s.books {
		if b.Status == models.BookStatusActive {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	for i := range s.books {
		if s.books[i].ID == id {
			b := s.books[i]
			return &b, nil
		}
	}
	return nil, nil
}

func (s *memStore) UpdateBookStats(ctx context.Context, id primitive.ObjectID, stats *models.BookStats) error {
	for i := range s.books {
		if s.books[i].ID == id {
			s.books[i].MentionCount = stats.MentionCount
			s.books[i].UniqueArticleCount = stats.UniqueArticleCount
			s.books[i].FirstMentionedAt = stats.FirstMentionedAt
			s.books[i].LastMentionedAt = stats.LastMentionedAt
			s.books[i].TrendScore = stats.TrendScore
			return nil
		}
	}
	return fmt.Errorf("book %s not found", id.Hex())
}

func (s *memStore) FindMention(ctx context.Context, bookID, articleID primitive.ObjectID) (*models.Mention, error) {
	for i := range s.mentions {
		if s.mentions[i].BookID == bookID && s.mentions[i].ArticleID == articleID {
			m := s.mentions[i]
			return &m, nil
		}
	}
	return nil, nil
}

func (s *memStore) InsertMention(ctx context.Context, mention *models.Mention) (primitive.ObjectID, error) {
	if err := s.insertMentionErr[mention.BookID]; err != nil {
		return primitive.NilObjectID, err
	}
	m := *mention
	m.ID = primitive.NewObjectID()
	s.mentions = append(s.mentions, m)
	return m.ID, nil
}

func (s *memStore) MentionsForBook(ctx context.Context, bookID primitive.ObjectID) ([]models.Mention, error) {
	var out []models.Mention
	for _, m := range s.mentions {
		if m.BookID == bookID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) FindFreshRanking(ctx context.Context, rankingType, category, period string, now time.Time) (*models.Ranking, error) {
	var best *models.Ranking
	for i := range s.rankings {
		rk := &s.rankings[i]
		if rk.Type != rankingType || rk.Period != period {
			continue
		}
		if category != "" && rk.Category != category {
			continue
		}
		if !rk.ExpiresAt.After(now) {
			continue
		}
		if best == nil || rk.GeneratedAt.After(best.GeneratedAt) {
			best = rk
		}
	}
	if best == nil {
		return nil, nil
	}
	out := *best
	return &out, nil
}

func (s *memStore) InsertRanking(ctx context.Context, ranking *models.Ranking) error {
	rk := *ranking
	rk.ID = primitive.NewObjectID()
	s.rankings = append(s.rankings, rk)
	return nil
}

func (s *memStore) DeleteExpiredRankings(ctx context.Context, now time.Time) (int64, error) {
	kept := s.rankings[:0]
	var deleted int64
	for _, rk := range s.rankings {
		if rk.ExpiresAt.Before(now) {
			deleted++
			continue
		}
		kept = append(kept, rk)
	}
	s.rankings = kept
	return deleted, nil
}

func (s *memStore) ArticleBySourceID(ctx context.Context, sourceID string) (*models.Article, error) {
	for i := range s.articles {
		if s.articles[i].SourceID == sourceID {
			a := s.articles[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (s *memStore) InsertArticle(ctx context.Context, article *models.Article) (primitive.ObjectID, error) {
	a := *article
	a.ID = primitive.NewObjectID()
	s.articles = append(s.articles, a)
	return a.ID, nil
}

func (s *memStore) InsertBatchRun(ctx context.Context, run *models.BatchRun) error {
	s.batchRuns = append(s.batchRuns, *run)
	return nil
}

func (s *memStore) GetDigestConfig(ctx context.Context) (*models.DigestConfig, error) {
	if s.digestCfg == nil {
		return nil, nil
	}
	cfg := *s.digestCfg
	return &cfg, nil
}

func (s *memStore) InsertDigestLog(ctx context.Context, entry *models.DigestLog) error {
	s.digestLogs = append(s.digestLogs, *entry)
	return nil
}

// fakeFetcher returns canned articles or a fixed error.
type fakeFetcher struct {
	articles []FetchedArticle
	err      error
}

func (f *fakeFetcher) Fetch(ctx context.Context) ([]FetchedArticle, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

// spyGenerator counts Generate calls around a real or canned result.
type spyGenerator struct {
	calls   int
	ranking *models.Ranking
	err     error
	inner   SnapshotGenerator
}

func (g *spyGenerator) Generate(ctx context.Context, key RankingKey) (*models.Ranking, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	if g.inner != nil {
		return g.inner.Generate(ctx, key)
	}
	return g.ranking, nil
}
