package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stackshelf/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// BatchStore is the persistence surface the mention batch reads and writes.
type BatchStore interface {
	ActiveBooks(ctx context.Context) ([]models.Book, error)
	ArticleBySourceID(ctx context.Context, sourceID string) (*models.Article, error)
	InsertArticle(ctx context.Context, article *models.Article) (primitive.ObjectID, error)
	InsertBatchRun(ctx context.Context, run *models.BatchRun) error
}

// BatchRunner executes one full mention batch: load the active catalog,
// build a fresh title index, fetch articles, and match and record each one
// sequentially. At most one run is in flight at a time, whether triggered by
// the scheduler or by hand.
type BatchRunner struct {
	Store          BatchStore
	Fetcher        ArticleFetcher
	Recorder       *Recorder
	MinConfidence  float64
	IndicatorWords []string
	Now            func() time.Time

	mu sync.Mutex
}

func NewBatchRunner(store BatchStore, fetcher ArticleFetcher, recorder *Recorder, minConfidence float64, indicatorWords []string) *BatchRunner {
	return &BatchRunner{
		Store:          store,
		Fetcher:        fetcher,
		Recorder:       recorder,
		MinConfidence:  minConfidence,
		IndicatorWords: indicatorWords,
		Now:            time.Now,
	}
}

// Run executes the batch to completion and records a BatchRun audit row.
// Catalog-load and fetch failures abort the run and are returned; per-article
// failures are logged and the run continues. Articles already ingested are
// re-processed through the idempotent recorder, which makes re-runs safe.
// If a run is already in flight, Run returns ErrBatchAlreadyRunning without
// recording anything.
func (b *BatchRunner) Run(ctx context.Context) (*models.BatchRun, error) {
	if !b.mu.TryLock() {
		return nil, ErrBatchAlreadyRunning
	}
	defer b.mu.Unlock()

	run := &models.BatchRun{
		ID:        uuid.NewString(),
		StartedAt: b.Now(),
	}
	log.Printf("batch %s: starting", run.ID)

	books, err := b.Store.ActiveBooks(ctx)
	if err != nil {
		return b.finish(ctx, run, fmt.Errorf("batch %s: load catalog: %w", run.ID, err))
	}
	index := BuildTitleIndex(books)
	matcher := NewMatcher(index, b.MinConfidence, b.IndicatorWords)
	log.Printf("batch %s: indexed %d active books", run.ID, index.Size())

	fetched, err := b.Fetcher.Fetch(ctx)
	if err != nil {
		return b.finish(ctx, run, fmt.Errorf("batch %s: %w", run.ID, err))
	}
	run.ArticlesFetched = len(fetched)

	for _, raw := range fetched {
		if strings.TrimSpace(raw.Title) == "" && strings.TrimSpace(raw.Body) == "" {
			log.Printf("batch %s: article %s: %v", run.ID, raw.SourceID, ErrMalformedArticle)
			continue
		}
		articleID, err := b.ingest(ctx, raw)
		if err != nil {
			log.Printf("batch %s: ingest article %s: %v", run.ID, raw.SourceID, err)
			continue
		}

		matches := matcher.Match(raw.Title, raw.Body)
		result := b.Recorder.Record(ctx, articleID, matches)
		run.ArticlesProcessed++
		run.MentionsSaved += result.Saved
		run.MentionsSkipped += result.Skipped
		run.MentionsFailed += result.Failed
	}

	return b.finish(ctx, run, nil)
}

// ingest stores a fetched article once, returning the existing document's id
// when the source id was already seen.
func (b *BatchRunner) ingest(ctx context.Context, raw FetchedArticle) (primitive.ObjectID, error) {
	existing, err := b.Store.ArticleBySourceID(ctx, raw.SourceID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if existing != nil {
		return existing.ID, nil
	}
	article := &models.Article{
		SourceID:    raw.SourceID,
		Title:       raw.Title,
		Body:        raw.Body,
		URL:         raw.URL,
		Tags:        raw.Tags,
		PublishedAt: raw.PublishedAt,
		FetchedAt:   b.Now(),
	}
	id, err := b.Store.InsertArticle(ctx, article)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if again, lookupErr := b.Store.ArticleBySourceID(ctx, raw.SourceID); lookupErr == nil && again != nil {
				return again.ID, nil
			}
		}
		return primitive.NilObjectID, err
	}
	return id, nil
}

func (b *BatchRunner) finish(ctx context.Context, run *models.BatchRun, runErr error) (*models.BatchRun, error) {
	run.FinishedAt = b.Now()
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := b.Store.InsertBatchRun(ctx, run); err != nil {
		log.Printf("batch %s: save run record: %v", run.ID, err)
	}
	if runErr != nil {
		return run, runErr
	}
	log.Printf("batch %s: done in %s (articles=%d saved=%d skipped=%d failed=%d)",
		run.ID, run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond),
		run.ArticlesProcessed, run.MentionsSaved, run.MentionsSkipped, run.MentionsFailed)
	return run, nil
}
