package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stackshelf/backend/models"
	"github.com/stackshelf/backend/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRankingSource records the key it was asked for and returns a canned
// snapshot or error.
type fakeRankingSource struct {
	lastKey service.RankingKey
	ranking *models.Ranking
	err     error
}

func (f *fakeRankingSource) Get(ctx context.Context, key service.RankingKey) (*models.Ranking, error) {
	f.lastKey = key
	if f.err != nil {
		return nil, f.err
	}
	return f.ranking, nil
}

func getRankings(t *testing.T, source RankingSource, query string) *httptest.ResponseRecorder {
	t.Helper()
	h := &RankingsHandler{Cache: source}
	req := httptest.NewRequest(http.MethodGet, "/api/rankings"+query, nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)
	return rec
}

func TestRankingsGet_ReturnsSnapshot(t *testing.T) {
	source := &fakeRankingSource{ranking: &models.Ranking{
		Type:   models.RankingTypeTrending,
		Period: models.RankingPeriodWeek,
		Entries: []models.RankingEntry{
			{Rank: 1, Title: "Clean Code", Score: 12},
		},
		TotalBooks:  1,
		GeneratedAt: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
	}}

	rec := getRankings(t, source, "?type=trending&period=week")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.RankingKey{Type: "trending", Period: "week"}, source.lastKey)

	var got models.Ranking
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, models.RankingTypeTrending, got.Type)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "Clean Code", got.Entries[0].Title)
}

func TestRankingsGet_DefaultsToOverallAll(t *testing.T) {
	source := &fakeRankingSource{ranking: &models.Ranking{}}

	rec := getRankings(t, source, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RankingTypeOverall, source.lastKey.Type)
	assert.Equal(t, models.RankingPeriodAll, source.lastKey.Period)
}

func TestRankingsGet_RejectsUnknownTypeAndPeriod(t *testing.T) {
	source := &fakeRankingSource{ranking: &models.Ranking{}}

	rec := getRankings(t, source, "?type=bestsellers")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = getRankings(t, source, "?period=decade")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRankingsGet_CategoryRules(t *testing.T) {
	source := &fakeRankingSource{ranking: &models.Ranking{}}

	rec := getRankings(t, source, "?type=category")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "category rankings need a category")

	rec = getRankings(t, source, "?type=overall&category=Go")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "category is rejected elsewhere")

	rec = getRankings(t, source, "?type=category&category=Go")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Go", source.lastKey.Category)
}

func TestRankingsGet_GenerationFailureIs502(t *testing.T) {
	source := &fakeRankingSource{err: errors.New("mongo down")}

	rec := getRankings(t, source, "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to load ranking")
}
