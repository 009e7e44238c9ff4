package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stackshelf/backend/models"
	"github.com/stackshelf/backend/service"
)

// RankingSource is satisfied by *service.RankingCache.
type RankingSource interface {
	Get(ctx context.Context, key service.RankingKey) (*models.Ranking, error)
}

type RankingsHandler struct {
	Cache RankingSource
}

// Get serves GET /api/rankings?type=&period=&category=. Type defaults to
// overall and period to all; category is required for type=category and
// rejected otherwise. A regeneration failure is surfaced as 502 rather than
// serving stale or empty data.
func (h *RankingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	rankingType := r.URL.Query().Get("type")
	if rankingType == "" {
		rankingType = models.RankingTypeOverall
	}
	period := r.URL.Query().Get("period")
	if period == "" {
		period = models.RankingPeriodAll
	}
	category := r.URL.Query().Get("category")

	if !contains(models.ValidRankingTypes, rankingType) {
		http.Error(w, `{"error":"invalid ranking type"}`, http.StatusBadRequest)
		return
	}
	if !contains(models.ValidRankingPeriods, period) {
		http.Error(w, `{"error":"invalid ranking period"}`, http.StatusBadRequest)
		return
	}
	if rankingType == models.RankingTypeCategory && category == "" {
		http.Error(w, `{"error":"category is required for category rankings"}`, http.StatusBadRequest)
		return
	}
	if rankingType != models.RankingTypeCategory && category != "" {
		http.Error(w, `{"error":"category is only valid for category rankings"}`, http.StatusBadRequest)
		return
	}

	key := service.RankingKey{Type: rankingType, Category: category, Period: period}
	ranking, err := h.Cache.Get(r.Context(), key)
	if err != nil {
		http.Error(w, `{"error":"failed to load ranking"}`, http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ranking)
}

func contains(valid []string, v string) bool {
	for _, s := range valid {
		if s == v {
			return true
		}
	}
	return false
}
