package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/stackshelf/backend/models"
	"github.com/stackshelf/backend/store"
)

type ArticlesHandler struct {
	DB *store.DB
}

// List serves GET /api/articles?limit=: the most recently ingested
// articles, newest first. Bodies are omitted to keep responses small.
func (h *ArticlesHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	if limit > 100 {
		limit = 100
	}
	articles, err := h.DB.RecentArticles(r.Context(), int64(limit))
	if err != nil {
		http.Error(w, `{"error":"failed to list articles"}`, http.StatusInternalServerError)
		return
	}
	if articles == nil {
		articles = []models.Article{}
	}
	for i := range articles {
		articles[i].Body = ""
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(articles)
}
