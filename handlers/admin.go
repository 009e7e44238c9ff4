package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/stackshelf/backend/middleware"
	"github.com/stackshelf/backend/models"
	"github.com/stackshelf/backend/service"
	"github.com/stackshelf/backend/store"
)

// BatchRunner is satisfied by *service.BatchRunner.
type BatchRunner interface {
	Run(ctx context.Context) (*models.BatchRun, error)
}

// RankingSweeper is satisfied by *service.RankingCache.
type RankingSweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// AdminHandler exposes the two scheduler entry points on demand plus the
// batch-run audit trail.
type AdminHandler struct {
	DB      *store.DB
	Runner  BatchRunner
	Sweeper RankingSweeper
}

// RunBatch serves POST /api/admin/batch/run. The batch runs synchronously;
// 409 when one is already in flight.
func (h *AdminHandler) RunBatch(w http.ResponseWriter, r *http.Request) {
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		log.Printf("batch run triggered by user %s", userID.Hex())
	}
	run, err := h.Runner.Run(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrBatchAlreadyRunning) {
			http.Error(w, `{"error":"a batch is already running"}`, http.StatusConflict)
			return
		}
		http.Error(w, `{"error":"batch failed: `+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

// ListBatchRuns serves GET /api/admin/batch/runs.
func (h *AdminHandler) ListBatchRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.DB.RecentBatchRuns(r.Context(), int64(queryInt(r, "limit", 20)))
	if err != nil {
		http.Error(w, `{"error":"failed to list batch runs"}`, http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []models.BatchRun{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

type SweepResponse struct {
	Deleted int64 `json:"deleted"`
}

// SweepRankings serves POST /api/admin/rankings/sweep.
func (h *AdminHandler) SweepRankings(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Sweeper.Sweep(r.Context())
	if err != nil {
		http.Error(w, `{"error":"sweep failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SweepResponse{Deleted: deleted})
}
