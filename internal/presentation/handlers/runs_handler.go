package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/domain/entities"
	"github.com/bimakw/market-intel/internal/domain/repositories"
)

const (
	defaultRunLimit = 50
	maxRunLimit     = 500
)

// RunsHandler exposes the worker run ledger over HTTP
type RunsHandler struct {
	ledger repositories.RunLedger
	logger *zap.Logger
}

// NewRunsHandler creates a new runs handler
func NewRunsHandler(ledger repositories.RunLedger, logger *zap.Logger) *RunsHandler {
	return &RunsHandler{
		ledger: ledger,
		logger: logger,
	}
}

// RunResponse is the JSON shape of a single ledger entry
type RunResponse struct {
	ID          string     `json:"id"`
	Worker      string     `json:"worker"`
	Status      string     `json:"status"`
	RowsWritten int64      `json:"rows_written"`
	ItemsFailed int64      `json:"items_failed"`
	Message     string     `json:"message,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// RunListResponse wraps a list of runs
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

// RegisterRoutes registers run ledger routes
func (h *RunsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/runs", h.GetRecentRuns)
	r.Get("/runs/latest", h.GetLatestRuns)
}

// GetRecentRuns handles GET /api/v1/runs
func (h *RunsHandler) GetRecentRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultRunLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.respondError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}
	if limit > maxRunLimit {
		limit = maxRunLimit
	}

	runs, err := h.ledger.RecentRuns(ctx, limit)
	if err != nil {
		h.logger.Error("Failed to list recent runs", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	h.respondJSON(w, http.StatusOK, toRunListResponse(runs))
}

// GetLatestRuns handles GET /api/v1/runs/latest
func (h *RunsHandler) GetLatestRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	runs, err := h.ledger.LatestRuns(ctx)
	if err != nil {
		h.logger.Error("Failed to list latest runs", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	h.respondJSON(w, http.StatusOK, toRunListResponse(runs))
}

func toRunListResponse(runs []entities.Run) RunListResponse {
	out := make([]RunResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, RunResponse{
			ID:          run.ID,
			Worker:      run.Worker,
			Status:      run.Status,
			RowsWritten: run.RowsWritten,
			ItemsFailed: run.ItemsFailed,
			Message:     run.Message,
			StartedAt:   run.StartedAt,
			FinishedAt:  run.FinishedAt,
		})
	}
	return RunListResponse{Runs: out, Count: len(out)}
}

func (h *RunsHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *RunsHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
