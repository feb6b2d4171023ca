package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/domain/entities"
	"github.com/bimakw/market-intel/internal/testutil"
)

func setupRunsHandlerTest() (*RunsHandler, *testutil.MockRunLedger) {
	ledger := testutil.NewMockRunLedger()
	handler := NewRunsHandler(ledger, zap.NewNop())
	return handler, ledger
}

func finishedRun(worker, status string, rowsWritten int64) entities.Run {
	started := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	finished := started.Add(42 * time.Second)
	return entities.Run{
		ID:          "run-" + worker,
		Worker:      worker,
		Status:      status,
		RowsWritten: rowsWritten,
		StartedAt:   started,
		FinishedAt:  &finished,
	}
}

func TestNewRunsHandler(t *testing.T) {
	handler, _ := setupRunsHandlerTest()
	if handler == nil {
		t.Fatal("expected non-nil handler")
	}
}

func TestRunsHandler_GetRecentRuns_Success(t *testing.T) {
	handler, ledger := setupRunsHandlerTest()
	ledger.RecentRunsFunc = func(ctx context.Context, limit int) ([]entities.Run, error) {
		if limit != defaultRunLimit {
			t.Errorf("expected default limit %d, got %d", defaultRunLimit, limit)
		}
		return []entities.Run{
			finishedRun("coingecko", entities.RunStatusSucceeded, 18),
			finishedRun("news", entities.RunStatusFailed, 0),
		}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/runs", nil)
	rec := httptest.NewRecorder()

	handler.GetRecentRuns(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response RunListResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Count != 2 || len(response.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %+v", response)
	}
	if response.Runs[0].Worker != "coingecko" || response.Runs[0].RowsWritten != 18 {
		t.Errorf("unexpected first run %+v", response.Runs[0])
	}
	if response.Runs[1].Status != entities.RunStatusFailed {
		t.Errorf("expected failed status, got %s", response.Runs[1].Status)
	}
}

func TestRunsHandler_GetRecentRuns_CustomLimit(t *testing.T) {
	handler, ledger := setupRunsHandlerTest()
	var gotLimit int
	ledger.RecentRunsFunc = func(ctx context.Context, limit int) ([]entities.Run, error) {
		gotLimit = limit
		return nil, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/runs?limit=10", nil)
	rec := httptest.NewRecorder()

	handler.GetRecentRuns(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if gotLimit != 10 {
		t.Errorf("expected limit 10, got %d", gotLimit)
	}
}

func TestRunsHandler_GetRecentRuns_LimitClamped(t *testing.T) {
	handler, ledger := setupRunsHandlerTest()
	var gotLimit int
	ledger.RecentRunsFunc = func(ctx context.Context, limit int) ([]entities.Run, error) {
		gotLimit = limit
		return nil, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/runs?limit=99999", nil)
	rec := httptest.NewRecorder()

	handler.GetRecentRuns(rec, req)

	if gotLimit != maxRunLimit {
		t.Errorf("expected limit clamped to %d, got %d", maxRunLimit, gotLimit)
	}
}

func TestRunsHandler_GetRecentRuns_InvalidLimit(t *testing.T) {
	handler, _ := setupRunsHandlerTest()

	for _, raw := range []string{"abc", "0", "-5"} {
		req := httptest.NewRequest(http.MethodGet, "/runs?limit="+raw, nil)
		rec := httptest.NewRecorder()

		handler.GetRecentRuns(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit %q: expected status 400, got %d", raw, rec.Code)
		}
	}
}

func TestRunsHandler_GetRecentRuns_LedgerError(t *testing.T) {
	handler, ledger := setupRunsHandlerTest()
	ledger.RecentRunsFunc = func(ctx context.Context, limit int) ([]entities.Run, error) {
		return nil, errors.New("connection refused")
	}

	req := httptest.NewRequest(http.MethodGet, "/runs", nil)
	rec := httptest.NewRecorder()

	handler.GetRecentRuns(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
}

func TestRunsHandler_GetLatestRuns_Success(t *testing.T) {
	handler, ledger := setupRunsHandlerTest()
	ledger.LatestRunsFunc = func(ctx context.Context) ([]entities.Run, error) {
		return []entities.Run{finishedRun("sentiment", entities.RunStatusSucceeded, 120)}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/runs/latest", nil)
	rec := httptest.NewRecorder()

	handler.GetLatestRuns(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response RunListResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Count != 1 || response.Runs[0].Worker != "sentiment" {
		t.Errorf("unexpected response %+v", response)
	}
	if response.Runs[0].FinishedAt == nil {
		t.Error("expected finished_at to be set")
	}
}

func TestRunsHandler_GetLatestRuns_EmptyLedger(t *testing.T) {
	handler, _ := setupRunsHandlerTest()

	req := httptest.NewRequest(http.MethodGet, "/runs/latest", nil)
	rec := httptest.NewRecorder()

	handler.GetLatestRuns(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response RunListResponse
	json.NewDecoder(rec.Body).Decode(&response)
	if response.Count != 0 {
		t.Errorf("expected empty run list, got %+v", response)
	}
}

func TestRunsHandler_RegisterRoutes(t *testing.T) {
	handler, ledger := setupRunsHandlerTest()
	ledger.LatestRunsFunc = func(ctx context.Context) ([]entities.Run, error) {
		return []entities.Run{finishedRun("github", entities.RunStatusSucceeded, 3)}, nil
	}

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}
