package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"opsledger/internal/dashboard/handler/mocks"
	dashboardservice "opsledger/internal/dashboard/service"
	dErrors "opsledger/pkg/domain-errors"
)

func newTestHandler(t *testing.T) (*chi.Mux, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(mockService, logger)
	r := chi.NewRouter()
	h.Register(r)
	return r, mockService
}

func TestHandleSummary(t *testing.T) {
	r, mockService := newTestHandler(t)
	mockService.EXPECT().Summarize(gomock.Any()).Return(&dashboardservice.Summary{
		ActiveWorkers:   3,
		TotalIncome:     1250,
		TotalExpenses:   160,
		NetProfit:       1090,
		OutstandingDues: 250,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/summary", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3.0, resp["active_workers"])
	assert.Equal(t, 1090.0, resp["net_profit"])
	assert.Equal(t, 250.0, resp["outstanding_dues"])
}

func TestHandleSummary_StoreFailure(t *testing.T) {
	r, mockService := newTestHandler(t)
	mockService.EXPECT().Summarize(gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeInternal, "failed to load dashboard figures"))

	req := httptest.NewRequest(http.MethodGet, "/dashboard/summary", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotContains(t, resp, "error_description")
}
