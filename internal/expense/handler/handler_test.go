package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"opsledger/internal/expense/handler/mocks"
	"opsledger/internal/expense/models"
	expenseservice "opsledger/internal/expense/service"
	id "opsledger/pkg/domain"
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
	h.RegisterAdmin(r)
	return r, mockService
}

func sampleExpense() *models.Expense {
	return &models.Expense{
		ID:          id.NewExpenseID(),
		WorkerID:    id.NewWorkerID(),
		Amount:      150,
		Category:    "fuel",
		ExpenseType: models.TypeOneTime,
		Date:        "2026-06-02",
		CreatedAt:   time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestHandleCreate(t *testing.T) {
	r, mockService := newTestHandler(t)
	expense := sampleExpense()
	mockService.EXPECT().
		Create(gomock.Any(), gomock.AssignableToTypeOf(expenseservice.CreateRequest{})).
		Return(expense, nil)

	body, err := json.Marshal(map[string]any{
		"worker_id":    expense.WorkerID.String(),
		"amount":       150,
		"category":     "fuel",
		"expense_type": "one_time",
		"date":         "2026-06-02",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/expenses", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, expense.ID.String(), resp["id"])
	assert.Equal(t, "fuel", resp["category"])
	assert.Equal(t, false, resp["is_paid"])
}

func TestHandleCreate_Validation(t *testing.T) {
	r, _ := newTestHandler(t)
	workerID := id.NewWorkerID()

	tests := []struct {
		name string
		body string
	}{
		{name: "missing worker", body: `{"amount":150,"category":"fuel","expense_type":"one_time","date":"2026-06-02"}`},
		{name: "zero amount", body: fmt.Sprintf(`{"worker_id":%q,"amount":0,"category":"fuel","expense_type":"one_time","date":"2026-06-02"}`, workerID)},
		{name: "blank category", body: fmt.Sprintf(`{"worker_id":%q,"amount":150,"category":"  ","expense_type":"one_time","date":"2026-06-02"}`, workerID)},
		{name: "missing type", body: fmt.Sprintf(`{"worker_id":%q,"amount":150,"category":"fuel","date":"2026-06-02"}`, workerID)},
		{name: "missing date", body: fmt.Sprintf(`{"worker_id":%q,"amount":150,"category":"fuel","expense_type":"one_time"}`, workerID)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/expenses", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleSetPaid(t *testing.T) {
	r, mockService := newTestHandler(t)
	expense := sampleExpense()
	expense.IsPaid = true
	paidAt := time.Date(2026, 6, 2, 15, 0, 0, 0, time.UTC)
	expense.PaidAt = &paidAt
	expense.PaidBy = id.NewUserID().String()

	mockService.EXPECT().SetPaid(gomock.Any(), expense.ID, true).Return(expense, nil)

	body := []byte(`{"paid":true}`)
	req := httptest.NewRequest(http.MethodPost, "/expenses/"+expense.ID.String()+"/paid", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["is_paid"])
	assert.Equal(t, expense.PaidBy, resp["paid_by"])
	assert.NotEmpty(t, resp["paid_at"])
}

func TestHandleSetPaid_Forbidden(t *testing.T) {
	r, mockService := newTestHandler(t)
	expenseID := id.NewExpenseID()
	mockService.EXPECT().
		SetPaid(gomock.Any(), expenseID, false).
		Return(nil, dErrors.New(dErrors.CodeForbidden, "only admins can unmark paid expenses"))

	body := []byte(`{"paid":false}`)
	req := httptest.NewRequest(http.MethodPost, "/expenses/"+expenseID.String()+"/paid", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandleDelete(t *testing.T) {
	r, mockService := newTestHandler(t)
	expenseID := id.NewExpenseID()
	mockService.EXPECT().Delete(gomock.Any(), expenseID).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/expenses/"+expenseID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandleDelete_NotFound(t *testing.T) {
	r, mockService := newTestHandler(t)
	expenseID := id.NewExpenseID()
	mockService.EXPECT().Delete(gomock.Any(), expenseID).Return(dErrors.New(dErrors.CodeNotFound, "expense not found"))

	req := httptest.NewRequest(http.MethodDelete, "/expenses/"+expenseID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleDelete_BadID(t *testing.T) {
	r, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodDelete, "/expenses/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleList(t *testing.T) {
	r, mockService := newTestHandler(t)
	expense := sampleExpense()
	mockService.EXPECT().List(gomock.Any(), maxListLimit).Return([]*models.Expense{expense}, nil)

	req := httptest.NewRequest(http.MethodGet, "/expenses", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	expenses := resp["expenses"].([]any)
	require.Len(t, expenses, 1)
}

func TestHandleList_LimitClamped(t *testing.T) {
	r, mockService := newTestHandler(t)
	mockService.EXPECT().List(gomock.Any(), maxListLimit).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/expenses?limit=9999", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
