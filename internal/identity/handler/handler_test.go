package handler

import (
	"bytes"
	"encoding/json"
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

	"opsledger/internal/identity/handler/mocks"
	"opsledger/internal/identity/models"
	id "opsledger/pkg/domain"
	dErrors "opsledger/pkg/domain-errors"
)

func newTestHandler(t *testing.T) (*chi.Mux, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(mockService, 24*time.Hour, logger)
	r := chi.NewRouter()
	h.Register(r)
	return r, mockService
}

func TestHandleSignUp(t *testing.T) {
	r, mockService := newTestHandler(t)
	account := &models.UserAccount{ID: id.NewUserID(), Email: "ana@example.com"}
	mockService.EXPECT().
		SignUp(gomock.Any(), "ana@example.com", "hunter2hunter2", "").
		Return(account, nil)

	body := []byte(`{"email":"ana@example.com","password":"hunter2hunter2"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, account.ID.String(), resp["id"])
	assert.Equal(t, "ana@example.com", resp["email"])
	assert.NotContains(t, resp, "password_hash")
}

func TestHandleSignUp_Conflict(t *testing.T) {
	r, mockService := newTestHandler(t)
	mockService.EXPECT().
		SignUp(gomock.Any(), "ana@example.com", "hunter2hunter2", "").
		Return(nil, dErrors.New(dErrors.CodeConflict, "email is already registered"))

	body := []byte(`{"email":"ana@example.com","password":"hunter2hunter2"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleSignUp_Validation(t *testing.T) {
	r, _ := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing email", body: `{"password":"hunter2hunter2"}`},
		{name: "missing password", body: `{"email":"ana@example.com"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleSignIn(t *testing.T) {
	r, mockService := newTestHandler(t)
	mockService.EXPECT().
		SignIn(gomock.Any(), "ana@example.com", "hunter2hunter2").
		Return("signed.jwt.token", nil)

	body := []byte(`{"email":"ana@example.com","password":"hunter2hunter2"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "signed.jwt.token", resp["access_token"])
	assert.Equal(t, "Bearer", resp["token_type"])
	assert.Equal(t, 86400.0, resp["expires_in"])
}

func TestHandleSignIn_BadCredentials(t *testing.T) {
	r, mockService := newTestHandler(t)
	mockService.EXPECT().
		SignIn(gomock.Any(), "ana@example.com", "wrong-password").
		Return("", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))

	body := []byte(`{"email":"ana@example.com","password":"wrong-password"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
