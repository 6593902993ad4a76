package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/finsync/internal/models"
	"github.com/iudanet/finsync/internal/server/storage"
)

// withTestUser подставляет пользователя, как это делает auth middleware
func withTestUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID, "alice")))
		})
	}
}

func newResourceRouter(h *ResourceHandler, userID string) http.Handler {
	r := chi.NewRouter()
	if userID != "" {
		r.Use(withTestUser(userID))
	}
	r.Get("/transactions", h.List(models.ResourceTransactions))
	r.Put("/goals/{id}", h.Put(models.ResourceGoals))
	r.Delete("/goals/{id}", h.Delete(models.ResourceGoals))
	return r
}

func seedResource(t *testing.T, s *mockResourceStorage, rt models.ResourceType, id, accountID int64, updated time.Time, data string) {
	t.Helper()
	require.NoError(t, s.PutResource(t.Context(), &models.StoredResource{
		UserID:    "user-1",
		Type:      rt,
		ID:        id,
		AccountID: accountID,
		UpdatedAt: updated,
		Data:      json.RawMessage(data),
	}))
}

func TestResourceHandler_List(t *testing.T) {
	store := newMockResourceStorage()
	seedResource(t, store, models.ResourceTransactions, 1, 10, testNow, `{"id":1,"account_id":10}`)
	seedResource(t, store, models.ResourceTransactions, 2, 20, testNow.Add(time.Hour), `{"id":2,"account_id":20}`)
	// некорректный элемент отдаётся как есть
	seedResource(t, store, models.ResourceTransactions, 3, 0, testNow, `{"id":3,"account_id":"ten"}`)

	router := newResourceRouter(NewResourceHandler(setupTestLogger(), store), "user-1")

	tests := []struct {
		wantFilter storage.ResourceFilter
		name       string
		query      string
		wantBody   string
	}{
		{
			name:     "all",
			wantBody: `{"data":[{"id":1,"account_id":10},{"id":2,"account_id":20},{"id":3,"account_id":"ten"}]}`,
		},
		{
			name:       "by account",
			query:      "?account_id=20",
			wantFilter: storage.ResourceFilter{AccountID: 20},
			wantBody:   `{"data":[{"id":2,"account_id":20}]}`,
		},
		{
			name:       "updated since",
			query:      "?updated_since=2026-03-01T12:30:00Z",
			wantFilter: storage.ResourceFilter{Since: testNow.Add(30 * time.Minute)},
			wantBody:   `{"data":[{"id":2,"account_id":20}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transactions"+tt.query, nil))

			require.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.True(t, tt.wantFilter.Since.Equal(store.lastFilter.Since))
			assert.Equal(t, tt.wantFilter.AccountID, store.lastFilter.AccountID)
		})
	}
}

func TestResourceHandler_ListEmpty(t *testing.T) {
	router := newResourceRouter(NewResourceHandler(setupTestLogger(), newMockResourceStorage()), "user-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transactions", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestResourceHandler_BadRequests(t *testing.T) {
	router := newResourceRouter(NewResourceHandler(setupTestLogger(), newMockResourceStorage()), "user-1")

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{name: "bad account id", method: http.MethodGet, target: "/transactions?account_id=abc", wantStatus: http.StatusBadRequest},
		{name: "negative account id", method: http.MethodGet, target: "/transactions?account_id=-1", wantStatus: http.StatusBadRequest},
		{name: "bad since", method: http.MethodGet, target: "/transactions?updated_since=yesterday", wantStatus: http.StatusBadRequest},
		{name: "bad delete id", method: http.MethodDelete, target: "/goals/x", wantStatus: http.StatusBadRequest},
		{name: "put invalid json", method: http.MethodPut, target: "/goals/1", body: "{", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestResourceHandler_NoUser(t *testing.T) {
	router := newResourceRouter(NewResourceHandler(setupTestLogger(), newMockResourceStorage()), "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transactions", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResourceHandler_PutAndDelete(t *testing.T) {
	store := newMockResourceStorage()
	h := NewResourceHandler(setupTestLogger(), store)
	h.now = func() time.Time { return testNow }
	router := newResourceRouter(h, "user-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/goals/5", strings.NewReader(`{"id":5,"name":"Car","account_id":3}`)))
	require.Equal(t, http.StatusNoContent, w.Code)

	stored := store.records[resourceKey("user-1", models.ResourceGoals)][5]
	require.NotNil(t, stored)
	assert.Equal(t, int64(3), stored.AccountID)
	assert.Equal(t, testNow, stored.UpdatedAt)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/goals/5", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/goals/5", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not_found","message":"resource not found"}`, w.Body.String())
}

func TestResourceHandler_StorageError(t *testing.T) {
	store := newMockResourceStorage()
	store.err = errors.New("database is locked")
	router := newResourceRouter(NewResourceHandler(setupTestLogger(), store), "user-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transactions", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestPeekAccountID(t *testing.T) {
	assert.Equal(t, int64(4), peekAccountID([]byte(`{"account_id":4}`)))
	assert.Zero(t, peekAccountID([]byte(`{"account_id":"four"}`)))
	assert.Zero(t, peekAccountID([]byte(`[1,2]`)))
}
