package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute, setupTestLogger())
	defer rl.Stop()
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("1.2.3.4")
	assert.True(t, ok)
	ok, _ = rl.Allow("1.2.3.4")
	assert.True(t, ok)

	ok, retry := rl.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, time.Minute, retry)

	// другой ключ - свой bucket
	ok, _ = rl.Allow("5.6.7.8")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, _ = rl.Allow("1.2.3.4")
	assert.True(t, ok)
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute, setupTestLogger())
	defer rl.Stop()

	for range 100 {
		ok, _ := rl.Allow("1.2.3.4")
		assert.True(t, ok)
	}
}

func TestRateLimiter_CleanupOldBuckets(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Minute, setupTestLogger())
	defer rl.Stop()
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(3 * time.Minute)
	rl.Allow("fresh")
	rl.cleanupOldBuckets()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.buckets, "old")
	assert.Contains(t, rl.buckets, "fresh")
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, setupTestLogger())
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	req.RemoteAddr = "10.0.0.1:5000"

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// другой порт того же адреса - тот же bucket
	req.RemoteAddr = "10.0.0.1:5001"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate_limited","message":"rate limit exceeded, please try again later"}`, w.Body.String())
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		headers    map[string]string
		name       string
		remoteAddr string
		want       string
	}{
		{name: "forwarded list", headers: map[string]string{"X-Forwarded-For": "1.1.1.1,2.2.2.2"}, remoteAddr: "3.3.3.3:1", want: "1.1.1.1"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "4.4.4.4"}, remoteAddr: "3.3.3.3:1", want: "4.4.4.4"},
		{name: "remote addr", remoteAddr: "3.3.3.3:1", want: "3.3.3.3"},
		{name: "remote addr without port", remoteAddr: "3.3.3.3", want: "3.3.3.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
