package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	t.Run("within burst", func(t *testing.T) {
		m := NewRateLimitMiddleware(1, 3)
		h := m.RateLimit(okHandler)
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/controllers", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("exceeded and refilled", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		m := NewRateLimitMiddleware(1, 1)
		m.now = func() time.Time { return now }
		h := m.RateLimit(okHandler)

		req := httptest.NewRequest(http.MethodGet, "/api/controllers", nil)
		req.RemoteAddr = "192.168.1.2:12345"

		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))

		// other clients have their own bucket
		other := httptest.NewRequest(http.MethodGet, "/api/controllers", nil)
		other.RemoteAddr = "192.168.1.3:12345"
		w = httptest.NewRecorder()
		h.ServeHTTP(w, other)
		assert.Equal(t, http.StatusOK, w.Code)

		now = now.Add(time.Second)
		w = httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("idle visitors expire", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		m := NewRateLimitMiddleware(1, 1)
		m.now = func() time.Time { return now }
		m.limiter("10.0.0.1")
		now = now.Add(11 * time.Minute)
		m.limiter("10.0.0.2")
		assert.Len(t, m.visitors, 1)
	})

	t.Run("sweep runs at most once per interval", func(t *testing.T) {
		start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		now := start
		m := NewRateLimitMiddleware(1, 1)
		m.now = func() time.Time { return now }

		m.limiter("10.0.0.1")
		now = start.Add(10 * time.Minute)
		m.limiter("10.0.0.2")
		assert.Len(t, m.visitors, 2)

		// 10.0.0.1 is now stale, but the last sweep was only 30s ago
		now = start.Add(10*time.Minute + 30*time.Second)
		m.limiter("10.0.0.3")
		assert.Len(t, m.visitors, 3)

		now = start.Add(11*time.Minute + 5*time.Second)
		m.limiter("10.0.0.4")
		assert.Len(t, m.visitors, 3)
		assert.NotContains(t, m.visitors, "10.0.0.1")
		assert.Equal(t, now, m.lastSweep)
	})
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "10.1.2.3", getClientIP(req))

	req.Header.Set("X-Real-IP", "172.16.0.9")
	assert.Equal(t, "172.16.0.9", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", getClientIP(req))
}
