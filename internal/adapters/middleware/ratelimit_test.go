package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/config"
)

func newTestLimiter(t *testing.T, capacity int) (*RateLimiter, *miniredis.Miniredis, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	l := NewRateLimiter(config.RateLimitConfig{
		Enabled:        true,
		Capacity:       capacity,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            time.Hour,
		Prefix:         "rl",
	}, rdb, zap.NewNop())
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, mr, &now
}

func hit(h http.HandlerFunc, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/applications/foster", nil)
	req.RemoteAddr = ip + ":5555"
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func noContent(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }

func TestRateLimiter_TokenBucket(t *testing.T) {
	l, _, now := newTestLimiter(t, 2)
	h := l.Limit(noContent)

	first := hit(h, "10.0.0.1")
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusNoContent, hit(h, "10.0.0.1").Code)

	blocked := hit(h, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "60", blocked.Header().Get("Retry-After"))
	assert.Contains(t, blocked.Body.String(), `"code":"TooManyRequests"`)

	// a different client has its own bucket
	assert.Equal(t, http.StatusNoContent, hit(h, "10.0.0.2").Code)

	*now = now.Add(time.Minute)
	assert.Equal(t, http.StatusNoContent, hit(h, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1").Code)
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	l, mr, _ := newTestLimiter(t, 1)
	h := l.Limit(noContent)
	mr.Close()

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, hit(h, "10.0.0.1").Code)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	l := NewRateLimiter(config.RateLimitConfig{Enabled: false, Capacity: 1}, nil, zap.NewNop())
	h := l.Limit(noContent)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, hit(h, "10.0.0.1").Code)
	}
}

func TestRateLimiter_Key(t *testing.T) {
	l, _, _ := newTestLimiter(t, 1)
	req := httptest.NewRequest(http.MethodPost, "/api/applications/foster", nil)
	req.RemoteAddr = "192.0.2.7:1234"
	assert.Equal(t, "rl:ip:192.0.2.7:route:POST /api/applications/foster", l.key(req))
}
