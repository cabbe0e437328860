package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/respond"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/config"
)

// tokenBucketScript refills and takes one token atomically. It returns
// {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
    tokens = capacity
    last_refill = now_ms
end

if interval_ms > 0 and refill_tokens > 0 then
    local elapsed = math.max(0, now_ms - last_refill)
    local intervals = math.floor(elapsed / interval_ms)
    if intervals > 0 then
        tokens = math.min(capacity, tokens + (intervals * refill_tokens))
        last_refill = last_refill + (intervals * interval_ms)
    end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
else
    retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// RateLimiter throttles anonymous endpoints per client IP and route. Redis
// failures let the request through.
type RateLimiter struct {
	cfg    config.RateLimitConfig
	rdb    *redis.Client
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
	now    func() time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		cfg:    cfg,
		rdb:    rdb,
		cb:     config.NewCircuitBreaker("Redis-RateLimit", logger),
		logger: logger,
		now:    time.Now,
	}
}

func (l *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	if !l.cfg.Enabled || l.rdb == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		key := l.key(r)
		res, err := l.cb.Execute(func() (interface{}, error) {
			return tokenBucketScript.Run(r.Context(), l.rdb, []string{key},
				l.now().UnixMilli(),
				l.cfg.Capacity,
				l.cfg.RefillTokens,
				l.cfg.RefillInterval.Milliseconds(),
				int64(l.cfg.TTL/time.Second),
			).Result()
		})
		if err != nil {
			l.logger.Warn("rate limiter unavailable, allowing request", zap.String("key", key), zap.Error(err))
			next(w, r)
			return
		}

		arr, ok := res.([]interface{})
		if !ok || len(arr) != 3 {
			l.logger.Warn("unexpected rate limiter result", zap.String("key", key), zap.Any("result", res))
			next(w, r)
			return
		}
		allowed := asInt64(arr[0]) == 1
		remaining := asInt64(arr[1])
		retryMs := asInt64(arr[2])

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Capacity))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if !allowed {
			secs := int(math.Ceil(float64(retryMs) / 1000.0))
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			respond.Message(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}
		next(w, r)
	}
}

func (l *RateLimiter) key(r *http.Request) string {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	if ip == "" {
		ip = "unknown"
	}
	route := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			route = p
		}
	}
	return strings.Join([]string{l.cfg.Prefix, "ip", ip, "route", r.Method + " " + route}, ":")
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	n, _ := strconv.ParseInt(fmt.Sprint(v), 10, 64)
	return n
}
