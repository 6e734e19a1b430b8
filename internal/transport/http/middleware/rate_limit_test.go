package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

type fakeCounterStore struct {
	mu     sync.Mutex
	counts map[string]int64
	keys   []string
	err    error
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{counts: make(map[string]int64)}
}

func (f *fakeCounterStore) Increment(_ context.Context, windowKey string, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return 0, f.err
	}

	f.counts[windowKey]++
	f.keys = append(f.keys, windowKey)
	return f.counts[windowKey], nil
}

func newLimitedRouter(limiter *RateLimiter, policies ...RateLimitPolicy) *gin.Engine {
	router := gin.New()
	router.Use(limiter.RateLimit(policies...))
	router.GET("/products", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func anonymousPolicy(limit int, window time.Duration) RateLimitPolicy {
	return RateLimitPolicy{
		Name:      "anonymous",
		Limit:     limit,
		Window:    window,
		Partition: IPPartition(),
	}
}

func performRequest(router *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.RemoteAddr = "203.0.113.9:51234"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterAdmitsUpToLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	now := time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)
	store := newFakeCounterStore()
	limiter := NewRateLimiter(store, zaptest.NewLogger(t)).WithClock(func() time.Time { return now })

	router := newLimitedRouter(limiter, anonymousPolicy(5, time.Minute))

	for i := 0; i < 5; i++ {
		rec := performRequest(router)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := performRequest(router)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on request over limit, got %d", rec.Code)
	}
}

func TestRateLimiterRejectionBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	now := time.Date(2025, 10, 12, 10, 0, 30, 0, time.UTC)
	store := newFakeCounterStore()
	limiter := NewRateLimiter(store, zaptest.NewLogger(t)).WithClock(func() time.Time { return now })

	router := newLimitedRouter(limiter, anonymousPolicy(1, time.Minute))

	performRequest(router)
	rec := performRequest(router)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}

	retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	if err != nil {
		t.Fatalf("Retry-After not an integer: %v", err)
	}
	// The clock is pinned 30s into the minute window, so the window closes
	// in exactly 30s. A flat fallback value would fail this check.
	if retryAfter < 29 || retryAfter > 31 {
		t.Fatalf("expected Retry-After of 30s until the window closes, got %d", retryAfter)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["error"] != "Too many requests" {
		t.Fatalf("unexpected error field: %q", body["error"])
	}
	if body["message"] != "Rate limit exceeded. Please try again later." {
		t.Fatalf("unexpected message field: %q", body["message"])
	}
	if body["retryAfter"] != fmt.Sprintf("%d seconds", retryAfter) {
		t.Fatalf("retryAfter %q does not match header %d", body["retryAfter"], retryAfter)
	}
}

func TestRateLimiterRejectedRequestsConsumeSlots(t *testing.T) {
	gin.SetMode(gin.TestMode)

	now := time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)
	store := newFakeCounterStore()
	limiter := NewRateLimiter(store, zaptest.NewLogger(t)).WithClock(func() time.Time { return now })

	router := newLimitedRouter(limiter, anonymousPolicy(2, time.Minute))

	for i := 0; i < 5; i++ {
		performRequest(router)
	}

	if len(store.keys) != 5 {
		t.Fatalf("expected 5 increments, got %d", len(store.keys))
	}
	if got := store.counts[store.keys[0]]; got != 5 {
		t.Fatalf("expected counter at 5, got %d", got)
	}
}

func TestRateLimiterWindowRollover(t *testing.T) {
	gin.SetMode(gin.TestMode)

	now := time.Date(2025, 10, 12, 10, 0, 59, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	store := newFakeCounterStore()
	limiter := NewRateLimiter(store, zaptest.NewLogger(t)).WithClock(clock)

	router := newLimitedRouter(limiter, anonymousPolicy(1, time.Minute))

	if rec := performRequest(router); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := performRequest(router); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 inside window, got %d", rec.Code)
	}

	mu.Lock()
	now = now.Add(2 * time.Second) // crosses the minute boundary
	mu.Unlock()

	if rec := performRequest(router); rec.Code != http.StatusOK {
		t.Fatalf("expected fresh window to admit, got %d", rec.Code)
	}

	if len(store.counts) != 2 {
		t.Fatalf("expected 2 distinct window keys, got %d", len(store.counts))
	}
}

func TestRateLimiterPartitionSelection(t *testing.T) {
	gin.SetMode(gin.TestMode)

	now := time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)
	store := newFakeCounterStore()
	limiter := NewRateLimiter(store, zaptest.NewLogger(t)).WithClock(func() time.Time { return now })

	authenticated := RateLimitPolicy{
		Name:      "authenticated",
		Limit:     10,
		Window:    time.Minute,
		Partition: UserPartition(),
	}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if subject := c.GetHeader("X-Test-Subject"); subject != "" {
			c.Set(UserIDKey, subject)
		}
		c.Next()
	})
	router.Use(limiter.RateLimit(authenticated, anonymousPolicy(5, time.Minute)))
	router.GET("/products", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	windowIndex := now.UnixNano() / time.Minute.Nanoseconds()

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.RemoteAddr = "203.0.113.9:51234"
	req.Header.Set("X-Test-Subject", "user-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	wantUserKey := fmt.Sprintf("authenticated:user:user-1:%d", windowIndex)
	if store.keys[0] != wantUserKey {
		t.Fatalf("expected key %q, got %q", wantUserKey, store.keys[0])
	}

	req = httptest.NewRequest(http.MethodGet, "/products", nil)
	req.RemoteAddr = "203.0.113.9:51234"
	router.ServeHTTP(httptest.NewRecorder(), req)

	wantIPKey := fmt.Sprintf("anonymous:ip:203.0.113.9:%d", windowIndex)
	if store.keys[1] != wantIPKey {
		t.Fatalf("expected key %q, got %q", wantIPKey, store.keys[1])
	}
}

func TestRateLimiterStoreOutage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := newFakeCounterStore()
	store.err = errors.New("connection refused")

	limiter := NewRateLimiter(store, zaptest.NewLogger(t))
	router := newLimitedRouter(limiter, anonymousPolicy(1, time.Minute))

	// Fail-open is the default: traffic passes unthrottled.
	if rec := performRequest(router); rec.Code != http.StatusOK {
		t.Fatalf("expected fail-open 200, got %d", rec.Code)
	}

	closed := NewRateLimiter(store, zaptest.NewLogger(t)).WithFailOpen(false)
	router = newLimitedRouter(closed, anonymousPolicy(1, time.Minute))

	if rec := performRequest(router); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected fail-closed 503, got %d", rec.Code)
	}
}

func TestRateLimiterHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	now := time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)
	store := newFakeCounterStore()
	limiter := NewRateLimiter(store, zaptest.NewLogger(t)).WithClock(func() time.Time { return now })

	router := newLimitedRouter(limiter, anonymousPolicy(5, time.Minute))

	rec := performRequest(router)
	if rec.Header().Get("X-RateLimit-Limit") != "5" {
		t.Fatalf("unexpected limit header: %q", rec.Header().Get("X-RateLimit-Limit"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "4" {
		t.Fatalf("unexpected remaining header: %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
	if rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Fatal("expected reset header to be set")
	}
}

func TestRateLimiterNoPoliciesPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := newFakeCounterStore()
	limiter := NewRateLimiter(store, zaptest.NewLogger(t))

	router := newLimitedRouter(limiter)

	if rec := performRequest(router); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with no policies, got %d", rec.Code)
	}
	if len(store.keys) != 0 {
		t.Fatalf("expected no store activity, got %d increments", len(store.keys))
	}
}
