package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestRateLimitRepository_IncrementCounts(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, FixedWindowConfig{KeyPrefix: "catalog:rate-limit"})

	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := repo.Increment(ctx, "anonymous:ip:203.0.113.9:12345", time.Minute)
		if err != nil {
			t.Fatalf("Increment returned error: %v", err)
		}
		if got != want {
			t.Fatalf("expected count %d, got %d", want, got)
		}
	}
}

func TestRateLimitRepository_IncrementSetsTTLOnce(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewRateLimitRepository(client, FixedWindowConfig{KeyPrefix: "catalog:rate-limit"})

	ctx := context.Background()
	ttl := time.Minute

	if _, err := repo.Increment(ctx, "anonymous:ip:203.0.113.9:77", ttl); err != nil {
		t.Fatalf("Increment returned error: %v", err)
	}

	key := "catalog:rate-limit:anonymous:ip:203.0.113.9:77"
	remaining := server.TTL(key)
	if remaining <= 0 || remaining > ttl {
		t.Fatalf("expected ttl within (0, %v], got %v", ttl, remaining)
	}

	// Subsequent increments must not rearm the expiry.
	server.FastForward(30 * time.Second)
	if _, err := repo.Increment(ctx, "anonymous:ip:203.0.113.9:77", ttl); err != nil {
		t.Fatalf("Increment returned error: %v", err)
	}
	if remaining := server.TTL(key); remaining > 30*time.Second {
		t.Fatalf("expected ttl to keep draining, got %v", remaining)
	}
}

func TestRateLimitRepository_KeysAreIndependent(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, FixedWindowConfig{})

	ctx := context.Background()

	if _, err := repo.Increment(ctx, "anonymous:ip:198.51.100.1:5", time.Minute); err != nil {
		t.Fatalf("Increment returned error: %v", err)
	}
	if _, err := repo.Increment(ctx, "anonymous:ip:198.51.100.1:5", time.Minute); err != nil {
		t.Fatalf("Increment returned error: %v", err)
	}

	got, err := repo.Increment(ctx, "anonymous:ip:198.51.100.2:5", time.Minute)
	if err != nil {
		t.Fatalf("Increment returned error: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected a fresh counter for a different partition, got %d", got)
	}

	got, err = repo.Increment(ctx, "anonymous:ip:198.51.100.1:6", time.Minute)
	if err != nil {
		t.Fatalf("Increment returned error: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected a fresh counter for the next window, got %d", got)
	}
}

func TestRateLimitRepository_RejectsNonPositiveTTL(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, FixedWindowConfig{})

	if _, err := repo.Increment(context.Background(), "anonymous:ip:x:1", 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
