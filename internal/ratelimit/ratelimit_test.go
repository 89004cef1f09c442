package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"fittrack/internal/clock"
)

func attempt(t *testing.T, l Limiter, key string) Decision {
	t.Helper()
	d, err := l.Allow(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return d
}

func TestMemory_blocks_after_max(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	l := NewMemory(5, 15*time.Minute, clk)

	for i := 1; i <= 5; i++ {
		if d := attempt(t, l, "ip-1"); !d.Allowed {
			t.Fatalf("attempt %d should be allowed", i)
		}
		clk.Advance(time.Minute)
	}

	d := attempt(t, l, "ip-1")
	if d.Allowed {
		t.Fatal("sixth attempt should be blocked")
	}
	if d.RetryAfter != 15*time.Minute {
		t.Errorf("expected retry after 15m, got %v", d.RetryAfter)
	}

	if d := attempt(t, l, "ip-2"); !d.Allowed {
		t.Error("other keys must not be affected")
	}
}

func TestMemory_resets_after_idle_window(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	l := NewMemory(5, 15*time.Minute, clk)

	for i := 0; i < 6; i++ {
		attempt(t, l, "ip-1")
	}

	// Attempts while blocked keep the window open.
	clk.Advance(10 * time.Minute)
	if d := attempt(t, l, "ip-1"); d.Allowed {
		t.Fatal("expected still blocked within the window")
	}

	clk.Advance(15*time.Minute + time.Second)
	d := attempt(t, l, "ip-1")
	if !d.Allowed || d.Count != 1 {
		t.Errorf("expected counter to restart, got %+v", d)
	}
}

func TestMemory_counts_blocked_attempts(t *testing.T) {
	l := NewMemory(2, time.Minute, clock.NewFake(time.Now()))
	for i := 0; i < 4; i++ {
		attempt(t, l, "k")
	}
	if d := attempt(t, l, "k"); d.Count != 5 {
		t.Errorf("expected count 5, got %d", d.Count)
	}
}

func TestMemory_Prune(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	l := NewMemory(5, time.Minute, clk)
	attempt(t, l, "old")
	clk.Advance(2 * time.Minute)
	attempt(t, l, "new")

	if n := l.Prune(); n != 1 {
		t.Errorf("expected 1 pruned key, got %d", n)
	}
	l.Reset("new")
	if n := l.Prune(); n != 0 {
		t.Errorf("expected nothing left to prune, got %d", n)
	}
}

func TestRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedis(client, "rl:", 5, 15*time.Minute)

	for i := 1; i <= 5; i++ {
		if d := attempt(t, l, "ip-1"); !d.Allowed {
			t.Fatalf("attempt %d should be allowed", i)
		}
	}
	d := attempt(t, l, "ip-1")
	if d.Allowed || d.RetryAfter != 15*time.Minute {
		t.Fatalf("expected sixth attempt blocked, got %+v", d)
	}
	if ttl := mr.TTL("rl:ip-1"); ttl != 15*time.Minute {
		t.Errorf("expected window ttl, got %v", ttl)
	}

	mr.FastForward(15*time.Minute + time.Second)
	if d := attempt(t, l, "ip-1"); !d.Allowed || d.Count != 1 {
		t.Errorf("expected counter to restart after idle window, got %+v", d)
	}
}

func TestRedis_store_error(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	if _, err := NewRedis(client, "rl:", 5, time.Minute).Allow(context.Background(), "k"); err == nil {
		t.Error("expected an error when redis is unavailable")
	}
}
