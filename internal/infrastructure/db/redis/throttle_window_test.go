package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newMiniThrottle(t *testing.T, maxAttempts int, window time.Duration) (*LoginThrottle, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return NewLoginThrottle(client, maxAttempts, window), mr
}

func TestLoginThrottle_BlocksAfterMaxAttempts(t *testing.T) {
	th, _ := newMiniThrottle(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		blocked, err := th.Blocked(ctx, "eve@example.com")
		if err != nil || blocked {
			t.Fatalf("attempt %d: expected open, got blocked=%v err=%v", i, blocked, err)
		}
		if err := th.RecordFailure(ctx, "eve@example.com"); err != nil {
			t.Fatalf("record failure: %v", err)
		}
	}

	blocked, err := th.Blocked(ctx, "eve@example.com")
	if err != nil || !blocked {
		t.Fatalf("expected blocked after 3 failures, got blocked=%v err=%v", blocked, err)
	}
	if blocked, _ := th.Blocked(ctx, "other@example.com"); blocked {
		t.Fatal("counters must be per key")
	}
}

func TestLoginThrottle_FirstFailureStartsWindow(t *testing.T) {
	th, mr := newMiniThrottle(t, 3, time.Minute)

	if err := th.RecordFailure(context.Background(), "k"); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if ttl := mr.TTL(keyPrefix + "k"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected TTL within the window, got %v", ttl)
	}

	// later failures keep the original window
	mr.FastForward(40 * time.Second)
	if err := th.RecordFailure(context.Background(), "k"); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if ttl := mr.TTL(keyPrefix + "k"); ttl > 20*time.Second {
		t.Fatalf("window must not be extended, got %v", ttl)
	}
}

func TestLoginThrottle_WindowExpiryUnblocks(t *testing.T) {
	th, mr := newMiniThrottle(t, 2, time.Minute)
	ctx := context.Background()

	_ = th.RecordFailure(ctx, "k")
	_ = th.RecordFailure(ctx, "k")
	if blocked, _ := th.Blocked(ctx, "k"); !blocked {
		t.Fatal("expected blocked")
	}

	mr.FastForward(time.Minute)

	blocked, err := th.Blocked(ctx, "k")
	if err != nil || blocked {
		t.Fatalf("expected unblocked after window, got blocked=%v err=%v", blocked, err)
	}
}

func TestLoginThrottle_CounterWithoutTTLIsRepaired(t *testing.T) {
	th, mr := newMiniThrottle(t, 5, time.Minute)

	if err := mr.Set(keyPrefix+"k", "4"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := th.RecordFailure(context.Background(), "k"); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if ttl := mr.TTL(keyPrefix + "k"); ttl <= 0 {
		t.Fatalf("expected TTL to be set, got %v", ttl)
	}

	mr.FastForward(time.Minute)
	if blocked, _ := th.Blocked(context.Background(), "k"); blocked {
		t.Fatal("counter must expire with the window")
	}
}

func TestLoginThrottle_Reset(t *testing.T) {
	th, mr := newMiniThrottle(t, 1, time.Minute)
	ctx := context.Background()

	_ = th.RecordFailure(ctx, "k")
	if blocked, _ := th.Blocked(ctx, "k"); !blocked {
		t.Fatal("expected blocked")
	}
	if err := th.Reset(ctx, "k"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if mr.Exists(keyPrefix + "k") {
		t.Fatal("expected counter deleted")
	}
	if blocked, _ := th.Blocked(ctx, "k"); blocked {
		t.Fatal("expected open after reset")
	}
}
