package ratelimit

import (
	"testing"
	"time"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{
			name:     "burst allows initial requests",
			rps:      1,
			burst:    3,
			calls:    3,
			wantPass: 3,
		},
		{
			name:     "exceeding burst blocks",
			rps:      1,
			burst:    2,
			calls:    5,
			wantPass: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)
			defer rl.Stop()

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if rl.Allow("test") {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestKeyedRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := PerMinute(1)
	defer rl.Stop()

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first request for key1 should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("second request for key1 should be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatal("key2 should have its own bucket")
	}
}

func TestKeyedRateLimiter_EvictsIdleKeys(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()

	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.Allow("stale")

	now = now.Add(defaultIdleTTL / 2)
	rl.Allow("fresh")

	now = now.Add(defaultIdleTTL/2 + time.Second)
	rl.evictIdle()

	if got := rl.Len(); got != 1 {
		t.Fatalf("expected 1 tracked key after eviction, got %d", got)
	}
}

func TestKeyedRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := New(1, 1)
	rl.Stop()
	rl.Stop()
}
