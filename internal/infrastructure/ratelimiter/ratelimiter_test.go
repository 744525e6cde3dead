package ratelimiter

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowConsumesBurst(t *testing.T) {
	rl := New(Options{
		MaxRatePerSecond: 1,
		MaxBurst:         3,
	})

	for i := 0; i < 3; i++ {
		if !rl.Allow("client-1") {
			t.Fatalf("request %d should fit in the burst", i+1)
		}
	}
	if rl.Allow("client-1") {
		t.Fatal("burst exhausted, fourth request must be rejected")
	}
}

func TestAllowIsolatesSources(t *testing.T) {
	rl := New(Options{
		MaxRatePerSecond: 1,
		MaxBurst:         1,
	})

	if !rl.Allow("client-1") {
		t.Fatal("first source should pass")
	}
	if rl.Allow("client-1") {
		t.Fatal("first source should be exhausted")
	}
	if !rl.Allow("client-2") {
		t.Fatal("a different source must have its own bucket")
	}
}

func TestRemainingReflectsConsumption(t *testing.T) {
	rl := New(Options{
		MaxRatePerSecond: 1,
		MaxBurst:         5,
	})

	if got := rl.Remaining("client-1"); got != 5 {
		t.Fatalf("expected full bucket, got %d", got)
	}

	rl.Allow("client-1")
	rl.Allow("client-1")

	if got := rl.Remaining("client-1"); got != 3 {
		t.Fatalf("expected 3 remaining, got %d", got)
	}
}

func TestGetSourceKeyPrefersHeader(t *testing.T) {
	rl := New(Options{
		MaxRatePerSecond: 1,
		SourceHeaderKey:  "X-Forwarded-For",
	})

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"

	if got := rl.GetSourceKey(r); got != "10.0.0.1:1234" {
		t.Fatalf("expected remote addr fallback, got %q", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	if got := rl.GetSourceKey(r); got != "203.0.113.9" {
		t.Fatalf("expected header source, got %q", got)
	}
}

func TestInMemoryCacheExpiry(t *testing.T) {
	cache := NewInMemory()
	defer cache.Close()

	if _, err := cache.Get("missing"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	if err := cache.SetWithExpiration("k", 7, time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := cache.Get("k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}

	if err := cache.SetWithExpiration("stale", 1, time.Nanosecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := cache.Get("stale"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected stale entry to miss, got %v", err)
	}
}
