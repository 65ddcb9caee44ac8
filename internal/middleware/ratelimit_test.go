package middleware

import (
	"testing"
	"time"
)

func TestRateLimiter_AllowsUpToMax(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    5,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})

	for i := 0; i < 5; i++ {
		if !rl.Allow("test-ip") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiter_BlocksAfterMax(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    3,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})

	for i := 0; i < 3; i++ {
		rl.Allow("test-ip")
	}

	if rl.Allow("test-ip") {
		t.Fatal("4th request should be blocked")
	}
}

func TestRateLimiter_DifferentKeysIndependent(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    2,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})

	rl.Allow("ip-a")
	rl.Allow("ip-a")

	// ip-a is exhausted
	if rl.Allow("ip-a") {
		t.Fatal("ip-a should be blocked")
	}

	// ip-b should still be allowed
	if !rl.Allow("ip-b") {
		t.Fatal("ip-b should be allowed (independent key)")
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    2,
		Window: 50 * time.Millisecond,
		KeyFn:  KeyByIP,
	})

	rl.Allow("test")
	rl.Allow("test")

	if rl.Allow("test") {
		t.Fatal("should be blocked within window")
	}

	// Wait for window to expire
	time.Sleep(60 * time.Millisecond)

	if !rl.Allow("test") {
		t.Fatal("should be allowed after window reset")
	}
}

func TestRateLimiter_ReportSubmitConfig(t *testing.T) {
	rl := NewReportSubmitRateLimiter()
	for i := 0; i < 10; i++ {
		if !rl.Allow("contributor:abc123") {
			t.Fatalf("submit request %d should be allowed (max 10)", i+1)
		}
	}
	if rl.Allow("contributor:abc123") {
		t.Fatal("11th submit should be blocked")
	}
}

func TestRateLimiter_DispositionConfig(t *testing.T) {
	rl := NewDispositionRateLimiter()
	for i := 0; i < 20; i++ {
		if !rl.Allow("contributor:abc123") {
			t.Fatalf("disposition request %d should be allowed (max 20)", i+1)
		}
	}
	if rl.Allow("contributor:abc123") {
		t.Fatal("21st disposition request should be blocked")
	}
}

func TestRateLimiter_SuggestionConfig(t *testing.T) {
	rl := NewSuggestionRateLimiter()
	for i := 0; i < 5; i++ {
		if !rl.Allow("contributor:abc123") {
			t.Fatalf("suggestion request %d should be allowed (max 5)", i+1)
		}
	}
	if rl.Allow("contributor:abc123") {
		t.Fatal("6th suggestion request should be blocked")
	}
}

func TestRateLimiter_StatsConfig(t *testing.T) {
	rl := NewStatsRateLimiter()
	for i := 0; i < 30; i++ {
		if !rl.Allow("ip:127.0.0.1") {
			t.Fatalf("stats request %d should be allowed (max 30)", i+1)
		}
	}
	if rl.Allow("ip:127.0.0.1") {
		t.Fatal("31st stats request should be blocked")
	}
}
