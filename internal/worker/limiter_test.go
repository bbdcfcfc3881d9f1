package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiterAllowsBurst(t *testing.T) {
	limiter := NewLimiter(1, 3)

	allowed := 0
	for i := 0; i < 5; i++ {
		if limiter.Allow("http://example.com/page") {
			allowed++
		}
	}
	if allowed != 3 {
		t.Errorf("expected burst of 3 to pass, got %d", allowed)
	}
}

func TestLimiterIsPerHost(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("http://a.example.com/") {
		t.Error("first request to host a should pass")
	}
	if !limiter.Allow("http://b.example.com/") {
		t.Error("first request to host b should pass")
	}
	if limiter.Allow("http://a.example.com/other") {
		t.Error("second immediate request to host a should be limited")
	}
}

func TestLimiterWaitHonorsContext(t *testing.T) {
	limiter := NewLimiter(0.01, 1)

	// Consume the single burst token.
	if err := limiter.Wait(context.Background(), "http://slow.example.com/"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, "http://slow.example.com/"); err == nil {
		t.Error("expected wait to fail when the context expires first")
	}
}

func TestLimiterSetHostRate(t *testing.T) {
	limiter := NewLimiter(1, 1)
	limiter.SetHostRate("fast.example.com", 100, 10)

	allowed := 0
	for i := 0; i < 10; i++ {
		if limiter.Allow("http://fast.example.com/") {
			allowed++
		}
	}
	if allowed != 10 {
		t.Errorf("expected host override burst of 10, got %d", allowed)
	}
}
