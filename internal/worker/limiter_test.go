package worker

import (
	"context"
	"testing"
)

func TestNewLimiter_DefaultBurst(t *testing.T) {
	if l := NewLimiter(10, 5); l.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", l.defaultBurst)
	}
	if l := NewLimiter(10, -1); l.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l.defaultBurst)
	}
}

func TestLimiter_WaitPerHost(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "http://api.example.com/search"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "http://other.example.net/search"); err != nil {
		t.Errorf("wait for second host failed: %v", err)
	}
}

func TestLimiter_HostsAreIndependent(t *testing.T) {
	limiter := NewLimiter(1, 1)

	url := "http://api.example.com/search"
	if !limiter.Allow(url) {
		t.Fatal("first request should be allowed")
	}
	if limiter.Allow(url) {
		t.Error("second request should be limited (burst exhausted)")
	}
	if !limiter.Allow("http://other.example.net/") {
		t.Error("different host should have its own bucket")
	}
}

func TestLimiter_InvalidURL(t *testing.T) {
	limiter := NewLimiter(10, 1)
	if limiter.Allow("://bad url") {
		t.Error("unparseable URL should not be allowed")
	}
}
