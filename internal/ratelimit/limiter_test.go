package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestDomainLimiterIsolatesHosts(t *testing.T) {
	dl := NewDomainLimiter(0.001, 1)

	if !dl.Allow("https://a.example.com/") {
		t.Fatal("first request to a host should be allowed")
	}
	if dl.Allow("https://A.example.com/contact") {
		t.Error("second request to the same host should be throttled")
	}
	if !dl.Allow("https://b.example.com/") {
		t.Error("a different host should have its own bucket")
	}
	if got := dl.Hosts(); got != 2 {
		t.Errorf("Hosts() = %d, want 2", got)
	}
}

func TestDomainLimiterInvalidURL(t *testing.T) {
	dl := NewDomainLimiter(1, 1)
	if err := dl.Wait(context.Background(), "://bad"); err != nil {
		t.Errorf("Wait() on invalid URL error = %v", err)
	}
}

func TestDomainLimiterWaitHonoursContext(t *testing.T) {
	dl := NewDomainLimiter(0.001, 1)
	_ = dl.Wait(context.Background(), "https://slow.example.com/")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := dl.Wait(ctx, "https://slow.example.com/"); err == nil {
		t.Error("expected Wait to fail when the context expires first")
	}
}

func TestPerMinute(t *testing.T) {
	l := PerMinute(3)
	if !l.Allow() {
		t.Fatal("first call should be allowed")
	}
	if l.Allow() {
		t.Error("second call within 20s should be throttled")
	}

	unlimited := PerMinute(0)
	for i := 0; i < 100; i++ {
		if !unlimited.Allow() {
			t.Fatal("unlimited limiter throttled")
		}
	}
}
