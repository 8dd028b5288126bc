package llm

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"golang.org/x/time/rate"
)

type countingProvider struct {
	calls  int32
	answer string
	err    error
}

func (p *countingProvider) Name() string { return "fake" }

func (p *countingProvider) Complete(ctx context.Context, prompt string) (string, error) {
	atomic.AddInt32(&p.calls, 1)
	return p.answer + ":" + prompt, p.err
}

func TestClient_CachesAnswers(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "llm", "cache.db"))
	if err != nil {
		t.Fatalf("OpenCache() error = %v", err)
	}
	defer cache.Close()

	p := &countingProvider{answer: "a"}
	c := NewClient(p, WithCache(cache), WithLimiter(rate.NewLimiter(rate.Inf, 1)))

	for i := 0; i < 3; i++ {
		got, err := c.Complete(context.Background(), "prompt")
		if err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if got != "a:prompt" {
			t.Errorf("Complete() = %q", got)
		}
	}
	if p.calls != 1 {
		t.Errorf("provider calls = %d, want 1", p.calls)
	}

	if _, err := c.Complete(context.Background(), "other"); err != nil {
		t.Fatal(err)
	}
	if n, _ := cache.Len(context.Background()); n != 2 {
		t.Errorf("cache entries = %d, want 2", n)
	}
}

func TestClient_ErrorsAreNotCached(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	p := &countingProvider{err: ErrRateLimited}
	c := NewClient(p, WithCache(cache))

	for i := 0; i < 2; i++ {
		if _, err := c.Complete(context.Background(), "x"); !errors.Is(err, ErrRateLimited) {
			t.Fatalf("Complete() error = %v", err)
		}
	}
	if p.calls != 2 {
		t.Errorf("provider calls = %d, want 2", p.calls)
	}
}

func TestCache_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	cache, err := OpenCache(path)
	if err != nil {
		t.Fatal(err)
	}
	cache.Put(context.Background(), "fake", "q", "answer")
	cache.Close()

	reopened, err := OpenCache(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if got, ok := reopened.Get(context.Background(), "fake", "q"); !ok || got != "answer" {
		t.Errorf("Get() = %q, %v", got, ok)
	}
	if _, ok := reopened.Get(context.Background(), "other", "q"); ok {
		t.Error("cache key must include the provider")
	}
}

func TestClient_NoProvider(t *testing.T) {
	if _, err := NewClient(nil).Complete(context.Background(), "x"); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("Complete() error = %v", err)
	}
}
