package search

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/factcheck/internal/cache"
	"github.com/ppiankov/factcheck/internal/logging"
	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/worker"
)

func staticSearcher(results []model.SearchResult, err error, calls *int32) Searcher {
	return SearcherFunc(func(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		return results, err
	})
}

func TestFallbackSearcher(t *testing.T) {
	secondary := []model.SearchResult{{Title: "ddg", URL: "https://ddg.example/1"}}

	var secondaryCalls int32
	f := &FallbackSearcher{
		Primary:   staticSearcher(nil, ErrQuotaExceeded, nil),
		Secondary: staticSearcher(secondary, nil, &secondaryCalls),
		Logger:    logging.Discard(),
	}
	results, err := f.Search(context.Background(), "q", 5)
	if err != nil || len(results) != 1 || results[0].Title != "ddg" {
		t.Fatalf("expected fallback results, got %v %v", results, err)
	}

	other := errors.New("boom")
	f.Primary = staticSearcher(nil, other, nil)
	if _, err := f.Search(context.Background(), "q", 5); !errors.Is(err, other) {
		t.Errorf("non-quota errors must not fall back, got %v", err)
	}
	if secondaryCalls != 1 {
		t.Errorf("secondary called %d times, want 1", secondaryCalls)
	}
}

func TestCachedSearcher(t *testing.T) {
	var calls int32
	results := []model.SearchResult{{Title: "a", URL: "https://a.example"}}
	c := &CachedSearcher{
		Searcher:  staticSearcher(results, nil, &calls),
		Cache:     cache.NewMemoryCache(time.Minute, time.Minute),
		Namespace: "test",
	}

	for i := 0; i < 3; i++ {
		got, err := c.Search(context.Background(), " Query ", 5)
		if err != nil || len(got) != 1 || got[0].URL != "https://a.example" {
			t.Fatalf("unexpected result: %v %v", got, err)
		}
	}
	if _, err := c.Search(context.Background(), "query", 5); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}

	if _, err := c.Search(context.Background(), "query", 6); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("different max results must miss the cache, got %d calls", calls)
	}
}

func TestCachedSearcher_ErrorsNotCached(t *testing.T) {
	var calls int32
	c := &CachedSearcher{
		Searcher: staticSearcher(nil, errors.New("down"), &calls),
		Cache:    cache.NewMemoryCache(time.Minute, time.Minute),
	}
	_, _ = c.Search(context.Background(), "q", 5)
	_, _ = c.Search(context.Background(), "q", 5)
	if calls != 2 {
		t.Errorf("errors must not be cached, got %d calls", calls)
	}
}

func TestRateLimitedSearcher(t *testing.T) {
	r := &RateLimitedSearcher{
		Searcher: staticSearcher(nil, nil, nil),
		Limiter:  worker.NewLimiter(0.001, 1),
		Key:      "search",
	}
	if _, err := r.Search(context.Background(), "q", 5); err != nil {
		t.Fatalf("first call should pass: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := r.Search(ctx, "q", 5); err == nil {
		t.Error("expected limiter wait to fail")
	}
}

func TestMergedSearcher(t *testing.T) {
	fc := []model.SearchResult{{Title: "[FACT-CHECK] x", URL: "https://snopes.com/x"}}
	web := []model.SearchResult{{Title: "web", URL: "https://example.com"}}

	m := &MergedSearcher{
		Sources: []Searcher{staticSearcher(fc, nil, nil), staticSearcher(web, nil, nil)},
		Logger:  logging.Discard(),
	}
	got, err := m.Search(context.Background(), "q", 5)
	if err != nil || len(got) != 2 || got[0].Title != "[FACT-CHECK] x" {
		t.Fatalf("unexpected merge: %v %v", got, err)
	}

	m.Sources[0] = staticSearcher(nil, errors.New("fact check down"), nil)
	got, err = m.Search(context.Background(), "q", 5)
	if err != nil || len(got) != 1 {
		t.Fatalf("partial failure should still return results: %v %v", got, err)
	}

	m.Sources[1] = staticSearcher(nil, errors.New("web down"), nil)
	if _, err := m.Search(context.Background(), "q", 5); err == nil {
		t.Error("expected error when every source fails")
	}
}
