package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/factcheck/internal/cache"
	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/worker"
)

// FallbackSearcher delegates to a secondary searcher when the primary
// reports ErrQuotaExceeded
type FallbackSearcher struct {
	Primary   Searcher
	Secondary Searcher
	Logger    *slog.Logger
}

// Search calls the primary and falls back on quota exhaustion
func (f *FallbackSearcher) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	results, err := f.Primary.Search(ctx, query, maxResults)
	if err == nil || !errors.Is(err, ErrQuotaExceeded) || f.Secondary == nil {
		return results, err
	}
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("search quota exceeded, using fallback", slog.String("query", query), slog.String("error", err.Error()))
	return f.Secondary.Search(ctx, query, maxResults)
}

// CachedSearcher memoizes results by (query, maxResults)
type CachedSearcher struct {
	Searcher  Searcher
	Cache     cache.Cache
	Namespace string        // Distinguishes caches of different sources
	TTL       time.Duration // Zero uses the cache default
}

// Search returns cached results when present, otherwise queries and stores
func (c *CachedSearcher) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	key := cache.Key("search", c.Namespace, strings.ToLower(strings.TrimSpace(query)), strconv.Itoa(maxResults))

	var cached []model.SearchResult
	if cache.GetJSON(c.Cache, key, &cached) {
		return cached, nil
	}

	results, err := c.Searcher.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(c.Cache, key, results, c.TTL); err != nil {
		slog.Default().Debug("search cache write failed", slog.String("error", err.Error()))
	}
	return results, nil
}

// RateLimitedSearcher waits on a limiter key before every call
type RateLimitedSearcher struct {
	Searcher Searcher
	Limiter  *worker.Limiter
	Key      string
}

// Search waits for clearance and then searches
func (r *RateLimitedSearcher) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	if err := r.Limiter.Wait(ctx, r.Key); err != nil {
		return nil, fmt.Errorf("search rate limit wait: %w", err)
	}
	return r.Searcher.Search(ctx, query, maxResults)
}

// MergedSearcher queries several sources in order and concatenates their
// results. It fails only when every source fails.
type MergedSearcher struct {
	Sources []Searcher
	Logger  *slog.Logger
}

// Search queries every source
func (m *MergedSearcher) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var all []model.SearchResult
	var errs []error
	for i, src := range m.Sources {
		results, err := src.Search(ctx, query, maxResults)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("search source failed", slog.Int("source", i), slog.String("error", err.Error()))
			errs = append(errs, err)
			continue
		}
		all = append(all, results...)
	}
	if len(errs) > 0 && len(errs) == len(m.Sources) {
		return nil, errors.Join(errs...)
	}
	return all, nil
}
