package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/factcheck/internal/model"
)

// Retrieval is the outcome of one retrieval round
type Retrieval struct {
	Queries       []string
	Results       []model.SearchResult // Deduplicated, in query order
	TotalResults  int                  // Before deduplication
	FailedQueries int
}

// RetrieverOptions configures a Retriever
type RetrieverOptions struct {
	MaxResults  int // Per query, defaults to 10
	MaxQueries  int // Defaults to 3
	Concurrency int // Defaults to 3
	TrustedOnly bool
	Logger      *slog.Logger
}

// Retriever expands a query and runs the expanded queries concurrently
type Retriever struct {
	searcher Searcher
	opts     RetrieverOptions
	logger   *slog.Logger
}

// NewRetriever creates a retriever over searcher
func NewRetriever(searcher Searcher, opts RetrieverOptions) *Retriever {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 10
	}
	if opts.MaxQueries <= 0 {
		opts.MaxQueries = 3
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 3
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{searcher: searcher, opts: opts, logger: logger}
}

// Retrieve runs every expanded query. Individual query failures are logged
// and skipped. If every query failed and at least one failure was
// transient, the returned error is retryable.
func (r *Retriever) Retrieve(ctx context.Context, query string) (*Retrieval, error) {
	queries := Expand(query, r.opts.TrustedOnly)
	if len(queries) > r.opts.MaxQueries {
		queries = queries[:r.opts.MaxQueries]
	}
	out := &Retrieval{Queries: queries, Results: []model.SearchResult{}}
	if len(queries) == 0 {
		return out, nil
	}

	perQuery := make([][]model.SearchResult, len(queries))
	errs := make([]error, len(queries))

	var g errgroup.Group
	g.SetLimit(r.opts.Concurrency)
	for i, q := range queries {
		g.Go(func() error {
			if ctx.Err() != nil {
				errs[i] = ctx.Err()
				return nil
			}
			results, err := r.searcher.Search(ctx, q, r.opts.MaxResults)
			if err != nil {
				errs[i] = err
				return nil
			}
			perQuery[i] = results
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []model.SearchResult
	transient := false
	for i, q := range queries {
		if errs[i] != nil {
			out.FailedQueries++
			transient = transient || IsTransient(errs[i])
			r.logger.Warn("search query failed",
				slog.Int("query_index", i+1),
				slog.String("query", q),
				slog.String("error", errs[i].Error()),
			)
			continue
		}
		r.logger.Debug("search query complete", slog.String("query", q), slog.Int("results", len(perQuery[i])))
		all = append(all, perQuery[i]...)
	}

	if out.FailedQueries == len(queries) {
		err := fmt.Errorf("all %d search queries failed: %w", len(queries), errors.Join(errs...))
		if transient {
			return nil, &TransientError{Err: err}
		}
		return nil, err
	}

	out.TotalResults = len(all)
	out.Results = Dedupe(all)
	r.logger.Info("research complete",
		slog.Int("queries", len(queries)),
		slog.Int("total_results", out.TotalResults),
		slog.Int("unique_results", len(out.Results)),
	)
	return out, nil
}
