package pipeline

import (
	"context"
	"log/slog"

	"github.com/ppiankov/factcheck/internal/evaluate"
	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/route"
	"github.com/ppiankov/factcheck/internal/search"
	"github.com/ppiankov/factcheck/internal/validate"
)

// Router classifies a query
type Router interface {
	Route(query string) *model.RouteDecision
}

// Retriever gathers search results for a query
type Retriever interface {
	Retrieve(ctx context.Context, query string) (*search.Retrieval, error)
}

// Evaluator turns search results into an evidence bundle
type Evaluator interface {
	Evaluate(ctx context.Context, query string, results []model.SearchResult) (*evaluate.Evaluation, error)
}

// Synthesizer produces the validated final answer
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, bundle *model.EvidenceBundle) (*validate.Synthesis, error)
}

func routingStage(r Router) StageFunc {
	return func(ctx context.Context, s State) (Delta, error) {
		d := r.Route(s.Query)
		meta := map[string]any{
			"trigger":    string(d.Trigger),
			"decision":   string(d.Decision),
			"confidence": d.Confidence,
			"reasoning":  d.Reasoning,
		}
		if d.IntentType != "" {
			meta["intent_type"] = d.IntentType
		}
		return Delta{
			Route:          d,
			ClarifyRequest: route.ClarifyRequest(s.Query, d),
			Metadata:       meta,
		}, nil
	}
}

// researchingStage degrades non-retryable retrieval failures to an empty
// result list; retryable ones are returned for the retry decorator
func researchingStage(r Retriever, logger *slog.Logger) StageFunc {
	return func(ctx context.Context, s State) (Delta, error) {
		if r == nil {
			return Delta{
				SearchQueries: []string{},
				SearchResults: []model.SearchResult{},
				Metadata:      map[string]any{"results_count": 0, "error": "no retriever configured"},
			}, nil
		}

		res, err := r.Retrieve(ctx, s.Query)
		if err != nil {
			if ctx.Err() != nil || IsRetryable(err) {
				return Delta{}, err
			}
			logger.Warn("retrieval failed, continuing without evidence", slog.String("error", err.Error()))
			return Delta{
				SearchQueries: []string{},
				SearchResults: []model.SearchResult{},
				Metadata:      map[string]any{"results_count": 0, "error": err.Error()},
			}, nil
		}

		return Delta{
			SearchQueries: res.Queries,
			SearchResults: res.Results,
			Metadata: map[string]any{
				"queries_count":  len(res.Queries),
				"results_count":  len(res.Results),
				"total_results":  res.TotalResults,
				"failed_queries": res.FailedQueries,
			},
		}, nil
	}
}

func evaluatingStage(e Evaluator) StageFunc {
	return func(ctx context.Context, s State) (Delta, error) {
		ev, err := e.Evaluate(ctx, s.Query, s.SearchResults)
		if err != nil {
			return Delta{}, err
		}
		return Delta{Bundle: ev.Bundle, Metadata: ev.Metadata}, nil
	}
}

func validatingStage(v Synthesizer) StageFunc {
	return func(ctx context.Context, s State) (Delta, error) {
		bundle := s.Bundle
		if bundle == nil {
			bundle = model.EmptyBundle()
		}
		syn, err := v.Synthesize(ctx, s.Query, bundle)
		if err != nil {
			return Delta{}, err
		}
		meta := syn.Metadata()
		if syn.Error != "" {
			meta["error"] = syn.Error
		}
		return Delta{Answer: syn.Answer, Metadata: meta}, nil
	}
}
