package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ppiankov/factcheck/internal/cache"
	"github.com/ppiankov/factcheck/internal/checkpoint"
	"github.com/ppiankov/factcheck/internal/evaluate"
	"github.com/ppiankov/factcheck/internal/llm"
	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/pipeline"
	"github.com/ppiankov/factcheck/internal/route"
	"github.com/ppiankov/factcheck/internal/search"
	"github.com/ppiankov/factcheck/internal/validate"
	"github.com/ppiankov/factcheck/internal/worker"
)

// engine is a fully wired pipeline plus the resources it holds
type engine struct {
	pipeline *pipeline.Pipeline
	registry *prometheus.Registry
	closers  []io.Closer
}

// buildEngine wires search, judge, evaluator, synthesizer and checkpoint
// store from cfg
func buildEngine(ctx context.Context, cfg *model.Config, logger *slog.Logger) (*engine, error) {
	c := cache.FromConfig(cfg.Cache)

	// One limiter serves search hosts and the model provider; the provider
	// key gets its own rate
	limiter := worker.NewLimiter(cfg.Search.RequestsPerSecond, cfg.Search.Burst)
	if name := strings.ToLower(cfg.LLM.Provider); name != "" {
		limiter.SetRate(name, cfg.LLM.RequestsPerSecond, cfg.LLM.Burst)
	}

	searcher, err := search.NewFromConfig(cfg.Search, cfg.HTTP, c, limiter, logger)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	retriever := search.NewRetriever(searcher, search.RetrieverOptions{
		MaxResults:  cfg.Search.MaxResults,
		MaxQueries:  cfg.Search.MaxQueries,
		Concurrency: cfg.Search.Concurrency,
		TrustedOnly: cfg.Search.TrustedOnly,
		Logger:      logger,
	})

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	var judge llm.Judge
	if provider != nil {
		judge = llm.NewProviderJudge(provider, llm.JudgeOptions{
			Cache:    c,
			CacheTTL: cfg.Cache.DiskTTL,
			Limiter:  limiter,
			Logger:   logger,
		})
	} else {
		logger.Warn("no judgment model configured; claims fall back to the query and answers to canned text")
	}

	e := &engine{registry: prometheus.NewRegistry()}

	store, err := checkpoint.NewFromConfig(ctx, cfg.Checkpoint, logger)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: %w", err)
	}
	if closer, ok := store.(io.Closer); ok {
		e.closers = append(e.closers, closer)
	}

	p, err := pipeline.NewPipeline(pipeline.Options{
		Router:      route.NewRouter(cfg.Router),
		Retriever:   retriever,
		Evaluator:   evaluate.NewEvaluator(judge, validate.NewCredibilityClassifier(&cfg.Credibility), cfg.Evaluator, logger),
		Synthesizer: validate.NewSynthesizer(judge, logger),
		Store:       store,
		Metrics:     pipeline.NewMetrics(e.registry),
		Logger:      logger,
		Retry: pipeline.RetryPolicy{
			Attempts: cfg.Workflow.RetryAttempts,
			Delay:    cfg.Workflow.RetryDelay,
		},
	})
	if err != nil {
		e.Close()
		return nil, err
	}
	e.pipeline = p
	return e, nil
}

// WriteMetrics writes the run metrics in Prometheus text format
func (e *engine) WriteMetrics(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// Close releases checkpoint connections
func (e *engine) Close() {
	for _, c := range e.closers {
		_ = c.Close()
	}
}
