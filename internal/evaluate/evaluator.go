// Package evaluate judges retrieved evidence against the claims of a query.
package evaluate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/factcheck/internal/llm"
	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/validate"
	"github.com/ppiankov/factcheck/internal/worker"
)

// Evaluation is the evidence bundle plus the intermediate judgments that
// produced it
type Evaluation struct {
	Bundle   *model.EvidenceBundle
	Claims   []string
	Pairs    []model.PairEvaluation
	Metadata map[string]any
}

// Evaluator decomposes a query into claims, judges each claim against the
// most credible evidence and aggregates the verdicts
type Evaluator struct {
	judge      llm.Judge
	classifier *validate.CredibilityClassifier
	cfg        model.EvaluatorConfig
	logger     *slog.Logger
}

// NewEvaluator creates an evaluator. A nil classifier uses the built-in
// domain lists; zero config fields take their defaults.
func NewEvaluator(judge llm.Judge, classifier *validate.CredibilityClassifier, cfg model.EvaluatorConfig, logger *slog.Logger) *Evaluator {
	defaults := model.DefaultConfig().Evaluator
	if cfg.MaxEvidence <= 0 {
		cfg.MaxEvidence = defaults.MaxEvidence
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.PairTimeout <= 0 {
		cfg.PairTimeout = defaults.PairTimeout
	}
	if cfg.ReasoningLimit <= 0 {
		cfg.ReasoningLimit = defaults.ReasoningLimit
	}
	if classifier == nil {
		classifier = validate.NewCredibilityClassifier(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{judge: judge, classifier: classifier, cfg: cfg, logger: logger}
}

// Evaluate builds the evidence bundle for query from results. No results
// yield an empty bundle without consulting the judge. The only error is
// ctx.Err() when the run is canceled mid-stage.
func (e *Evaluator) Evaluate(ctx context.Context, query string, results []model.SearchResult) (*Evaluation, error) {
	if len(results) == 0 {
		return &Evaluation{
			Bundle: model.EmptyBundle(),
			Claims: []string{},
			Pairs:  []model.PairEvaluation{},
			Metadata: map[string]any{
				"claims_extracted":         0,
				"claim_fallback":           "",
				"total_evidence_count":     0,
				"evaluated_evidence_count": 0,
				"pair_evaluations":         0,
				"pair_failures":            0,
				"findings_count":           0,
				"overall_verdict":          string(model.VerdictInsufficient),
				"avg_credibility":          0.0,
				"top_source_domain":        "",
			},
		}, nil
	}

	claims, fallback := e.extractClaims(ctx, query)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := e.buildItems(results)
	selected := selectTop(items, e.cfg.MaxEvidence)

	pairs, failures, err := e.evaluatePairs(ctx, claims, selected)
	if err != nil {
		return nil, err
	}

	findings, err := Aggregate(claims, pairs, items)
	if err != nil {
		return nil, fmt.Errorf("aggregate findings: %w", err)
	}
	overall := Synthesize(findings)

	bundle, err := model.NewEvidenceBundle(items, findings, overall)
	if err != nil {
		return nil, fmt.Errorf("build evidence bundle: %w", err)
	}

	avg, top := credibilityStats(items)
	e.logger.Info("evidence evaluated",
		slog.Int("claims", len(claims)),
		slog.Int("evidence", len(items)),
		slog.Int("pairs", len(pairs)),
		slog.Int("pair_failures", failures),
		slog.String("verdict", string(overall)),
	)

	return &Evaluation{
		Bundle: bundle,
		Claims: claims,
		Pairs:  pairs,
		Metadata: map[string]any{
			"claims_extracted":         len(claims),
			"claim_fallback":           fallback,
			"total_evidence_count":     len(items),
			"evaluated_evidence_count": len(selected),
			"pair_evaluations":         len(pairs),
			"pair_failures":            failures,
			"findings_count":           len(findings),
			"overall_verdict":          string(overall),
			"avg_credibility":          avg,
			"top_source_domain":        top,
		},
	}, nil
}

// extractClaims asks the judge for the claims in query. Any failure falls
// back to the whole query as a single claim; the second return value names
// the reason, empty when no fallback happened.
func (e *Evaluator) extractClaims(ctx context.Context, query string) ([]string, string) {
	fallback := []string{strings.TrimSpace(query)}
	if e.judge == nil {
		return fallback, "no_judge"
	}

	resp, err := e.judge.Judge(ctx, llm.ClaimsRequest{Query: query, MaxClaims: 5})
	if err != nil {
		e.logger.Warn("claim extraction failed, using query as claim", slog.String("error", err.Error()))
		return fallback, "judge_error: " + err.Error()
	}
	cr, ok := resp.(llm.ClaimsResponse)
	if !ok {
		return fallback, fmt.Sprintf("unexpected response %T", resp)
	}

	claims := normalizeClaims(cr.Claims)
	if len(claims) == 0 {
		return fallback, "empty_claims"
	}
	return claims, ""
}

// normalizeClaims trims, drops blanks and case-insensitive duplicates and
// keeps at most five claims
func normalizeClaims(raw []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range raw {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
		if len(out) == 5 {
			break
		}
	}
	return out
}

func (e *Evaluator) buildItems(results []model.SearchResult) []model.EvidenceItem {
	items := make([]model.EvidenceItem, 0, len(results))
	for i, r := range results {
		items = append(items, model.EvidenceItem{
			ID:                model.EvidenceID(i + 1),
			Title:             r.Title,
			Snippet:           r.Snippet,
			URL:               r.URL,
			SourceDomain:      validate.SourceDomain(r),
			CredibilityWeight: e.classifier.Weight(r),
		})
	}
	return items
}

// selectTop returns the n most credible items; ties keep retrieval order
func selectTop(items []model.EvidenceItem, n int) []model.EvidenceItem {
	sorted := make([]model.EvidenceItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CredibilityWeight > sorted[j].CredibilityWeight
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func credibilityStats(items []model.EvidenceItem) (float64, string) {
	if len(items) == 0 {
		return 0, ""
	}
	var sum float64
	top := items[0]
	for _, it := range items {
		sum += it.CredibilityWeight
		if it.CredibilityWeight > top.CredibilityWeight {
			top = it
		}
	}
	return sum / float64(len(items)), top.SourceDomain
}

// pairJob evaluates one (claim, evidence) pair on the worker pool
type pairJob struct {
	claimIdx int
	claim    string
	item     model.EvidenceItem
	judge    llm.Judge
	timeout  time.Duration
	limit    int
}

type pairResult struct {
	claimIdx int
	eval     model.PairEvaluation
	err      error
}

func (r *pairResult) GetError() error { return r.err }

func (j *pairJob) Execute(ctx context.Context) worker.Result {
	res := &pairResult{claimIdx: j.claimIdx}
	eval, err := j.evaluate(ctx)
	if err != nil {
		res.err = err
		eval = failedPair(j.claim, j.item.ID, err, j.limit)
	}
	res.eval = eval
	return res
}

func (j *pairJob) evaluate(ctx context.Context) (model.PairEvaluation, error) {
	if j.judge == nil {
		return model.PairEvaluation{}, fmt.Errorf("no judge configured")
	}
	pctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	resp, err := j.judge.Judge(pctx, llm.PairRequest{Claim: j.claim, Evidence: j.item})
	if err != nil {
		return model.PairEvaluation{}, err
	}
	pr, ok := resp.(llm.PairResponse)
	if !ok {
		return model.PairEvaluation{}, fmt.Errorf("%w: unexpected %T", llm.ErrInvalidResponse, resp)
	}
	if !pr.Verdict.Valid() || pr.Confidence < 0 || pr.Confidence > 1 {
		return model.PairEvaluation{}, fmt.Errorf("%w: verdict %q confidence %v", llm.ErrInvalidResponse, pr.Verdict, pr.Confidence)
	}
	return model.PairEvaluation{
		Claim:      j.claim,
		EvidenceID: j.item.ID,
		Verdict:    pr.Verdict,
		Confidence: pr.Confidence,
		Reasoning:  truncate(pr.Reasoning, j.limit),
	}, nil
}

func failedPair(claim, id string, err error, limit int) model.PairEvaluation {
	return model.PairEvaluation{
		Claim:      claim,
		EvidenceID: id,
		Verdict:    model.PairIrrelevant,
		Confidence: 0,
		Reasoning:  truncate("evaluation error: "+err.Error(), limit),
	}
}

// evaluatePairs judges every claim against every selected item and returns
// the evaluations ordered by claim, then by selected item order
func (e *Evaluator) evaluatePairs(ctx context.Context, claims []string, selected []model.EvidenceItem) ([]model.PairEvaluation, int, error) {
	type key struct {
		claim int
		id    string
	}

	pool := worker.NewPoolWithContext(ctx, e.cfg.Workers)
	pool.Start()

	for ci, claim := range claims {
		for _, item := range selected {
			if ctx.Err() != nil {
				pool.Shutdown()
				return nil, 0, ctx.Err()
			}
			pool.Submit(&pairJob{
				claimIdx: ci,
				claim:    claim,
				item:     item,
				judge:    e.judge,
				timeout:  e.cfg.PairTimeout,
				limit:    e.cfg.ReasoningLimit,
			})
		}
	}

	results := pool.Wait()
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	byKey := make(map[key]*pairResult, len(results))
	for _, r := range results {
		pr := r.(*pairResult)
		byKey[key{pr.claimIdx, pr.eval.EvidenceID}] = pr
	}

	pairs := make([]model.PairEvaluation, 0, len(claims)*len(selected))
	failures := 0
	for ci, claim := range claims {
		for _, item := range selected {
			pr, ok := byKey[key{ci, item.ID}]
			if !ok {
				failures++
				pairs = append(pairs, failedPair(claim, item.ID, fmt.Errorf("not evaluated"), e.cfg.ReasoningLimit))
				continue
			}
			if pr.err != nil {
				failures++
				e.logger.Debug("pair evaluation failed",
					slog.String("evidence_id", item.ID),
					slog.String("error", pr.err.Error()),
				)
			}
			pairs = append(pairs, pr.eval)
		}
	}
	return pairs, failures, nil
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
