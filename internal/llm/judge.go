package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ppiankov/factcheck/internal/cache"
	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/worker"
)

// Request is one judgment asked of the model. The set of implementations
// is closed: ClaimsRequest, PairRequest and AnswerRequest.
type Request interface {
	Kind() string
	isRequest()
}

// ClaimsRequest asks for the atomic claims contained in a query
type ClaimsRequest struct {
	Query     string
	MaxClaims int
}

// PairRequest asks whether one evidence item supports one claim
type PairRequest struct {
	Claim    string
	Evidence model.EvidenceItem
}

// AnswerRequest asks for a cited answer grounded in the bundle
type AnswerRequest struct {
	Query  string
	Bundle *model.EvidenceBundle
}

func (ClaimsRequest) Kind() string { return "claims" }
func (PairRequest) Kind() string   { return "pair" }
func (AnswerRequest) Kind() string { return "answer" }

func (ClaimsRequest) isRequest() {}
func (PairRequest) isRequest()   {}
func (AnswerRequest) isRequest() {}

// Response is the decoded, validated model reply. The concrete type
// always matches the request: ClaimsResponse for ClaimsRequest,
// PairResponse for PairRequest, TextResponse for AnswerRequest.
type Response interface {
	isResponse()
}

// ClaimsResponse lists the claims found in a query
type ClaimsResponse struct {
	Claims []string `json:"claims" validate:"min=1,max=5,dive,required"`
}

// PairResponse is the verdict for one (claim, evidence) pair
type PairResponse struct {
	Verdict    model.PairVerdict `json:"verdict" validate:"oneof=supported not_supported irrelevant"`
	Confidence float64           `json:"confidence" validate:"gte=0,lte=1"`
	Reasoning  string            `json:"reasoning"`
}

// TextResponse is generated answer text with an optional self-reported
// confidence
type TextResponse struct {
	Text        string   `json:"answer" validate:"required"`
	Confidence  *float64 `json:"confidence,omitempty"`
	EvidenceIDs []string `json:"evidence_ids,omitempty"`
	Limitations string   `json:"limitations,omitempty"`
}

func (ClaimsResponse) isResponse() {}
func (PairResponse) isResponse()   {}
func (TextResponse) isResponse()   {}

// Judge performs model judgments
type Judge interface {
	Judge(ctx context.Context, req Request) (Response, error)
}

// JudgeFunc adapts a function to the Judge interface
type JudgeFunc func(ctx context.Context, req Request) (Response, error)

// Judge calls f
func (f JudgeFunc) Judge(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// JudgeOptions configures a ProviderJudge
type JudgeOptions struct {
	Cache     cache.Cache     // Optional response cache
	CacheTTL  time.Duration   // Zero uses the cache default
	Limiter   *worker.Limiter // Optional, keyed by provider name
	Logger    *slog.Logger    // Nil uses slog.Default()
	MaxClaims int             // Defaults to 5
}

// ProviderJudge implements Judge on top of a text-completion Provider.
// Replies are decoded and validated before they are returned.
type ProviderJudge struct {
	provider  Provider
	cache     cache.Cache
	cacheTTL  time.Duration
	limiter   *worker.Limiter
	logger    *slog.Logger
	validate  *validator.Validate
	maxClaims int
}

// NewProviderJudge creates a judge backed by provider
func NewProviderJudge(provider Provider, opts JudgeOptions) *ProviderJudge {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxClaims := opts.MaxClaims
	if maxClaims <= 0 || maxClaims > 5 {
		maxClaims = 5
	}
	return &ProviderJudge{
		provider:  provider,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		limiter:   opts.Limiter,
		logger:    logger,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		maxClaims: maxClaims,
	}
}

// Judge builds the prompt for req, calls the provider and decodes the reply
func (j *ProviderJudge) Judge(ctx context.Context, req Request) (Response, error) {
	creq, err := j.buildCompletion(req)
	if err != nil {
		return nil, err
	}

	key := cache.Key("judge", j.provider.Name(), req.Kind(), creq.System, creq.Prompt)
	var cached string
	if cache.GetJSON(j.cache, key, &cached) {
		if resp, err := j.decode(req, cached); err == nil {
			j.logger.Debug("judge cache hit", slog.String("kind", req.Kind()))
			return resp, nil
		}
	}

	if !j.limiter.Allow(j.provider.Name()) {
		j.logger.Debug("judge throttled", slog.String("provider", j.provider.Name()))
		if err := j.limiter.Wait(ctx, j.provider.Name()); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	start := time.Now()
	out, err := j.provider.Complete(ctx, creq)
	if err != nil {
		return nil, fmt.Errorf("%s %s completion: %w", j.provider.Name(), req.Kind(), err)
	}
	j.logger.Debug("judge completion",
		slog.String("provider", j.provider.Name()),
		slog.String("kind", req.Kind()),
		slog.Int("tokens", out.TokensUsed),
		slog.Duration("duration", time.Since(start)),
	)

	resp, err := j.decode(req, out.Text)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(j.cache, key, out.Text, j.cacheTTL); err != nil {
		j.logger.Warn("judge cache write failed", slog.String("error", err.Error()))
	}
	return resp, nil
}

func (j *ProviderJudge) buildCompletion(req Request) (CompletionRequest, error) {
	switch r := req.(type) {
	case ClaimsRequest:
		n := r.MaxClaims
		if n <= 0 || n > j.maxClaims {
			n = j.maxClaims
		}
		return CompletionRequest{System: claimsSystem, Prompt: BuildClaimsPrompt(r.Query, n), JSON: true}, nil
	case PairRequest:
		return CompletionRequest{System: pairSystem, Prompt: BuildPairPrompt(r.Claim, r.Evidence), JSON: true}, nil
	case AnswerRequest:
		return CompletionRequest{System: answerSystem, Prompt: BuildAnswerPrompt(r.Query, r.Bundle), JSON: true}, nil
	}
	return CompletionRequest{}, fmt.Errorf("unsupported judge request %T", req)
}

func (j *ProviderJudge) decode(req Request, text string) (Response, error) {
	var resp Response
	var err error
	switch req.(type) {
	case ClaimsRequest:
		resp, err = ParseClaims(text, j.maxClaims)
	case PairRequest:
		resp, err = ParsePair(text)
	case AnswerRequest:
		resp, err = ParseAnswer(text)
	default:
		return nil, fmt.Errorf("unsupported judge request %T", req)
	}
	if err != nil {
		return nil, err
	}
	if err := j.validate.Struct(resp); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidResponse, req.Kind(), err)
	}
	return resp, nil
}
