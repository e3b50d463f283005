package validate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/factcheck/internal/llm"
	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/score"
)

const citationFailedNote = "Citation validation failed."

// Synthesis is a synthesized answer with the diagnostics that produced it
type Synthesis struct {
	Answer   *model.FinalAnswer
	Report   CitationReport
	Strategy string // "no_evidence_fallback", "generation_error_fallback", "llm_writer", "llm_writer_with_fallback"
	Error    string // Generator failure text, when the fallback was caused by one
}

// Metadata summarizes the synthesis for run metadata
func (s *Synthesis) Metadata() map[string]any {
	return map[string]any{
		"strategy":          s.Strategy,
		"fallback_used":     s.Answer.Fallback != model.FallbackNone,
		"fallback_reason":   string(s.Answer.Fallback),
		"citation_valid":    s.Report.Valid,
		"cited_ids":         s.Report.Cited,
		"unknown_ids":       s.Report.Unknown,
		"leaked_urls":       len(s.Report.LeakedURLs),
		"num_evidence_used": len(s.Answer.Citations),
		"confidence":        s.Answer.Confidence,
	}
}

// Synthesizer turns an evidence bundle into a validated, cited answer
type Synthesizer struct {
	judge  llm.Judge
	logger *slog.Logger
}

// NewSynthesizer creates a synthesizer that generates answers with judge
func NewSynthesizer(judge llm.Judge, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{judge: judge, logger: logger}
}

// Synthesize produces the final answer for query from bundle. An empty
// bundle yields the no-evidence fallback without calling the generator.
// Transient generator failures are returned as errors so the caller can
// retry; any other failure yields a fallback answer.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, bundle *model.EvidenceBundle) (*Synthesis, error) {
	if bundle.IsEmpty() {
		return &Synthesis{
			Answer:   model.FallbackAnswer(model.FallbackNoEvidence),
			Report:   ValidateCitations("", bundle),
			Strategy: "no_evidence_fallback",
		}, nil
	}

	text, err := s.generate(ctx, query, bundle)
	if err != nil {
		if ctx.Err() != nil || isTransient(err) {
			return nil, err
		}
		s.logger.Warn("answer generation failed", slog.String("error", err.Error()))
		answer := model.FallbackAnswer(model.FallbackGeneratorUnavailable)
		answer.Limitations = fmt.Sprintf("Model failure: %v", err)
		return &Synthesis{
			Answer:   answer,
			Report:   ValidateCitations("", bundle),
			Strategy: "generation_error_fallback",
			Error:    err.Error(),
		}, nil
	}

	report := ValidateCitations(text.Text, bundle)

	// Ids the model declares outside the text must exist too
	for _, id := range text.EvidenceIDs {
		if _, ok := bundle.Item(id); !ok {
			report.Unknown = model.SortEvidenceIDs(append(report.Unknown, id))
			report.Valid = false
		}
	}

	if len(report.LeakedURLs) > 0 {
		s.logger.Debug("answer contains URLs outside the evidence", slog.Int("count", len(report.LeakedURLs)))
	}

	if !report.Valid {
		s.logger.Info("citation validation failed",
			slog.Any("cited", report.Cited),
			slog.Any("unknown", report.Unknown),
		)
		answer := model.FallbackAnswer(model.FallbackInvalidCitations)
		answer.Limitations = appendNote(text.Limitations, citationFailedNote)
		return &Synthesis{Answer: answer, Report: report, Strategy: "llm_writer_with_fallback"}, nil
	}

	citations := make([]model.Citation, 0, len(report.Known))
	for _, id := range report.Known {
		item, _ := bundle.Item(id)
		citations = append(citations, model.Citation{EvidenceID: id, URL: item.URL, Title: item.Title})
	}

	return &Synthesis{
		Answer: &model.FinalAnswer{
			Text:        text.Text,
			Citations:   citations,
			Confidence:  score.HybridConfidence(bundle.OverallVerdict, text.Confidence, len(report.Known), bundle.Findings),
			Valid:       true,
			Limitations: text.Limitations,
		},
		Report:   report,
		Strategy: "llm_writer",
	}, nil
}

func (s *Synthesizer) generate(ctx context.Context, query string, bundle *model.EvidenceBundle) (llm.TextResponse, error) {
	if s.judge == nil {
		return llm.TextResponse{}, errors.New("no answer generator configured")
	}
	resp, err := s.judge.Judge(ctx, llm.AnswerRequest{Query: query, Bundle: bundle})
	if err != nil {
		return llm.TextResponse{}, err
	}
	text, ok := resp.(llm.TextResponse)
	if !ok {
		return llm.TextResponse{}, fmt.Errorf("%w: answer: unexpected %T", llm.ErrInvalidResponse, resp)
	}
	if strings.TrimSpace(text.Text) == "" {
		return llm.TextResponse{}, fmt.Errorf("%w: answer: empty text", llm.ErrInvalidResponse)
	}
	return text, nil
}

// isTransient reports whether err carries a Retryable() bool that is true
func isTransient(err error) bool {
	var r interface{ Retryable() bool }
	return errors.As(err, &r) && r.Retryable()
}

func appendNote(text, note string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return note
	}
	return text + " " + note
}
