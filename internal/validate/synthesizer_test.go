package validate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/factcheck/internal/llm"
	"github.com/ppiankov/factcheck/internal/logging"
	"github.com/ppiankov/factcheck/internal/model"
)

func answerJudge(resp llm.Response, err error, calls *int) llm.Judge {
	return llm.JudgeFunc(func(ctx context.Context, req llm.Request) (llm.Response, error) {
		if calls != nil {
			*calls++
		}
		if _, ok := req.(llm.AnswerRequest); !ok {
			return nil, errors.New("unexpected request kind")
		}
		return resp, err
	})
}

func conf(v float64) *float64 { return &v }

func TestSynthesize_EmptyBundle(t *testing.T) {
	calls := 0
	s := NewSynthesizer(answerJudge(llm.TextResponse{Text: "x"}, nil, &calls), logging.Discard())

	syn, err := s.Synthesize(context.Background(), "q", model.EmptyBundle())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 0 {
		t.Errorf("generator called %d times for empty bundle", calls)
	}
	a := syn.Answer
	if a.Fallback != model.FallbackNoEvidence || a.Text != model.NoEvidenceMessage {
		t.Errorf("unexpected answer: %+v", a)
	}
	if a.Confidence != 0 || a.Valid || len(a.Citations) != 0 {
		t.Errorf("fallback must have zero confidence and no citations: %+v", a)
	}
}

func TestSynthesize_ValidAnswer(t *testing.T) {
	bundle := testBundle(t)
	s := NewSynthesizer(answerJudge(llm.TextResponse{
		Text:       "World War II ended in 1945 [E1][E2].",
		Confidence: conf(0.9),
	}, nil, nil), logging.Discard())

	syn, err := s.Synthesize(context.Background(), "When did WWII end?", bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := syn.Answer
	if !a.Valid || a.Fallback != model.FallbackNone {
		t.Fatalf("expected valid answer, got %+v", a)
	}
	if len(a.Citations) != 2 || a.Citations[0].EvidenceID != "E1" || a.Citations[1].URL != "https://www.archives.gov/vj-day" {
		t.Errorf("unexpected citations: %+v", a.Citations)
	}
	// 0.8*0.6 + 0.9*0.4 with two cited items
	if a.Confidence < 0.839 || a.Confidence > 0.841 {
		t.Errorf("confidence = %v, want 0.84", a.Confidence)
	}
	if syn.Strategy != "llm_writer" {
		t.Errorf("strategy = %s", syn.Strategy)
	}
}

func TestSynthesize_InvalidCitations(t *testing.T) {
	bundle := testBundle(t)

	tests := []struct {
		name string
		resp llm.TextResponse
	}{
		{"hallucinated id", llm.TextResponse{Text: "It ended in 1945 [E7]."}},
		{"no citations", llm.TextResponse{Text: "It ended in 1945."}},
		{"declared unknown id", llm.TextResponse{Text: "It ended in 1945 [E1].", EvidenceIDs: []string{"E1", "E8"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSynthesizer(answerJudge(tt.resp, nil, nil), logging.Discard())
			syn, err := s.Synthesize(context.Background(), "q", bundle)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			a := syn.Answer
			if a.Fallback != model.FallbackInvalidCitations || a.Text != model.InvalidCitationsMessage {
				t.Errorf("unexpected answer: %+v", a)
			}
			if a.Confidence != 0 || a.Valid || len(a.Citations) != 0 {
				t.Errorf("fallback must have zero confidence and no citations: %+v", a)
			}
			if !strings.Contains(a.Limitations, citationFailedNote) {
				t.Errorf("limitations = %q", a.Limitations)
			}
		})
	}
}

func TestSynthesize_GeneratorFailure(t *testing.T) {
	bundle := testBundle(t)
	s := NewSynthesizer(answerJudge(nil, llm.ErrInvalidResponse, nil), logging.Discard())

	syn, err := s.Synthesize(context.Background(), "q", bundle)
	if err != nil {
		t.Fatalf("non-transient failure should degrade, got %v", err)
	}
	if syn.Answer.Fallback != model.FallbackGeneratorUnavailable || syn.Answer.Text != model.GeneratorUnavailableMessage {
		t.Errorf("unexpected answer: %+v", syn.Answer)
	}
	if syn.Strategy != "generation_error_fallback" || syn.Error == "" {
		t.Errorf("unexpected diagnostics: %+v", syn)
	}
}

func TestSynthesize_TransientFailureReturnsError(t *testing.T) {
	bundle := testBundle(t)
	transient := &llm.StatusError{Provider: "openai", StatusCode: 503, Message: "overloaded"}
	s := NewSynthesizer(answerJudge(nil, transient, nil), logging.Discard())

	if _, err := s.Synthesize(context.Background(), "q", bundle); !errors.Is(err, transient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestSynthesize_NoJudge(t *testing.T) {
	s := NewSynthesizer(nil, logging.Discard())
	syn, err := s.Synthesize(context.Background(), "q", testBundle(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if syn.Answer.Fallback != model.FallbackGeneratorUnavailable {
		t.Errorf("unexpected fallback: %s", syn.Answer.Fallback)
	}
}

func TestSynthesisMetadata(t *testing.T) {
	s := NewSynthesizer(nil, logging.Discard())
	syn, _ := s.Synthesize(context.Background(), "q", model.EmptyBundle())
	md := syn.Metadata()
	if md["strategy"] != "no_evidence_fallback" || md["fallback_used"] != true {
		t.Errorf("unexpected metadata: %v", md)
	}
}

// replyProvider answers every completion with a fixed reply
type replyProvider struct{ reply string }

func (p replyProvider) Name() string                         { return "reply" }
func (p replyProvider) IsAvailable(ctx context.Context) bool { return true }
func (p replyProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Text: p.reply}, nil
}

func TestSynthesize_ProviderReplies(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		valid     bool
		fallback  model.FallbackReason
		wantConf  float64
		wantNotes string
	}{
		{"in range", `{"answer":"WWII ended in 1945 [E1] [E2].","confidence":0.9}`, true, model.FallbackNone, 0.84, ""},
		{"above one", `{"answer":"WWII ended in 1945 [E1] [E2].","confidence":1.2}`, true, model.FallbackNone, 0.88, ""},
		{"percent", `{"answer":"WWII ended in 1945 [E1] [E2].","confidence":90}`, true, model.FallbackNone, 0.88, ""},
		{"no confidence", `{"answer":"WWII ended in 1945 [E1] [E2].","confidence":-1}`, true, model.FallbackNone, 0.8, ""},
		{"declared unknown id with string confidence", `{"answer":"WWII ended in 1945 [E1].","confidence":"0.8","evidence_ids":["E9"]}`, false, model.FallbackInvalidCitations, 0, "Citation validation failed."},
		{"mistyped ids", `{"answer":"WWII ended in 1945 [E1].","evidence_ids":"E1"}`, false, model.FallbackGeneratorUnavailable, 0, "Model failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			judge := llm.NewProviderJudge(replyProvider{reply: tt.reply}, llm.JudgeOptions{Logger: logging.Discard()})
			s := NewSynthesizer(judge, logging.Discard())

			syn, err := s.Synthesize(context.Background(), "When did WWII end?", testBundle(t))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			a := syn.Answer
			if a.Valid != tt.valid || a.Fallback != tt.fallback {
				t.Fatalf("answer = %+v, want valid=%v fallback=%q", a, tt.valid, tt.fallback)
			}
			if a.Confidence < tt.wantConf-0.001 || a.Confidence > tt.wantConf+0.001 {
				t.Errorf("confidence = %v, want %v", a.Confidence, tt.wantConf)
			}
			if tt.valid && strings.Contains(a.Text, "{") {
				t.Errorf("raw JSON leaked into answer: %q", a.Text)
			}
			if !strings.Contains(a.Limitations, tt.wantNotes) {
				t.Errorf("limitations = %q, want %q", a.Limitations, tt.wantNotes)
			}
		})
	}
}
