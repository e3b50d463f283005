package route

import (
	"math"
	"testing"

	"github.com/ppiankov/factcheck/internal/extract"
	"github.com/ppiankov/factcheck/internal/model"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRouter_Decisions(t *testing.T) {
	r := NewRouter(model.RouterConfig{})

	tests := []struct {
		query      string
		decision   model.Decision
		trigger    model.Trigger
		confidence float64
		intent     string
	}{
		{"", model.DecisionClarify, model.TriggerEmptyQuery, 0, ""},
		{"   ", model.DecisionClarify, model.TriggerEmptyQuery, 0, ""},
		{"Write me a Python script to sort a list", model.DecisionOutOfScope, model.TriggerNonHistoricalIntent, 0.95, "coding_request"},
		{"Tell me a joke", model.DecisionOutOfScope, model.TriggerNonHistoricalIntent, 0.95, "chat_request"},
		{"Napoleon", model.DecisionClarify, model.TriggerUnderspecified, 0.2, ""},
		{"Is it true?", model.DecisionClarify, model.TriggerUnderspecified, 0.2, ""},
		{"Why did it happen?", model.DecisionClarify, model.TriggerAmbiguousReference, 0.3, ""},
		{"Tell me something", model.DecisionFactCheck, model.TriggerDefaultFactCheck, 0.3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			d := r.Route(tt.query)
			if d.Decision != tt.decision {
				t.Errorf("decision: expected %s, got %s", tt.decision, d.Decision)
			}
			if d.Trigger != tt.trigger {
				t.Errorf("trigger: expected %s, got %s", tt.trigger, d.Trigger)
			}
			if !approxEqual(d.Confidence, tt.confidence) {
				t.Errorf("confidence: expected %.2f, got %.2f", tt.confidence, d.Confidence)
			}
			if d.IntentType != tt.intent {
				t.Errorf("intent: expected %q, got %q", tt.intent, d.IntentType)
			}
		})
	}
}

func TestRouter_ExplicitVerification(t *testing.T) {
	r := NewRouter(model.RouterConfig{})
	d := r.Route("Is it true that WWII ended in 1945?")

	if d.Decision != model.DecisionFactCheck {
		t.Fatalf("expected fact_check, got %s", d.Decision)
	}
	if d.Trigger != model.TriggerExplicitVerification {
		t.Errorf("expected explicit_verification, got %s", d.Trigger)
	}
	if d.Confidence < 0.85 {
		t.Errorf("expected confidence >= 0.85, got %.2f", d.Confidence)
	}
	if d.Confidence > 1 {
		t.Errorf("confidence must be clamped to 1, got %.2f", d.Confidence)
	}
	if !d.HasHistoricalMarkers {
		t.Error("expected historical markers")
	}
	if d.Signals["has_year_or_era_marker"] != true {
		t.Errorf("expected year marker in signals: %v", d.Signals)
	}
}

func TestRouter_AmbiguousButVerification(t *testing.T) {
	r := NewRouter(model.RouterConfig{})
	// "that" dangles, but explicit verification phrasing still fact-checks.
	d := r.Route("Did that really happen?")
	if d.Decision != model.DecisionFactCheck || d.Trigger != model.TriggerExplicitVerification {
		t.Errorf("expected explicit verification fact_check, got %s/%s", d.Decision, d.Trigger)
	}
}

func TestRouter_CustomThresholds(t *testing.T) {
	r := NewRouter(model.RouterConfig{MinWords: 4, MinChars: 8})
	d := r.Route("Tell me something")
	if d.Trigger != model.TriggerUnderspecified {
		t.Errorf("expected underspecified with MinWords=4, got %s", d.Trigger)
	}
}

func TestRouter_Deterministic(t *testing.T) {
	r := NewRouter(model.RouterConfig{})
	q := "When did the Roman Empire fall?"
	a, b := r.Route(q), r.Route(q)
	if a.Decision != b.Decision || a.Trigger != b.Trigger || a.Confidence != b.Confidence {
		t.Errorf("routing is not deterministic: %+v vs %+v", a, b)
	}
}

// allSignalCombinations enumerates every combination of the boost-relevant
// signals
func allSignalCombinations() []extract.Signals {
	var out []extract.Signals
	for mask := 0; mask < 32; mask++ {
		out = append(out, extract.Signals{
			IsVerificationPhrasing: mask&1 != 0,
			HasDomainKeyword:       mask&2 != 0,
			HasYearOrEraMarker:     mask&4 != 0,
			IsWHQuestion:           mask&8 != 0,
			IsYesNoQuestion:        mask&16 != 0,
		})
	}
	return out
}

func TestFactCheckConfidence_Commutative(t *testing.T) {
	original := confidenceBoosts
	defer func() { confidenceBoosts = original }()

	reversed := make([]confidenceBoost, len(original))
	for i, b := range original {
		reversed[len(original)-1-i] = b
	}

	for _, s := range allSignalCombinations() {
		confidenceBoosts = original
		forward, _ := FactCheckConfidence(s)
		confidenceBoosts = reversed
		backward, _ := FactCheckConfidence(s)
		if !approxEqual(forward, backward) {
			t.Errorf("order changed confidence for %+v: %.4f vs %.4f", s, forward, backward)
		}
	}
}

func TestFactCheckConfidence_Monotonic(t *testing.T) {
	flips := []func(*extract.Signals){
		func(s *extract.Signals) { s.IsVerificationPhrasing = true },
		func(s *extract.Signals) { s.HasDomainKeyword = true },
		func(s *extract.Signals) { s.HasYearOrEraMarker = true },
		func(s *extract.Signals) { s.IsWHQuestion = true },
		func(s *extract.Signals) { s.IsYesNoQuestion = true },
	}

	for _, s := range allSignalCombinations() {
		before, _ := FactCheckConfidence(s)
		if before < 0 || before > 1 {
			t.Errorf("confidence out of range: %.2f", before)
		}
		for _, flip := range flips {
			next := s
			flip(&next)
			after, _ := FactCheckConfidence(next)
			if after+1e-9 < before {
				t.Errorf("adding a signal lowered confidence: %+v %.2f -> %+v %.2f", s, before, next, after)
			}
		}
	}
}

func TestFactCheckConfidence_Base(t *testing.T) {
	c, matched := FactCheckConfidence(extract.Signals{})
	if !approxEqual(c, 0.3) || len(matched) != 0 {
		t.Errorf("expected bare 0.3, got %.2f %v", c, matched)
	}
}
