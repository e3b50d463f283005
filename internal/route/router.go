// Package route decides whether a query is fact-checked, sent back for
// clarification, or declined as out of scope.
package route

import (
	"fmt"
	"strings"

	"github.com/ppiankov/factcheck/internal/extract"
	"github.com/ppiankov/factcheck/internal/model"
)

const (
	baseConfidence       = 0.3
	outOfScopeConfidence = 0.95
	underspecConfidence  = 0.2
	ambiguousConfidence  = 0.3
)

// confidenceBoost is one additive contribution to fact-check confidence
type confidenceBoost struct {
	name   string
	weight float64
	when   func(extract.Signals) bool
}

// confidenceBoosts are summed in any order; the total is clamped to 1.0
var confidenceBoosts = []confidenceBoost{
	{"verification", 0.35, func(s extract.Signals) bool { return s.IsVerificationPhrasing }},
	{"verification_with_markers", 0.20, func(s extract.Signals) bool {
		return s.IsVerificationPhrasing && (s.HasDomainKeyword || s.HasYearOrEraMarker)
	}},
	{"year_or_era", 0.15, func(s extract.Signals) bool { return s.HasYearOrEraMarker }},
	{"domain_keyword", 0.15, func(s extract.Signals) bool { return s.HasDomainKeyword }},
	{"wh_question", 0.10, func(s extract.Signals) bool { return s.IsWHQuestion }},
	{"yes_no_question", 0.10, func(s extract.Signals) bool { return s.IsYesNoQuestion }},
}

// Router classifies queries. It holds no mutable state.
type Router struct {
	minWords int
	minChars int
}

// NewRouter creates a router with the given underspecification thresholds
func NewRouter(cfg model.RouterConfig) *Router {
	if cfg.MinWords <= 0 {
		cfg.MinWords = 2
	}
	if cfg.MinChars <= 0 {
		cfg.MinChars = 8
	}
	return &Router{minWords: cfg.MinWords, minChars: cfg.MinChars}
}

// Route returns the decision for query. It never fails.
func (r *Router) Route(query string) *model.RouteDecision {
	s := extract.Extract(query)
	d := &model.RouteDecision{
		Signals:              s.Map(),
		DetectedLanguage:     s.Language,
		HasHistoricalMarkers: s.HasDomainKeyword || s.HasYearOrEraMarker,
		WordCount:            s.WordCount,
	}

	switch {
	case s.WordCount == 0:
		d.Decision = model.DecisionClarify
		d.Trigger = model.TriggerEmptyQuery
		d.Confidence = 0
		d.Reasoning = "query is empty"

	case s.NonHistoricalIntent != "":
		d.Decision = model.DecisionOutOfScope
		d.Trigger = model.TriggerNonHistoricalIntent
		d.Confidence = outOfScopeConfidence
		d.IntentType = s.NonHistoricalIntent
		d.Reasoning = fmt.Sprintf("query matches %s hints", s.NonHistoricalIntent)

	case r.underspecified(s):
		d.Decision = model.DecisionClarify
		d.Trigger = model.TriggerUnderspecified
		d.Confidence = underspecConfidence
		d.Reasoning = fmt.Sprintf("query too short to identify a claim (%d words, %d chars)", s.WordCount, s.CharCount)
		if s.IsGenericTruthQuestion {
			d.Reasoning = "query is a generic truth question without a claim"
		}

	case s.HasAmbiguousReference && !s.IsVerificationPhrasing:
		d.Decision = model.DecisionClarify
		d.Trigger = model.TriggerAmbiguousReference
		d.Confidence = ambiguousConfidence
		d.Reasoning = "query refers to something it does not name"

	default:
		d.Decision = model.DecisionFactCheck
		d.Trigger = model.TriggerDefaultFactCheck
		if s.IsVerificationPhrasing {
			d.Trigger = model.TriggerExplicitVerification
		}
		var matched []string
		d.Confidence, matched = FactCheckConfidence(s)
		d.Reasoning = "fact-check"
		if len(matched) > 0 {
			d.Reasoning += ": " + strings.Join(matched, ", ")
		}
	}

	return d
}

func (r *Router) underspecified(s extract.Signals) bool {
	return s.WordCount < r.minWords || s.CharCount < r.minChars || s.IsGenericTruthQuestion
}

// FactCheckConfidence sums the boosts that apply to s and returns the
// clamped total with the names of the boosts that fired
func FactCheckConfidence(s extract.Signals) (float64, []string) {
	total := baseConfidence
	var matched []string
	for _, b := range confidenceBoosts {
		if b.when(s) {
			total += b.weight
			matched = append(matched, b.name)
		}
	}
	if total > 1 {
		total = 1
	}
	return total, matched
}
