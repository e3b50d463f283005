package model

// Decision is the routing outcome for a query
type Decision string

const (
	DecisionFactCheck  Decision = "fact_check"   // Proceed with verification
	DecisionClarify    Decision = "clarify"      // Ask the user to restate the query
	DecisionOutOfScope Decision = "out_of_scope" // Query is not a historical claim
)

// Trigger names the rule that produced a routing decision
type Trigger string

const (
	TriggerEmptyQuery           Trigger = "empty_query"
	TriggerUnderspecified       Trigger = "underspecified_query"
	TriggerAmbiguousReference   Trigger = "ambiguous_reference"
	TriggerNonHistoricalIntent  Trigger = "non_historical_intent"
	TriggerExplicitVerification Trigger = "explicit_verification"
	TriggerDefaultFactCheck     Trigger = "default_fact_check"
)

// RouteDecision is the immutable result of routing a single query
type RouteDecision struct {
	Trigger              Trigger        `json:"trigger"`
	Decision             Decision       `json:"decision"`
	Reasoning            string         `json:"reasoning"`
	Confidence           float64        `json:"confidence"`            // Routing confidence in [0,1]
	Signals              map[string]any `json:"signals"`               // Every extracted signal, keyed by name
	IntentType           string         `json:"intent_type,omitempty"` // Set only for out_of_scope
	DetectedLanguage     string         `json:"detected_language"`
	HasHistoricalMarkers bool           `json:"has_historical_markers"`
	WordCount            int            `json:"word_count"`
}

// ClarifyField is one piece of information the user is asked to supply
type ClarifyField struct {
	Key      string `json:"key"`
	Question string `json:"question"`
	Hint     string `json:"hint,omitempty"`
}

// ClarifyRequest is the structured prompt returned for clarify decisions
type ClarifyRequest struct {
	ReasonCode    Trigger        `json:"reason_code"`
	Message       string         `json:"message"`
	OriginalQuery string         `json:"original_query"`
	Fields        []ClarifyField `json:"fields"`
}
