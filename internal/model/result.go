package model

import "time"

// Citation links an answer to one evidence item
type Citation struct {
	EvidenceID string `json:"evidence_id"`
	URL        string `json:"url"`
	Title      string `json:"title"`
}

// FallbackReason says why a canned answer replaced the generated one
type FallbackReason string

const (
	FallbackNone                 FallbackReason = ""
	FallbackNoEvidence           FallbackReason = "no_evidence"
	FallbackGeneratorUnavailable FallbackReason = "generator_unavailable"
	FallbackInvalidCitations     FallbackReason = "invalid_citations"
)

// Fallback answer texts
const (
	NoEvidenceMessage           = "I cannot verify this claim because I could not retrieve any relevant evidence. Please refine your question or try again later."
	GeneratorUnavailableMessage = "I cannot verify this claim right now because the answer-generation model is currently unavailable."
	InvalidCitationsMessage     = "I cannot safely verify this claim using the retrieved evidence. The sources appear insufficient, inconsistent, or the citations are unclear."
)

// FinalAnswer is the validated, cited answer of a fact-check run
type FinalAnswer struct {
	Text        string         `json:"text"`
	Citations   []Citation     `json:"citations"`
	Confidence  float64        `json:"confidence"`
	Valid       bool           `json:"valid"`
	Fallback    FallbackReason `json:"fallback,omitempty"`
	Limitations string         `json:"limitations,omitempty"`
}

// FallbackAnswer builds the canned answer for reason
func FallbackAnswer(reason FallbackReason) *FinalAnswer {
	text := GeneratorUnavailableMessage
	switch reason {
	case FallbackNoEvidence:
		text = NoEvidenceMessage
	case FallbackInvalidCitations:
		text = InvalidCitationsMessage
	}
	return &FinalAnswer{
		Text:       text,
		Citations:  []Citation{},
		Confidence: 0,
		Valid:      false,
		Fallback:   reason,
	}
}

// Result is what a workflow run returns to its caller
type Result struct {
	RunID          string          `json:"run_id"`
	FinalAnswer    string          `json:"final_answer"`
	Confidence     float64         `json:"confidence"`
	Route          *RouteDecision  `json:"route,omitempty"`
	Citations      []Citation      `json:"citations"`
	EvidenceBundle *EvidenceBundle `json:"evidence_bundle,omitempty"`
	Metadata       map[string]any  `json:"metadata"`
	ClarifyRequest *ClarifyRequest `json:"clarify_request,omitempty"`
	Failed         bool            `json:"failed,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// EventType classifies streamed progress events
type EventType string

const (
	EventStageStarted EventType = "stage_started"
	EventStageEnded   EventType = "stage_ended"
	EventRunCompleted EventType = "run_completed"
)

// Event is one progress notification of a streamed run
type Event struct {
	Type          EventType     `json:"type"`
	Stage         string        `json:"stage,omitempty"`
	At            time.Time     `json:"at"`
	Duration      time.Duration `json:"duration,omitempty"`       // stage_ended only
	OutputKeys    []string      `json:"output_keys,omitempty"`    // stage_ended only
	Result        *Result       `json:"result,omitempty"`         // run_completed only
	TotalDuration time.Duration `json:"total_duration,omitempty"` // run_completed only
}
