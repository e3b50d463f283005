package model

import "time"

// WorkflowState is the envelope threaded through one workflow run. The
// orchestrator owns it; stages see a copy.
type WorkflowState struct {
	RunID          string                    `json:"run_id"`
	Query          string                    `json:"query"`
	Route          *RouteDecision            `json:"route,omitempty"`
	ClarifyRequest *ClarifyRequest           `json:"clarify_request,omitempty"`
	SearchQueries  []string                  `json:"search_queries,omitempty"`
	SearchResults  []SearchResult            `json:"search_results,omitempty"`
	Bundle         *EvidenceBundle           `json:"evidence_bundle,omitempty"`
	Answer         *FinalAnswer              `json:"final_answer,omitempty"`
	Metadata       map[string]map[string]any `json:"metadata,omitempty"` // per stage
	Timings        map[string]time.Duration  `json:"timings,omitempty"`  // per stage
	Next           string                    `json:"next"`               // stage to run next, "done" when finished
	Error          string                    `json:"error,omitempty"`
	Result         *Result                   `json:"result,omitempty"` // set once the run completes
	StartedAt      time.Time                 `json:"started_at"`
}

// Clone returns a copy whose slices and maps can be modified without
// affecting s. Pointed-to values are shared; they are never mutated
// after construction.
func (s *WorkflowState) Clone() *WorkflowState {
	if s == nil {
		return nil
	}
	c := *s
	if s.SearchQueries != nil {
		c.SearchQueries = append([]string(nil), s.SearchQueries...)
	}
	if s.SearchResults != nil {
		c.SearchResults = append([]SearchResult(nil), s.SearchResults...)
	}
	if s.Metadata != nil {
		c.Metadata = make(map[string]map[string]any, len(s.Metadata))
		for stage, m := range s.Metadata {
			inner := make(map[string]any, len(m))
			for k, v := range m {
				inner[k] = v
			}
			c.Metadata[stage] = inner
		}
	}
	if s.Timings != nil {
		c.Timings = make(map[string]time.Duration, len(s.Timings))
		for k, v := range s.Timings {
			c.Timings[k] = v
		}
	}
	return &c
}

// Completed reports whether the run reached its terminal stage
func (s *WorkflowState) Completed() bool {
	return s != nil && s.Result != nil
}
