package pipeline

import (
	"time"

	"github.com/ppiankov/factcheck/internal/model"
)

// State is the workflow envelope owned by the pipeline
type State = model.WorkflowState

// Stage names a step of the workflow
type Stage string

const (
	StageRouting     Stage = "routing"
	StageResearching Stage = "researching"
	StageEvaluating  Stage = "evaluating"
	StageValidating  Stage = "validating"
	StageDone        Stage = "done"
)

// Delta is the partial update a stage returns. Nil fields are absent and
// leave the state unchanged.
type Delta struct {
	Route          *model.RouteDecision
	ClarifyRequest *model.ClarifyRequest
	SearchQueries  []string
	SearchResults  []model.SearchResult
	Bundle         *model.EvidenceBundle
	Answer         *model.FinalAnswer
	Metadata       map[string]any // stored under the stage name
}

// Keys names the fields present in d, in declaration order
func (d Delta) Keys() []string {
	keys := make([]string, 0, 7)
	if d.Route != nil {
		keys = append(keys, "route")
	}
	if d.ClarifyRequest != nil {
		keys = append(keys, "clarify_request")
	}
	if d.SearchQueries != nil {
		keys = append(keys, "search_queries")
	}
	if d.SearchResults != nil {
		keys = append(keys, "search_results")
	}
	if d.Bundle != nil {
		keys = append(keys, "evidence_bundle")
	}
	if d.Answer != nil {
		keys = append(keys, "final_answer")
	}
	if d.Metadata != nil {
		keys = append(keys, "metadata")
	}
	return keys
}

// merge applies d to state and records the stage timing
func merge(state *State, stage Stage, d Delta, elapsed time.Duration) {
	if d.Route != nil {
		state.Route = d.Route
	}
	if d.ClarifyRequest != nil {
		state.ClarifyRequest = d.ClarifyRequest
	}
	if d.SearchQueries != nil {
		state.SearchQueries = d.SearchQueries
	}
	if d.SearchResults != nil {
		state.SearchResults = d.SearchResults
	}
	if d.Bundle != nil {
		state.Bundle = d.Bundle
	}
	if d.Answer != nil {
		state.Answer = d.Answer
	}
	if d.Metadata != nil {
		if state.Metadata == nil {
			state.Metadata = make(map[string]map[string]any)
		}
		state.Metadata[string(stage)] = d.Metadata
	}
	if state.Timings == nil {
		state.Timings = make(map[string]time.Duration)
	}
	state.Timings[string(stage)] = elapsed
}

func newState(runID, query string) *State {
	return &State{
		RunID:     runID,
		Query:     query,
		Metadata:  make(map[string]map[string]any),
		Timings:   make(map[string]time.Duration),
		Next:      string(StageRouting),
		StartedAt: time.Now().UTC(),
	}
}
