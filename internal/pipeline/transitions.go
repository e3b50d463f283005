package pipeline

import "github.com/ppiankov/factcheck/internal/model"

// Transition moves the workflow to Next when When reports true. A nil When
// always matches.
type Transition struct {
	When func(*State) bool
	Next Stage
}

// Transitions maps each stage to its outgoing edges, tried in order
type Transitions map[Stage][]Transition

func isFactCheck(s *State) bool {
	return s.Route != nil && s.Route.Decision == model.DecisionFactCheck
}

// DefaultTransitions is the verification workflow. Routing is the only
// conditional stage.
func DefaultTransitions() Transitions {
	return Transitions{
		StageRouting: {
			{When: isFactCheck, Next: StageResearching},
			{Next: StageDone},
		},
		StageResearching: {{Next: StageEvaluating}},
		StageEvaluating:  {{Next: StageValidating}},
		StageValidating:  {{Next: StageDone}},
	}
}

// Next returns the stage after from. Stages without a matching edge end
// the run.
func (t Transitions) Next(from Stage, s *State) Stage {
	for _, tr := range t[from] {
		if tr.When == nil || tr.When(s) {
			return tr.Next
		}
	}
	return StageDone
}
