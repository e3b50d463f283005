package pipeline

import (
	"fmt"
	"time"

	"github.com/ppiankov/factcheck/internal/model"
)

const (
	defaultClarifyText = "Could you please clarify your question?"
	noAnswerText       = "Unable to generate an answer."
)

func outOfScopeText(intent string) string {
	if intent == "" {
		intent = "non-historical"
	}
	return fmt.Sprintf("This question appears to be about %s, which is outside my scope as a historical fact-checker. "+
		"I specialize in verifying historical claims and events.", intent)
}

func baseMetadata(s *State, total time.Duration) map[string]any {
	timings := make(map[string]float64, len(s.Timings))
	for stage, d := range s.Timings {
		timings[stage] = float64(d.Microseconds()) / 1000
	}
	return map[string]any{
		"total_time_seconds": total.Seconds(),
		"stage_timings_ms":   timings,
		"router":             s.Metadata[string(StageRouting)],
	}
}

// buildResult renders the result of a completed run
func buildResult(s *State, total time.Duration) *model.Result {
	res := &model.Result{
		RunID:     s.RunID,
		Route:     s.Route,
		Citations: []model.Citation{},
		Metadata:  baseMetadata(s, total),
	}

	decision := model.DecisionFactCheck
	if s.Route != nil {
		decision = s.Route.Decision
	}

	switch decision {
	case model.DecisionClarify:
		res.FinalAnswer = defaultClarifyText
		if s.ClarifyRequest != nil && s.ClarifyRequest.Message != "" {
			res.FinalAnswer = s.ClarifyRequest.Message
		}
		res.ClarifyRequest = s.ClarifyRequest
		return res

	case model.DecisionOutOfScope:
		res.FinalAnswer = outOfScopeText(s.Route.IntentType)
		return res
	}

	res.FinalAnswer = noAnswerText
	if s.Answer != nil {
		if s.Answer.Text != "" {
			res.FinalAnswer = s.Answer.Text
		}
		res.Confidence = s.Answer.Confidence
		if s.Answer.Citations != nil {
			res.Citations = s.Answer.Citations
		}
	}
	res.EvidenceBundle = s.Bundle
	res.Metadata["researcher"] = s.Metadata[string(StageResearching)]
	res.Metadata["analyst"] = s.Metadata[string(StageEvaluating)]
	res.Metadata["writer"] = s.Metadata[string(StageValidating)]
	res.Metadata["search_queries_count"] = len(s.SearchQueries)
	res.Metadata["search_results_count"] = len(s.SearchResults)
	return res
}

// failureResult renders a run that stopped at stage with err
func failureResult(s *State, stage Stage, err error, total time.Duration) *model.Result {
	res := &model.Result{
		RunID:          s.RunID,
		FinalAnswer:    model.GeneratorUnavailableMessage,
		Confidence:     0,
		Route:          s.Route,
		Citations:      []model.Citation{},
		EvidenceBundle: s.Bundle,
		Metadata:       baseMetadata(s, total),
		Failed:         true,
		Error:          err.Error(),
	}
	res.Metadata["failed_stage"] = string(stage)
	return res
}
