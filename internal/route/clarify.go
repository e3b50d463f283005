package route

import (
	"strings"

	"github.com/ppiankov/factcheck/internal/model"
)

const (
	emptyQueryMessage     = "Please type a historical claim or question you would like me to fact-check."
	underspecifiedMessage = "Your question is a bit too short for me to identify a specific historical claim."
	ambiguousMessage      = "I am not sure what 'this/that/it' refers to in your question. Please specify the historical event, person, or claim."
	defaultClarifyMessage = "Please provide more details about the historical claim you want me to check."
)

// ClarifyRequest builds the prompt shown to the user for a clarify decision.
// It returns nil for any other decision.
func ClarifyRequest(query string, d *model.RouteDecision) *model.ClarifyRequest {
	if d == nil || d.Decision != model.DecisionClarify {
		return nil
	}

	req := &model.ClarifyRequest{
		ReasonCode:    d.Trigger,
		OriginalQuery: strings.TrimSpace(query),
		Fields: []model.ClarifyField{{
			Key:      "claim",
			Question: "What specific historical claim or event would you like me to verify?",
			Hint:     "e.g. 'Did the Berlin Wall fall in 1989?'",
		}},
	}

	switch d.Trigger {
	case model.TriggerEmptyQuery:
		req.Message = emptyQueryMessage
	case model.TriggerUnderspecified:
		req.Message = underspecifiedMessage
		if kw, _ := d.Signals["has_domain_keyword"].(bool); kw {
			req.Fields = append(req.Fields, model.ClarifyField{
				Key:      "time_period",
				Question: "Which time period or date range is this about?",
				Hint:     "e.g. '1940s' or 'the 15th century'",
			})
		}
	case model.TriggerAmbiguousReference:
		req.Message = ambiguousMessage
	default:
		req.Message = defaultClarifyMessage
	}

	return req
}
