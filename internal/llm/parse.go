package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ppiankov/factcheck/internal/model"
)

// extractJSON returns the outermost JSON object or array in text, skipping
// markdown fences and surrounding prose
func extractJSON(text string) (string, bool) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", false
	}
	closer := "}"
	if text[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(text, closer)
	if end < start {
		return "", false
	}
	return text[start : end+1], true
}

// ParseClaims decodes {"claims": [...]} or a bare array. Claims are trimmed,
// blanks dropped, case-insensitive duplicates removed and the list capped at
// maxClaims.
func ParseClaims(text string, maxClaims int) (ClaimsResponse, error) {
	raw, ok := extractJSON(text)
	if !ok {
		return ClaimsResponse{}, fmt.Errorf("%w: claims: no JSON found", ErrInvalidResponse)
	}

	var list []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return ClaimsResponse{}, fmt.Errorf("%w: claims: %v", ErrInvalidResponse, err)
		}
	} else {
		var obj struct {
			Claims []string `json:"claims"`
		}
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			return ClaimsResponse{}, fmt.Errorf("%w: claims: %v", ErrInvalidResponse, err)
		}
		list = obj.Claims
	}

	seen := make(map[string]bool)
	var claims []string
	for _, c := range list {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		claims = append(claims, c)
		if maxClaims > 0 && len(claims) == maxClaims {
			break
		}
	}
	if len(claims) == 0 {
		return ClaimsResponse{}, fmt.Errorf("%w: claims: empty list", ErrInvalidResponse)
	}
	return ClaimsResponse{Claims: claims}, nil
}

// pairVerdictAliases maps loose model wording onto the closed verdict set
var pairVerdictAliases = map[string]model.PairVerdict{
	"supported":     model.PairSupported,
	"supports":      model.PairSupported,
	"not_supported": model.PairNotSupported,
	"not supported": model.PairNotSupported,
	"not-supported": model.PairNotSupported,
	"contradicted":  model.PairNotSupported,
	"contradicts":   model.PairNotSupported,
	"refuted":       model.PairNotSupported,
	"irrelevant":    model.PairIrrelevant,
	"unrelated":     model.PairIrrelevant,
}

// ParsePair decodes a pair verdict
func ParsePair(text string) (PairResponse, error) {
	raw, ok := extractJSON(text)
	if !ok || !strings.HasPrefix(raw, "{") {
		return PairResponse{}, fmt.Errorf("%w: pair: no JSON object found", ErrInvalidResponse)
	}

	var obj struct {
		Verdict    string  `json:"verdict"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return PairResponse{}, fmt.Errorf("%w: pair: %v", ErrInvalidResponse, err)
	}

	verdict, ok := pairVerdictAliases[strings.ToLower(strings.TrimSpace(obj.Verdict))]
	if !ok {
		return PairResponse{}, fmt.Errorf("%w: pair: unknown verdict %q", ErrInvalidResponse, obj.Verdict)
	}

	return PairResponse{
		Verdict:    verdict,
		Confidence: obj.Confidence,
		Reasoning:  strings.TrimSpace(obj.Reasoning),
	}, nil
}

// ParseAnswer decodes the JSON answer shape, falling back to treating the
// whole reply as plain answer text. A reply holding a JSON object must match
// the answer shape; it is never shown raw.
func ParseAnswer(text string) (TextResponse, error) {
	text = strings.TrimSpace(text)
	if raw, ok := extractJSON(text); ok && strings.HasPrefix(raw, "{") {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(raw), &fields); err == nil {
			if _, ok := fields["answer"]; !ok {
				return TextResponse{}, fmt.Errorf("%w: answer: missing answer field", ErrInvalidResponse)
			}
			return decodeAnswer(raw)
		}
	}

	if text == "" {
		return TextResponse{}, fmt.Errorf("%w: answer: empty reply", ErrInvalidResponse)
	}
	return TextResponse{Text: text}, nil
}

func decodeAnswer(raw string) (TextResponse, error) {
	var obj struct {
		Answer      string      `json:"answer"`
		Confidence  json.Number `json:"confidence"`
		EvidenceIDs []string    `json:"evidence_ids"`
		Limitations string      `json:"limitations"`
	}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return TextResponse{}, fmt.Errorf("%w: answer: %v", ErrInvalidResponse, err)
	}
	if strings.TrimSpace(obj.Answer) == "" {
		return TextResponse{}, fmt.Errorf("%w: answer: empty text", ErrInvalidResponse)
	}

	conf, err := answerConfidence(obj.Confidence)
	if err != nil {
		return TextResponse{}, fmt.Errorf("%w: answer: %v", ErrInvalidResponse, err)
	}
	return TextResponse{
		Text:        strings.TrimSpace(obj.Answer),
		Confidence:  conf,
		EvidenceIDs: obj.EvidenceIDs,
		Limitations: strings.TrimSpace(obj.Limitations),
	}, nil
}

// answerConfidence reads the self-reported confidence. Numbers and numeric
// strings are accepted; values above 1 are capped and negative values mean
// none was given.
func answerConfidence(n json.Number) (*float64, error) {
	if n == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(n.String()), 64)
	if err != nil || math.IsNaN(v) {
		return nil, fmt.Errorf("confidence %q is not a number", n.String())
	}
	if v < 0 {
		return nil, nil
	}
	v = math.Min(v, 1)
	return &v, nil
}
