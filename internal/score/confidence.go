package score

import (
	"math"

	"github.com/ppiankov/factcheck/internal/model"
)

// Blend weights for the verdict baseline and the model's own estimate
const (
	baselineWeight = 0.6
	suppliedWeight = 0.4
)

// Caps and bonuses applied after blending
const (
	noCitationCap     = 0.3
	singleCitationCap = 0.7
	manyCitationBonus = 0.05
	manyCitations     = 3
	contestedCap      = 0.6
)

// Baseline returns the confidence implied by an overall verdict alone
func Baseline(verdict model.Verdict) float64 {
	switch verdict {
	case model.VerdictSupported:
		return 0.8
	case model.VerdictNotSupported:
		return 0.75
	case model.VerdictContested:
		return 0.5
	case model.VerdictInsufficient:
		return 0.25
	default:
		return 0.5
	}
}

// HybridConfidence combines the verdict baseline with an optional
// model-supplied estimate, then applies objective modifiers. A negative
// estimate counts as not supplied. Modifiers:
//
//   - no cited evidence caps at 0.3, one cited item caps at 0.7
//   - three or more cited items add 0.05
//   - any contested finding caps at 0.6
//
// The result is always within [0, 1].
func HybridConfidence(verdict model.Verdict, supplied *float64, citedCount int, findings []model.Finding) float64 {
	conf := Baseline(verdict)
	if supplied != nil && *supplied >= 0 {
		conf = conf*baselineWeight + clamp(*supplied)*suppliedWeight
	}

	switch {
	case citedCount <= 0:
		conf = math.Min(conf, noCitationCap)
	case citedCount == 1:
		conf = math.Min(conf, singleCitationCap)
	case citedCount >= manyCitations:
		conf += manyCitationBonus
	}

	for _, f := range findings {
		if f.Verdict == model.VerdictContested {
			conf = math.Min(conf, contestedCap)
			break
		}
	}

	return clamp(conf)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
