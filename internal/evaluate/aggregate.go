package evaluate

import "github.com/ppiankov/factcheck/internal/model"

// Aggregate folds pair verdicts into one finding per claim. A claim with
// both supporting and contradicting evidence is contested. Credibility does
// not influence the verdict.
func Aggregate(claims []string, pairs []model.PairEvaluation, items []model.EvidenceItem) ([]model.Finding, error) {
	findings := make([]model.Finding, 0, len(claims))
	for _, claim := range claims {
		var supported, refuted bool
		var ids []string
		for _, p := range pairs {
			if p.Claim != claim {
				continue
			}
			switch p.Verdict {
			case model.PairSupported:
				supported = true
			case model.PairNotSupported:
				refuted = true
			default:
				continue
			}
			ids = append(ids, p.EvidenceID)
		}

		verdict := model.VerdictInsufficient
		switch {
		case supported && refuted:
			verdict = model.VerdictContested
		case supported:
			verdict = model.VerdictSupported
		case refuted:
			verdict = model.VerdictNotSupported
		}

		f, err := model.NewFinding(claim, verdict, ids, items)
		if err != nil {
			return nil, err
		}
		findings = append(findings, f)
	}
	return findings, nil
}

// Synthesize reduces findings to the overall verdict with fixed priority:
// contested, then not_supported, then supported, then insufficient
func Synthesize(findings []model.Finding) model.Verdict {
	if len(findings) == 0 {
		return model.VerdictInsufficient
	}
	seen := make(map[model.Verdict]bool, len(findings))
	for _, f := range findings {
		seen[f.Verdict] = true
	}
	for _, v := range []model.Verdict{model.VerdictContested, model.VerdictNotSupported, model.VerdictSupported} {
		if seen[v] {
			return v
		}
	}
	return model.VerdictInsufficient
}
