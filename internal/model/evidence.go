package model

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownEvidence is returned when a reference points at an evidence id
// that does not exist in the bundle
var ErrUnknownEvidence = errors.New("unknown evidence id")

// SearchResult is a raw record returned by an evidence source
type SearchResult struct {
	Title         string `json:"title"`
	Snippet       string `json:"snippet"`
	URL           string `json:"url"`
	DisplayDomain string `json:"display_domain,omitempty"`
}

// EvidenceItem is a search result admitted into a run, with a stable id
type EvidenceItem struct {
	ID                string  `json:"id"` // "E1", "E2", ... in retrieval order
	Title             string  `json:"title"`
	Snippet           string  `json:"snippet"`
	URL               string  `json:"url"`
	SourceDomain      string  `json:"source_domain"`
	CredibilityWeight float64 `json:"credibility_weight"` // Informational only, in [0,1]
}

// EvidenceID formats the id of the n-th evidence item (1-based)
func EvidenceID(n int) string {
	return "E" + strconv.Itoa(n)
}

// evidenceOrdinal returns the numeric part of an id, or -1 if malformed
func evidenceOrdinal(id string) int {
	if !strings.HasPrefix(id, "E") {
		return -1
	}
	n, err := strconv.Atoi(id[1:])
	if err != nil {
		return -1
	}
	return n
}

// SortEvidenceIDs sorts ids by their numeric ordinal (E2 before E10) and
// removes duplicates
func SortEvidenceIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := evidenceOrdinal(out[i]), evidenceOrdinal(out[j])
		if a != b {
			return a < b
		}
		return out[i] < out[j]
	})
	return out
}

// PairVerdict is the judgment of one evidence item against one claim
type PairVerdict string

const (
	PairSupported    PairVerdict = "supported"
	PairNotSupported PairVerdict = "not_supported"
	PairIrrelevant   PairVerdict = "irrelevant"
)

// Valid reports whether v is one of the known pair verdicts
func (v PairVerdict) Valid() bool {
	switch v {
	case PairSupported, PairNotSupported, PairIrrelevant:
		return true
	}
	return false
}

// Verdict is the aggregated judgment of a claim or of the whole query
type Verdict string

const (
	VerdictSupported    Verdict = "supported"
	VerdictNotSupported Verdict = "not_supported"
	VerdictContested    Verdict = "contested"
	VerdictInsufficient Verdict = "insufficient"
)

// PairEvaluation is the result of judging one (claim, evidence) pair
type PairEvaluation struct {
	Claim      string      `json:"claim"`
	EvidenceID string      `json:"evidence_id"`
	Verdict    PairVerdict `json:"verdict"`
	Confidence float64     `json:"confidence"`
	Reasoning  string      `json:"reasoning"`
}

// Finding is the aggregated verdict for a single claim
type Finding struct {
	Claim       string   `json:"claim"`
	Verdict     Verdict  `json:"verdict"`
	EvidenceIDs []string `json:"evidence_ids"` // Sorted ids of relevant evidence
}

// NewFinding builds a finding whose evidence ids are all present in items.
// Ids are sorted and deduplicated.
func NewFinding(claim string, verdict Verdict, ids []string, items []EvidenceItem) (Finding, error) {
	known := make(map[string]bool, len(items))
	for _, it := range items {
		known[it.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return Finding{}, fmt.Errorf("finding for %q: %w: %s", claim, ErrUnknownEvidence, id)
		}
	}
	return Finding{
		Claim:       claim,
		Verdict:     verdict,
		EvidenceIDs: SortEvidenceIDs(ids),
	}, nil
}

// EvidenceBundle holds the evidence and findings of one run.
// It is not modified after NewEvidenceBundle returns.
type EvidenceBundle struct {
	Items          []EvidenceItem `json:"items"`
	Findings       []Finding      `json:"findings"`
	OverallVerdict Verdict        `json:"overall_verdict"`
}

// NewEvidenceBundle validates that every finding references known items
func NewEvidenceBundle(items []EvidenceItem, findings []Finding, overall Verdict) (*EvidenceBundle, error) {
	known := make(map[string]bool, len(items))
	for _, it := range items {
		if known[it.ID] {
			return nil, fmt.Errorf("duplicate evidence id %s", it.ID)
		}
		known[it.ID] = true
	}
	for _, f := range findings {
		for _, id := range f.EvidenceIDs {
			if !known[id] {
				return nil, fmt.Errorf("bundle finding %q: %w: %s", f.Claim, ErrUnknownEvidence, id)
			}
		}
	}
	return &EvidenceBundle{
		Items:          items,
		Findings:       findings,
		OverallVerdict: overall,
	}, nil
}

// EmptyBundle is the bundle of a run that found no evidence
func EmptyBundle() *EvidenceBundle {
	return &EvidenceBundle{
		Items:          []EvidenceItem{},
		Findings:       []Finding{},
		OverallVerdict: VerdictInsufficient,
	}
}

// IsEmpty reports whether the bundle has no evidence items
func (b *EvidenceBundle) IsEmpty() bool {
	return b == nil || len(b.Items) == 0
}

// Item looks up an evidence item by id
func (b *EvidenceBundle) Item(id string) (EvidenceItem, bool) {
	if b == nil {
		return EvidenceItem{}, false
	}
	for _, it := range b.Items {
		if it.ID == id {
			return it, true
		}
	}
	return EvidenceItem{}, false
}

// IDs returns the ids of all items, in retrieval order
func (b *EvidenceBundle) IDs() []string {
	if b == nil {
		return nil
	}
	ids := make([]string, len(b.Items))
	for i, it := range b.Items {
		ids[i] = it.ID
	}
	return ids
}

// HasContested reports whether any finding is contested
func (b *EvidenceBundle) HasContested() bool {
	if b == nil {
		return false
	}
	for _, f := range b.Findings {
		if f.Verdict == VerdictContested {
			return true
		}
	}
	return false
}
