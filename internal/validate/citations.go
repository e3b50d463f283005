package validate

import (
	"regexp"
	"strings"

	"github.com/ppiankov/factcheck/internal/model"
)

var (
	citationPattern = regexp.MustCompile(`\[E(\d+)\]`)
	urlPattern      = regexp.MustCompile(`https?://[^\s)\]>"']+`)
)

// CitationReport is the outcome of checking an answer's [E#] markers
// against an evidence bundle
type CitationReport struct {
	Valid      bool     `json:"valid"`
	Cited      []string `json:"cited"`
	Known      []string `json:"known"`
	Unknown    []string `json:"unknown"`
	Available  []string `json:"available"`
	LeakedURLs []string `json:"leaked_urls,omitempty"` // URLs in the text that no evidence item carries
}

// ExtractCitationIDs returns the distinct evidence ids cited in text, in
// numeric order
func ExtractCitationIDs(text string) []string {
	matches := citationPattern.FindAllStringSubmatch(text, -1)
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, "E"+m[1])
	}
	return model.SortEvidenceIDs(ids)
}

// ValidateCitations checks that text cites at least one id and that every
// cited id exists in bundle
func ValidateCitations(text string, bundle *model.EvidenceBundle) CitationReport {
	report := CitationReport{
		Cited:     ExtractCitationIDs(text),
		Known:     []string{},
		Unknown:   []string{},
		Available: []string{},
	}
	if bundle != nil {
		report.Available = bundle.IDs()
	}

	for _, id := range report.Cited {
		if _, ok := bundle.Item(id); ok {
			report.Known = append(report.Known, id)
		} else {
			report.Unknown = append(report.Unknown, id)
		}
	}
	report.Valid = len(report.Cited) > 0 && len(report.Unknown) == 0
	report.LeakedURLs = leakedURLs(text, bundle)
	return report
}

func leakedURLs(text string, bundle *model.EvidenceBundle) []string {
	known := make(map[string]bool)
	if bundle != nil {
		for _, it := range bundle.Items {
			known[strings.TrimSuffix(it.URL, "/")] = true
		}
	}

	var leaked []string
	for _, u := range urlPattern.FindAllString(text, -1) {
		u = strings.TrimRight(u, ".,;:")
		if !known[strings.TrimSuffix(u, "/")] {
			leaked = append(leaked, u)
		}
	}
	return leaked
}
