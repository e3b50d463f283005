package validate

import (
	"testing"

	"github.com/ppiankov/factcheck/internal/model"
)

func TestCredibilityClassifier_Classify(t *testing.T) {
	classifier := NewCredibilityClassifier(nil)

	tests := []struct {
		desc     string
		result   model.SearchResult
		expected Tier
	}{
		{
			desc:     "Fact-check title marker",
			result:   model.SearchResult{Title: "[FACT-CHECK] Napoleon was short", URL: "https://example.com/a"},
			expected: TierFactChecker,
		},
		{
			desc:     "Fact check phrase in title",
			result:   model.SearchResult{Title: "Fact Check: Did Vikings wear horned helmets?", URL: "https://blog.example.com/x"},
			expected: TierFactChecker,
		},
		{
			desc:     "Known fact-checking domain",
			result:   model.SearchResult{Title: "Moon landing", URL: "https://www.snopes.com/fact/moon"},
			expected: TierFactChecker,
		},
		{
			desc:     "Government domain",
			result:   model.SearchResult{Title: "Archives", URL: "https://www.archives.gov/milestone"},
			expected: TierGovEdu,
		},
		{
			desc:     "International government domain",
			result:   model.SearchResult{Title: "Statute", URL: "https://www.legislation.gov.uk/ukpga/1998/42"},
			expected: TierGovEdu,
		},
		{
			desc:     "UK academic domain",
			result:   model.SearchResult{Title: "History dept", URL: "https://www.history.ox.ac.uk/"},
			expected: TierGovEdu,
		},
		{
			desc:     "Education domain with port",
			result:   model.SearchResult{Title: "Lecture", URL: "https://history.stanford.edu:443/ww2"},
			expected: TierGovEdu,
		},
		{
			desc:     "Reputable news subdomain",
			result:   model.SearchResult{Title: "WWII", URL: "https://en.wikipedia.org/wiki/World_War_II"},
			expected: TierNews,
		},
		{
			desc:     "Low quality social source",
			result:   model.SearchResult{Title: "thread", URL: "https://www.reddit.com/r/history/123"},
			expected: TierLowQuality,
		},
		{
			desc:     "Generic source",
			result:   model.SearchResult{Title: "My history page", URL: "https://example.com/history"},
			expected: TierGeneric,
		},
		{
			desc:     "Display domain fallback",
			result:   model.SearchResult{Title: "Report", URL: "not a url", DisplayDomain: "www.Reuters.com"},
			expected: TierNews,
		},
		{
			desc:     "Suffix must align with label boundary",
			result:   model.SearchResult{Title: "Report", URL: "https://notreuters.com/x"},
			expected: TierGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := classifier.Classify(tt.result); got != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.result.URL, got)
			}
		})
	}
}

func TestCredibilityClassifier_DomainMap(t *testing.T) {
	cfg := model.CredibilityConfig{
		NewsDomains: []string{"example.org"},
		DomainMap: map[string]string{
			"example.org":         "low_quality",
			"archive.example.com": "gov_edu",
		},
	}
	classifier := NewCredibilityClassifier(&cfg)

	if got := classifier.Classify(model.SearchResult{URL: "https://news.example.org/a"}); got != TierLowQuality {
		t.Errorf("Expected domain map override to low_quality, got %v", got)
	}
	if got := classifier.Classify(model.SearchResult{URL: "https://archive.example.com/a"}); got != TierGovEdu {
		t.Errorf("Expected gov_edu from domain map, got %v", got)
	}
	if got := classifier.Classify(model.SearchResult{URL: "https://example.com/a"}); got != TierGeneric {
		t.Errorf("Expected generic for unmapped parent, got %v", got)
	}
}

func TestTierWeight(t *testing.T) {
	weights := map[Tier]float64{
		TierFactChecker: 0.95,
		TierGovEdu:      0.85,
		TierNews:        0.70,
		TierGeneric:     0.50,
		TierLowQuality:  0.30,
		Tier("unknown"): 0.50,
	}
	for tier, want := range weights {
		if got := tier.Weight(); got != want {
			t.Errorf("%s.Weight() = %v, want %v", tier, got, want)
		}
	}
}

func TestSourceDomain(t *testing.T) {
	tests := map[string]model.SearchResult{
		"bbc.co.uk":   {URL: "https://www.bbc.co.uk/news/1"},
		"example.com": {URL: "", DisplayDomain: "Example.com"},
		"host.org":    {URL: "http://host.org:8080/path"},
	}
	for want, r := range tests {
		if got := SourceDomain(r); got != want {
			t.Errorf("SourceDomain(%+v) = %q, want %q", r, got, want)
		}
	}
}
