package validate

import (
	"net/url"
	"strings"

	"github.com/ppiankov/factcheck/internal/model"
)

// Tier is a source credibility class
type Tier string

const (
	TierFactChecker Tier = "fact_checker"
	TierGovEdu      Tier = "gov_edu"
	TierNews        Tier = "news"
	TierGeneric     Tier = "generic"
	TierLowQuality  Tier = "low_quality"
)

// Weight returns the credibility weight of a tier
func (t Tier) Weight() float64 {
	switch t {
	case TierFactChecker:
		return 0.95
	case TierGovEdu:
		return 0.85
	case TierNews:
		return 0.70
	case TierLowQuality:
		return 0.30
	default:
		return 0.50
	}
}

// CredibilityClassifier assigns credibility tiers to search results from
// their title and domain
type CredibilityClassifier struct {
	domainMap  map[string]Tier
	factCheck  map[string]bool
	news       map[string]bool
	lowQuality map[string]bool
}

// NewCredibilityClassifier creates a classifier from cfg. A nil config uses
// the built-in domain lists.
func NewCredibilityClassifier(cfg *model.CredibilityConfig) *CredibilityClassifier {
	if cfg == nil {
		defaults := model.DefaultCredibilityConfig()
		cfg = &defaults
	}

	c := &CredibilityClassifier{
		domainMap:  make(map[string]Tier),
		factCheck:  domainSet(cfg.FactCheckDomains),
		news:       domainSet(cfg.NewsDomains),
		lowQuality: domainSet(cfg.LowQualityDomains),
	}
	for host, tier := range cfg.DomainMap {
		c.domainMap[normalizeHost(host)] = parseTier(tier)
	}
	return c
}

func domainSet(domains []string) map[string]bool {
	m := make(map[string]bool, len(domains))
	for _, d := range domains {
		if d = normalizeHost(d); d != "" {
			m[d] = true
		}
	}
	return m
}

// Classify returns the tier of a search result
func (c *CredibilityClassifier) Classify(r model.SearchResult) Tier {
	title := strings.ToLower(r.Title)
	if strings.Contains(r.Title, "[FACT-CHECK]") || strings.Contains(title, "fact check") {
		return TierFactChecker
	}

	host := SourceDomain(r)

	// Explicit mappings win over the built-in lists
	if tier, ok := c.lookupMap(host); ok {
		return tier
	}

	switch {
	case matchDomain(c.factCheck, host):
		return TierFactChecker
	case isGovEdu(host):
		return TierGovEdu
	case matchDomain(c.news, host):
		return TierNews
	case matchDomain(c.lowQuality, host):
		return TierLowQuality
	}
	return TierGeneric
}

// Weight returns the credibility weight of a search result
func (c *CredibilityClassifier) Weight(r model.SearchResult) float64 {
	return c.Classify(r).Weight()
}

func (c *CredibilityClassifier) lookupMap(host string) (Tier, bool) {
	for h := host; h != ""; {
		if tier, ok := c.domainMap[h]; ok {
			return tier, true
		}
		idx := strings.Index(h, ".")
		if idx < 0 {
			break
		}
		h = h[idx+1:]
	}
	return "", false
}

// matchDomain reports whether host equals or is a subdomain of an entry
func matchDomain(set map[string]bool, host string) bool {
	if host == "" {
		return false
	}
	if set[host] {
		return true
	}
	for d := range set {
		if strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func isGovEdu(host string) bool {
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") || strings.HasSuffix(host, ".mil") {
		return true
	}
	// International forms (e.g., .gov.uk, .edu.au) and UK academic hosts
	if strings.Contains(host, ".gov.") || strings.Contains(host, ".edu.") {
		return true
	}
	return strings.HasSuffix(host, ".ac.uk")
}

// SourceDomain returns the lowercased host of a result without port or
// leading "www.", falling back to its display domain
func SourceDomain(r model.SearchResult) string {
	if parsed, err := url.Parse(r.URL); err == nil && parsed.Host != "" {
		return normalizeHost(parsed.Host)
	}
	return normalizeHost(r.DisplayDomain)
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if idx := strings.Index(host, "/"); idx >= 0 {
		host = host[:idx]
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return strings.TrimPrefix(host, "www.")
}

// parseTier converts a configured tier name to a Tier
func parseTier(tier string) Tier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "fact_checker", "fact-checker", "factcheck":
		return TierFactChecker
	case "gov_edu", "gov", "edu", "government", "education":
		return TierGovEdu
	case "news":
		return TierNews
	case "low_quality", "low-quality", "low":
		return TierLowQuality
	default:
		return TierGeneric
	}
}
