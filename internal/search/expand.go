package search

import "strings"

const trustedSites = "site:wikipedia.org OR site:britannica.com OR site:.edu OR site:.gov"

// Expand turns a query into up to three search queries: the query itself,
// a "history" variant and a "facts" variant. Variants are skipped when the
// query already carries the word. trustedOnly restricts every query to
// encyclopedic and institutional sites.
func Expand(query string, trustedOnly bool) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	lower := strings.ToLower(query)

	queries := []string{query}
	if !strings.Contains(lower, "history") {
		queries = append(queries, query+" history")
	}
	if !strings.Contains(lower, "truth") && !strings.Contains(lower, "fact") {
		queries = append(queries, query+" facts")
	}

	if trustedOnly {
		for i, q := range queries {
			queries[i] = q + " " + trustedSites
		}
	}
	return queries
}
