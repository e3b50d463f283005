// Package extract computes the lexical signals the router decides on.
// Every function is pure and deterministic.
package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Signals bundles every signal extracted from one query
type Signals struct {
	WordCount              int
	CharCount              int
	Language               string
	HasYearOrEraMarker     bool
	HasDomainKeyword       bool
	IsVerificationPhrasing bool
	HasAmbiguousReference  bool
	IsWHQuestion           bool
	IsYesNoQuestion        bool
	IsGenericTruthQuestion bool
	NonHistoricalIntent    string // Bucket name, empty when none matched
}

// Map returns the signals keyed by their stable names
func (s Signals) Map() map[string]any {
	return map[string]any{
		"word_count":                s.WordCount,
		"char_count":                s.CharCount,
		"detected_language":         s.Language,
		"has_year_or_era_marker":    s.HasYearOrEraMarker,
		"has_domain_keyword":        s.HasDomainKeyword,
		"is_verification_phrasing":  s.IsVerificationPhrasing,
		"has_ambiguous_reference":   s.HasAmbiguousReference,
		"is_wh_question":            s.IsWHQuestion,
		"is_yes_no_question":        s.IsYesNoQuestion,
		"is_generic_truth_question": s.IsGenericTruthQuestion,
		"non_historical_intent":     s.NonHistoricalIntent,
	}
}

var (
	yearPattern   = regexp.MustCompile(`(?i)\b\d{3,4}(\s+(AD|BC|CE|BCE))?\b`)
	decadePattern = regexp.MustCompile(`\b\d{3,4}s\b`)

	eraPattern    = phrasePattern(eraKeywords)
	domainPattern = phrasePattern(domainKeywords)

	verificationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(is it true|true or false|fact or fiction)\b`),
		regexp.MustCompile(`^(is|was|were|did)\b.*\b(true|correct|accurate|real|actually)\b`),
		regexp.MustCompile(`^(verify|confirm|check)\b.*\b(that|whether|if)\b`),
		regexp.MustCompile(`^did\b.*\breally\b`),
	}

	whPattern    = regexp.MustCompile(`^(who|what|when|where|why|how|which)\b`)
	yesNoPattern = regexp.MustCompile(`^(is|was|were|are|did|does|do|can|could|has|have|had|will|would|should)\b`)

	personalPronoun    = regexp.MustCompile(`\b(it|he|she|they|him|her|them)\b`)
	finalDemonstr      = regexp.MustCompile(`\b(this|that|these|those)\W*$`)
	pronominalDemonstr = regexp.MustCompile(`\b(this|that|these|those)\s+(happen|happened|happens|is|was|were|true|really|did|does|mean|means|meant|occur|occurred)\b`)

	intentPatterns = compileIntentBuckets(nonHistoricalBuckets)
)

func phrasePattern(phrases []string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

type compiledBucket struct {
	name    string
	pattern *regexp.Regexp
}

func compileIntentBuckets(buckets []intentBucket) []compiledBucket {
	out := make([]compiledBucket, len(buckets))
	for i, b := range buckets {
		out[i] = compiledBucket{name: b.name, pattern: phrasePattern(b.hints)}
	}
	return out
}

// normalize trims, lowercases and folds typographic apostrophes
func normalize(query string) string {
	q := strings.TrimSpace(query)
	q = strings.ReplaceAll(q, "’", "'")
	return strings.ToLower(q)
}

// Extract computes all signals for query
func Extract(query string) Signals {
	return Signals{
		WordCount:              WordCount(query),
		CharCount:              CharCount(query),
		Language:               DetectLanguage(query),
		HasYearOrEraMarker:     HasYearOrEraMarker(query),
		HasDomainKeyword:       HasDomainKeyword(query),
		IsVerificationPhrasing: IsVerificationPhrasing(query),
		HasAmbiguousReference:  HasAmbiguousReference(query),
		IsWHQuestion:           IsWHQuestion(query),
		IsYesNoQuestion:        IsYesNoQuestion(query),
		IsGenericTruthQuestion: IsGenericTruthQuestion(query),
		NonHistoricalIntent:    NonHistoricalIntent(query),
	}
}

// WordCount counts whitespace-separated tokens
func WordCount(query string) int {
	return len(strings.Fields(query))
}

// CharCount counts runes in the trimmed query
func CharCount(query string) int {
	return utf8.RuneCountInString(strings.TrimSpace(query))
}

// DetectLanguage returns a coarse language code from the script in use
func DetectLanguage(query string) string {
	var hebrew, arabic, cyrillic bool
	for _, r := range query {
		switch {
		case r >= 0x0590 && r <= 0x05FF:
			hebrew = true
		case r >= 0x0600 && r <= 0x06FF:
			arabic = true
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic = true
		}
	}
	switch {
	case hebrew:
		return "he"
	case arabic:
		return "ar"
	case cyrillic:
		return "ru"
	}
	return "en"
}

// HasYearOrEraMarker reports a year ("1945", "300 BC"), a decade ("1960s")
// or an era keyword
func HasYearOrEraMarker(query string) bool {
	q := normalize(query)
	return yearPattern.MatchString(q) || decadePattern.MatchString(q) || eraPattern.MatchString(q)
}

// HasDomainKeyword reports whether a historical keyword occurs as a whole word
func HasDomainKeyword(query string) bool {
	return domainPattern.MatchString(normalize(query))
}

// IsVerificationPhrasing reports explicit requests to check a claim
func IsVerificationPhrasing(query string) bool {
	q := normalize(query)
	for _, p := range verificationPatterns {
		if p.MatchString(q) {
			return true
		}
	}
	return false
}

// IsWHQuestion reports queries opening with an interrogative word
func IsWHQuestion(query string) bool {
	return whPattern.MatchString(normalize(query))
}

// IsYesNoQuestion reports queries opening with an auxiliary verb
func IsYesNoQuestion(query string) bool {
	return yesNoPattern.MatchString(normalize(query))
}

// IsGenericTruthQuestion reports stock questions like "is it true?" that
// carry no claim of their own
func IsGenericTruthQuestion(query string) bool {
	q := strings.TrimRight(normalize(query), "?!. ")
	q = strings.Join(strings.Fields(q), " ")
	for _, g := range genericTruthQuestions {
		if q == g {
			return true
		}
	}
	return false
}

// NonHistoricalIntent returns the first intent bucket whose hints match,
// or "" when the query looks historical
func NonHistoricalIntent(query string) string {
	q := normalize(query)
	for _, b := range intentPatterns {
		if b.pattern.MatchString(q) {
			return b.name
		}
	}
	return ""
}

// HasAmbiguousReference reports a pronoun or pronominal demonstrative with
// no antecedent in the query itself
func HasAmbiguousReference(query string) bool {
	q := normalize(query)
	if q == "" {
		return false
	}
	dangling := personalPronoun.MatchString(q) ||
		finalDemonstr.MatchString(q) ||
		pronominalDemonstr.MatchString(q)
	if !dangling {
		return false
	}
	return !hasAntecedent(query)
}

// hasAntecedent looks for something a pronoun could refer to: a proper noun
// after the first word, a year, or a historical keyword
func hasAntecedent(query string) bool {
	if HasYearOrEraMarker(query) || HasDomainKeyword(query) {
		return true
	}
	for i, tok := range strings.Fields(query) {
		if i == 0 {
			continue
		}
		tok = strings.TrimLeft(tok, "\"'([")
		r, _ := utf8.DecodeRuneInString(tok)
		if r == utf8.RuneError || tok == "I" || strings.HasPrefix(tok, "I'") {
			continue
		}
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
