package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/factcheck/internal/model"
)

const (
	claimsSystem = "You decompose questions about history into atomic, independently checkable factual claims. Reply with JSON only."
	pairSystem   = "You judge whether a single evidence snippet supports a historical claim. Use only the snippet. Reply with JSON only."
	answerSystem = "You are a careful historical fact-checker who answers only from the evidence provided and cites it by id."
)

// promptSnippetLimit bounds each snippet in prompts to keep token use flat
const promptSnippetLimit = 600

// BuildClaimsPrompt asks for up to maxClaims claims in query
func BuildClaimsPrompt(query string, maxClaims int) string {
	return fmt.Sprintf(`Break the QUESTION into between 1 and %d atomic factual claims that can each be checked against a source.
Rephrase questions as declarative statements. Do not add facts that are not in the question.

Return JSON: {"claims": ["claim 1", "claim 2"]}

QUESTION: %s`, maxClaims, strings.TrimSpace(query))
}

// BuildPairPrompt asks for the verdict of one evidence item on one claim
func BuildPairPrompt(claim string, item model.EvidenceItem) string {
	return fmt.Sprintf(`Decide how the SNIPPET relates to the CLAIM.

- "supported": the snippet states or clearly implies the claim is correct
- "not_supported": the snippet contradicts the claim
- "irrelevant": the snippet does not address the claim

CLAIM: %s
SOURCE: %s (%s)
SNIPPET: %s
SOURCE_CREDIBILITY: %.2f

Return JSON: {"verdict": "supported|not_supported|irrelevant", "confidence": 0.0-1.0, "reasoning": "one short sentence"}`,
		strings.TrimSpace(claim), item.Title, item.SourceDomain,
		truncate(item.Snippet, promptSnippetLimit), item.CredibilityWeight)
}

// BuildAnswerPrompt builds the strict-evidence answer prompt. The model may
// cite only ids present in the bundle.
func BuildAnswerPrompt(query string, bundle *model.EvidenceBundle) string {
	var b strings.Builder

	b.WriteString(`Answer the QUESTION using only the EVIDENCE below.

CRITICAL RULES:
1. Cite evidence inline with its id in square brackets, e.g. [E1]. Cite every factual statement.
2. You MUST ONLY cite ids from the EVIDENCE list. Never invent ids or URLs.
3. If the evidence is insufficient or conflicting, say so explicitly.
4. Keep the answer to 2-5 sentences.

`)
	fmt.Fprintf(&b, "QUESTION: %s\n\nEVIDENCE:\n", strings.TrimSpace(query))

	if bundle == nil || len(bundle.Items) == 0 {
		b.WriteString("(no evidence)\n")
	} else {
		for _, it := range bundle.Items {
			fmt.Fprintf(&b, "[%s] %s (%s): %s\n", it.ID, it.Title, it.SourceDomain, truncate(it.Snippet, promptSnippetLimit))
		}

		if len(bundle.Findings) > 0 {
			b.WriteString("\nFINDINGS:\n")
			for _, f := range bundle.Findings {
				fmt.Fprintf(&b, "- %q: %s", f.Claim, f.Verdict)
				if len(f.EvidenceIDs) > 0 {
					fmt.Fprintf(&b, " (%s)", strings.Join(f.EvidenceIDs, ", "))
				}
				b.WriteString("\n")
			}
		}
		fmt.Fprintf(&b, "\nOVERALL VERDICT: %s\n", bundle.OverallVerdict)
	}

	b.WriteString(`
Return JSON: {"answer": "text with [E#] citations", "confidence": 0.0-1.0, "evidence_ids": ["E1"], "limitations": "what the evidence does not cover"}`)

	return b.String()
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
