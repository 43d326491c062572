package services

import (
	"strings"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
)

// defaultSuperlatives is the denylist of subjective marketing terms.
var defaultSuperlatives = []string{"best", "amazing", "incredible", "perfect"}

// defaultMaxWords bounds response length for the conciseness rule.
const defaultMaxWords = 200

// ResponseValidator checks generated text against declarative content
// rules. Each rule is independent and non-blocking: the validator only
// reports compliance, it never modifies or rejects a response.
// Enforcement is the caller's decision - deterministic rejection of
// free text risks false positives.
type ResponseValidator struct {
	maxWords int
	denylist []string
}

// NewResponseValidator creates a validator with the given word ceiling
// and superlative denylist; zero values select the defaults.
func NewResponseValidator(maxWords int, denylist []string) *ResponseValidator {
	if maxWords <= 0 {
		maxWords = defaultMaxWords
	}
	if len(denylist) == 0 {
		denylist = defaultSuperlatives
	}
	lowered := make([]string, len(denylist))
	for i, w := range denylist {
		lowered[i] = strings.ToLower(w)
	}
	return &ResponseValidator{maxWords: maxWords, denylist: lowered}
}

// Validate produces the compliance report for one response.
func (v *ResponseValidator) Validate(response string) domain.ValidationReport {
	words := strings.Fields(response)

	return domain.ValidationReport{
		domain.RuleIncludesPrice:  strings.Contains(response, "$"),
		domain.RuleConcise:        len(words) < v.maxWords,
		domain.RuleNoSuperlatives: !v.containsSuperlative(words),
	}
}

// containsSuperlative matches denylisted terms as whole words, with
// surrounding punctuation stripped, so "best" flags but "bestow" does not.
func (v *ResponseValidator) containsSuperlative(words []string) bool {
	for _, w := range words {
		w = strings.ToLower(strings.Trim(w, ".,!?;:\"'()[]"))
		for _, banned := range v.denylist {
			if w == banned {
				return true
			}
		}
	}
	return false
}
