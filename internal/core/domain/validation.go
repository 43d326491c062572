package domain

// ValidationReport maps a content-rule name to its outcome for one
// generated response. It is produced for observability only; no rule
// failure blocks or rewrites the response.
type ValidationReport map[string]bool

// Rule names reported by the response validator.
const (
	RuleIncludesPrice  = "includes_price"
	RuleConcise        = "concise"
	RuleNoSuperlatives = "no_superlatives"
)

// Passed reports whether every rule held.
func (r ValidationReport) Passed() bool {
	for _, ok := range r {
		if !ok {
			return false
		}
	}
	return true
}

// Failed returns the names of rules that did not hold, in no
// particular order.
func (r ValidationReport) Failed() []string {
	var names []string
	for name, ok := range r {
		if !ok {
			names = append(names, name)
		}
	}
	return names
}
