package retrieval

import "strings"

// Complexity classifies a question for adaptive routing.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// Trigger words for the classifier. Matching is substring-based against
// the lowercased question; complex triggers win over medium ones.
//
// The labels are historical and inverted from intuition: questions with
// no trigger at all classify as "simple" even though they are the common
// case, and "medium" questions route to hybrid while only "complex" ones
// take the broad hierarchical path. Kept as-is so routing stays
// reproducible.
var (
	ComplexTriggers = []string{"how", "why", "compare", "difference", "advantages", "disadvantages"}
	MediumTriggers  = []string{"what", "who", "when", "where"}
)

// Classify assesses question complexity from its trigger words.
func Classify(question string) Complexity {
	lower := strings.ToLower(question)
	for _, t := range ComplexTriggers {
		if strings.Contains(lower, t) {
			return ComplexityComplex
		}
	}
	for _, t := range MediumTriggers {
		if strings.Contains(lower, t) {
			return ComplexityMedium
		}
	}
	return ComplexitySimple
}
