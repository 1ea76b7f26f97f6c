package retrieval

import "strings"

// Keyword extraction thresholds. Named so tests can target them directly.
const (
	// MinKeywordLength drops tokens of this length or shorter.
	MinKeywordLength = 3
	// MaxKeywords caps how many tokens survive, in original order.
	MaxKeywords = 5
)

// Stopwords are question tokens that never count as keywords.
var Stopwords = map[string]struct{}{
	"what": {}, "is": {}, "the": {}, "a": {}, "an": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
}

// ExtractKeywords lowercases the question, splits on whitespace and keeps
// at most MaxKeywords tokens that are longer than MinKeywordLength and
// not stopwords. Returns nil when nothing survives.
func ExtractKeywords(question string) []string {
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(question)) {
		if len(word) <= MinKeywordLength {
			continue
		}
		if _, stop := Stopwords[word]; stop {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == MaxKeywords {
			break
		}
	}
	return keywords
}
