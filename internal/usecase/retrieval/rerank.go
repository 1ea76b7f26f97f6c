package retrieval

import (
	"sort"
	"strings"

	"research-assistant/internal/domain"
)

// RerankByOverlap reorders candidates by a keyword-overlap score: for
// each candidate, the number of whitespace-delimited lowercase question
// tokens that appear as substrings of the lowercased document text.
// The sort is stable so ties keep the vector store's relevance order,
// and each document moves together with its metadata.
func RerankByOverlap(question string, candidates []domain.SearchResult) []domain.SearchResult {
	tokens := strings.Fields(strings.ToLower(question))

	scores := make([]int, len(candidates))
	for i, c := range candidates {
		scores[i] = overlapScore(tokens, c.Document)
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	reranked := make([]domain.SearchResult, len(candidates))
	for pos, idx := range order {
		reranked[pos] = candidates[idx]
	}
	return reranked
}

func overlapScore(questionTokens []string, document string) int {
	lowerDoc := strings.ToLower(document)
	score := 0
	for _, tok := range questionTokens {
		if strings.Contains(lowerDoc, tok) {
			score++
		}
	}
	return score
}
