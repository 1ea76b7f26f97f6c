package retrieval

import "research-assistant/internal/domain"

// Merge combines semantic and keyword hits, deduplicating on document
// text. The semantic list is walked first so its ranking wins; keyword
// hits fill in afterwards up to the combined input length.
func Merge(semantic, keyword []domain.SearchResult) []domain.SearchResult {
	maxLen := len(semantic) + len(keyword)
	seen := make(map[string]struct{}, maxLen)
	merged := make([]domain.SearchResult, 0, maxLen)

	for _, res := range semantic {
		if _, dup := seen[res.Document]; dup {
			continue
		}
		seen[res.Document] = struct{}{}
		merged = append(merged, res)
	}
	for _, res := range keyword {
		if len(merged) >= maxLen {
			break
		}
		if _, dup := seen[res.Document]; dup {
			continue
		}
		seen[res.Document] = struct{}{}
		merged = append(merged, res)
	}
	return merged
}
