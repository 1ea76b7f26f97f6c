package domain

// SearchType labels how a RetrievalResult was produced.
type SearchType string

const (
	SearchTypeSemantic        SearchType = "semantic"
	SearchTypeTwoStage        SearchType = "two_stage"
	SearchTypeSemanticKeyword SearchType = "semantic_keyword"
	SearchTypeSemanticOnly    SearchType = "semantic_only"
)

// RetrievalResult is the ranked output of one retrieval run. Documents
// and Metadatas always have equal length and correspond by index;
// index 0 is the most relevant. Constructed fresh per query, never
// persisted.
type RetrievalResult struct {
	Documents  []string
	Metadatas  []PaperMetadata
	Strategy   Strategy
	SearchType SearchType
}

// FromSearchResults splits ranked hits into the paired document and
// metadata sequences of a RetrievalResult.
func FromSearchResults(results []SearchResult, strategy Strategy, searchType SearchType) RetrievalResult {
	docs := make([]string, len(results))
	metas := make([]PaperMetadata, len(results))
	for i, r := range results {
		docs[i] = r.Document
		metas[i] = r.Metadata
	}
	return RetrievalResult{
		Documents:  docs,
		Metadatas:  metas,
		Strategy:   strategy,
		SearchType: searchType,
	}
}
