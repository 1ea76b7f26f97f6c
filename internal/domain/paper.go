package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Paper is a stored arXiv paper. Content is the searchable text blob
// (title, authors, categories and abstract concatenated); rows are
// immutable once inserted.
type Paper struct {
	ID         uuid.UUID
	PaperID    string
	Title      string
	Authors    string
	Categories string
	Year       int
	Abstract   string
	Content    string
	Embedding  pgvector.Vector
	CreatedAt  time.Time
}

// PaperMetadata is the metadata attached to each retrieved document.
type PaperMetadata struct {
	PaperID    string `json:"paper_id"`
	Title      string `json:"title"`
	Authors    string `json:"authors"`
	Categories string `json:"categories"`
	Year       int    `json:"year"`
}

// SearchResult is a single hit from the vector store, ordered by
// similarity (index 0 most relevant).
type SearchResult struct {
	Document string
	Metadata PaperMetadata
	Score    float32
}

// PaperRepository persists papers and runs nearest-neighbor searches
// over their embeddings.
type PaperRepository interface {
	// BulkInsert stores a batch of papers with their embeddings.
	BulkInsert(ctx context.Context, papers []Paper) error

	// SearchByEmbedding returns the topK nearest papers by cosine distance.
	SearchByEmbedding(ctx context.Context, queryVector []float32, topK int) ([]SearchResult, error)

	// SearchByEmbeddingFiltered restricts the search to papers whose title
	// or abstract matches any of the given keywords.
	SearchByEmbeddingFiltered(ctx context.Context, queryVector []float32, keywords []string, topK int) ([]SearchResult, error)

	// Count reports the number of stored papers.
	Count(ctx context.Context) (int64, error)
}

// VectorStore answers free-text queries with ranked documents. Safe for
// concurrent use by independent callers.
type VectorStore interface {
	Search(ctx context.Context, query string, topK int) ([]SearchResult, error)
	SearchFiltered(ctx context.Context, query string, keywords []string, topK int) ([]SearchResult, error)
	Count(ctx context.Context) (int64, error)
}
