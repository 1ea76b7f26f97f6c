package vectorstore

import (
	"context"
	"fmt"

	"research-assistant/internal/domain"
)

// PGVectorStore answers free-text queries by embedding them and running
// nearest-neighbor search through the paper repository.
type PGVectorStore struct {
	embedder domain.Embedder
	papers   domain.PaperRepository
}

// NewPGVectorStore composes an embedder and a paper repository into a
// VectorStore.
func NewPGVectorStore(embedder domain.Embedder, papers domain.PaperRepository) *PGVectorStore {
	return &PGVectorStore{embedder: embedder, papers: papers}
}

func (s *PGVectorStore) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	vec, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.papers.SearchByEmbedding(ctx, vec, topK)
}

func (s *PGVectorStore) SearchFiltered(ctx context.Context, query string, keywords []string, topK int) ([]domain.SearchResult, error) {
	vec, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.papers.SearchByEmbeddingFiltered(ctx, vec, keywords, topK)
}

func (s *PGVectorStore) Count(ctx context.Context) (int64, error) {
	return s.papers.Count(ctx)
}

func (s *PGVectorStore) embedQuery(ctx context.Context, query string) ([]float32, error) {
	vecs, err := s.embedder.Encode(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vecs))
	}
	return vecs[0], nil
}

var _ domain.VectorStore = (*PGVectorStore)(nil)
