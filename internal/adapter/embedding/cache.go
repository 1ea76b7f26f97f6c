package embedding

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"research-assistant/internal/domain"
)

const (
	cacheSize = 1024
	cacheTTL  = time.Hour
)

// CachedEmbedder memoizes single-text encodings with a TTL so repeated
// queries skip the upstream embedding call. Batch encodes pass through
// untouched; only the one-query path on the serving side benefits.
type CachedEmbedder struct {
	inner domain.Embedder
	cache *expirable.LRU[string, []float32]
}

// NewCachedEmbedder wraps an embedder with an expiring LRU cache.
func NewCachedEmbedder(inner domain.Embedder) *CachedEmbedder {
	return &CachedEmbedder{
		inner: inner,
		cache: expirable.NewLRU[string, []float32](cacheSize, nil, cacheTTL),
	}
}

func (e *CachedEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) != 1 {
		return e.inner.Encode(ctx, texts)
	}

	if vec, ok := e.cache.Get(texts[0]); ok {
		return [][]float32{vec}, nil
	}

	vecs, err := e.inner.Encode(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) == 1 {
		e.cache.Add(texts[0], vecs[0])
	}
	return vecs, nil
}

func (e *CachedEmbedder) Version() string {
	return e.inner.Version()
}

var _ domain.Embedder = (*CachedEmbedder)(nil)
