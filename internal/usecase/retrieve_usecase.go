package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"research-assistant/internal/domain"
	"research-assistant/internal/usecase/retrieval"
)

// Broad candidate widths for the two-stage hierarchical path. Adaptive
// widens the first stage for complex questions.
const (
	HierarchicalBroadTopK = 10
	AdaptiveBroadTopK     = 15
)

// RetrieveInput carries one retrieval request.
type RetrieveInput struct {
	Question string
	Strategy domain.Strategy
	TopK     int
}

// RetrieveUsecase dispatches a question to one of the four retrieval
// strategies and returns a ranked document/metadata result set.
type RetrieveUsecase interface {
	Execute(ctx context.Context, input RetrieveInput) (*domain.RetrievalResult, error)
}

type retrieveUsecase struct {
	store  domain.VectorStore
	logger *slog.Logger
}

// NewRetrieveUsecase creates a RetrieveUsecase backed by the given store.
func NewRetrieveUsecase(store domain.VectorStore, logger *slog.Logger) RetrieveUsecase {
	return &retrieveUsecase{store: store, logger: logger}
}

func (u *retrieveUsecase) Execute(ctx context.Context, input RetrieveInput) (*domain.RetrievalResult, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, fmt.Errorf("question is empty")
	}

	u.logger.Info("executing_retrieval",
		slog.String("strategy", input.Strategy.String()),
		slog.String("question", input.Question),
		slog.Int("top_k", input.TopK))

	switch input.Strategy {
	case domain.StrategyBasic:
		return u.basic(ctx, input.Question, input.TopK)
	case domain.StrategyHierarchical:
		return u.hierarchical(ctx, input.Question, HierarchicalBroadTopK, input.TopK)
	case domain.StrategyHybrid:
		return u.hybrid(ctx, input.Question, input.TopK)
	case domain.StrategyAdaptive:
		return u.adaptive(ctx, input.Question, input.TopK)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, input.Strategy)
	}
}

// basic delegates to the vector store and returns its ranking verbatim.
func (u *retrieveUsecase) basic(ctx context.Context, question string, topK int) (*domain.RetrievalResult, error) {
	hits, err := u.store.Search(ctx, question, topK)
	if err != nil {
		return nil, fmt.Errorf("semantic search failed: %w", err)
	}
	result := domain.FromSearchResults(hits, domain.StrategyBasic, domain.SearchTypeSemantic)
	return &result, nil
}

// hierarchical retrieves a broad candidate set, reranks it by keyword
// overlap with the question and truncates to finalTopK.
func (u *retrieveUsecase) hierarchical(ctx context.Context, question string, broadTopK, finalTopK int) (*domain.RetrievalResult, error) {
	broad, err := u.store.Search(ctx, question, broadTopK)
	if err != nil {
		return nil, fmt.Errorf("broad search failed: %w", err)
	}
	if len(broad) == 0 {
		result := domain.FromSearchResults(nil, domain.StrategyHierarchical, domain.SearchTypeTwoStage)
		return &result, nil
	}

	reranked := retrieval.RerankByOverlap(question, broad)
	if len(reranked) > finalTopK {
		reranked = reranked[:finalTopK]
	}

	u.logger.Info("hierarchical_rerank_completed",
		slog.Int("broad_count", len(broad)),
		slog.Int("final_count", len(reranked)))

	result := domain.FromSearchResults(reranked, domain.StrategyHierarchical, domain.SearchTypeTwoStage)
	return &result, nil
}

// hybrid runs semantic retrieval alongside a keyword-filtered lookup and
// merges the two rankings. Without usable keywords it degrades to
// semantic-only; a failed keyword lookup degrades to an empty keyword set
// rather than failing the request.
func (u *retrieveUsecase) hybrid(ctx context.Context, question string, topK int) (*domain.RetrievalResult, error) {
	semantic, err := u.store.Search(ctx, question, topK)
	if err != nil {
		return nil, fmt.Errorf("semantic search failed: %w", err)
	}

	keywords := retrieval.ExtractKeywords(question)
	if len(keywords) == 0 {
		result := domain.FromSearchResults(semantic, domain.StrategyHybrid, domain.SearchTypeSemanticOnly)
		return &result, nil
	}

	keywordHits, err := u.store.SearchFiltered(ctx, strings.Join(keywords, " "), keywords, topK)
	if err != nil {
		u.logger.Warn("keyword_search_failed",
			slog.Any("keywords", keywords),
			slog.String("error", err.Error()))
		keywordHits = nil
	}

	merged := retrieval.Merge(semantic, keywordHits)
	result := domain.FromSearchResults(merged, domain.StrategyHybrid, domain.SearchTypeSemanticKeyword)
	return &result, nil
}

// adaptive routes by question complexity: simple questions take the basic
// path, medium ones hybrid, complex ones the broad hierarchical path.
func (u *retrieveUsecase) adaptive(ctx context.Context, question string, topK int) (*domain.RetrievalResult, error) {
	complexity := retrieval.Classify(question)
	u.logger.Info("adaptive_complexity_assessed",
		slog.String("complexity", string(complexity)))

	switch complexity {
	case retrieval.ComplexitySimple:
		return u.basic(ctx, question, topK)
	case retrieval.ComplexityMedium:
		return u.hybrid(ctx, question, topK)
	default:
		return u.hierarchical(ctx, question, AdaptiveBroadTopK, topK)
	}
}

var _ RetrieveUsecase = (*retrieveUsecase)(nil)
