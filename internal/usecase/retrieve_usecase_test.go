package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"research-assistant/internal/domain"
	"research-assistant/internal/usecase"
)

// MockVectorStore
type MockVectorStore struct {
	mock.Mock
}

func (m *MockVectorStore) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	args := m.Called(ctx, query, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}

func (m *MockVectorStore) SearchFiltered(ctx context.Context, query string, keywords []string, topK int) ([]domain.SearchResult, error) {
	args := m.Called(ctx, query, keywords, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}

func (m *MockVectorStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func hits(ids ...string) []domain.SearchResult {
	results := make([]domain.SearchResult, len(ids))
	for i, id := range ids {
		results[i] = domain.SearchResult{
			Document: "document " + id,
			Metadata: domain.PaperMetadata{PaperID: id, Title: "Paper " + id},
		}
	}
	return results
}

func TestRetrieve_Basic_ReturnsStoreRankingVerbatim(t *testing.T) {
	store := new(MockVectorStore)
	uc := usecase.NewRetrieveUsecase(store, testLogger())
	ctx := context.Background()

	store.On("Search", ctx, "transformer attention", 3).Return(hits("a", "b"), nil)

	result, err := uc.Execute(ctx, usecase.RetrieveInput{
		Question: "transformer attention",
		Strategy: domain.StrategyBasic,
		TopK:     3,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"document a", "document b"}, result.Documents)
	assert.Equal(t, domain.SearchTypeSemantic, result.SearchType)
	assert.Len(t, result.Metadatas, len(result.Documents))
	store.AssertExpectations(t)
}

func TestRetrieve_Hierarchical_BroadThenRerankThenTruncate(t *testing.T) {
	store := new(MockVectorStore)
	uc := usecase.NewRetrieveUsecase(store, testLogger())
	ctx := context.Background()

	broad := []domain.SearchResult{
		{Document: "nothing relevant here", Metadata: domain.PaperMetadata{PaperID: "a"}},
		{Document: "quantum computing with qubits", Metadata: domain.PaperMetadata{PaperID: "b"}},
		{Document: "quantum error rates in computing hardware", Metadata: domain.PaperMetadata{PaperID: "c"}},
	}
	// The broad stage always asks for HierarchicalBroadTopK candidates.
	store.On("Search", ctx, "quantum computing error", usecase.HierarchicalBroadTopK).Return(broad, nil)

	result, err := uc.Execute(ctx, usecase.RetrieveInput{
		Question: "quantum computing error",
		Strategy: domain.StrategyHierarchical,
		TopK:     2,
	})

	require.NoError(t, err)
	require.Len(t, result.Documents, 2)
	// c matches all three tokens, b two, a none.
	assert.Equal(t, "c", result.Metadatas[0].PaperID)
	assert.Equal(t, "b", result.Metadatas[1].PaperID)
	assert.Equal(t, domain.SearchTypeTwoStage, result.SearchType)
	store.AssertExpectations(t)
}

func TestRetrieve_Hierarchical_EmptyBroadStage(t *testing.T) {
	store := new(MockVectorStore)
	uc := usecase.NewRetrieveUsecase(store, testLogger())
	ctx := context.Background()

	store.On("Search", ctx, "obscure topic", usecase.HierarchicalBroadTopK).Return([]domain.SearchResult{}, nil)

	result, err := uc.Execute(ctx, usecase.RetrieveInput{
		Question: "obscure topic",
		Strategy: domain.StrategyHierarchical,
		TopK:     3,
	})

	require.NoError(t, err)
	assert.Empty(t, result.Documents)
	assert.Equal(t, domain.SearchTypeTwoStage, result.SearchType)
}

func TestRetrieve_Hybrid_MergesSemanticAndKeywordHits(t *testing.T) {
	store := new(MockVectorStore)
	uc := usecase.NewRetrieveUsecase(store, testLogger())
	ctx := context.Background()

	store.On("Search", ctx, "graphene conductivity research", 3).Return(hits("a", "b"), nil)
	store.On("SearchFiltered", ctx, "graphene conductivity research",
		[]string{"graphene", "conductivity", "research"}, 3).
		Return(hits("b", "c"), nil)

	result, err := uc.Execute(ctx, usecase.RetrieveInput{
		Question: "graphene conductivity research",
		Strategy: domain.StrategyHybrid,
		TopK:     3,
	})

	require.NoError(t, err)
	// b appears in both lists and is kept once, semantic ranking first.
	assert.Equal(t, []string{"document a", "document b", "document c"}, result.Documents)
	assert.Equal(t, domain.SearchTypeSemanticKeyword, result.SearchType)
	store.AssertExpectations(t)
}

func TestRetrieve_Hybrid_NoKeywordsDegradesToSemanticOnly(t *testing.T) {
	store := new(MockVectorStore)
	uc := usecase.NewRetrieveUsecase(store, testLogger())
	ctx := context.Background()

	// Every token is a stopword or too short.
	store.On("Search", ctx, "what is it", 3).Return(hits("a"), nil)

	result, err := uc.Execute(ctx, usecase.RetrieveInput{
		Question: "what is it",
		Strategy: domain.StrategyHybrid,
		TopK:     3,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.SearchTypeSemanticOnly, result.SearchType)
	assert.Equal(t, []string{"document a"}, result.Documents)
	store.AssertNotCalled(t, "SearchFiltered", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRetrieve_Hybrid_KeywordFailureDegradesToSemanticHits(t *testing.T) {
	store := new(MockVectorStore)
	uc := usecase.NewRetrieveUsecase(store, testLogger())
	ctx := context.Background()

	store.On("Search", ctx, "dark matter detection", 3).Return(hits("a", "b"), nil)
	store.On("SearchFiltered", ctx, "dark matter detection",
		[]string{"dark", "matter", "detection"}, 3).
		Return(nil, errors.New("filter query failed"))

	result, err := uc.Execute(ctx, usecase.RetrieveInput{
		Question: "dark matter detection",
		Strategy: domain.StrategyHybrid,
		TopK:     3,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"document a", "document b"}, result.Documents)
	assert.Equal(t, domain.SearchTypeSemanticKeyword, result.SearchType)
}

func TestRetrieve_Hybrid_SemanticFailureFailsRequest(t *testing.T) {
	store := new(MockVectorStore)
	uc := usecase.NewRetrieveUsecase(store, testLogger())
	ctx := context.Background()

	store.On("Search", ctx, "dark matter detection", 3).Return(nil, errors.New("db down"))

	_, err := uc.Execute(ctx, usecase.RetrieveInput{
		Question: "dark matter detection",
		Strategy: domain.StrategyHybrid,
		TopK:     3,
	})

	assert.Error(t, err)
}

func TestRetrieve_Adaptive_ComplexQuestionWidensBroadStage(t *testing.T) {
	store := new(MockVectorStore)
	uc := usecase.NewRetrieveUsecase(store, testLogger())
	ctx := context.Background()

	question := "Why do neural networks generalize?"
	store.On("Search", ctx, question, usecase.AdaptiveBroadTopK).Return(hits("a", "b", "c"), nil)

	result, err := uc.Execute(ctx, usecase.RetrieveInput{
		Question: question,
		Strategy: domain.StrategyAdaptive,
		TopK:     2,
	})

	require.NoError(t, err)
	assert.Len(t, result.Documents, 2)
	assert.Equal(t, domain.SearchTypeTwoStage, result.SearchType)
	store.AssertExpectations(t)
}

func TestRetrieve_Adaptive_SimpleQuestionTakesBasicPath(t *testing.T) {
	store := new(MockVectorStore)
	uc := usecase.NewRetrieveUsecase(store, testLogger())
	ctx := context.Background()

	question := "List recent transformer papers"
	store.On("Search", ctx, question, 3).Return(hits("a"), nil)

	result, err := uc.Execute(ctx, usecase.RetrieveInput{
		Question: question,
		Strategy: domain.StrategyAdaptive,
		TopK:     3,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.SearchTypeSemantic, result.SearchType)
	store.AssertExpectations(t)
}

func TestRetrieve_Adaptive_MediumQuestionTakesHybridPath(t *testing.T) {
	store := new(MockVectorStore)
	uc := usecase.NewRetrieveUsecase(store, testLogger())
	ctx := context.Background()

	question := "What drives protein folding?"
	store.On("Search", ctx, question, 3).Return(hits("a"), nil)
	store.On("SearchFiltered", ctx, "drives protein folding?", []string{"drives", "protein", "folding?"}, 3).
		Return(hits("b"), nil)

	result, err := uc.Execute(ctx, usecase.RetrieveInput{
		Question: question,
		Strategy: domain.StrategyAdaptive,
		TopK:     3,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.SearchTypeSemanticKeyword, result.SearchType)
	store.AssertExpectations(t)
}

func TestRetrieve_UnknownStrategyFails(t *testing.T) {
	store := new(MockVectorStore)
	uc := usecase.NewRetrieveUsecase(store, testLogger())

	_, err := uc.Execute(context.Background(), usecase.RetrieveInput{
		Question: "anything",
		Strategy: domain.Strategy("semantic"),
		TopK:     3,
	})

	assert.ErrorIs(t, err, domain.ErrUnknownStrategy)
	store.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestRetrieve_EmptyQuestionFails(t *testing.T) {
	store := new(MockVectorStore)
	uc := usecase.NewRetrieveUsecase(store, testLogger())

	_, err := uc.Execute(context.Background(), usecase.RetrieveInput{
		Question: "   ",
		Strategy: domain.StrategyBasic,
		TopK:     3,
	})

	assert.Error(t, err)
}
