package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"research-assistant/internal/domain"
	"research-assistant/internal/usecase"
)

// MockRetrieveUsecase
type MockRetrieveUsecase struct {
	mock.Mock
}

func (m *MockRetrieveUsecase) Execute(ctx context.Context, input usecase.RetrieveInput) (*domain.RetrievalResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RetrievalResult), args.Error(1)
}

// MockLLMClient
type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockLLMClient) ModelName() string {
	return "mock-llm"
}

// MockConversationStore
type MockConversationStore struct {
	mock.Mock
}

func (m *MockConversationStore) Append(ctx context.Context, sessionID string, turn domain.ConversationTurn) error {
	args := m.Called(ctx, sessionID, turn)
	return args.Error(0)
}

func (m *MockConversationStore) Read(ctx context.Context, sessionID string, limit int) ([]domain.ConversationTurn, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConversationTurn), args.Error(1)
}

func (m *MockConversationStore) Clear(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func retrievalResult() *domain.RetrievalResult {
	return &domain.RetrievalResult{
		Documents: []string{"excerpt one", "excerpt two"},
		Metadatas: []domain.PaperMetadata{
			{PaperID: "1", Title: "Attention Is All You Need", Authors: "Vaswani et al."},
			{PaperID: "2", Title: "BERT"},
		},
		Strategy:   domain.StrategyBasic,
		SearchType: domain.SearchTypeSemantic,
	}
}

func newAnswerFixture() (*MockRetrieveUsecase, *MockLLMClient, *MockConversationStore, usecase.AnswerUsecase) {
	retrieve := new(MockRetrieveUsecase)
	llm := new(MockLLMClient)
	conversations := new(MockConversationStore)
	uc := usecase.NewAnswerUsecase(
		retrieve,
		usecase.NewResearchPromptBuilder(2000),
		llm,
		conversations,
		testLogger(),
	)
	return retrieve, llm, conversations, uc
}

func TestAnswer_Success(t *testing.T) {
	retrieve, llm, conversations, uc := newAnswerFixture()
	ctx := context.Background()

	retrieve.On("Execute", ctx, usecase.RetrieveInput{
		Question: "what is attention?",
		Strategy: domain.StrategyBasic,
		TopK:     3,
	}).Return(retrievalResult(), nil)
	conversations.On("Read", ctx, "sess-1", 3).Return([]domain.ConversationTurn{}, nil)
	llm.On("Generate", ctx, mock.MatchedBy(func(prompt string) bool {
		return len(prompt) > 0
	})).Return("Attention weighs token interactions.", nil)
	conversations.On("Append", ctx, "sess-1", mock.Anything).Return(nil)

	output, err := uc.Execute(ctx, usecase.AnswerInput{
		Question:  "what is attention?",
		Strategy:  domain.StrategyBasic,
		TopK:      3,
		SessionID: "sess-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "Attention weighs token interactions.", output.Answer)
	assert.Equal(t, []string{
		"Source 1: Attention Is All You Need by Vaswani et al.",
		"Source 2: BERT",
	}, output.Sources)
	assert.Equal(t, []string{"excerpt one", "excerpt two"}, output.Context)
	assert.Equal(t, domain.StrategyBasic, output.Strategy)
	assert.GreaterOrEqual(t, output.ProcessingTime, 0.0)
	conversations.AssertExpectations(t)
}

func TestAnswer_NoDocumentsReturnsFixedMessageWithoutLLM(t *testing.T) {
	retrieve, llm, conversations, uc := newAnswerFixture()
	ctx := context.Background()

	empty := &domain.RetrievalResult{
		Documents:  []string{},
		Metadatas:  []domain.PaperMetadata{},
		Strategy:   domain.StrategyBasic,
		SearchType: domain.SearchTypeSemantic,
	}
	retrieve.On("Execute", ctx, mock.Anything).Return(empty, nil)
	conversations.On("Append", ctx, "sess-1", mock.MatchedBy(func(turn domain.ConversationTurn) bool {
		return turn.Answer == usecase.NoContextAnswer
	})).Return(nil)

	output, err := uc.Execute(ctx, usecase.AnswerInput{
		Question:  "unanswerable",
		Strategy:  domain.StrategyBasic,
		TopK:      3,
		SessionID: "sess-1",
	})

	require.NoError(t, err)
	assert.Equal(t, usecase.NoContextAnswer, output.Answer)
	assert.Empty(t, output.Sources)
	assert.Empty(t, output.Context)
	llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	conversations.AssertExpectations(t)
}

func TestAnswer_HistoryReadFailureIsTolerated(t *testing.T) {
	retrieve, llm, conversations, uc := newAnswerFixture()
	ctx := context.Background()

	retrieve.On("Execute", ctx, mock.Anything).Return(retrievalResult(), nil)
	conversations.On("Read", ctx, "sess-1", 3).Return(nil, errors.New("redis timeout"))
	llm.On("Generate", ctx, mock.Anything).Return("answer", nil)
	conversations.On("Append", ctx, "sess-1", mock.Anything).Return(nil)

	output, err := uc.Execute(ctx, usecase.AnswerInput{
		Question:  "what is attention?",
		Strategy:  domain.StrategyBasic,
		TopK:      3,
		SessionID: "sess-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "answer", output.Answer)
}

func TestAnswer_AppendFailureNeverFailsRequest(t *testing.T) {
	retrieve, llm, conversations, uc := newAnswerFixture()
	ctx := context.Background()

	retrieve.On("Execute", ctx, mock.Anything).Return(retrievalResult(), nil)
	conversations.On("Read", ctx, "sess-1", 3).Return([]domain.ConversationTurn{}, nil)
	llm.On("Generate", ctx, mock.Anything).Return("answer", nil)
	conversations.On("Append", ctx, "sess-1", mock.Anything).Return(errors.New("write failed"))

	output, err := uc.Execute(ctx, usecase.AnswerInput{
		Question:  "what is attention?",
		Strategy:  domain.StrategyBasic,
		TopK:      3,
		SessionID: "sess-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "answer", output.Answer)
}

func TestAnswer_RetrievalFailurePropagates(t *testing.T) {
	retrieve, _, _, uc := newAnswerFixture()
	ctx := context.Background()

	retrieve.On("Execute", ctx, mock.Anything).Return(nil, errors.New("store down"))

	_, err := uc.Execute(ctx, usecase.AnswerInput{
		Question:  "what is attention?",
		Strategy:  domain.StrategyBasic,
		TopK:      3,
		SessionID: "sess-1",
	})

	assert.Error(t, err)
}

func TestAnswer_EmptyQuestionFails(t *testing.T) {
	_, _, _, uc := newAnswerFixture()

	_, err := uc.Execute(context.Background(), usecase.AnswerInput{
		Question:  "",
		Strategy:  domain.StrategyBasic,
		TopK:      3,
		SessionID: "sess-1",
	})

	assert.Error(t, err)
}
