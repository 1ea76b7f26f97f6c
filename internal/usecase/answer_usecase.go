package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"research-assistant/internal/domain"
)

// NoContextAnswer is returned when retrieval finds nothing relevant.
const NoContextAnswer = "I couldn't find any relevant research papers in my database to answer your question. Please try rephrasing or asking about a different topic."

// historyTurns is how many prior turns feed back into the prompt.
const historyTurns = 3

// AnswerInput carries one end-to-end question.
type AnswerInput struct {
	Question  string
	Strategy  domain.Strategy
	TopK      int
	SessionID string
}

// AnswerOutput is the synthesized response for one question.
type AnswerOutput struct {
	Answer         string
	Sources        []string
	Context        []string
	Strategy       domain.Strategy
	ProcessingTime float64
}

// AnswerUsecase retrieves context for a question, asks the LLM for an
// answer and records the exchange in the conversation store.
type AnswerUsecase interface {
	Execute(ctx context.Context, input AnswerInput) (*AnswerOutput, error)
}

type answerUsecase struct {
	retrieve      RetrieveUsecase
	promptBuilder PromptBuilder
	llm           domain.LLMClient
	conversations domain.ConversationStore
	logger        *slog.Logger
}

// NewAnswerUsecase wires together the components behind the query endpoint.
func NewAnswerUsecase(
	retrieve RetrieveUsecase,
	promptBuilder PromptBuilder,
	llm domain.LLMClient,
	conversations domain.ConversationStore,
	logger *slog.Logger,
) AnswerUsecase {
	return &answerUsecase{
		retrieve:      retrieve,
		promptBuilder: promptBuilder,
		llm:           llm,
		conversations: conversations,
		logger:        logger,
	}
}

func (u *answerUsecase) Execute(ctx context.Context, input AnswerInput) (*AnswerOutput, error) {
	start := time.Now()

	if strings.TrimSpace(input.Question) == "" {
		return nil, fmt.Errorf("question is required")
	}

	result, err := u.retrieve.Execute(ctx, RetrieveInput{
		Question: input.Question,
		Strategy: input.Strategy,
		TopK:     input.TopK,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	// A turn is recorded even when nothing was retrieved, so the session
	// history reflects every exchange the user saw.
	if len(result.Documents) == 0 {
		output := &AnswerOutput{
			Answer:         NoContextAnswer,
			Sources:        []string{},
			Context:        []string{},
			Strategy:       input.Strategy,
			ProcessingTime: time.Since(start).Seconds(),
		}
		u.recordTurn(ctx, input.SessionID, input.Question, output.Answer, output.Sources)
		return output, nil
	}

	history, err := u.conversations.Read(ctx, input.SessionID, historyTurns)
	if err != nil {
		u.logger.Warn("conversation_read_failed",
			slog.String("session_id", input.SessionID),
			slog.String("error", err.Error()))
		history = nil
	}

	prompt := u.promptBuilder.Build(input.Question, result, history)

	answer, err := u.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("llm generation failed: %w", err)
	}

	sources := FormatSources(result.Metadatas)
	output := &AnswerOutput{
		Answer:         answer,
		Sources:        sources,
		Context:        result.Documents,
		Strategy:       input.Strategy,
		ProcessingTime: time.Since(start).Seconds(),
	}

	u.recordTurn(ctx, input.SessionID, input.Question, answer, sources)

	u.logger.Info("query_answered",
		slog.String("strategy", input.Strategy.String()),
		slog.Int("source_count", len(sources)),
		slog.Duration("elapsed", time.Since(start)))

	return output, nil
}

// recordTurn appends to the session history; storage failures are logged
// and never fail the request.
func (u *answerUsecase) recordTurn(ctx context.Context, sessionID, question, answer string, sources []string) {
	turn := domain.ConversationTurn{
		Timestamp: time.Now(),
		Question:  question,
		Answer:    answer,
		Sources:   sources,
	}
	if err := u.conversations.Append(ctx, sessionID, turn); err != nil {
		u.logger.Error("conversation_append_failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
	}
}

var _ AnswerUsecase = (*answerUsecase)(nil)
