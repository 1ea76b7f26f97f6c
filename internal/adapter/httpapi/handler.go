package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"research-assistant/internal/domain"
	"research-assistant/internal/usecase"
)

// Bounds on the per-request result width.
const (
	MinTopK = 1
	MaxTopK = 10
)

// DefaultSessionID groups requests that carry no session of their own.
const DefaultSessionID = "default"

// Handler exposes the assistant over HTTP.
type Handler struct {
	answer         usecase.AnswerUsecase
	conversations  domain.ConversationStore
	store          domain.VectorStore
	llmModel       string
	embeddingModel string
	topKDefault    int
	metrics        *Metrics
	logger         *slog.Logger
}

// NewHandler creates the HTTP handler for the query and session endpoints.
func NewHandler(
	answer usecase.AnswerUsecase,
	conversations domain.ConversationStore,
	store domain.VectorStore,
	llmModel, embeddingModel string,
	topKDefault int,
	metrics *Metrics,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		answer:         answer,
		conversations:  conversations,
		store:          store,
		llmModel:       llmModel,
		embeddingModel: embeddingModel,
		topKDefault:    topKDefault,
		metrics:        metrics,
		logger:         logger,
	}
}

// Register mounts all routes on the given echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)
	e.GET("/metrics", h.GetMetrics)
	e.GET("/strategies", h.ListStrategies)
	e.GET("/stats", h.Stats)
	e.POST("/query", h.Query)
	e.GET("/conversation/:session_id", h.GetConversation)
	e.DELETE("/conversation/:session_id", h.ClearConversation)
}

// QueryRequest is the body of POST /query. TopK is a pointer so an
// explicit out-of-range zero is rejected instead of treated as absent.
type QueryRequest struct {
	Question  string `json:"question"`
	Strategy  string `json:"strategy"`
	TopK      *int   `json:"top_k"`
	SessionID string `json:"session_id"`
}

// QueryResponse is the body returned by POST /query.
type QueryResponse struct {
	Answer         string   `json:"answer"`
	Sources        []string `json:"sources"`
	Context        []string `json:"context"`
	Strategy       string   `json:"strategy"`
	ProcessingTime float64  `json:"processing_time"`
}

// Query answers one question with retrieved paper context.
func (h *Handler) Query(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	strategy, err := domain.ParseStrategy(req.Strategy)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	topK := h.topKDefault
	if req.TopK != nil {
		topK = *req.TopK
	}
	if topK < MinTopK || topK > MaxTopK {
		return echo.NewHTTPError(http.StatusBadRequest,
			"top_k must be between "+strconv.Itoa(MinTopK)+" and "+strconv.Itoa(MaxTopK))
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	output, err := h.answer.Execute(c.Request().Context(), usecase.AnswerInput{
		Question:  question,
		Strategy:  strategy,
		TopK:      topK,
		SessionID: sessionID,
	})
	if err != nil {
		h.logger.Error("query_failed",
			slog.String("strategy", strategy.String()),
			slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to process query")
	}

	return c.JSON(http.StatusOK, QueryResponse{
		Answer:         output.Answer,
		Sources:        output.Sources,
		Context:        output.Context,
		Strategy:       output.Strategy.String(),
		ProcessingTime: output.ProcessingTime,
	})
}

// ConversationResponse is the body returned by GET /conversation/:session_id.
type ConversationResponse struct {
	SessionID string                    `json:"session_id"`
	History   []domain.ConversationTurn `json:"history"`
	Count     int                       `json:"count"`
}

// GetConversation returns a session's recent turns, most recent first.
func (h *Handler) GetConversation(c echo.Context) error {
	sessionID := c.Param("session_id")

	limit := domain.MaxTurnsPerSession
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	history, err := h.conversations.Read(c.Request().Context(), sessionID, limit)
	if err != nil {
		h.logger.Error("conversation_read_failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read conversation")
	}

	return c.JSON(http.StatusOK, ConversationResponse{
		SessionID: sessionID,
		History:   history,
		Count:     len(history),
	})
}

// ClearConversation deletes a session's history. Clearing a session that
// does not exist succeeds.
func (h *Handler) ClearConversation(c echo.Context) error {
	sessionID := c.Param("session_id")

	if err := h.conversations.Clear(c.Request().Context(), sessionID); err != nil {
		h.logger.Error("conversation_clear_failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to clear conversation")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "conversation cleared for session " + sessionID,
	})
}

var strategyDescriptions = map[domain.Strategy]string{
	domain.StrategyBasic:        "Single-pass semantic similarity search",
	domain.StrategyHierarchical: "Broad retrieval followed by keyword-overlap reranking",
	domain.StrategyHybrid:       "Semantic search merged with keyword-filtered lookup",
	domain.StrategyAdaptive:     "Routes to another strategy based on question complexity",
}

// ListStrategies enumerates the retrieval strategies clients may request.
func (h *Handler) ListStrategies(c echo.Context) error {
	available := make(map[string]string, len(strategyDescriptions))
	for _, s := range domain.Strategies() {
		available[s.String()] = strategyDescriptions[s]
	}
	return c.JSON(http.StatusOK, map[string]any{
		"available_strategies": available,
		"default_strategy":     domain.DefaultStrategy.String(),
	})
}

// Stats reports corpus size and the models in use.
func (h *Handler) Stats(c echo.Context) error {
	count, err := h.store.Count(c.Request().Context())
	if err != nil {
		h.logger.Error("stats_count_failed", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read document count")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"total_documents": count,
		"embedding_model": h.embeddingModel,
		"llm_model":       h.llmModel,
	})
}

// GetMetrics reports request counters and rolling latency.
func (h *Handler) GetMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, h.metrics.Snapshot())
}

// Health is the liveness probe.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "research-assistant",
	})
}

// Root describes the service.
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service":     "research-assistant",
		"description": "RAG-based research assistant over arXiv papers",
		"version":     "1.0.0",
	})
}
