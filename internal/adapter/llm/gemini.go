package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"research-assistant/internal/domain"
	"research-assistant/internal/infra/config"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Degraded responses. Generation never fails a request: after retries
// the caller gets a fixed user-visible message instead of an error.
const (
	UnavailableAnswer   = "Sorry, I'm experiencing technical difficulties. Please try again later."
	EmptyResponseAnswer = "I couldn't generate a response for this question. Please try again."
)

const (
	maxAttempts = 3
	temperature = 0.1
)

// GeminiClient calls the Gemini generateContent REST endpoint.
type GeminiClient struct {
	BaseURL        string
	Model          string
	RetryDelay     time.Duration
	apiKey         string
	safetySettings []config.SafetySetting
	client         *http.Client
	logger         *slog.Logger
}

// NewGeminiClient constructs a client for the given model. The API key is
// required; moderation thresholds are forwarded on every request.
func NewGeminiClient(apiKey, model string, safetySettings []config.SafetySetting, logger *slog.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	return &GeminiClient{
		BaseURL:        defaultBaseURL,
		Model:          model,
		RetryDelay:     2 * time.Second,
		apiKey:         apiKey,
		safetySettings: safetySettings,
		client:         &http.Client{Timeout: 60 * time.Second},
		logger:         logger,
	}, nil
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	SafetySettings   []safetySetting   `json:"safetySettings,omitempty"`
	GenerationConfig generationConfig  `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt and returns the model's text. Transient
// upstream failures are retried with linearly increasing backoff; once
// attempts are exhausted a fixed apology is returned instead of an error.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		text, err := c.generateOnce(ctx, prompt)
		if err == nil {
			if text == "" {
				c.logger.Warn("gemini_empty_response", slog.Int("attempt", attempt+1))
				return EmptyResponseAnswer, nil
			}
			return text, nil
		}
		lastErr = err

		c.logger.Warn("gemini_attempt_failed",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))

		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.RetryDelay * time.Duration(attempt+1)):
			}
		}
	}

	c.logger.Error("gemini_all_attempts_failed", slog.String("error", lastErr.Error()))
	return UnavailableAnswer, nil
}

func (c *GeminiClient) generateOnce(ctx context.Context, prompt string) (string, error) {
	settings := make([]safetySetting, 0, len(c.safetySettings))
	for _, s := range c.safetySettings {
		settings = append(settings, safetySetting{Category: s.Category, Threshold: s.Threshold})
	}

	reqBody := generateRequest{
		Contents:         []generateContent{{Parts: []generatePart{{Text: prompt}}}},
		SafetySettings:   settings,
		GenerationConfig: generationConfig{Temperature: temperature},
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.BaseURL, c.Model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonPayload))
	if err != nil {
		return "", fmt.Errorf("failed to create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call generation endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generation endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return strings.TrimSpace(genResp.Candidates[0].Content.Parts[0].Text), nil
}

// ModelName returns the wrapped model identifier.
func (c *GeminiClient) ModelName() string {
	return c.Model
}

var _ domain.LLMClient = (*GeminiClient)(nil)
