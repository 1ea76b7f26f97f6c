package domain

import "context"

// Embedder turns texts into embedding vectors, one per input.
type Embedder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Version() string
}

// LLMClient generates text from a prompt. Implementations retry
// transient upstream failures internally and degrade to a fixed
// user-visible message rather than surfacing an error, so every request
// still gets an answer.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ModelName() string
}
