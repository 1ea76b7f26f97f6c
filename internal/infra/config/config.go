package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// SafetySetting is a per-harm-category moderation threshold forwarded to
// the generation API.
type SafetySetting struct {
	Category  string
	Threshold string
}

type Config struct {
	Env                string
	Port               string
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	PapersTable        string
	GeminiAPIKey       string
	GeminiModel        string
	OllamaURL          string
	EmbeddingModel     string
	EmbeddingTimeout   int
	RedisURL           string
	DataPath           string
	BatchSize          int
	TopKDefault        int
	MaxContextLength   int
	ConversationTTL    int
	RateLimitPerMinute int
	SafetySettings     []SafetySetting
}

func Load() *Config {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	return &Config{
		Env:                getEnv("ENV", "development"),
		Port:               getEnv("PORT", "8000"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "rag_user"),
		DBPassword:         getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "rag_password"),
		DBName:             getEnv("DB_NAME", "research_db"),
		PapersTable:        getEnv("COLLECTION_NAME", "arxiv_papers_2020"),
		GeminiAPIKey:       getSecret("GEMINI_API_KEY", "GEMINI_API_KEY_FILE", ""),
		GeminiModel:        getEnv("LLM_MODEL", "gemini-2.5-flash"),
		OllamaURL:          getEnv("OLLAMA_URL", "http://localhost:11434"),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "all-minilm"),
		EmbeddingTimeout:   getEnvInt("EMBEDDING_TIMEOUT_SECONDS", 30),
		RedisURL:           getEnv("REDIS_URL", ""),
		DataPath:           getEnv("DATA_PATH", "./data/filtered_arxiv_2020.json"),
		BatchSize:          getEnvInt("BATCH_SIZE", 100),
		TopKDefault:        getEnvInt("TOP_K_RESULTS", 3),
		MaxContextLength:   getEnvInt("MAX_CONTEXT_LENGTH", 2000),
		ConversationTTL:    getEnvInt("CONVERSATION_TTL_SECONDS", 86400),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
		SafetySettings:     loadSafetySettings(),
	}
}

func loadSafetySettings() []SafetySetting {
	categories := []struct {
		category string
		envKey   string
	}{
		{"HARM_CATEGORY_HARASSMENT", "SAFETY_HARASSMENT_THRESHOLD"},
		{"HARM_CATEGORY_HATE_SPEECH", "SAFETY_HATE_SPEECH_THRESHOLD"},
		{"HARM_CATEGORY_SEXUALLY_EXPLICIT", "SAFETY_SEXUALLY_EXPLICIT_THRESHOLD"},
		{"HARM_CATEGORY_DANGEROUS_CONTENT", "SAFETY_DANGEROUS_CONTENT_THRESHOLD"},
	}

	settings := make([]SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, SafetySetting{
			Category:  c.category,
			Threshold: getEnv(c.envKey, "BLOCK_MEDIUM_AND_ABOVE"),
		})
	}
	return settings
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
