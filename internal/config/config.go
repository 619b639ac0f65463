package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Keys       APIKeys
	Ai         AIConfig
	Events     EventsConfig
	Provenance ProvenanceConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	RapidAPI     string
}

type AIConfig struct {
	LLMProvider       string // "gemini" or "ollama"
	LLMModel          string // e.g. "gemini-2.5-flash", "llama3"
	OllamaBaseURL     string
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaEmbedModel  string
	FallbackURL       string
	FallbackHost      string
}

type EventsConfig struct {
	AuditCompletedTopic string
}

type ProvenanceConfig struct {
	KeyDir string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			RapidAPI:     getEnv("RAPIDAPI_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-2.5-flash"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			FallbackURL:       getEnv("LLM_FALLBACK_URL", "https://gemini-pro-ai.p.rapidapi.com/"),
			FallbackHost:      getEnv("LLM_FALLBACK_HOST", "gemini-pro-ai.p.rapidapi.com"),
		},
		Events: EventsConfig{
			AuditCompletedTopic: getEnv("AUDIT_COMPLETED_TOPIC_NAME", "AUDIT_COMPLETED"),
		},
		Provenance: ProvenanceConfig{
			KeyDir: getEnv("PROVENANCE_KEY_DIR", "keys"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
