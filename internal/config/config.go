package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Ai        AIConfig
	Extractor ExtractorConfig
	Keys      APIKeys
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	UploadDir          string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider           string // "openai" or "ollama"
	LLMModel              string // e.g. "gpt-4o-mini", "llama3"
	OllamaBaseURL         string
	OpenAIAPIKey          string
	MaxContextChars       int
	HistoryWindow         int
	RequestTimeoutSeconds int
}

type ExtractorConfig struct {
	Provider       string // "local" or "http"
	BaseURL        string
	TimeoutSeconds int
}

type APIKeys struct {
	AnalysisTopic string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:           getEnv("LLM_PROVIDER", "openai"),
			LLMModel:              getEnv("LLM_MODEL", "gpt-4o-mini"),
			OllamaBaseURL:         getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
			MaxContextChars:       getEnvAsInt("AI_MAX_CONTEXT_CHARS", 12000),
			HistoryWindow:         getEnvAsInt("AI_HISTORY_WINDOW", 20),
			RequestTimeoutSeconds: getEnvAsInt("AI_REQUEST_TIMEOUT_SECONDS", 90),
		},
		Extractor: ExtractorConfig{
			Provider:       getEnv("EXTRACTOR_PROVIDER", "local"),
			BaseURL:        getEnv("EXTRACTOR_BASE_URL", "http://localhost:8000"),
			TimeoutSeconds: getEnvAsInt("EXTRACTOR_TIMEOUT_SECONDS", 60),
		},
		Keys: APIKeys{
			AnalysisTopic: getEnv("ANALYSIS_JOBS_TOPIC_NAME", "ANALYSIS_JOBS"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
