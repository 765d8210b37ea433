package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	GoogleAPIKey    string
	GenerationModel string
	EmbeddingModel  string

	// Generation parameters passed through to the model unchanged.
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32

	// VectorBackend selects the vector store implementation: "chromem" (local
	// persistent directory, the default) or "qdrant" (remote server).
	VectorBackend  string
	IndexPath      string
	CollectionName string
	QdrantURL      string

	DatasetPath      string
	DBPath           string
	CleanupRulesPath string
	ThaiSource       string

	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded
// automatically. Environment variables already set take precedence over .env values.
func Load() (*Config, error) {
	// Try current directory first, then walk up to find a project-root .env.
	_ = godotenv.Load()
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		GoogleAPIKey:     os.Getenv("GOOGLE_API_KEY"),
		GenerationModel:  getEnv("GENERATION_MODEL", "gemini-2.0-flash-exp"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-004"),
		VectorBackend:    strings.ToLower(getEnv("VECTOR_BACKEND", "chromem")),
		IndexPath:        getEnv("INDEX_PATH", "./chroma_db"),
		CollectionName:   getEnv("COLLECTION_NAME", "rag_knowledge_base"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		DatasetPath:      getEnv("DATASET_PATH", "./dataset"),
		DBPath:           getEnv("DB_PATH", "./data/cyberdocs.db"),
		CleanupRulesPath: getEnv("CLEANUP_RULES_PATH", ""),
		ThaiSource:       getEnv("THAI_SOURCE", "thailand-web-security-standard-2025.pdf"),
		APIPort:          getEnv("API_PORT", "7860"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	if cfg.GoogleAPIKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY is required")
	}

	switch cfg.VectorBackend {
	case "chromem", "qdrant":
	default:
		return nil, fmt.Errorf("VECTOR_BACKEND must be \"chromem\" or \"qdrant\", got %q", cfg.VectorBackend)
	}

	// Generation parameters. Defaults favor factual accuracy over creativity.
	temperature, err := getEnvFloat("GEN_TEMPERATURE", 0.1)
	if err != nil {
		return nil, err
	}
	cfg.Temperature = temperature

	topP, err := getEnvFloat("GEN_TOP_P", 0.95)
	if err != nil {
		return nil, err
	}
	cfg.TopP = topP

	topK, err := getEnvInt("GEN_TOP_K", 40)
	if err != nil {
		return nil, err
	}
	cfg.TopK = int32(topK)

	maxTokens, err := getEnvInt("GEN_MAX_OUTPUT_TOKENS", 2048)
	if err != nil {
		return nil, err
	}
	if maxTokens <= 0 {
		return nil, fmt.Errorf("GEN_MAX_OUTPUT_TOKENS must be greater than 0")
	}
	cfg.MaxOutputTokens = int32(maxTokens)

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	// Create the data directory if it doesn't exist (for the SQLite registry).
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float32) (float32, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return float32(parsed), nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return parsed, nil
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", value)
	}
}
