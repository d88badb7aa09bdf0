/**
 * Configuration for the OCR service.
 *
 * Loaded from environment variables with sensible defaults for local
 * development; a .env file is picked up by the entrypoints via godotenv.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds service configuration shared by the HTTP server and the
// worker.
type Config struct {
	// HTTP server
	Port        string
	MaxFileSize int64

	// OCR engine: "tesseract" or "remote"
	OCREngine    string
	OCRLanguage  string
	RemoteOCRURL string

	// PDF rasterization
	PDFRenderDPI int

	// Redis (queue transport + job events)
	RedisURL string

	// PostgreSQL
	DatabaseURL string

	// Qdrant vector database
	QdrantURL        string
	QdrantCollection string

	// Embeddings (Voyage-compatible API)
	VoyageAPIKey string

	// LLM extraction, vision extraction, and invoice chat
	LLMProvider       string
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIVisionModel string
	OpenAIChatModel   string
	GeminiAPIKey      string
	GeminiModel       string

	// Worker
	WorkerConcurrency int
	ProcessingTimeout int // milliseconds
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "8000"),
		MaxFileSize:       getEnvAsInt64OrDefault("MAX_FILE_SIZE", 52428800), // 50MB
		OCREngine:         getEnvOrDefault("OCR_ENGINE", "tesseract"),
		OCRLanguage:       getEnvOrDefault("OCR_LANG", "eng+bul"),
		RemoteOCRURL:      getEnvOrDefault("REMOTE_OCR_URL", ""),
		PDFRenderDPI:      getEnvAsIntOrDefault("PDF_RENDER_DPI", 200),
		RedisURL:          getEnvOrDefault("REDIS_URL", "redis://localhost:6379"),
		DatabaseURL:       getEnvOrDefault("DATABASE_URL", ""),
		QdrantURL:         getEnvOrDefault("QDRANT_URL", "localhost:6334"),
		QdrantCollection:  getEnvOrDefault("QDRANT_COLLECTION", "invoice_documents"),
		VoyageAPIKey:      getEnvOrDefault("VOYAGE_API_KEY", ""),
		LLMProvider:       getEnvOrDefault("LLM_PROVIDER", ""),
		OpenAIAPIKey:      getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnvOrDefault("OPENAI_MODEL", ""),
		OpenAIVisionModel: getEnvOrDefault("OPENAI_VISION_MODEL", ""),
		OpenAIChatModel:   getEnvOrDefault("OPENAI_CHAT_MODEL", ""),
		GeminiAPIKey:      getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:       getEnvOrDefault("GEMINI_MODEL", ""),
		WorkerConcurrency: getEnvAsIntOrDefault("WORKER_CONCURRENCY", 4),
		ProcessingTimeout: getEnvAsIntOrDefault("PROCESSING_TIMEOUT", 300000), // 5 minutes
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks if configuration is valid.
func (c *Config) Validate() error {
	switch c.OCREngine {
	case "tesseract":
	case "remote":
		if c.RemoteOCRURL == "" {
			return fmt.Errorf("REMOTE_OCR_URL is required when OCR_ENGINE=remote")
		}
	default:
		return fmt.Errorf("OCR_ENGINE must be 'tesseract' or 'remote', got %q", c.OCREngine)
	}

	if c.PDFRenderDPI < 72 || c.PDFRenderDPI > 600 {
		return fmt.Errorf("PDF_RENDER_DPI must be between 72 and 600, got %d", c.PDFRenderDPI)
	}

	if c.MaxFileSize < 1024 || c.MaxFileSize > 1073741824 { // 1KB to 1GB
		return fmt.Errorf("MAX_FILE_SIZE must be between 1KB and 1GB, got %d", c.MaxFileSize)
	}

	if c.WorkerConcurrency < 1 || c.WorkerConcurrency > 100 {
		return fmt.Errorf("WORKER_CONCURRENCY must be between 1 and 100, got %d", c.WorkerConcurrency)
	}

	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	return nil
}

// getEnvOrDefault gets environment variable or returns default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default.
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsInt64OrDefault gets environment variable as int64 or returns default.
func getEnvAsInt64OrDefault(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
