package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	LLM     LLMConfig
	Video   VideoConfig
	PDF     PDFConfig
	Storage StorageConfig
}

// LLMConfig holds configuration for the assessment/estimation model service.
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// VideoConfig holds configuration for the video analysis flow.
type VideoConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	FFmpegPath      string
	TempDir         string
	PollInterval    time.Duration
	PollMaxAttempts int
}

// PDFConfig holds configuration for PDF rasterization.
type PDFConfig struct {
	PdftoppmPath string
	DPI          int
	// MaxDimension bounds page width/height in pixels; larger renders are
	// downscaled before encoding. Zero disables the bound.
	MaxDimension int
}

// StorageConfig holds configuration for the frame upload store.
type StorageConfig struct {
	BaseURL string
	APIKey  string
	Bucket  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-4.1"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 120*time.Second),
		},
		Video: VideoConfig{
			APIKey:          getEnv("GOOGLE_API_KEY", ""),
			BaseURL:         getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Model:           getEnv("GEMINI_MODEL", "gemini-2.5-flash-preview-04-17"),
			FFmpegPath:      getEnv("FFMPEG_PATH", "ffmpeg"),
			TempDir:         getEnv("VIDEO_TEMP_DIR", os.TempDir()),
			PollInterval:    getEnvAsDuration("GEMINI_POLL_INTERVAL", 5*time.Second),
			PollMaxAttempts: getEnvAsInt("GEMINI_POLL_MAX_ATTEMPTS", 60),
		},
		PDF: PDFConfig{
			PdftoppmPath: getEnv("PDFTOPPM_PATH", "pdftoppm"),
			DPI:          getEnvAsInt("PDF_DPI", 150),
			MaxDimension: getEnvAsInt("PDF_MAX_DIMENSION", 2048),
		},
		Storage: StorageConfig{
			BaseURL: getEnv("STORAGE_URL", ""),
			APIKey:  getEnv("STORAGE_KEY", ""),
			Bucket:  getEnv("STORAGE_BUCKET", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err != nil {
			return defaultValue
		} else {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the configuration needed by the document pipeline.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrNotConfigured)
	}
	return nil
}

// ValidateVideo checks the configuration needed by the video pipeline,
// including the storage credentials required to persist extracted frames.
// Missing storage configuration fails fast here rather than after frames
// have been extracted.
func (c *Config) ValidateVideo() error {
	if c.Video.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GOOGLE_API_KEY is required", ErrNotConfigured)
	}
	if c.Storage.BaseURL == "" || c.Storage.APIKey == "" || c.Storage.Bucket == "" {
		return NewAppError("CONFIG_ERROR", "STORAGE_URL, STORAGE_KEY and STORAGE_BUCKET are required for frame upload", ErrNotConfigured)
	}
	return nil
}
