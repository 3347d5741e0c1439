package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	DBMaxConns  int
	DBMinConns  int

	GeminiAPIKey     string
	GeminiTextModel  string
	GeminiImageModel string
	GeminiBaseURL    string
	GeminiMaxRetries int

	StoragePath string

	MaxConcurrency     int
	DraftDebounce      time.Duration
	GalleryDebounce    time.Duration
	NoticeTTL          time.Duration
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMinute int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 8),
		DBMinConns:  getEnvInt("DB_MIN_CONNS", 1),

		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiTextModel:  getEnv("GEMINI_TEXT_MODEL", "gemini-3-flash-preview"),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiMaxRetries: getEnvInt("GEMINI_MAX_RETRIES", 3),

		StoragePath: getEnv("STORAGE_PATH", "./data/rendered"),

		MaxConcurrency:     getEnvInt("MAX_CONCURRENCY", 1),
		DraftDebounce:      time.Millisecond * time.Duration(getEnvInt("DRAFT_DEBOUNCE_MS", 1000)),
		GalleryDebounce:    time.Millisecond * time.Duration(getEnvInt("GALLERY_DEBOUNCE_MS", 1500)),
		NoticeTTL:          time.Second * time.Duration(getEnvInt("NOTICE_TTL_SECONDS", 6)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	if cfg.DBMinConns < 1 {
		cfg.DBMinConns = 1
	}
	if cfg.DBMaxConns < cfg.DBMinConns {
		cfg.DBMaxConns = cfg.DBMinConns
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
