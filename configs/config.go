package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

type Storage struct {
	AccountID       string
	Endpoint        string
	Region          string
	AccessKey       string
	SecretKey       string
	ManualBucket    string
	AIBucket        string
	ManualPublicURL string
	AIPublicURL     string
}

// S3Endpoint falls back to the Cloudflare R2 endpoint for the account.
func (s Storage) S3Endpoint() string {
	if s.Endpoint != "" {
		return s.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", s.AccountID)
}

type N8N struct {
	WebhookURL string
	APIKey     string
	Timeout    time.Duration
}

type Config struct {
	Port             string
	PostgresURI      string
	RedisURI         string
	PublicURL        string
	FrontendURL      string
	N8N              N8N
	Storage          Storage
	PendingAITimeout time.Duration
	LogLevel         string
	LogFormat        string
	OpenAIAPIKey     string
	VideoAPIKey      string
}

func LoadConfig() *Config {
	return &Config{
		Port:        getEnv("PORT", "3000"),
		PostgresURI: getEnv("POSTGRES_URI", ""),
		RedisURI:    getEnv("REDIS_URI", ""),
		PublicURL:   strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:3000"), "/"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		N8N: N8N{
			WebhookURL: getEnv("N8N_WEBHOOK_URL", ""),
			APIKey:     getEnv("N8N_API_KEY", ""),
			Timeout:    getDuration("N8N_TIMEOUT", 0),
		},
		Storage: Storage{
			AccountID:       getEnv("STORAGE_ACCOUNT_ID", ""),
			Endpoint:        getEnv("STORAGE_ENDPOINT", ""),
			Region:          getEnv("STORAGE_REGION", "auto"),
			AccessKey:       getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:       getEnv("STORAGE_SECRET_KEY", ""),
			ManualBucket:    getEnv("STORAGE_BUCKET_MANUAL", "manual-uploads"),
			AIBucket:        getEnv("STORAGE_BUCKET_AI", "ai-generated-content"),
			ManualPublicURL: strings.TrimRight(getEnv("STORAGE_MANUAL_PUBLIC_URL", ""), "/"),
			AIPublicURL:     strings.TrimRight(getEnv("STORAGE_AI_PUBLIC_URL", ""), "/"),
		},
		PendingAITimeout: getDuration("PENDING_AI_TIMEOUT", 2*time.Hour),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		VideoAPIKey:      getEnv("VIDEO_API_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return d
}
