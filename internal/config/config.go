package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Completion backends.
const (
	BackendOpenAI             = "openai"
	BackendLangChainOpenAI    = "langchain-openai"
	BackendLangChainAnthropic = "langchain-anthropic"
)

// Session backends.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

type Config struct {
	// Completion endpoint
	CompletionBackend     string
	APIKey                string
	BaseURL               string
	Model                 string
	AnthropicAPIKey       string
	AnthropicModel        string
	CompletionTimeout     time.Duration
	CompletionMaxTokens   int
	CompletionTemperature float64

	// Session memory
	HistoryCap     int
	HistoryWindow  int
	MaxInputRunes  int
	SessionShards  int
	SessionBackend string
	RedisURL       string
	SessionTTL     time.Duration
	FallbackSeed   uint64

	// NATS configuration
	NatsURL            string
	NatsRequestSubject string
	NatsTimeout        time.Duration

	// Service configuration
	ServiceName      string
	HTTPAddr         string
	MetricsNamespace string
	LogLevel         string
	LogFormat        string
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		CompletionBackend:     getEnv("COMPLETION_BACKEND", BackendOpenAI),
		APIKey:                getEnv("NEUROAPI_KEY", ""),
		BaseURL:               getEnv("NEUROAPI_BASE_URL", "https://neuroapi.host/v1"),
		Model:                 getEnv("COMPLETION_MODEL", "gpt-5-mini"),
		AnthropicAPIKey:       getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:        getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		CompletionTimeout:     getDurationEnv("COMPLETION_TIMEOUT", 30*time.Second),
		CompletionMaxTokens:   getIntEnv("COMPLETION_MAX_TOKENS", 200),
		CompletionTemperature: getFloatEnv("COMPLETION_TEMPERATURE", 0.8),

		HistoryCap:     getIntEnv("HISTORY_CAP", 8),
		HistoryWindow:  getIntEnv("HISTORY_WINDOW", 6),
		MaxInputRunes:  getIntEnv("MAX_INPUT_RUNES", 500),
		SessionShards:  getIntEnv("SESSION_SHARDS", 32),
		SessionBackend: getEnv("SESSION_BACKEND", SessionMemory),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL:     getDurationEnv("SESSION_TTL", 30*time.Minute),
		FallbackSeed:   getUintEnv("FALLBACK_SEED", 0),

		NatsURL:            lookupEnv("NATS_URL", "nats://localhost:4222"),
		NatsRequestSubject: getEnv("NATS_REQUEST_SUBJECT", "companion.chat"),
		NatsTimeout:        getDurationEnv("NATS_TIMEOUT", 30*time.Second),

		ServiceName:      getEnv("SERVICE_NAME", "companion"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "companion"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	return cfg, cfg.Validate()
}

// Validate checks the limits the session core relies on.
func (c *Config) Validate() error {
	switch c.CompletionBackend {
	case BackendOpenAI, BackendLangChainOpenAI, BackendLangChainAnthropic:
	default:
		return fmt.Errorf("COMPLETION_BACKEND must be one of %s, %s, %s, got %q",
			BackendOpenAI, BackendLangChainOpenAI, BackendLangChainAnthropic, c.CompletionBackend)
	}
	switch c.SessionBackend {
	case SessionMemory, SessionRedis:
	default:
		return fmt.Errorf("SESSION_BACKEND must be %s or %s, got %q", SessionMemory, SessionRedis, c.SessionBackend)
	}
	if c.HistoryCap <= 0 || c.HistoryCap%2 != 0 {
		return fmt.Errorf("HISTORY_CAP must be a positive even number, got %d", c.HistoryCap)
	}
	if c.HistoryWindow <= 0 || c.HistoryWindow > c.HistoryCap {
		return fmt.Errorf("HISTORY_WINDOW must be 1-%d, got %d", c.HistoryCap, c.HistoryWindow)
	}
	if c.MaxInputRunes <= 0 {
		return fmt.Errorf("MAX_INPUT_RUNES must be positive, got %d", c.MaxInputRunes)
	}
	if c.SessionShards <= 0 {
		return fmt.Errorf("SESSION_SHARDS must be positive, got %d", c.SessionShards)
	}
	if c.CompletionMaxTokens <= 0 {
		return fmt.Errorf("COMPLETION_MAX_TOKENS must be positive, got %d", c.CompletionMaxTokens)
	}
	if c.CompletionTemperature < 0 || c.CompletionTemperature > 2 {
		return fmt.Errorf("COMPLETION_TEMPERATURE must be 0-2, got %f", c.CompletionTemperature)
	}
	if c.CompletionTimeout <= 0 {
		return fmt.Errorf("COMPLETION_TIMEOUT must be positive, got %v", c.CompletionTimeout)
	}
	return nil
}

// CompletionKey returns the API key for the selected backend.
func (c *Config) CompletionKey() string {
	if c.CompletionBackend == BackendLangChainAnthropic {
		return c.AnthropicAPIKey
	}
	return c.APIKey
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// lookupEnv is like getEnv but keeps an explicitly empty value.
func lookupEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getUintEnv(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if u, err := strconv.ParseUint(value, 10, 64); err == nil {
			return u
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
