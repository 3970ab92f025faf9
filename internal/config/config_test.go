package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendOpenAI, cfg.CompletionBackend)
	assert.Equal(t, "https://neuroapi.host/v1", cfg.BaseURL)
	assert.Equal(t, "gpt-5-mini", cfg.Model)
	assert.Equal(t, 30*time.Second, cfg.CompletionTimeout)
	assert.Equal(t, 200, cfg.CompletionMaxTokens)
	assert.InDelta(t, 0.8, cfg.CompletionTemperature, 1e-9)
	assert.Equal(t, 8, cfg.HistoryCap)
	assert.Equal(t, 6, cfg.HistoryWindow)
	assert.Equal(t, 500, cfg.MaxInputRunes)
	assert.Equal(t, 32, cfg.SessionShards)
	assert.Equal(t, SessionMemory, cfg.SessionBackend)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "companion.chat", cfg.NatsRequestSubject)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, uint64(0), cfg.FallbackSeed)
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	t.Setenv("COMPLETION_BACKEND", BackendLangChainAnthropic)
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-key")
	t.Setenv("NEUROAPI_KEY", "neuro-key")
	t.Setenv("HISTORY_CAP", "10")
	t.Setenv("HISTORY_WINDOW", "4")
	t.Setenv("COMPLETION_TIMEOUT", "5s")
	t.Setenv("COMPLETION_TEMPERATURE", "0.3")
	t.Setenv("SESSION_BACKEND", SessionRedis)
	t.Setenv("FALLBACK_SEED", "42")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendLangChainAnthropic, cfg.CompletionBackend)
	assert.Equal(t, "anthropic-key", cfg.CompletionKey())
	assert.Equal(t, 10, cfg.HistoryCap)
	assert.Equal(t, 4, cfg.HistoryWindow)
	assert.Equal(t, 5*time.Second, cfg.CompletionTimeout)
	assert.InDelta(t, 0.3, cfg.CompletionTemperature, 1e-9)
	assert.Equal(t, SessionRedis, cfg.SessionBackend)
	assert.Equal(t, uint64(42), cfg.FallbackSeed)
}

func TestLoad_MalformedValuesFallBackToDefaults(t *testing.T) {
	os.Clearenv()
	t.Setenv("HISTORY_CAP", "eight")
	t.Setenv("COMPLETION_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.HistoryCap)
	assert.Equal(t, 30*time.Second, cfg.CompletionTimeout)
}

func TestLoad_EmptyNatsURLDisablesTransport(t *testing.T) {
	os.Clearenv()
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "nats://localhost:4222", cfg.NatsURL)

	t.Setenv("NATS_URL", "")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.NatsURL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			CompletionBackend:     BackendOpenAI,
			SessionBackend:        SessionMemory,
			HistoryCap:            8,
			HistoryWindow:         6,
			MaxInputRunes:         500,
			SessionShards:         4,
			CompletionMaxTokens:   200,
			CompletionTemperature: 0.8,
			CompletionTimeout:     time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"window equal to cap", func(c *Config) { c.HistoryWindow = 8 }, false},
		{"odd cap", func(c *Config) { c.HistoryCap = 9 }, true},
		{"zero cap", func(c *Config) { c.HistoryCap = 0 }, true},
		{"window above cap", func(c *Config) { c.HistoryWindow = 10 }, true},
		{"zero window", func(c *Config) { c.HistoryWindow = 0 }, true},
		{"unknown backend", func(c *Config) { c.CompletionBackend = "grpc" }, true},
		{"unknown session backend", func(c *Config) { c.SessionBackend = "sqlite" }, true},
		{"zero shards", func(c *Config) { c.SessionShards = 0 }, true},
		{"temperature too high", func(c *Config) { c.CompletionTemperature = 2.5 }, true},
		{"zero timeout", func(c *Config) { c.CompletionTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
