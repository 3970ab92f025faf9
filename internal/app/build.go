package app

import (
	"context"
	"fmt"

	"github.com/avvvet/companion/internal/config"
	"github.com/avvvet/companion/internal/handlers"
	"github.com/avvvet/companion/internal/httpapi"
	"github.com/avvvet/companion/internal/llm"
	"github.com/avvvet/companion/internal/memory"
	"github.com/avvvet/companion/internal/observability"
	log "github.com/sirupsen/logrus"
)

type BuildResult struct {
	Config   *config.Config
	Handler  *handlers.ReplyHandler
	Memory   *memory.Manager
	Metrics  *observability.Metrics
	API      *httpapi.Server
	Provider llm.Provider

	// Cleanup releases the session backend.
	Cleanup func() error
}

// Build wires the session stores, completion provider and reply handler
// selected by cfg.
func Build(ctx context.Context, cfg *config.Config) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	mgr, err := newMemoryManager(ctx, cfg)
	if err != nil {
		return nil, err
	}

	provider, err := NewProvider(cfg)
	if err != nil {
		_ = mgr.Close()
		return nil, err
	}

	handler := handlers.NewReplyHandler(provider, mgr, handlers.NewChooser(cfg.FallbackSeed), handlers.Options{
		MaxTokens:     cfg.CompletionMaxTokens,
		Temperature:   cfg.CompletionTemperature,
		Timeout:       cfg.CompletionTimeout,
		HistoryWindow: cfg.HistoryWindow,
		MaxInputRunes: cfg.MaxInputRunes,
	}, metrics)

	return &BuildResult{
		Config:   cfg,
		Handler:  handler,
		Memory:   mgr,
		Metrics:  metrics,
		API:      httpapi.New(handler, metrics, mgr.GetActiveSessionCount),
		Provider: provider,
		Cleanup:  mgr.Close,
	}, nil
}

func newMemoryManager(ctx context.Context, cfg *config.Config) (*memory.Manager, error) {
	switch cfg.SessionBackend {
	case config.SessionRedis:
		log.Infof("💾 Connecting to Redis session store: %s", cfg.RedisURL)
		store, err := memory.NewRedisStore(ctx, cfg.RedisURL, cfg.SessionTTL, cfg.HistoryCap)
		if err != nil {
			return nil, fmt.Errorf("redis session store init failed: %w", err)
		}
		return memory.NewManager(store, store.Profiles()), nil
	default:
		log.Infof("🧠 Using in-memory session store (%d shards)", cfg.SessionShards)
		return memory.NewInMemoryManager(cfg.HistoryCap, cfg.SessionShards), nil
	}
}

// NewProvider builds the completion backend named by cfg.CompletionBackend.
func NewProvider(cfg *config.Config) (llm.Provider, error) {
	var (
		provider llm.Provider
		err      error
	)
	switch cfg.CompletionBackend {
	case config.BackendLangChainOpenAI:
		provider, err = llm.NewLangChainOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case config.BackendLangChainAnthropic:
		provider, err = llm.NewLangChainAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	default:
		provider, err = llm.NewOpenAIProvider(llm.OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("%s provider init failed: %w", cfg.CompletionBackend, err)
	}
	return provider, nil
}
