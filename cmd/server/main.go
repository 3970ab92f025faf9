package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/avvvet/companion/internal/app"
	"github.com/avvvet/companion/internal/config"
	"github.com/avvvet/companion/internal/logging"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Load .env file if it exists (for development)
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatalf("❌ Failed to configure logging: %v", err)
	}

	log.Info("🚀 Starting companion service...")
	log.Infof("📋 Service: %s", cfg.ServiceName)
	log.Infof("🤖 Completion backend: %s", cfg.CompletionBackend)
	log.Infof("📡 NATS URL: %s", cfg.NatsURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to build service: %v", err)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			log.Warnf("⚠️ Error closing session store: %v", err)
		}
	}()

	log.Infof("✅ Companion is running, listening on subject: %s", cfg.NatsRequestSubject)

	if err := app.Serve(ctx, res); err != nil {
		log.Errorf("❌ %v", err)
		stop()
		_ = res.Cleanup()
		os.Exit(1)
	}

	log.Info("👋 Companion service stopped")
}
