package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avvvet/companion/internal/transport"
	log "github.com/sirupsen/logrus"
)

// Serve runs the NATS chat transport and the HTTP ops surface until ctx is
// cancelled. NATS is skipped when no URL is configured.
func Serve(ctx context.Context, res *BuildResult) error {
	cfg := res.Config

	if cfg.NatsURL != "" {
		natsTransport, err := transport.NewNATSTransport(transport.Options{
			URL:     cfg.NatsURL,
			Name:    cfg.ServiceName,
			Subject: cfg.NatsRequestSubject,
			Timeout: cfg.NatsTimeout,
		}, res.Handler)
		if err != nil {
			return fmt.Errorf("failed to initialize NATS transport: %w", err)
		}
		defer natsTransport.Close()

		if err := natsTransport.Start(); err != nil {
			return fmt.Errorf("failed to start NATS transport: %w", err)
		}
	} else {
		log.Warn("NATS_URL is empty, chat transport disabled")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           res.API.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("🌐 HTTP listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	log.Info("🔄 Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown error")
	}
	log.Infof("📊 Final session count: %d", res.Memory.GetActiveSessionCount())
	return nil
}
