package commands

import (
	"os/signal"
	"syscall"

	"github.com/avvvet/companion/internal/app"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the companion service",
		Long:  `Serve chat requests over NATS and the HTTP ops surface until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := app.Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := res.Cleanup(); err != nil {
					log.Warnf("⚠️ Error closing session store: %v", err)
				}
			}()

			log.Infof("🚀 Companion serving (%s backend)", cfg.CompletionBackend)
			return app.Serve(ctx, res)
		},
	}
}
