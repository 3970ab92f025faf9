package commands

import (
	"os"

	"github.com/avvvet/companion/internal/config"
	"github.com/avvvet/companion/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the companion command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "companion",
		Short:         "Persona chat companion",
		Long:          `Chat with Аня from the terminal or run the companion service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(NewChatCmd())
	root.AddCommand(NewServeCmd())
	root.AddCommand(NewVersionCmd())
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads .env, the environment and sets up logging.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}
	return cfg, nil
}
