package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/avvvet/companion/internal/app"
	"github.com/avvvet/companion/internal/models"
	"github.com/spf13/cobra"
)

// chatter is the slice of the reply handler the REPL needs.
type chatter interface {
	HandleChat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error)
}

func NewChatCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat interactively in the terminal",
		Long: `Start an interactive conversation. Lines starting with "/" are
commands (/start, /help, /about, /clear, /stats); /quit exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			res, err := app.Build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer res.Cleanup()

			return runChat(cmd.Context(), res.Handler, userID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "local", "User id the session is stored under")
	return cmd
}

// runChat reads one message per line until EOF or /quit.
func runChat(ctx context.Context, chat chatter, userID string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" || line == "/exit" {
			return nil
		}

		req := &models.ChatRequest{UserID: userID, Kind: models.KindText, Text: line}
		if strings.HasPrefix(line, "/") {
			req = &models.ChatRequest{UserID: userID, Kind: models.KindCommand, Command: line}
		}

		resp, err := chat.HandleChat(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Аня: %s\n> ", resp.Reply)
	}
	return scanner.Err()
}
