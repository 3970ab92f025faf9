package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avvvet/companion/internal/models"
	"github.com/avvvet/companion/internal/prompts"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrMissingUserID = errors.New("user_id is required")

// HandleChat routes one inbound chat message: commands, non-text kinds and
// text. A panic while handling is recovered into the generic error reply.
func (h *ReplyHandler) HandleChat(ctx context.Context, req *models.ChatRequest) (resp *models.ChatResponse, err error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	kind := requestKind(req)
	h.metrics.ObserveDispatch(transportFrom(ctx), kind)

	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"user_id": req.UserID,
				"kind":    kind,
				"panic":   fmt.Sprint(r),
			}).Error("❌ recovered panic while handling chat message")
			resp = &models.ChatResponse{
				RequestID: uuid.NewString(),
				UserID:    req.UserID,
				Reply:     prompts.ErrorReply,
				Degraded:  true,
			}
			err = nil
		}
	}()

	switch kind {
	case models.KindCommand:
		return h.handleCommand(ctx, req), nil
	case models.KindMedia:
		return h.cannedResponse(req, prompts.MediaReply(h.rng)), nil
	case models.KindOther:
		return h.cannedResponse(req, prompts.OtherReply(h.rng)), nil
	}

	result := h.Generate(ctx, req.UserID, req.Text)
	return &models.ChatResponse{
		RequestID: result.RequestID,
		UserID:    req.UserID,
		Reply:     result.Reply,
		Degraded:  result.Degraded(),
	}, nil
}

func (h *ReplyHandler) handleCommand(ctx context.Context, req *models.ChatRequest) *models.ChatResponse {
	command := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(req.Command), "/"))
	log.WithFields(log.Fields{"user_id": req.UserID, "command": command}).Info("command received")

	switch command {
	case models.CommandStart:
		return h.cannedResponse(req, prompts.WelcomeReply)
	case models.CommandHelp:
		return h.cannedResponse(req, prompts.HelpReply)
	case models.CommandAbout:
		return h.cannedResponse(req, prompts.AboutReply)
	case models.CommandClear:
		h.ClearHistory(ctx, req.UserID)
		return h.cannedResponse(req, prompts.ClearedReply)
	case models.CommandStats:
		stats := h.GetStats(ctx, req.UserID)
		resp := h.cannedResponse(req, prompts.StatsReply(stats))
		resp.Stats = &stats
		return resp
	default:
		return h.cannedResponse(req, prompts.UnknownCommandReply)
	}
}

func (h *ReplyHandler) cannedResponse(req *models.ChatRequest, reply string) *models.ChatResponse {
	return &models.ChatResponse{
		RequestID: uuid.NewString(),
		UserID:    req.UserID,
		Reply:     reply,
	}
}

func validateRequest(req *models.ChatRequest) error {
	if req == nil || strings.TrimSpace(req.UserID) == "" {
		return ErrMissingUserID
	}
	return nil
}

// requestKind defaults an empty kind to text, or to command when a command
// is set.
func requestKind(req *models.ChatRequest) string {
	switch req.Kind {
	case models.KindText, models.KindCommand, models.KindMedia, models.KindOther:
		return req.Kind
	case "":
		if req.Command != "" {
			return models.KindCommand
		}
		return models.KindText
	default:
		return models.KindOther
	}
}

type transportKey struct{}

// WithTransport tags ctx with the name of the transport that received the
// message, for dispatch metrics.
func WithTransport(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, transportKey{}, name)
}

func transportFrom(ctx context.Context) string {
	if name, ok := ctx.Value(transportKey{}).(string); ok {
		return name
	}
	return "direct"
}
