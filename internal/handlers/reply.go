package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avvvet/companion/internal/facts"
	"github.com/avvvet/companion/internal/llm"
	"github.com/avvvet/companion/internal/memory"
	"github.com/avvvet/companion/internal/models"
	"github.com/avvvet/companion/internal/observability"
	"github.com/avvvet/companion/internal/prompts"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Options are the fixed limits of one generation cycle.
type Options struct {
	MaxTokens     int
	Temperature   float64
	Timeout       time.Duration
	HistoryWindow int
	MaxInputRunes int
}

// DefaultOptions returns 200 output tokens, temperature 0.8, a 30s timeout,
// a 6-turn history window and a 500-rune input limit.
func DefaultOptions() Options {
	return Options{
		MaxTokens:     200,
		Temperature:   0.8,
		Timeout:       30 * time.Second,
		HistoryWindow: 6,
		MaxInputRunes: 500,
	}
}

// Reply outcomes reported to metrics.
const (
	OutcomeCompletion = "completion"
	OutcomeFallback   = "fallback"
	OutcomeEmptyInput = "empty_input"
)

// Failure records why a completion produced no reply.
type Failure struct {
	Reason llm.FailureReason
	Err    error
}

// Result is the outcome of one generation cycle. Failure is nil when the
// reply came from the model.
type Result struct {
	RequestID  string
	Reply      string
	EmptyInput bool
	Failure    *Failure
}

// Degraded reports whether Reply is a fallback.
func (r Result) Degraded() bool {
	return r.Failure != nil
}

type ReplyHandler struct {
	provider llm.Provider
	memory   *memory.Manager
	rng      prompts.Chooser
	opts     Options
	metrics  *observability.Metrics
}

// NewReplyHandler wires the generator. rng must be safe for concurrent use;
// see NewChooser. metrics may be nil.
func NewReplyHandler(provider llm.Provider, mem *memory.Manager, rng prompts.Chooser, opts Options, metrics *observability.Metrics) *ReplyHandler {
	return &ReplyHandler{
		provider: provider,
		memory:   mem,
		rng:      rng,
		opts:     opts,
		metrics:  metrics,
	}
}

// GenerateReply always returns a reply; failures degrade to a fallback.
func (h *ReplyHandler) GenerateReply(ctx context.Context, userID, text string) string {
	return h.Generate(ctx, userID, text).Reply
}

// Generate runs validate, compose, request and then persist or fall back.
func (h *ReplyHandler) Generate(ctx context.Context, userID, text string) Result {
	requestID := uuid.NewString()
	logger := log.WithFields(log.Fields{"user_id": userID, "request_id": requestID})

	if strings.TrimSpace(text) == "" {
		logger.Info("empty message, replying without completion")
		h.metrics.ObserveReply(OutcomeEmptyInput)
		return Result{RequestID: requestID, Reply: prompts.EmptyMessageReply, EmptyInput: true}
	}

	input := truncateInput(text, h.opts.MaxInputRunes)
	profile := h.memory.Profile(ctx, userID)
	history := h.memory.RecentHistory(ctx, userID, h.opts.HistoryWindow)
	messages := buildMessages(profile, history, input)

	logger.WithField("history_turns", len(history)).Debugf("📨 requesting completion: %s", preview(input))

	reply, err := h.complete(ctx, messages)
	if err != nil {
		failure := &Failure{Reason: llm.ReasonOf(err), Err: err}
		logger.WithError(err).WithField("reason", failure.Reason).Error("❌ completion failed, using fallback reply")
		h.metrics.ObserveReply(OutcomeFallback)
		return Result{
			RequestID: requestID,
			Reply:     prompts.FallbackReply(text, h.rng),
			Failure:   failure,
		}
	}

	h.persist(ctx, userID, input, reply)
	logger.Infof("✅ reply: %s", preview(reply))
	h.metrics.ObserveReply(OutcomeCompletion)
	return Result{RequestID: requestID, Reply: reply}
}

// ClearHistory drops the user's history; the profile is kept.
func (h *ReplyHandler) ClearHistory(ctx context.Context, userID string) {
	h.memory.ClearHistory(ctx, userID)
}

// GetStats returns a read-only snapshot of the user's session.
func (h *ReplyHandler) GetStats(ctx context.Context, userID string) models.Stats {
	return h.memory.Stats(ctx, userID)
}

func (h *ReplyHandler) complete(ctx context.Context, messages []models.Turn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, h.opts.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := h.provider.Complete(ctx, &llm.CompletionRequest{
		Messages:    messages,
		MaxTokens:   h.opts.MaxTokens,
		Temperature: h.opts.Temperature,
	})
	if err == nil && (resp == nil || strings.TrimSpace(resp.Content) == "") {
		err = fmt.Errorf("%w: empty completion", llm.ErrMalformedResponse)
	}

	reason := ""
	if err != nil {
		reason = string(llm.ReasonOf(err))
	}
	h.metrics.ObserveCompletion(time.Since(start), reason)

	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

// persist records the exchange and folds extracted facts into the profile.
func (h *ReplyHandler) persist(ctx context.Context, userID, input, reply string) {
	h.memory.RecordExchange(ctx, userID, input, reply)

	found := facts.Extract(input)

	update := models.ProfileUpdate{AddInterests: found.Interests}
	if found.Name != "" {
		update.Name = &found.Name
	}
	if found.Mood != "" {
		update.Mood = &found.Mood
	}

	updated := h.memory.UpdateProfile(ctx, userID, update)
	log.WithFields(log.Fields{
		"user_id":            userID,
		"conversation_count": updated.ConversationCount,
		"name_found":         found.Name != "",
		"interests":          len(updated.Interests),
	}).Debug("profile updated")
}

// buildMessages orders system prompt, history and the current user turn.
func buildMessages(profile models.Profile, history []models.Turn, input string) []models.Turn {
	messages := make([]models.Turn, 0, len(history)+2)
	messages = append(messages, models.Turn{Role: models.RoleSystem, Content: prompts.BuildSystemPrompt(profile)})
	messages = append(messages, history...)
	messages = append(messages, models.Turn{Role: models.RoleUser, Content: input})
	return messages
}

func truncateInput(text string, maxRunes int) string {
	runes := []rune(text)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes]) + "..."
}

func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= 50 {
		return s
	}
	return string(runes[:50]) + "..."
}
