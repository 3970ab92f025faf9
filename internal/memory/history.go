package memory

import (
	"context"
	"fmt"

	"github.com/avvvet/companion/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/memory"
)

// InMemoryHistory keeps each user's turns in a langchaingo chat history.
// State lives for the process lifetime only.
type InMemoryHistory struct {
	cap      int
	sessions *shardedMap[*memory.ChatMessageHistory]
}

// NewInMemoryHistory creates a history store holding at most capacity turns
// per user, guarded by the given number of lock shards.
func NewInMemoryHistory(capacity, shards int) *InMemoryHistory {
	return &InMemoryHistory{
		cap:      capacity,
		sessions: newShardedMap[*memory.ChatMessageHistory](shards),
	}
}

func (h *InMemoryHistory) Get(ctx context.Context, userID string) ([]models.Turn, error) {
	turns := []models.Turn{}
	var err error
	h.sessions.with(userID, func(entries map[string]*memory.ChatMessageHistory) {
		history, ok := entries[userID]
		if !ok {
			return
		}
		var msgs []llms.ChatMessage
		msgs, err = history.Messages(ctx)
		if err != nil {
			err = fmt.Errorf("failed to read history: %w", err)
			return
		}
		turns = toTurns(msgs)
	})
	return turns, err
}

func (h *InMemoryHistory) Append(ctx context.Context, userID, userText, assistantText string) error {
	var err error
	h.sessions.with(userID, func(entries map[string]*memory.ChatMessageHistory) {
		history, ok := entries[userID]
		if !ok {
			history = memory.NewChatMessageHistory()
			entries[userID] = history
		}
		err = appendPair(ctx, history, userText, assistantText, h.cap)
	})
	return err
}

func (h *InMemoryHistory) Clear(ctx context.Context, userID string) error {
	var err error
	h.sessions.with(userID, func(entries map[string]*memory.ChatMessageHistory) {
		if history, ok := entries[userID]; ok {
			err = history.Clear(ctx)
		}
	})
	return err
}

// SessionCount returns the number of users with a history entry.
func (h *InMemoryHistory) SessionCount() int {
	return h.sessions.len()
}

func appendPair(ctx context.Context, history *memory.ChatMessageHistory, userText, assistantText string, capacity int) error {
	if err := history.AddUserMessage(ctx, userText); err != nil {
		return fmt.Errorf("failed to add user message: %w", err)
	}
	if err := history.AddAIMessage(ctx, assistantText); err != nil {
		return fmt.Errorf("failed to add assistant message: %w", err)
	}

	msgs, err := history.Messages(ctx)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(msgs) <= capacity {
		return nil
	}
	newest := append([]llms.ChatMessage(nil), msgs[len(msgs)-capacity:]...)
	if err := history.SetMessages(ctx, newest); err != nil {
		return fmt.Errorf("failed to truncate history: %w", err)
	}
	return nil
}

func toTurns(msgs []llms.ChatMessage) []models.Turn {
	turns := make([]models.Turn, 0, len(msgs))
	for _, msg := range msgs {
		var role models.Role
		switch msg.GetType() {
		case llms.ChatMessageTypeHuman:
			role = models.RoleUser
		case llms.ChatMessageTypeAI:
			role = models.RoleAssistant
		case llms.ChatMessageTypeSystem:
			role = models.RoleSystem
		default:
			continue
		}
		turns = append(turns, models.Turn{Role: role, Content: msg.GetContent()})
	}
	return turns
}
