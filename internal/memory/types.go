package memory

import (
	"context"

	"github.com/avvvet/companion/internal/facts"
	"github.com/avvvet/companion/internal/models"
)

// HistoryStore keeps a bounded, chronological turn sequence per user.
// Implementations must be safe for concurrent use.
type HistoryStore interface {
	// Get returns the user's turns, oldest first. Unknown users yield an empty slice.
	Get(ctx context.Context, userID string) ([]models.Turn, error)

	// Append adds a user turn followed by an assistant turn, then drops the
	// oldest turns beyond the store's cap.
	Append(ctx context.Context, userID, userText, assistantText string) error

	// Clear empties the user's history. Unknown users are a no-op.
	Clear(ctx context.Context, userID string) error
}

// ProfileStore keeps one fact-sheet per user.
// Implementations must be safe for concurrent use.
type ProfileStore interface {
	// Get returns the stored profile or models.NewProfile for unknown users.
	Get(ctx context.Context, userID string) (models.Profile, error)

	// Update overwrites the set fields and increments ConversationCount by one.
	Update(ctx context.Context, userID string, update models.ProfileUpdate) (models.Profile, error)
}

// applyUpdate merges update into p field by field and counts the interaction.
// Stores call it while holding the user's lock, so AddInterests never loses
// labels written by a concurrent update.
func applyUpdate(p *models.Profile, update models.ProfileUpdate) {
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Interests != nil {
		p.Interests = dedupe(update.Interests)
	}
	if len(update.AddInterests) > 0 {
		p.Interests, _ = facts.MergeInterests(p.Interests, dedupe(update.AddInterests))
	}
	if update.Mood != nil {
		p.Mood = *update.Mood
	}
	if p.Interests == nil {
		p.Interests = []string{}
	}
	if p.Mood == "" {
		p.Mood = models.DefaultMood
	}
	p.ConversationCount++
}

func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
