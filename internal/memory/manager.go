package memory

import (
	"context"

	"github.com/avvvet/companion/internal/models"
	log "github.com/sirupsen/logrus"
)

// Manager owns a user's session state: history and profile. Backend errors
// are logged and degraded to default-shaped values, so no method fails.
type Manager struct {
	history  HistoryStore
	profiles ProfileStore
}

// NewManager creates a new memory manager
func NewManager(history HistoryStore, profiles ProfileStore) *Manager {
	return &Manager{
		history:  history,
		profiles: profiles,
	}
}

// NewInMemoryManager builds a Manager on process-local stores.
func NewInMemoryManager(capacity, shards int) *Manager {
	return NewManager(NewInMemoryHistory(capacity, shards), NewInMemoryProfiles(shards))
}

// History returns the user's full history, oldest first.
func (m *Manager) History(ctx context.Context, userID string) []models.Turn {
	turns, err := m.history.Get(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("history unavailable, using empty history")
		return []models.Turn{}
	}
	return turns
}

// RecentHistory returns at most window of the newest turns, oldest first.
func (m *Manager) RecentHistory(ctx context.Context, userID string, window int) []models.Turn {
	turns := m.History(ctx, userID)
	if window >= 0 && len(turns) > window {
		turns = turns[len(turns)-window:]
	}
	return turns
}

// RecordExchange appends a completed user/assistant pair.
func (m *Manager) RecordExchange(ctx context.Context, userID, userText, assistantText string) {
	if err := m.history.Append(ctx, userID, userText, assistantText); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("failed to record exchange")
		return
	}
	log.WithField("user_id", userID).Debug("💾 recorded exchange")
}

// ClearHistory resets the user's history. The profile is kept.
func (m *Manager) ClearHistory(ctx context.Context, userID string) {
	if err := m.history.Clear(ctx, userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("failed to clear history")
		return
	}
	log.WithField("user_id", userID).Info("🗑️ cleared history")
}

// Profile returns the user's profile or the default profile.
func (m *Manager) Profile(ctx context.Context, userID string) models.Profile {
	profile, err := m.profiles.Get(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("profile unavailable, using default profile")
		return models.NewProfile()
	}
	return profile
}

// UpdateProfile merges update and counts one completed interaction.
func (m *Manager) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) models.Profile {
	profile, err := m.profiles.Update(ctx, userID, update)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("failed to update profile")
		return m.Profile(ctx, userID)
	}
	return profile
}

// Stats returns a read-only snapshot of the user's session.
func (m *Manager) Stats(ctx context.Context, userID string) models.Stats {
	profile := m.Profile(ctx, userID)
	return models.Stats{
		ConversationCount: profile.ConversationCount,
		Name:              profile.Name,
		Interests:         profile.Interests,
		HistoryLength:     len(m.History(ctx, userID)),
	}
}

// GetActiveSessionCount returns the number of users with history, or -1 when
// the backend cannot count cheaply.
func (m *Manager) GetActiveSessionCount() int {
	if counter, ok := m.history.(interface{ SessionCount() int }); ok {
		return counter.SessionCount()
	}
	return -1
}

// Close closes the underlying stores
func (m *Manager) Close() error {
	var firstErr error
	closeStore := func(store any) {
		if closer, ok := store.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	closeStore(m.history)
	if any(m.profiles) != any(m.history) {
		closeStore(m.profiles)
	}
	return firstErr
}
