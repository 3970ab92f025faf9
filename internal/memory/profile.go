package memory

import (
	"context"

	"github.com/avvvet/companion/internal/models"
)

// InMemoryProfiles keeps user profiles for the process lifetime.
type InMemoryProfiles struct {
	profiles *shardedMap[models.Profile]
}

// NewInMemoryProfiles creates a profile store guarded by the given number of
// lock shards.
func NewInMemoryProfiles(shards int) *InMemoryProfiles {
	return &InMemoryProfiles{profiles: newShardedMap[models.Profile](shards)}
}

func (p *InMemoryProfiles) Get(_ context.Context, userID string) (models.Profile, error) {
	profile := models.NewProfile()
	p.profiles.with(userID, func(entries map[string]models.Profile) {
		if stored, ok := entries[userID]; ok {
			profile = stored.Clone()
		}
	})
	return profile, nil
}

func (p *InMemoryProfiles) Update(_ context.Context, userID string, update models.ProfileUpdate) (models.Profile, error) {
	var out models.Profile
	p.profiles.with(userID, func(entries map[string]models.Profile) {
		profile, ok := entries[userID]
		if !ok {
			profile = models.NewProfile()
		}
		profile = profile.Clone()
		applyUpdate(&profile, update)
		entries[userID] = profile
		out = profile.Clone()
	})
	return out, nil
}
