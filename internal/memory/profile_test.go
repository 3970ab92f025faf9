package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/avvvet/companion/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestInMemoryProfiles_DefaultForUnknownUser(t *testing.T) {
	p := NewInMemoryProfiles(4)

	profile, err := p.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, models.NewProfile(), profile)
	assert.Equal(t, "neutral", profile.Mood)
	assert.Empty(t, profile.Name)
	assert.Zero(t, profile.ConversationCount)
}

func TestInMemoryProfiles_UpdateAlwaysIncrementsByOne(t *testing.T) {
	ctx := context.Background()
	p := NewInMemoryProfiles(4)

	updates := []models.ProfileUpdate{
		{},
		{Name: strPtr("Анна")},
		{Interests: []string{"музыка"}},
		{Mood: strPtr("happy")},
		{Name: strPtr("Анна"), Interests: []string{"музыка", "путешествия"}},
	}
	for i, u := range updates {
		profile, err := p.Update(ctx, "u", u)
		require.NoError(t, err)
		assert.Equal(t, i+1, profile.ConversationCount)
	}

	profile, _ := p.Get(ctx, "u")
	assert.Equal(t, "Анна", profile.Name)
	assert.Equal(t, []string{"музыка", "путешествия"}, profile.Interests)
	assert.Equal(t, "happy", profile.Mood)
	assert.Equal(t, 5, profile.ConversationCount)
}

func TestInMemoryProfiles_UnsetFieldsAreKept(t *testing.T) {
	ctx := context.Background()
	p := NewInMemoryProfiles(4)
	_, _ = p.Update(ctx, "u", models.ProfileUpdate{Name: strPtr("Олег"), Interests: []string{"кино"}})

	profile, err := p.Update(ctx, "u", models.ProfileUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "Олег", profile.Name)
	assert.Equal(t, []string{"кино"}, profile.Interests)
}

func TestInMemoryProfiles_InterestsNeverDuplicate(t *testing.T) {
	p := NewInMemoryProfiles(4)
	profile, err := p.Update(context.Background(), "u", models.ProfileUpdate{Interests: []string{"музыка", "кино", "музыка"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"музыка", "кино"}, profile.Interests)
}

func TestInMemoryProfiles_ReturnedProfileIsDetached(t *testing.T) {
	ctx := context.Background()
	p := NewInMemoryProfiles(4)
	profile, _ := p.Update(ctx, "u", models.ProfileUpdate{Interests: []string{"музыка"}})
	profile.Interests[0] = "mutated"

	stored, _ := p.Get(ctx, "u")
	assert.Equal(t, []string{"музыка"}, stored.Interests)
}

func TestInMemoryProfiles_ConcurrentUpdatesCountEveryCall(t *testing.T) {
	ctx := context.Background()
	p := NewInMemoryProfiles(2)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.Update(ctx, "u", models.ProfileUpdate{})
		}()
	}
	wg.Wait()

	profile, _ := p.Get(ctx, "u")
	assert.Equal(t, 100, profile.ConversationCount)
}

func TestInMemoryProfiles_AddInterestsMergesWithoutDuplicates(t *testing.T) {
	ctx := context.Background()
	p := NewInMemoryProfiles(4)

	_, _ = p.Update(ctx, "u", models.ProfileUpdate{AddInterests: []string{"музыка"}})
	profile, err := p.Update(ctx, "u", models.ProfileUpdate{AddInterests: []string{"кино", "музыка", "кино"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"музыка", "кино"}, profile.Interests)
	assert.Equal(t, 2, profile.ConversationCount)
}

func TestInMemoryProfiles_ConcurrentAddInterestsKeepsEveryLabel(t *testing.T) {
	ctx := context.Background()
	p := NewInMemoryProfiles(2)
	labels := []string{"музыка", "путешествия", "искусство", "фотография", "кулинария", "книги", "кино", "спорт"}

	var wg sync.WaitGroup
	for _, label := range labels {
		wg.Add(1)
		go func(label string) {
			defer wg.Done()
			_, _ = p.Update(ctx, "u", models.ProfileUpdate{AddInterests: []string{label}})
		}(label)
	}
	wg.Wait()

	profile, _ := p.Get(ctx, "u")
	assert.ElementsMatch(t, labels, profile.Interests)
	assert.Equal(t, len(labels), profile.ConversationCount)
}
