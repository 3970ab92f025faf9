package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/avvvet/companion/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreWithClient(client, ttl, 8)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_HistoryCapAndOrder(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t, time.Minute)

	empty, err := store.Get(ctx, "42")
	require.NoError(t, err)
	assert.Empty(t, empty)

	for i := 0; i < 6; i++ {
		require.NoError(t, store.Append(ctx, "42", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)))
	}

	turns, err := store.Get(ctx, "42")
	require.NoError(t, err)
	require.Len(t, turns, 8)
	assert.Equal(t, models.Turn{Role: models.RoleUser, Content: "q2"}, turns[0])
	assert.Equal(t, models.Turn{Role: models.RoleAssistant, Content: "a5"}, turns[7])
}

func TestRedisStore_HistoryExpiresAndClears(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, time.Minute)

	require.NoError(t, store.Append(ctx, "42", "hi", "hello"))
	assert.Equal(t, time.Minute, mr.TTL("companion:history:42"))

	require.NoError(t, store.Clear(ctx, "42"))
	require.NoError(t, store.Clear(ctx, "unknown"))
	turns, err := store.Get(ctx, "42")
	require.NoError(t, err)
	assert.Empty(t, turns)

	require.NoError(t, store.Append(ctx, "42", "hi", "hello"))
	mr.FastForward(2 * time.Minute)
	turns, err = store.Get(ctx, "42")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestRedisStore_ProfileDefaultsAndUpdate(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t, 0)
	profiles := store.Profiles()

	profile, err := profiles.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, models.NewProfile(), profile)

	name := "Анна"
	profile, err = profiles.Update(ctx, "42", models.ProfileUpdate{Name: &name, Interests: []string{"музыка"}})
	require.NoError(t, err)
	assert.Equal(t, 1, profile.ConversationCount)

	profile, err = profiles.Update(ctx, "42", models.ProfileUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "Анна", profile.Name)
	assert.Equal(t, []string{"музыка"}, profile.Interests)
	assert.Equal(t, "neutral", profile.Mood)
	assert.Equal(t, 2, profile.ConversationCount)

	stored, err := profiles.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, profile, stored)
}

func TestRedisStore_ConcurrentProfileUpdates(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t, time.Minute)
	profiles := store.Profiles()

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := profiles.Update(ctx, "42", models.ProfileUpdate{}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	profile, err := profiles.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, 3, profile.ConversationCount)
}

func TestRedisStore_CorruptProfileIsAnError(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, time.Minute)
	require.NoError(t, mr.Set("companion:profile:42", "{not json"))

	_, err := store.Profiles().Get(ctx, "42")
	assert.Error(t, err)
}

func TestRedisStore_ConcurrentAddInterestsKeepsEveryLabel(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t, time.Minute)
	profiles := store.Profiles()
	labels := []string{"музыка", "путешествия", "кино"}

	var wg sync.WaitGroup
	errs := make(chan error, len(labels))
	for _, label := range labels {
		wg.Add(1)
		go func(label string) {
			defer wg.Done()
			if _, err := profiles.Update(ctx, "42", models.ProfileUpdate{AddInterests: []string{label}}); err != nil {
				errs <- err
			}
		}(label)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	profile, err := profiles.Get(ctx, "42")
	require.NoError(t, err)
	assert.ElementsMatch(t, labels, profile.Interests)
	assert.Equal(t, len(labels), profile.ConversationCount)
}
