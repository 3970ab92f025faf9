package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avvvet/companion/internal/models"
	"github.com/redis/go-redis/v9"
)

const maxProfileTxRetries = 5

// RedisStore implements HistoryStore and ProfileStore on Redis so several
// replicas can share session state. Entries expire after ttl of inactivity.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	cap    int
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration, capacity int) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ttl, capacity), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration, capacity int) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, cap: capacity}
}

func (r *RedisStore) historyKey(userID string) string {
	return fmt.Sprintf("companion:history:%s", userID)
}

func (r *RedisStore) profileKey(userID string) string {
	return fmt.Sprintf("companion:profile:%s", userID)
}

func (r *RedisStore) Get(ctx context.Context, userID string) ([]models.Turn, error) {
	raw, err := r.client.LRange(ctx, r.historyKey(userID), 0, -1).Result()
	if err != nil {
		return []models.Turn{}, fmt.Errorf("failed to load history from Redis: %w", err)
	}

	turns := make([]models.Turn, 0, len(raw))
	for _, item := range raw {
		var turn models.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return []models.Turn{}, fmt.Errorf("failed to parse history entry: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (r *RedisStore) Append(ctx context.Context, userID, userText, assistantText string) error {
	userData, err := json.Marshal(models.Turn{Role: models.RoleUser, Content: userText})
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}
	assistantData, err := json.Marshal(models.Turn{Role: models.RoleAssistant, Content: assistantText})
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	key := r.historyKey(userID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, userData, assistantData)
		pipe.LTrim(ctx, key, int64(-r.cap), -1)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append history in Redis: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, r.historyKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Profiles exposes the profile half of the store.
func (r *RedisStore) Profiles() ProfileStore {
	return redisProfiles{r}
}

type redisProfiles struct {
	r *RedisStore
}

func (p redisProfiles) Get(ctx context.Context, userID string) (models.Profile, error) {
	return p.r.loadProfile(ctx, p.r.client, p.r.profileKey(userID))
}

// Update runs an optimistic WATCH/MULTI transaction so concurrent updates for
// the same user never lose an increment.
func (p redisProfiles) Update(ctx context.Context, userID string, update models.ProfileUpdate) (models.Profile, error) {
	r := p.r
	key := r.profileKey(userID)
	var out models.Profile

	txf := func(tx *redis.Tx) error {
		profile, err := r.loadProfile(ctx, tx, key)
		if err != nil {
			return err
		}
		applyUpdate(&profile, update)

		data, err := json.Marshal(profile)
		if err != nil {
			return fmt.Errorf("failed to marshal profile: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		if err == nil {
			out = profile
		}
		return err
	}

	for attempt := 0; attempt < maxProfileTxRetries; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return models.NewProfile(), fmt.Errorf("failed to update profile in Redis: %w", err)
	}
	return models.NewProfile(), fmt.Errorf("failed to update profile in Redis: %w", redis.TxFailedErr)
}

// stringGetter is satisfied by both *redis.Client and *redis.Tx.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisStore) loadProfile(ctx context.Context, getter stringGetter, key string) (models.Profile, error) {
	data, err := getter.Get(ctx, key).Result()
	if err == redis.Nil {
		return models.NewProfile(), nil
	}
	if err != nil {
		return models.NewProfile(), fmt.Errorf("failed to load profile from Redis: %w", err)
	}

	profile := models.NewProfile()
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return models.NewProfile(), fmt.Errorf("failed to parse profile data: %w", err)
	}
	if profile.Interests == nil {
		profile.Interests = []string{}
	}
	return profile, nil
}

// Ping verifies the Redis connection is alive.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}

var (
	_ HistoryStore = (*RedisStore)(nil)
	_ ProfileStore = redisProfiles{}
)
