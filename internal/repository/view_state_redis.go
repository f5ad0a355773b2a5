package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"optionstracker/internal/domain"
)

const viewStateKeyPrefix = "optionstracker:view_state:"

// RedisViewStateRepository stores view states as JSON values that expire
// after ttl without a write.
type RedisViewStateRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisViewStateRepository creates a new RedisViewStateRepository
func NewRedisViewStateRepository(client *redis.Client, ttl time.Duration) *RedisViewStateRepository {
	return &RedisViewStateRepository{client: client, ttl: ttl}
}

func viewStateKey(sessionID uuid.UUID) string {
	return viewStateKeyPrefix + sessionID.String()
}

// Get retrieves the state of a session
func (r *RedisViewStateRepository) Get(ctx context.Context, sessionID uuid.UUID) (*domain.ViewState, error) {
	raw, err := r.client.Get(ctx, viewStateKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrViewStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get view state: %w", err)
	}

	st := &domain.ViewState{}
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("failed to decode view state: %w", err)
	}
	return st, nil
}

// Save writes the state and resets its expiry
func (r *RedisViewStateRepository) Save(ctx context.Context, state *domain.ViewState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode view state: %w", err)
	}
	if err := r.client.Set(ctx, viewStateKey(state.SessionID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save view state: %w", err)
	}
	return nil
}

// DeleteIdle scans for states whose updated_at is older than before. Keys
// normally expire on their own; this catches keys written without a ttl.
func (r *RedisViewStateRepository) DeleteIdle(ctx context.Context, before time.Time) (int64, error) {
	var (
		n    int64
		iter = r.client.Scan(ctx, 0, viewStateKeyPrefix+"*", 100).Iterator()
	)
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := r.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return n, fmt.Errorf("failed to read view state %s: %w", key, err)
		}

		var meta struct {
			UpdatedAt time.Time `json:"updated_at"`
		}
		if err := json.Unmarshal(raw, &meta); err != nil || meta.UpdatedAt.Before(before) {
			deleted, err := r.client.Del(ctx, key).Result()
			if err != nil {
				return n, fmt.Errorf("failed to delete view state %s: %w", key, err)
			}
			n += deleted
		}
	}
	if err := iter.Err(); err != nil {
		return n, fmt.Errorf("failed to scan view states: %w", err)
	}
	return n, nil
}

// Ping checks the connection
func (r *RedisViewStateRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
