package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisEventSelectionStore keeps the session's active event selection.
// Losing a selection is harmless: the client is asked to pick again.
type RedisEventSelectionStore struct {
	client *redis.Client
}

func NewRedisEventSelectionStore(client *redis.Client) *RedisEventSelectionStore {
	return &RedisEventSelectionStore{client: client}
}

func (s *RedisEventSelectionStore) Put(ctx context.Context, sessionID, eventID uuid.UUID, ttl time.Duration) error {
	return s.client.Set(ctx, "portal:selection:"+sessionID.String(), eventID.String(), ttl).Err()
}

func (s *RedisEventSelectionStore) Get(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, bool, error) {
	raw, err := s.client.Get(ctx, "portal:selection:"+sessionID.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, err
	}
	eventID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, nil
	}
	return eventID, true, nil
}

func (s *RedisEventSelectionStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return s.client.Del(ctx, "portal:selection:"+sessionID.String()).Err()
}
