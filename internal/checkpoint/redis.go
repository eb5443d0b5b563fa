package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares attempt progress across server instances. Entries expire
// on their own; a student who walks away simply restarts at the durable
// answers in the quiz store.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(attemptID string) string {
	return "testpad:attempt:" + attemptID
}

func (s *RedisStore) Save(ctx context.Context, attemptID string, p Progress) error {
	buf, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(attemptID), buf, s.ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, attemptID string) (Progress, bool, error) {
	raw, err := s.client.Get(ctx, s.key(attemptID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Progress{}, false, nil
	}
	if err != nil {
		return Progress{}, false, err
	}
	var p Progress
	if err := json.Unmarshal(raw, &p); err != nil {
		return Progress{}, false, err
	}
	return p, true, nil
}

func (s *RedisStore) Clear(ctx context.Context, attemptID string) error {
	return s.client.Del(ctx, s.key(attemptID)).Err()
}
