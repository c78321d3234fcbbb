package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "sched:session:"
	redisTimeout   = 3 * time.Second
)

// RedisStore keeps sessions as JSON values. A positive ttl is applied as key
// expiry and refreshed on every Save.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed Store.
func NewRedisStore(client redis.Cmdable, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, false, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, true, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session id is required")
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	sess.UpdatedAt = time.Now()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	if err := s.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
