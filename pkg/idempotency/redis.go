package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

const (
	responsePrefix = "idem:resp:"
	lockPrefix     = "idem:lock:"
)

var _ Store = (*RedisStore)(nil)

// RedisStore implementa Store sobre Redis: respuestas como JSON con TTL, locks con redislock.
type RedisStore struct {
	rdb    redis.UniversalClient
	locker *redislock.Client
}

// NewRedisStore construye el store sobre un cliente ya conectado.
func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb, locker: redislock.New(rdb)}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Response, error) {
	raw, err := s.rdb.Get(ctx, responsePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency: leer %s: %w", key, err)
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("idempotency: decodificar %s: %w", key, err)
	}
	return &resp, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, resp *Response, ttl time.Duration) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("idempotency: codificar %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, responsePrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("idempotency: guardar %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Lock(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	lock, err := s.locker.Obtain(ctx, lockPrefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency: lock %s: %w", key, err)
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}
