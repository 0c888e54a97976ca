package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis stores each collection as a plain Redis string without expiry.
type Redis struct {
	rdb *redis.Client
}

// NewRedis wraps an existing client. The store does not own the client unless closed explicitly.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (r *Redis) Load(ctx context.Context, key string) ([]byte, bool, error) {
	blob, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis load %s: %w", key, err)
	}
	return blob, true, nil
}

func (r *Redis) Save(ctx context.Context, key string, blob []byte) error {
	if err := r.rdb.Set(ctx, key, blob, 0).Err(); err != nil {
		return fmt.Errorf("redis save %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
