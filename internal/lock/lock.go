// Package lock provides short-lived distributed locks.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrNotObtained is returned when another holder owns the key.
var ErrNotObtained = errors.New("lock not obtained")

type Lock interface {
	Release(ctx context.Context) error
}

// Redis obtains locks through redislock.
type Redis struct {
	client *redislock.Client
}

func NewRedis(rdb redis.UniversalClient) *Redis {
	return &Redis{client: redislock.New(rdb)}
}

func (r *Redis) Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	l, err := r.client.Obtain(ctx, key, ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ErrNotObtained
		}

		return nil, fmt.Errorf("obtaining lock %s: %w", key, err)
	}

	return l, nil
}

// Noop grants every lock. Used when redis is not configured.
type Noop struct{}

func (Noop) Obtain(context.Context, string, time.Duration) (Lock, error) {
	return noopLock{}, nil
}

type noopLock struct{}

func (noopLock) Release(context.Context) error { return nil }
