// Package lock guards batch runs that must not overlap across replicas.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	redis "github.com/redis/go-redis/v9"
)

var (
	ErrEmptyKey   = errors.New("lock key is empty")
	ErrInvalidTTL = errors.New("lock ttl must be positive")
)

// Lease is a held lock.
type Lease interface {
	Release(ctx context.Context) error
}

type Locker interface {
	// TryLock attempts to take key once. A lock held elsewhere is reported
	// as ok=false with a nil error.
	TryLock(ctx context.Context, key string, ttl time.Duration) (Lease, bool, error)
}

type RedisLocker struct {
	client *redislock.Client
}

func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: redislock.New(client)}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (Lease, bool, error) {
	if err := validate(key, ttl); err != nil {
		return nil, false, err
	}
	held, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return redisLease{lock: held}, true, nil
}

type redisLease struct {
	lock *redislock.Lock
}

func (l redisLease) Release(ctx context.Context) error {
	err := l.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}

// NoopLocker always grants the lock. Used for single-instance deployments.
type NoopLocker struct{}

func (NoopLocker) TryLock(_ context.Context, key string, ttl time.Duration) (Lease, bool, error) {
	if err := validate(key, ttl); err != nil {
		return nil, false, err
	}
	return noopLease{}, true, nil
}

type noopLease struct{}

func (noopLease) Release(context.Context) error { return nil }

func validate(key string, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	return nil
}
