package locking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salonbook/pkg/logger"

	"github.com/google/uuid"
)

const (
	DefaultTTL          = 10 * time.Second
	DefaultPollInterval = 25 * time.Millisecond
	releaseTimeout      = 3 * time.Second
)

// Store is a shared lock table, such as a Mongo collection or a Redis keyspace.
type Store interface {
	// TryAcquire claims key for owner until ttl elapses. It returns false without error
	// when another owner holds an unexpired claim.
	TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	// Release drops the claim only if owner still holds it.
	Release(ctx context.Context, key, owner string) error
}

type StoreLockerConfig struct {
	Wait         time.Duration
	TTL          time.Duration
	PollInterval time.Duration
	Log          *logger.Logger
}

// StoreLocker polls a Store until each key is claimed or the wait runs out.
// The TTL bounds how long a crashed holder can block a key.
type StoreLocker struct {
	store Store
	cfg   StoreLockerConfig
}

func NewStoreLocker(store Store, cfg StoreLockerConfig) *StoreLocker {
	if cfg.Wait <= 0 {
		cfg.Wait = DefaultWait
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &StoreLocker{store: store, cfg: cfg}
}

func (l *StoreLocker) Acquire(ctx context.Context, keys ...string) (Release, error) {
	keys = Normalize(keys)
	owner := uuid.NewString()
	ctx, cancel, mapErr := waitContext(ctx, l.cfg.Wait)
	defer cancel()

	held := make([]string, 0, len(keys))
	releaseHeld := func() {
		for i := len(held) - 1; i >= 0; i-- {
			l.release(held[i], owner)
		}
	}

	for _, key := range keys {
		if err := l.acquireOne(ctx, key, owner); err != nil {
			releaseHeld()
			return nil, mapErr(err)
		}
		held = append(held, key)
	}

	return once(releaseHeld), nil
}

func (l *StoreLocker) acquireOne(ctx context.Context, key, owner string) error {
	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.store.TryAcquire(ctx, key, owner, l.cfg.TTL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *StoreLocker) release(key, owner string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	if err := l.store.Release(ctx, key, owner); err != nil && l.cfg.Log != nil {
		l.cfg.Log.Warn("Failed to release lock, it will expire on its own",
			"key", key,
			"ttl", l.cfg.TTL,
			"error", err,
		)
	}
}

// IsTimeout reports whether err came from a bounded lock wait.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
