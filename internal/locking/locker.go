// Package locking serializes writers per key with a bounded wait.
//
// Callers pass every key they need in one Acquire call. Keys are deduplicated and
// taken in sorted order, so two callers asking for overlapping key sets cannot deadlock.
package locking

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

const DefaultWait = 2 * time.Second

// ErrTimeout is returned when a key could not be acquired within the configured wait.
var ErrTimeout = errors.New("timed out waiting for lock")

// Release frees every key taken by the Acquire call that returned it. It is safe to call more than once.
type Release func()

type Locker interface {
	Acquire(ctx context.Context, keys ...string) (Release, error)
}

// Normalize returns keys sorted and without duplicates or empty entries.
func Normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// waitContext bounds ctx by wait. The returned error mapper turns our own deadline into ErrTimeout
// while passing a cancellation of the parent through.
func waitContext(parent context.Context, wait time.Duration) (context.Context, context.CancelFunc, func(error) error) {
	if wait <= 0 {
		wait = DefaultWait
	}
	ctx, cancel := context.WithTimeout(parent, wait)
	mapErr := func(err error) error {
		if parent.Err() != nil {
			return parent.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return err
	}
	return ctx, cancel, mapErr
}

func once(fn func()) Release {
	var o sync.Once
	return func() { o.Do(fn) }
}
