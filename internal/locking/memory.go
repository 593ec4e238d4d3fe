package locking

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	sem  chan struct{}
	refs int
}

// MemoryLocker keeps one semaphore per key inside the process. Entries are dropped once no
// goroutine holds or waits for them.
type MemoryLocker struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	wait    time.Duration
}

func NewMemoryLocker(wait time.Duration) *MemoryLocker {
	return &MemoryLocker{
		entries: make(map[string]*memoryEntry),
		wait:    wait,
	}
}

func (m *MemoryLocker) Acquire(ctx context.Context, keys ...string) (Release, error) {
	keys = Normalize(keys)
	ctx, cancel, mapErr := waitContext(ctx, m.wait)
	defer cancel()

	held := make([]string, 0, len(keys))
	releaseHeld := func() {
		for i := len(held) - 1; i >= 0; i-- {
			m.unlock(held[i])
		}
	}

	for _, key := range keys {
		if err := m.lock(ctx, key); err != nil {
			releaseHeld()
			return nil, mapErr(err)
		}
		held = append(held, key)
	}

	return once(releaseHeld), nil
}

func (m *MemoryLocker) lock(ctx context.Context, key string) error {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &memoryEntry{sem: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		m.unref(key)
		return ctx.Err()
	}
}

func (m *MemoryLocker) unlock(key string) {
	m.mu.Lock()
	e := m.entries[key]
	m.mu.Unlock()

	<-e.sem
	m.unref(key)
}

func (m *MemoryLocker) unref(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entries[key]
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}

func (m *MemoryLocker) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
