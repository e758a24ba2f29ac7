// Package keylock serializes work per key, for example per phone number.
//
// Memory locks only coordinate goroutines of one process. Redis locks
// coordinate every instance sharing the same redis.
package keylock

import (
	"context"
	"errors"
	"sync"
)

// ErrLockBusy is returned when a lock could not be acquired before the context ended.
var ErrLockBusy = errors.New("keylock: lock is held by another operation")

// Locker acquires an exclusive lock for key. The returned func releases it and is
// safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type memoryEntry struct {
	ch   chan struct{}
	refs int
}

// Memory is an in-process Locker backed by one channel semaphore per key.
type Memory struct {
	mu    sync.Mutex
	locks map[string]*memoryEntry
}

// NewMemory returns an empty Memory locker.
func NewMemory() *Memory {
	return &Memory{locks: make(map[string]*memoryEntry)}
}

// Lock blocks until key is free or ctx is done.
func (m *Memory) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &memoryEntry{ch: make(chan struct{}, 1)}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e)
		return nil, errors.Join(ErrLockBusy, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			m.release(key, e)
		})
	}, nil
}

// Len returns the number of keys currently held or awaited.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

func (m *Memory) release(key string, e *memoryEntry) {
	m.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
	m.mu.Unlock()
}
