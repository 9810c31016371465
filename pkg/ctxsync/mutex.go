// Package ctxsync provides synchronization primitives whose blocking calls can
// be abandoned through a [context.Context].
package ctxsync

import (
	"context"
)

// A Mutex is a mutual exclusion lock that can be acquired with a deadline.
// The zero value is not usable, use [NewMutex].
type Mutex struct {
	sem chan struct{}
}

// NewMutex creates a new unlocked Mutex.
func NewMutex() *Mutex {
	return &Mutex{sem: make(chan struct{}, 1)}
}

// Lock locks m, blocking until it is available.
func (m *Mutex) Lock() {
	_ = m.LockWithContext(context.Background())
}

// LockWithContext locks m, or returns the context error if ctx is done first.
func (m *Mutex) LockWithContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case m.sem <- struct{}{}:
		return nil
	}
}

// TryLock tries to lock m and reports whether it succeeded.
func (m *Mutex) TryLock() bool {
	select {
	case m.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

// Unlock unlocks m. Unlocking an unlocked Mutex panics.
func (m *Mutex) Unlock() {
	select {
	case <-m.sem:
	default:
		panic("ctxsync: unlock of unlocked mutex")
	}
}

// Do runs fn while holding m. fn is not called if m could not be acquired
// before ctx is done.
func (m *Mutex) Do(ctx context.Context, fn func() error) error {
	if err := m.LockWithContext(ctx); err != nil {
		return err
	}
	defer m.Unlock()
	return fn()
}
