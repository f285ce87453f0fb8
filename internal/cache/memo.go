// Package cache memoizes values loaded from slow sources.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

const memoKey = "value"

// LoadFunc produces the memoized value.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Hooks observe memo activity. Nil hooks are skipped.
type Hooks struct {
	Hit    func()
	Miss   func()
	Loaded func(elapsed time.Duration, err error)
}

// Options configure a Memo.
type Options struct {
	// TTL bounds how long a loaded value is served. Zero keeps it for the
	// life of the process.
	TTL   time.Duration
	Clock clockwork.Clock
	Hooks Hooks
}

// Memo is a load-once, read-only handle on a value. Concurrent first calls
// share a single load and failed loads are never cached.
type Memo[T any] struct {
	load  LoadFunc[T]
	ttl   time.Duration
	clock clockwork.Clock
	hooks Hooks
	group singleflight.Group

	mu       sync.RWMutex
	value    T
	loaded   bool
	loadedAt time.Time
	gen      uint64
}

// NewMemo wraps load.
func NewMemo[T any](load LoadFunc[T], opts Options) *Memo[T] {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Memo[T]{
		load:  load,
		ttl:   opts.TTL,
		clock: opts.Clock,
		hooks: opts.Hooks,
	}
}

// Get returns the memoized value, loading it when absent or expired.
// A cancelled ctx abandons the wait but not a load other callers share.
func (m *Memo[T]) Get(ctx context.Context) (T, error) {
	if v, ok := m.cached(); ok {
		call(m.hooks.Hit)
		return v, nil
	}
	call(m.hooks.Miss)

	ch := m.group.DoChan(memoKey, func() (any, error) {
		return m.fill(context.WithoutCancel(ctx))
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// Loaded reports whether a fresh value is currently held.
func (m *Memo[T]) Loaded() bool {
	_, ok := m.cached()
	return ok
}

// Invalidate drops the held value; the next Get reloads.
func (m *Memo[T]) Invalidate() {
	m.mu.Lock()
	var zero T
	m.value = zero
	m.loaded = false
	m.gen++
	m.mu.Unlock()
	m.group.Forget(memoKey)
}

func (m *Memo[T]) cached() (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.loaded {
		var zero T
		return zero, false
	}
	if m.ttl > 0 && m.clock.Since(m.loadedAt) >= m.ttl {
		var zero T
		return zero, false
	}
	return m.value, true
}

func (m *Memo[T]) fill(ctx context.Context) (any, error) {
	if v, ok := m.cached(); ok {
		return v, nil
	}
	m.mu.RLock()
	gen := m.gen
	m.mu.RUnlock()

	start := m.clock.Now()
	v, err := m.load(ctx)
	if m.hooks.Loaded != nil {
		m.hooks.Loaded(m.clock.Since(start), err)
	}
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	// An Invalidate during the load wins; the result still reaches the
	// callers that asked for it.
	if m.gen == gen {
		m.value = v
		m.loaded = true
		m.loadedAt = m.clock.Now()
	}
	m.mu.Unlock()
	return v, nil
}

func call(f func()) {
	if f != nil {
		f()
	}
}
