package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/singleflight"
)

// Outcome reports how a Loading.Get call was served
type Outcome string

const (
	OutcomeHit    Outcome = "hit"
	OutcomeMiss   Outcome = "miss"
	OutcomeShared Outcome = "shared"
)

// LoadFunc produces the value for a key on a cache miss
type LoadFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Loading is a Cache that fills itself on a miss. At most one load per key is in
// flight at a time; concurrent callers for the same key wait on that load and
// share its result. Entries live until they are invalidated. Failed loads are
// never stored; a panicking load fails like any other.
type Loading[K comparable, V any] struct {
	entries *Cache[K, V]
	group   singleflight.Group
	load    LoadFunc[K, V]

	// pending holds the token of the load allowed to store each key
	mu      sync.Mutex
	pending map[K]uint64
	next    uint64
}

// NewLoading creates a loading cache backed by load
func NewLoading[K comparable, V any](load LoadFunc[K, V]) *Loading[K, V] {
	return &Loading[K, V]{
		entries: New[K, V](),
		load:    load,
		pending: make(map[K]uint64),
	}
}

// Get returns the cached value for key or loads it. The load runs detached from
// ctx cancellation so one impatient caller does not fail everyone waiting on the
// same key; a cancelled caller still returns early with ctx.Err().
func (l *Loading[K, V]) Get(ctx context.Context, key K) (V, Outcome, error) {
	if v, ok := l.entries.Get(key); ok {
		return v, OutcomeHit, nil
	}

	ch := l.group.DoChan(flightKey(key), func() (any, error) {
		// another caller may have filled the entry between our miss and this flight
		if v, ok := l.entries.Get(key); ok {
			return v, nil
		}
		token := l.begin(key)

		var v V
		var err error
		var catcher panics.Catcher
		catcher.Try(func() {
			v, err = l.load(context.WithoutCancel(ctx), key)
		})
		if r := catcher.Recovered(); r != nil {
			l.finish(key, token, v, false)
			return v, fmt.Errorf("load of %v panicked: %w", key, r.AsError())
		}
		if err != nil {
			l.finish(key, token, v, false)
			return v, err
		}

		l.finish(key, token, v, true)
		return v, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, OutcomeMiss, ctx.Err()
	case res := <-ch:
		outcome := OutcomeMiss
		if res.Shared {
			outcome = OutcomeShared
		}
		if res.Err != nil {
			return zero, outcome, res.Err
		}
		v, _ := res.Val.(V)
		return v, outcome, nil
	}
}

// begin registers a load of key and returns its token
func (l *Loading[K, V]) begin(key K) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	l.pending[key] = l.next
	return l.next
}

// finish stores v when the load holding token is still the current one for key.
// An invalidation during the load revokes the token.
func (l *Loading[K, V]) finish(key K, token uint64, v V, store bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending[key] != token {
		return
	}
	delete(l.pending, key)
	if store {
		l.entries.Set(key, v)
	}
}

// Peek returns a cached value without loading
func (l *Loading[K, V]) Peek(key K) (V, bool) {
	return l.entries.Get(key)
}

// Invalidate drops the entry for key. A load already in flight for key finishes
// for its current waiters but is not stored. Loads of other keys are unaffected.
func (l *Loading[K, V]) Invalidate(key K) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.pending, key)
	l.group.Forget(flightKey(key))
	l.entries.Delete(key)
}

// InvalidateFunc drops every entry whose key and value match. In-flight loads
// have no value to match yet, so all of them are discarded.
func (l *Loading[K, V]) InvalidateFunc(match func(K, V) bool) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.forgetPending()
	return l.entries.DeleteFunc(func(k K, v V) bool {
		if !match(k, v) {
			return false
		}
		l.group.Forget(flightKey(k))
		return true
	})
}

// InvalidateAll drops every entry and discards in-flight loads
func (l *Loading[K, V]) InvalidateAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.forgetPending()
	l.entries.Clear()
}

func (l *Loading[K, V]) forgetPending() {
	for k := range l.pending {
		l.group.Forget(flightKey(k))
	}
	clear(l.pending)
}

// Size returns the number of stored entries
func (l *Loading[K, V]) Size() int {
	return l.entries.Size()
}

func flightKey[K comparable](key K) string {
	return fmt.Sprintf("%v", key)
}
