package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoading_Get(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	l := NewLoading(func(ctx context.Context, key string) (int, error) {
		calls.Add(1)
		return len(key), nil
	})

	v, outcome, err := l.Get(ctx, "four")
	require.NoError(t, err)
	assert.Equal(t, 4, v)
	assert.Equal(t, OutcomeMiss, outcome)

	v, outcome, err = l.Get(ctx, "four")
	require.NoError(t, err)
	assert.Equal(t, 4, v)
	assert.Equal(t, OutcomeHit, outcome)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLoading_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	wantErr := errors.New("expected testing error")
	var calls atomic.Int32
	l := NewLoading(func(ctx context.Context, key string) (int, error) {
		if calls.Add(1) == 1 {
			return 0, wantErr
		}
		return 7, nil
	})

	_, _, err := l.Get(ctx, "key")
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 0, l.Size())

	v, _, err := l.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestLoading_SingleFlight(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	var calls atomic.Int32

	l := NewLoading(func(ctx context.Context, key string) (*string, error) {
		calls.Add(1)
		<-release
		v := "value-" + key
		return &v, nil
	})

	const n = 25
	results := make([]*string, n)
	var wg sync.WaitGroup
	var started sync.WaitGroup
	started.Add(n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started.Done()
			v, _, err := l.Get(ctx, "show")
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	started.Wait()
	// give every caller a chance to join the in-flight load
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestLoading_Invalidate(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	l := NewLoading(func(ctx context.Context, key int) (int32, error) {
		return calls.Add(1), nil
	})

	v, _, err := l.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)

	l.Invalidate(1)
	_, ok := l.Peek(1)
	assert.False(t, ok)

	v, _, err = l.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)

	_, _, _ = l.Get(ctx, 2)
	_, _, _ = l.Get(ctx, 3)
	removed := l.InvalidateFunc(func(k int, _ int32) bool { return k >= 2 })
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, l.Size())

	l.InvalidateAll()
	assert.Equal(t, 0, l.Size())
}

func TestLoading_InvalidateDuringLoad(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	l := NewLoading(func(ctx context.Context, key string) (string, error) {
		close(started)
		<-release
		return "stale", nil
	})

	done := make(chan string)
	go func() {
		v, _, _ := l.Get(ctx, "show")
		done <- v
	}()

	<-started
	l.Invalidate("show")
	close(release)

	assert.Equal(t, "stale", <-done)
	_, ok := l.Peek("show")
	assert.False(t, ok, "a load that raced an invalidation must not be stored")
}

func TestLoading_InvalidateOtherKeyDuringLoad(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	l := NewLoading(func(ctx context.Context, key string) (string, error) {
		if key == "slow" {
			close(started)
			<-release
		}
		return "value-" + key, nil
	})

	_, _, err := l.Get(ctx, "fast")
	require.NoError(t, err)

	done := make(chan string)
	go func() {
		v, _, _ := l.Get(ctx, "slow")
		done <- v
	}()

	<-started
	l.Invalidate("fast")
	close(release)

	assert.Equal(t, "value-slow", <-done)
	v, ok := l.Peek("slow")
	assert.True(t, ok, "invalidating one key must not discard loads of another")
	assert.Equal(t, "value-slow", v)
	_, ok = l.Peek("fast")
	assert.False(t, ok)
}

func TestLoading_ReloadAfterInvalidateDuringLoad(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	var calls atomic.Int32
	l := NewLoading(func(ctx context.Context, key string) (int32, error) {
		n := calls.Add(1)
		if n == 1 {
			started <- struct{}{}
			<-release
		}
		return n, nil
	})

	first := make(chan int32)
	go func() {
		v, _, _ := l.Get(ctx, "show")
		first <- v
	}()
	<-started
	l.Invalidate("show")

	// the invalidation forgot the old flight so this load starts fresh and wins
	v, _, err := l.Get(ctx, "show")
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)

	close(release)
	assert.Equal(t, int32(1), <-first)

	stored, ok := l.Peek("show")
	require.True(t, ok)
	assert.Equal(t, int32(2), stored, "the older load must not overwrite the newer one")
}

func TestLoading_CallerCancellation(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	l := NewLoading(func(ctx context.Context, key string) (string, error) {
		<-release
		return "late", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := l.Get(ctx, "show")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoading_PanickingLoad(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	l := NewLoading(func(ctx context.Context, key string) (string, error) {
		if calls.Add(1) == 1 {
			panic("boom")
		}
		return "ok", nil
	})

	_, _, err := l.Get(ctx, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.Equal(t, 0, l.Size())

	v, _, err := l.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}
