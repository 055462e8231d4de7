package host

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestItem_ProviderID(t *testing.T) {
	item := Item{
		ID:   uuid.New(),
		Kind: KindVideo,
		ProviderIDs: map[string]string{
			ProviderShokoFile:    "10",
			ProviderShokoEpisode: "",
		},
	}

	id, ok := item.ProviderID(ProviderShokoFile)
	assert.True(t, ok)
	assert.Equal(t, "10", id)

	_, ok = item.ProviderID(ProviderShokoEpisode)
	assert.False(t, ok)

	_, ok = Item{}.ProviderID(ProviderShokoSeries)
	assert.False(t, ok)
}

func TestKind_Valid(t *testing.T) {
	assert.True(t, KindSeason.Valid())
	assert.False(t, Kind("movie").Valid())
}

func TestLocalBus(t *testing.T) {
	t.Run("delivers to every subscriber", func(t *testing.T) {
		bus := NewLocalBus()
		var a, b atomic.Int32

		subA := bus.Subscribe(func(ctx context.Context, e Event) { a.Add(1) })
		subB := bus.Subscribe(func(ctx context.Context, e Event) { b.Add(1) })
		defer subA.Release()
		defer subB.Release()

		bus.Publish(context.Background(), Event{Type: EventItemAdded})
		assert.Equal(t, int32(1), a.Load())
		assert.Equal(t, int32(1), b.Load())
	})

	t.Run("release stops delivery and is idempotent", func(t *testing.T) {
		bus := NewLocalBus()
		var got atomic.Int32

		sub := bus.Subscribe(func(ctx context.Context, e Event) { got.Add(1) })
		other := bus.Subscribe(func(ctx context.Context, e Event) {})
		assert.Equal(t, 2, bus.Subscribers())

		sub.Release()
		sub.Release()
		assert.Equal(t, 1, bus.Subscribers())

		bus.Publish(context.Background(), Event{Type: EventUserDataSaved})
		assert.Zero(t, got.Load())

		other.Release()
		assert.Zero(t, bus.Subscribers())
	})

	t.Run("handler may release its own subscription", func(t *testing.T) {
		bus := NewLocalBus()
		var sub Subscription
		sub = bus.Subscribe(func(ctx context.Context, e Event) { sub.Release() })

		bus.Publish(context.Background(), Event{Type: EventItemUpdated})
		assert.Zero(t, bus.Subscribers())
	})
}
