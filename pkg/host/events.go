package host

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type EventType string

const (
	EventItemAdded        EventType = "item_added"
	EventItemUpdated      EventType = "item_updated"
	EventItemRemoved      EventType = "item_removed"
	EventUserDataSaved    EventType = "user_data_saved"
	EventLibraryRefreshed EventType = "library_refreshed"
)

type Reason string

const (
	ReasonNone             Reason = ""
	ReasonImport           Reason = "import"
	ReasonMetadataRefresh  Reason = "metadata_refresh"
	ReasonPlaybackStart    Reason = "playback_start"
	ReasonPlaybackProgress Reason = "playback_progress"
	ReasonPlaybackFinished Reason = "playback_finished"
	ReasonTogglePlayed     Reason = "toggle_played"
	ReasonUpdateUserRating Reason = "update_user_rating"
)

// Event is something that happened in the host library
type Event struct {
	Type   EventType `json:"type" validate:"required,oneof=item_added item_updated item_removed user_data_saved library_refreshed"`
	Reason Reason    `json:"reason,omitempty"`
	ItemID uuid.UUID `json:"itemId"`
	UserID uuid.UUID `json:"userId,omitempty"`
	// Item is the stored state for item_added and item_updated events
	Item *Item `json:"item,omitempty"`
	// UserData is the saved state for user_data_saved events
	UserData *UserData `json:"userData,omitempty"`
}

type Handler func(ctx context.Context, event Event)

// Subscription is a registered handler. Release may be called more than once.
type Subscription interface {
	Release()
}

type Bus interface {
	Subscribe(handler Handler) Subscription
	Publish(ctx context.Context, event Event)
}

// LocalBus dispatches events to its subscribers on the publishing goroutine
type LocalBus struct {
	mu       sync.RWMutex
	next     uint64
	handlers map[uint64]Handler
}

func NewLocalBus() *LocalBus {
	return &LocalBus{
		handlers: make(map[uint64]Handler),
	}
}

func (b *LocalBus) Subscribe(handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.handlers[id] = handler

	return &subscription{bus: b, id: id}
}

func (b *LocalBus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, event)
	}
}

// Subscribers returns the number of active subscriptions
func (b *LocalBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

func (b *LocalBus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, id)
}

type subscription struct {
	bus  *LocalBus
	id   uint64
	once sync.Once
}

func (s *subscription) Release() {
	s.once.Do(func() {
		s.bus.remove(s.id)
	})
}
