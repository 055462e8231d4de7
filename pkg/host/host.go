package host

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found in storage")

type Kind string

const (
	KindVideo  Kind = "video"
	KindSeason Kind = "season"
	KindSeries Kind = "series"
)

func (k Kind) Valid() bool {
	switch k {
	case KindVideo, KindSeason, KindSeries:
		return true
	}
	return false
}

// Provider id keys attached to host items
const (
	ProviderShokoSeries       = "Shoko Series"
	ProviderShokoSeasonOffset = "Shoko Season Offset"
	ProviderShokoEpisode      = "Shoko Episode"
	ProviderShokoFile         = "Shoko File"
	ProviderAniDB             = "AniDB"
)

// Item is a host library entity
type Item struct {
	ID       uuid.UUID  `json:"id"`
	Kind     Kind       `json:"kind"`
	ParentID *uuid.UUID `json:"parentId,omitempty"`
	Name     string     `json:"name"`
	// IndexNumber is the season number for seasons and the episode number for videos
	IndexNumber     *int              `json:"indexNumber,omitempty"`
	PresentationKey string            `json:"presentationKey,omitempty"`
	ProviderIDs     map[string]string `json:"providerIds,omitempty"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// ProviderID returns a non-empty provider id
func (i Item) ProviderID(key string) (string, bool) {
	v, ok := i.ProviderIDs[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// UserData is the watch state a host keeps per user and item
type UserData struct {
	UserID                uuid.UUID  `json:"userId"`
	ItemID                uuid.UUID  `json:"itemId"`
	Played                bool       `json:"played"`
	PlaybackPositionTicks int64      `json:"playbackPositionTicks"`
	PlayCount             int        `json:"playCount"`
	LastPlayedDate        *time.Time `json:"lastPlayedDate,omitempty"`
	IsFavorite            bool       `json:"isFavorite"`
	// Rating is on a 0-10 scale
	Rating    *float64  `json:"rating,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store reads and writes host items and per-user watch state
type Store interface {
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	ListItems(ctx context.Context, kind Kind) ([]*Item, error)
	SaveItem(ctx context.Context, item Item) error
	SetProviderIDs(ctx context.Context, id uuid.UUID, ids map[string]string) error

	GetUserData(ctx context.Context, userID, itemID uuid.UUID) (*UserData, error)
	SaveUserData(ctx context.Context, data UserData) error
}
