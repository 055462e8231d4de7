package lookup

import (
	"context"
	"errors"
	"strconv"

	"github.com/kasuboski/shokoz/pkg/host"
	"github.com/kasuboski/shokoz/pkg/logger"
	"go.uber.org/zap"
)

type IDKind int

const (
	IDFile IDKind = iota
	IDEpisode
	IDSeries
)

func (k IDKind) String() string {
	switch k {
	case IDFile:
		return "file"
	case IDEpisode:
		return "episode"
	case IDSeries:
		return "series"
	default:
		return "unknown"
	}
}

// Target is what a host item points at in Shoko. It is one of VideoTarget,
// SeasonTarget or SeriesTarget.
type Target interface {
	Kind() host.Kind
}

type VideoTarget struct {
	FileID    string
	EpisodeID string
}

func (VideoTarget) Kind() host.Kind { return host.KindVideo }

type SeasonTarget struct {
	SeriesID string
	Offset   int
}

func (SeasonTarget) Kind() host.Kind { return host.KindSeason }

type SeriesTarget struct {
	SeriesID string
}

func (SeriesTarget) Kind() host.Kind { return host.KindSeries }

// Index reads Shoko ids from the provider ids already attached to host items
type Index struct {
	store host.Store
}

func New(store host.Store) *Index {
	return &Index{store: store}
}

// TryResolve returns the id of the given kind attached to item. Seasons fall
// back to their parent show for the series id.
func (ix *Index) TryResolve(ctx context.Context, item *host.Item, kind IDKind) (string, bool) {
	if item == nil {
		return "", false
	}

	switch kind {
	case IDFile:
		return item.ProviderID(host.ProviderShokoFile)
	case IDEpisode:
		return item.ProviderID(host.ProviderShokoEpisode)
	case IDSeries:
		if id, ok := item.ProviderID(host.ProviderShokoSeries); ok {
			return id, true
		}
		if item.Kind != host.KindSeason || item.ParentID == nil {
			return "", false
		}
		parent, err := ix.store.GetItem(ctx, *item.ParentID)
		if err != nil {
			if !errors.Is(err, host.ErrNotFound) {
				logger.FromCtx(ctx).Warnw("failed to load parent show", zap.String("item_id", item.ID.String()), zap.Error(err))
			}
			return "", false
		}
		return parent.ProviderID(host.ProviderShokoSeries)
	default:
		return "", false
	}
}

// Target maps an item to the Shoko entity it represents
func (ix *Index) Target(ctx context.Context, item *host.Item) (Target, bool) {
	if item == nil {
		return nil, false
	}

	switch item.Kind {
	case host.KindVideo:
		fileID, fileOK := ix.TryResolve(ctx, item, IDFile)
		episodeID, episodeOK := ix.TryResolve(ctx, item, IDEpisode)
		if !fileOK || !episodeOK {
			return nil, false
		}
		return VideoTarget{FileID: fileID, EpisodeID: episodeID}, true

	case host.KindSeason:
		seriesID, ok := ix.TryResolve(ctx, item, IDSeries)
		if !ok {
			return nil, false
		}
		offset := 0
		if raw, ok := item.ProviderID(host.ProviderShokoSeasonOffset); ok {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return nil, false
			}
			offset = n
		}
		return SeasonTarget{SeriesID: seriesID, Offset: offset}, true

	case host.KindSeries:
		seriesID, ok := ix.TryResolve(ctx, item, IDSeries)
		if !ok {
			return nil, false
		}
		return SeriesTarget{SeriesID: seriesID}, true

	default:
		return nil, false
	}
}
