package manager

import (
	"context"

	"github.com/kasuboski/shokoz/pkg/host"
	"github.com/kasuboski/shokoz/pkg/logger"
	"github.com/kasuboski/shokoz/pkg/lookup"
	"go.uber.org/zap"
)

// CacheInvalidator drops cached shows when the host library changes
type CacheInvalidator struct {
	resolver *ShowResolver
	store    host.Store
	index    *lookup.Index
}

func NewCacheInvalidator(resolver *ShowResolver, store host.Store) *CacheInvalidator {
	return &CacheInvalidator{
		resolver: resolver,
		store:    store,
		index:    lookup.New(store),
	}
}

// Run handles bus events until ctx is done
func (c *CacheInvalidator) Run(ctx context.Context, bus host.Bus) error {
	sub := bus.Subscribe(c.HandleEvent)
	defer sub.Release()

	<-ctx.Done()
	return nil
}

func (c *CacheInvalidator) HandleEvent(ctx context.Context, ev host.Event) {
	switch {
	case ev.Type == host.EventLibraryRefreshed:
		c.resolver.InvalidateAll()
		logger.FromCtx(ctx).Debug("show cache cleared after library refresh")
	case ev.Type == host.EventItemRemoved,
		ev.Type == host.EventItemUpdated && ev.Reason == host.ReasonMetadataRefresh:
		c.invalidateItem(ctx, ev)
	}
}

// invalidateItem drops the series behind the event's item. When the item is
// already gone the series is unknown and the whole cache is dropped.
func (c *CacheInvalidator) invalidateItem(ctx context.Context, ev host.Event) {
	log := logger.FromCtx(ctx, zap.String("item_id", ev.ItemID.String()), zap.String("event", string(ev.Type)))

	item, err := c.store.GetItem(ctx, ev.ItemID)
	if err != nil {
		c.resolver.InvalidateAll()
		log.Debugw("item not found, cleared show cache", zap.Error(err))
		return
	}
	if item.Kind == host.KindVideo {
		return
	}

	seriesID, ok := c.index.TryResolve(ctx, item, lookup.IDSeries)
	if !ok {
		return
	}
	dropped := c.resolver.Invalidate(seriesID)
	log.Debugw("invalidated cached shows", zap.String("series_id", seriesID), zap.Int("dropped", dropped))
}
