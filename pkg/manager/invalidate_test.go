package manager

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/kasuboski/shokoz/config"
	"github.com/kasuboski/shokoz/pkg/host"
	hostmocks "github.com/kasuboski/shokoz/pkg/host/mocks"
	"github.com/kasuboski/shokoz/pkg/shoko"
	"github.com/kasuboski/shokoz/pkg/shoko/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCacheInvalidator(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*ShowResolver, *CacheInvalidator, *mocks.MockService, *hostmocks.MockStore) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockService(ctrl)
		store := hostmocks.NewMockStore(ctrl)
		r := NewShowResolver(svc, config.Metadata{SeriesGrouping: config.GroupingNone}, nil)
		return r, NewCacheInvalidator(r, store), svc, store
	}
	series := testSeries(10, 0, "Mushishi", shoko.SeriesTypeTV, "2005-10-23")

	t.Run("library refresh clears everything", func(t *testing.T) {
		r, c, svc, _ := setup(t)
		expectSeries(svc, series, testEpisodes(1), nil, nil)
		expectSeries(svc, series, testEpisodes(1), nil, nil)

		first, err := r.ResolveShow(ctx, "10", FilterDefault)
		require.NoError(t, err)

		c.HandleEvent(ctx, host.Event{Type: host.EventLibraryRefreshed})

		second, err := r.ResolveShow(ctx, "10", FilterDefault)
		require.NoError(t, err)
		assert.NotSame(t, first, second)
	})

	t.Run("metadata refresh of a season drops its series", func(t *testing.T) {
		r, c, svc, store := setup(t)
		expectSeries(svc, series, testEpisodes(1), nil, nil)
		expectSeries(svc, series, testEpisodes(1), nil, nil)

		_, err := r.ResolveShow(ctx, "10", FilterDefault)
		require.NoError(t, err)

		season := &host.Item{
			ID:          uuid.New(),
			Kind:        host.KindSeason,
			ProviderIDs: map[string]string{host.ProviderShokoSeries: "10"},
		}
		store.EXPECT().GetItem(gomock.Any(), season.ID).Return(season, nil)
		c.HandleEvent(ctx, host.Event{Type: host.EventItemUpdated, Reason: host.ReasonMetadataRefresh, ItemID: season.ID})

		_, err = r.ResolveShow(ctx, "10", FilterDefault)
		require.NoError(t, err)
	})

	t.Run("other updates keep the cache", func(t *testing.T) {
		r, c, svc, _ := setup(t)
		expectSeries(svc, series, testEpisodes(1), nil, nil)

		first, err := r.ResolveShow(ctx, "10", FilterDefault)
		require.NoError(t, err)

		c.HandleEvent(ctx, host.Event{Type: host.EventItemUpdated, Reason: host.ReasonImport, ItemID: uuid.New()})

		second, err := r.ResolveShow(ctx, "10", FilterDefault)
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("removed item that is already gone clears everything", func(t *testing.T) {
		r, c, svc, store := setup(t)
		expectSeries(svc, series, testEpisodes(1), nil, nil)
		expectSeries(svc, series, testEpisodes(1), nil, nil)

		_, err := r.ResolveShow(ctx, "10", FilterDefault)
		require.NoError(t, err)

		id := uuid.New()
		store.EXPECT().GetItem(gomock.Any(), id).Return(nil, host.ErrNotFound)
		c.HandleEvent(ctx, host.Event{Type: host.EventItemRemoved, ItemID: id})

		_, err = r.ResolveShow(ctx, "10", FilterDefault)
		require.NoError(t, err)
	})

	t.Run("run releases its subscription", func(t *testing.T) {
		_, c, _, _ := setup(t)
		bus := host.NewLocalBus()
		runCtx, cancel := context.WithCancel(ctx)
		cancel()
		require.NoError(t, c.Run(runCtx, bus))
		assert.Equal(t, 0, bus.Subscribers())
	})
}
