package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kasuboski/shokoz/pkg/host"
	"github.com/kasuboski/shokoz/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initSqlite(t *testing.T, ctx context.Context) storage.Storage {
	t.Helper()
	store, err := New(ctx, filepath.Join(t.TempDir(), "shokoz.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	err = store.RunMigrations(ctx)
	require.NoError(t, err)
	return store
}

func ptr[T any](v T) *T {
	return &v
}

func TestNew_Memory(t *testing.T) {
	ctx := context.Background()
	store, err := New(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.RunMigrations(ctx))

	items, err := store.ListItems(ctx, host.KindSeries)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemStorage(t *testing.T) {
	ctx := context.Background()
	store := initSqlite(t, ctx)

	series := host.Item{
		ID:   uuid.New(),
		Kind: host.KindSeries,
		Name: "Show",
		ProviderIDs: map[string]string{
			host.ProviderShokoSeries: "12",
		},
	}
	require.NoError(t, store.SaveItem(ctx, series))

	season := host.Item{
		ID:              uuid.New(),
		Kind:            host.KindSeason,
		ParentID:        &series.ID,
		Name:            "Season 2",
		IndexNumber:     ptr(2),
		PresentationKey: "show-s2",
	}
	require.NoError(t, store.SaveItem(ctx, season))

	t.Run("get item with provider ids", func(t *testing.T) {
		got, err := store.GetItem(ctx, series.ID)
		require.NoError(t, err)
		assert.Equal(t, series.ID, got.ID)
		assert.Equal(t, host.KindSeries, got.Kind)
		assert.Equal(t, "Show", got.Name)
		assert.Equal(t, map[string]string{host.ProviderShokoSeries: "12"}, got.ProviderIDs)
		assert.Nil(t, got.ParentID)
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("get item without provider ids", func(t *testing.T) {
		got, err := store.GetItem(ctx, season.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ParentID)
		assert.Equal(t, series.ID, *got.ParentID)
		require.NotNil(t, got.IndexNumber)
		assert.Equal(t, 2, *got.IndexNumber)
		assert.Equal(t, "show-s2", got.PresentationKey)
		assert.Empty(t, got.ProviderIDs)
	})

	t.Run("get missing item", func(t *testing.T) {
		_, err := store.GetItem(ctx, uuid.New())
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("list by kind", func(t *testing.T) {
		seasons, err := store.ListItems(ctx, host.KindSeason)
		require.NoError(t, err)
		require.Len(t, seasons, 1)
		assert.Equal(t, season.ID, seasons[0].ID)

		videos, err := store.ListItems(ctx, host.KindVideo)
		require.NoError(t, err)
		assert.Empty(t, videos)
	})

	t.Run("set provider ids replaces existing", func(t *testing.T) {
		err := store.SetProviderIDs(ctx, season.ID, map[string]string{
			host.ProviderShokoSeries:       "12",
			host.ProviderShokoSeasonOffset: "1",
			host.ProviderAniDB:             "",
		})
		require.NoError(t, err)

		got, err := store.GetItem(ctx, season.ID)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			host.ProviderShokoSeries:       "12",
			host.ProviderShokoSeasonOffset: "1",
		}, got.ProviderIDs)

		err = store.SetProviderIDs(ctx, season.ID, map[string]string{host.ProviderShokoSeries: "13"})
		require.NoError(t, err)
		got, err = store.GetItem(ctx, season.ID)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{host.ProviderShokoSeries: "13"}, got.ProviderIDs)
	})

	t.Run("set provider ids on missing item", func(t *testing.T) {
		err := store.SetProviderIDs(ctx, uuid.New(), map[string]string{host.ProviderShokoSeries: "1"})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("save updates in place", func(t *testing.T) {
		updated := series
		updated.Name = "Renamed"
		updated.ProviderIDs = map[string]string{host.ProviderShokoSeries: "99"}
		require.NoError(t, store.SaveItem(ctx, updated))

		got, err := store.GetItem(ctx, series.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		assert.Equal(t, "99", got.ProviderIDs[host.ProviderShokoSeries])

		all, err := store.ListItems(ctx, host.KindSeries)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("rejects invalid items", func(t *testing.T) {
		assert.Error(t, store.SaveItem(ctx, host.Item{ID: uuid.New(), Kind: "movie"}))
		assert.Error(t, store.SaveItem(ctx, host.Item{Kind: host.KindVideo}))
	})
}

func TestUserDataStorage(t *testing.T) {
	ctx := context.Background()
	store := initSqlite(t, ctx)

	video := host.Item{ID: uuid.New(), Kind: host.KindVideo, Name: "Episode 1"}
	require.NoError(t, store.SaveItem(ctx, video))
	userID := uuid.New()

	_, err := store.GetUserData(ctx, userID, video.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	lastPlayed := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	updatedAt := time.Date(2024, 5, 1, 20, 30, 0, 0, time.UTC)
	data := host.UserData{
		UserID:                userID,
		ItemID:                video.ID,
		Played:                true,
		PlaybackPositionTicks: 12_000_000,
		PlayCount:             2,
		LastPlayedDate:        &lastPlayed,
		Rating:                ptr(8.5),
		UpdatedAt:             updatedAt,
	}
	require.NoError(t, store.SaveUserData(ctx, data))

	got, err := store.GetUserData(ctx, userID, video.ID)
	require.NoError(t, err)
	assert.True(t, got.Played)
	assert.Equal(t, int64(12_000_000), got.PlaybackPositionTicks)
	assert.Equal(t, 2, got.PlayCount)
	require.NotNil(t, got.LastPlayedDate)
	assert.True(t, lastPlayed.Equal(*got.LastPlayedDate))
	assert.True(t, updatedAt.Equal(got.UpdatedAt))
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 8.5, *got.Rating, 0.001)
	assert.False(t, got.IsFavorite)

	data.Played = false
	data.PlaybackPositionTicks = 0
	data.IsFavorite = true
	data.UpdatedAt = time.Time{}
	require.NoError(t, store.SaveUserData(ctx, data))

	got, err = store.GetUserData(ctx, userID, video.ID)
	require.NoError(t, err)
	assert.False(t, got.Played)
	assert.Zero(t, got.PlaybackPositionTicks)
	assert.True(t, got.IsFavorite)
	assert.True(t, got.UpdatedAt.After(updatedAt))

	_, err = store.GetUserData(ctx, uuid.New(), video.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
