package usersync

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kasuboski/shokoz/config"
	"github.com/kasuboski/shokoz/pkg/host"
	"github.com/kasuboski/shokoz/pkg/shoko"
	"github.com/oapi-codegen/nullable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	older := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	user := config.UserConfiguration{Enabled: true, Token: "tok"}

	tests := []struct {
		name       string
		policy     string
		direction  Direction
		localTime  time.Time
		remoteTime time.Time
		want       Action
	}{
		{name: "newest prefers remote", policy: config.ConflictNewest, direction: DirectionBoth, localTime: older, remoteTime: newer, want: ActionImported},
		{name: "newest prefers local", policy: config.ConflictNewest, direction: DirectionBoth, localTime: newer, remoteTime: older, want: ActionExported},
		{name: "default policy is newest", policy: "", direction: DirectionBoth, localTime: newer, remoteTime: older, want: ActionExported},
		{name: "equal timestamps", policy: config.ConflictNewest, direction: DirectionBoth, localTime: older, remoteTime: older, want: ActionNone},
		{name: "equal timestamps under remote policy", policy: config.ConflictRemote, direction: DirectionBoth, localTime: older, remoteTime: older, want: ActionNone},
		{name: "local policy exports older state", policy: config.ConflictLocal, direction: DirectionBoth, localTime: older, remoteTime: newer, want: ActionExported},
		{name: "remote policy imports older state", policy: config.ConflictRemote, direction: DirectionBoth, localTime: newer, remoteTime: older, want: ActionImported},
		{name: "import only never exports", policy: config.ConflictNewest, direction: DirectionImport, localTime: newer, remoteTime: older, want: ActionNone},
		{name: "export only never imports", policy: config.ConflictNewest, direction: DirectionExport, localTime: older, remoteTime: newer, want: ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, user, tt.policy)
			item := videoItem("f1", "e1")

			local := &host.UserData{
				UserID:                testUserID,
				ItemID:                item.ID,
				Played:                true,
				PlaybackPositionTicks: 3_000_000_000,
				PlayCount:             3,
				UpdatedAt:             tt.localTime,
			}
			remote := &shoko.FileUserStats{
				ResumePosition: nullable.NewNullableWithValue[int64](120_000),
				LastUpdatedAt:  tt.remoteTime,
			}

			f.store.EXPECT().GetUserData(gomock.Any(), testUserID, item.ID).Return(local, nil)
			f.shoko.EXPECT().GetFileUserStats(gomock.Any(), "tok", "f1").Return(remote, nil)

			switch tt.want {
			case ActionExported:
				f.shoko.EXPECT().ScrobbleFile(gomock.Any(), "tok", "f1", shoko.Scrobble{
					Event:         shoko.ScrobbleEventUser,
					Watched:       boolPtr(true),
					PositionTicks: int64Ptr(3_000_000_000),
				}).Return(nil)
				exportedAt := newer.Add(time.Minute)
				f.shoko.EXPECT().GetFileUserStats(gomock.Any(), "tok", "f1").Return(&shoko.FileUserStats{LastUpdatedAt: exportedAt}, nil)
				f.store.EXPECT().SaveUserData(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, data host.UserData) error {
					assert.True(t, data.Played)
					assert.Equal(t, int64(3_000_000_000), data.PlaybackPositionTicks)
					assert.Equal(t, exportedAt, data.UpdatedAt)
					return nil
				})
			case ActionImported:
				f.store.EXPECT().SaveUserData(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, data host.UserData) error {
					assert.False(t, data.Played)
					assert.Equal(t, int64(1_200_000_000), data.PlaybackPositionTicks)
					assert.Equal(t, 3, data.PlayCount)
					assert.Equal(t, tt.remoteTime, data.UpdatedAt)
					return nil
				})
			}

			action, err := f.engine.Reconcile(ctx, testUserID, item, tt.direction)
			require.NoError(t, err)
			assert.Equal(t, tt.want, action)
		})
	}
}

func TestReconcile_ExportThenNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.UserConfiguration{Enabled: true, Token: "tok"}, "")
	item := videoItem("f1", "e1")

	localTime := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	remoteTime := localTime.Add(-time.Hour)
	exportedAt := localTime.Add(time.Second)

	stored := &host.UserData{UserID: testUserID, ItemID: item.ID, Played: true, UpdatedAt: localTime}
	f.store.EXPECT().GetUserData(gomock.Any(), testUserID, item.ID).DoAndReturn(func(context.Context, uuid.UUID, uuid.UUID) (*host.UserData, error) {
		copied := *stored
		return &copied, nil
	}).Times(2)
	f.store.EXPECT().SaveUserData(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, data host.UserData) error {
		stored = &data
		return nil
	})

	f.shoko.EXPECT().GetFileUserStats(gomock.Any(), "tok", "f1").Return(&shoko.FileUserStats{LastUpdatedAt: remoteTime}, nil)
	f.shoko.EXPECT().ScrobbleFile(gomock.Any(), "tok", "f1", gomock.Any()).Return(nil)
	f.shoko.EXPECT().GetFileUserStats(gomock.Any(), "tok", "f1").Return(&shoko.FileUserStats{WatchedCount: 1, LastUpdatedAt: exportedAt}, nil).Times(2)

	action, err := f.engine.Reconcile(ctx, testUserID, item, DirectionBoth)
	require.NoError(t, err)
	assert.Equal(t, ActionExported, action)
	assert.Equal(t, exportedAt, stored.UpdatedAt)

	// the exported state is not imported back
	action, err = f.engine.Reconcile(ctx, testUserID, item, DirectionBoth)
	require.NoError(t, err)
	assert.Equal(t, ActionNone, action)
}

func TestReconcile_NotSyncable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.UserConfiguration{Enabled: true, Token: "tok"}, "")

	_, err := f.engine.Reconcile(ctx, testUserID, videoItem("f1", ""), DirectionBoth)
	assert.ErrorIs(t, err, ErrNotSyncable)

	series := &host.Item{Kind: host.KindSeries, ProviderIDs: map[string]string{host.ProviderShokoSeries: "1"}}
	_, err = f.engine.Reconcile(ctx, testUserID, series, DirectionBoth)
	assert.ErrorIs(t, err, ErrNotSyncable)
}

func TestReconcile_ServiceError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.UserConfiguration{Enabled: true, Token: "tok"}, "")
	item := videoItem("f1", "e1")

	f.store.EXPECT().GetUserData(gomock.Any(), testUserID, item.ID).Return(nil, host.ErrNotFound)
	f.shoko.EXPECT().GetFileUserStats(gomock.Any(), "tok", "f1").Return(nil, shoko.ErrService)

	action, err := f.engine.Reconcile(ctx, testUserID, item, DirectionBoth)
	assert.ErrorIs(t, err, shoko.ErrService)
	assert.Equal(t, ActionNone, action)
}

func TestScanLibrary(t *testing.T) {
	same := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	user := config.UserConfiguration{Enabled: true, Token: "tok"}

	t.Run("cancelled part way", func(t *testing.T) {
		f := newFixture(t, user, "")
		videos := []*host.Item{
			videoItem("f1", "e1"),
			videoItem("f2", "e2"),
			videoItem("", "e3"),
			videoItem("f4", "e4"),
			videoItem("f5", "e5"),
		}
		f.store.EXPECT().ListItems(gomock.Any(), host.KindVideo).Return(videos, nil)
		f.store.EXPECT().GetUserData(gomock.Any(), testUserID, gomock.Any()).Return(&host.UserData{UpdatedAt: same}, nil).Times(2)
		f.shoko.EXPECT().GetFileUserStats(gomock.Any(), "tok", gomock.Any()).Return(&shoko.FileUserStats{LastUpdatedAt: same}, nil).Times(2)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var reported []float64
		err := f.engine.ScanLibrary(ctx, func(p float64) {
			reported = append(reported, p)
			if len(reported) == 2 {
				cancel()
			}
		})

		assert.ErrorIs(t, err, context.Canceled)
		// four syncable videos, stopped after two
		assert.Equal(t, []float64{0.25, 0.5}, reported)
	})

	t.Run("failures are joined and the scan continues", func(t *testing.T) {
		f := newFixture(t, user, "")
		videos := []*host.Item{videoItem("f1", "e1"), videoItem("f2", "e2")}
		f.store.EXPECT().ListItems(gomock.Any(), host.KindVideo).Return(videos, nil)
		f.store.EXPECT().GetUserData(gomock.Any(), testUserID, gomock.Any()).Return(&host.UserData{UpdatedAt: same}, nil).Times(2)
		f.shoko.EXPECT().GetFileUserStats(gomock.Any(), "tok", "f1").Return(nil, shoko.ErrNotFound)
		f.shoko.EXPECT().GetFileUserStats(gomock.Any(), "tok", "f2").Return(&shoko.FileUserStats{LastUpdatedAt: same}, nil)

		var reported []float64
		err := f.engine.ScanLibrary(context.Background(), func(p float64) { reported = append(reported, p) })

		assert.ErrorIs(t, err, shoko.ErrNotFound)
		assert.Equal(t, []float64{0.5, 1}, reported)
	})

	t.Run("no enabled users", func(t *testing.T) {
		f := newFixture(t, config.UserConfiguration{Enabled: true}, "")
		called := false
		require.NoError(t, f.engine.ScanLibrary(context.Background(), func(float64) { called = true }))
		assert.False(t, called)
	})
}
