package usersync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/kasuboski/shokoz/config"
	"github.com/kasuboski/shokoz/pkg/host"
	"github.com/kasuboski/shokoz/pkg/logger"
	"github.com/kasuboski/shokoz/pkg/lookup"
	"github.com/kasuboski/shokoz/pkg/shoko"
	"go.uber.org/zap"
)

// Action is what a reconciliation did
type Action string

const (
	ActionNone     Action = "none"
	ActionImported Action = "imported"
	ActionExported Action = "exported"
)

// Reconcile compares the host and Shoko watch state of one video for one user
// and copies the newer side over the other, limited to dir.
func (e *Engine) Reconcile(ctx context.Context, userID uuid.UUID, item *host.Item, dir Direction) (Action, error) {
	u, ok := e.user(userID)
	if !ok || !u.Active() {
		return ActionNone, fmt.Errorf("%w: %s", ErrUserNotEnabled, userID)
	}
	if item == nil {
		return ActionNone, ErrNotSyncable
	}

	target, ok := e.index.Target(ctx, item)
	if !ok {
		return ActionNone, fmt.Errorf("%w: %s", ErrNotSyncable, item.ID)
	}
	video, ok := target.(lookup.VideoTarget)
	if !ok {
		return ActionNone, fmt.Errorf("%w: %s", ErrNotSyncable, item.ID)
	}

	log := logger.FromCtx(ctx,
		zap.String("user_id", userID.String()),
		zap.String("item_id", item.ID.String()),
		zap.String("file_id", video.FileID),
		zap.Stringer("direction", dir))

	local, err := e.store.GetUserData(ctx, userID, item.ID)
	if errors.Is(err, host.ErrNotFound) {
		local = &host.UserData{UserID: userID, ItemID: item.ID}
	} else if err != nil {
		e.metrics.SyncActions.WithLabelValues("reconcile", "error").Inc()
		return ActionNone, fmt.Errorf("failed to load user data: %w", err)
	}

	remote, err := e.shoko.GetFileUserStats(ctx, u.Token, video.FileID)
	if err != nil {
		e.metrics.SyncActions.WithLabelValues("reconcile", "error").Inc()
		return ActionNone, fmt.Errorf("failed to get file user stats: %w", err)
	}

	switch e.winner(local.UpdatedAt, remote.LastUpdatedAt) {
	case sideLocal:
		if !dir.Has(DirectionExport) {
			break
		}
		played := local.Played
		position := local.PlaybackPositionTicks
		scrobble := shoko.Scrobble{Event: shoko.ScrobbleEventUser, Watched: &played, PositionTicks: &position}
		if err := e.shoko.ScrobbleFile(ctx, u.Token, video.FileID, scrobble); err != nil {
			e.metrics.SyncActions.WithLabelValues("export", "error").Inc()
			return ActionNone, fmt.Errorf("failed to export user data: %w", err)
		}
		e.metrics.SyncActions.WithLabelValues("export", "ok").Inc()
		e.stampExported(ctx, u, video, *local)
		log.Debugw("exported user data", zap.Bool("played", played))
		return ActionExported, nil

	case sideRemote:
		if !dir.Has(DirectionImport) {
			break
		}
		updated := *local
		updated.UserID = userID
		updated.ItemID = item.ID
		updated.Played = remote.Watched()
		updated.PlaybackPositionTicks = remote.ResumePositionTicks()
		if remote.LastWatchedAt != nil {
			watched := *remote.LastWatchedAt
			updated.LastPlayedDate = &watched
		}
		updated.PlayCount = max(local.PlayCount, remote.WatchedCount)
		updated.UpdatedAt = remote.LastUpdatedAt

		if err := e.store.SaveUserData(ctx, updated); err != nil {
			e.metrics.SyncActions.WithLabelValues("import", "error").Inc()
			return ActionNone, fmt.Errorf("failed to import user data: %w", err)
		}
		e.metrics.SyncActions.WithLabelValues("import", "ok").Inc()
		log.Debugw("imported user data", zap.Bool("played", updated.Played))
		return ActionImported, nil
	}

	e.metrics.SyncActions.WithLabelValues("reconcile", "noop").Inc()
	return ActionNone, nil
}

// stampExported moves the host record's timestamp up to the time Shoko
// recorded for the export, so both sides agree on the next reconcile.
func (e *Engine) stampExported(ctx context.Context, u user, video lookup.VideoTarget, local host.UserData) {
	log := logger.FromCtx(ctx)

	local.UpdatedAt = time.Now().UTC()
	after, err := e.shoko.GetFileUserStats(ctx, u.Token, video.FileID)
	switch {
	case err != nil:
		log.Debugw("failed to read back exported user data", zap.Error(err))
	case !after.LastUpdatedAt.IsZero():
		local.UpdatedAt = after.LastUpdatedAt
	}

	if err := e.store.SaveUserData(ctx, local); err != nil {
		log.Warnw("failed to stamp exported user data", zap.Error(err))
	}
}

type side int

const (
	sideNone side = iota
	sideLocal
	sideRemote
)

// winner picks which side's state should be copied. Equal timestamps mean
// both sides already agree.
func (e *Engine) winner(local, remote time.Time) side {
	if local.Equal(remote) {
		return sideNone
	}

	switch e.policy {
	case config.ConflictLocal:
		return sideLocal
	case config.ConflictRemote:
		return sideRemote
	default:
		if local.After(remote) {
			return sideLocal
		}
		return sideRemote
	}
}

// ScanLibrary reconciles every video that carries Shoko ids for every enabled
// user. progress receives the completed fraction after each video.
func (e *Engine) ScanLibrary(ctx context.Context, progress func(float64)) error {
	log := logger.FromCtx(ctx)

	users := e.activeUsers()
	if len(users) == 0 {
		log.Info("no enabled users to sync")
		return nil
	}

	items, err := e.store.ListItems(ctx, host.KindVideo)
	if err != nil {
		return fmt.Errorf("failed to list videos: %w", err)
	}

	videos := make([]*host.Item, 0, len(items))
	for _, item := range items {
		if target, ok := e.index.Target(ctx, item); ok && target.Kind() == host.KindVideo {
			videos = append(videos, item)
		}
	}

	total := len(videos) * len(users)
	log.Infow("starting library scan",
		zap.String("videos", humanize.Comma(int64(len(videos)))),
		zap.Int("users", len(users)))

	start := time.Now()
	done := 0
	var errs []error
	for _, video := range videos {
		if err := ctx.Err(); err != nil {
			return err
		}

		for _, u := range users {
			if _, err := e.Reconcile(ctx, u.ID, video, DirectionBoth); err != nil {
				log.Warnw("failed to reconcile video", zap.String("item_id", video.ID.String()), zap.String("user_id", u.ID.String()), zap.Error(err))
				errs = append(errs, err)
			}
			done++
		}

		fraction := float64(done) / float64(total)
		e.metrics.ScanProgress.Set(fraction)
		if progress != nil {
			progress(fraction)
		}
	}

	log.Infow("library scan finished",
		zap.Int("reconciled", done),
		zap.Int("failed", len(errs)),
		zap.String("started", humanize.Time(start)))

	return errors.Join(errs...)
}
