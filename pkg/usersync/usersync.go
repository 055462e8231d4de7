package usersync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kasuboski/shokoz/config"
	"github.com/kasuboski/shokoz/pkg/host"
	"github.com/kasuboski/shokoz/pkg/logger"
	"github.com/kasuboski/shokoz/pkg/lookup"
	"github.com/kasuboski/shokoz/pkg/metrics"
	"github.com/kasuboski/shokoz/pkg/shoko"
	"github.com/kasuboski/shokoz/pkg/worker"
	"go.uber.org/zap"
)

var (
	ErrUserNotEnabled = errors.New("user is not enabled for sync")
	ErrNotSyncable    = errors.New("item has no shoko file and episode")
)

// Direction says which way a sync action may move watch state
type Direction uint8

const (
	DirectionNone   Direction = 0
	DirectionImport Direction = 1 << 0
	DirectionExport Direction = 1 << 1
	DirectionBoth             = DirectionImport | DirectionExport
)

func (d Direction) Has(other Direction) bool {
	return d&other == other && other != DirectionNone
}

func (d Direction) String() string {
	switch d {
	case DirectionNone:
		return "none"
	case DirectionImport:
		return "import"
	case DirectionExport:
		return "export"
	case DirectionBoth:
		return "both"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// Submitter runs detached work. worker.Pool satisfies it.
type Submitter interface {
	Submit(ctx context.Context, name string, task worker.Task) error
}

type user struct {
	ID uuid.UUID
	config.UserConfiguration
}

// Engine keeps per-user watch state in step between the host and Shoko
type Engine struct {
	shoko   shoko.Service
	store   host.Store
	index   *lookup.Index
	pool    Submitter
	policy  string
	users   []user
	metrics *metrics.Metrics
}

// New builds an engine for the configured users. Users with an unparsable id are rejected.
func New(svc shoko.Service, store host.Store, pool Submitter, cfg config.Sync, m *metrics.Metrics) (*Engine, error) {
	users := make([]user, 0, len(cfg.Users))
	for _, u := range cfg.Users {
		id, err := uuid.Parse(u.UserID)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", u.UserID, err)
		}
		users = append(users, user{ID: id, UserConfiguration: u})
	}

	policy := strings.ToLower(cfg.ConflictPolicy)
	if policy == "" {
		policy = config.ConflictNewest
	}

	return &Engine{
		shoko:   svc,
		store:   store,
		index:   lookup.New(store),
		pool:    pool,
		policy:  policy,
		users:   users,
		metrics: metrics.OrDiscard(m),
	}, nil
}

// Run handles bus events until ctx is done
func (e *Engine) Run(ctx context.Context, bus host.Bus) error {
	sub := bus.Subscribe(e.HandleEvent)
	defer sub.Release()

	logger.FromCtx(ctx).Infow("user data sync started", zap.Int("users", len(e.users)))
	<-ctx.Done()
	return nil
}

func (e *Engine) user(id uuid.UUID) (user, bool) {
	for _, u := range e.users {
		if u.ID == id {
			return u, true
		}
	}
	return user{}, false
}

func (e *Engine) activeUsers() []user {
	active := make([]user, 0, len(e.users))
	for _, u := range e.users {
		if u.Active() {
			active = append(active, u)
		}
	}
	return active
}

// HandleEvent dispatches one host event. It returns once any Shoko call the
// event needs has been queued.
func (e *Engine) HandleEvent(ctx context.Context, ev host.Event) {
	log := logger.FromCtx(ctx,
		zap.String("event", string(ev.Type)),
		zap.String("reason", string(ev.Reason)),
		zap.String("item_id", ev.ItemID.String()))
	ctx = logger.WithCtx(ctx, log)

	switch ev.Type {
	case host.EventUserDataSaved:
		e.handleUserData(ctx, ev)
	case host.EventItemAdded, host.EventItemUpdated:
		if ev.Reason == host.ReasonImport {
			e.handleImport(ctx, ev)
		}
	}
}

func (e *Engine) handleImport(ctx context.Context, ev host.Event) {
	log := logger.FromCtx(ctx)

	item, err := e.store.GetItem(ctx, ev.ItemID)
	if err != nil {
		log.Debugw("imported item not found", zap.Error(err))
		return
	}
	if item.Kind != host.KindVideo {
		return
	}

	for _, u := range e.activeUsers() {
		if !u.SyncOnImport {
			continue
		}
		userID := u.ID
		e.submit(ctx, "reconcile", func(ctx context.Context) error {
			_, err := e.Reconcile(ctx, userID, item, DirectionBoth)
			return err
		})
	}
}

func (e *Engine) handleUserData(ctx context.Context, ev host.Event) {
	log := logger.FromCtx(ctx, zap.String("user_id", ev.UserID.String()))

	u, ok := e.user(ev.UserID)
	if !ok || !u.Active() {
		return
	}

	data := ev.UserData
	if data == nil {
		var err error
		data, err = e.store.GetUserData(ctx, ev.UserID, ev.ItemID)
		if err != nil {
			log.Debugw("no user data for event", zap.Error(err))
			return
		}
	}

	item, err := e.store.GetItem(ctx, ev.ItemID)
	if err != nil {
		log.Debugw("item for user data not found", zap.Error(err))
		return
	}
	target, ok := e.index.Target(ctx, item)
	if !ok {
		log.Debug("item has no shoko ids, skipping")
		return
	}

	switch ev.Reason {
	case host.ReasonPlaybackStart, host.ReasonPlaybackProgress:
		if !u.SyncDuringPlayback {
			return
		}
		video, ok := target.(lookup.VideoTarget)
		if !ok {
			return
		}
		event := shoko.ScrobbleEventScrub
		if ev.Reason == host.ReasonPlaybackStart {
			event = shoko.ScrobbleEventPlay
		}
		position := data.PlaybackPositionTicks
		e.scrobble(ctx, u, video, shoko.Scrobble{Event: event, PositionTicks: &position})

	case host.ReasonPlaybackFinished:
		if !u.SyncAfterPlayback {
			return
		}
		video, ok := target.(lookup.VideoTarget)
		if !ok {
			return
		}
		played := data.Played
		position := data.PlaybackPositionTicks
		e.scrobble(ctx, u, video, shoko.Scrobble{Event: shoko.ScrobbleEventStop, Watched: &played, PositionTicks: &position})

	case host.ReasonTogglePlayed:
		video, ok := target.(lookup.VideoTarget)
		if !ok {
			return
		}
		played := data.Played
		scrobble := shoko.Scrobble{Event: shoko.ScrobbleEventUser, Watched: &played}
		if data.PlaybackPositionTicks != 0 {
			position := data.PlaybackPositionTicks
			scrobble.PositionTicks = &position
		}
		e.scrobble(ctx, u, video, scrobble)

	case host.ReasonUpdateUserRating:
		e.rate(ctx, u, target, data)
	}
}

func (e *Engine) scrobble(ctx context.Context, u user, video lookup.VideoTarget, scrobble shoko.Scrobble) {
	token := u.Token
	e.submit(ctx, "scrobble", func(ctx context.Context) error {
		if err := e.shoko.ScrobbleFile(ctx, token, video.FileID, scrobble); err != nil {
			return fmt.Errorf("failed to scrobble file %s: %w", video.FileID, err)
		}
		return nil
	})
}

// rate exports the rating and favorite flag of an item. Seasons rate their series.
// The favorite flag is always sent since the event does not say which field changed.
func (e *Engine) rate(ctx context.Context, u user, target lookup.Target, data *host.UserData) {
	var voteTarget shoko.VoteTarget
	var id string
	switch t := target.(type) {
	case lookup.VideoTarget:
		voteTarget, id = shoko.VoteTargetEpisode, t.EpisodeID
	case lookup.SeasonTarget:
		voteTarget, id = shoko.VoteTargetSeries, t.SeriesID
	case lookup.SeriesTarget:
		voteTarget, id = shoko.VoteTargetSeries, t.SeriesID
	default:
		return
	}

	token := u.Token
	if data.Rating != nil {
		vote := shoko.Vote{Value: *data.Rating}
		e.submit(ctx, "vote", func(ctx context.Context) error {
			if err := e.shoko.Vote(ctx, token, voteTarget, id, vote); err != nil {
				return fmt.Errorf("failed to vote on %s %s: %w", voteTarget, id, err)
			}
			return nil
		})
	}

	favorite := data.IsFavorite
	e.submit(ctx, "favorite", func(ctx context.Context) error {
		if err := e.shoko.SetFavorite(ctx, token, voteTarget, id, favorite); err != nil {
			return fmt.Errorf("failed to set favorite on %s %s: %w", voteTarget, id, err)
		}
		return nil
	})
}

func (e *Engine) submit(ctx context.Context, name string, task worker.Task) {
	if err := e.pool.Submit(ctx, name, task); err != nil {
		logger.FromCtx(ctx).Warnw("sync action not queued", zap.String("action", name), zap.Error(err))
	}
}
