package manager

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kasuboski/shokoz/config"
	"github.com/kasuboski/shokoz/pkg/cache"
	"github.com/kasuboski/shokoz/pkg/info"
	"github.com/kasuboski/shokoz/pkg/logger"
	"github.com/kasuboski/shokoz/pkg/metrics"
	"github.com/kasuboski/shokoz/pkg/shoko"
	"github.com/oapi-codegen/nullable"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrShowNotFound = errors.New("show not found")

// FilterMode narrows which series of a group make up a show
type FilterMode string

const (
	FilterDefault FilterMode = ""
	FilterMovies  FilterMode = "movies"
	FilterOthers  FilterMode = "others"
)

func ParseFilterMode(s string) (FilterMode, error) {
	switch FilterMode(strings.ToLower(s)) {
	case FilterDefault, "default":
		return FilterDefault, nil
	case FilterMovies:
		return FilterMovies, nil
	case FilterOthers:
		return FilterOthers, nil
	default:
		return FilterDefault, fmt.Errorf("unknown filter mode %q", s)
	}
}

func (f FilterMode) keep(s *info.SeriesInfo) bool {
	switch f {
	case FilterMovies:
		return s.IsMovie()
	case FilterOthers:
		return !s.IsMovie()
	default:
		return true
	}
}

// showKey names a cached show. Grouped shows are keyed by GroupID, shows of a
// single series by SeriesID; exactly one of them is set.
type showKey struct {
	GroupID  string
	SeriesID string
	Filter   FilterMode
}

type loadedSeries struct {
	Info    *info.SeriesInfo
	GroupID string
}

// ShowResolver turns a Shoko series id into the show it belongs to. Shows,
// groups and series are cached until invalidated; concurrent requests for the
// same key share one load.
type ShowResolver struct {
	shoko    shoko.Service
	metadata config.Metadata
	metrics  *metrics.Metrics

	shows  *cache.Loading[showKey, *info.ShowInfo]
	groups *cache.Loading[string, *shoko.Group]
	series *cache.Loading[string, *loadedSeries]
}

func NewShowResolver(svc shoko.Service, metadata config.Metadata, m *metrics.Metrics) *ShowResolver {
	r := &ShowResolver{
		shoko:    svc,
		metadata: metadata,
		metrics:  metrics.OrDiscard(m),
	}
	r.shows = cache.NewLoading(r.loadShow)
	r.groups = cache.NewLoading(r.loadGroup)
	r.series = cache.NewLoading(r.loadSeries)
	return r
}

// ResolveShow returns the show that presents seriesID. Every series of a group
// resolves to the same cached show.
func (r *ShowResolver) ResolveShow(ctx context.Context, seriesID string, filter FilterMode) (*info.ShowInfo, error) {
	if seriesID == "" {
		return nil, fmt.Errorf("%w: empty series id", ErrShowNotFound)
	}

	key, err := r.showKeyFor(ctx, seriesID, filter)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: series %s: %w", ErrShowNotFound, seriesID, err)
	}

	show, outcome, err := r.shows.Get(ctx, key)
	r.metrics.ShowCacheRequests.WithLabelValues(string(outcome)).Inc()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: series %s: %w", ErrShowNotFound, seriesID, err)
	}
	return show, nil
}

func (r *ShowResolver) showKeyFor(ctx context.Context, seriesID string, filter FilterMode) (showKey, error) {
	single := showKey{SeriesID: seriesID, Filter: filter}

	requested, _, err := r.series.Get(ctx, seriesID)
	if err != nil {
		return showKey{}, err
	}
	if r.metadata.SeriesGrouping != config.GroupingShoko || requested.GroupID == "" {
		return single, nil
	}

	log := logger.FromCtx(ctx, zap.String("series_id", seriesID), zap.String("group_id", requested.GroupID))
	group, _, err := r.groups.Get(ctx, requested.GroupID)
	if errors.Is(err, shoko.ErrNotFound) {
		log.Warnw("group missing, presenting series on its own")
		return single, nil
	}
	if err != nil {
		return showKey{}, err
	}
	if !slices.ContainsFunc(group.Series, func(s shoko.Series) bool { return s.ID() == seriesID }) {
		log.Warnw("group does not list series, presenting series on its own")
		return single, nil
	}
	return showKey{GroupID: group.ID(), Filter: filter}, nil
}

// Invalidate drops every cached show that contains seriesID along with the
// series itself and the group it belongs to
func (r *ShowResolver) Invalidate(seriesID string) int {
	var groupID string
	if loaded, ok := r.series.Peek(seriesID); ok {
		groupID = loaded.GroupID
	}
	r.series.Invalidate(seriesID)
	r.groups.InvalidateFunc(func(id string, g *shoko.Group) bool {
		if id == groupID {
			return true
		}
		return slices.ContainsFunc(g.Series, func(s shoko.Series) bool { return s.ID() == seriesID })
	})
	return r.shows.InvalidateFunc(func(k showKey, show *info.ShowInfo) bool {
		if k.SeriesID == seriesID || (groupID != "" && k.GroupID == groupID) {
			return true
		}
		_, ok := show.SeasonNumberBase(seriesID)
		return ok
	})
}

func (r *ShowResolver) InvalidateAll() {
	r.series.InvalidateAll()
	r.groups.InvalidateAll()
	r.shows.InvalidateAll()
}

func (r *ShowResolver) loadGroup(ctx context.Context, groupID string) (*shoko.Group, error) {
	group, err := r.shoko.GetGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group %s: %w", groupID, err)
	}
	return group, nil
}

func (r *ShowResolver) loadShow(ctx context.Context, key showKey) (*info.ShowInfo, error) {
	timer := prometheus.NewTimer(r.metrics.ShowResolveSeconds)
	defer timer.ObserveDuration()

	if key.GroupID == "" {
		requested, _, err := r.series.Get(ctx, key.SeriesID)
		if err != nil {
			return nil, err
		}
		if !key.Filter.keep(requested.Info) {
			return nil, fmt.Errorf("series %s excluded by filter %q", key.SeriesID, key.Filter)
		}
		return info.NewShowInfo(requested.Info.ID, requested.Info.Name, []*info.SeriesInfo{requested.Info}), nil
	}

	log := logger.FromCtx(ctx, zap.String("group_id", key.GroupID), zap.String("filter", string(key.Filter)))

	group, _, err := r.groups.Get(ctx, key.GroupID)
	if err != nil {
		return nil, err
	}

	members, err := r.groupMembers(ctx, group)
	if err != nil {
		return nil, err
	}

	kept := members[:0]
	for _, m := range members {
		if key.Filter.keep(m) {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("group %s has no series for filter %q", group.ID(), key.Filter)
	}

	mainID := group.MainSeriesID()
	if len(kept) == 1 {
		mainID = kept[0].ID
	}
	orderSeries(kept, mainID)

	log.Debugw("resolved show", zap.Int("series", len(kept)))
	return info.NewShowInfo(group.ID(), group.Name, kept), nil
}

func (r *ShowResolver) groupMembers(ctx context.Context, group *shoko.Group) ([]*info.SeriesInfo, error) {
	ids := make([]string, 0, len(group.Series))
	for _, s := range group.Series {
		if !slices.Contains(ids, s.ID()) {
			ids = append(ids, s.ID())
		}
	}

	members := make([]*info.SeriesInfo, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, id := range ids {
		g.Go(func() error {
			loaded, _, err := r.series.Get(gctx, id)
			if err != nil {
				return fmt.Errorf("failed to load group member %s: %w", id, err)
			}
			members[i] = loaded.Info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return members, nil
}

// orderSeries puts the main series first, then orders by air date with unknown
// dates last, then by id
func orderSeries(series []*info.SeriesInfo, mainID string) {
	slices.SortStableFunc(series, func(a, b *info.SeriesInfo) int {
		if (a.ID == mainID) != (b.ID == mainID) {
			if a.ID == mainID {
				return -1
			}
			return 1
		}
		switch {
		case a.AirDate != nil && b.AirDate == nil:
			return -1
		case a.AirDate == nil && b.AirDate != nil:
			return 1
		case a.AirDate != nil && b.AirDate != nil && !a.AirDate.Equal(*b.AirDate):
			return a.AirDate.Compare(*b.AirDate)
		}
		return info.CompareIDs(a.ID, b.ID)
	})
}

func (r *ShowResolver) loadSeries(ctx context.Context, seriesID string) (*loadedSeries, error) {
	series, err := r.shoko.GetSeries(ctx, seriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch series %s: %w", seriesID, err)
	}

	buckets := []shoko.EpisodeBucket{shoko.BucketMain, shoko.BucketAlternate, shoko.BucketOther}
	episodes := make([][]info.Episode, len(buckets))

	g, gctx := errgroup.WithContext(ctx)
	for i, bucket := range buckets {
		g.Go(func() error {
			list, err := r.shoko.GetEpisodes(gctx, seriesID, bucket)
			if err != nil {
				return fmt.Errorf("failed to fetch %s episodes of series %s: %w", bucket, seriesID, err)
			}
			episodes[i] = toEpisodes(list)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &loadedSeries{
		Info:    info.NewSeriesInfo(r.toSeriesInfo(series), episodes[0], episodes[1], episodes[2]),
		GroupID: series.GroupID(),
	}, nil
}

func (r *ShowResolver) toSeriesInfo(s *shoko.Series) info.SeriesInfo {
	out := info.SeriesInfo{
		ID:       s.ID(),
		Name:     s.Name,
		Type:     string(s.Type),
		Overview: s.Description,
		AirDate:  parseDate(s.AirDate),
		EndDate:  parseDate(s.EndDate),
		Rating:   info.Rating{Value: s.Rating.Value, Max: float64(s.Rating.MaxValue)},
		Tags:     r.filterTags(s.Tags),
		Genres:   s.Genres,
		Studios:  s.Studios,
	}
	if s.IDs.AniDB != 0 {
		out.AniDBID = fmt.Sprint(s.IDs.AniDB)
	}
	for _, t := range s.Titles {
		out.Titles = append(out.Titles, info.Title{Name: t.Name, Language: t.Language, Type: strings.ToLower(t.Type)})
	}
	for _, p := range s.Staff {
		out.Staff = append(out.Staff, info.Person{Name: p.Name, Role: p.RoleName})
	}
	return out
}

func (r *ShowResolver) filterTags(tags []shoko.Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t.IsSpoiler && r.metadata.HideSpoilerTags {
			continue
		}
		if slices.ContainsFunc(r.metadata.ExcludedTags, func(ex string) bool { return strings.EqualFold(ex, t.Name) }) {
			continue
		}
		out = append(out, t.Name)
	}
	return out
}

func toEpisodes(list []shoko.Episode) []info.Episode {
	out := make([]info.Episode, 0, len(list))
	for _, e := range list {
		out = append(out, info.Episode{
			ID:      e.ID(),
			Number:  e.Number,
			Name:    e.Name,
			AirDate: parseDate(e.AirDate),
		})
	}
	return out
}

func parseDate(d nullable.Nullable[string]) *time.Time {
	if !d.IsSpecified() || d.IsNull() {
		return nil
	}
	v, err := d.Get()
	if err != nil || v == "" {
		return nil
	}
	t, err := time.Parse(shoko.DateFormat, v)
	if err != nil {
		return nil
	}
	return &t
}
