package manager

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kasuboski/shokoz/config"
	"github.com/kasuboski/shokoz/pkg/host"
	"github.com/kasuboski/shokoz/pkg/info"
	"github.com/kasuboski/shokoz/pkg/logger"
	"github.com/kasuboski/shokoz/pkg/metrics"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// SeasonMetadata is what the host stores for a season item. HasMetadata is
// false when nothing could be resolved for the request.
type SeasonMetadata struct {
	HasMetadata bool `json:"hasMetadata"`

	ID              uuid.UUID  `json:"id"`
	ParentID        *uuid.UUID `json:"parentId,omitempty"`
	PresentationKey string     `json:"presentationKey,omitempty"`
	IndexNumber     int        `json:"indexNumber"`

	Name            string            `json:"name"`
	OriginalTitle   string            `json:"originalTitle"`
	SortName        string            `json:"sortName"`
	Overview        string            `json:"overview"`
	PremiereDate    *time.Time        `json:"premiereDate,omitempty"`
	EndDate         *time.Time        `json:"endDate,omitempty"`
	ProductionYear  *int              `json:"productionYear,omitempty"`
	CommunityRating *float64          `json:"communityRating,omitempty"`
	Tags            []string          `json:"tags"`
	Genres          []string          `json:"genres"`
	Studios         []string          `json:"studios"`
	People          []info.Person     `json:"people"`
	ProviderIDs     map[string]string `json:"providerIds"`
}

// Item returns the host item the metadata describes
func (m SeasonMetadata) Item() host.Item {
	index := m.IndexNumber
	return host.Item{
		ID:              m.ID,
		Kind:            host.KindSeason,
		ParentID:        m.ParentID,
		Name:            m.Name,
		IndexNumber:     &index,
		PresentationKey: m.PresentationKey,
		ProviderIDs:     m.ProviderIDs,
	}
}

type ProjectOptions struct {
	AddAniDBID bool
}

// Project builds the season metadata for a series placed at seasonNumber with
// the given offset from its base. When existing is set its host identity is kept.
func Project(series *info.SeriesInfo, seasonNumber, offset int, lang language.Tag, existing *host.Item, opts ProjectOptions) SeasonMetadata {
	title, alternate := SelectTitles(series, lang)
	if label := info.OffsetLabel(series, offset); label != "" {
		title = fmt.Sprintf("%s (%s)", title, label)
		alternate = fmt.Sprintf("%s (%s)", alternate, label)
	}

	md := SeasonMetadata{
		HasMetadata:   true,
		IndexNumber:   seasonNumber,
		Name:          title,
		OriginalTitle: alternate,
		SortName:      fmt.Sprintf("S%d - %s", seasonNumber, series.Name),
		Overview:      series.Overview,
		PremiereDate:  cloneTime(series.AirDate),
		EndDate:       cloneTime(series.EndDate),
		Tags:          slices.Clone(series.Tags),
		Genres:        slices.Clone(series.Genres),
		Studios:       slices.Clone(series.Studios),
		People:        slices.Clone(series.Staff),
		ProviderIDs: map[string]string{
			host.ProviderShokoSeries:       series.ID,
			host.ProviderShokoSeasonOffset: strconv.Itoa(offset),
		},
	}

	if series.AirDate != nil {
		year := series.AirDate.Year()
		md.ProductionYear = &year
	}
	if series.Rating.Max > 0 {
		rating := math.Round(series.Rating.Scaled()*10) / 10
		md.CommunityRating = &rating
	}
	if opts.AddAniDBID && series.AniDBID != "" {
		md.ProviderIDs[host.ProviderAniDB] = series.AniDBID
	}

	if existing != nil {
		md.ID = existing.ID
		md.ParentID = existing.ParentID
		md.PresentationKey = existing.PresentationKey
	}

	return md
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// SeasonRequest asks for the metadata of one season of the show that contains SeriesID
type SeasonRequest struct {
	SeriesID     string
	SeasonNumber *int
	Filter       FilterMode
	// Language overrides the configured metadata language
	Language string
	Existing *host.Item
}

type SeasonProvider struct {
	resolver *ShowResolver
	metadata config.Metadata
	metrics  *metrics.Metrics
}

func NewSeasonProvider(resolver *ShowResolver, metadata config.Metadata, m *metrics.Metrics) *SeasonProvider {
	return &SeasonProvider{
		resolver: resolver,
		metadata: metadata,
		metrics:  metrics.OrDiscard(m),
	}
}

// GetSeasonMetadata never fails. Anything that prevents projecting the season,
// including a panic, is logged and reported as HasMetadata=false.
func (p *SeasonProvider) GetSeasonMetadata(ctx context.Context, req SeasonRequest) SeasonMetadata {
	log := logger.FromCtx(ctx, zap.String("series_id", req.SeriesID))

	var md SeasonMetadata
	var result string
	var catcher panics.Catcher
	catcher.Try(func() {
		md, result = p.seasonMetadata(ctx, req)
	})
	if r := catcher.Recovered(); r != nil {
		log.Errorw("season metadata panicked", zap.Error(r.AsError()))
		md, result = SeasonMetadata{}, "panic"
	}

	p.metrics.SeasonMetadata.WithLabelValues(result).Inc()
	return md
}

func (p *SeasonProvider) seasonMetadata(ctx context.Context, req SeasonRequest) (SeasonMetadata, string) {
	log := logger.FromCtx(ctx, zap.String("series_id", req.SeriesID))

	if req.SeasonNumber == nil || *req.SeasonNumber <= 0 {
		log.Debugw("season has no usable index number, skipping")
		return SeasonMetadata{}, "skipped"
	}
	seasonNumber := *req.SeasonNumber

	show, err := p.resolver.ResolveShow(ctx, req.SeriesID, req.Filter)
	if errors.Is(err, ErrShowNotFound) {
		log.Warnw("unable to find show for season", zap.Int("season", seasonNumber), zap.Error(err))
		return SeasonMetadata{}, "not_found"
	}
	if err != nil {
		log.Errorw("failed to resolve show for season", zap.Int("season", seasonNumber), zap.Error(err))
		return SeasonMetadata{}, "error"
	}

	assignment, ok := show.Assignment(seasonNumber)
	if !ok {
		log.Warnw("show has no series for season", zap.String("show_id", show.ID), zap.Int("season", seasonNumber))
		return SeasonMetadata{}, "not_found"
	}

	md := Project(assignment.Series, seasonNumber, assignment.Offset, p.language(req), req.Existing, ProjectOptions{AddAniDBID: p.metadata.AddAniDBID})
	log.Debugw("projected season",
		zap.String("show_id", show.ID),
		zap.String("season_series_id", assignment.Series.ID),
		zap.Int("season", seasonNumber),
		zap.Int("offset", assignment.Offset))
	return md, "ok"
}

// ListSeasons projects every season the show containing seriesID presents
func (p *SeasonProvider) ListSeasons(ctx context.Context, seriesID string, filter FilterMode, lang string) ([]SeasonMetadata, error) {
	show, err := p.resolver.ResolveShow(ctx, seriesID, filter)
	if err != nil {
		return nil, err
	}

	tag := p.language(SeasonRequest{Language: lang})
	opts := ProjectOptions{AddAniDBID: p.metadata.AddAniDBID}

	seasons := show.Seasons()
	out := make([]SeasonMetadata, 0, len(seasons))
	for _, a := range seasons {
		out = append(out, Project(a.Series, a.SeasonNumber, a.Offset, tag, nil, opts))
	}
	return out, nil
}

func (p *SeasonProvider) language(req SeasonRequest) language.Tag {
	if req.Language != "" {
		return parseLanguage(req.Language)
	}
	return parseLanguage(p.metadata.Language)
}
