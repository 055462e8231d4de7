package manager

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/kasuboski/shokoz/config"
	"github.com/kasuboski/shokoz/pkg/host"
	"github.com/kasuboski/shokoz/pkg/info"
	"github.com/kasuboski/shokoz/pkg/metrics"
	"github.com/kasuboski/shokoz/pkg/shoko"
	"github.com/kasuboski/shokoz/pkg/shoko/mocks"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/text/language"
)

func projectionSeries() *info.SeriesInfo {
	air := time.Date(2004, time.April, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2004, time.September, 28, 0, 0, 0, 0, time.UTC)
	return info.NewSeriesInfo(info.SeriesInfo{
		ID:   "42",
		Name: "Monster",
		Type: "TV",
		Titles: []info.Title{
			{Name: "Monster", Language: "x-jat", Type: info.TitleTypeMain},
			{Name: "モンスター", Language: "ja", Type: info.TitleTypeOfficial},
			{Name: "Monster (EN)", Language: "en", Type: info.TitleTypeOfficial},
		},
		Overview: "A surgeon hunts the boy he saved.",
		AirDate:  &air,
		EndDate:  &end,
		Rating:   info.Rating{Value: 823, Max: 1000},
		Tags:     []string{"Thriller"},
		Genres:   []string{"Mystery"},
		Studios:  []string{"Madhouse"},
		Staff:    []info.Person{{Name: "Naoki Urasawa", Role: "Original Work"}},
		AniDBID:  "2270",
	},
		[]info.Episode{{ID: "1", Number: 1, Name: "Herr Dr. Tenma"}},
		[]info.Episode{{ID: "2", Number: 1, Name: "Alternate"}},
		[]info.Episode{{ID: "3", Number: 1, Name: "Recap"}},
	)
}

func TestProject(t *testing.T) {
	series := projectionSeries()

	t.Run("primary season", func(t *testing.T) {
		md := Project(series, 1, 0, language.English, nil, ProjectOptions{AddAniDBID: true})
		snaps.MatchJSON(t, md)

		assert.True(t, md.HasMetadata)
		assert.Equal(t, "Monster (EN)", md.Name)
		assert.Equal(t, "Monster", md.OriginalTitle)
		assert.Equal(t, "S1 - Monster", md.SortName)
		require.NotNil(t, md.CommunityRating)
		assert.Equal(t, 8.2, *md.CommunityRating)
		require.NotNil(t, md.ProductionYear)
		assert.Equal(t, 2004, *md.ProductionYear)
		assert.Equal(t, map[string]string{
			host.ProviderShokoSeries:       "42",
			host.ProviderShokoSeasonOffset: "0",
			host.ProviderAniDB:             "2270",
		}, md.ProviderIDs)
		assert.Equal(t, uuid.Nil, md.ID)
	})

	t.Run("alternate offset", func(t *testing.T) {
		md := Project(series, 2, 1, language.English, nil, ProjectOptions{})
		assert.Equal(t, "Monster (EN) (Alternate Stories)", md.Name)
		assert.Equal(t, "Monster (Alternate Stories)", md.OriginalTitle)
		assert.Equal(t, "S2 - Monster", md.SortName)
		assert.Equal(t, "1", md.ProviderIDs[host.ProviderShokoSeasonOffset])
		assert.NotContains(t, md.ProviderIDs, host.ProviderAniDB)
	})

	t.Run("other offset", func(t *testing.T) {
		md := Project(series, 3, 2, language.Und, nil, ProjectOptions{})
		assert.Equal(t, "Monster (Other Episodes)", md.Name)
		assert.Equal(t, "2", md.ProviderIDs[host.ProviderShokoSeasonOffset])
	})

	t.Run("passthrough offset has no label", func(t *testing.T) {
		md := Project(series, 7, 5, language.Und, nil, ProjectOptions{})
		assert.Equal(t, "Monster", md.Name)
	})

	t.Run("existing item keeps its identity", func(t *testing.T) {
		parent := uuid.New()
		existing := &host.Item{
			ID:              uuid.New(),
			Kind:            host.KindSeason,
			ParentID:        &parent,
			Name:            "Season 1",
			PresentationKey: "show-1/season-1",
		}

		md := Project(series, 1, 0, language.Und, existing, ProjectOptions{})
		assert.Equal(t, existing.ID, md.ID)
		assert.Equal(t, &parent, md.ParentID)
		assert.Equal(t, "show-1/season-1", md.PresentationKey)
		assert.Equal(t, "Monster", md.Name)

		item := md.Item()
		assert.Equal(t, host.KindSeason, item.Kind)
		require.NotNil(t, item.IndexNumber)
		assert.Equal(t, 1, *item.IndexNumber)
	})

	t.Run("unrated series", func(t *testing.T) {
		unrated := *series
		unrated.Rating = info.Rating{}
		unrated.AirDate = nil
		md := Project(&unrated, 1, 0, language.Und, nil, ProjectOptions{})
		assert.Nil(t, md.CommunityRating)
		assert.Nil(t, md.ProductionYear)
	})
}

func seasonNumber(n int) *int {
	return &n
}

func TestProject_Idempotent(t *testing.T) {
	series := projectionSeries()
	parent := uuid.New()
	existing := &host.Item{ID: uuid.New(), Kind: host.KindSeason, ParentID: &parent, PresentationKey: "shoko-42"}

	first := Project(series, 2, 1, language.Japanese, existing, ProjectOptions{AddAniDBID: true})
	second := Project(series, 2, 1, language.Japanese, existing, ProjectOptions{AddAniDBID: true})

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
	assert.Empty(t, cmp.Diff(first, second))
}

func TestProject_ResultsDoNotShareState(t *testing.T) {
	series := projectionSeries()

	first := Project(series, 1, 0, language.English, nil, ProjectOptions{})
	second := Project(series, 1, 0, language.English, nil, ProjectOptions{})

	first.Tags[0] = "Changed"
	first.Genres = append(first.Genres[:0], "Changed")
	first.People[0].Name = "Changed"
	*first.PremiereDate = first.PremiereDate.AddDate(1, 0, 0)
	first.ProviderIDs[host.ProviderShokoSeries] = "0"

	assert.Equal(t, []string{"Thriller"}, second.Tags)
	assert.Equal(t, []string{"Mystery"}, second.Genres)
	assert.Equal(t, "Naoki Urasawa", second.People[0].Name)
	assert.Equal(t, 2004, second.PremiereDate.Year())
	assert.Equal(t, "42", second.ProviderIDs[host.ProviderShokoSeries])

	assert.Equal(t, []string{"Thriller"}, series.Tags, "projecting must not hand out the cached series slices")
	assert.Equal(t, 2004, series.AirDate.Year())
}

func TestSeasonProvider_GetSeasonMetadata(t *testing.T) {
	ctx := context.Background()

	newProvider := func(t *testing.T, m *metrics.Metrics) (*SeasonProvider, *mocks.MockService) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockService(ctrl)
		md := config.Metadata{SeriesGrouping: config.GroupingNone, Language: "en", AddAniDBID: true}
		return NewSeasonProvider(NewShowResolver(svc, md, m), md, m), svc
	}

	t.Run("missing or zero season number", func(t *testing.T) {
		m := metrics.Discard()
		p, _ := newProvider(t, m)

		assert.False(t, p.GetSeasonMetadata(ctx, SeasonRequest{SeriesID: "10"}).HasMetadata)
		assert.False(t, p.GetSeasonMetadata(ctx, SeasonRequest{SeriesID: "10", SeasonNumber: seasonNumber(0)}).HasMetadata)
		assert.Equal(t, 2.0, testutil.ToFloat64(m.SeasonMetadata.WithLabelValues("skipped")))
	})

	t.Run("unknown series", func(t *testing.T) {
		m := metrics.Discard()
		p, svc := newProvider(t, m)
		svc.EXPECT().GetSeries(gomock.Any(), "404").Return(nil, shoko.ErrNotFound)

		md := p.GetSeasonMetadata(ctx, SeasonRequest{SeriesID: "404", SeasonNumber: seasonNumber(1)})
		assert.False(t, md.HasMetadata)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.SeasonMetadata.WithLabelValues("not_found")))
	})

	t.Run("season beyond the show", func(t *testing.T) {
		p, svc := newProvider(t, nil)
		expectSeries(svc, testSeries(10, 0, "Solo", shoko.SeriesTypeTV, ""), testEpisodes(1), nil, nil)

		md := p.GetSeasonMetadata(ctx, SeasonRequest{SeriesID: "10", SeasonNumber: seasonNumber(1)})
		assert.True(t, md.HasMetadata)

		// season 3 passes through to the only series
		md = p.GetSeasonMetadata(ctx, SeasonRequest{SeriesID: "10", SeasonNumber: seasonNumber(3)})
		assert.True(t, md.HasMetadata)
		assert.Equal(t, "2", md.ProviderIDs[host.ProviderShokoSeasonOffset])
	})

	t.Run("alternate season keeps host identity", func(t *testing.T) {
		m := metrics.Discard()
		p, svc := newProvider(t, m)
		series := testSeries(10, 0, "Gintama", shoko.SeriesTypeTV, "2006-04-04")
		series.Titles = append(series.Titles, shoko.Title{Name: "Gintama EN", Language: "en", Type: "Official"})
		expectSeries(svc, series, testEpisodes(1, 2), testEpisodes(50), nil)

		existing := &host.Item{ID: uuid.New(), Kind: host.KindSeason, PresentationKey: "key"}
		md := p.GetSeasonMetadata(ctx, SeasonRequest{SeriesID: "10", SeasonNumber: seasonNumber(2), Existing: existing})
		require.True(t, md.HasMetadata)
		assert.Equal(t, "Gintama EN (Alternate Stories)", md.Name)
		assert.Equal(t, existing.ID, md.ID)
		assert.Equal(t, "1000", md.ProviderIDs[host.ProviderAniDB])
		assert.Equal(t, 7.5, *md.CommunityRating)

		md = p.GetSeasonMetadata(ctx, SeasonRequest{SeriesID: "10", SeasonNumber: seasonNumber(2), Language: "ja"})
		assert.Equal(t, "Gintama (Alternate Stories)", md.Name)
		assert.Equal(t, 2.0, testutil.ToFloat64(m.SeasonMetadata.WithLabelValues("ok")))
	})

	t.Run("panics become empty results", func(t *testing.T) {
		m := metrics.Discard()
		p := NewSeasonProvider(nil, config.Metadata{}, m)

		var md SeasonMetadata
		assert.NotPanics(t, func() {
			md = p.GetSeasonMetadata(ctx, SeasonRequest{SeriesID: "10", SeasonNumber: seasonNumber(1)})
		})
		assert.False(t, md.HasMetadata)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.SeasonMetadata.WithLabelValues("panic")))
	})
}

func TestSeasonProvider_ListSeasons(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)

	a := testSeries(10, 1, "First", shoko.SeriesTypeTV, "2001-01-01")
	b := testSeries(11, 1, "Second", shoko.SeriesTypeTV, "2002-01-01")
	expectSeries(svc, a, testEpisodes(1), nil, testEpisodes(9))
	expectSeries(svc, b, testEpisodes(2), nil, nil)
	svc.EXPECT().GetGroup(gomock.Any(), "1").Return(&shoko.Group{
		IDs:    shoko.GroupIDs{ID: 1, MainSeries: 10},
		Name:   "Group",
		Series: []shoko.Series{*a, *b},
	}, nil)

	md := config.Metadata{SeriesGrouping: config.GroupingShoko}
	p := NewSeasonProvider(NewShowResolver(svc, md, nil), md, nil)

	seasons, err := p.ListSeasons(ctx, "11", FilterDefault, "")
	require.NoError(t, err)

	names := make([]string, 0, len(seasons))
	for _, s := range seasons {
		names = append(names, s.SortName+" | "+s.Name)
	}
	// First has other episodes, so its offset seasons take 2 and 3 ahead of Second
	assert.Equal(t, []string{
		"S1 - First | First",
		"S2 - First | First (Other Episodes)",
		"S3 - First | First (Other Episodes)",
	}, names)
}
