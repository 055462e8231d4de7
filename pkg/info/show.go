package info

const (
	LabelAlternateStories = "Alternate Stories"
	LabelOtherEpisodes    = "Other Episodes"
)

// ShowInfo is one logical show as presented to the host: a group of series, or
// a single series when grouping is off. It is never mutated after NewShowInfo.
type ShowInfo struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Series []*SeriesInfo `json:"series"`

	seasonNumberBase map[string]int
}

// SeasonAssignment places a series at a season number
type SeasonAssignment struct {
	Series       *SeriesInfo
	SeasonNumber int
	Offset       int
}

// Label is the offset label for the assignment, empty for a primary season
func (a SeasonAssignment) Label() string {
	return OffsetLabel(a.Series, a.Offset)
}

// NewShowInfo builds a show from series already in presentation order.
// Series are given base season numbers 1..N in that order.
func NewShowInfo(id, name string, series []*SeriesInfo) *ShowInfo {
	show := &ShowInfo{
		ID:               id,
		Name:             name,
		Series:           make([]*SeriesInfo, 0, len(series)),
		seasonNumberBase: make(map[string]int, len(series)),
	}

	for _, s := range series {
		if s == nil {
			continue
		}
		if _, dup := show.seasonNumberBase[s.ID]; dup {
			continue
		}
		show.Series = append(show.Series, s)
		show.seasonNumberBase[s.ID] = len(show.Series)
	}

	return show
}

// SeasonNumberBase returns the base season number of a series in the show
func (s *ShowInfo) SeasonNumberBase(seriesID string) (int, bool) {
	base, ok := s.seasonNumberBase[seriesID]
	return base, ok
}

// GetSeriesInfoBySeasonNumber finds the series that owns a season number and
// the offset of that season from the series' base number.
//
// Every series whose base is at or below the season is a candidate. A
// candidate has a strong claim when the offset is 0, 1 and it has alternate or
// other episodes, or 2 and it has other episodes. The strong claimant with the
// lowest base wins. Without one, the closest base below the season is used.
func (s *ShowInfo) GetSeriesInfoBySeasonNumber(seasonNumber int) (*SeriesInfo, int, bool) {
	a, _, ok := s.resolve(seasonNumber)
	if !ok {
		return nil, 0, false
	}
	return a.Series, a.Offset, true
}

// Assignment is GetSeriesInfoBySeasonNumber in assignment form
func (s *ShowInfo) Assignment(seasonNumber int) (SeasonAssignment, bool) {
	a, _, ok := s.resolve(seasonNumber)
	return a, ok
}

func (s *ShowInfo) resolve(seasonNumber int) (SeasonAssignment, bool, bool) {
	if seasonNumber <= 0 || len(s.Series) == 0 {
		return SeasonAssignment{}, false, false
	}

	var fallback *SeriesInfo
	fallbackOffset := 0
	for i, series := range s.Series {
		base := i + 1
		if base > seasonNumber {
			break
		}
		offset := seasonNumber - base
		if hasStrongClaim(series, offset) {
			return SeasonAssignment{Series: series, SeasonNumber: seasonNumber, Offset: offset}, true, true
		}
		fallback = series
		fallbackOffset = offset
	}

	return SeasonAssignment{Series: fallback, SeasonNumber: seasonNumber, Offset: fallbackOffset}, false, true
}

func hasStrongClaim(series *SeriesInfo, offset int) bool {
	switch offset {
	case 0:
		return true
	case 1:
		return series.HasAlternates() || series.HasOthers()
	case 2:
		return series.HasOthers()
	default:
		return false
	}
}

// Seasons lists every season number the show presents, in order. Each entry is
// exactly what GetSeriesInfoBySeasonNumber returns for its number.
func (s *ShowInfo) Seasons() []SeasonAssignment {
	last := len(s.Series) + 2
	seasons := make([]SeasonAssignment, 0, len(s.Series))
	for n := 1; n <= last; n++ {
		a, strong, ok := s.resolve(n)
		if ok && strong {
			seasons = append(seasons, a)
		}
	}
	return seasons
}

// OffsetLabel names the episode bucket an offset season presents
func OffsetLabel(series *SeriesInfo, offset int) string {
	switch offset {
	case 1:
		if series != nil && series.HasAlternates() {
			return LabelAlternateStories
		}
		return LabelOtherEpisodes
	case 2:
		return LabelOtherEpisodes
	default:
		return ""
	}
}
