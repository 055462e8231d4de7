package info

import (
	"sort"
	"strings"
	"time"
)

type Title struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	// Type is main, official, synonym or short
	Type string `json:"type"`
}

const (
	TitleTypeMain     = "main"
	TitleTypeOfficial = "official"
)

type Rating struct {
	Value float64 `json:"value"`
	Max   float64 `json:"max"`
}

// Scaled returns the rating on a 0-10 scale
func (r Rating) Scaled() float64 {
	if r.Max <= 0 {
		return 0
	}
	return r.Value / r.Max * 10
}

type Person struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type Episode struct {
	ID      string     `json:"id"`
	Number  int        `json:"number"`
	Name    string     `json:"name"`
	AirDate *time.Time `json:"airDate,omitempty"`
}

// SeriesInfo is one external series with its episodes split into the main,
// alternate and other buckets.
type SeriesInfo struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	Titles   []Title    `json:"titles"`
	Overview string     `json:"overview"`
	AirDate  *time.Time `json:"airDate,omitempty"`
	EndDate  *time.Time `json:"endDate,omitempty"`
	Rating   Rating     `json:"rating"`
	Tags     []string   `json:"tags"`
	Genres   []string   `json:"genres"`
	Studios  []string   `json:"studios"`
	Staff    []Person   `json:"staff"`
	AniDBID  string     `json:"anidbId,omitempty"`

	EpisodeList           []Episode `json:"episodes"`
	AlternateEpisodesList []Episode `json:"alternateEpisodes"`
	OthersList            []Episode `json:"others"`
}

// NewSeriesInfo attaches the three episode buckets to a series. An episode
// listed in more than one bucket is kept in the first of main, alternate,
// other. Each bucket is ordered by episode number then id.
func NewSeriesInfo(series SeriesInfo, main, alternate, other []Episode) *SeriesInfo {
	seen := make(map[string]bool, len(main)+len(alternate)+len(other))
	series.EpisodeList = bucket(main, seen)
	series.AlternateEpisodesList = bucket(alternate, seen)
	series.OthersList = bucket(other, seen)
	return &series
}

func bucket(episodes []Episode, seen map[string]bool) []Episode {
	out := make([]Episode, 0, len(episodes))
	for _, e := range episodes {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Number != out[j].Number {
			return out[i].Number < out[j].Number
		}
		return compareIDs(out[i].ID, out[j].ID) < 0
	})
	return out
}

func (s *SeriesInfo) HasAlternates() bool {
	return len(s.AlternateEpisodesList) > 0
}

func (s *SeriesInfo) HasOthers() bool {
	return len(s.OthersList) > 0
}

// IsMovie reports whether the series is a movie entry
func (s *SeriesInfo) IsMovie() bool {
	return strings.EqualFold(s.Type, "movie")
}

// compareIDs orders numeric ids numerically and falls back to string order
func compareIDs(a, b string) int {
	if len(a) != len(b) && isDigits(a) && isDigits(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CompareIDs exposes the id ordering used for episodes so callers order series the same way
func CompareIDs(a, b string) int {
	return compareIDs(a, b)
}
