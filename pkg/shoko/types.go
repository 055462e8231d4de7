package shoko

import (
	"strconv"
	"time"

	"github.com/oapi-codegen/nullable"
)

// DateFormat is the layout Shoko uses for air dates
const DateFormat = "2006-01-02"

type SeriesType string

const (
	SeriesTypeUnknown    SeriesType = "Unknown"
	SeriesTypeTV         SeriesType = "TV"
	SeriesTypeTVSpecial  SeriesType = "TVSpecial"
	SeriesTypeOVA        SeriesType = "OVA"
	SeriesTypeMovie      SeriesType = "Movie"
	SeriesTypeWeb        SeriesType = "Web"
	SeriesTypeMusicVideo SeriesType = "MusicVideo"
	SeriesTypeOther      SeriesType = "Other"
)

type EpisodeType string

const (
	EpisodeTypeNormal  EpisodeType = "Normal"
	EpisodeTypeSpecial EpisodeType = "Special"
	EpisodeTypeParody  EpisodeType = "Parody"
	EpisodeTypeOther   EpisodeType = "Other"
	EpisodeTypeUnknown EpisodeType = "Unknown"
	EpisodeTypeCredits EpisodeType = "ThemeSong"
	EpisodeTypeTrailer EpisodeType = "Trailer"
)

// EpisodeBucket is the classification used to split a series into its main,
// alternate and other episode lists
type EpisodeBucket string

const (
	BucketMain      EpisodeBucket = "main"
	BucketAlternate EpisodeBucket = "alternate"
	BucketOther     EpisodeBucket = "other"
)

// EpisodeTypes returns the episode types that make up a bucket
func (b EpisodeBucket) EpisodeTypes() []EpisodeType {
	switch b {
	case BucketMain:
		return []EpisodeType{EpisodeTypeNormal}
	case BucketAlternate:
		return []EpisodeType{EpisodeTypeParody}
	case BucketOther:
		return []EpisodeType{EpisodeTypeOther, EpisodeTypeUnknown}
	default:
		return nil
	}
}

type Title struct {
	Name     string `json:"Name"`
	Language string `json:"Language"`
	Type     string `json:"Type"`
	Default  bool   `json:"Default"`
}

type Rating struct {
	Value    float64 `json:"Value"`
	MaxValue int     `json:"MaxValue"`
	Votes    int     `json:"Votes"`
	Source   string  `json:"Source"`
}

type Tag struct {
	ID          int    `json:"ID"`
	Name        string `json:"Name"`
	Description string `json:"Description,omitempty"`
	IsSpoiler   bool   `json:"IsSpoiler"`
	Weight      int    `json:"Weight"`
}

type Role struct {
	Name     string `json:"Name"`
	RoleName string `json:"RoleName"`
	Details  string `json:"RoleDetails"`
}

type SeriesIDs struct {
	ID            int   `json:"ID"`
	ParentGroup   int   `json:"ParentGroup"`
	TopLevelGroup int   `json:"TopLevelGroup"`
	AniDB         int   `json:"AniDB"`
	TvDB          []int `json:"TvDB,omitempty"`
}

type Series struct {
	IDs         SeriesIDs                 `json:"IDs"`
	Name        string                    `json:"Name"`
	Type        SeriesType                `json:"Type"`
	Titles      []Title                   `json:"Titles"`
	Description string                    `json:"Description"`
	AirDate     nullable.Nullable[string] `json:"AirDate"`
	EndDate     nullable.Nullable[string] `json:"EndDate"`
	Rating      Rating                    `json:"Rating"`
	Tags        []Tag                     `json:"Tags"`
	Genres      []string                  `json:"Genres"`
	Studios     []string                  `json:"Studios"`
	Staff       []Role                    `json:"Staff"`
}

// ID returns the series identifier in its string form
func (s Series) ID() string {
	return strconv.Itoa(s.IDs.ID)
}

// GroupID returns the identifier of the group the series directly belongs to
func (s Series) GroupID() string {
	if s.IDs.ParentGroup == 0 {
		return ""
	}
	return strconv.Itoa(s.IDs.ParentGroup)
}

type GroupIDs struct {
	ID          int `json:"ID"`
	MainSeries  int `json:"MainSeries"`
	ParentGroup int `json:"ParentGroup"`
}

type Group struct {
	IDs         GroupIDs `json:"IDs"`
	Name        string   `json:"Name"`
	Description string   `json:"Description"`
	Size        int      `json:"Size"`

	// Series is filled from the group's series listing
	Series []Series `json:"-"`
}

// ID returns the group identifier in its string form
func (g Group) ID() string {
	return strconv.Itoa(g.IDs.ID)
}

// MainSeriesID returns the designated main series or an empty string
func (g Group) MainSeriesID() string {
	if g.IDs.MainSeries == 0 {
		return ""
	}
	return strconv.Itoa(g.IDs.MainSeries)
}

type EpisodeIDs struct {
	ID    int `json:"ID"`
	AniDB int `json:"AniDB"`
}

type Episode struct {
	IDs         EpisodeIDs                `json:"IDs"`
	Name        string                    `json:"Name"`
	Titles      []Title                   `json:"Titles"`
	Type        EpisodeType               `json:"Type"`
	Number      int                       `json:"EpisodeNumber"`
	Description string                    `json:"Description"`
	AirDate     nullable.Nullable[string] `json:"AirDate"`
}

// ID returns the episode identifier in its string form
func (e Episode) ID() string {
	return strconv.Itoa(e.IDs.ID)
}

// FileUserStats is the watch state the service keeps for a user and file
type FileUserStats struct {
	// ResumePosition is the resume offset in milliseconds
	ResumePosition nullable.Nullable[int64] `json:"ResumePosition"`
	WatchedCount   int                      `json:"WatchedCount"`
	LastWatchedAt  *time.Time               `json:"LastWatchedAt"`
	LastUpdatedAt  time.Time                `json:"LastUpdatedAt"`
}

// Watched reports whether the file was watched at least once
func (s FileUserStats) Watched() bool {
	return s.LastWatchedAt != nil || s.WatchedCount > 0
}

// ResumePositionTicks converts the resume position to 100ns ticks
func (s FileUserStats) ResumePositionTicks() int64 {
	if !s.ResumePosition.IsSpecified() || s.ResumePosition.IsNull() {
		return 0
	}
	ms, err := s.ResumePosition.Get()
	if err != nil {
		return 0
	}
	return MillisecondsToTicks(ms)
}

type ScrobbleEvent string

const (
	ScrobbleEventPlay   ScrobbleEvent = "play"
	ScrobbleEventResume ScrobbleEvent = "resume"
	ScrobbleEventPause  ScrobbleEvent = "pause"
	ScrobbleEventStop   ScrobbleEvent = "stop"
	ScrobbleEventScrub  ScrobbleEvent = "scrobble"
	ScrobbleEventUser   ScrobbleEvent = "user-interaction"
)

// Scrobble describes a watch state change to send for a file
type Scrobble struct {
	Event ScrobbleEvent
	// Watched is left nil to only move the resume position
	Watched *bool
	// PositionTicks is left nil to only change the watched flag
	PositionTicks *int64
}

type VoteTarget string

const (
	VoteTargetEpisode VoteTarget = "Episode"
	VoteTargetSeries  VoteTarget = "Series"
)

// Vote is a user rating on a 0-10 scale
type Vote struct {
	Value float64
}

const ticksPerMillisecond = 10_000

// MillisecondsToTicks converts milliseconds to 100ns ticks
func MillisecondsToTicks(ms int64) int64 {
	return ms * ticksPerMillisecond
}

// TicksToMilliseconds converts 100ns ticks to milliseconds
func TicksToMilliseconds(ticks int64) int64 {
	return ticks / ticksPerMillisecond
}
