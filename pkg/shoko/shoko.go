package shoko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kasuboski/shokoz/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrNotFound = errors.New("not found in shoko")
	ErrService  = errors.New("shoko request failed")
)

// Service is the subset of the Shoko API the rest of shokoz relies on.
// Calls made with a non-empty token act as that user.
type Service interface {
	GetSeries(ctx context.Context, seriesID string) (*Series, error)
	GetGroup(ctx context.Context, groupID string) (*Group, error)
	GetEpisodes(ctx context.Context, seriesID string, bucket EpisodeBucket) ([]Episode, error)
	GetFileUserStats(ctx context.Context, token, fileID string) (*FileUserStats, error)
	ScrobbleFile(ctx context.Context, token, fileID string, scrobble Scrobble) error
	Vote(ctx context.Context, token string, target VoteTarget, id string, vote Vote) error
	SetFavorite(ctx context.Context, token string, target VoteTarget, id string, favorite bool) error
}

type Shoko struct {
	client ClientInterface
	apiKey string
}

// New builds a Shoko service for the server at scheme://host
func New(scheme, host, apiKey string, opts ...ClientOption) (*Shoko, error) {
	client, err := NewClient(fmt.Sprintf("%s://%s", scheme, host), opts...)
	if err != nil {
		return nil, err
	}
	return NewWithClient(client, apiKey), nil
}

// NewWithClient wraps an existing raw client
func NewWithClient(client ClientInterface, apiKey string) *Shoko {
	return &Shoko{
		client: client,
		apiKey: apiKey,
	}
}

func (s *Shoko) GetSeries(ctx context.Context, seriesID string) (*Series, error) {
	res, err := s.client.GetSeries(ctx, seriesID, SetRequestAPIKey(s.apiKey))
	series, err := decode[Series](ctx, res, err)
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", seriesID, err)
	}
	return &series, nil
}

// GetGroup returns a group along with every series in it
func (s *Shoko) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	res, err := s.client.GetGroup(ctx, groupID, SetRequestAPIKey(s.apiKey))
	group, err := decode[Group](ctx, res, err)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", groupID, err)
	}

	res, err = s.client.GetGroupSeries(ctx, groupID, SetRequestAPIKey(s.apiKey))
	series, err := decode[[]Series](ctx, res, err)
	if err != nil {
		return nil, fmt.Errorf("group %s series: %w", groupID, err)
	}
	group.Series = series

	return &group, nil
}

func (s *Shoko) GetEpisodes(ctx context.Context, seriesID string, bucket EpisodeBucket) ([]Episode, error) {
	types := bucket.EpisodeTypes()
	if len(types) == 0 {
		return nil, fmt.Errorf("unknown episode bucket %q", bucket)
	}

	includeMissing := false
	pageSize := 0
	params := &GetSeriesEpisodesParams{
		IncludeTypes:   &types,
		IncludeMissing: &includeMissing,
		PageSize:       &pageSize,
	}

	res, err := s.client.GetSeriesEpisodes(ctx, seriesID, params, SetRequestAPIKey(s.apiKey))
	page, err := decode[episodePage](ctx, res, err)
	if err != nil {
		return nil, fmt.Errorf("series %s %s episodes: %w", seriesID, bucket, err)
	}
	return page.List, nil
}

func (s *Shoko) GetFileUserStats(ctx context.Context, token, fileID string) (*FileUserStats, error) {
	res, err := s.client.GetFileUserStats(ctx, fileID, s.auth(token))
	stats, err := decode[FileUserStats](ctx, res, err)
	if err != nil {
		return nil, fmt.Errorf("file %s user stats: %w", fileID, err)
	}
	return &stats, nil
}

func (s *Shoko) ScrobbleFile(ctx context.Context, token, fileID string, scrobble Scrobble) error {
	params := &ScrobbleFileParams{
		Watched: scrobble.Watched,
	}
	if scrobble.Event != "" {
		event := scrobble.Event
		params.Event = &event
	}
	if scrobble.PositionTicks != nil {
		ms := TicksToMilliseconds(*scrobble.PositionTicks)
		params.ResumePosition = &ms
	}

	res, err := s.client.ScrobbleFile(ctx, fileID, params, s.auth(token))
	if err := expectNoContent(res, err); err != nil {
		return fmt.Errorf("scrobble file %s: %w", fileID, err)
	}
	return nil
}

func (s *Shoko) Vote(ctx context.Context, token string, target VoteTarget, id string, vote Vote) error {
	body := VoteBody{
		Value:    vote.Value,
		MaxValue: 10,
		Type:     "Permanent",
	}
	res, err := s.client.PostVote(ctx, target, id, body, s.auth(token))
	if err := expectNoContent(res, err); err != nil {
		return fmt.Errorf("vote %s %s: %w", target, id, err)
	}
	return nil
}

// SetFavorite marks or unmarks an episode or series as a favorite of the user
func (s *Shoko) SetFavorite(ctx context.Context, token string, target VoteTarget, id string, favorite bool) error {
	res, err := s.client.PostFavorite(ctx, target, id, FavoriteBody{Favorite: favorite}, s.auth(token))
	if err := expectNoContent(res, err); err != nil {
		return fmt.Errorf("favorite %s %s: %w", target, id, err)
	}
	return nil
}

func (s *Shoko) auth(token string) RequestEditorFn {
	if token == "" {
		return SetRequestAPIKey(s.apiKey)
	}
	return SetRequestAPIKey(token)
}

type episodePage struct {
	Total int       `json:"Total"`
	List  []Episode `json:"List"`
}

func classify(res *http.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %w", ErrService, err)
	}
	if res.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrService, res.StatusCode)
	}
	return nil
}

func decode[T any](ctx context.Context, res *http.Response, err error) (T, error) {
	var out T
	if err := classify(res, err); err != nil {
		drain(res)
		return out, err
	}
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		logger.FromCtx(ctx).Debugw("failed to decode shoko response", zap.Int("status", res.StatusCode), zap.Error(err))
		return out, fmt.Errorf("%w: decoding response: %w", ErrService, err)
	}
	return out, nil
}

func expectNoContent(res *http.Response, err error) error {
	defer drain(res)
	return classify(res, err)
}
