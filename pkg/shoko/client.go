package shoko

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/oapi-codegen/runtime"
)

// RequestEditorFn is the function signature for the RequestEditor callback function
type RequestEditorFn func(ctx context.Context, req *http.Request) error

// HttpRequestDoer performs HTTP requests
type HttpRequestDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the raw request client for the Shoko v3 API
type Client struct {
	// The endpoint of the server conforming to this interface, with scheme,
	// https://api.deepmap.com for example. This can contain a path relative
	// to the server, such as https://api.deepmap.com/dev-test, and all the
	// API paths will be appended to the server.
	Server string

	// Doer for performing requests, typically a *http.Client with any
	// customized settings, such as certificate chains.
	Client HttpRequestDoer

	// A list of callbacks for modifying requests which are generated before sending over
	// the network.
	RequestEditors []RequestEditorFn
}

// ClientOption allows setting custom parameters during construction
type ClientOption func(*Client) error

// NewClient creates a new Client, with reasonable defaults
func NewClient(server string, opts ...ClientOption) (*Client, error) {
	client := Client{
		Server: server,
	}
	for _, o := range opts {
		if err := o(&client); err != nil {
			return nil, err
		}
	}
	if !strings.HasSuffix(client.Server, "/") {
		client.Server += "/"
	}
	if client.Client == nil {
		client.Client = &http.Client{}
	}
	return &client, nil
}

// WithHTTPClient allows overriding the default Doer
func WithHTTPClient(doer HttpRequestDoer) ClientOption {
	return func(c *Client) error {
		c.Client = doer
		return nil
	}
}

// WithRequestEditorFn allows setting up a callback function, which will be
// called right before sending the request
func WithRequestEditorFn(fn RequestEditorFn) ClientOption {
	return func(c *Client) error {
		c.RequestEditors = append(c.RequestEditors, fn)
		return nil
	}
}

// ClientInterface is the interface for the client above.
type ClientInterface interface {
	GetSeries(ctx context.Context, seriesID string, reqEditors ...RequestEditorFn) (*http.Response, error)
	GetGroup(ctx context.Context, groupID string, reqEditors ...RequestEditorFn) (*http.Response, error)
	GetGroupSeries(ctx context.Context, groupID string, reqEditors ...RequestEditorFn) (*http.Response, error)
	GetSeriesEpisodes(ctx context.Context, seriesID string, params *GetSeriesEpisodesParams, reqEditors ...RequestEditorFn) (*http.Response, error)
	GetFileUserStats(ctx context.Context, fileID string, reqEditors ...RequestEditorFn) (*http.Response, error)
	ScrobbleFile(ctx context.Context, fileID string, params *ScrobbleFileParams, reqEditors ...RequestEditorFn) (*http.Response, error)
	PostVote(ctx context.Context, target VoteTarget, id string, body VoteBody, reqEditors ...RequestEditorFn) (*http.Response, error)
	PostFavorite(ctx context.Context, target VoteTarget, id string, body FavoriteBody, reqEditors ...RequestEditorFn) (*http.Response, error)
}

// GetSeriesEpisodesParams defines parameters for GetSeriesEpisodes.
type GetSeriesEpisodesParams struct {
	IncludeTypes   *[]EpisodeType `form:"includeTypes,omitempty" json:"includeTypes,omitempty"`
	IncludeMissing *bool          `form:"includeMissing,omitempty" json:"includeMissing,omitempty"`
	PageSize       *int           `form:"pageSize,omitempty" json:"pageSize,omitempty"`
}

// ScrobbleFileParams defines parameters for ScrobbleFile.
type ScrobbleFileParams struct {
	Event          *ScrobbleEvent `form:"event,omitempty" json:"event,omitempty"`
	Watched        *bool          `form:"watched,omitempty" json:"watched,omitempty"`
	ResumePosition *int64         `form:"resumePosition,omitempty" json:"resumePosition,omitempty"`
}

// VoteBody defines the body for PostVote.
type VoteBody struct {
	Value    float64 `json:"Value"`
	MaxValue int     `json:"MaxValue"`
	Type     string  `json:"Type"`
}

// FavoriteBody defines the body for PostFavorite.
type FavoriteBody struct {
	Favorite bool `json:"Favorite"`
}

func (c *Client) GetSeries(ctx context.Context, seriesID string, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := newPathRequest(c.Server, "/api/v3/Series/%s", "seriesID", seriesID)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req, reqEditors)
}

func (c *Client) GetGroup(ctx context.Context, groupID string, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := newPathRequest(c.Server, "/api/v3/Group/%s", "groupID", groupID)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req, reqEditors)
}

func (c *Client) GetGroupSeries(ctx context.Context, groupID string, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := newPathRequest(c.Server, "/api/v3/Group/%s/Series", "groupID", groupID)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req, reqEditors)
}

func (c *Client) GetSeriesEpisodes(ctx context.Context, seriesID string, params *GetSeriesEpisodesParams, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := NewGetSeriesEpisodesRequest(c.Server, seriesID, params)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req, reqEditors)
}

func (c *Client) GetFileUserStats(ctx context.Context, fileID string, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := newPathRequest(c.Server, "/api/v3/File/%s/UserStats", "fileID", fileID)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req, reqEditors)
}

func (c *Client) ScrobbleFile(ctx context.Context, fileID string, params *ScrobbleFileParams, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := NewScrobbleFileRequest(c.Server, fileID, params)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req, reqEditors)
}

func (c *Client) PostVote(ctx context.Context, target VoteTarget, id string, body VoteBody, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := NewPostVoteRequest(c.Server, target, id, body)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req, reqEditors)
}

func (c *Client) PostFavorite(ctx context.Context, target VoteTarget, id string, body FavoriteBody, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := NewPostFavoriteRequest(c.Server, target, id, body)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req, reqEditors)
}

func (c *Client) do(ctx context.Context, req *http.Request, reqEditors []RequestEditorFn) (*http.Response, error) {
	req = req.WithContext(ctx)
	if err := c.applyEditors(ctx, req, reqEditors); err != nil {
		return nil, err
	}
	return c.Client.Do(req)
}

func (c *Client) applyEditors(ctx context.Context, req *http.Request, additionalEditors []RequestEditorFn) error {
	for _, r := range c.RequestEditors {
		if err := r(ctx, req); err != nil {
			return err
		}
	}
	for _, r := range additionalEditors {
		if err := r(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// newPathRequest builds a GET request for an operation with a single path parameter
func newPathRequest(server, pathFormat, paramName, value string) (*http.Request, error) {
	queryURL, err := operationURL(server, pathFormat, paramName, value)
	if err != nil {
		return nil, err
	}
	return http.NewRequest(http.MethodGet, queryURL.String(), nil)
}

func operationURL(server, pathFormat, paramName, value string) (*url.URL, error) {
	pathParam, err := runtime.StyleParamWithLocation("simple", false, paramName, runtime.ParamLocationPath, value)
	if err != nil {
		return nil, err
	}

	serverURL, err := url.Parse(server)
	if err != nil {
		return nil, err
	}

	operationPath := fmt.Sprintf(pathFormat, pathParam)
	if operationPath[0] == '/' {
		operationPath = "." + operationPath
	}

	return serverURL.Parse(operationPath)
}

func addQueryParam(values url.Values, name string, value any) error {
	queryFrag, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
	if err != nil {
		return err
	}
	parsed, err := url.ParseQuery(queryFrag)
	if err != nil {
		return err
	}
	for k, v := range parsed {
		for _, v2 := range v {
			values.Add(k, v2)
		}
	}
	return nil
}

// NewGetSeriesEpisodesRequest generates requests for GetSeriesEpisodes
func NewGetSeriesEpisodesRequest(server string, seriesID string, params *GetSeriesEpisodesParams) (*http.Request, error) {
	queryURL, err := operationURL(server, "/api/v3/Series/%s/Episode", "seriesID", seriesID)
	if err != nil {
		return nil, err
	}

	if params != nil {
		queryValues := queryURL.Query()
		if params.IncludeTypes != nil {
			if err := addQueryParam(queryValues, "includeTypes", *params.IncludeTypes); err != nil {
				return nil, err
			}
		}
		if params.IncludeMissing != nil {
			if err := addQueryParam(queryValues, "includeMissing", *params.IncludeMissing); err != nil {
				return nil, err
			}
		}
		if params.PageSize != nil {
			if err := addQueryParam(queryValues, "pageSize", *params.PageSize); err != nil {
				return nil, err
			}
		}
		queryURL.RawQuery = queryValues.Encode()
	}

	return http.NewRequest(http.MethodGet, queryURL.String(), nil)
}

// NewScrobbleFileRequest generates requests for ScrobbleFile
func NewScrobbleFileRequest(server string, fileID string, params *ScrobbleFileParams) (*http.Request, error) {
	queryURL, err := operationURL(server, "/api/v3/File/%s/Scrobble", "fileID", fileID)
	if err != nil {
		return nil, err
	}

	if params != nil {
		queryValues := queryURL.Query()
		if params.Event != nil {
			if err := addQueryParam(queryValues, "event", string(*params.Event)); err != nil {
				return nil, err
			}
		}
		if params.Watched != nil {
			if err := addQueryParam(queryValues, "watched", *params.Watched); err != nil {
				return nil, err
			}
		}
		if params.ResumePosition != nil {
			if err := addQueryParam(queryValues, "resumePosition", *params.ResumePosition); err != nil {
				return nil, err
			}
		}
		queryURL.RawQuery = queryValues.Encode()
	}

	return http.NewRequest(http.MethodPatch, queryURL.String(), nil)
}

// NewPostVoteRequest generates requests for PostVote
func NewPostVoteRequest(server string, target VoteTarget, id string, body VoteBody) (*http.Request, error) {
	return newJSONRequest(server, "/api/v3/"+string(target)+"/%s/Vote", id, body)
}

// NewPostFavoriteRequest generates requests for PostFavorite
func NewPostFavoriteRequest(server string, target VoteTarget, id string, body FavoriteBody) (*http.Request, error) {
	return newJSONRequest(server, "/api/v3/"+string(target)+"/%s/Favorite", id, body)
}

func newJSONRequest(server, pathFormat, id string, body any) (*http.Request, error) {
	queryURL, err := operationURL(server, pathFormat, "id", id)
	if err != nil {
		return nil, err
	}

	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, queryURL.String(), bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", "application/json")
	return req, nil
}

// SetRequestAPIKey authenticates requests with the given api key
func SetRequestAPIKey(apiKey string) RequestEditorFn {
	return func(ctx context.Context, req *http.Request) error {
		req.Header.Set("apikey", apiKey)
		req.Header.Set("accept", "application/json")
		return nil
	}
}

func drain(res *http.Response) {
	if res == nil || res.Body == nil {
		return
	}
	io.Copy(io.Discard, res.Body)
	res.Body.Close()
}
