package http

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
)

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/mock_http_client.go github.com/kasuboski/shokoz/pkg/http HTTPClient

const (
	DefaultMaxRetries  = 3
	DefaultBaseBackoff = time.Millisecond * 500
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RateLimitedClient retries requests that hit 429 responses and, for idempotent
// requests, transient transport errors and 5xx responses.
type RateLimitedClient struct {
	client      HTTPClient
	baseBackoff time.Duration
	maxRetries  int
}

// ClientOption is a function that can be used to configure a RateLimitedClient
type ClientOption func(*RateLimitedClient)

// NewRateLimitedHTTPClient creates a new RateLimitedClient. The client can be used concurrently.
func NewRateLimitedHTTPClient(opts ...ClientOption) *RateLimitedClient {
	c := &RateLimitedClient{
		client:      http.DefaultClient,
		maxRetries:  DefaultMaxRetries,
		baseBackoff: DefaultBaseBackoff,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithMaxRetries sets the maximum number of attempts for the client
func WithMaxRetries(maxRetries int) ClientOption {
	return func(c *RateLimitedClient) {
		if maxRetries > 0 {
			c.maxRetries = maxRetries
		}
	}
}

// WithBaseBackoff sets the base backoff time for the client
func WithBaseBackoff(baseBackoff time.Duration) ClientOption {
	return func(c *RateLimitedClient) {
		if baseBackoff > 0 {
			c.baseBackoff = baseBackoff
		}
	}
}

// WithHTTPClient sets the http client to use for the client
func WithHTTPClient(client HTTPClient) ClientOption {
	return func(c *RateLimitedClient) {
		c.client = client
	}
}

// rateLimitedError is returned for a 429 so the delay can honor Retry-After
type rateLimitedError struct {
	retryAfter time.Duration
}

func (e *rateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.retryAfter)
}

type serverError struct {
	status string
}

func (e *serverError) Error() string {
	return "server error: " + e.status
}

// ErrRateLimited is returned once every attempt was answered with a 429
var ErrRateLimited = errors.New("rate limit exceeded")

// Do executes the HTTP request, blocking until it succeeds, fails with a
// non-retryable error, the request context is done or the attempts run out.
func (c *RateLimitedClient) Do(req *http.Request) (*http.Response, error) {
	idempotent := isIdempotent(req)

	resp, err := retry.DoWithData(
		func() (*http.Response, error) {
			if req.Body != nil && req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, retry.Unrecoverable(err)
				}
				req.Body = body
			}

			resp, err := c.client.Do(req)
			if err != nil {
				if !idempotent {
					return nil, retry.Unrecoverable(err)
				}
				return nil, err
			}

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				wait := retryAfter(resp)
				resp.Body.Close()
				return nil, &rateLimitedError{retryAfter: wait}
			case resp.StatusCode >= http.StatusInternalServerError && idempotent:
				status := resp.Status
				resp.Body.Close()
				return nil, &serverError{status: status}
			}

			return resp, nil
		},
		retry.Context(req.Context()),
		retry.Attempts(uint(c.maxRetries)),
		retry.LastErrorOnly(true),
		retry.DelayType(c.delay),
	)
	if err != nil {
		var rl *rateLimitedError
		if errors.As(err, &rl) {
			return nil, fmt.Errorf("%w after %d attempts", ErrRateLimited, c.maxRetries)
		}
		return nil, err
	}

	return resp, nil
}

// delay calculates the wait before the next attempt
func (c *RateLimitedClient) delay(n uint, err error, _ *retry.Config) time.Duration {
	var rl *rateLimitedError
	if errors.As(err, &rl) && rl.retryAfter > 0 {
		return rl.retryAfter
	}

	// 2^n backoff
	expBackoff := time.Duration(1<<n) * c.baseBackoff

	// staggers the backoff to avoid a thundering herd
	jitter := time.Duration(rand.Int64N(int64(c.baseBackoff)))

	return expBackoff + jitter
}

func retryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}

	seconds, err := strconv.Atoi(header)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func isIdempotent(req *http.Request) bool {
	switch req.Method {
	case "", http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}
