package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/kasuboski/shokoz/pkg/http/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestNewRateLimitedHTTPClient(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		c := NewRateLimitedHTTPClient()
		assert.Equal(t, http.DefaultClient, c.client)
		assert.Equal(t, DefaultMaxRetries, c.maxRetries)
		assert.Equal(t, DefaultBaseBackoff, c.baseBackoff)
	})

	t.Run("custom", func(t *testing.T) {
		inner := &http.Client{Timeout: time.Second}
		c := NewRateLimitedHTTPClient(WithMaxRetries(5), WithBaseBackoff(time.Millisecond*100), WithHTTPClient(inner))
		assert.Same(t, inner, c.client)
		assert.Equal(t, 5, c.maxRetries)
		assert.Equal(t, time.Millisecond*100, c.baseBackoff)
	})

	t.Run("ignores non positive values", func(t *testing.T) {
		c := NewRateLimitedHTTPClient(WithMaxRetries(0), WithBaseBackoff(-1))
		assert.Equal(t, DefaultMaxRetries, c.maxRetries)
		assert.Equal(t, DefaultBaseBackoff, c.baseBackoff)
	})
}

func TestRateLimitedClient_Do(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req, err := http.NewRequest(http.MethodGet, "https://example.com", nil)
		require.NoError(t, err)

		mhttp.EXPECT().Do(req).Return(response(http.StatusOK, "ok"), nil)

		client := NewRateLimitedHTTPClient(WithHTTPClient(mhttp))
		resp, err := client.Do(req)
		require.NoError(t, err)
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "ok", string(b))
	})

	t.Run("transport error on get is retried", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req, err := http.NewRequest(http.MethodGet, "https://example.com", nil)
		require.NoError(t, err)

		gomock.InOrder(
			mhttp.EXPECT().Do(req).Return(nil, errors.New("connection reset")),
			mhttp.EXPECT().Do(req).Return(response(http.StatusOK, "ok"), nil),
		)

		client := NewRateLimitedHTTPClient(WithHTTPClient(mhttp), WithBaseBackoff(time.Millisecond))
		resp, err := client.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("transport error on post is not retried", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req, err := http.NewRequest(http.MethodPost, "https://example.com", strings.NewReader("{}"))
		require.NoError(t, err)

		mhttp.EXPECT().Do(req).Return(nil, errors.New("connection reset")).Times(1)

		client := NewRateLimitedHTTPClient(WithHTTPClient(mhttp), WithBaseBackoff(time.Millisecond))
		resp, err := client.Do(req)
		assert.ErrorContains(t, err, "connection reset")
		assert.Nil(t, resp)
	})

	t.Run("server error exhausts attempts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req, err := http.NewRequest(http.MethodGet, "https://example.com", nil)
		require.NoError(t, err)

		mhttp.EXPECT().Do(req).DoAndReturn(func(*http.Request) (*http.Response, error) {
			return response(http.StatusBadGateway, "bad gateway"), nil
		}).Times(2)

		client := NewRateLimitedHTTPClient(WithHTTPClient(mhttp), WithMaxRetries(2), WithBaseBackoff(time.Millisecond))
		resp, err := client.Do(req)
		assert.ErrorContains(t, err, "server error")
		assert.Nil(t, resp)
	})

	t.Run("429 response - max retries", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req, err := http.NewRequest(http.MethodGet, "https://example.com", nil)
		require.NoError(t, err)

		mhttp.EXPECT().Do(req).Return(response(http.StatusTooManyRequests, "slow down"), nil)

		client := NewRateLimitedHTTPClient(WithHTTPClient(mhttp), WithMaxRetries(1))
		resp, err := client.Do(req)
		assert.ErrorIs(t, err, ErrRateLimited)
		assert.Nil(t, resp)
	})

	t.Run("post body is replayed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req, err := http.NewRequest(http.MethodPost, "https://example.com", strings.NewReader(`{"watched":true}`))
		require.NoError(t, err)

		var bodies []string
		mhttp.EXPECT().Do(req).DoAndReturn(func(r *http.Request) (*http.Response, error) {
			b, _ := io.ReadAll(r.Body)
			bodies = append(bodies, string(b))
			if len(bodies) == 1 {
				resp := response(http.StatusTooManyRequests, "")
				resp.Header.Set("Retry-After", "0")
				return resp, nil
			}
			return response(http.StatusNoContent, ""), nil
		}).Times(2)

		client := NewRateLimitedHTTPClient(WithHTTPClient(mhttp), WithBaseBackoff(time.Millisecond))
		resp, err := client.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, []string{`{"watched":true}`, `{"watched":true}`}, bodies)
	})

	t.Run("cancelled context stops retries", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		ctx, cancel := context.WithCancel(context.Background())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://example.com", nil)
		require.NoError(t, err)

		mhttp.EXPECT().Do(req).DoAndReturn(func(*http.Request) (*http.Response, error) {
			cancel()
			return nil, errors.New("connection reset")
		}).Times(1)

		client := NewRateLimitedHTTPClient(WithHTTPClient(mhttp), WithBaseBackoff(time.Second))
		_, err = client.Do(req)
		assert.Error(t, err)
	})
}

func TestRateLimitedClient_delay(t *testing.T) {
	c := NewRateLimitedHTTPClient(WithBaseBackoff(time.Second))

	got := c.delay(0, &rateLimitedError{retryAfter: 3 * time.Second}, nil)
	assert.Equal(t, 3*time.Second, got)

	got = c.delay(3, errors.New("boom"), nil)
	assert.GreaterOrEqual(t, got, 8*time.Second)
	assert.Less(t, got, 9*time.Second)
}

func TestRetryAfter(t *testing.T) {
	resp := response(http.StatusTooManyRequests, "")
	assert.Equal(t, time.Duration(0), retryAfter(resp))

	resp.Header.Set("Retry-After", "2")
	assert.Equal(t, 2*time.Second, retryAfter(resp))

	resp.Header.Set("Retry-After", "Wed, 21 Oct 2015 07:28:00 GMT")
	assert.Equal(t, time.Duration(0), retryAfter(resp))
}
