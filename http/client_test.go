package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *Client {
	// No limiter or breaker so tests exercise retry behavior in isolation.
	return NewClient(&Config{
		Timeout:     5 * time.Second,
		UserAgent:   "unipkg-test",
		RetryConfig: &RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: 10 * time.Millisecond, BackoffFactor: 2, JitterFactor: 0},
	})
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "unipkg-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"left-pad"}`))
	}))
	defer srv.Close()

	var doc struct {
		Name string `json:"name"`
	}
	err := testClient().GetJSON(context.Background(), srv.URL, &doc)
	require.NoError(t, err)
	assert.Equal(t, "left-pad", doc.Name)
}

func TestGetJSON_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var doc map[string]any
	err := testClient().GetJSON(context.Background(), srv.URL, &doc)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.True(t, statusErr.NotFound())
}

func TestGet_RetriesOn503(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	resp, err := testClient().Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGet_NoRetryOn400(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	resp, err := testClient().Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 5*time.Second, ParseRetryAfter("5"))
	assert.Equal(t, time.Duration(0), ParseRetryAfter(""))
	assert.Equal(t, time.Duration(0), ParseRetryAfter("-3"))
	assert.Equal(t, 2*time.Minute, ParseRetryAfter("3600"))
}

func TestCalculateBackoff(t *testing.T) {
	rc := &RetryConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     10 * time.Second,
		BackoffFactor:  2,
		JitterFactor:   0,
	}

	assert.Equal(t, time.Second, rc.CalculateBackoff(0))
	assert.Equal(t, 2*time.Second, rc.CalculateBackoff(1))
	assert.Equal(t, 4*time.Second, rc.CalculateBackoff(2))
	assert.Equal(t, 10*time.Second, rc.CalculateBackoff(10), "capped at max")
}

func TestIsRetriableStatus(t *testing.T) {
	assert.True(t, IsRetriableStatus(http.StatusTooManyRequests))
	assert.True(t, IsRetriableStatus(http.StatusServiceUnavailable))
	assert.False(t, IsRetriableStatus(http.StatusNotFound))
	assert.False(t, IsRetriableStatus(http.StatusOK))
}
