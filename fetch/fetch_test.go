package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercadopublico-scraper/config"
	"mercadopublico-scraper/utils"
)

func testRetry() *utils.RetryConfig {
	return &utils.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: utils.NewTestLogger(io.Discard)}
}

func TestHTTPFetcherSendsUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))
		_, _ = io.WriteString(w, `<html>jsonResult = {}</html>`)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), "test-agent/1.0", testRetry())
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, `<html>jsonResult = {}</html>`, body)
}

func TestHTTPFetcherRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), "ua", testRetry())
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestHTTPFetcherNotFoundIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), "ua", testRetry())
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrPermanent))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestHTTPFetcherTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	client := srv.Client()
	client.Timeout = 20 * time.Millisecond
	retry := testRetry()
	retry.MaxAttempts = 1

	_, err := NewHTTPFetcher(client, "ua", retry).Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestNewSelectsMode(t *testing.T) {
	logger := utils.NewTestLogger(io.Discard)

	f, closeFn, err := New(&config.Config{FetchMode: "http", RequestTimeout: time.Second, MaxRetries: 1}, logger)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &HTTPFetcher{}, f)

	_, _, err = New(&config.Config{FetchMode: "carrier-pigeon"}, logger)
	assert.Error(t, err)
}
