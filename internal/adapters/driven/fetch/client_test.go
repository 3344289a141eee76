package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmirror/internal/config"
	"github.com/custodia-labs/docmirror/internal/core/domain"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Timeout = 5 * time.Second
	cfg.MaxRetries = 3
	cfg.RetryDelay = time.Millisecond
	cfg.RequestInterval = 0
	return cfg
}

func TestFetch_DownloadsToLocalPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	local := filepath.Join(t.TempDir(), "images", "a.png")
	downloaded, err := New(testConfig()).Fetch(context.Background(), srv.URL+"/a.png", local)

	require.NoError(t, err)
	assert.True(t, downloaded)

	data, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestFetch_ExistingFileIsCacheHit(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	local := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(local, []byte("cached"), 0o644))

	downloaded, err := New(testConfig()).Fetch(context.Background(), srv.URL+"/a.png", local)

	require.NoError(t, err)
	assert.False(t, downloaded)
	assert.Zero(t, requests.Load(), "cache hit must not touch the network")

	data, _ := os.ReadFile(local)
	assert.Equal(t, "cached", string(data), "cached file must not be overwritten")
}

func TestFetch_RetriesUntilSuccess(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("eventually"))
	}))
	defer srv.Close()

	local := filepath.Join(t.TempDir(), "a.png")
	downloaded, err := New(testConfig()).Fetch(context.Background(), srv.URL+"/a.png", local)

	require.NoError(t, err)
	assert.True(t, downloaded)
	assert.Equal(t, int32(3), requests.Load())
}

func TestFetch_ExhaustedRetries(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	local := filepath.Join(t.TempDir(), "a.png")
	downloaded, err := New(testConfig()).Fetch(context.Background(), srv.URL+"/a.png", local)

	assert.False(t, downloaded)
	require.Error(t, err)

	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 3, fetchErr.Attempts)
	assert.Equal(t, int32(3), requests.Load())

	// All-or-nothing: no partial or temp file left behind.
	entries, readErr := os.ReadDir(filepath.Dir(local))
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestFetch_ConnectionRefused(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 2

	local := filepath.Join(t.TempDir(), "a.png")
	_, err := New(cfg).Fetch(context.Background(), "http://127.0.0.1:1/a.png", local)

	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 2, fetchErr.Attempts)
}

func TestFetch_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.RetryDelay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	local := filepath.Join(t.TempDir(), "a.png")
	_, err := New(cfg).Fetch(ctx, srv.URL+"/a.png", local)

	require.ErrorIs(t, err, context.Canceled)
}
