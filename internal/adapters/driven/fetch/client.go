// Package fetch implements the driven.Fetcher port over HTTP.
// Downloads are idempotent (an existing target is a cache hit),
// retried with linear backoff, paced between requests, and written
// all-or-nothing.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docmirror/internal/config"
	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.Fetcher = (*Client)(nil)

// Client downloads remote assets to local files.
type Client struct {
	http       *http.Client
	maxRetries int
	baseDelay  time.Duration
	limiter    *rate.Limiter
}

// New creates a fetch client from the runtime configuration.
func New(cfg config.Config) *Client {
	retries := cfg.MaxRetries
	if retries < 1 {
		retries = 1
	}

	var limiter *rate.Limiter
	if cfg.RequestInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.RequestInterval), 1)
	}

	return &Client{
		http:       &http.Client{Timeout: cfg.Timeout},
		maxRetries: retries,
		baseDelay:  cfg.RetryDelay,
		limiter:    limiter,
	}
}

// Fetch downloads url to localPath. An existing localPath is a cache
// hit and returns (false, nil) without touching the network. The
// returned bool is true when a transfer occurred.
func (c *Client) Fetch(ctx context.Context, url, localPath string) (bool, error) {
	if _, err := os.Stat(localPath); err == nil {
		logger.Debug("Cache hit: %s", filepath.Base(localPath))
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return false, fmt.Errorf("create asset directory: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return false, err
			}
		}

		data, err := c.get(ctx, url)
		if err == nil {
			if err := c.write(localPath, data); err != nil {
				return false, err
			}
			return true, nil
		}
		lastErr = err
		logger.Debug("Attempt %d/%d failed for %s: %v", attempt, c.maxRetries, url, err)

		// Linear backoff: attempt n waits n * baseDelay.
		if attempt < c.maxRetries {
			select {
			case <-time.After(time.Duration(attempt) * c.baseDelay):
			case <-ctx.Done():
				return false, ctx.Err()
			}
		}
	}

	return false, &domain.FetchError{URL: url, Attempts: c.maxRetries, Err: lastErr}
}

// get performs one transfer attempt and returns the complete body.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// write lands the complete body on disk via a uniquely named temp file
// and rename, so a failure never leaves a partial asset behind.
func (c *Client) write(localPath string, data []byte) error {
	tmp := localPath + "." + uuid.New().String() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write asset: %w", err)
	}
	if err := os.Rename(tmp, localPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalise asset: %w", err)
	}
	return nil
}
