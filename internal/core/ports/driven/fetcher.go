package driven

import "context"

// Fetcher retrieves a single remote asset to a local path.
type Fetcher interface {
	// Fetch downloads url to localPath. If localPath already exists
	// it returns immediately without a network call (cache hit).
	// The returned bool is true only when a network transfer actually
	// occurred. The write is all-or-nothing: on failure no partial
	// file is left behind. Exhausted retries yield a *domain.FetchError.
	Fetch(ctx context.Context, url, localPath string) (bool, error)
}
