package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInputDirMissing indicates the required input directory does
	// not exist. This is a structural failure and aborts the run.
	ErrInputDirMissing = errors.New("input directory missing")
)

// FetchError is returned when a download exhausts its retries.
// It carries the last underlying error.
type FetchError struct {
	// URL is the remote URL that failed.
	URL string

	// Attempts is how many attempts were made.
	Attempts int

	// Err is the last underlying error.
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

// Unwrap returns the last underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}
