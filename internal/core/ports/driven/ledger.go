package driven

import "github.com/custodia-labs/docmirror/internal/core/domain"

// Ledger is the per-collection record of assets that failed to
// download and remain pending.
//
// Invariant: a ledger entry and its local file never coexist; once
// the file is downloaded the entry is removed. A collection with no
// failures has no ledger file at all.
type Ledger interface {
	// Load reads the persisted ledger. A missing file means no
	// pending failures. A corrupt file is treated as empty.
	Load() error

	// Entries returns all ledger entries keyed by local asset name.
	// The returned map is a copy.
	Entries() map[string]domain.MissingAsset

	// Set stores or replaces an entry.
	Set(name string, rec domain.MissingAsset)

	// Remove deletes an entry.
	Remove(name string)

	// Len returns the number of entries.
	Len() int

	// Persist writes the ledger to disk, or deletes the ledger file
	// when no entries remain.
	Persist() error
}

// LedgerFactory creates a Ledger bound to one collection output
// directory.
type LedgerFactory func(collectionDir string) Ledger
