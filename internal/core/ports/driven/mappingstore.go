package driven

import "github.com/custodia-labs/docmirror/internal/core/domain"

// MappingStore is the authoritative persisted record, for one output
// collection, of which local asset file corresponds to which remote
// URL, plus collection-level metadata.
//
// Invariant: every asset entry denotes a file that was successfully
// downloaded at some point. The cleanup pass prunes entries for assets
// no longer referenced; metadata survives cleanup.
type MappingStore interface {
	// Load reads the persisted mapping. A missing file is not an
	// error (empty state). A file that exists but fails to parse is
	// treated as no prior state, forcing full reprocessing.
	Load() error

	// Exists reports whether a persisted mapping is present, i.e.
	// whether the collection has ever completed a pass.
	Exists() bool

	// Meta returns the collection metadata.
	Meta() domain.CollectionMeta

	// SetMetadata replaces the collection metadata.
	SetMetadata(meta domain.CollectionMeta)

	// Asset returns the record for a local asset name.
	Asset(name string) (domain.AssetRecord, bool)

	// Assets returns all asset entries keyed by local asset name.
	// The returned map is a copy; mutating it does not affect the store.
	Assets() map[string]domain.AssetRecord

	// UpsertAsset stores or replaces an asset entry.
	UpsertAsset(name string, rec domain.AssetRecord)

	// RemoveAsset deletes an asset entry.
	RemoveAsset(name string)

	// Persist writes the full mapping to disk, replacing any previous
	// contents.
	Persist() error
}

// MappingStoreFactory creates a MappingStore bound to one collection
// output directory.
type MappingStoreFactory func(collectionDir string) MappingStore
