package domain

import "time"

// AssetRecord is one persisted mapping entry: a local asset file that
// was successfully downloaded at some point, keyed in the mapping by
// its local file name.
type AssetRecord struct {
	// OriginalURL is the remote URL the asset was fetched from.
	OriginalURL string `json:"originalUrl"`

	// LocalPath is the collection-relative path of the local file,
	// e.g. "images/h1.png". Always forward-slash separated.
	LocalPath string `json:"localPath"`
}

// CollectionMeta is the collection-level metadata carried alongside
// asset entries. It is stored separately from the asset map in memory
// and serialised under a reserved key on disk.
type CollectionMeta struct {
	// SourceFileHash is the fingerprint of the source document the
	// last completed pass processed.
	SourceFileHash string `json:"sourceFileHash"`

	// LastProcessed is when the collection was last processed.
	LastProcessed time.Time `json:"lastProcessed"`
}

// MissingAsset is one failure-ledger entry: an asset whose download
// exhausted its retries. The local file must not exist while the
// entry does; recovery removes the entry once the file is in place.
type MissingAsset struct {
	// OriginalURL is the remote URL that failed to download.
	OriginalURL string `json:"originalUrl"`

	// ExpectedPath is the collection-relative path the asset should
	// occupy once downloaded.
	ExpectedPath string `json:"expectedPath"`

	// LocalFilePath is the absolute path of the expected local file.
	LocalFilePath string `json:"localFilePath"`

	// Error is the last recorded download error.
	Error string `json:"error"`

	// SourceFile is the document that references the asset.
	SourceFile string `json:"sourceFile"`
}
