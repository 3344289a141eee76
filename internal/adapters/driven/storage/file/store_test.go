package file

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

func TestMappingStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	store := NewMappingStore(dir)
	require.NoError(t, store.Load())
	assert.False(t, store.Exists())

	meta := domain.CollectionMeta{
		SourceFileHash: "abc123",
		LastProcessed:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	store.SetMetadata(meta)
	store.UpsertAsset("h1.png", domain.AssetRecord{
		OriginalURL: "https://example.com/h1.png",
		LocalPath:   "images/h1.png",
	})
	require.NoError(t, store.Persist())
	assert.True(t, store.Exists())

	reloaded := NewMappingStore(dir)
	require.NoError(t, reloaded.Load())

	assert.Equal(t, meta, reloaded.Meta())
	rec, ok := reloaded.Asset("h1.png")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/h1.png", rec.OriginalURL)
	assert.Equal(t, "images/h1.png", rec.LocalPath)
}

func TestMappingStore_DiskFormat(t *testing.T) {
	dir := t.TempDir()

	store := NewMappingStore(dir)
	store.SetMetadata(domain.CollectionMeta{SourceFileHash: "ff00"})
	store.UpsertAsset("a.png", domain.AssetRecord{
		OriginalURL: "https://example.com/a.png",
		LocalPath:   "images/a.png",
	})
	require.NoError(t, store.Persist())

	data, err := os.ReadFile(filepath.Join(dir, MappingFileName))
	require.NoError(t, err)

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	// Metadata serialises under the reserved key, asset entries under
	// their local file names.
	require.Contains(t, raw, "_metadata")
	assert.Equal(t, "ff00", raw["_metadata"]["sourceFileHash"])
	require.Contains(t, raw, "a.png")
	assert.Equal(t, "https://example.com/a.png", raw["a.png"]["originalUrl"])
}

func TestMappingStore_CorruptFileIsEmptyState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, MappingFileName), []byte("{not json"), 0o644))

	store := NewMappingStore(dir)
	require.NoError(t, store.Load(), "corruption must never be fatal")

	assert.Empty(t, store.Assets())
	assert.Empty(t, store.Meta().SourceFileHash)
	assert.True(t, store.Exists())
}

func TestMappingStore_PersistIsFullRewrite(t *testing.T) {
	dir := t.TempDir()

	store := NewMappingStore(dir)
	store.UpsertAsset("old.png", domain.AssetRecord{OriginalURL: "https://example.com/old.png", LocalPath: "images/old.png"})
	require.NoError(t, store.Persist())

	store.RemoveAsset("old.png")
	store.UpsertAsset("new.png", domain.AssetRecord{OriginalURL: "https://example.com/new.png", LocalPath: "images/new.png"})
	require.NoError(t, store.Persist())

	reloaded := NewMappingStore(dir)
	require.NoError(t, reloaded.Load())

	_, ok := reloaded.Asset("old.png")
	assert.False(t, ok, "stale entries must not survive a persist")
	_, ok = reloaded.Asset("new.png")
	assert.True(t, ok)
}

func TestLedger_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	ledger := NewLedger(dir)
	require.NoError(t, ledger.Load())
	assert.Zero(t, ledger.Len())

	entry := domain.MissingAsset{
		OriginalURL:   "https://example.com/x.png",
		ExpectedPath:  "images/x.png",
		LocalFilePath: filepath.Join(dir, "images", "x.png"),
		Error:         "unexpected status 500",
		SourceFile:    "guide.md",
	}
	ledger.Set("x.png", entry)
	require.NoError(t, ledger.Persist())

	reloaded := NewLedger(dir)
	require.NoError(t, reloaded.Load())

	require.Equal(t, 1, reloaded.Len())
	assert.Equal(t, entry, reloaded.Entries()["x.png"])
}

func TestLedger_EmptyPersistRemovesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LedgerFileName)

	ledger := NewLedger(dir)
	ledger.Set("x.png", domain.MissingAsset{OriginalURL: "https://example.com/x.png"})
	require.NoError(t, ledger.Persist())
	require.FileExists(t, path)

	ledger.Remove("x.png")
	require.NoError(t, ledger.Persist())
	assert.NoFileExists(t, path, "a healthy collection carries no ledger file")

	// Persisting empty again must not fail when the file is already gone.
	require.NoError(t, ledger.Persist())
}

func TestLedger_CorruptFileIsEmptyState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, LedgerFileName), []byte("[]"), 0o644))

	ledger := NewLedger(dir)
	require.NoError(t, ledger.Load())
	assert.Zero(t, ledger.Len())
}
