// Package file implements the persistence ports over per-collection
// JSON files, the pipeline's only durable state.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/logger"
)

// MappingFileName is the per-collection mapping file.
const MappingFileName = "mapping.json"

// metadataKey is the reserved key the collection metadata serialises
// under. It is never an asset entry.
const metadataKey = "_metadata"

// Ensure MappingStore implements the interface.
var _ driven.MappingStore = (*MappingStore)(nil)

// MappingStore is the JSON-file implementation of driven.MappingStore.
// Metadata lives in a dedicated field in memory; only the on-disk
// format uses the reserved key.
type MappingStore struct {
	path   string
	meta   domain.CollectionMeta
	assets map[string]domain.AssetRecord
}

// NewMappingStore creates a store bound to one collection directory.
func NewMappingStore(collectionDir string) *MappingStore {
	return &MappingStore{
		path:   filepath.Join(collectionDir, MappingFileName),
		assets: make(map[string]domain.AssetRecord),
	}
}

// Load reads the mapping file. A missing file is empty state. A file
// that fails to parse is logged and treated as empty, forcing full
// reprocessing of the collection rather than failing the run.
func (s *MappingStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read mapping: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn("Mapping file %s is unreadable, rebuilding: %v", s.path, err)
		s.meta = domain.CollectionMeta{}
		s.assets = make(map[string]domain.AssetRecord)
		return nil
	}

	for key, value := range raw {
		if key == metadataKey {
			if err := json.Unmarshal(value, &s.meta); err != nil {
				logger.Warn("Mapping metadata in %s is unreadable: %v", s.path, err)
			}
			continue
		}

		var rec domain.AssetRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			logger.Warn("Mapping entry %q in %s is unreadable, dropping: %v", key, s.path, err)
			continue
		}
		s.assets[key] = rec
	}
	return nil
}

// Exists reports whether the mapping file is present on disk.
func (s *MappingStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Meta returns the collection metadata.
func (s *MappingStore) Meta() domain.CollectionMeta {
	return s.meta
}

// SetMetadata replaces the collection metadata.
func (s *MappingStore) SetMetadata(meta domain.CollectionMeta) {
	s.meta = meta
}

// Asset returns the record for a local asset name.
func (s *MappingStore) Asset(name string) (domain.AssetRecord, bool) {
	rec, ok := s.assets[name]
	return rec, ok
}

// Assets returns a copy of all asset entries.
func (s *MappingStore) Assets() map[string]domain.AssetRecord {
	out := make(map[string]domain.AssetRecord, len(s.assets))
	for k, v := range s.assets {
		out[k] = v
	}
	return out
}

// UpsertAsset stores or replaces an asset entry.
func (s *MappingStore) UpsertAsset(name string, rec domain.AssetRecord) {
	s.assets[name] = rec
}

// RemoveAsset deletes an asset entry.
func (s *MappingStore) RemoveAsset(name string) {
	delete(s.assets, name)
}

// Persist writes the full mapping file, replacing previous contents.
// The file therefore never carries stale entries beyond what cleanup
// intentionally left in place.
func (s *MappingStore) Persist() error {
	out := make(map[string]any, len(s.assets)+1)
	out[metadataKey] = s.meta
	for name, rec := range s.assets {
		out[name] = rec
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write mapping: %w", err)
	}
	return nil
}

// Path returns the mapping file path.
func (s *MappingStore) Path() string {
	return s.path
}
