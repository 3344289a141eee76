package services

import (
	"os"
	"path/filepath"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/logger"
)

// cleanup removes local asset files the just-completed pass did not
// use and prunes their mapping entries, returning the bytes
// reclaimed. Failed assets are in the used set, so a file that later
// appears for them is never deleted by the pass that still expects
// it. Collection metadata survives cleanup by construction: it is not
// an asset entry.
func (e *Engine) cleanup(dir string, used map[string]bool, store driven.MappingStore) int64 {
	assetDir := filepath.Join(dir, domain.AssetDirName)

	var reclaimed int64
	entries, err := os.ReadDir(assetDir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Cleanup could not read %s: %v", assetDir, err)
		}
	} else {
		for _, entry := range entries {
			if entry.IsDir() || used[entry.Name()] {
				continue
			}

			var size int64
			if info, err := entry.Info(); err == nil {
				size = info.Size()
			}
			if err := os.Remove(filepath.Join(assetDir, entry.Name())); err != nil {
				logger.Warn("Cleanup could not remove %s: %v", entry.Name(), err)
				continue
			}
			reclaimed += size
			store.RemoveAsset(entry.Name())
			logger.Debug("Removed unused asset %s", entry.Name())
		}
	}

	// Entries whose file is already gone still need pruning.
	for name := range store.Assets() {
		if !used[name] {
			store.RemoveAsset(name)
		}
	}

	if reclaimed > 0 {
		logger.Info("Cleanup reclaimed %d bytes in %s", reclaimed, dir)
	}
	return reclaimed
}
