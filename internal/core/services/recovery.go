package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/logger"
)

// Recovery re-reads the persisted state of already-processed
// collections, retries downloads for assets that are referenced but
// absent from disk, and reports assets present but unreferenced
// (orphaned) for manual triage. It never rewrites document text.
type Recovery struct {
	fetcher driven.Fetcher
	stores  driven.MappingStoreFactory
	ledgers driven.LedgerFactory
}

// NewRecovery creates a recovery scanner.
func NewRecovery(fetcher driven.Fetcher, stores driven.MappingStoreFactory, ledgers driven.LedgerFactory) *Recovery {
	return &Recovery{fetcher: fetcher, stores: stores, ledgers: ledgers}
}

// CollectionReport is the recovery outcome for one collection.
type CollectionReport struct {
	// Collection is the collection directory name.
	Collection string

	// Recovered counts assets now present that were missing before.
	Recovered int

	// StillMissing counts assets whose retry failed again.
	StillMissing int

	// Orphans lists asset files present on disk with no mapping
	// entry. They are reported, never deleted: they may be manually
	// restored assets.
	Orphans []string
}

// Report aggregates a recovery run.
type Report struct {
	Collections  []CollectionReport
	Recovered    int
	StillMissing int
	Orphans      int
}

// RecoverTree runs recovery over every processed collection under
// outputDir. A missing output directory is a structural failure.
func (r *Recovery) RecoverTree(ctx context.Context, outputDir string) (Report, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %s", domain.ErrInputDirMissing, outputDir)
	}

	var rep Report
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(outputDir, entry.Name())

		cr, err := r.RecoverCollection(ctx, dir)
		if err != nil {
			logger.Error("Recovery failed for %s: %v", entry.Name(), err)
			continue
		}
		if cr == nil {
			continue // never processed, nothing to recover
		}

		rep.Collections = append(rep.Collections, *cr)
		rep.Recovered += cr.Recovered
		rep.StillMissing += cr.StillMissing
		rep.Orphans += len(cr.Orphans)
	}

	logger.Info("Recovery complete: %d recovered, %d still missing, %d orphaned",
		rep.Recovered, rep.StillMissing, rep.Orphans)
	return rep, nil
}

// RecoverCollection runs recovery for one collection directory.
// Returns nil when the directory holds no processed collection.
func (r *Recovery) RecoverCollection(ctx context.Context, dir string) (*CollectionReport, error) {
	store := r.stores(dir)
	ledger := r.ledgers(dir)
	if err := store.Load(); err != nil {
		return nil, err
	}
	if err := ledger.Load(); err != nil {
		return nil, err
	}
	if !store.Exists() && ledger.Len() == 0 {
		return nil, nil
	}

	rep := &CollectionReport{Collection: filepath.Base(dir)}
	pending := ledger.Entries()

	// Mapped assets whose file has gone missing.
	for name, rec := range store.Assets() {
		local := filepath.Join(dir, filepath.FromSlash(rec.LocalPath))
		if _, err := os.Stat(local); err == nil {
			continue
		}

		logger.Info("Recovering %s from %s", name, rec.OriginalURL)
		if _, err := r.fetcher.Fetch(ctx, rec.OriginalURL, local); err != nil {
			rep.StillMissing++
			ledger.Set(name, domain.MissingAsset{
				OriginalURL:   rec.OriginalURL,
				ExpectedPath:  rec.LocalPath,
				LocalFilePath: local,
				Error:         err.Error(),
				SourceFile:    pending[name].SourceFile,
			})
			logger.Warn("Recovery failed for %s: %v", rec.OriginalURL, err)
			continue
		}
		rep.Recovered++
		ledger.Remove(name)
	}

	// Ledgered failures not covered by the mapping. The fetcher's
	// cache-hit path makes a manually restored file count as
	// recovered without a network call.
	for name, m := range pending {
		if _, mapped := store.Asset(name); mapped {
			continue
		}
		local := filepath.Join(dir, filepath.FromSlash(m.ExpectedPath))

		logger.Info("Retrying %s from %s", name, m.OriginalURL)
		if _, err := r.fetcher.Fetch(ctx, m.OriginalURL, local); err != nil {
			m.Error = err.Error()
			ledger.Set(name, m)
			rep.StillMissing++
			logger.Warn("Retry failed for %s: %v", m.OriginalURL, err)
			continue
		}
		rep.Recovered++
		ledger.Remove(name)
		store.UpsertAsset(name, domain.AssetRecord{OriginalURL: m.OriginalURL, LocalPath: m.ExpectedPath})
	}

	// Orphan scan: present on disk, absent from the mapping.
	assetDir := filepath.Join(dir, domain.AssetDirName)
	if entries, err := os.ReadDir(assetDir); err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if _, mapped := store.Asset(entry.Name()); !mapped {
				rep.Orphans = append(rep.Orphans, entry.Name())
				logger.Warn("Orphaned asset in %s: %s", dir, entry.Name())
			}
		}
	}
	sort.Strings(rep.Orphans)

	if store.Exists() || len(store.Assets()) > 0 {
		if err := store.Persist(); err != nil {
			return rep, err
		}
	}
	if err := ledger.Persist(); err != nil {
		return rep, err
	}
	return rep, nil
}
