package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/extract"
	"github.com/custodia-labs/docmirror/internal/logger"
)

// Result summarises the sync of one document collection.
type Result struct {
	// Processed is true when the document was (re)processed.
	Processed bool

	// Skipped is true when the document was unchanged and fully
	// cached, so nothing was done.
	Skipped bool

	// ImageCount is the number of asset references in the document.
	ImageCount int

	// Downloaded counts assets actually transferred (cache hits are
	// not downloads).
	Downloaded int

	// Failed counts assets whose download exhausted its retries.
	Failed int

	// BytesReclaimed is the size of unused assets the cleanup pass
	// removed.
	BytesReclaimed int64
}

// Summary aggregates a whole sync run.
type Summary struct {
	Collections    int
	Processed      int
	Skipped        int
	FailedDocs     int
	Images         int
	Downloaded     int
	FailedAssets   int
	BytesReclaimed int64
}

// Engine decides per document whether reprocessing is required and
// orchestrates extraction, download, link rewriting and persistence.
type Engine struct {
	fetcher       driven.Fetcher
	stores        driven.MappingStoreFactory
	ledgers       driven.LedgerFactory
	maxConcurrent int
	now           func() time.Time
}

// NewEngine creates a sync engine. maxConcurrent bounds in-flight
// downloads for one document.
func NewEngine(
	fetcher driven.Fetcher,
	stores driven.MappingStoreFactory,
	ledgers driven.LedgerFactory,
	maxConcurrent int,
) *Engine {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Engine{
		fetcher:       fetcher,
		stores:        stores,
		ledgers:       ledgers,
		maxConcurrent: maxConcurrent,
		now:           time.Now,
	}
}

// SyncTree mirrors every markdown document under inputDir into
// outputDir. Each document is one collection: its rewritten copy, its
// asset subdirectory and its mapping live under outputDir/<stem>/.
// A missing input directory is a structural failure and aborts the
// run; a document that fails to read or process is logged, counted
// and skipped.
func (e *Engine) SyncTree(ctx context.Context, inputDir, outputDir string) (Summary, error) {
	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		return Summary{}, fmt.Errorf("%w: %s", domain.ErrInputDirMissing, inputDir)
	}

	var docs []string
	walkErr := filepath.WalkDir(inputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			docs = append(docs, p)
		}
		return nil
	})
	if walkErr != nil {
		return Summary{}, fmt.Errorf("scan input directory: %w", walkErr)
	}
	if len(docs) == 0 {
		logger.Warn("No markdown documents found in %s", inputDir)
	}

	var sum Summary
	for _, docPath := range docs {
		sum.Collections++
		res, err := e.SyncCollection(ctx, docPath, outputDir)
		if err != nil {
			sum.FailedDocs++
			logger.Error("Failed to process %s: %v", filepath.Base(docPath), err)
			continue
		}

		if res.Processed {
			sum.Processed++
		}
		if res.Skipped {
			sum.Skipped++
		}
		sum.Images += res.ImageCount
		sum.Downloaded += res.Downloaded
		sum.FailedAssets += res.Failed
		sum.BytesReclaimed += res.BytesReclaimed
	}

	logger.Info("Sync complete: %d collections, %d processed, %d skipped, %d downloads, %d failed assets",
		sum.Collections, sum.Processed, sum.Skipped, sum.Downloaded, sum.FailedAssets)
	return sum, nil
}

// SyncCollection mirrors one source document into its collection
// directory under outputRoot, then runs the cleanup pass and ledger
// maintenance for that collection.
func (e *Engine) SyncCollection(ctx context.Context, docPath, outputRoot string) (Result, error) {
	content, err := os.ReadFile(docPath)
	if err != nil {
		return Result{}, fmt.Errorf("read document: %w", err)
	}
	doc := domain.NewSourceDocument(filepath.Base(docPath), content)

	stem := strings.TrimSuffix(doc.Name, filepath.Ext(doc.Name))
	dir := filepath.Join(outputRoot, stem)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create collection directory: %w", err)
	}

	store := e.stores(dir)
	if err := store.Load(); err != nil {
		return Result{}, err
	}
	ledger := e.ledgers(dir)
	if err := ledger.Load(); err != nil {
		return Result{}, err
	}

	// Every asset this pass touches, successful or not. Cleanup must
	// not delete a file the pass still expects.
	used := make(map[string]bool)

	res, err := e.syncDocument(ctx, doc, dir, store, ledger, used)
	if err != nil {
		return res, err
	}

	res.BytesReclaimed = e.cleanup(dir, used, store)

	if err := store.Persist(); err != nil {
		return res, err
	}
	if err := ledger.Persist(); err != nil {
		return res, err
	}
	return res, nil
}

// syncDocument applies the decision policy for one document:
// skip when unchanged and fully cached, otherwise extract, download,
// rewrite and record.
func (e *Engine) syncDocument(
	ctx context.Context,
	doc domain.SourceDocument,
	dir string,
	store driven.MappingStore,
	ledger driven.Ledger,
	used map[string]bool,
) (Result, error) {
	outPath := filepath.Join(dir, doc.Name)
	refs := extract.Images(string(doc.Content))
	res := Result{ImageCount: len(refs)}

	if e.upToDate(doc, outPath, refs, dir, store) {
		for _, ref := range refs {
			used[ref.LocalName()] = true
		}
		res.Skipped = true
		logger.Info("Skipping %s: unchanged and fully cached", doc.Name)
		return res, nil
	}

	res.Processed = true
	logger.Info("Processing %s (%d image references)", doc.Name, len(refs))

	outcomes := e.download(ctx, refs, dir)

	// Rewrite only references whose asset is in place. Failures keep
	// the original remote URL so the output never carries a broken
	// local link.
	content := string(doc.Content)
	for _, ref := range refs {
		name := ref.LocalName()
		used[name] = true

		if outcomes[name].err != nil {
			continue
		}
		rel := path.Join(domain.AssetDirName, name)
		rewritten := strings.Replace(ref.Match, ref.URL, rel, 1)
		content = strings.Replace(content, ref.Match, rewritten, 1)
	}

	for name, out := range outcomes {
		rel := path.Join(domain.AssetDirName, name)
		if out.err != nil {
			res.Failed++
			ledger.Set(name, domain.MissingAsset{
				OriginalURL:   out.url,
				ExpectedPath:  rel,
				LocalFilePath: filepath.Join(dir, domain.AssetDirName, name),
				Error:         out.err.Error(),
				SourceFile:    doc.Name,
			})
			logger.Warn("Download failed for %s: %v", out.url, out.err)
			continue
		}

		if out.downloaded {
			res.Downloaded++
		}
		store.UpsertAsset(name, domain.AssetRecord{OriginalURL: out.url, LocalPath: rel})
		ledger.Remove(name)
	}

	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return res, fmt.Errorf("write document: %w", err)
	}

	store.SetMetadata(domain.CollectionMeta{
		SourceFileHash: doc.Fingerprint,
		LastProcessed:  e.now(),
	})
	return res, nil
}

// upToDate reports whether the document can be skipped: output file
// present, fingerprint unchanged since the last completed pass, and
// every referenced asset already on disk.
func (e *Engine) upToDate(
	doc domain.SourceDocument,
	outPath string,
	refs []domain.AssetReference,
	dir string,
	store driven.MappingStore,
) bool {
	if _, err := os.Stat(outPath); err != nil {
		return false
	}

	meta := store.Meta()
	if meta.SourceFileHash == "" || meta.SourceFileHash != doc.Fingerprint {
		return false
	}

	for _, ref := range refs {
		local := filepath.Join(dir, domain.AssetDirName, ref.LocalName())
		if _, err := os.Stat(local); err != nil {
			return false
		}
	}
	return true
}

// outcome is the download result for one distinct asset.
type outcome struct {
	url        string
	downloaded bool
	err        error
}

// download fetches each distinct asset of the reference list once,
// with at most maxConcurrent transfers in flight. Duplicate
// references to one URL share a single outcome, so a URL is never
// downloaded twice for one document.
func (e *Engine) download(ctx context.Context, refs []domain.AssetReference, dir string) map[string]outcome {
	urls := make(map[string]string)
	var order []string
	for _, ref := range refs {
		name := ref.LocalName()
		if _, seen := urls[name]; !seen {
			urls[name] = ref.URL
			order = append(order, name)
		}
	}

	outcomes := make(map[string]outcome, len(order))
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(e.maxConcurrent)
	for _, name := range order {
		name := name
		url := urls[name]
		local := filepath.Join(dir, domain.AssetDirName, name)
		g.Go(func() error {
			downloaded, err := e.fetcher.Fetch(ctx, url, local)
			mu.Lock()
			outcomes[name] = outcome{url: url, downloaded: downloaded, err: err}
			mu.Unlock()
			return nil
		})
	}
	// Workers report failures through outcomes, never as errors.
	_ = g.Wait()

	return outcomes
}
