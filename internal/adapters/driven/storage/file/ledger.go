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

// LedgerFileName is the per-collection failure ledger. It exists only
// while the collection has pending download failures.
const LedgerFileName = "missing-images.json"

// Ensure Ledger implements the interface.
var _ driven.Ledger = (*Ledger)(nil)

// Ledger is the JSON-file implementation of driven.Ledger.
type Ledger struct {
	path    string
	entries map[string]domain.MissingAsset
}

// NewLedger creates a ledger bound to one collection directory.
func NewLedger(collectionDir string) *Ledger {
	return &Ledger{
		path:    filepath.Join(collectionDir, LedgerFileName),
		entries: make(map[string]domain.MissingAsset),
	}
}

// Load reads the ledger file. Missing means no pending failures; a
// corrupt file is logged and treated as empty.
func (l *Ledger) Load() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read ledger: %w", err)
	}

	if err := json.Unmarshal(data, &l.entries); err != nil {
		logger.Warn("Ledger file %s is unreadable, resetting: %v", l.path, err)
		l.entries = make(map[string]domain.MissingAsset)
	}
	return nil
}

// Entries returns a copy of all entries.
func (l *Ledger) Entries() map[string]domain.MissingAsset {
	out := make(map[string]domain.MissingAsset, len(l.entries))
	for k, v := range l.entries {
		out[k] = v
	}
	return out
}

// Set stores or replaces an entry.
func (l *Ledger) Set(name string, rec domain.MissingAsset) {
	l.entries[name] = rec
}

// Remove deletes an entry.
func (l *Ledger) Remove(name string) {
	delete(l.entries, name)
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Persist writes the ledger, or removes the file entirely when no
// failures remain so a healthy collection carries no ledger.
func (l *Ledger) Persist() error {
	if len(l.entries) == 0 {
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove ledger: %w", err)
		}
		return nil
	}

	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return l.path
}
