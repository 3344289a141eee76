// Package cli wires the cobra command tree. Commands construct the
// core services from the loaded configuration; no service state is
// global beyond the command wiring itself.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmirror/internal/adapters/driven/fetch"
	"github.com/custodia-labs/docmirror/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/docmirror/internal/config"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/core/services"
	"github.com/custodia-labs/docmirror/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "docmirror",
	Short: "Mirror remote document collections with localised images",
	Long: `docmirror keeps a local mirror of markdown document collections and
the images they embed. Re-runs are incremental: unchanged documents are
skipped via content fingerprints, existing assets are cache hits, and
failed downloads are ledgered for later recovery.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if verbose {
			cfg.LogLevel = "debug"
		}
		logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
		return nil
	},
}

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default ~/.docmirror/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
}

// Execute runs the root command and returns the process exit code.
// Per-asset failures never fail the run; only structural errors do.
func Execute() int {
	defer logger.CloseFile()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newEngine wires a sync engine from the loaded configuration.
func newEngine() *services.Engine {
	return services.NewEngine(fetch.New(cfg), newMappingStore, newLedger, cfg.MaxConcurrent)
}

// newRecovery wires a recovery scanner from the loaded configuration.
func newRecovery() *services.Recovery {
	return services.NewRecovery(fetch.New(cfg), newMappingStore, newLedger)
}

func newMappingStore(dir string) driven.MappingStore { return file.NewMappingStore(dir) }

func newLedger(dir string) driven.Ledger { return file.NewLedger(dir) }
