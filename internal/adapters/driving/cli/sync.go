package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmirror/internal/core/services"
	"github.com/custodia-labs/docmirror/internal/logger"
)

var syncCmd = &cobra.Command{
	Use:   "sync <input-dir> <output-dir>",
	Short: "Synchronise document collections into the local mirror",
	Long: `Mirrors every markdown document under the input directory into the
output directory, localising embedded images. Unchanged documents with
all assets present are skipped. Download failures are recorded in the
collection's missing-images.json and do not fail the run.`,
	Args: cobra.ExactArgs(2),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	inputDir, outputDir := args[0], args[1]

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if cfg.LogToFile {
		if err := logger.EnableFile(filepath.Join(outputDir, "sync.log")); err != nil {
			logger.Warn("File logging disabled: %v", err)
		}
	}

	sum, err := newEngine().SyncTree(cmd.Context(), inputDir, outputDir)
	if err != nil {
		return err
	}

	printSummary(cmd, sum)
	return nil
}

func printSummary(cmd *cobra.Command, sum services.Summary) {
	cmd.Printf("Collections: %d (processed %d, skipped %d, failed %d)\n",
		sum.Collections, sum.Processed, sum.Skipped, sum.FailedDocs)
	cmd.Printf("Images: %d referenced, %d downloaded, %d failed\n",
		sum.Images, sum.Downloaded, sum.FailedAssets)
	if sum.BytesReclaimed > 0 {
		cmd.Printf("Cleanup reclaimed %d bytes\n", sum.BytesReclaimed)
	}
	if sum.FailedAssets > 0 {
		cmd.Println(`Failed downloads are ledgered; run "docmirror recover" to retry them.`)
	}
}
