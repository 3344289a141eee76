package cli

import (
	"github.com/spf13/cobra"
)

var recoverCmd = &cobra.Command{
	Use:   "recover <output-dir>",
	Short: "Retry ledgered downloads and report orphaned assets",
	Long: `Scans already-processed collections under the output directory.
Assets that are referenced by the mapping or the failure ledger but
absent from disk are downloaded again; asset files with no mapping
entry are reported as orphaned and left in place for manual triage.
Documents are not rewritten; re-run sync to pick up recovered assets.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecover,
}

func init() {
	rootCmd.AddCommand(recoverCmd)
}

func runRecover(cmd *cobra.Command, args []string) error {
	rep, err := newRecovery().RecoverTree(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	cmd.Printf("Recovered: %d, still missing: %d\n", rep.Recovered, rep.StillMissing)
	for _, cr := range rep.Collections {
		for _, orphan := range cr.Orphans {
			cmd.Printf("Orphaned asset in %s: %s\n", cr.Collection, orphan)
		}
	}
	if rep.Orphans == 0 {
		cmd.Println("No orphaned assets found.")
	}
	return nil
}
