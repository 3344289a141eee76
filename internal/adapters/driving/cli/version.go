package cli

import "github.com/spf13/cobra"

// version is overridden at build time via -ldflags.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the docmirror version",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("docmirror %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
