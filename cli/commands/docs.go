package commands

import (
	_ "embed"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/arangomigrate/cli/internal/ui"
)

//go:embed docs.md
var migrationDocs string

var docsRaw bool

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Print the migration file reference",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if docsRaw {
			fmt.Fprint(cmd.OutOrStdout(), migrationDocs)
			return nil
		}
		return ui.PrintMarkdown(migrationDocs)
	},
}

func init() {
	docsCmd.Flags().BoolVar(&docsRaw, "raw", false, "Print the markdown source")

	rootCmd.AddCommand(docsCmd)
}
