package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/arangomigrate/cli/internal/ui"
	"github.com/satishbabariya/arangomigrate/migrate/discover"
	"github.com/satishbabariya/arangomigrate/migrate/operation"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Generate a migration for objects missing from the schema",
	Long: `Inspect the live database and write a migration creating every
collection, index and graph the tracked schema does not know about.

The migration is not applied. Review it, then run migrate.`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	m, err := discover.Discover(ctx, sess.db, sess.tracked, cfg.SchemaPath, discover.Options{
		Options:            migrationOptions(),
		TrackingCollection: sess.tracker.Collection(),
	})
	if err != nil {
		return err
	}

	if len(m.Data.Up) == 0 {
		ui.PrintInfo("No untracked collections, indexes or graphs found")
	} else {
		items := make([]string, 0, len(m.Data.Up))
		for _, op := range m.Data.Up {
			items = append(items, "• "+describeOperation(op))
		}
		ui.PrintBox("Discovered", strings.Join(items, "\n"))
	}
	ui.PrintSuccess("Wrote %s", m.Path)
	return nil
}

func describeOperation(op operation.Operation) string {
	switch o := op.(type) {
	case operation.CreateCollection:
		return o.Kind() + " " + o.Name
	case operation.CreateEdgeCollection:
		return o.Kind() + " " + o.Name
	case operation.CreateIndex:
		return o.Kind() + " " + o.Collection + "." + o.Name
	case operation.CreateGraph:
		return o.Kind() + " " + o.Name
	}
	return op.Kind()
}
