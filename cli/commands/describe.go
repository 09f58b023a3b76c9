package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/arangomigrate/cli/internal/ui"
	"github.com/satishbabariya/arangomigrate/migrate/database"
	"github.com/satishbabariya/arangomigrate/migrate/errdefs"
)

var describeMarkdown bool

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Describe the database state",
	Long: `Describe the current database state: the synced schema version, graphs,
and every collection with its type, document count and indexes.`,
	Args: cobra.NoArgs,
	RunE: runDescribe,
}

var describeIndexesCmd = &cobra.Command{
	Use:   "describe-indexes <collection>",
	Short: "Describe the indexes of a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runDescribeIndexes,
}

func init() {
	describeCmd.Flags().BoolVar(&describeMarkdown, "markdown", false, "Render the report as markdown")
	describeIndexesCmd.Flags().BoolVar(&describeMarkdown, "markdown", false, "Render the report as markdown")

	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(describeIndexesCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	tracked := sess.tracked
	if snapshot, err := loadSnapshot(); err != nil {
		return err
	} else if snapshot != nil {
		tracked = snapshot
	}

	graphs, err := sess.db.Graphs(ctx)
	if err != nil {
		return errdefs.Database(err)
	}
	collections, err := sess.db.Collections(ctx)
	if err != nil {
		return errdefs.Database(err)
	}

	headers := []string{"Name", "Type", "Doc Count", "Index Count", "Wait for Sync", "In Schema"}
	rows := make([][]string, 0, len(collections))
	for _, info := range collections {
		if info.IsSystem {
			continue
		}
		indexes, err := sess.db.Indexes(ctx, info.Name)
		if err != nil {
			return errdefs.Database(err)
		}
		_, inSchema := tracked.Collection(info.Name)
		rows = append(rows, []string{
			info.Name,
			info.Type.String(),
			fmt.Sprint(info.Count),
			fmt.Sprint(len(indexes)),
			fmt.Sprint(info.WaitForSync),
			fmt.Sprint(inSchema),
		})
	}

	version := "not versioned yet (use migrate)"
	if v, ok := tracked.Version(); ok {
		version = fmt.Sprint(v)
	}

	if describeMarkdown {
		var b strings.Builder
		fmt.Fprintf(&b, "# Description of %s\n\n", sess.db.Name())
		fmt.Fprintf(&b, "- Database schema version: %s\n", version)
		fmt.Fprintf(&b, "- Database graph count: %d\n\n", len(graphs))
		b.WriteString(ui.MarkdownTable(headers, rows))
		return ui.PrintMarkdown(b.String())
	}

	ui.PrintSection("Description of " + sess.db.Name())
	ui.PrintList([]string{
		"Database schema version: " + version,
		fmt.Sprintf("Database graph count: %d", len(graphs)),
	})
	for _, row := range rows {
		row[5] = ui.YesNo(row[5] == "true")
	}
	ui.PrintTable(headers, rows)
	return nil
}

func runDescribeIndexes(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	collection := args[0]

	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	if _, err := sess.db.Collection(ctx, collection); err != nil {
		if database.IsNotFound(err) {
			return errdefs.MissingCollection(collection)
		}
		return errdefs.Database(err)
	}
	indexes, err := sess.db.Indexes(ctx, collection)
	if err != nil {
		return errdefs.Database(err)
	}

	headers := []string{"Name", "ID", "Fields", "Type", "Settings"}
	rows := make([][]string, 0, len(indexes))
	for _, idx := range indexes {
		rows = append(rows, []string{
			idx.Name,
			idx.ID,
			strings.Join(idx.Fields, ", "),
			string(idx.Settings.Type),
			indexSettings(idx.Settings),
		})
	}

	title := fmt.Sprintf("Description of %s collection %s indexes", sess.db.Name(), collection)
	if describeMarkdown {
		return ui.PrintMarkdown("# " + title + "\n\n" + ui.MarkdownTable(headers, rows))
	}
	ui.PrintSection(title)
	ui.PrintTable(headers, rows)
	return nil
}

func indexSettings(s database.IndexSettings) string {
	var parts []string
	if s.Unique {
		parts = append(parts, "unique")
	}
	if s.Sparse {
		parts = append(parts, "sparse")
	}
	if s.Deduplicate != nil {
		parts = append(parts, fmt.Sprintf("deduplicate=%t", *s.Deduplicate))
	}
	if s.ExpireAfter > 0 {
		parts = append(parts, fmt.Sprintf("expireAfter=%d", s.ExpireAfter))
	}
	if s.GeoJSON {
		parts = append(parts, "geoJson")
	}
	if s.MinLength > 0 {
		parts = append(parts, fmt.Sprintf("minLength=%d", s.MinLength))
	}
	return strings.Join(parts, ", ")
}
