package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/arangomigrate/cli/internal/ui"
	"github.com/satishbabariya/arangomigrate/migrate"
	"github.com/satishbabariya/arangomigrate/migrate/history"
	"github.com/satishbabariya/arangomigrate/migrate/schema"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	Long: `Show the current schema version with the applied and pending migrations.
When a database is configured, the version tracked inside it is compared
with the schema file.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	var records map[schema.Version]history.MigrationRecord
	var sess *session
	if cfg.RequireDatabase() == nil {
		var err error
		if sess, err = openSession(ctx); err != nil {
			return err
		}
		defer sess.Close()
	}

	manager, err := migrate.NewManager(cfg.SchemaPath, managerOptions(nil))
	if err != nil {
		return err
	}
	current, versioned := manager.Schema().Version()

	ui.PrintHeader("arangomigrate", "Migration status")
	if versioned {
		ui.PrintInfo("Schema version: %d", current)
	} else {
		ui.PrintInfo("Schema is not versioned yet (use migrate)")
	}

	if sess != nil {
		all, err := sess.tracker.GetAll(ctx)
		if err != nil {
			return err
		}
		records = make(map[schema.Version]history.MigrationRecord, len(all))
		for _, r := range all {
			records[r.Version] = r
		}
		if tracked := sess.tracked.CurrentVersion(); tracked != manager.Schema().CurrentVersion() {
			ui.PrintWarning("Database %s tracks version %d but %s is at version %d",
				sess.db.Name(), tracked, manager.SchemaPath(), manager.Schema().CurrentVersion())
		}
	}

	rows := make([][]string, 0, len(manager.Migrations()))
	for _, m := range manager.Migrations() {
		state := "pending"
		if versioned && m.Version <= current {
			state = "applied"
		}
		appliedAt := ""
		if r, ok := records[m.Version]; ok {
			if r.RolledBack && state == "pending" {
				state = "rolled back"
			}
			appliedAt = r.AppliedAt.Local().Format(time.DateTime)
		}
		rows = append(rows, []string{fmt.Sprint(m.Version), m.Name, ui.MigrationState(state), appliedAt})
	}
	ui.PrintTable([]string{"Version", "Name", "State", "Applied At"}, rows)

	ui.PrintInfo("%d applied, %d pending", len(manager.Applied()), len(manager.Pending()))
	return nil
}
