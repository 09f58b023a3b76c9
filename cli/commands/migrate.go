package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/arangomigrate/cli/internal/ui"
	"github.com/satishbabariya/arangomigrate/migrate"
	"github.com/satishbabariya/arangomigrate/migrate/errdefs"
	"github.com/satishbabariya/arangomigrate/migrate/migration"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations",
	Long: `Apply every migration with a version above the current schema version,
in ascending order. The schema snapshot is written after each migration, so
a failed run can be resumed once the failing migration is fixed.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

var rollbackLegacyVersion bool

var rollbackCmd = &cobra.Command{
	Use:   "rollback [count]",
	Short: "Roll back migrations (one by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRollback,
}

func init() {
	rollbackCmd.Flags().BoolVar(&rollbackLegacyVersion, "legacy-version", false, "Set the version to the rolled back version minus one")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(rollbackCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	if _, err := migration.LoadAll(cfg.SchemaPath, migrationOptions()); err != nil {
		return err
	}
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	manager, err := migrate.NewManager(cfg.SchemaPath, managerOptions(sess.tracker))
	if err != nil {
		return err
	}
	pending := len(manager.Pending())
	if pending == 0 {
		ui.PrintInfo("Schema is up to date (version %d)", manager.Schema().CurrentVersion())
		return nil
	}

	spinner, _ := ui.PrintSpinner("Applying migrations...")
	applied, err := manager.Up(ctx, sess.db)
	spinner.Stop()
	if err != nil {
		ui.PrintWarning("%d of %d migrations applied before the failure", applied, pending)
		return err
	}
	ui.PrintSuccess("Applied %d migrations, schema version %d", applied, manager.Schema().CurrentVersion())
	return nil
}

func runRollback(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	count := 1
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return errdefs.InvalidParameter("COUNT", "Must be a valid number")
		}
		count = n
	}

	if _, err := migration.LoadAll(cfg.SchemaPath, migrationOptions()); err != nil {
		return err
	}
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	opts := managerOptions(sess.tracker)
	opts.LegacyRollbackVersion = rollbackLegacyVersion
	manager, err := migrate.NewManager(cfg.SchemaPath, opts)
	if err != nil {
		return err
	}

	rolledBack, err := manager.Down(ctx, count, sess.db)
	if err != nil {
		ui.PrintWarning("%d migrations rolled back before the failure", rolledBack)
		return err
	}
	if v, ok := manager.Schema().Version(); ok {
		ui.PrintSuccess("Rolled back %d migrations, schema version %d", rolledBack, v)
	} else {
		ui.PrintSuccess("Rolled back %d migrations, schema is not versioned", rolledBack)
	}
	return nil
}
