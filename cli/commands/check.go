package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/arangomigrate/cli/internal/config"
	"github.com/satishbabariya/arangomigrate/cli/internal/ui"
	"github.com/satishbabariya/arangomigrate/cli/internal/watch"
	"github.com/satishbabariya/arangomigrate/migrate"
	"github.com/satishbabariya/arangomigrate/migrate/migration"
)

var checkWatch bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load migrations and check their format",
	Long: `Load every migration file and replay all of them, up then down, against
an in-memory database. The live database is never contacted.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVarP(&checkWatch, "watch", "w", false, "Check again whenever a migration changes")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	check := func() error {
		migrations, err := migrate.Check(ctx, cfg.SchemaPath, migrate.Options{Fs: config.AppFs, Logger: logger})
		if err != nil {
			return err
		}
		ui.PrintSuccess("%d migrations are valid", len(migrations))
		return nil
	}

	if !checkWatch {
		return check()
	}

	dir, err := migration.Dir(config.AppFs, cfg.SchemaPath)
	if err != nil {
		return err
	}
	rerun := func() error {
		if err := check(); err != nil {
			ui.PrintError("%v", err)
		}
		return nil
	}
	w, err := watch.NewWatcher([]string{dir}, rerun, watch.Options{Ext: migration.Extension, Logger: logger})
	if err != nil {
		return err
	}
	defer w.Stop()
	if err := w.Start(); err != nil {
		return err
	}

	ui.PrintInfo("Watching %s for changes... (Press Ctrl+C to stop)", filepath.Clean(dir))
	<-ctx.Done()
	ui.PrintInfo("Stopping watch mode...")
	return nil
}
