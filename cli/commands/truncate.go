package commands

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/arangomigrate/cli/internal/ui"
	"github.com/satishbabariya/arangomigrate/migrate"
)

var truncateForce bool

var truncateCmd = &cobra.Command{
	Use:   "truncate",
	Short: "Drop every graph and collection and reset the schema",
	Long: `Drop every graph and non-system collection of the database, with their
indexes and documents, and reset the schema file to an unversioned empty
schema. The schema tracking collection is kept.`,
	Args: cobra.NoArgs,
	RunE: runTruncate,
}

func init() {
	truncateCmd.Flags().BoolVar(&truncateForce, "force", false, "Skip the confirmation prompt")

	rootCmd.AddCommand(truncateCmd)
}

func runTruncate(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	if !truncateForce {
		confirmed := false
		prompt := &survey.Confirm{
			Message: "Drop every collection and graph of " + sess.db.Name() + "?",
			Default: false,
		}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			ui.PrintInfo("Aborted")
			return nil
		}
	}

	dropped, err := migrate.Truncate(ctx, sess.db, cfg.SchemaPath, managerOptions(sess.tracker))
	if err != nil {
		return err
	}
	ui.PrintSuccess("Truncated %s: %d collections dropped", sess.db.Name(), dropped)
	return nil
}
