package commands

import (
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/arangomigrate/cli/internal/ui"
	"github.com/satishbabariya/arangomigrate/migrate/migration"
)

var createMigrationCmd = &cobra.Command{
	Use:     "create-migration [name]",
	Aliases: []string{"new"},
	Short:   "Create a new migration file",
	Long: `Create an empty migration file named <timestamp>_<name>.yaml in the
migrations directory. The name is asked for when omitted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreateMigration,
}

func init() {
	rootCmd.AddCommand(createMigrationCmd)
}

func runCreateMigration(cmd *cobra.Command, args []string) error {
	var name string
	if len(args) == 1 {
		name = args[0]
	} else {
		prompt := &survey.Input{
			Message: "Migration name:",
			Help:    "Describes the change, e.g. create users. It is appended to the current timestamp.",
		}
		if err := survey.AskOne(prompt, &name, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	m, err := migration.Create(strings.TrimSpace(name), cfg.SchemaPath, true, migrationOptions())
	if err != nil {
		return err
	}
	ui.PrintSuccess("Created migration %s", m.Path)
	return nil
}
