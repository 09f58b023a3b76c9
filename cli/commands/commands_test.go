package commands

import (
	"context"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/arangomigrate/cli/internal/config"
	"github.com/satishbabariya/arangomigrate/migrate/errdefs"
	"github.com/satishbabariya/arangomigrate/migrate/schema"
)

func setup(t *testing.T) afero.Fs {
	t.Helper()
	for _, env := range []string{"SCHEMA_PATH", "SCHEMA_FILE", "SCHEMA_COLLECTION", "DB_HOST", "DB_USER", "DB_PASSWORD", "VERBOSE"} {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}
	t.Setenv("DB_PROVIDER", "memory")
	t.Setenv("DB_NAME", "test")

	previous := config.AppFs
	config.AppFs = afero.NewMemMapFs()
	t.Cleanup(func() { config.AppFs = previous })
	return config.AppFs
}

func run(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func TestCreateCheckAndMigrate(t *testing.T) {
	fs := setup(t)

	require.NoError(t, run("create-migration", "Create Users"))
	files, err := afero.ReadDir(fs, "config/db/migrations")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Regexp(t, `^\d+_create_users\.yaml$`, files[0].Name())

	path := "config/db/migrations/" + files[0].Name()
	require.NoError(t, afero.WriteFile(fs, path, []byte(
		"up:\n  - create_collection:\n      name: Users\ndown:\n  - delete_collection:\n      name: Users\n"), 0o644))

	require.NoError(t, run("check"))
	require.NoError(t, run("migrate"))

	s, err := schema.Load(fs, "config/db/schema.yaml")
	require.NoError(t, err)
	_, ok := s.Collection("Users")
	assert.True(t, ok)
	_, versioned := s.Version()
	assert.True(t, versioned)
}

func TestCheckReportsInvalidMigration(t *testing.T) {
	fs := setup(t)
	require.NoError(t, afero.WriteFile(fs, "config/db/migrations/100_broken.yaml", []byte(
		"up:\n  - delete_graph:\n      name: social\n"), 0o644))

	err := run("check")
	assert.ErrorIs(t, err, errdefs.ErrMissingGraph)
}

func TestRollbackRejectsInvalidCount(t *testing.T) {
	setup(t)

	err := run("rollback", "many")
	assert.ErrorIs(t, err, errdefs.ErrInvalidParameter)
}

func TestMigrateWithoutMigrations(t *testing.T) {
	setup(t)

	err := run("migrate")
	assert.ErrorIs(t, err, errdefs.ErrNoMigrations)
}
