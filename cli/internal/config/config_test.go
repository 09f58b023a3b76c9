package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/arangomigrate/migrate/database"
	"github.com/satishbabariya/arangomigrate/migrate/errdefs"
)

// isolate gives the test an empty filesystem and environment.
func isolate(t *testing.T) afero.Fs {
	t.Helper()
	for _, env := range []string{"SCHEMA_PATH", "SCHEMA_FILE", "SCHEMA_COLLECTION", "DB_PROVIDER", "DB_HOST", "DB_NAME", "DB_USER", "DB_PASSWORD", "VERBOSE"} {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}
	previous := AppFs
	AppFs = afero.NewMemMapFs()
	t.Cleanup(func() { AppFs = previous })
	return AppFs
}

func flagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "config/db", cfg.SchemaPath)
	assert.Equal(t, "schema.yaml", cfg.SchemaFile)
	assert.Equal(t, "config/db/schema.yaml", cfg.SchemaFilePath())
	assert.Equal(t, "SchemaMigrations", cfg.SchemaCollection)
	assert.Equal(t, "arango", cfg.Database.Provider)
	assert.Zero(t, cfg.Verbose)
}

func TestLoadPrecedence(t *testing.T) {
	fs := isolate(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, filepath.Join(wd, ".arangomigrate.yaml"), []byte(
		"db_host: http://file:8529\ndb_name: file_db\nschema_path: db\n"), 0o644))
	t.Setenv("DB_NAME", "env_db")
	t.Setenv("SCHEMA_PATH", "env/db")

	cfg, err := Load(flagSet(t, "--db-name", "flag_db", "-vv"))
	require.NoError(t, err)
	assert.Equal(t, "http://file:8529", cfg.Database.Host)
	assert.Equal(t, "flag_db", cfg.Database.Name)
	assert.Equal(t, "env/db", cfg.SchemaPath)
	assert.Equal(t, 2, cfg.Verbose)
}

func TestLoadEnvFiles(t *testing.T) {
	fs := isolate(t)
	require.NoError(t, afero.WriteFile(fs, ".env", []byte("DB_USER=root\nDB_PASSWORD=from_file\nDB_PROVIDER=postgresql\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, ".env.local", []byte("DB_USER=local\n"), 0o644))
	t.Setenv("DB_PASSWORD", "from_env")

	cfg, err := Load(flagSet(t))
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Database.User)
	assert.Equal(t, "from_env", cfg.Database.Password)
	assert.Equal(t, "postgres", cfg.Database.Provider)
}

func TestRequireDatabase(t *testing.T) {
	tests := []struct {
		name    string
		db      database.Config
		missing string
	}{
		{"arango without host", database.Config{Provider: "arango"}, "DB_HOST"},
		{"arango without name", database.Config{Provider: "arango", Host: "http://localhost:8529"}, "DB_NAME"},
		{"sqlite path only", database.Config{Provider: "sqlite", Name: "app.db"}, ""},
		{"memory", database.Config{Provider: "memory"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Database: tt.db}
			err := cfg.RequireDatabase()
			if tt.missing == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, errdefs.ErrInit)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}
