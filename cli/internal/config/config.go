package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/satishbabariya/arangomigrate/migrate/database"
	"github.com/satishbabariya/arangomigrate/migrate/errdefs"
	"github.com/satishbabariya/arangomigrate/migrate/history"
	"github.com/satishbabariya/arangomigrate/migrate/schema"
)

var AppFs = afero.NewOsFs()

// Configuration keys, each bound to the upper-cased environment variable.
const (
	KeySchemaPath       = "schema_path"
	KeySchemaFile       = "schema_file"
	KeySchemaCollection = "schema_collection"
	KeyDBProvider       = "db_provider"
	KeyDBHost           = "db_host"
	KeyDBName           = "db_name"
	KeyDBUser           = "db_user"
	KeyDBPassword       = "db_password"
	KeyVerbose          = "verbose"
)

// flagNames maps configuration keys to the persistent flags overriding them.
var flagNames = map[string]string{
	KeySchemaPath:       "schema-path",
	KeySchemaFile:       "schema-file",
	KeySchemaCollection: "schema-collection",
	KeyDBProvider:       "db-provider",
	KeyDBHost:           "db-host",
	KeyDBName:           "db-name",
	KeyDBUser:           "db-user",
	KeyDBPassword:       "db-password",
	KeyVerbose:          "verbose",
}

// Config holds the application configuration
type Config struct {
	SchemaPath       string
	SchemaFile       string
	SchemaCollection string
	Database         database.Config
	Verbose          int
}

// SchemaFilePath returns the path of the schema snapshot file.
func (c *Config) SchemaFilePath() string {
	return filepath.Join(c.SchemaPath, c.SchemaFile)
}

// RequireDatabase reports the first connection setting that is missing.
func (c *Config) RequireDatabase() error {
	if c.Database.Host == "" && c.Database.Provider != database.ProviderSQLite && c.Database.Provider != database.ProviderMemory {
		return errdefs.Init("DB_HOST", "set it or use --db-host")
	}
	if c.Database.Name == "" && c.Database.Provider != database.ProviderMemory {
		return errdefs.Init("DB_NAME", "set it or use --db-name")
	}
	return nil
}

// RegisterFlags adds the persistent flags Load reads.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP(flagNames[KeySchemaPath], "f", "", "Path of the migrations and schema directory (env SCHEMA_PATH)")
	flags.String(flagNames[KeySchemaFile], "", "Schema snapshot file name (env SCHEMA_FILE)")
	flags.StringP(flagNames[KeySchemaCollection], "c", "", "Collection tracking the schema version (env SCHEMA_COLLECTION)")
	flags.String(flagNames[KeyDBProvider], "", "Database provider: arango, sqlite, postgres, mysql or memory (env DB_PROVIDER)")
	flags.StringP(flagNames[KeyDBHost], "H", "", "Database host (env DB_HOST)")
	flags.StringP(flagNames[KeyDBName], "n", "", "Database name (env DB_NAME)")
	flags.StringP(flagNames[KeyDBUser], "u", "", "Database user (env DB_USER)")
	flags.StringP(flagNames[KeyDBPassword], "p", "", "Database password (env DB_PASSWORD)")
	flags.CountP(flagNames[KeyVerbose], "v", "Increase log verbosity (-v debug, -vv verbose)")
}

// Load resolves the configuration from flags, environment, config file and
// defaults, in that order of precedence.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetFs(AppFs)

	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	v.SetConfigName(".arangomigrate")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "arangomigrate"))

	v.SetDefault(KeySchemaPath, "config/db")
	v.SetDefault(KeySchemaFile, schema.DefaultFileName)
	v.SetDefault(KeySchemaCollection, history.DefaultCollection)
	v.SetDefault(KeyDBProvider, database.ProviderArango)
	v.SetDefault(KeyVerbose, 0)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := loadEnvFile(".env", false); err != nil {
		return nil, err
	}
	if err := loadEnvFile(".env.local", true); err != nil {
		return nil, err
	}

	for key, flag := range flagNames {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
		if flags == nil {
			continue
		}
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		SchemaPath:       v.GetString(KeySchemaPath),
		SchemaFile:       v.GetString(KeySchemaFile),
		SchemaCollection: v.GetString(KeySchemaCollection),
		Database: database.Config{
			Provider: database.NormalizeProvider(v.GetString(KeyDBProvider)),
			Host:     v.GetString(KeyDBHost),
			Name:     v.GetString(KeyDBName),
			User:     v.GetString(KeyDBUser),
			Password: v.GetString(KeyDBPassword),
		},
		Verbose: v.GetInt(KeyVerbose),
	}
	return cfg, nil
}

// loadEnvFile exports the variables of an env file found on AppFs. Existing
// variables are only replaced when overload is set.
func loadEnvFile(name string, overload bool) error {
	f, err := AppFs.Open(name)
	if err != nil {
		return nil
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	for key, value := range vars {
		if _, set := os.LookupEnv(key); set && !overload {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}
