package commands

import (
	"context"

	"github.com/satishbabariya/arangomigrate/cli/internal/compat"
	"github.com/satishbabariya/arangomigrate/cli/internal/config"
	"github.com/satishbabariya/arangomigrate/cli/internal/ui"
	"github.com/satishbabariya/arangomigrate/migrate"
	"github.com/satishbabariya/arangomigrate/migrate/database"
	"github.com/satishbabariya/arangomigrate/migrate/errdefs"
	"github.com/satishbabariya/arangomigrate/migrate/history"
	"github.com/satishbabariya/arangomigrate/migrate/migration"
	"github.com/satishbabariya/arangomigrate/migrate/schema"
)

// session is an open live database with its tracking document.
type session struct {
	db      database.Database
	tracker *history.Tracker
	// tracked is the schema mirrored inside the database.
	tracked *schema.DatabaseSchema
}

func (s *session) Close() error {
	return s.db.Close()
}

// openSession connects to the configured database, warns about unsupported
// servers and initializes the tracking collection.
func openSession(ctx context.Context) (*session, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	logger.Debug("connecting", "provider", cfg.Database.Provider, "host", cfg.Database.Host, "database", cfg.Database.Name)
	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, errdefs.Database(err)
	}

	if cfg.Database.Provider == database.ProviderArango {
		warnIncompatible(ctx, db)
	}

	tracker := history.NewTracker(db, cfg.SchemaCollection, logger)
	tracked, err := tracker.Init(ctx)
	if err != nil {
		db.Close()
		return nil, errdefs.Database(err)
	}
	return &session{db: db, tracker: tracker, tracked: tracked}, nil
}

func warnIncompatible(ctx context.Context, db database.Database) {
	serverVersion, err := db.ServerVersion(ctx)
	if err != nil {
		logger.Debug("server version unavailable", "error", err)
		return
	}
	result, err := compat.Check(serverVersion)
	if err != nil {
		logger.Debug("unparsable server version", "error", err)
		return
	}
	if msg := result.Warning(); msg != "" {
		ui.PrintWarning("%s", msg)
	}
}

func managerOptions(tracker *history.Tracker) migrate.Options {
	return migrate.Options{
		Fs:             config.AppFs,
		Logger:         logger,
		SchemaFileName: cfg.SchemaFile,
		Tracker:        tracker,
	}
}

func migrationOptions() migration.Options {
	return migration.Options{Fs: config.AppFs, Logger: logger}
}

// loadSnapshot reads the schema snapshot, or returns nil when the file does
// not exist yet.
func loadSnapshot() (*schema.DatabaseSchema, error) {
	exists, err := schema.Exists(config.AppFs, cfg.SchemaFilePath())
	if err != nil {
		return nil, errdefs.IO(err)
	}
	if !exists {
		return nil, nil
	}
	return schema.Load(config.AppFs, cfg.SchemaFilePath())
}
