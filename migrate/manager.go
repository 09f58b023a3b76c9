// Package migrate applies and rolls back schema migrations while keeping the
// schema snapshot file in step with the live database.
package migrate

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/satishbabariya/arangomigrate/internal/logging"
	"github.com/satishbabariya/arangomigrate/migrate/database"
	"github.com/satishbabariya/arangomigrate/migrate/errdefs"
	"github.com/satishbabariya/arangomigrate/migrate/history"
	"github.com/satishbabariya/arangomigrate/migrate/migration"
	"github.com/satishbabariya/arangomigrate/migrate/schema"
)

// Options configures a Manager.
type Options struct {
	// Fs holds the schema root, the OS filesystem when nil.
	Fs     afero.Fs
	Logger *slog.Logger
	// SchemaFileName is the snapshot file name inside the schema root.
	SchemaFileName string
	// Tracker, when set, mirrors every checkpoint into the live database.
	Tracker *history.Tracker
	// LegacyRollbackVersion sets the version after a rollback to the rolled
	// back version minus one instead of the previous migration's version.
	LegacyRollbackVersion bool
	Now                   func() time.Time
}

// Manager orchestrates batches of migrations. Migrations are loaded once,
// sorted by ascending version, and the snapshot is checkpointed after every
// migration that fully succeeded.
type Manager struct {
	root       string
	schemaPath string
	migrations []*migration.Migration
	schema     *schema.DatabaseSchema

	fs             afero.Fs
	logger         *slog.Logger
	tracker        *history.Tracker
	legacyRollback bool
	now            func() time.Time

	// checkpoint persists the snapshot, WriteSchema unless replaced in tests.
	checkpoint func() error
}

func (o Options) withDefaults() Options {
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	o.Logger = logging.OrDiscard(o.Logger)
	if o.SchemaFileName == "" {
		o.SchemaFileName = schema.DefaultFileName
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) migrationOptions() migration.Options {
	return migration.Options{Fs: o.Fs, Logger: o.Logger, Now: o.Now}
}

func newManager(root string, opts Options) *Manager {
	m := &Manager{
		root:           root,
		schemaPath:     filepath.Join(root, opts.SchemaFileName),
		schema:         schema.New(),
		fs:             opts.Fs,
		logger:         opts.Logger,
		tracker:        opts.Tracker,
		legacyRollback: opts.LegacyRollbackVersion,
		now:            opts.Now,
	}
	m.checkpoint = m.WriteSchema
	return m
}

// NewManager loads every migration under root and the schema snapshot,
// bootstrapping an empty snapshot file when none exists.
func NewManager(root string, opts Options) (*Manager, error) {
	opts = opts.withDefaults()
	migrations, err := migration.LoadAll(root, opts.migrationOptions())
	if err != nil {
		return nil, err
	}

	m := newManager(root, opts)
	m.migrations = migrations

	exists, err := schema.Exists(m.fs, m.schemaPath)
	if err != nil {
		return nil, errdefs.IO(err)
	}
	if exists {
		m.logger.Debug("loading schema", "path", m.schemaPath)
		if m.schema, err = schema.Load(m.fs, m.schemaPath); err != nil {
			return nil, err
		}
	} else {
		m.logger.Info("missing schema file, creating it", "path", m.schemaPath)
		if err := m.WriteSchema(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Schema returns the schema aggregate.
func (m *Manager) Schema() *schema.DatabaseSchema { return m.schema }

// SchemaPath returns the snapshot file path.
func (m *Manager) SchemaPath() string { return m.schemaPath }

// Migrations returns every loaded migration in ascending version order.
func (m *Manager) Migrations() []*migration.Migration { return m.migrations }

// Applied returns the migrations at or below the current version.
func (m *Manager) Applied() []*migration.Migration {
	current := m.schema.CurrentVersion()
	var out []*migration.Migration
	for _, mig := range m.migrations {
		if mig.Version <= current {
			out = append(out, mig)
		}
	}
	return out
}

// Pending returns the migrations above the current version.
func (m *Manager) Pending() []*migration.Migration {
	current := m.schema.CurrentVersion()
	var out []*migration.Migration
	for _, mig := range m.migrations {
		if mig.Version > current {
			out = append(out, mig)
		}
	}
	return out
}

// Up applies every migration above the current version in ascending order
// and returns how many were applied. The first error aborts the batch.
func (m *Manager) Up(ctx context.Context, db database.Database) (int, error) {
	current := m.schema.CurrentVersion()
	applied := 0
	for _, mig := range m.migrations {
		if mig.Version <= current {
			continue
		}
		started := m.now()
		if err := mig.ApplyUp(ctx, m.schema, db); err != nil {
			return applied, err
		}
		if err := m.checkpoint(); err != nil {
			return applied, err
		}
		applied++
		if err := m.mirror(ctx, mig, started, false); err != nil {
			return applied, err
		}
	}
	m.logger.Info("migrations applied", "count", applied, "version", m.schema.CurrentVersion())
	return applied, nil
}

// Down rolls back up to count migrations at or below the current version in
// descending order and returns how many were rolled back.
func (m *Manager) Down(ctx context.Context, count int, db database.Database) (int, error) {
	if count < 0 {
		return 0, errdefs.InvalidParameter("COUNT", "Must be a valid number")
	}
	current := m.schema.CurrentVersion()
	rolledBack := 0
	for i := len(m.migrations) - 1; i >= 0 && rolledBack < count; i-- {
		mig := m.migrations[i]
		if mig.Version > current {
			continue
		}
		started := m.now()
		if err := mig.ApplyDown(ctx, m.schema, db, m.previousVersion(i)); err != nil {
			return rolledBack, err
		}
		if err := m.checkpoint(); err != nil {
			return rolledBack, err
		}
		rolledBack++
		if err := m.mirror(ctx, mig, started, true); err != nil {
			return rolledBack, err
		}
	}
	m.logger.Info("migrations rolled back", "count", rolledBack, "version", m.schema.CurrentVersion())
	return rolledBack, nil
}

// previousVersion is the version the schema falls back to once the i-th
// migration is rolled back.
func (m *Manager) previousVersion(i int) *schema.Version {
	if m.legacyRollback {
		v := m.migrations[i].Version - 1
		return &v
	}
	if i == 0 {
		return nil
	}
	v := m.migrations[i-1].Version
	return &v
}

// mirror copies a checkpointed migration into the tracking collection. The
// snapshot file is the durability boundary, so a failed mirror does not undo
// the migration.
func (m *Manager) mirror(ctx context.Context, mig *migration.Migration, started time.Time, rollback bool) error {
	if m.tracker == nil {
		return nil
	}
	if err := m.tracker.Save(ctx, m.schema); err != nil {
		return errdefs.Database(err)
	}
	if rollback {
		return errdefs.Database(m.tracker.MarkRolledBack(ctx, mig.Version))
	}

	var checksum string
	if content, err := afero.ReadFile(m.fs, mig.Path); err == nil {
		checksum = history.CalculateChecksum(content)
	}
	return errdefs.Database(m.tracker.Record(ctx, history.MigrationRecord{
		Version:       mig.Version,
		Name:          mig.Name,
		AppliedAt:     started.UTC(),
		ExecutionTime: m.now().Sub(started).Milliseconds(),
		Checksum:      checksum,
	}))
}

// WriteSchema truncates and rewrites the snapshot file.
func (m *Manager) WriteSchema() error {
	m.logger.Debug("writing schema", "path", m.schemaPath, "version", m.schema.CurrentVersion())
	return m.schema.Save(m.fs, m.schemaPath)
}

// Reset replaces the schema with an empty one and persists it.
func (m *Manager) Reset(ctx context.Context) error {
	m.schema = schema.New()
	if err := m.WriteSchema(); err != nil {
		return err
	}
	if m.tracker != nil {
		return errdefs.Database(m.tracker.Save(ctx, m.schema))
	}
	return nil
}
