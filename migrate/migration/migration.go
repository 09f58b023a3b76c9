// Package migration implements the file-level migration unit: one versioned,
// named bundle of up and optional down operations stored as YAML.
package migration

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/satishbabariya/arangomigrate/internal/logging"
	"github.com/satishbabariya/arangomigrate/migrate/database"
	"github.com/satishbabariya/arangomigrate/migrate/errdefs"
	"github.com/satishbabariya/arangomigrate/migrate/operation"
	"github.com/satishbabariya/arangomigrate/migrate/schema"
)

// DirName is the migrations subdirectory of the schema root.
const DirName = "migrations"

// Extension of migration files.
const Extension = ".yaml"

const fileHeader = "# The migration files contain two sections:\n" +
	"# - up: The commands to execute on migration\n" +
	"# - down: The commands to execute on rollback (optional)\n" +
	"# Run `arangomigrate docs` for the list of operations and examples\n"

// Data is the body of a migration file.
type Data struct {
	Up   operation.List `yaml:"up"`
	Down operation.List `yaml:"down,omitempty"`
}

// IsEmpty reports whether both lists are empty.
func (d Data) IsEmpty() bool {
	return len(d.Up) == 0 && len(d.Down) == 0
}

// Options carries the collaborators of a migration.
type Options struct {
	Fs     afero.Fs
	Logger *slog.Logger
	// Now stamps new migrations, time.Now when nil.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	o.Logger = logging.OrDiscard(o.Logger)
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Migration is one versioned unit of schema change.
type Migration struct {
	Version schema.Version
	Name    string
	Data    Data
	Path    string

	fs     afero.Fs
	logger *slog.Logger
}

// Dir ensures the migrations directory exists under root and returns it.
func Dir(fs afero.Fs, root string) (string, error) {
	dir := filepath.Join(root, DirName)
	ok, err := afero.DirExists(fs, dir)
	if err != nil {
		return "", errdefs.IO(err)
	}
	if !ok {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return "", errdefs.IO(err)
		}
	}
	return dir, nil
}

// Slug turns a human migration name into its file name form.
func Slug(name string) string {
	return strcase.ToSnake(strings.TrimSpace(name))
}

// FileName returns the canonical file name of a migration.
func FileName(version schema.Version, name string) string {
	return fmt.Sprintf("%d_%s%s", version, name, Extension)
}

// ParseFileName recovers the version and name from a migration file name.
func ParseFileName(fileName string) (schema.Version, string, error) {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	prefix, name, ok := strings.Cut(base, "_")
	if !ok || name == "" {
		return 0, "", errdefs.InvalidFileName(fileName)
	}
	v, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil {
		return 0, "", errdefs.InvalidFileName(fileName)
	}
	return schema.Version(v), name, nil
}

// New builds an unsaved migration stamped with the current time.
func New(name, root string, data Data, opts Options) (*Migration, error) {
	opts = opts.withDefaults()
	dir, err := Dir(opts.Fs, root)
	if err != nil {
		return nil, err
	}
	slug := Slug(name)
	if slug == "" {
		return nil, errdefs.InvalidParameter("name", "migration name cannot be empty")
	}
	version := schema.Version(opts.Now().UnixMilli())
	return &Migration{
		Version: version,
		Name:    slug,
		Data:    data,
		Path:    filepath.Join(dir, FileName(version, slug)),
		fs:      opts.Fs,
		logger:  opts.Logger,
	}, nil
}

// Create builds an empty migration and writes it when persist is set.
func Create(name, root string, persist bool, opts Options) (*Migration, error) {
	m, err := New(name, root, Data{Up: operation.List{}}, opts)
	if err != nil {
		return nil, err
	}
	if persist {
		if err := m.Save(); err != nil {
			return nil, err
		}
		m.logger.Info("created migration", "path", m.Path)
	}
	return m, nil
}

// Load reads the migration file fileName from the migrations directory.
func Load(fileName, root string, opts Options) (*Migration, error) {
	opts = opts.withDefaults()
	version, name, err := ParseFileName(fileName)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(root, DirName, fileName)
	opts.Logger.Debug("loading migration file", "path", path)
	raw, err := afero.ReadFile(opts.Fs, path)
	if err != nil {
		return nil, errdefs.IO(err)
	}

	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, errdefs.Parsing(fileName, err)
	}
	if data.Up == nil {
		data.Up = operation.List{}
	}

	return &Migration{
		Version: version,
		Name:    name,
		Data:    data,
		Path:    path,
		fs:      opts.Fs,
		logger:  opts.Logger,
	}, nil
}

// LoadAll loads every migration under root, sorted by ascending version.
// An empty or missing directory is a NoMigrations error.
func LoadAll(root string, opts Options) ([]*Migration, error) {
	opts = opts.withDefaults()
	dir := filepath.Join(root, DirName)
	entries, err := afero.ReadDir(opts.Fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errdefs.NoMigrations()
		}
		return nil, errdefs.IO(err)
	}

	var migrations []*Migration
	seen := make(map[schema.Version]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		m, err := Load(entry.Name(), root, opts)
		if err != nil {
			return nil, err
		}
		if other, ok := seen[m.Version]; ok {
			return nil, fmt.Errorf("%w: version also used by %s", errdefs.InvalidFileName(entry.Name()), other)
		}
		seen[m.Version] = entry.Name()
		migrations = append(migrations, m)
	}
	if len(migrations) == 0 {
		return nil, errdefs.NoMigrations()
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// FileName returns the base name of the migration file.
func (m *Migration) FileName() string {
	return FileName(m.Version, m.Name)
}

// Encode renders the migration file content, header included.
func (m *Migration) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m.Data); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the migration file.
func (m *Migration) Save() error {
	data, err := m.Encode()
	if err != nil {
		return errdefs.IO(err)
	}
	return errdefs.IO(afero.WriteFile(m.fs, m.Path, data, 0o644))
}

// ApplyUp runs every up operation in order and stops at the first error.
// On success the schema version becomes the migration version.
func (m *Migration) ApplyUp(ctx context.Context, s *schema.DatabaseSchema, db database.Database) error {
	m.logger.Info("applying migration", "version", m.Version, "name", m.Name)
	if err := m.apply(ctx, s, db, m.Data.Up); err != nil {
		return err
	}
	s.SetVersion(m.Version)
	return nil
}

// ApplyDown runs every down operation in order and stops at the first error.
// On success the schema version becomes previous, or none when previous is
// nil. A migration without down operations only moves the version.
func (m *Migration) ApplyDown(ctx context.Context, s *schema.DatabaseSchema, db database.Database, previous *schema.Version) error {
	m.logger.Info("rolling back migration", "version", m.Version, "name", m.Name)
	if len(m.Data.Down) == 0 {
		m.logger.Warn("migration has no down operations", "version", m.Version, "name", m.Name)
	}
	if err := m.apply(ctx, s, db, m.Data.Down); err != nil {
		return err
	}
	if previous == nil {
		s.ClearVersion()
	} else {
		s.SetVersion(*previous)
	}
	return nil
}

func (m *Migration) apply(ctx context.Context, s *schema.DatabaseSchema, db database.Database, ops operation.List) error {
	ctx = logging.WithLogger(ctx, m.logger)
	for i, op := range ops {
		logging.Verbose(ctx, m.logger, "applying operation", "migration", m.Name, "index", i, "kind", op.Kind())
		if err := op.Apply(ctx, s, db, false); err != nil {
			return fmt.Errorf("migration %s: %s: %w", m.FileName(), op.Kind(), err)
		}
	}
	m.logger.Debug("migration done", "version", m.Version)
	return nil
}
