// Package history manages migration history tracking inside the live database.
package history

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/satishbabariya/arangomigrate/internal/logging"
	"github.com/satishbabariya/arangomigrate/migrate/database"
	"github.com/satishbabariya/arangomigrate/migrate/schema"
)

// DefaultCollection is the tracking collection used when none is configured.
const DefaultCollection = "SchemaMigrations"

// Document keys inside the tracking collection.
const (
	SchemaDocumentKey  = "DatabaseSchema"
	HistoryDocumentKey = "MigrationHistory"
)

// MigrationRecord represents a migration in the history
type MigrationRecord struct {
	Version       schema.Version `json:"version"`
	Name          string         `json:"name"`
	AppliedAt     time.Time      `json:"applied_at"`
	ExecutionTime int64          `json:"execution_time"` // milliseconds
	Checksum      string         `json:"checksum"`
	RolledBack    bool           `json:"rolled_back"`
}

type historyDocument struct {
	Records []MigrationRecord `json:"records"`
}

// Tracker mirrors the schema snapshot and the migration history into a
// collection of the live database.
type Tracker struct {
	db         database.Database
	collection string
	logger     *slog.Logger
}

// NewTracker creates a tracker over the given collection.
func NewTracker(db database.Database, collection string, logger *slog.Logger) *Tracker {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Tracker{
		db:         db,
		collection: collection,
		logger:     logging.OrDiscard(logger),
	}
}

// Collection returns the tracking collection name.
func (t *Tracker) Collection() string {
	return t.collection
}

// Init creates the tracking collection and an empty schema document when
// they are missing, and returns the tracked schema.
func (t *Tracker) Init(ctx context.Context) (*schema.DatabaseSchema, error) {
	logging.Verbose(ctx, t.logger, "retrieving tracking collection", "collection", t.collection)
	if _, err := t.db.Collection(ctx, t.collection); err != nil {
		if !database.IsNotFound(err) {
			return nil, err
		}
		t.logger.Debug("missing tracking collection, creating it", "collection", t.collection)
		if _, err := t.db.CreateCollection(ctx, t.collection, database.CollectionOptions{WaitForSync: true}); err != nil {
			return nil, fmt.Errorf("failed to create tracking collection: %w", err)
		}
	}

	s, err := t.Load(ctx)
	if err == nil {
		return s, nil
	}
	if !database.IsNotFound(err) {
		return nil, err
	}
	t.logger.Debug("missing schema document, creating it")
	s = schema.New()
	if err := t.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads the tracked schema document.
func (t *Tracker) Load(ctx context.Context) (*schema.DatabaseSchema, error) {
	s := schema.New()
	if err := t.db.ReadDocument(ctx, t.collection, SchemaDocumentKey, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Save replaces the tracked schema document.
func (t *Tracker) Save(ctx context.Context, s *schema.DatabaseSchema) error {
	logging.Verbose(ctx, t.logger, "saving schema version to database", "version", s.CurrentVersion())
	if err := t.db.WriteDocument(ctx, t.collection, SchemaDocumentKey, s); err != nil {
		return fmt.Errorf("failed to save schema document: %w", err)
	}
	return nil
}

// Record records a migration execution, replacing an earlier record of the
// same version.
func (t *Tracker) Record(ctx context.Context, record MigrationRecord) error {
	doc, err := t.history(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range doc.Records {
		if doc.Records[i].Version == record.Version {
			doc.Records[i] = record
			replaced = true
		}
	}
	if !replaced {
		doc.Records = append(doc.Records, record)
	}
	return t.writeHistory(ctx, doc)
}

// MarkRolledBack marks a migration as rolled back
func (t *Tracker) MarkRolledBack(ctx context.Context, version schema.Version) error {
	doc, err := t.history(ctx)
	if err != nil {
		return err
	}
	for i := range doc.Records {
		if doc.Records[i].Version == version {
			doc.Records[i].RolledBack = true
		}
	}
	return t.writeHistory(ctx, doc)
}

// GetAll returns all migration records ordered by version.
func (t *Tracker) GetAll(ctx context.Context) ([]MigrationRecord, error) {
	doc, err := t.history(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(doc.Records, func(i, j int) bool {
		return doc.Records[i].Version < doc.Records[j].Version
	})
	return doc.Records, nil
}

// GetApplied returns the records of migrations that are currently applied.
func (t *Tracker) GetApplied(ctx context.Context) ([]MigrationRecord, error) {
	all, err := t.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var applied []MigrationRecord
	for _, r := range all {
		if !r.RolledBack {
			applied = append(applied, r)
		}
	}
	return applied, nil
}

func (t *Tracker) history(ctx context.Context) (historyDocument, error) {
	var doc historyDocument
	err := t.db.ReadDocument(ctx, t.collection, HistoryDocumentKey, &doc)
	if err != nil && !database.IsNotFound(err) {
		return historyDocument{}, fmt.Errorf("failed to read migration history: %w", err)
	}
	return doc, nil
}

func (t *Tracker) writeHistory(ctx context.Context, doc historyDocument) error {
	if err := t.db.WriteDocument(ctx, t.collection, HistoryDocumentKey, doc); err != nil {
		return fmt.Errorf("failed to write migration history: %w", err)
	}
	return nil
}

// CalculateChecksum calculates a checksum for migration file content
func CalculateChecksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
