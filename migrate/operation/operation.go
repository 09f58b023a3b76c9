// Package operation defines the atomic schema mutations a migration is made of.
//
// Every create checks the schema aggregate for a duplicate before touching
// the live database and records the new descriptor only after the live call
// succeeded. Every delete checks for the descriptor, removes it from the
// aggregate and then drops the live object.
package operation

import (
	"context"
	"errors"
	"fmt"

	"github.com/satishbabariya/arangomigrate/internal/logging"
	"github.com/satishbabariya/arangomigrate/migrate/database"
	"github.com/satishbabariya/arangomigrate/migrate/errdefs"
	"github.com/satishbabariya/arangomigrate/migrate/schema"
)

// Operation is one reversible schema mutation. The set of implementations
// is closed.
type Operation interface {
	// Kind returns the file discriminator of the operation.
	Kind() string
	// Apply runs the operation against the aggregate and the live database.
	// When silent is set live failures are logged and ignored.
	Apply(ctx context.Context, s *schema.DatabaseSchema, db database.Database, silent bool) error

	operation()
}

// Discriminators used in migration files.
const (
	KindCreateCollection     = "create_collection"
	KindDeleteCollection     = "delete_collection"
	KindCreateEdgeCollection = "create_edge_collection"
	KindDeleteEdgeCollection = "delete_edge_collection"
	KindCreateIndex          = "create_index"
	KindDeleteIndex          = "delete_index"
	KindCreateGraph          = "create_graph"
	KindDeleteGraph          = "delete_graph"
	KindAQL                  = "aql"
)

// live wraps a live database failure unless silent is set.
func live(ctx context.Context, err error, silent bool) error {
	if err == nil {
		return nil
	}
	if silent {
		logging.FromContext(ctx).Debug("ignored error", "error", err)
		return nil
	}
	return errdefs.Database(err)
}

// liveCreate is live for creates. A conflict means the object exists in the
// database but not in the aggregate and is reported as duplicate, the live
// error staying in the chain.
func liveCreate(ctx context.Context, err error, silent bool, duplicate error) error {
	if err != nil && !silent && errors.Is(err, database.ErrConflict) {
		return fmt.Errorf("%w: %w", duplicate, errdefs.Database(err))
	}
	return live(ctx, err, silent)
}

// CreateCollection creates a document collection.
type CreateCollection struct {
	Name        string `yaml:"name"`
	WaitForSync *bool  `yaml:"wait_for_sync,omitempty"`
}

func (CreateCollection) operation()   {}
func (CreateCollection) Kind() string { return KindCreateCollection }

func (o CreateCollection) Apply(ctx context.Context, s *schema.DatabaseSchema, db database.Database, silent bool) error {
	if _, ok := s.Collection(o.Name); ok {
		return errdefs.DuplicateCollection(o.Name)
	}
	item := schema.CollectionSchema{Name: o.Name, WaitForSync: o.WaitForSync}
	return createCollection(ctx, s, db, item, silent, errdefs.DuplicateCollection(o.Name))
}

// CreateEdgeCollection creates an edge collection.
type CreateEdgeCollection struct {
	Name        string `yaml:"name"`
	WaitForSync *bool  `yaml:"wait_for_sync,omitempty"`
}

func (CreateEdgeCollection) operation()   {}
func (CreateEdgeCollection) Kind() string { return KindCreateEdgeCollection }

func (o CreateEdgeCollection) Apply(ctx context.Context, s *schema.DatabaseSchema, db database.Database, silent bool) error {
	if _, ok := s.Collection(o.Name); ok {
		return errdefs.DuplicateEdgeCollection(o.Name)
	}
	item := schema.CollectionSchema{Name: o.Name, IsEdgeCollection: true, WaitForSync: o.WaitForSync}
	return createCollection(ctx, s, db, item, silent, errdefs.DuplicateEdgeCollection(o.Name))
}

func createCollection(ctx context.Context, s *schema.DatabaseSchema, db database.Database, item schema.CollectionSchema, silent bool, duplicate error) error {
	if _, err := item.ApplyToDatabase(ctx, db, false); err != nil {
		if err := liveCreate(ctx, err, silent, duplicate); err != nil {
			return err
		}
	}
	return s.AddCollection(item)
}

// DeleteCollection drops a document collection.
type DeleteCollection struct {
	Name string `yaml:"name"`
}

func (DeleteCollection) operation()   {}
func (DeleteCollection) Kind() string { return KindDeleteCollection }

func (o DeleteCollection) Apply(ctx context.Context, s *schema.DatabaseSchema, db database.Database, silent bool) error {
	i, ok := s.CollectionIndex(o.Name)
	if !ok {
		return errdefs.MissingCollection(o.Name)
	}
	item := s.RemoveCollectionAt(i)
	return live(ctx, item.Drop(ctx, db), silent)
}

// DeleteEdgeCollection drops an edge collection.
type DeleteEdgeCollection struct {
	Name string `yaml:"name"`
}

func (DeleteEdgeCollection) operation()   {}
func (DeleteEdgeCollection) Kind() string { return KindDeleteEdgeCollection }

func (o DeleteEdgeCollection) Apply(ctx context.Context, s *schema.DatabaseSchema, db database.Database, silent bool) error {
	i, ok := s.CollectionIndex(o.Name)
	if !ok {
		return errdefs.MissingEdgeCollection(o.Name)
	}
	item := s.RemoveCollectionAt(i)
	return live(ctx, item.Drop(ctx, db), silent)
}

// CreateIndex creates an index on a collection.
type CreateIndex struct {
	Name       string                 `yaml:"name"`
	Collection string                 `yaml:"collection"`
	Fields     []string               `yaml:"fields"`
	Settings   database.IndexSettings `yaml:"settings"`
}

func (CreateIndex) operation()   {}
func (CreateIndex) Kind() string { return KindCreateIndex }

func (o CreateIndex) Apply(ctx context.Context, s *schema.DatabaseSchema, db database.Database, silent bool) error {
	if _, ok := s.Index(o.Collection, o.Name); ok {
		return errdefs.DuplicateIndex(o.Collection, o.Name)
	}
	item := schema.IndexSchema{
		Name:       o.Name,
		Collection: o.Collection,
		Fields:     o.Fields,
		Settings:   o.Settings,
	}
	created, err := item.ApplyToDatabase(ctx, db, false)
	if err != nil {
		if err := liveCreate(ctx, err, silent, errdefs.DuplicateIndex(o.Collection, o.Name)); err != nil {
			return err
		}
	}
	if created != nil {
		item.ID = created.ID
	}
	return s.AddIndex(item)
}

// DeleteIndex drops an index. An empty Collection matches the index by name
// alone, as long as that name is unambiguous.
type DeleteIndex struct {
	Name       string `yaml:"name"`
	Collection string `yaml:"collection,omitempty"`
}

func (DeleteIndex) operation()   {}
func (DeleteIndex) Kind() string { return KindDeleteIndex }

func (o DeleteIndex) Apply(ctx context.Context, s *schema.DatabaseSchema, db database.Database, silent bool) error {
	collection := o.Collection
	if collection == "" {
		collection = o.resolveCollection(s)
	}
	i, ok := s.IndexIndex(collection, o.Name)
	if !ok {
		return errdefs.MissingIndex(collection, o.Name)
	}
	item := s.RemoveIndexAt(i)
	return live(ctx, item.Drop(ctx, db), silent)
}

func (o DeleteIndex) resolveCollection(s *schema.DatabaseSchema) string {
	var found []string
	for _, idx := range s.Indexes() {
		if idx.Name == o.Name {
			found = append(found, idx.Collection)
		}
	}
	if len(found) == 1 {
		return found[0]
	}
	return ""
}

// CreateGraph creates a named graph.
type CreateGraph struct {
	Name              string                    `yaml:"name"`
	EdgeDefinitions   []database.EdgeDefinition `yaml:"edge_definitions"`
	OrphanCollections []string                  `yaml:"orphan_collections,omitempty"`
	IsSmart           *bool                     `yaml:"is_smart,omitempty"`
	IsDisjoint        *bool                     `yaml:"is_disjoint,omitempty"`
	Options           *database.GraphOptions    `yaml:"options,omitempty"`
}

func (CreateGraph) operation()   {}
func (CreateGraph) Kind() string { return KindCreateGraph }

func (o CreateGraph) Apply(ctx context.Context, s *schema.DatabaseSchema, db database.Database, silent bool) error {
	if _, ok := s.Graph(o.Name); ok {
		return errdefs.DuplicateGraph(o.Name)
	}
	item := schema.GraphSchema{
		Name:              o.Name,
		EdgeDefinitions:   o.EdgeDefinitions,
		OrphanCollections: o.OrphanCollections,
		IsSmart:           o.IsSmart,
		IsDisjoint:        o.IsDisjoint,
		Options:           o.Options,
	}
	if _, err := item.ApplyToDatabase(ctx, db, false); err != nil {
		if err := liveCreate(ctx, err, silent, errdefs.DuplicateGraph(o.Name)); err != nil {
			return err
		}
	}
	return s.AddGraph(item)
}

// DeleteGraph drops a named graph.
type DeleteGraph struct {
	Name string `yaml:"name"`
}

func (DeleteGraph) operation()   {}
func (DeleteGraph) Kind() string { return KindDeleteGraph }

func (o DeleteGraph) Apply(ctx context.Context, s *schema.DatabaseSchema, db database.Database, silent bool) error {
	i, ok := s.GraphIndex(o.Name)
	if !ok {
		return errdefs.MissingGraph(o.Name)
	}
	item := s.RemoveGraphAt(i)
	return live(ctx, item.Drop(ctx, db), silent)
}

// AQL runs a raw query. The aggregate is never touched.
type AQL struct {
	Query string
}

func (AQL) operation()   {}
func (AQL) Kind() string { return KindAQL }

func (o AQL) Apply(ctx context.Context, _ *schema.DatabaseSchema, db database.Database, silent bool) error {
	logger := logging.FromContext(ctx)
	logger.Debug("executing query", "query", o.Query)
	rows, err := db.Query(ctx, o.Query)
	if err != nil {
		return live(ctx, err, silent)
	}
	logger.Debug("query executed", "rows", len(rows))
	return nil
}

// Inverse returns the operation undoing op. Raw queries have no inverse.
func Inverse(op Operation) (Operation, bool) {
	switch o := op.(type) {
	case CreateCollection:
		return DeleteCollection{Name: o.Name}, true
	case DeleteCollection:
		return CreateCollection{Name: o.Name}, true
	case CreateEdgeCollection:
		return DeleteEdgeCollection{Name: o.Name}, true
	case DeleteEdgeCollection:
		return CreateEdgeCollection{Name: o.Name}, true
	case CreateIndex:
		return DeleteIndex{Name: o.Name, Collection: o.Collection}, true
	case CreateGraph:
		return DeleteGraph{Name: o.Name}, true
	}
	return nil, false
}
