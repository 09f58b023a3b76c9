package schema

import (
	"context"
	"slices"

	"github.com/satishbabariya/arangomigrate/internal/logging"
	"github.com/satishbabariya/arangomigrate/migrate/database"
)

// handleError downgrades err to a logged no-op when silent is set.
func handleError(ctx context.Context, err error, silent bool) error {
	if err == nil {
		return nil
	}
	if silent {
		logging.FromContext(ctx).Debug("ignored error", "error", err)
		return nil
	}
	return err
}

// CollectionSchema describes a tracked collection.
type CollectionSchema struct {
	Name             string `yaml:"name" json:"name"`
	IsEdgeCollection bool   `yaml:"is_edge_collection" json:"is_edge_collection"`
	WaitForSync      *bool  `yaml:"wait_for_sync,omitempty" json:"wait_for_sync,omitempty"`
}

// NewCollection returns a collection descriptor.
func NewCollection(name string, edge bool) CollectionSchema {
	return CollectionSchema{Name: name, IsEdgeCollection: edge}
}

// ApplyToDatabase creates the collection. In silent mode a failure is logged
// and a nil handle is returned.
func (c CollectionSchema) ApplyToDatabase(ctx context.Context, db database.Database, silent bool) (*database.CollectionInfo, error) {
	logging.FromContext(ctx).Debug("creating collection", "collection", c.Name, "edge", c.IsEdgeCollection)
	opts := database.CollectionOptions{Edge: c.IsEdgeCollection}
	if c.WaitForSync != nil {
		opts.WaitForSync = *c.WaitForSync
	}
	info, err := db.CreateCollection(ctx, c.Name, opts)
	if err != nil {
		return nil, handleError(ctx, err, silent)
	}
	return &info, nil
}

// Drop deletes the collection.
func (c CollectionSchema) Drop(ctx context.Context, db database.Database) error {
	logging.FromContext(ctx).Debug("deleting collection", "collection", c.Name)
	return db.DropCollection(ctx, c.Name)
}

// Fetch returns the live collection.
func (c CollectionSchema) Fetch(ctx context.Context, db database.Database) (database.CollectionInfo, error) {
	return db.Collection(ctx, c.Name)
}

// IndexSchema describes a tracked index. Its identity is (Collection, Name).
type IndexSchema struct {
	ID         string                 `yaml:"id,omitempty" json:"id,omitempty"`
	Name       string                 `yaml:"name" json:"name"`
	Collection string                 `yaml:"collection" json:"collection"`
	Fields     []string               `yaml:"fields" json:"fields"`
	Settings   database.IndexSettings `yaml:"settings" json:"settings"`
}

func (i IndexSchema) index() database.Index {
	return database.Index{
		ID:       i.ID,
		Name:     i.Name,
		Fields:   slices.Clone(i.Fields),
		Settings: i.Settings,
	}
}

// ApplyToDatabase creates the index and returns it with its live id.
func (i IndexSchema) ApplyToDatabase(ctx context.Context, db database.Database, silent bool) (*database.Index, error) {
	logging.FromContext(ctx).Debug("creating index", "collection", i.Collection, "index", i.Name)
	idx, err := db.CreateIndex(ctx, i.Collection, i.index())
	if err != nil {
		return nil, handleError(ctx, err, silent)
	}
	return &idx, nil
}

// Drop deletes the index.
func (i IndexSchema) Drop(ctx context.Context, db database.Database) error {
	logging.FromContext(ctx).Debug("deleting index", "collection", i.Collection, "index", i.Name)
	return db.DropIndex(ctx, i.Collection, i.Name)
}

// Fetch returns the live index.
func (i IndexSchema) Fetch(ctx context.Context, db database.Database) (database.Index, error) {
	return db.Index(ctx, i.Collection, i.Name)
}

// GraphSchema describes a tracked named graph.
type GraphSchema struct {
	Name              string                    `yaml:"name" json:"name"`
	EdgeDefinitions   []database.EdgeDefinition `yaml:"edge_definitions" json:"edge_definitions"`
	OrphanCollections []string                  `yaml:"orphan_collections,omitempty" json:"orphan_collections,omitempty"`
	IsSmart           *bool                     `yaml:"is_smart,omitempty" json:"is_smart,omitempty"`
	IsDisjoint        *bool                     `yaml:"is_disjoint,omitempty" json:"is_disjoint,omitempty"`
	Options           *database.GraphOptions    `yaml:"options,omitempty" json:"options,omitempty"`
}

// GraphFromDatabase converts a live graph into its descriptor.
func GraphFromDatabase(g database.Graph) GraphSchema {
	return GraphSchema{
		Name:              g.Name,
		EdgeDefinitions:   g.EdgeDefinitions,
		OrphanCollections: g.OrphanCollections,
		IsSmart:           g.IsSmart,
		IsDisjoint:        g.IsDisjoint,
		Options:           g.Options,
	}
}

// Graph converts the descriptor into a live graph definition.
func (g GraphSchema) Graph() database.Graph {
	return database.Graph{
		Name:              g.Name,
		EdgeDefinitions:   slices.Clone(g.EdgeDefinitions),
		OrphanCollections: slices.Clone(g.OrphanCollections),
		IsSmart:           g.IsSmart,
		IsDisjoint:        g.IsDisjoint,
		Options:           g.Options,
	}
}

// ApplyToDatabase creates the graph.
func (g GraphSchema) ApplyToDatabase(ctx context.Context, db database.Database, silent bool) (*database.Graph, error) {
	logging.FromContext(ctx).Debug("creating graph", "graph", g.Name)
	created, err := db.CreateGraph(ctx, g.Graph())
	if err != nil {
		return nil, handleError(ctx, err, silent)
	}
	return &created, nil
}

// Drop deletes the graph, keeping its collections.
func (g GraphSchema) Drop(ctx context.Context, db database.Database) error {
	logging.FromContext(ctx).Debug("deleting graph", "graph", g.Name)
	return db.DropGraph(ctx, g.Name)
}

// Fetch returns the live graph.
func (g GraphSchema) Fetch(ctx context.Context, db database.Database) (database.Graph, error) {
	return db.Graph(ctx, g.Name)
}
