// Package schema holds the tracked inventory of collections, indexes and
// named graphs together with the version marker of the last applied migration.
package schema

import (
	"context"
	"encoding/json"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/satishbabariya/arangomigrate/migrate/database"
	"github.com/satishbabariya/arangomigrate/migrate/errdefs"
)

// Version is a millisecond epoch timestamp identifying a migration.
type Version uint64

type indexKey struct {
	collection string
	name       string
}

// DatabaseSchema is the versioned schema aggregate. Descriptors keep their
// insertion order for serialization and are looked up through name-keyed maps.
// It is not safe for concurrent use.
type DatabaseSchema struct {
	version     *Version
	collections []CollectionSchema
	indexes     []IndexSchema
	graphs      []GraphSchema

	collectionPos map[string]int
	indexPos      map[indexKey]int
	graphPos      map[string]int
}

// New returns an empty schema with no version.
func New() *DatabaseSchema {
	s := &DatabaseSchema{}
	s.reindex()
	return s
}

func (s *DatabaseSchema) reindex() {
	s.collectionPos = make(map[string]int, len(s.collections))
	for i, c := range s.collections {
		s.collectionPos[c.Name] = i
	}
	s.indexPos = make(map[indexKey]int, len(s.indexes))
	for i, idx := range s.indexes {
		s.indexPos[indexKey{idx.Collection, idx.Name}] = i
	}
	s.graphPos = make(map[string]int, len(s.graphs))
	for i, g := range s.graphs {
		s.graphPos[g.Name] = i
	}
}

// Version returns the version marker, if any.
func (s *DatabaseSchema) Version() (Version, bool) {
	if s.version == nil {
		return 0, false
	}
	return *s.version, true
}

// CurrentVersion returns the version marker or 0 when none is set.
func (s *DatabaseSchema) CurrentVersion() Version {
	v, _ := s.Version()
	return v
}

// SetVersion sets the version marker.
func (s *DatabaseSchema) SetVersion(v Version) {
	s.version = &v
}

// ClearVersion removes the version marker.
func (s *DatabaseSchema) ClearVersion() {
	s.version = nil
}

// Collections returns the tracked collections in insertion order.
func (s *DatabaseSchema) Collections() []CollectionSchema { return slices.Clone(s.collections) }

// Indexes returns the tracked indexes in insertion order.
func (s *DatabaseSchema) Indexes() []IndexSchema { return slices.Clone(s.indexes) }

// Graphs returns the tracked graphs in insertion order.
func (s *DatabaseSchema) Graphs() []GraphSchema { return slices.Clone(s.graphs) }

// IsEmpty reports whether nothing is tracked.
func (s *DatabaseSchema) IsEmpty() bool {
	return len(s.collections) == 0 && len(s.indexes) == 0 && len(s.graphs) == 0
}

// Collection finds a collection by name.
func (s *DatabaseSchema) Collection(name string) (CollectionSchema, bool) {
	i, ok := s.collectionPos[name]
	if !ok {
		return CollectionSchema{}, false
	}
	return s.collections[i], true
}

// CollectionIndex returns the position of the named collection.
func (s *DatabaseSchema) CollectionIndex(name string) (int, bool) {
	i, ok := s.collectionPos[name]
	return i, ok
}

// Index finds an index by its (collection, name) identity.
func (s *DatabaseSchema) Index(collection, name string) (IndexSchema, bool) {
	i, ok := s.indexPos[indexKey{collection, name}]
	if !ok {
		return IndexSchema{}, false
	}
	return s.indexes[i], true
}

// IndexIndex returns the position of the (collection, name) index.
func (s *DatabaseSchema) IndexIndex(collection, name string) (int, bool) {
	i, ok := s.indexPos[indexKey{collection, name}]
	return i, ok
}

// CollectionIndexes returns the tracked indexes of one collection.
func (s *DatabaseSchema) CollectionIndexes(collection string) []IndexSchema {
	var out []IndexSchema
	for _, idx := range s.indexes {
		if idx.Collection == collection {
			out = append(out, idx)
		}
	}
	return out
}

// Graph finds a graph by name.
func (s *DatabaseSchema) Graph(name string) (GraphSchema, bool) {
	i, ok := s.graphPos[name]
	if !ok {
		return GraphSchema{}, false
	}
	return s.graphs[i], true
}

// GraphIndex returns the position of the named graph.
func (s *DatabaseSchema) GraphIndex(name string) (int, bool) {
	i, ok := s.graphPos[name]
	return i, ok
}

// AddCollection appends a collection descriptor.
func (s *DatabaseSchema) AddCollection(c CollectionSchema) error {
	if _, ok := s.collectionPos[c.Name]; ok {
		if c.IsEdgeCollection {
			return errdefs.DuplicateEdgeCollection(c.Name)
		}
		return errdefs.DuplicateCollection(c.Name)
	}
	s.collectionPos[c.Name] = len(s.collections)
	s.collections = append(s.collections, c)
	return nil
}

// AddIndex appends an index descriptor.
func (s *DatabaseSchema) AddIndex(idx IndexSchema) error {
	key := indexKey{idx.Collection, idx.Name}
	if _, ok := s.indexPos[key]; ok {
		return errdefs.DuplicateIndex(idx.Collection, idx.Name)
	}
	s.indexPos[key] = len(s.indexes)
	s.indexes = append(s.indexes, idx)
	return nil
}

// AddGraph appends a graph descriptor.
func (s *DatabaseSchema) AddGraph(g GraphSchema) error {
	if _, ok := s.graphPos[g.Name]; ok {
		return errdefs.DuplicateGraph(g.Name)
	}
	s.graphPos[g.Name] = len(s.graphs)
	s.graphs = append(s.graphs, g)
	return nil
}

// RemoveCollectionAt removes and returns the collection at position i.
func (s *DatabaseSchema) RemoveCollectionAt(i int) CollectionSchema {
	c := s.collections[i]
	s.collections = slices.Delete(s.collections, i, i+1)
	s.reindex()
	return c
}

// RemoveIndexAt removes and returns the index at position i.
func (s *DatabaseSchema) RemoveIndexAt(i int) IndexSchema {
	idx := s.indexes[i]
	s.indexes = slices.Delete(s.indexes, i, i+1)
	s.reindex()
	return idx
}

// RemoveGraphAt removes and returns the graph at position i.
func (s *DatabaseSchema) RemoveGraphAt(i int) GraphSchema {
	g := s.graphs[i]
	s.graphs = slices.Delete(s.graphs, i, i+1)
	s.reindex()
	return g
}

// ApplyToDatabase creates every tracked collection, then index, then graph.
// Created index ids are recorded back into the schema.
func (s *DatabaseSchema) ApplyToDatabase(ctx context.Context, db database.Database, silent bool) error {
	for _, c := range s.collections {
		if _, err := c.ApplyToDatabase(ctx, db, silent); err != nil {
			return err
		}
	}
	for i, idx := range s.indexes {
		created, err := idx.ApplyToDatabase(ctx, db, silent)
		if err != nil {
			return err
		}
		if created != nil {
			s.indexes[i].ID = created.ID
		}
	}
	for _, g := range s.graphs {
		if _, err := g.ApplyToDatabase(ctx, db, silent); err != nil {
			return err
		}
	}
	return nil
}

// Drop removes every tracked graph, then index, then collection from the
// live database. The schema itself is left untouched.
func (s *DatabaseSchema) Drop(ctx context.Context, db database.Database) error {
	for _, g := range s.graphs {
		if err := g.Drop(ctx, db); err != nil {
			return err
		}
	}
	for _, idx := range s.indexes {
		if err := idx.Drop(ctx, db); err != nil {
			return err
		}
	}
	for _, c := range s.collections {
		if err := c.Drop(ctx, db); err != nil {
			return err
		}
	}
	return nil
}

// document is the serialized shape of the schema.
type document struct {
	Version     *Version           `yaml:"version" json:"version"`
	Collections []CollectionSchema `yaml:"collections" json:"collections"`
	Indexes     []IndexSchema      `yaml:"indexes" json:"indexes"`
	Graphs      []GraphSchema      `yaml:"graphs" json:"graphs"`
}

func (s *DatabaseSchema) document() document {
	return document{
		Version:     s.version,
		Collections: nonNil(s.collections),
		Indexes:     nonNil(s.indexes),
		Graphs:      nonNil(s.graphs),
	}
}

func (s *DatabaseSchema) fromDocument(doc document) error {
	next := &DatabaseSchema{version: doc.Version}
	next.reindex()
	for _, c := range doc.Collections {
		if err := next.AddCollection(c); err != nil {
			return err
		}
	}
	for _, idx := range doc.Indexes {
		if err := next.AddIndex(idx); err != nil {
			return err
		}
	}
	for _, g := range doc.Graphs {
		if err := next.AddGraph(g); err != nil {
			return err
		}
	}
	*s = *next
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// MarshalYAML implements yaml.Marshaler.
func (s *DatabaseSchema) MarshalYAML() (any, error) {
	return s.document(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Duplicated descriptors are
// rejected.
func (s *DatabaseSchema) UnmarshalYAML(node *yaml.Node) error {
	var doc document
	if err := node.Decode(&doc); err != nil {
		return err
	}
	return s.fromDocument(doc)
}

// MarshalJSON implements json.Marshaler.
func (s *DatabaseSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.document())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *DatabaseSchema) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	return s.fromDocument(doc)
}

// Clone returns a deep enough copy for independent mutation.
func (s *DatabaseSchema) Clone() *DatabaseSchema {
	c := &DatabaseSchema{
		collections: slices.Clone(s.collections),
		indexes:     slices.Clone(s.indexes),
		graphs:      slices.Clone(s.graphs),
	}
	if s.version != nil {
		v := *s.version
		c.version = &v
	}
	c.reindex()
	return c
}
