// Package database defines the live database collaborator used by the
// migration engine, together with its ArangoDB, SQL and in-memory backends.
package database

import (
	"context"
	"log/slog"
	"strings"
)

// CollectionType is the kind of a live collection.
type CollectionType int

const (
	// DocumentCollection stores plain documents.
	DocumentCollection CollectionType = iota
	// EdgeCollection stores edges with _from/_to references.
	EdgeCollection
)

// String returns the collection type name.
func (t CollectionType) String() string {
	if t == EdgeCollection {
		return "Edge"
	}
	return "Document"
}

// CollectionInfo describes a live collection.
type CollectionInfo struct {
	Name        string
	Type        CollectionType
	IsSystem    bool
	WaitForSync bool
	Count       int64
}

// CollectionOptions are the creation settings of a collection.
type CollectionOptions struct {
	Edge        bool
	WaitForSync bool
}

// IndexType identifies the kind of an index.
type IndexType string

const (
	PrimaryIndex    IndexType = "primary"
	EdgeIndex       IndexType = "edge"
	PersistentIndex IndexType = "persistent"
	HashIndex       IndexType = "hash"
	SkipListIndex   IndexType = "skiplist"
	TTLIndex        IndexType = "ttl"
	GeoIndex        IndexType = "geo"
	FullTextIndex   IndexType = "fulltext"
)

// IsAutomatic reports whether the index is created by the database itself.
func (t IndexType) IsAutomatic() bool {
	return t == PrimaryIndex || t == EdgeIndex
}

// IndexSettings holds the index-kind specific settings, keyed the way the
// ArangoDB HTTP API names them. A nil Deduplicate keeps the server default.
type IndexSettings struct {
	Type        IndexType `yaml:"type" json:"type"`
	Unique      bool      `yaml:"unique,omitempty" json:"unique,omitempty"`
	Sparse      bool      `yaml:"sparse,omitempty" json:"sparse,omitempty"`
	Deduplicate *bool     `yaml:"deduplicate,omitempty" json:"deduplicate,omitempty"`
	ExpireAfter int       `yaml:"expireAfter,omitempty" json:"expireAfter,omitempty"`
	GeoJSON     bool      `yaml:"geoJson,omitempty" json:"geoJson,omitempty"`
	MinLength   int       `yaml:"minLength,omitempty" json:"minLength,omitempty"`
}

// DeduplicateOrDefault returns the deduplicate setting, true when unset.
func (s IndexSettings) DeduplicateOrDefault() bool {
	return s.Deduplicate == nil || *s.Deduplicate
}

// Index is a live index on a collection.
type Index struct {
	ID       string
	Name     string
	Fields   []string
	Settings IndexSettings
}

// EdgeDefinition links an edge collection to its vertex collections.
type EdgeDefinition struct {
	Collection string   `yaml:"collection" json:"collection"`
	From       []string `yaml:"from" json:"from"`
	To         []string `yaml:"to" json:"to"`
}

// GraphOptions are the sharding options of a named graph.
type GraphOptions struct {
	SmartGraphAttribute string `yaml:"smartGraphAttribute,omitempty" json:"smartGraphAttribute,omitempty"`
	NumberOfShards      int    `yaml:"numberOfShards,omitempty" json:"numberOfShards,omitempty"`
	ReplicationFactor   int    `yaml:"replicationFactor,omitempty" json:"replicationFactor,omitempty"`
	WriteConcern        int    `yaml:"writeConcern,omitempty" json:"writeConcern,omitempty"`
}

// Graph is a live named graph.
type Graph struct {
	Name              string
	EdgeDefinitions   []EdgeDefinition
	OrphanCollections []string
	IsSmart           *bool
	IsDisjoint        *bool
	Options           *GraphOptions
}

// Database is the live database the engine reads and mutates. The engine
// issues these calls one at a time and never retries them.
type Database interface {
	// Name returns the database name.
	Name() string

	// ServerVersion returns the version reported by the server.
	ServerVersion(ctx context.Context) (string, error)

	// Collections lists accessible non-system collections.
	Collections(ctx context.Context) ([]CollectionInfo, error)

	// Collection fetches a single collection.
	Collection(ctx context.Context, name string) (CollectionInfo, error)

	// CreateCollection creates a document or edge collection.
	CreateCollection(ctx context.Context, name string, opts CollectionOptions) (CollectionInfo, error)

	// DropCollection drops a collection and its indexes.
	DropCollection(ctx context.Context, name string) error

	// Indexes lists the indexes of a collection, automatic ones included.
	Indexes(ctx context.Context, collection string) ([]Index, error)

	// Index fetches an index by collection and name.
	Index(ctx context.Context, collection, name string) (Index, error)

	// CreateIndex creates an index and returns it with its id.
	CreateIndex(ctx context.Context, collection string, index Index) (Index, error)

	// DropIndex drops an index by collection and name.
	DropIndex(ctx context.Context, collection, name string) error

	// Graphs lists the named graphs.
	Graphs(ctx context.Context) ([]Graph, error)

	// Graph fetches a named graph.
	Graph(ctx context.Context, name string) (Graph, error)

	// CreateGraph creates a named graph.
	CreateGraph(ctx context.Context, graph Graph) (Graph, error)

	// DropGraph drops a named graph, keeping its collections.
	DropGraph(ctx context.Context, name string) error

	// Query executes a raw query in the backend's native language.
	Query(ctx context.Context, query string) ([]any, error)

	// ReadDocument decodes the document stored under key into out.
	ReadDocument(ctx context.Context, collection, key string, out any) error

	// WriteDocument creates or replaces the document stored under key.
	WriteDocument(ctx context.Context, collection, key string, doc any) error

	// Close releases the connection.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Provider string
	Host     string
	Name     string
	User     string
	Password string
}

// Open connects to the backend selected by cfg.Provider.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Database, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	switch NormalizeProvider(cfg.Provider) {
	case ProviderArango:
		return OpenArango(ctx, cfg, logger)
	case ProviderSQLite, ProviderPostgres, ProviderMySQL:
		return OpenSQL(ctx, cfg, logger)
	case ProviderMemory:
		return NewMemory(cfg.Name), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// Supported providers.
const (
	ProviderArango   = "arango"
	ProviderSQLite   = "sqlite"
	ProviderPostgres = "postgres"
	ProviderMySQL    = "mysql"
	ProviderMemory   = "memory"
)

// NormalizeProvider maps provider aliases onto the canonical names.
func NormalizeProvider(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "arango", "arangodb":
		return ProviderArango
	case "sqlite", "sqlite3":
		return ProviderSQLite
	case "postgres", "postgresql":
		return ProviderPostgres
	case "mysql":
		return ProviderMySQL
	case "memory":
		return ProviderMemory
	default:
		return provider
	}
}

// IsSystemName reports whether name is reserved for system collections.
func IsSystemName(name string) bool {
	return strings.HasPrefix(name, "_")
}
