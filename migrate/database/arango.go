package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	driver "github.com/arangodb/go-driver"
	arangohttp "github.com/arangodb/go-driver/http"
)

// Arango is a Database backed by an ArangoDB server.
type Arango struct {
	client driver.Client
	db     driver.Database
	logger *slog.Logger
}

// OpenArango connects to the ArangoDB server at cfg.Host and opens cfg.Name,
// creating the database when it does not exist.
func OpenArango(ctx context.Context, cfg Config, logger *slog.Logger) (*Arango, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	conn, err := arangohttp.NewConnection(arangohttp.ConnectionConfig{
		Endpoints: splitEndpoints(cfg.Host),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	client, err := driver.NewClient(driver.ClientConfig{
		Connection:     conn,
		Authentication: driver.BasicAuthentication(cfg.User, cfg.Password),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	exists, err := client.DatabaseExists(ctx, cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	var db driver.Database
	if exists {
		db, err = client.Database(ctx, cfg.Name)
	} else {
		logger.Info("creating missing database", "database", cfg.Name)
		db, err = client.CreateDatabase(ctx, cfg.Name, nil)
	}
	if err != nil {
		return nil, err
	}

	return &Arango{client: client, db: db, logger: logger}, nil
}

func splitEndpoints(host string) []string {
	var endpoints []string
	for _, e := range strings.Split(host, ",") {
		if e = strings.TrimSpace(e); e != "" {
			endpoints = append(endpoints, e)
		}
	}
	if len(endpoints) == 0 {
		endpoints = []string{"http://localhost:8529"}
	}
	return endpoints
}

func (a *Arango) Name() string { return a.db.Name() }

func (a *Arango) ServerVersion(ctx context.Context) (string, error) {
	info, err := a.client.Version(ctx)
	if err != nil {
		return "", err
	}
	return string(info.Version), nil
}

func (a *Arango) Collections(ctx context.Context) ([]CollectionInfo, error) {
	cols, err := a.db.Collections(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]CollectionInfo, 0, len(cols))
	for _, col := range cols {
		if IsSystemName(col.Name()) {
			continue
		}
		info, err := collectionInfo(ctx, col)
		if err != nil {
			return nil, err
		}
		if info.IsSystem {
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (a *Arango) Collection(ctx context.Context, name string) (CollectionInfo, error) {
	col, err := a.db.Collection(ctx, name)
	if err != nil {
		return CollectionInfo{}, convertError("collection", name, err)
	}
	return collectionInfo(ctx, col)
}

func collectionInfo(ctx context.Context, col driver.Collection) (CollectionInfo, error) {
	props, err := col.Properties(ctx)
	if err != nil {
		return CollectionInfo{}, err
	}
	count, err := col.Count(ctx)
	if err != nil {
		return CollectionInfo{}, err
	}
	typ := DocumentCollection
	if props.Type == driver.CollectionTypeEdge {
		typ = EdgeCollection
	}
	return CollectionInfo{
		Name:        col.Name(),
		Type:        typ,
		IsSystem:    props.IsSystem,
		WaitForSync: props.WaitForSync,
		Count:       count,
	}, nil
}

func (a *Arango) CreateCollection(ctx context.Context, name string, opts CollectionOptions) (CollectionInfo, error) {
	createOpts := &driver.CreateCollectionOptions{WaitForSync: opts.WaitForSync}
	if opts.Edge {
		createOpts.Type = driver.CollectionTypeEdge
	}
	col, err := a.db.CreateCollection(ctx, name, createOpts)
	if err != nil {
		return CollectionInfo{}, convertError("collection", name, err)
	}
	return collectionInfo(ctx, col)
}

func (a *Arango) DropCollection(ctx context.Context, name string) error {
	col, err := a.db.Collection(ctx, name)
	if err != nil {
		return convertError("collection", name, err)
	}
	return col.Remove(ctx)
}

func (a *Arango) Indexes(ctx context.Context, collection string) ([]Index, error) {
	col, err := a.db.Collection(ctx, collection)
	if err != nil {
		return nil, convertError("collection", collection, err)
	}
	idxs, err := col.Indexes(ctx)
	if err != nil {
		return nil, err
	}
	indexes := make([]Index, 0, len(idxs))
	for _, idx := range idxs {
		if _, ok := fromDriverIndexType(idx.Type()); !ok {
			a.logger.Warn("skipping index of unsupported type", "collection", collection, "index", idx.UserName(), "type", idx.Type())
			continue
		}
		indexes = append(indexes, fromDriverIndex(idx))
	}
	return indexes, nil
}

func (a *Arango) Index(ctx context.Context, collection, name string) (Index, error) {
	idx, err := a.findIndex(ctx, collection, name)
	if err != nil {
		return Index{}, err
	}
	return fromDriverIndex(idx), nil
}

func (a *Arango) findIndex(ctx context.Context, collection, name string) (driver.Index, error) {
	col, err := a.db.Collection(ctx, collection)
	if err != nil {
		return nil, convertError("collection", collection, err)
	}
	idxs, err := col.Indexes(ctx)
	if err != nil {
		return nil, err
	}
	for _, idx := range idxs {
		if idx.UserName() == name {
			return idx, nil
		}
	}
	return nil, notFound("index", name)
}

func (a *Arango) CreateIndex(ctx context.Context, collection string, index Index) (Index, error) {
	col, err := a.db.Collection(ctx, collection)
	if err != nil {
		return Index{}, convertError("collection", collection, err)
	}

	s := index.Settings
	var (
		idx     driver.Index
		created bool
	)
	switch s.Type {
	case PersistentIndex:
		idx, created, err = col.EnsurePersistentIndex(ctx, index.Fields, persistentIndexOptions(index))
	case HashIndex:
		idx, created, err = col.EnsureHashIndex(ctx, index.Fields, &driver.EnsureHashIndexOptions{
			Unique:        s.Unique,
			Sparse:        s.Sparse,
			NoDeduplicate: !s.DeduplicateOrDefault(),
			Name:          index.Name,
		})
	case SkipListIndex:
		idx, created, err = col.EnsureSkipListIndex(ctx, index.Fields, &driver.EnsureSkipListIndexOptions{
			Unique:        s.Unique,
			Sparse:        s.Sparse,
			NoDeduplicate: !s.DeduplicateOrDefault(),
			Name:          index.Name,
		})
	case TTLIndex:
		if len(index.Fields) != 1 {
			return Index{}, fmt.Errorf("ttl index %s needs exactly one field", index.Name)
		}
		idx, created, err = col.EnsureTTLIndex(ctx, index.Fields[0], s.ExpireAfter, &driver.EnsureTTLIndexOptions{
			Name: index.Name,
		})
	case GeoIndex:
		idx, created, err = col.EnsureGeoIndex(ctx, index.Fields, &driver.EnsureGeoIndexOptions{
			GeoJSON: s.GeoJSON,
			Name:    index.Name,
		})
	case FullTextIndex:
		idx, created, err = col.EnsureFullTextIndex(ctx, index.Fields, &driver.EnsureFullTextIndexOptions{
			MinLength: s.MinLength,
			Name:      index.Name,
		})
	default:
		return Index{}, fmt.Errorf("unsupported index type %q", s.Type)
	}
	if err != nil {
		return Index{}, convertError("index", index.Name, err)
	}
	if !created {
		a.logger.Debug("index already present", "collection", collection, "index", index.Name)
	}
	return fromDriverIndex(idx), nil
}

func (a *Arango) DropIndex(ctx context.Context, collection, name string) error {
	idx, err := a.findIndex(ctx, collection, name)
	if err != nil {
		return err
	}
	return idx.Remove(ctx)
}

func persistentIndexOptions(index Index) *driver.EnsurePersistentIndexOptions {
	return &driver.EnsurePersistentIndexOptions{
		Unique:        index.Settings.Unique,
		Sparse:        index.Settings.Sparse,
		NoDeduplicate: !index.Settings.DeduplicateOrDefault(),
		Name:          index.Name,
	}
}

func fromDriverIndex(idx driver.Index) Index {
	t, ok := fromDriverIndexType(idx.Type())
	if !ok {
		t = IndexType(idx.Type())
	}
	settings := IndexSettings{
		Type:        t,
		Unique:      idx.Unique(),
		Sparse:      idx.Sparse(),
		ExpireAfter: idx.ExpireAfter(),
		GeoJSON:     idx.GeoJSON(),
		MinLength:   idx.MinLength(),
	}
	switch t {
	case PersistentIndex, HashIndex, SkipListIndex:
		dedup := idx.Deduplicate()
		settings.Deduplicate = &dedup
	}
	return Index{
		ID:       idx.ID(),
		Name:     idx.UserName(),
		Fields:   idx.Fields(),
		Settings: settings,
	}
}

// fromDriverIndexType maps a driver index type, reporting false for kinds
// migrations cannot describe (inverted, zkd, mdi).
func fromDriverIndexType(t driver.IndexType) (IndexType, bool) {
	switch t {
	case driver.PrimaryIndex:
		return PrimaryIndex, true
	case driver.EdgeIndex:
		return EdgeIndex, true
	case driver.PersistentIndex:
		return PersistentIndex, true
	case driver.HashIndex:
		return HashIndex, true
	case driver.SkipListIndex:
		return SkipListIndex, true
	case driver.TTLIndex:
		return TTLIndex, true
	case driver.GeoIndex:
		return GeoIndex, true
	case driver.FullTextIndex:
		return FullTextIndex, true
	default:
		return "", false
	}
}

func (a *Arango) Graphs(ctx context.Context) ([]Graph, error) {
	gs, err := a.db.Graphs(ctx)
	if err != nil {
		return nil, err
	}
	graphs := make([]Graph, 0, len(gs))
	for _, g := range gs {
		graphs = append(graphs, fromDriverGraph(g))
	}
	return graphs, nil
}

func (a *Arango) Graph(ctx context.Context, name string) (Graph, error) {
	g, err := a.db.Graph(ctx, name)
	if err != nil {
		return Graph{}, convertError("graph", name, err)
	}
	return fromDriverGraph(g), nil
}

func (a *Arango) CreateGraph(ctx context.Context, graph Graph) (Graph, error) {
	opts := &driver.CreateGraphOptions{
		OrphanVertexCollections: graph.OrphanCollections,
	}
	for _, def := range graph.EdgeDefinitions {
		opts.EdgeDefinitions = append(opts.EdgeDefinitions, driver.EdgeDefinition{
			Collection: def.Collection,
			From:       def.From,
			To:         def.To,
		})
	}
	if graph.IsSmart != nil {
		opts.IsSmart = *graph.IsSmart
	}
	if graph.IsDisjoint != nil {
		opts.IsDisjoint = *graph.IsDisjoint
	}
	if o := graph.Options; o != nil {
		opts.SmartGraphAttribute = o.SmartGraphAttribute
		opts.NumberOfShards = o.NumberOfShards
		opts.ReplicationFactor = o.ReplicationFactor
		opts.WriteConcern = o.WriteConcern
	}

	g, err := a.db.CreateGraphV2(ctx, graph.Name, opts)
	if err != nil {
		return Graph{}, convertError("graph", graph.Name, err)
	}
	return fromDriverGraph(g), nil
}

func (a *Arango) DropGraph(ctx context.Context, name string) error {
	g, err := a.db.Graph(ctx, name)
	if err != nil {
		return convertError("graph", name, err)
	}
	return g.Remove(ctx)
}

func fromDriverGraph(g driver.Graph) Graph {
	graph := Graph{
		Name:              g.Name(),
		OrphanCollections: g.OrphanCollections(),
	}
	for _, def := range g.EdgeDefinitions() {
		graph.EdgeDefinitions = append(graph.EdgeDefinitions, EdgeDefinition{
			Collection: def.Collection,
			From:       def.From,
			To:         def.To,
		})
	}
	if g.IsSmart() {
		smart := true
		graph.IsSmart = &smart
	}
	if g.IsDisjoint() {
		disjoint := true
		graph.IsDisjoint = &disjoint
	}
	opts := GraphOptions{
		SmartGraphAttribute: g.SmartGraphAttribute(),
		NumberOfShards:      g.NumberOfShards(),
		ReplicationFactor:   g.ReplicationFactor(),
		WriteConcern:        g.WriteConcern(),
	}
	if opts != (GraphOptions{}) {
		graph.Options = &opts
	}
	return graph
}

func (a *Arango) Query(ctx context.Context, query string) ([]any, error) {
	cursor, err := a.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var rows []any
	for {
		var row any
		_, err := cursor.ReadDocument(ctx, &row)
		if driver.IsNoMoreDocuments(err) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (a *Arango) ReadDocument(ctx context.Context, collection, key string, out any) error {
	col, err := a.db.Collection(ctx, collection)
	if err != nil {
		return convertError("collection", collection, err)
	}
	if _, err := col.ReadDocument(ctx, key, out); err != nil {
		return convertError("document", key, err)
	}
	return nil
}

func (a *Arango) WriteDocument(ctx context.Context, collection, key string, doc any) error {
	col, err := a.db.Collection(ctx, collection)
	if err != nil {
		return convertError("collection", collection, err)
	}

	body, err := withKey(doc, key)
	if err != nil {
		return err
	}

	ctx = driver.WithWaitForSync(ctx, true)
	exists, err := col.DocumentExists(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		_, err = col.ReplaceDocument(ctx, key, body)
	} else {
		_, err = col.CreateDocument(ctx, body)
	}
	return err
}

func withKey(doc any, key string) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	body := make(map[string]any)
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	body["_key"] = key
	return body, nil
}

func (a *Arango) Close() error { return nil }

func convertError(kind, name string, err error) error {
	switch {
	case driver.IsNotFound(err):
		return fmt.Errorf("%w: %v", notFound(kind, name), err)
	case driver.IsConflict(err):
		return fmt.Errorf("%w: %v", conflict(kind, name), err)
	default:
		return err
	}
}
