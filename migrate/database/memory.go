package database

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"sync"
)

// Call is one recorded invocation on a Memory database.
type Call struct {
	Method string
	Target string
}

// Memory is an in-process Database. It backs dry-run replays and tests, and
// records every mutating call it receives.
type Memory struct {
	mu          sync.Mutex
	name        string
	collections map[string]*memCollection
	graphs      map[string]Graph
	calls       []Call
	failures    map[string]error
	nextIndexID int
}

type memCollection struct {
	info      CollectionInfo
	indexes   []Index
	documents map[string][]byte
}

// NewMemory returns an empty in-memory database.
func NewMemory(name string) *Memory {
	if name == "" {
		name = "memory"
	}
	return &Memory{
		name:        name,
		collections: make(map[string]*memCollection),
		graphs:      make(map[string]Graph),
		failures:    make(map[string]error),
	}
}

// Calls returns the mutating calls received so far.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// ResetCalls clears the call log.
func (m *Memory) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// FailOn makes the next call to method return err.
func (m *Memory) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[method] = err
}

func (m *Memory) record(method, target string) error {
	m.calls = append(m.calls, Call{Method: method, Target: target})
	if err, ok := m.failures[method]; ok {
		delete(m.failures, method)
		return err
	}
	return nil
}

func (m *Memory) Name() string { return m.name }

func (m *Memory) ServerVersion(context.Context) (string, error) {
	return "3.11.0", nil
}

func (m *Memory) Collections(context.Context) ([]CollectionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		if !IsSystemName(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	infos := make([]CollectionInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, m.collections[name].snapshot())
	}
	return infos, nil
}

func (m *Memory) Collection(_ context.Context, name string) (CollectionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	col, ok := m.collections[name]
	if !ok {
		return CollectionInfo{}, notFound("collection", name)
	}
	return col.snapshot(), nil
}

func (m *Memory) CreateCollection(_ context.Context, name string, opts CollectionOptions) (CollectionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("CreateCollection", name); err != nil {
		return CollectionInfo{}, err
	}
	return m.createCollection(name, opts)
}

func (m *Memory) createCollection(name string, opts CollectionOptions) (CollectionInfo, error) {
	if _, ok := m.collections[name]; ok {
		return CollectionInfo{}, conflict("collection", name)
	}
	typ := DocumentCollection
	if opts.Edge {
		typ = EdgeCollection
	}
	col := &memCollection{
		info: CollectionInfo{
			Name:        name,
			Type:        typ,
			IsSystem:    IsSystemName(name),
			WaitForSync: opts.WaitForSync,
		},
		documents: make(map[string][]byte),
	}
	col.indexes = append(col.indexes, Index{
		ID:       name + "/0",
		Name:     "primary",
		Fields:   []string{"_key"},
		Settings: IndexSettings{Type: PrimaryIndex, Unique: true},
	})
	if opts.Edge {
		col.indexes = append(col.indexes, Index{
			ID:       name + "/1",
			Name:     "edge",
			Fields:   []string{"_from", "_to"},
			Settings: IndexSettings{Type: EdgeIndex},
		})
	}
	m.collections[name] = col
	return col.snapshot(), nil
}

func (m *Memory) DropCollection(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("DropCollection", name); err != nil {
		return err
	}
	if _, ok := m.collections[name]; !ok {
		return notFound("collection", name)
	}
	delete(m.collections, name)
	return nil
}

func (m *Memory) Indexes(_ context.Context, collection string) ([]Index, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	col, ok := m.collections[collection]
	if !ok {
		return nil, notFound("collection", collection)
	}
	return slices.Clone(col.indexes), nil
}

func (m *Memory) Index(_ context.Context, collection, name string) (Index, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	col, ok := m.collections[collection]
	if !ok {
		return Index{}, notFound("collection", collection)
	}
	for _, idx := range col.indexes {
		if idx.Name == name {
			return idx, nil
		}
	}
	return Index{}, notFound("index", name)
}

func (m *Memory) CreateIndex(_ context.Context, collection string, index Index) (Index, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("CreateIndex", collection+"/"+index.Name); err != nil {
		return Index{}, err
	}
	col, ok := m.collections[collection]
	if !ok {
		return Index{}, notFound("collection", collection)
	}
	for _, idx := range col.indexes {
		if idx.Name == index.Name {
			return Index{}, conflict("index", index.Name)
		}
	}
	m.nextIndexID++
	index.ID = fmt.Sprintf("%s/%d", collection, 100+m.nextIndexID)
	index.Fields = slices.Clone(index.Fields)
	col.indexes = append(col.indexes, index)
	return index, nil
}

func (m *Memory) DropIndex(_ context.Context, collection, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("DropIndex", collection+"/"+name); err != nil {
		return err
	}
	col, ok := m.collections[collection]
	if !ok {
		return notFound("collection", collection)
	}
	for i, idx := range col.indexes {
		if idx.Name == name {
			col.indexes = slices.Delete(col.indexes, i, i+1)
			return nil
		}
	}
	return notFound("index", name)
}

func (m *Memory) Graphs(context.Context) ([]Graph, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.graphs))
	for name := range m.graphs {
		names = append(names, name)
	}
	sort.Strings(names)

	graphs := make([]Graph, 0, len(names))
	for _, name := range names {
		graphs = append(graphs, m.graphs[name])
	}
	return graphs, nil
}

func (m *Memory) Graph(_ context.Context, name string) (Graph, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.graphs[name]
	if !ok {
		return Graph{}, notFound("graph", name)
	}
	return g, nil
}

// CreateGraph creates the graph and, like ArangoDB, any collection its edge
// definitions reference that does not exist yet.
func (m *Memory) CreateGraph(_ context.Context, graph Graph) (Graph, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("CreateGraph", graph.Name); err != nil {
		return Graph{}, err
	}
	if _, ok := m.graphs[graph.Name]; ok {
		return Graph{}, conflict("graph", graph.Name)
	}
	for _, def := range graph.EdgeDefinitions {
		if _, ok := m.collections[def.Collection]; !ok {
			if _, err := m.createCollection(def.Collection, CollectionOptions{Edge: true}); err != nil {
				return Graph{}, err
			}
		}
		for _, vertex := range slices.Concat(def.From, def.To) {
			if _, ok := m.collections[vertex]; !ok {
				if _, err := m.createCollection(vertex, CollectionOptions{}); err != nil {
					return Graph{}, err
				}
			}
		}
	}
	m.graphs[graph.Name] = graph
	return graph, nil
}

func (m *Memory) DropGraph(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("DropGraph", name); err != nil {
		return err
	}
	if _, ok := m.graphs[name]; !ok {
		return notFound("graph", name)
	}
	delete(m.graphs, name)
	return nil
}

// Query records the query and returns no rows.
func (m *Memory) Query(_ context.Context, query string) ([]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("Query", query); err != nil {
		return nil, err
	}
	return nil, nil
}

func (m *Memory) ReadDocument(_ context.Context, collection, key string, out any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	col, ok := m.collections[collection]
	if !ok {
		return notFound("collection", collection)
	}
	raw, ok := col.documents[key]
	if !ok {
		return notFound("document", key)
	}
	return json.Unmarshal(raw, out)
}

func (m *Memory) WriteDocument(_ context.Context, collection, key string, doc any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("WriteDocument", collection+"/"+key); err != nil {
		return err
	}
	col, ok := m.collections[collection]
	if !ok {
		return notFound("collection", collection)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	col.documents[key] = raw
	return nil
}

func (m *Memory) Close() error { return nil }

func (c *memCollection) snapshot() CollectionInfo {
	info := c.info
	info.Count = int64(len(c.documents))
	return info
}
