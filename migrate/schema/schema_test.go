package schema

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/arangomigrate/migrate/database"
	"github.com/satishbabariya/arangomigrate/migrate/errdefs"
)

func fixture(t *testing.T) *DatabaseSchema {
	t.Helper()
	s := New()
	replication := 10
	require.NoError(t, s.AddCollection(NewCollection("collectionA", false)))
	require.NoError(t, s.AddCollection(NewCollection("collectionB", false)))
	require.NoError(t, s.AddCollection(NewCollection("edgeCollectionA", true)))
	require.NoError(t, s.AddIndex(IndexSchema{
		Name:       "OnUsername",
		Collection: "collectionA",
		Fields:     []string{"username"},
		Settings:   database.IndexSettings{Type: database.PersistentIndex, Unique: true},
	}))
	require.NoError(t, s.AddIndex(IndexSchema{
		Name:       "OnAgeAndEmail",
		Collection: "collectionB",
		Fields:     []string{"age", "email"},
		Settings:   database.IndexSettings{Type: database.TTLIndex, ExpireAfter: 3600},
	}))
	require.NoError(t, s.AddGraph(GraphSchema{
		Name: "namedGraph",
		EdgeDefinitions: []database.EdgeDefinition{{
			Collection: "edgeCollectionA",
			From:       []string{"collectionA"},
			To:         []string{"collectionB"},
		}},
		Options: &database.GraphOptions{ReplicationFactor: replication},
	}))
	return s
}

func TestLookups(t *testing.T) {
	s := fixture(t)

	c, ok := s.Collection("collectionB")
	require.True(t, ok)
	assert.False(t, c.IsEdgeCollection)

	i, ok := s.CollectionIndex("edgeCollectionA")
	require.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = s.Index("collectionB", "OnUsername")
	assert.False(t, ok, "index identity includes the collection")
	idx, ok := s.Index("collectionA", "OnUsername")
	require.True(t, ok)
	assert.Equal(t, []string{"username"}, idx.Fields)

	_, ok = s.Graph("namedGraph")
	assert.True(t, ok)
	_, ok = s.GraphIndex("other")
	assert.False(t, ok)
}

func TestDuplicatesRejected(t *testing.T) {
	s := fixture(t)

	assert.ErrorIs(t, s.AddCollection(NewCollection("collectionA", false)), errdefs.ErrDuplicateCollection)
	assert.ErrorIs(t, s.AddCollection(NewCollection("collectionA", true)), errdefs.ErrDuplicateEdgeCollection)
	assert.ErrorIs(t, s.AddIndex(IndexSchema{Name: "OnUsername", Collection: "collectionA"}), errdefs.ErrDuplicateIndex)
	assert.NoError(t, s.AddIndex(IndexSchema{Name: "OnUsername", Collection: "collectionB"}))
	assert.ErrorIs(t, s.AddGraph(GraphSchema{Name: "namedGraph"}), errdefs.ErrDuplicateGraph)
}

func TestRemoveKeepsLookupsConsistent(t *testing.T) {
	s := fixture(t)

	removed := s.RemoveCollectionAt(0)
	assert.Equal(t, "collectionA", removed.Name)

	_, ok := s.Collection("collectionA")
	assert.False(t, ok)
	i, ok := s.CollectionIndex("edgeCollectionA")
	require.True(t, ok)
	assert.Equal(t, 1, i)

	i, ok = s.IndexIndex("collectionB", "OnAgeAndEmail")
	require.True(t, ok)
	s.RemoveIndexAt(i)
	assert.Len(t, s.Indexes(), 1)

	i, ok = s.GraphIndex("namedGraph")
	require.True(t, ok)
	s.RemoveGraphAt(i)
	assert.Empty(t, s.Graphs())
}

func TestVersion(t *testing.T) {
	s := New()
	_, ok := s.Version()
	assert.False(t, ok)
	assert.Equal(t, Version(0), s.CurrentVersion())

	s.SetVersion(1700000000000)
	assert.Equal(t, Version(1700000000000), s.CurrentVersion())

	s.ClearVersion()
	_, ok = s.Version()
	assert.False(t, ok)
}

func TestSaveAndLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := fixture(t)
	s.SetVersion(42)

	require.NoError(t, s.Save(fs, "config/db/schema.yaml"))

	data, err := afero.ReadFile(fs, "config/db/schema.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Editing it will have no effect.")
	assert.Contains(t, string(data), "version: 42")
	assert.Contains(t, string(data), "is_edge_collection: true")

	loaded, err := Load(fs, "config/db/schema.yaml")
	require.NoError(t, err)
	assert.Equal(t, s.CurrentVersion(), loaded.CurrentVersion())
	assert.Equal(t, s.Collections(), loaded.Collections())
	assert.Equal(t, s.Indexes(), loaded.Indexes())
	assert.Equal(t, s.Graphs(), loaded.Graphs())

	// a shorter rewrite truncates the previous content
	require.NoError(t, New().Save(fs, "config/db/schema.yaml"))
	loaded, err = Load(fs, "config/db/schema.yaml")
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
	_, ok := loaded.Version()
	assert.False(t, ok)
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := Load(fs, "missing.yaml")
	assert.ErrorIs(t, err, errdefs.ErrInit)

	require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte("collections: {"), 0o644))
	_, err = Load(fs, "bad.yaml")
	assert.ErrorIs(t, err, errdefs.ErrParsing)

	dup := "collections:\n  - name: a\n    is_edge_collection: false\n  - name: a\n    is_edge_collection: false\n"
	require.NoError(t, afero.WriteFile(fs, "dup.yaml", []byte(dup), 0o644))
	_, err = Load(fs, "dup.yaml")
	assert.ErrorIs(t, err, errdefs.ErrParsing)
}

func TestJSONRoundTrip(t *testing.T) {
	s := fixture(t)
	s.SetVersion(7)

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	loaded := New()
	require.NoError(t, json.Unmarshal(raw, loaded))
	assert.Equal(t, Version(7), loaded.CurrentVersion())
	assert.Equal(t, s.Graphs(), loaded.Graphs())
}

func TestApplyAndDrop(t *testing.T) {
	ctx := context.Background()
	db := database.NewMemory("")
	s := fixture(t)

	require.NoError(t, s.ApplyToDatabase(ctx, db, false))
	for _, idx := range s.Indexes() {
		assert.NotEmpty(t, idx.ID)
	}
	g, err := s.Graphs()[0].Fetch(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "namedGraph", g.Name)

	// everything exists now, a silent re-apply swallows the conflicts
	assert.NoError(t, s.ApplyToDatabase(ctx, db, true))
	assert.Error(t, s.ApplyToDatabase(ctx, db, false))

	require.NoError(t, s.Drop(ctx, db))
	cols, err := db.Collections(ctx)
	require.NoError(t, err)
	assert.Empty(t, cols)
}
