package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCollections(t *testing.T) {
	ctx := context.Background()
	db := NewMemory("test")

	_, err := db.CreateCollection(ctx, "Users", CollectionOptions{WaitForSync: true})
	require.NoError(t, err)
	_, err = db.CreateCollection(ctx, "Knows", CollectionOptions{Edge: true})
	require.NoError(t, err)
	_, err = db.CreateCollection(ctx, "_system", CollectionOptions{})
	require.NoError(t, err)

	_, err = db.CreateCollection(ctx, "Users", CollectionOptions{})
	assert.ErrorIs(t, err, ErrConflict)

	cols, err := db.Collections(ctx)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "Knows", cols[0].Name)
	assert.Equal(t, EdgeCollection, cols[0].Type)
	assert.Equal(t, "Users", cols[1].Name)
	assert.True(t, cols[1].WaitForSync)

	indexes, err := db.Indexes(ctx, "Knows")
	require.NoError(t, err)
	require.Len(t, indexes, 2)
	assert.Equal(t, PrimaryIndex, indexes[0].Settings.Type)
	assert.Equal(t, EdgeIndex, indexes[1].Settings.Type)

	require.NoError(t, db.DropCollection(ctx, "Users"))
	_, err = db.Collection(ctx, "Users")
	assert.True(t, IsNotFound(err))
}

func TestMemoryIndexes(t *testing.T) {
	ctx := context.Background()
	db := NewMemory("")

	_, err := db.CreateIndex(ctx, "Users", Index{Name: "OnEmail"})
	assert.True(t, IsNotFound(err))

	_, err = db.CreateCollection(ctx, "Users", CollectionOptions{})
	require.NoError(t, err)

	idx, err := db.CreateIndex(ctx, "Users", Index{
		Name:     "OnEmail",
		Fields:   []string{"email"},
		Settings: IndexSettings{Type: PersistentIndex, Unique: true},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, idx.ID)

	_, err = db.CreateIndex(ctx, "Users", Index{Name: "OnEmail"})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := db.Index(ctx, "Users", "OnEmail")
	require.NoError(t, err)
	assert.Equal(t, idx, got)

	require.NoError(t, db.DropIndex(ctx, "Users", "OnEmail"))
	assert.True(t, IsNotFound(db.DropIndex(ctx, "Users", "OnEmail")))
}

func TestMemoryGraphCreatesCollections(t *testing.T) {
	ctx := context.Background()
	db := NewMemory("")

	_, err := db.CreateGraph(ctx, Graph{
		Name: "Social",
		EdgeDefinitions: []EdgeDefinition{
			{Collection: "Knows", From: []string{"Users"}, To: []string{"Users"}},
		},
	})
	require.NoError(t, err)

	knows, err := db.Collection(ctx, "Knows")
	require.NoError(t, err)
	assert.Equal(t, EdgeCollection, knows.Type)
	_, err = db.Collection(ctx, "Users")
	require.NoError(t, err)

	require.NoError(t, db.DropGraph(ctx, "Social"))
	graphs, err := db.Graphs(ctx)
	require.NoError(t, err)
	assert.Empty(t, graphs)

	// collections survive the graph
	_, err = db.Collection(ctx, "Knows")
	assert.NoError(t, err)
}

func TestMemoryCallsAndFailures(t *testing.T) {
	ctx := context.Background()
	db := NewMemory("")

	boom := errors.New("boom")
	db.FailOn("CreateCollection", boom)

	_, err := db.CreateCollection(ctx, "Users", CollectionOptions{})
	assert.ErrorIs(t, err, boom)
	_, err = db.CreateCollection(ctx, "Users", CollectionOptions{})
	require.NoError(t, err)

	_, err = db.Query(ctx, "FOR u IN Users RETURN u")
	require.NoError(t, err)

	assert.Equal(t, []Call{
		{Method: "CreateCollection", Target: "Users"},
		{Method: "CreateCollection", Target: "Users"},
		{Method: "Query", Target: "FOR u IN Users RETURN u"},
	}, db.Calls())

	db.ResetCalls()
	assert.Empty(t, db.Calls())
}

func TestMemoryDocuments(t *testing.T) {
	ctx := context.Background()
	db := NewMemory("")
	_, err := db.CreateCollection(ctx, "Config", CollectionOptions{})
	require.NoError(t, err)

	type doc struct {
		Version int `json:"version"`
	}

	var out doc
	assert.True(t, IsNotFound(db.ReadDocument(ctx, "Config", "Schema", &out)))

	require.NoError(t, db.WriteDocument(ctx, "Config", "Schema", doc{Version: 3}))
	require.NoError(t, db.ReadDocument(ctx, "Config", "Schema", &out))
	assert.Equal(t, 3, out.Version)

	info, err := db.Collection(ctx, "Config")
	require.NoError(t, err)
	assert.EqualValues(t, 1, info.Count)
}

func TestNormalizeProvider(t *testing.T) {
	tests := map[string]string{
		"":           ProviderArango,
		"ArangoDB":   ProviderArango,
		"sqlite3":    ProviderSQLite,
		"postgresql": ProviderPostgres,
		"mysql":      ProviderMySQL,
		"memory":     ProviderMemory,
		"oracle":     "oracle",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeProvider(in), in)
	}
}

func TestOpenUnsupportedProvider(t *testing.T) {
	_, err := Open(context.Background(), Config{Provider: "oracle"}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}
