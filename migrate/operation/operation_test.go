package operation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/arangomigrate/migrate/database"
	"github.com/satishbabariya/arangomigrate/migrate/errdefs"
	"github.com/satishbabariya/arangomigrate/migrate/schema"
)

func TestCreateCollectionDuplicateGuard(t *testing.T) {
	ctx := context.Background()
	db := database.NewMemory("")
	s := schema.New()

	require.NoError(t, CreateCollection{Name: "X"}.Apply(ctx, s, db, false))
	assert.Len(t, db.Calls(), 1)

	db.ResetCalls()
	err := CreateCollection{Name: "X"}.Apply(ctx, s, db, false)
	assert.ErrorIs(t, err, errdefs.ErrDuplicateCollection)
	assert.Empty(t, db.Calls())
	assert.Len(t, s.Collections(), 1)
}

func TestDuplicateGuards(t *testing.T) {
	ctx := context.Background()
	db := database.NewMemory("")
	s := schema.New()

	setup := List{
		CreateCollection{Name: "Users"},
		CreateEdgeCollection{Name: "Knows"},
		CreateIndex{Name: "OnEmail", Collection: "Users", Fields: []string{"email"}, Settings: database.IndexSettings{Type: database.PersistentIndex}},
		CreateGraph{Name: "Social", EdgeDefinitions: []database.EdgeDefinition{{Collection: "Knows", From: []string{"Users"}, To: []string{"Users"}}}},
	}
	for _, op := range setup {
		require.NoError(t, op.Apply(ctx, s, db, false), op.Kind())
	}
	db.ResetCalls()

	tests := []struct {
		op   Operation
		want error
	}{
		{CreateEdgeCollection{Name: "Knows"}, errdefs.ErrDuplicateEdgeCollection},
		{CreateEdgeCollection{Name: "Users"}, errdefs.ErrDuplicateEdgeCollection},
		{CreateIndex{Name: "OnEmail", Collection: "Users"}, errdefs.ErrDuplicateIndex},
		{CreateGraph{Name: "Social"}, errdefs.ErrDuplicateGraph},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, tt.op.Apply(ctx, s, db, false), tt.want, tt.op.Kind())
	}
	assert.Empty(t, db.Calls())

	// same index name on another collection is a different index
	require.NoError(t, CreateCollection{Name: "Posts"}.Apply(ctx, s, db, false))
	assert.NoError(t, CreateIndex{Name: "OnEmail", Collection: "Posts", Settings: database.IndexSettings{Type: database.PersistentIndex}}.Apply(ctx, s, db, false))
}

func TestMissingGuards(t *testing.T) {
	ctx := context.Background()
	db := database.NewMemory("")
	s := schema.New()

	tests := []struct {
		op   Operation
		want error
	}{
		{DeleteCollection{Name: "Users"}, errdefs.ErrMissingCollection},
		{DeleteEdgeCollection{Name: "Knows"}, errdefs.ErrMissingEdgeCollection},
		{DeleteIndex{Name: "OnEmail", Collection: "Users"}, errdefs.ErrMissingIndex},
		{DeleteGraph{Name: "Social"}, errdefs.ErrMissingGraph},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, tt.op.Apply(ctx, s, db, false), tt.want, tt.op.Kind())
	}
	assert.Empty(t, db.Calls())

	err := DeleteIndex{Name: "OnEmail", Collection: "Users"}.Apply(ctx, s, db, false)
	assert.EqualError(t, err, "Missing Index: OnEmail on collection Users")
}

func TestLiveFailureLeavesSchemaUntouched(t *testing.T) {
	ctx := context.Background()
	db := database.NewMemory("")
	s := schema.New()

	boom := errors.New("connection reset")
	db.FailOn("CreateCollection", boom)

	err := CreateCollection{Name: "Users"}.Apply(ctx, s, db, false)
	assert.ErrorIs(t, err, errdefs.ErrDatabase)
	assert.ErrorIs(t, err, boom)
	assert.True(t, s.IsEmpty())

	db.FailOn("CreateCollection", boom)
	require.NoError(t, CreateCollection{Name: "Users"}.Apply(ctx, s, db, true))
	_, ok := s.Collection("Users")
	assert.True(t, ok, "silent mode records the descriptor")
}

func TestDeleteRemovesThenDrops(t *testing.T) {
	ctx := context.Background()
	db := database.NewMemory("")
	s := schema.New()

	require.NoError(t, CreateCollection{Name: "Users"}.Apply(ctx, s, db, false))
	require.NoError(t, CreateIndex{Name: "OnEmail", Collection: "Users", Fields: []string{"email"}, Settings: database.IndexSettings{Type: database.HashIndex}}.Apply(ctx, s, db, false))

	idx, ok := s.Index("Users", "OnEmail")
	require.True(t, ok)
	assert.NotEmpty(t, idx.ID)

	// collection-less deletes resolve an unambiguous index name
	require.NoError(t, DeleteIndex{Name: "OnEmail"}.Apply(ctx, s, db, false))
	_, err := db.Index(ctx, "Users", "OnEmail")
	assert.True(t, database.IsNotFound(err))

	err = DeleteIndex{Name: "OnEmail"}.Apply(ctx, s, db, false)
	assert.ErrorIs(t, err, errdefs.ErrMissingIndex)
	assert.EqualError(t, err, "Missing Index: OnEmail")

	db.FailOn("DropCollection", errors.New("timeout"))
	err = DeleteCollection{Name: "Users"}.Apply(ctx, s, db, false)
	assert.ErrorIs(t, err, errdefs.ErrDatabase)
	_, ok = s.Collection("Users")
	assert.False(t, ok, "the descriptor is removed before the live drop")
}

func TestAQL(t *testing.T) {
	ctx := context.Background()
	db := database.NewMemory("")
	s := schema.New()

	require.NoError(t, AQL{Query: "FOR u IN Users RETURN u"}.Apply(ctx, s, db, false))
	assert.Equal(t, []database.Call{{Method: "Query", Target: "FOR u IN Users RETURN u"}}, db.Calls())
	assert.True(t, s.IsEmpty())
}

func TestInverse(t *testing.T) {
	inv, ok := Inverse(CreateIndex{Name: "OnEmail", Collection: "Users"})
	require.True(t, ok)
	assert.Equal(t, DeleteIndex{Name: "OnEmail", Collection: "Users"}, inv)

	inv, ok = Inverse(CreateEdgeCollection{Name: "Knows"})
	require.True(t, ok)
	assert.Equal(t, DeleteEdgeCollection{Name: "Knows"}, inv)

	_, ok = Inverse(AQL{Query: "RETURN 1"})
	assert.False(t, ok)
	_, ok = Inverse(DeleteIndex{Name: "OnEmail"})
	assert.False(t, ok)
}

func TestLiveConflictIsDuplicate(t *testing.T) {
	ctx := context.Background()
	db := database.NewMemory("")
	_, err := db.CreateCollection(ctx, "Users", database.CollectionOptions{})
	require.NoError(t, err)
	s := schema.New()

	err = CreateCollection{Name: "Users"}.Apply(ctx, s, db, false)
	assert.ErrorIs(t, err, errdefs.ErrDuplicateCollection)
	assert.ErrorIs(t, err, errdefs.ErrDatabase)
	assert.ErrorIs(t, err, database.ErrConflict)
	assert.True(t, s.IsEmpty())

	// silent mode adopts the existing collection
	require.NoError(t, CreateCollection{Name: "Users"}.Apply(ctx, s, db, true))
	_, ok := s.Collection("Users")
	assert.True(t, ok)
}
