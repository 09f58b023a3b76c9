package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/arangomigrate/migrate/database"
	"github.com/satishbabariya/arangomigrate/migrate/schema"
)

func TestInitCreatesCollectionAndDocument(t *testing.T) {
	ctx := context.Background()
	db := database.NewMemory("")
	tracker := NewTracker(db, "", nil)
	assert.Equal(t, DefaultCollection, tracker.Collection())

	s, err := tracker.Init(ctx)
	require.NoError(t, err)
	assert.True(t, s.IsEmpty())

	info, err := db.Collection(ctx, DefaultCollection)
	require.NoError(t, err)
	assert.True(t, info.WaitForSync)

	// second init reads the existing document
	db.ResetCalls()
	_, err = tracker.Init(ctx)
	require.NoError(t, err)
	assert.Empty(t, db.Calls())
}

func TestSaveAndLoadSchema(t *testing.T) {
	ctx := context.Background()
	db := database.NewMemory("")
	tracker := NewTracker(db, "Tracking", nil)
	_, err := tracker.Init(ctx)
	require.NoError(t, err)

	s := schema.New()
	require.NoError(t, s.AddCollection(schema.NewCollection("Users", false)))
	s.SetVersion(1700000000000)
	require.NoError(t, tracker.Save(ctx, s))

	loaded, err := tracker.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.CurrentVersion(), loaded.CurrentVersion())
	assert.Equal(t, s.Collections(), loaded.Collections())
}

func TestRecords(t *testing.T) {
	ctx := context.Background()
	db := database.NewMemory("")
	tracker := NewTracker(db, "", nil)
	_, err := tracker.Init(ctx)
	require.NoError(t, err)

	records, err := tracker.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, tracker.Record(ctx, MigrationRecord{Version: 20, Name: "b", AppliedAt: now}))
	require.NoError(t, tracker.Record(ctx, MigrationRecord{Version: 10, Name: "a", AppliedAt: now, Checksum: CalculateChecksum([]byte("up: []"))}))
	require.NoError(t, tracker.MarkRolledBack(ctx, 20))

	records, err = tracker.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, schema.Version(10), records[0].Version)
	assert.True(t, records[1].RolledBack)
	assert.True(t, now.Equal(records[0].AppliedAt))
	assert.Len(t, records[0].Checksum, 64)

	applied, err := tracker.GetApplied(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "a", applied[0].Name)

	// re-applying replaces the record
	require.NoError(t, tracker.Record(ctx, MigrationRecord{Version: 20, Name: "b", AppliedAt: now}))
	applied, err = tracker.GetApplied(ctx)
	require.NoError(t, err)
	assert.Len(t, applied, 2)
}
