package migrate

import (
	"context"

	"github.com/satishbabariya/arangomigrate/migrate/database"
	"github.com/satishbabariya/arangomigrate/migrate/errdefs"
	"github.com/satishbabariya/arangomigrate/migrate/migration"
)

// Check loads every migration under root and replays all of them, up then
// down, from an empty schema against an in-memory database. It reports the
// first authoring error and never touches a live database.
func Check(ctx context.Context, root string, opts Options) ([]*migration.Migration, error) {
	opts = opts.withDefaults()
	migrations, err := migration.LoadAll(root, opts.migrationOptions())
	if err != nil {
		return nil, err
	}

	replay := newManager(root, opts)
	replay.migrations = migrations
	replay.checkpoint = func() error { return nil }

	db := database.NewMemory("check")
	if _, err := replay.Up(ctx, db); err != nil {
		return migrations, err
	}
	if _, err := replay.Down(ctx, len(migrations), db); err != nil {
		return migrations, err
	}
	if !replay.schema.IsEmpty() {
		opts.Logger.Warn("rollback does not restore an empty schema",
			"collections", len(replay.schema.Collections()),
			"indexes", len(replay.schema.Indexes()),
			"graphs", len(replay.schema.Graphs()))
	}
	return migrations, nil
}

// Truncate drops every graph and every non-system collection but the
// tracking one, then resets the snapshot under root to the empty default.
// It returns the number of dropped collections.
func Truncate(ctx context.Context, db database.Database, root string, opts Options) (int, error) {
	opts = opts.withDefaults()
	m := newManager(root, opts)

	graphs, err := db.Graphs(ctx)
	if err != nil {
		return 0, errdefs.Database(err)
	}
	for _, g := range graphs {
		m.logger.Info("dropping graph", "name", g.Name)
		if err := db.DropGraph(ctx, g.Name); err != nil {
			return 0, errdefs.Database(err)
		}
	}

	collections, err := db.Collections(ctx)
	if err != nil {
		return 0, errdefs.Database(err)
	}
	dropped := 0
	for _, info := range collections {
		if info.IsSystem || (m.tracker != nil && info.Name == m.tracker.Collection()) {
			continue
		}
		m.logger.Info("dropping collection", "name", info.Name)
		if err := db.DropCollection(ctx, info.Name); err != nil {
			return dropped, errdefs.Database(err)
		}
		dropped++
	}
	return dropped, m.Reset(ctx)
}
