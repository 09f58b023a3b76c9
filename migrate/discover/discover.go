// Package discover reverse-engineers a migration from the live database
// objects the schema does not track yet.
package discover

import (
	"context"
	"log/slog"

	"github.com/satishbabariya/arangomigrate/internal/logging"
	"github.com/satishbabariya/arangomigrate/migrate/database"
	"github.com/satishbabariya/arangomigrate/migrate/errdefs"
	"github.com/satishbabariya/arangomigrate/migrate/migration"
	"github.com/satishbabariya/arangomigrate/migrate/operation"
	"github.com/satishbabariya/arangomigrate/migrate/schema"
)

// MigrationName is the name of every discovered migration.
const MigrationName = "discover_migration"

// Options configures a discovery run.
type Options struct {
	migration.Options
	// TrackingCollection is never discovered.
	TrackingCollection string
}

// Operations compares the live inventory with s and returns the up list
// recreating what s misses and the down list undoing it. Neither the
// database nor s is modified.
func Operations(ctx context.Context, db database.Database, s *schema.DatabaseSchema, trackingCollection string) (up, down operation.List, err error) {
	logger := logging.FromContext(ctx)

	collections, err := db.Collections(ctx)
	if err != nil {
		return nil, nil, errdefs.Database(err)
	}

	var untracked []database.CollectionInfo
	for _, info := range collections {
		if info.IsSystem || database.IsSystemName(info.Name) || info.Name == trackingCollection {
			continue
		}
		if _, ok := s.Collection(info.Name); ok {
			continue
		}
		logger.Debug("untracked collection", "name", info.Name, "type", info.Type)
		untracked = append(untracked, info)
	}

	up = operation.List{}
	for _, info := range untracked {
		if info.Type == database.EdgeCollection {
			up = append(up, operation.CreateEdgeCollection{Name: info.Name})
		} else {
			up = append(up, operation.CreateCollection{Name: info.Name})
		}
	}

	for _, info := range untracked {
		indexes, err := db.Indexes(ctx, info.Name)
		if err != nil {
			return nil, nil, errdefs.Database(err)
		}
		for _, idx := range indexes {
			if idx.Settings.Type.IsAutomatic() {
				continue
			}
			up = append(up, operation.CreateIndex{
				Name:       idx.Name,
				Collection: info.Name,
				Fields:     idx.Fields,
				Settings:   idx.Settings,
			})
		}
	}

	graphs, err := db.Graphs(ctx)
	if err != nil {
		return nil, nil, errdefs.Database(err)
	}
	for _, g := range graphs {
		if _, ok := s.Graph(g.Name); ok {
			continue
		}
		logger.Debug("untracked graph", "name", g.Name)
		up = append(up, operation.CreateGraph{
			Name:              g.Name,
			EdgeDefinitions:   g.EdgeDefinitions,
			OrphanCollections: g.OrphanCollections,
			IsSmart:           g.IsSmart,
			IsDisjoint:        g.IsDisjoint,
			Options:           g.Options,
		})
	}

	down = make(operation.List, 0, len(up))
	for i := len(up) - 1; i >= 0; i-- {
		if inv, ok := operation.Inverse(up[i]); ok {
			down = append(down, inv)
		}
	}
	return up, down, nil
}

// Discover writes a new migration capturing the untracked live objects and
// returns it without applying it. An empty migration is still written.
func Discover(ctx context.Context, db database.Database, s *schema.DatabaseSchema, root string, opts Options) (*migration.Migration, error) {
	logger := logging.OrDiscard(opts.Logger)
	ctx = logging.WithLogger(ctx, logger)

	up, down, err := Operations(ctx, db, s, opts.TrackingCollection)
	if err != nil {
		return nil, err
	}
	m, err := migration.New(MigrationName, root, migration.Data{Up: up, Down: down}, opts.Options)
	if err != nil {
		return nil, err
	}
	if err := m.Save(); err != nil {
		return nil, err
	}
	logger.Info("discovered migration", slog.String("path", m.Path), slog.Int("operations", len(up)))
	return m, nil
}
