// Package bootstrap opens the storage backend selected by configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stemsi/candidate-assessment/internal/config"
	"github.com/stemsi/candidate-assessment/internal/database"
	"github.com/stemsi/candidate-assessment/internal/repository"
	"github.com/stemsi/candidate-assessment/internal/repository/sqlite"
)

// OpenStore connects to cfg.DBDriver and returns the store with a function
// releasing its connections.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (repository.Store, func(), error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return repository.Store{}, nil, err
		}
		return repository.NewPostgresStore(pool), pool.Close, nil

	case config.DriverSQLite:
		db, err := database.NewSQLite(ctx, cfg, log)
		if err != nil {
			return repository.Store{}, nil, err
		}
		return sqlite.NewStore(db), func() { db.Close() }, nil
	}
	return repository.Store{}, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}
