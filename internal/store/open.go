package store

import (
	"context"
	"fmt"

	"commitsonic/internal/db"
	"commitsonic/internal/env"
	"commitsonic/internal/logger"

	"go.uber.org/zap"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Open connects the backend named by driver and prepares its schema.
func Open(ctx context.Context, driver string) (Store, error) {
	logger.Info("opening store", zap.String("driver", driver))

	switch driver {
	case DriverMemory:
		return NewMemory(), nil

	case DriverMongo, "":
		if err := db.InitDB(env.MONGO_URI, env.MONGO_DATABASE); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseConnection, err)
		}
		m := NewMongo(db.Commits, db.Repositories, db.Listeners)
		if err := m.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return m, nil

	case DriverPostgres:
		p, err := NewPostgres()
		if err != nil {
			return nil, err
		}
		if err := p.Migrate(ctx); err != nil {
			p.Close(ctx)
			return nil, err
		}
		return p, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
