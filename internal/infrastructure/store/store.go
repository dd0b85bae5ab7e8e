// Package store opens the persistence backend named by the configured driver.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/velora-api/config"
	"github.com/ErlanBelekov/velora-api/internal/infrastructure/memory"
	"github.com/ErlanBelekov/velora-api/internal/infrastructure/mongodb"
	"github.com/ErlanBelekov/velora-api/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/velora-api/internal/repository"
)

// Store bundles the repositories of one backend with its lifecycle hooks.
type Store struct {
	Driver  string
	Users   repository.UserRepository
	Reviews repository.ReviewRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Open connects to the backend and prepares its schema or indexes.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	driver, err := cfg.StoreDriver()
	if err != nil {
		return nil, err
	}
	logger = logger.With("component", "store", "driver", driver)

	switch driver {
	case config.DriverMongo:
		s, err := mongodb.Connect(ctx, cfg.DatabaseURL, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = s.Close(context.WithoutCancel(ctx))
			return nil, err
		}
		logger.Info("connected", "database", cfg.MongoDatabase)
		return &Store{
			Driver:  driver,
			Users:   s.Users(),
			Reviews: s.Reviews(),
			ping:    s.Ping,
			close:   s.Close,
		}, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("connected")
		return &Store{
			Driver:  driver,
			Users:   postgres.NewUserRepository(pool),
			Reviews: postgres.NewReviewRepository(pool),
			ping:    pool.Ping,
			close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return NewMemory(), nil
	}

	return nil, fmt.Errorf("unsupported store driver %q", driver)
}

// NewMemory returns a process-local store.
func NewMemory() *Store {
	users := memory.NewUserRepository()
	return &Store{
		Driver:  config.DriverMemory,
		Users:   users,
		Reviews: memory.NewReviewRepository(),
		ping:    users.Ping,
		close:   func(context.Context) error { return nil },
	}
}

func (s *Store) Ping(ctx context.Context) error { return s.ping(ctx) }

func (s *Store) Close(ctx context.Context) error { return s.close(ctx) }
