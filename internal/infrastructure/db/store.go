package db

import (
	"context"
	"fmt"
	"time"

	"github.com/lmt/todolist/internal/config"
	"github.com/lmt/todolist/internal/core/ports"
	"github.com/lmt/todolist/internal/infrastructure/logger"
)

const defaultConnectTimeout = 10 * time.Second

func connectTimeout(cfg config.DatabaseConfig) time.Duration {
	if cfg.ConnectTimeout > 0 {
		return cfg.ConnectTimeout
	}
	return defaultConnectTimeout
}

// Store is an opened task repository plus whatever connection backs it.
type Store struct {
	Driver string
	Tasks  ports.TaskRepository
	close  func() error
}

func (s *Store) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// Open connects to the backend named by cfg.Driver, runs its migrations and
// returns the task repository.
func Open(cfg config.DatabaseConfig, log *logger.Logger) (*Store, error) {
	switch cfg.Driver {
	case "postgres", "":
		database, err := NewPostgresConnection(cfg)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(database); err != nil {
			Close(database)
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return &Store{
			Driver: "postgres",
			Tasks:  NewTaskRepository(database, log),
			close:  func() error { return Close(database) },
		}, nil

	case "mongo":
		client, err := NewMongoConnection(cfg)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout(cfg))
		defer cancel()
		repo, err := NewMongoTaskRepository(ctx, client, cfg.Name, log)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &Store{
			Driver: "mongo",
			Tasks:  repo,
			close:  func() error { return client.Disconnect(context.Background()) },
		}, nil

	case "sqlite":
		database, err := NewSQLiteConnection(cfg.Path)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver: "sqlite",
			Tasks:  NewSQLiteTaskRepository(database, log),
			close:  database.Close,
		}, nil

	case "memory":
		return &Store{Driver: "memory", Tasks: NewMemoryTaskRepository(log)}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
