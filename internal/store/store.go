// Package store provides the durable key-value storage the client persists
// its preferences to.
package store

import (
	"context"
	"fmt"

	"routine-advisor/internal/config"
	"routine-advisor/internal/db"
)

// Storage is a string key-value store. Get reports ok=false for a missing key.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open returns the backend selected by cfg.Storage.
func Open(ctx context.Context, cfg config.ClientConfig) (Storage, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return NewMemoryStore(), nil
	case config.StorageFile, "":
		return NewFileStore(cfg.StoragePath), nil
	case config.StorageRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required for redis storage")
		}
		return NewRedisStore(ctx, cfg.RedisURL)
	case config.StoragePostgres:
		database, err := db.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := database.RunMigrations(db.Migrations); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return NewDatabaseStore(database), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
