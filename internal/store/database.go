package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"routine-advisor/internal/db"
)

// DatabaseStore keeps key-value pairs in the kv_store table.
type DatabaseStore struct {
	db *db.DB
}

func NewDatabaseStore(database *db.DB) *DatabaseStore {
	return &DatabaseStore{db: database}
}

func (ds *DatabaseStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := ds.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

func (ds *DatabaseStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key)
		DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`
	if _, err := ds.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (ds *DatabaseStore) Delete(ctx context.Context, key string) error {
	if _, err := ds.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (ds *DatabaseStore) Close() error {
	return ds.db.Close()
}
