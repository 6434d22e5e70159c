package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/storage"
	"github.com/jackc/pgx/v5"
)

// BlobStore keeps the dashboard's key/value blobs in a single table
type BlobStore struct {
	db *database.DB
}

func NewBlobStore(db *database.DB) *BlobStore {
	return &BlobStore{db: db}
}

var _ storage.BlobStore = (*BlobStore)(nil)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS kv_blobs (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_kv_blobs_updated_at ON kv_blobs (updated_at)`,
}

// EnsureSchema creates the blob table when it does not exist yet
func (s *BlobStore) EnsureSchema(ctx context.Context) error {
	return WithTransaction(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply blob schema: %w", err)
			}
		}
		return nil
	})
}

// Get implements storage.BlobStore.
func (s *BlobStore) Get(ctx context.Context, key string) (string, bool, error) {
	q := GetQuerier(ctx, s.db)

	var value string
	err := q.QueryRow(ctx, `SELECT value FROM kv_blobs WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get blob %s: %w", key, err)
	}

	return value, true, nil
}

// Set implements storage.BlobStore.
func (s *BlobStore) Set(ctx context.Context, key string, value string) error {
	q := GetQuerier(ctx, s.db)

	query := `
		INSERT INTO kv_blobs (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	if _, err := q.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set blob %s: %w", key, err)
	}

	return nil
}

// Modify implements storage.BlobStore. The read and the write share one
// transaction holding an advisory lock on the key, so every process writing
// through Modify sees the previous writer's value, including for keys that
// have no row yet.
func (s *BlobStore) Modify(ctx context.Context, key string, fn storage.ModifyFunc) error {
	return WithTransaction(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return fmt.Errorf("failed to lock blob %s: %w", key, err)
		}

		var current string
		found := true
		err := tx.QueryRow(ctx, `SELECT value FROM kv_blobs WHERE key = $1 FOR UPDATE`, key).Scan(&current)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("failed to get blob %s: %w", key, err)
			}
			found = false
		}

		next, err := fn(current, found)
		if err != nil {
			return err
		}
		return s.Set(ctx, key, next)
	})
}
