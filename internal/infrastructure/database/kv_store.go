package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	pgtx "tovakustatus-backend/pkg/database"
)

const createKVTable = `
CREATE TABLE IF NOT EXISTS kv_entries (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// KVStore implements kv.Store on a single key/value table.
type KVStore struct {
	db *PostgresDB
}

func NewKVStore(db *PostgresDB) *KVStore {
	return &KVStore{db: db}
}

// Migrate creates the backing table if needed.
func (s *KVStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Pool.Exec(ctx, createKVTable); err != nil {
		return fmt.Errorf("create kv_entries: %w", err)
	}
	return nil
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.Pool.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

const upsertKV = `
        INSERT INTO kv_entries (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
    `

func (s *KVStore) Set(ctx context.Context, key string, value string) error {
	if _, err := s.db.Pool.Exec(ctx, upsertKV, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// SetMany upserts every entry in one transaction.
func (s *KVStore) SetMany(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	return pgtx.WithTransaction(ctx, s.db.Pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for key, value := range entries {
			batch.Queue(upsertKV, key, value)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("set many: %w", err)
		}
		return nil
	})
}

func (s *KVStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := s.db.Pool.Exec(ctx, `DELETE FROM kv_entries WHERE key = ANY($1)`, keys); err != nil {
		return fmt.Errorf("delete keys: %w", err)
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

func (s *KVStore) Close() error {
	s.db.Close()
	return nil
}
