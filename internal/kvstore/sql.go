package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"wision/internal/database"
)

// SQLStore keeps entries in the kv_store table of a migrated database
type SQLStore struct {
	db  *database.DB
	now func() time.Time
}

// NewSQLStore creates a store over db. Migrations must have run.
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func (s *SQLStore) Name() string {
	return s.db.Dialect.DriverName()
}

func (s *SQLStore) Get(ctx context.Context, key string) (Entry, error) {
	return getEntry(ctx, s.db, key)
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) (int64, error) {
	query := s.db.Dialect.UpsertKVQuery()
	updatedAt := s.now().UnixMilli()

	if s.db.Dialect.SupportsReturning() {
		var version int64
		err := s.db.QueryRowContext(ctx, query+" RETURNING version", key, string(value), updatedAt).Scan(&version)
		if err != nil {
			return 0, fmt.Errorf("failed to set %s: %w", key, err)
		}
		return version, nil
	}

	var version int64
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.ExecContext(ctx, query, key, string(value), updatedAt); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, "SELECT version FROM kv_store WHERE store_key = ?", key).Scan(&version)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to set %s: %w", key, err)
	}
	return version, nil
}

func (s *SQLStore) SetIfAbsent(ctx context.Context, key string, value []byte) (Entry, bool, error) {
	result, err := s.db.ExecContext(ctx, s.db.Dialect.InsertKVIfAbsentQuery(), key, string(value), s.now().UnixMilli())
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to insert %s: %w", key, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to insert %s: %w", key, err)
	}

	entry, err := getEntry(ctx, s.db, key)
	if err != nil {
		return Entry{}, false, err
	}
	return entry, affected == 1, nil
}

func (s *SQLStore) CompareAndSwap(ctx context.Context, key string, value []byte, version int64) (int64, error) {
	query := `UPDATE kv_store SET store_value = ?, version = version + 1, updated_at = ?
		WHERE store_key = ? AND version = ?`
	result, err := s.db.ExecContext(ctx, query, string(value), s.now().UnixMilli(), key, version)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", key, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", key, err)
	}
	if affected == 1 {
		return version + 1, nil
	}

	if _, err := getEntry(ctx, s.db, key); err != nil {
		return 0, err
	}
	return 0, ErrVersionMismatch
}

func (s *SQLStore) GetByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	// LIKE treats _ as a wildcard, so the pattern over-matches and the
	// results are filtered exactly below.
	query := `SELECT store_key, store_value, version, updated_at FROM kv_store
		WHERE store_key LIKE ? ORDER BY store_key`
	rows, err := s.db.QueryContext(ctx, query, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to scan prefix %s: %w", prefix, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(entry.Key, prefix) {
			out = append(out, entry)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan prefix %s: %w", prefix, err)
	}
	return out, nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_store WHERE store_key = ?", key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func getEntry(ctx context.Context, q database.DBTX, key string) (Entry, error) {
	query := "SELECT store_key, store_value, version, updated_at FROM kv_store WHERE store_key = ?"
	entry, err := scanEntry(q.QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return entry, err
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		e         Entry
		value     string
		updatedAt int64
	)
	if err := row.Scan(&e.Key, &value, &e.Version, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("failed to read entry: %w", err)
	}
	e.Value = []byte(value)
	e.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return e, nil
}
