package database

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.RunMigrations(context.Background()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	var name string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", "kv_store").Scan(&name)
	if err != nil {
		t.Fatalf("Table kv_store not found: %v", err)
	}

	// Second run applies nothing
	applied, err := db.RunMigrations(ctx)
	if err != nil {
		t.Fatalf("Failed to re-run migrations: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("Expected no migrations on second run, got %v", applied)
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()
	insert := db.Dialect.InsertKVIfAbsentQuery()

	err := db.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecContext(ctx, insert, "committed", `{}`, 1)
		return err
	})
	if err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	errBoom := errors.New("boom")
	err = db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, insert, "rolled-back", `{}`, 1); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("Expected rollback error, got %v", err)
	}

	tests := []struct {
		key  string
		want int
	}{
		{key: "committed", want: 1},
		{key: "rolled-back", want: 0},
	}
	for _, tt := range tests {
		var count int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM kv_store WHERE store_key = ?", tt.key).Scan(&count); err != nil {
			t.Fatalf("Failed to count %s: %v", tt.key, err)
		}
		if count != tt.want {
			t.Errorf("key %s: expected %d rows, got %d", tt.key, tt.want, count)
		}
	}
}

// TestConcurrentAccess tests concurrent database access
func TestConcurrentAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, db.Dialect.UpsertKVQuery(), "shared", `"value"`, 1); err != nil {
		t.Fatalf("Failed to create test row: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var value string
			err := db.QueryRowContext(ctx, "SELECT store_value FROM kv_store WHERE store_key = ?", "shared").Scan(&value)
			if err != nil {
				t.Errorf("Concurrent read failed: %v", err)
				return
			}
			if value != `"value"` {
				t.Errorf("Expected value %q, got %q", `"value"`, value)
			}
		}()
	}
	wg.Wait()
}
