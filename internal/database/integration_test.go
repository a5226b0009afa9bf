package database

import (
	"context"
	"path/filepath"
	"testing"
)

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	// Skip if not in integration test mode
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := Initialize(filepath.Join(t.TempDir(), "test_integration.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Running twice must be a no-op
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}

	ctx := context.Background()
	var name string
	query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
	if err := db.QueryRowContext(ctx, query, "console_session_values").Scan(&name); err != nil {
		t.Fatalf("Table console_session_values not found: %v", err)
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := Initialize(filepath.Join(t.TempDir(), "test_transactions.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	upsert := db.Dialect.UpsertSessionValueQuery()

	// Test successful transaction
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	if _, err := tx.ExecContext(ctx, upsert, "sid-1", "token", "abc", 1); err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM console_session_values WHERE session_id = ?", "sid-1").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query after commit: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 value, got %d", count)
	}

	// Upsert replaces instead of duplicating
	if _, err := db.ExecContext(ctx, upsert, "sid-1", "token", "def", 2); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	var value string
	err = db.QueryRowContext(ctx, "SELECT item_value FROM console_session_values WHERE session_id = ? AND item_key = ?", "sid-1", "token").Scan(&value)
	if err != nil {
		t.Fatalf("Failed to read upserted value: %v", err)
	}
	if value != "def" {
		t.Errorf("Expected upserted value 'def', got %q", value)
	}

	// Test rollback
	tx2, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin second transaction: %v", err)
	}
	if _, err := tx2.ExecContext(ctx, upsert, "sid-2", "token", "xyz", 1); err != nil {
		tx2.Rollback()
		t.Fatalf("Failed to insert in second transaction: %v", err)
	}
	if err := tx2.Rollback(); err != nil {
		t.Fatalf("Failed to rollback transaction: %v", err)
	}

	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM console_session_values WHERE session_id = ?", "sid-2").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query after rollback: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 values after rollback, got %d", count)
	}
}
