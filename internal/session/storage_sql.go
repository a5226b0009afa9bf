package session

import (
	"context"
	"fmt"
	"time"

	"parkingconsole/internal/database"
)

// SQLStorage persists session keys in the console_session_values table.
// Works on every dialect supported by the database package.
type SQLStorage struct {
	db  *database.DB
	now func() time.Time
}

// NewSQLStorage creates a storage over an initialised, migrated database
func NewSQLStorage(db *database.DB) *SQLStorage {
	return &SQLStorage{db: db, now: time.Now}
}

func (s *SQLStorage) Values(ctx context.Context, sid string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT item_key, item_value FROM console_session_values WHERE session_id = ?", sid)
	if err != nil {
		return nil, fmt.Errorf("failed to query session values: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan session value: %w", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session values: %w", err)
	}
	return values, nil
}

func (s *SQLStorage) SetValues(ctx context.Context, sid string, values map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now().Unix()
	upsert := tx.GetDialect().UpsertSessionValueQuery()
	for k, v := range values {
		if _, err := tx.ExecContext(ctx, upsert, sid, k, v, now); err != nil {
			return fmt.Errorf("failed to store session key %s: %w", k, err)
		}
	}
	if err := touch(ctx, tx, sid, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session values: %w", err)
	}
	return nil
}

func (s *SQLStorage) DeleteValues(ctx context.Context, sid string, keys ...string) error {
	if len(keys) == 0 {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM console_session_values WHERE session_id = ?", sid); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, k := range keys {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM console_session_values WHERE session_id = ? AND item_key = ?", sid, k); err != nil {
			return fmt.Errorf("failed to delete session key %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session delete: %w", err)
	}
	return nil
}

func (s *SQLStorage) Touch(ctx context.Context, sid string) error {
	return touch(ctx, s.db, sid, s.now().Unix())
}

// touch keeps every row of a session on the same activity time so Purge
// never splits a session.
func touch(ctx context.Context, db database.DBTX, sid string, now int64) error {
	if _, err := db.ExecContext(ctx,
		"UPDATE console_session_values SET updated_at = ? WHERE session_id = ?", now, sid); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (s *SQLStorage) Purge(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM console_session_values WHERE session_id IN (
			SELECT session_id FROM (
				SELECT session_id FROM console_session_values
				GROUP BY session_id
				HAVING MAX(updated_at) < ?
			) AS stale
		)`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	// Rows, not sessions; close enough for the maintenance log
	n, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (s *SQLStorage) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, MAX(updated_at),
			SUM(CASE WHEN item_key = ? AND item_value <> '' THEN 1 ELSE 0 END)
		FROM console_session_values
		GROUP BY session_id
		ORDER BY MAX(updated_at) DESC`, KeyToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			sid       string
			updatedAt int64
			tokens    int64
		)
		if err := rows.Scan(&sid, &updatedAt, &tokens); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		entries = append(entries, Entry{
			ID:            sid,
			UpdatedAt:     time.Unix(updatedAt, 0),
			Authenticated: tokens > 0,
		})
	}
	return entries, rows.Err()
}
