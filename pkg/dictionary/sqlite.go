package dictionary

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/bastiangx/freqdict/pkg/clean"
)

// count has no declared type so malformed values written by other tools survive a load
const schema = `CREATE TABLE IF NOT EXISTS dictionary (word TEXT, "count")`

// SQLiteStore keeps a dictionary in a single sqlite table.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path and ensures the table exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	for _, stmt := range []string{"PRAGMA busy_timeout = 5000", schema} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadRows returns every row in insertion order with counts as raw text.
func (s *SQLiteStore) LoadRows(ctx context.Context) ([]clean.RawRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word, "count" FROM dictionary ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query dictionary: %w", err)
	}
	defer rows.Close()

	var out []clean.RawRow
	for rows.Next() {
		var word sql.NullString
		var count any
		if err := rows.Scan(&word, &count); err != nil {
			return nil, fmt.Errorf("scan dictionary row: %w", err)
		}
		out = append(out, clean.RawRow{Word: word.String, Count: formatAny(count)})
	}
	return out, rows.Err()
}

// ReplaceRows swaps the table contents for rows in one transaction.
func (s *SQLiteStore) ReplaceRows(ctx context.Context, rows []clean.Row) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM dictionary`); err != nil {
		return fmt.Errorf("clear dictionary: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO dictionary (word, "count") VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		var count any = r.Count
		if r.Count == float64(int64(r.Count)) {
			count = int64(r.Count)
		}
		if _, err = stmt.ExecContext(ctx, r.Word, count); err != nil {
			return fmt.Errorf("insert %q: %w", r.Word, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

