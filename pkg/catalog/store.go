package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists a catalog in a SQLite entries table. Attributes are kept as
// a JSON document per row; row order is preserved through the position
// column.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the SQLite database at path and ensures the
// entries table exists.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS entries (
		id          TEXT PRIMARY KEY,
		position    INTEGER NOT NULL,
		name        TEXT NOT NULL,
		category    TEXT NOT NULL DEFAULT '',
		rating      REAL NOT NULL DEFAULT 0,
		attributes  TEXT NOT NULL DEFAULT '{}',
		updated_at  INTEGER NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create entries table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Replace swaps the stored catalog for entries in one transaction. The
// entries are validated first; on any error the previous catalog stays.
func (s *Store) Replace(ctx context.Context, entries []Entry) error {
	if err := Validate(entries); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO entries
		(id, position, name, category, rating, attributes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for i, e := range entries {
		attrs, err := json.Marshal(jsonSafe(e.Attributes))
		if err != nil {
			return fmt.Errorf("encode attributes for %s: %w", e.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, e.ID, i, e.Name, e.Category, e.Rating, string(attrs), now); err != nil {
			return fmt.Errorf("insert %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// All returns every stored entry in insertion order.
func (s *Store) All(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, category, rating, attributes
		FROM entries ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e     Entry
			attrs string
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Category, &e.Rating, &attrs); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if err := json.Unmarshal([]byte(attrs), &e.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes for %s: %w", e.ID, err)
		}
		if len(e.Attributes) == 0 {
			e.Attributes = nil
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// jsonSafe converts map[any]any nodes, which encoding/json rejects, into
// map[string]any.
func jsonSafe(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = jsonSafe(val)
		}
		return out
	case map[any]any:
		m, _ := asMap(t)
		return jsonSafe(m)
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = jsonSafe(val)
		}
		return out
	default:
		return v
	}
}
