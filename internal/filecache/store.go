package filecache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists cache records to SQLite in a fixed key-value layout:
// one row per source path.
type Store struct {
	db   *sql.DB
	path string
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS processed_files (
    path        TEXT PRIMARY KEY,
    mtime_ns    INTEGER NOT NULL,
    size        INTEGER NOT NULL,
    destination TEXT NOT NULL,
    sport_id    TEXT,
    season_key  TEXT,
    episode_key TEXT,
    updated_at  TEXT NOT NULL
);`

// OpenStore initializes or connects to the cache database at path.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(storeSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load reads every persisted record. Whether an unreadable database
// should start the cache empty is the caller's decision; Load itself
// reports the failure.
func (s *Store) Load(ctx context.Context) (map[string]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, mtime_ns, size, destination, sport_id, season_key, episode_key FROM processed_files`)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	records := make(map[string]Record)
	for rows.Next() {
		var path string
		var rec Record
		var sportID, seasonKey, episodeKey sql.NullString
		if err := rows.Scan(&path, &rec.MTimeNS, &rec.Size, &rec.Destination, &sportID, &seasonKey, &episodeKey); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.SportID = sportID.String
		rec.SeasonKey = seasonKey.String
		rec.EpisodeKey = episodeKey.String
		records[path] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Save replaces the persisted record set with the provided one inside a
// single transaction.
func (s *Store) Save(ctx context.Context, records map[string]Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM processed_files`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO processed_files (path, mtime_ns, size, destination, sport_id, season_key, episode_key, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	for path, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			path, rec.MTimeNS, rec.Size, rec.Destination,
			nullableString(rec.SportID), nullableString(rec.SeasonKey), nullableString(rec.EpisodeKey),
			timestamp,
		); err != nil {
			return fmt.Errorf("insert record %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Flush persists the cache through the store and clears the dirty flag
// on success. A clean cache is a no-op.
func (c *Cache) Flush(ctx context.Context, store *Store) error {
	if !c.dirty {
		return nil
	}
	if err := store.Save(ctx, c.records); err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}
	c.dirty = false
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
