// Package sqlite is the embedded SnapshotStore backend (modernc.org/sqlite,
// no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/proker/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store keeps snapshots in a SQLite database.
type Store struct {
	db *sql.DB
}

var _ store.SnapshotStore = (*Store)(nil)

// Open opens (or creates) the database file at dbPath and migrates it.
func Open(dbPath string) (*Store, error) {
	return OpenDSN(fmt.Sprintf("file:%s?cache=shared&mode=rwc&_journal_mode=WAL&_foreign_keys=on", dbPath))
}

// OpenDSN opens a database from a full modernc DSN, for example
// "file:test?mode=memory&cache=shared".
func OpenDSN(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping snapshot store: %w", err)
	}

	if err := runMigrations(db); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("failed to run migrations: %w (also failed to close db: %v)", err, cerr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty BOOLEAN NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	// version -> up file, e.g. "000001_create_snapshots.up.sql"
	ups := make(map[int]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(prefix, "%d", &version); err != nil {
			continue
		}
		ups[version] = name
	}

	versions := make([]int, 0, len(ups))
	for v := range ups {
		versions = append(versions, v)
	}
	sort.Ints(versions)

	for _, version := range versions {
		var applied int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&applied)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if applied > 0 {
			continue
		}

		data, err := fs.ReadFile(migrationsFS, "migrations/"+ups[version])
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", ups[version], err)
		}
		if _, err := db.Exec(string(data)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", ups[version], err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
	}

	return nil
}

func (s *Store) Save(ctx context.Context, snap store.Snapshot) (store.Snapshot, error) {
	snap = store.Prepare(snap)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, sheet, gid, body, row_count, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, snap.ID.String(), snap.Sheet, snap.GID, snap.Body, snap.RowCount, snap.FetchedAt.UnixNano())
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("snapshot store: save %s: %w", snap.Sheet, err)
	}
	return snap, nil
}

func (s *Store) Latest(ctx context.Context, sheet string) (store.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sheet, gid, body, row_count, fetched_at
		FROM snapshots WHERE sheet = ?
		ORDER BY fetched_at DESC LIMIT 1
	`, sheet)

	var (
		snap      store.Snapshot
		id        string
		fetchedAt int64
	)
	err := row.Scan(&id, &snap.Sheet, &snap.GID, &snap.Body, &snap.RowCount, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Snapshot{}, store.ErrNotFound
	}
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("snapshot store: latest %s: %w", sheet, err)
	}

	if snap.ID, err = uuid.Parse(id); err != nil {
		return store.Snapshot{}, fmt.Errorf("snapshot store: bad id %q: %w", id, err)
	}
	snap.FetchedAt = time.Unix(0, fetchedAt).UTC()
	return snap, nil
}

func (s *Store) History(ctx context.Context, sheet string, limit int) ([]store.Snapshot, error) {
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sheet, gid, row_count, fetched_at
		FROM snapshots WHERE sheet = ?
		ORDER BY fetched_at DESC LIMIT ?
	`, sheet, limit)
	if err != nil {
		return nil, fmt.Errorf("snapshot store: history %s: %w", sheet, err)
	}
	defer rows.Close()

	var out []store.Snapshot
	for rows.Next() {
		var (
			snap      store.Snapshot
			id        string
			fetchedAt int64
		)
		if err := rows.Scan(&id, &snap.Sheet, &snap.GID, &snap.RowCount, &fetchedAt); err != nil {
			return nil, fmt.Errorf("snapshot store: scan: %w", err)
		}
		if snap.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("snapshot store: bad id %q: %w", id, err)
		}
		snap.FetchedAt = time.Unix(0, fetchedAt).UTC()
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot store: iterate history: %w", err)
	}
	return out, nil
}

func (s *Store) Prune(ctx context.Context, sheet string, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM snapshots
		WHERE sheet = ? AND id NOT IN (
			SELECT id FROM snapshots WHERE sheet = ?
			ORDER BY fetched_at DESC LIMIT ?
		)
	`, sheet, sheet, keep)
	if err != nil {
		return 0, fmt.Errorf("snapshot store: prune %s: %w", sheet, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("snapshot store: rows affected: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
