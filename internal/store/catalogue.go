// Package store is the SQLite artifact catalogue used as the remote side of a
// sync when no server is configured, and as the backing store of the server.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/klauern/agentsync/internal/logging"
	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/store/blob"
)

var (
	// ErrNotFound indicates the artifact does not exist for the owner.
	ErrNotFound = errors.New("artifact not found")
	// ErrCompanionNotFound indicates the companion path is not stored.
	ErrCompanionNotFound = errors.New("companion file not found")
)

// SchemaVersion is the current catalogue schema version.
const SchemaVersion = 1

const schema = `
	PRAGMA foreign_keys = ON;

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS artifacts (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (owner_id, name, type)
	);

	CREATE TABLE IF NOT EXISTS companions (
		artifact_id TEXT NOT NULL REFERENCES artifacts(id) ON DELETE CASCADE,
		path TEXT NOT NULL,
		mime_type TEXT NOT NULL DEFAULT '',
		size INTEGER NOT NULL,
		hash TEXT NOT NULL,
		PRIMARY KEY (artifact_id, path)
	);

	CREATE INDEX IF NOT EXISTS idx_artifacts_owner ON artifacts(owner_id);
	CREATE INDEX IF NOT EXISTS idx_companions_hash ON companions(hash);
`

// Catalogue stores artifact rows in SQLite and companion bytes in a blob store.
// It satisfies both sync.Repository and sync.BlobStore.
type Catalogue struct {
	db    *sql.DB
	blobs *blob.Store
	now   func() time.Time
}

// Open opens or creates the catalogue database at path.
func Open(path string, blobs *blob.Store) (*Catalogue, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newCatalogue(db, blobs, "PRAGMA journal_mode = WAL;")
}

// OpenInMemory opens an in-memory catalogue (for testing).
func OpenInMemory(blobs *blob.Store) (*Catalogue, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	return newCatalogue(db, blobs, "")
}

func newCatalogue(db *sql.DB, blobs *blob.Store, pragmas string) (*Catalogue, error) {
	// One connection keeps :memory: databases and per-connection pragmas stable.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(pragmas + schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(
		`INSERT INTO meta (key, value) VALUES ('schema_version', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		fmt.Sprint(SchemaVersion),
	); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to record schema version: %w", err)
	}

	return &Catalogue{db: db, blobs: blobs, now: time.Now}, nil
}

// Close closes the database.
func (c *Catalogue) Close() error {
	return c.db.Close()
}

// List returns the owner's artifacts ordered by type then name.
func (c *Catalogue) List(ctx context.Context, ownerID string, types []model.ArtifactType) ([]model.RemoteRecord, error) {
	query := `SELECT id, owner_id, name, type, content, created_at, updated_at
		FROM artifacts WHERE owner_id = ?`
	args := []any{ownerID}

	if len(types) > 0 {
		placeholders := make([]string, len(types))
		for i, t := range types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		query += " AND type IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY type, name"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []model.RemoteRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read artifacts: %w", err)
	}
	return records, nil
}

// Get returns one artifact. Artifacts of other owners are reported as ErrNotFound.
func (c *Catalogue) Get(ctx context.Context, ownerID, id string) (model.RemoteRecord, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, type, content, created_at, updated_at
		 FROM artifacts WHERE id = ? AND owner_id = ?`, id, ownerID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RemoteRecord{}, ErrNotFound
	}
	return rec, err
}

// Create inserts a new artifact with a fresh id.
func (c *Catalogue) Create(ctx context.Context, ownerID string, rec model.Record) (model.RemoteRecord, error) {
	now := c.now().UTC()
	out := model.RemoteRecord{
		ID:        uuid.NewString(),
		Name:      rec.Name,
		Type:      rec.Type,
		Content:   rec.Content,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO artifacts (id, owner_id, name, type, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		out.ID, out.OwnerID, out.Name, string(out.Type), out.Content,
		formatTime(out.CreatedAt), formatTime(out.UpdatedAt))
	if err != nil {
		return model.RemoteRecord{}, fmt.Errorf("failed to insert artifact %s: %w", rec.Key(), err)
	}

	logging.Debug("stored artifact", logging.Artifact(out.Name), logging.Owner(ownerID))
	return out, nil
}

// Update replaces the content of an artifact.
func (c *Catalogue) Update(ctx context.Context, id, content string) (model.RemoteRecord, error) {
	res, err := c.db.ExecContext(ctx,
		`UPDATE artifacts SET content = ?, updated_at = ? WHERE id = ?`,
		content, formatTime(c.now().UTC()), id)
	if err != nil {
		return model.RemoteRecord{}, fmt.Errorf("failed to update artifact %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.RemoteRecord{}, ErrNotFound
	}

	row := c.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, type, content, created_at, updated_at
		 FROM artifacts WHERE id = ?`, id)
	return scanRecord(row)
}

// Delete removes an artifact row. Its companion rows cascade.
func (c *Catalogue) Delete(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM artifacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete artifact %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (model.RemoteRecord, error) {
	var (
		rec                  model.RemoteRecord
		typ                  string
		createdAt, updatedAt string
	)
	if err := row.Scan(&rec.ID, &rec.OwnerID, &rec.Name, &typ, &rec.Content, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RemoteRecord{}, err
		}
		return model.RemoteRecord{}, fmt.Errorf("failed to scan artifact: %w", err)
	}
	rec.Type = model.ArtifactType(typ)
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	return rec, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
