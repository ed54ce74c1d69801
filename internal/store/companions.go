package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/klauern/agentsync/internal/logging"
	"github.com/klauern/agentsync/internal/model"
)

// ListCompanions returns the companion files of an artifact ordered by path.
func (c *Catalogue) ListCompanions(ctx context.Context, artifactID string) ([]model.RemoteCompanion, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT path, mime_type, size, hash FROM companions
		 WHERE artifact_id = ? ORDER BY path`, artifactID)
	if err != nil {
		return nil, fmt.Errorf("failed to query companions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	files := []model.RemoteCompanion{}
	for rows.Next() {
		var rc model.RemoteCompanion
		if err := rows.Scan(&rc.Path, &rc.MimeType, &rc.Size, &rc.Hash); err != nil {
			return nil, fmt.Errorf("failed to scan companion: %w", err)
		}
		files = append(files, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read companions: %w", err)
	}
	return files, nil
}

// PutCompanion stores the bytes of file and records it against the artifact,
// replacing any previous file at the same path.
func (c *Catalogue) PutCompanion(ctx context.Context, artifactID string, file model.CompanionFile) (model.RemoteCompanion, error) {
	data := file.Payload.Bytes()

	hash, err := c.blobs.Put(data)
	if err != nil {
		return model.RemoteCompanion{}, err
	}

	previous, err := c.companionHash(ctx, artifactID, file.Path)
	if err != nil && !errors.Is(err, ErrCompanionNotFound) {
		return model.RemoteCompanion{}, err
	}

	rc := model.RemoteCompanion{
		Path:     file.Path,
		MimeType: file.MimeType,
		Size:     int64(len(data)),
		Hash:     hash,
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO companions (artifact_id, path, mime_type, size, hash)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(artifact_id, path) DO UPDATE SET
			mime_type = excluded.mime_type, size = excluded.size, hash = excluded.hash`,
		artifactID, rc.Path, rc.MimeType, rc.Size, rc.Hash)
	if err != nil {
		return model.RemoteCompanion{}, fmt.Errorf("failed to record companion %s: %w", file.Path, err)
	}

	if previous != "" && previous != hash {
		c.releaseBlob(ctx, previous)
	}

	logging.Debug("stored companion", logging.Path(file.Path), logging.Artifact(artifactID))
	return rc, nil
}

// DeleteCompanion removes one companion file of an artifact.
func (c *Catalogue) DeleteCompanion(ctx context.Context, artifactID, path string) error {
	hash, err := c.companionHash(ctx, artifactID, path)
	if err != nil {
		return err
	}

	if _, err := c.db.ExecContext(ctx,
		`DELETE FROM companions WHERE artifact_id = ? AND path = ?`, artifactID, path); err != nil {
		return fmt.Errorf("failed to delete companion %s: %w", path, err)
	}

	c.releaseBlob(ctx, hash)
	return nil
}

// DeleteAll removes every companion file of an artifact.
func (c *Catalogue) DeleteAll(ctx context.Context, artifactID string) error {
	files, err := c.ListCompanions(ctx, artifactID)
	if err != nil {
		return err
	}

	if _, err := c.db.ExecContext(ctx,
		`DELETE FROM companions WHERE artifact_id = ?`, artifactID); err != nil {
		return fmt.Errorf("failed to delete companions of %s: %w", artifactID, err)
	}

	for _, rc := range files {
		c.releaseBlob(ctx, rc.Hash)
	}
	return nil
}

// ReadCompanion returns the stored bytes of one companion file.
func (c *Catalogue) ReadCompanion(ctx context.Context, artifactID, path string) ([]byte, error) {
	hash, err := c.companionHash(ctx, artifactID, path)
	if err != nil {
		return nil, err
	}
	return c.blobs.Get(hash)
}

func (c *Catalogue) companionHash(ctx context.Context, artifactID, path string) (string, error) {
	var hash string
	err := c.db.QueryRowContext(ctx,
		`SELECT hash FROM companions WHERE artifact_id = ? AND path = ?`,
		artifactID, path).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrCompanionNotFound
		}
		return "", fmt.Errorf("failed to look up companion %s: %w", path, err)
	}
	return hash, nil
}

// releaseBlob deletes a blob once no companion row references it.
// Failures are logged, not returned.
func (c *Catalogue) releaseBlob(ctx context.Context, hash string) {
	var refs int
	if err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM companions WHERE hash = ?`, hash).Scan(&refs); err != nil {
		logging.Warn("failed to count blob references", logging.Err(err))
		return
	}
	if refs > 0 {
		return
	}
	if err := c.blobs.Delete(hash); err != nil {
		logging.Warn("failed to delete blob", logging.Err(err))
	}
}
