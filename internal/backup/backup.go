// Package backup snapshots stored artifacts before they are deleted.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauern/agentsync/internal/logging"
	"github.com/klauern/agentsync/internal/model"
)

const (
	// DirPerm is the permission for the backup directory (rwxr-x---)
	DirPerm = 0o750
	// FilePerm is the permission for snapshot files (rw-r-----)
	FilePerm = 0o640

	snapshotExt = ".json"
)

// ErrCorrupted is returned when a snapshot does not match its recorded hash.
var ErrCorrupted = errors.New("backup snapshot corrupted")

// Metadata describes one snapshot without its records.
type Metadata struct {
	ID        string    `json:"id"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Count     int       `json:"count"`
	Hash      string    `json:"hash"`
	Path      string    `json:"-"`
}

// Snapshot is the on-disk form of a backup.
type Snapshot struct {
	Metadata
	Records []model.RemoteRecord `json:"records"`
}

func hashRecords(records []model.RemoteRecord) (string, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Save writes a snapshot of records into dir and returns its metadata.
func Save(dir, reason string, records []model.RemoteRecord) (*Metadata, error) {
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	if records == nil {
		records = []model.RemoteRecord{}
	}

	hash, err := hashRecords(records)
	if err != nil {
		return nil, fmt.Errorf("failed to hash records: %w", err)
	}

	now := time.Now().UTC()
	snap := Snapshot{
		Metadata: Metadata{
			ID:        now.Format("20060102-150405.000000-") + hash[:8],
			Reason:    reason,
			CreatedAt: now,
			Count:     len(records),
			Hash:      hash,
		},
		Records: records,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	path := filepath.Join(dir, snap.ID+snapshotExt)
	if err := os.WriteFile(path, data, FilePerm); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}
	snap.Path = path

	logging.Debug("backup written", logging.Path(path), logging.Count(len(records)))
	return &snap.Metadata, nil
}

// Load reads a snapshot and verifies its hash.
func Load(path string) (*Snapshot, error) {
	// #nosec G304 - path comes from the configured backup directory
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %q: %w", path, err)
	}
	hash, err := hashRecords(snap.Records)
	if err != nil {
		return nil, err
	}
	if hash != snap.Hash {
		return nil, fmt.Errorf("%w: %s", ErrCorrupted, path)
	}
	snap.Path = path
	return &snap, nil
}

// List returns the snapshots in dir, newest first. A missing dir is empty.
// Unreadable snapshots are skipped.
func List(dir string) ([]Metadata, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var out []Metadata
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapshotExt) {
			continue
		}
		snap, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			logging.Warn("skipping unreadable backup", logging.Path(e.Name()), logging.Err(err))
			continue
		}
		out = append(out, snap.Metadata)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Cleanup removes all but the newest keep snapshots and returns the
// removed ids.
func Cleanup(dir string, keep int) ([]string, error) {
	snaps, err := List(dir)
	if err != nil {
		return nil, err
	}
	if keep < 0 {
		keep = 0
	}
	if len(snaps) <= keep {
		return nil, nil
	}

	var removed []string
	for _, m := range snaps[keep:] {
		if err := os.Remove(m.Path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove backup %s: %w", m.ID, err)
		}
		removed = append(removed, m.ID)
	}
	return removed, nil
}
