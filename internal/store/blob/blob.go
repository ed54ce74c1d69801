// Package blob stores companion file contents on disk, addressed by their
// BLAKE3 hash.
package blob

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// ErrNotFound is returned when no object exists for a hash.
var ErrNotFound = errors.New("blob not found")

const (
	objectsDir = "objects"
	tmpDir     = "tmp"
)

// domainKey separates companion hashes from any other BLAKE3 use of the
// same bytes. ASCII "agentsync.companion", zero padded to 32 bytes.
var domainKey = [32]byte{
	'a', 'g', 'e', 'n', 't', 's', 'y', 'n', 'c', '.',
	'c', 'o', 'm', 'p', 'a', 'n', 'i', 'o', 'n',
}

// Hash returns the hex-encoded keyed BLAKE3 digest of data.
func Hash(data []byte) string {
	hasher, err := blake3.NewKeyed(domainKey[:])
	if err != nil {
		panic("blob: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// Store is a content-addressed object directory.
// Objects are immutable; writing the same bytes twice is a no-op.
type Store struct {
	root string
}

// NewStore creates a Store rooted at dir, creating the layout if needed.
func NewStore(dir string) (*Store, error) {
	for _, d := range []string{
		dir,
		filepath.Join(dir, objectsDir),
		filepath.Join(dir, tmpDir),
	} {
		if err := os.MkdirAll(d, 0o750); err != nil {
			return nil, fmt.Errorf("creating blob directory %s: %w", d, err)
		}
	}
	return &Store{root: dir}, nil
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

// Put writes data and returns its hash.
func (s *Store) Put(data []byte) (string, error) {
	hash := Hash(data)
	final := s.objectPath(hash)

	if _, err := os.Stat(final); err == nil {
		return hash, nil
	}

	tmp, err := os.CreateTemp(filepath.Join(s.root, tmpDir), "object-*")
	if err != nil {
		return "", fmt.Errorf("creating temp object: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("writing object %s: %w", hash, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("closing object %s: %w", hash, err)
	}

	if err := os.MkdirAll(filepath.Dir(final), 0o750); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("creating object directory: %w", err)
	}
	if err := os.Rename(tmpPath, final); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("storing object %s: %w", hash, err)
	}

	return hash, nil
}

// Get reads the object with the given hash.
func (s *Store) Get(hash string) ([]byte, error) {
	if !validHash(hash) {
		return nil, fmt.Errorf("invalid hash %q", hash)
	}
	// #nosec G304 - path is derived from a validated hex digest
	data, err := os.ReadFile(s.objectPath(hash))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading object %s: %w", hash, err)
	}
	return data, nil
}

// Exists reports whether an object is stored.
func (s *Store) Exists(hash string) bool {
	if !validHash(hash) {
		return false
	}
	_, err := os.Stat(s.objectPath(hash))
	return err == nil
}

// Delete removes an object. Deleting a missing object is not an error.
func (s *Store) Delete(hash string) error {
	if !validHash(hash) {
		return fmt.Errorf("invalid hash %q", hash)
	}
	if err := os.Remove(s.objectPath(hash)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting object %s: %w", hash, err)
	}
	return nil
}

// objectPath shards objects by the first two bytes of the hex digest:
// objects/a3/f9/a3f9b2c1...
func (s *Store) objectPath(hash string) string {
	return filepath.Join(s.root, objectsDir, hash[:2], hash[2:4], hash)
}

func validHash(hash string) bool {
	if len(hash) != 64 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
