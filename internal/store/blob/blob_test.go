package blob

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestHash(t *testing.T) {
	a := Hash([]byte("hello"))
	b := Hash([]byte("hello"))
	c := Hash([]byte("hello\n"))

	if len(a) != 64 {
		t.Errorf("Hash length = %d, want 64", len(a))
	}
	if a != b {
		t.Error("Hash is not deterministic")
	}
	if a == c {
		t.Error("different inputs produced the same hash")
	}
}

func TestStore_PutGet(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "blobs"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	data := []byte{0x00, 0xff, 0x10, 'x'}
	hash, err := s.Put(data)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if hash != Hash(data) {
		t.Errorf("Put() hash = %s, want %s", hash, Hash(data))
	}
	if !s.Exists(hash) {
		t.Error("Exists() = false after Put")
	}

	got, err := s.Get(hash)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Get() = %v, want %v", got, data)
	}

	// Second put of identical bytes is a no-op.
	again, err := s.Put(data)
	if err != nil {
		t.Fatalf("second Put() error = %v", err)
	}
	if again != hash {
		t.Errorf("second Put() hash = %s, want %s", again, hash)
	}

	entries, err := os.ReadDir(filepath.Join(s.Root(), tmpDir))
	if err != nil {
		t.Fatalf("ReadDir(tmp) error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("tmp dir has %d leftover entries", len(entries))
	}
}

func TestStore_Delete(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	hash, err := s.Put([]byte("gone soon"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Delete(hash); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if s.Exists(hash) {
		t.Error("Exists() = true after Delete")
	}
	if _, err := s.Get(hash); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(hash); err != nil {
		t.Errorf("Delete() of missing object error = %v", err)
	}
}

func TestStore_InvalidHash(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	tests := map[string]string{
		"empty":     "",
		"short":     "abcd",
		"traversal": "../../../../etc/passwd" + string(make([]byte, 42)),
		"not hex":   "zz" + Hash(nil)[2:],
	}

	for name, hash := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(hash); err == nil {
				t.Error("Get() expected error")
			}
			if s.Exists(hash) {
				t.Error("Exists() = true for invalid hash")
			}
			if err := s.Delete(hash); err == nil {
				t.Error("Delete() expected error")
			}
		})
	}
}
