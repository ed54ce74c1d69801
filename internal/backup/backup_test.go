package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/util"
)

func sampleRecords() []model.RemoteRecord {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return []model.RemoteRecord{
		{ID: "a", Name: "deploy", Type: model.TypeCommand, Content: "Deploy.", OwnerID: "local", CreatedAt: ts, UpdatedAt: ts},
		{ID: "b", Name: "helper", Type: model.TypeSkill, Content: "# Helper", OwnerID: "local", CreatedAt: ts, UpdatedAt: ts},
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups")

	meta, err := Save(dir, "delete", sampleRecords())
	util.AssertNoError(t, err)
	util.AssertEqual(t, meta.Count, 2)
	util.AssertEqual(t, meta.Reason, "delete")

	info, err := os.Stat(meta.Path)
	util.AssertNoError(t, err)
	util.AssertEqual(t, info.Mode().Perm(), os.FileMode(FilePerm))

	snap, err := Load(meta.Path)
	util.AssertNoError(t, err)
	util.AssertEqual(t, snap.ID, meta.ID)
	util.AssertEqual(t, len(snap.Records), 2)
	util.AssertEqual(t, snap.Records[1].Name, "helper")
}

func TestLoadDetectsCorruption(t *testing.T) {
	dir := t.TempDir()
	meta, err := Save(dir, "delete", sampleRecords())
	util.AssertNoError(t, err)

	data := []byte(`{"id":"` + meta.ID + `","hash":"0000","records":[]}`)
	util.WriteBytes(t, meta.Path, data)

	_, err = Load(meta.Path)
	if !errors.Is(err, ErrCorrupted) {
		t.Fatalf("Load() error = %v, want ErrCorrupted", err)
	}
}

func TestListAndCleanup(t *testing.T) {
	tests := map[string]struct {
		saves       int
		keep        int
		wantRemoved int
		wantLeft    int
	}{
		"under limit": {saves: 2, keep: 5, wantRemoved: 0, wantLeft: 2},
		"over limit":  {saves: 4, keep: 1, wantRemoved: 3, wantLeft: 1},
		"keep none":   {saves: 2, keep: 0, wantRemoved: 2, wantLeft: 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			var last *Metadata
			for i := 0; i < tt.saves; i++ {
				m, err := Save(dir, "delete", sampleRecords()[:1+i%2])
				util.AssertNoError(t, err)
				last = m
				time.Sleep(2 * time.Millisecond)
			}

			removed, err := Cleanup(dir, tt.keep)
			util.AssertNoError(t, err)
			util.AssertEqual(t, len(removed), tt.wantRemoved)

			left, err := List(dir)
			util.AssertNoError(t, err)
			util.AssertEqual(t, len(left), tt.wantLeft)
			if tt.wantLeft > 0 && left[0].ID != last.ID {
				t.Errorf("newest snapshot should be kept first, got %s want %s", left[0].ID, last.ID)
			}
		})
	}
}

func TestListMissingDir(t *testing.T) {
	snaps, err := List(filepath.Join(t.TempDir(), "missing"))
	util.AssertNoError(t, err)
	util.AssertEqual(t, len(snaps), 0)
}

func TestListSkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	_, err := Save(dir, "delete", sampleRecords())
	util.AssertNoError(t, err)
	util.WriteFile(t, filepath.Join(dir, "broken.json"), "{not json")
	util.WriteFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	snaps, err := List(dir)
	util.AssertNoError(t, err)
	util.AssertEqual(t, len(snaps), 1)
}
