package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/store/blob"
)

func newTestCatalogue(t *testing.T) (*Catalogue, *blob.Store) {
	t.Helper()
	blobs, err := blob.NewStore(filepath.Join(t.TempDir(), "blobs"))
	if err != nil {
		t.Fatalf("blob.NewStore() error = %v", err)
	}
	c, err := OpenInMemory(blobs)
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, blobs
}

func TestOpen_File(t *testing.T) {
	dir := t.TempDir()
	blobs, err := blob.NewStore(filepath.Join(dir, "blobs"))
	if err != nil {
		t.Fatalf("blob.NewStore() error = %v", err)
	}
	path := filepath.Join(dir, "nested", "catalogue.db")

	c, err := Open(path, blobs)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	ctx := context.Background()
	if _, err := c.Create(ctx, "alice", model.Record{Name: "deploy", Type: model.TypeCommand, Content: "x"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(path, blobs)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = reopened.Close() }()

	records, err := reopened.List(ctx, "alice", nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 || records[0].Name != "deploy" {
		t.Errorf("List() after reopen = %+v, want deploy", records)
	}
}

func TestCatalogue_CreateListGet(t *testing.T) {
	c, _ := newTestCatalogue(t)
	ctx := context.Background()

	inputs := []model.Record{
		{Name: "review", Type: model.TypeAgent, Content: "agent body"},
		{Name: "deploy", Type: model.TypeCommand, Content: "cmd body"},
		{Name: "pdf", Type: model.TypeSkill, Content: "skill body"},
	}
	for _, rec := range inputs {
		if _, err := c.Create(ctx, "alice", rec); err != nil {
			t.Fatalf("Create(%s) error = %v", rec.Name, err)
		}
	}
	if _, err := c.Create(ctx, "bob", model.Record{Name: "deploy", Type: model.TypeCommand, Content: "bob"}); err != nil {
		t.Fatalf("Create(bob) error = %v", err)
	}

	all, err := c.List(ctx, "alice", nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List() returned %d records, want 3", len(all))
	}
	// Ordered by type then name.
	wantOrder := []string{"review", "deploy", "pdf"}
	for i, name := range wantOrder {
		if all[i].Name != name {
			t.Errorf("List()[%d] = %s, want %s", i, all[i].Name, name)
		}
		if all[i].OwnerID != "alice" {
			t.Errorf("List()[%d].OwnerID = %s, want alice", i, all[i].OwnerID)
		}
		if all[i].ID == "" {
			t.Errorf("List()[%d] has empty id", i)
		}
	}

	filtered, err := c.List(ctx, "alice", []model.ArtifactType{model.TypeCommand, model.TypeSkill})
	if err != nil {
		t.Fatalf("List(filtered) error = %v", err)
	}
	if len(filtered) != 2 {
		t.Errorf("List(filtered) returned %d records, want 2", len(filtered))
	}

	got, err := c.Get(ctx, "alice", all[1].ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Content != "cmd body" {
		t.Errorf("Get().Content = %q, want %q", got.Content, "cmd body")
	}
	if got.CreatedAt.IsZero() {
		t.Error("Get().CreatedAt is zero")
	}

	if _, err := c.Get(ctx, "bob", all[1].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() for other owner error = %v, want ErrNotFound", err)
	}
	if _, err := c.Get(ctx, "alice", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCatalogue_CreateDuplicateKey(t *testing.T) {
	c, _ := newTestCatalogue(t)
	ctx := context.Background()

	rec := model.Record{Name: "deploy", Type: model.TypeCommand, Content: "a"}
	if _, err := c.Create(ctx, "alice", rec); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := c.Create(ctx, "alice", rec); err == nil {
		t.Error("Create() of duplicate key expected error")
	}

	// Same name under a different type is a different key.
	rec.Type = model.TypeAgent
	if _, err := c.Create(ctx, "alice", rec); err != nil {
		t.Errorf("Create() with other type error = %v", err)
	}
}

func TestCatalogue_UpdateDelete(t *testing.T) {
	c, _ := newTestCatalogue(t)
	ctx := context.Background()

	created, err := c.Create(ctx, "alice", model.Record{Name: "deploy", Type: model.TypeCommand, Content: "old"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := c.Update(ctx, created.ID, "new")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Content != "new" {
		t.Errorf("Update().Content = %q, want new", updated.Content)
	}
	if updated.ID != created.ID {
		t.Errorf("Update() changed id from %s to %s", created.ID, updated.ID)
	}

	if _, err := c.Update(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}

	if err := c.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := c.Get(ctx, "alice", created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
	if err := c.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
