// Package mock provides an in-memory artifact store for testing.
package mock

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/store"
	"github.com/klauern/agentsync/internal/store/blob"
)

// Calls counts the store operations performed.
type Calls struct {
	List, Get, Create, Update, Delete                        int
	ListCompanions, PutCompanion, DeleteCompanion, DeleteAll int
}

// Writes returns the number of mutating calls.
func (c Calls) Writes() int {
	return c.Create + c.Update + c.Delete + c.PutCompanion + c.DeleteCompanion + c.DeleteAll
}

// Store is an in-memory implementation of sync.Repository and sync.BlobStore.
type Store struct {
	records    map[string]model.RemoteRecord
	companions map[string]map[string]model.RemoteCompanion
	nextID     int

	listErr   error
	failNames map[string]error
	failIDs   map[string]error
	failPaths map[string]error

	calls Calls
}

// New creates an empty mock store.
func New() *Store {
	return &Store{
		records:    map[string]model.RemoteRecord{},
		companions: map[string]map[string]model.RemoteCompanion{},
		failNames:  map[string]error{},
		failIDs:    map[string]error{},
		failPaths:  map[string]error{},
	}
}

// WithRecords seeds the store. Records without an id are assigned one.
func (s *Store) WithRecords(records ...model.RemoteRecord) *Store {
	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = s.newID()
		}
		s.records[rec.ID] = rec
	}
	return s
}

// WithCompanions seeds companion metadata for an artifact.
func (s *Store) WithCompanions(artifactID string, files ...model.RemoteCompanion) *Store {
	if s.companions[artifactID] == nil {
		s.companions[artifactID] = map[string]model.RemoteCompanion{}
	}
	for _, f := range files {
		s.companions[artifactID][f.Path] = f
	}
	return s
}

// WithListError makes List fail.
func (s *Store) WithListError(err error) *Store {
	s.listErr = err
	return s
}

// WithWriteError makes Create and Update fail for the named artifact.
func (s *Store) WithWriteError(name string, err error) *Store {
	s.failNames[name] = err
	return s
}

// WithDeleteError makes Delete fail for the given id.
func (s *Store) WithDeleteError(id string, err error) *Store {
	s.failIDs[id] = err
	return s
}

// WithCompanionError makes PutCompanion fail for the given companion path.
func (s *Store) WithCompanionError(path string, err error) *Store {
	s.failPaths[path] = err
	return s
}

// Calls returns the operation counters.
func (s *Store) Calls() Calls {
	return s.calls
}

// Reset resets the call counters.
func (s *Store) Reset() {
	s.calls = Calls{}
}

// Records returns all stored records ordered by key.
func (s *Store) Records() []model.RemoteRecord {
	out := make([]model.RemoteRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Companions returns the companion metadata stored for an artifact, by path.
func (s *Store) Companions(artifactID string) map[string]model.RemoteCompanion {
	return s.companions[artifactID]
}

// List implements sync.Repository.
func (s *Store) List(_ context.Context, ownerID string, types []model.ArtifactType) ([]model.RemoteRecord, error) {
	s.calls.List++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := []model.RemoteRecord{}
	for _, rec := range s.Records() {
		if rec.OwnerID == ownerID && model.ContainsType(types, rec.Type) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Get implements sync.Repository.
func (s *Store) Get(_ context.Context, ownerID, id string) (model.RemoteRecord, error) {
	s.calls.Get++
	rec, ok := s.records[id]
	if !ok || rec.OwnerID != ownerID {
		return model.RemoteRecord{}, store.ErrNotFound
	}
	return rec, nil
}

// Create implements sync.Repository.
func (s *Store) Create(_ context.Context, ownerID string, rec model.Record) (model.RemoteRecord, error) {
	s.calls.Create++
	if err := s.failNames[rec.Name]; err != nil {
		return model.RemoteRecord{}, err
	}
	now := time.Now().UTC()
	out := model.RemoteRecord{
		ID:        s.newID(),
		Name:      rec.Name,
		Type:      rec.Type,
		Content:   rec.Content,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.records[out.ID] = out
	return out, nil
}

// Update implements sync.Repository.
func (s *Store) Update(_ context.Context, id, content string) (model.RemoteRecord, error) {
	s.calls.Update++
	rec, ok := s.records[id]
	if !ok {
		return model.RemoteRecord{}, store.ErrNotFound
	}
	if err := s.failNames[rec.Name]; err != nil {
		return model.RemoteRecord{}, err
	}
	rec.Content = content
	rec.UpdatedAt = time.Now().UTC()
	s.records[id] = rec
	return rec, nil
}

// Delete implements sync.Repository.
func (s *Store) Delete(_ context.Context, id string) error {
	s.calls.Delete++
	if err := s.failIDs[id]; err != nil {
		return err
	}
	if _, ok := s.records[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.records, id)
	delete(s.companions, id)
	return nil
}

// ListCompanions implements sync.BlobStore.
func (s *Store) ListCompanions(_ context.Context, artifactID string) ([]model.RemoteCompanion, error) {
	s.calls.ListCompanions++
	out := []model.RemoteCompanion{}
	for _, f := range s.companions[artifactID] {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// PutCompanion implements sync.BlobStore.
func (s *Store) PutCompanion(_ context.Context, artifactID string, file model.CompanionFile) (model.RemoteCompanion, error) {
	s.calls.PutCompanion++
	if err := s.failPaths[file.Path]; err != nil {
		return model.RemoteCompanion{}, err
	}
	data := file.Payload.Bytes()
	rc := model.RemoteCompanion{
		Path:     file.Path,
		MimeType: file.MimeType,
		Size:     int64(len(data)),
		Hash:     blob.Hash(data),
	}
	s.WithCompanions(artifactID, rc)
	return rc, nil
}

// DeleteCompanion implements sync.BlobStore.
func (s *Store) DeleteCompanion(_ context.Context, artifactID, path string) error {
	s.calls.DeleteCompanion++
	if _, ok := s.companions[artifactID][path]; !ok {
		return store.ErrCompanionNotFound
	}
	delete(s.companions[artifactID], path)
	return nil
}

// DeleteAll implements sync.BlobStore.
func (s *Store) DeleteAll(_ context.Context, artifactID string) error {
	s.calls.DeleteAll++
	delete(s.companions, artifactID)
	return nil
}

func (s *Store) newID() string {
	s.nextID++
	return fmt.Sprintf("id-%d", s.nextID)
}
