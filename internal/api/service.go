package api

import (
	"context"

	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/sync"
	"github.com/klauern/agentsync/internal/validation"
)

// Service is a reconciliation backend.
type Service interface {
	// Sync reconciles a batch. With opts.DryRun set nothing is written.
	Sync(ctx context.Context, records []model.Record, opts sync.Options) (*sync.Result, error)

	// Delete removes remote artifacts by id.
	Delete(ctx context.Context, ids []string) (sync.DeleteResult, error)

	// List returns the remote artifacts, restricted to types when non-empty.
	List(ctx context.Context, types []model.ArtifactType) ([]model.RemoteRecord, error)
}

// Local runs the engine in-process for a single owner.
type Local struct {
	engine *sync.Engine
	repo   sync.Repository
	owner  string
}

// NewLocal creates a local service over the given stores.
func NewLocal(repo sync.Repository, blobs sync.BlobStore, owner string) *Local {
	return &Local{engine: sync.New(repo, blobs), repo: repo, owner: owner}
}

// Sync implements Service.
func (l *Local) Sync(ctx context.Context, records []model.Record, opts sync.Options) (*sync.Result, error) {
	if _, err := validation.ValidateBatch(records, validation.DefaultOptions()); err != nil {
		return nil, err
	}
	return l.engine.Reconcile(ctx, records, l.owner, opts)
}

// Delete implements Service.
func (l *Local) Delete(ctx context.Context, ids []string) (sync.DeleteResult, error) {
	return l.engine.DeleteConfigs(ctx, l.owner, ids), nil
}

// List implements Service.
func (l *Local) List(ctx context.Context, types []model.ArtifactType) ([]model.RemoteRecord, error) {
	return l.repo.List(ctx, l.owner, types)
}
