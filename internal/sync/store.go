package sync

import (
	"context"

	"github.com/klauern/agentsync/internal/model"
)

// Repository persists artifact records for an owner.
type Repository interface {
	// List returns the owner's records, restricted to types when non-empty.
	List(ctx context.Context, ownerID string, types []model.ArtifactType) ([]model.RemoteRecord, error)

	// Get returns one of the owner's records by id.
	Get(ctx context.Context, ownerID, id string) (model.RemoteRecord, error)

	// Create stores a new record and returns it with its assigned id.
	Create(ctx context.Context, ownerID string, rec model.Record) (model.RemoteRecord, error)

	// Update replaces the content of an existing record.
	Update(ctx context.Context, id, content string) (model.RemoteRecord, error)

	// Delete removes a record.
	Delete(ctx context.Context, id string) error
}

// BlobStore holds the companion files of skill records.
type BlobStore interface {
	// ListCompanions returns the companions stored for an artifact.
	ListCompanions(ctx context.Context, artifactID string) ([]model.RemoteCompanion, error)

	// PutCompanion stores or replaces one companion file.
	PutCompanion(ctx context.Context, artifactID string, file model.CompanionFile) (model.RemoteCompanion, error)

	// DeleteCompanion removes one companion file.
	DeleteCompanion(ctx context.Context, artifactID, path string) error

	// DeleteAll removes every companion file of an artifact.
	DeleteAll(ctx context.Context, artifactID string) error
}
