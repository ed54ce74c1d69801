package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/klauern/agentsync/internal/logging"
	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/parser"
)

// Options configures a reconciliation.
type Options struct {
	// Types restricts both sides to these artifact types. Empty means all.
	Types []model.ArtifactType

	// DryRun classifies without writing.
	DryRun bool

	// DeepCompare also compares companion file hashes, not only paths.
	DeepCompare bool
}

// Engine reconciles local batches against a remote store.
type Engine struct {
	repo  Repository
	blobs BlobStore
}

// New creates an engine over the given repository and blob store.
func New(repo Repository, blobs BlobStore) *Engine {
	return &Engine{repo: repo, blobs: blobs}
}

// pairing is the state of one local record against the remote snapshot.
type pairing int

const (
	pairNew pairing = iota
	pairMatchedSame
	pairMatchedDifferent
)

// remoteEntry tracks a remote record and whether a local record claimed it.
type remoteEntry struct {
	record  model.RemoteRecord
	matched bool
}

// Reconcile classifies every record in batch against the owner's remote
// records and, unless opts.DryRun is set, applies creates and updates.
// Remote records without a local counterpart are reported as deletion
// candidates only. A failing remote listing aborts the call; a failing
// write is recorded in Result.Failed and the batch continues.
func (e *Engine) Reconcile(ctx context.Context, batch []model.Record, ownerID string, opts Options) (*Result, error) {
	defer logging.Timer("reconcile")()

	result := &Result{
		Created:            []Item{},
		Updated:            []Item{},
		Unchanged:          []Item{},
		DeletionCandidates: []Item{},
		DryRun:             opts.DryRun,
	}

	remote, err := e.repo.List(ctx, ownerID, opts.Types)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote artifacts: %w", err)
	}

	remoteByKey := make(map[string]*remoteEntry, len(remote))
	order := make([]string, 0, len(remote))
	for _, rec := range remote {
		key := rec.Key()
		if _, dup := remoteByKey[key]; dup {
			// A second remote row with the same key can never be matched.
			order = append(order, key+"#"+rec.ID)
			remoteByKey[key+"#"+rec.ID] = &remoteEntry{record: rec}
			continue
		}
		remoteByKey[key] = &remoteEntry{record: rec}
		order = append(order, key)
	}

	log := logging.WithContext(ctx)
	log.Debug("reconciling batch",
		logging.Owner(ownerID),
		logging.Count(len(batch)),
		slog.Int("remote", len(remote)),
		slog.Bool("dry_run", opts.DryRun),
	)

	for _, local := range batch {
		if !model.ContainsType(opts.Types, local.Type) {
			continue
		}

		key := local.Key()
		entry, found := remoteByKey[key]

		state := pairNew
		if found {
			entry.matched = true
			state, err = e.compare(ctx, local, entry.record, opts)
			if err != nil {
				result.Failed = append(result.Failed, failed(local, err))
				continue
			}
		}

		switch state {
		case pairNew:
			created, err := e.create(ctx, local, ownerID, opts.DryRun)
			if err != nil {
				result.Failed = append(result.Failed, failed(local, err))
				continue
			}
			// Later duplicates of this key in the batch compare against it.
			remoteByKey[key] = &remoteEntry{record: created, matched: true}
			result.Created = append(result.Created, Item{Name: local.Name, Type: local.Type, ID: created.ID})

		case pairMatchedDifferent:
			updated, err := e.update(ctx, local, entry.record, opts.DryRun)
			if err != nil {
				result.Failed = append(result.Failed, failed(local, err))
				continue
			}
			entry.record = updated
			result.Updated = append(result.Updated, Item{Name: local.Name, Type: local.Type, ID: updated.ID})

		case pairMatchedSame:
			result.Unchanged = append(result.Unchanged, Item{Name: local.Name, Type: local.Type, ID: entry.record.ID})
		}
	}

	for _, key := range order {
		entry := remoteByKey[key]
		if entry == nil || entry.matched {
			continue
		}
		result.DeletionCandidates = append(result.DeletionCandidates, Item{
			Name: entry.record.Name,
			Type: entry.record.Type,
			ID:   entry.record.ID,
		})
	}

	log.Debug("reconciliation complete",
		logging.Owner(ownerID),
		slog.Int("created", len(result.Created)),
		slog.Int("updated", len(result.Updated)),
		slog.Int("unchanged", len(result.Unchanged)),
		slog.Int("deletion_candidates", len(result.DeletionCandidates)),
		slog.Int("failed", len(result.Failed)),
	)

	return result, nil
}

// compare decides whether a matched pair differs.
func (e *Engine) compare(ctx context.Context, local model.Record, remote model.RemoteRecord, opts Options) (pairing, error) {
	if !ContentEqual(local.Content, remote.Content) {
		return pairMatchedDifferent, nil
	}
	if local.Type != model.TypeSkill || len(local.CompanionFiles) == 0 {
		return pairMatchedSame, nil
	}
	if remote.ID == DryRunID {
		// Placeholder from an earlier duplicate in a dry run; nothing stored yet.
		return pairMatchedSame, nil
	}

	stored, err := e.blobs.ListCompanions(ctx, remote.ID)
	if err != nil {
		return pairNew, fmt.Errorf("failed to list companion files: %w", err)
	}
	if companionsDrifted(local.CompanionFiles, stored, opts.DeepCompare) {
		logging.Debug("companion files drifted", logging.Artifact(local.Name))
		return pairMatchedDifferent, nil
	}
	return pairMatchedSame, nil
}

func (e *Engine) create(ctx context.Context, local model.Record, ownerID string, dryRun bool) (model.RemoteRecord, error) {
	if dryRun {
		return model.RemoteRecord{
			ID:      DryRunID,
			Name:    local.Name,
			Type:    local.Type,
			Content: local.Content,
			OwnerID: ownerID,
		}, nil
	}

	created, err := e.repo.Create(ctx, ownerID, local)
	if err != nil {
		return model.RemoteRecord{}, fmt.Errorf("failed to create: %w", err)
	}
	logging.WithContext(ctx).Info("created artifact",
		logging.Artifact(local.Name),
		logging.Type(string(local.Type)),
	)

	if local.Type == model.TypeSkill {
		if err := e.syncCompanions(ctx, created.ID, local.CompanionFiles, nil); err != nil {
			return model.RemoteRecord{}, e.rollbackCreate(ctx, created, err)
		}
	}
	return created, nil
}

func (e *Engine) update(ctx context.Context, local model.Record, remote model.RemoteRecord, dryRun bool) (model.RemoteRecord, error) {
	if dryRun {
		preview := remote
		preview.ID = DryRunID
		preview.Content = local.Content
		return preview, nil
	}

	updated := remote
	if !ContentEqual(local.Content, remote.Content) {
		var err error
		updated, err = e.repo.Update(ctx, remote.ID, local.Content)
		if err != nil {
			return model.RemoteRecord{}, fmt.Errorf("failed to update: %w", err)
		}
	}
	logging.WithContext(ctx).Info("updated artifact",
		logging.Artifact(local.Name),
		logging.Type(string(local.Type)),
	)

	if local.Type == model.TypeSkill {
		stored, err := e.blobs.ListCompanions(ctx, remote.ID)
		if err != nil {
			return model.RemoteRecord{}, fmt.Errorf("failed to list companion files: %w", err)
		}
		if err := e.syncCompanions(ctx, remote.ID, local.CompanionFiles, stored); err != nil {
			return model.RemoteRecord{}, err
		}
	}
	return updated, nil
}

// rollbackCreate removes a skill row whose companions failed to upload, so the
// next sync sees it as new again instead of as an unchanged, incomplete bundle.
func (e *Engine) rollbackCreate(ctx context.Context, created model.RemoteRecord, cause error) error {
	errs := []error{cause}
	if err := e.blobs.DeleteAll(ctx, created.ID); err != nil {
		errs = append(errs, fmt.Errorf("failed to roll back companion files: %w", err))
	}
	if err := e.repo.Delete(ctx, created.ID); err != nil {
		errs = append(errs, fmt.Errorf("failed to roll back created row: %w", err))
	}
	logging.WithContext(ctx).Warn("rolled back partially created skill",
		logging.Artifact(created.Name),
		slog.String("id", created.ID),
	)
	return errors.Join(errs...)
}

// syncCompanions uploads every local companion and deletes stored companions
// whose path no longer exists locally.
func (e *Engine) syncCompanions(ctx context.Context, artifactID string, local []model.CompanionFile, stored []model.RemoteCompanion) error {
	keep := make(map[string]bool, len(local))
	var errs []error

	for _, file := range local {
		keep[file.Path] = true
		if _, err := e.blobs.PutCompanion(ctx, artifactID, file); err != nil {
			errs = append(errs, fmt.Errorf("failed to upload %s: %w", file.Path, err))
		}
	}
	for _, rc := range stored {
		if keep[rc.Path] {
			continue
		}
		if err := e.blobs.DeleteCompanion(ctx, artifactID, rc.Path); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", rc.Path, err))
		}
	}

	return errors.Join(errs...)
}

func failed(local model.Record, err error) FailedItem {
	logging.Warn("artifact sync failed",
		logging.Artifact(local.Name),
		logging.Type(string(local.Type)),
		logging.Err(err),
	)
	return FailedItem{Name: local.Name, Type: local.Type, Error: err.Error()}
}

// ContentEqual compares two artifact bodies after normalization.
func ContentEqual(a, b string) bool {
	return parser.NormalizeContent(a) == parser.NormalizeContent(b)
}
