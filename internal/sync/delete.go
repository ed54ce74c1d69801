package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/klauern/agentsync/internal/logging"
	"github.com/klauern/agentsync/internal/model"
)

// DeleteConfigs removes the owner's records with the given ids. Each id is
// handled independently: an id that does not exist, belongs to another
// owner, or fails to delete lands in Failed and the rest continue. Skill
// companions are removed before the skill itself.
func (e *Engine) DeleteConfigs(ctx context.Context, ownerID string, ids []string) DeleteResult {
	defer logging.Timer("delete")()

	result := DeleteResult{Deleted: []string{}, Failed: []string{}}

	for _, id := range ids {
		if err := e.deleteOne(ctx, ownerID, id); err != nil {
			logging.WithContext(ctx).Warn("failed to delete artifact",
				slog.String("id", id),
				logging.Owner(ownerID),
				logging.Err(err),
			)
			result.Failed = append(result.Failed, id)
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}

	logging.Debug("deletion complete",
		logging.Owner(ownerID),
		logging.Count(len(result.Deleted)),
	)
	return result
}

func (e *Engine) deleteOne(ctx context.Context, ownerID, id string) error {
	rec, err := e.repo.Get(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", id, err)
	}

	if rec.Type == model.TypeSkill {
		if err := e.blobs.DeleteAll(ctx, rec.ID); err != nil {
			return fmt.Errorf("failed to delete companion files of %s: %w", rec.Name, err)
		}
	}

	if err := e.repo.Delete(ctx, rec.ID); err != nil {
		return fmt.Errorf("failed to delete %s: %w", rec.Name, err)
	}

	logging.WithContext(ctx).Info("deleted artifact",
		logging.Artifact(rec.Name),
		logging.Type(string(rec.Type)),
	)
	return nil
}
