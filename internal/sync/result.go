package sync

import (
	"fmt"
	"strings"

	"github.com/klauern/agentsync/internal/model"
)

// DryRunID is the placeholder id reported for writes skipped by a dry run.
const DryRunID = "dry-run"

// Item identifies one artifact in a sync result.
type Item struct {
	Name string             `json:"name"`
	Type model.ArtifactType `json:"type"`
	ID   string             `json:"id,omitempty"`
}

// FailedItem is an artifact whose write failed during apply.
type FailedItem struct {
	Name  string             `json:"name"`
	Type  model.ArtifactType `json:"type"`
	Error string             `json:"error"`
}

// Result contains the complete outcome of a reconciliation.
type Result struct {
	Created            []Item
	Updated            []Item
	Unchanged          []Item
	DeletionCandidates []Item

	// Failed holds records whose create or update failed. Always empty on dry runs.
	Failed []FailedItem

	// DryRun indicates if this was a dry run (no changes made).
	DryRun bool
}

// Success returns true if every write succeeded.
func (r *Result) Success() bool {
	return len(r.Failed) == 0
}

// TotalLocal returns the number of local records the result accounts for.
func (r *Result) TotalLocal() int {
	return len(r.Created) + len(r.Updated) + len(r.Unchanged) + len(r.Failed)
}

// TotalChanged returns the number of records that were created or updated.
func (r *Result) TotalChanged() int {
	return len(r.Created) + len(r.Updated)
}

// HasChanges reports whether applying the result would write anything.
func (r *Result) HasChanges() bool {
	return r.TotalChanged() > 0
}

// DeletionCandidateIDs returns the ids of all deletion candidates.
func (r *Result) DeletionCandidateIDs() []string {
	ids := make([]string, 0, len(r.DeletionCandidates))
	for _, item := range r.DeletionCandidates {
		ids = append(ids, item.ID)
	}
	return ids
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	var sb strings.Builder

	if r.DryRun {
		sb.WriteString("Dry run - no changes made\n")
	}

	sb.WriteString(fmt.Sprintf("  Created:             %d\n", len(r.Created)))
	sb.WriteString(fmt.Sprintf("  Updated:             %d\n", len(r.Updated)))
	sb.WriteString(fmt.Sprintf("  Unchanged:           %d\n", len(r.Unchanged)))
	sb.WriteString(fmt.Sprintf("  Deletion candidates: %d\n", len(r.DeletionCandidates)))
	if len(r.Failed) > 0 {
		sb.WriteString(fmt.Sprintf("  Failed:              %d\n", len(r.Failed)))
		sb.WriteString("\nErrors:\n")
		for _, f := range r.Failed {
			sb.WriteString(fmt.Sprintf("  - %s (%s): %s\n", f.Name, f.Type, f.Error))
		}
	}

	return sb.String()
}

// DeleteResult is the outcome of DeleteConfigs.
type DeleteResult struct {
	Deleted []string `json:"deleted"`
	Failed  []string `json:"failed"`
}
