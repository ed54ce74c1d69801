// Package sync reconciles locally scanned artifacts with a remote store.
//
// # Reconciliation
//
// Engine.Reconcile diffs a batch of local records against the owner's remote
// records, keyed by name and type, and sorts every artifact into one bucket:
//   - Created: no remote record with the same key
//   - Updated: content differs after normalization, or a skill's companion
//     file paths differ from what the blob store holds
//   - Unchanged: everything else that matched
//   - DeletionCandidates: remote records no local record maps to
//
// Content is compared after trimming surrounding whitespace and converting
// CRLF to LF, so editor noise never shows up as an update.
//
// Reconciliation is stateless: every call lists the remote store again and
// recomputes the plan from scratch.
//
// # Dry Run
//
// With Options.DryRun set, the engine classifies exactly as it would in
// apply mode but issues no writes. Created items carry the
// DryRunID placeholder instead of a store id.
//
// # Deletion
//
// Deletion candidates are reported and never removed by Reconcile. Removing
// them is a separate call:
//
//	result := engine.DeleteConfigs(ctx, owner, ids)
//	fmt.Printf("deleted %d, failed %d\n", len(result.Deleted), len(result.Failed))
//
// Each id is deleted independently; one failure does not stop the rest.
package sync
