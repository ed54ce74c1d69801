package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/klauern/agentsync/internal/api"
	"github.com/klauern/agentsync/internal/backup"
	"github.com/klauern/agentsync/internal/logging"
	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/security"
	"github.com/klauern/agentsync/internal/sync"
	"github.com/klauern/agentsync/internal/ui"
	"github.com/klauern/agentsync/internal/validation"
)

// SyncOptions controls one run of the sync driver.
type SyncOptions struct {
	Roots       []string
	Types       []model.ArtifactType
	DryRun      bool
	DeepCompare bool
	// Delete offers the deletion candidates for removal after applying.
	Delete bool
	// Yes skips the apply confirmation. Deletion is always confirmed.
	Yes bool
	// SecretScan reports likely credentials before anything is uploaded.
	SecretScan bool
}

// Driver runs scan, preview, confirm, apply and delete against a backend.
type Driver struct {
	Service api.Service
	Confirm Confirmer
	Out     io.Writer
	Verbose bool
	// BackupDir receives a snapshot of the artifacts before they are
	// deleted. Empty or KeepBackups <= 0 disables snapshots.
	BackupDir   string
	KeepBackups int
}

// Run executes one sync. A dry run stops after the preview.
func (d *Driver) Run(ctx context.Context, opts SyncOptions) error {
	scanned := scanRoots(opts.Roots)
	ui.RenderWarnings(d.Out, scanned.Warnings, d.Verbose)

	vres, err := validation.ValidateBatch(scanned.Records, validation.DefaultOptions())
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	for _, w := range vres.Warnings {
		fmt.Fprintln(d.Out, ui.StatusWarning(w))
	}
	if opts.SecretScan {
		d.reportSecrets(scanned.Records)
	}

	syncOpts := sync.Options{Types: opts.Types, DeepCompare: opts.DeepCompare, DryRun: true}
	preview, err := d.Service.Sync(ctx, scanned.Records, syncOpts)
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}
	ui.RenderSyncResult(d.Out, preview, d.Verbose)

	if opts.DryRun {
		return nil
	}

	result := preview
	if preview.HasChanges() {
		apply := opts.Yes
		if !apply {
			apply, err = d.Confirm.Confirm("Apply changes?", false)
			if err != nil {
				return err
			}
		}
		if !apply {
			fmt.Fprintln(d.Out, ui.StatusSkipped("Aborted, nothing written"))
			return nil
		}

		syncOpts.DryRun = false
		result, err = d.Service.Sync(ctx, scanned.Records, syncOpts)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		d.renderApplied(result)
	} else {
		fmt.Fprintln(d.Out, ui.StatusSuccess("Everything is up to date"))
	}

	if len(result.DeletionCandidates) > 0 {
		if opts.Delete {
			if err := d.deleteCandidates(ctx, result.DeletionCandidates); err != nil {
				return err
			}
		} else {
			fmt.Fprintln(d.Out, ui.Dim(fmt.Sprintf("%d artifact(s) exist only in the store; run with --delete to remove them", len(result.DeletionCandidates))))
		}
	}

	if !result.Success() {
		return fmt.Errorf("%d artifact(s) failed to sync", len(result.Failed))
	}
	return nil
}

func (d *Driver) renderApplied(result *sync.Result) {
	if !result.Success() {
		ui.RenderSyncResult(d.Out, result, false)
		return
	}
	fmt.Fprintln(d.Out, ui.StatusSuccess(fmt.Sprintf("Applied %d change(s)", result.TotalChanged())))
	logging.Info("sync applied", logging.Count(result.TotalChanged()))
}

func (d *Driver) deleteCandidates(ctx context.Context, candidates []sync.Item) error {
	ids, err := d.Confirm.SelectDeletions(candidates)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(d.Out, ui.StatusSkipped("Deletion skipped"))
		return nil
	}

	if err := d.snapshot(ctx, ids); err != nil {
		return fmt.Errorf("backup before delete failed: %w", err)
	}

	res, err := d.Service.Delete(ctx, ids)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	ui.RenderDeleteResult(d.Out, res)
	if len(res.Failed) > 0 {
		return fmt.Errorf("%d artifact(s) could not be deleted", len(res.Failed))
	}
	return nil
}

// snapshot saves the records about to be deleted.
func (d *Driver) snapshot(ctx context.Context, ids []string) error {
	if d.BackupDir == "" || d.KeepBackups <= 0 {
		return nil
	}
	all, err := d.Service.List(ctx, nil)
	if err != nil {
		return err
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var records []model.RemoteRecord
	for _, rec := range all {
		if wanted[rec.ID] {
			records = append(records, rec)
		}
	}

	meta, err := backup.Save(d.BackupDir, "delete", records)
	if err != nil {
		return err
	}
	fmt.Fprintln(d.Out, ui.Dim(fmt.Sprintf("Saved %d artifact(s) to %s", meta.Count, meta.Path)))

	if removed, err := backup.Cleanup(d.BackupDir, d.KeepBackups); err != nil {
		logging.Warn("backup cleanup failed", logging.Err(err))
	} else if len(removed) > 0 {
		logging.Debug("old backups removed", logging.Count(len(removed)))
	}
	return nil
}

func (d *Driver) reportSecrets(records []model.Record) {
	findings := security.NewDetector(nil).ScanRecords(records)
	if len(findings) == 0 {
		return
	}
	fmt.Fprintln(d.Out, ui.StatusWarning(fmt.Sprintf("%d possible credential(s) found in artifact content", len(findings))))
	for _, f := range findings {
		fmt.Fprintln(d.Out, "  "+ui.Dim(f.String()))
	}
}
