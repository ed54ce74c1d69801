package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/klauern/agentsync/internal/backup"
	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/scanner"
	"github.com/klauern/agentsync/internal/sync"
)

var titleCaser = cases.Title(language.English)

// shortIDLen is how much of a store id is shown in tables.
const shortIDLen = 8

// newTable returns a borderless table with padded columns.
func newTable() *table.Table {
	cell := lipgloss.NewStyle().PaddingRight(2)
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(func(_, _ int) lipgloss.Style { return cell })
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func sectionTitle(name string, n int) string {
	if strings.ToLower(name) == name {
		name = titleCaser.String(name)
	}
	return Header(fmt.Sprintf("%s (%d)", name, n))
}

func writeSection(w io.Writer, name string, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(w, sectionTitle(name, len(rows)))
	fmt.Fprintln(w, newTable().Rows(rows...).String())
	fmt.Fprintln(w)
}

func itemRows(items []sync.Item, symbol string) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{symbol, item.Name, string(item.Type), Dim(shortID(item.ID))})
	}
	return rows
}

// RenderSyncResult writes a sectioned report of a reconciliation.
// Unchanged artifacts are listed only when verbose is set.
func RenderSyncResult(w io.Writer, r *sync.Result, verbose bool) {
	if r.DryRun {
		fmt.Fprintln(w, Info("Preview (dry run, nothing written)"))
		fmt.Fprintln(w)
	}

	writeSection(w, "created", itemRows(r.Created, Success(SymbolCreate)))
	writeSection(w, "updated", itemRows(r.Updated, Warning(SymbolUpdate)))
	if verbose {
		writeSection(w, "unchanged", itemRows(r.Unchanged, Dim(SymbolSkipped)))
	}
	writeSection(w, "deletion candidates", itemRows(r.DeletionCandidates, Error(SymbolDelete)))

	if len(r.Failed) > 0 {
		rows := make([][]string, 0, len(r.Failed))
		for _, f := range r.Failed {
			rows = append(rows, []string{Error(SymbolError), f.Name, string(f.Type), f.Error})
		}
		writeSection(w, "failed", rows)
	}

	fmt.Fprintln(w, SummaryLine(r))
}

// SummaryLine returns a one-line count of every bucket.
func SummaryLine(r *sync.Result) string {
	parts := []string{
		fmt.Sprintf("%d created", len(r.Created)),
		fmt.Sprintf("%d updated", len(r.Updated)),
		fmt.Sprintf("%d unchanged", len(r.Unchanged)),
		fmt.Sprintf("%d deletion candidate(s)", len(r.DeletionCandidates)),
	}
	if len(r.Failed) > 0 {
		parts = append(parts, Error(fmt.Sprintf("%d failed", len(r.Failed))))
	}
	return Bold("Summary: ") + strings.Join(parts, ", ")
}

// RenderDeleteResult writes the outcome of a delete request.
func RenderDeleteResult(w io.Writer, r sync.DeleteResult) {
	if len(r.Deleted) > 0 {
		fmt.Fprintln(w, StatusSuccess(fmt.Sprintf("Deleted %d artifact(s)", len(r.Deleted))))
	}
	for _, id := range r.Failed {
		fmt.Fprintln(w, StatusError("Failed to delete "+id))
	}
	if len(r.Deleted) == 0 && len(r.Failed) == 0 {
		fmt.Fprintln(w, StatusSkipped("Nothing deleted"))
	}
}

// RenderRecords writes remote records as a table.
func RenderRecords(w io.Writer, records []model.RemoteRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No artifacts stored.")
		return
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		updated := ""
		if !rec.UpdatedAt.IsZero() {
			updated = rec.UpdatedAt.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{rec.Name, string(rec.Type), shortID(rec.ID), Dim(updated)})
	}

	tbl := newTable().
		Headers("NAME", "TYPE", "ID", "UPDATED").
		Rows(rows...)
	fmt.Fprintln(w, tbl.String())
	fmt.Fprintf(w, "\n%d artifact(s)\n", len(records))
}

// RenderBackups writes pre-delete snapshots as a table, newest first.
func RenderBackups(w io.Writer, snaps []backup.Metadata) {
	if len(snaps) == 0 {
		fmt.Fprintln(w, "No backups.")
		return
	}

	rows := make([][]string, 0, len(snaps))
	for _, m := range snaps {
		rows = append(rows, []string{
			m.ID,
			fmt.Sprintf("%d", m.Count),
			m.CreatedAt.Local().Format("2006-01-02 15:04"),
			Dim(m.Path),
		})
	}
	tbl := newTable().
		Headers("ID", "ARTIFACTS", "CREATED", "PATH").
		Rows(rows...)
	fmt.Fprintln(w, tbl.String())
}

// RenderScan writes the records and warnings of a local scan.
// Warnings are listed individually only when verbose is set.
func RenderScan(w io.Writer, res scanner.Result, verbose bool) {
	counts := res.CountByType()
	for _, t := range model.AllArtifactTypes() {
		var rows [][]string
		for _, rec := range res.Records {
			if rec.Type != t {
				continue
			}
			detail := Dim(rec.SourcePath)
			if n := len(rec.CompanionFiles); n > 0 {
				detail = fmt.Sprintf("%s %s", detail, Dim(fmt.Sprintf("(+%d files)", n)))
			}
			rows = append(rows, []string{rec.Name, detail})
		}
		if counts[t] == 0 {
			continue
		}
		writeSection(w, typeHeading(t), rows)
	}

	if len(res.Records) == 0 {
		fmt.Fprintln(w, "No artifacts found.")
	}

	RenderWarnings(w, res.Warnings, verbose)
}

func typeHeading(t model.ArtifactType) string {
	if t == model.TypeMCPConfig {
		return "MCP configs"
	}
	return titleCaser.String(string(t)) + "s"
}

// RenderWarnings writes a warning count, and each warning when verbose is set.
func RenderWarnings(w io.Writer, warnings []model.Warning, verbose bool) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintln(w, StatusWarning(fmt.Sprintf("%d warning(s) while scanning", len(warnings))))
	if !verbose {
		return
	}
	sorted := make([]model.Warning, len(warnings))
	copy(sorted, warnings)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	for _, warn := range sorted {
		fmt.Fprintf(w, "  %s %s\n", Dim(warn.Path), warn.Reason)
	}
}
