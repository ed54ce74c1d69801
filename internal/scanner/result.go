package scanner

import (
	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/parser"
)

// Warning reasons emitted by the walker and the skill packager.
const (
	ReasonCircularSymlink   = "circular symlink"
	ReasonEmptyDirectory    = "empty directory, skipping"
	ReasonMissingSkillDoc   = "missing " + SkillDocument + ", skipping"
	ReasonDuplicateSkillDoc = "duplicate " + SkillDocument + ", ignored"
)

// Result accumulates the records and warnings of a scan.
type Result struct {
	Records  []model.Record
	Warnings []model.Warning
}

func (r *Result) warn(path, reason string) {
	r.Warnings = append(r.Warnings, model.Warning{Path: path, Reason: reason})
}

// add records rec, or warns and drops it when its name would fail batch
// validation. One unusable file must not abort the whole sync.
func (r *Result) add(rec model.Record) {
	if err := parser.ValidateArtifactName(rec.Name); err != nil {
		r.warn(rec.SourcePath, err.Error())
		return
	}
	r.Records = append(r.Records, rec)
}

// Merge appends other's records and warnings to r.
func (r *Result) Merge(other Result) {
	r.Records = append(r.Records, other.Records...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// CountByType returns the number of records per artifact type.
func (r *Result) CountByType() map[model.ArtifactType]int {
	counts := make(map[model.ArtifactType]int)
	for _, rec := range r.Records {
		counts[rec.Type]++
	}
	return counts
}
