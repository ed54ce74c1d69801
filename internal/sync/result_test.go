package sync

import (
	"strings"
	"testing"

	"github.com/klauern/agentsync/internal/model"
)

func TestResult_Counts(t *testing.T) {
	r := &Result{
		Created:            []Item{{Name: "a"}},
		Updated:            []Item{{Name: "b"}, {Name: "c"}},
		Unchanged:          []Item{{Name: "d"}},
		DeletionCandidates: []Item{{Name: "e", ID: "id-e"}},
		Failed:             []FailedItem{{Name: "f", Type: model.TypeCommand, Error: "boom"}},
	}

	if got := r.TotalLocal(); got != 5 {
		t.Errorf("TotalLocal() = %d, want 5", got)
	}
	if got := r.TotalChanged(); got != 3 {
		t.Errorf("TotalChanged() = %d, want 3", got)
	}
	if !r.HasChanges() {
		t.Error("HasChanges() = false, want true")
	}
	if r.Success() {
		t.Error("Success() = true, want false")
	}
	if ids := r.DeletionCandidateIDs(); len(ids) != 1 || ids[0] != "id-e" {
		t.Errorf("DeletionCandidateIDs() = %v", ids)
	}
}

func TestResult_Summary(t *testing.T) {
	tests := map[string]struct {
		result   *Result
		contains []string
		excludes []string
	}{
		"dry run": {
			result:   &Result{DryRun: true, Created: []Item{{Name: "a"}}},
			contains: []string{"Dry run", "Created:             1"},
			excludes: []string{"Failed"},
		},
		"with failures": {
			result: &Result{Failed: []FailedItem{{Name: "x", Type: model.TypeAgent, Error: "denied"}}},
			contains: []string{
				"Failed:              1",
				"x (agent): denied",
			},
			excludes: []string{"Dry run"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			summary := tt.result.Summary()
			for _, s := range tt.contains {
				if !strings.Contains(summary, s) {
					t.Errorf("Summary() missing %q:\n%s", s, summary)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(summary, s) {
					t.Errorf("Summary() should not contain %q:\n%s", s, summary)
				}
			}
		})
	}
}
