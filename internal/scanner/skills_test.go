package scanner

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/util"
)

func TestPackageSkills_MissingRootDocument(t *testing.T) {
	root := t.TempDir()
	util.WriteFile(t, filepath.Join(root, "broken", "README.md"), "no marker here")
	util.WriteFile(t, filepath.Join(root, "valid", "SKILL.md"), "# Valid")

	var acc Result
	packageSkills(root, NewVisitedSet(), &acc)

	if len(acc.Records) != 1 {
		t.Fatalf("records = %v, want only the valid bundle", acc.Records)
	}
	if acc.Records[0].Name != "valid" || acc.Records[0].Type != model.TypeSkill {
		t.Errorf("record = %+v", acc.Records[0])
	}
	if len(acc.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", acc.Warnings)
	}
	if acc.Warnings[0].Reason != ReasonMissingSkillDoc || acc.Warnings[0].Path != filepath.Join(root, "broken") {
		t.Errorf("warning = %+v", acc.Warnings[0])
	}
}

func TestPackageSkills_Companions(t *testing.T) {
	root := t.TempDir()
	bundle := filepath.Join(root, "pdf-tools")
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	util.WriteFile(t, filepath.Join(bundle, "skill.md"), "---\nname: pdf-tools\n---\n# PDF")
	util.WriteFile(t, filepath.Join(bundle, "scripts", "extract.py"), "print('hi')\n")
	util.WriteFile(t, filepath.Join(bundle, "reference.md"), "ref")
	util.WriteBytes(t, filepath.Join(bundle, "assets", "logo.png"), png)
	util.WriteBytes(t, filepath.Join(bundle, "notes.txt"), []byte{0xff, 0xfe, 0x00})
	util.WriteFile(t, filepath.Join(bundle, "nested", "SKILL.md"), "nested marker is a companion")

	var acc Result
	packageSkills(root, NewVisitedSet(), &acc)

	if len(acc.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", acc.Warnings)
	}
	if len(acc.Records) != 1 {
		t.Fatalf("records = %v", acc.Records)
	}
	rec := acc.Records[0]
	if rec.Content != "---\nname: pdf-tools\n---\n# PDF" {
		t.Errorf("content = %q, want the root document", rec.Content)
	}

	wantPaths := []string{"assets/logo.png", "nested/SKILL.md", "notes.txt", "reference.md", "scripts/extract.py"}
	gotPaths := rec.CompanionPaths()
	if len(gotPaths) != len(wantPaths) {
		t.Fatalf("companion paths = %v, want %v", gotPaths, wantPaths)
	}
	for i := range wantPaths {
		if gotPaths[i] != wantPaths[i] {
			t.Errorf("companion[%d] = %q, want %q", i, gotPaths[i], wantPaths[i])
		}
	}

	byPath := make(map[string]model.CompanionFile)
	for _, f := range rec.CompanionFiles {
		byPath[f.Path] = f
		if f.Path == "skill.md" || f.Path == "SKILL.md" {
			t.Errorf("root document leaked into companions: %q", f.Path)
		}
	}

	if f := byPath["scripts/extract.py"]; f.IsBinary() || string(f.Payload.(model.Text)) != "print('hi')\n" {
		t.Errorf("extract.py = %+v, want text payload", f)
	}
	logo := byPath["assets/logo.png"]
	if !logo.IsBinary() || !bytes.Equal(logo.Payload.Bytes(), png) {
		t.Errorf("logo.png = %+v, want binary payload", logo)
	}
	if logo.MimeType != "image/png" {
		t.Errorf("logo.png mime = %q", logo.MimeType)
	}
	if !byPath["notes.txt"].IsBinary() {
		t.Error("invalid UTF-8 text file should fall back to binary")
	}
	if byPath["reference.md"].MimeType != "text/markdown" {
		t.Errorf("reference.md mime = %q", byPath["reference.md"].MimeType)
	}
}

func TestPackageSkills_NoCompanionsOmitsField(t *testing.T) {
	root := t.TempDir()
	util.WriteFile(t, filepath.Join(root, "solo", "SKILL.md"), "# Solo")

	var acc Result
	packageSkills(root, NewVisitedSet(), &acc)

	if len(acc.Records) != 1 {
		t.Fatalf("records = %v", acc.Records)
	}
	if acc.Records[0].CompanionFiles != nil {
		t.Errorf("CompanionFiles = %v, want nil", acc.Records[0].CompanionFiles)
	}
}

func TestPackageSkills_FlatNamespace(t *testing.T) {
	root := t.TempDir()
	util.WriteFile(t, filepath.Join(root, "group", "SKILL.md"), "# Group")
	util.WriteFile(t, filepath.Join(root, "group", "inner", "SKILL.md"), "# Inner")
	util.WriteFile(t, filepath.Join(root, "stray.md"), "not a bundle")

	var acc Result
	packageSkills(root, NewVisitedSet(), &acc)

	if len(acc.Records) != 1 || acc.Records[0].Name != "group" {
		t.Fatalf("records = %v, want only group", acc.Records)
	}
	if paths := acc.Records[0].CompanionPaths(); len(paths) != 1 || paths[0] != "inner/SKILL.md" {
		t.Errorf("companions = %v", paths)
	}
}

func TestPackageSkills_SymlinkPolicy(t *testing.T) {
	root := t.TempDir()
	ext := filepath.Join(root, "ext")
	skills := filepath.Join(root, "skills")
	util.WriteFile(t, filepath.Join(ext, "shared", "SKILL.md"), "# Shared")
	util.WriteFile(t, filepath.Join(ext, "data.json"), "{}")
	util.Symlink(t, filepath.Join(ext, "data.json"), filepath.Join(ext, "hop.json"))
	util.Symlink(t, filepath.Join(ext, "shared"), filepath.Join(skills, "linked"))
	util.WriteFile(t, filepath.Join(skills, "local", "SKILL.md"), "# Local")
	util.Symlink(t, filepath.Join(ext, "data.json"), filepath.Join(skills, "local", "data.json"))
	util.Symlink(t, filepath.Join(ext, "hop.json"), filepath.Join(skills, "local", "chained.json"))
	util.Symlink(t, filepath.Join(skills, "local"), filepath.Join(skills, "local", "self"))

	var acc Result
	packageSkills(skills, NewVisitedSet(), &acc)

	got := recordNames(acc.Records)
	if _, ok := got["linked"]; !ok {
		t.Errorf("symlinked bundle missing: %v", acc.Records)
	}
	local, ok := got["local"]
	if !ok {
		t.Fatalf("local bundle missing: %v", acc.Records)
	}
	if paths := local.CompanionPaths(); len(paths) != 1 || paths[0] != "data.json" {
		t.Errorf("local companions = %v, want [data.json]", paths)
	}
	if len(warningsWithReason(acc.Warnings, ReasonChainedSymlink)) != 1 {
		t.Errorf("want one chained warning, got %v", acc.Warnings)
	}
	if len(warningsWithReason(acc.Warnings, ReasonCircularSymlink)) != 1 {
		t.Errorf("want one circular warning, got %v", acc.Warnings)
	}
}

func TestPackageSkills_DuplicateRootDocumentIgnored(t *testing.T) {
	root := t.TempDir()
	bundle := filepath.Join(root, "helper")
	util.WriteFile(t, filepath.Join(bundle, "SKILL.md"), "# Upper")
	util.WriteFile(t, filepath.Join(bundle, "skill.md"), "# Lower")
	util.WriteFile(t, filepath.Join(bundle, "reference.md"), "ref")
	if entries, err := os.ReadDir(bundle); err != nil || len(entries) != 3 {
		t.Skip("filesystem is case-insensitive")
	}

	var acc Result
	packageSkills(root, NewVisitedSet(), &acc)

	if len(acc.Records) != 1 {
		t.Fatalf("records = %v", acc.Records)
	}
	rec := acc.Records[0]
	paths := rec.CompanionPaths()
	if len(paths) != 1 || paths[0] != "reference.md" {
		t.Errorf("companions = %v, want only reference.md", paths)
	}

	dups := warningsWithReason(acc.Warnings, ReasonDuplicateSkillDoc)
	if len(dups) != 1 {
		t.Fatalf("warnings = %v, want one duplicate document warning", acc.Warnings)
	}
	if filepath.Base(rec.SourcePath) == filepath.Base(dups[0].Path) {
		t.Errorf("the chosen document %s should not be the one reported", rec.SourcePath)
	}
}

func TestPackageSkills_InvalidBundleNameSkipped(t *testing.T) {
	root := t.TempDir()
	util.WriteFile(t, filepath.Join(root, "pdf ", "SKILL.md"), "# Trailing space")
	util.WriteFile(t, filepath.Join(root, "helper", "SKILL.md"), "# Helper")

	var acc Result
	packageSkills(root, NewVisitedSet(), &acc)

	if len(acc.Records) != 1 || acc.Records[0].Name != "helper" {
		t.Fatalf("records = %v, want only helper", acc.Records)
	}
	if len(acc.Warnings) != 1 || acc.Warnings[0].Path != filepath.Join(root, "pdf ", "SKILL.md") {
		t.Errorf("warnings = %v", acc.Warnings)
	}
}
