package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauern/agentsync/internal/logging"
	"github.com/klauern/agentsync/internal/model"
)

// SkillDocument is the root marker every skill bundle must contain.
const SkillDocument = "SKILL.md"

// packageSkills turns each subdirectory of root into one skill bundle.
// Skills live in a flat namespace: the bundle directory name is the skill name.
func packageSkills(root string, visited VisitedSet, acc *Result) {
	canonical, err := canonicalize(root)
	if err != nil {
		acc.warn(root, fmt.Sprintf("cannot resolve directory: %v", err))
		return
	}
	if !visited.Visit(canonical) {
		acc.warn(root, ReasonCircularSymlink)
		return
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		acc.warn(root, fmt.Sprintf("cannot read directory: %v", err))
		return
	}
	if len(entries) == 0 {
		acc.warn(root, ReasonEmptyDirectory)
		return
	}

	for _, entry := range entries {
		dir := filepath.Join(root, entry.Name())

		if c := Classify(dir); !c.Usable {
			acc.warn(dir, c.Reason)
			continue
		}
		info, err := os.Stat(dir)
		if err != nil {
			acc.warn(dir, fmt.Sprintf("cannot stat: %v", err))
			continue
		}
		if !info.IsDir() {
			continue
		}

		if rec, ok := packageBundle(dir, entry.Name(), visited, acc); ok {
			acc.add(rec)
		}
	}
}

// packageBundle builds the record for one skill directory. A bundle without
// its root document is skipped as a whole.
func packageBundle(dir, name string, visited VisitedSet, acc *Result) (model.Record, bool) {
	canonical, err := canonicalize(dir)
	if err != nil {
		acc.warn(dir, fmt.Sprintf("cannot resolve directory: %v", err))
		return model.Record{}, false
	}
	if !visited.Visit(canonical) {
		acc.warn(dir, ReasonCircularSymlink)
		return model.Record{}, false
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		acc.warn(dir, fmt.Sprintf("cannot read directory: %v", err))
		return model.Record{}, false
	}

	docName, ok := findSkillDocument(dir, entries)
	if !ok {
		acc.warn(dir, ReasonMissingSkillDoc)
		return model.Record{}, false
	}

	docPath := filepath.Join(dir, docName)
	// #nosec G304 - docPath is a direct child of a scanned skill directory
	content, err := os.ReadFile(docPath)
	if err != nil {
		acc.warn(docPath, fmt.Sprintf("cannot read file: %v", err))
		return model.Record{}, false
	}

	var companions []model.CompanionFile
	for _, entry := range entries {
		if strings.EqualFold(entry.Name(), SkillDocument) {
			if entry.Name() != docName {
				acc.warn(filepath.Join(dir, entry.Name()), ReasonDuplicateSkillDoc)
			}
			continue
		}
		collectCompanion(filepath.Join(dir, entry.Name()), entry.Name(), visited, acc, &companions)
	}

	sort.Slice(companions, func(i, j int) bool {
		return companions[i].Path < companions[j].Path
	})

	logging.Debug("packaged skill",
		logging.Artifact(name),
		logging.Path(dir),
		logging.Count(len(companions)),
	)

	rec := model.Record{
		Name:       name,
		Type:       model.TypeSkill,
		Content:    string(content),
		SourcePath: docPath,
	}
	if len(companions) > 0 {
		rec.CompanionFiles = companions
	}
	return rec, true
}

// findSkillDocument locates the root document among the bundle's entries,
// matching the file name case-insensitively.
func findSkillDocument(dir string, entries []os.DirEntry) (string, bool) {
	for _, entry := range entries {
		if !strings.EqualFold(entry.Name(), SkillDocument) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !Classify(path).Usable {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		return entry.Name(), true
	}
	return "", false
}

// collectCompanion adds the file at path, or every file below it when it is a
// directory, using rel as the bundle-relative path.
func collectCompanion(path, rel string, visited VisitedSet, acc *Result, out *[]model.CompanionFile) {
	if c := Classify(path); !c.Usable {
		acc.warn(path, c.Reason)
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		acc.warn(path, fmt.Sprintf("cannot stat: %v", err))
		return
	}

	if info.IsDir() {
		canonical, err := canonicalize(path)
		if err != nil {
			acc.warn(path, fmt.Sprintf("cannot resolve directory: %v", err))
			return
		}
		if !visited.Visit(canonical) {
			acc.warn(path, ReasonCircularSymlink)
			return
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			acc.warn(path, fmt.Sprintf("cannot read directory: %v", err))
			return
		}
		for _, entry := range entries {
			collectCompanion(filepath.Join(path, entry.Name()), rel+"/"+entry.Name(), visited, acc, out)
		}
		return
	}
	if !info.Mode().IsRegular() {
		return
	}

	// #nosec G304 - path comes from walking a skill directory
	data, err := os.ReadFile(path)
	if err != nil {
		acc.warn(path, fmt.Sprintf("cannot read file: %v", err))
		return
	}

	*out = append(*out, model.CompanionFile{
		Path:     NormalizeCompanionPath(rel),
		Payload:  newPayload(rel, data),
		MimeType: GuessMimeType(rel),
	})
}
