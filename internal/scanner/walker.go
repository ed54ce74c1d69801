package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauern/agentsync/internal/logging"
	"github.com/klauern/agentsync/internal/model"
)

// documentKind describes which files a walk turns into records.
type documentKind struct {
	artifactType model.ArtifactType
	extensions   []string
	// validate rejects unusable documents; nil accepts everything.
	validate func(path string, data []byte) error
}

var (
	commandDocuments = documentKind{artifactType: model.TypeCommand, extensions: []string{".md"}}
	agentDocuments   = documentKind{artifactType: model.TypeAgent, extensions: []string{".md"}}
)

// matchExtension returns the extension of name if kind accepts it.
func (k documentKind) matchExtension(name string) (string, bool) {
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return "", false
	}
	for _, want := range k.extensions {
		if strings.EqualFold(ext, want) {
			return ext, true
		}
	}
	return "", false
}

// joinName extends a hierarchical artifact name with one segment.
func joinName(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + ":" + segment
}

// walk collects documents of the given kind below dir. Nested directories
// extend the name prefix, so commands/git/commit.md becomes "git:commit".
func walk(dir string, kind documentKind, prefix string, visited VisitedSet, acc *Result) {
	canonical, err := canonicalize(dir)
	if err != nil {
		acc.warn(dir, fmt.Sprintf("cannot resolve directory: %v", err))
		return
	}
	if !visited.Visit(canonical) {
		acc.warn(dir, ReasonCircularSymlink)
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		acc.warn(dir, fmt.Sprintf("cannot read directory: %v", err))
		return
	}
	if len(entries) == 0 {
		acc.warn(dir, ReasonEmptyDirectory)
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if c := Classify(path); !c.Usable {
			acc.warn(path, c.Reason)
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			acc.warn(path, fmt.Sprintf("cannot stat: %v", err))
			continue
		}

		if info.IsDir() {
			walk(path, kind, joinName(prefix, entry.Name()), visited, acc)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		ext, ok := kind.matchExtension(entry.Name())
		if !ok {
			continue
		}

		// #nosec G304 - path comes from walking a configured content root
		data, err := os.ReadFile(path)
		if err != nil {
			acc.warn(path, fmt.Sprintf("cannot read file: %v", err))
			continue
		}
		if kind.validate != nil {
			if err := kind.validate(path, data); err != nil {
				acc.warn(path, err.Error())
				continue
			}
		}

		name := joinName(prefix, strings.TrimSuffix(entry.Name(), ext))
		logging.Debug("discovered artifact",
			logging.Artifact(name),
			logging.Type(string(kind.artifactType)),
			logging.Path(path),
		)
		acc.add(model.Record{
			Name:       name,
			Type:       kind.artifactType,
			Content:    string(data),
			SourcePath: path,
		})
	}
}
