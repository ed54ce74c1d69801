package scanner

import "path/filepath"

// VisitedSet holds canonical directory paths already descended into during
// one top-level scan.
type VisitedSet map[string]struct{}

// NewVisitedSet returns an empty visited set.
func NewVisitedSet() VisitedSet {
	return make(VisitedSet)
}

// Visit records canonical and reports whether it was newly added.
func (v VisitedSet) Visit(canonical string) bool {
	if _, ok := v[canonical]; ok {
		return false
	}
	v[canonical] = struct{}{}
	return true
}

// Contains reports whether canonical has been visited.
func (v VisitedSet) Contains(canonical string) bool {
	_, ok := v[canonical]
	return ok
}

// canonicalize resolves every symlink in path and makes it absolute.
func canonicalize(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}
