package scanner

import (
	"os"
	"path/filepath"
)

// Skip reasons reported by Classify.
const (
	ReasonBrokenSymlink  = "broken symlink"
	ReasonChainedSymlink = "chained symlink"
)

// Classification is the outcome of Classify.
type Classification struct {
	// Usable is true when the entry may be read or descended into.
	Usable bool
	// Reason explains why an unusable entry is skipped.
	Reason string
}

func usable() Classification {
	return Classification{Usable: true}
}

func skip(reason string) Classification {
	return Classification{Reason: reason}
}

// Classify decides whether a filesystem entry can be used as an artifact
// source. Regular entries are always usable. A symlink is resolved exactly
// one level: it is usable only when its target exists and is not another
// symlink. Classify has no side effects.
func Classify(path string) Classification {
	info, err := os.Lstat(path)
	if err != nil {
		return skip("cannot stat: " + err.Error())
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return usable()
	}

	target, err := os.Readlink(path)
	if err != nil {
		return skip(ReasonBrokenSymlink)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}

	targetInfo, err := os.Lstat(target)
	if err != nil {
		return skip(ReasonBrokenSymlink)
	}
	if targetInfo.Mode()&os.ModeSymlink != 0 {
		return skip(ReasonChainedSymlink)
	}

	return usable()
}
