package sync

import (
	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/store/blob"
)

// companionsDrifted reports whether the stored companion set differs from the
// local one. Paths are compared by count and membership; with deep set the
// BLAKE3 hash of each path is compared as well.
func companionsDrifted(local []model.CompanionFile, stored []model.RemoteCompanion, deep bool) bool {
	if len(local) != len(stored) {
		return true
	}

	byPath := make(map[string]model.RemoteCompanion, len(stored))
	for _, rc := range stored {
		byPath[rc.Path] = rc
	}

	for _, file := range local {
		rc, ok := byPath[file.Path]
		if !ok {
			return true
		}
		if deep && rc.Hash != blob.Hash(file.Payload.Bytes()) {
			return true
		}
	}
	return false
}
