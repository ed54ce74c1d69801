package model

import "time"

// Record is an artifact produced by a local scan.
// Records are created fresh on every scan and never mutated afterwards.
type Record struct {
	Name    string       `json:"name"`
	Type    ArtifactType `json:"type"`
	Content string       `json:"content"`

	// CompanionFiles is set only for skills that carry files besides SKILL.md.
	CompanionFiles []CompanionFile `json:"-"`

	// SourcePath is where the record was read from. Local only.
	SourcePath string `json:"-"`
}

// Key returns the reconciliation key for the record.
func (r Record) Key() string {
	return Key(r.Name, r.Type)
}

// CompanionPaths returns the companion file paths in order.
func (r Record) CompanionPaths() []string {
	paths := make([]string, 0, len(r.CompanionFiles))
	for _, f := range r.CompanionFiles {
		paths = append(paths, f.Path)
	}
	return paths
}

// Key builds the (name, type) reconciliation key.
func Key(name string, t ArtifactType) string {
	return name + ":" + string(t)
}

// CompanionFile is a non-root file inside a skill bundle.
type CompanionFile struct {
	// Path is relative to the bundle root, slash separated and cleaned.
	Path     string
	Payload  Payload
	MimeType string
}

// IsBinary reports whether the companion is carried as binary.
func (f CompanionFile) IsBinary() bool {
	_, ok := f.Payload.(Binary)
	return ok
}

// Warning is a non-fatal problem found while scanning.
type Warning struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// String formats the warning for display.
func (w Warning) String() string {
	return w.Path + ": " + w.Reason
}

// RemoteRecord is an artifact as held by the remote store.
type RemoteRecord struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Type      ArtifactType `json:"type"`
	Content   string       `json:"content"`
	OwnerID   string       `json:"ownerId"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Key returns the reconciliation key for the remote record.
func (r RemoteRecord) Key() string {
	return Key(r.Name, r.Type)
}

// RemoteCompanion describes a companion file held by the blob store.
type RemoteCompanion struct {
	Path     string `json:"path"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int64  `json:"size"`
	// Hash is the hex BLAKE3 digest of the raw bytes, computed at upload.
	Hash string `json:"hash,omitempty"`
}
