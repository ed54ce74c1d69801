package scanner

import (
	"mime"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/klauern/agentsync/internal/model"
)

// textExtensions lists companion extensions carried as UTF-8 text.
// Everything else is carried as binary.
var textExtensions = map[string]bool{
	".md": true, ".markdown": true, ".mdx": true, ".txt": true, ".rst": true,
	".json": true, ".jsonc": true, ".yaml": true, ".yml": true, ".toml": true,
	".ini": true, ".cfg": true, ".conf": true, ".env": true, ".xml": true,
	".csv": true, ".tsv": true, ".html": true, ".htm": true, ".css": true,
	".scss": true, ".svg": true, ".sql": true, ".graphql": true,
	".sh": true, ".bash": true, ".zsh": true, ".fish": true, ".ps1": true,
	".py": true, ".rb": true, ".pl": true, ".lua": true, ".php": true,
	".js": true, ".mjs": true, ".cjs": true, ".ts": true, ".tsx": true, ".jsx": true,
	".go": true, ".rs": true, ".java": true, ".kt": true, ".swift": true,
	".c": true, ".h": true, ".cpp": true, ".hpp": true, ".cs": true,
	".tmpl": true, ".tpl": true, ".j2": true,
}

// mimeOverrides pins types that the system mime table reports
// inconsistently or not at all.
var mimeOverrides = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".mdx":      "text/markdown",
	".txt":      "text/plain",
	".json":     "application/json",
	".jsonc":    "application/json",
	".yaml":     "application/yaml",
	".yml":      "application/yaml",
	".toml":     "application/toml",
	".sh":       "application/x-sh",
	".py":       "text/x-python",
	".js":       "text/javascript",
	".ts":       "text/typescript",
	".go":       "text/x-go",
	".csv":      "text/csv",
	".html":     "text/html",
	".css":      "text/css",
	".svg":      "image/svg+xml",
	".png":      "image/png",
	".jpg":      "image/jpeg",
	".jpeg":     "image/jpeg",
	".gif":      "image/gif",
	".webp":     "image/webp",
	".pdf":      "application/pdf",
	".zip":      "application/zip",
}

// IsTextExtension reports whether files with the given name are carried as text.
func IsTextExtension(name string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(name))]
}

// GuessMimeType returns a best-effort MIME type from the file extension.
func GuessMimeType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if mt, ok := mimeOverrides[ext]; ok {
		return mt
	}
	if ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			return mt
		}
	}
	if textExtensions[ext] {
		return "text/plain"
	}
	return "application/octet-stream"
}

// newPayload picks the payload variant for a companion file. Files with a
// text extension that are not valid UTF-8 fall back to binary.
func newPayload(name string, data []byte) model.Payload {
	if IsTextExtension(name) && utf8.Valid(data) {
		return model.Text(data)
	}
	return model.Binary(data)
}

// NormalizeCompanionPath converts a relative path to the canonical companion
// form: forward slashes, no "./" segments and no duplicate separators.
func NormalizeCompanionPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "./")
	if p == "." {
		return ""
	}
	return p
}
