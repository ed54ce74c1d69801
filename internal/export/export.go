// Package export writes stored artifacts in machine and human readable formats.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/klauern/agentsync/internal/logging"
	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/parser"
)

// Format represents the output format for exported artifacts.
type Format string

const (
	// FormatTable is the default terminal rendering; it is not handled here.
	FormatTable Format = "table"
	// FormatJSON exports artifacts as JSON.
	FormatJSON Format = "json"
	// FormatYAML exports artifacts as YAML.
	FormatYAML Format = "yaml"
	// FormatMarkdown exports artifacts as Markdown.
	FormatMarkdown Format = "markdown"
)

// IsValid returns true if the format is recognized.
func (f Format) IsValid() bool {
	switch f {
	case FormatTable, FormatJSON, FormatYAML, FormatMarkdown:
		return true
	default:
		return false
	}
}

// ParseFormat parses a string into a Format. Empty means table.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	switch format {
	case "":
		return FormatTable, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	}
	if !format.IsValid() {
		return "", fmt.Errorf("unsupported format %q (valid: table, json, yaml, markdown)", s)
	}
	return format, nil
}

// Options configures export behavior.
type Options struct {
	Format Format
	// IncludeContent adds the artifact bodies to the output.
	IncludeContent bool
}

// Exporter writes records in one format.
type Exporter struct {
	opts Options
}

// New creates a new Exporter with the given options.
func New(opts Options) *Exporter {
	return &Exporter{opts: opts}
}

// entry is the exported shape of a stored artifact.
type entry struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	// Description comes from the markdown frontmatter, when present.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Owner       string `json:"owner,omitempty" yaml:"owner,omitempty"`
	CreatedAt   string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	Content     string `json:"content,omitempty" yaml:"content,omitempty"`
}

func (e *Exporter) toEntry(rec model.RemoteRecord) entry {
	en := entry{
		ID:          rec.ID,
		Name:        rec.Name,
		Type:        string(rec.Type),
		Description: parser.Description(rec.Content),
		Owner:       rec.OwnerID,
		CreatedAt:   formatTime(rec.CreatedAt),
		UpdatedAt:   formatTime(rec.UpdatedAt),
	}
	if e.opts.IncludeContent {
		en.Content = rec.Content
	}
	return en
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Export writes the records to w.
func (e *Exporter) Export(records []model.RemoteRecord, w io.Writer) error {
	defer logging.Timer("export")()

	logging.Debug("starting export",
		slog.String("format", string(e.opts.Format)),
		logging.Count(len(records)),
		logging.Operation("export"),
	)

	var err error
	switch e.opts.Format {
	case FormatJSON:
		err = e.exportJSON(records, w)
	case FormatYAML:
		err = e.exportYAML(records, w)
	case FormatMarkdown:
		err = e.exportMarkdown(records, w)
	default:
		err = fmt.Errorf("unsupported format: %s", e.opts.Format)
	}
	if err != nil {
		logging.Error("export failed",
			slog.String("format", string(e.opts.Format)),
			logging.Err(err),
		)
	}
	return err
}

func (e *Exporter) entries(records []model.RemoteRecord) []entry {
	out := make([]entry, len(records))
	for i, rec := range records {
		out[i] = e.toEntry(rec)
	}
	return out
}

func (e *Exporter) exportJSON(records []model.RemoteRecord, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(e.entries(records))
}

func (e *Exporter) exportYAML(records []model.RemoteRecord, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(e.entries(records)); err != nil {
		_ = encoder.Close()
		return err
	}
	return encoder.Close()
}

func (e *Exporter) exportMarkdown(records []model.RemoteRecord, w io.Writer) error {
	var sb strings.Builder

	sb.WriteString("# Stored Artifacts\n\n")
	fmt.Fprintf(&sb, "Total: %d artifact(s)\n", len(records))

	for _, rec := range records {
		sb.WriteString("\n")
		sb.WriteString(e.formatMarkdownRecord(rec))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (e *Exporter) formatMarkdownRecord(rec model.RemoteRecord) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## %s\n\n", rec.Name)
	if desc := parser.Description(rec.Content); desc != "" {
		fmt.Fprintf(&sb, "*%s*\n\n", desc)
	}
	sb.WriteString("| Property | Value |\n")
	sb.WriteString("|----------|-------|\n")
	fmt.Fprintf(&sb, "| Type | %s |\n", rec.Type)
	fmt.Fprintf(&sb, "| ID | `%s` |\n", rec.ID)
	if !rec.UpdatedAt.IsZero() {
		fmt.Fprintf(&sb, "| Updated | %s |\n", rec.UpdatedAt.UTC().Format("2006-01-02 15:04:05"))
	}

	if !e.opts.IncludeContent {
		return sb.String()
	}

	sb.WriteString("\n")
	if strings.TrimSpace(rec.Content) == "" {
		sb.WriteString("*No content*\n")
		return sb.String()
	}
	fence := "```"
	if strings.Contains(rec.Content, fence) {
		fence = "````"
	}
	sb.WriteString(fence + "\n")
	sb.WriteString(rec.Content)
	if !strings.HasSuffix(rec.Content, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString(fence + "\n")
	return sb.String()
}
