// Package security detects credentials in artifact content before it leaves
// the machine.
package security

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/klauern/agentsync/internal/model"
)

// Severity grades a finding.
type Severity string

const (
	// SeverityWarning marks a pattern that is often a false positive.
	SeverityWarning Severity = "warning"
	// SeverityHigh marks a pattern that is almost always a real credential.
	SeverityHigh Severity = "high"
)

// Pattern is a named credential pattern.
type Pattern struct {
	Name     string
	Regexp   *regexp.Regexp
	Severity Severity
}

// DefaultPatterns returns the built-in credential patterns.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{"API key", regexp.MustCompile(`(?i)(api[_-]?key|apikey)["']?\s*[:=]\s*['"]?[a-zA-Z0-9_\-]{16,}`), SeverityWarning},
		{"token", regexp.MustCompile(`(?i)(access[_-]?token|auth[_-]?token|token)["']?\s*[:=]\s*['"]?[a-zA-Z0-9_\-\.]{16,}`), SeverityWarning},
		{"password", regexp.MustCompile(`(?i)(password|passwd|pwd)["']?\s*[:=]\s*['"]?[a-zA-Z0-9_\-@!#$%^&*()]{8,}`), SeverityWarning},
		{"AWS access key", regexp.MustCompile(`AKIA[A-Z0-9]{16}`), SeverityHigh},
		{"GitHub token", regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{36,}`), SeverityHigh},
		{"Anthropic API key", regexp.MustCompile(`sk-ant-[a-zA-Z0-9_\-]{20,}`), SeverityHigh},
		{"private key", regexp.MustCompile(`-----BEGIN\s+([A-Z]+\s+)?PRIVATE\s+KEY-----`), SeverityHigh},
		{"bearer token", regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_\-\.]{20,}`), SeverityWarning},
		{"connection string", regexp.MustCompile(`(?i)(postgres|postgresql|mysql|mongodb|redis)://[^:/\s]+:[^@\s]+@`), SeverityHigh},
	}
}

// Detector scans content line by line against a set of patterns.
type Detector struct {
	patterns []Pattern
}

// NewDetector creates a detector. Empty patterns means DefaultPatterns.
func NewDetector(patterns []Pattern) *Detector {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	return &Detector{patterns: patterns}
}

// Finding is one pattern match.
type Finding struct {
	// Location names the artifact and, for companions, the file.
	Location string
	Line     int
	Pattern  string
	Severity Severity
}

// String formats the finding for display. The matched text is never included.
func (f Finding) String() string {
	return fmt.Sprintf("%s:%d: possible %s (%s)", f.Location, f.Line, f.Pattern, f.Severity)
}

// ScanContent returns the findings for one piece of text. At most one
// finding is reported per line and pattern.
func (d *Detector) ScanContent(location, content string) []Finding {
	if content == "" {
		return nil
	}

	var findings []Finding
	for i, line := range strings.Split(content, "\n") {
		if isFalsePositive(line) {
			continue
		}
		for _, p := range d.patterns {
			if p.Regexp.MatchString(line) {
				findings = append(findings, Finding{
					Location: location,
					Line:     i + 1,
					Pattern:  p.Name,
					Severity: p.Severity,
				})
			}
		}
	}
	return findings
}

// ScanRecord scans the record content and its text companions.
func (d *Detector) ScanRecord(rec model.Record) []Finding {
	loc := string(rec.Type) + " " + rec.Name
	findings := d.ScanContent(loc, rec.Content)
	for _, f := range rec.CompanionFiles {
		text, ok := f.Payload.(model.Text)
		if !ok {
			continue
		}
		findings = append(findings, d.ScanContent(loc+"/"+f.Path, string(text))...)
	}
	return findings
}

// ScanRecords scans a batch and converts the findings into warnings,
// sorted by location.
func (d *Detector) ScanRecords(records []model.Record) []model.Warning {
	var warnings []model.Warning
	for _, rec := range records {
		for _, f := range d.ScanRecord(rec) {
			warnings = append(warnings, model.Warning{
				Path:   fmt.Sprintf("%s:%d", f.Location, f.Line),
				Reason: fmt.Sprintf("possible %s (%s)", f.Pattern, f.Severity),
			})
		}
	}
	sort.SliceStable(warnings, func(i, j int) bool {
		return warnings[i].Path < warnings[j].Path
	})
	return warnings
}

// isFalsePositive skips comments and lines whose value is an obvious
// placeholder.
func isFalsePositive(line string) bool {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "#") ||
		strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "/*") {
		return true
	}

	idx := strings.IndexAny(trimmed, ":=")
	if idx < 0 {
		return false
	}
	value := strings.ToLower(strings.TrimSpace(trimmed[idx+1:]))
	value = strings.Trim(value, `"', `)
	for _, marker := range []string{"your_", "<your", "placeholder", "example_", "${", "xxxx"} {
		if strings.Contains(value, marker) {
			return true
		}
	}
	return false
}
