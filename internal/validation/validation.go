// Package validation checks artifact batches before they are reconciled.
package validation

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/parser"
)

// Error represents a validation failure with context.
type Error struct {
	// Field is the name of the field or component that failed validation
	Field string
	// Message describes the validation failure
	Message string
	// Err is the underlying error (if any)
	Err error
}

// Error returns a formatted validation error message.
func (ve *Error) Error() string {
	if ve.Err != nil {
		return fmt.Sprintf("validation failed for %q: %s: %v", ve.Field, ve.Message, ve.Err)
	}
	return fmt.Sprintf("validation failed for %q: %s", ve.Field, ve.Message)
}

// Unwrap returns the underlying error for errors.Is/As.
func (ve *Error) Unwrap() error {
	return ve.Err
}

// Errors collects multiple validation errors.
type Errors []error

// Error returns a formatted error message for all validation failures.
func (ve Errors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}
	return fmt.Sprintf("%d validation errors:\n- %s", len(ve), errors.Join(ve...))
}

// Options configures validation behavior.
type Options struct {
	// StrictMode turns empty content into an error instead of a warning.
	StrictMode bool
}

// DefaultOptions returns the default validation options.
func DefaultOptions() Options {
	return Options{StrictMode: false}
}

// Result contains the outcome of a validation check.
type Result struct {
	// Valid indicates whether all validations passed
	Valid bool
	// Warnings contains non-fatal validation issues
	Warnings []string
	// Errors contains validation failures that prevent the operation
	Errors []error
}

// AddError adds an error to the validation result.
func (r *Result) AddError(err error) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

// AddWarning adds a warning to the validation result.
func (r *Result) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// HasErrors returns true if there are any validation errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns the combined validation error message.
func (r *Result) Error() error {
	if !r.HasErrors() {
		return nil
	}
	if len(r.Errors) == 1 {
		return r.Errors[0]
	}
	return Errors(r.Errors)
}

// Summary returns a human-readable summary of the validation result.
func (r *Result) Summary() string {
	if r.Valid && len(r.Warnings) == 0 {
		return "All validations passed"
	}
	var msg string
	if r.Valid {
		msg = "Validation passed with warnings"
	} else {
		msg = "Validation failed"
	}
	if len(r.Warnings) > 0 {
		msg += fmt.Sprintf(" (%d warning(s))", len(r.Warnings))
	}
	return msg
}

// ValidateBatch checks every record of a batch. The returned error is
// non-nil exactly when the result holds errors.
func ValidateBatch(records []model.Record, opts Options) (*Result, error) {
	result := &Result{Valid: true}
	seen := make(map[string]int, len(records))

	for i, rec := range records {
		for _, err := range validateRecord(rec, i, opts) {
			result.AddError(err)
		}

		key := rec.Key()
		if first, dup := seen[key]; dup {
			result.AddWarning(fmt.Sprintf("records[%d] duplicates records[%d] (%s); the first one wins", i, first, key))
		} else {
			seen[key] = i
		}

		if !opts.StrictMode && strings.TrimSpace(rec.Content) == "" {
			result.AddWarning(fmt.Sprintf("%s %q has empty content", rec.Type, rec.Name))
		}
	}

	return result, result.Error()
}

func validateRecord(rec model.Record, index int, opts Options) []error {
	var errs []error
	field := func(name string) string {
		return fmt.Sprintf("records[%d].%s", index, name)
	}

	if err := parser.ValidateArtifactName(rec.Name); err != nil {
		errs = append(errs, &Error{Field: field("name"), Message: "invalid artifact name", Err: err})
	}

	if !rec.Type.IsValid() {
		errs = append(errs, &Error{
			Field:   field("type"),
			Message: fmt.Sprintf("unknown artifact type %q", rec.Type),
		})
	}

	if opts.StrictMode && strings.TrimSpace(rec.Content) == "" {
		errs = append(errs, &Error{
			Field:   field("content"),
			Message: "content cannot be empty in strict mode",
		})
	}

	if len(rec.CompanionFiles) > 0 && rec.Type != model.TypeSkill {
		errs = append(errs, &Error{
			Field:   field("companionFiles"),
			Message: fmt.Sprintf("only skills carry companion files, not %s", rec.Type),
		})
	}

	paths := make(map[string]bool, len(rec.CompanionFiles))
	for j, file := range rec.CompanionFiles {
		f := field(fmt.Sprintf("companionFiles[%d]", j))
		if err := ValidateCompanionPath(file.Path); err != nil {
			errs = append(errs, &Error{Field: f, Message: "invalid companion path", Err: err})
			continue
		}
		if paths[file.Path] {
			errs = append(errs, &Error{Field: f, Message: fmt.Sprintf("duplicate companion path %q", file.Path)})
		}
		paths[file.Path] = true
		if file.Payload == nil {
			errs = append(errs, &Error{Field: f, Message: "companion file has no payload"})
		}
	}

	return errs
}

// ValidateCompanionPath checks that p is a clean, relative, slash-separated
// path inside its bundle.
func ValidateCompanionPath(p string) error {
	if p == "" {
		return errors.New("path cannot be empty")
	}
	if strings.Contains(p, "\\") {
		return fmt.Errorf("path must use forward slashes: %q", p)
	}
	if path.IsAbs(p) {
		return fmt.Errorf("path must be relative: %q", p)
	}
	if path.Clean(p) != p {
		return fmt.Errorf("path is not clean: %q", p)
	}
	if p == ".." || strings.HasPrefix(p, "../") {
		return fmt.Errorf("path escapes the bundle: %q", p)
	}
	if strings.EqualFold(p, "SKILL.md") {
		return fmt.Errorf("path collides with the skill document: %q", p)
	}
	return nil
}
