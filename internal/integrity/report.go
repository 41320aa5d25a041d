package integrity

import (
	"errors"
	"maps"
)

// Report is the outcome of one integrity check.
type Report struct {
	Counts   map[string]int `json:"counts"`
	Layout   string         `json:"layout"`
	Errors   []error        `json:"-"`
	Warnings []error        `json:"-"`
	// Strict makes warnings fail the report.
	Strict bool `json:"strict"`
}

// NewReport creates an empty report for a layout.
func NewReport(layout string) *Report {
	return &Report{Layout: layout, Counts: make(map[string]int)}
}

// Passed is true when there are no errors, and no warnings in strict mode.
func (r *Report) Passed() bool {
	if len(r.Errors) > 0 {
		return false
	}

	return !r.Strict || len(r.Warnings) == 0
}

// Err joins all errors, or returns nil.
func (r *Report) Err() error {
	return errors.Join(r.Errors...)
}

// AddError records an error.
func (r *Report) AddError(err error) {
	r.Errors = append(r.Errors, err)
}

// AddWarning records a warning.
func (r *Report) AddWarning(err error) {
	r.Warnings = append(r.Warnings, err)
}

// Merge folds other into r.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}

	maps.Copy(r.Counts, other.Counts)
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// ErrorsByKind counts errors per kind.
func (r *Report) ErrorsByKind() map[Kind]int {
	return countKinds(r.Errors)
}

// WarningsByKind counts warnings per kind.
func (r *Report) WarningsByKind() map[Kind]int {
	return countKinds(r.Warnings)
}

func countKinds(errs []error) map[Kind]int {
	counts := make(map[Kind]int)
	for _, err := range errs {
		counts[KindOf(err)]++
	}

	return counts
}
