package integrity

import (
	"errors"
	"fmt"
)

// Kind classifies a finding.
type Kind string

// Finding kinds.
const (
	KindMissingSource Kind = "missing_source"
	KindValidation    Kind = "validation"
	KindReferential   Kind = "referential_integrity"
	KindWarning       Kind = "field_warning"
	KindLoad          Kind = "load"
)

// MissingSourceError reports an absent or empty source collection. It is never fatal;
// the collection is treated as empty.
type MissingSourceError struct {
	Source string
	Absent bool
}

func (e *MissingSourceError) Error() string {
	if e.Absent {
		return fmt.Sprintf("source %q is missing", e.Source)
	}

	return fmt.Sprintf("source %q is empty", e.Source)
}

// ValidationError reports a record that violates a field rule.
type ValidationError struct {
	Table   string
	Field   string
	Rule    string
	Message string
	RowID   int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s[%d].%s: %s", e.Table, e.RowID, e.Field, e.Message)
}

// ReferentialIntegrityError reports a foreign key that does not resolve.
type ReferentialIntegrityError struct {
	Value  any
	Table  string
	Column string
	Target string
	RowID  int
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("%s[%d].%s = %v not found in %s", e.Table, e.RowID, e.Column, e.Value, e.Target)
}

// FieldWarning reports a suspicious but accepted value.
type FieldWarning struct {
	Table   string
	Field   string
	Message string
	RowID   int
}

func (e *FieldWarning) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Table, e.Message)
	}

	return fmt.Sprintf("%s[%d].%s: %s", e.Table, e.RowID, e.Field, e.Message)
}

// LoadError reports a store load that failed for one table.
type LoadError struct {
	Err   error
	Store string
	Table string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s into %s failed: %v", e.Table, e.Store, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// KindOf classifies err, returning "" for unknown errors.
func KindOf(err error) Kind {
	var (
		missing *MissingSourceError
		invalid *ValidationError
		ref     *ReferentialIntegrityError
		warn    *FieldWarning
		load    *LoadError
	)

	switch {
	case errors.As(err, &missing):
		return KindMissingSource
	case errors.As(err, &invalid):
		return KindValidation
	case errors.As(err, &ref):
		return KindReferential
	case errors.As(err, &warn):
		return KindWarning
	case errors.As(err, &load):
		return KindLoad
	}

	return ""
}
