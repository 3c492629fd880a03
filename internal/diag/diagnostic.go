package diag

import (
	"phphint/internal/source"
)

// DefaultPriority orders competing diagnostics at one location. Every rule
// reports with it.
const DefaultPriority = 500

type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []*Fix
	Priority int
}

// Rule returns the stable rule key of the diagnostic.
func (d *Diagnostic) Rule() string { return d.Code.Key() }
