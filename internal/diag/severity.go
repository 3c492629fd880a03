package diag

import (
	"fmt"
	"strings"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevCurrentLineWarning marks caret-scoped suggestions; editors render
	// them only for the line the caret sits on.
	SevCurrentLineWarning
	// SevWarning is for style and likely-bug hints.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevCurrentLineWarning:
		return "SUGGESTION"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseSeverity accepts the lower-case spellings used in configuration files.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info", "hint":
		return SevInfo, nil
	case "suggestion", "current-line-warning", "line":
		return SevCurrentLineWarning, nil
	case "warning", "warn":
		return SevWarning, nil
	case "error":
		return SevError, nil
	}
	return SevInfo, fmt.Errorf("unknown severity %q", s)
}
