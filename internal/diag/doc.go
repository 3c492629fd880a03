// Package diag defines the diagnostic model shared by the lexer, the parser
// and every analysis rule.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, CurrentLineWarning (caret-scoped suggestions), Warning, Error.
//   - Code: compact numeric identifier (see codes.go) with a stable ID such as
//     HNT4001 and a stable Key such as "empty-statement". Keys are what
//     configuration files and "phphint-ignore" comments refer to.
//   - Message: short, actionable text.
//   - Primary: the source.Span the finding is anchored to. Its File is the
//     subject file.
//   - Notes: optional secondary spans.
//   - Fixes: candidate corrections, ordered by preference.
//   - Priority: tie-break between findings at one location; always
//     DefaultPriority.
//
// # Fixes
//
// A Fix is a titled list of TextEdits applied as one change. Offsets refer to
// the text the finding was computed against, and OldText captures that text
// so a stale buffer is rejected instead of edited at the wrong place.
// Applicability tells callers whether a fix can be batch-applied; Interactive
// marks fixes that need more input. Fix.Apply validates everything before the
// first byte changes and reports failures to the caller, which decides
// whether to retry.
//
// # Emitting diagnostics
//
// Producers emit through a Reporter. BagReporter collects into a Bag, which
// supports limits, sorting, filtering and deduplication. Rendering lives in
// internal/diagfmt; batch fix application on files lives in internal/fix.
package diag
