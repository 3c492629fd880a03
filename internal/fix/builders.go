package fix

import (
	"fmt"
	"strings"
	"time"

	"phphint/internal/diag"
	"phphint/internal/source"
)

// Option mutates fix during construction.
type Option func(*diag.Fix)

// WithApplicability overrides applicability metadata.
func WithApplicability(app diag.FixApplicability) Option {
	return func(f *diag.Fix) {
		f.Applicability = app
	}
}

// WithKind overrides fix classification.
func WithKind(kind diag.FixKind) Option {
	return func(f *diag.Fix) {
		f.Kind = kind
	}
}

// Preferred marks fix as preferred suggestion.
func Preferred() Option {
	return func(f *diag.Fix) {
		f.IsPreferred = true
	}
}

// WithID sets stable identifier for fix.
func WithID(id string) Option {
	return func(f *diag.Fix) {
		f.ID = id
	}
}

// WithFollowup schedules run after the fix has been applied.
func WithFollowup(delay time.Duration, run func()) Option {
	return func(f *diag.Fix) {
		f.Followup = &diag.Followup{Delay: delay, Run: run}
	}
}

// MakeFixID derives a stable id from the code and anchor of a fix.
func MakeFixID(code diag.Code, at source.Span) string {
	return fmt.Sprintf("%s-%d-%d-%d", code.ID(), at.File, at.Start, at.End)
}

func build(title string, kind diag.FixKind, app diag.FixApplicability, edits []diag.TextEdit, opts []Option) *diag.Fix {
	f := &diag.Fix{
		Title:         title,
		Kind:          kind,
		Applicability: app,
		Edits:         edits,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// InsertText creates fix that inserts text at span (Span.Start == Span.End).
func InsertText(title string, at source.Span, text string, guard string, opts ...Option) *diag.Fix {
	edit := diag.TextEdit{
		Span:    at,
		NewText: text,
		OldText: guard,
	}
	return build(title, diag.FixKindQuickFix, diag.FixApplicabilityAlwaysSafe, []diag.TextEdit{edit}, opts)
}

// DeleteSpan removes text covered by span.
func DeleteSpan(title string, span source.Span, expect string, opts ...Option) *diag.Fix {
	edit := diag.TextEdit{
		Span:    span,
		NewText: "",
		OldText: expect,
	}
	return build(title, diag.FixKindQuickFix, diag.FixApplicabilityAlwaysSafe, []diag.TextEdit{edit}, opts)
}

// ReplaceSpan replaces text covered by span with newText.
func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...Option) *diag.Fix {
	edit := diag.TextEdit{
		Span:    span,
		NewText: newText,
		OldText: expect,
	}
	return build(title, diag.FixKindQuickFix, diag.FixApplicabilityAlwaysSafe, []diag.TextEdit{edit}, opts)
}

// WrapWith surrounds span with prefix and suffix insertions.
func WrapWith(title string, span source.Span, prefix, suffix string, opts ...Option) *diag.Fix {
	edits := []diag.TextEdit{
		{
			Span:    source.Span{File: span.File, Start: span.Start, End: span.Start},
			NewText: prefix,
		},
		{
			Span:    source.Span{File: span.File, Start: span.End, End: span.End},
			NewText: suffix,
		},
	}
	return build(title, diag.FixKindRewrite, diag.FixApplicabilitySafeWithHeuristics, edits, opts)
}

// Rewrite replaces several disjoint spans in one fix. Edits are given
// against the original text.
func Rewrite(title string, edits []diag.TextEdit, opts ...Option) *diag.Fix {
	copied := make([]diag.TextEdit, len(edits))
	copy(copied, edits)
	return build(title, diag.FixKindRewrite, diag.FixApplicabilitySafeWithHeuristics, copied, opts)
}

// LineIndent returns the leading whitespace of the line containing off.
func LineIndent(f *source.File, off uint32) string {
	start := f.LineStart(off)
	end := start
	for end < f.Len() && (f.Content[end] == ' ' || f.Content[end] == '\t') {
		end++
	}
	return string(f.Content[start:end])
}

// Slice returns the source text of span, or "" when it is out of range.
func Slice(f *source.File, span source.Span) string {
	if f == nil || span.End > f.Len() || span.Start > span.End {
		return ""
	}
	return string(f.Content[span.Start:span.End])
}

// TrimmedSlice is Slice without surrounding whitespace.
func TrimmedSlice(f *source.File, span source.Span) string {
	return strings.TrimSpace(Slice(f, span))
}
