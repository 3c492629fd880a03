package diag

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"phphint/internal/source"
)

// FixKind classifies a fix for UI grouping.
type FixKind uint8

const (
	FixKindQuickFix FixKind = iota
	FixKindRefactor
	FixKindRewrite
	FixKindSourceAction
)

func (k FixKind) String() string {
	switch k {
	case FixKindQuickFix:
		return "quickfix"
	case FixKindRefactor:
		return "refactor"
	case FixKindRewrite:
		return "rewrite"
	case FixKindSourceAction:
		return "source"
	}
	return "unknown"
}

// FixApplicability states how confident the producer is that a fix keeps
// program behaviour intact.
type FixApplicability uint8

const (
	FixApplicabilityAlwaysSafe FixApplicability = iota
	FixApplicabilitySafeWithHeuristics
	FixApplicabilityManualReview
)

func (a FixApplicability) String() string {
	switch a {
	case FixApplicabilityAlwaysSafe:
		return "always-safe"
	case FixApplicabilitySafeWithHeuristics:
		return "safe-with-heuristics"
	case FixApplicabilityManualReview:
		return "manual-review"
	}
	return "unknown"
}

// TextEdit replaces Span with NewText. OldText, when set, is the text the
// producer saw at Span; applying against different text fails.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// Followup is a fire-and-forget action run after a fix was applied.
type Followup struct {
	Delay time.Duration
	Run   func()
}

type Fix struct {
	ID            string
	Title         string
	Kind          FixKind
	Applicability FixApplicability
	IsPreferred   bool
	Interactive   bool
	Edits         []TextEdit
	Followup      *Followup
}

// IsSafe reports whether the fix may be applied without review.
func (f *Fix) IsSafe() bool { return f != nil && f.Applicability == FixApplicabilityAlwaysSafe }

// IsInteractive reports whether the fix needs more user input before applying.
func (f *Fix) IsInteractive() bool { return f != nil && f.Interactive }

var (
	ErrEmptyFix         = errors.New("fix has no edits")
	ErrStaleFix         = errors.New("fix does not match the current text")
	ErrOverlappingEdits = errors.New("fix edits overlap")
)

// Buffer is the editable text a fix applies to. ApplyEdits must apply all
// edits as one change; offsets refer to the text before any of them.
type Buffer interface {
	Len() int
	Slice(start, end int) (string, error)
	ApplyEdits(edits []TextEdit) error
}

// Apply validates every edit against buf before touching it and then submits
// all edits at once. Nothing is written when validation fails.
func (f *Fix) Apply(buf Buffer) error {
	if f == nil || len(f.Edits) == 0 {
		return ErrEmptyFix
	}
	edits, err := f.Validate(buf)
	if err != nil {
		return err
	}
	if err := buf.ApplyEdits(edits); err != nil {
		return fmt.Errorf("apply %q: %w", f.Title, err)
	}
	if f.Followup != nil && f.Followup.Run != nil {
		time.AfterFunc(f.Followup.Delay, f.Followup.Run)
	}
	return nil
}

// Validate checks bounds, OldText guards and overlaps, and returns the edits
// ordered by start offset.
func (f *Fix) Validate(buf Buffer) ([]TextEdit, error) {
	n := buf.Len()
	edits := make([]TextEdit, len(f.Edits))
	copy(edits, f.Edits)
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].Span.Start < edits[j].Span.Start })

	for i, e := range edits {
		start, end := int(e.Span.Start), int(e.Span.End)
		if start > end || end > n {
			return nil, fmt.Errorf("%w: edit %d-%d outside text of length %d", ErrStaleFix, start, end, n)
		}
		if e.OldText != "" {
			cur, err := buf.Slice(start, end)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrStaleFix, err)
			}
			if cur != e.OldText {
				return nil, fmt.Errorf("%w: expected %q at %d, found %q", ErrStaleFix, e.OldText, start, cur)
			}
		}
		if i > 0 && editsConflict(edits[i-1], e) {
			return nil, fmt.Errorf("%w: %d-%d and %d-%d", ErrOverlappingEdits,
				edits[i-1].Span.Start, edits[i-1].Span.End, start, end)
		}
	}
	return edits, nil
}

// editsConflict treats spans as half-open; two inserts at one point are fine,
// an insert strictly inside a replaced range is not.
func editsConflict(a, b TextEdit) bool {
	if a.Span.Empty() && b.Span.Empty() {
		return false
	}
	if a.Span.Empty() {
		return a.Span.Start > b.Span.Start && a.Span.Start < b.Span.End
	}
	if b.Span.Empty() {
		return b.Span.Start > a.Span.Start && b.Span.Start < a.Span.End
	}
	return a.Span.Start < b.Span.End && b.Span.Start < a.Span.End
}
