package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) inside one file.
type Span struct {
	File  FileID
	Start uint32 // inclusive
	End   uint32 // exclusive
}

// NoOffset marks an offset that does not point into any file.
const NoOffset = -1

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

// ContainsInclusive reports whether off lies in [Start, End].
// A caret sitting right after the last byte still counts as inside.
func (s Span) ContainsInclusive(off uint32) bool {
	return s.Start <= off && off <= s.End
}

// Contains reports whether off lies in [Start, End).
func (s Span) Contains(off uint32) bool {
	return s.Start <= off && off < s.End
}

// Overlaps reports whether s and other share at least one point.
// Spans that only touch at a boundary overlap.
func (s Span) Overlaps(other Span) bool {
	if s.File != other.File {
		return false
	}
	return s.Start <= other.End && other.Start <= s.End
}

// Encloses reports whether other lies entirely inside s.
func (s Span) Encloses(other Span) bool {
	return s.File == other.File && s.Start <= other.Start && other.End <= s.End
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// ZeroideToStart returns an empty span at s.Start.
func (s Span) ZeroideToStart() Span {
	return Span{File: s.File, Start: s.Start, End: s.Start}
}

// ZeroideToEnd returns an empty span at s.End.
func (s Span) ZeroideToEnd() Span {
	return Span{File: s.File, Start: s.End, End: s.End}
}

// ShiftLeft moves the span n bytes towards the file start.
// Shifting past offset zero leaves the span unchanged.
func (s Span) ShiftLeft(n uint32) Span {
	if n > s.Start {
		return s
	}
	return Span{
		File:  s.File,
		Start: s.Start - n,
		End:   s.End - n,
	}
}

func (s Span) ShiftRight(n uint32) Span {
	return Span{
		File:  s.File,
		Start: s.Start + n,
		End:   s.End + n,
	}
}
