package rule

import (
	"sync"

	"fortio.org/safecast"

	"phphint/internal/ast"
	"phphint/internal/document"
	"phphint/internal/model"
	"phphint/internal/phpver"
	"phphint/internal/source"
	"phphint/internal/token"
)

// NoCaret is the Caret value outside of a suggestion pass.
const NoCaret = -1

// Context is what one analysis pass over one file offers to rules.
// Program is nil when the file could not be parsed, Scope may be nil, and
// Index may be nil when no cross-file lookup is available.
type Context struct {
	File    *source.File
	Program *ast.File
	Tokens  token.Sequence
	Scope   *model.FileScope
	Index   model.Index
	Doc     *document.Document
	Version phpver.Version
	Caret   int

	suppressOnce sync.Once
	suppress     *Suppressions
}

// Ready reports whether there is anything to check.
func (rc *Context) Ready() bool {
	return rc != nil && rc.Program != nil && rc.File != nil
}

// Span builds a span in the subject file.
func (rc *Context) Span(start, end uint32) source.Span {
	return source.Span{File: rc.File.ID, Start: start, End: end}
}

// Text returns the text of sp as it is in the document now, falling back to
// the parsed file content when the pass has no document. It is what fixes
// capture as OldText.
func (rc *Context) Text(sp source.Span) string {
	if sp.Start > sp.End {
		return ""
	}
	if rc.Doc != nil {
		rc.Doc.RLock()
		defer rc.Doc.RUnlock()
		s, err := rc.Doc.Text(int(sp.Start), int(sp.End-sp.Start))
		if err != nil {
			return ""
		}
		return s
	}
	if sp.End > rc.File.Len() {
		return ""
	}
	return string(rc.File.Content[sp.Start:sp.End])
}

// NodeText returns the source text of n.
func (rc *Context) NodeText(n ast.Node) string { return rc.Text(n.Span()) }

// LineRange returns the span from the start of the line holding sp.Start to
// the end of the line holding sp.End.
func (rc *Context) LineRange(sp source.Span) source.Span {
	return rc.Span(rc.File.LineStart(sp.Start), rc.File.LineEnd(sp.End))
}

// CaretOffset returns the caret as an offset into the file.
func (rc *Context) CaretOffset() (uint32, bool) {
	if rc.Caret < 0 {
		return 0, false
	}
	off, err := safecast.Conv[uint32](rc.Caret)
	if err != nil || off > rc.File.Len() {
		return 0, false
	}
	return off, true
}

// CaretLimit is the traversal bound of a suggestion pass: nodes starting at
// or after it lie on a later line than the caret.
func (rc *Context) CaretLimit() (uint32, bool) {
	off, ok := rc.CaretOffset()
	if !ok {
		return 0, false
	}
	return rc.File.LineEnd(off) + 1, true
}

// OnCaretLine reports whether the lines n spans contain the caret. Both ends
// of the range count, so a caret right after the last byte of the line is on
// it.
func (rc *Context) OnCaretLine(n ast.Node) bool {
	off, ok := rc.CaretOffset()
	if !ok {
		return false
	}
	return rc.LineRange(n.Span()).ContainsInclusive(off)
}

// Suppressions returns the phphint-ignore comments of the file, parsed on
// first use.
func (rc *Context) Suppressions() *Suppressions {
	rc.suppressOnce.Do(func() {
		rc.suppress = ParseSuppressions(rc.File, rc.Tokens)
	})
	return rc.suppress
}
