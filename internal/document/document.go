// Package document is the editable text buffer rules read and fixes write.
//
// Reads are unsynchronized on their own: a caller brackets a bounded region
// of reads with RLock and RUnlock. Writes go through an EditList, which takes
// the write lock for the whole list so a multi-point fix lands as one change.
package document

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"fortio.org/safecast"

	"phphint/internal/diag"
	"phphint/internal/source"
)

var (
	// ErrStaleEdit reports an edit outside the current text or over text
	// other than it expected.
	ErrStaleEdit = errors.New("edit does not match document text")
	// ErrOverlappingEdits reports two edits of one list touching the same text.
	ErrOverlappingEdits = errors.New("overlapping edits")
)

// Document holds the text of one file.
type Document struct {
	mu      sync.RWMutex
	path    string
	text    []byte
	lineIdx []uint32 // offsets of '\n'
	version int
}

// New copies text into a new document.
func New(path string, text []byte) *Document {
	d := &Document{path: path}
	d.setText(append([]byte(nil), text...))
	return d
}

// FromFile builds a document over the normalized content of f.
func FromFile(f *source.File) *Document {
	return New(f.Path, f.Content)
}

func (d *Document) RLock()   { d.mu.RLock() }
func (d *Document) RUnlock() { d.mu.RUnlock() }

func (d *Document) Path() string { return d.path }

// Version counts applied edit lists and SetText calls.
func (d *Document) Version() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Len returns the text length. Callers hold the read lock.
func (d *Document) Len() int { return len(d.text) }

// Bytes returns the full text. The slice must not be modified or retained
// past the read-locked region.
func (d *Document) Bytes() []byte { return d.text }

// Text returns n bytes from off. Callers hold the read lock.
func (d *Document) Text(off, n int) (string, error) {
	if off < 0 || n < 0 || off+n > len(d.text) {
		return "", fmt.Errorf("%w: %d+%d beyond length %d", ErrStaleEdit, off, n, len(d.text))
	}
	return string(d.text[off : off+n]), nil
}

// LineStart returns the offset of the first byte of the line containing off.
func (d *Document) LineStart(off int) int {
	o := d.clamp(off)
	i := sort.Search(len(d.lineIdx), func(i int) bool { return d.lineIdx[i] >= o })
	if i == 0 {
		return 0
	}
	return int(d.lineIdx[i-1]) + 1
}

// LineEnd returns the offset of the line break ending the line of off, or
// the text length on the last line.
func (d *Document) LineEnd(off int) int {
	o := d.clamp(off)
	i := sort.Search(len(d.lineIdx), func(i int) bool { return d.lineIdx[i] >= o })
	if i == len(d.lineIdx) {
		return len(d.text)
	}
	return int(d.lineIdx[i])
}

func (d *Document) clamp(off int) uint32 {
	if off > len(d.text) {
		off = len(d.text)
	}
	o, err := safecast.Conv[uint32](off)
	if err != nil {
		return 0
	}
	return o
}

// SetText replaces the whole text, as after a full LSP sync.
func (d *Document) SetText(text []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setText(append([]byte(nil), text...))
	d.version++
}

func (d *Document) setText(text []byte) {
	d.text = text
	d.lineIdx = d.lineIdx[:0]
	for i, b := range text {
		if b == '\n' {
			d.lineIdx = append(d.lineIdx, uint32(i))
		}
	}
}

// Edits starts an edit list against the current text.
func (d *Document) Edits() *EditList {
	return &EditList{doc: d}
}

type edit struct {
	start  int
	length int
	text   string
	seq    int
	old    string
	check  bool
}

// EditList collects replacements against offsets of the text as it is now.
// Offsets of later entries are not shifted by earlier ones.
type EditList struct {
	doc   *Document
	edits []edit
}

// Replace records replacing length bytes at start with text. Errors are
// reported by Apply.
func (l *EditList) Replace(start, length int, text string) *EditList {
	l.edits = append(l.edits, edit{start: start, length: length, text: text, seq: len(l.edits)})
	return l
}

// ReplaceExpect is Replace that also requires the replaced bytes to equal old
// when Apply runs.
func (l *EditList) ReplaceExpect(start, length int, old, text string) *EditList {
	l.edits = append(l.edits, edit{start: start, length: length, text: text, seq: len(l.edits), old: old, check: true})
	return l
}

// Len returns the number of recorded edits.
func (l *EditList) Len() int { return len(l.edits) }

// Apply validates every edit and then applies all of them under the write
// lock, last offset first. Nothing changes when validation fails.
func (l *EditList) Apply() error {
	d := l.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	edits := make([]edit, len(l.edits))
	copy(edits, l.edits)
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].start < edits[j].start })
	for i, e := range edits {
		if e.start < 0 || e.length < 0 || e.start+e.length > len(d.text) {
			return fmt.Errorf("%w: %d+%d beyond length %d", ErrStaleEdit, e.start, e.length, len(d.text))
		}
		if e.check && string(d.text[e.start:e.start+e.length]) != e.old {
			return fmt.Errorf("%w: %d+%d is %q, want %q", ErrStaleEdit, e.start, e.length, d.text[e.start:e.start+e.length], e.old)
		}
		if i > 0 {
			prev := edits[i-1]
			if overlaps(prev, e) {
				return fmt.Errorf("%w: %d+%d and %d+%d", ErrOverlappingEdits, prev.start, prev.length, e.start, e.length)
			}
		}
	}

	// Descending start; inserts at one offset keep their recorded order.
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].start != edits[j].start {
			return edits[i].start > edits[j].start
		}
		return edits[i].seq > edits[j].seq
	})
	text := d.text
	for _, e := range edits {
		out := make([]byte, 0, len(text)-e.length+len(e.text))
		out = append(out, text[:e.start]...)
		out = append(out, e.text...)
		out = append(out, text[e.start+e.length:]...)
		text = out
	}
	d.setText(text)
	d.version++
	return nil
}

// overlaps reports whether a (starting no later than b) and b touch the same
// bytes. Two inserts at one offset do not overlap.
func overlaps(a, b edit) bool {
	if a.length == 0 && b.length == 0 {
		return false
	}
	if a.length == 0 {
		return a.start > b.start && a.start < b.start+b.length
	}
	if b.length == 0 {
		return b.start > a.start && b.start < a.start+a.length
	}
	return b.start < a.start+a.length
}

// Buffer adapts the document to diag.Buffer so fixes can apply to it. Each
// call takes the lock it needs.
func (d *Document) Buffer() diag.Buffer { return buffer{d} }

type buffer struct{ d *Document }

func (b buffer) Len() int {
	b.d.RLock()
	defer b.d.RUnlock()
	return b.d.Len()
}

func (b buffer) Slice(start, end int) (string, error) {
	b.d.RLock()
	defer b.d.RUnlock()
	return b.d.Text(start, end-start)
}

func (b buffer) ApplyEdits(edits []diag.TextEdit) error {
	list := b.d.Edits()
	for _, e := range edits {
		start := int(e.Span.Start)
		if e.OldText == "" {
			list.Replace(start, int(e.Span.End)-start, e.NewText)
			continue
		}
		list.ReplaceExpect(start, int(e.Span.End)-start, e.OldText, e.NewText)
	}
	return list.Apply()
}
