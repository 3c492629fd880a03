package document

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phphint/internal/diag"
	"phphint/internal/source"
)

func TestLineQueries(t *testing.T) {
	d := New("a.php", []byte("<?php\nfoo();\n\nbar();"))
	d.RLock()
	defer d.RUnlock()

	assert.Equal(t, 0, d.LineStart(3))
	assert.Equal(t, 5, d.LineEnd(3))
	assert.Equal(t, 6, d.LineStart(8))
	assert.Equal(t, 12, d.LineEnd(8))
	assert.Equal(t, 6, d.LineStart(12), "the line break belongs to its line")
	assert.Equal(t, 13, d.LineStart(13))
	assert.Equal(t, 13, d.LineEnd(13))
	assert.Equal(t, d.Len(), d.LineEnd(15))
	assert.Equal(t, d.Len(), d.LineEnd(1000))

	s, err := d.Text(6, 5)
	require.NoError(t, err)
	assert.Equal(t, "foo()", s)
	_, err = d.Text(18, 10)
	assert.ErrorIs(t, err, ErrStaleEdit)
}

func TestEditListAppliesAgainstOriginalOffsets(t *testing.T) {
	d := New("a.php", []byte("function foo($a = 1, $b) {}"))
	err := d.Edits().
		Replace(13, 6, "$b").
		Replace(21, 2, "$a = 1").
		Apply()
	require.NoError(t, err)
	assert.Equal(t, "function foo($b, $a = 1) {}", string(d.Bytes()))
	assert.Equal(t, 1, d.Version())
}

func TestEditListInsertsAtSameOffsetKeepOrder(t *testing.T) {
	d := New("a.php", []byte("ab"))
	require.NoError(t, d.Edits().Replace(1, 0, "X").Replace(1, 0, "Y").Apply())
	assert.Equal(t, "aXYb", string(d.Bytes()))
}

func TestEditListRejects(t *testing.T) {
	d := New("a.php", []byte("0123456789"))

	err := d.Edits().Replace(2, 4, "x").Replace(4, 2, "y").Apply()
	assert.True(t, errors.Is(err, ErrOverlappingEdits))

	err = d.Edits().Replace(8, 5, "x").Apply()
	assert.True(t, errors.Is(err, ErrStaleEdit))

	assert.Equal(t, "0123456789", string(d.Bytes()), "failed lists leave the text alone")
	assert.Zero(t, d.Version())
}

func TestBufferImplementsFixTarget(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.php", []byte("<?php foo();; ?>"))
	f := fs.Get(id)
	d := FromFile(f)

	fix := &diag.Fix{
		Title: "remove empty statement",
		Edits: []diag.TextEdit{{Span: source.Span{File: id, Start: 12, End: 13}, NewText: "", OldText: ";"}},
	}
	require.NoError(t, fix.Apply(d.Buffer()))
	assert.Equal(t, "<?php foo(); ?>", string(d.Bytes()))

	err := fix.Apply(d.Buffer())
	assert.ErrorIs(t, err, diag.ErrStaleFix)
}

func TestEditListChecksExpectedText(t *testing.T) {
	d := New("a.php", []byte("0123456789"))

	err := d.Edits().ReplaceExpect(2, 2, "23", "x").ReplaceExpect(6, 1, "9", "y").Apply()
	assert.ErrorIs(t, err, ErrStaleEdit)
	assert.Equal(t, "0123456789", string(d.Bytes()))

	require.NoError(t, d.Edits().ReplaceExpect(2, 2, "23", "x").Apply())
	assert.Equal(t, "01x456789", string(d.Bytes()))
}

// racingBuffer rewrites the document between validation and application.
type racingBuffer struct {
	diag.Buffer
	doc  *Document
	next string
}

func (b racingBuffer) ApplyEdits(edits []diag.TextEdit) error {
	b.doc.SetText([]byte(b.next))
	return b.Buffer.ApplyEdits(edits)
}

func TestFixFailsWhenTextChangesBeforeApply(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.php", []byte("<?php bar();;"))
	d := FromFile(fs.Get(id))

	fix := &diag.Fix{
		Title: "remove empty statement",
		Edits: []diag.TextEdit{{Span: source.Span{File: id, Start: 12, End: 13}, OldText: ";"}},
	}
	buf := racingBuffer{Buffer: d.Buffer(), doc: d, next: "<?php bar();x"}

	err := fix.Apply(buf)
	assert.ErrorIs(t, err, ErrStaleEdit)
	assert.Equal(t, "<?php bar();x", string(d.Bytes()))
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	d := New("a.php", []byte("x"))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				d.RLock()
				_ = d.LineEnd(0)
				_, _ = d.Text(0, 1)
				d.RUnlock()
			}
		}()
	}
	for j := 0; j < 100; j++ {
		require.NoError(t, d.Edits().Replace(0, 1, "y").Apply())
	}
	wg.Wait()
	assert.Equal(t, 100, d.Version())
}
