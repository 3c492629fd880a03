package diag

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phphint/internal/source"
)

type memBuffer struct {
	text  string
	fail  error
	calls int
}

func (m *memBuffer) Len() int { return len(m.text) }

func (m *memBuffer) Slice(start, end int) (string, error) { return m.text[start:end], nil }

func (m *memBuffer) ApplyEdits(edits []TextEdit) error {
	m.calls++
	if m.fail != nil {
		return m.fail
	}
	out := m.text
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]
		out = out[:e.Span.Start] + e.NewText + out[e.Span.End:]
	}
	m.text = out
	return nil
}

func edit(start, end uint32, newText, oldText string) TextEdit {
	return TextEdit{Span: source.Span{Start: start, End: end}, NewText: newText, OldText: oldText}
}

func TestFixApplyMultiPoint(t *testing.T) {
	buf := &memBuffer{text: "f($a = 1, $b)"}
	fix := &Fix{
		Title: "swap",
		Edits: []TextEdit{
			edit(10, 12, "$a = 1", "$b"),
			edit(2, 8, "$b", "$a = 1"),
		},
	}
	require.NoError(t, fix.Apply(buf))
	assert.Equal(t, "f($b, $a = 1)", buf.text)
	assert.True(t, fix.IsSafe())
	assert.False(t, fix.IsInteractive())
}

func TestFixApplyRejectsStaleText(t *testing.T) {
	buf := &memBuffer{text: "<?php foo();"}
	fix := &Fix{Title: "x", Edits: []TextEdit{edit(11, 12, "", ";;")}}
	err := fix.Apply(buf)
	require.ErrorIs(t, err, ErrStaleFix)
	assert.Zero(t, buf.calls)

	fix = &Fix{Title: "x", Edits: []TextEdit{edit(11, 40, "", "")}}
	require.ErrorIs(t, fix.Apply(buf), ErrStaleFix)
	assert.ErrorIs(t, (&Fix{}).Apply(buf), ErrEmptyFix)
}

func TestFixApplyRejectsOverlap(t *testing.T) {
	buf := &memBuffer{text: "abcdef"}
	fix := &Fix{Title: "x", Edits: []TextEdit{edit(0, 3, "x", ""), edit(2, 4, "y", "")}}
	require.ErrorIs(t, fix.Apply(buf), ErrOverlappingEdits)

	fix = &Fix{Title: "inserts", Edits: []TextEdit{edit(3, 3, "[", ""), edit(3, 3, "]", ""), edit(0, 3, "ABC", "abc")}}
	require.NoError(t, fix.Apply(buf))
}

func TestFixApplySurfacesBufferFailure(t *testing.T) {
	boom := errors.New("document modified externally")
	buf := &memBuffer{text: "abc", fail: boom}
	fix := &Fix{Title: "x", Edits: []TextEdit{edit(0, 1, "z", "a")}}
	err := fix.Apply(buf)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, buf.calls)
}

func TestFixFollowupRuns(t *testing.T) {
	done := make(chan struct{})
	buf := &memBuffer{text: "abc"}
	fix := &Fix{
		Title:    "x",
		Edits:    []TextEdit{edit(0, 0, "z", "")},
		Followup: &Followup{Delay: time.Millisecond, Run: func() { close(done) }},
	}
	require.NoError(t, fix.Apply(buf))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("followup did not run")
	}
}
