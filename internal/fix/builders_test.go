package fix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phphint/internal/diag"
	"phphint/internal/source"
)

func TestInsertTextDefaults(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.php", []byte("<?php foo()"))

	span := source.Span{File: fileID, Start: 11, End: 11}
	f := InsertText("insert semicolon", span, ";", "")

	assert.Equal(t, diag.FixKindQuickFix, f.Kind)
	assert.True(t, f.IsSafe())
	assert.False(t, f.IsInteractive())
	require.Len(t, f.Edits, 1)
	assert.Equal(t, ";", f.Edits[0].NewText)
}

func TestDeleteSpanKeepsGuard(t *testing.T) {
	span := source.Span{Start: 12, End: 13}
	f := DeleteSpan("remove semicolon", span, ";")

	require.Len(t, f.Edits, 1)
	assert.Empty(t, f.Edits[0].NewText)
	assert.Equal(t, ";", f.Edits[0].OldText)
}

func TestMultipleOptions(t *testing.T) {
	span := source.Span{Start: 0, End: 3}
	f := ReplaceSpan("rename", span, "bar", "foo",
		WithID("custom"),
		WithKind(diag.FixKindRefactor),
		WithApplicability(diag.FixApplicabilityManualReview),
		Preferred(),
	)

	assert.Equal(t, "custom", f.ID)
	assert.Equal(t, diag.FixKindRefactor, f.Kind)
	assert.False(t, f.IsSafe())
	assert.True(t, f.IsPreferred)
}

func TestWrapWithProducesTwoInserts(t *testing.T) {
	span := source.Span{Start: 4, End: 9}
	f := WrapWith("wrap", span, "(", ")")

	require.Len(t, f.Edits, 2)
	assert.Equal(t, source.Span{Start: 4, End: 4}, f.Edits[0].Span)
	assert.Equal(t, source.Span{Start: 9, End: 9}, f.Edits[1].Span)
	assert.Equal(t, diag.FixApplicabilitySafeWithHeuristics, f.Applicability)
}

func TestRewriteCopiesEdits(t *testing.T) {
	edits := []diag.TextEdit{{Span: source.Span{Start: 0, End: 1}, NewText: "x"}}
	f := Rewrite("rewrite", edits)
	edits[0].NewText = "changed"
	assert.Equal(t, "x", f.Edits[0].NewText)
}

func TestLineIndent(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.php", []byte("<?php\n    \tfoo();\n"))
	f := fs.Get(id)
	assert.Equal(t, "    \t", LineIndent(f, 12))
	assert.Equal(t, "", LineIndent(f, 2))
}

func TestMakeFixIDIsStable(t *testing.T) {
	span := source.Span{File: 1, Start: 3, End: 4}
	assert.Equal(t, MakeFixID(diag.HintEmptyStatement, span), MakeFixID(diag.HintEmptyStatement, span))
	assert.NotEqual(t, MakeFixID(diag.HintEmptyStatement, span), MakeFixID(diag.HintMissingBraces, span))
}
