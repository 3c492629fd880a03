package rule_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phphint/internal/ast"
	"phphint/internal/diag"
	"phphint/internal/phpver"
	"phphint/internal/rule"
	"phphint/internal/source"
	"phphint/internal/testkit"
)

func span(start, end uint32) source.Span { return source.Span{File: 1, Start: start, End: end} }

func TestFirstWins(t *testing.T) {
	decls := []rule.Decl{
		{Name: "run", Span: span(10, 13)},
		{Name: "stop", Span: span(20, 24)},
		{Name: "Run", Span: span(30, 33)},
		{Name: "run", Span: span(40, 43)},
		{Name: "RUN", Span: span(5, 8)},
	}

	got := rule.FirstWins(decls, false)
	require.Len(t, got, 1)
	assert.Equal(t, uint32(40), got[0].Span.Start)
	assert.Equal(t, uint32(10), got[0].First.Span.Start)

	got = rule.FirstWins(decls, true)
	require.Len(t, got, 3)
	for _, r := range got {
		assert.Equal(t, "RUN", r.First.Name, "the earliest offset wins, not the first in the list")
	}
	assert.Equal(t, []uint32{10, 30, 40}, []uint32{got[0].Span.Start, got[1].Span.Start, got[2].Span.Start})

	assert.Empty(t, rule.FirstWins(nil, true))
}

func TestConditionalRanges(t *testing.T) {
	src := `<?php
function a() {}
if ($x) { function b() {} } elseif ($y) { function c() {} } else { function d() {} }
switch ($x) { case 1: function e() {} }
`
	env := testkit.Parse("test.php", src)
	ranges := rule.ConditionalRanges(context.Background(), env.Parse.File)

	decl := func(name string) source.Span {
		var sp source.Span
		ast.Inspect(env.Parse.File, func(n ast.Node) bool {
			if f, ok := n.(*ast.FuncDecl); ok && f.Name.Name == name {
				sp = f.Span()
			}
			return true
		})
		require.False(t, sp.Empty(), name)
		return sp
	}
	assert.False(t, ranges.Encloses(decl("a")))
	for _, name := range []string{"b", "c", "d", "e"} {
		assert.True(t, ranges.Encloses(decl(name)), name)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, rule.ConditionalRanges(ctx, env.Parse.File))
}

func TestSuppressions(t *testing.T) {
	src := `<?php
foo();; // phphint-ignore empty-statement
bar();
// phphint-ignore HNT4005, unused-use
if ($a) x();
baz();
`
	env := testkit.Parse("test.php", src)
	s := env.Context(phpver.Latest).Suppressions()
	require.Equal(t, 3, s.Len(), "a trailing comment covers one line, an own-line comment two")

	at := func(needle string) source.Span {
		off := uint32(strings.Index(src, needle))
		return source.Span{File: env.File.ID, Start: off, End: off + 1}
	}
	assert.True(t, s.Suppressed(diag.HintEmptyStatement, at(";;")))
	assert.False(t, s.Suppressed(diag.HintMissingBraces, at(";;")))
	assert.False(t, s.Suppressed(diag.HintEmptyStatement, at("bar")), "a trailing comment stops at its line")
	assert.True(t, s.Suppressed(diag.HintMissingBraces, at("x()")))
	assert.True(t, s.Suppressed(diag.HintUnusedUse, at("x()")))
	assert.False(t, s.Suppressed(diag.HintMissingBraces, at("baz")))
}

func TestFileSuppressions(t *testing.T) {
	src := "<?php\n/* phphint-ignore-file missing-braces */\nif ($a) x();\n"
	env := testkit.Parse("test.php", src)
	s := rule.ParseSuppressions(env.File, env.Parse.Tokens)
	sp := source.Span{File: env.File.ID, Start: uint32(len(src) - 2), End: uint32(len(src) - 1)}
	assert.True(t, s.Suppressed(diag.HintMissingBraces, sp))
	assert.False(t, s.Suppressed(diag.HintEmptyStatement, sp))

	all := testkit.Parse("test.php", "<?php\n// phphint-ignore-file\nfoo();;\n")
	s = rule.ParseSuppressions(all.File, all.Parse.Tokens)
	assert.True(t, s.Suppressed(diag.SugArraySyntax, source.Span{File: all.File.ID, Start: 30, End: 31}))

	var none *rule.Suppressions
	assert.False(t, none.Suppressed(diag.HintEmptyStatement, sp))
	assert.Zero(t, none.Len())
}

func TestRegistry(t *testing.T) {
	mk := func(code diag.Code, kind rule.Kind) rule.Rule {
		return rule.Func{M: rule.Meta{Code: code, Kind: kind}, Fn: func(context.Context, *rule.Context, diag.Reporter) {}}
	}
	reg := rule.NewRegistry(
		mk(diag.SugArraySyntax, rule.KindSuggestion),
		mk(diag.HintEmptyStatement, rule.KindHint),
		mk(diag.ErrAbstractInstantiation, rule.KindError),
	)
	assert.Equal(t, 3, reg.Len())
	assert.Len(t, reg.ByKind(rule.KindHint), 1)
	assert.Empty(t, reg.ByKind(rule.Kind(9)))

	err := reg.Add(mk(diag.HintEmptyStatement, rule.KindHint))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HNT4001")

	r, ok := reg.Lookup(diag.ErrAbstractInstantiation)
	require.True(t, ok)
	assert.Equal(t, rule.KindError, r.Meta().Kind)
	_, ok = reg.Lookup(diag.HintMissingBraces)
	assert.False(t, ok)

	metas := reg.Metas()
	require.Len(t, metas, 3)
	assert.Equal(t, diag.ErrAbstractInstantiation, metas[0].Code)
	assert.Equal(t, diag.SugArraySyntax, metas[2].Code)

	assert.Panics(t, func() {
		rule.NewRegistry(mk(diag.SugArraySyntax, rule.KindSuggestion), mk(diag.SugArraySyntax, rule.KindSuggestion))
	})
}

func TestFuncSkipsUnreadyContexts(t *testing.T) {
	calls := 0
	f := rule.Func{Fn: func(context.Context, *rule.Context, diag.Reporter) { calls++ }}
	sink := diag.BagReporter{Bag: diag.NewBag(0)}

	f.Invoke(context.Background(), nil, sink)
	f.Invoke(context.Background(), &rule.Context{}, sink)
	assert.Zero(t, calls)

	env := testkit.Parse("test.php", "<?php foo();")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.Invoke(ctx, env.Context(phpver.Latest), sink)
	assert.Zero(t, calls)

	f.Invoke(context.Background(), env.Context(phpver.Latest), sink)
	assert.Equal(t, 1, calls)
}

func TestCaretHelpers(t *testing.T) {
	src := "<?php\nfoo();\nbar(1,\n  2);\n"
	env := testkit.Parse("test.php", src)
	rc := env.Context(phpver.Latest)

	_, ok := rc.CaretOffset()
	assert.False(t, ok, "no caret outside suggestion passes")

	rc.Caret = len(src) + 1
	_, ok = rc.CaretLimit()
	assert.False(t, ok)

	prog := env.Parse.File
	require.Len(t, prog.Stmts, 2)
	foo, bar := prog.Stmts[0], prog.Stmts[1]

	rc.Caret = strings.Index(src, "foo")
	limit, ok := rc.CaretLimit()
	require.True(t, ok)
	assert.Equal(t, uint32(strings.Index(src, "bar")), limit)
	assert.True(t, rc.OnCaretLine(foo))
	assert.False(t, rc.OnCaretLine(bar))

	rc.Caret = strings.Index(src, "2);")
	assert.True(t, rc.OnCaretLine(bar), "multi-line nodes cover every line they span")
	assert.False(t, rc.OnCaretLine(foo))
}

func TestContextTextPrefersTheDocument(t *testing.T) {
	env := testkit.Parse("test.php", "<?php foo();")
	rc := env.Context(phpver.Latest)
	sp := rc.Span(6, 9)
	assert.Equal(t, "foo", rc.Text(sp))

	env.Doc.SetText([]byte("<?php bar();"))
	assert.Equal(t, "bar", rc.Text(sp))

	rc.Doc = nil
	assert.Equal(t, "foo", rc.Text(sp))
	assert.Empty(t, rc.Text(rc.Span(6, 100)))
	assert.Empty(t, rc.Text(rc.Span(9, 6)))
}
