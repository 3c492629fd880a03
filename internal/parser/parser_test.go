package parser_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phphint/internal/ast"
	"phphint/internal/diag"
	"phphint/internal/lexer"
	"phphint/internal/parser"
	"phphint/internal/source"
	"phphint/internal/token"
)

func parse(t *testing.T, src string) (*ast.File, *diag.Bag, *source.File) {
	t.Helper()
	fs := source.NewFileSet()
	res, f := parser.ParseSource(fs, "test.php", src)
	require.NotNil(t, res.File)
	return res.File, res.Bag, f
}

func parseOK(t *testing.T, src string) *ast.File {
	t.Helper()
	file, bag, _ := parse(t, src)
	require.Zero(t, bag.Len(), "unexpected diagnostics: %s", summary(bag))
	return file
}

func summary(bag *diag.Bag) string {
	if bag == nil || bag.Len() == 0 {
		return "<none>"
	}
	lines := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		lines = append(lines, fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message))
	}
	return strings.Join(lines, "; ")
}

func firstExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	file := parseOK(t, src)
	require.NotEmpty(t, file.Stmts)
	es, ok := file.Stmts[0].(*ast.ExprStmt)
	require.True(t, ok, "got %T", file.Stmts[0])
	return es.X
}

func text(f *source.File, n ast.Node) string {
	sp := n.Span()
	return string(f.Content[sp.Start:sp.End])
}

func TestPrecedence(t *testing.T) {
	x := firstExpr(t, "<?php $a + $b * $c;")
	bin, ok := x.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.Plus, bin.Op)
	inner, ok := bin.Y.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.Star, inner.Op)
}

func TestPowIsRightAssociative(t *testing.T) {
	x := firstExpr(t, "<?php 2 ** 3 ** 2;")
	bin := x.(*ast.BinaryExpr)
	_, ok := bin.X.(*ast.IntLit)
	assert.True(t, ok)
	_, ok = bin.Y.(*ast.BinaryExpr)
	assert.True(t, ok)
}

func TestUnaryMinusBindsLooserThanPow(t *testing.T) {
	x := firstExpr(t, "<?php -2 ** 2;")
	u, ok := x.(*ast.UnaryExpr)
	require.True(t, ok)
	_, ok = u.X.(*ast.BinaryExpr)
	assert.True(t, ok)
}

func TestNotAppliesToAssignment(t *testing.T) {
	x := firstExpr(t, "<?php !$a = foo();")
	u, ok := x.(*ast.UnaryExpr)
	require.True(t, ok)
	_, ok = u.X.(*ast.AssignExpr)
	assert.True(t, ok)
}

func TestAssignmentInCondition(t *testing.T) {
	file := parseOK(t, "<?php if ($a = 1) { echo 1; }")
	s := file.Stmts[0].(*ast.IfStmt)
	a, ok := s.Cond.(*ast.AssignExpr)
	require.True(t, ok)
	assert.Equal(t, token.Assign, a.Op)
}

func TestLogicalKeywordsBindLooserThanAssignment(t *testing.T) {
	x := firstExpr(t, "<?php $a = $b and $c;")
	bin, ok := x.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.KwAnd, bin.Op)
	_, ok = bin.X.(*ast.AssignExpr)
	assert.True(t, ok)
}

func TestTernaryAndCoalesce(t *testing.T) {
	x := firstExpr(t, "<?php $a ?: $b ?? $c;")
	tern, ok := x.(*ast.TernaryExpr)
	require.True(t, ok)
	assert.Nil(t, tern.Then)
	co, ok := tern.Else.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.Coalesce, co.Op)
}

func TestCallChain(t *testing.T) {
	x := firstExpr(t, "<?php $this->foo()?->bar[0]::BAZ;")
	c, ok := x.(*ast.ClassConstFetchExpr)
	require.True(t, ok)
	assert.Equal(t, "BAZ", c.Name.Name)
	ix, ok := c.Class.(*ast.IndexExpr)
	require.True(t, ok)
	pf, ok := ix.X.(*ast.PropertyFetchExpr)
	require.True(t, ok)
	assert.True(t, pf.NullSafe)
	_, ok = pf.Recv.(*ast.MethodCallExpr)
	assert.True(t, ok)
}

func TestStaticForms(t *testing.T) {
	file := parseOK(t, "<?php Foo::bar(); Foo::$x; Foo::class; static::make(...);")
	require.Len(t, file.Stmts, 4)
	_, ok := file.Stmts[0].(*ast.ExprStmt).X.(*ast.StaticCallExpr)
	assert.True(t, ok)
	_, ok = file.Stmts[1].(*ast.ExprStmt).X.(*ast.StaticPropertyFetchExpr)
	assert.True(t, ok)
	cc := file.Stmts[2].(*ast.ExprStmt).X.(*ast.ClassConstFetchExpr)
	assert.Equal(t, "class", cc.Name.Name)
	sc := file.Stmts[3].(*ast.ExprStmt).X.(*ast.StaticCallExpr)
	assert.True(t, sc.Callable)
}

func TestNamedAndSpreadArgs(t *testing.T) {
	x := firstExpr(t, "<?php foo(1, name: 2, ...$rest,);")
	call := x.(*ast.CallExpr)
	require.Len(t, call.Args, 3)
	assert.Nil(t, call.Args[0].Name)
	require.NotNil(t, call.Args[1].Name)
	assert.Equal(t, "name", call.Args[1].Name.Name)
	assert.True(t, call.Args[2].Spread)
}

func TestArrayForms(t *testing.T) {
	x := firstExpr(t, "<?php array(1, 'a' => &$b, ...$c);")
	arr := x.(*ast.ArrayLit)
	assert.False(t, arr.Short)
	require.Len(t, arr.Items, 3)
	assert.NotNil(t, arr.Items[1].Key)
	assert.True(t, arr.Items[1].ByRef)
	assert.True(t, arr.Items[2].Spread)

	x = firstExpr(t, "<?php [, $b] = $pair;")
	as := x.(*ast.AssignExpr)
	pat := as.Lhs.(*ast.ArrayLit)
	require.Len(t, pat.Items, 2)
	assert.Nil(t, pat.Items[0])
}

func TestBadAssignTarget(t *testing.T) {
	_, bag, _ := parse(t, "<?php foo() = 1;")
	require.Equal(t, 1, bag.Len(), summary(bag))
	assert.Equal(t, diag.SynBadAssignTarget, bag.Items()[0].Code)
}

func TestClosuresAndArrowFunctions(t *testing.T) {
	file, bag, f := parse(t, `<?php
$f = static function &($x) use (&$y, $z): int { return $x; };
$g = fn($x) => $x * 2;
`)
	require.Zero(t, bag.Len(), summary(bag))
	c := file.Stmts[0].(*ast.ExprStmt).X.(*ast.AssignExpr).Rhs.(*ast.ClosureExpr)
	assert.True(t, c.Static)
	assert.True(t, c.ByRef)
	require.Len(t, c.Uses, 2)
	assert.True(t, c.Uses[0].ByRef)
	assert.Equal(t, "z", c.Uses[1].Var.Name)
	require.NotNil(t, c.ReturnType)

	a := file.Stmts[1].(*ast.ExprStmt).X.(*ast.AssignExpr).Rhs.(*ast.ArrowFuncExpr)
	assert.Equal(t, "fn($x) => $x * 2", text(f, a))
}

func TestMatch(t *testing.T) {
	x := firstExpr(t, "<?php $r = match ($x) { 1, 2 => 'a', default => 'b', };")
	m := x.(*ast.AssignExpr).Rhs.(*ast.MatchExpr)
	require.Len(t, m.Arms, 2)
	assert.Len(t, m.Arms[0].Conds, 2)
	assert.Nil(t, m.Arms[1].Conds)
}

func TestNewForms(t *testing.T) {
	file := parseOK(t, `<?php
new Foo;
new Foo(1);
new $cls->name;
$o = new class(1) extends Base { public function run() {} };
`)
	n0 := file.Stmts[0].(*ast.ExprStmt).X.(*ast.NewExpr)
	assert.False(t, n0.HasArgs)
	n1 := file.Stmts[1].(*ast.ExprStmt).X.(*ast.NewExpr)
	assert.True(t, n1.HasArgs)
	assert.Len(t, n1.Args, 1)
	n2 := file.Stmts[2].(*ast.ExprStmt).X.(*ast.NewExpr)
	_, ok := n2.Class.(*ast.PropertyFetchExpr)
	assert.True(t, ok)
	n3 := file.Stmts[3].(*ast.ExprStmt).X.(*ast.AssignExpr).Rhs.(*ast.NewExpr)
	cls, ok := n3.Class.(*ast.ClassDecl)
	require.True(t, ok)
	assert.Nil(t, cls.Name)
	assert.Len(t, cls.Args, 1)
	assert.Len(t, cls.Members, 1)
	assert.True(t, n3.HasArgs)
}

func TestStringKinds(t *testing.T) {
	file := parseOK(t, "<?php 'a'; \"b\"; <<<'EOT'\nx\nEOT;\n")
	require.Len(t, file.Stmts, 3)
	kinds := make([]ast.StringKind, 0, 3)
	for _, s := range file.Stmts {
		kinds = append(kinds, s.(*ast.ExprStmt).X.(*ast.StringLit).Kind)
	}
	assert.Equal(t, []ast.StringKind{ast.StringSingle, ast.StringDouble, ast.StringNowdoc}, kinds)
}

func TestCastNormalized(t *testing.T) {
	x := firstExpr(t, "<?php (integer) $a;")
	c := x.(*ast.CastExpr)
	assert.Equal(t, "int", c.Type)
}

func TestMissingSemicolonCarriesFix(t *testing.T) {
	_, bag, f := parse(t, "<?php $a = 1\n$b = 2;")
	require.Equal(t, 1, bag.Len(), summary(bag))
	d := bag.Items()[0]
	assert.Equal(t, diag.SynExpectSemicolon, d.Code)
	require.Len(t, d.Fixes, 1)
	e := d.Fixes[0].Edits[0]
	assert.Equal(t, ";", e.NewText)
	assert.Equal(t, uint32(len("<?php $a = 1")), e.Span.Start)
	assert.Equal(t, e.Span.Start, e.Span.End)
	assert.Equal(t, f.ID, e.Span.File)
}

func TestCloseTagEndsStatement(t *testing.T) {
	file := parseOK(t, "<?php echo 1 ?>\n<p>x</p>")
	require.Len(t, file.Stmts, 2)
	_, ok := file.Stmts[1].(*ast.InlineHTMLStmt)
	assert.True(t, ok)
}

func TestUnclosedDelimiterHasNote(t *testing.T) {
	_, bag, _ := parse(t, "<?php foo(1, 2;")
	require.NotZero(t, bag.Len())
	d := bag.Items()[0]
	assert.Equal(t, diag.SynUnclosedDelimiter, d.Code)
	require.Len(t, d.Notes, 1)
	assert.Equal(t, "opened here", d.Notes[0].Msg)
}

func TestMaxErrors(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("bad.php", []byte("<?php $a = 1\n$b = 2\n$c = 3\n$d = 4;"))
	bag := diag.NewBag(0)
	rep := &diag.BagReporter{Bag: bag}
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: rep})
	res := parser.ParseFile(fs, lx, parser.Options{MaxErrors: 2, Reporter: rep})
	assert.Equal(t, 2, bag.Len())
	assert.Same(t, bag, res.Bag)
}
