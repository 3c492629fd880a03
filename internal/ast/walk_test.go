package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phphint/internal/ast"
	"phphint/internal/parser"
	"phphint/internal/source"
)

func parse(t *testing.T, src string) *ast.File {
	t.Helper()
	res, _ := parser.ParseSource(source.NewFileSet(), "walk.php", src)
	require.Zero(t, res.Bag.Len())
	return res.File
}

const sample = `<?php
function outer($a) {
    $f = function () use ($a) { return $a->run(); };
    return $f;
}
class C {
    public function m() { if (1) { echo 2; } }
}
`

func TestInspectVisitsInSourceOrder(t *testing.T) {
	file := parse(t, sample)
	var last uint32
	var vars []string
	ast.Inspect(file, func(n ast.Node) bool {
		if n == nil {
			return true
		}
		assert.GreaterOrEqual(t, n.Span().Start, last, "%T out of order", n)
		last = n.Span().Start
		if v, ok := n.(*ast.Variable); ok {
			vars = append(vars, v.Name)
		}
		return true
	})
	assert.Equal(t, []string{"a", "f", "a", "a", "f"}, vars)
}

func TestInspectPrunes(t *testing.T) {
	file := parse(t, sample)
	var calls int
	ast.Inspect(file, func(n ast.Node) bool {
		if _, ok := n.(*ast.ClosureExpr); ok {
			return false
		}
		if _, ok := n.(*ast.MethodCallExpr); ok {
			calls++
		}
		return true
	})
	assert.Zero(t, calls)
}

type counter struct {
	enter, leave int
}

func (c *counter) Visit(n ast.Node) ast.Visitor {
	if n == nil {
		c.leave++
	} else {
		c.enter++
	}
	return c
}

func TestWalkBalancesEnterAndLeave(t *testing.T) {
	c := &counter{}
	ast.Walk(c, parse(t, sample))
	assert.Positive(t, c.enter)
	assert.Equal(t, c.enter, c.leave)
}

func TestWalkBoundedStopsAtLimit(t *testing.T) {
	file := parse(t, sample)
	limit := uint32(len("<?php\nfunction outer($a) {\n    $f"))
	var maxStart uint32
	var seen int
	ast.WalkBounded(visitFunc(func(n ast.Node) {
		seen++
		if n.Span().Start > maxStart {
			maxStart = n.Span().Start
		}
	}), file, limit)
	assert.Positive(t, seen)
	assert.Less(t, maxStart, limit)

	var classes int
	ast.WalkBounded(visitFunc(func(n ast.Node) {
		if _, ok := n.(*ast.ClassDecl); ok {
			classes++
		}
	}), file, limit)
	assert.Zero(t, classes)
}

type visitFunc func(ast.Node)

func (f visitFunc) Visit(n ast.Node) ast.Visitor {
	if n != nil {
		f(n)
	}
	return f
}

type pathRecorder struct {
	echoPath []ast.Node
	retFunc  ast.Node
}

func (r *pathRecorder) Visit(n ast.Node, path *ast.Path) ast.PathVisitor {
	switch n.(type) {
	case *ast.EchoStmt:
		r.echoPath = path.Nodes()
	case *ast.ReturnStmt:
		if r.retFunc == nil {
			r.retFunc = path.Find(ast.IsFunctionBoundary, nil)
		}
	}
	return r
}

func TestWalkPathAncestors(t *testing.T) {
	file := parse(t, sample)
	r := &pathRecorder{}
	ast.WalkPath(r, file)

	require.NotEmpty(t, r.echoPath)
	assert.Same(t, file, r.echoPath[0])
	var sawMethod, sawIf bool
	for _, n := range r.echoPath {
		switch n.(type) {
		case *ast.MethodDecl:
			sawMethod = true
		case *ast.IfStmt:
			sawIf = true
		}
	}
	assert.True(t, sawMethod)
	assert.True(t, sawIf)

	_, ok := r.retFunc.(*ast.ClosureExpr)
	assert.True(t, ok, "innermost function of the first return is the closure, got %T", r.retFunc)
}

func TestPathFindStops(t *testing.T) {
	var p *ast.Path
	assert.Zero(t, p.Len())
	assert.Nil(t, p.Parent())

	blk := &ast.BlockStmt{}
	fn := &ast.FuncDecl{}
	cls := &ast.ClassDecl{}
	p = p.Push(cls).Push(fn).Push(blk)
	assert.Equal(t, 3, p.Len())
	assert.Same(t, blk, p.Parent())
	assert.Same(t, fn, p.Up().Parent())

	isClass := func(n ast.Node) bool { _, ok := n.(*ast.ClassDecl); return ok }
	assert.Same(t, cls, p.Find(isClass, nil))
	assert.Nil(t, p.Find(isClass, ast.IsFunctionBoundary))
}

func TestEachChildPanicsOnUnknownNode(t *testing.T) {
	assert.Panics(t, func() { ast.EachChild(foreign{}, func(ast.Node) {}) })
}

type foreign struct{}

func (foreign) Span() source.Span { return source.Span{} }
