package model_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phphint/internal/ast"
	"phphint/internal/model"
	"phphint/internal/parser"
	"phphint/internal/source"
)

func build(t *testing.T, fs *source.FileSet, name, src string) (*model.FileScope, *ast.File) {
	t.Helper()
	res, f := parser.ParseSource(fs, name, src)
	require.NotNil(t, res.File)
	require.Zero(t, res.Bag.Len(), "unexpected syntax errors in %s", name)
	return model.Build(f.ID, res.File), res.File
}

func offsetOf(t *testing.T, src, needle string) uint32 {
	t.Helper()
	i := strings.Index(src, needle)
	require.GreaterOrEqual(t, i, 0, "%q not in source", needle)
	return uint32(i)
}

func TestBuildNilFile(t *testing.T) {
	assert.Nil(t, model.Build(1, nil))
	var fs *model.FileScope
	assert.Nil(t, fs.ScopeAt(0))
	assert.Equal(t, "", fs.ResolveClassName(&ast.Name{Parts: []string{"A"}}, 0))
}

func TestScopeAtAndStaticContext(t *testing.T) {
	src := `<?php
class A {
    public static function s() {
        $f = function () { return 1; };
        $g = static fn() => 2;
    }
    public function i() {
        $h = static function () { return 3; };
        $k = function () { return 4; };
    }
}
function top() { return 5; }
`
	fs, _ := build(t, source.NewFileSet(), "a.php", src)

	cases := []struct {
		needle string
		kind   model.ScopeKind
		static bool
	}{
		{"return 1", model.ScopeClosure, true},
		{"2;", model.ScopeArrowFunc, true},
		{"return 3", model.ScopeClosure, true},
		{"return 4", model.ScopeClosure, false},
		{"return 5", model.ScopeFunction, false},
		{"class A", model.ScopeClass, false},
	}
	for _, tc := range cases {
		s := fs.ScopeAt(offsetOf(t, src, tc.needle))
		require.NotNil(t, s, tc.needle)
		assert.Equal(t, tc.kind, s.Kind, tc.needle)
		assert.Equal(t, tc.static, s.InStaticContext(), tc.needle)
	}

	s := fs.ScopeAt(offsetOf(t, src, "return 4"))
	require.NotNil(t, s.Class)
	assert.Equal(t, "A", s.Class.FQN)
	assert.Same(t, s, s.Function())
	assert.Equal(t, model.ScopeFile, fs.ScopeAt(0).Kind)
	assert.Nil(t, fs.ScopeAt(0).Function())
}

func TestResolveClassName(t *testing.T) {
	src := `<?php
namespace App\Http;

use Lib\Base as Parent_;
use Lib\{Util, Sub\Other};

class Controller extends Parent_ {
    function run() {
        new self; new parent; new Util; new Other\Deep; new \Root; new Local; new namespace\Rel;
    }
}
`
	fs, _ := build(t, source.NewFileSet(), "c.php", src)
	off := offsetOf(t, src, "new self")

	name := func(kind ast.NameKind, parts ...string) *ast.Name {
		return &ast.Name{Kind: kind, Parts: parts}
	}
	assert.Equal(t, `App\Http\Controller`, fs.ResolveClassName(name(ast.NameUnqualified, "self"), off))
	assert.Equal(t, `App\Http\Controller`, fs.ResolveClassName(name(ast.NameUnqualified, "STATIC"), off))
	assert.Equal(t, `Lib\Base`, fs.ResolveClassName(name(ast.NameUnqualified, "parent"), off))
	assert.Equal(t, `Lib\Util`, fs.ResolveClassName(name(ast.NameUnqualified, "util"), off))
	assert.Equal(t, `Lib\Sub\Other\Deep`, fs.ResolveClassName(name(ast.NameQualified, "Other", "Deep"), off))
	assert.Equal(t, `Root`, fs.ResolveClassName(name(ast.NameFullyQualified, "Root"), off))
	assert.Equal(t, `App\Http\Local`, fs.ResolveClassName(name(ast.NameUnqualified, "Local"), off))
	assert.Equal(t, `App\Http\Rel`, fs.ResolveClassName(name(ast.NameRelative, "Rel"), off))

	require.Len(t, fs.Types, 1)
	assert.Equal(t, []string{`Lib\Base`}, fs.Types[0].Extends)
	assert.NotNil(t, fs.Type(`\app\http\controller`))
}

func TestSelfOutsideClassStaysUnresolved(t *testing.T) {
	fs, _ := build(t, source.NewFileSet(), "s.php", "<?php\nfunction f() { new self; }\n")
	assert.Equal(t, "self", fs.ResolveClassName(&ast.Name{Parts: []string{"self"}}, 20))
}

func TestHasFunction(t *testing.T) {
	src := `<?php
namespace App;
use function Lib\helper as h;
function local() {}
function main() { local(); }
`
	fs, _ := build(t, source.NewFileSet(), "f.php", src)
	off := offsetOf(t, src, "local();")

	assert.True(t, fs.HasFunction(&ast.Name{Parts: []string{"LOCAL"}}, off))
	assert.True(t, fs.HasFunction(&ast.Name{Kind: ast.NameFullyQualified, Parts: []string{"App", "local"}}, off))
	assert.False(t, fs.HasFunction(&ast.Name{Parts: []string{"h"}}, off), "imported from elsewhere")
	assert.False(t, fs.HasFunction(&ast.Name{Parts: []string{"missing"}}, off))
}

func TestMemIndex(t *testing.T) {
	fset := source.NewFileSet()
	base, _ := build(t, fset, "base.php", `<?php
namespace Lib;
interface I { const A = 1; }
interface J extends I { const B = 2; }
abstract class Base implements J { const C = 3; }
`)
	child, _ := build(t, fset, "child.php", `<?php
namespace App;
class Child extends \Lib\Base { const A = 10; }
`)

	ix := model.NewMemIndex()
	ix.Put(base)
	ix.Put(child)
	assert.Equal(t, 2, ix.Len())

	got := ix.Classes(model.Exact, `\lib\base`)
	require.Len(t, got, 1)
	assert.True(t, got[0].Abstract)
	assert.False(t, got[0].Instantiable())

	prefix := ix.Classes(model.Prefix, `Lib\`)
	var names []string
	for _, ti := range prefix {
		names = append(names, ti.FQN)
	}
	assert.Equal(t, []string{`Lib\Base`, `Lib\I`, `Lib\J`}, names)

	childType := ix.Classes(model.Exact, `App\Child`)
	require.Len(t, childType, 1)
	var inherited []string
	for _, c := range ix.InheritedTypeConstants(childType[0]) {
		inherited = append(inherited, c.Owner.FQN+"::"+c.Name)
	}
	assert.Equal(t, []string{`Lib\Base::C`, `Lib\J::B`, `Lib\I::A`}, inherited)

	ix.Remove(base.File)
	assert.Empty(t, ix.Classes(model.Exact, `Lib\Base`))
	assert.Empty(t, ix.InheritedTypeConstants(childType[0]))
	assert.Nil(t, ix.InheritedTypeConstants(nil))
}

func TestInheritanceCycleTerminates(t *testing.T) {
	fs, _ := build(t, source.NewFileSet(), "cyc.php", `<?php
interface A extends B { const X = 1; }
interface B extends A { const Y = 2; }
`)
	ix := model.NewMemIndex()
	ix.Put(fs)
	a := ix.Classes(model.Exact, "A")
	require.Len(t, a, 1)
	consts := ix.InheritedTypeConstants(a[0])
	require.Len(t, consts, 1)
	assert.Equal(t, "Y", consts[0].Name)
}
