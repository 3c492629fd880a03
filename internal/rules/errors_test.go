package rules_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phphint/internal/phpver"
	"phphint/internal/rules"
)

func TestAbstractInstantiation(t *testing.T) {
	src := `<?php
abstract class A {}
interface I {}
trait T {}
class C {}
new A;
new I();
new T();
new C();
new class {};
`
	env, got := check(t, &rules.AbstractInstantiation{}, phpver.Latest, src)
	require.Len(t, got, 3)
	assert.Equal(t, "Cannot instantiate abstract class A", got[0].Message)
	assert.Equal(t, "Cannot instantiate interface I", got[1].Message)
	assert.Equal(t, "Cannot instantiate trait T", got[2].Message)
	assert.Equal(t, "A", spanText(env, got[0]))
	require.Len(t, got[0].Notes, 1)
	assert.Equal(t, uint32(strings.Index(src, "A {}")), got[0].Notes[0].Span.Start)
}

func TestAbstractInstantiationAcrossFiles(t *testing.T) {
	dep := `<?php
namespace Lib;
abstract class Base {}
class Impl extends Base {}
`
	src := `<?php
use Lib\Base;
use Lib\Impl;
new Base();
new Impl();
new \Lib\Base();
`
	_, got := check(t, &rules.AbstractInstantiation{}, phpver.Latest, src, dep)
	require.Len(t, got, 2)
	for _, d := range got {
		assert.Equal(t, "Cannot instantiate abstract class Base", d.Message)
		assert.Empty(t, d.Notes, "the declaration lives in another file")
	}
}

func TestAbstractInstantiationIgnoresStatic(t *testing.T) {
	src := `<?php
abstract class A {
    static function make() { return new static(); }
}
`
	_, got := check(t, &rules.AbstractInstantiation{}, phpver.Latest, src)
	assert.Empty(t, got)
}

func TestThisInStaticContext(t *testing.T) {
	src := `<?php
class A {
    public $x;
    static function s() { return $this->x; }
    function m() { return $this->x; }
    function c() {
        $f = static function () { return $this; };
        $g = function () { return $this; };
        $h = static fn() => $this;
        return self::$this ?? null;
    }
}
`
	_, got := check(t, &rules.ThisInStaticContext{}, phpver.Latest, src)
	require.Len(t, got, 3)
	for _, d := range got {
		assert.Equal(t, "Cannot use $this in a static context", d.Message)
	}
	assert.Equal(t, uint32(strings.Index(src, "$this->x")), got[0].Primary.Start)
}

func TestLoopOnlyKeyword(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"top level", `<?php break;`, []string{"'break' not in the 'loop' or 'switch' context"}},
		{"inside loop", `<?php while (true) { break; }`, nil},
		{"continue in switch", `<?php switch ($x) { case 1: continue; }`, nil},
		{"too deep", `<?php while (true) { break 2; }`, []string{"Cannot 'break' 2 levels"}},
		{"two levels", `<?php foreach ($a as $v) { switch ($v) { case 1: continue 2; } }`, nil},
		{"zero", `<?php for (;;) { break 0; }`, []string{"'break' operator accepts only positive integers"}},
		{"function boundary", `<?php while (true) { function f() { continue; } }`,
			[]string{"'continue' not in the 'loop' or 'switch' context"}},
		{"closure boundary", `<?php do { $f = function () { break; }; } while (true);`,
			[]string{"'break' not in the 'loop' or 'switch' context"}},
		{"dynamic level", `<?php while (true) { break $n; }`,
			[]string{"'break' operator with non-integer operand is not supported"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := check(t, &rules.LoopOnlyKeyword{}, phpver.Latest, tt.src)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, messages(got))
		})
	}
}

func TestInterfaceConstantOverride(t *testing.T) {
	src := `<?php
interface I { const X = 1; const Y = 2; }
interface J extends I {}
class P { const Z = 3; }
class A extends P implements J {
    const X = 10;
    const Z = 30;
}
`
	_, got := check(t, &rules.InterfaceConstantOverride{}, phpver.PHP80, src)
	require.Len(t, got, 1)
	assert.Equal(t, "Cannot override constant X inherited from interface I", got[0].Message)
	assert.Equal(t, uint32(strings.Index(src, "X = 10")), got[0].Primary.Start)
	require.Len(t, got[0].Notes, 1)

	_, got = check(t, &rules.InterfaceConstantOverride{}, phpver.PHP81, src)
	assert.Empty(t, got, "PHP 8.1 allows overriding interface constants")
}

func TestConstantRedeclaration(t *testing.T) {
	src := `<?php
const A = 1;
const A = 2;
define('B', 1);
define('B', 2);
if ($x) { define('D', 1); } else { define('D', 2); }
class C { const X = 1; const X = 2; const x = 3; }
enum E { case One; case One; }
`
	env, got := check(t, &rules.ConstantRedeclaration{}, phpver.Latest, src)
	assert.Equal(t, []string{
		"Constant A is already declared",
		"Constant B is already declared",
		"Constant C::X is already declared",
		"Constant E::One is already declared",
	}, messages(got))
	assert.Equal(t, "A", spanText(env, got[0]))
	assert.Equal(t, uint32(strings.Index(src, "A = 1")), got[0].Notes[0].Span.Start)
	assert.Equal(t, "'B'", spanText(env, got[1]))
}

func TestFieldRedeclaration(t *testing.T) {
	src := `<?php
class A { public $a; private $a; protected $A; }
class B {
    private $x;
    public function __construct(private $x, $y) {}
}
`
	_, got := check(t, &rules.FieldRedeclaration{}, phpver.Latest, src)
	assert.Equal(t, []string{
		"Field A::$a is already declared",
		"Field B::$x is already declared",
	}, messages(got))
}

func TestMethodRedeclarationFirstWins(t *testing.T) {
	src := `<?php
class A {
    function run() {}
    function RUN() {}
    function Run() {}
}
`
	env, got := check(t, &rules.MethodRedeclaration{}, phpver.Latest, src)
	require.Len(t, got, 2)
	first := uint32(strings.Index(src, "run()"))
	for _, d := range got {
		require.Len(t, d.Notes, 1)
		assert.Equal(t, first, d.Notes[0].Span.Start, "every duplicate points at the first declaration")
	}
	assert.Equal(t, "RUN", spanText(env, got[0]))
	assert.Equal(t, "Run", spanText(env, got[1]))
}

func TestFunctionsInBranchesAreExempt(t *testing.T) {
	conditional := `<?php
if (PHP_VERSION_ID > 80000) {
    function polyfill() {}
} else {
    function polyfill() {}
}
`
	_, got := check(t, &rules.MethodRedeclaration{}, phpver.Latest, conditional)
	assert.Empty(t, got)

	plain := `<?php
function f() {}
function F() {}
`
	_, got = check(t, &rules.MethodRedeclaration{}, phpver.Latest, plain)
	assert.Len(t, got, 1)

	// methods are not exempt: a class body is never conditional in itself
	methods := `<?php
if ($x) {
    class A { function m() {} function m() {} }
}
`
	_, got = check(t, &rules.MethodRedeclaration{}, phpver.Latest, methods)
	assert.Len(t, got, 1)
}

func TestTypeRedeclaration(t *testing.T) {
	src := `<?php
namespace App;
class A {}
interface a {}
if ($x) { class B {} } else { class B {} }
`
	_, got := check(t, &rules.TypeRedeclaration{}, phpver.Latest, src)
	require.Len(t, got, 1)
	assert.Equal(t, "Cannot declare interface A, the name is already in use", got[0].Message)
}
