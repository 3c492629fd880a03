package rules_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phphint/internal/diag"
	"phphint/internal/phpver"
	"phphint/internal/rules"
	"phphint/internal/testkit"
)

func TestEmptyStatementFixRoundTrip(t *testing.T) {
	src := `<?php foo();; ?>`
	env, got := check(t, &rules.EmptyStatement{}, phpver.Latest, src)
	require.Len(t, got, 1)
	assert.Equal(t, uint32(12), got[0].Primary.Start)
	assert.Equal(t, uint32(13), got[0].Primary.End)
	require.Len(t, got[0].Fixes, 1)
	assert.True(t, got[0].Fixes[0].IsSafe())

	assert.Equal(t, `<?php foo(); ?>`, applyFirst(t, env, got[0]))
	after := env.Reparse()
	assert.Empty(t, testkit.Run(&rules.EmptyStatement{}, after.Context(phpver.Latest)))
}

func TestEmptyStatementPlaces(t *testing.T) {
	src := `<?php
class A {};
while (next($a));
if ($x) { ; }
switch ($x) { case 1: ; break; }
for (;;);
`
	_, got := check(t, &rules.EmptyStatement{}, phpver.Latest, src)
	require.Len(t, got, 3)
	assert.Equal(t, uint32(strings.Index(src, "};")+1), got[0].Primary.Start)
}

func TestEmptyStatementFixIsStale(t *testing.T) {
	env, got := check(t, &rules.EmptyStatement{}, phpver.Latest, `<?php foo();;`)
	require.Len(t, got, 1)

	// the document changed under the finding
	env.Doc.SetText([]byte(`<?php foo();x`))
	err := got[0].Fixes[0].Apply(env.Doc.Buffer())
	require.ErrorIs(t, err, diag.ErrStaleFix)
}

func TestWrongOrderOfArgs(t *testing.T) {
	src := `<?php function f($a = 1, $b, ...$c) {}`
	env, got := check(t, &rules.WrongOrderOfArgs{}, phpver.Latest, src)
	require.Len(t, got, 1)
	d := got[0]
	assert.Equal(t, "Required parameter $b follows optional parameter $a", d.Message)
	assert.Equal(t, "$a = 1, $b, ...$c", spanText(env, d))
	require.Len(t, d.Fixes, 1)
	assert.Equal(t, diag.FixApplicabilityManualReview, d.Fixes[0].Applicability)

	assert.Equal(t, `<?php function f($b, $a = 1, ...$c) {}`, applyFirst(t, env, d))
}

func TestWrongOrderOfArgsEverywhere(t *testing.T) {
	src := `<?php
class A { function m($a = null, $b) {} }
$f = function ($a = [], $b, $c = 2, $d) {};
$g = fn($a = 1, $b) => $b;
function ok($a, $b = 1, ...$rest) {}
`
	env, got := check(t, &rules.WrongOrderOfArgs{}, phpver.Latest, src)
	require.Len(t, got, 3)
	assert.Equal(t, "Required parameter $b follows optional parameter $a", got[1].Message)

	text := applyFirst(t, env, got[1])
	assert.Contains(t, text, `function ($b, $d, $a = [], $c = 2) {}`)
}

func TestUnusedUse(t *testing.T) {
	src := `<?php
namespace App;

use Foo\Bar;
use Foo\Baz;
use Foo\Doc;
use Foo\Sub;
use function Foo\helper;
use const Foo\LIMIT;
use const Foo\OTHER;

/** @var Doc $d */
new Bar();
helper();
echo LIMIT;
Sub\thing();
`
	env, got := check(t, &rules.UnusedUse{}, phpver.Latest, src)
	assert.Equal(t, []string{"Unused use Foo\\Baz", "Unused use const Foo\\OTHER"}, messages(got))

	text := applyFirst(t, env, got[0])
	assert.NotContains(t, text, "Baz")
	assert.Contains(t, text, "use Foo\\Bar;\nuse Foo\\Doc;\n")
}

func TestUnusedUseInGroups(t *testing.T) {
	src := `<?php
use Foo\{A, B};
use Foo\C, Foo\D;
new A();
new D();
`
	env, got := check(t, &rules.UnusedUse{}, phpver.Latest, src)
	require.Len(t, got, 2)
	assert.Equal(t, "Unused use Foo\\B", got[0].Message)
	assert.Equal(t, "Unused use Foo\\C", got[1].Message)

	assert.Contains(t, applyFirst(t, env, got[0]), `use Foo\{A};`)

	env2, got2 := check(t, &rules.UnusedUse{}, phpver.Latest, src)
	assert.Contains(t, applyFirst(t, env2, got2[1]), "use Foo\\D;\n")
}

func TestUnusedUseNamespacesAreSeparate(t *testing.T) {
	src := `<?php
namespace A {
    use Lib\Thing;
}
namespace B {
    new Thing();
}
`
	_, got := check(t, &rules.UnusedUse{}, phpver.Latest, src)
	require.Len(t, got, 1)
	assert.Equal(t, "Unused use Lib\\Thing", got[0].Message)
}

func TestAssignmentInCondition(t *testing.T) {
	src := `<?php
if ($a = f()) {}
if (($b = f())) {}
if (!$c = g()) {}
while ($row = next($rows)) {}
for ($i = 0; $i = 1; $i++) {}
$x = ($y = 1);
if ($d == 1) {}
`
	env, got := check(t, &rules.AssignmentInCondition{}, phpver.Latest, src)
	require.Len(t, got, 4)
	assert.Equal(t, "$a = f()", spanText(env, got[0]))
	assert.Equal(t, "$c = g()", spanText(env, got[1]))
	assert.Equal(t, "$i = 1", spanText(env, got[3]))

	require.Len(t, got[0].Fixes, 2)
	assert.True(t, got[0].Fixes[0].IsSafe())
	assert.False(t, got[0].Fixes[1].IsSafe())
	assert.Contains(t, applyFirst(t, env, got[0]), "if (($a = f())) {}")

	env2, got2 := check(t, &rules.AssignmentInCondition{}, phpver.Latest, src)
	require.NoError(t, got2[0].Fixes[1].Apply(env2.Doc.Buffer()))
	assert.Contains(t, string(env2.Doc.Bytes()), "if ($a == f()) {}")
}

func TestMissingBraces(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"same line", "<?php\nif ($a) foo();\n", "<?php\nif ($a) { foo(); }\n"},
		{"next line", "<?php\nif ($a)\n    foo();\n", "<?php\nif ($a) {\n    foo();\n}\n"},
		{"indented", "<?php\nfunction f() {\n    while ($a)\n        foo();\n}\n", "<?php\nfunction f() {\n    while ($a) {\n        foo();\n    }\n}\n"},
		{"else", "<?php\nif ($a) { x(); } else y();\n", "<?php\nif ($a) { x(); } else { y(); }\n"},
		{"do", "<?php\ndo x(); while ($a);\n", "<?php\ndo { x(); } while ($a);\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, got := check(t, &rules.MissingBraces{}, phpver.Latest, tt.src)
			require.Len(t, got, 1)
			assert.True(t, got[0].Fixes[0].IsSafe())
			assert.Equal(t, tt.want, applyFirst(t, env, got[0]))
			assert.Empty(t, testkit.Run(&rules.MissingBraces{}, env.Reparse().Context(phpver.Latest)))
		})
	}
}

func TestMissingBracesSkipsBlocksAndAltSyntax(t *testing.T) {
	src := `<?php
if ($a) { x(); } elseif ($b) { y(); } else { z(); }
if ($a): x(); endif;
foreach ($l as $v): x(); endforeach;
while (next($a));
if ($a) { x(); } else if ($b) { y(); }
`
	_, got := check(t, &rules.MissingBraces{}, phpver.Latest, src)
	assert.Empty(t, got, messages(got))
}

func TestErrorControlOperator(t *testing.T) {
	src := `<?php
function mine() {}
@mine();
@'x';
@@$x;
@fopen('a', 'r');
@$arr['k'];
`
	env, got := check(t, &rules.ErrorControlOperator{}, phpver.Latest, src)
	require.Len(t, got, 3)
	assert.Equal(t, "Error control operator hides errors of mine(), which is declared in this file", got[0].Message)
	assert.Equal(t, diag.FixApplicabilityManualReview, got[0].Fixes[0].Applicability)
	assert.Equal(t, "Error control operator has no effect on this expression", got[1].Message)
	assert.True(t, got[1].Fixes[0].IsSafe())
	assert.Equal(t, "Error control operator is repeated", got[2].Message)

	assert.Contains(t, applyFirst(t, env, got[1]), "\n'x';\n")
}
