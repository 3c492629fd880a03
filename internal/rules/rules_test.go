package rules_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phphint/internal/diag"
	"phphint/internal/phpver"
	"phphint/internal/rule"
	"phphint/internal/rules"
	"phphint/internal/testkit"
)

// check parses src, runs r twice and returns the findings of the first run.
// Both runs must agree and every finding must lie inside the file.
func check(t *testing.T, r rule.Rule, v phpver.Version, src string, extra ...string) (*testkit.Env, []*diag.Diagnostic) {
	t.Helper()
	env := testkit.Parse("test.php", src, extra...)
	require.Zero(t, env.Parse.Bag.Len(), "parse errors: %v", messages(env.Parse.Bag.Items()))
	require.NoError(t, testkit.CheckSpanInvariants(env.Parse.File, env.File))
	got := testkit.Run(r, env.Context(v))
	require.NoError(t, testkit.CheckFindings(got, env.File))
	again := testkit.Run(r, env.Context(v))
	require.Equal(t, summarize(got), summarize(again), "second run differs")
	return env, got
}

// checkCaret is check for suggestion rules with the caret at off.
func checkCaret(t *testing.T, r rule.Rule, v phpver.Version, src string, off int) (*testkit.Env, []*diag.Diagnostic) {
	t.Helper()
	env := testkit.Parse("test.php", src)
	require.Zero(t, env.Parse.Bag.Len(), "parse errors: %v", messages(env.Parse.Bag.Items()))
	rc := env.Context(v)
	rc.Caret = off
	got := testkit.Run(r, rc)
	require.NoError(t, testkit.CheckFindings(got, env.File))
	return env, got
}

func summarize(ds []*diag.Diagnostic) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, fmt.Sprintf("%s %d-%d %s", d.Code.ID(), d.Primary.Start, d.Primary.End, d.Message))
	}
	return out
}

func messages(ds []*diag.Diagnostic) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Message)
	}
	return out
}

// applyFirst applies the first fix of d to the document of env and returns
// the new text.
func applyFirst(t *testing.T, env *testkit.Env, d *diag.Diagnostic) string {
	t.Helper()
	require.NotEmpty(t, d.Fixes)
	require.NoError(t, d.Fixes[0].Apply(env.Doc.Buffer()))
	env.Doc.RLock()
	defer env.Doc.RUnlock()
	return string(env.Doc.Bytes())
}

func spanText(env *testkit.Env, d *diag.Diagnostic) string {
	return string(env.File.Content[d.Primary.Start:d.Primary.End])
}

func TestRegistryHoldsEveryRuleOnce(t *testing.T) {
	reg := rules.NewRegistry()
	all := rules.All()
	require.Equal(t, len(all), reg.Len())

	seen := make(map[diag.Code]bool)
	for _, m := range reg.Metas() {
		assert.False(t, seen[m.Code], m.Code.ID())
		seen[m.Code] = true
		assert.NotEmpty(t, m.Description, m.Code.ID())
		assert.True(t, m.DefaultEnabled, m.Code.ID())
	}
	assert.Len(t, reg.ByKind(rule.KindError), 8+len(rules.LanguageLevel()))
	assert.Len(t, reg.ByKind(rule.KindHint), 6)
	assert.Len(t, reg.ByKind(rule.KindSuggestion), 4)
}

const busy = `<?php
namespace App;
use Foo\Unused;
abstract class A {
    const X = 1;
    const X = 2;
    public $p;
    public $p;
    function m($a = 1, $b) { if ($a = 2) return; }
    function m() {}
    static function s() { return $this; }
}
new A();;
break;
$f = function () { return @'x'; };
`

func TestCancelledPassReportsNothing(t *testing.T) {
	env := testkit.Parse("test.php", busy)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	total := 0
	for _, r := range rules.All() {
		total += len(testkit.Run(r, env.Context(phpver.PHP52)))
		rc := env.Context(phpver.PHP52)
		rc.Caret = strings.Index(busy, "function ()")
		assert.Empty(t, testkit.RunContext(ctx, r, rc), r.Meta().Code.ID())
	}
	assert.Positive(t, total, "the snippet should trigger rules when not cancelled")
}

func TestRulesToleratePartialContext(t *testing.T) {
	env := testkit.Parse("test.php", busy)
	for _, r := range rules.All() {
		rc := env.Context(phpver.PHP74)
		rc.Scope = nil
		rc.Index = nil
		rc.Doc = nil
		assert.NotPanics(t, func() { testkit.Run(r, rc) }, r.Meta().Code.ID())

		assert.NotPanics(t, func() { testkit.Run(r, &rule.Context{}) }, r.Meta().Code.ID())
	}
}

func TestFindingsStayInsideTheFile(t *testing.T) {
	env := testkit.Parse("test.php", busy)
	for _, v := range phpver.All() {
		for _, r := range rules.All() {
			rc := env.Context(v)
			rc.Caret = len(busy)
			require.NoError(t, testkit.CheckFindings(testkit.Run(r, rc), env.File), "%s at %s", r.Meta().Code.ID(), v)
		}
	}
}
