package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phphint/internal/phpver"
	"phphint/internal/rules"
	"phphint/internal/testkit"
)

var levelSamples = map[phpver.Version][]string{
	phpver.PHP53: {
		`<?php $f = function () { return 1; };`,
		`<?php namespace App;`,
		`<?php $a = $b ?: 1;`,
		`<?php echo __DIR__;`,
		`<?php class A { function f() { return static::make(); } }`,
	},
	phpver.PHP54: {
		`<?php $a = [1, 2];`,
		`<?php trait T {}`,
		`<?php $a = 0b101;`,
		`<?php $v = f()[0];`,
	},
	phpver.PHP55: {
		`<?php try { f(); } finally { g(); }`,
		`<?php function g() { yield 1; }`,
		`<?php echo A::class;`,
	},
	phpver.PHP56: {
		`<?php function f(...$a) {}`,
		`<?php f(...$a);`,
		`<?php $a = 2 ** 3;`,
		`<?php use function Foo\bar;`,
	},
	phpver.PHP70: {
		`<?php $a = $b ?? 1;`,
		`<?php $a = $b <=> $c;`,
		`<?php function f(int $a) {}`,
		`<?php function f(): array { return []; }`,
		`<?php $o = new class {};`,
		"<?php $s = \"\\u{1F600}\";",
	},
	phpver.PHP71: {
		`<?php function f(?int $a) {}`,
		`<?php function f(): void {}`,
		`<?php [$a, $b] = $c;`,
		`<?php class A { private const X = 1; }`,
		`<?php try { f(); } catch (A | B $e) {}`,
	},
	phpver.PHP72: {
		`<?php function f(object $a) {}`,
		`<?php use Foo\{A, B,};`,
	},
	phpver.PHP73: {
		`<?php f(1, 2,);`,
		"<?php $s = <<<EOT\n  x\n  EOT;\n",
		`<?php [&$a, $b] = $c;`,
	},
	phpver.PHP74: {
		`<?php $f = fn($x) => $x;`,
		`<?php class A { public int $x; }`,
		`<?php $a ??= 1;`,
		`<?php $n = 1_000;`,
		`<?php $a = [...$b];`,
	},
	phpver.PHP80: {
		`<?php $r = match ($x) { default => 1 };`,
		`<?php $r = $a?->b;`,
		`<?php function f(int|string $a) {}`,
		`<?php f(a: 1);`,
		`<?php class A { function __construct(private $x) {} }`,
		`<?php function f($a, $b,) {}`,
		`<?php try { f(); } catch (E) {}`,
	},
	phpver.PHP81: {
		`<?php enum Suit { case Hearts; }`,
		`<?php class A { public readonly int $x; }`,
		`<?php function f(A&B $a) {}`,
		`<?php function f(): never { exit; }`,
		`<?php $f = strlen(...);`,
		`<?php $n = 0o17;`,
	},
}

func TestLanguageLevelIsMonotonic(t *testing.T) {
	levels := rules.LanguageLevel()
	require.Len(t, levels, len(levelSamples))
	for _, r := range levels {
		lr, ok := r.(*rules.LanguageLevelRule)
		require.True(t, ok)
		since := lr.Since()
		samples := levelSamples[since]
		require.NotEmpty(t, samples, "no samples for %s", since)

		for _, src := range samples {
			env := testkit.Parse("test.php", src)
			require.Zero(t, env.Parse.Bag.Len(), "parse errors in %q: %v", src, messages(env.Parse.Bag.Items()))
			for _, v := range phpver.All() {
				got := testkit.Run(r, env.Context(v))
				require.NoError(t, testkit.CheckFindings(got, env.File))
				if v < since {
					assert.NotEmpty(t, got, "%q should be reported for PHP %s", src, v)
				} else {
					assert.Empty(t, got, "%q should not be reported for PHP %s: %v", src, v, messages(got))
				}
			}
		}
	}
}

func TestLanguageLevelMessages(t *testing.T) {
	var php74 *rules.LanguageLevelRule
	for _, r := range rules.LanguageLevel() {
		if lr := r.(*rules.LanguageLevelRule); lr.Since() == phpver.PHP74 {
			php74 = lr
		}
	}
	require.NotNil(t, php74)

	env, got := check(t, php74, phpver.PHP73, `<?php $f = fn($x) => $x;`)
	require.Len(t, got, 1)
	assert.Equal(t, "Arrow function requires PHP 7.4 or newer, the file targets PHP 7.3", got[0].Message)
	assert.Equal(t, "fn", spanText(env, got[0]))
}

func TestLanguageLevelLexicalChecks(t *testing.T) {
	byVersion := make(map[phpver.Version]*rules.LanguageLevelRule)
	for _, r := range rules.LanguageLevel() {
		lr := r.(*rules.LanguageLevelRule)
		byVersion[lr.Since()] = lr
	}

	env, got := check(t, byVersion[phpver.PHP73], phpver.PHP72, `<?php f(1, 2,);`)
	require.Len(t, got, 1)
	assert.Equal(t, ",", spanText(env, got[0]))

	_, got = check(t, byVersion[phpver.PHP73], phpver.PHP72, `<?php f(1, 2);`)
	assert.Empty(t, got)

	_, got = check(t, byVersion[phpver.PHP73], phpver.PHP72, "<?php $s = <<<EOT\nx\nEOT;\n")
	assert.Empty(t, got, "a heredoc closed at column one is valid before 7.3")

	env, got = check(t, byVersion[phpver.PHP74], phpver.PHP73, `<?php $n = 1_000 + 2;`)
	require.Len(t, got, 1)
	assert.Equal(t, "1_000", spanText(env, got[0]))

	_, got = check(t, byVersion[phpver.PHP70], phpver.PHP56, `<?php $s = '\u{41}';`)
	assert.Empty(t, got, "single quoted strings have no escapes")

	_, got = check(t, byVersion[phpver.PHP70], phpver.PHP56, `<?php $s = "\\u{41}";`)
	assert.Empty(t, got, "an escaped backslash is no codepoint escape")
}
