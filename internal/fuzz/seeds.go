package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10

// languageSeeds cover the constructs the rules look for.
var languageSeeds = []string{
	"",
	"<?php foo();; ?>",
	"<?php function foo($optional = null, $required) {}",
	"<?php function f(int ...$xs) {}",
	"<?php class A { const X = 1; const X = 2; }",
	"<?php class A { public $a; public $a; function m() {} function m() {} }",
	"<?php if ($a) { function f() {} } else { function f() {} }",
	"<?php abstract class A {} new A();",
	"<?php interface I { const C = 1; } class B implements I { const C = 2; }",
	"<?php while (true) { break; } break 2; continue;",
	"<?php class S { static function f() { return $this; } }",
	"<?php if ($a = foo()) { echo 1; }",
	"<?php if ($a) echo 1; else echo 2; for (;;) foo();",
	"<?php $x = @$y; @foo(); @1;",
	"<?php $a = array(1, 2, array('k' => 3));",
	"<?php $f = function ($x) use ($y) { return $x + $y; };",
	"<?php $obj = new Foo();\nbar();",
	"<?php use A\\{B, C,};",
	"<?php trait T {} $x = 0b1010; $y = 1_000_000;",
	"<?php $s = <<<EOT\n  text\n  EOT;\n",
	"<?php function f(?int $x): ?string { return null; }",
	"<?php enum Suit: string { case Hearts = 'H'; }",
	"<?php $x = match ($y) { 1 => 'a', default => 'b' };",
	"<?php $v = $a ?? $b; $w = $a <=> $b; yield from g();",
	"<?php namespace N; class C { public function __construct(private int $x) {} }",
	"<html><?= $x ?></html><?php // phphint-ignore empty-statement\n;;",
	"<?php /* unterminated",
	"<?php 'unterminated",
	"<?php {{{{ ))) ]]] ::: ->->",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range languageSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".php" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
