package driver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phphint/internal/cache"
	"phphint/internal/config"
	"phphint/internal/diag"
	"phphint/internal/phpver"
	"phphint/internal/rule"
	"phphint/internal/rules"
	"phphint/internal/token"
)

func unitOf(t *testing.T, src string) *Unit {
	t.Helper()
	u, err := ParseText(nil, "test.php", []byte(src), 0)
	require.NoError(t, err)
	return u
}

func reporting(code diag.Code, kind rule.Kind, msg string) rule.Rule {
	return rule.Func{
		M: rule.Meta{Code: code, Kind: kind, DefaultEnabled: true, DefaultSeverity: diag.SevWarning},
		Fn: func(_ context.Context, rc *rule.Context, sink diag.Reporter) {
			diag.ReportWarning(sink, code, rc.Span(0, 5), msg).Emit()
		},
	}
}

func panicking(code diag.Code, kind rule.Kind) rule.Rule {
	return rule.Func{
		M: rule.Meta{Code: code, Kind: kind, DefaultEnabled: true},
		Fn: func(context.Context, *rule.Context, diag.Reporter) {
			var m map[string]int
			m["boom"]++
		},
	}
}

func TestPanickingRuleIsIsolated(t *testing.T) {
	var logs bytes.Buffer
	d := NewDispatcher(Options{
		Log: zerolog.New(&logs),
		Rules: []rule.Rule{
			reporting(diag.HintEmptyStatement, rule.KindHint, "first"),
			panicking(diag.HintMissingBraces, rule.KindHint),
			reporting(diag.HintUnusedUse, rule.KindHint, "third"),
		},
	})
	u := unitOf(t, "<?php foo();\n")

	got, err := d.ComputeHints(context.Background(), u.Context(phpver.Latest, nil))
	require.Error(t, err)
	var pe *RulePanicError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "missing-braces", pe.Rule)
	assert.Equal(t, "test.php", pe.File)

	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Message)
	assert.Equal(t, "third", got[1].Message)
	assert.Contains(t, logs.String(), `"rule":"missing-braces"`)
	assert.Contains(t, logs.String(), "rule panicked")
}

func TestCancelledPassReturnsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	d := NewDispatcher(Options{Rules: []rule.Rule{
		rule.Func{
			M: rule.Meta{Code: diag.HintEmptyStatement, Kind: rule.KindHint, DefaultEnabled: true},
			Fn: func(_ context.Context, rc *rule.Context, sink diag.Reporter) {
				calls++
				diag.ReportWarning(sink, diag.HintEmptyStatement, rc.Span(0, 1), "x").Emit()
				cancel()
			},
		},
		reporting(diag.HintUnusedUse, rule.KindHint, "never"),
	}})
	u := unitOf(t, "<?php foo();\n")

	got, err := d.ComputeHints(ctx, u.Context(phpver.Latest, nil))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
	assert.Equal(t, 1, calls)

	got, err = d.ComputeHints(ctx, u.Context(phpver.Latest, nil))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
	assert.Equal(t, 1, calls, "a cancelled context runs no rule")
}

func TestSuggestionCaretIsScoped(t *testing.T) {
	var seen int
	d := NewDispatcher(Options{Rules: []rule.Rule{rule.Func{
		M:  rule.Meta{Code: diag.SugArraySyntax, Kind: rule.KindSuggestion, DefaultEnabled: true},
		Fn: func(_ context.Context, rc *rule.Context, _ diag.Reporter) { seen = rc.Caret },
	}}})
	u := unitOf(t, "<?php $a = array(1);\n")
	rc := u.Context(phpver.Latest, nil)

	_, err := d.ComputeSuggestions(context.Background(), rc, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, seen)
	assert.Equal(t, rule.NoCaret, rc.Caret)

	got, err := d.ComputeSuggestions(context.Background(), nil, 8)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDispatcherAppliesConfig(t *testing.T) {
	cfg, err := config.Parse(`
[rules]
disable = ["unused-use"]

[rules.severity]
empty-statement = "error"
`, "")
	require.NoError(t, err)

	d := NewDispatcher(Options{Config: cfg})
	require.Equal(t, len(rules.All()), d.Registry().Len())
	u := unitOf(t, "<?php\nuse Foo\\Bar;\nfoo();;\n")

	got, err := d.ComputeHints(context.Background(), u.Context(phpver.Latest, nil))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, diag.HintEmptyStatement, got[0].Code)
	assert.Equal(t, diag.SevError, got[0].Severity)
	assert.Equal(t, diag.DefaultPriority, got[0].Priority)
	for _, r := range d.Enabled(rule.KindHint) {
		assert.NotEqual(t, diag.HintUnusedUse, r.Meta().Code)
	}
}

func TestDispatcherDropsSuppressedFindings(t *testing.T) {
	d := NewDispatcher(Options{})
	src := "<?php\nfoo();; // phphint-ignore empty-statement\nbar();;\n"
	u := unitOf(t, src)

	got, err := d.ComputeHints(context.Background(), u.Context(phpver.Latest, nil))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint32(len("<?php\nfoo();; // phphint-ignore empty-statement\nbar();")), got[0].Primary.Start)
}

func TestDispatcherSkipsUnreadyContexts(t *testing.T) {
	d := NewDispatcher(Options{Rules: []rule.Rule{panicking(diag.HintEmptyStatement, rule.KindHint)}})
	got, err := d.ComputeHints(context.Background(), &rule.Context{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(text), 0o644))
	}
	return dir
}

func TestDiagnoseDirSeesOtherFiles(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.php":        "<?php\nabstract class Base {}\n",
		"b.php":        "<?php\nnew Base();\n",
		"notes.txt":    "<?php new Base();",
		"vendor/x.php": "<?php new Base();",
	})
	cfg, err := config.Parse(`exclude = ["vendor/**"]`, dir)
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		seen []Progress
	)
	results, err := DiagnoseDir(context.Background(), dir, DiagnoseOptions{
		Config: cfg,
		Jobs:   2,
		Progress: func(p Progress) {
			mu.Lock()
			seen = append(seen, p)
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, filepath.Join(dir, "a.php"), results[0].Path)
	assert.Equal(t, 0, results[0].Bag.Len())

	b := results[1]
	require.Equal(t, 1, b.Bag.Len())
	d := b.Bag.Items()[0]
	assert.Equal(t, diag.ErrAbstractInstantiation, d.Code)
	assert.Equal(t, "Cannot instantiate abstract class Base", d.Message)
	assert.Equal(t, phpver.Latest, b.Version)

	require.Len(t, seen, 2)
	for _, p := range seen {
		assert.Equal(t, 2, p.Total)
	}
}

func TestDiagnoseDirUsesCache(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.php": "<?php\nfoo();;\n",
	})
	c, err := cache.Open(t.TempDir())
	require.NoError(t, err)
	opts := DiagnoseOptions{Cache: c}

	first, err := DiagnoseDir(context.Background(), dir, opts)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.False(t, first[0].Cached)

	second, err := DiagnoseDir(context.Background(), dir, opts)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.True(t, second[0].Cached)
	require.Equal(t, first[0].Bag.Len(), second[0].Bag.Len())
	assert.Equal(t, first[0].Bag.Items()[0].Message, second[0].Bag.Items()[0].Message)
	assert.Equal(t, first[0].Bag.Items()[0].Primary, second[0].Bag.Items()[0].Primary)

	// another target version is another key
	third, err := DiagnoseDir(context.Background(), dir, DiagnoseOptions{Cache: c, Version: phpver.PHP74})
	require.NoError(t, err)
	assert.False(t, third[0].Cached)
}

func TestDiagnoseDirCancelled(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.php": "<?php foo();;\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := DiagnoseDir(ctx, dir, DiagnoseOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}

func TestDiagnoseFileSwitches(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.php": "<?php\nfoo();;\n$x = array(1);\n"})
	path := filepath.Join(dir, "a.php")

	res, err := DiagnoseFile(context.Background(), path, DiagnoseOptions{EnableTimings: true})
	require.NoError(t, err)
	require.Equal(t, 1, res.Bag.Len())
	assert.Equal(t, diag.SevWarning, res.Bag.Items()[0].Severity)
	require.NotNil(t, res.Timing)
	names := make([]string, 0, len(res.Timing.Phases))
	for _, p := range res.Timing.Phases {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"parse", "errors", "hints"}, names)

	AppendTiming(res)
	require.Equal(t, 2, res.Bag.Len())

	res, err = DiagnoseFile(context.Background(), path, DiagnoseOptions{WarningsAsErrors: true})
	require.NoError(t, err)
	assert.Equal(t, diag.SevError, res.Bag.Items()[0].Severity)

	res, err = DiagnoseFile(context.Background(), path, DiagnoseOptions{IgnoreWarnings: true})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Bag.Len())

	caret := uint32(len("<?php\nfoo();;\n$x = "))
	res, err = DiagnoseFile(context.Background(), path, DiagnoseOptions{Suggest: true, Caret: int(caret)})
	require.NoError(t, err)
	var codes []diag.Code
	for _, d := range res.Bag.Items() {
		codes = append(codes, d.Code)
	}
	assert.Contains(t, codes, diag.SugArraySyntax)

	_, err = DiagnoseFile(context.Background(), filepath.Join(dir, "missing.php"), DiagnoseOptions{})
	require.Error(t, err)
}

func TestTokenize(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.php": "<?php echo 1;"})
	res, err := Tokenize(filepath.Join(dir, "a.php"), 0)
	require.NoError(t, err)
	require.NotEmpty(t, res.Tokens)
	assert.Equal(t, 0, res.Bag.Len())
	assert.Equal(t, token.EOF, res.Tokens[len(res.Tokens)-1].Kind)
}
