package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"phphint/internal/diag"
	"phphint/internal/fix"
	"phphint/internal/source"
)

func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("<?php $x = \"unterminated string\n")
	fileID := fs.AddVirtual("/home/user/project/src/test.php", content)
	fs.SetBaseDir("/home/user/project")

	bag := diag.NewBag(10)
	bag.Add(diag.New(
		diag.SevError,
		diag.LexUnterminatedString,
		source.Span{File: fileID, Start: 11, End: 31},
		"Unterminated string literal",
	))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/test.php:1:12"},
		{"Relative path", PathModeRelative, "src/test.php:1:12"},
		{"Basename only", PathModeBasename, "test.php:1:12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			output := buf.String()

			assert.Contains(t, output, tt.contains)
			assert.Contains(t, output, "ERROR")
			assert.Contains(t, output, "LEX1002")
			assert.Contains(t, output, "Unterminated string literal")
		})
	}
}

func TestPathModeAuto(t *testing.T) {
	fs := source.NewFileSet()

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"Short path - as is", "test.php", "test.php:"},
		{"Long absolute path - basename", "/very/long/absolute/path/to/some/nested/directory/file.php", "file.php:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileID := fs.AddVirtual(tt.path, []byte("<?php $x = 42;\n"))
			bag := diag.NewBag(10)
			bag.Add(diag.New(diag.SevWarning, diag.LexUnknownChar, source.Span{File: fileID, Start: 11, End: 13}, "Test warning"))

			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeAuto})
			output := buf.String()

			assert.True(t, strings.HasPrefix(output, tt.expected), output)
		})
	}
}

func TestPrettyUnderline(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.php", []byte("<?php\n$x = array(1);\n$s = '日本'; $x;\n"))

	bag := diag.NewBag(4)
	bag.Add(diag.New(diag.SevCurrentLineWarning, diag.SugArraySyntax, source.Span{File: fileID, Start: 11, End: 19}, "Use short array syntax"))
	bag.Add(diag.New(diag.SevWarning, diag.HintEmptyStatement, source.Span{File: fileID, Start: 36, End: 38}, "wide"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	output := buf.String()

	assert.Contains(t, output, "test.php:2:6: SUGGESTION SUG")
	assert.Contains(t, output, " 2 | $x = array(1);\n")
	assert.Contains(t, output, "   |      ^~~~~~~~\n")
	// the two wide runes take two columns each
	assert.Contains(t, output, "| "+strings.Repeat(" ", 13)+"^~\n")
}

func TestPrettyContextAndColor(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.php", []byte("<?php\nfoo();;\nbar();\n"))
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevWarning, diag.HintEmptyStatement, source.Span{File: fileID, Start: 12, End: 13}, "Unnecessary semicolon"))

	var plain bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{Context: 1, PathMode: PathModeBasename})
	assert.Contains(t, plain.String(), " 1 | <?php\n")
	assert.Contains(t, plain.String(), " 2 | foo();;\n")
	assert.Contains(t, plain.String(), " 3 | bar();\n")
	assert.NotContains(t, plain.String(), "\x1b[")

	var colored bytes.Buffer
	Pretty(&colored, bag, fs, PrettyOpts{Color: true, PathMode: PathModeBasename})
	assert.Contains(t, colored.String(), "\x1b[")
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("<?php use Foo\\Bar\n")
	fileID := fs.AddVirtual("test.php", content)

	bag := diag.NewBag(4)
	primary := source.Span{File: fileID, Start: 10, End: 17}
	d := diag.New(diag.SevError, diag.SynExpectSemicolon, primary, "expected ';'")
	d = d.WithNote(source.Span{File: fileID, Start: 6, End: 9}, "use statement starts here")
	d = d.WithFix("insert semicolon", diag.TextEdit{Span: source.Span{File: fileID, Start: primary.End, End: primary.End}, NewText: ";"})
	d.Fixes = append(d.Fixes, fix.WrapWith(
		"comment out",
		source.Span{File: fileID, Start: 6, End: 17},
		"/* ",
		" */",
		fix.WithID("wrap-import-001"),
	))
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true, ShowFixes: true})
	output := buf.String()

	assert.Contains(t, output, "note: test.php:1:7: use statement starts here")
	assert.Contains(t, output, "fix #1: insert semicolon [quickfix, always-safe]")
	assert.Contains(t, output, `apply=";"`)
	assert.Contains(t, output, "fix #2: comment out [rewrite, safe-with-heuristics, id=wrap-import-001]")
}

func TestPrettyFixPreview(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("example.php", []byte("<?php $a = 42 // missing semicolon"))

	bag := diag.NewBag(2)
	insert := source.Span{File: fileID, Start: 13, End: 13}
	d := diag.New(diag.SevError, diag.SynExpectSemicolon, insert, "missing semicolon")
	d = d.WithFix("insert semicolon", diag.TextEdit{Span: insert, NewText: ";"})
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowFixes: true, ShowPreview: true})
	output := buf.String()

	assert.Contains(t, output, "preview:")
	assert.Contains(t, output, "- <?php $a = 42 // missing semicolon")
	assert.Contains(t, output, "+ <?php $a = 42; // missing semicolon")
}

func TestShort(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("src/a.php", []byte("<?php\nfoo();;\n"))
	bag := diag.NewBag(2)
	bag.Add(diag.New(diag.SevWarning, diag.HintEmptyStatement, source.Span{File: fileID, Start: 12, End: 13}, "Unnecessary\nsemicolon"))

	var buf bytes.Buffer
	assert.NoError(t, Short(&buf, bag, fs, PathModeAuto))
	assert.Equal(t, "src/a.php:2:7: warning [empty-statement] Unnecessary semicolon\n", buf.String())
}

func TestParsePathMode(t *testing.T) {
	for in, want := range map[string]PathMode{
		"":         PathModeAuto,
		"abs":      PathModeAbsolute,
		"relative": PathModeRelative,
		"basename": PathModeBasename,
	} {
		got, ok := ParsePathMode(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParsePathMode("nope")
	assert.False(t, ok)
}
