package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()
	first := fs.Add("a.php", []byte("<?php echo 1;"), 0)
	second := fs.Add("a.php", []byte("<?php echo 2;"), 0)

	latest, ok := fs.GetLatest("a.php")
	require.True(t, ok)
	assert.Equal(t, second, latest)
	assert.NotEqual(t, first, second)
	assert.Equal(t, "<?php echo 1;", string(fs.Get(first).Content))

	f, ok := fs.GetByPath("./a.php")
	require.True(t, ok)
	assert.Equal(t, second, f.ID)
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.php", []byte("a\nb\n"))
	f := fs.Get(id)
	assert.Equal(t, []uint32{1, 3}, f.LineIdx)
	assert.NotZero(t, f.Flags&FileVirtual)
}

func TestLineQueries(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("t.php", []byte("ab\ncde\n\nf")))

	tests := []struct {
		off        uint32
		start, end uint32
		line, col  uint32
	}{
		{0, 0, 2, 1, 1},
		{2, 0, 2, 1, 3}, // the newline belongs to its line
		{3, 3, 6, 2, 1},
		{6, 3, 6, 2, 4},
		{7, 7, 7, 3, 1},
		{8, 8, 9, 4, 1},
		{9, 8, 9, 4, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.start, f.LineStart(tt.off), "LineStart(%d)", tt.off)
		assert.Equal(t, tt.end, f.LineEnd(tt.off), "LineEnd(%d)", tt.off)
		pos := f.Position(tt.off)
		assert.Equal(t, LineCol{Line: tt.line, Col: tt.col}, pos, "Position(%d)", tt.off)
		assert.Equal(t, tt.off, f.Offset(pos), "Offset(%v)", pos)
	}
	assert.Equal(t, "cde", f.GetLine(2))
	assert.Equal(t, "", f.GetLine(3))
	assert.Equal(t, "f", f.GetLine(4))
	assert.Equal(t, "", f.GetLine(9))
	assert.Equal(t, uint32(2), f.Offset(LineCol{Line: 1, Col: 40}))
}

func TestResolveUTF8(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("u.php", []byte("héllo\nwörld"))
	start, end := fs.Resolve(Span{File: id, Start: 7, End: 9})
	assert.Equal(t, LineCol{Line: 2, Col: 1}, start)
	assert.Equal(t, LineCol{Line: 2, Col: 3}, end)
}

func TestLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.php")
	require.NoError(t, os.WriteFile(path, []byte("\xEF\xBB\xBF<?php\r\necho 1;\r\n"), 0o600))

	fs := NewFileSet()
	id, err := fs.Load(path)
	require.NoError(t, err)
	f := fs.Get(id)
	assert.Equal(t, "<?php\necho 1;\n", string(f.Content))
	assert.NotZero(t, f.Flags&FileHadBOM)
	assert.NotZero(t, f.Flags&FileNormalizedCRLF)

	_, err = fs.Load(filepath.Join(dir, "missing.php"))
	assert.Error(t, err)
}

func TestNormalizeCRLFKeepsLoneCR(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\rb\r\nc"))
	assert.True(t, changed)
	assert.Equal(t, "a\rb\nc", string(out))

	out, changed = normalizeCRLF([]byte("plain"))
	assert.False(t, changed)
	assert.Equal(t, "plain", string(out))
}
