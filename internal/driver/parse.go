package driver

import (
	"fortio.org/safecast"

	"phphint/internal/diag"
	"phphint/internal/document"
	"phphint/internal/lexer"
	"phphint/internal/model"
	"phphint/internal/parser"
	"phphint/internal/phpver"
	"phphint/internal/rule"
	"phphint/internal/source"
)

// Unit is one parsed file with everything rules ask about it.
type Unit struct {
	FileSet *source.FileSet
	File    *source.File
	Parse   parser.Result
	Scope   *model.FileScope
	Doc     *document.Document
}

// Parse loads path into a fresh file set and parses it.
func Parse(path string, maxDiagnostics int) (*Unit, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return parseLoaded(fs, fs.Get(fileID), maxDiagnostics)
}

// ParseText parses src registered under name as a virtual file, for
// editor buffers and stdin.
func ParseText(fs *source.FileSet, name string, src []byte, maxDiagnostics int) (*Unit, error) {
	if fs == nil {
		fs = source.NewFileSet()
	}
	id := fs.AddVirtual(name, src)
	return parseLoaded(fs, fs.Get(id), maxDiagnostics)
}

func parseLoaded(fs *source.FileSet, file *source.File, maxDiagnostics int) (*Unit, error) {
	maxErrors, err := safecast.Conv[uint](max(maxDiagnostics, 0))
	if err != nil {
		return nil, err
	}
	bag := diag.NewBag(maxDiagnostics)
	rep := diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: rep})
	res := parser.ParseFile(fs, lx, parser.Options{Reporter: rep, MaxErrors: maxErrors})
	return &Unit{
		FileSet: fs,
		File:    file,
		Parse:   res,
		Scope:   model.Build(file.ID, res.File),
		Doc:     document.FromFile(file),
	}, nil
}

// Context returns a fresh rule context over u. ix may be nil.
func (u *Unit) Context(v phpver.Version, ix model.Index) *rule.Context {
	rc := &rule.Context{
		File:    u.File,
		Program: u.Parse.File,
		Tokens:  u.Parse.Tokens,
		Scope:   u.Scope,
		Doc:     u.Doc,
		Version: v,
		Caret:   rule.NoCaret,
	}
	if ix != nil {
		rc.Index = ix
	}
	return rc
}
