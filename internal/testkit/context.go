// Package testkit builds analysis contexts from PHP snippets and checks the
// invariants every parse and every finding must satisfy. It is shared by the
// tests of the rule battery and the driver.
package testkit

import (
	"context"

	"phphint/internal/diag"
	"phphint/internal/document"
	"phphint/internal/model"
	"phphint/internal/parser"
	"phphint/internal/phpver"
	"phphint/internal/rule"
	"phphint/internal/source"
)

// Env is a parsed snippet ready for analysis.
type Env struct {
	FileSet *source.FileSet
	File    *source.File
	Parse   parser.Result
	Index   *model.MemIndex
	Doc     *document.Document
}

// Parse registers src as a virtual file and parses it. Extra sources are
// parsed too and added to the index, so cross-file lookups see them.
func Parse(name, src string, extra ...string) *Env {
	fs := source.NewFileSet()
	ix := model.NewMemIndex()
	for i, other := range extra {
		res, f := parser.ParseSource(fs, name+".dep"+string(rune('0'+i)), other)
		ix.Put(model.Build(f.ID, res.File))
	}
	res, f := parser.ParseSource(fs, name, src)
	ix.Put(model.Build(f.ID, res.File))
	return &Env{FileSet: fs, File: f, Parse: res, Index: ix, Doc: document.FromFile(f)}
}

// Context returns a fresh rule context for the snippet at version v.
func (e *Env) Context(v phpver.Version) *rule.Context {
	return &rule.Context{
		File:    e.File,
		Program: e.Parse.File,
		Tokens:  e.Parse.Tokens,
		Scope:   model.Build(e.File.ID, e.Parse.File),
		Index:   e.Index,
		Doc:     e.Doc,
		Version: v,
		Caret:   rule.NoCaret,
	}
}

// Run invokes r once with a background context and returns its findings.
func Run(r rule.Rule, rc *rule.Context) []*diag.Diagnostic {
	return RunContext(context.Background(), r, rc)
}

// RunContext is Run with an explicit context.
func RunContext(ctx context.Context, r rule.Rule, rc *rule.Context) []*diag.Diagnostic {
	bag := diag.NewBag(0)
	r.Invoke(ctx, rc, diag.BagReporter{Bag: bag})
	bag.Sort()
	return bag.Items()
}

// Reparse builds an Env from the current text of e's document, as an editor
// does after applying a fix.
func (e *Env) Reparse() *Env {
	e.Doc.RLock()
	text := string(e.Doc.Bytes())
	e.Doc.RUnlock()
	return Parse(e.File.Path, text)
}
