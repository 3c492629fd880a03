package parser

import (
	"slices"
	"strings"

	"phphint/internal/ast"
	"phphint/internal/diag"
	"phphint/internal/lexer"
	"phphint/internal/source"
	"phphint/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough reports whether the error limit has been reached.
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

// Result is the outcome of parsing one file. File is nil only when the
// source could not be read at all; syntax errors still produce a tree with
// Bad nodes in place of the broken constructs.
type Result struct {
	File   *ast.File
	Tokens token.Sequence
	Bag    *diag.Bag
}

// Parser holds the state for parsing one file.
type Parser struct {
	toks     []token.Token
	pos      int
	file     *source.File
	fs       *source.FileSet
	opts     Options
	lastSpan source.Span // span of the last consumed token
}

// ParseFile drains lx and parses the whole file. The token slice is kept in
// the result so later passes can answer lexical questions.
func ParseFile(fs *source.FileSet, lx *lexer.Lexer, opts Options) Result {
	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	f := lx.File()
	p := Parser{
		toks:     toks,
		file:     f,
		fs:       fs,
		opts:     opts,
		lastSpan: source.Span{File: f.ID},
	}

	root := &ast.File{ID: f.ID}
	root.Stmts = p.parseTopStmts()
	root.Sp = source.Span{File: f.ID, Start: 0, End: uint32(len(f.Content))}

	var bag *diag.Bag
	switch br := opts.Reporter.(type) {
	case diag.BagReporter:
		bag = br.Bag
	case *diag.BagReporter:
		bag = br.Bag
	}
	return Result{
		File:   root,
		Tokens: token.NewSequence(toks),
		Bag:    bag,
	}
}

// ParseSource is a convenience for tests and one-off tools: it builds a
// virtual file and parses it with errors collected into a fresh bag.
func ParseSource(fs *source.FileSet, name, src string) (Result, *source.File) {
	id := fs.AddVirtual(name, []byte(src))
	f := fs.Get(id)
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	lx := lexer.New(f, lexer.Options{Reporter: rep})
	return ParseFile(fs, lx, Options{Reporter: rep}), f
}

func (p *Parser) peek() token.Token {
	return p.toks[p.pos]
}

// peekN looks n tokens ahead; past the end it keeps returning EOF.
func (p *Parser) peekN(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) at(k token.Kind) bool {
	return p.toks[p.pos].Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.toks[p.pos].Kind)
}

// atWord reports an identifier token spelled w (case-insensitive); used for
// contextual keywords such as enum, from and mixed.
func (p *Parser) atWord(w string) bool {
	t := p.peek()
	return t.Kind == token.Ident && strings.EqualFold(t.Text, w)
}

func (p *Parser) IsError() bool {
	return p.opts.CurrentErrors != 0
}

// parseTopStmts parses statements until EOF, folding "namespace X;" blocks
// so that each unbraced namespace owns the statements up to the next one.
func (p *Parser) parseTopStmts() []ast.Stmt {
	var out []ast.Stmt
	var ns *ast.NamespaceStmt
	for !p.at(token.EOF) {
		start := p.pos
		s := p.parseStmt()
		if p.pos == start {
			p.err(diag.SynUnexpectedToken, "unexpected "+describe(p.peek()))
			p.advance()
			continue
		}
		if s == nil {
			continue
		}
		if n, ok := s.(*ast.NamespaceStmt); ok && !n.Braced {
			out = append(out, n)
			ns = n
			continue
		}
		if ns != nil {
			ns.Stmts = append(ns.Stmts, s)
			ns.Sp = ns.Sp.Cover(s.Span())
			continue
		}
		out = append(out, s)
	}
	return out
}

func describe(t token.Token) string {
	switch t.Kind {
	case token.EOF:
		return "end of file"
	case token.Variable, token.Ident, token.NameQualified, token.NameFullyQualified, token.NameRelative:
		return "'" + t.Text + "'"
	}
	if t.Kind.IsKeyword() {
		return "keyword '" + t.Text + "'"
	}
	if t.Text != "" && len(t.Text) <= 16 {
		return "'" + t.Text + "'"
	}
	return t.Kind.String()
}
