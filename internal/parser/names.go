package parser

import (
	"strings"

	"phphint/internal/ast"
	"phphint/internal/diag"
	"phphint/internal/token"
)

func isNameToken(k token.Kind) bool {
	switch k {
	case token.Ident, token.NameQualified, token.NameFullyQualified, token.NameRelative:
		return true
	}
	return false
}

// nameFromToken converts a name token into an ast.Name, dropping the leading
// "\" or "namespace\" from the parts.
func nameFromToken(tok token.Token) *ast.Name {
	n := &ast.Name{Base: ast.Base{Sp: tok.Span}}
	text := tok.Text
	switch tok.Kind {
	case token.NameFullyQualified:
		n.Kind = ast.NameFullyQualified
		text = strings.TrimPrefix(text, `\`)
	case token.NameRelative:
		n.Kind = ast.NameRelative
		if i := strings.IndexByte(text, '\\'); i >= 0 {
			text = text[i+1:]
		}
	case token.NameQualified:
		n.Kind = ast.NameQualified
	default:
		n.Kind = ast.NameUnqualified
	}
	n.Parts = strings.Split(text, `\`)
	return n
}

// parseName parses a class or namespace name.
func (p *Parser) parseName() *ast.Name {
	tok := p.peek()
	if isNameToken(tok.Kind) {
		p.advance()
		return nameFromToken(tok)
	}
	// names that collide with keywords: static, array, callable
	if tok.Kind == token.KwStatic || tok.Kind == token.KwArray || tok.Kind == token.KwCallable {
		p.advance()
		return &ast.Name{Base: ast.Base{Sp: tok.Span}, Parts: []string{tok.Text}}
	}
	p.err(diag.SynExpectIdentifier, "expected name, got "+describe(tok))
	return &ast.Name{Base: ast.Base{Sp: p.getDiagnosticSpan().ZeroideToStart()}}
}

// parseIdent parses a plain identifier.
func (p *Parser) parseIdent() *ast.Ident {
	tok := p.peek()
	if tok.Kind == token.Ident {
		p.advance()
		return &ast.Ident{Base: ast.Base{Sp: tok.Span}, Name: tok.Text}
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got "+describe(tok))
	return &ast.Ident{Base: ast.Base{Sp: p.getDiagnosticSpan().ZeroideToStart()}}
}

// parseMemberIdent parses a name where reserved words are allowed: methods,
// constants, function names.
func (p *Parser) parseMemberIdent() *ast.Ident {
	tok := p.peek()
	if tok.IsSemiReserved() {
		p.advance()
		return &ast.Ident{Base: ast.Base{Sp: tok.Span}, Name: tok.Text}
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got "+describe(tok))
	return &ast.Ident{Base: ast.Base{Sp: p.getDiagnosticSpan().ZeroideToStart()}}
}

// parseSimpleVariable parses "$name".
func (p *Parser) parseSimpleVariable() *ast.Variable {
	tok := p.peek()
	if tok.Kind == token.Variable {
		p.advance()
		return &ast.Variable{Base: ast.Base{Sp: tok.Span}, Name: tok.Text[1:]}
	}
	p.err(diag.SynExpectVariable, "expected variable, got "+describe(tok))
	return &ast.Variable{Base: ast.Base{Sp: p.getDiagnosticSpan().ZeroideToStart()}}
}

func (p *Parser) parseUseKind() ast.UseKind {
	switch {
	case p.eat(token.KwFunction):
		return ast.UseFunction
	case p.eat(token.KwConst):
		return ast.UseConst
	}
	return ast.UseNormal
}

// parseUse parses top-level imports, including group use.
func (p *Parser) parseUse() ast.Stmt {
	start := p.advance().Span
	s := &ast.UseStmt{Kind: p.parseUseKind()}
	first := p.parseName()
	if p.at(token.Backslash) && p.peekN(1).Kind == token.LBrace {
		p.advance()
		open := p.advance().Span
		s.Group = true
		s.Prefix = first
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			cs := p.peek().Span
			c := &ast.UseClause{Kind: p.parseUseKind()}
			if c.Kind == ast.UseNormal {
				c.Kind = s.Kind
			}
			c.Name = p.parseName()
			if p.eat(token.KwAs) {
				c.Alias = p.parseIdent()
			}
			c.Sp = p.spanFrom(cs)
			s.Uses = append(s.Uses, c)
			if !p.eat(token.Comma) {
				break
			}
		}
		p.expectClose(token.RBrace, open)
	} else {
		name := first
		for {
			c := &ast.UseClause{Kind: s.Kind, Name: name}
			if p.eat(token.KwAs) {
				c.Alias = p.parseIdent()
			}
			c.Sp = p.spanFrom(name.Sp)
			s.Uses = append(s.Uses, c)
			if !p.eat(token.Comma) {
				break
			}
			name = p.parseName()
		}
	}
	p.expectSemi()
	s.Sp = p.spanFrom(start)
	return s
}

// parseType parses a declared type: T, ?T, A|B, A&B and (A&B)|null.
func (p *Parser) parseType() ast.TypeExpr {
	start := p.peek().Span
	if p.eat(token.Question) {
		t := &ast.NullableType{Elem: p.parseTypeAtom()}
		t.Sp = p.spanFrom(start)
		return t
	}
	first := p.parseTypeAtom()
	switch {
	case p.at(token.Pipe):
		u := &ast.UnionType{Types: []ast.TypeExpr{first}}
		for p.eat(token.Pipe) {
			u.Types = append(u.Types, p.parseTypeAtom())
		}
		u.Sp = p.spanFrom(start)
		return u
	case p.atIntersectionAmp():
		it := &ast.IntersectionType{Types: []ast.TypeExpr{first}}
		for p.atIntersectionAmp() {
			p.advance()
			it.Types = append(it.Types, p.parseTypeAtom())
		}
		it.Sp = p.spanFrom(start)
		return it
	}
	return first
}

// atIntersectionAmp tells "A&B $x" from the by-reference "A &$x".
func (p *Parser) atIntersectionAmp() bool {
	if !p.at(token.Amp) {
		return false
	}
	next := p.peekN(1).Kind
	return isNameToken(next) || next == token.KwArray || next == token.KwCallable || next == token.KwStatic
}

func (p *Parser) parseTypeAtom() ast.TypeExpr {
	tok := p.peek()
	switch {
	case tok.Kind == token.LParen:
		open := p.advance().Span
		it := &ast.IntersectionType{}
		for {
			it.Types = append(it.Types, p.parseTypeAtom())
			if !p.eat(token.Amp) {
				break
			}
		}
		p.expectClose(token.RParen, open)
		it.Sp = p.spanFrom(open)
		return it
	case isNameToken(tok.Kind), tok.Kind == token.KwArray, tok.Kind == token.KwCallable, tok.Kind == token.KwStatic:
		n := p.parseName()
		return &ast.NamedType{Base: ast.Base{Sp: n.Sp}, Name: n}
	}
	p.err(diag.SynExpectType, "expected type, got "+describe(tok))
	sp := p.getDiagnosticSpan().ZeroideToStart()
	return &ast.NamedType{Base: ast.Base{Sp: sp}, Name: &ast.Name{Base: ast.Base{Sp: sp}}}
}
