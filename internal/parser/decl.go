package parser

import (
	"phphint/internal/ast"
	"phphint/internal/diag"
	"phphint/internal/source"
	"phphint/internal/token"
)

// parseFuncDecl parses "function [&]name(params)[: type] { ... }".
func (p *Parser) parseFuncDecl(attrs []*ast.AttrGroup) ast.Stmt {
	start := p.advance().Span
	if len(attrs) > 0 {
		start = attrs[0].Sp
	}
	d := &ast.FuncDecl{Attrs: attrs}
	d.ByRef = p.eat(token.Amp)
	d.Name = p.parseMemberIdent()
	d.Params, d.ParamsSp = p.parseParams()
	d.ReturnType = p.parseReturnType()
	d.Body = p.parseBlock()
	d.Sp = p.spanFrom(start)
	return d
}

func (p *Parser) parseReturnType() ast.TypeExpr {
	if !p.eat(token.Colon) {
		return nil
	}
	return p.parseType()
}

// parseParams parses a parenthesised parameter list and returns its span,
// parentheses included.
func (p *Parser) parseParams() ([]*ast.Param, source.Span) {
	open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('")
	if !ok {
		return nil, open.Span
	}
	var params []*ast.Param
	for !p.at(token.RParen) && !p.at(token.EOF) {
		params = append(params, p.parseParam())
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expectClose(token.RParen, open.Span)
	return params, p.spanFrom(open.Span)
}

func (p *Parser) parseParam() *ast.Param {
	start := p.peek().Span
	prm := &ast.Param{Attrs: p.parseAttrGroups()}
	prm.Modifiers = p.parseModifiers()
	if !p.atOr(token.Variable, token.Amp, token.Ellipsis) {
		prm.Type = p.parseType()
	}
	prm.ByRef = p.eat(token.Amp)
	prm.Variadic = p.eat(token.Ellipsis)
	prm.Var = p.parseSimpleVariable()
	if p.eat(token.Assign) {
		prm.Default = p.parseExpr()
	}
	prm.Sp = p.spanFrom(start)
	return prm
}

var modifierFlags = map[token.Kind]ast.ModFlag{
	token.KwPublic:    ast.ModPublic,
	token.KwProtected: ast.ModProtected,
	token.KwPrivate:   ast.ModPrivate,
	token.KwStatic:    ast.ModStatic,
	token.KwAbstract:  ast.ModAbstract,
	token.KwFinal:     ast.ModFinal,
	token.KwReadonly:  ast.ModReadonly,
	token.KwVar:       ast.ModVar,
}

// parseModifiers consumes a run of modifier keywords.
func (p *Parser) parseModifiers() ast.ModFlag {
	var mods ast.ModFlag
	for {
		f, ok := modifierFlags[p.peek().Kind]
		if !ok {
			return mods
		}
		if mods.Has(f) {
			p.err(diag.SynModifierNotValid, "duplicate modifier '"+p.peek().Text+"'")
		}
		mods |= f
		p.advance()
	}
}

// parseClassDecl parses class, interface, trait and enum declarations.
func (p *Parser) parseClassDecl(attrs []*ast.AttrGroup) ast.Stmt {
	start := p.peek().Span
	if len(attrs) > 0 {
		start = attrs[0].Sp
	}
	d := &ast.ClassDecl{Attrs: attrs}
	d.Modifiers = p.parseModifiers()
	if d.Modifiers&^(ast.ModAbstract|ast.ModFinal|ast.ModReadonly) != 0 {
		p.errAt(diag.SynModifierNotValid, start, "invalid class modifier")
	}
	switch {
	case p.eat(token.KwClass):
		d.Kind = ast.KindClass
	case p.eat(token.KwInterface):
		d.Kind = ast.KindInterface
	case p.eat(token.KwTrait):
		d.Kind = ast.KindTrait
	case p.atWord("enum"):
		p.advance()
		d.Kind = ast.KindEnum
	default:
		p.err(diag.SynUnexpectedToken, "expected class declaration, got "+describe(p.peek()))
		p.resyncStmt()
		return &ast.BadStmt{Base: ast.Base{Sp: p.spanFrom(start)}}
	}
	d.Name = p.parseMemberIdent()
	if d.Kind == ast.KindEnum && p.eat(token.Colon) {
		d.BackingType = p.parseType()
	}
	p.parseClassHeader(d)
	p.parseClassBody(d)
	d.Sp = p.spanFrom(start)
	return d
}

// parseClassHeader parses the extends and implements clauses.
func (p *Parser) parseClassHeader(d *ast.ClassDecl) {
	if p.eat(token.KwExtends) {
		for {
			d.Extends = append(d.Extends, p.parseName())
			if d.Kind != ast.KindInterface || !p.eat(token.Comma) {
				break
			}
		}
	}
	if p.eat(token.KwImplements) {
		for {
			d.Implements = append(d.Implements, p.parseName())
			if !p.eat(token.Comma) {
				break
			}
		}
	}
}

// parseAnonClass parses "class(args) extends X implements Y { ... }" after "new".
func (p *Parser) parseAnonClass(attrs []*ast.AttrGroup) *ast.ClassDecl {
	start := p.peek().Span
	d := &ast.ClassDecl{Attrs: attrs, Kind: ast.KindClass}
	d.Modifiers = p.parseModifiers()
	p.expect(token.KwClass, diag.SynUnexpectedToken, "expected 'class'")
	if p.at(token.LParen) {
		d.Args, _, _ = p.parseArgs()
	}
	p.parseClassHeader(d)
	p.parseClassBody(d)
	d.Sp = p.spanFrom(start)
	return d
}

func (p *Parser) parseClassBody(d *ast.ClassDecl) {
	open, ok := p.expect(token.LBrace, diag.SynExpectBlock, "expected '{'")
	if !ok {
		p.resyncStmt()
		return
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		before := p.pos
		if m := p.parseMember(d.Kind); m != nil {
			d.Members = append(d.Members, m)
		}
		if p.pos == before {
			p.err(diag.SynUnexpectedToken, "unexpected "+describe(p.peek())+" in class body")
			p.advance()
		}
	}
	p.expectClose(token.RBrace, open.Span)
	d.BodySp = p.spanFrom(open.Span)
}

func (p *Parser) parseMember(kind ast.ClassKind) ast.Member {
	start := p.peek().Span
	attrs := p.parseAttrGroups()
	if len(attrs) > 0 {
		start = attrs[0].Sp
	}

	switch {
	case p.at(token.KwUse) && len(attrs) == 0:
		return p.parseTraitUse()
	case p.at(token.KwCase):
		p.advance()
		c := &ast.EnumCaseDecl{Attrs: attrs, Name: p.parseMemberIdent()}
		if p.eat(token.Assign) {
			c.Value = p.parseExpr()
		}
		p.expectSemi()
		c.Sp = p.spanFrom(start)
		if kind != ast.KindEnum {
			p.errAt(diag.SynUnexpectedToken, c.Sp, "case can only be used in enums")
		}
		return c
	case p.at(token.Semicolon):
		p.advance()
		return nil
	}

	mods := p.parseModifiers()
	switch {
	case p.eat(token.KwConst):
		c := &ast.ClassConstDecl{Attrs: attrs, Modifiers: mods}
		// typed constants: "const int A = 1"
		if p.peekN(1).IsSemiReserved() || p.peekN(1).Kind == token.Pipe || p.peek().Kind == token.Question {
			c.Type = p.parseType()
		}
		c.Consts = p.parseConstSpecs()
		p.expectSemi()
		c.Sp = p.spanFrom(start)
		return c
	case p.eat(token.KwFunction):
		m := &ast.MethodDecl{Attrs: attrs, Modifiers: mods}
		m.ByRef = p.eat(token.Amp)
		m.Name = p.parseMemberIdent()
		m.Params, m.ParamsSp = p.parseParams()
		m.ReturnType = p.parseReturnType()
		if p.at(token.LBrace) {
			m.Body = p.parseBlock()
		} else {
			p.expectSemi()
		}
		m.Sp = p.spanFrom(start)
		return m
	}

	if mods == 0 && len(attrs) == 0 {
		p.err(diag.SynUnexpectedToken, "expected class member, got "+describe(p.peek()))
		p.resyncUntil(token.Semicolon, token.RBrace, token.KwPublic, token.KwProtected, token.KwPrivate,
			token.KwFunction, token.KwConst, token.KwStatic, token.KwAbstract, token.KwFinal)
		p.eat(token.Semicolon)
		return nil
	}

	prop := &ast.PropertyDecl{Attrs: attrs, Modifiers: mods}
	if !p.at(token.Variable) {
		prop.Type = p.parseType()
	}
	for {
		ps := p.peek().Span
		spec := &ast.PropertySpec{Var: p.parseSimpleVariable()}
		if p.eat(token.Assign) {
			spec.Default = p.parseExpr()
		}
		spec.Sp = p.spanFrom(ps)
		prop.Props = append(prop.Props, spec)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expectSemi()
	prop.Sp = p.spanFrom(start)
	return prop
}

// parseTraitUse parses "use A, B;" and "use A { ... }". The adaptation block
// is kept as raw text.
func (p *Parser) parseTraitUse() ast.Member {
	start := p.advance().Span
	d := &ast.TraitUseDecl{}
	for {
		d.Traits = append(d.Traits, p.parseName())
		if !p.eat(token.Comma) {
			break
		}
	}
	if p.at(token.LBrace) {
		open := p.advance().Span
		p.resyncUntil(token.RBrace)
		p.expectClose(token.RBrace, open)
		body := p.spanFrom(open)
		d.Adaptations = string(p.file.Content[body.Start:body.End])
	} else {
		p.expectSemi()
	}
	d.Sp = p.spanFrom(start)
	return d
}

// parseAttrGroups parses any number of "#[A, B(args)]" groups.
func (p *Parser) parseAttrGroups() []*ast.AttrGroup {
	var groups []*ast.AttrGroup
	for p.at(token.AttrOpen) {
		open := p.advance().Span
		g := &ast.AttrGroup{}
		for !p.at(token.RBracket) && !p.at(token.EOF) {
			as := p.peek().Span
			a := &ast.Attribute{Name: p.parseName()}
			if p.at(token.LParen) {
				a.Args, _, _ = p.parseArgs()
			}
			a.Sp = p.spanFrom(as)
			g.Attrs = append(g.Attrs, a)
			if !p.eat(token.Comma) {
				break
			}
		}
		p.expectClose(token.RBracket, open)
		g.Sp = p.spanFrom(open)
		groups = append(groups, g)
	}
	return groups
}
