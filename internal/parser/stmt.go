package parser

import (
	"strings"

	"phphint/internal/ast"
	"phphint/internal/diag"
	"phphint/internal/token"
)

// parseStmt parses one statement. It returns nil for tokens that produce no
// statement (open and close tags).
func (p *Parser) parseStmt() ast.Stmt {
	tok := p.peek()
	switch tok.Kind {
	case token.OpenTag, token.CloseTag:
		p.advance()
		return nil
	case token.InlineHTML:
		p.advance()
		return &ast.InlineHTMLStmt{Base: ast.Base{Sp: tok.Span}, Text: tok.Text}
	case token.OpenTagEcho:
		p.advance()
		s := &ast.EchoStmt{Short: true}
		s.Exprs = p.parseExprList()
		p.expectSemi()
		s.Sp = p.spanFrom(tok.Span)
		return s
	case token.Semicolon:
		p.advance()
		return &ast.EmptyStmt{Base: ast.Base{Sp: tok.Span}}
	case token.LBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwDo:
		return p.parseDoWhile()
	case token.KwFor:
		return p.parseFor()
	case token.KwForeach:
		return p.parseForeach()
	case token.KwSwitch:
		return p.parseSwitch()
	case token.KwBreak, token.KwContinue:
		return p.parseBreakContinue()
	case token.KwReturn:
		p.advance()
		s := &ast.ReturnStmt{}
		if !p.atStmtEnd() {
			s.Result = p.parseExpr()
		}
		p.expectSemi()
		s.Sp = p.spanFrom(tok.Span)
		return s
	case token.KwEcho:
		p.advance()
		s := &ast.EchoStmt{}
		s.Exprs = p.parseExprList()
		p.expectSemi()
		s.Sp = p.spanFrom(tok.Span)
		return s
	case token.KwGlobal:
		p.advance()
		s := &ast.GlobalStmt{}
		for {
			s.Vars = append(s.Vars, p.parseSimpleVariable())
			if !p.eat(token.Comma) {
				break
			}
		}
		p.expectSemi()
		s.Sp = p.spanFrom(tok.Span)
		return s
	case token.KwStatic:
		if p.peekN(1).Kind == token.Variable {
			return p.parseStaticVars()
		}
	case token.KwUnset:
		return p.parseUnset()
	case token.KwTry:
		return p.parseTry()
	case token.KwThrow:
		p.advance()
		s := &ast.ThrowStmt{X: p.parseExpr()}
		p.expectSemi()
		s.Sp = p.spanFrom(tok.Span)
		return s
	case token.KwDeclare:
		return p.parseDeclare()
	case token.KwGoto:
		p.advance()
		s := &ast.GotoStmt{Label: p.parseIdent()}
		p.expectSemi()
		s.Sp = p.spanFrom(tok.Span)
		return s
	case token.KwNamespace:
		if k := p.peekN(1).Kind; k == token.Ident || k == token.NameQualified || k == token.LBrace {
			return p.parseNamespace()
		}
	case token.KwUse:
		return p.parseUse()
	case token.KwConst:
		return p.parseConstStmt()
	case token.KwFunction:
		next := p.peekN(1)
		if next.Kind == token.Amp {
			next = p.peekN(2)
		}
		if next.IsSemiReserved() {
			return p.parseFuncDecl(nil)
		}
	case token.KwAbstract, token.KwFinal, token.KwClass, token.KwInterface, token.KwTrait:
		return p.parseClassDecl(nil)
	case token.KwReadonly:
		if k := p.peekN(1).Kind; k == token.KwClass || k == token.KwFinal || k == token.KwAbstract {
			return p.parseClassDecl(nil)
		}
	case token.AttrOpen:
		return p.parseAttributedStmt()
	case token.Ident:
		if p.atEnumDecl() {
			return p.parseClassDecl(nil)
		}
		if p.peekN(1).Kind == token.Colon {
			name := p.parseIdent()
			p.advance() // ':'
			return &ast.LabelStmt{Base: ast.Base{Sp: p.spanFrom(tok.Span)}, Name: name}
		}
		if strings.EqualFold(tok.Text, "__halt_compiler") {
			for !p.at(token.EOF) {
				p.advance()
			}
			return nil
		}
	}
	return p.parseExprStmt()
}

func (p *Parser) atStmtEnd() bool {
	return p.atOr(token.Semicolon, token.CloseTag, token.EOF)
}

// atEnumDecl distinguishes "enum Suit {" and "enum Suit: string" from a
// constant or function named enum.
func (p *Parser) atEnumDecl() bool {
	if !p.atWord("enum") {
		return false
	}
	if !p.peekN(1).IsSemiReserved() {
		return false
	}
	switch p.peekN(2).Kind {
	case token.LBrace, token.Colon, token.KwImplements:
		return true
	}
	return false
}

func (p *Parser) parseExprStmt() ast.Stmt {
	start := p.peek().Span
	x := p.parseExpr()
	if _, bad := x.(*ast.BadExpr); bad {
		p.resyncStmt()
		return &ast.ExprStmt{Base: ast.Base{Sp: p.spanFrom(start)}, X: x}
	}
	p.expectSemi()
	return &ast.ExprStmt{Base: ast.Base{Sp: p.spanFrom(start)}, X: x}
}

// parseStmtList parses statements until one of the terminators or EOF.
func (p *Parser) parseStmtList(terminators ...token.Kind) []ast.Stmt {
	var out []ast.Stmt
	for !p.at(token.EOF) && !p.atOr(terminators...) {
		before := p.pos
		s := p.parseStmt()
		if p.pos == before {
			p.err(diag.SynUnexpectedToken, "unexpected "+describe(p.peek()))
			p.advance()
			continue
		}
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (p *Parser) parseBlock() *ast.BlockStmt {
	open, ok := p.expect(token.LBrace, diag.SynExpectBlock, "expected '{'")
	if !ok {
		return &ast.BlockStmt{Base: ast.Base{Sp: open.Span.ZeroideToStart()}}
	}
	b := &ast.BlockStmt{}
	b.Stmts = p.parseStmtList(token.RBrace)
	p.expectClose(token.RBrace, open.Span)
	b.Sp = p.spanFrom(open.Span)
	return b
}

// parseBody parses a control structure body. With a ':' it reads an
// alternative syntax list up to one of enders (not consumed).
func (p *Parser) parseBody(alt bool, enders ...token.Kind) ast.Stmt {
	if alt {
		start := p.peek().Span
		b := &ast.BlockStmt{Alt: true}
		b.Stmts = p.parseStmtList(enders...)
		b.Sp = p.spanFrom(start)
		if len(b.Stmts) == 0 {
			b.Sp = start.ZeroideToStart()
		}
		return b
	}
	for p.atOr(token.OpenTag, token.CloseTag) {
		p.advance()
	}
	if p.at(token.EOF) {
		p.err(diag.SynExpectBlock, "expected statement")
		return &ast.BadStmt{Base: ast.Base{Sp: p.getDiagnosticSpan()}}
	}
	before := p.pos
	s := p.parseStmt()
	if s == nil || p.pos == before {
		return &ast.BadStmt{Base: ast.Base{Sp: p.getDiagnosticSpan()}}
	}
	return s
}

// parseParenCond parses "( expr )".
func (p *Parser) parseParenCond() ast.Expr {
	open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('")
	if !ok {
		return &ast.BadExpr{Base: ast.Base{Sp: open.Span}}
	}
	x := p.parseExpr()
	p.expectClose(token.RParen, open.Span)
	return x
}

// endAlt consumes the closing keyword of an alternative syntax construct.
func (p *Parser) endAlt(k token.Kind) {
	if _, ok := p.expect(k, diag.SynUnexpectedToken, "expected '"+k.String()+"'"); ok {
		p.expectSemi()
	}
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.advance().Span
	s := &ast.IfStmt{Cond: p.parseParenCond()}
	s.Alt = p.eat(token.Colon)
	if s.Alt {
		s.Body = p.parseBody(true, token.KwElseif, token.KwElse, token.KwEndif)
		for p.at(token.KwElseif) {
			cs := p.advance().Span
			c := &ast.ElseIfClause{Cond: p.parseParenCond()}
			p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':'")
			c.Body = p.parseBody(true, token.KwElseif, token.KwElse, token.KwEndif)
			c.Sp = p.spanFrom(cs)
			s.ElseIfs = append(s.ElseIfs, c)
		}
		if p.at(token.KwElse) {
			cs := p.advance().Span
			p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':'")
			c := &ast.ElseClause{Body: p.parseBody(true, token.KwEndif)}
			c.Sp = p.spanFrom(cs)
			s.Else = c
		}
		p.endAlt(token.KwEndif)
		s.Sp = p.spanFrom(start)
		return s
	}

	s.Body = p.parseBody(false)
	for {
		switch {
		case p.at(token.KwElseif), p.at(token.KwElse) && p.peekN(1).Kind == token.KwIf:
			cs := p.advance().Span
			if p.at(token.KwIf) {
				p.advance()
			}
			c := &ast.ElseIfClause{Cond: p.parseParenCond()}
			c.Body = p.parseBody(false)
			c.Sp = p.spanFrom(cs)
			s.ElseIfs = append(s.ElseIfs, c)
			continue
		case p.at(token.KwElse):
			cs := p.advance().Span
			c := &ast.ElseClause{Body: p.parseBody(false)}
			c.Sp = p.spanFrom(cs)
			s.Else = c
		}
		break
	}
	s.Sp = p.spanFrom(start)
	return s
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.advance().Span
	s := &ast.WhileStmt{Cond: p.parseParenCond()}
	s.Alt = p.eat(token.Colon)
	s.Body = p.parseBody(s.Alt, token.KwEndwhile)
	if s.Alt {
		p.endAlt(token.KwEndwhile)
	}
	s.Sp = p.spanFrom(start)
	return s
}

func (p *Parser) parseDoWhile() ast.Stmt {
	start := p.advance().Span
	s := &ast.DoWhileStmt{Body: p.parseBody(false)}
	p.expect(token.KwWhile, diag.SynUnexpectedToken, "expected 'while'")
	s.Cond = p.parseParenCond()
	p.expectSemi()
	s.Sp = p.spanFrom(start)
	return s
}

func (p *Parser) parseFor() ast.Stmt {
	start := p.advance().Span
	s := &ast.ForStmt{}
	open, _ := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('")
	if !p.at(token.Semicolon) {
		s.Init = p.parseExprList()
	}
	p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';'")
	if !p.at(token.Semicolon) {
		s.Cond = p.parseExprList()
	}
	p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';'")
	if !p.at(token.RParen) {
		s.Loop = p.parseExprList()
	}
	p.expectClose(token.RParen, open.Span)
	s.Alt = p.eat(token.Colon)
	s.Body = p.parseBody(s.Alt, token.KwEndfor)
	if s.Alt {
		p.endAlt(token.KwEndfor)
	}
	s.Sp = p.spanFrom(start)
	return s
}

func (p *Parser) parseForeach() ast.Stmt {
	start := p.advance().Span
	s := &ast.ForeachStmt{}
	open, _ := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('")
	s.X = p.parseExpr()
	p.expect(token.KwAs, diag.SynUnexpectedToken, "expected 'as'")
	first, firstRef := p.parseForeachTarget()
	if p.eat(token.FatArrow) {
		s.Key = first
		s.Value, s.ByRef = p.parseForeachTarget()
	} else {
		s.Value, s.ByRef = first, firstRef
	}
	p.expectClose(token.RParen, open.Span)
	s.Alt = p.eat(token.Colon)
	s.Body = p.parseBody(s.Alt, token.KwEndforeach)
	if s.Alt {
		p.endAlt(token.KwEndforeach)
	}
	s.Sp = p.spanFrom(start)
	return s
}

func (p *Parser) parseForeachTarget() (ast.Expr, bool) {
	byRef := p.eat(token.Amp)
	return p.parseExprPrec(precAssign + 1), byRef
}

func (p *Parser) parseSwitch() ast.Stmt {
	start := p.advance().Span
	s := &ast.SwitchStmt{Tag: p.parseParenCond()}
	closer := token.RBrace
	open := p.peek().Span
	if p.eat(token.Colon) {
		s.Alt = true
		closer = token.KwEndswitch
	} else if _, ok := p.expect(token.LBrace, diag.SynExpectBlock, "expected '{'"); !ok {
		s.Sp = p.spanFrom(start)
		return s
	}
	p.eat(token.Semicolon)
	for !p.at(closer) && !p.at(token.EOF) {
		cs := p.peek().Span
		c := &ast.CaseClause{}
		switch {
		case p.eat(token.KwCase):
			c.Cond = p.parseExpr()
		case p.eat(token.KwDefault):
		default:
			p.err(diag.SynUnexpectedToken, "expected 'case' or 'default', got "+describe(p.peek()))
			p.resyncUntil(token.KwCase, token.KwDefault, closer)
			continue
		}
		if !p.eat(token.Colon) && !p.eat(token.Semicolon) {
			p.err(diag.SynUnexpectedToken, "expected ':' after case")
		}
		c.Body = p.parseStmtList(token.KwCase, token.KwDefault, closer)
		c.Sp = p.spanFrom(cs)
		s.Cases = append(s.Cases, c)
	}
	if s.Alt {
		p.endAlt(token.KwEndswitch)
	} else {
		p.expectClose(token.RBrace, open)
	}
	s.Sp = p.spanFrom(start)
	return s
}

func (p *Parser) parseBreakContinue() ast.Stmt {
	tok := p.advance()
	var level ast.Expr
	if !p.atStmtEnd() {
		level = p.parseExpr()
	}
	p.expectSemi()
	sp := p.spanFrom(tok.Span)
	if tok.Kind == token.KwBreak {
		return &ast.BreakStmt{Base: ast.Base{Sp: sp}, Level: level}
	}
	return &ast.ContinueStmt{Base: ast.Base{Sp: sp}, Level: level}
}

func (p *Parser) parseStaticVars() ast.Stmt {
	start := p.advance().Span
	s := &ast.StaticVarStmt{}
	for {
		vs := p.peek().Span
		v := &ast.StaticVar{Var: p.parseSimpleVariable()}
		if p.eat(token.Assign) {
			v.Default = p.parseExpr()
		}
		v.Sp = p.spanFrom(vs)
		s.Vars = append(s.Vars, v)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expectSemi()
	s.Sp = p.spanFrom(start)
	return s
}

func (p *Parser) parseUnset() ast.Stmt {
	start := p.advance().Span
	s := &ast.UnsetStmt{}
	open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('")
	if ok {
		for !p.at(token.RParen) && !p.at(token.EOF) {
			s.Vars = append(s.Vars, p.parseExpr())
			if !p.eat(token.Comma) {
				break
			}
		}
		p.expectClose(token.RParen, open.Span)
	}
	p.expectSemi()
	s.Sp = p.spanFrom(start)
	return s
}

func (p *Parser) parseTry() ast.Stmt {
	start := p.advance().Span
	s := &ast.TryStmt{Body: p.parseBlock()}
	for p.at(token.KwCatch) {
		cs := p.advance().Span
		c := &ast.CatchClause{}
		open, _ := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('")
		for {
			c.Types = append(c.Types, p.parseName())
			if !p.eat(token.Pipe) {
				break
			}
		}
		if p.at(token.Variable) {
			c.Var = p.parseSimpleVariable()
		}
		p.expectClose(token.RParen, open.Span)
		c.Body = p.parseBlock()
		c.Sp = p.spanFrom(cs)
		s.Catches = append(s.Catches, c)
	}
	if p.eat(token.KwFinally) {
		s.Finally = p.parseBlock()
	}
	if len(s.Catches) == 0 && s.Finally == nil {
		p.errAt(diag.SynUnexpectedToken, start, "try without catch or finally")
	}
	s.Sp = p.spanFrom(start)
	return s
}

func (p *Parser) parseDeclare() ast.Stmt {
	start := p.advance().Span
	s := &ast.DeclareStmt{}
	open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('")
	if ok {
		for !p.at(token.RParen) && !p.at(token.EOF) {
			ds := p.peek().Span
			d := &ast.DeclareDirective{Name: p.parseIdent()}
			p.expect(token.Assign, diag.SynUnexpectedToken, "expected '='")
			d.Value = p.parseExpr()
			d.Sp = p.spanFrom(ds)
			s.Directives = append(s.Directives, d)
			if !p.eat(token.Comma) {
				break
			}
		}
		p.expectClose(token.RParen, open.Span)
	}
	switch {
	case p.at(token.Semicolon), p.at(token.CloseTag):
		p.expectSemi()
	case p.eat(token.Colon):
		s.Body = p.parseBody(true, token.KwEnddeclare)
		p.endAlt(token.KwEnddeclare)
	default:
		s.Body = p.parseBody(false)
	}
	s.Sp = p.spanFrom(start)
	return s
}

func (p *Parser) parseNamespace() ast.Stmt {
	start := p.advance().Span
	s := &ast.NamespaceStmt{}
	if !p.at(token.LBrace) {
		s.Name = p.parseName()
	}
	if p.at(token.LBrace) {
		s.Braced = true
		b := p.parseBlock()
		s.Stmts = b.Stmts
	} else {
		p.expectSemi()
	}
	s.Sp = p.spanFrom(start)
	return s
}

func (p *Parser) parseConstStmt() ast.Stmt {
	start := p.advance().Span
	s := &ast.ConstStmt{Consts: p.parseConstSpecs()}
	p.expectSemi()
	s.Sp = p.spanFrom(start)
	return s
}

func (p *Parser) parseConstSpecs() []*ast.ConstSpec {
	var out []*ast.ConstSpec
	for {
		cs := p.peek().Span
		c := &ast.ConstSpec{Name: p.parseMemberIdent()}
		if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '='"); ok {
			c.Value = p.parseExpr()
		}
		c.Sp = p.spanFrom(cs)
		out = append(out, c)
		if !p.eat(token.Comma) {
			return out
		}
	}
}

// parseAttributedStmt handles statements that start with "#[": declarations
// take the attributes, closures used as statements keep them too.
func (p *Parser) parseAttributedStmt() ast.Stmt {
	attrs := p.parseAttrGroups()
	switch {
	case p.at(token.KwFunction) && p.peekN(1).IsSemiReserved(),
		p.at(token.KwFunction) && p.peekN(1).Kind == token.Amp && p.peekN(2).IsSemiReserved():
		return p.parseFuncDecl(attrs)
	case p.atOr(token.KwAbstract, token.KwFinal, token.KwClass, token.KwInterface, token.KwTrait, token.KwReadonly),
		p.atEnumDecl():
		return p.parseClassDecl(attrs)
	}
	s := p.parseExprStmt()
	if es, ok := s.(*ast.ExprStmt); ok {
		switch x := es.X.(type) {
		case *ast.ClosureExpr:
			x.Attrs = attrs
		case *ast.ArrowFuncExpr:
			x.Attrs = attrs
		}
		if len(attrs) > 0 {
			es.Sp = attrs[0].Sp.Cover(es.Sp)
		}
	}
	return s
}
