package parser

import (
	"strings"

	"phphint/internal/ast"
	"phphint/internal/diag"
	"phphint/internal/source"
	"phphint/internal/token"
)

// Binary operator precedence, higher binds tighter.
const (
	precLowest = iota
	precOr
	precXor
	precAnd
	precAssign
	precTernary
	precCoalesce
	precOrOr
	precAndAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precCompare
	precConcat
	precShift
	precAdditive
	precMul
	precInstanceof
	precPow
)

// binaryPrec returns the precedence and right associativity of kind, or -1.
func binaryPrec(kind token.Kind) (int, bool) {
	switch kind {
	case token.KwOr:
		return precOr, false
	case token.KwXor:
		return precXor, false
	case token.KwAnd:
		return precAnd, false
	case token.Question:
		return precTernary, false
	case token.Coalesce:
		return precCoalesce, true
	case token.OrOr:
		return precOrOr, false
	case token.AndAnd:
		return precAndAnd, false
	case token.Pipe:
		return precBitOr, false
	case token.Caret:
		return precBitXor, false
	case token.Amp:
		return precBitAnd, false
	case token.EqEq, token.BangEq, token.Identical, token.NotIdentical, token.Spaceship:
		return precEquality, false
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precCompare, false
	case token.Dot:
		return precConcat, false
	case token.Shl, token.Shr:
		return precShift, false
	case token.Plus, token.Minus:
		return precAdditive, false
	case token.Star, token.Slash, token.Percent:
		return precMul, false
	case token.KwInstanceof:
		return precInstanceof, false
	case token.Pow:
		return precPow, true
	}
	return -1, false
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parseExprPrec(precLowest)
}

func (p *Parser) parseExprList() []ast.Expr {
	var out []ast.Expr
	for {
		out = append(out, p.parseExpr())
		if !p.eat(token.Comma) {
			return out
		}
	}
}

// parseExprPrec is precedence climbing over binary operators whose
// precedence is at least minPrec.
func (p *Parser) parseExprPrec(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		tok := p.peek()
		prec, rightAssoc := binaryPrec(tok.Kind)
		if prec < 0 || prec < minPrec {
			return left
		}
		switch tok.Kind {
		case token.Question:
			left = p.parseTernary(left)
		case token.KwInstanceof:
			p.advance()
			t := &ast.InstanceofExpr{X: left, Class: p.parseClassRef()}
			t.Sp = p.spanFrom(left.Span())
			left = t
		default:
			p.advance()
			next := prec + 1
			if rightAssoc {
				next = prec
			}
			right := p.parseExprPrec(next)
			left = &ast.BinaryExpr{
				Base: ast.Base{Sp: p.spanFrom(left.Span())},
				Op:   tok.Kind,
				OpSp: tok.Span,
				X:    left,
				Y:    right,
			}
		}
	}
}

func (p *Parser) parseTernary(cond ast.Expr) ast.Expr {
	p.advance() // '?'
	t := &ast.TernaryExpr{Cond: cond}
	if !p.eat(token.Colon) {
		t.Then = p.parseExprPrec(precAssign)
		p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' in ternary expression")
	}
	t.Else = p.parseExprPrec(precTernary + 1)
	t.Sp = p.spanFrom(cond.Span())
	return t
}

// parseClassRef parses the right side of instanceof and the class of new.
func (p *Parser) parseClassRef() ast.Expr {
	tok := p.peek()
	switch {
	case isNameToken(tok.Kind), tok.Kind == token.KwStatic:
		return p.parseName()
	case tok.Kind == token.Variable, tok.Kind == token.Dollar:
		return p.parseVariableChain()
	case tok.Kind == token.LParen:
		open := p.advance().Span
		x := &ast.ParenExpr{X: p.parseExpr()}
		p.expectClose(token.RParen, open)
		x.Sp = p.spanFrom(open)
		return x
	}
	p.err(diag.SynExpectExpression, "expected class name, got "+describe(tok))
	return &ast.BadExpr{Base: ast.Base{Sp: p.getDiagnosticSpan().ZeroideToStart()}}
}

// parseVariableChain parses a variable followed by property, static property
// and index fetches, stopping before any call.
func (p *Parser) parseVariableChain() ast.Expr {
	x := p.parseVariableExpr()
	for {
		switch {
		case p.atOr(token.Arrow, token.NullsafeArrow):
			nullSafe := p.advance().Kind == token.NullsafeArrow
			f := &ast.PropertyFetchExpr{Recv: x, Name: p.parseMemberName(), NullSafe: nullSafe}
			f.Sp = p.spanFrom(x.Span())
			x = f
		case p.at(token.ColonColon) && p.peekN(1).Kind == token.Variable:
			p.advance()
			f := &ast.StaticPropertyFetchExpr{Class: x, Prop: p.parseSimpleVariable()}
			f.Sp = p.spanFrom(x.Span())
			x = f
		case p.at(token.LBracket):
			x = p.parseIndex(x)
		default:
			return x
		}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case token.Bang:
		p.advance()
		u := &ast.UnaryExpr{Op: tok.Kind, X: p.parseExprPrec(precInstanceof)}
		u.Sp = p.spanFrom(tok.Span)
		return u
	case token.Minus, token.Plus, token.Tilde:
		p.advance()
		u := &ast.UnaryExpr{Op: tok.Kind, X: p.parseExprPrec(precPow)}
		u.Sp = p.spanFrom(tok.Span)
		return u
	case token.At:
		p.advance()
		s := &ast.SilenceExpr{X: p.parseExprPrec(precPow)}
		s.Sp = p.spanFrom(tok.Span)
		return s
	case token.Cast:
		p.advance()
		c := &ast.CastExpr{Type: normalizeCast(tok.Text), X: p.parseExprPrec(precPow)}
		c.Sp = p.spanFrom(tok.Span)
		return c
	case token.Inc, token.Dec:
		p.advance()
		x := &ast.IncDecExpr{Op: tok.Kind, Prefix: true, X: p.parseUnary()}
		x.Sp = p.spanFrom(tok.Span)
		return x
	case token.KwNew:
		return p.parseNew()
	case token.KwClone:
		p.advance()
		c := &ast.CloneExpr{X: p.parseUnary()}
		c.Sp = p.spanFrom(tok.Span)
		return c
	case token.KwPrint:
		p.advance()
		x := &ast.PrintExpr{X: p.parseExprPrec(precAssign)}
		x.Sp = p.spanFrom(tok.Span)
		return x
	case token.KwYield:
		return p.parseYield()
	case token.KwThrow:
		p.advance()
		x := &ast.ThrowExpr{X: p.parseExprPrec(precAssign)}
		x.Sp = p.spanFrom(tok.Span)
		return x
	case token.KwInclude, token.KwIncludeOnce, token.KwRequire, token.KwRequireOnce:
		p.advance()
		x := &ast.IncludeExpr{Kind: tok.Kind, X: p.parseExprPrec(precAssign)}
		x.Sp = p.spanFrom(tok.Span)
		return x
	case token.KwFunction, token.KwFn:
		return p.parseClosure(nil)
	case token.KwStatic:
		if k := p.peekN(1).Kind; k == token.KwFunction || k == token.KwFn {
			return p.parseClosure(nil)
		}
	case token.AttrOpen:
		attrs := p.parseAttrGroups()
		if p.atOr(token.KwFunction, token.KwFn, token.KwStatic) {
			return p.parseClosure(attrs)
		}
		p.err(diag.SynExpectExpression, "expected closure after attributes")
		return &ast.BadExpr{Base: ast.Base{Sp: p.spanFrom(tok.Span)}}
	}
	return p.parsePostfix(p.parsePrimary())
}

func (p *Parser) parseYield() ast.Expr {
	tok := p.advance()
	if p.atWord("from") {
		p.advance()
		x := &ast.YieldFromExpr{X: p.parseExprPrec(precAssign)}
		x.Sp = p.spanFrom(tok.Span)
		return x
	}
	y := &ast.YieldExpr{}
	if !p.atOr(token.Semicolon, token.RParen, token.Comma, token.RBracket, token.CloseTag, token.EOF) {
		v := p.parseExprPrec(precAssign)
		if p.eat(token.FatArrow) {
			y.Key = v
			v = p.parseExprPrec(precAssign)
		}
		y.Value = v
	}
	y.Sp = p.spanFrom(tok.Span)
	return y
}

var castNames = map[string]string{
	"integer": "int",
	"boolean": "bool",
	"double":  "float",
	"real":    "float",
	"binary":  "string",
}

func normalizeCast(text string) string {
	t := strings.ToLower(strings.TrimSpace(strings.Trim(text, "()")))
	if n, ok := castNames[t]; ok {
		return n
	}
	return t
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case token.Variable, token.Dollar:
		return p.parseVariableExpr()
	case token.IntLit:
		p.advance()
		return &ast.IntLit{Base: ast.Base{Sp: tok.Span}, Raw: tok.Text}
	case token.FloatLit:
		p.advance()
		return &ast.FloatLit{Base: ast.Base{Sp: tok.Span}, Raw: tok.Text}
	case token.StringLit, token.Heredoc, token.Backtick:
		p.advance()
		return &ast.StringLit{Base: ast.Base{Sp: tok.Span}, Kind: stringKind(tok), Raw: tok.Text}
	case token.LBracket:
		open := p.advance().Span
		a := &ast.ArrayLit{Short: true, Items: p.parseArrayItems(token.RBracket)}
		p.expectClose(token.RBracket, open)
		a.Sp = p.spanFrom(open)
		return a
	case token.KwArray:
		if p.peekN(1).Kind == token.LParen {
			p.advance()
			open := p.advance().Span
			a := &ast.ArrayLit{Items: p.parseArrayItems(token.RParen)}
			p.expectClose(token.RParen, open)
			a.Sp = p.spanFrom(tok.Span)
			return a
		}
	case token.KwList:
		p.advance()
		open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('")
		l := &ast.ListExpr{}
		if ok {
			l.Items = p.parseArrayItems(token.RParen)
			p.expectClose(token.RParen, open.Span)
		}
		l.Sp = p.spanFrom(tok.Span)
		return l
	case token.LParen:
		open := p.advance().Span
		x := &ast.ParenExpr{X: p.parseExpr()}
		p.expectClose(token.RParen, open)
		x.Sp = p.spanFrom(open)
		return x
	case token.KwIsset:
		p.advance()
		x := &ast.IssetExpr{}
		open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('")
		if ok {
			for !p.at(token.RParen) && !p.at(token.EOF) {
				x.Vars = append(x.Vars, p.parseExpr())
				if !p.eat(token.Comma) {
					break
				}
			}
			p.expectClose(token.RParen, open.Span)
		}
		x.Sp = p.spanFrom(tok.Span)
		return x
	case token.KwEmpty:
		p.advance()
		x := &ast.EmptyExpr{X: p.parseParenCond()}
		x.Sp = p.spanFrom(tok.Span)
		return x
	case token.KwExit:
		p.advance()
		x := &ast.ExitExpr{}
		if p.at(token.LParen) {
			open := p.advance().Span
			if !p.at(token.RParen) {
				x.X = p.parseExpr()
			}
			p.expectClose(token.RParen, open)
		}
		x.Sp = p.spanFrom(tok.Span)
		return x
	case token.KwMatch:
		return p.parseMatch()
	case token.KwStatic:
		return p.parseName()
	case token.Ident, token.NameQualified, token.NameFullyQualified, token.NameRelative:
		return p.parseName()
	}

	p.err(diag.SynExpectExpression, "expected expression, got "+describe(tok))
	sp := p.getDiagnosticSpan()
	switch tok.Kind {
	case token.Semicolon, token.RParen, token.RBracket, token.RBrace, token.Comma, token.CloseTag, token.EOF:
		return &ast.BadExpr{Base: ast.Base{Sp: sp.ZeroideToStart()}}
	}
	p.advance()
	return &ast.BadExpr{Base: ast.Base{Sp: sp}}
}

func stringKind(tok token.Token) ast.StringKind {
	switch tok.Kind {
	case token.Backtick:
		return ast.StringBacktick
	case token.Heredoc:
		rest := strings.TrimLeft(strings.TrimPrefix(tok.Text, "<<<"), " \t")
		if strings.HasPrefix(rest, "'") {
			return ast.StringNowdoc
		}
		return ast.StringHeredoc
	}
	if strings.HasPrefix(strings.TrimLeft(tok.Text, "bB"), "'") {
		return ast.StringSingle
	}
	return ast.StringDouble
}

// parseVariableExpr parses "$x", "$$x" and "${expr}".
func (p *Parser) parseVariableExpr() ast.Expr {
	tok := p.peek()
	if tok.Kind != token.Dollar {
		return p.parseSimpleVariable()
	}
	p.advance()
	v := &ast.Variable{}
	if p.at(token.LBrace) {
		open := p.advance().Span
		v.NameExpr = p.parseExpr()
		p.expectClose(token.RBrace, open)
	} else {
		v.NameExpr = p.parseVariableExpr()
	}
	v.Sp = p.spanFrom(tok.Span)
	return v
}

// parseArrayItems parses array and list items up to closer (not consumed).
// A nil entry is a skipped slot.
func (p *Parser) parseArrayItems(closer token.Kind) []*ast.ArrayItem {
	var items []*ast.ArrayItem
	for !p.at(closer) && !p.at(token.EOF) {
		if p.at(token.Comma) {
			p.advance()
			items = append(items, nil)
			continue
		}
		start := p.peek().Span
		it := &ast.ArrayItem{}
		switch {
		case p.eat(token.Ellipsis):
			it.Spread = true
			it.Value = p.parseExpr()
		case p.eat(token.Amp):
			it.ByRef = true
			it.Value = p.parseExpr()
		default:
			v := p.parseExpr()
			if p.eat(token.FatArrow) {
				it.Key = v
				it.ByRef = p.eat(token.Amp)
				v = p.parseExpr()
			}
			it.Value = v
		}
		it.Sp = p.spanFrom(start)
		items = append(items, it)
		if !p.eat(token.Comma) {
			break
		}
	}
	return items
}

// parseArgs parses "(args)". The bool result marks the first-class callable
// syntax "f(...)".
func (p *Parser) parseArgs() ([]*ast.Arg, source.Span, bool) {
	open := p.advance().Span
	if p.at(token.Ellipsis) && p.peekN(1).Kind == token.RParen {
		p.advance()
		p.advance()
		return nil, p.spanFrom(open), true
	}
	var args []*ast.Arg
	for !p.at(token.RParen) && !p.at(token.EOF) {
		start := p.peek().Span
		a := &ast.Arg{}
		switch {
		case p.eat(token.Ellipsis):
			a.Spread = true
		case p.peek().IsSemiReserved() && p.peekN(1).Kind == token.Colon:
			a.Name = p.parseMemberIdent()
			p.advance()
		}
		a.Value = p.parseExpr()
		a.Sp = p.spanFrom(start)
		args = append(args, a)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expectClose(token.RParen, open)
	return args, p.spanFrom(open), false
}

// parseMemberName parses what follows "->": an identifier, a variable or a
// braced expression.
func (p *Parser) parseMemberName() ast.Expr {
	tok := p.peek()
	switch {
	case tok.IsSemiReserved():
		p.advance()
		return &ast.Ident{Base: ast.Base{Sp: tok.Span}, Name: tok.Text}
	case tok.Kind == token.Variable, tok.Kind == token.Dollar:
		return p.parseVariableExpr()
	case tok.Kind == token.LBrace:
		open := p.advance().Span
		x := p.parseExpr()
		p.expectClose(token.RBrace, open)
		return x
	}
	p.err(diag.SynExpectIdentifier, "expected member name, got "+describe(tok))
	return &ast.Ident{Base: ast.Base{Sp: p.getDiagnosticSpan().ZeroideToStart()}}
}

func (p *Parser) parseIndex(x ast.Expr) ast.Expr {
	open := p.advance().Span
	ix := &ast.IndexExpr{X: x}
	if !p.at(token.RBracket) {
		ix.Index = p.parseExpr()
	}
	p.expectClose(token.RBracket, open)
	ix.Sp = p.spanFrom(x.Span())
	return ix
}

func isAssignable(x ast.Expr) bool {
	switch x.(type) {
	case *ast.Variable, *ast.IndexExpr, *ast.PropertyFetchExpr, *ast.StaticPropertyFetchExpr,
		*ast.ListExpr, *ast.ArrayLit:
		return true
	}
	return false
}

// parsePostfix applies member access, calls, indexing, postfix ++/-- and
// assignment to x.
func (p *Parser) parsePostfix(x ast.Expr) ast.Expr {
	for {
		tok := p.peek()
		switch {
		case tok.Kind == token.LBracket:
			x = p.parseIndex(x)
		case tok.Kind == token.Arrow, tok.Kind == token.NullsafeArrow:
			p.advance()
			nullSafe := tok.Kind == token.NullsafeArrow
			name := p.parseMemberName()
			if p.at(token.LParen) {
				args, argsSp, callable := p.parseArgs()
				x = &ast.MethodCallExpr{
					Base:     ast.Base{Sp: p.spanFrom(x.Span())},
					Recv:     x,
					Name:     name,
					Args:     args,
					ArgsSp:   argsSp,
					NullSafe: nullSafe,
					Callable: callable,
				}
				continue
			}
			x = &ast.PropertyFetchExpr{
				Base:     ast.Base{Sp: p.spanFrom(x.Span())},
				Recv:     x,
				Name:     name,
				NullSafe: nullSafe,
			}
		case tok.Kind == token.ColonColon:
			x = p.parseStaticMember(x)
		case tok.Kind == token.LParen:
			args, argsSp, callable := p.parseArgs()
			x = &ast.CallExpr{
				Base:     ast.Base{Sp: p.spanFrom(x.Span())},
				Fun:      x,
				Args:     args,
				ArgsSp:   argsSp,
				Callable: callable,
			}
		case tok.Kind == token.Inc, tok.Kind == token.Dec:
			p.advance()
			return &ast.IncDecExpr{Base: ast.Base{Sp: p.spanFrom(x.Span())}, Op: tok.Kind, X: x}
		case tok.Kind.IsAssignOp():
			return p.parseAssign(x)
		default:
			return x
		}
	}
}

func (p *Parser) parseStaticMember(class ast.Expr) ast.Expr {
	p.advance() // '::'
	tok := p.peek()
	switch {
	case tok.Kind == token.Variable:
		v := p.parseSimpleVariable()
		if p.at(token.LParen) {
			args, argsSp, callable := p.parseArgs()
			return &ast.StaticCallExpr{
				Base: ast.Base{Sp: p.spanFrom(class.Span())}, Class: class, Name: v,
				Args: args, ArgsSp: argsSp, Callable: callable,
			}
		}
		return &ast.StaticPropertyFetchExpr{Base: ast.Base{Sp: p.spanFrom(class.Span())}, Class: class, Prop: v}
	case tok.Kind == token.LBrace:
		open := p.advance().Span
		name := p.parseExpr()
		p.expectClose(token.RBrace, open)
		if !p.at(token.LParen) {
			p.err(diag.SynUnexpectedToken, "expected '(' after dynamic static method name")
			return &ast.BadExpr{Base: ast.Base{Sp: p.spanFrom(class.Span())}}
		}
		args, argsSp, callable := p.parseArgs()
		return &ast.StaticCallExpr{
			Base: ast.Base{Sp: p.spanFrom(class.Span())}, Class: class, Name: name,
			Args: args, ArgsSp: argsSp, Callable: callable,
		}
	case tok.IsSemiReserved():
		p.advance()
		name := &ast.Ident{Base: ast.Base{Sp: tok.Span}, Name: tok.Text}
		if p.at(token.LParen) && tok.Kind != token.KwClass {
			args, argsSp, callable := p.parseArgs()
			return &ast.StaticCallExpr{
				Base: ast.Base{Sp: p.spanFrom(class.Span())}, Class: class, Name: name,
				Args: args, ArgsSp: argsSp, Callable: callable,
			}
		}
		return &ast.ClassConstFetchExpr{Base: ast.Base{Sp: p.spanFrom(class.Span())}, Class: class, Name: name}
	}
	p.err(diag.SynExpectIdentifier, "expected member name after '::', got "+describe(tok))
	return &ast.BadExpr{Base: ast.Base{Sp: p.spanFrom(class.Span())}}
}

func (p *Parser) parseAssign(lhs ast.Expr) ast.Expr {
	op := p.advance()
	a := &ast.AssignExpr{Op: op.Kind, OpSp: op.Span, Lhs: lhs}
	if !isAssignable(lhs) {
		p.errAt(diag.SynBadAssignTarget, lhs.Span(), "cannot assign to this expression")
	} else if op.Kind != token.Assign {
		switch lhs.(type) {
		case *ast.ArrayLit, *ast.ListExpr:
			p.errAt(diag.SynBadAssignTarget, lhs.Span(), "cannot use compound assignment with a destructuring target")
		}
	}
	if op.Kind == token.Assign && p.at(token.Amp) {
		p.advance()
		a.ByRef = true
	}
	a.Rhs = p.parseExprPrec(precAssign)
	a.Sp = p.spanFrom(lhs.Span())
	return a
}

func (p *Parser) parseNew() ast.Expr {
	start := p.advance().Span
	n := &ast.NewExpr{}
	switch {
	case p.at(token.AttrOpen), p.at(token.KwClass), p.at(token.KwReadonly) && p.peekN(1).Kind == token.KwClass:
		attrs := p.parseAttrGroups()
		hasArgs := p.peekN(1).Kind == token.LParen || p.at(token.KwReadonly) && p.peekN(2).Kind == token.LParen
		cls := p.parseAnonClass(attrs)
		n.Class = cls
		n.HasArgs = hasArgs
	default:
		n.Class = p.parseClassRef()
		if p.at(token.LParen) {
			n.Args, n.ArgsSp, _ = p.parseArgs()
			n.HasArgs = true
		}
	}
	n.Sp = p.spanFrom(start)
	return n
}

func (p *Parser) parseClosure(attrs []*ast.AttrGroup) ast.Expr {
	start := p.peek().Span
	if len(attrs) > 0 {
		start = attrs[0].Sp
	}
	static := p.eat(token.KwStatic)
	if p.eat(token.KwFn) {
		f := &ast.ArrowFuncExpr{Attrs: attrs, Static: static}
		f.ByRef = p.eat(token.Amp)
		f.Params, f.ParamsSp = p.parseParams()
		f.ReturnType = p.parseReturnType()
		p.expect(token.FatArrow, diag.SynUnexpectedToken, "expected '=>'")
		f.Body = p.parseExprPrec(precAssign)
		f.Sp = p.spanFrom(start)
		return f
	}
	p.expect(token.KwFunction, diag.SynUnexpectedToken, "expected 'function'")
	c := &ast.ClosureExpr{Attrs: attrs, Static: static}
	c.ByRef = p.eat(token.Amp)
	c.Params, c.ParamsSp = p.parseParams()
	if p.eat(token.KwUse) {
		open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('")
		if ok {
			for !p.at(token.RParen) && !p.at(token.EOF) {
				us := p.peek().Span
				u := &ast.ClosureUse{ByRef: p.eat(token.Amp)}
				u.Var = p.parseSimpleVariable()
				u.Sp = p.spanFrom(us)
				c.Uses = append(c.Uses, u)
				if !p.eat(token.Comma) {
					break
				}
			}
			p.expectClose(token.RParen, open.Span)
		}
	}
	c.ReturnType = p.parseReturnType()
	c.Body = p.parseBlock()
	c.Sp = p.spanFrom(start)
	return c
}

func (p *Parser) parseMatch() ast.Expr {
	start := p.advance().Span
	m := &ast.MatchExpr{Cond: p.parseParenCond()}
	open, ok := p.expect(token.LBrace, diag.SynExpectBlock, "expected '{'")
	if !ok {
		m.Sp = p.spanFrom(start)
		return m
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		as := p.peek().Span
		arm := &ast.MatchArm{}
		if p.at(token.KwDefault) && p.peekN(1).Kind != token.ColonColon {
			p.advance()
			p.eat(token.Comma)
		} else {
			for !p.at(token.FatArrow) && !p.at(token.EOF) {
				arm.Conds = append(arm.Conds, p.parseExpr())
				if !p.eat(token.Comma) {
					break
				}
			}
		}
		if _, ok := p.expect(token.FatArrow, diag.SynUnexpectedToken, "expected '=>' in match arm"); !ok {
			p.resyncUntil(token.Comma, token.RBrace)
			p.eat(token.Comma)
			continue
		}
		arm.Body = p.parseExpr()
		arm.Sp = p.spanFrom(as)
		m.Arms = append(m.Arms, arm)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expectClose(token.RBrace, open.Span)
	m.Sp = p.spanFrom(start)
	return m
}
