package lexer

import (
	"phphint/internal/diag"
	"phphint/internal/token"
)

// scanOperatorOrPunct matches the longest operator first.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()

	switch {
	case lx.try3('<', '=', '>'):
		return lx.makeToken(token.Spaceship, start)
	case lx.try3('*', '*', '='):
		return lx.makeToken(token.PowAssign, start)
	case lx.try3('.', '.', '.'):
		return lx.makeToken(token.Ellipsis, start)
	case lx.try3('<', '<', '='):
		return lx.makeToken(token.ShlAssign, start)
	case lx.try3('>', '>', '='):
		return lx.makeToken(token.ShrAssign, start)
	case lx.try3('=', '=', '='):
		return lx.makeToken(token.Identical, start)
	case lx.try3('!', '=', '='):
		return lx.makeToken(token.NotIdentical, start)
	case lx.try3('?', '?', '='):
		return lx.makeToken(token.CoalesceAssign, start)
	case lx.try3('?', '-', '>'):
		return lx.makeToken(token.NullsafeArrow, start)
	}

	type pair struct {
		a, b byte
		kind token.Kind
	}
	pairs := [...]pair{
		{'*', '*', token.Pow},
		{'+', '+', token.Inc},
		{'-', '-', token.Dec},
		{'-', '>', token.Arrow},
		{'=', '>', token.FatArrow},
		{':', ':', token.ColonColon},
		{'=', '=', token.EqEq},
		{'!', '=', token.BangEq},
		{'<', '>', token.BangEq},
		{'<', '=', token.LtEq},
		{'>', '=', token.GtEq},
		{'<', '<', token.Shl},
		{'>', '>', token.Shr},
		{'&', '&', token.AndAnd},
		{'|', '|', token.OrOr},
		{'?', '?', token.Coalesce},
		{'+', '=', token.PlusAssign},
		{'-', '=', token.MinusAssign},
		{'*', '=', token.StarAssign},
		{'/', '=', token.SlashAssign},
		{'.', '=', token.DotAssign},
		{'%', '=', token.PercentAssign},
		{'&', '=', token.AmpAssign},
		{'|', '=', token.PipeAssign},
		{'^', '=', token.CaretAssign},
		{'#', '[', token.AttrOpen},
	}
	for _, p := range pairs {
		if lx.try2(p.a, p.b) {
			return lx.makeToken(p.kind, start)
		}
	}

	var kind token.Kind
	switch lx.cursor.Bump() {
	case '+':
		kind = token.Plus
	case '-':
		kind = token.Minus
	case '*':
		kind = token.Star
	case '/':
		kind = token.Slash
	case '%':
		kind = token.Percent
	case '.':
		kind = token.Dot
	case '=':
		kind = token.Assign
	case '<':
		kind = token.Lt
	case '>':
		kind = token.Gt
	case '&':
		kind = token.Amp
	case '|':
		kind = token.Pipe
	case '^':
		kind = token.Caret
	case '~':
		kind = token.Tilde
	case '!':
		kind = token.Bang
	case '?':
		kind = token.Question
	case ':':
		kind = token.Colon
	case ';':
		kind = token.Semicolon
	case ',':
		kind = token.Comma
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case '[':
		kind = token.LBracket
	case ']':
		kind = token.RBracket
	case '@':
		kind = token.At
	case '$':
		kind = token.Dollar
	case '\\':
		kind = token.Backslash
	default:
		tok := lx.makeToken(token.Invalid, start)
		lx.errLex(diag.LexUnknownChar, tok.Span, "unexpected character")
		return tok
	}
	return lx.makeToken(kind, start)
}
