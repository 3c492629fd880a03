package lexer

import (
	"phphint/internal/diag"
	"phphint/internal/token"
)

// scanNumber accepts decimal, 0x hex, 0b binary, 0o / leading-zero octal,
// '_' separators between digits and floats with exponents. The raw spelling is
// kept in Text so rules can inspect separators and prefixes.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()

	if lx.cursor.Peek() == '0' {
		switch lower(lx.cursor.PeekAt(1)) {
		case 'x':
			return lx.scanPrefixed(start, isHex)
		case 'b':
			return lx.scanPrefixed(start, isBin)
		case 'o':
			return lx.scanPrefixed(start, isOct)
		}
	}

	kind := token.IntLit
	lx.eatDigits(isDec)
	if lx.cursor.Peek() == '.' && isDec(lx.cursor.PeekAt(1)) {
		kind = token.FloatLit
		lx.cursor.Bump()
		lx.eatDigits(isDec)
	} else if lx.cursor.Peek() == '.' && !isIdentStartByte(lx.cursor.PeekAt(1)) && lx.cursor.PeekAt(1) != '.' && lx.cursor.PeekAt(1) != '=' {
		// "1." is a float, "1 . $x" and "1..." are not
		if uint32(start) < lx.cursor.Off {
			kind = token.FloatLit
			lx.cursor.Bump()
		}
	}
	if lower(lx.cursor.Peek()) == 'e' {
		save := lx.cursor.Mark()
		lx.cursor.Bump()
		if lx.cursor.Peek() == '+' || lx.cursor.Peek() == '-' {
			lx.cursor.Bump()
		}
		if isDec(lx.cursor.Peek()) {
			kind = token.FloatLit
			lx.eatDigits(isDec)
		} else {
			lx.cursor.Reset(save)
		}
	}
	return lx.makeToken(kind, start)
}

func (lx *Lexer) scanPrefixed(start Mark, digit func(byte) bool) token.Token {
	lx.cursor.Off += 2
	if !digit(lx.cursor.Peek()) {
		tok := lx.makeToken(token.IntLit, start)
		lx.errLex(diag.LexBadNumber, tok.Span, "missing digits after numeric prefix")
		return tok
	}
	lx.eatDigits(digit)
	return lx.makeToken(token.IntLit, start)
}

// eatDigits consumes digits and single '_' separators placed between digits.
func (lx *Lexer) eatDigits(digit func(byte) bool) {
	for {
		b := lx.cursor.Peek()
		if digit(b) {
			lx.cursor.Bump()
			continue
		}
		if b == '_' && digit(lx.cursor.PeekAt(1)) {
			lx.cursor.Bump()
			continue
		}
		return
	}
}
