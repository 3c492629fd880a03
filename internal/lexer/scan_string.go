package lexer

import (
	"phphint/internal/diag"
	"phphint/internal/token"
)

func (lx *Lexer) scanSingleQuoted() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '\''
	for !lx.cursor.EOF() {
		b := lx.cursor.Bump()
		if b == '\\' {
			lx.cursor.Bump()
			continue
		}
		if b == '\'' {
			return lx.makeToken(token.StringLit, start)
		}
	}
	tok := lx.makeToken(token.Invalid, start)
	lx.errLex(diag.LexUnterminatedString, tok.Span, "unterminated string literal")
	return tok
}

// scanDoubleQuoted handles "..." and `...`. Interpolated expressions are not
// tokenized; "{$...}" and "${...}" parts are skipped with brace matching so
// quotes inside them do not end the literal.
func (lx *Lexer) scanDoubleQuoted(quote byte, kind token.Kind) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case b == '\\':
			lx.cursor.Off += 2
			if lx.cursor.Off > lx.cursor.Limit {
				lx.cursor.Off = lx.cursor.Limit
			}
		case b == quote:
			lx.cursor.Bump()
			return lx.makeToken(kind, start)
		case (b == '{' && lx.cursor.PeekAt(1) == '$') || (b == '$' && lx.cursor.PeekAt(1) == '{'):
			lx.cursor.Off += 2
			lx.skipInterpolation()
		default:
			lx.cursor.Bump()
		}
	}
	tok := lx.makeToken(token.Invalid, start)
	lx.errLex(diag.LexUnterminatedString, tok.Span, "unterminated string literal")
	return tok
}

// skipInterpolation runs to the brace closing an interpolation opened just
// before the cursor.
func (lx *Lexer) skipInterpolation() {
	depth := 1
	for !lx.cursor.EOF() && depth > 0 {
		switch lx.cursor.Peek() {
		case '{':
			depth++
			lx.cursor.Bump()
		case '}':
			depth--
			lx.cursor.Bump()
		case '\'':
			lx.scanSingleQuoted()
		case '"':
			lx.scanDoubleQuoted('"', token.StringLit)
		default:
			lx.cursor.Bump()
		}
	}
}

// isHeredocStart matches "<<<" [ \t]* (label | "label" | 'label') '\n'.
func (lx *Lexer) isHeredocStart() bool {
	if !lx.cursor.HasPrefixFold("<<<") {
		return false
	}
	save := lx.cursor.Mark()
	defer lx.cursor.Reset(save)
	_, _, ok := lx.heredocHeader()
	return ok
}

// heredocHeader consumes the opening line and returns the label.
func (lx *Lexer) heredocHeader() (label string, nowdoc, ok bool) {
	lx.cursor.Off += 3
	for lx.cursor.Peek() == ' ' || lx.cursor.Peek() == '\t' {
		lx.cursor.Bump()
	}
	quote := byte(0)
	if b := lx.cursor.Peek(); b == '\'' || b == '"' {
		quote = b
		nowdoc = b == '\''
		lx.cursor.Bump()
	}
	if !isIdentStartByte(lx.cursor.Peek()) {
		return "", false, false
	}
	ls := lx.cursor.Mark()
	lx.eatLabel()
	label = lx.text(lx.cursor.SpanFrom(ls))
	if quote != 0 && !lx.cursor.Eat(quote) {
		return "", false, false
	}
	lx.cursor.Eat('\r')
	if !lx.cursor.Eat('\n') {
		return "", false, false
	}
	return label, nowdoc, true
}

// scanHeredoc consumes a heredoc or nowdoc through its closing label. The
// closing label may be indented and may be followed by any non-label byte,
// which is the flexible syntax; older placement rules are checked by the
// language level analysis on the token text.
func (lx *Lexer) scanHeredoc() token.Token {
	start := lx.cursor.Mark()
	label, _, _ := lx.heredocHeader()
	n := uint32(len(label)) // #nosec G115 -- label is one source line

	for !lx.cursor.EOF() {
		lineStart := lx.cursor.Off
		for lx.cursor.Peek() == ' ' || lx.cursor.Peek() == '\t' {
			lx.cursor.Bump()
		}
		if lx.matchLabel(label) && !isIdentContinueByte(lx.cursor.PeekAt(n)) {
			lx.cursor.Off += n
			return lx.makeToken(token.Heredoc, start)
		}
		lx.cursor.Off = lineStart
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
			lx.cursor.Bump()
		}
		lx.cursor.Eat('\n')
	}
	tok := lx.makeToken(token.Invalid, start)
	lx.errLex(diag.LexUnterminatedHeredoc, tok.Span, "heredoc is missing its closing "+label)
	return tok
}

func (lx *Lexer) matchLabel(label string) bool {
	n := uint32(len(label)) // #nosec G115 -- label is one source line
	if lx.cursor.Off+n > lx.cursor.Limit {
		return false
	}
	return string(lx.file.Content[lx.cursor.Off:lx.cursor.Off+n]) == label
}
