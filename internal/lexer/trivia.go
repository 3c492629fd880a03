package lexer

import (
	"phphint/internal/diag"
	"phphint/internal/token"
)

// collectLeadingTrivia gathers the trivia in front of the next significant token.
//   - runs of ' ', '\t', '\r' become one TriviaSpace
//   - runs of '\n' become one TriviaNewline
//   - "// ..." and "# ..." up to the newline or "?>" become TriviaLineComment
//   - "/* ... */" becomes TriviaBlockComment, "/** ... */" TriviaDocBlock
//
// "#[" starts an attribute and is not a comment.
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		switch {
		case isSpace(b):
			for isSpace(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaSpace, start)
			continue

		case b == '\n':
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaNewline, start)
			continue

		case b == '#' && lx.cursor.PeekAt(1) != '[':
			lx.cursor.Bump()
			lx.skipLineComment()
			lx.pushTrivia(token.TriviaLineComment, start)
			continue

		case b == '/' && lx.cursor.PeekAt(1) == '/':
			lx.cursor.Off += 2
			lx.skipLineComment()
			lx.pushTrivia(token.TriviaLineComment, start)
			continue

		case b == '/' && lx.cursor.PeekAt(1) == '*':
			lx.scanBlockComment(start)
			continue
		}
		break
	}
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{Kind: kind, Span: sp, Text: lx.text(sp)})
}

// skipLineComment stops before '\n' or before a closing "?>".
func (lx *Lexer) skipLineComment() {
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\n' || (b == '?' && lx.cursor.PeekAt(1) == '>') {
			return
		}
		lx.cursor.Bump()
	}
}

func (lx *Lexer) scanBlockComment(start Mark) {
	lx.cursor.Off += 2 // "/*"
	kind := token.TriviaBlockComment
	if lx.cursor.Peek() == '*' && lx.cursor.PeekAt(1) != '/' {
		kind = token.TriviaDocBlock
	}
	closed := false
	for !lx.cursor.EOF() {
		if lx.try2('*', '/') {
			closed = true
			break
		}
		lx.cursor.Bump()
	}
	if !closed {
		lx.errLex(diag.LexUnterminatedBlockComment, lx.cursor.SpanFrom(start), "unterminated comment")
	}
	lx.pushTrivia(kind, start)
}
