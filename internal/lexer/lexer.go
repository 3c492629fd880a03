package lexer

import (
	"phphint/internal/diag"
	"phphint/internal/source"
	"phphint/internal/token"
)

type mode uint8

const (
	modeHTML mode = iota
	modePHP
)

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	mode   mode
	look   *token.Token   // one-token buffer for Peek
	hold   []token.Trivia // pending leading trivia
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
		mode:   modeHTML,
	}
}

// File returns the file being lexed.
func (lx *Lexer) File() *source.File { return lx.file }

// Next returns the next significant token with its Leading trivia attached.
// After EOF it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	if lx.mode == modeHTML {
		return lx.scanInlineHTML()
	}

	lx.collectLeadingTrivia()

	if lx.cursor.EOF() {
		tok := token.Token{Kind: token.EOF, Span: lx.emptySpan(), Leading: lx.hold}
		lx.hold = nil
		return tok
	}

	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case ch == '?' && lx.cursor.PeekAt(1) == '>':
		tok = lx.scanCloseTag()

	case ch == '$' && isIdentStartByte(lx.cursor.PeekAt(1)):
		tok = lx.scanVariable()

	case isIdentStartByte(ch):
		tok = lx.scanName()

	case ch == '\\' && isIdentStartByte(lx.cursor.PeekAt(1)):
		tok = lx.scanName()

	case isDec(ch):
		tok = lx.scanNumber()

	case ch == '.' && lx.isNumberAfterDot():
		tok = lx.scanNumber()

	case ch == '\'':
		tok = lx.scanSingleQuoted()

	case ch == '"':
		tok = lx.scanDoubleQuoted('"', token.StringLit)

	case ch == '`':
		tok = lx.scanDoubleQuoted('`', token.Backtick)

	case ch == '<' && lx.isHeredocStart():
		tok = lx.scanHeredoc()

	case ch == '(':
		if cast, ok := lx.tryCast(); ok {
			tok = cast
		} else {
			tok = lx.scanOperatorOrPunct()
		}

	default:
		tok = lx.scanOperatorOrPunct()
	}

	tok.Leading = lx.hold
	lx.hold = nil
	return tok
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) text(sp source.Span) string {
	return string(lx.file.Content[sp.Start:sp.End])
}

func (lx *Lexer) makeToken(kind token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}

// scanInlineHTML consumes text up to the next open tag. When the cursor is
// already at an open tag it returns that tag instead.
func (lx *Lexer) scanInlineHTML() token.Token {
	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.emptySpan()}
	}
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		if lx.cursor.Peek() == '<' && lx.atOpenTag() {
			break
		}
		lx.cursor.Bump()
	}
	if lx.cursor.Off > uint32(start) {
		return lx.makeToken(token.InlineHTML, start)
	}
	return lx.scanOpenTag()
}

func (lx *Lexer) atOpenTag() bool {
	if lx.cursor.HasPrefixFold("<?=") {
		return true
	}
	if !lx.cursor.HasPrefixFold("<?php") {
		return false
	}
	after := lx.cursor.PeekAt(5)
	return after == 0 || isSpace(after) || after == '\n'
}

func (lx *Lexer) scanOpenTag() token.Token {
	start := lx.cursor.Mark()
	kind := token.OpenTag
	if lx.cursor.HasPrefixFold("<?=") {
		lx.cursor.Off += 3
		kind = token.OpenTagEcho
	} else {
		lx.cursor.Off += 5
	}
	lx.mode = modePHP
	return lx.makeToken(kind, start)
}

// scanCloseTag consumes "?>" and a single newline right after it.
func (lx *Lexer) scanCloseTag() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Off += 2
	lx.cursor.Eat('\n')
	lx.mode = modeHTML
	return lx.makeToken(token.CloseTag, start)
}

func (lx *Lexer) scanVariable() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '$'
	lx.eatLabel()
	return lx.makeToken(token.Variable, start)
}

func (lx *Lexer) eatLabel() {
	for !lx.cursor.EOF() && isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
}

// scanName reads label(\label)* with an optional leading '\'. A trailing
// backslash not followed by a label is left for the next token.
func (lx *Lexer) scanName() token.Token {
	start := lx.cursor.Mark()
	fully := lx.cursor.Eat('\\')
	lx.eatLabel()
	first := lx.text(lx.cursor.SpanFrom(start))
	qualified := false
	for lx.cursor.Peek() == '\\' && isIdentStartByte(lx.cursor.PeekAt(1)) {
		lx.cursor.Bump()
		lx.eatLabel()
		qualified = true
	}
	switch {
	case fully:
		return lx.makeToken(token.NameFullyQualified, start)
	case qualified && equalFold(first, "namespace"):
		return lx.makeToken(token.NameRelative, start)
	case qualified:
		return lx.makeToken(token.NameQualified, start)
	}
	tok := lx.makeToken(token.Ident, start)
	if kw, ok := token.LookupKeyword(tok.Text); ok {
		tok.Kind = kw
	}
	return tok
}

var castTypes = []string{
	"int", "integer", "bool", "boolean", "float", "double", "real",
	"string", "binary", "array", "object", "unset",
}

// tryCast recognises "(int)" style casts, allowing spaces inside the parens.
func (lx *Lexer) tryCast() (token.Token, bool) {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '('
	lx.skipSpaces()
	nameStart := lx.cursor.Mark()
	lx.eatLabel()
	name := lx.text(lx.cursor.SpanFrom(nameStart))
	lx.skipSpaces()
	if name != "" && lx.cursor.Eat(')') {
		for _, ct := range castTypes {
			if equalFold(name, ct) {
				return lx.makeToken(token.Cast, start), true
			}
		}
	}
	lx.cursor.Reset(start)
	return token.Token{}, false
}

func (lx *Lexer) skipSpaces() {
	for isSpace(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
}

// Tokenize lexes the whole file. The result always ends with EOF.
func Tokenize(file *source.File, opts Options) []token.Token {
	lx := New(file, opts)
	out := make([]token.Token, 0, len(file.Content)/4+1)
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

// TokenizeSequence is Tokenize wrapped into a token.Sequence.
func TokenizeSequence(file *source.File, reporter diag.Reporter) token.Sequence {
	return token.NewSequence(Tokenize(file, Options{Reporter: reporter}))
}
