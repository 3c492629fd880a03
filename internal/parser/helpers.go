package parser

import (
	"phphint/internal/diag"
	"phphint/internal/fix"
	"phphint/internal/source"
	"phphint/internal/token"
)

// advance consumes the next token and updates lastSpan.
func (p *Parser) advance() token.Token {
	tok := p.toks[p.pos]
	if tok.Kind != token.EOF {
		p.pos++
		p.lastSpan = tok.Span
	}
	return tok
}

// eat consumes the next token if it has kind k.
func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// getDiagnosticSpan returns the best span to anchor an error at: the next
// token, or the end of the last consumed token when the input ran out.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return p.lastSpan.ZeroideToEnd()
	}
	return peek.Span
}

// expect consumes a token of kind k or reports code and returns (invalid, false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	diagSpan := p.getDiagnosticSpan()
	p.report(code, diag.SevError, diagSpan, msg+", got "+describe(p.peek()))
	return token.Token{Kind: token.Invalid, Span: diagSpan, Text: p.peek().Text}, false
}

// expectClose consumes the closing delimiter k that matches open.
func (p *Parser) expectClose(k token.Kind, open source.Span) bool {
	if p.eat(k) {
		return true
	}
	sp := p.getDiagnosticSpan()
	if p.opts.Reporter != nil && p.count() {
		diag.ReportError(p.opts.Reporter, diag.SynUnclosedDelimiter, sp,
			"expected '"+k.String()+"', got "+describe(p.peek())).
			WithNote(open, "opened here").
			Emit()
	}
	return false
}

// expectSemi ends a statement. A close tag terminates a statement as well.
// On failure a fix inserting the semicolon is attached.
func (p *Parser) expectSemi() {
	if p.eat(token.Semicolon) || p.at(token.CloseTag) {
		return
	}
	insertAt := p.lastSpan.ZeroideToEnd()
	if p.opts.Reporter == nil || !p.count() {
		return
	}
	diag.ReportError(p.opts.Reporter, diag.SynExpectSemicolon, insertAt,
		"expected ';', got "+describe(p.peek())).
		WithFixSuggestion(fix.InsertText(
			"insert semicolon",
			insertAt,
			";",
			"",
			fix.WithID(fix.MakeFixID(diag.SynExpectSemicolon, insertAt)),
			fix.Preferred(),
		)).
		Emit()
}

// err reports an error at the current token.
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) errAt(code diag.Code, sp source.Span, msg string) bool {
	return p.report(code, diag.SevError, sp, msg)
}

// count records one error and reports whether it may still be emitted.
func (p *Parser) count() bool {
	p.opts.CurrentErrors++
	return p.opts.MaxErrors == 0 || p.opts.CurrentErrors <= p.opts.MaxErrors
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if p.opts.Reporter == nil {
		return false
	}
	if sev == diag.SevError && !p.count() {
		return false
	}
	p.opts.Reporter.Report(code, sev, sp, msg, nil, nil)
	return true
}

// spanFrom covers from start to the end of the last consumed token.
func (p *Parser) spanFrom(start source.Span) source.Span {
	end := p.lastSpan.End
	if end < start.Start {
		end = start.Start
	}
	return source.Span{File: start.File, Start: start.Start, End: end}
}

// resyncUntil skips tokens until one of kinds (not consumed) or EOF, keeping
// track of nested braces so a '}' closing an inner block does not stop it.
func (p *Parser) resyncUntil(kinds ...token.Kind) {
	depth := 0
	for !p.at(token.EOF) {
		k := p.peek().Kind
		if depth == 0 {
			for _, stop := range kinds {
				if k == stop {
					return
				}
			}
		}
		switch k {
		case token.LBrace, token.LParen, token.LBracket:
			depth++
		case token.RBrace, token.RParen, token.RBracket:
			if depth == 0 {
				return
			}
			depth--
		}
		p.advance()
	}
}

// resyncStmt skips to the end of a broken statement.
func (p *Parser) resyncStmt() {
	p.resyncUntil(token.Semicolon, token.CloseTag)
	p.eat(token.Semicolon)
}
