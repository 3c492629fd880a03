package token

import (
	"strings"

	"phphint/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a numeric or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, StringLit, Heredoc, Backtick:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a reserved word.
func (t Token) IsKeyword() bool { return t.Kind.IsKeyword() }

// IsIdent reports whether the token is a plain identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// IsSemiReserved reports whether the token can be used as a member name.
// PHP allows keywords after '->' and '::' and as method names.
func (t Token) IsSemiReserved() bool {
	return t.Kind == Ident || t.Kind.IsKeyword()
}

// Is reports whether the token text equals s ignoring ASCII case.
func (t Token) Is(s string) bool {
	return strings.EqualFold(t.Text, s)
}

// DocComment returns the last doc block among the leading trivia, if any.
func (t Token) DocComment() (Trivia, bool) {
	for i := len(t.Leading) - 1; i >= 0; i-- {
		switch t.Leading[i].Kind {
		case TriviaDocBlock:
			return t.Leading[i], true
		case TriviaSpace, TriviaNewline:
			continue
		default:
			return Trivia{}, false
		}
	}
	return Trivia{}, false
}
