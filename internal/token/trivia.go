package token

import "phphint/internal/source"

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaLineComment  // "// ..." or "# ..."
	TriviaBlockComment // "/* ... */"
	TriviaDocBlock     // "/** ... */"
)

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}

// IsComment reports whether the trivia is any kind of comment.
func (t Trivia) IsComment() bool {
	return t.Kind == TriviaLineComment || t.Kind == TriviaBlockComment || t.Kind == TriviaDocBlock
}
