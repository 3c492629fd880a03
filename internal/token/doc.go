// Package token defines lexical token kinds, trivia and token sequences for PHP sources.
// Invariants:
//   - Token.Text is the exact source slice covered by Token.Span.
//   - Whitespace and comments never appear in the main stream; they are attached
//     to the following token as Leading trivia.
//   - Keywords are matched case-insensitively; Text keeps the original spelling.
//   - true, false, null and magic constants (__DIR__, ...) are identifiers.
//   - T_NAME_* style names: Foo\Bar is NameQualified, \Foo is NameFullyQualified,
//     namespace\Foo is NameRelative. A trailing '\' before '{' is a Backslash token.
package token
