package rule

import (
	"regexp"
	"strings"

	"phphint/internal/diag"
	"phphint/internal/source"
	"phphint/internal/token"
)

// Suppressions are the "phphint-ignore" comments of one file:
//
//	foo();; // phphint-ignore empty-statement
//	// phphint-ignore HNT4001, unused-use
//	/* phphint-ignore-file missing-braces */
//
// A comment after code silences matching findings on its own line. A comment
// alone on its line silences its line and the next one. The -file form silences matching findings anywhere. Without
// a key list every rule is silenced.
type Suppressions struct {
	file  *source.File
	lines map[uint32][]string // 1-based line -> keys, nil entry means all
	whole []string
	all   bool
}

var ignorePattern = regexp.MustCompile(`phphint-ignore(-file)?\b([ \t:]+[A-Za-z0-9_, \t-]+)?`)

// ParseSuppressions collects suppression comments from the trivia of toks.
func ParseSuppressions(f *source.File, toks token.Sequence) *Suppressions {
	s := &Suppressions{file: f, lines: make(map[uint32][]string)}
	if f == nil {
		return s
	}
	for _, tok := range toks.Tokens() {
		for _, tr := range tok.Leading {
			if tr.IsComment() {
				s.add(tr)
			}
		}
	}
	return s
}

func (s *Suppressions) add(tr token.Trivia) {
	m := ignorePattern.FindStringSubmatch(tr.Text)
	if m == nil {
		return
	}
	keys := parseKeys(m[2])
	if m[1] != "" {
		if keys == nil {
			s.all = true
		}
		s.whole = append(s.whole, keys...)
		return
	}
	line := s.file.Position(tr.Span.Start).Line
	covered := []uint32{line}
	if s.startsLine(tr.Span.Start) {
		covered = append(covered, line+1)
	}
	for _, l := range covered {
		if keys == nil {
			s.lines[l] = append(s.lines[l], "*")
			continue
		}
		s.lines[l] = append(s.lines[l], keys...)
	}
}

// startsLine reports whether only blanks precede off on its line.
func (s *Suppressions) startsLine(off uint32) bool {
	text := s.file.Content
	for i := min(int(off), len(text)) - 1; i >= 0; i-- {
		switch text[i] {
		case '\n':
			return true
		case ' ', '\t', '\r':
		default:
			return false
		}
	}
	return true
}

func parseKeys(list string) []string {
	list = strings.Trim(list, " \t:")
	list = strings.TrimSuffix(strings.TrimSpace(strings.TrimSuffix(list, "*/")), "*")
	var out []string
	for _, k := range strings.FieldsFunc(list, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' }) {
		out = append(out, strings.ToLower(k))
	}
	return out
}

// Len returns the number of lines with a suppression, plus one for file-wide
// suppressions.
func (s *Suppressions) Len() int {
	if s == nil {
		return 0
	}
	n := len(s.lines)
	if s.all || len(s.whole) > 0 {
		n++
	}
	return n
}

// Suppressed reports whether a finding of code at sp is silenced.
func (s *Suppressions) Suppressed(code diag.Code, sp source.Span) bool {
	if s == nil || s.file == nil {
		return false
	}
	if s.all || matchKey(s.whole, code) {
		return true
	}
	if len(s.lines) == 0 || sp.Start > s.file.Len() {
		return false
	}
	return matchKey(s.lines[s.file.Position(sp.Start).Line], code)
}

func matchKey(keys []string, code diag.Code) bool {
	key, id := code.Key(), strings.ToLower(code.ID())
	for _, k := range keys {
		if k == "*" || k == "all" || k == key || k == id {
			return true
		}
	}
	return false
}
