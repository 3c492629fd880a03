package token

import "sort"

// Sequence is an immutable, offset-ordered token stream of one file.
// It answers lexical questions the AST has already normalized away.
// Iterators created from it carry their own position, so a Sequence can be
// shared by every rule of an analysis pass.
type Sequence struct {
	toks []Token
}

// NewSequence wraps toks, which must be ordered by Span.Start and end with EOF.
func NewSequence(toks []Token) Sequence {
	return Sequence{toks: toks}
}

// Len returns the number of tokens including the trailing EOF.
func (s Sequence) Len() int { return len(s.toks) }

// At returns the i-th token.
func (s Sequence) At(i int) Token { return s.toks[i] }

// Tokens exposes the underlying slice. Callers must not modify it.
func (s Sequence) Tokens() []Token { return s.toks }

// Index returns the index of the first token that ends after off,
// i.e. the token containing off or the first token after it.
func (s Sequence) Index(off uint32) int {
	return sort.Search(len(s.toks), func(i int) bool {
		t := s.toks[i]
		return t.Span.End > off || t.Kind == EOF
	})
}

// Move returns an iterator positioned at the token containing off
// or, when off falls in trivia, the first token after it.
func (s Sequence) Move(off uint32) *Iter {
	return &Iter{seq: s, i: s.Index(off)}
}

// Iter walks a Sequence in both directions.
type Iter struct {
	seq Sequence
	i   int
}

// Valid reports whether the iterator points at a token.
func (it *Iter) Valid() bool { return it.i >= 0 && it.i < len(it.seq.toks) }

// Token returns the current token. It must only be called when Valid.
func (it *Iter) Token() Token { return it.seq.toks[it.i] }

// Index returns the current position.
func (it *Iter) Index() int { return it.i }

// Next advances and reports whether the iterator is still valid.
func (it *Iter) Next() bool {
	if it.i < len(it.seq.toks) {
		it.i++
	}
	return it.Valid()
}

// Prev steps back and reports whether the iterator is still valid.
func (it *Iter) Prev() bool {
	if it.i >= 0 {
		it.i--
	}
	return it.Valid()
}

// Is reports whether the current token has kind k.
func (it *Iter) Is(k Kind) bool { return it.Valid() && it.seq.toks[it.i].Kind == k }

// SkipForwardTo advances until a token of one of kinds is found, stopping
// before any token that starts at or after limit.
func (it *Iter) SkipForwardTo(limit uint32, kinds ...Kind) bool {
	for ; it.Valid(); it.i++ {
		t := it.seq.toks[it.i]
		if t.Kind == EOF || t.Span.Start >= limit {
			return false
		}
		for _, k := range kinds {
			if t.Kind == k {
				return true
			}
		}
	}
	return false
}

// SkipBackwardTo steps back until a token of one of kinds is found, stopping
// at any token that starts before limit.
func (it *Iter) SkipBackwardTo(limit uint32, kinds ...Kind) bool {
	for ; it.Valid(); it.i-- {
		t := it.seq.toks[it.i]
		if t.Span.Start < limit {
			return false
		}
		for _, k := range kinds {
			if t.Kind == k {
				return true
			}
		}
	}
	return false
}

// Before returns the index of the last token ending at or before off, or -1.
func (s Sequence) Before(off uint32) int {
	i := sort.Search(len(s.toks), func(i int) bool {
		return s.toks[i].Span.End > off || s.toks[i].Kind == EOF
	})
	return i - 1
}
