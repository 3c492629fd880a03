// Package rule defines what an analysis rule is and the per-pass context it
// runs against, plus helpers shared by many rule bodies.
package rule

import (
	"context"

	"phphint/internal/diag"
)

// Kind groups rules by when they run.
type Kind uint8

const (
	// KindError rules report semantic and language-level errors on every pass.
	KindError Kind = iota
	// KindHint rules report style and likely-bug hints on every pass.
	KindHint
	// KindSuggestion rules run for the caret position only.
	KindSuggestion
)

func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindHint:
		return "hint"
	case KindSuggestion:
		return "suggestion"
	}
	return "unknown"
}

// Meta is the identity and defaults of a rule.
type Meta struct {
	Code            diag.Code
	Name            string
	Description     string
	Kind            Kind
	DefaultEnabled  bool
	DefaultSeverity diag.Severity
}

// Key returns the stable rule key used by configuration and suppressions.
func (m Meta) Key() string { return m.Code.Key() }

// Rule is one unit of analysis.
//
// Invoke reports findings for rc to sink. It returns without reporting when
// rc has no program or file, and when ctx is cancelled at any point. Rules
// keep no state between calls: everything a pass accumulates lives in values
// built inside Invoke.
type Rule interface {
	Meta() Meta
	Invoke(ctx context.Context, rc *Context, sink diag.Reporter)
}

// Func adapts a function into a Rule.
type Func struct {
	M  Meta
	Fn func(ctx context.Context, rc *Context, sink diag.Reporter)
}

func (f Func) Meta() Meta { return f.M }

func (f Func) Invoke(ctx context.Context, rc *Context, sink diag.Reporter) {
	if !rc.Ready() || ctx.Err() != nil {
		return
	}
	f.Fn(ctx, rc, sink)
}
