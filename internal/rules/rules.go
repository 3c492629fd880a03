// Package rules is the battery of error, hint and suggestion rules.
//
// Every rule follows one shape: Invoke checks its preconditions and the
// context, builds a visitor holding the pass state, walks the program,
// checks the context again and only then reports what it collected. A pass
// that is cancelled half way reports nothing.
package rules

import (
	"context"

	"phphint/internal/diag"
	"phphint/internal/rule"
)

// All returns a fresh instance of every rule. Callers running passes in
// parallel take one set per worker.
func All() []rule.Rule {
	out := []rule.Rule{
		&AbstractInstantiation{},
		&ConstantRedeclaration{},
		&FieldRedeclaration{},
		&MethodRedeclaration{},
		&TypeRedeclaration{},
		&LoopOnlyKeyword{},
		&ThisInStaticContext{},
		&InterfaceConstantOverride{},
	}
	out = append(out, LanguageLevel()...)
	out = append(out,
		&EmptyStatement{},
		&WrongOrderOfArgs{},
		&UnusedUse{},
		&AssignmentInCondition{},
		&MissingBraces{},
		&ErrorControlOperator{},
		&ArraySyntax{},
		&ArrowFunction{},
		&IntroduceVariable{},
		&VarTypeComment{},
	)
	return out
}

// NewRegistry returns a registry over a fresh rule set.
func NewRegistry() *rule.Registry {
	return rule.NewRegistry(All()...)
}

func errorMeta(code diag.Code, desc string) rule.Meta {
	return rule.Meta{
		Code:            code,
		Name:            code.Title(),
		Description:     desc,
		Kind:            rule.KindError,
		DefaultEnabled:  true,
		DefaultSeverity: diag.SevError,
	}
}

func hintMeta(code diag.Code, desc string) rule.Meta {
	return rule.Meta{
		Code:            code,
		Name:            code.Title(),
		Description:     desc,
		Kind:            rule.KindHint,
		DefaultEnabled:  true,
		DefaultSeverity: diag.SevWarning,
	}
}

func suggestionMeta(code diag.Code, desc string) rule.Meta {
	return rule.Meta{
		Code:            code,
		Name:            code.Title(),
		Description:     desc,
		Kind:            rule.KindSuggestion,
		DefaultEnabled:  true,
		DefaultSeverity: diag.SevCurrentLineWarning,
	}
}

// pending holds the findings of one Invoke until the walk is over.
// Identical reports collapse into one.
type pending struct {
	bag *diag.Bag
	rep diag.Reporter
}

func newPending() *pending {
	bag := diag.NewBag(0)
	return &pending{bag: bag, rep: diag.Once(diag.BagReporter{Bag: bag})}
}

func (p *pending) reporter() diag.Reporter { return p.rep }

// flush forwards the findings to sink unless ctx was cancelled meanwhile.
func (p *pending) flush(ctx context.Context, sink diag.Reporter) {
	if ctx.Err() != nil || sink == nil {
		return
	}
	for _, d := range p.bag.Items() {
		sink.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes, d.Fixes)
	}
}

// start reports whether a pass over rc should run at all.
func start(ctx context.Context, rc *rule.Context) bool {
	return rc.Ready() && ctx.Err() == nil
}
