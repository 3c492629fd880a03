package rules

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"phphint/internal/ast"
	"phphint/internal/diag"
	"phphint/internal/fix"
	"phphint/internal/phpver"
	"phphint/internal/rule"
	"phphint/internal/token"
)

// Suggestions only look at the lines holding the caret. Each walks the
// program bounded by the end of the caret line and picks nodes whose line
// range contains the caret.

type caretVisitor struct {
	ctx   context.Context
	rc    *rule.Context
	out   *pending
	check func(n ast.Node)
}

func (v *caretVisitor) Visit(n ast.Node) ast.Visitor {
	if n == nil || v.ctx.Err() != nil {
		return nil
	}
	if v.rc.OnCaretLine(n) {
		v.check(n)
	}
	return v
}

func runCaret(ctx context.Context, rc *rule.Context, sink diag.Reporter, check func(out *pending, n ast.Node)) {
	if !start(ctx, rc) {
		return
	}
	limit, ok := rc.CaretLimit()
	if !ok {
		return
	}
	out := newPending()
	v := &caretVisitor{ctx: ctx, rc: rc, out: out, check: func(n ast.Node) { check(out, n) }}
	ast.WalkBounded(v, rc.Program, limit)
	out.flush(ctx, sink)
}

// ArraySyntax offers to turn array(...) into [...].
type ArraySyntax struct{}

func (*ArraySyntax) Meta() rule.Meta {
	return suggestionMeta(diag.SugArraySyntax,
		"Offers to rewrite array(...) with the short [...] syntax on the caret line.")
}

func (r *ArraySyntax) Invoke(ctx context.Context, rc *rule.Context, sink diag.Reporter) {
	if rc != nil && rc.Version < phpver.PHP54 {
		return
	}
	runCaret(ctx, rc, sink, func(out *pending, n ast.Node) {
		a, ok := n.(*ast.ArrayLit)
		if !ok || a.Short {
			return
		}
		sp := a.Span()
		it := rc.Tokens.Move(sp.Start)
		if !it.Is(token.KwArray) || !it.SkipForwardTo(sp.End, token.LParen) {
			return
		}
		open := rc.Span(sp.Start, it.Token().Span.End)
		closing := rc.Span(sp.End-1, sp.End)
		if rc.Text(closing) != ")" {
			return
		}
		edits := []diag.TextEdit{
			{Span: open, NewText: "[", OldText: rc.Text(open)},
			{Span: closing, NewText: "]", OldText: ")"},
		}
		diag.ReportSuggestion(out.reporter(), diag.SugArraySyntax, open, "Use short array syntax").
			WithFixSuggestion(fix.Rewrite("Use []", edits,
				fix.WithKind(diag.FixKindRefactor),
				fix.WithApplicability(diag.FixApplicabilityAlwaysSafe),
				fix.WithID(fix.MakeFixID(diag.SugArraySyntax, sp)),
			)).
			Emit()
	})
}

// ArrowFunction offers to turn a closure that only returns an expression
// into fn() =>. Closures importing variables by reference are left alone,
// arrow functions capture by value.
type ArrowFunction struct{}

func (*ArrowFunction) Meta() rule.Meta {
	return suggestionMeta(diag.SugArrowFunction,
		"Offers to convert a closure whose body is a single return into an arrow function.")
}

func (r *ArrowFunction) Invoke(ctx context.Context, rc *rule.Context, sink diag.Reporter) {
	if rc != nil && rc.Version < phpver.PHP74 {
		return
	}
	runCaret(ctx, rc, sink, func(out *pending, n ast.Node) {
		c, ok := n.(*ast.ClosureExpr)
		if !ok || c.Body == nil || len(c.Body.Stmts) != 1 {
			return
		}
		ret, ok := c.Body.Stmts[0].(*ast.ReturnStmt)
		if !ok || ret.Result == nil {
			return
		}
		for _, u := range c.Uses {
			if u.ByRef {
				return
			}
		}
		var b strings.Builder
		for _, g := range c.Attrs {
			b.WriteString(rc.NodeText(g))
			b.WriteByte(' ')
		}
		if c.Static {
			b.WriteString("static ")
		}
		b.WriteString("fn")
		if c.ByRef {
			b.WriteByte('&')
		}
		b.WriteString(rc.Text(c.ParamsSp))
		if c.ReturnType != nil {
			b.WriteString(": ")
			b.WriteString(rc.NodeText(c.ReturnType))
		}
		b.WriteString(" => ")
		b.WriteString(rc.NodeText(ret.Result))

		sp := c.Span()
		diag.ReportSuggestion(out.reporter(), diag.SugArrowFunction, rc.Span(sp.Start, c.ParamsSp.Start),
			"Convert closure to arrow function").
			WithFixSuggestion(fix.ReplaceSpan("Convert to arrow function", sp, b.String(), rc.Text(sp),
				fix.WithKind(diag.FixKindRefactor),
				fix.WithApplicability(diag.FixApplicabilitySafeWithHeuristics),
				fix.WithID(fix.MakeFixID(diag.SugArrowFunction, sp)),
			)).
			Emit()
	})
}

// IntroduceVariable offers to keep the discarded result of a call
// statement in a new variable.
type IntroduceVariable struct{}

func (*IntroduceVariable) Meta() rule.Meta {
	return suggestionMeta(diag.SugIntroduceVariable,
		"Offers to assign the result of a call statement on the caret line to a new variable.")
}

func (r *IntroduceVariable) Invoke(ctx context.Context, rc *rule.Context, sink diag.Reporter) {
	runCaret(ctx, rc, sink, func(out *pending, n ast.Node) {
		s, ok := n.(*ast.ExprStmt)
		if !ok {
			return
		}
		base := ""
		switch x := s.X.(type) {
		case *ast.CallExpr:
			name, ok := x.Fun.(*ast.Name)
			if !ok || x.Callable {
				return
			}
			base = name.Last()
		case *ast.MethodCallExpr:
			id, ok := x.Name.(*ast.Ident)
			if !ok || x.Callable {
				return
			}
			base = id.Name
		case *ast.StaticCallExpr:
			id, ok := x.Name.(*ast.Ident)
			if !ok || x.Callable {
				return
			}
			base = id.Name
		case *ast.NewExpr:
			name, ok := x.Class.(*ast.Name)
			if !ok {
				return
			}
			base = name.Last()
		default:
			return
		}
		name := uniqueVariable(rc, s, variableName(base))
		at := rc.Span(s.X.Span().Start, s.X.Span().Start)
		diag.ReportSuggestion(out.reporter(), diag.SugIntroduceVariable, s.X.Span(), "Introduce variable").
			WithFixSuggestion(fix.InsertText("Assign to $"+name, at, "$"+name+" = ", "",
				fix.WithKind(diag.FixKindRefactor),
				fix.WithApplicability(diag.FixApplicabilitySafeWithHeuristics),
				fix.WithID(fix.MakeFixID(diag.SugIntroduceVariable, s.Span())),
			)).
			Emit()
	})
}

// variableName derives a camelCase name from a callee: getUser -> user,
// Foo -> foo.
func variableName(callee string) string {
	for _, prefix := range []string{"get", "fetch", "find", "load", "create", "make", "build"} {
		if len(callee) > len(prefix) && strings.HasPrefix(callee, prefix) {
			rest := callee[len(prefix):]
			if r := rune(rest[0]); unicode.IsUpper(r) || r == '_' {
				callee = strings.TrimLeft(rest, "_")
				break
			}
		}
	}
	if callee == "" {
		return "result"
	}
	if i := strings.IndexFunc(callee, func(r rune) bool { return !unicode.IsUpper(r) }); i != 0 {
		// leading acronym: URLParser -> urlParser
		if i < 0 {
			return strings.ToLower(callee)
		}
		if i > 1 {
			i--
		}
		callee = strings.ToLower(callee[:i]) + callee[i:]
	}
	return callee
}

// uniqueVariable appends a counter to name until no variable of the
// enclosing function, or of the file outside functions, uses it.
func uniqueVariable(rc *rule.Context, at ast.Node, name string) string {
	var root ast.Node = rc.Program
	if rc.Scope != nil {
		if s := rc.Scope.ScopeAt(at.Span().Start).Function(); s != nil {
			root = s.Node
		}
	}
	taken := make(map[string]bool)
	ast.Inspect(root, func(n ast.Node) bool {
		if v, ok := n.(*ast.Variable); ok {
			taken[v.Name] = true
		}
		return true
	})
	if !taken[name] {
		return name
	}
	for i := 2; ; i++ {
		if c := fmt.Sprintf("%s%d", name, i); !taken[c] {
			return c
		}
	}
}

// VarTypeComment offers a /** @var */ comment above "$x = new C(...)".
// Moved, when set, is called after the fix with the offset of the type in
// the inserted comment, so an editor can put the caret there.
type VarTypeComment struct {
	Moved func(path string, offset int)
}

const varTypeFollowupDelay = 50 * time.Millisecond

func (*VarTypeComment) Meta() rule.Meta {
	return suggestionMeta(diag.SugVarTypeComment,
		"Offers to document the type of a variable assigned a new instance on the caret line.")
}

func (r *VarTypeComment) Invoke(ctx context.Context, rc *rule.Context, sink diag.Reporter) {
	runCaret(ctx, rc, sink, func(out *pending, n ast.Node) {
		s, ok := n.(*ast.ExprStmt)
		if !ok {
			return
		}
		as, ok := s.X.(*ast.AssignExpr)
		if !ok || as.Op != token.Assign {
			return
		}
		v, ok := as.Lhs.(*ast.Variable)
		if !ok || v.Name == "" {
			return
		}
		ne, ok := as.Rhs.(*ast.NewExpr)
		if !ok {
			return
		}
		class, ok := ne.Class.(*ast.Name)
		if !ok {
			return
		}
		if it := rc.Tokens.Move(s.Span().Start); it.Valid() {
			if _, has := it.Token().DocComment(); has {
				return
			}
		}

		prefix := "/** @var "
		comment := fmt.Sprintf("%s%s $%s */\n%s", prefix, class, v.Name, fix.LineIndent(rc.File, s.Span().Start))
		at := rc.Span(s.Span().Start, s.Span().Start)
		opts := []fix.Option{
			fix.WithKind(diag.FixKindSourceAction),
			fix.WithID(fix.MakeFixID(diag.SugVarTypeComment, s.Span())),
		}
		if r.Moved != nil {
			path, offset := rc.File.Path, int(at.Start)+len(prefix)
			opts = append(opts, fix.WithFollowup(varTypeFollowupDelay, func() { r.Moved(path, offset) }))
		}
		diag.ReportSuggestion(out.reporter(), diag.SugVarTypeComment, v.Span(),
			fmt.Sprintf("Add @var %s comment", class)).
			WithFixSuggestion(fix.InsertText("Add @var comment", at, comment, "", opts...)).
			Emit()
	})
}
