package rules

import (
	"context"
	"fmt"

	"phphint/internal/ast"
	"phphint/internal/diag"
	"phphint/internal/fix"
	"phphint/internal/rule"
	"phphint/internal/source"
	"phphint/internal/token"
)

// EmptyStatement reports a lone ';' in a statement list.
type EmptyStatement struct{}

func (*EmptyStatement) Meta() rule.Meta {
	return hintMeta(diag.HintEmptyStatement,
		"Reports semicolons that form an empty statement of their own, such as the one after a class body.")
}

func (r *EmptyStatement) Invoke(ctx context.Context, rc *rule.Context, sink diag.Reporter) {
	if !start(ctx, rc) {
		return
	}
	v := &emptyVisitor{ctx: ctx, rc: rc, out: newPending()}
	ast.WalkPath(v, rc.Program)
	v.out.flush(ctx, sink)
}

type emptyVisitor struct {
	ctx context.Context
	rc  *rule.Context
	out *pending
}

func (v *emptyVisitor) Visit(n ast.Node, path *ast.Path) ast.PathVisitor {
	if n == nil || v.ctx.Err() != nil {
		return nil
	}
	switch n := n.(type) {
	case *ast.EmptyStmt:
		switch path.Parent().(type) {
		case *ast.File, *ast.BlockStmt, *ast.NamespaceStmt, *ast.CaseClause:
		default:
			// body of a control structure, "while (x());" is intended
			return v
		}
		sp := n.Span()
		if v.rc.Text(sp) != ";" {
			return v
		}
		diag.ReportWarning(v.out.reporter(), diag.HintEmptyStatement, sp, "Unnecessary semicolon").
			WithFixSuggestion(fix.DeleteSpan("Remove unnecessary semicolon", sp, ";",
				fix.WithID(fix.MakeFixID(diag.HintEmptyStatement, sp)),
				fix.Preferred(),
			)).
			Emit()
		return v
	default:
		return v
	}
}

// WrongOrderOfArgs reports optional parameters declared before required
// ones. The default value of such a parameter can never be used.
type WrongOrderOfArgs struct{}

func (*WrongOrderOfArgs) Meta() rule.Meta {
	return hintMeta(diag.HintWrongOrderOfArgs,
		"Reports optional parameters followed by required ones and offers to move the required parameters first.")
}

func (r *WrongOrderOfArgs) Invoke(ctx context.Context, rc *rule.Context, sink diag.Reporter) {
	if !start(ctx, rc) {
		return
	}
	out := newPending()
	ast.Inspect(rc.Program, func(n ast.Node) bool {
		if ctx.Err() != nil {
			return false
		}
		if ps, _ := params(n); len(ps) > 1 {
			checkParamOrder(rc, out, ps)
		}
		return true
	})
	out.flush(ctx, sink)
}

func checkParamOrder(rc *rule.Context, out *pending, ps []*ast.Param) {
	firstOptional := -1
	misplaced := -1
	for i, p := range ps {
		switch {
		case p.Variadic:
		case p.IsOptional():
			if firstOptional < 0 {
				firstOptional = i
			}
		case firstOptional >= 0 && misplaced < 0:
			misplaced = i
		}
	}
	if misplaced < 0 {
		return
	}

	var required, optional, variadic []*ast.Param
	for _, p := range ps {
		switch {
		case p.Variadic:
			variadic = append(variadic, p)
		case p.IsOptional():
			optional = append(optional, p)
		default:
			required = append(required, p)
		}
	}
	order := append(append(required, optional...), variadic...)
	var edits []diag.TextEdit
	for i, p := range ps {
		if order[i] == p {
			continue
		}
		edits = append(edits, diag.TextEdit{
			Span:    p.Span(),
			NewText: rc.NodeText(order[i]),
			OldText: rc.NodeText(p),
		})
	}

	sp := ps[0].Span().Cover(ps[len(ps)-1].Span())
	b := diag.ReportWarning(out.reporter(), diag.HintWrongOrderOfArgs, sp,
		fmt.Sprintf("Required parameter %s follows optional parameter %s", paramName(ps[misplaced]), paramName(ps[firstOptional])))
	b.WithNote(ps[firstOptional].Span(), "optional parameter declared here")
	if len(edits) > 0 {
		b.WithFixSuggestion(fix.Rewrite("Move required parameters first", edits,
			fix.WithApplicability(diag.FixApplicabilityManualReview),
			fix.WithID(fix.MakeFixID(diag.HintWrongOrderOfArgs, sp)),
		))
	}
	b.Emit()
}

func paramName(p *ast.Param) string {
	if p.Var == nil {
		return "$?"
	}
	return "$" + p.Var.Name
}

// AssignmentInCondition reports "=" used as the condition of if, elseif,
// while, do-while and for. Parenthesizing the assignment marks it as
// intended.
type AssignmentInCondition struct{}

func (*AssignmentInCondition) Meta() rule.Meta {
	return hintMeta(diag.HintAssignmentInCondition,
		"Reports assignments used as a condition where a comparison was probably meant.")
}

func (r *AssignmentInCondition) Invoke(ctx context.Context, rc *rule.Context, sink diag.Reporter) {
	if !start(ctx, rc) {
		return
	}
	v := &condVisitor{ctx: ctx, out: newPending()}
	ast.WalkPath(v, rc.Program)
	v.out.flush(ctx, sink)
}

type condVisitor struct {
	ctx context.Context
	out *pending
}

func (v *condVisitor) Visit(n ast.Node, path *ast.Path) ast.PathVisitor {
	if n == nil || v.ctx.Err() != nil {
		return nil
	}
	switch n := n.(type) {
	case *ast.AssignExpr:
		if n.Op == token.Assign && !n.ByRef && usedAsCondition(n, path) {
			diag.ReportWarning(v.out.reporter(), diag.HintAssignmentInCondition, n.Span(),
				"Assignment used as a condition").
				WithFixSuggestion(fix.WrapWith("Wrap the assignment in parentheses", n.Span(), "(", ")",
					fix.WithApplicability(diag.FixApplicabilityAlwaysSafe),
					fix.Preferred(),
				)).
				WithFixSuggestion(fix.ReplaceSpan("Change to comparison", n.OpSp, "==", "=",
					fix.WithApplicability(diag.FixApplicabilityManualReview),
				)).
				Emit()
		}
		return v
	default:
		return v
	}
}

// usedAsCondition climbs through logical operators from e and reports
// whether it ends up as a loop or branch condition.
func usedAsCondition(e ast.Node, path *ast.Path) bool {
	child := e
	for q := path; q.Len() > 0; q = q.Up() {
		switch p := q.Parent().(type) {
		case *ast.BinaryExpr:
			switch p.Op {
			case token.AndAnd, token.OrOr, token.KwAnd, token.KwOr, token.KwXor:
				child = p
				continue
			}
			return false
		case *ast.UnaryExpr:
			if p.Op != token.Bang {
				return false
			}
			child = p
		case *ast.IfStmt:
			return p.Cond == child
		case *ast.ElseIfClause:
			return p.Cond == child
		case *ast.WhileStmt:
			return p.Cond == child
		case *ast.DoWhileStmt:
			return p.Cond == child
		case *ast.ForStmt:
			for _, c := range p.Cond {
				if c == child {
					return true
				}
			}
			return false
		default:
			// includes ParenExpr: explicit parentheses mean the assignment is wanted
			return false
		}
	}
	return false
}

// MissingBraces reports control structure bodies written without braces.
type MissingBraces struct{}

func (*MissingBraces) Meta() rule.Meta {
	return hintMeta(diag.HintMissingBraces,
		"Reports if, else, while, for, foreach and do bodies that are a single statement without braces.")
}

func (r *MissingBraces) Invoke(ctx context.Context, rc *rule.Context, sink diag.Reporter) {
	if !start(ctx, rc) {
		return
	}
	out := newPending()
	ast.Inspect(rc.Program, func(n ast.Node) bool {
		if ctx.Err() != nil {
			return false
		}
		switch n := n.(type) {
		case *ast.IfStmt:
			if n.Alt {
				return true
			}
			braces(rc, out, n, "if", n.Body)
			for _, c := range n.ElseIfs {
				braces(rc, out, n, "elseif", c.Body)
			}
			if n.Else != nil {
				braces(rc, out, n, "else", n.Else.Body)
			}
		case *ast.WhileStmt:
			if !n.Alt {
				braces(rc, out, n, "while", n.Body)
			}
		case *ast.ForStmt:
			if !n.Alt {
				braces(rc, out, n, "for", n.Body)
			}
		case *ast.ForeachStmt:
			if !n.Alt {
				braces(rc, out, n, "foreach", n.Body)
			}
		case *ast.DoWhileStmt:
			braces(rc, out, n, "do", n.Body)
		}
		return true
	})
	out.flush(ctx, sink)
}

func braces(rc *rule.Context, out *pending, owner ast.Node, kw string, body ast.Stmt) {
	switch body.(type) {
	case nil, *ast.BlockStmt, *ast.EmptyStmt, *ast.IfStmt:
		// "else if" keeps its own braces
		return
	}
	bs := body.Span()
	i := rc.Tokens.Before(bs.Start)
	if i < 0 {
		return
	}
	header := rc.Tokens.At(i).Span
	f := rc.File

	var edits []diag.TextEdit
	if f.LineStart(header.End) == f.LineStart(bs.Start) {
		edits = []diag.TextEdit{
			{Span: rc.Span(bs.Start, bs.Start), NewText: "{ "},
			{Span: rc.Span(bs.End, bs.End), NewText: " }"},
		}
	} else {
		edits = []diag.TextEdit{
			{Span: rc.Span(header.End, header.End), NewText: " {"},
			{Span: rc.Span(bs.End, bs.End), NewText: "\n" + fix.LineIndent(f, owner.Span().Start) + "}"},
		}
	}
	diag.ReportWarning(out.reporter(), diag.HintMissingBraces, bs,
		fmt.Sprintf("'%s' body should be enclosed in braces", kw)).
		WithFixSuggestion(fix.Rewrite("Add braces", edits,
			fix.WithApplicability(diag.FixApplicabilityAlwaysSafe),
			fix.WithID(fix.MakeFixID(diag.HintMissingBraces, bs)),
		)).
		Emit()
}

// ErrorControlOperator reports "@" where it cannot help: on expressions
// that raise nothing, and on calls to functions declared in the same file
// whose errors should be fixed instead of hidden.
type ErrorControlOperator struct{}

func (*ErrorControlOperator) Meta() rule.Meta {
	return hintMeta(diag.HintErrorControlOperator,
		"Reports the @ operator on expressions that raise no errors and on calls to functions of the same file.")
}

func (r *ErrorControlOperator) Invoke(ctx context.Context, rc *rule.Context, sink diag.Reporter) {
	if !start(ctx, rc) {
		return
	}
	out := newPending()
	ast.Inspect(rc.Program, func(n ast.Node) bool {
		if ctx.Err() != nil {
			return false
		}
		if s, ok := n.(*ast.SilenceExpr); ok {
			checkSilence(rc, out, s)
		}
		return true
	})
	out.flush(ctx, sink)
}

func checkSilence(rc *rule.Context, out *pending, s *ast.SilenceExpr) {
	at := rc.Span(s.Span().Start, s.Span().Start+1)
	if rc.Text(at) != "@" {
		return
	}
	var msg string
	app := diag.FixApplicabilityAlwaysSafe
	switch x := ast.Unparen(s.X).(type) {
	case *ast.IntLit, *ast.FloatLit, *ast.StringLit, *ast.ClosureExpr, *ast.ArrowFuncExpr,
		*ast.IssetExpr, *ast.EmptyExpr:
		msg = "Error control operator has no effect on this expression"
	case *ast.SilenceExpr:
		msg = "Error control operator is repeated"
	case *ast.CallExpr:
		name, ok := x.Fun.(*ast.Name)
		if !ok || rc.Scope == nil || !rc.Scope.HasFunction(name, x.Span().Start) {
			return
		}
		msg = fmt.Sprintf("Error control operator hides errors of %s(), which is declared in this file", name)
		app = diag.FixApplicabilityManualReview
	default:
		return
	}
	diag.ReportWarning(out.reporter(), diag.HintErrorControlOperator, at, msg).
		WithFixSuggestion(fix.DeleteSpan("Remove error control operator", at, "@",
			fix.WithApplicability(app),
			fix.WithID(fix.MakeFixID(diag.HintErrorControlOperator, at)),
		)).
		Emit()
}

func lineOnly(f *source.File, sp source.Span) (source.Span, bool) {
	ls, le := f.LineStart(sp.Start), f.LineEnd(sp.End)
	for _, c := range f.Content[ls:sp.Start] {
		if c != ' ' && c != '\t' {
			return sp, false
		}
	}
	for _, c := range f.Content[sp.End:le] {
		if c != ' ' && c != '\t' && c != '\r' {
			return sp, false
		}
	}
	if le < f.Len() {
		le++
	}
	return source.Span{File: sp.File, Start: ls, End: le}, true
}
