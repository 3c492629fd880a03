package rules

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"phphint/internal/ast"
	"phphint/internal/diag"
	"phphint/internal/model"
	"phphint/internal/phpver"
	"phphint/internal/rule"
)

// AbstractInstantiation reports "new" on abstract classes, interfaces,
// traits and enums.
type AbstractInstantiation struct{}

func (*AbstractInstantiation) Meta() rule.Meta {
	return errorMeta(diag.ErrAbstractInstantiation,
		"Reports new expressions creating a type that cannot be instantiated.")
}

func (r *AbstractInstantiation) Invoke(ctx context.Context, rc *rule.Context, sink diag.Reporter) {
	if !start(ctx, rc) || rc.Scope == nil {
		return
	}
	v := &abstractVisitor{ctx: ctx, rc: rc, out: newPending()}
	ast.Walk(v, rc.Program)
	v.out.flush(ctx, sink)
}

type abstractVisitor struct {
	ctx context.Context
	rc  *rule.Context
	out *pending
}

func (v *abstractVisitor) Visit(n ast.Node) ast.Visitor {
	if n == nil || v.ctx.Err() != nil {
		return nil
	}
	switch n := n.(type) {
	case *ast.NewExpr:
		if name, ok := n.Class.(*ast.Name); ok {
			v.check(name)
		}
		return v
	default:
		return v
	}
}

func (v *abstractVisitor) check(name *ast.Name) {
	if name.Kind == ast.NameUnqualified && strings.EqualFold(name.Last(), "static") {
		return
	}
	fqn := v.rc.Scope.ResolveClassName(name, name.Span().Start)
	types := lookupTypes(v.rc, fqn)
	if len(types) == 0 {
		return
	}
	for _, t := range types {
		if t.Instantiable() {
			return
		}
	}
	t := types[0]
	what := t.Kind.String()
	if t.Kind == ast.KindClass {
		what = "abstract class"
	}
	b := diag.ReportError(v.out.reporter(), diag.ErrAbstractInstantiation, name.Span(),
		fmt.Sprintf("Cannot instantiate %s %s", what, t.Name))
	if t.File == v.rc.File.ID {
		b.WithNote(t.NameSpan, "declared here")
	}
	b.Emit()
}

// lookupTypes resolves fqn through the index, or through the file alone when
// the pass has none.
func lookupTypes(rc *rule.Context, fqn string) []*model.TypeInfo {
	if rc.Index != nil {
		return rc.Index.Classes(model.Exact, fqn)
	}
	if t := rc.Scope.Type(fqn); t != nil {
		return []*model.TypeInfo{t}
	}
	return nil
}

// ThisInStaticContext reports $this inside static methods and static
// closures.
type ThisInStaticContext struct{}

func (*ThisInStaticContext) Meta() rule.Meta {
	return errorMeta(diag.ErrThisInStaticContext,
		"Reports $this where no object is bound: static methods, static closures and static arrow functions.")
}

func (r *ThisInStaticContext) Invoke(ctx context.Context, rc *rule.Context, sink diag.Reporter) {
	if !start(ctx, rc) || rc.Scope == nil {
		return
	}
	v := &thisVisitor{ctx: ctx, rc: rc, out: newPending()}
	ast.Walk(v, rc.Program)
	v.out.flush(ctx, sink)
}

type thisVisitor struct {
	ctx context.Context
	rc  *rule.Context
	out *pending
}

func (v *thisVisitor) Visit(n ast.Node) ast.Visitor {
	if n == nil || v.ctx.Err() != nil {
		return nil
	}
	switch n := n.(type) {
	case *ast.StaticPropertyFetchExpr:
		// self::$this names a property
		ast.Walk(v, n.Class)
		return nil
	case *ast.Variable:
		if n.Name == "this" {
			if s := v.rc.Scope.ScopeAt(n.Span().Start); s != nil && s.InStaticContext() {
				diag.ReportError(v.out.reporter(), diag.ErrThisInStaticContext, n.Span(),
					"Cannot use $this in a static context").Emit()
			}
		}
		return v
	default:
		return v
	}
}

// LoopOnlyKeyword reports break and continue outside of loops and switches,
// and levels deeper than the enclosing loops.
type LoopOnlyKeyword struct{}

func (*LoopOnlyKeyword) Meta() rule.Meta {
	return errorMeta(diag.ErrLoopOnlyKeyword,
		"Reports break and continue that have no enclosing loop or switch at the requested level.")
}

func (r *LoopOnlyKeyword) Invoke(ctx context.Context, rc *rule.Context, sink diag.Reporter) {
	if !start(ctx, rc) {
		return
	}
	v := &loopVisitor{ctx: ctx, out: newPending()}
	ast.WalkPath(v, rc.Program)
	v.out.flush(ctx, sink)
}

type loopVisitor struct {
	ctx context.Context
	out *pending
}

func (v *loopVisitor) Visit(n ast.Node, path *ast.Path) ast.PathVisitor {
	if n == nil || v.ctx.Err() != nil {
		return nil
	}
	switch n := n.(type) {
	case *ast.BreakStmt:
		v.check(n, "break", n.Level, path)
		return v
	case *ast.ContinueStmt:
		v.check(n, "continue", n.Level, path)
		return v
	default:
		return v
	}
}

func breakable(n ast.Node) bool {
	if _, ok := ast.LoopKind(n); ok {
		return true
	}
	_, ok := n.(*ast.SwitchStmt)
	return ok
}

func (v *loopVisitor) check(n ast.Node, kw string, level ast.Expr, path *ast.Path) {
	depth := 0
	for q := path; q.Len() > 0; q = q.Up() {
		p := q.Parent()
		if ast.IsFunctionBoundary(p) {
			break
		}
		if breakable(p) {
			depth++
		}
	}
	r := v.out.reporter()
	if depth == 0 {
		diag.ReportError(r, diag.ErrLoopOnlyKeyword, n.Span(),
			fmt.Sprintf("'%s' not in the 'loop' or 'switch' context", kw)).Emit()
		return
	}
	if level == nil {
		return
	}
	lit, ok := ast.Unparen(level).(*ast.IntLit)
	if !ok {
		diag.ReportError(r, diag.ErrLoopOnlyKeyword, level.Span(),
			fmt.Sprintf("'%s' operator with non-integer operand is not supported", kw)).Emit()
		return
	}
	want, err := strconv.ParseInt(strings.ReplaceAll(lit.Raw, "_", ""), 0, 64)
	switch {
	case err != nil || want < 1:
		diag.ReportError(r, diag.ErrLoopOnlyKeyword, level.Span(),
			fmt.Sprintf("'%s' operator accepts only positive integers", kw)).Emit()
	case want > int64(depth):
		diag.ReportError(r, diag.ErrLoopOnlyKeyword, n.Span(),
			fmt.Sprintf("Cannot '%s' %d levels", kw, want)).Emit()
	}
}

// InterfaceConstantOverride reports class-likes redefining a constant they
// inherit from an interface, which PHP only allows since 8.1.
type InterfaceConstantOverride struct{}

func (*InterfaceConstantOverride) Meta() rule.Meta {
	return errorMeta(diag.ErrInterfaceConstantOverride,
		"Reports constants overriding an interface constant when the file targets PHP older than 8.1.")
}

func (r *InterfaceConstantOverride) Invoke(ctx context.Context, rc *rule.Context, sink diag.Reporter) {
	if !start(ctx, rc) || rc.Scope == nil || rc.Index == nil || rc.Version >= phpver.PHP81 {
		return
	}
	out := newPending()
	ast.Inspect(rc.Program, func(n ast.Node) bool {
		if ctx.Err() != nil {
			return false
		}
		if c, ok := n.(*ast.ClassDecl); ok && c.Name != nil {
			checkInterfaceConstants(ctx, rc, c, out)
		}
		return true
	})
	out.flush(ctx, sink)
}

func checkInterfaceConstants(ctx context.Context, rc *rule.Context, c *ast.ClassDecl, out *pending) {
	fqn := rc.Scope.NamespaceAt(c.Span().Start).Qualify(c.Name.Name)
	t := rc.Scope.Type(fqn)
	if t == nil {
		return
	}
	fromInterface := make(map[string]*model.ConstInfo)
	for _, ci := range rc.Index.InheritedTypeConstants(t) {
		if ci.Owner.Kind != ast.KindInterface {
			continue
		}
		if _, seen := fromInterface[ci.Name]; !seen {
			fromInterface[ci.Name] = ci
		}
	}
	if len(fromInterface) == 0 {
		return
	}
	for _, m := range c.Members {
		if ctx.Err() != nil {
			return
		}
		decl, ok := m.(*ast.ClassConstDecl)
		if !ok {
			continue
		}
		for _, spec := range decl.Consts {
			if spec.Name == nil {
				continue
			}
			if ci, hit := fromInterface[spec.Name.Name]; hit {
				b := diag.ReportError(out.reporter(), diag.ErrInterfaceConstantOverride, spec.Name.Span(),
					fmt.Sprintf("Cannot override constant %s inherited from interface %s", spec.Name.Name, ci.Owner.Name))
				if ci.Owner.File == rc.File.ID {
					b.WithNote(ci.Span, "inherited constant declared here")
				}
				b.Emit()
			}
		}
	}
}
