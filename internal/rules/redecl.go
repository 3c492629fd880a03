package rules

import (
	"context"
	"fmt"
	"strings"

	"phphint/internal/ast"
	"phphint/internal/diag"
	"phphint/internal/model"
	"phphint/internal/rule"
)

// The redeclaration rules share one shape: collect the named declarations of
// a container in source order, let the first one of each name win, and
// report the rest with a note pointing back at the winner.

func reportRedecls(out *pending, code diag.Code, reds []rule.Redecl, msg func(rule.Redecl) string) {
	for _, r := range reds {
		diag.ReportError(out.reporter(), code, r.Span, msg(r)).
			WithNote(r.First.Span, "first declared here").
			Emit()
	}
}

// qualify prefixes name with the namespace in effect at off.
func qualify(rc *rule.Context, off uint32, name string) string {
	if rc.Scope == nil {
		return name
	}
	return rc.Scope.NamespaceAt(off).Qualify(name)
}

// unconditional drops declarations inside if/else bodies and switch cases.
func unconditional(decls []rule.Decl, cond rule.Ranges) []rule.Decl {
	if len(cond) == 0 {
		return decls
	}
	out := decls[:0:0]
	for _, d := range decls {
		if !cond.Encloses(d.Span) {
			out = append(out, d)
		}
	}
	return out
}

func eachClass(ctx context.Context, root ast.Node, fn func(*ast.ClassDecl)) {
	ast.Inspect(root, func(n ast.Node) bool {
		if ctx.Err() != nil {
			return false
		}
		if c, ok := n.(*ast.ClassDecl); ok {
			fn(c)
		}
		return true
	})
}

func className(c *ast.ClassDecl) string {
	if c.Name == nil {
		return "class@anonymous"
	}
	return c.Name.Name
}

// ConstantRedeclaration reports class constants, enum cases and global
// constants declared twice.
type ConstantRedeclaration struct{}

func (*ConstantRedeclaration) Meta() rule.Meta {
	return errorMeta(diag.ErrConstantRedeclaration,
		"Reports a constant declared twice in one class-like or twice in one namespace.")
}

func (r *ConstantRedeclaration) Invoke(ctx context.Context, rc *rule.Context, sink diag.Reporter) {
	if !start(ctx, rc) {
		return
	}
	out := newPending()
	var global []rule.Decl
	ast.Inspect(rc.Program, func(n ast.Node) bool {
		if ctx.Err() != nil {
			return false
		}
		switch n := n.(type) {
		case *ast.ClassDecl:
			var decls []rule.Decl
			for _, m := range n.Members {
				switch m := m.(type) {
				case *ast.ClassConstDecl:
					for _, spec := range m.Consts {
						if spec.Name != nil {
							decls = append(decls, rule.Decl{Name: spec.Name.Name, Span: spec.Name.Span(), Node: spec})
						}
					}
				case *ast.EnumCaseDecl:
					if m.Name != nil {
						decls = append(decls, rule.Decl{Name: m.Name.Name, Span: m.Name.Span(), Node: m})
					}
				}
			}
			owner := className(n)
			reportRedecls(out, diag.ErrConstantRedeclaration, rule.FirstWins(decls, false), func(d rule.Redecl) string {
				return fmt.Sprintf("Constant %s::%s is already declared", owner, d.Name)
			})
		case *ast.ConstStmt:
			for _, spec := range n.Consts {
				if spec.Name != nil {
					global = append(global, rule.Decl{
						Name: qualify(rc, spec.Span().Start, spec.Name.Name),
						Span: spec.Name.Span(),
						Node: spec,
					})
				}
			}
		case *ast.CallExpr:
			if name, lit, ok := defineCall(n); ok {
				global = append(global, rule.Decl{Name: name, Span: lit.Span(), Node: n})
			}
		}
		return true
	})
	global = unconditional(global, rule.ConditionalRanges(ctx, rc.Program))
	reportRedecls(out, diag.ErrConstantRedeclaration, rule.FirstWins(global, false), func(d rule.Redecl) string {
		return fmt.Sprintf("Constant %s is already declared", d.Name)
	})
	out.flush(ctx, sink)
}

// defineCall matches define('NAME', ...) with a literal name.
func defineCall(c *ast.CallExpr) (string, *ast.StringLit, bool) {
	fn, ok := c.Fun.(*ast.Name)
	if !ok || len(c.Args) < 2 || model.Fold(strings.TrimPrefix(fn.String(), `\`)) != "define" {
		return "", nil, false
	}
	lit, ok := c.Args[0].Value.(*ast.StringLit)
	if !ok || (lit.Kind != ast.StringSingle && lit.Kind != ast.StringDouble) || len(lit.Raw) < 2 {
		return "", nil, false
	}
	name := lit.Raw[1 : len(lit.Raw)-1]
	if name == "" || strings.ContainsAny(name, `$\'"`) {
		return "", nil, false
	}
	return name, lit, true
}

// FieldRedeclaration reports properties declared twice in one class-like,
// counting constructor-promoted parameters.
type FieldRedeclaration struct{}

func (*FieldRedeclaration) Meta() rule.Meta {
	return errorMeta(diag.ErrFieldRedeclaration,
		"Reports a property declared twice in one class-like, including promoted constructor parameters.")
}

func (r *FieldRedeclaration) Invoke(ctx context.Context, rc *rule.Context, sink diag.Reporter) {
	if !start(ctx, rc) {
		return
	}
	out := newPending()
	eachClass(ctx, rc.Program, func(c *ast.ClassDecl) {
		var decls []rule.Decl
		for _, m := range c.Members {
			switch m := m.(type) {
			case *ast.PropertyDecl:
				for _, p := range m.Props {
					if p.Var != nil && p.Var.Name != "" {
						decls = append(decls, rule.Decl{Name: p.Var.Name, Span: p.Var.Span(), Node: p})
					}
				}
			case *ast.MethodDecl:
				if m.Name == nil || model.Fold(m.Name.Name) != "__construct" {
					continue
				}
				for _, p := range m.Params {
					if p.Modifiers != 0 && p.Var != nil {
						decls = append(decls, rule.Decl{Name: p.Var.Name, Span: p.Var.Span(), Node: p})
					}
				}
			}
		}
		owner := className(c)
		reportRedecls(out, diag.ErrFieldRedeclaration, rule.FirstWins(decls, false), func(d rule.Redecl) string {
			return fmt.Sprintf("Field %s::$%s is already declared", owner, d.Name)
		})
	})
	out.flush(ctx, sink)
}

// MethodRedeclaration reports methods declared twice in one class-like and
// functions declared twice in one namespace. Functions declared inside a
// conditional branch are exempt.
type MethodRedeclaration struct{}

func (*MethodRedeclaration) Meta() rule.Meta {
	return errorMeta(diag.ErrMethodRedeclaration,
		"Reports a method declared twice in one class-like, or an unconditional function declared twice.")
}

func (r *MethodRedeclaration) Invoke(ctx context.Context, rc *rule.Context, sink diag.Reporter) {
	if !start(ctx, rc) {
		return
	}
	out := newPending()
	var funcs []rule.Decl
	ast.Inspect(rc.Program, func(n ast.Node) bool {
		if ctx.Err() != nil {
			return false
		}
		switch n := n.(type) {
		case *ast.ClassDecl:
			var decls []rule.Decl
			for _, m := range n.Members {
				if md, ok := m.(*ast.MethodDecl); ok && md.Name != nil {
					decls = append(decls, rule.Decl{Name: md.Name.Name, Span: md.Name.Span(), Node: md})
				}
			}
			owner := className(n)
			reportRedecls(out, diag.ErrMethodRedeclaration, rule.FirstWins(decls, true), func(d rule.Redecl) string {
				return fmt.Sprintf("Method %s::%s() is already declared", owner, d.Name)
			})
		case *ast.FuncDecl:
			if n.Name != nil {
				funcs = append(funcs, rule.Decl{
					Name: qualify(rc, n.Span().Start, n.Name.Name),
					Span: n.Name.Span(),
					Node: n,
				})
			}
		}
		return true
	})
	funcs = unconditional(funcs, rule.ConditionalRanges(ctx, rc.Program))
	reportRedecls(out, diag.ErrMethodRedeclaration, rule.FirstWins(funcs, true), func(d rule.Redecl) string {
		return fmt.Sprintf("Function %s() is already declared", d.Name)
	})
	out.flush(ctx, sink)
}

// TypeRedeclaration reports classes, interfaces, traits and enums declared
// twice in one namespace outside of conditional branches.
type TypeRedeclaration struct{}

func (*TypeRedeclaration) Meta() rule.Meta {
	return errorMeta(diag.ErrTypeRedeclaration,
		"Reports a class-like name declared twice unconditionally.")
}

func (r *TypeRedeclaration) Invoke(ctx context.Context, rc *rule.Context, sink diag.Reporter) {
	if !start(ctx, rc) {
		return
	}
	var decls []rule.Decl
	eachClass(ctx, rc.Program, func(c *ast.ClassDecl) {
		if c.Name != nil {
			decls = append(decls, rule.Decl{
				Name: qualify(rc, c.Span().Start, c.Name.Name),
				Span: c.Name.Span(),
				Node: c,
			})
		}
	})
	decls = unconditional(decls, rule.ConditionalRanges(ctx, rc.Program))
	out := newPending()
	reportRedecls(out, diag.ErrTypeRedeclaration, rule.FirstWins(decls, true), func(d rule.Redecl) string {
		first := d.First.Node.(*ast.ClassDecl)
		return fmt.Sprintf("Cannot declare %s %s, the name is already in use", d.Node.(*ast.ClassDecl).Kind, first.Name.Name)
	})
	out.flush(ctx, sink)
}
