package rules

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"phphint/internal/ast"
	"phphint/internal/diag"
	"phphint/internal/fix"
	"phphint/internal/model"
	"phphint/internal/rule"
	"phphint/internal/token"
)

// UnusedUse reports imports no name of their namespace refers to. Doc
// comment types and annotations count as references.
type UnusedUse struct{}

func (*UnusedUse) Meta() rule.Meta {
	return hintMeta(diag.HintUnusedUse,
		"Reports use imports that nothing in their namespace refers to, and offers to remove them.")
}

type importEntry struct {
	stmt   *ast.UseStmt
	clause *ast.UseClause
	kind   ast.UseKind
	full   string
	ns     *model.Namespace
	used   bool
}

type importKey struct {
	ns    *model.Namespace
	kind  ast.UseKind
	alias string
}

type usageRole uint8

const (
	roleConst usageRole = iota
	roleClass
	roleFunction
)

func (r *UnusedUse) Invoke(ctx context.Context, rc *rule.Context, sink diag.Reporter) {
	if !start(ctx, rc) || rc.Scope == nil {
		return
	}
	imports := make(map[importKey]*importEntry)
	var order []*importEntry
	roles := make(map[*ast.Name]usageRole)
	var names []*ast.Name

	collect := inspectorOf(ctx, &names, roles)
	var visit func(ast.Node) bool
	visit = func(n ast.Node) bool {
		if ctx.Err() != nil {
			return false
		}
		switch n := n.(type) {
		case *ast.UseStmt:
			for _, c := range n.Uses {
				e := newImport(rc, n, c)
				imports[importKey{ns: e.ns, kind: e.kind, alias: aliasKey(e.kind, importAlias(c))}] = e
				order = append(order, e)
			}
			return false
		case *ast.NamespaceStmt:
			// the namespace name is no reference
			for _, s := range n.Stmts {
				ast.Inspect(s, visit)
			}
			return false
		}
		return collect(n)
	}
	ast.Inspect(rc.Program, visit)
	if ctx.Err() != nil || len(order) == 0 {
		return
	}

	mark := func(ns *model.Namespace, kind ast.UseKind, alias string) {
		if e, ok := imports[importKey{ns: ns, kind: kind, alias: aliasKey(kind, alias)}]; ok {
			e.used = true
		}
	}
	for _, n := range names {
		if len(n.Parts) == 0 || n.Kind == ast.NameFullyQualified || n.Kind == ast.NameRelative {
			continue
		}
		ns := rc.Scope.NamespaceAt(n.Span().Start)
		if n.Kind == ast.NameQualified {
			mark(ns, ast.UseNormal, n.Parts[0])
			continue
		}
		switch roles[n] {
		case roleClass:
			mark(ns, ast.UseNormal, n.Parts[0])
		case roleFunction:
			mark(ns, ast.UseFunction, n.Parts[0])
		default:
			mark(ns, ast.UseConst, n.Parts[0])
		}
	}
	for _, t := range rc.Tokens.Tokens() {
		for _, tr := range t.Leading {
			if tr.Kind != token.TriviaDocBlock {
				continue
			}
			ns := rc.Scope.NamespaceAt(tr.Span.Start)
			for _, alias := range docReferences(tr.Text) {
				mark(ns, ast.UseNormal, alias)
			}
		}
	}

	out := newPending()
	byStmt := make(map[*ast.UseStmt][]*importEntry)
	for _, e := range order {
		byStmt[e.stmt] = append(byStmt[e.stmt], e)
	}
	for _, e := range order {
		if e.used {
			continue
		}
		reportUnused(rc, out, e, byStmt[e.stmt])
	}
	out.flush(ctx, sink)
}

func newImport(rc *rule.Context, s *ast.UseStmt, c *ast.UseClause) *importEntry {
	kind := s.Kind
	if kind == ast.UseNormal {
		kind = c.Kind
	}
	full := strings.Join(c.Name.Parts, `\`)
	if s.Group && s.Prefix != nil {
		full = strings.Join(s.Prefix.Parts, `\`) + `\` + full
	}
	return &importEntry{
		stmt:   s,
		clause: c,
		kind:   kind,
		full:   full,
		ns:     rc.Scope.NamespaceAt(c.Span().Start),
	}
}

func importAlias(c *ast.UseClause) string {
	if c.Alias != nil {
		return c.Alias.Name
	}
	return c.Name.Last()
}

// aliasKey folds class and function aliases; constants are case-sensitive.
func aliasKey(kind ast.UseKind, alias string) string {
	if kind == ast.UseConst {
		return alias
	}
	return model.Fold(alias)
}

// inspectorOf collects every name outside imports together with the role
// its position gives it.
func inspectorOf(ctx context.Context, names *[]*ast.Name, roles map[*ast.Name]usageRole) func(ast.Node) bool {
	class := func(e ast.Node) {
		if n, ok := e.(*ast.Name); ok {
			roles[n] = roleClass
		}
	}
	return func(n ast.Node) bool {
		if ctx.Err() != nil {
			return false
		}
		switch n := n.(type) {
		case *ast.Name:
			*names = append(*names, n)
		case *ast.CallExpr:
			if name, ok := n.Fun.(*ast.Name); ok {
				roles[name] = roleFunction
			}
		case *ast.NewExpr:
			class(n.Class)
		case *ast.StaticCallExpr:
			class(n.Class)
		case *ast.StaticPropertyFetchExpr:
			class(n.Class)
		case *ast.ClassConstFetchExpr:
			class(n.Class)
		case *ast.InstanceofExpr:
			class(n.Class)
		case *ast.CatchClause:
			for _, t := range n.Types {
				class(t)
			}
		case *ast.ClassDecl:
			for _, t := range n.Extends {
				class(t)
			}
			for _, t := range n.Implements {
				class(t)
			}
		case *ast.TraitUseDecl:
			for _, t := range n.Traits {
				class(t)
			}
		case *ast.NamedType:
			class(n.Name)
		case *ast.Attribute:
			class(n.Name)
		}
		return true
	}
}

var (
	docTypeTag = regexp.MustCompile(`@(?:var|param|return|throws|property(?:-read|-write)?|method|mixin|extends|implements|uses|see|template-extends|template-implements|psalm-[a-z-]+|phpstan-[a-z-]+)\s+([^\s*]+)`)
	docAnnot   = regexp.MustCompile(`@([A-Z][A-Za-z0-9_\\]*)`)
	docIdent   = regexp.MustCompile(`\\?[A-Za-z_][A-Za-z0-9_]*(?:\\[A-Za-z_][A-Za-z0-9_]*)*`)
)

// docReferences returns the first name segments a doc block refers to,
// leaving out fully qualified names.
func docReferences(doc string) []string {
	var out []string
	add := func(name string) {
		if name == "" || strings.HasPrefix(name, `\`) {
			return
		}
		out = append(out, strings.SplitN(name, `\`, 2)[0])
	}
	for _, m := range docTypeTag.FindAllStringSubmatch(doc, -1) {
		for _, id := range docIdent.FindAllString(m[1], -1) {
			add(id)
		}
	}
	for _, m := range docAnnot.FindAllStringSubmatch(doc, -1) {
		add(m[1])
	}
	return out
}

func reportUnused(rc *rule.Context, out *pending, e *importEntry, siblings []*importEntry) {
	allUnused := true
	for _, s := range siblings {
		allUnused = allUnused && !s.used
	}

	var del diag.TextEdit
	if allUnused {
		sp, _ := lineOnly(rc.File, e.stmt.Span())
		del = diag.TextEdit{Span: sp, OldText: rc.Text(sp)}
	} else {
		cs := e.clause.Span()
		uses := e.stmt.Uses
		i := 0
		for i < len(uses) && uses[i] != e.clause {
			i++
		}
		sp := cs
		if i+1 < len(uses) {
			sp = rc.Span(cs.Start, uses[i+1].Span().Start)
		} else if i > 0 {
			sp = rc.Span(uses[i-1].Span().End, cs.End)
		}
		del = diag.TextEdit{Span: sp, OldText: rc.Text(sp)}
	}

	kind := ""
	if e.kind != ast.UseNormal {
		kind = e.kind.String() + " "
	}
	diag.ReportWarning(out.reporter(), diag.HintUnusedUse, e.clause.Span(),
		fmt.Sprintf("Unused use %s%s", kind, e.full)).
		WithFixSuggestion(fix.Rewrite("Remove unused use", []diag.TextEdit{del},
			fix.WithKind(diag.FixKindQuickFix),
			fix.WithApplicability(diag.FixApplicabilityAlwaysSafe),
			fix.WithID(fix.MakeFixID(diag.HintUnusedUse, del.Span)),
		)).
		Emit()
}
