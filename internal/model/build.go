package model

import (
	"sort"
	"strings"

	"phphint/internal/ast"
	"phphint/internal/source"
)

// FileScope is the semantic view of one file.
type FileScope struct {
	File       source.FileID
	Root       *Scope
	Namespaces []*Namespace
	Types      []*TypeInfo
	Functions  []*FunctionInfo

	functions map[string]*FunctionInfo // folded FQN
}

// Build computes scopes and declarations of f. A nil f yields nil.
func Build(id source.FileID, f *ast.File) *FileScope {
	if f == nil {
		return nil
	}
	global := newNamespace("", f.Span())
	fs := &FileScope{
		File:       id,
		Namespaces: []*Namespace{global},
		functions:  make(map[string]*FunctionInfo),
	}
	fs.Root = &Scope{Kind: ScopeFile, Span: f.Span(), Node: f, Namespace: global}
	b := builder{fs: fs}
	for _, s := range f.Stmts {
		b.walk(s, fs.Root, global)
	}
	return fs
}

type builder struct {
	fs *FileScope
}

func (b *builder) child(parent *Scope, node ast.Node, k ScopeKind, static bool, ns *Namespace) *Scope {
	s := &Scope{
		Kind:      k,
		Span:      node.Span(),
		Node:      node,
		Parent:    parent,
		Static:    static,
		Class:     parent.Class,
		Namespace: ns,
	}
	parent.Children = append(parent.Children, s)
	return s
}

func (b *builder) walk(n ast.Node, s *Scope, ns *Namespace) {
	switch n := n.(type) {
	case *ast.NamespaceStmt:
		name := ""
		if n.Name != nil {
			name = strings.Join(n.Name.Parts, `\`)
		}
		ns = newNamespace(name, n.Span())
		b.fs.Namespaces = append(b.fs.Namespaces, ns)
	case *ast.UseStmt:
		b.addUses(n, ns)
		return
	case *ast.FuncDecl:
		if n.Name != nil {
			fi := &FunctionInfo{Name: n.Name.Name, FQN: ns.Qualify(n.Name.Name), Span: n.Span()}
			b.fs.Functions = append(b.fs.Functions, fi)
			if _, dup := b.fs.functions[Fold(fi.FQN)]; !dup {
				b.fs.functions[Fold(fi.FQN)] = fi
			}
		}
		s = b.child(s, n, ScopeFunction, false, ns)
	case *ast.MethodDecl:
		s = b.child(s, n, ScopeMethod, n.IsStatic(), ns)
	case *ast.ClosureExpr:
		s = b.child(s, n, ScopeClosure, n.Static, ns)
	case *ast.ArrowFuncExpr:
		s = b.child(s, n, ScopeArrowFunc, n.Static, ns)
	case *ast.ClassDecl:
		t := b.typeInfo(n, s, ns)
		s = b.child(s, n, ScopeClass, false, ns)
		s.Class = t
	}
	ast.EachChild(n, func(c ast.Node) { b.walk(c, s, ns) })
}

func (b *builder) addUses(u *ast.UseStmt, ns *Namespace) {
	for _, c := range u.Uses {
		if c.Name == nil {
			continue
		}
		full := strings.Join(c.Name.Parts, `\`)
		if u.Group && u.Prefix != nil {
			full = strings.Join(u.Prefix.Parts, `\`) + `\` + full
		}
		alias := c.Name.Last()
		if c.Alias != nil {
			alias = c.Alias.Name
		}
		ns.addUse(c.Kind, alias, full)
	}
}

func (b *builder) typeInfo(c *ast.ClassDecl, s *Scope, ns *Namespace) *TypeInfo {
	t := &TypeInfo{
		Kind:     c.Kind,
		Abstract: c.IsAbstract(),
		File:     b.fs.File,
		Span:     c.Span(),
	}
	if c.Name != nil {
		t.Name = c.Name.Name
		t.FQN = ns.Qualify(c.Name.Name)
		t.NameSpan = c.Name.Span()
	}
	resolve := func(names []*ast.Name) []string {
		out := make([]string, 0, len(names))
		for _, n := range names {
			out = append(out, resolveClass(n, ns, s.Class))
		}
		return out
	}
	t.Extends = resolve(c.Extends)
	t.Implements = resolve(c.Implements)
	for _, m := range c.Members {
		switch m := m.(type) {
		case *ast.ClassConstDecl:
			for _, cs := range m.Consts {
				if cs.Name != nil {
					t.Constants = append(t.Constants, &ConstInfo{Name: cs.Name.Name, Owner: t, Span: cs.Span()})
				}
			}
		case *ast.MethodDecl:
			if m.Name != nil {
				t.Methods = append(t.Methods, m.Name.Name)
			}
		}
	}
	if c.Name != nil {
		b.fs.Types = append(b.fs.Types, t)
	}
	return t
}

// ScopeAt returns the innermost scope containing off.
func (fs *FileScope) ScopeAt(off uint32) *Scope {
	if fs == nil {
		return nil
	}
	s := fs.Root
	for {
		next := childAt(s.Children, off)
		if next == nil {
			return s
		}
		s = next
	}
}

func childAt(children []*Scope, off uint32) *Scope {
	i := sort.Search(len(children), func(i int) bool { return children[i].Span.End > off })
	if i < len(children) && children[i].Span.Start <= off {
		return children[i]
	}
	return nil
}

// NamespaceAt returns the namespace region containing off.
func (fs *FileScope) NamespaceAt(off uint32) *Namespace {
	if fs == nil {
		return nil
	}
	var best *Namespace
	for _, ns := range fs.Namespaces {
		if ns.Span.ContainsInclusive(off) {
			best = ns // later regions are nested in the global one
		}
	}
	return best
}

// ResolveClassName returns the fully qualified class name n refers to at off,
// without the leading '\'. self and static resolve to the enclosing class
// and parent to its parent class; they stay unresolved outside a class.
func (fs *FileScope) ResolveClassName(n *ast.Name, off uint32) string {
	if fs == nil || n == nil {
		return ""
	}
	var cls *TypeInfo
	if s := fs.ScopeAt(off); s != nil {
		cls = s.Class
	}
	return resolveClass(n, fs.NamespaceAt(off), cls)
}

func resolveClass(n *ast.Name, ns *Namespace, cls *TypeInfo) string {
	joined := strings.Join(n.Parts, `\`)
	switch n.Kind {
	case ast.NameFullyQualified:
		return joined
	case ast.NameRelative:
		return ns.Qualify(joined)
	}
	if n.Kind == ast.NameUnqualified {
		switch Fold(joined) {
		case "self", "static":
			if cls != nil && cls.FQN != "" {
				return cls.FQN
			}
			return joined
		case "parent":
			if cls != nil && len(cls.Extends) > 0 {
				return cls.Extends[0]
			}
			return joined
		}
	}
	if len(n.Parts) > 0 {
		if full, ok := ns.ImportedClass(n.Parts[0]); ok {
			return strings.Join(append([]string{full}, n.Parts[1:]...), `\`)
		}
	}
	return ns.Qualify(joined)
}

// HasFunction reports whether a call to n at off reaches a function declared
// in this file: the namespaced candidate first, then the global fallback for
// unqualified names.
func (fs *FileScope) HasFunction(n *ast.Name, off uint32) bool {
	if fs == nil || n == nil {
		return false
	}
	joined := strings.Join(n.Parts, `\`)
	if n.Kind == ast.NameFullyQualified {
		_, ok := fs.functions[Fold(joined)]
		return ok
	}
	ns := fs.NamespaceAt(off)
	if n.Kind == ast.NameUnqualified && ns != nil {
		if full, ok := ns.functionUses[Fold(joined)]; ok {
			_, ok := fs.functions[Fold(full)]
			return ok
		}
	}
	if _, ok := fs.functions[Fold(ns.Qualify(joined))]; ok {
		return true
	}
	if n.Kind == ast.NameUnqualified {
		_, ok := fs.functions[Fold(joined)]
		return ok
	}
	return false
}

// Type returns the type declared in this file under fqn.
func (fs *FileScope) Type(fqn string) *TypeInfo {
	if fs == nil {
		return nil
	}
	key := Fold(trimLeadingSlash(fqn))
	for _, t := range fs.Types {
		if Fold(t.FQN) == key {
			return t
		}
	}
	return nil
}
