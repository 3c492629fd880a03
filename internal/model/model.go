// Package model is the semantic layer rules query: lexical scopes, namespace
// imports and name resolution for one file, and a declaration index across
// files.
package model

import (
	"strings"

	"golang.org/x/text/cases"

	"phphint/internal/ast"
	"phphint/internal/source"
)

// Fold is the key PHP compares case-insensitive names by (classes,
// functions, methods, namespaces).
func Fold(s string) string {
	// Casers keep state and cannot be shared between goroutines.
	return cases.Fold().String(s)
}

// ScopeKind tells what opened a scope.
type ScopeKind uint8

const (
	ScopeFile ScopeKind = iota
	ScopeClass
	ScopeFunction
	ScopeMethod
	ScopeClosure
	ScopeArrowFunc
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeClass:
		return "class"
	case ScopeFunction:
		return "function"
	case ScopeMethod:
		return "method"
	case ScopeClosure:
		return "closure"
	case ScopeArrowFunc:
		return "arrow function"
	}
	return "file"
}

// Scope is a lexical scope. Children are ordered by start offset and do not
// overlap.
type Scope struct {
	Kind      ScopeKind
	Span      source.Span
	Node      ast.Node
	Parent    *Scope
	Children  []*Scope
	Static    bool      // static method, static closure, static fn
	Class     *TypeInfo // innermost enclosing class-like, nil outside
	Namespace *Namespace
}

// InStaticContext reports whether $this is unavailable because of a static
// modifier: inside a static method, or a static closure, or a closure that
// inherits either.
func (s *Scope) InStaticContext() bool {
	for q := s; q != nil; q = q.Parent {
		switch q.Kind {
		case ScopeMethod:
			return q.Static
		case ScopeClosure, ScopeArrowFunc:
			if q.Static {
				return true
			}
		case ScopeFunction, ScopeClass, ScopeFile:
			return false
		}
	}
	return false
}

// Function returns the innermost function-like scope containing s, or nil.
func (s *Scope) Function() *Scope {
	for q := s; q != nil; q = q.Parent {
		switch q.Kind {
		case ScopeFunction, ScopeMethod, ScopeClosure, ScopeArrowFunc:
			return q
		}
	}
	return nil
}

// Namespace is one namespace region with its imports.
type Namespace struct {
	Name string // "" for the global namespace
	Span source.Span
	// alias (folded for classes) -> fully qualified name without leading '\'
	classUses    map[string]string
	functionUses map[string]string
	constUses    map[string]string
}

func newNamespace(name string, sp source.Span) *Namespace {
	return &Namespace{
		Name:         name,
		Span:         sp,
		classUses:    make(map[string]string),
		functionUses: make(map[string]string),
		constUses:    make(map[string]string),
	}
}

// Qualify prefixes name with the namespace.
func (n *Namespace) Qualify(name string) string {
	if n == nil || n.Name == "" {
		return name
	}
	return n.Name + `\` + name
}

// ImportedClass returns the full name a class alias imports.
func (n *Namespace) ImportedClass(alias string) (string, bool) {
	if n == nil {
		return "", false
	}
	full, ok := n.classUses[Fold(alias)]
	return full, ok
}

func (n *Namespace) addUse(kind ast.UseKind, alias, full string) {
	switch kind {
	case ast.UseFunction:
		n.functionUses[Fold(alias)] = full
	case ast.UseConst:
		n.constUses[alias] = full
	default:
		n.classUses[Fold(alias)] = full
	}
}

// TypeInfo describes a declared class, interface, trait or enum.
type TypeInfo struct {
	Name       string // as declared
	FQN        string // without leading '\'
	Kind       ast.ClassKind
	Abstract   bool
	Extends    []string // resolved FQNs
	Implements []string
	Constants  []*ConstInfo
	Methods    []string
	File       source.FileID
	Span       source.Span
	NameSpan   source.Span
}

// Instantiable reports whether "new" may create the type.
func (t *TypeInfo) Instantiable() bool {
	return t.Kind == ast.KindClass && !t.Abstract
}

// Supertypes returns the parents an inheritance walk follows.
func (t *TypeInfo) Supertypes() []string {
	out := make([]string, 0, len(t.Extends)+len(t.Implements))
	out = append(out, t.Extends...)
	return append(out, t.Implements...)
}

// ConstInfo is a class-like constant.
type ConstInfo struct {
	Name  string
	Owner *TypeInfo
	Span  source.Span
}

// FunctionInfo is a named function declaration.
type FunctionInfo struct {
	Name string
	FQN  string
	Span source.Span
}

func trimLeadingSlash(s string) string { return strings.TrimPrefix(s, `\`) }
