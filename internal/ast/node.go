// Package ast declares the PHP syntax tree and its traversals.
//
// Nodes are pointers to structs embedding Base. The node set is closed:
// EachChild knows every kind and panics on an unknown one, so traversal
// helpers (Walk, Inspect, WalkPath, WalkBounded) never skip a kind silently.
package ast

import (
	"strings"

	"phphint/internal/source"
)

// Node is any syntax tree node.
type Node interface {
	Span() source.Span
}

// Stmt is a statement or a top-level declaration.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// TypeExpr is a type declaration such as ?int or A|B.
type TypeExpr interface {
	Node
	typeNode()
}

// Member is a class-like body member.
type Member interface {
	Node
	memberNode()
}

// Base carries the source span of a node.
type Base struct {
	Sp source.Span
}

func (b *Base) Span() source.Span { return b.Sp }

// File is the root of a parsed source file.
type File struct {
	Base
	ID    source.FileID
	Stmts []Stmt
}

// ModFlag is a set of declaration modifiers.
type ModFlag uint16

const (
	ModPublic ModFlag = 1 << iota
	ModProtected
	ModPrivate
	ModStatic
	ModAbstract
	ModFinal
	ModReadonly
	ModVar // legacy "var" property
)

// Has reports whether every flag in f is set.
func (m ModFlag) Has(f ModFlag) bool { return m&f == f }

// Visibility returns the visibility bits.
func (m ModFlag) Visibility() ModFlag { return m & (ModPublic | ModProtected | ModPrivate) }

// NameKind tells how a name was written.
type NameKind uint8

const (
	NameUnqualified NameKind = iota
	NameQualified
	NameFullyQualified // \Foo\Bar
	NameRelative       // namespace\Foo
)

// Name is a (possibly qualified) name. As an expression it is a constant
// fetch (true, PHP_EOL, __DIR__, ...).
type Name struct {
	Base
	Kind  NameKind
	Parts []string
}

func (*Name) exprNode() {}

// String renders the name the way it was written, minus whitespace.
func (n *Name) String() string {
	s := strings.Join(n.Parts, `\`)
	switch n.Kind {
	case NameFullyQualified:
		return `\` + s
	case NameRelative:
		return `namespace\` + s
	}
	return s
}

// Last returns the final segment.
func (n *Name) Last() string {
	if len(n.Parts) == 0 {
		return ""
	}
	return n.Parts[len(n.Parts)-1]
}

// Ident is a bare identifier: member names, labels, parameter names of named arguments.
type Ident struct {
	Base
	Name string
}

func (*Ident) exprNode() {}
