package ast

import "phphint/internal/source"

// ClassKind distinguishes the class-like declarations.
type ClassKind uint8

const (
	KindClass ClassKind = iota
	KindInterface
	KindTrait
	KindEnum
)

func (k ClassKind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindTrait:
		return "trait"
	case KindEnum:
		return "enum"
	}
	return "class"
}

type (
	// FuncDecl is a named function statement.
	FuncDecl struct {
		Base
		Attrs      []*AttrGroup
		ByRef      bool
		Name       *Ident
		Params     []*Param
		ParamsSp   source.Span // "(" through ")"
		ReturnType TypeExpr
		Body       *BlockStmt
	}

	// ClassDecl is a class, interface, trait or enum. Anonymous classes
	// ("new class(...) {}") have a nil Name and carry their constructor
	// arguments in Args.
	ClassDecl struct {
		Base
		Attrs       []*AttrGroup
		Kind        ClassKind
		Modifiers   ModFlag
		Name        *Ident
		Extends     []*Name // one for classes, many for interfaces
		Implements  []*Name
		BackingType TypeExpr // enums only
		Members     []Member
		BodySp      source.Span // "{" through "}"
		Args        []*Arg
	}

	// ClassConstDecl is "const A = 1, B = 2;" inside a class body.
	ClassConstDecl struct {
		Base
		Attrs     []*AttrGroup
		Modifiers ModFlag
		Type      TypeExpr
		Consts    []*ConstSpec
	}

	PropertyDecl struct {
		Base
		Attrs     []*AttrGroup
		Modifiers ModFlag
		Type      TypeExpr
		Props     []*PropertySpec
	}

	PropertySpec struct {
		Base
		Var     *Variable
		Default Expr
	}

	MethodDecl struct {
		Base
		Attrs      []*AttrGroup
		Modifiers  ModFlag
		ByRef      bool
		Name       *Ident
		Params     []*Param
		ParamsSp   source.Span
		ReturnType TypeExpr
		Body       *BlockStmt // nil for abstract and interface methods
	}

	// TraitUseDecl is "use A, B;" or "use A { ... }" inside a class body.
	// Adaptation rules are kept as raw text.
	TraitUseDecl struct {
		Base
		Traits      []*Name
		Adaptations string
	}

	EnumCaseDecl struct {
		Base
		Attrs []*AttrGroup
		Name  *Ident
		Value Expr
	}

	Param struct {
		Base
		Attrs     []*AttrGroup
		Modifiers ModFlag // constructor promotion
		Type      TypeExpr
		ByRef     bool
		Variadic  bool
		Var       *Variable
		Default   Expr
	}

	// AttrGroup is one "#[...]" group.
	AttrGroup struct {
		Base
		Attrs []*Attribute
	}

	Attribute struct {
		Base
		Name *Name
		Args []*Arg
	}
)

// IsOptional reports whether the parameter has a default value.
func (p *Param) IsOptional() bool { return p.Default != nil }

// IsAbstract reports whether the class is declared abstract.
func (c *ClassDecl) IsAbstract() bool { return c.Modifiers.Has(ModAbstract) }

// IsStatic reports whether the method is static.
func (m *MethodDecl) IsStatic() bool { return m.Modifiers.Has(ModStatic) }

func (*FuncDecl) stmtNode()  {}
func (*ClassDecl) stmtNode() {}

func (*ClassConstDecl) memberNode() {}
func (*PropertyDecl) memberNode()   {}
func (*MethodDecl) memberNode()     {}
func (*TraitUseDecl) memberNode()   {}
func (*EnumCaseDecl) memberNode()   {}

// NamedType is a class name or a builtin type such as int, array, static.
type NamedType struct {
	Base
	Name *Name
}

// NullableType is "?T".
type NullableType struct {
	Base
	Elem TypeExpr
}

// UnionType is "A|B".
type UnionType struct {
	Base
	Types []TypeExpr
}

// IntersectionType is "A&B".
type IntersectionType struct {
	Base
	Types []TypeExpr
}

func (*NamedType) typeNode()        {}
func (*NullableType) typeNode()     {}
func (*UnionType) typeNode()        {}
func (*IntersectionType) typeNode() {}
