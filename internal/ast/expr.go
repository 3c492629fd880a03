package ast

import (
	"phphint/internal/source"
	"phphint/internal/token"
)

// StringKind tells which literal form produced a string.
type StringKind uint8

const (
	StringSingle StringKind = iota
	StringDouble
	StringHeredoc
	StringNowdoc
	StringBacktick
)

type (
	// Variable is "$name". Variable variables ("$$x", "${expr}") keep the
	// inner expression in NameExpr and an empty Name.
	Variable struct {
		Base
		Name     string
		NameExpr Expr
	}

	IntLit struct {
		Base
		Raw string
	}

	FloatLit struct {
		Base
		Raw string
	}

	StringLit struct {
		Base
		Kind StringKind
		Raw  string
	}

	// ArrayLit is "array(...)" or "[...]". Used as an assignment target it is
	// a destructuring pattern.
	ArrayLit struct {
		Base
		Items []*ArrayItem // nil entries are skipped slots: [, $b]
		Short bool
	}

	// ListExpr is "list(...)".
	ListExpr struct {
		Base
		Items []*ArrayItem
	}

	ArrayItem struct {
		Base
		Key    Expr
		Value  Expr
		ByRef  bool
		Spread bool
	}

	ClosureExpr struct {
		Base
		Attrs      []*AttrGroup
		Static     bool
		ByRef      bool
		Params     []*Param
		ParamsSp   source.Span
		Uses       []*ClosureUse
		ReturnType TypeExpr
		Body       *BlockStmt
	}

	ClosureUse struct {
		Base
		Var   *Variable
		ByRef bool
	}

	ArrowFuncExpr struct {
		Base
		Attrs      []*AttrGroup
		Static     bool
		ByRef      bool
		Params     []*Param
		ParamsSp   source.Span
		ReturnType TypeExpr
		Body       Expr
	}

	// CallExpr is "f(...)". Callable marks the first-class "f(...)" form.
	CallExpr struct {
		Base
		Fun      Expr
		Args     []*Arg
		ArgsSp   source.Span
		Callable bool
	}

	Arg struct {
		Base
		Name   *Ident // named argument
		Spread bool
		Value  Expr
	}

	MethodCallExpr struct {
		Base
		Recv     Expr
		Name     Expr // *Ident or a dynamic expression
		Args     []*Arg
		ArgsSp   source.Span
		NullSafe bool
		Callable bool
	}

	StaticCallExpr struct {
		Base
		Class    Expr
		Name     Expr
		Args     []*Arg
		ArgsSp   source.Span
		Callable bool
	}

	PropertyFetchExpr struct {
		Base
		Recv     Expr
		Name     Expr
		NullSafe bool
	}

	StaticPropertyFetchExpr struct {
		Base
		Class Expr
		Prop  *Variable
	}

	ClassConstFetchExpr struct {
		Base
		Class Expr
		Name  *Ident // "class" for Foo::class
	}

	// IndexExpr is "x[i]"; Index is nil for the append form "x[]".
	IndexExpr struct {
		Base
		X     Expr
		Index Expr
	}

	// NewExpr is "new C(...)". Class is a *Name, a dynamic expression or an
	// anonymous *ClassDecl.
	NewExpr struct {
		Base
		Class   Node
		Args    []*Arg
		ArgsSp  source.Span
		HasArgs bool
	}

	CloneExpr struct {
		Base
		X Expr
	}

	BinaryExpr struct {
		Base
		Op   token.Kind
		OpSp source.Span
		X    Expr
		Y    Expr
	}

	// UnaryExpr is one of "!x", "-x", "+x", "~x".
	UnaryExpr struct {
		Base
		Op token.Kind
		X  Expr
	}

	IncDecExpr struct {
		Base
		Op     token.Kind // token.Inc or token.Dec
		Prefix bool
		X      Expr
	}

	AssignExpr struct {
		Base
		Op    token.Kind
		OpSp  source.Span
		Lhs   Expr
		Rhs   Expr
		ByRef bool
	}

	// TernaryExpr is "c ? a : b"; Then is nil for "c ?: b".
	TernaryExpr struct {
		Base
		Cond Expr
		Then Expr
		Else Expr
	}

	CastExpr struct {
		Base
		Type string // normalized: int, bool, float, string, array, object, unset
		X    Expr
	}

	// SilenceExpr is the error control operator "@x".
	SilenceExpr struct {
		Base
		X Expr
	}

	InstanceofExpr struct {
		Base
		X     Expr
		Class Expr
	}

	IssetExpr struct {
		Base
		Vars []Expr
	}

	EmptyExpr struct {
		Base
		X Expr
	}

	ExitExpr struct {
		Base
		X Expr
	}

	PrintExpr struct {
		Base
		X Expr
	}

	IncludeExpr struct {
		Base
		Kind token.Kind // KwInclude, KwIncludeOnce, KwRequire, KwRequireOnce
		X    Expr
	}

	YieldExpr struct {
		Base
		Key   Expr
		Value Expr
	}

	YieldFromExpr struct {
		Base
		X Expr
	}

	// ThrowExpr is throw used as an expression.
	ThrowExpr struct {
		Base
		X Expr
	}

	MatchExpr struct {
		Base
		Cond Expr
		Arms []*MatchArm
	}

	// MatchArm has nil Conds for the default arm.
	MatchArm struct {
		Base
		Conds []Expr
		Body  Expr
	}

	ParenExpr struct {
		Base
		X Expr
	}

	BadExpr struct {
		Base
	}
)

func (*Variable) exprNode()                {}
func (*IntLit) exprNode()                  {}
func (*FloatLit) exprNode()                {}
func (*StringLit) exprNode()               {}
func (*ArrayLit) exprNode()                {}
func (*ListExpr) exprNode()                {}
func (*ClosureExpr) exprNode()             {}
func (*ArrowFuncExpr) exprNode()           {}
func (*CallExpr) exprNode()                {}
func (*MethodCallExpr) exprNode()          {}
func (*StaticCallExpr) exprNode()          {}
func (*PropertyFetchExpr) exprNode()       {}
func (*StaticPropertyFetchExpr) exprNode() {}
func (*ClassConstFetchExpr) exprNode()     {}
func (*IndexExpr) exprNode()               {}
func (*NewExpr) exprNode()                 {}
func (*CloneExpr) exprNode()               {}
func (*BinaryExpr) exprNode()              {}
func (*UnaryExpr) exprNode()               {}
func (*IncDecExpr) exprNode()              {}
func (*AssignExpr) exprNode()              {}
func (*TernaryExpr) exprNode()             {}
func (*CastExpr) exprNode()                {}
func (*SilenceExpr) exprNode()             {}
func (*InstanceofExpr) exprNode()          {}
func (*IssetExpr) exprNode()               {}
func (*EmptyExpr) exprNode()               {}
func (*ExitExpr) exprNode()                {}
func (*PrintExpr) exprNode()               {}
func (*IncludeExpr) exprNode()             {}
func (*YieldExpr) exprNode()               {}
func (*YieldFromExpr) exprNode()           {}
func (*ThrowExpr) exprNode()               {}
func (*MatchExpr) exprNode()               {}
func (*ParenExpr) exprNode()               {}
func (*BadExpr) exprNode()                 {}

// Unparen strips any number of enclosing parentheses.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}
