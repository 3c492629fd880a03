package ast

import "phphint/internal/token"

type (
	// InlineHTMLStmt is text outside of PHP tags.
	InlineHTMLStmt struct {
		Base
		Text string
	}

	// EchoStmt is "echo a, b;" or the short "<?= a ?>" form.
	EchoStmt struct {
		Base
		Exprs []Expr
		Short bool
	}

	ExprStmt struct {
		Base
		X Expr
	}

	ReturnStmt struct {
		Base
		Result Expr // nil for a bare return
	}

	// BlockStmt is "{ ... }", or the statement list of an alternative
	// syntax body ("if (...): ... endif;") when Alt is set.
	BlockStmt struct {
		Base
		Stmts []Stmt
		Alt   bool
	}

	// EmptyStmt is a lone ';'.
	EmptyStmt struct {
		Base
	}

	IfStmt struct {
		Base
		Cond    Expr
		Body    Stmt
		ElseIfs []*ElseIfClause
		Else    *ElseClause
		Alt     bool
	}

	// ElseIfClause covers both "elseif" and "else if".
	ElseIfClause struct {
		Base
		Cond Expr
		Body Stmt
	}

	ElseClause struct {
		Base
		Body Stmt
	}

	WhileStmt struct {
		Base
		Cond Expr
		Body Stmt
		Alt  bool
	}

	DoWhileStmt struct {
		Base
		Body Stmt
		Cond Expr
	}

	ForStmt struct {
		Base
		Init []Expr
		Cond []Expr
		Loop []Expr
		Body Stmt
		Alt  bool
	}

	ForeachStmt struct {
		Base
		X     Expr
		Key   Expr // may be nil
		Value Expr // Variable, ListExpr, ArrayLit
		ByRef bool
		Body  Stmt
		Alt   bool
	}

	SwitchStmt struct {
		Base
		Tag   Expr
		Cases []*CaseClause
		Alt   bool
	}

	// CaseClause is "case X:" or, with a nil Cond, "default:".
	CaseClause struct {
		Base
		Cond Expr
		Body []Stmt
	}

	BreakStmt struct {
		Base
		Level Expr
	}

	ContinueStmt struct {
		Base
		Level Expr
	}

	TryStmt struct {
		Base
		Body    *BlockStmt
		Catches []*CatchClause
		Finally *BlockStmt
	}

	CatchClause struct {
		Base
		Types []*Name
		Var   *Variable // nil for "catch (E)" without a variable
		Body  *BlockStmt
	}

	ThrowStmt struct {
		Base
		X Expr
	}

	GlobalStmt struct {
		Base
		Vars []Expr
	}

	StaticVarStmt struct {
		Base
		Vars []*StaticVar
	}

	StaticVar struct {
		Base
		Var     *Variable
		Default Expr
	}

	UnsetStmt struct {
		Base
		Vars []Expr
	}

	DeclareStmt struct {
		Base
		Directives []*DeclareDirective
		Body       Stmt // nil for "declare(strict_types=1);"
	}

	DeclareDirective struct {
		Base
		Name  *Ident
		Value Expr
	}

	LabelStmt struct {
		Base
		Name *Ident
	}

	GotoStmt struct {
		Base
		Label *Ident
	}

	// NamespaceStmt is "namespace X;" (Stmts run to the next namespace) or
	// "namespace X { ... }".
	NamespaceStmt struct {
		Base
		Name   *Name // nil for the global namespace block
		Stmts  []Stmt
		Braced bool
	}

	// UseStmt is an import. Group is set for "use A\{B, C}" and Prefix then
	// holds "A".
	UseStmt struct {
		Base
		Kind   UseKind
		Prefix *Name
		Uses   []*UseClause
		Group  bool
	}

	UseClause struct {
		Base
		Kind  UseKind // per-item kind inside mixed groups
		Name  *Name
		Alias *Ident
	}

	// ConstStmt is a top-level "const A = 1, B = 2;".
	ConstStmt struct {
		Base
		Consts []*ConstSpec
	}

	ConstSpec struct {
		Base
		Name  *Ident
		Value Expr
	}

	BadStmt struct {
		Base
	}
)

// UseKind is the import flavour.
type UseKind uint8

const (
	UseNormal UseKind = iota
	UseFunction
	UseConst
)

func (k UseKind) String() string {
	switch k {
	case UseFunction:
		return "function"
	case UseConst:
		return "const"
	}
	return "class"
}

// LoopKind reports the loop keyword for loop statements.
func LoopKind(s Node) (token.Kind, bool) {
	switch s.(type) {
	case *WhileStmt:
		return token.KwWhile, true
	case *DoWhileStmt:
		return token.KwDo, true
	case *ForStmt:
		return token.KwFor, true
	case *ForeachStmt:
		return token.KwForeach, true
	}
	return token.Invalid, false
}

func (*InlineHTMLStmt) stmtNode() {}
func (*EchoStmt) stmtNode()       {}
func (*ExprStmt) stmtNode()       {}
func (*ReturnStmt) stmtNode()     {}
func (*BlockStmt) stmtNode()      {}
func (*EmptyStmt) stmtNode()      {}
func (*IfStmt) stmtNode()         {}
func (*WhileStmt) stmtNode()      {}
func (*DoWhileStmt) stmtNode()    {}
func (*ForStmt) stmtNode()        {}
func (*ForeachStmt) stmtNode()    {}
func (*SwitchStmt) stmtNode()     {}
func (*BreakStmt) stmtNode()      {}
func (*ContinueStmt) stmtNode()   {}
func (*TryStmt) stmtNode()        {}
func (*ThrowStmt) stmtNode()      {}
func (*GlobalStmt) stmtNode()     {}
func (*StaticVarStmt) stmtNode()  {}
func (*UnsetStmt) stmtNode()      {}
func (*DeclareStmt) stmtNode()    {}
func (*LabelStmt) stmtNode()      {}
func (*GotoStmt) stmtNode()       {}
func (*NamespaceStmt) stmtNode()  {}
func (*UseStmt) stmtNode()        {}
func (*ConstStmt) stmtNode()      {}
func (*BadStmt) stmtNode()        {}
