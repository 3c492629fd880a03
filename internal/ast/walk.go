package ast

import "fmt"

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children
// of node with the visitor w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	EachChild(node, func(child Node) { Walk(v, child) })
	v.Visit(nil)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect calls f for every node; a false result prunes the subtree.
// f is also called with nil after the children of a node.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

// WalkBounded is Walk restricted to nodes starting before limit. A node that
// starts before limit is visited together with its qualifying children even
// when it ends past limit.
func WalkBounded(v Visitor, node Node, limit uint32) {
	if node.Span().Start >= limit {
		return
	}
	if v = v.Visit(node); v == nil {
		return
	}
	EachChild(node, func(child Node) { WalkBounded(v, child, limit) })
	v.Visit(nil)
}

// EachChild calls fn for the direct children of n in source order.
func EachChild(n Node, fn func(Node)) {
	expr := func(e Expr) {
		if e != nil {
			fn(e)
		}
	}
	exprs := func(list []Expr) {
		for _, e := range list {
			expr(e)
		}
	}
	stmt := func(s Stmt) {
		if s != nil {
			fn(s)
		}
	}
	stmts := func(list []Stmt) {
		for _, s := range list {
			stmt(s)
		}
	}
	typ := func(t TypeExpr) {
		if t != nil {
			fn(t)
		}
	}
	ident := func(id *Ident) {
		if id != nil {
			fn(id)
		}
	}
	block := func(b *BlockStmt) {
		if b != nil {
			fn(b)
		}
	}
	attrs := func(list []*AttrGroup) {
		for _, a := range list {
			fn(a)
		}
	}
	params := func(list []*Param) {
		for _, p := range list {
			fn(p)
		}
	}
	args := func(list []*Arg) {
		for _, a := range list {
			fn(a)
		}
	}
	names := func(list []*Name) {
		for _, nm := range list {
			fn(nm)
		}
	}
	variable := func(v *Variable) {
		if v != nil {
			fn(v)
		}
	}
	name := func(nm *Name) {
		if nm != nil {
			fn(nm)
		}
	}
	items := func(list []*ArrayItem) {
		for _, it := range list {
			if it != nil {
				fn(it)
			}
		}
	}

	switch n := n.(type) {
	case *File:
		stmts(n.Stmts)

	// leaves
	case *Name, *Ident, *IntLit, *FloatLit, *StringLit, *InlineHTMLStmt, *EmptyStmt,
		*BadStmt, *BadExpr:

	// statements
	case *EchoStmt:
		exprs(n.Exprs)
	case *ExprStmt:
		expr(n.X)
	case *ReturnStmt:
		expr(n.Result)
	case *BlockStmt:
		stmts(n.Stmts)
	case *IfStmt:
		expr(n.Cond)
		stmt(n.Body)
		for _, c := range n.ElseIfs {
			fn(c)
		}
		if n.Else != nil {
			fn(n.Else)
		}
	case *ElseIfClause:
		expr(n.Cond)
		stmt(n.Body)
	case *ElseClause:
		stmt(n.Body)
	case *WhileStmt:
		expr(n.Cond)
		stmt(n.Body)
	case *DoWhileStmt:
		stmt(n.Body)
		expr(n.Cond)
	case *ForStmt:
		exprs(n.Init)
		exprs(n.Cond)
		exprs(n.Loop)
		stmt(n.Body)
	case *ForeachStmt:
		expr(n.X)
		expr(n.Key)
		expr(n.Value)
		stmt(n.Body)
	case *SwitchStmt:
		expr(n.Tag)
		for _, c := range n.Cases {
			fn(c)
		}
	case *CaseClause:
		expr(n.Cond)
		stmts(n.Body)
	case *BreakStmt:
		expr(n.Level)
	case *ContinueStmt:
		expr(n.Level)
	case *TryStmt:
		block(n.Body)
		for _, c := range n.Catches {
			fn(c)
		}
		block(n.Finally)
	case *CatchClause:
		names(n.Types)
		variable(n.Var)
		block(n.Body)
	case *ThrowStmt:
		expr(n.X)
	case *GlobalStmt:
		exprs(n.Vars)
	case *StaticVarStmt:
		for _, v := range n.Vars {
			fn(v)
		}
	case *StaticVar:
		variable(n.Var)
		expr(n.Default)
	case *UnsetStmt:
		exprs(n.Vars)
	case *DeclareStmt:
		for _, d := range n.Directives {
			fn(d)
		}
		stmt(n.Body)
	case *DeclareDirective:
		ident(n.Name)
		expr(n.Value)
	case *LabelStmt:
		ident(n.Name)
	case *GotoStmt:
		ident(n.Label)
	case *NamespaceStmt:
		name(n.Name)
		stmts(n.Stmts)
	case *UseStmt:
		name(n.Prefix)
		for _, u := range n.Uses {
			fn(u)
		}
	case *UseClause:
		name(n.Name)
		ident(n.Alias)
	case *ConstStmt:
		for _, c := range n.Consts {
			fn(c)
		}
	case *ConstSpec:
		ident(n.Name)
		expr(n.Value)

	// declarations
	case *FuncDecl:
		attrs(n.Attrs)
		ident(n.Name)
		params(n.Params)
		typ(n.ReturnType)
		block(n.Body)
	case *ClassDecl:
		attrs(n.Attrs)
		args(n.Args)
		ident(n.Name)
		names(n.Extends)
		names(n.Implements)
		typ(n.BackingType)
		for _, m := range n.Members {
			fn(m)
		}
	case *ClassConstDecl:
		attrs(n.Attrs)
		typ(n.Type)
		for _, c := range n.Consts {
			fn(c)
		}
	case *PropertyDecl:
		attrs(n.Attrs)
		typ(n.Type)
		for _, p := range n.Props {
			fn(p)
		}
	case *PropertySpec:
		variable(n.Var)
		expr(n.Default)
	case *MethodDecl:
		attrs(n.Attrs)
		ident(n.Name)
		params(n.Params)
		typ(n.ReturnType)
		block(n.Body)
	case *TraitUseDecl:
		names(n.Traits)
	case *EnumCaseDecl:
		attrs(n.Attrs)
		ident(n.Name)
		expr(n.Value)
	case *Param:
		attrs(n.Attrs)
		typ(n.Type)
		variable(n.Var)
		expr(n.Default)
	case *AttrGroup:
		for _, a := range n.Attrs {
			fn(a)
		}
	case *Attribute:
		name(n.Name)
		args(n.Args)

	// types
	case *NamedType:
		name(n.Name)
	case *NullableType:
		typ(n.Elem)
	case *UnionType:
		for _, t := range n.Types {
			typ(t)
		}
	case *IntersectionType:
		for _, t := range n.Types {
			typ(t)
		}

	// expressions
	case *Variable:
		expr(n.NameExpr)
	case *ArrayLit:
		items(n.Items)
	case *ListExpr:
		items(n.Items)
	case *ArrayItem:
		expr(n.Key)
		expr(n.Value)
	case *ClosureExpr:
		attrs(n.Attrs)
		params(n.Params)
		for _, u := range n.Uses {
			fn(u)
		}
		typ(n.ReturnType)
		block(n.Body)
	case *ClosureUse:
		variable(n.Var)
	case *ArrowFuncExpr:
		attrs(n.Attrs)
		params(n.Params)
		typ(n.ReturnType)
		expr(n.Body)
	case *CallExpr:
		expr(n.Fun)
		args(n.Args)
	case *Arg:
		ident(n.Name)
		expr(n.Value)
	case *MethodCallExpr:
		expr(n.Recv)
		expr(n.Name)
		args(n.Args)
	case *StaticCallExpr:
		expr(n.Class)
		expr(n.Name)
		args(n.Args)
	case *PropertyFetchExpr:
		expr(n.Recv)
		expr(n.Name)
	case *StaticPropertyFetchExpr:
		expr(n.Class)
		variable(n.Prop)
	case *ClassConstFetchExpr:
		expr(n.Class)
		ident(n.Name)
	case *IndexExpr:
		expr(n.X)
		expr(n.Index)
	case *NewExpr:
		if n.Class != nil {
			fn(n.Class)
		}
		args(n.Args)
	case *CloneExpr:
		expr(n.X)
	case *BinaryExpr:
		expr(n.X)
		expr(n.Y)
	case *UnaryExpr:
		expr(n.X)
	case *IncDecExpr:
		expr(n.X)
	case *AssignExpr:
		expr(n.Lhs)
		expr(n.Rhs)
	case *TernaryExpr:
		expr(n.Cond)
		expr(n.Then)
		expr(n.Else)
	case *CastExpr:
		expr(n.X)
	case *SilenceExpr:
		expr(n.X)
	case *InstanceofExpr:
		expr(n.X)
		expr(n.Class)
	case *IssetExpr:
		exprs(n.Vars)
	case *EmptyExpr:
		expr(n.X)
	case *ExitExpr:
		expr(n.X)
	case *PrintExpr:
		expr(n.X)
	case *IncludeExpr:
		expr(n.X)
	case *YieldExpr:
		expr(n.Key)
		expr(n.Value)
	case *YieldFromExpr:
		expr(n.X)
	case *ThrowExpr:
		expr(n.X)
	case *MatchExpr:
		expr(n.Cond)
		for _, a := range n.Arms {
			fn(a)
		}
	case *MatchArm:
		exprs(n.Conds)
		expr(n.Body)
	case *ParenExpr:
		expr(n.X)

	default:
		panic(fmt.Sprintf("ast.EachChild: unexpected node type %T", n))
	}
}
