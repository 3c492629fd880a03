package rules

import (
	"context"
	"fmt"
	"strings"

	"phphint/internal/ast"
	"phphint/internal/diag"
	"phphint/internal/model"
	"phphint/internal/phpver"
	"phphint/internal/rule"
	"phphint/internal/source"
	"phphint/internal/token"
)

// LanguageLevelRule reports syntax that needs a newer PHP than the file
// targets. There is one rule per version boundary, so a project can silence
// a boundary without losing the others.
type LanguageLevelRule struct {
	since  phpver.Version
	code   diag.Code
	nodes  func(v *levelVisitor, n ast.Node)
	tokens func(v *levelVisitor)
}

// LanguageLevel returns the rules of every version boundary, oldest first.
func LanguageLevel() []rule.Rule {
	return []rule.Rule{
		&LanguageLevelRule{since: phpver.PHP53, code: diag.ErrPHP53Syntax, nodes: php53},
		&LanguageLevelRule{since: phpver.PHP54, code: diag.ErrPHP54Syntax, nodes: php54, tokens: php54Tokens},
		&LanguageLevelRule{since: phpver.PHP55, code: diag.ErrPHP55Syntax, nodes: php55},
		&LanguageLevelRule{since: phpver.PHP56, code: diag.ErrPHP56Syntax, nodes: php56},
		&LanguageLevelRule{since: phpver.PHP70, code: diag.ErrPHP70Syntax, nodes: php70, tokens: php70Tokens},
		&LanguageLevelRule{since: phpver.PHP71, code: diag.ErrPHP71Syntax, nodes: php71},
		&LanguageLevelRule{since: phpver.PHP72, code: diag.ErrPHP72Syntax, nodes: php72},
		&LanguageLevelRule{since: phpver.PHP73, code: diag.ErrPHP73Syntax, nodes: php73},
		&LanguageLevelRule{since: phpver.PHP74, code: diag.ErrPHP74Syntax, nodes: php74, tokens: php74Tokens},
		&LanguageLevelRule{since: phpver.PHP80, code: diag.ErrPHP80Syntax, nodes: php80},
		&LanguageLevelRule{since: phpver.PHP81, code: diag.ErrPHP81Syntax, nodes: php81, tokens: php81Tokens},
	}
}

// Since returns the first version accepting every construct the rule reports.
func (r *LanguageLevelRule) Since() phpver.Version { return r.since }

func (r *LanguageLevelRule) Meta() rule.Meta {
	return errorMeta(r.code, fmt.Sprintf("Reports syntax introduced in PHP %s when the file targets an older version.", r.since))
}

func (r *LanguageLevelRule) Invoke(ctx context.Context, rc *rule.Context, sink diag.Reporter) {
	if !start(ctx, rc) || rc.Version >= r.since {
		return
	}
	v := &levelVisitor{ctx: ctx, rc: rc, out: newPending(), rule: r}
	ast.Walk(v, rc.Program)
	if r.tokens != nil && ctx.Err() == nil {
		r.tokens(v)
	}
	v.out.flush(ctx, sink)
}

type levelVisitor struct {
	ctx  context.Context
	rc   *rule.Context
	out  *pending
	rule *LanguageLevelRule
}

func (v *levelVisitor) Visit(n ast.Node) ast.Visitor {
	if n == nil || v.ctx.Err() != nil {
		return nil
	}
	v.rule.nodes(v, n)
	return v
}

func (v *levelVisitor) report(sp source.Span, what string) {
	diag.ReportError(v.out.reporter(), v.rule.code, sp,
		fmt.Sprintf("%s requires PHP %s or newer, the file targets PHP %s", what, v.rule.since, v.rc.Version)).Emit()
}

// keyword returns the first token of n, which for most statements is the
// keyword introducing it.
func (v *levelVisitor) keyword(n ast.Node) source.Span {
	it := v.rc.Tokens.Move(n.Span().Start)
	if !it.Valid() {
		return n.Span()
	}
	return it.Token().Span
}

// tokenBefore returns the last token ending at or before off.
func (v *levelVisitor) tokenBefore(off uint32) (token.Token, bool) {
	i := v.rc.Tokens.Before(off)
	if i < 0 {
		return token.Token{}, false
	}
	return v.rc.Tokens.At(i), true
}

// trailingComma finds a comma right before the closer ending at end.
func (v *levelVisitor) trailingComma(end uint32, closer token.Kind) (source.Span, bool) {
	if end == 0 {
		return source.Span{}, false
	}
	it := v.rc.Tokens.Move(end - 1)
	if !it.Is(closer) || !it.Prev() || !it.Is(token.Comma) {
		return source.Span{}, false
	}
	return it.Token().Span, true
}

func (v *levelVisitor) eachToken(fn func(token.Token)) {
	for i, t := range v.rc.Tokens.Tokens() {
		if i%256 == 0 && v.ctx.Err() != nil {
			return
		}
		fn(t)
	}
}

// builtinName returns the folded name of an unqualified named type.
func builtinName(t ast.TypeExpr) (string, bool) {
	nt, ok := t.(*ast.NamedType)
	if !ok || nt.Name == nil || nt.Name.Kind != ast.NameUnqualified {
		return "", false
	}
	return model.Fold(nt.Name.Last()), true
}

func returnType(n ast.Node) ast.TypeExpr {
	switch n := n.(type) {
	case *ast.FuncDecl:
		return n.ReturnType
	case *ast.MethodDecl:
		return n.ReturnType
	case *ast.ClosureExpr:
		return n.ReturnType
	case *ast.ArrowFuncExpr:
		return n.ReturnType
	}
	return nil
}

func isClassName(e ast.Node, name string) bool {
	n, ok := e.(*ast.Name)
	return ok && n.Kind == ast.NameUnqualified && model.Fold(n.Last()) == name
}

func callArgs(n ast.Node) ([]*ast.Arg, source.Span, bool) {
	switch n := n.(type) {
	case *ast.CallExpr:
		return n.Args, n.ArgsSp, !n.Callable
	case *ast.MethodCallExpr:
		return n.Args, n.ArgsSp, !n.Callable
	case *ast.StaticCallExpr:
		return n.Args, n.ArgsSp, !n.Callable
	case *ast.NewExpr:
		return n.Args, n.ArgsSp, n.HasArgs
	}
	return nil, source.Span{}, false
}

func params(n ast.Node) ([]*ast.Param, source.Span) {
	switch n := n.(type) {
	case *ast.FuncDecl:
		return n.Params, n.ParamsSp
	case *ast.MethodDecl:
		return n.Params, n.ParamsSp
	case *ast.ClosureExpr:
		return n.Params, n.ParamsSp
	case *ast.ArrowFuncExpr:
		return n.Params, n.ParamsSp
	}
	return nil, source.Span{}
}

func destructuring(e ast.Expr) []*ast.ArrayItem {
	switch e := e.(type) {
	case *ast.ArrayLit:
		return e.Items
	case *ast.ListExpr:
		return e.Items
	}
	return nil
}

func php53(v *levelVisitor, n ast.Node) {
	switch n := n.(type) {
	case *ast.NamespaceStmt:
		v.report(v.keyword(n), "Namespace declaration")
	case *ast.UseStmt:
		v.report(v.keyword(n), "Use declaration")
	case *ast.ClosureExpr:
		v.report(v.keyword(n), "Closure")
	case *ast.TernaryExpr:
		if n.Then == nil {
			v.report(n.Span(), "Short ternary operator ?:")
		}
	case *ast.GotoStmt:
		v.report(v.keyword(n), "goto")
	case *ast.LabelStmt:
		v.report(n.Span(), "goto label")
	case *ast.ConstStmt:
		v.report(v.keyword(n), "const declaration outside a class")
	case *ast.StringLit:
		if n.Kind == ast.StringNowdoc {
			v.report(n.Span(), "Nowdoc string")
		}
	case *ast.StaticCallExpr:
		if isClassName(n.Class, "static") {
			v.report(n.Class.Span(), "Late static binding")
		}
	case *ast.StaticPropertyFetchExpr:
		if isClassName(n.Class, "static") {
			v.report(n.Class.Span(), "Late static binding")
		}
	case *ast.ClassConstFetchExpr:
		if isClassName(n.Class, "static") {
			v.report(n.Class.Span(), "Late static binding")
		}
	case *ast.Name:
		if n.Kind == ast.NameUnqualified {
			switch model.Fold(n.Last()) {
			case "__dir__":
				v.report(n.Span(), "__DIR__")
			case "__namespace__":
				v.report(n.Span(), "__NAMESPACE__")
			}
		}
	}
}

func php54(v *levelVisitor, n ast.Node) {
	switch n := n.(type) {
	case *ast.ClassDecl:
		if n.Kind == ast.KindTrait && n.Name != nil {
			v.report(n.Name.Span(), "Trait")
		}
	case *ast.TraitUseDecl:
		v.report(v.keyword(n), "Trait use")
	case *ast.ArrayLit:
		if n.Short {
			v.report(n.Span(), "Short array syntax")
		}
	case *ast.IndexExpr:
		switch n.X.(type) {
		case *ast.CallExpr, *ast.MethodCallExpr, *ast.StaticCallExpr:
			v.report(n.Span(), "Function array dereferencing")
		}
	case *ast.MethodCallExpr:
		if p, ok := n.Recv.(*ast.ParenExpr); ok {
			if _, isNew := p.X.(*ast.NewExpr); isNew {
				v.report(n.Span(), "Class member access on instantiation")
			}
		}
	case *ast.PropertyFetchExpr:
		if p, ok := n.Recv.(*ast.ParenExpr); ok {
			if _, isNew := p.X.(*ast.NewExpr); isNew {
				v.report(n.Span(), "Class member access on instantiation")
			}
		}
	case *ast.NamedType:
		if name, ok := builtinName(n); ok && name == "callable" {
			v.report(n.Span(), "The callable type")
		}
	}
}

func php54Tokens(v *levelVisitor) {
	v.eachToken(func(t token.Token) {
		if t.Kind == token.IntLit && len(t.Text) > 1 && t.Text[0] == '0' && (t.Text[1] == 'b' || t.Text[1] == 'B') {
			v.report(t.Span, "Binary number literal")
		}
	})
}

func php55(v *levelVisitor, n ast.Node) {
	switch n := n.(type) {
	case *ast.TryStmt:
		if n.Finally != nil {
			sp := n.Finally.Span()
			if t, ok := v.tokenBefore(sp.Start); ok && t.Kind == token.KwFinally {
				sp = t.Span
			}
			v.report(sp, "finally block")
		}
	case *ast.YieldExpr:
		v.report(v.keyword(n), "Generator")
	case *ast.ClassConstFetchExpr:
		if n.Name != nil && model.Fold(n.Name.Name) == "class" {
			v.report(n.Name.Span(), "::class constant")
		}
	case *ast.ForeachStmt:
		if _, ok := n.Value.(*ast.ListExpr); ok {
			v.report(n.Value.Span(), "list() in foreach")
		}
	case *ast.EmptyExpr:
		switch n.X.(type) {
		case *ast.Variable, *ast.IndexExpr, *ast.PropertyFetchExpr, *ast.StaticPropertyFetchExpr:
		default:
			v.report(n.X.Span(), "empty() on an expression")
		}
	case *ast.IndexExpr:
		switch n.X.(type) {
		case *ast.ArrayLit, *ast.StringLit:
			v.report(n.Span(), "Literal dereferencing")
		}
	}
}

func php56(v *levelVisitor, n ast.Node) {
	switch n := n.(type) {
	case *ast.Param:
		if n.Variadic {
			v.report(n.Span(), "Variadic parameter")
		}
	case *ast.Arg:
		if n.Spread {
			v.report(n.Span(), "Argument unpacking")
		}
	case *ast.BinaryExpr:
		if n.Op == token.Pow {
			v.report(n.OpSp, "Exponentiation operator")
		}
	case *ast.AssignExpr:
		if n.Op == token.PowAssign {
			v.report(n.OpSp, "Exponentiation operator")
		}
	case *ast.UseStmt:
		if n.Kind == ast.UseFunction || n.Kind == ast.UseConst {
			v.report(v.keyword(n), fmt.Sprintf("use %s", n.Kind))
			return
		}
		for _, u := range n.Uses {
			if u.Kind == ast.UseFunction || u.Kind == ast.UseConst {
				v.report(u.Span(), fmt.Sprintf("use %s", u.Kind))
			}
		}
	case *ast.ConstSpec:
		switch n.Value.(type) {
		case *ast.BinaryExpr, *ast.TernaryExpr, *ast.UnaryExpr:
			v.report(n.Value.Span(), "Constant scalar expression")
		}
	}
}

func php70(v *levelVisitor, n ast.Node) {
	if rt := returnType(n); rt != nil {
		v.report(rt.Span(), "Return type declaration")
	}
	switch n := n.(type) {
	case *ast.Param:
		t := n.Type
		if nt, ok := t.(*ast.NullableType); ok {
			t = nt.Elem
		}
		if name, ok := builtinName(t); ok {
			switch name {
			case "int", "float", "string", "bool":
				v.report(t.Span(), "Scalar type declaration")
			}
		}
	case *ast.BinaryExpr:
		switch n.Op {
		case token.Coalesce:
			v.report(n.OpSp, "Null coalescing operator")
		case token.Spaceship:
			v.report(n.OpSp, "Spaceship operator")
		}
	case *ast.NewExpr:
		if _, ok := n.Class.(*ast.ClassDecl); ok {
			v.report(n.Span(), "Anonymous class")
		}
	case *ast.UseStmt:
		if n.Group {
			v.report(n.Span(), "Group use declaration")
		}
	case *ast.YieldFromExpr:
		v.report(v.keyword(n), "yield from")
	}
}

func php70Tokens(v *levelVisitor) {
	v.eachToken(func(t token.Token) {
		interpolated := t.Kind == token.StringLit && strings.HasPrefix(t.Text, `"`) ||
			t.Kind == token.Heredoc && !strings.HasPrefix(strings.TrimLeft(t.Text[min(3, len(t.Text)):], " \t"), "'")
		if !interpolated {
			return
		}
		if i := unicodeEscape(t.Text); i >= 0 {
			at := t.Span.Start + uint32(i)
			v.report(v.rc.Span(at, at+3), `Unicode codepoint escape \u{...}`)
		}
	})
}

// unicodeEscape returns the offset of the first unescaped \u{ in s, or -1.
func unicodeEscape(s string) int {
	for i := 0; i+2 < len(s); i++ {
		if s[i] != '\\' {
			continue
		}
		if s[i+1] == 'u' && s[i+2] == '{' {
			return i
		}
		i++
	}
	return -1
}

func php71(v *levelVisitor, n ast.Node) {
	if name, ok := builtinName(returnType(n)); ok && name == "void" {
		v.report(returnType(n).Span(), "The void return type")
	}
	switch n := n.(type) {
	case *ast.NullableType:
		v.report(n.Span(), "Nullable type")
	case *ast.NamedType:
		if name, ok := builtinName(n); ok && name == "iterable" {
			v.report(n.Span(), "The iterable type")
		}
	case *ast.AssignExpr:
		if lhs, ok := n.Lhs.(*ast.ArrayLit); ok && n.Op == token.Assign {
			v.report(lhs.Span(), "Short list syntax")
		}
		keyedList(v, n.Lhs)
	case *ast.ForeachStmt:
		if val, ok := n.Value.(*ast.ArrayLit); ok {
			v.report(val.Span(), "Short list syntax")
		}
		keyedList(v, n.Value)
	case *ast.ClassConstDecl:
		if n.Modifiers.Visibility() != 0 {
			v.report(v.keyword(n), "Class constant visibility")
		}
	case *ast.CatchClause:
		if len(n.Types) > 1 {
			v.report(n.Types[0].Span().Cover(n.Types[len(n.Types)-1].Span()), "Catching multiple exception types")
		}
	}
}

func keyedList(v *levelVisitor, e ast.Expr) {
	for _, it := range destructuring(e) {
		if it != nil && it.Key != nil {
			v.report(it.Key.Span(), "Keys in list()")
			return
		}
	}
}

func php72(v *levelVisitor, n ast.Node) {
	switch n := n.(type) {
	case *ast.NamedType:
		if name, ok := builtinName(n); ok && name == "object" {
			v.report(n.Span(), "The object type")
		}
	case *ast.UseStmt:
		if !n.Group {
			return
		}
		it := v.rc.Tokens.Move(n.Span().End - 1)
		if it.SkipBackwardTo(n.Span().Start, token.RBrace) && it.Prev() && it.Is(token.Comma) {
			v.report(it.Token().Span, "Trailing comma in group use")
		}
	}
}

func php73(v *levelVisitor, n ast.Node) {
	if args, sp, ok := callArgs(n); ok && len(args) > 0 {
		if comma, ok := v.trailingComma(sp.End, token.RParen); ok {
			v.report(comma, "Trailing comma in call arguments")
		}
	}
	switch n := n.(type) {
	case *ast.StringLit:
		if n.Kind == ast.StringHeredoc || n.Kind == ast.StringNowdoc {
			if flexibleHeredoc(v.rc.File, n.Span()) {
				v.report(n.Span(), "Flexible heredoc syntax")
			}
		}
	case *ast.AssignExpr:
		refDestructuring(v, n.Lhs)
	case *ast.ForeachStmt:
		refDestructuring(v, n.Value)
	}
}

func refDestructuring(v *levelVisitor, e ast.Expr) {
	for _, it := range destructuring(e) {
		if it != nil && it.ByRef {
			v.report(it.Span(), "Reference assignment in destructuring")
			return
		}
	}
}

// flexibleHeredoc reports whether the heredoc at sp uses an indented closing
// label, or anything other than ';' or a newline after it.
func flexibleHeredoc(f *source.File, sp source.Span) bool {
	text := string(f.Content[sp.Start:sp.End])
	nl := strings.LastIndexByte(text, '\n')
	if nl < 0 {
		return false
	}
	if last := text[nl+1:]; last != "" && (last[0] == ' ' || last[0] == '\t') {
		return true
	}
	if sp.End >= f.Len() {
		return false
	}
	switch f.Content[sp.End] {
	case ';', '\n', '\r':
		return false
	}
	return true
}

func php74(v *levelVisitor, n ast.Node) {
	switch n := n.(type) {
	case *ast.PropertyDecl:
		if n.Type != nil {
			v.report(n.Type.Span(), "Typed property")
		}
	case *ast.ArrowFuncExpr:
		v.report(v.keyword(n), "Arrow function")
	case *ast.AssignExpr:
		if n.Op == token.CoalesceAssign {
			v.report(n.OpSp, "Null coalescing assignment operator")
		}
	case *ast.ArrayLit:
		for _, it := range n.Items {
			if it != nil && it.Spread {
				v.report(it.Span(), "Spread operator in array expression")
			}
		}
	}
}

func php74Tokens(v *levelVisitor) {
	v.eachToken(func(t token.Token) {
		if (t.Kind == token.IntLit || t.Kind == token.FloatLit) && strings.Contains(t.Text, "_") {
			v.report(t.Span, "Numeric literal separator")
		}
	})
}

func php80(v *levelVisitor, n ast.Node) {
	if rt := returnType(n); rt != nil {
		if name, ok := builtinName(rt); ok && name == "static" {
			v.report(rt.Span(), "The static return type")
		}
	}
	if ps, sp := params(n); len(ps) > 0 {
		if comma, ok := v.trailingComma(sp.End, token.RParen); ok {
			v.report(comma, "Trailing comma in parameter list")
		}
	}
	switch n := n.(type) {
	case *ast.UnionType:
		v.report(n.Span(), "Union type")
	case *ast.NamedType:
		if name, ok := builtinName(n); ok && name == "mixed" {
			v.report(n.Span(), "The mixed type")
		}
	case *ast.MethodCallExpr:
		if n.NullSafe {
			v.report(n.Span(), "Nullsafe operator")
		}
	case *ast.PropertyFetchExpr:
		if n.NullSafe {
			v.report(n.Span(), "Nullsafe operator")
		}
	case *ast.MatchExpr:
		v.report(v.keyword(n), "match expression")
	case *ast.Arg:
		if n.Name != nil {
			v.report(n.Name.Span(), "Named argument")
		}
	case *ast.AttrGroup:
		v.report(n.Span(), "Attribute")
	case *ast.Param:
		if n.Modifiers.Visibility() != 0 {
			v.report(n.Span(), "Constructor property promotion")
		}
	case *ast.ThrowExpr:
		v.report(v.keyword(n), "throw expression")
	case *ast.CatchClause:
		if n.Var == nil {
			v.report(v.keyword(n), "catch without a variable")
		}
	case *ast.ClassConstFetchExpr:
		if n.Name == nil || model.Fold(n.Name.Name) != "class" {
			return
		}
		if _, isName := n.Class.(*ast.Name); !isName {
			v.report(n.Span(), "::class on an object")
		}
	}
}

func php81(v *levelVisitor, n ast.Node) {
	if rt := returnType(n); rt != nil {
		if name, ok := builtinName(rt); ok && name == "never" {
			v.report(rt.Span(), "The never return type")
		}
	}
	if _, sp, ok := callArgs(n); !ok && sp.Len() > 0 {
		if _, isNew := n.(*ast.NewExpr); !isNew {
			v.report(sp, "First-class callable syntax")
		}
	}
	switch n := n.(type) {
	case *ast.ClassDecl:
		if n.Kind == ast.KindEnum && n.Name != nil {
			v.report(n.Name.Span(), "Enumeration")
		}
	case *ast.PropertyDecl:
		if n.Modifiers.Has(ast.ModReadonly) {
			v.report(v.keyword(n), "Readonly property")
		}
	case *ast.Param:
		if n.Modifiers.Has(ast.ModReadonly) {
			v.report(n.Span(), "Readonly property")
		}
		if d, ok := n.Default.(*ast.NewExpr); ok {
			v.report(d.Span(), "new in initializer")
		}
	case *ast.IntersectionType:
		v.report(n.Span(), "Intersection type")
	case *ast.ClassConstDecl:
		if n.Modifiers.Has(ast.ModFinal) {
			v.report(v.keyword(n), "Final class constant")
		}
	}
}

func php81Tokens(v *levelVisitor) {
	v.eachToken(func(t token.Token) {
		if t.Kind == token.IntLit && len(t.Text) > 1 && t.Text[0] == '0' && (t.Text[1] == 'o' || t.Text[1] == 'O') {
			v.report(t.Span, "Explicit octal notation")
		}
	})
}
