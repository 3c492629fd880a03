package rule

import (
	"context"
	"sort"

	"phphint/internal/ast"
	"phphint/internal/model"
	"phphint/internal/source"
)

// Decl is one named declaration considered by FirstWins.
type Decl struct {
	Name string
	Span source.Span // what a finding is anchored to, usually the name
	Node ast.Node
}

// Redecl is a declaration that lost to an earlier one of the same name.
type Redecl struct {
	Decl
	First Decl
}

// FirstWins groups decls by name, keeps the earliest declaration of each
// group and returns every other one, ordered by offset. With fold set, names
// compare the way PHP compares case-insensitive names. Offset ties go to the
// declaration seen first.
func FirstWins(decls []Decl, fold bool) []Redecl {
	key := func(d Decl) string {
		if fold {
			return model.Fold(d.Name)
		}
		return d.Name
	}
	first := make(map[string]int, len(decls))
	for i, d := range decls {
		k := key(d)
		if j, seen := first[k]; !seen || d.Span.Start < decls[j].Span.Start {
			first[k] = i
		}
	}
	var out []Redecl
	for i, d := range decls {
		if j := first[key(d)]; j != i {
			out = append(out, Redecl{Decl: d, First: decls[j]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Span.Start < out[j].Span.Start })
	return out
}

// Ranges is a set of spans.
type Ranges []source.Span

// Encloses reports whether some range fully contains sp.
func (r Ranges) Encloses(sp source.Span) bool {
	for _, c := range r {
		if c.Encloses(sp) {
			return true
		}
	}
	return false
}

// ConditionalRanges collects the bodies of every if, elseif, else and switch
// case under root. Declarations inside them are conditional. A cancelled
// ctx stops the collection early and the partial result must be discarded.
func ConditionalRanges(ctx context.Context, root ast.Node) Ranges {
	var out Ranges
	add := func(s ast.Stmt) {
		if s != nil {
			out = append(out, s.Span())
		}
	}
	ast.Inspect(root, func(n ast.Node) bool {
		if ctx.Err() != nil {
			return false
		}
		switch n := n.(type) {
		case *ast.IfStmt:
			add(n.Body)
		case *ast.ElseIfClause:
			add(n.Body)
		case *ast.ElseClause:
			add(n.Body)
		case *ast.CaseClause:
			if len(n.Body) > 0 {
				out = append(out, n.Body[0].Span().Cover(n.Body[len(n.Body)-1].Span()))
			}
		}
		return true
	})
	return out
}
