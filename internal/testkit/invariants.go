package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"phphint/internal/ast"
	"phphint/internal/diag"
	"phphint/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed file:
// 1) the root span covers the whole file content
// 2) every node span is ordered, points at the file and lies inside the content
// 3) every child starts no earlier than its parent
func CheckSpanInvariants(f *ast.File, sf *source.File) error {
	if f == nil || sf == nil {
		return fmt.Errorf("nil file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span().Start != 0 || f.Span().End != lenContent {
		return fmt.Errorf("file span %v does not cover content of length %d", f.Span(), lenContent)
	}

	var walk func(n ast.Node) error
	walk = func(n ast.Node) error {
		sp := n.Span()
		if sp.Start > sp.End {
			return fmt.Errorf("%T: inverted span %v", n, sp)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("%T: span file mismatch: got=%d want=%d", n, sp.File, sf.ID)
		}
		if sp.End > lenContent {
			return fmt.Errorf("%T: span %v beyond content length %d", n, sp, lenContent)
		}
		var childErr error
		ast.EachChild(n, func(c ast.Node) {
			if childErr != nil {
				return
			}
			if c.Span().Start < sp.Start {
				childErr = fmt.Errorf("%T %v starts before its parent %T %v", c, c.Span(), n, sp)
				return
			}
			childErr = walk(c)
		})
		return childErr
	}
	return walk(f)
}

// CheckFindings verifies that every diagnostic is anchored inside sf and
// carries the default priority.
func CheckFindings(diags []*diag.Diagnostic, sf *source.File) error {
	for _, d := range diags {
		sp := d.Primary
		if sp.File != sf.ID {
			return fmt.Errorf("%s: finding in file %d, want %d", d.Code.ID(), sp.File, sf.ID)
		}
		if sp.Start > sp.End || sp.End > sf.Len() {
			return fmt.Errorf("%s: span %v outside 0..%d", d.Code.ID(), sp, sf.Len())
		}
		if d.Priority != diag.DefaultPriority {
			return fmt.Errorf("%s: priority %d", d.Code.ID(), d.Priority)
		}
		for _, fx := range d.Fixes {
			for _, e := range fx.Edits {
				if e.Span.Start > e.Span.End || e.Span.End > sf.Len() {
					return fmt.Errorf("%s: fix %q edit %v outside 0..%d", d.Code.ID(), fx.Title, e.Span, sf.Len())
				}
			}
		}
	}
	return nil
}
