package ast

// Path is an immutable list of ancestors, innermost first. Descending into a
// node creates a longer path instead of mutating a shared stack, so returning
// early from any depth leaves sibling paths intact. The nil *Path is the empty
// path of the root.
type Path struct {
	node   Node
	parent *Path
	depth  int
}

// Push returns the path extended by n. p itself is unchanged.
func (p *Path) Push(n Node) *Path {
	return &Path{node: n, parent: p, depth: p.Len() + 1}
}

// Len returns the number of ancestors.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return p.depth
}

// Parent returns the direct parent, or nil at the root.
func (p *Path) Parent() Node {
	if p == nil {
		return nil
	}
	return p.node
}

// Up returns the path without its innermost node.
func (p *Path) Up() *Path {
	if p == nil {
		return nil
	}
	return p.parent
}

// Nodes returns the ancestors outermost first.
func (p *Path) Nodes() []Node {
	out := make([]Node, p.Len())
	for q, i := p, p.Len()-1; q != nil; q, i = q.parent, i-1 {
		out[i] = q.node
	}
	return out
}

// Find walks outwards and returns the first ancestor pred accepts, stopping
// (and returning nil) at the first ancestor stop accepts. stop may be nil.
func (p *Path) Find(pred, stop func(Node) bool) Node {
	for q := p; q != nil; q = q.parent {
		if pred(q.node) {
			return q.node
		}
		if stop != nil && stop(q.node) {
			return nil
		}
	}
	return nil
}

// PathVisitor is Visitor with access to the ancestors of the visited node.
type PathVisitor interface {
	Visit(node Node, path *Path) (w PathVisitor)
}

// WalkPath traverses node like Walk and passes each node its ancestor path.
func WalkPath(v PathVisitor, node Node) {
	walkPath(v, node, nil)
}

func walkPath(v PathVisitor, node Node, path *Path) {
	if v = v.Visit(node, path); v == nil {
		return
	}
	inner := path.Push(node)
	EachChild(node, func(child Node) { walkPath(v, child, inner) })
	v.Visit(nil, path)
}

// IsFunctionBoundary reports nodes that start a new function body.
func IsFunctionBoundary(n Node) bool {
	switch n.(type) {
	case *FuncDecl, *MethodDecl, *ClosureExpr, *ArrowFuncExpr, *ClassDecl:
		return true
	}
	return false
}
