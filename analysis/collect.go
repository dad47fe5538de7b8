package analysis

import (
	"github.com/nadavrot/bistra/ir"
	"github.com/nadavrot/bistra/types"
	"github.com/samber/lo"
)

// collector is a generic accumulating visitor: each hook appends to a slice
// when the embedded predicate (if any) holds. Grounded in original_source's
// lib/Program/Utils.cpp LocalsCollector/LoadStoreCollector/IndexCollector/
// LoopCollector family, which all share this same enter-and-append shape.
type collector struct {
	ir.BaseVisitor
	loads   []*ir.LoadExpr
	stores  []*ir.StoreStmt
	indices []*ir.IndexExpr
	loops   []*ir.Loop
}

func (c *collector) EnterStmt(s ir.Stmt) {
	if l, ok := s.(*ir.Loop); ok {
		c.loops = append(c.loops, l)
	}
	if st, ok := s.(*ir.StoreStmt); ok {
		c.stores = append(c.stores, st)
	}
}

func (c *collector) EnterExpr(e ir.Expr) {
	switch n := e.(type) {
	case *ir.LoadExpr:
		c.loads = append(c.loads, n)
	case *ir.IndexExpr:
		c.indices = append(c.indices, n)
	}
}

// CollectLoads returns every LoadExpr in s's subtree, in traversal order.
func CollectLoads(s ir.Stmt) []*ir.LoadExpr {
	c := &collector{}
	ir.WalkStmt(s, c)
	return c.loads
}

// CollectStores returns every StoreStmt in s's subtree, in traversal order.
func CollectStores(s ir.Stmt) []*ir.StoreStmt {
	c := &collector{}
	ir.WalkStmt(s, c)
	return c.stores
}

// CollectIndices returns every IndexExpr in s's subtree, in traversal order.
func CollectIndices(s ir.Stmt) []*ir.IndexExpr {
	c := &collector{}
	ir.WalkStmt(s, c)
	return c.indices
}

// CollectLoops returns every Loop in s's subtree, in traversal order.
func CollectLoops(s ir.Stmt) []*ir.Loop {
	c := &collector{}
	ir.WalkStmt(s, c)
	return c.loops
}

// LoopsReferencing filters a collected loop list down to those whose index
// name matches name — a thin convenience wrapper around lo.Filter.
func LoopsReferencing(loops []*ir.Loop, name string) []*ir.Loop {
	return lo.Filter(loops, func(l *ir.Loop, _ int) bool { return l.IndexName == name })
}

// DependsOnLoop reports whether e's subtree contains an IndexExpr that
// references loop, directly or nested inside arithmetic. Grounded in
// original_source's lib/Program/Utils.cpp dependsOnLoop.
func DependsOnLoop(e ir.Expr, loop *ir.Loop) bool {
	found := false
	v := &dependsVisitor{loop: loop, found: &found}
	ir.WalkExpr(e, v)
	return found
}

type dependsVisitor struct {
	ir.BaseVisitor
	loop  *ir.Loop
	found *bool
}

func (v *dependsVisitor) EnterExpr(e ir.Expr) {
	if ix, ok := e.(*ir.IndexExpr); ok && ix.Loop == v.loop {
		*v.found = true
	}
}

// AreLoadsStoresDisjoint reports whether none of stores' destinations is
// also read by one of loads — a coarse, argument-identity-only check (it
// does not reason about indices). Grounded in original_source's
// lib/Program/Utils.cpp areLoadsStoresDisjoint, used by Distribute to
// decide whether a loop body may be safely broken in two without
// reordering a read-after-write.
func AreLoadsStoresDisjoint(loads []*ir.LoadExpr, stores []*ir.StoreStmt) bool {
	written := lo.SliceToMap(stores, func(s *ir.StoreStmt) (*types.Argument, struct{}) {
		return s.Dest, struct{}{}
	})
	for _, l := range loads {
		if _, hit := written[l.Src]; hit {
			return false
		}
	}
	return true
}
