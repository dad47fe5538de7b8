package transform

import "github.com/nadavrot/bistra/ir"

// Vectorize widens loop to operate vf elements at a time: its stride becomes
// vf, and every StoreStmt in its immediate body whose last index is exactly
// loop's own counter — the unit-stride, directly-indexed case a SIMD unit
// can address as one contiguous access — has its value expression widened
// to a vf-wide vector (scalar sub-expressions not already touching loop's
// counter are lifted with BroadcastExpr). Anything else in the body (a
// nested loop, a call, a store not keyed on loop) makes the whole attempt
// fail, since partially vectorizing a body is not sound without further
// analysis this pass does not do. Grounded in original_source's
// include/bistra/Transforms/Transforms.h vectorize signature and spec
// section 8's memcpy scenario.
func Vectorize(loop *ir.Loop, vf uint32) bool {
	if vf < 2 {
		return skip("vector factor must be >= 2")
	}
	if loop.Stride != 1 {
		return skip("only a unit-stride loop can be vectorized")
	}
	if loop.TripCount()%uint64(vf) != 0 {
		return skip("vector factor does not evenly divide the loop's trip count")
	}
	for _, st := range loop.Statements() {
		store, ok := st.(*ir.StoreStmt)
		if !ok || !lastIndexIsLoop(store.Indices, loop) {
			return skip("loop body contains a statement that cannot be vectorized")
		}
	}
	for _, st := range loop.Statements() {
		store := st.(*ir.StoreStmt)
		widenExpr(&store.Value, loop, vf)
	}
	loop.Stride = uint64(vf)
	return ok()
}

// lastIndexIsLoop reports whether indices' final entry is exactly loop's
// IndexExpr, the shape vectorize and widen require for the dimension they
// widen.
func lastIndexIsLoop(indices []ir.ExprHandle, loop *ir.Loop) bool {
	if len(indices) == 0 {
		return false
	}
	ix, ok := indices[len(indices)-1].Get().(*ir.IndexExpr)
	return ok && ix.Loop == loop
}

// widenExpr raises the vector width of any LoadExpr keyed on loop's last
// index to width, then re-derives BinaryExpr/UnaryExpr result types
// bottom-up, inserting a BroadcastExpr wherever a scalar operand must
// combine with a now-vector one.
func widenExpr(h *ir.ExprHandle, loop *ir.Loop, width uint32) {
	switch n := h.Get().(type) {
	case *ir.LoadExpr:
		if lastIndexIsLoop(n.Indices, loop) {
			n.ValueType.Width = width
		}
	case *ir.BinaryExpr:
		widenExpr(&n.LHS, loop, width)
		widenExpr(&n.RHS, loop, width)
		lt, rt := n.LHS.Get().Type(), n.RHS.Get().Type()
		if lt.Width != rt.Width {
			if lt.Width == 1 {
				n.LHS.Set(ir.NewBroadcast(n.LHS.Get(), width))
			} else if rt.Width == 1 {
				n.RHS.Set(ir.NewBroadcast(n.RHS.Get(), width))
			}
		}
		n.RType = n.LHS.Get().Type()
	case *ir.UnaryExpr:
		widenExpr(&n.Val, loop, width)
	case *ir.BroadcastExpr:
		widenExpr(&n.Val, loop, width)
	}
}
