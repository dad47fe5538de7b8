package transform

import "github.com/nadavrot/bistra/ir"

// Widen processes factor vector registers of loop per iteration instead of
// one, mechanically identical to Unroll (replicate the body, offset each
// replica's counter reference, multiply the stride). Its only precondition
// is that factor evenly divides loop's trip count — the same precondition
// Unroll has, and the one original_source/tests/unittests/basic_test.cpp's
// widen_loop test exercises directly on a fresh, still-scalar loop. Widen is
// typically applied to a loop Vectorize has already widened (letting an
// emitter interleave several SIMD operations to hide their latency), but
// nothing about the transform itself requires that ordering. Grounded in
// original_source's include/bistra/Transforms/Transforms.h widen signature
// (the header spells the pass "Widner" — corrected here to "Widener", see
// design notes).
func Widen(loop *ir.Loop, factor uint64) bool {
	if factor < 2 {
		return skip("widen factor must be >= 2")
	}
	if loop.TripCount()%factor != 0 {
		return skip("widen factor does not evenly divide the loop's trip count")
	}

	oldStride := loop.Stride
	oldBody := append([]ir.Stmt(nil), loop.Statements()...)
	newBody := make([]ir.Stmt, 0, uint64(len(oldBody))*factor)

	for k := uint64(0); k < factor; k++ {
		offset := int64(k) * int64(oldStride)
		cc := newCopyCtx()
		for _, st := range oldBody {
			dup := copyStmt(st, cc)
			if offset != 0 {
				rewriteExprHandles(dup, func(e ir.Expr) ir.Expr {
					if ix, ok := e.(*ir.IndexExpr); ok && ix.Loop == loop {
						return ir.NewBinary(ir.Add, ir.NewIndex(loop), ir.NewConstant(offset))
					}
					return e
				})
			}
			newBody = append(newBody, dup)
		}
	}

	loop.Stride = oldStride * factor
	loop.ReplaceBody(newBody)
	return ok()
}
