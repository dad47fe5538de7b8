package transform

import "github.com/nadavrot/bistra/ir"

// Unroll replicates loop's body factor times inside the loop itself,
// reducing its trip count by that factor and widening its stride to match.
// The k-th replica's reference to the loop's own counter is offset by
// k*oldStride, since the loop now advances oldStride*factor per iteration.
// Grounded in original_source's include/bistra/Transforms/Transforms.h
// unrollLoop signature.
func Unroll(loop *ir.Loop, factor uint64) bool {
	if factor < 2 {
		return skip("unroll factor must be >= 2")
	}
	tc := loop.TripCount()
	if tc%factor != 0 {
		return skip("unroll factor does not evenly divide the loop's trip count")
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
