package transform

import "github.com/nadavrot/bistra/ir"

// Split cuts loop into two sibling loops in parent's body: one covering
// iterations [0, point) of the original trip count, the other the
// remainder. The remainder loop is a fresh IndexName + "_rem" loop; body
// statements referencing loop's counter are rewritten to
// Constant(point*Stride) + IndexExpr(remainder). Useful ahead of vectorize
// or unroll when the trip count does not evenly divide the target factor —
// split off the divisible prefix first. Grounded in original_source's
// include/bistra/Transforms/Transforms.h split signature; the C++
// implementation was not carried over to the filtered excerpt, so the body
// here follows tile's established index-rewrite idiom instead.
func Split(parent ir.Stmt, loop *ir.Loop, point uint64) bool {
	tc := loop.TripCount()
	if point == 0 || point >= tc {
		return skip("split point must be strictly between 0 and the loop's trip count")
	}
	body := scopeBody(parent)
	if body == nil {
		return skip("parent is not a scope")
	}

	cutVal := int64(point) * int64(loop.Stride)
	remCount := tc - point
	rem := ir.NewLoop(loop.IndexName+"_rem", remCount*loop.Stride, loop.Stride)

	cc := newCopyCtx()
	for _, st := range loop.Statements() {
		dup := copyStmt(st, cc)
		rewriteExprHandles(dup, func(e ir.Expr) ir.Expr {
			if ix, ok := e.(*ir.IndexExpr); ok && ix.Loop == loop {
				return ir.NewBinary(ir.Add, ir.NewConstant(cutVal), ir.NewIndex(rem))
			}
			return e
		})
		rem.Append(dup)
	}

	loop.End = uint64(cutVal)

	newBody := make([]ir.Stmt, 0, len(body)+1)
	for _, st := range body {
		if st == loop {
			newBody = append(newBody, loop, rem)
		} else {
			newBody = append(newBody, st)
		}
	}
	setScopeBody(parent, newBody)
	return ok()
}
