package transform

import (
	"strconv"

	"github.com/nadavrot/bistra/ir"
)

// Tile strip-mines loop into an outer loop iterating in steps of blockSize
// (over loop's original stride) and a new inner loop of trip count
// blockSize, named loop.IndexName + "_tile_" + blockSize. Every reference to
// loop's counter inside the moved body is rewritten to the sum of the two
// new counters, since a single original IndexExpr meant the full
// per-element position. Grounded in original_source's
// lib/Transforms/Transforms.cpp tile(Program*, Loop*, blockSize), adapted to
// this IR's explicit Stride field: the original always assumed stride 1 and
// rebuilt the per-element index via IndexExpr(inner) + IndexExpr(outer) *
// blockSize. Here Stride already encodes that scale factor, so composing the
// two counters is a plain sum.
func Tile(loop *ir.Loop, blockSize uint64) bool {
	if blockSize < 2 {
		return skip("tile block size must be >= 2")
	}
	if loop.TripCount()%blockSize != 0 {
		return skip("tile block size does not evenly divide the loop's trip count")
	}

	oldStride := loop.Stride
	body := append([]ir.Stmt(nil), loop.Statements()...)

	inner := ir.NewLoop(loop.IndexName+"_tile_"+strconv.FormatUint(blockSize, 10), blockSize*oldStride, oldStride)
	for _, st := range body {
		inner.Append(st)
	}

	loop.Stride = oldStride * blockSize
	loop.ReplaceBody([]ir.Stmt{inner})

	for _, st := range inner.Statements() {
		rewriteExprHandles(st, func(e ir.Expr) ir.Expr {
			if ix, ok := e.(*ir.IndexExpr); ok && ix.Loop == loop {
				return ir.NewBinary(ir.Add, ir.NewIndex(loop), ir.NewIndex(inner))
			}
			return e
		})
	}
	return ok()
}
