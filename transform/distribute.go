package transform

import (
	"github.com/nadavrot/bistra/analysis"
	"github.com/nadavrot/bistra/ir"
)

// Distribute splits loop's body at statement index at into two sibling
// loops sharing loop's header, the first keeping statements [0, at) and the
// second [at, end). Distribution is refused if the second half reads
// something the first half writes, since running all of the first half's
// iterations before any of the second's would then change the result.
// Grounded in original_source's include/bistra/Transforms/Transforms.h
// distribute-family declarations (DistributePass in Optimizer.h).
func Distribute(parent ir.Stmt, loop *ir.Loop, at int) bool {
	body := loop.Statements()
	if at <= 0 || at >= len(body) {
		return skip("distribution point must lie strictly within the loop body")
	}
	parentBody := scopeBody(parent)
	if parentBody == nil {
		return skip("parent is not a scope")
	}

	first, second := body[:at], body[at:]

	var firstStores []*ir.StoreStmt
	for _, st := range first {
		firstStores = append(firstStores, analysis.CollectStores(st)...)
	}
	var secondLoads []*ir.LoadExpr
	for _, st := range second {
		secondLoads = append(secondLoads, analysis.CollectLoads(st)...)
	}
	if !analysis.AreLoadsStoresDisjoint(secondLoads, firstStores) {
		return skip("second half reads a value the first half writes; distribution would reorder that dependence")
	}

	loopB := ir.NewLoop(loop.IndexName, loop.End, loop.Stride)
	cc := newCopyCtx()
	cc.loops[loop] = loopB
	for _, st := range second {
		loopB.Append(copyStmt(st, cc))
	}
	loop.ReplaceBody(append([]ir.Stmt(nil), first...))

	out := make([]ir.Stmt, 0, len(parentBody)+1)
	for _, st := range parentBody {
		if st == loop {
			out = append(out, loop, loopB)
		} else {
			out = append(out, st)
		}
	}
	setScopeBody(parent, out)
	return ok()
}
