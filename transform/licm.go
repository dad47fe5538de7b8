package transform

import (
	"github.com/nadavrot/bistra/analysis"
	"github.com/nadavrot/bistra/ir"
)

// PromoteLICM hoists everything in loop provably invariant in loop's counter
// out to parent, one level up. Two shapes are recognized:
//
//   - A load (or the loop's own leading local-store "reset") whose indices
//     never mention loop's counter reads the same cell every iteration; it
//     is computed once in a pre-header local right before loop instead of on
//     every pass, and every use inside loop is rewritten to read that local.
//   - A store that accumulates (+=) into a cell whose indices never mention
//     loop's counter writes the same destination every iteration; it is
//     rerouted to accumulate into a post-exit local inside loop, and a
//     single store of that local back into the original destination is
//     appended to parent right after loop.
//
// Dependence analysis proves each move legal: a load is only hoisted if no
// other access to its argument could alias it, and a store is only sunk if
// no other load or store of its destination inside loop could observe the
// deferred write. The canonical instance is GEMM's inner `C[i,j] +=
// A[i,k]*B[k,j]`: the k loop's accumulator is initialized before it and
// stored back to C after it. Grounded in original_source's
// include/bistra/Transforms/Transforms.h promoteLICM signature and
// lib/Program/Utils.cpp getZeroExpr/dependsOnLoop.
func PromoteLICM(program *ir.Program, parent ir.Stmt, loop *ir.Loop) bool {
	parentBody := scopeBody(parent)
	if parentBody == nil {
		return skip("parent is not a scope")
	}

	var preHeader, postExit []ir.Stmt
	promoted := false

	// The common reset-then-accumulate idiom: a leading, non-accumulating
	// local store whose value doesn't depend on loop is itself an invariant
	// store and can be hoisted outright (it has no other readers to worry
	// about — LocalVars are scoped to the program, not aliased by index).
	if body := loop.Statements(); len(body) > 0 {
		if sl, isLocal := body[0].(*ir.StoreLocalStmt); isLocal && !sl.Accumulate &&
			!analysis.DependsOnLoop(sl.Value.Get(), loop) {
			loop.ReplaceBody(append([]ir.Stmt(nil), body[1:]...))
			preHeader = append(preHeader, sl)
			promoted = true
		}
	}

	// Legality of either move is decided against every access anywhere in
	// the whole loop (including nested scopes), since an aliasing write or
	// read arbitrarily deep inside still observes a hoisted read or a
	// deferred write.
	allStores := analysis.CollectStores(loop)
	allLoads := analysis.CollectLoads(loop)

	// Candidates are drawn only from loop's own direct statements, not ones
	// buried in a nested Loop or IfRange: such a nested scope's own counter
	// (or conditional range) must keep enclosing whatever it encloses, so
	// nothing beneath it may be hoisted past loop.
	for _, ld := range collectDirectLoads(loop) {
		if indicesDependOnLoop(ld.Indices, loop) {
			continue
		}
		if !loadHoistIsSafe(loop, ld, allStores) {
			continue
		}
		local := program.AddLocal("licm_load", ld.ValueType)
		preHeader = append(preHeader, ir.NewStoreLocal(local, ir.NewLoad(ld.Src, exprsOf(ld.Indices), ld.ValueType), false))
		target := ld
		rewriteExprHandles(loop, func(e ir.Expr) ir.Expr {
			if e == ir.Expr(target) {
				return ir.NewLoadLocal(local)
			}
			return e
		})
		promoted = true
	}

	for _, st := range collectDirectStores(loop) {
		if !st.Accumulate || indicesDependOnLoop(st.Indices, loop) {
			continue
		}
		if !sinkIsSafe(loop, st, allStores, allLoads) {
			continue
		}
		local := program.AddLocal("licm_acc", st.Value.Get().Type())
		preHeader = append(preHeader, ir.NewStoreLocal(local, ir.ZeroExpr(st.Value.Get().Type()), false))
		postExit = append(postExit, ir.NewStore(st.Dest, exprsOf(st.Indices), ir.NewLoadLocal(local), false))
		replaceStmtInPlace(loop, st, ir.NewStoreLocal(local, st.Value.Get(), true))
		promoted = true
	}

	if !promoted {
		return skip("no loop-invariant load or accumulating store found")
	}

	out := make([]ir.Stmt, 0, len(parentBody)+len(preHeader)+len(postExit))
	for _, st := range parentBody {
		if st == loop {
			out = append(out, preHeader...)
			out = append(out, loop)
			out = append(out, postExit...)
		} else {
			out = append(out, st)
		}
	}
	setScopeBody(parent, out)
	return ok()
}

// directChildStmts returns loop's own statement list with any nested Loop or
// IfRange removed, so callers only see the statements loop's counter encloses
// on its own, not ones a further nested scope encloses as well.
func directChildStmts(loop *ir.Loop) []ir.Stmt {
	var out []ir.Stmt
	for _, st := range loop.Statements() {
		switch st.(type) {
		case *ir.Loop, *ir.IfRange:
			continue
		}
		out = append(out, st)
	}
	return out
}

// collectDirectLoads returns every LoadExpr reachable from loop's own direct
// statements only.
func collectDirectLoads(loop *ir.Loop) []*ir.LoadExpr {
	var out []*ir.LoadExpr
	for _, st := range directChildStmts(loop) {
		out = append(out, analysis.CollectLoads(st)...)
	}
	return out
}

// collectDirectStores returns every StoreStmt among loop's own direct
// statements only.
func collectDirectStores(loop *ir.Loop) []*ir.StoreStmt {
	var out []*ir.StoreStmt
	for _, st := range directChildStmts(loop) {
		out = append(out, analysis.CollectStores(st)...)
	}
	return out
}

// indicesDependOnLoop reports whether any of indices mentions loop's
// counter.
func indicesDependOnLoop(indices []ir.ExprHandle, loop *ir.Loop) bool {
	for _, h := range indices {
		if analysis.DependsOnLoop(h.Get(), loop) {
			return true
		}
	}
	return false
}

// exprsOf unwraps a handle slice to the bare expressions it holds. Safe to
// reuse the returned expressions as children of a brand-new node: ExprHandle
// re-parents on Set, so the original owner (about to be discarded) releases
// them automatically.
func exprsOf(indices []ir.ExprHandle) []ir.Expr {
	out := make([]ir.Expr, len(indices))
	for i, h := range indices {
		out[i] = h.Get()
	}
	return out
}

// loadHoistIsSafe reports whether ld, an invariant load, reads a cell no
// store anywhere in loop could also write: if one did, the cell's contents
// could change across iterations even though ld's own indices don't, and a
// single pre-header read would freeze it to whatever the first iteration saw.
func loadHoistIsSafe(loop *ir.Loop, ld *ir.LoadExpr, stores []*ir.StoreStmt) bool {
	for _, st := range stores {
		if st.Dest != ld.Src {
			continue
		}
		if analysis.DependsLoadStore(loop, st, ld) != analysis.NoDep {
			return false
		}
	}
	return true
}

// sinkIsSafe reports whether st, an invariant accumulating store, may be
// deferred to a post-exit write without changing the loop's observable
// behavior: no other access to st's destination inside loop may alias it.
func sinkIsSafe(loop *ir.Loop, st *ir.StoreStmt, stores []*ir.StoreStmt, loads []*ir.LoadExpr) bool {
	for _, other := range stores {
		if other == st || other.Dest != st.Dest {
			continue
		}
		if analysis.DependsStoreStore(loop, st, other) != analysis.NoDep {
			return false
		}
	}
	for _, ld := range loads {
		if ld.Src != st.Dest {
			continue
		}
		if analysis.DependsLoadStore(loop, st, ld) != analysis.NoDep {
			return false
		}
	}
	return true
}

// replaceStmtInPlace finds target by identity among root's transitive
// children and overwrites it with replacement, in whichever scope directly
// contains it. Reports whether target was found.
func replaceStmtInPlace(root ir.Stmt, target, replacement ir.Stmt) bool {
	body := scopeBody(root)
	if body == nil {
		return false
	}
	for i, st := range body {
		if st == target {
			next := append([]ir.Stmt(nil), body...)
			next[i] = replacement
			setScopeBody(root, next)
			return true
		}
	}
	for _, st := range body {
		if replaceStmtInPlace(st, target, replacement) {
			return true
		}
	}
	return false
}
