package analysis

import "github.com/nadavrot/bistra/ir"

// DepRelationKind classifies the dependence between two index expressions
// (or two full accesses) with respect to an enclosing loop.
type DepRelationKind int

const (
	// Equals means the two references always address the same element on
	// every iteration (safe to treat as the identical reference).
	Equals DepRelationKind = iota
	// SomeDep means a dependence may exist; the transform requesting the
	// test must conservatively assume it does.
	SomeDep
	// NoDep means the two references provably never alias.
	NoDep
)

// isDirectIndexOf reports whether e is exactly the IndexExpr of loop (not
// buried inside a larger expression).
func isDirectIndexOf(e ir.Expr, loop *ir.Loop) bool {
	ix, ok := e.(*ir.IndexExpr)
	return ok && ix.Loop == loop
}

// CheckWeakSIVDependenceForIndex classifies the dependence between index
// expressions a and b, both drawn from accesses inside loop, using the
// weak-SIV (single induction variable) test. Grounded in original_source's
// lib/Transforms/Dependence.cpp checkWeakSIVDependenceForIndex.
func CheckWeakSIVDependenceForIndex(loop *ir.Loop, a, b ir.Expr) DepRelationKind {
	// Two references to the same loop counter, unmodified, always address
	// the same position on a given iteration.
	if isDirectIndexOf(a, loop) && isDirectIndexOf(b, loop) {
		return Equals
	}

	ra, aok := ComputeKnownIntegerRange(a)
	rb, bok := ComputeKnownIntegerRange(b)
	if aok && bok && GetRangeRelation(ra, rb) == Disjoint {
		return NoDep
	}

	if DependsOnLoop(a, loop) || DependsOnLoop(b, loop) {
		return SomeDep
	}
	return Equals
}

// depCombine folds per-dimension DepRelationKind results into one overall
// verdict: any NoDep dimension proves the whole access disjoint; otherwise
// SomeDep dominates Equals.
func depCombine(kinds []DepRelationKind) DepRelationKind {
	for _, k := range kinds {
		if k == NoDep {
			return NoDep
		}
	}
	for _, k := range kinds {
		if k == SomeDep {
			return SomeDep
		}
	}
	return Equals
}

// DependsLoadStore classifies whether a load and a store, both indexed
// within loop, may alias. Different arguments can never alias (NoDep).
// Differing index counts between accesses to the same argument (malformed
// IR, or different-rank views) are conservatively SomeDep.
func DependsLoadStore(loop *ir.Loop, store *ir.StoreStmt, load *ir.LoadExpr) DepRelationKind {
	if store.Dest != load.Src {
		return NoDep
	}
	if len(store.Indices) != len(load.Indices) {
		return SomeDep
	}
	kinds := make([]DepRelationKind, len(store.Indices))
	for i := range store.Indices {
		kinds[i] = CheckWeakSIVDependenceForIndex(loop, store.Indices[i].Get(), load.Indices[i].Get())
	}
	return depCombine(kinds)
}

// DependsStoreStore classifies whether two stores, both indexed within
// loop, may alias. Different arguments can never alias (NoDep).
func DependsStoreStore(loop *ir.Loop, a, b *ir.StoreStmt) DepRelationKind {
	if a.Dest != b.Dest {
		return NoDep
	}
	if len(a.Indices) != len(b.Indices) {
		return SomeDep
	}
	kinds := make([]DepRelationKind, len(a.Indices))
	for i := range a.Indices {
		kinds[i] = CheckWeakSIVDependenceForIndex(loop, a.Indices[i].Get(), b.Indices[i].Get())
	}
	return depCombine(kinds)
}
