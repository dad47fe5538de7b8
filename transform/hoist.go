package transform

import (
	"github.com/nadavrot/bistra/analysis"
	"github.com/nadavrot/bistra/ir"
)

// Hoist interchanges outer with the single loop nested directly inside it,
// swapping which dimension iterates on the outside. The two Loop nodes keep
// their positions in the tree: their IndexName/End/Stride fields are
// exchanged in place, and every IndexExpr in the body that referenced one of
// them is redirected to the other, so each access keeps iterating over its
// own dimension. Interchange is refused if a data dependence
// between the body's accesses, with respect to outer, cannot be proven safe
// — spec section 8's dependence-based hoist-rejection scenario. Grounded in
// original_source's include/bistra/Transforms/Transforms.h hoist signature.
func Hoist(outer *ir.Loop) bool {
	body := outer.Statements()
	if len(body) != 1 {
		return skip("hoist requires the loop to contain exactly one nested statement")
	}
	inner, isLoop := body[0].(*ir.Loop)
	if !isLoop {
		return skip("hoist requires the loop to contain exactly one nested loop")
	}
	if !interchangeIsSafe(outer, inner) {
		return skip("a data dependence blocks this loop interchange")
	}

	outer.IndexName, inner.IndexName = inner.IndexName, outer.IndexName
	outer.End, inner.End = inner.End, outer.End
	outer.Stride, inner.Stride = inner.Stride, outer.Stride
	rewriteExprHandles(inner, func(e ir.Expr) ir.Expr {
		if ix, isIndex := e.(*ir.IndexExpr); isIndex {
			switch ix.Loop {
			case outer:
				return ir.NewIndex(inner)
			case inner:
				return ir.NewIndex(outer)
			}
		}
		return e
	})
	return ok()
}

// interchangeIsSafe reports whether no pair of accesses inside inner's body
// carries an unresolved (SomeDep) dependence with respect to outer — if one
// does, reordering outer's iterations relative to inner's could change the
// program's result.
func interchangeIsSafe(outer, inner *ir.Loop) bool {
	stores := analysis.CollectStores(inner)
	loads := analysis.CollectLoads(inner)

	for i, a := range stores {
		for j, b := range stores {
			if j <= i {
				continue
			}
			if analysis.DependsStoreStore(outer, a, b) == analysis.SomeDep {
				return false
			}
		}
	}
	for _, s := range stores {
		for _, l := range loads {
			if analysis.DependsLoadStore(outer, s, l) == analysis.SomeDep {
				return false
			}
		}
	}
	return true
}
