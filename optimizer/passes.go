package optimizer

import (
	"github.com/nadavrot/bistra/ir"
	"github.com/nadavrot/bistra/transform"
)

// cloneAndApply clones p, locates the loop at position idx in the clone
// (valid by the positional-correspondence guarantee documented on
// loopSites), applies fn to it, and returns the clone if fn and Verify both
// succeed — nil otherwise.
func cloneAndApply(p *ir.Program, idx int, fn func(*ir.Loop) bool) *ir.Program {
	if idx < 0 {
		return nil
	}
	clone := ir.CloneProgram(p)
	loops := allLoops(clone)
	if idx >= len(loops) {
		return nil
	}
	if !fn(loops[idx]) {
		return nil
	}
	if errs := ir.Verify(clone); len(errs) > 0 {
		return nil
	}
	return clone
}

// VectorizerPass tries Vectorize at each listed width on every innermost
// loop. Candidate widths default to {4, 8} at the driver (spec section 4.5).
type VectorizerPass struct{ VF []uint32 }

func (VectorizerPass) Name() string { return "vectorize" }

func (v VectorizerPass) Candidates(p *ir.Program) []*ir.Program {
	var out []*ir.Program
	for _, loop := range innermostLoops(p) {
		idx := indexOfLoop(p, loop)
		for _, vf := range v.VF {
			vf := vf
			if c := cloneAndApply(p, idx, func(l *ir.Loop) bool { return transform.Vectorize(l, vf) }); c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}

// TilerPass tries Tile at each listed block size on every loop.
type TilerPass struct{ Sizes []uint64 }

func (TilerPass) Name() string { return "tile" }

func (t TilerPass) Candidates(p *ir.Program) []*ir.Program {
	var out []*ir.Program
	for _, loop := range allLoops(p) {
		idx := indexOfLoop(p, loop)
		for _, bs := range t.Sizes {
			bs := bs
			if c := cloneAndApply(p, idx, func(l *ir.Loop) bool { return transform.Tile(l, bs) }); c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}

// WidenerPass tries Widen at each listed register-grouping factor on every
// loop. Named for the pass the original's header spells "Widner" (design
// notes section 9).
type WidenerPass struct{ Factors []uint64 }

func (WidenerPass) Name() string { return "widen" }

func (w WidenerPass) Candidates(p *ir.Program) []*ir.Program {
	var out []*ir.Program
	for _, loop := range allLoops(p) {
		idx := indexOfLoop(p, loop)
		for _, f := range w.Factors {
			f := f
			if c := cloneAndApply(p, idx, func(l *ir.Loop) bool { return transform.Widen(l, f) }); c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}

// PromoterPass tries PromoteLICM at every (parent, loop) site.
type PromoterPass struct{}

func (PromoterPass) Name() string { return "promote" }

func (PromoterPass) Candidates(p *ir.Program) []*ir.Program {
	var out []*ir.Program
	for i := range loopSites(p) {
		clone := ir.CloneProgram(p)
		sites := loopSites(clone)
		if i >= len(sites) {
			continue
		}
		if !transform.PromoteLICM(clone, sites[i].Parent, sites[i].Loop) {
			continue
		}
		if errs := ir.Verify(clone); len(errs) > 0 {
			continue
		}
		out = append(out, clone)
	}
	return out
}

// InterchangerPass tries Hoist (loop interchange) on every loop that wraps
// exactly one nested loop.
type InterchangerPass struct{}

func (InterchangerPass) Name() string { return "interchange" }

func (InterchangerPass) Candidates(p *ir.Program) []*ir.Program {
	var out []*ir.Program
	for i, loop := range allLoops(p) {
		if len(loop.Statements()) != 1 {
			continue
		}
		if _, ok := loop.Statements()[0].(*ir.Loop); !ok {
			continue
		}
		if c := cloneAndApply(p, i, func(l *ir.Loop) bool { return transform.Hoist(l) }); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// DistributePass tries Distribute at every interior split point of every
// multi-statement loop body.
type DistributePass struct{}

func (DistributePass) Name() string { return "distribute" }

func (DistributePass) Candidates(p *ir.Program) []*ir.Program {
	var out []*ir.Program
	for i, site := range loopSites(p) {
		n := len(site.Loop.Statements())
		for at := 1; at < n; at++ {
			at := at
			clone := ir.CloneProgram(p)
			sites := loopSites(clone)
			if i >= len(sites) {
				continue
			}
			if !transform.Distribute(sites[i].Parent, sites[i].Loop, at) {
				continue
			}
			if errs := ir.Verify(clone); len(errs) > 0 {
				continue
			}
			out = append(out, clone)
		}
	}
	return out
}

// FilterPass keeps p unchanged if Keep(p) holds (or Keep is nil) and drops
// it otherwise — the chain's way of pruning a branch early without scoring
// it, e.g. a candidate whose estimated working set blows the cache budget.
type FilterPass struct{ Keep func(*ir.Program) bool }

func (FilterPass) Name() string { return "filter" }

func (f FilterPass) Candidates(p *ir.Program) []*ir.Program {
	if f.Keep == nil || f.Keep(p) {
		return []*ir.Program{p}
	}
	return nil
}
