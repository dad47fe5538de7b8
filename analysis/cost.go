package analysis

import "github.com/nadavrot/bistra/ir"

// Cost is a roofline-style operation count: how many memory and arithmetic
// operations a statement subtree performs, ignoring cache effects. Grounded
// in original_source's lib/Analysis/Value.cpp ComputeEstimator visitor.
type Cost struct {
	MemOps   uint64
	ArithOps uint64
}

// Add returns the elementwise sum of c and o.
func (c Cost) Add(o Cost) Cost {
	return Cost{MemOps: c.MemOps + o.MemOps, ArithOps: c.ArithOps + o.ArithOps}
}

// Scale returns c scaled by n, used to account for a loop's trip count.
func (c Cost) Scale(n uint64) Cost {
	return Cost{MemOps: c.MemOps * n, ArithOps: c.ArithOps * n}
}

// EstimateCost walks s and returns its roofline cost estimate. Loops
// multiply the cost of their body by trip count; IfRange conservatively
// assumes its body always runs (the original's 100%-taken assumption).
func EstimateCost(s ir.Stmt) Cost {
	switch n := s.(type) {
	case *ir.Program:
		return costOfBody(n.Statements())
	case *ir.Loop:
		return costOfBody(n.Statements()).Scale(n.TripCount())
	case *ir.IfRange:
		return costOfBody(n.Statements())
	case *ir.StoreStmt:
		width := uint64(widthOf(n.Value.Get().Type().Width))
		store := Cost{MemOps: width}
		if n.Accumulate {
			store = Cost{MemOps: 2 * width, ArithOps: width}
		}
		for _, idx := range n.Indices {
			store = store.Add(EstimateExprCost(idx.Get()))
		}
		return store.Add(EstimateExprCost(n.Value.Get()))
	case *ir.StoreLocalStmt:
		return Cost{MemOps: 1}.Add(EstimateExprCost(n.Value.Get()))
	case *ir.CallStmt:
		c := Cost{ArithOps: 1}
		for _, p := range n.Params {
			if _, isStr := p.Get().(*ir.ConstantStringExpr); isStr {
				continue
			}
			c = c.Add(EstimateExprCost(p.Get()))
		}
		return c
	default:
		return Cost{}
	}
}

func costOfBody(body []ir.Stmt) Cost {
	var total Cost
	for _, st := range body {
		total = total.Add(EstimateCost(st))
	}
	return total
}

func widthOf(w uint32) uint32 {
	if w == 0 {
		return 1
	}
	return w
}

// EstimateExprCost returns the memory/arithmetic cost of evaluating e once
// (not accounting for any enclosing loop's trip count). Loads cost one
// memory operation of their width; binary/unary arithmetic cost one
// arithmetic operation of their result width; constants, indices and
// broadcasts are free (the broadcast is folded into a register move by any
// real backend).
func EstimateExprCost(e ir.Expr) Cost {
	var c Cost
	switch n := e.(type) {
	case *ir.LoadExpr:
		c.MemOps += uint64(widthOf(n.ValueType.Width))
		for _, idx := range n.Indices {
			c = c.Add(EstimateExprCost(idx.Get()))
		}
	case *ir.LoadLocalExpr:
		// register read, not a memory operation
	case *ir.BinaryExpr:
		c.ArithOps += uint64(widthOf(n.RType.Width))
		c = c.Add(EstimateExprCost(n.LHS.Get())).Add(EstimateExprCost(n.RHS.Get()))
	case *ir.UnaryExpr:
		c.ArithOps += uint64(widthOf(n.Val.Get().Type().Width))
		c = c.Add(EstimateExprCost(n.Val.Get()))
	case *ir.BroadcastExpr:
		c = c.Add(EstimateExprCost(n.Val.Get()))
	case *ir.GEPExpr:
		for _, idx := range n.Indices {
			c = c.Add(EstimateExprCost(idx.Get()))
		}
	}
	return c
}
