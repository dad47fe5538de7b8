// Package analysis implements the read-only analyses that sit between the
// IR and the transform/optimizer packages: integer range bounds, weak-SIV
// dependence testing, node collection helpers, a roofline cost estimator and
// hot-scope frequency. None of these mutate the tree they are given.
package analysis

import "github.com/nadavrot/bistra/ir"

// Range is a closed integer interval [Lo, Hi].
type Range struct {
	Lo, Hi int64
}

// point returns the single-value range {v, v}.
func point(v int64) Range { return Range{Lo: v, Hi: v} }

// ComputeKnownIntegerRange computes a conservative closed range for an
// integer-kind expression, grounded in original_source's
// lib/Analysis/Value.cpp computeKnownIntegerRange. It returns ok == false
// when no useful bound can be derived (e.g. a Div, or a non-integer leaf).
func ComputeKnownIntegerRange(e ir.Expr) (r Range, ok bool) {
	switch n := e.(type) {
	case *ir.ConstantExpr:
		return point(n.Value), true
	case *ir.IndexExpr:
		// A loop counter ranges over [0, End-Stride] inclusive.
		if n.Loop.End == 0 {
			return Range{}, false
		}
		return Range{Lo: 0, Hi: int64(n.Loop.End) - int64(n.Loop.Stride)}, true
	case *ir.BinaryExpr:
		lr, lok := ComputeKnownIntegerRange(n.LHS.Get())
		rr, rok := ComputeKnownIntegerRange(n.RHS.Get())
		if !lok || !rok {
			return Range{}, false
		}
		switch n.Op {
		case ir.Add:
			return combine(lr, rr, func(a, b int64) int64 { return a + b }), true
		case ir.Sub:
			return combine(lr, rr, func(a, b int64) int64 { return a - b }), true
		case ir.Mul:
			return combine(lr, rr, func(a, b int64) int64 { return a * b }), true
		default:
			// Div and the rest are not monotone enough to bound cheaply.
			return Range{}, false
		}
	default:
		return Range{}, false
	}
}

// combine evaluates op over all four combinations of interval endpoints and
// returns the enclosing range, the standard trick for bounding a monotone-ish
// binary operator over two intervals without assuming monotonicity direction.
func combine(a, b Range, op func(int64, int64) int64) Range {
	vals := [4]int64{
		op(a.Lo, b.Lo),
		op(a.Lo, b.Hi),
		op(a.Hi, b.Lo),
		op(a.Hi, b.Hi),
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return Range{Lo: lo, Hi: hi}
}

// RangeRelation classifies how two ranges relate.
type RangeRelation int

const (
	// Intersect means the ranges overlap but neither contains the other.
	Intersect RangeRelation = iota
	// Disjoint means the ranges share no value.
	Disjoint
	// Subset means A is entirely contained within B.
	Subset
)

// GetRangeRelation classifies the relation of a to b. Grounded in
// original_source's lib/Analysis/Value.cpp getRangeRelation, with one fix:
// the original's disjoint test duplicates the "a ends before b starts"
// clause and never checks the symmetric case, so it misses
// b.Hi < a.Lo. Fixed here to check both directions.
func GetRangeRelation(a, b Range) RangeRelation {
	if a.Hi < b.Lo || b.Hi < a.Lo {
		return Disjoint
	}
	if a.Lo >= b.Lo && a.Hi <= b.Hi {
		return Subset
	}
	return Intersect
}
