package transform

import (
	"math"

	"github.com/nadavrot/bistra/ir"
)

// SimplifyExpr constant-folds and rewrites e with the identity rules of
// section 4.1 ("simplify"), returning the simplified expression (e itself if
// nothing applies). Grounded in original_source's
// lib/Transforms/Simplify.cpp simplifyExpr.
func SimplifyExpr(e ir.Expr) ir.Expr {
	h := ir.NewExprHandle(e)
	rewriteExpr(&h, foldExpr)
	return h.Get()
}

// Simplify applies SimplifyExpr everywhere in s's subtree, then collapses
// trivial loops: an empty loop body is removed outright, and a loop with
// trip count 1 is replaced by its own body with its index substituted by 0.
// Reports whether anything changed.
func Simplify(s ir.Stmt) bool {
	changed := rewriteExprHandles(s, foldExpr)
	switch n := s.(type) {
	case *ir.Program:
		newBody, bodyChanged := simplifyScopeBody(n.Statements())
		if bodyChanged {
			n.ReplaceBody(newBody)
			changed = true
		}
	case *ir.Loop:
		newBody, bodyChanged := simplifyScopeBody(n.Statements())
		if bodyChanged {
			n.ReplaceBody(newBody)
			changed = true
		}
	case *ir.IfRange:
		newBody, bodyChanged := simplifyScopeBody(n.Statements())
		if bodyChanged {
			n.ReplaceBody(newBody)
			changed = true
		}
	}
	if changed {
		ok()
	} else {
		skip("already in simplified form")
	}
	return changed
}

// simplifyScopeBody recurses into nested loops/ifranges first (so an inner
// loop collapses before its parent is examined), then removes empty loops
// and inlines trip-count-1 loops. Grounded in original_source's
// lib/Transforms/Simplify.cpp simplify(Stmt*).
func simplifyScopeBody(body []ir.Stmt) ([]ir.Stmt, bool) {
	var out []ir.Stmt
	changed := false
	for _, st := range body {
		switch n := st.(type) {
		case *ir.Loop:
			newBody, bodyChanged := simplifyScopeBody(n.Statements())
			if bodyChanged {
				n.ReplaceBody(newBody)
				changed = true
			}
			if len(newBody) == 0 {
				changed = true
				continue
			}
			if n.TripCount() == 1 {
				changed = true
				for _, child := range newBody {
					substituteIndex(child, n, 0)
					// substituteIndex's replacement can expose a new constant
					// subexpression (e.g. IndexExpr(n)+5 becomes 0+5); fold it
					// now so this same Simplify call leaves no further constant
					// folding for a second pass to do (simplify(simplify(p)) ==
					// simplify(p)).
					rewriteExprHandles(child, foldExpr)
				}
				out = append(out, newBody...)
				continue
			}
			out = append(out, n)
		case *ir.IfRange:
			newBody, bodyChanged := simplifyScopeBody(n.Statements())
			if bodyChanged {
				n.ReplaceBody(newBody)
				changed = true
			}
			out = append(out, n)
		default:
			out = append(out, st)
		}
	}
	return out, changed
}

// foldExpr applies one level of constant folding / identity simplification
// to e, assuming e's children have already been simplified. Non-BinaryExpr
// nodes pass through unchanged.
func foldExpr(e ir.Expr) ir.Expr {
	be, ok := e.(*ir.BinaryExpr)
	if !ok {
		return e
	}
	lhs, rhs := be.LHS.Get(), be.RHS.Get()

	if lc, ok := lhs.(*ir.ConstantExpr); ok {
		if rc, ok := rhs.(*ir.ConstantExpr); ok {
			if v, folded := foldIntConst(be.Op, lc.Value, rc.Value); folded {
				return ir.NewConstant(v)
			}
		}
	}
	if lf, ok := lhs.(*ir.ConstantFPExpr); ok {
		if rf, ok := rhs.(*ir.ConstantFPExpr); ok {
			return ir.NewConstantFP(foldFloatConst(be.Op, lf.Value, rf.Value))
		}
	}

	switch be.Op {
	case ir.Add:
		if isZero(rhs) {
			return lhs
		}
		if isZero(lhs) {
			return rhs
		}
	case ir.Sub:
		if isZero(rhs) {
			return lhs
		}
	case ir.Mul:
		if isOne(rhs) {
			return lhs
		}
		if isOne(lhs) {
			return rhs
		}
		if isZero(rhs) {
			return rhs
		}
		if isZero(lhs) {
			return lhs
		}
	case ir.Div:
		if isOne(rhs) {
			return lhs
		}
	}

	// Canonicalize: push a lone constant operand to the RHS of commutative
	// operators so later passes (and the cost estimator) see a stable shape.
	// A fresh node is returned so the caller's handle records the rewrite.
	if (be.Op == ir.Add || be.Op == ir.Mul) && isConst(lhs) && !isConst(rhs) {
		swapped := ir.NewBinary(be.Op, rhs, lhs)
		swapped.RType = be.RType
		return swapped
	}
	return be
}

func isConst(e ir.Expr) bool {
	switch e.(type) {
	case *ir.ConstantExpr, *ir.ConstantFPExpr:
		return true
	default:
		return false
	}
}

func isZero(e ir.Expr) bool {
	switch n := e.(type) {
	case *ir.ConstantExpr:
		return n.Value == 0
	case *ir.ConstantFPExpr:
		return n.Value == 0
	default:
		return false
	}
}

func isOne(e ir.Expr) bool {
	switch n := e.(type) {
	case *ir.ConstantExpr:
		return n.Value == 1
	case *ir.ConstantFPExpr:
		return n.Value == 1
	default:
		return false
	}
}

func foldIntConst(op ir.BinaryOp, a, b int64) (int64, bool) {
	switch op {
	case ir.Add:
		return a + b, true
	case ir.Sub:
		return a - b, true
	case ir.Mul:
		return a * b, true
	case ir.Div:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case ir.Max:
		if a > b {
			return a, true
		}
		return b, true
	case ir.Min:
		if a < b {
			return a, true
		}
		return b, true
	default:
		return 0, false
	}
}

func foldFloatConst(op ir.BinaryOp, a, b float64) float64 {
	switch op {
	case ir.Add:
		return a + b
	case ir.Sub:
		return a - b
	case ir.Mul:
		return a * b
	case ir.Div:
		return a / b
	case ir.Max:
		return math.Max(a, b)
	case ir.Min:
		return math.Min(a, b)
	case ir.Pow:
		return math.Pow(a, b)
	default:
		return 0
	}
}
