// Package transform implements the loop-nest rewrites of spec section 4:
// simplify, tile, peel, split, unroll, vectorize, widen, hoist, distribute
// and LICM promotion, plus the pragma dispatch table that drives them from
// source annotations. Every transform either mutates its Program argument
// and reports success, or leaves it untouched and reports failure — callers
// that need a fresh variant to keep the original around clone first with
// ir.CloneProgram.
package transform

import "github.com/nadavrot/bistra/ir"

// rewriteExpr recurses into e's children first (so fn always sees already
// rewritten subexpressions), then applies fn to h's current child and
// commits the result through the handle if it differs by identity.
func rewriteExpr(h *ir.ExprHandle, fn func(ir.Expr) ir.Expr) bool {
	cur := h.Get()
	if cur == nil {
		return false
	}
	changed := false
	switch n := cur.(type) {
	case *ir.LoadExpr:
		for i := range n.Indices {
			if rewriteExpr(&n.Indices[i], fn) {
				changed = true
			}
		}
	case *ir.BinaryExpr:
		if rewriteExpr(&n.LHS, fn) {
			changed = true
		}
		if rewriteExpr(&n.RHS, fn) {
			changed = true
		}
	case *ir.UnaryExpr:
		if rewriteExpr(&n.Val, fn) {
			changed = true
		}
	case *ir.BroadcastExpr:
		if rewriteExpr(&n.Val, fn) {
			changed = true
		}
	case *ir.GEPExpr:
		for i := range n.Indices {
			if rewriteExpr(&n.Indices[i], fn) {
				changed = true
			}
		}
	}
	if replacement := fn(h.Get()); replacement != nil && replacement != h.Get() {
		h.Set(replacement)
		changed = true
	}
	return changed
}

// rewriteExprHandles walks every ExprHandle reachable from s (recursing into
// nested scopes) and applies fn to each, bottom-up. It reports whether any
// handle was replaced.
func rewriteExprHandles(s ir.Stmt, fn func(ir.Expr) ir.Expr) bool {
	changed := false
	switch n := s.(type) {
	case *ir.Program:
		for _, st := range n.Statements() {
			if rewriteExprHandles(st, fn) {
				changed = true
			}
		}
	case *ir.Loop:
		for _, st := range n.Statements() {
			if rewriteExprHandles(st, fn) {
				changed = true
			}
		}
	case *ir.IfRange:
		if rewriteExpr(&n.Index, fn) {
			changed = true
		}
		for _, st := range n.Statements() {
			if rewriteExprHandles(st, fn) {
				changed = true
			}
		}
	case *ir.StoreStmt:
		for i := range n.Indices {
			if rewriteExpr(&n.Indices[i], fn) {
				changed = true
			}
		}
		if rewriteExpr(&n.Value, fn) {
			changed = true
		}
	case *ir.StoreLocalStmt:
		if rewriteExpr(&n.Value, fn) {
			changed = true
		}
	case *ir.CallStmt:
		for i := range n.Params {
			if rewriteExpr(&n.Params[i], fn) {
				changed = true
			}
		}
	}
	return changed
}

// substituteIndex rewrites every IndexExpr referencing loop within s into
// the integer constant val. Used when a loop is eliminated (simplify's
// trip-count-1 collapse) or specialized (peel).
func substituteIndex(s ir.Stmt, loop *ir.Loop, val int64) {
	rewriteExprHandles(s, func(e ir.Expr) ir.Expr {
		if ix, ok := e.(*ir.IndexExpr); ok && ix.Loop == loop {
			return ir.NewConstant(val)
		}
		return e
	})
}

// scopeBody returns the statement list of a scope-shaped Stmt (Program, Loop
// or IfRange), or nil for anything else.
func scopeBody(s ir.Stmt) []ir.Stmt {
	switch n := s.(type) {
	case *ir.Program:
		return n.Statements()
	case *ir.Loop:
		return n.Statements()
	case *ir.IfRange:
		return n.Statements()
	default:
		return nil
	}
}

// setScopeBody overwrites the statement list of a scope-shaped Stmt.
func setScopeBody(s ir.Stmt, body []ir.Stmt) {
	switch n := s.(type) {
	case *ir.Program:
		n.ReplaceBody(body)
	case *ir.Loop:
		n.ReplaceBody(body)
	case *ir.IfRange:
		n.ReplaceBody(body)
	}
}

// copyCtx maps a Loop being duplicated (by copyStmt, when it re-enters a
// nested loop) to its fresh duplicate. Any loop not present defaults to
// itself: split/peel/unroll duplicate a fragment in place rather than an
// entire program, so references to loops outside the fragment (or to the
// fragment's own enclosing loop, fixed up afterwards by the caller's own
// index rewrite)
// must keep their original identity rather than panic like CloneCtx does.
type copyCtx struct {
	loops map[*ir.Loop]*ir.Loop
}

func newCopyCtx() *copyCtx { return &copyCtx{loops: make(map[*ir.Loop]*ir.Loop)} }

func (c *copyCtx) loop(old *ir.Loop) *ir.Loop {
	if nl, ok := c.loops[old]; ok {
		return nl
	}
	return old
}

// copyStmt duplicates s (and its subtree), giving every nested Loop it
// passes through a fresh identity while leaving Argument, LocalVar and any
// loop outside the duplicated fragment untouched. Used by split, peel and
// unroll to replicate a loop body before substituting its index.
func copyStmt(s ir.Stmt, c *copyCtx) ir.Stmt {
	switch n := s.(type) {
	case *ir.Loop:
		nl := ir.NewLoop(n.IndexName, n.End, n.Stride)
		c.loops[n] = nl
		for _, st := range n.Statements() {
			nl.Append(copyStmt(st, c))
		}
		return nl
	case *ir.IfRange:
		nr := ir.NewIfRange(copyExpr(n.Index.Get(), c), n.Lo, n.Hi)
		for _, st := range n.Statements() {
			nr.Append(copyStmt(st, c))
		}
		return nr
	case *ir.StoreStmt:
		indices := make([]ir.Expr, len(n.Indices))
		for i, h := range n.Indices {
			indices[i] = copyExpr(h.Get(), c)
		}
		return ir.NewStore(n.Dest, indices, copyExpr(n.Value.Get(), c), n.Accumulate)
	case *ir.StoreLocalStmt:
		return ir.NewStoreLocal(n.Dest, copyExpr(n.Value.Get(), c), n.Accumulate)
	case *ir.CallStmt:
		params := make([]ir.Expr, len(n.Params))
		for i, h := range n.Params {
			params[i] = copyExpr(h.Get(), c)
		}
		return ir.NewCall(n.Name, params)
	default:
		panic("transform: copyStmt: unhandled Stmt variant")
	}
}

// copyExpr duplicates e, resolving IndexExpr through c so a duplicated
// nested loop's own counter references follow it rather than the original.
func copyExpr(e ir.Expr, c *copyCtx) ir.Expr {
	switch n := e.(type) {
	case *ir.ConstantExpr:
		return ir.NewConstant(n.Value)
	case *ir.ConstantFPExpr:
		return ir.NewConstantFP(n.Value)
	case *ir.ConstantStringExpr:
		return ir.NewConstantString(n.Value)
	case *ir.IndexExpr:
		return ir.NewIndex(c.loop(n.Loop))
	case *ir.LoadExpr:
		indices := make([]ir.Expr, len(n.Indices))
		for i, h := range n.Indices {
			indices[i] = copyExpr(h.Get(), c)
		}
		return ir.NewLoad(n.Src, indices, n.ValueType)
	case *ir.LoadLocalExpr:
		return ir.NewLoadLocal(n.Src)
	case *ir.BinaryExpr:
		be := ir.NewBinary(n.Op, copyExpr(n.LHS.Get(), c), copyExpr(n.RHS.Get(), c))
		be.RType = n.RType
		return be
	case *ir.UnaryExpr:
		return ir.NewUnary(n.Op, copyExpr(n.Val.Get(), c))
	case *ir.BroadcastExpr:
		return ir.NewBroadcast(copyExpr(n.Val.Get(), c), n.Width)
	case *ir.GEPExpr:
		indices := make([]ir.Expr, len(n.Indices))
		for i, h := range n.Indices {
			indices[i] = copyExpr(h.Get(), c)
		}
		return ir.NewGEP(n.Dest, indices)
	default:
		panic("transform: copyExpr: unhandled Expr variant")
	}
}

// lastSkipReason records why the most recent failed transform call declined
// to act. It is a debug aid only (section 7: transforms report success via
// a bare bool; this accessor must never be used as control flow).
var lastSkipReason string

// LastSkipReason returns the reason the previous transform call in this
// package returned false, or "" if it succeeded or none has run yet.
func LastSkipReason() string { return lastSkipReason }

func skip(reason string) bool {
	lastSkipReason = reason
	return false
}

func ok() bool {
	lastSkipReason = ""
	return true
}
