// Package ir implements the bistra typed loop-nest intermediate
// representation: its node kinds, ownership protocol, traversal, cloning and
// well-formedness checks.
//
// Stmt and Expr are the two disjoint node sorts (data model section 3). Both
// are closed tagged variants: every concrete node type implements the sort's
// marker method, and callers exhaustively type-switch rather than walking a
// downcast chain (design notes section 9, "Polymorphic IR").
package ir

import "github.com/nadavrot/bistra/types"

// Node is the common marker for Stmt and Expr nodes.
type Node interface {
	isNode()
}

// Stmt is a statement node: Program, Loop, IfRange, StoreStmt,
// StoreLocalStmt or CallStmt.
type Stmt interface {
	Node
	isStmt()
}

// Expr is an expression node: ConstantExpr, ConstantFPExpr,
// ConstantStringExpr, IndexExpr, LoadExpr, LoadLocalExpr, BinaryExpr,
// UnaryExpr, BroadcastExpr or GEPExpr.
type Expr interface {
	Node
	isExpr()
	// Type returns the expression's ExprType. ConstantStringExpr, which only
	// ever appears as a CallStmt argument, panics if asked for a type.
	Type() types.ExprType
	// use returns the handle that currently owns this expression, or nil if
	// the expression is not attached to the tree (freshly constructed, or
	// just detached by a handle reassignment).
	use() *ExprHandle
	setUse(h *ExprHandle)
}

// exprBase implements the bookkeeping half of the Expr interface (the
// ownership back-reference). Every concrete expression type embeds it.
type exprBase struct {
	owner *ExprHandle
}

func (b *exprBase) use() *ExprHandle     { return b.owner }
func (b *exprBase) setUse(h *ExprHandle) { b.owner = h }

// ExprHandle is a single-owner slot holding one Expr child. It is the
// "handle" of data model section 3: reassigning it detaches the old child
// (invariant H2) and, if the new child already belonged to another handle,
// detaches it from there first. A child's use() always equals the handle
// that currently holds it (invariant H1).
type ExprHandle struct {
	child Expr
}

// NewExprHandle builds a handle holding e (e may be nil).
func NewExprHandle(e Expr) ExprHandle {
	var h ExprHandle
	h.Set(e)
	return h
}

// Get returns the handle's current child, or nil.
func (h *ExprHandle) Get() Expr { return h.child }

// Set reassigns the handle's child, maintaining H1 and H2: the previous
// child (if any) is detached first; if e is already owned by a different
// handle, it is detached from that handle before being attached here.
func (h *ExprHandle) Set(e Expr) {
	if h.child != nil && h.child.use() == h {
		h.child.setUse(nil)
	}
	if e != nil {
		if prior := e.use(); prior != nil && prior != h {
			prior.child = nil
		}
		e.setUse(h)
	}
	h.child = e
}

// Scope is any Stmt that contains an ordered list of statements: Program,
// Loop, IfRange. Mutation goes through Append/InsertBefore/Remove so that
// transforms never iterate a scope's body while rewriting it (section 5,
// "Scope iteration during mutation is forbidden").
type Scope interface {
	Stmt
	// Statements returns the scope's body in execution order. Callers must
	// not mutate the returned slice directly; use Append/InsertBefore/Remove.
	Statements() []Stmt
}

// scopeBase implements the ordered statement container shared by Program,
// Loop and IfRange.
type scopeBase struct {
	body []Stmt
}

func (s *scopeBase) Statements() []Stmt { return s.body }

// Append adds a statement to the end of the scope's body.
func (s *scopeBase) Append(st Stmt) { s.body = append(s.body, st) }

// InsertBefore inserts st immediately before where in the scope's body.
// Panics if where is not found, matching the teacher's assertion-style
// contract for a caller bug (original_source Scope::insertBeforeStmt).
func (s *scopeBase) InsertBefore(st Stmt, where Stmt) {
	for i, cur := range s.body {
		if cur == where {
			s.body = append(s.body, nil)
			copy(s.body[i+1:], s.body[i:])
			s.body[i] = st
			return
		}
	}
	panic("ir: InsertBefore: insertion point not found in scope")
}

// Remove deletes the first occurrence of st from the scope's body. It is a
// no-op if st is not present.
func (s *scopeBase) Remove(st Stmt) {
	for i, cur := range s.body {
		if cur == st {
			s.body = append(s.body[:i], s.body[i+1:]...)
			return
		}
	}
}

// Clear empties the scope's body.
func (s *scopeBase) Clear() { s.body = nil }

// IsEmpty reports whether the scope has no statements.
func (s *scopeBase) IsEmpty() bool { return len(s.body) == 0 }

// TakeContent moves all statements from other into s, leaving other empty.
// Used by simplify and tile when splicing a loop body into its parent.
func (s *scopeBase) TakeContent(other *scopeBase) {
	s.body = append(s.body, other.body...)
	other.body = nil
}

// ReplaceBody overwrites the scope's body wholesale. Used by transforms that
// compute a full replacement (unroll, widen, split, distribute).
func (s *scopeBase) ReplaceBody(stmts []Stmt) { s.body = stmts }
