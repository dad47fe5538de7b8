package ir

// Visitor exposes enter/leave hooks over statements and expressions.
// Traversal is depth-first in child order (section 4.1): scope body order;
// binary operands LHS then RHS; load/store indices in positional order;
// store value after indices. Visitors may not mutate the tree while it is
// being walked (section 5) — collect into a worklist first.
type Visitor interface {
	EnterStmt(Stmt)
	LeaveStmt(Stmt)
	EnterExpr(Expr)
	LeaveExpr(Expr)
}

// BaseVisitor supplies no-op hooks; embed it to implement only the hooks a
// visitor needs, mirroring original_source's NodeVisitor virtual defaults.
type BaseVisitor struct{}

func (BaseVisitor) EnterStmt(Stmt) {}
func (BaseVisitor) LeaveStmt(Stmt) {}
func (BaseVisitor) EnterExpr(Expr) {}
func (BaseVisitor) LeaveExpr(Expr) {}

// WalkStmt visits s and its entire subtree with v, in deterministic child
// order. s may be nil, in which case WalkStmt is a no-op.
func WalkStmt(s Stmt, v Visitor) {
	if s == nil {
		return
	}
	v.EnterStmt(s)
	switch n := s.(type) {
	case *Program:
		for _, st := range n.Statements() {
			WalkStmt(st, v)
		}
	case *Loop:
		for _, st := range n.Statements() {
			WalkStmt(st, v)
		}
	case *IfRange:
		WalkExpr(n.Index.Get(), v)
		for _, st := range n.Statements() {
			WalkStmt(st, v)
		}
	case *StoreStmt:
		for _, idx := range n.Indices {
			WalkExpr(idx.Get(), v)
		}
		WalkExpr(n.Value.Get(), v)
	case *StoreLocalStmt:
		WalkExpr(n.Value.Get(), v)
	case *CallStmt:
		for _, p := range n.Params {
			WalkExpr(p.Get(), v)
		}
	default:
		panic("ir: WalkStmt: unhandled Stmt variant")
	}
	v.LeaveStmt(s)
}

// WalkExpr visits e and its entire subtree with v, in deterministic child
// order. e may be nil, in which case WalkExpr is a no-op.
func WalkExpr(e Expr, v Visitor) {
	if e == nil {
		return
	}
	v.EnterExpr(e)
	switch n := e.(type) {
	case *ConstantExpr, *ConstantFPExpr, *ConstantStringExpr, *IndexExpr, *LoadLocalExpr:
		// leaf expressions
	case *LoadExpr:
		for _, idx := range n.Indices {
			WalkExpr(idx.Get(), v)
		}
	case *BinaryExpr:
		WalkExpr(n.LHS.Get(), v)
		WalkExpr(n.RHS.Get(), v)
	case *UnaryExpr:
		WalkExpr(n.Val.Get(), v)
	case *BroadcastExpr:
		WalkExpr(n.Val.Get(), v)
	case *GEPExpr:
		for _, idx := range n.Indices {
			WalkExpr(idx.Get(), v)
		}
	default:
		panic("ir: WalkExpr: unhandled Expr variant")
	}
	v.LeaveExpr(e)
}

// NodeCounter counts statements and expressions visited, mirroring
// original_source's NodeCounter (include/bistra/Analysis/Visitors.h), used
// directly by the testable-property scenarios of spec.md section 8.
type NodeCounter struct {
	BaseVisitor
	Stmt uint
	Expr uint
}

func (c *NodeCounter) EnterStmt(Stmt) { c.Stmt++ }
func (c *NodeCounter) EnterExpr(Expr) { c.Expr++ }

// CountNodes walks s and returns the number of statements and expressions.
func CountNodes(s Stmt) (stmts, exprs uint) {
	c := &NodeCounter{}
	WalkStmt(s, c)
	return c.Stmt, c.Expr
}
