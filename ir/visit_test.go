package ir_test

import (
	"testing"

	"github.com/nadavrot/bistra/internal/fixtures"
	"github.com/nadavrot/bistra/ir"
	"github.com/stretchr/testify/assert"
)

func TestCountNodesSaxpy(t *testing.T) {
	p := fixtures.Saxpy(32)
	stmts, exprs := ir.CountNodes(p)

	// Program, Loop, StoreStmt = 3 statements.
	assert.EqualValues(t, 3, stmts)
	// 2 IndexExpr (loadX, loadY) + 1 IndexExpr (store) + LoadExpr x2 +
	// LoadLocalExpr + BinaryExpr x2 = 8.
	assert.EqualValues(t, 8, exprs)
}

func TestWalkStmtOrderIsDeterministic(t *testing.T) {
	p := fixtures.GEMM(2, 2, 2)
	var first, second []string
	record := func(dst *[]string) *orderRecorder { return &orderRecorder{dst: dst} }

	ir.WalkStmt(p, record(&first))
	ir.WalkStmt(p, record(&second))
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

type orderRecorder struct {
	ir.BaseVisitor
	dst *[]string
}

func (r *orderRecorder) EnterStmt(s ir.Stmt) {
	*r.dst = append(*r.dst, kindName(s))
}

func kindName(s ir.Stmt) string {
	switch s.(type) {
	case *ir.Program:
		return "Program"
	case *ir.Loop:
		return "Loop"
	case *ir.IfRange:
		return "IfRange"
	case *ir.StoreStmt:
		return "StoreStmt"
	case *ir.StoreLocalStmt:
		return "StoreLocalStmt"
	case *ir.CallStmt:
		return "CallStmt"
	default:
		return "?"
	}
}

func TestWalkStmtNilIsNoOp(t *testing.T) {
	assert.NotPanics(t, func() {
		ir.WalkStmt(nil, &ir.BaseVisitor{})
	})
}
