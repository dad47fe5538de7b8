package ir_test

import (
	"testing"

	"github.com/nadavrot/bistra/internal/fixtures"
	"github.com/nadavrot/bistra/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneProgramPreservesStructure(t *testing.T) {
	p := fixtures.Saxpy(64)
	clone := ir.CloneProgram(p)

	require.NotSame(t, p, clone)
	assert.Equal(t, ir.String(p), ir.String(clone), "clone must print identically to the original")

	wantStmt, wantExpr := ir.CountNodes(p)
	gotStmt, gotExpr := ir.CountNodes(clone)
	assert.Equal(t, wantStmt, gotStmt)
	assert.Equal(t, wantExpr, gotExpr)
}

func TestCloneProgramNoSharedIdentity(t *testing.T) {
	p := fixtures.GEMM(8, 8, 8)
	clone := ir.CloneProgram(p)

	originalLoops := map[*ir.Loop]bool{}
	ir.WalkStmt(p, &collectLoops{out: originalLoops})
	ir.WalkStmt(clone, &checkNoOverlap{t: t, forbidden: originalLoops})
}

type collectLoops struct {
	ir.BaseVisitor
	out map[*ir.Loop]bool
}

func (c *collectLoops) EnterStmt(s ir.Stmt) {
	if l, ok := s.(*ir.Loop); ok {
		c.out[l] = true
	}
}

type checkNoOverlap struct {
	ir.BaseVisitor
	t         *testing.T
	forbidden map[*ir.Loop]bool
}

func (c *checkNoOverlap) EnterStmt(s ir.Stmt) {
	if l, ok := s.(*ir.Loop); ok {
		if c.forbidden[l] {
			c.t.Fatalf("clone shares loop node identity with the original")
		}
	}
}

func TestCloneProgramVerifies(t *testing.T) {
	p := fixtures.GEMM(4, 4, 4)
	clone := ir.CloneProgram(p)
	assert.Empty(t, ir.Verify(clone))
}
