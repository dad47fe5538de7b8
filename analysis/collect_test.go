package analysis_test

import (
	"testing"

	"github.com/nadavrot/bistra/analysis"
	"github.com/nadavrot/bistra/internal/fixtures"
	"github.com/nadavrot/bistra/ir"
	"github.com/stretchr/testify/assert"
)

func TestCollectLoadsStoresSaxpy(t *testing.T) {
	p := fixtures.Saxpy(32)
	assert.Len(t, analysis.CollectLoads(p), 2)
	assert.Len(t, analysis.CollectStores(p), 1)
	assert.Len(t, analysis.CollectLoops(p), 1)
}

func TestCollectIndicesGEMM(t *testing.T) {
	p := fixtures.GEMM(4, 4, 4)
	loops := analysis.CollectLoops(p)
	assert.Len(t, loops, 3)
	indices := analysis.CollectIndices(p)
	assert.NotEmpty(t, indices)
}

func TestLoopsReferencing(t *testing.T) {
	p := fixtures.GEMM(4, 4, 4)
	loops := analysis.CollectLoops(p)
	matches := analysis.LoopsReferencing(loops, "j")
	assert.Len(t, matches, 1)
	assert.Equal(t, "j", matches[0].IndexName)
}

func TestDependsOnLoop(t *testing.T) {
	loop := ir.NewLoop("i", 8, 1)
	other := ir.NewLoop("j", 8, 1)
	expr := ir.NewBinary(ir.Add, ir.NewIndex(loop), ir.NewConstant(1))
	assert.True(t, analysis.DependsOnLoop(expr, loop))
	assert.False(t, analysis.DependsOnLoop(expr, other))
}

func TestAreLoadsStoresDisjoint(t *testing.T) {
	p := fixtures.Saxpy(16)
	loop := p.Statements()[0].(*ir.Loop)
	store := loop.Statements()[0].(*ir.StoreStmt)
	loads := analysis.CollectLoads(loop)

	// Z is never read, so loads (of X, Y) and the store to Z are disjoint.
	assert.True(t, analysis.AreLoadsStoresDisjoint(loads, []*ir.StoreStmt{store}))

	// A load of Z would no longer be disjoint from the store to Z.
	selfLoad := ir.NewLoad(store.Dest, []ir.Expr{ir.NewIndex(loop)}, store.Value.Get().Type())
	assert.False(t, analysis.AreLoadsStoresDisjoint([]*ir.LoadExpr{selfLoad}, []*ir.StoreStmt{store}))
}
