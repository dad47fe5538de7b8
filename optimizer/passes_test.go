package optimizer

import (
	"testing"

	"github.com/nadavrot/bistra/internal/fixtures"
	"github.com/nadavrot/bistra/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneAndApplyReturnsIndependentClone(t *testing.T) {
	p := fixtures.Saxpy(64)
	idx := indexOfLoop(p, innermostLoops(p)[0])

	clone := cloneAndApply(p, idx, func(l *ir.Loop) bool { l.Stride = 8; return true })
	require.NotNil(t, clone)
	assert.NotSame(t, p, clone)
	assert.Equal(t, uint64(1), p.Statements()[0].(*ir.Loop).Stride, "original must be untouched")
	assert.Equal(t, uint64(8), clone.Statements()[0].(*ir.Loop).Stride)
}

func TestCloneAndApplyRejectsFailingVerify(t *testing.T) {
	p := fixtures.Saxpy(64)
	idx := indexOfLoop(p, innermostLoops(p)[0])
	clone := cloneAndApply(p, idx, func(l *ir.Loop) bool { l.Stride = 7; return true })
	assert.Nil(t, clone)
}

func TestCloneAndApplyRejectsOutOfRangeIndex(t *testing.T) {
	p := fixtures.Saxpy(64)
	assert.Nil(t, cloneAndApply(p, -1, func(l *ir.Loop) bool { return true }))
	assert.Nil(t, cloneAndApply(p, 99, func(l *ir.Loop) bool { return true }))
}

func TestVectorizerPassProducesCandidatesForEachWidth(t *testing.T) {
	p := fixtures.Saxpy(32)
	pass := VectorizerPass{VF: []uint32{4, 8}}
	cands := pass.Candidates(p)
	require.Len(t, cands, 2)
	for _, c := range cands {
		assert.Empty(t, ir.Verify(c))
	}
}

func TestTilerPassProducesCandidatesForEachSize(t *testing.T) {
	p := fixtures.Saxpy(64)
	pass := TilerPass{Sizes: []uint64{16, 32}}
	cands := pass.Candidates(p)
	require.Len(t, cands, 2)
}

func TestTilerPassSkipsNonDivisibleSizes(t *testing.T) {
	p := fixtures.Saxpy(10)
	pass := TilerPass{Sizes: []uint64{16, 3}}
	cands := pass.Candidates(p)
	assert.Empty(t, cands)
}

func TestWidenerPassWorksOnStillScalarLoop(t *testing.T) {
	p := fixtures.Saxpy(32)
	pass := WidenerPass{Factors: []uint64{2, 4}}
	cands := pass.Candidates(p)
	require.Len(t, cands, 2)
	for _, c := range cands {
		assert.Empty(t, ir.Verify(c))
	}
}

func TestWidenerPassAfterVectorize(t *testing.T) {
	vp := VectorizerPass{VF: []uint32{8}}
	p := fixtures.Saxpy(64)
	vectorized := vp.Candidates(p)
	require.Len(t, vectorized, 1)

	wp := WidenerPass{Factors: []uint64{2}}
	widened := wp.Candidates(vectorized[0])
	require.Len(t, widened, 1)
	assert.Empty(t, ir.Verify(widened[0]))
}

func TestPromoterPassHoistsGEMMAccumulator(t *testing.T) {
	p := fixtures.GEMM(4, 4, 4)
	pass := PromoterPass{}
	cands := pass.Candidates(p)
	require.NotEmpty(t, cands)
	for _, c := range cands {
		assert.Empty(t, ir.Verify(c))
	}
}

func TestInterchangerPassHoistsOuterLoop(t *testing.T) {
	p := fixtures.GEMM(4, 6, 8)
	pass := InterchangerPass{}
	cands := pass.Candidates(p)
	require.NotEmpty(t, cands)
	for _, c := range cands {
		assert.Empty(t, ir.Verify(c))
	}
}

func TestDistributePassFindsSplitPoints(t *testing.T) {
	p := fixtures.GEMM(4, 4, 4)
	pass := DistributePass{}
	cands := pass.Candidates(p)
	// j's body has 2 statements (1 interior point), k's body has 2
	// statements (1 interior point): at least one candidate should surface
	// wherever the two halves don't conflict.
	for _, c := range cands {
		assert.Empty(t, ir.Verify(c))
	}
}

func TestFilterPassKeepsOrDrops(t *testing.T) {
	p := fixtures.Saxpy(16)

	keepAll := FilterPass{}
	kept := keepAll.Candidates(p)
	require.Len(t, kept, 1)
	assert.Same(t, p, kept[0])

	dropAll := FilterPass{Keep: func(*ir.Program) bool { return false }}
	assert.Empty(t, dropAll.Candidates(p))
}
