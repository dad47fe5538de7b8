package analysis_test

import (
	"testing"

	"github.com/nadavrot/bistra/analysis"
	"github.com/nadavrot/bistra/internal/fixtures"
	"github.com/nadavrot/bistra/ir"
	"github.com/nadavrot/bistra/types"
	"github.com/stretchr/testify/assert"
)

func TestEstimateCostSaxpy(t *testing.T) {
	p := fixtures.Saxpy(32)
	cost := analysis.EstimateCost(p)
	// Per iteration: 2 loads (X, Y) + 1 store = 3 MemOps, mul + add = 2
	// ArithOps. Scaled by the loop's 32 iterations.
	assert.EqualValues(t, 96, cost.MemOps)
	assert.EqualValues(t, 64, cost.ArithOps)
}

func TestEstimateCostScalesWithTripCount(t *testing.T) {
	small := analysis.EstimateCost(fixtures.Saxpy(8))
	large := analysis.EstimateCost(fixtures.Saxpy(16))
	assert.Equal(t, small.MemOps*2, large.MemOps)
	assert.Equal(t, small.ArithOps*2, large.ArithOps)
}

func TestCostAddScale(t *testing.T) {
	c := analysis.Cost{MemOps: 2, ArithOps: 3}
	assert.Equal(t, analysis.Cost{MemOps: 4, ArithOps: 6}, c.Add(c))
	assert.Equal(t, analysis.Cost{MemOps: 6, ArithOps: 9}, c.Scale(3))
}

func TestEstimateExprCostLoadWidth(t *testing.T) {
	tt := buildTensor(8)
	arg := ir.NewProgram("p").AddArgument("X", tt)
	loop := ir.NewLoop("i", 8, 1)
	load := ir.NewLoad(arg, []ir.Expr{ir.NewIndex(loop)}, types.Vector(types.Float32, 4))
	cost := analysis.EstimateExprCost(load)
	assert.EqualValues(t, 4, cost.MemOps)
}
