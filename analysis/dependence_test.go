package analysis_test

import (
	"testing"

	"github.com/nadavrot/bistra/analysis"
	"github.com/nadavrot/bistra/ir"
	"github.com/nadavrot/bistra/types"
	"github.com/stretchr/testify/assert"
)

func TestCheckWeakSIVDependenceForIndexSameCounter(t *testing.T) {
	loop := ir.NewLoop("i", 16, 1)
	got := analysis.CheckWeakSIVDependenceForIndex(loop, ir.NewIndex(loop), ir.NewIndex(loop))
	assert.Equal(t, analysis.Equals, got)
}

func TestCheckWeakSIVDependenceForIndexDisjointConstants(t *testing.T) {
	loop := ir.NewLoop("i", 16, 1)
	got := analysis.CheckWeakSIVDependenceForIndex(loop, ir.NewConstant(0), ir.NewConstant(5))
	assert.Equal(t, analysis.NoDep, got)
}

func TestCheckWeakSIVDependenceForIndexOffsetCounter(t *testing.T) {
	loop := ir.NewLoop("i", 16, 1)
	a := ir.NewIndex(loop)
	b := ir.NewBinary(ir.Add, ir.NewIndex(loop), ir.NewConstant(1))
	got := analysis.CheckWeakSIVDependenceForIndex(loop, a, b)
	assert.Equal(t, analysis.SomeDep, got)
}

func buildTensor(dims ...uint32) types.TensorType {
	extents := make([]types.Extent, len(dims))
	for i, d := range dims {
		extents[i] = types.Extent{Name: string(rune('a' + i)), Size: d}
	}
	tt, err := types.NewTensorType(types.Float32, extents)
	if err != nil {
		panic(err)
	}
	return tt
}

func TestDependsStoreStoreSameIndexIsEquals(t *testing.T) {
	loop := ir.NewLoop("i", 8, 1)
	arg := &types.Argument{Name: "C", Type: buildTensor(8)}
	a := ir.NewStore(arg, []ir.Expr{ir.NewIndex(loop)}, ir.NewConstantFP(1), false)
	b := ir.NewStore(arg, []ir.Expr{ir.NewIndex(loop)}, ir.NewConstantFP(2), false)
	assert.Equal(t, analysis.Equals, analysis.DependsStoreStore(loop, a, b))
}

func TestDependsLoadStoreDifferentArgumentsIsNoDep(t *testing.T) {
	loop := ir.NewLoop("i", 8, 1)
	argA := &types.Argument{Name: "A", Type: buildTensor(8)}
	argB := &types.Argument{Name: "B", Type: buildTensor(8)}
	store := ir.NewStore(argA, []ir.Expr{ir.NewIndex(loop)}, ir.NewConstantFP(1), false)
	load := ir.NewLoad(argB, []ir.Expr{ir.NewIndex(loop)}, types.Scalar(types.Float32))
	assert.Equal(t, analysis.NoDep, analysis.DependsLoadStore(loop, store, load))
}

func TestDependsStoreStoreDifferentArgumentsIsNoDep(t *testing.T) {
	loop := ir.NewLoop("i", 8, 1)
	argA := &types.Argument{Name: "A", Type: buildTensor(8)}
	argB := &types.Argument{Name: "B", Type: buildTensor(8)}
	a := ir.NewStore(argA, []ir.Expr{ir.NewIndex(loop)}, ir.NewConstantFP(1), false)
	b := ir.NewStore(argB, []ir.Expr{ir.NewIndex(loop)}, ir.NewConstantFP(2), false)
	assert.Equal(t, analysis.NoDep, analysis.DependsStoreStore(loop, a, b))
}
