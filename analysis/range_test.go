package analysis_test

import (
	"testing"

	"github.com/nadavrot/bistra/analysis"
	"github.com/nadavrot/bistra/ir"
	"github.com/stretchr/testify/assert"
)

func TestComputeKnownIntegerRangeConstant(t *testing.T) {
	r, ok := analysis.ComputeKnownIntegerRange(ir.NewConstant(7))
	assert.True(t, ok)
	assert.Equal(t, analysis.Range{Lo: 7, Hi: 7}, r)
}

func TestComputeKnownIntegerRangeIndex(t *testing.T) {
	loop := ir.NewLoop("i", 16, 4)
	r, ok := analysis.ComputeKnownIntegerRange(ir.NewIndex(loop))
	assert.True(t, ok)
	assert.Equal(t, analysis.Range{Lo: 0, Hi: 12}, r)
}

func TestComputeKnownIntegerRangeAddMul(t *testing.T) {
	loop := ir.NewLoop("i", 8, 1) // [0, 7]
	expr := ir.NewBinary(ir.Add, ir.NewBinary(ir.Mul, ir.NewIndex(loop), ir.NewConstant(2)), ir.NewConstant(1))
	r, ok := analysis.ComputeKnownIntegerRange(expr)
	assert.True(t, ok)
	assert.Equal(t, analysis.Range{Lo: 1, Hi: 15}, r)
}

func TestComputeKnownIntegerRangeDivUnknown(t *testing.T) {
	expr := ir.NewBinary(ir.Div, ir.NewConstant(10), ir.NewConstant(2))
	_, ok := analysis.ComputeKnownIntegerRange(expr)
	assert.False(t, ok)
}

func TestGetRangeRelation(t *testing.T) {
	cases := []struct {
		name     string
		a, b     analysis.Range
		expected analysis.RangeRelation
	}{
		{"disjoint-a-before-b", analysis.Range{Lo: 0, Hi: 3}, analysis.Range{Lo: 4, Hi: 8}, analysis.Disjoint},
		{"disjoint-b-before-a", analysis.Range{Lo: 10, Hi: 20}, analysis.Range{Lo: 0, Hi: 9}, analysis.Disjoint},
		{"subset", analysis.Range{Lo: 2, Hi: 4}, analysis.Range{Lo: 0, Hi: 10}, analysis.Subset},
		{"intersect", analysis.Range{Lo: 0, Hi: 5}, analysis.Range{Lo: 3, Hi: 8}, analysis.Intersect},
		{"touching-not-disjoint", analysis.Range{Lo: 0, Hi: 4}, analysis.Range{Lo: 4, Hi: 8}, analysis.Intersect},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, analysis.GetRangeRelation(c.a, c.b))
		})
	}
}
