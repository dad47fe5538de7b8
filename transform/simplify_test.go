package transform_test

import (
	"testing"

	"github.com/nadavrot/bistra/ir"
	"github.com/nadavrot/bistra/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplifyExprFoldsConstants(t *testing.T) {
	e := ir.NewBinary(ir.Add, ir.NewConstant(2), ir.NewConstant(3))
	got := transform.SimplifyExpr(e)
	c, ok := got.(*ir.ConstantExpr)
	require.True(t, ok)
	assert.EqualValues(t, 5, c.Value)
}

func TestSimplifyExprIdentities(t *testing.T) {
	loop := ir.NewLoop("i", 8, 1)
	idx := ir.NewIndex(loop)

	addZero := ir.NewBinary(ir.Add, idx, ir.NewConstant(0))
	got := transform.SimplifyExpr(addZero)
	_, ok := got.(*ir.IndexExpr)
	assert.True(t, ok, "i + 0 should simplify to i")

	mulOne := ir.NewBinary(ir.Mul, ir.NewIndex(loop), ir.NewConstant(1))
	got = transform.SimplifyExpr(mulOne)
	_, ok = got.(*ir.IndexExpr)
	assert.True(t, ok, "i * 1 should simplify to i")
}

func TestSimplifyCollapsesEmptyLoop(t *testing.T) {
	p := ir.NewProgram("p")
	loop := ir.NewLoop("i", 8, 1)
	p.Append(loop)

	changed := transform.Simplify(p)
	assert.True(t, changed)
	assert.Empty(t, p.Statements())
}

func TestSimplifyInlinesTripCountOneLoop(t *testing.T) {
	p := ir.NewProgram("p")
	outer := ir.NewLoop("i", 1, 1)
	call := ir.NewCall("touch", []ir.Expr{ir.NewIndex(outer)})
	outer.Append(call)
	p.Append(outer)

	changed := transform.Simplify(p)
	assert.True(t, changed)
	require.Len(t, p.Statements(), 1)
	inlined, ok := p.Statements()[0].(*ir.CallStmt)
	require.True(t, ok)
	c, ok := inlined.Params[0].Get().(*ir.ConstantExpr)
	require.True(t, ok)
	assert.EqualValues(t, 0, c.Value)
}

// TestSimplifyFoldsConstantExposedByTripCountOneInlining builds a trip-1
// loop whose only use of its own index is `IndexExpr(loop) + 5`: inlining
// substitutes the index with 0, exposing a foldable `0 + 5` that the same
// Simplify call must fold away rather than leaving for a second pass.
func TestSimplifyFoldsConstantExposedByTripCountOneInlining(t *testing.T) {
	p := ir.NewProgram("p")
	outer := ir.NewLoop("i", 1, 1)
	expr := ir.NewBinary(ir.Add, ir.NewIndex(outer), ir.NewConstant(5))
	outer.Append(ir.NewCall("touch", []ir.Expr{expr}))
	p.Append(outer)

	changed := transform.Simplify(p)
	require.True(t, changed)

	inlined := p.Statements()[0].(*ir.CallStmt)
	c, ok := inlined.Params[0].Get().(*ir.ConstantExpr)
	require.True(t, ok, "IndexExpr(loop)+5 should fold to a single constant once loop is inlined")
	assert.EqualValues(t, 5, c.Value)
}

// TestSimplifyIsIdempotent checks section 8's testable property
// simplify(simplify(p)) == simplify(p): a second call against an
// already-simplified program must report no further change.
func TestSimplifyIsIdempotent(t *testing.T) {
	p := ir.NewProgram("p")
	outer := ir.NewLoop("i", 1, 1)
	expr := ir.NewBinary(ir.Add, ir.NewIndex(outer), ir.NewConstant(5))
	outer.Append(ir.NewCall("touch", []ir.Expr{expr}))
	p.Append(outer)

	require.True(t, transform.Simplify(p))
	assert.False(t, transform.Simplify(p))
}

func TestSimplifyReportsNoChange(t *testing.T) {
	p := ir.NewProgram("p")
	loop := ir.NewLoop("i", 8, 1)
	loop.Append(ir.NewCall("touch", []ir.Expr{ir.NewIndex(loop)}))
	p.Append(loop)

	changed := transform.Simplify(p)
	assert.False(t, changed)
	assert.Equal(t, "already in simplified form", transform.LastSkipReason())
}
