package transform_test

import (
	"testing"

	"github.com/nadavrot/bistra/internal/fixtures"
	"github.com/nadavrot/bistra/ir"
	"github.com/nadavrot/bistra/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorizeWidensTheStoreAndStride(t *testing.T) {
	p := fixtures.Saxpy(32)
	loop := p.Statements()[0].(*ir.Loop)

	ok := transform.Vectorize(loop, 8)
	require.True(t, ok, transform.LastSkipReason())
	assert.Empty(t, ir.Verify(p))

	assert.Equal(t, uint64(8), loop.Stride)
	store := loop.Statements()[0].(*ir.StoreStmt)
	assert.EqualValues(t, 8, store.Value.Get().Type().Width)
}

func TestVectorizeRejectsNonUnitStride(t *testing.T) {
	p := fixtures.Saxpy(32)
	loop := p.Statements()[0].(*ir.Loop)
	loop.Stride = 2
	assert.False(t, transform.Vectorize(loop, 8))
}

func TestVectorizeRejectsIndivisibleFactor(t *testing.T) {
	p := fixtures.Saxpy(10)
	loop := p.Statements()[0].(*ir.Loop)
	assert.False(t, transform.Vectorize(loop, 4))
}

func TestVectorizeRejectsNonConformingBody(t *testing.T) {
	p := fixtures.GEMM(4, 4, 4)
	outer := p.Statements()[0].(*ir.Loop)
	inner := outer.Statements()[0].(*ir.Loop)
	// inner's body holds the k-loop and a store, not a single directly
	// vectorizable store keyed on inner's own counter.
	assert.False(t, transform.Vectorize(inner, 2))
}
