package transform_test

import (
	"testing"

	"github.com/nadavrot/bistra/internal/fixtures"
	"github.com/nadavrot/bistra/ir"
	"github.com/nadavrot/bistra/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTilePreservesIterationCount(t *testing.T) {
	p := fixtures.Saxpy(64)
	loop := p.Statements()[0].(*ir.Loop)

	ok := transform.Tile(loop, 16)
	require.True(t, ok, transform.LastSkipReason())
	assert.Empty(t, ir.Verify(p))

	require.Len(t, loop.Statements(), 1)
	inner, isLoop := loop.Statements()[0].(*ir.Loop)
	require.True(t, isLoop)

	assert.Equal(t, uint64(16), loop.Stride)
	assert.Equal(t, uint64(64), loop.End)
	assert.Equal(t, loop.TripCount()*inner.TripCount(), uint64(64))
}

func TestTileRejectsNonDivisibleBlockSize(t *testing.T) {
	p := fixtures.Saxpy(10)
	loop := p.Statements()[0].(*ir.Loop)
	assert.False(t, transform.Tile(loop, 3))
}

func TestTileRejectsTooSmallBlockSize(t *testing.T) {
	p := fixtures.Saxpy(10)
	loop := p.Statements()[0].(*ir.Loop)
	assert.False(t, transform.Tile(loop, 1))
}
