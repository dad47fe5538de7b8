package transform_test

import (
	"testing"

	"github.com/nadavrot/bistra/internal/fixtures"
	"github.com/nadavrot/bistra/ir"
	"github.com/nadavrot/bistra/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitProducesTwoLoopsCoveringOriginalRange(t *testing.T) {
	p := fixtures.Saxpy(10)
	loop := p.Statements()[0].(*ir.Loop)

	ok := transform.Split(p, loop, 6)
	require.True(t, ok, transform.LastSkipReason())
	assert.Empty(t, ir.Verify(p))

	require.Len(t, p.Statements(), 2)
	first := p.Statements()[0].(*ir.Loop)
	second := p.Statements()[1].(*ir.Loop)
	assert.Equal(t, uint64(6), first.TripCount())
	assert.Equal(t, uint64(4), second.TripCount())
}

func TestSplitRejectsOutOfRangePoint(t *testing.T) {
	p := fixtures.Saxpy(10)
	loop := p.Statements()[0].(*ir.Loop)
	assert.False(t, transform.Split(p, loop, 0))
	assert.False(t, transform.Split(p, loop, 10))
}
