package transform_test

import (
	"testing"

	"github.com/nadavrot/bistra/internal/fixtures"
	"github.com/nadavrot/bistra/ir"
	"github.com/nadavrot/bistra/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidenOnStillScalarLoop(t *testing.T) {
	p := fixtures.Saxpy(32)
	loop := p.Statements()[0].(*ir.Loop)

	ok := transform.Widen(loop, 2)
	require.True(t, ok, transform.LastSkipReason())
	assert.Empty(t, ir.Verify(p))
	assert.Equal(t, uint64(2), loop.Stride)
}

func TestWidenAfterVectorizeReplicatesBody(t *testing.T) {
	p := fixtures.Saxpy(64)
	loop := p.Statements()[0].(*ir.Loop)

	require.True(t, transform.Vectorize(loop, 8), transform.LastSkipReason())
	bodyLenAfterVectorize := len(loop.Statements())

	ok := transform.Widen(loop, 2)
	require.True(t, ok, transform.LastSkipReason())
	assert.Empty(t, ir.Verify(p))

	assert.Equal(t, uint64(16), loop.Stride)
	assert.Len(t, loop.Statements(), bodyLenAfterVectorize*2)
}

func TestWidenRejectsIndivisibleFactor(t *testing.T) {
	p := fixtures.Saxpy(16)
	loop := p.Statements()[0].(*ir.Loop)
	require.True(t, transform.Vectorize(loop, 4), transform.LastSkipReason())
	// trip count after vectorize is 4; factor 3 does not divide it.
	assert.False(t, transform.Widen(loop, 3))
}
