package transform_test

import (
	"testing"

	"github.com/nadavrot/bistra/internal/fixtures"
	"github.com/nadavrot/bistra/ir"
	"github.com/nadavrot/bistra/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDispatchesVectorize(t *testing.T) {
	p := fixtures.Saxpy(32)
	loop := p.Statements()[0].(*ir.Loop)
	ok := transform.Apply(p, transform.Command{Kind: transform.PragmaVectorize, Param: 8, Loop: loop})
	require.True(t, ok, transform.LastSkipReason())
	assert.Equal(t, uint64(8), loop.Stride)
}

func TestApplyDispatchesTile(t *testing.T) {
	p := fixtures.Saxpy(64)
	loop := p.Statements()[0].(*ir.Loop)
	ok := transform.Apply(p, transform.Command{Kind: transform.PragmaTile, Param: 16, Loop: loop})
	require.True(t, ok, transform.LastSkipReason())
	assert.Equal(t, uint64(16), loop.Stride)
}

func TestApplyDispatchesPeel(t *testing.T) {
	p := fixtures.Saxpy(8)
	loop := p.Statements()[0].(*ir.Loop)
	ok := transform.Apply(p, transform.Command{Kind: transform.PragmaPeel, Loop: loop})
	require.True(t, ok, transform.LastSkipReason())
	assert.Equal(t, uint64(7), loop.End)
}

func TestApplyRejectsUnsupportedKind(t *testing.T) {
	p := fixtures.Saxpy(8)
	loop := p.Statements()[0].(*ir.Loop)
	assert.False(t, transform.Apply(p, transform.Command{Kind: transform.PragmaOther, Loop: loop}))
}

func TestPragmaKindString(t *testing.T) {
	assert.Equal(t, "vectorize", transform.PragmaVectorize.String())
	assert.Equal(t, "hoist", transform.PragmaHoist.String())
	assert.Equal(t, "other", transform.PragmaOther.String())
}
