package ir_test

import (
	"strings"
	"testing"

	"github.com/nadavrot/bistra/internal/fixtures"
	"github.com/nadavrot/bistra/ir"
	"github.com/stretchr/testify/assert"
)

func TestStringSaxpyContainsLoopAndStore(t *testing.T) {
	out := ir.String(fixtures.Saxpy(16))
	assert.Contains(t, out, "for (i in 0..16 step 1)")
	assert.Contains(t, out, "Z[")
	assert.Contains(t, out, "=")
}

func TestStringDeterministic(t *testing.T) {
	p := fixtures.GEMM(4, 4, 4)
	a := ir.String(p)
	b := ir.String(p)
	assert.Equal(t, a, b)
}

func TestStringAccumulateUsesPlusEquals(t *testing.T) {
	out := ir.String(fixtures.GEMM(2, 2, 2))
	assert.True(t, strings.Contains(out, "+="), "expected an accumulating store to print with +=, got:\n%s", out)
}
