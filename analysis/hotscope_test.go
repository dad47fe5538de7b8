package analysis_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nadavrot/bistra/analysis"
	"github.com/nadavrot/bistra/internal/fixtures"
	"github.com/nadavrot/bistra/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHotScopesGEMM(t *testing.T) {
	p := fixtures.GEMM(4, 4, 4)
	scopes := analysis.HotScopes(p)
	require.NotEmpty(t, scopes)

	freqByName := map[string]uint64{}
	for _, sf := range scopes {
		if l, ok := sf.Scope.(*ir.Loop); ok {
			freqByName[l.IndexName] = sf.Frequency
		}
	}
	want := map[string]uint64{"i": 1, "j": 4, "k": 16}
	if diff := cmp.Diff(want, freqByName); diff != "" {
		t.Errorf("loop iteration frequencies mismatch (-want +got):\n%s", diff)
	}
}

func TestMaxScopeIsInnermost(t *testing.T) {
	p := fixtures.GEMM(4, 4, 4)
	best := analysis.MaxScope(p)
	loop, ok := best.Scope.(*ir.Loop)
	require.True(t, ok)
	assert.Equal(t, "k", loop.IndexName)
	assert.EqualValues(t, 16, best.Frequency)
}
