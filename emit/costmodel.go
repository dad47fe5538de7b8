package emit

import (
	"context"
	"fmt"

	"github.com/nadavrot/bistra/analysis"
	"github.com/nadavrot/bistra/ir"
)

// CostModelConfig gives the roofline backend the two machine constants it
// needs to turn an analysis.Cost into seconds: a peak arithmetic rate and a
// peak memory-operation rate. Defaults are loosely modeled on a modern
// server core's scalar GFLOP/s and L1-resident GB/s divided into element
// operations — plausible enough to rank candidates relative to each other,
// which is all the driver needs from a stand-in backend.
type CostModelConfig struct {
	ArithOpsPerSecond float64
	MemOpsPerSecond   float64
}

// DefaultCostModelConfig returns reasonable placeholder machine constants.
func DefaultCostModelConfig() CostModelConfig {
	return CostModelConfig{
		ArithOpsPerSecond: 8e9,
		MemOpsPerSecond:   4e9,
	}
}

// CostModelBackend estimates a program's running time from
// analysis.EstimateCost's roofline counts rather than generating and timing
// real code, serving as emit's default Backend so the optimizer and
// cmd/bistrac are exercisable without a concrete emitter. Grounded in
// spec.md section 4.3's cost-model formulas (mirrored in original_source's
// lib/Optimizer/CostModel.cpp).
type CostModelBackend struct {
	Config CostModelConfig
}

// NewCostModelBackend builds a CostModelBackend with the given config.
func NewCostModelBackend(cfg CostModelConfig) *CostModelBackend {
	return &CostModelBackend{Config: cfg}
}

// Evaluate estimates p's running time as the larger of its compute-bound
// and memory-bound time, the standard roofline combination: whichever
// resource the program saturates first dominates the running time.
func (b *CostModelBackend) Evaluate(ctx context.Context, p *ir.Program) (float64, error) {
	if p == nil {
		return 0, fmt.Errorf("emit: cannot evaluate a nil program")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	cost := analysis.EstimateCost(p)

	arithRate := b.Config.ArithOpsPerSecond
	memRate := b.Config.MemOpsPerSecond
	if arithRate <= 0 {
		arithRate = DefaultCostModelConfig().ArithOpsPerSecond
	}
	if memRate <= 0 {
		memRate = DefaultCostModelConfig().MemOpsPerSecond
	}

	arithSeconds := float64(cost.ArithOps) / arithRate
	memSeconds := float64(cost.MemOps) / memRate
	if memSeconds > arithSeconds {
		return memSeconds, nil
	}
	return arithSeconds, nil
}
