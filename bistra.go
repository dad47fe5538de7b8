// Package bistra provides a pure Go DSL and autotuning compiler for dense
// tensor kernels — GEMM, batched element-wise ops, transpose, pooling,
// batch norm, SAXPY, and convolution.
//
// bistra compiles bistra source programs through a fixed pipeline:
//   - Parse source text to IR (external frontend, see the parser package)
//   - Verify the IR's well-formedness (ir.Verify)
//   - Autotune it against a cost or timing backend (optimizer.Driver)
//   - Hand the winning variant to a code-generation backend (emit.Backend)
//
// The package provides a simple, high-level API for the middle two stages —
// parsing and final code generation are external collaborators, specified
// only by interface (parser.Frontend, emit.Backend) — as well as lower-
// level access to the individual stages for callers that want to drive the
// pipeline themselves.
package bistra

import (
	"context"
	"fmt"

	"github.com/nadavrot/bistra/emit"
	"github.com/nadavrot/bistra/ir"
	"github.com/nadavrot/bistra/optimizer"
)

// TuneOptions configures Tune.
type TuneOptions struct {
	// Backend scores candidate variants. Defaults to a CostModelBackend
	// with DefaultCostModelConfig when nil.
	Backend emit.Backend

	// Verify, when true (the default, via DefaultTuneOptions), verifies
	// the seed program before tuning and returns an error rather than
	// handing a malformed program to the optimizer.
	Verify bool
}

// DefaultTuneOptions returns the default tuning configuration: the bundled
// cost-model backend, with verification enabled.
func DefaultTuneOptions() TuneOptions {
	return TuneOptions{
		Backend: emit.NewCostModelBackend(emit.DefaultCostModelConfig()),
		Verify:  true,
	}
}

// Tune runs seed through the canonical autotuning chain (vectorize, tile,
// widen, promote — see optimizer.NewCanonicalDriver) and returns the
// fastest-scoring variant found.
func Tune(ctx context.Context, seed *ir.Program) (*ir.Program, error) {
	return TuneWithOptions(ctx, seed, DefaultTuneOptions())
}

// TuneWithOptions is Tune with an explicit backend and verification policy.
func TuneWithOptions(ctx context.Context, seed *ir.Program, opts TuneOptions) (*ir.Program, error) {
	if opts.Verify {
		if errs := ir.Verify(seed); len(errs) > 0 {
			return nil, fmt.Errorf("bistra: seed program failed verification: %w", errs[0])
		}
	}
	backend := opts.Backend
	if backend == nil {
		backend = emit.NewCostModelBackend(emit.DefaultCostModelConfig())
	}
	driver := optimizer.NewCanonicalDriver(backend)
	return driver.Run(ctx, seed)
}
