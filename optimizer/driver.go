package optimizer

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/nadavrot/bistra/ir"
)

// DriverConfig controls the Driver's search. Trace, when set, receives one
// line per pass reporting how many candidates it produced — a debug aid,
// not a logging framework (the module has no logger; cmd/bistrac writes its
// user-facing errors to stderr with fmt.Fprintf).
type DriverConfig struct {
	Trace io.Writer
}

// DefaultDriverConfig returns a DriverConfig with tracing disabled.
func DefaultDriverConfig() DriverConfig { return DriverConfig{} }

// Driver runs seed through a fixed chain of passes and hands the surviving
// candidates to an Evaluator to pick a winner. Grounded in original_source's
// include/bistra/Optimizer/Optimizer.h::optimizeProgram driver loop.
type Driver struct {
	Config    DriverConfig
	Passes    []Pass
	Evaluator *EvaluatorPass
}

// NewCanonicalDriver builds the standard tuning chain described in
// SPEC_FULL.md section 4.5: vectorize at the common SIMD widths, tile at a
// handful of cache-friendly block sizes (run twice, since tiling a loop
// that used to be innermost exposes a fresh innermost loop to tile again),
// widen the resulting vector loops into wider register groups (also run
// twice for the same reason), then hoist loop-invariant accumulator resets.
func NewCanonicalDriver(backend Backend) *Driver {
	return &Driver{
		Config: DefaultDriverConfig(),
		Passes: []Pass{
			VectorizerPass{VF: []uint32{4, 8}},
			TilerPass{Sizes: []uint64{16, 32, 56, 64, 128}},
			TilerPass{Sizes: []uint64{16, 32, 56, 64, 128}},
			WidenerPass{Factors: []uint64{2, 3, 4, 5, 6}},
			WidenerPass{Factors: []uint64{2, 3, 4, 5, 6}},
			PromoterPass{},
		},
		Evaluator: &EvaluatorPass{Backend: backend},
	}
}

// Run drives seed through d.Passes, unioning each pass's candidates with
// the program that entered it — a pass that finds nothing to do must not
// remove that program from the search, or a later pass loses the chance to
// act on it — dedupes by pointer identity, and asks d.Evaluator to pick a
// winner. Each Run draws a fresh run id that prefixes its Config.Trace
// lines; the id is not returned and does not appear inside any returned
// *ir.Program.
func (d *Driver) Run(ctx context.Context, seed *ir.Program) (*ir.Program, error) {
	runID := uuid.New()
	d.trace("run %s: seed program, %d pass(es)", runID, len(d.Passes))

	candidates := []*ir.Program{seed}
	for _, pass := range d.Passes {
		var next []*ir.Program
		for _, cand := range candidates {
			next = append(next, cand)
			next = append(next, pass.Candidates(cand)...)
		}
		candidates = dedupePrograms(next)
		d.trace("run %s: pass %q leaves %d candidate(s)", runID, pass.Name(), len(candidates))
	}

	best, err := d.Evaluator.Best(ctx, candidates)
	if err != nil {
		return nil, err
	}
	if best == nil {
		return nil, fmt.Errorf("optimizer: no candidate survived evaluation")
	}
	d.trace("run %s: winner estimated at %gs", runID, best.Seconds)
	return best.Program, nil
}

func (d *Driver) trace(format string, args ...any) {
	if d.Config.Trace == nil {
		return
	}
	fmt.Fprintf(d.Config.Trace, format+"\n", args...)
}

// dedupePrograms removes duplicate pointers, preserving first-seen order.
// Two distinct clones are never == even when structurally identical —
// that coarser dedup would need a structural hash, which the driver does
// not need: within one Run, the same *ir.Program pointer legitimately
// reappears only because a pass declined to transform it and passed it
// through unchanged.
func dedupePrograms(ps []*ir.Program) []*ir.Program {
	seen := make(map[*ir.Program]bool, len(ps))
	out := make([]*ir.Program, 0, len(ps))
	for _, p := range ps {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
