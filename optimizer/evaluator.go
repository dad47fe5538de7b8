package optimizer

import (
	"context"
	"runtime"

	"github.com/nadavrot/bistra/ir"
	"golang.org/x/sync/errgroup"
)

// Backend scores a concrete program variant, returning an estimated (or
// measured) running time in seconds. Grounded in original_source's
// include/bistra/Backends/Backend.h Backend::evaluate, generalized here to
// an interface since code generation itself is out of scope (see
// emit.Backend) — the cost-model backend in the emit package is the only
// implementation this module ships.
type Backend interface {
	Evaluate(ctx context.Context, p *ir.Program) (seconds float64, err error)
}

// Scored pairs a candidate with the backend's estimate for it.
type Scored struct {
	Program *ir.Program
	Seconds float64
}

// EvaluatorPass is the terminal stage of a Driver's chain: it does not
// produce further candidates, it picks one. Kept outside the Pass interface
// since "pick the best" and "enumerate variants" are different shapes.
type EvaluatorPass struct {
	Backend Backend
}

// Best scores every candidate concurrently and returns the cheapest. A
// candidate the backend fails to evaluate is dropped rather than aborting
// the whole batch — one candidate's backend failure (e.g. an unsupported
// lowering) should not sink the entire search. Ties keep whichever
// candidate was enumerated first.
func (e *EvaluatorPass) Best(ctx context.Context, candidates []*ir.Program) (*Scored, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	scores := make([]*Scored, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, cand := range candidates {
		i, cand := i, cand
		g.Go(func() error {
			// A panicking backend drops this candidate just as an error does.
			defer func() { _ = recover() }()
			seconds, err := e.Backend.Evaluate(gctx, cand)
			if err != nil {
				return nil
			}
			scores[i] = &Scored{Program: cand, Seconds: seconds}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var best *Scored
	for _, s := range scores {
		if s == nil {
			continue
		}
		if best == nil || s.Seconds < best.Seconds {
			best = s
		}
	}
	return best, nil
}
