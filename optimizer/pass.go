// Package optimizer drives the search over the transform package's rewrites:
// a chain of passes each enumerate candidate variants of a program, and a
// terminal evaluator scores every surviving variant against a cost backend
// to pick the fastest. Grounded in original_source's
// include/bistra/Optimizer/Optimizer.h Pass/EvaluatorPass/FilterPass family.
package optimizer

import "github.com/nadavrot/bistra/ir"

// Pass enumerates the candidate program variants one optimization step
// contributes, given one input variant. The driver composes passes into a
// chain, feeding one stage's output variants into the next — a fan-out, not
// a single best-of selection at each step, since an early greedy pick can
// shut out a combination a later pass would have found better.
type Pass interface {
	// Name identifies the pass in a trace.
	Name() string
	// Candidates returns zero or more transformed copies of p. It never
	// mutates p.
	Candidates(p *ir.Program) []*ir.Program
}

// loopSite pairs a Loop with the scope statement that directly contains it,
// the (parent, loop) shape several transforms (peel, distribute, LICM,
// pragma dispatch) require.
type loopSite struct {
	Parent ir.Stmt
	Loop   *ir.Loop
}

// loopSites walks root's subtree in the same deterministic pre-order
// ir.WalkStmt uses and records every (parent scope, loop) pair it finds.
// Because CloneProgram preserves this exact order, the i-th site found on a
// program corresponds to the i-th site found on a fresh clone of it — the
// positional-correspondence trick every pass in this package relies on to
// retarget a transform at the freshly cloned copy it actually mutates.
func loopSites(root ir.Stmt) []loopSite {
	var out []loopSite
	var walk func(ir.Stmt)
	walk = func(s ir.Stmt) {
		sc, ok := s.(ir.Scope)
		if !ok {
			return
		}
		for _, st := range sc.Statements() {
			if l, ok := st.(*ir.Loop); ok {
				out = append(out, loopSite{Parent: s, Loop: l})
			}
			walk(st)
		}
	}
	walk(root)
	return out
}

// innermostLoops returns every Loop in p whose body contains no nested
// Loop — the set VectorizerPass targets.
func innermostLoops(p *ir.Program) []*ir.Loop {
	var out []*ir.Loop
	for _, site := range loopSites(p) {
		leaf := true
		for _, st := range site.Loop.Statements() {
			if _, ok := st.(*ir.Loop); ok {
				leaf = false
				break
			}
		}
		if leaf {
			out = append(out, site.Loop)
		}
	}
	return out
}

// allLoops returns every Loop in p, in the same deterministic order
// loopSites and analysis.CollectLoops use.
func allLoops(p *ir.Program) []*ir.Loop {
	sites := loopSites(p)
	out := make([]*ir.Loop, len(sites))
	for i, s := range sites {
		out[i] = s.Loop
	}
	return out
}

// indexOfLoop returns l's position among allLoops(p), or -1.
func indexOfLoop(p *ir.Program, l *ir.Loop) int {
	for i, candidate := range allLoops(p) {
		if candidate == l {
			return i
		}
	}
	return -1
}
