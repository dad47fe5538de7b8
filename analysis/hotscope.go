package analysis

import "github.com/nadavrot/bistra/ir"

// ScopeFrequency pairs a scope (Program, Loop or IfRange) with the number of
// times it executes relative to a single invocation of the enclosing
// program: the product of all enclosing loops' trip counts. IfRange does not
// multiply the frequency (it runs zero or one times per enclosing
// iteration, not per-trip-count-many).
type ScopeFrequency struct {
	Scope     ir.Stmt
	Frequency uint64
}

// hotScopeCollector mirrors original_source's lib/Program/Utils.cpp
// HotScopeCollector: a running frequency multiplier is pushed on Loop entry
// and popped on Loop leave, so every scope is recorded with the product of
// its ancestors' trip counts.
type hotScopeCollector struct {
	ir.BaseVisitor
	freq   uint64
	scopes []ScopeFrequency
}

func (c *hotScopeCollector) EnterStmt(s ir.Stmt) {
	switch n := s.(type) {
	case *ir.Program:
		c.scopes = append(c.scopes, ScopeFrequency{Scope: n, Frequency: c.freq})
	case *ir.Loop:
		c.scopes = append(c.scopes, ScopeFrequency{Scope: n, Frequency: c.freq})
		c.freq *= n.TripCount()
	case *ir.IfRange:
		c.scopes = append(c.scopes, ScopeFrequency{Scope: n, Frequency: c.freq})
	}
}

func (c *hotScopeCollector) LeaveStmt(s ir.Stmt) {
	if l, ok := s.(*ir.Loop); ok {
		if tc := l.TripCount(); tc != 0 {
			c.freq /= tc
		}
	}
}

// HotScopes returns the frequency of every scope in p, in traversal order.
func HotScopes(p *ir.Program) []ScopeFrequency {
	c := &hotScopeCollector{freq: 1}
	ir.WalkStmt(p, c)
	return c.scopes
}

// MaxScope returns the scope with the highest execution frequency — the
// loop nest an autotuner should spend its transform budget on.
func MaxScope(p *ir.Program) ScopeFrequency {
	var best ScopeFrequency
	for _, sf := range HotScopes(p) {
		if sf.Frequency >= best.Frequency {
			best = sf
		}
	}
	return best
}
