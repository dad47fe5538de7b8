package ir

import "github.com/nadavrot/bistra/types"

// CloneCtx is an identity mapping old->new for Argument, LocalVar and Loop,
// populated as a Program is cloned (section 4.2). Subsequent IndexExpr,
// LoadExpr and StoreStmt clones dereference the map so references point
// into the cloned graph.
type CloneCtx struct {
	args   map[*types.Argument]*types.Argument
	locals map[*types.LocalVar]*types.LocalVar
	loops  map[*Loop]*Loop
}

// NewCloneCtx builds an empty clone context.
func NewCloneCtx() *CloneCtx {
	return &CloneCtx{
		args:   make(map[*types.Argument]*types.Argument),
		locals: make(map[*types.LocalVar]*types.LocalVar),
		loops:  make(map[*Loop]*Loop),
	}
}

func (c *CloneCtx) mapArg(old, new *types.Argument) { c.args[old] = new }
func (c *CloneCtx) mapLocal(old, new *types.LocalVar) { c.locals[old] = new }
func (c *CloneCtx) mapLoop(old, new *Loop) { c.loops[old] = new }

// Arg resolves old to its clone. Panics if old was never mapped (a bug in
// the transform that built the original graph, not a user error).
func (c *CloneCtx) Arg(old *types.Argument) *types.Argument {
	n, ok := c.args[old]
	if !ok {
		panic("ir: CloneCtx: argument not mapped")
	}
	return n
}

// Local resolves old to its clone.
func (c *CloneCtx) Local(old *types.LocalVar) *types.LocalVar {
	n, ok := c.locals[old]
	if !ok {
		panic("ir: CloneCtx: local not mapped")
	}
	return n
}

// Loop resolves old to its clone. Sound because a Loop is always defined
// (and thus cloned, populating this map) before any IndexExpr that
// references it in lexical order (invariant L1).
func (c *CloneCtx) Loop(old *Loop) *Loop {
	n, ok := c.loops[old]
	if !ok {
		panic("ir: CloneCtx: loop not mapped (IndexExpr referenced a loop out of lexical order)")
	}
	return n
}

// CloneProgram returns a deep copy of p that shares no node identity with
// p and passes Verify. It is the clone entry point used by transforms and
// by the optimizer driver to fork candidate variants.
func CloneProgram(p *Program) *Program {
	ctx := NewCloneCtx()
	return cloneProgramWith(p, ctx)
}

func cloneProgramWith(p *Program, ctx *CloneCtx) *Program {
	np := NewProgram(p.Name)
	for _, arg := range p.Args {
		na := &types.Argument{Name: arg.Name, Type: arg.Type}
		np.Args = append(np.Args, na)
		ctx.mapArg(arg, na)
	}
	for _, lv := range p.Locals {
		nlv := &types.LocalVar{Name: lv.Name, Type: lv.Type}
		np.Locals = append(np.Locals, nlv)
		ctx.mapLocal(lv, nlv)
	}
	for _, st := range p.Statements() {
		np.Append(CloneStmt(st, ctx))
	}
	return np
}

// CloneStmt clones a single statement (and its subtree) using ctx, an
// exhaustive switch over the closed Stmt variant set (design notes section 9).
func CloneStmt(s Stmt, ctx *CloneCtx) Stmt {
	switch n := s.(type) {
	case *Program:
		return cloneProgramWith(n, ctx)
	case *Loop:
		nl := NewLoop(n.IndexName, n.End, n.Stride)
		// Map before recursing: the body may contain IndexExpr referencing
		// this loop, which must resolve through ctx while cloning.
		ctx.mapLoop(n, nl)
		for _, st := range n.Statements() {
			nl.Append(CloneStmt(st, ctx))
		}
		return nl
	case *IfRange:
		nr := NewIfRange(CloneExpr(n.Index.Get(), ctx), n.Lo, n.Hi)
		for _, st := range n.Statements() {
			nr.Append(CloneStmt(st, ctx))
		}
		return nr
	case *StoreStmt:
		indices := make([]Expr, len(n.Indices))
		for i, idx := range n.Indices {
			indices[i] = CloneExpr(idx.Get(), ctx)
		}
		return NewStore(ctx.Arg(n.Dest), indices, CloneExpr(n.Value.Get(), ctx), n.Accumulate)
	case *StoreLocalStmt:
		return NewStoreLocal(ctx.Local(n.Dest), CloneExpr(n.Value.Get(), ctx), n.Accumulate)
	case *CallStmt:
		params := make([]Expr, len(n.Params))
		for i, p := range n.Params {
			params[i] = CloneExpr(p.Get(), ctx)
		}
		return NewCall(n.Name, params)
	default:
		panic("ir: CloneStmt: unhandled Stmt variant")
	}
}

// CloneExpr clones a single expression (and its subtree) using ctx. Operator
// identity is always preserved explicitly — the original C++ sources' bug
// this avoids (DESIGN.md, "Open Questions resolved"): a MulExpr clone must
// never construct an AddExpr.
func CloneExpr(e Expr, ctx *CloneCtx) Expr {
	switch n := e.(type) {
	case *ConstantExpr:
		return NewConstant(n.Value)
	case *ConstantFPExpr:
		return NewConstantFP(n.Value)
	case *ConstantStringExpr:
		return NewConstantString(n.Value)
	case *IndexExpr:
		return NewIndex(ctx.Loop(n.Loop))
	case *LoadExpr:
		indices := make([]Expr, len(n.Indices))
		for i, idx := range n.Indices {
			indices[i] = CloneExpr(idx.Get(), ctx)
		}
		return NewLoad(ctx.Arg(n.Src), indices, n.ValueType)
	case *LoadLocalExpr:
		return NewLoadLocal(ctx.Local(n.Src))
	case *BinaryExpr:
		be := NewBinary(n.Op, CloneExpr(n.LHS.Get(), ctx), CloneExpr(n.RHS.Get(), ctx))
		be.RType = n.RType
		return be
	case *UnaryExpr:
		return NewUnary(n.Op, CloneExpr(n.Val.Get(), ctx))
	case *BroadcastExpr:
		return NewBroadcast(CloneExpr(n.Val.Get(), ctx), n.Width)
	case *GEPExpr:
		indices := make([]Expr, len(n.Indices))
		for i, idx := range n.Indices {
			indices[i] = CloneExpr(idx.Get(), ctx)
		}
		return NewGEP(ctx.Arg(n.Dest), indices)
	default:
		panic("ir: CloneExpr: unhandled Expr variant")
	}
}
