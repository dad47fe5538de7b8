package ir

import "github.com/nadavrot/bistra/types"

// Program is the root scope: a terminal compilation unit with a named
// argument list and locals.
type Program struct {
	scopeBase
	Name   string
	Args   []*types.Argument
	Locals []*types.LocalVar
}

func (*Program) isNode() {}
func (*Program) isStmt() {}

// NewProgram builds an empty program.
func NewProgram(name string) *Program {
	return &Program{Name: name}
}

// AddArgument appends a new Argument to the program and returns it.
func (p *Program) AddArgument(name string, t types.TensorType) *types.Argument {
	arg := &types.Argument{Name: name, Type: t}
	p.Args = append(p.Args, arg)
	return arg
}

// AddLocal appends a new LocalVar to the program and returns it.
func (p *Program) AddLocal(name string, t types.ExprType) *types.LocalVar {
	lv := &types.LocalVar{Name: name, Type: t}
	p.Locals = append(p.Locals, lv)
	return lv
}

// Loop is `for indexName in 0..end step stride`. Invariant: end % stride == 0.
type Loop struct {
	scopeBase
	IndexName string
	End       uint64
	Stride    uint64
}

func (*Loop) isNode() {}
func (*Loop) isStmt() {}

// NewLoop builds a new, empty loop. Stride defaults to 1 when 0 is passed.
func NewLoop(indexName string, end, stride uint64) *Loop {
	if stride == 0 {
		stride = 1
	}
	return &Loop{IndexName: indexName, End: end, Stride: stride}
}

// TripCount returns End / Stride, the number of iterations the loop performs.
func (l *Loop) TripCount() uint64 {
	if l.Stride == 0 {
		return 0
	}
	return l.End / l.Stride
}

// IfRange executes its body iff Lo <= Index < Hi.
type IfRange struct {
	scopeBase
	Index  ExprHandle
	Lo, Hi int64
}

func (*IfRange) isNode() {}
func (*IfRange) isStmt() {}

// NewIfRange builds a new, empty IfRange.
func NewIfRange(index Expr, lo, hi int64) *IfRange {
	ir := &IfRange{Lo: lo, Hi: hi}
	ir.Index = NewExprHandle(index)
	return ir
}

// StoreStmt writes (or, if Accumulate, accumulates with +=) Value into
// Dest[Indices...].
type StoreStmt struct {
	Dest       *types.Argument
	Indices    []ExprHandle
	Value      ExprHandle
	Accumulate bool
}

func (*StoreStmt) isNode() {}
func (*StoreStmt) isStmt() {}

// NewStore builds a new StoreStmt.
func NewStore(dest *types.Argument, indices []Expr, value Expr, accumulate bool) *StoreStmt {
	ss := &StoreStmt{Dest: dest, Accumulate: accumulate}
	ss.Indices = make([]ExprHandle, len(indices))
	for i, idx := range indices {
		ss.Indices[i] = NewExprHandle(idx)
	}
	ss.Value = NewExprHandle(value)
	return ss
}

// StoreLocalStmt writes (or accumulates) Value into a LocalVar.
type StoreLocalStmt struct {
	Dest       *types.LocalVar
	Value      ExprHandle
	Accumulate bool
}

func (*StoreLocalStmt) isNode() {}
func (*StoreLocalStmt) isStmt() {}

// NewStoreLocal builds a new StoreLocalStmt.
func NewStoreLocal(dest *types.LocalVar, value Expr, accumulate bool) *StoreLocalStmt {
	sl := &StoreLocalStmt{Dest: dest, Accumulate: accumulate}
	sl.Value = NewExprHandle(value)
	return sl
}

// CallStmt is an intrinsic/extern call. Float arguments promote to double
// per the C variadic-promotion convention when lowered by an emitter.
type CallStmt struct {
	Name   string
	Params []ExprHandle
}

func (*CallStmt) isNode() {}
func (*CallStmt) isStmt() {}

// NewCall builds a new CallStmt.
func NewCall(name string, params []Expr) *CallStmt {
	cs := &CallStmt{Name: name}
	cs.Params = make([]ExprHandle, len(params))
	for i, p := range params {
		cs.Params[i] = NewExprHandle(p)
	}
	return cs
}
