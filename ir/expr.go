package ir

import "github.com/nadavrot/bistra/types"

// ConstantExpr is an integer literal (also used for the index kind).
type ConstantExpr struct {
	exprBase
	Value int64
}

func (*ConstantExpr) isNode() {}
func (*ConstantExpr) isExpr() {}

// Type returns the index scalar type; integer constants are untyped literals
// in the sense that they adapt to whatever index/scalar context uses them,
// but for verify() purposes they report Index so they type-check against
// loop indices without requiring an explicit cast node.
func (*ConstantExpr) Type() types.ExprType { return types.Scalar(types.Index) }

// NewConstant builds a new, unattached ConstantExpr.
func NewConstant(v int64) *ConstantExpr { return &ConstantExpr{Value: v} }

// ConstantFPExpr is a floating-point literal.
type ConstantFPExpr struct {
	exprBase
	Value float64
}

func (*ConstantFPExpr) isNode() {}
func (*ConstantFPExpr) isExpr() {}
func (*ConstantFPExpr) Type() types.ExprType { return types.Scalar(types.Float32) }

// NewConstantFP builds a new, unattached ConstantFPExpr.
func NewConstantFP(v float64) *ConstantFPExpr { return &ConstantFPExpr{Value: v} }

// ConstantStringExpr is a string literal. It may only appear as a CallStmt
// argument, never in a typed expression position.
type ConstantStringExpr struct {
	exprBase
	Value string
}

func (*ConstantStringExpr) isNode() {}
func (*ConstantStringExpr) isExpr() {}

// Type panics: string constants have no ExprType. Callers that walk CallStmt
// arguments must type-switch for ConstantStringExpr before calling Type.
func (*ConstantStringExpr) Type() types.ExprType {
	panic("ir: ConstantStringExpr has no ExprType")
}

// NewConstantString builds a new, unattached ConstantStringExpr.
func NewConstantString(v string) *ConstantStringExpr { return &ConstantStringExpr{Value: v} }

// IndexExpr is the value of a surrounding loop counter. It holds a
// non-owning reference to its defining Loop (invariant L1: the Loop must be
// a proper ancestor of the IndexExpr in the scope tree).
type IndexExpr struct {
	exprBase
	Loop *Loop
}

func (*IndexExpr) isNode() {}
func (*IndexExpr) isExpr() {}
func (e *IndexExpr) Type() types.ExprType { return types.Scalar(types.Index) }

// NewIndex builds a new, unattached IndexExpr referencing loop.
func NewIndex(loop *Loop) *IndexExpr { return &IndexExpr{Loop: loop} }

// LoadExpr reads one element (or one vector, for the last index) from an
// Argument. #Indices must equal #extents of the argument's tensor type and
// every index is a scalar of the index kind; ValueType.Width says how many
// contiguous elements, starting at the addressed one, are read.
type LoadExpr struct {
	exprBase
	Src       *types.Argument
	Indices   []ExprHandle
	ValueType types.ExprType
}

func (*LoadExpr) isNode() {}
func (*LoadExpr) isExpr() {}
func (e *LoadExpr) Type() types.ExprType { return e.ValueType }

// NewLoad builds a new, unattached LoadExpr.
func NewLoad(src *types.Argument, indices []Expr, valueType types.ExprType) *LoadExpr {
	le := &LoadExpr{Src: src, ValueType: valueType}
	le.Indices = make([]ExprHandle, len(indices))
	for i, idx := range indices {
		le.Indices[i] = NewExprHandle(idx)
	}
	return le
}

// LoadLocalExpr reads a LocalVar.
type LoadLocalExpr struct {
	exprBase
	Src *types.LocalVar
}

func (*LoadLocalExpr) isNode() {}
func (*LoadLocalExpr) isExpr() {}
func (e *LoadLocalExpr) Type() types.ExprType { return e.Src.Type }

// NewLoadLocal builds a new, unattached LoadLocalExpr.
func NewLoadLocal(src *types.LocalVar) *LoadLocalExpr { return &LoadLocalExpr{Src: src} }

// BinaryOp is the operator of a BinaryExpr.
type BinaryOp uint8

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Max
	Min
	Pow
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Max:
		return "max"
	case Min:
		return "min"
	case Pow:
		return "pow"
	default:
		return "?"
	}
}

// BinaryExpr applies a binary operator to two operands of equal ExprType.
type BinaryExpr struct {
	exprBase
	Op       BinaryOp
	LHS, RHS ExprHandle
	RType    types.ExprType // result type, equal to operand type except where emitters widen it
}

func (*BinaryExpr) isNode() {}
func (*BinaryExpr) isExpr() {}
func (e *BinaryExpr) Type() types.ExprType { return e.RType }

// NewBinary builds a new, unattached BinaryExpr. The result type is taken
// from lhs's type (verify() checks lhs and rhs agree).
func NewBinary(op BinaryOp, lhs, rhs Expr) *BinaryExpr {
	be := &BinaryExpr{Op: op}
	be.LHS = NewExprHandle(lhs)
	be.RHS = NewExprHandle(rhs)
	be.RType = lhs.Type()
	return be
}

// UnaryOp is the operator of a UnaryExpr. All unary ops are float-only.
type UnaryOp uint8

const (
	Exp UnaryOp = iota
	Log
	Sqrt
	Abs
)

func (op UnaryOp) String() string {
	switch op {
	case Exp:
		return "exp"
	case Log:
		return "log"
	case Sqrt:
		return "sqrt"
	case Abs:
		return "abs"
	default:
		return "?"
	}
}

// UnaryExpr applies a float-only unary operator.
type UnaryExpr struct {
	exprBase
	Op  UnaryOp
	Val ExprHandle
}

func (*UnaryExpr) isNode() {}
func (*UnaryExpr) isExpr() {}
func (e *UnaryExpr) Type() types.ExprType { return e.Val.Get().Type() }

// NewUnary builds a new, unattached UnaryExpr.
func NewUnary(op UnaryOp, val Expr) *UnaryExpr {
	ue := &UnaryExpr{Op: op}
	ue.Val = NewExprHandle(val)
	return ue
}

// BroadcastExpr produces a vector of Width copies of a scalar value. Used to
// lift a scalar operand so it can combine with a vector operand after
// vectorize/widen.
type BroadcastExpr struct {
	exprBase
	Val   ExprHandle
	Width uint32
}

func (*BroadcastExpr) isNode() {}
func (*BroadcastExpr) isExpr() {}
func (e *BroadcastExpr) Type() types.ExprType {
	return e.Val.Get().Type().WithWidth(e.Width)
}

// NewBroadcast builds a new, unattached BroadcastExpr.
func NewBroadcast(val Expr, width uint32) *BroadcastExpr {
	be := &BroadcastExpr{Width: width}
	be.Val = NewExprHandle(val)
	return be
}

// GEPExpr computes the row-major address of the element at Indices within
// Dest's tensor. Used by emitters; never mutated by transforms.
type GEPExpr struct {
	exprBase
	Dest    *types.Argument
	Indices []ExprHandle
}

func (*GEPExpr) isNode() {}
func (*GEPExpr) isExpr() {}
func (e *GEPExpr) Type() types.ExprType { return types.Scalar(types.Ptr) }

// NewGEP builds a new, unattached GEPExpr.
func NewGEP(dest *types.Argument, indices []Expr) *GEPExpr {
	ge := &GEPExpr{Dest: dest}
	ge.Indices = make([]ExprHandle, len(indices))
	for i, idx := range indices {
		ge.Indices[i] = NewExprHandle(idx)
	}
	return ge
}

// ZeroExpr builds a zero constant for ExprType t: ConstantExpr(0) when t's
// kind is Index, ConstantFPExpr(0) (type float) for every other kind,
// widened through a BroadcastExpr for vector widths. Grounded in original_source's
// lib/Program/Utils.cpp getZeroExpr, used by promoteLICM to seed an
// accumulator's pre-header initialization.
func ZeroExpr(t types.ExprType) Expr {
	var scalar Expr
	if t.IsIndex() {
		scalar = NewConstant(0)
	} else {
		scalar = NewConstantFP(0.0)
	}
	if t.IsVector() {
		return NewBroadcast(scalar, t.Width)
	}
	return scalar
}
