// Package fixtures builds small, representative bistra programs shared by
// tests across ir, analysis, transform, optimizer and bytecode — kept in
// one place so every package's tests exercise the same canonical kernels
// spec.md section 8 describes (SAXPY, a tiny GEMM accumulator) instead of
// each re-deriving its own ad hoc fixture.
package fixtures

import (
	"github.com/nadavrot/bistra/ir"
	"github.com/nadavrot/bistra/types"
)

// Saxpy builds `for (i in 0..n) { Z[i] = X[i] * a + Y[i] }`.
func Saxpy(n uint64) *ir.Program {
	p := ir.NewProgram("saxpy")
	tt, err := types.NewTensorType(types.Float32, []types.Extent{{Name: "n", Size: uint32(n)}})
	if err != nil {
		panic(err)
	}
	x := p.AddArgument("X", tt)
	y := p.AddArgument("Y", tt)
	z := p.AddArgument("Z", tt)
	a := p.AddLocal("a", types.Scalar(types.Float32))

	loop := ir.NewLoop("i", n, 1)
	loadX := ir.NewLoad(x, []ir.Expr{ir.NewIndex(loop)}, types.Scalar(types.Float32))
	loadY := ir.NewLoad(y, []ir.Expr{ir.NewIndex(loop)}, types.Scalar(types.Float32))
	prod := ir.NewBinary(ir.Mul, loadX, ir.NewLoadLocal(a))
	sum := ir.NewBinary(ir.Add, prod, loadY)
	store := ir.NewStore(z, []ir.Expr{ir.NewIndex(loop)}, sum, false)
	loop.Append(store)
	p.Append(loop)
	return p
}

// GEMM builds a triple-nested
//
//	for (i in 0..m) { for (j in 0..n) { for (k in 0..k) {
//	  acc = 0                     // only emitted once, when k's index is 0 —
//	                                 // modeled here as an unconditional reset
//	                                 // at the top of the k loop, the shape
//	                                 // PromoteLICM is meant to hoist out.
//	  acc += A[i,k] * B[k,j]
//	}
//	C[i,j] = acc
//	}}
//
// the canonical autotuning target spec.md section 8 exercises tile,
// vectorize, widen and LICM promotion against.
func GEMM(m, n, k uint64) *ir.Program {
	p := ir.NewProgram("gemm")
	f32 := types.Float32
	at, err := types.NewTensorType(f32, []types.Extent{{Name: "m", Size: uint32(m)}, {Name: "k", Size: uint32(k)}})
	if err != nil {
		panic(err)
	}
	bt, err := types.NewTensorType(f32, []types.Extent{{Name: "k", Size: uint32(k)}, {Name: "n", Size: uint32(n)}})
	if err != nil {
		panic(err)
	}
	ct, err := types.NewTensorType(f32, []types.Extent{{Name: "m", Size: uint32(m)}, {Name: "n", Size: uint32(n)}})
	if err != nil {
		panic(err)
	}
	a := p.AddArgument("A", at)
	b := p.AddArgument("B", bt)
	c := p.AddArgument("C", ct)
	acc := p.AddLocal("acc", types.Scalar(f32))

	li := ir.NewLoop("i", m, 1)
	lj := ir.NewLoop("j", n, 1)
	lk := ir.NewLoop("k", k, 1)

	reset := ir.NewStoreLocal(acc, ir.ZeroExpr(types.Scalar(f32)), false)
	loadA := ir.NewLoad(a, []ir.Expr{ir.NewIndex(li), ir.NewIndex(lk)}, types.Scalar(f32))
	loadB := ir.NewLoad(b, []ir.Expr{ir.NewIndex(lk), ir.NewIndex(lj)}, types.Scalar(f32))
	prod := ir.NewBinary(ir.Mul, loadA, loadB)
	accumulate := ir.NewStoreLocal(acc, prod, true)
	lk.Append(reset)
	lk.Append(accumulate)

	store := ir.NewStore(c, []ir.Expr{ir.NewIndex(li), ir.NewIndex(lj)}, ir.NewLoadLocal(acc), false)
	lj.Append(lk)
	lj.Append(store)
	li.Append(lj)
	p.Append(li)
	return p
}
