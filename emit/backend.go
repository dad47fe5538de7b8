// Package emit defines the contract between the optimizer and a concrete
// code generator, and ships one reference implementation — a cost-model
// backend that estimates running time from the roofline analysis instead of
// lowering to machine code. A genuine LLVM/native backend mirrors
// original_source/lib/Backends/LLVMBackend/LLVMBackend.cpp closely enough
// that writing one here would blur the explicit scope boundary spec.md
// section 1 draws around concrete code generation; emit.Backend exists so
// that boundary has a concrete Go shape to plug into.
package emit

import (
	"context"

	"github.com/nadavrot/bistra/ir"
)

// Backend lowers and/or times a program, returning an estimated or measured
// running time in seconds. It is the same shape optimizer.Backend expects;
// emit.Backend exists as its own named interface so a concrete emitter
// package can depend on emit without importing optimizer.
type Backend interface {
	Evaluate(ctx context.Context, p *ir.Program) (seconds float64, err error)
}

// LoweringContract documents, without implementing, the per-node lowering
// obligations spec.md section 4.6 assigns to a real backend: Program.Args
// and Program.Locals become the callee's parameter list and stack frame;
// each Loop becomes a counted loop over IndexName from 0 by Stride below
// End; LoadExpr/StoreStmt become (possibly vector) memory operations at the
// tensor's strides; BinaryExpr/UnaryExpr become the matching scalar or SIMD
// instruction for RType.Width; IfRange becomes a compare-and-branch or a
// masked/ predicated op; CallStmt becomes a direct call to Name with
// Params lowered positionally. No implementation is provided: an external
// code generator owns the actual lowering.
type LoweringContract interface {
	Backend
}
