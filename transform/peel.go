package transform

import "github.com/nadavrot/bistra/ir"

// PeelLast extracts loop's final iteration out of the loop into a plain
// statement sequence immediately following it in parent's body, substituting
// loop's counter with its last value. Useful for giving a boundary iteration
// (e.g. a tail that needs different handling after widen/vectorize) its own
// unconditional statements instead of a guard inside the loop. Grounded in
// original_source's include/bistra/Transforms/Transforms.h peelLoop
// signature.
func PeelLast(parent ir.Stmt, loop *ir.Loop) bool {
	tc := loop.TripCount()
	if tc < 2 {
		return skip("loop has fewer than two iterations; nothing to peel")
	}
	body := scopeBody(parent)
	if body == nil {
		return skip("parent is not a scope")
	}

	lastVal := int64(loop.End) - int64(loop.Stride)
	cc := newCopyCtx()
	peeled := make([]ir.Stmt, 0, len(loop.Statements()))
	for _, st := range loop.Statements() {
		dup := copyStmt(st, cc)
		substituteIndex(dup, loop, lastVal)
		peeled = append(peeled, dup)
	}

	loop.End -= loop.Stride

	newBody := make([]ir.Stmt, 0, len(body)+len(peeled))
	for _, st := range body {
		if st == loop {
			newBody = append(newBody, loop)
			newBody = append(newBody, peeled...)
		} else {
			newBody = append(newBody, st)
		}
	}
	setScopeBody(parent, newBody)
	return ok()
}
