// Package parser defines the boundary between bistra source text and the
// IR the rest of this module operates on. The lexer and parser themselves
// are out of scope (SPEC_FULL.md section 1): this package specifies the
// contract cmd/bistrac depends on, so the CLI and driver are exercisable
// against a stub or a future concrete implementation without either of
// them knowing which.
package parser

import (
	"github.com/nadavrot/bistra/ir"
)

// Diagnostic is one accumulated parse error: a message plus the 1-based
// line/column it was detected at. Grounded in spec.md section 7's parse
// error taxonomy (unexpected token, missing punctuation, unknown
// identifier, wrong dimension name, arity mismatch) — the parser records
// one of these and resynchronizes rather than aborting on the first error.
type Diagnostic struct {
	Message string
	Line    int
	Column  int
}

func (d Diagnostic) Error() string {
	return d.Message
}

// Frontend turns bistra source text into a verified *ir.Program, or a set
// of diagnostics if it could not. A real implementation accumulates
// Diagnostics across the whole input before returning (spec.md section 7's
// "continues by skipping to a synchronization token" policy) rather than
// stopping at the first one.
type Frontend interface {
	// Parse lexes and parses source (named name for diagnostic messages,
	// typically the source file path) into a Program. A non-empty
	// Diagnostic slice does not necessarily mean prog is nil: a frontend
	// may return a best-effort program alongside recorded errors.
	Parse(source, name string) (prog *ir.Program, diags []Diagnostic, err error)
}
