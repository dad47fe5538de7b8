package ir

import (
	"fmt"
	"regexp"

	"github.com/nadavrot/bistra/types"
)

// nameRe is the legal identifier pattern for arguments, locals and loop
// indices (well-formedness rule (c)).
var nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidName reports whether name matches [A-Za-z_][A-Za-z0-9_]*.
func ValidName(name string) bool { return nameRe.MatchString(name) }

// verifier walks a Program checking well-formedness rules (a)-(e) of data
// model section 3. It is a debug-time assertion boundary (section 7): a
// transform must leave the IR verified before handing off.
type verifier struct {
	BaseVisitor
	errs      []error
	loopStack []*Loop
}

// Verify checks p against the well-formedness rules of data model section 3
// and returns every violation found (nil if p is well-formed).
func Verify(p *Program) []error {
	v := &verifier{}
	v.checkProgramNames(p)
	WalkStmt(p, v)
	return v.errs
}

func (v *verifier) fail(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *verifier) checkProgramNames(p *Program) {
	if !ValidName(p.Name) && p.Name != "" {
		v.fail("program name %q is not a legal identifier", p.Name)
	}
	for _, a := range p.Args {
		if !ValidName(a.Name) {
			v.fail("argument name %q is not a legal identifier", a.Name)
		}
	}
	for _, l := range p.Locals {
		if !ValidName(l.Name) {
			v.fail("local name %q is not a legal identifier", l.Name)
		}
	}
}

func (v *verifier) EnterStmt(s Stmt) {
	switch n := s.(type) {
	case *Loop:
		if !ValidName(n.IndexName) {
			v.fail("loop index name %q is not a legal identifier", n.IndexName)
		}
		if n.Stride == 0 {
			v.fail("loop %q: stride must be >= 1, got 0", n.IndexName)
		} else if n.End == 0 {
			v.fail("loop %q: end must be > 0, got 0", n.IndexName)
		} else if n.End%n.Stride != 0 {
			v.fail("loop %q: end (%d) must be a multiple of stride (%d)", n.IndexName, n.End, n.Stride)
		}
		v.loopStack = append(v.loopStack, n)
	case *StoreStmt:
		v.checkIndexedAccess(n.Dest.Type, n.Indices, n.Value.Get().Type(), "StoreStmt")
		if !ValidName(n.Dest.Name) {
			v.fail("StoreStmt: destination name %q is not a legal identifier", n.Dest.Name)
		}
	}
}

func (v *verifier) LeaveStmt(s Stmt) {
	if _, ok := s.(*Loop); ok {
		v.loopStack = v.loopStack[:len(v.loopStack)-1]
	}
}

func (v *verifier) EnterExpr(e Expr) {
	switch n := e.(type) {
	case *BinaryExpr:
		lt, rt := n.LHS.Get().Type(), n.RHS.Get().Type()
		if !lt.Equal(rt) {
			v.fail("BinaryExpr %s: operand type mismatch: lhs=%s rhs=%s", n.Op, lt, rt)
		}
	case *LoadExpr:
		v.checkIndexedAccess(n.Src.Type, n.Indices, n.ValueType, "LoadExpr")
	case *IndexExpr:
		if !v.isProperAncestor(n.Loop) {
			v.fail("IndexExpr for loop %q: loop is not a proper ancestor (invariant L1)", n.Loop.IndexName)
		}
	}
}

// checkIndexedAccess implements well-formedness rule (b): #indices equals
// #extents, each index is a scalar of the index kind (an access always
// addresses a single base element; ValueType.Width, independent of the
// indices, says how many contiguous elements starting there the access
// touches — vectorize/widen raise it without turning any index into a
// vector of offsets), and the value's element kind matches the tensor's.
func (v *verifier) checkIndexedAccess(tt types.TensorType, indices []ExprHandle, valueType types.ExprType, kind string) {
	if len(indices) != tt.NumDims() {
		v.fail("%s: %d indices provided for a %d-dimensional tensor", kind, len(indices), tt.NumDims())
		return
	}
	if valueType.Elem != tt.Elem {
		v.fail("%s: value element kind %s does not match tensor element kind %s", kind, valueType.Elem, tt.Elem)
	}
	for i, idx := range indices {
		it := idx.Get().Type()
		if it.Elem != types.Index {
			v.fail("%s: index %d has element kind %s, want index", kind, i, it.Elem)
			continue
		}
		if it.Width != 1 {
			v.fail("%s: index %d must be scalar, got width %d", kind, i, it.Width)
		}
	}
}

func (v *verifier) isProperAncestor(l *Loop) bool {
	for _, anc := range v.loopStack {
		if anc == l {
			return true
		}
	}
	return false
}
