package ir

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a human-readable rendering of s to w, grounded in
// original_source's Program::dump()/Scope::dump() family. It is a debugging
// aid for autotuning traces, not the bytecode wire format (see package
// bytecode for that).
func Fprint(w io.Writer, s Stmt) {
	fprintStmt(w, s, 0)
}

func indent(w io.Writer, depth int) {
	io.WriteString(w, strings.Repeat("  ", depth))
}

func fprintStmt(w io.Writer, s Stmt, depth int) {
	switch n := s.(type) {
	case *Program:
		fmt.Fprintf(w, "func %s(", n.Name)
		for i, a := range n.Args {
			if i > 0 {
				io.WriteString(w, ", ")
			}
			fmt.Fprintf(w, "%s: %s", a.Name, a.Type)
		}
		io.WriteString(w, ") {\n")
		for _, st := range n.Statements() {
			fprintStmt(w, st, depth+1)
		}
		io.WriteString(w, "}\n")
	case *Loop:
		indent(w, depth)
		fmt.Fprintf(w, "for (%s in 0..%d step %d) {\n", n.IndexName, n.End, n.Stride)
		for _, st := range n.Statements() {
			fprintStmt(w, st, depth+1)
		}
		indent(w, depth)
		io.WriteString(w, "}\n")
	case *IfRange:
		indent(w, depth)
		fmt.Fprintf(w, "if (%d <= ", n.Lo)
		fprintExpr(w, n.Index.Get())
		fmt.Fprintf(w, " < %d) {\n", n.Hi)
		for _, st := range n.Statements() {
			fprintStmt(w, st, depth+1)
		}
		indent(w, depth)
		io.WriteString(w, "}\n")
	case *StoreStmt:
		indent(w, depth)
		fmt.Fprintf(w, "%s[", n.Dest.Name)
		fprintExprList(w, n.Indices)
		if n.Accumulate {
			io.WriteString(w, "] += ")
		} else {
			io.WriteString(w, "] = ")
		}
		fprintExpr(w, n.Value.Get())
		io.WriteString(w, ";\n")
	case *StoreLocalStmt:
		indent(w, depth)
		io.WriteString(w, n.Dest.Name)
		if n.Accumulate {
			io.WriteString(w, " += ")
		} else {
			io.WriteString(w, " = ")
		}
		fprintExpr(w, n.Value.Get())
		io.WriteString(w, ";\n")
	case *CallStmt:
		indent(w, depth)
		fmt.Fprintf(w, "%s(", n.Name)
		fprintExprList(w, n.Params)
		io.WriteString(w, ");\n")
	default:
		panic("ir: Fprint: unhandled Stmt variant")
	}
}

func fprintExprList(w io.Writer, handles []ExprHandle) {
	for i, h := range handles {
		if i > 0 {
			io.WriteString(w, ", ")
		}
		fprintExpr(w, h.Get())
	}
}

func fprintExpr(w io.Writer, e Expr) {
	switch n := e.(type) {
	case *ConstantExpr:
		fmt.Fprintf(w, "%d", n.Value)
	case *ConstantFPExpr:
		fmt.Fprintf(w, "%g", n.Value)
	case *ConstantStringExpr:
		fmt.Fprintf(w, "%q", n.Value)
	case *IndexExpr:
		io.WriteString(w, n.Loop.IndexName)
	case *LoadExpr:
		fmt.Fprintf(w, "%s[", n.Src.Name)
		fprintExprList(w, n.Indices)
		io.WriteString(w, "]")
	case *LoadLocalExpr:
		io.WriteString(w, n.Src.Name)
	case *BinaryExpr:
		io.WriteString(w, "(")
		fprintExpr(w, n.LHS.Get())
		fmt.Fprintf(w, " %s ", n.Op)
		fprintExpr(w, n.RHS.Get())
		io.WriteString(w, ")")
	case *UnaryExpr:
		fmt.Fprintf(w, "%s(", n.Op)
		fprintExpr(w, n.Val.Get())
		io.WriteString(w, ")")
	case *BroadcastExpr:
		fmt.Fprintf(w, "broadcast(")
		fprintExpr(w, n.Val.Get())
		fmt.Fprintf(w, ", %d)", n.Width)
	case *GEPExpr:
		fmt.Fprintf(w, "&%s[", n.Dest.Name)
		fprintExprList(w, n.Indices)
		io.WriteString(w, "]")
	default:
		panic("ir: Fprint: unhandled Expr variant")
	}
}

// String renders a statement subtree via Fprint, for use in tests and
// autotuning trace output.
func String(s Stmt) string {
	var b strings.Builder
	Fprint(&b, s)
	return b.String()
}
