package bytecode

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/nadavrot/bistra/ir"
	"github.com/nadavrot/bistra/types"
)

// tables accumulates the three interned tables a stream's header carries,
// plus the per-program argument/local-var id maps the body encoding needs
// (those aren't one of the spec's three interned tables — they're fixed-
// size arrays attached to the Program node itself, each entry already
// naming one of the interned strings/types).
type tables struct {
	strings    []string
	stringID   map[string]uint32
	exprTypes  []types.ExprType
	exprTypeID map[types.ExprType]uint32
	tensors    []types.TensorType
	tensorID   map[string]uint32

	args   map[*types.Argument]uint32
	locals map[*types.LocalVar]uint32
	loops  map[*ir.Loop]uint32
}

func newTables() *tables {
	return &tables{
		stringID:   make(map[string]uint32),
		exprTypeID: make(map[types.ExprType]uint32),
		tensorID:   make(map[string]uint32),
		args:       make(map[*types.Argument]uint32),
		locals:     make(map[*types.LocalVar]uint32),
		loops:      make(map[*ir.Loop]uint32),
	}
}

func (t *tables) intern(s string) uint32 {
	if id, ok := t.stringID[s]; ok {
		return id
	}
	id := uint32(len(t.strings))
	t.strings = append(t.strings, s)
	t.stringID[s] = id
	return id
}

func (t *tables) internExprType(et types.ExprType) uint32 {
	if id, ok := t.exprTypeID[et]; ok {
		return id
	}
	id := uint32(len(t.exprTypes))
	t.exprTypes = append(t.exprTypes, et)
	t.exprTypeID[et] = id
	return id
}

func (t *tables) internTensorType(tt types.TensorType) uint32 {
	for _, e := range tt.Extents {
		t.intern(e.Name)
	}
	key := tt.String()
	if id, ok := t.tensorID[key]; ok {
		return id
	}
	id := uint32(len(t.tensors))
	t.tensors = append(t.tensors, tt)
	t.tensorID[key] = id
	return id
}

func (t *tables) argID(a *types.Argument) uint32 {
	id, ok := t.args[a]
	if !ok {
		panic("bytecode: argument referenced before it was declared on the program")
	}
	return id
}

func (t *tables) localID(l *types.LocalVar) uint32 {
	id, ok := t.locals[l]
	if !ok {
		panic("bytecode: local variable referenced before it was declared on the program")
	}
	return id
}

// collect walks p once to populate the interned tables and the argument/
// local id maps, so the body pass below can write references before it has
// necessarily finished writing the corresponding declaration's bytes.
func collect(t *tables, p *ir.Program) {
	t.intern(p.Name)
	for i, a := range p.Args {
		t.args[a] = uint32(i)
		t.intern(a.Name)
		t.internTensorType(a.Type)
	}
	for i, l := range p.Locals {
		t.locals[l] = uint32(i)
		t.intern(l.Name)
		t.internExprType(l.Type)
	}
	collectStmt(t, p)
}

func collectStmt(t *tables, s ir.Stmt) {
	switch n := s.(type) {
	case *ir.Program:
		for _, st := range n.Statements() {
			collectStmt(t, st)
		}
	case *ir.Loop:
		t.loops[n] = uint32(len(t.loops))
		t.intern(n.IndexName)
		for _, st := range n.Statements() {
			collectStmt(t, st)
		}
	case *ir.IfRange:
		collectExpr(t, n.Index.Get())
		for _, st := range n.Statements() {
			collectStmt(t, st)
		}
	case *ir.StoreStmt:
		for _, idx := range n.Indices {
			collectExpr(t, idx.Get())
		}
		collectExpr(t, n.Value.Get())
	case *ir.StoreLocalStmt:
		collectExpr(t, n.Value.Get())
	case *ir.CallStmt:
		t.intern(n.Name)
		for _, p := range n.Params {
			collectExpr(t, p.Get())
		}
	default:
		panic("bytecode: unhandled Stmt variant in collect")
	}
}

func collectExpr(t *tables, e ir.Expr) {
	switch n := e.(type) {
	case *ir.ConstantExpr, *ir.IndexExpr:
	case *ir.ConstantFPExpr:
	case *ir.ConstantStringExpr:
		t.intern(n.Value)
	case *ir.LoadExpr:
		for _, idx := range n.Indices {
			collectExpr(t, idx.Get())
		}
		t.internExprType(n.ValueType)
	case *ir.LoadLocalExpr:
	case *ir.BinaryExpr:
		collectExpr(t, n.LHS.Get())
		collectExpr(t, n.RHS.Get())
		t.internExprType(n.RType)
	case *ir.UnaryExpr:
		collectExpr(t, n.Val.Get())
	case *ir.BroadcastExpr:
		collectExpr(t, n.Val.Get())
	case *ir.GEPExpr:
		for _, idx := range n.Indices {
			collectExpr(t, idx.Get())
		}
	default:
		panic("bytecode: unhandled Expr variant in collect")
	}
}

// Serialize writes p to w in the wire format spec.md section 6.3 defines:
// magic, interned string/ExprType/TensorType tables, then the program body
// as a pre-order tag tree.
func Serialize(w io.Writer, p *ir.Program) error {
	t := newTables()
	collect(t, p)

	bw := bufio.NewWriter(w)
	e := &encoder{w: bw, t: t}

	if _, err := bw.Write(Magic[:]); err != nil {
		return err
	}
	e.writeStringTable()
	e.writeExprTypeTable()
	e.writeTensorTypeTable()
	e.writeProgram(p)

	if e.err != nil {
		return e.err
	}
	return bw.Flush()
}

// encoder holds the single error any Write call sets; callers check it once
// at the end instead of threading an error return through every write —
// the same pattern gogpu-naga's module writer uses for its instruction
// stream.
type encoder struct {
	w   *bufio.Writer
	t   *tables
	err error
}

func (e *encoder) u8(v uint8) {
	if e.err != nil {
		return
	}
	e.err = e.w.WriteByte(v)
}

func (e *encoder) u32(v uint32) {
	if e.err != nil {
		return
	}
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, e.err = e.w.Write(buf[:])
}

func (e *encoder) u64(v uint64) {
	if e.err != nil {
		return
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, e.err = e.w.Write(buf[:])
}

func (e *encoder) i64(v int64) { e.u64(uint64(v)) }

func (e *encoder) f64(v float64) { e.u64(mathFloatBits(v)) }

func (e *encoder) bytes(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *encoder) str(id uint32) { e.u32(id) }

func (e *encoder) writeStringTable() {
	e.u32(uint32(len(e.t.strings)))
	for _, s := range e.t.strings {
		if len(s) > 255 {
			e.err = errStringTooLong(s)
			return
		}
		e.u8(uint8(len(s)))
		e.bytes([]byte(s))
	}
}

func (e *encoder) writeExprTypeTable() {
	e.u32(uint32(len(e.t.exprTypes)))
	for _, et := range e.t.exprTypes {
		e.u8(uint8(et.Elem))
		e.u8(uint8(et.Width))
	}
}

func (e *encoder) writeTensorTypeTable() {
	e.u32(uint32(len(e.t.tensors)))
	for _, tt := range e.t.tensors {
		e.u8(uint8(tt.Elem))
		e.u8(uint8(len(tt.Extents)))
		for _, ext := range tt.Extents {
			e.u32(ext.Size)
			e.str(e.t.stringID[ext.Name])
		}
	}
}

func (e *encoder) writeProgram(p *ir.Program) {
	e.u8(uint8(tagProgram))
	e.str(e.t.stringID[p.Name])
	e.u32(uint32(len(p.Args)))
	for _, a := range p.Args {
		e.str(e.t.stringID[a.Name])
		e.u32(e.t.internTensorType(a.Type))
	}
	e.u32(uint32(len(p.Locals)))
	for _, l := range p.Locals {
		e.str(e.t.stringID[l.Name])
		e.u32(e.t.internExprType(l.Type))
	}
	e.writeStmtList(p.Statements())
}

func (e *encoder) writeStmtList(body []ir.Stmt) {
	e.u32(uint32(len(body)))
	for _, s := range body {
		e.writeStmt(s)
	}
}

func (e *encoder) writeStmt(s ir.Stmt) {
	switch n := s.(type) {
	case *ir.Loop:
		e.u8(uint8(tagLoop))
		e.str(e.t.stringID[n.IndexName])
		e.u64(n.End)
		e.u64(n.Stride)
		e.writeStmtList(n.Statements())
	case *ir.IfRange:
		e.u8(uint8(tagIfRange))
		e.writeExpr(n.Index.Get())
		e.i64(n.Lo)
		e.i64(n.Hi)
		e.writeStmtList(n.Statements())
	case *ir.StoreStmt:
		e.u8(uint8(tagStoreStmt))
		e.u32(e.t.argID(n.Dest))
		e.u32(uint32(len(n.Indices)))
		for _, idx := range n.Indices {
			e.writeExpr(idx.Get())
		}
		e.writeExpr(n.Value.Get())
		e.writeBool(n.Accumulate)
	case *ir.StoreLocalStmt:
		e.u8(uint8(tagStoreLocalStmt))
		e.u32(e.t.localID(n.Dest))
		e.writeExpr(n.Value.Get())
		e.writeBool(n.Accumulate)
	case *ir.CallStmt:
		e.u8(uint8(tagCallStmt))
		e.str(e.t.stringID[n.Name])
		e.u32(uint32(len(n.Params)))
		for _, p := range n.Params {
			e.writeExpr(p.Get())
		}
	default:
		panic("bytecode: unhandled Stmt variant in Serialize")
	}
}

func (e *encoder) writeBool(b bool) {
	if b {
		e.u8(1)
	} else {
		e.u8(0)
	}
}

func (e *encoder) writeExpr(expr ir.Expr) {
	switch n := expr.(type) {
	case *ir.ConstantExpr:
		e.u8(uint8(tagConstant))
		e.i64(n.Value)
	case *ir.ConstantFPExpr:
		e.u8(uint8(tagConstantFP))
		e.f64(n.Value)
	case *ir.ConstantStringExpr:
		e.u8(uint8(tagConstantString))
		e.str(e.t.stringID[n.Value])
	case *ir.IndexExpr:
		e.u8(uint8(tagIndex))
		id, ok := e.t.loops[n.Loop]
		if !ok {
			e.err = errDanglingLoopRef()
			return
		}
		e.u32(id)
	case *ir.LoadExpr:
		e.u8(uint8(tagLoad))
		e.u32(e.t.argID(n.Src))
		e.u32(uint32(len(n.Indices)))
		for _, idx := range n.Indices {
			e.writeExpr(idx.Get())
		}
		e.u32(e.t.internExprType(n.ValueType))
	case *ir.LoadLocalExpr:
		e.u8(uint8(tagLoadLocal))
		e.u32(e.t.localID(n.Src))
	case *ir.BinaryExpr:
		e.u8(uint8(tagBinary))
		e.u8(uint8(n.Op))
		e.writeExpr(n.LHS.Get())
		e.writeExpr(n.RHS.Get())
		e.u32(e.t.internExprType(n.RType))
	case *ir.UnaryExpr:
		e.u8(uint8(tagUnary))
		e.u8(uint8(n.Op))
		e.writeExpr(n.Val.Get())
	case *ir.BroadcastExpr:
		e.u8(uint8(tagBroadcast))
		e.writeExpr(n.Val.Get())
		e.u32(n.Width)
	case *ir.GEPExpr:
		e.u8(uint8(tagGEP))
		e.u32(e.t.argID(n.Dest))
		e.u32(uint32(len(n.Indices)))
		for _, idx := range n.Indices {
			e.writeExpr(idx.Get())
		}
	default:
		panic("bytecode: unhandled Expr variant in Serialize")
	}
}
