// Package bytecode implements the wire format spec.md section 6.3 defines
// for a compiled bistra program: a big-endian stream opening with a magic
// number, three interned tables (strings, ExprTypes, TensorTypes), and the
// program body as a pre-order tag-and-children tree. Grounded in
// gogpu-naga's binary SPIR-V-adjacent module encoder for the general shape
// of an interned-table-plus-tree wire format; the magic/table/tag layout
// itself is spec.md's own.
package bytecode

// Magic is the four-byte file header every bistra bytecode stream begins
// with.
var Magic = [4]byte{0x03, 0x07, 0x01, 0x02}

// tag identifies one IR node's shape in the pre-order body encoding. Values
// are part of the wire format and must never be renumbered once shipped.
type tag uint8

const (
	tagProgram tag = iota
	tagLoop
	tagIfRange
	tagStoreStmt
	tagStoreLocalStmt
	tagCallStmt

	tagConstant
	tagConstantFP
	tagConstantString
	tagIndex
	tagLoad
	tagLoadLocal
	tagBinary
	tagUnary
	tagBroadcast
	tagGEP
)
