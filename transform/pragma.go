package transform

import "github.com/nadavrot/bistra/ir"

// PragmaKind is the transform a Command requests. Grounded in
// original_source's include/bistra/Program/Pragma.h PragmaKind.
type PragmaKind int

const (
	PragmaVectorize PragmaKind = iota
	PragmaUnroll
	PragmaWiden
	PragmaTile
	PragmaPeel
	PragmaHoist
	PragmaOther
)

func (k PragmaKind) String() string {
	switch k {
	case PragmaVectorize:
		return "vectorize"
	case PragmaUnroll:
		return "unroll"
	case PragmaWiden:
		return "widen"
	case PragmaTile:
		return "tile"
	case PragmaPeel:
		return "peel"
	case PragmaHoist:
		return "hoist"
	default:
		return "other"
	}
}

// Command is a single source-level transform annotation targeting one loop,
// mirroring original_source's PragmaCommand (kind_, param_, L_, loc_ minus
// the source location, which belongs to the external parser).
type Command struct {
	Kind  PragmaKind
	Param uint64
	Loop  *ir.Loop
}

// Apply dispatches cmd to the transform it names. parent is the scope
// directly containing cmd.Loop, needed by pragmas that change the loop's
// position in the tree (peel) rather than only its own fields (vectorize,
// unroll, widen, tile, hoist).
func Apply(parent ir.Stmt, cmd Command) bool {
	switch cmd.Kind {
	case PragmaVectorize:
		return Vectorize(cmd.Loop, uint32(cmd.Param))
	case PragmaUnroll:
		return Unroll(cmd.Loop, cmd.Param)
	case PragmaWiden:
		return Widen(cmd.Loop, cmd.Param)
	case PragmaTile:
		return Tile(cmd.Loop, cmd.Param)
	case PragmaPeel:
		return PeelLast(parent, cmd.Loop)
	case PragmaHoist:
		return Hoist(cmd.Loop)
	default:
		return skip("unsupported pragma kind: " + cmd.Kind.String())
	}
}
