package bytecode

import (
	"fmt"
	"math"
)

func mathFloatBits(v float64) uint64 { return math.Float64bits(v) }
func mathFloatFromBits(b uint64) float64 { return math.Float64frombits(b) }

func errStringTooLong(s string) error {
	return fmt.Errorf("bytecode: string %q exceeds the 255-byte wire limit", s)
}

func errDanglingLoopRef() error {
	return fmt.Errorf("bytecode: IndexExpr references a Loop not reachable from the program root")
}
