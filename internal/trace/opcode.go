package trace

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"
)

// Opcode identifies the kind of a trace event. The numeric values are the
// codes written by the instrumentation.
type Opcode uint8

const (
	Alloc   Opcode = iota + 1 // 1 objId type
	FLoad                     // 2 ...
	FStore                    // 3 _ newReferee oldReferee _ holder
	MCall                     // 4 _ caller owner args...
	Dealloc                   // 5 objId
	MExit                     // 6 _ _ _ scopeOwner objs...
	VStore                    // 7 newVal oldVal holder
)

var opcodeNames = map[Opcode]string{
	Alloc:   "ALLOC",
	FLoad:   "FLOAD",
	FStore:  "FSTORE",
	MCall:   "MCALL",
	Dealloc: "DEALLOC",
	MExit:   "MEXIT",
	VStore:  "VSTORE",
}

// minFields is the number of fields, opcode included, an event must carry
// for the interpreter to find every operand it reads.
var minFields = map[Opcode]int{
	Alloc:   3,
	FLoad:   1,
	FStore:  6,
	MCall:   4,
	Dealloc: 2,
	MExit:   5,
	VStore:  4,
}

// Opcodes lists every known opcode in code order.
func Opcodes() []Opcode {
	return []Opcode{Alloc, FLoad, FStore, MCall, Dealloc, MExit, VStore}
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(%d)", uint8(op))
}

func (op Opcode) Valid() bool {
	_, ok := opcodeNames[op]
	return ok
}

// ParseOpcode converts the first field of a trace line.
func ParseOpcode(s string) (Opcode, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownOpcode, s)
	}
	code, err := safecast.Conv[uint8](n)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownOpcode, s)
	}
	op := Opcode(code)
	if !op.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownOpcode, s)
	}
	return op, nil
}
