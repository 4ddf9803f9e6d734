package kernel

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrOutOfMemory         = errors.New("out of memory")
	ErrBadAllocSize        = errors.New("bad allocation size")
	ErrDeadlock            = errors.New("every process is blocked")
	ErrNoPrograms          = errors.New("no programs registered")
	ErrDuplicateDevice     = errors.New("device id already registered")
	ErrIllegalMemoryAccess = errors.New("illegal memory access")
	ErrDivideByZero        = errors.New("divide by zero")
	ErrIllegalInstruction  = errors.New("illegal instruction")
)

type TerminationKind int

const (
	// Completed means the process table drained. It is the normal end of a
	// simulation.
	Completed TerminationKind = iota
	OutOfMemory
	Deadlock
	NoPrograms
	IllegalMemoryAccess
	DivideByZero
	IllegalInstruction
)

var terminationNames = map[TerminationKind]string{
	Completed:           "completed",
	OutOfMemory:         "out-of-memory",
	Deadlock:            "deadlock",
	NoPrograms:          "no-programs",
	IllegalMemoryAccess: "illegal-memory-access",
	DivideByZero:        "divide-by-zero",
	IllegalInstruction:  "illegal-instruction",
}

func (t TerminationKind) String() string {
	if s, ok := terminationNames[t]; ok {
		return s
	}

	return fmt.Sprintf("termination(%d)", int(t))
}

// Termination records why the simulation stopped. Err is nil only for
// Completed.
type Termination struct {
	Kind TerminationKind
	Err  error
}

func (t *Termination) String() string {
	if t.Err == nil {
		return t.Kind.String()
	}

	return fmt.Sprintf("%s: %s", t.Kind, t.Err)
}
