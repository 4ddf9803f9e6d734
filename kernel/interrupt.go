package kernel

import (
	"fmt"

	"github.com/lnvaderZlM/CS-446/program"
	"github.com/pkg/errors"
)

// Every fault ends the whole simulation, not just the faulting process.

func (k *Kernel) InterruptIllegalMemoryAccess(addr int) {
	fmt.Fprintf(k.out, "Error: Illegal Memory Access at addr %d\n", addr)

	k.halt(IllegalMemoryAccess, errors.Wrapf(ErrIllegalMemoryAccess,
		"pid=%d addr=%d base=%d lim=%d", k.current.Pid, addr, k.cpu.BASE(), k.cpu.LIM()))
}

func (k *Kernel) InterruptDivideByZero() {
	fmt.Fprintln(k.out, "Error: Divide by Zero")

	k.halt(DivideByZero, errors.Wrapf(ErrDivideByZero, "pid=%d pc=%d", k.current.Pid, k.cpu.PC()))
}

func (k *Kernel) InterruptIllegalInstruction(instr []int) {
	fmt.Fprintf(k.out, "Error: Illegal Instruction:\n%s\n", joinWords(instr))

	k.halt(IllegalInstruction, errors.Wrapf(ErrIllegalInstruction,
		"pid=%d pc=%d instr=%q", k.current.Pid, k.cpu.PC(), program.FormatInstr(instr)))
}

func joinWords(words []int) string {
	s := ""
	for i, w := range words {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprint(w)
	}

	return s
}
