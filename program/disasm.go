package program

import (
	"fmt"
	"io"
	"strings"

	"github.com/lnvaderZlM/CS-446/abi"
)

// FormatInstr renders one encoded instruction. Unknown opcodes are printed
// as raw words.
func FormatInstr(instr []int) string {
	if len(instr) < abi.InstrSize {
		return fmt.Sprintf("%v", instr)
	}

	layout, ok := layouts[instr[0]]
	if !ok {
		return fmt.Sprintf("?? %d %d %d %d", instr[0], instr[1], instr[2], instr[3])
	}

	parts := []string{abi.OpNames[instr[0]]}
	for i, kind := range layout {
		v := instr[i+1]
		if kind == opReg {
			parts = append(parts, fmt.Sprintf("r%d", v))
		} else {
			parts = append(parts, fmt.Sprintf("%d", v))
		}
	}

	return strings.Join(parts, " ")
}

// Disassemble writes one line per instruction, prefixed with the logical
// address it will be loaded at.
func (p *Program) Disassemble(w io.Writer) error {
	for i := 0; i+abi.InstrSize <= len(p.words); i += abi.InstrSize {
		_, err := fmt.Fprintf(w, "%d\t%s\n", abi.HeaderSize+i, FormatInstr(p.words[i:i+abi.InstrSize]))
		if err != nil {
			return err
		}
	}

	return nil
}
