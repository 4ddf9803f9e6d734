// Package program holds the executable images the kernel can turn into
// processes, and the assembler that produces them.
package program

import (
	"fmt"

	"github.com/lnvaderZlM/CS-446/abi"
)

type Program struct {
	Name string

	// DefaultAllocSize is the address space to give a process running this
	// program. Zero or less means the kernel picks.
	DefaultAllocSize int

	// CallCount is the number of processes that have been spawned from this
	// program. Only ever incremented.
	CallCount int

	words []int
}

// New wraps already encoded instruction words.
func New(name string, words []int) *Program {
	w := make([]int, len(words))
	copy(w, words)

	return &Program{Name: name, words: w}
}

// Export returns a copy of the encoded instructions.
func (p *Program) Export() []int {
	w := make([]int, len(p.words))
	copy(w, p.words)
	return w
}

// Size is the number of words in the encoded program.
func (p *Program) Size() int {
	return len(p.words)
}

func (p *Program) Instructions() int {
	return len(p.words) / abi.InstrSize
}

func (p *Program) String() string {
	return fmt.Sprintf("%s (%d instrs, alloc=%d, calls=%d)", p.Name, p.Instructions(), p.DefaultAllocSize, p.CallCount)
}
