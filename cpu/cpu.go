// Package cpu simulates the processor the kernel runs programs on. It has
// five general purpose registers plus PC, SP, BASE and LIM, fetches four word
// instructions from RAM and hands TRAPs and faults to a registered
// TrapHandler.
package cpu

import (
	"context"
	"fmt"
	"io"

	"github.com/lnvaderZlM/CS-446/abi"
	"github.com/lnvaderZlM/CS-446/log"
	"github.com/lnvaderZlM/CS-446/program"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

var ErrCycleLimit = errors.New("cpu: cycle limit reached")

// TrapHandler is called by the CPU for TRAP instructions and for every fault
// it detects. A handler that wants execution to stop calls Halt.
type TrapHandler interface {
	SystemCall()
	InterruptIllegalMemoryAccess(addr int)
	InterruptDivideByZero()
	InterruptIllegalInstruction(instr []int)
}

type Memory interface {
	Read(addr int) (int, error)
	Write(addr, val int) error
	Size() int
}

type CPU struct {
	L hclog.Logger

	// MaxCycles bounds Run. Zero means no bound.
	MaxCycles int

	regs    [abi.NumReg]int
	mem     Memory
	handler TrapHandler
	halted  bool
	cycles  int
}

func New(mem Memory) *CPU {
	return &CPU{
		L:   log.L.Named("cpu"),
		mem: mem,
	}
}

func (c *CPU) RegisterTrapHandler(h TrapHandler) {
	c.handler = h
}

// Registers returns the live register file. Writes through the slice change
// the CPU state.
func (c *CPU) Registers() []int {
	return c.regs[:]
}

func (c *CPU) Reg(i int) int { return c.regs[i] }

func (c *CPU) PC() int   { return c.regs[abi.PC] }
func (c *CPU) SP() int   { return c.regs[abi.SP] }
func (c *CPU) BASE() int { return c.regs[abi.BASE] }
func (c *CPU) LIM() int  { return c.regs[abi.LIM] }

func (c *CPU) SetPC(v int)   { c.regs[abi.PC] = v }
func (c *CPU) SetSP(v int)   { c.regs[abi.SP] = v }
func (c *CPU) SetBASE(v int) { c.regs[abi.BASE] = v }
func (c *CPU) SetLIM(v int)  { c.regs[abi.LIM] = v }

func (c *CPU) Cycles() int { return c.cycles }

func (c *CPU) Halt() {
	c.halted = true
}

func (c *CPU) Halted() bool {
	return c.halted
}

// ValidMemory reports whether addr lies in the running process's window
// [BASE, LIM) and in RAM.
func (c *CPU) ValidMemory(addr int) bool {
	return addr >= c.BASE() && addr < c.LIM() && addr >= 0 && addr < c.mem.Size()
}

// PushStack stores val below SP. Overflowing the window raises an illegal
// memory access.
func (c *CPU) PushStack(val int) {
	if c.halted {
		return
	}

	sp := c.SP() - 1
	if !c.ValidMemory(sp) {
		c.illegalMemoryAccess(sp)
		return
	}

	if err := c.mem.Write(sp, val); err != nil {
		c.illegalMemoryAccess(sp)
		return
	}

	c.SetSP(sp)
}

// PopStack removes the value at SP. Popping an empty stack raises an illegal
// memory access and yields 0.
func (c *CPU) PopStack() int {
	if c.halted {
		return 0
	}

	sp := c.SP()
	if !c.ValidMemory(sp) {
		c.illegalMemoryAccess(sp)
		return 0
	}

	val, err := c.mem.Read(sp)
	if err != nil {
		c.illegalMemoryAccess(sp)
		return 0
	}

	c.SetSP(sp + 1)
	return val
}

func (c *CPU) RegDump(w io.Writer) {
	for i := 0; i < abi.NumGenReg; i++ {
		fmt.Fprintf(w, "r%d=%d ", i, c.regs[i])
	}

	fmt.Fprintf(w, "PC=%d SP=%d BASE=%d LIM=%d\n", c.PC(), c.SP(), c.BASE(), c.LIM())
}

func (c *CPU) illegalMemoryAccess(addr int) {
	if c.handler == nil {
		c.halted = true
		return
	}

	c.handler.InterruptIllegalMemoryAccess(addr)
}

// Run executes instructions until a handler halts the CPU, ctx is done or
// MaxCycles instructions have run.
func (c *CPU) Run(ctx context.Context) error {
	for !c.halted {
		if err := ctx.Err(); err != nil {
			return err
		}

		if c.MaxCycles > 0 && c.cycles >= c.MaxCycles {
			return errors.Wrapf(ErrCycleLimit, "after %d cycles", c.cycles)
		}

		c.Step()
	}

	return nil
}

// Step fetches and executes the instruction at PC.
func (c *CPU) Step() {
	pc := c.PC()
	if !c.ValidMemory(pc) || !c.ValidMemory(pc+abi.InstrSize-1) {
		c.illegalMemoryAccess(pc)
		return
	}

	var instr [abi.InstrSize]int
	for i := range instr {
		v, err := c.mem.Read(pc + i)
		if err != nil {
			c.illegalMemoryAccess(pc + i)
			return
		}
		instr[i] = v
	}

	c.cycles++

	if c.L.IsTrace() {
		c.L.Trace("cpu-exec", "pc", pc, "instr", program.FormatInstr(instr[:]))
	}

	if !c.execute(instr) {
		return
	}

	if !c.halted {
		c.SetPC(c.PC() + abi.InstrSize)
	}
}

func validReg(r int) bool {
	return r >= 0 && r < abi.NumGenReg
}

// execute runs one instruction and reports whether PC should advance.
func (c *CPU) execute(instr [abi.InstrSize]int) bool {
	op, a, b, d := instr[0], instr[1], instr[2], instr[3]

	illegal := func() bool {
		if c.handler == nil {
			c.halted = true
		} else {
			c.handler.InterruptIllegalInstruction(instr[:])
		}
		return false
	}

	switch op {
	case abi.SET:
		if !validReg(a) {
			return illegal()
		}
		c.regs[a] = b
	case abi.ADD, abi.SUB, abi.MUL, abi.DIV:
		if !validReg(a) || !validReg(b) || !validReg(d) {
			return illegal()
		}

		x, y := c.regs[b], c.regs[d]

		switch op {
		case abi.ADD:
			c.regs[a] = x + y
		case abi.SUB:
			c.regs[a] = x - y
		case abi.MUL:
			c.regs[a] = x * y
		case abi.DIV:
			if y == 0 {
				if c.handler == nil {
					c.halted = true
				} else {
					c.handler.InterruptDivideByZero()
				}
				return false
			}
			c.regs[a] = x / y
		}
	case abi.COPY:
		if !validReg(a) || !validReg(b) {
			return illegal()
		}
		c.regs[a] = c.regs[b]
	case abi.BRANCH:
		c.SetPC(c.BASE() + a)
		return false
	case abi.BNE, abi.BLT:
		if !validReg(a) || !validReg(b) {
			return illegal()
		}

		taken := c.regs[a] != c.regs[b]
		if op == abi.BLT {
			taken = c.regs[a] < c.regs[b]
		}

		if taken {
			c.SetPC(c.BASE() + d)
			return false
		}
	case abi.POP:
		if !validReg(a) {
			return illegal()
		}
		v := c.PopStack()
		if c.halted {
			return false
		}
		c.regs[a] = v
	case abi.PUSH:
		if !validReg(a) {
			return illegal()
		}
		c.PushStack(c.regs[a])
	case abi.LOAD, abi.SAVE:
		if !validReg(a) || !validReg(b) {
			return illegal()
		}

		addr := c.BASE() + c.regs[b]
		if !c.ValidMemory(addr) {
			c.illegalMemoryAccess(addr)
			return false
		}

		if op == abi.LOAD {
			v, err := c.mem.Read(addr)
			if err != nil {
				c.illegalMemoryAccess(addr)
				return false
			}
			c.regs[a] = v
		} else if err := c.mem.Write(addr, c.regs[a]); err != nil {
			c.illegalMemoryAccess(addr)
			return false
		}
	case abi.TRAP:
		if c.handler != nil {
			c.handler.SystemCall()
		}
	default:
		return illegal()
	}

	return true
}
