package kernel

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/lnvaderZlM/CS-446/abi"
)

const (
	// FirstPid is the id given to the first process ever created.
	FirstPid = 1001

	// placeholderPid identifies the PCB that stands in for "running" before
	// any program has been loaded. It never enters the process table.
	placeholderPid = 42
)

// BlockState is what a process waits on. The zero value means not blocked.
type BlockState struct {
	blocked bool

	Device DeviceHandle
	Op     int
	Addr   int
}

// Process is the kernel's control block for one process.
type Process struct {
	Pid int

	// Registers is the snapshot taken the last time the process was
	// switched out. Nil until then.
	Registers []int

	block BlockState
}

func newProcess(pid int) *Process {
	return &Process{Pid: pid}
}

func (p *Process) Save(c CPU) {
	regs := c.Registers()

	p.Registers = make([]int, len(regs))
	copy(p.Registers, regs)
}

// Restore loads the snapshot into the CPU. A process that was never saved
// leaves the CPU untouched.
func (p *Process) Restore(c CPU) {
	if p.Registers == nil {
		return
	}

	copy(c.Registers(), p.Registers)
}

// Block marks the process as waiting. Callers must reschedule afterwards.
func (p *Process) Block(dev DeviceHandle, op, addr int) {
	p.block = BlockState{
		blocked: true,
		Device:  dev,
		Op:      op,
		Addr:    addr,
	}
}

func (p *Process) Unblock() {
	p.block = BlockState{}
}

func (p *Process) IsBlocked() bool {
	return p.block.blocked
}

func (p *Process) BlockState() BlockState {
	return p.block
}

// IsBlockedFor reports whether the process waits for op on dev. The address
// only matters for operations other than open.
func (p *Process) IsBlockedFor(dev DeviceHandle, op, addr int) bool {
	if !p.block.blocked || p.block.Device != dev || p.block.Op != op {
		return false
	}

	return op == abi.SysOpen || p.block.Addr == addr
}

// Describe renders the process the way the process table dump shows it.
func (p *Process) Describe(running bool) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Process id %d ", p.Pid)

	switch {
	case p.IsBlocked():
		fmt.Fprintf(&buf, "is BLOCKED on device=%d op=%s: ", p.block.Device, abi.SyscallNames[p.block.Op])
	case running:
		buf.WriteString("is RUNNING: ")
	default:
		buf.WriteString("is READY: ")
	}

	if p.Registers == nil {
		buf.WriteString("<never saved>")
		return buf.String()
	}

	for i := 0; i < abi.NumGenReg; i++ {
		fmt.Fprintf(&buf, "r%d=%d ", i, p.Registers[i])
	}

	fmt.Fprintf(&buf, "PC=%d SP=%d BASE=%d LIM=%d",
		p.Registers[abi.PC], p.Registers[abi.SP], p.Registers[abi.BASE], p.Registers[abi.LIM])

	return buf.String()
}

// ProcessTable holds the live processes in creation order and hands out
// pids. Pids are never reused.
type ProcessTable struct {
	mu      sync.RWMutex
	nextPid int
	procs   []*Process
}

func NewProcessTable() *ProcessTable {
	return &ProcessTable{nextPid: FirstPid}
}

// New creates a process with the next pid and appends it to the table.
func (t *ProcessTable) New() *Process {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := newProcess(t.nextPid)
	t.nextPid++

	t.procs = append(t.procs, p)

	return p
}

func (t *ProcessTable) Remove(pid int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, p := range t.procs {
		if p.Pid == pid {
			t.procs = append(t.procs[:i], t.procs[i+1:]...)
			return true
		}
	}

	return false
}

func (t *ProcessTable) Get(pid int) (*Process, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, p := range t.procs {
		if p.Pid == pid {
			return p, true
		}
	}

	return nil, false
}

func (t *ProcessTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.procs)
}

// Snapshot returns the processes in table order.
func (t *ProcessTable) Snapshot() []*Process {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Process, len(t.procs))
	copy(out, t.procs)

	return out
}
