package kernel

import (
	"github.com/lnvaderZlM/CS-446/abi"
	"github.com/lnvaderZlM/CS-446/program"
	"github.com/pkg/errors"
)

// CreateProcess loads prog into a fresh window of allocSize words at the
// next load position and makes the new process the running one. Running out
// of RAM halts the simulation; memory is never reclaimed.
func (k *Kernel) CreateProcess(prog *program.Program, allocSize int) error {
	if allocSize <= 0 {
		return errors.Wrapf(ErrBadAllocSize, "program=%s alloc=%d", prog.Name, allocSize)
	}

	if abi.HeaderSize+prog.Size() > allocSize {
		return errors.Wrapf(ErrBadAllocSize, "program=%s needs %d words, alloc=%d",
			prog.Name, abi.HeaderSize+prog.Size(), allocSize)
	}

	if k.nextLoadPos+allocSize > k.ram.Size() {
		err := errors.Wrapf(ErrOutOfMemory, "program=%s needs %d words at %d, ram has %d",
			prog.Name, allocSize, k.nextLoadPos, k.ram.Size())
		k.halt(OutOfMemory, err)
		return err
	}

	k.current.Save(k.cpu)

	base := k.nextLoadPos

	k.cpu.SetBASE(base)
	k.cpu.SetLIM(base + allocSize)
	k.cpu.SetPC(base + abi.HeaderSize)
	k.cpu.SetSP(base + allocSize)

	// The header jumps to the entry point so a process can be started at
	// BASE as well as resumed after a trap at BASE.
	header := [abi.HeaderSize]int{abi.BRANCH, abi.HeaderSize}
	for i, w := range header {
		if err := k.ram.Write(base+i, w); err != nil {
			return err
		}
	}

	for i, w := range prog.Export() {
		if err := k.ram.Write(base+abi.HeaderSize+i, w); err != nil {
			return err
		}
	}

	k.nextLoadPos += allocSize

	p := k.processes.New()
	k.current = p

	k.L.Debug("process-create", "pid", p.Pid, "program", prog.Name, "base", base, "alloc", allocSize)
	k.PrintProcessTable()

	return nil
}

// AllocSize is the window a process of prog gets: its default if set,
// otherwise twice its size.
func AllocSize(prog *program.Program) int {
	if prog.DefaultAllocSize > 0 {
		return prog.DefaultAllocSize
	}

	return prog.Size() * 2
}

// Spawn starts a process running prog. The PC is left one instruction short
// of the entry point, where the CPU's post-trap increment or the header
// branch takes it.
func (k *Kernel) Spawn(prog *program.Program) error {
	prog.CallCount++

	if err := k.CreateProcess(prog, AllocSize(prog)); err != nil {
		return err
	}

	k.cpu.SetPC(k.cpu.PC() - abi.InstrSize)

	return nil
}

// SelectProgram picks the program EXEC runs next according to the exec
// policy.
func (k *Kernel) SelectProgram() (*program.Program, error) {
	progs := k.Programs()
	if len(progs) == 0 {
		return nil, ErrNoPrograms
	}

	least := progs[0].CallCount
	for _, p := range progs {
		if p.CallCount < least {
			least = p.CallCount
		}
	}

	cands := progs
	if k.opts.ExecPolicy == ExecLeastUsed {
		cands = nil
		for _, p := range progs {
			if p.CallCount == least {
				cands = append(cands, p)
			}
		}
	}

	prog := cands[k.rnd.Intn(len(cands))]

	k.L.Trace("exec-select", "policy", k.opts.ExecPolicy, "program", prog.Name, "calls", prog.CallCount, "least", least)

	return prog, nil
}

// Exec spawns a process from the catalog. An empty catalog halts the
// simulation.
func (k *Kernel) Exec() error {
	prog, err := k.SelectProgram()
	if err != nil {
		k.halt(NoPrograms, err)
		return err
	}

	return k.Spawn(prog)
}
