package syscalls

import (
	"github.com/lnvaderZlM/CS-446/abi"
	"github.com/lnvaderZlM/CS-446/cpu"
	"github.com/lnvaderZlM/CS-446/kernel"
	"github.com/lnvaderZlM/CS-446/log"
	hclog "github.com/hashicorp/go-hclog"
)

// Invoker is the CPU's trap handler. System calls go through the Syscalls
// table, faults go straight to the kernel.
type Invoker struct {
	*kernel.Kernel

	L hclog.Logger
}

func NewInvoker(k *kernel.Kernel) cpu.TrapHandler {
	return &Invoker{
		Kernel: k,
		L:      log.L.Named("syscall"),
	}
}

// NewKernel builds a kernel with an Invoker installed as trap handler.
func NewKernel(c kernel.CPU, r kernel.RAM, opts kernel.Options) *kernel.Kernel {
	return kernel.NewKernel(c, r, NewInvoker, opts)
}

func (i *Invoker) SystemCall() {
	k := i.Kernel

	num := k.CPU().PopStack()
	if k.Halted() {
		return
	}

	f, ok := Syscalls[num]
	if !ok {
		i.L.Warn("unknown syscall ignored", "pid", k.Running().Pid, "index", num)
		return
	}

	i.L.Trace("syscall", "pid", k.Running().Pid, "index", num, "name", abi.SyscallNames[num])

	f(i.L, k)
}
