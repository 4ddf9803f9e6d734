package syscalls

import (
	"github.com/lnvaderZlM/CS-446/abi"
	"github.com/lnvaderZlM/CS-446/kernel"
	hclog "github.com/hashicorp/go-hclog"
)

// sysOpen blocks the caller when the device is held exclusively. The
// arguments go back on the stack and the PC is wound back onto the TRAP so
// the open is retried once the process runs again.
func sysOpen(l hclog.Logger, k *kernel.Kernel) {
	args, ok := popArgs(k, 1)
	if !ok {
		return
	}

	id := args[0]

	if !k.OpenDevice(id) {
		return
	}

	c := k.CPU()

	c.PushStack(id)
	c.PushStack(abi.SysOpen)
	c.SetPC(c.PC() - abi.InstrSize)

	l.Debug("open-blocked", "pid", k.Running().Pid, "device", id)

	k.ScheduleNewProcess()
}

func sysClose(l hclog.Logger, k *kernel.Kernel) {
	args, ok := popArgs(k, 1)
	if !ok {
		return
	}

	k.CloseDevice(args[0])
}

func sysRead(l hclog.Logger, k *kernel.Kernel) {
	args, ok := popArgs(k, 2)
	if !ok {
		return
	}

	addr, id := args[0], args[1]

	k.ReadDevice(id, addr)
}

func sysWrite(l hclog.Logger, k *kernel.Kernel) {
	args, ok := popArgs(k, 3)
	if !ok {
		return
	}

	data, addr, id := args[0], args[1], args[2]

	k.WriteDevice(id, addr, data)
}

func init() {
	Syscalls[abi.SysOpen] = sysOpen
	Syscalls[abi.SysClose] = sysClose
	Syscalls[abi.SysRead] = sysRead
	Syscalls[abi.SysWrite] = sysWrite
}
