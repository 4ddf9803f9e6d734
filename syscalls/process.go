package syscalls

import (
	"github.com/lnvaderZlM/CS-446/abi"
	"github.com/lnvaderZlM/CS-446/kernel"
	hclog "github.com/hashicorp/go-hclog"
)

func sysExit(l hclog.Logger, k *kernel.Kernel) {
	k.RemoveCurrentProcess()
}

func sysOutput(l hclog.Logger, k *kernel.Kernel) {
	args, ok := popArgs(k, 1)
	if !ok {
		return
	}

	k.WriteOutput(args[0])
}

func sysGetPid(l hclog.Logger, k *kernel.Kernel) {
	k.CPU().PushStack(k.Running().Pid)
}

func sysCoreDump(l hclog.Logger, k *kernel.Kernel) {
	k.CoreDump()
	if k.Halted() {
		return
	}

	sysExit(l, k)
}

func sysExec(l hclog.Logger, k *kernel.Kernel) {
	parent := k.Running().Pid

	if err := k.Exec(); err != nil {
		l.Error("unable to exec process", "pid", parent, "error", err)
		return
	}

	l.Debug("exec", "parent", parent, "child", k.Running().Pid)
}

func sysYield(l hclog.Logger, k *kernel.Kernel) {
	k.ScheduleNewProcess()
}

func init() {
	Syscalls[abi.SysExit] = sysExit
	Syscalls[abi.SysOutput] = sysOutput
	Syscalls[abi.SysGetPid] = sysGetPid
	Syscalls[abi.SysCoreDump] = sysCoreDump
	Syscalls[abi.SysExec] = sysExec
	Syscalls[abi.SysYield] = sysYield
}
