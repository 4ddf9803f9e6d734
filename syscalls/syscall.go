// Package syscalls decodes TRAPs raised by the CPU and routes them to the
// kernel. Arguments and results travel on the running process's stack.
package syscalls

import (
	"github.com/lnvaderZlM/CS-446/kernel"
	hclog "github.com/hashicorp/go-hclog"
)

type Handler func(hclog.Logger, *kernel.Kernel)

// Syscalls maps a system call number to its handler. Numbers without an
// entry are ignored.
var Syscalls = map[int]Handler{}

// popArgs pops n arguments, last pushed first. It returns false if popping
// faulted and the simulation is over.
func popArgs(k *kernel.Kernel, n int) ([]int, bool) {
	args := make([]int, n)

	for i := range args {
		args[i] = k.CPU().PopStack()
		if k.Halted() {
			return nil, false
		}
	}

	return args, true
}
