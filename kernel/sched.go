package kernel

import (
	"fmt"

	"github.com/pkg/errors"
)

// randomProcess starts at a random slot and returns the first process that
// is not blocked, wrapping around the table. Nil if all are blocked.
func (k *Kernel) randomProcess() *Process {
	procs := k.processes.Snapshot()
	if len(procs) == 0 {
		return nil
	}

	offset := k.rnd.Intn(len(procs))

	for i := range procs {
		p := procs[(i+offset)%len(procs)]
		if !p.IsBlocked() {
			return p
		}
	}

	return nil
}

// ScheduleNewProcess switches the CPU to a random ready process. An empty
// table ends the simulation normally; a table where every process is blocked
// ends it as a deadlock.
func (k *Kernel) ScheduleNewProcess() {
	if k.Halted() {
		return
	}

	if k.processes.Len() == 0 {
		fmt.Fprintln(k.out, "No more processes to run. Stopping.")
		k.halt(Completed, nil)
		return
	}

	next := k.randomProcess()
	if next == nil {
		fmt.Fprintln(k.out, "Deadlock: every process is blocked.")
		k.WriteProcessTable(k.out)
		k.halt(Deadlock, errors.Wrapf(ErrDeadlock, "%d processes", k.processes.Len()))
		return
	}

	prev := k.current

	prev.Save(k.cpu)
	k.current = next
	next.Restore(k.cpu)

	k.L.Debug("process-switch", "from", prev.Pid, "to", next.Pid)
}

// RemoveCurrentProcess drops the running process from the table, closes the
// devices it still holds and schedules another process.
func (k *Kernel) RemoveCurrentProcess() {
	p := k.current

	k.L.Debug("process-exit", "pid", p.Pid, "base", k.cpu.BASE())

	k.releaseDevices(p.Pid)
	k.processes.Remove(p.Pid)

	k.ScheduleNewProcess()
}
