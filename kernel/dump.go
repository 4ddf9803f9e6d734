package kernel

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// WriteProcessTable prints every process, one per line.
func (k *Kernel) WriteProcessTable(w io.Writer) {
	procs := k.processes.Snapshot()

	fmt.Fprintf(w, "Process Table (%d processes)\n", len(procs))
	fmt.Fprintln(w, strings.Repeat("=", 70))

	for _, p := range procs {
		fmt.Fprintf(w, "    %s\n", p.Describe(p == k.current))
	}

	fmt.Fprintln(w, strings.Repeat("-", 70))
}

// PrintProcessTable logs the process table at debug level, and the raw
// control blocks at trace level.
func (k *Kernel) PrintProcessTable() {
	if !k.L.IsDebug() {
		return
	}

	var buf bytes.Buffer
	k.WriteProcessTable(&buf)

	k.L.Debug("process-table\n" + buf.String())

	if k.L.IsTrace() {
		k.L.Trace("process-table-raw", "pcbs", spew.Sdump(k.processes.Snapshot()))
	}
}

// CoreDump reports the registers and up to three values popped from the
// running process's stack.
func (k *Kernel) CoreDump() {
	fmt.Fprintf(k.out, "\n\nCORE DUMP! (pid %d)\n", k.current.Pid)

	k.cpu.RegDump(k.out)

	fmt.Fprintln(k.out, "Top three stack items:")
	for i := 0; i < 3; i++ {
		if k.cpu.ValidMemory(k.cpu.SP()) {
			fmt.Fprintln(k.out, k.cpu.PopStack())
		} else {
			fmt.Fprintln(k.out, " -- NULL -- ")
		}
	}
}

// WriteOutput reports a value printed by the running process.
func (k *Kernel) WriteOutput(v int) {
	fmt.Fprintf(k.out, "OUTPUT: %d\n", v)
}
