// Package kernel implements the simulated operating system: the process
// table, the scheduler, device arbitration and fault handling. It drives a
// CPU and RAM it does not own through the CPU and RAM interfaces.
package kernel

import (
	"io"
	"math/rand"
	"os"
	"strings"
	"sync"

	"github.com/lnvaderZlM/CS-446/cpu"
	"github.com/lnvaderZlM/CS-446/device"
	"github.com/lnvaderZlM/CS-446/log"
	"github.com/lnvaderZlM/CS-446/program"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

// CPU is the part of the processor the kernel drives.
type CPU interface {
	Registers() []int

	PC() int
	SP() int
	BASE() int
	LIM() int

	SetPC(v int)
	SetSP(v int)
	SetBASE(v int)
	SetLIM(v int)

	PushStack(val int)
	PopStack() int
	ValidMemory(addr int) bool

	RegisterTrapHandler(h cpu.TrapHandler)
	Halt()
	RegDump(w io.Writer)
}

type RAM interface {
	Write(addr, val int) error
	Size() int
}

type ExecPolicy int

const (
	// ExecRandom picks uniformly among every registered program.
	ExecRandom ExecPolicy = iota
	// ExecLeastUsed picks uniformly among the programs spawned the fewest
	// times.
	ExecLeastUsed
)

func (e ExecPolicy) String() string {
	if e == ExecLeastUsed {
		return "least-used"
	}

	return "random"
}

var ErrUnknownPolicy = errors.New("unknown exec policy")

func ParseExecPolicy(s string) (ExecPolicy, error) {
	switch strings.ToLower(s) {
	case "", "random":
		return ExecRandom, nil
	case "least-used", "leastused":
		return ExecLeastUsed, nil
	default:
		return ExecRandom, errors.Wrapf(ErrUnknownPolicy, "%q", s)
	}
}

type Options struct {
	// Output receives what programs print and the diagnostics of fatal
	// conditions. Defaults to os.Stdout.
	Output io.Writer

	// Rand drives scheduling and program selection. Defaults to a time
	// independent source seeded with 1.
	Rand *rand.Rand

	ExecPolicy ExecPolicy

	// LegacyReadQuirk makes a read of a write-only device push the error
	// code, then still read and push the value and success.
	LegacyReadQuirk bool

	Logger hclog.Logger
}

type Kernel struct {
	L hclog.Logger

	mu sync.Mutex

	cpu  CPU
	ram  RAM
	out  io.Writer
	rnd  *rand.Rand
	opts Options

	programs  []*program.Program
	processes *ProcessTable
	devices   *DeviceRegistry

	current     *Process
	nextLoadPos int

	term *Termination
}

// NewKernel builds a kernel over c and r and installs h as the CPU's trap
// handler. A nil h installs the kernel itself, which handles faults but
// ignores system calls.
func NewKernel(c CPU, r RAM, h func(*Kernel) cpu.TrapHandler, opts Options) *Kernel {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}

	if opts.Logger == nil {
		opts.Logger = log.L.Named("kernel")
	}

	k := &Kernel{
		L:         opts.Logger,
		cpu:       c,
		ram:       r,
		out:       opts.Output,
		rnd:       opts.Rand,
		opts:      opts,
		processes: NewProcessTable(),
		devices:   NewDeviceRegistry(),
		current:   newProcess(placeholderPid),
	}

	var th cpu.TrapHandler = faultsOnly{k}
	if h != nil {
		th = h(k)
	}

	c.RegisterTrapHandler(th)

	return k
}

func (k *Kernel) CPU() CPU {
	return k.cpu
}

func (k *Kernel) Output() io.Writer {
	return k.out
}

func (k *Kernel) Options() Options {
	return k.opts
}

// RegisterDevice makes dev reachable by programs under id.
func (k *Kernel) RegisterDevice(dev device.Device, id int) error {
	h, err := k.devices.Register(dev, id)
	if err != nil {
		return err
	}

	k.L.Debug("device-register", "id", id, "handle", h,
		"sharable", dev.Sharable(), "readable", dev.Readable(), "writeable", dev.Writeable())

	return nil
}

func (k *Kernel) Devices() *DeviceRegistry {
	return k.devices
}

// AddProgram adds p to the catalog EXEC picks from.
func (k *Kernel) AddProgram(p *program.Program) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.programs = append(k.programs, p)
}

func (k *Kernel) Programs() []*program.Program {
	k.mu.Lock()
	defer k.mu.Unlock()

	out := make([]*program.Program, len(k.programs))
	copy(out, k.programs)
	return out
}

func (k *Kernel) Processes() *ProcessTable {
	return k.processes
}

// Running is the process that owns the CPU.
func (k *Kernel) Running() *Process {
	return k.current
}

func (k *Kernel) NextLoadPos() int {
	return k.nextLoadPos
}

// Termination is nil while the simulation may continue.
func (k *Kernel) Termination() *Termination {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.term
}

func (k *Kernel) Halted() bool {
	return k.Termination() != nil
}

// halt ends the simulation. Only the first call has any effect.
func (k *Kernel) halt(kind TerminationKind, err error) {
	k.mu.Lock()
	if k.term != nil {
		k.mu.Unlock()
		return
	}

	k.term = &Termination{Kind: kind, Err: err}
	k.mu.Unlock()

	if err != nil {
		k.L.Error("simulation-halt", "reason", kind, "pid", k.current.Pid, "error", err)
	} else {
		k.L.Info("simulation-halt", "reason", kind)
	}

	k.cpu.Halt()
}

type faultsOnly struct {
	*Kernel
}

func (faultsOnly) SystemCall() {}
