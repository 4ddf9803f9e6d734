// Package sos wires the simulated machine together: RAM, a CPU, the kernel
// with its system call dispatcher, the stock devices and a program loader.
package sos

import (
	"context"
	"io"
	"math/rand"
	"os"

	"github.com/lnvaderZlM/CS-446/cpu"
	"github.com/lnvaderZlM/CS-446/device"
	"github.com/lnvaderZlM/CS-446/kernel"
	"github.com/lnvaderZlM/CS-446/loader"
	"github.com/lnvaderZlM/CS-446/log"
	"github.com/lnvaderZlM/CS-446/program"
	"github.com/lnvaderZlM/CS-446/ram"
	"github.com/lnvaderZlM/CS-446/syscalls"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

const (
	DefaultKeyboardID = 0
	DefaultConsoleID  = 1
)

type Config struct {
	RAMSize   int
	MaxCycles int
	Seed      int64

	ExecPolicy      string
	LegacyReadQuirk bool

	KeyboardID int
	ConsoleID  int

	Output io.Writer
}

func DefaultConfig() Config {
	return Config{
		RAMSize:    ram.DefaultSize,
		MaxCycles:  1000000,
		Seed:       1,
		ExecPolicy: "random",
		KeyboardID: DefaultKeyboardID,
		ConsoleID:  DefaultConsoleID,
		Output:     os.Stdout,
	}
}

type System struct {
	L hclog.Logger

	RAM    *ram.RAM
	CPU    *cpu.CPU
	Kernel *kernel.Kernel
	Loader *loader.Loader
}

func New(cfg Config) (*System, error) {
	policy, err := kernel.ParseExecPolicy(cfg.ExecPolicy)
	if err != nil {
		return nil, err
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	s := &System{
		L:      log.L.Named("system"),
		RAM:    ram.New(cfg.RAMSize),
		Loader: loader.NewLoader(loader.NewLoaderCache()),
	}

	s.CPU = cpu.New(s.RAM)
	s.CPU.MaxCycles = cfg.MaxCycles

	s.Kernel = syscalls.NewKernel(s.CPU, s.RAM, kernel.Options{
		Output:          cfg.Output,
		Rand:            rand.New(rand.NewSource(cfg.Seed)),
		ExecPolicy:      policy,
		LegacyReadQuirk: cfg.LegacyReadQuirk,
	})

	err = s.Kernel.RegisterDevice(device.NewKeyboard(cfg.Seed), cfg.KeyboardID)
	if err != nil {
		return nil, errors.Wrap(err, "registering keyboard")
	}

	err = s.Kernel.RegisterDevice(device.NewConsole(cfg.Output), cfg.ConsoleID)
	if err != nil {
		return nil, errors.Wrap(err, "registering console")
	}

	return s, nil
}

// LoadFiles assembles each file and adds it to the kernel's catalog.
func (s *System) LoadFiles(paths ...string) ([]*program.Program, error) {
	var progs []*program.Program

	for _, path := range paths {
		p, err := s.Loader.LoadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "loading %s", path)
		}

		s.L.Debug("program-load", "path", path, "name", p.Name, "size", p.Size())

		s.Kernel.AddProgram(p)
		progs = append(progs, p)
	}

	return progs, nil
}

// Boot starts one process per program given. The last one started runs
// first.
func (s *System) Boot(progs ...*program.Program) error {
	if len(progs) == 0 {
		return kernel.ErrNoPrograms
	}

	for _, p := range progs {
		if err := s.Kernel.Spawn(p); err != nil {
			return err
		}
	}

	return nil
}

// Run executes until the kernel halts the CPU. The returned error is the
// termination's error, or the CPU's if it stopped for another reason.
func (s *System) Run(ctx context.Context) (*kernel.Termination, error) {
	err := s.CPU.Run(ctx)

	term := s.Kernel.Termination()

	if err != nil {
		return term, err
	}

	if term != nil && term.Err != nil {
		return term, term.Err
	}

	return term, nil
}
