package sos

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/lnvaderZlM/CS-446/cpu"
	"github.com/lnvaderZlM/CS-446/kernel"
	"github.com/lnvaderZlM/CS-446/log"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/vektra/neko"
)

func newSystem(t *testing.T, ramSize int) (*System, *bytes.Buffer) {
	log.Silence()

	var out bytes.Buffer

	cfg := DefaultConfig()
	cfg.Output = &out
	cfg.MaxCycles = 100000
	if ramSize > 0 {
		cfg.RAMSize = ramSize
	}

	s, err := New(cfg)
	require.NoError(t, err)

	return s, &out
}

func TestSystem(t *testing.T) {
	n := neko.Modern(t)

	n.It("runs a program to completion", func(t *testing.T) {
		s, out := newSystem(t, 0)

		progs, err := s.LoadFiles("programs/counter.asm")
		require.NoError(t, err)
		require.Equal(t, "counter", progs[0].Name)

		require.NoError(t, s.Boot(progs...))

		term, err := s.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, kernel.Completed, term.Kind)

		require.Equal(t,
			"OUTPUT: 1\nOUTPUT: 2\nOUTPUT: 3\nOUTPUT: 4\nOUTPUT: 5\nNo more processes to run. Stopping.\n",
			out.String())
	})

	n.It("runs several processes that share devices", func(t *testing.T) {
		s, out := newSystem(t, 0)

		progs, err := s.LoadFiles(
			"programs/counter.asm",
			"programs/console.asm",
			"programs/reader.asm",
			"programs/yielder.asm",
		)
		require.NoError(t, err)

		require.NoError(t, s.Boot(progs...))

		term, err := s.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, kernel.Completed, term.Kind)

		text := out.String()
		require.Contains(t, text, "CONSOLE[0]: 1002\n")
		require.Equal(t, 2, strings.Count(text, "OUTPUT: 1004\n"))

		for _, line := range []string{"OUTPUT: 1\n", "OUTPUT: 5\n"} {
			require.Contains(t, text, line)
		}

		require.True(t, strings.HasSuffix(text, "No more processes to run. Stopping.\n"))
		require.Equal(t, 0, s.Kernel.Processes().Len())
	})

	n.It("halts when exec runs out of memory", func(t *testing.T) {
		s, out := newSystem(t, 200)

		progs, err := s.LoadFiles("programs/spawner.asm")
		require.NoError(t, err)

		require.NoError(t, s.Boot(progs...))

		term, err := s.Run(context.Background())
		require.Equal(t, kernel.ErrOutOfMemory, errors.Cause(err))
		require.Equal(t, kernel.OutOfMemory, term.Kind)

		require.Equal(t, 6, s.Kernel.Processes().Len())
		require.Equal(t, 192, s.Kernel.NextLoadPos())
		require.Empty(t, out.String())
	})

	n.It("halts on a fault", func(t *testing.T) {
		s, out := newSystem(t, 0)

		prog, err := s.Loader.Load("div", strings.NewReader(`
			SET r0 1
			SET r1 0
			DIV r2 r0 r1
		`))
		require.NoError(t, err)

		require.NoError(t, s.Boot(prog))

		term, err := s.Run(context.Background())
		require.Equal(t, kernel.ErrDivideByZero, errors.Cause(err))
		require.Equal(t, kernel.DivideByZero, term.Kind)
		require.Equal(t, "Error: Divide by Zero\n", out.String())
	})

	n.It("stops at the cycle limit", func(t *testing.T) {
		s, _ := newSystem(t, 0)
		s.CPU.MaxCycles = 100

		prog, err := s.Loader.Load("spin", strings.NewReader("top: BRANCH top"))
		require.NoError(t, err)

		require.NoError(t, s.Boot(prog))

		term, err := s.Run(context.Background())
		require.Equal(t, cpu.ErrCycleLimit, errors.Cause(err))
		require.Nil(t, term)
	})

	n.It("needs a program to boot", func(t *testing.T) {
		s, _ := newSystem(t, 0)
		require.Equal(t, kernel.ErrNoPrograms, s.Boot())
	})

	n.It("rejects an unknown exec policy", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ExecPolicy = "fifo"

		_, err := New(cfg)
		require.Equal(t, kernel.ErrUnknownPolicy, errors.Cause(err))
	})

	n.It("rejects clashing device ids", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ConsoleID = cfg.KeyboardID

		_, err := New(cfg)
		require.Equal(t, kernel.ErrDuplicateDevice, errors.Cause(err))
	})

	n.Meow()
}
