package kernel

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/lnvaderZlM/CS-446/abi"
	"github.com/lnvaderZlM/CS-446/cpu"
	"github.com/lnvaderZlM/CS-446/log"
	"github.com/lnvaderZlM/CS-446/program"
	"github.com/lnvaderZlM/CS-446/ram"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/vektra/neko"
)

// zeroSource makes every Intn return 0, so the scheduler always takes the
// first ready process in table order.
type zeroSource struct{}

func (zeroSource) Int63() int64    { return 0 }
func (zeroSource) Seed(seed int64) {}

func newTestKernel(t *testing.T, ramSize int) (*Kernel, *cpu.CPU, *bytes.Buffer) {
	log.Silence()

	r := ram.New(ramSize)
	c := cpu.New(r)

	var out bytes.Buffer

	k := NewKernel(c, r, nil, Options{
		Output: &out,
		Rand:   rand.New(zeroSource{}),
	})

	return k, c, &out
}

func trapProgram(name string) *program.Program {
	return program.New(name, []int{
		abi.TRAP, 0, 0, 0,
		abi.TRAP, 0, 0, 0,
	})
}

// runAs hands the CPU to p the way the scheduler would.
func runAs(k *Kernel, p *Process) {
	k.current.Save(k.cpu)
	k.current = p
	p.Restore(k.cpu)
}

func TestProcessTable(t *testing.T) {
	n := neko.Modern(t)

	n.It("hands out increasing pids that are never reused", func(t *testing.T) {
		pt := NewProcessTable()

		a := pt.New()
		b := pt.New()

		require.Equal(t, FirstPid, a.Pid)
		require.Equal(t, FirstPid+1, b.Pid)

		require.True(t, pt.Remove(b.Pid))

		c := pt.New()
		require.Equal(t, FirstPid+2, c.Pid)

		require.Equal(t, 2, pt.Len())

		_, ok := pt.Get(b.Pid)
		require.False(t, ok)
	})

	n.It("matches blocked processes on device and op", func(t *testing.T) {
		p := newProcess(1)
		require.False(t, p.IsBlocked())

		p.Block(3, abi.SysOpen, 100)
		require.True(t, p.IsBlocked())
		require.True(t, p.IsBlockedFor(3, abi.SysOpen, 5))
		require.False(t, p.IsBlockedFor(4, abi.SysOpen, 100))

		p.Block(3, abi.SysRead, 9)
		require.True(t, p.IsBlockedFor(3, abi.SysRead, 9))
		require.False(t, p.IsBlockedFor(3, abi.SysRead, 8))

		p.Unblock()
		require.False(t, p.IsBlocked())
	})

	n.It("saves and restores registers", func(t *testing.T) {
		_, c, _ := newTestKernel(t, 100)

		p := newProcess(1)

		c.SetPC(12)
		p.Restore(c)
		require.Equal(t, 12, c.PC(), "never saved leaves the cpu alone")

		p.Save(c)
		c.SetPC(40)
		p.Restore(c)
		require.Equal(t, 12, c.PC())
	})

	n.Meow()
}

func TestCreateProcess(t *testing.T) {
	n := neko.Modern(t)

	n.It("lays out the window and makes the process current", func(t *testing.T) {
		k, c, _ := newTestKernel(t, 100)

		prog := trapProgram("a")

		require.NoError(t, k.CreateProcess(prog, 20))

		require.Equal(t, 0, c.BASE())
		require.Equal(t, 20, c.LIM())
		require.Equal(t, abi.HeaderSize, c.PC())
		require.Equal(t, 20, c.SP())
		require.Equal(t, 20, k.NextLoadPos())

		require.Equal(t, FirstPid, k.Running().Pid)
		require.Equal(t, 1, k.Processes().Len())
		require.Len(t, c.Registers(), abi.NumReg)
	})

	n.It("copies the program behind the header", func(t *testing.T) {
		log.Silence()

		r := ram.New(100)
		c := cpu.New(r)
		k := NewKernel(c, r, nil, Options{Output: &bytes.Buffer{}})

		require.NoError(t, k.CreateProcess(trapProgram("a"), 20))
		require.NoError(t, k.CreateProcess(trapProgram("b"), 20))

		win, err := r.Project(20, 12)
		require.NoError(t, err)

		require.Equal(t, []int{
			abi.BRANCH, abi.HeaderSize, 0, 0,
			abi.TRAP, 0, 0, 0,
			abi.TRAP, 0, 0, 0,
		}, win)
	})

	n.It("never overlaps windows", func(t *testing.T) {
		k, c, _ := newTestKernel(t, 200)

		type window struct{ base, lim int }

		var wins []window
		for i := 0; i < 5; i++ {
			require.NoError(t, k.CreateProcess(trapProgram("a"), 16+i*4))
			wins = append(wins, window{c.BASE(), c.LIM()})
		}

		for i := 1; i < len(wins); i++ {
			require.Equal(t, wins[i-1].lim, wins[i].base)
			require.True(t, wins[i].lim > wins[i].base)
		}

		pids := map[int]bool{}
		for _, p := range k.Processes().Snapshot() {
			require.False(t, pids[p.Pid])
			pids[p.Pid] = true
		}
	})

	n.It("saves the outgoing process", func(t *testing.T) {
		k, _, _ := newTestKernel(t, 100)

		require.NoError(t, k.CreateProcess(trapProgram("a"), 20))
		first := k.Running()
		require.Nil(t, first.Registers)

		require.NoError(t, k.CreateProcess(trapProgram("b"), 20))
		require.NotNil(t, first.Registers)
		require.Equal(t, 0, first.Registers[abi.BASE])
		require.Equal(t, abi.HeaderSize, first.Registers[abi.PC])
	})

	n.It("halts when ram runs out", func(t *testing.T) {
		k, _, _ := newTestKernel(t, 30)

		require.NoError(t, k.CreateProcess(trapProgram("a"), 20))

		err := k.CreateProcess(trapProgram("b"), 20)
		require.Equal(t, ErrOutOfMemory, errors.Cause(err))

		term := k.Termination()
		require.NotNil(t, term)
		require.Equal(t, OutOfMemory, term.Kind)
		require.Equal(t, 1, k.Processes().Len())
	})

	n.It("fills ram exactly", func(t *testing.T) {
		k, _, _ := newTestKernel(t, 40)

		require.NoError(t, k.CreateProcess(trapProgram("a"), 20))
		require.NoError(t, k.CreateProcess(trapProgram("b"), 20))
		require.False(t, k.Halted())
	})

	n.It("rejects sizes that cannot hold the program", func(t *testing.T) {
		k, _, _ := newTestKernel(t, 100)

		err := k.CreateProcess(trapProgram("a"), 0)
		require.Equal(t, ErrBadAllocSize, errors.Cause(err))

		err = k.CreateProcess(trapProgram("a"), 8)
		require.Equal(t, ErrBadAllocSize, errors.Cause(err))

		require.False(t, k.Halted())
		require.Equal(t, 0, k.Processes().Len())
	})

	n.Meow()
}

func TestSpawn(t *testing.T) {
	n := neko.Modern(t)

	n.It("uses the default alloc size or twice the program", func(t *testing.T) {
		p := trapProgram("a")
		require.Equal(t, 16, AllocSize(p))

		p.DefaultAllocSize = 50
		require.Equal(t, 50, AllocSize(p))
	})

	n.It("leaves the pc one instruction before the entry", func(t *testing.T) {
		k, c, _ := newTestKernel(t, 100)

		p := trapProgram("a")
		require.NoError(t, k.Spawn(p))

		require.Equal(t, c.BASE(), c.PC())
		require.Equal(t, 1, p.CallCount)
	})

	n.It("halts exec without programs", func(t *testing.T) {
		k, _, _ := newTestKernel(t, 100)

		err := k.Exec()
		require.Equal(t, ErrNoPrograms, errors.Cause(err))
		require.Equal(t, NoPrograms, k.Termination().Kind)
	})

	n.It("picks among every program by default", func(t *testing.T) {
		log.Silence()

		r := ram.New(10)
		c := cpu.New(r)
		k := NewKernel(c, r, nil, Options{Output: &bytes.Buffer{}, Rand: rand.New(rand.NewSource(7))})

		a, b := trapProgram("a"), trapProgram("b")
		a.CallCount = 10

		k.AddProgram(a)
		k.AddProgram(b)

		seen := map[string]int{}
		for i := 0; i < 200; i++ {
			p, err := k.SelectProgram()
			require.NoError(t, err)
			seen[p.Name]++
		}

		require.True(t, seen["a"] > 0)
		require.True(t, seen["b"] > 0)
	})

	n.It("only picks the least used programs when asked", func(t *testing.T) {
		log.Silence()

		r := ram.New(10)
		c := cpu.New(r)
		k := NewKernel(c, r, nil, Options{
			Output:     &bytes.Buffer{},
			Rand:       rand.New(rand.NewSource(7)),
			ExecPolicy: ExecLeastUsed,
		})

		a, b, d := trapProgram("a"), trapProgram("b"), trapProgram("d")
		a.CallCount = 2
		b.CallCount = 1
		d.CallCount = 1

		k.AddProgram(a)
		k.AddProgram(b)
		k.AddProgram(d)

		for i := 0; i < 100; i++ {
			p, err := k.SelectProgram()
			require.NoError(t, err)
			require.NotEqual(t, "a", p.Name)
		}
	})

	n.It("parses exec policies", func(t *testing.T) {
		p, err := ParseExecPolicy("least-used")
		require.NoError(t, err)
		require.Equal(t, ExecLeastUsed, p)

		p, err = ParseExecPolicy("")
		require.NoError(t, err)
		require.Equal(t, ExecRandom, p)

		_, err = ParseExecPolicy("fifo")
		require.Equal(t, ErrUnknownPolicy, errors.Cause(err))
	})

	n.Meow()
}
