// Package ram implements the flat, word addressed memory the simulated CPU
// executes from.
package ram

import (
	"github.com/pkg/errors"
)

// DefaultSize is the number of words a RAM gets when no size is configured.
const DefaultSize = 3000

var ErrOutOfRange = errors.New("address out of range")

type RAM struct {
	mem []int
}

func New(size int) *RAM {
	if size <= 0 {
		size = DefaultSize
	}

	return &RAM{mem: make([]int, size)}
}

func (r *RAM) Size() int {
	return len(r.mem)
}

func (r *RAM) Contains(addr int) bool {
	return addr >= 0 && addr < len(r.mem)
}

func (r *RAM) Read(addr int) (int, error) {
	if !r.Contains(addr) {
		return 0, errors.Wrapf(ErrOutOfRange, "read addr=%d size=%d", addr, len(r.mem))
	}

	return r.mem[addr], nil
}

func (r *RAM) Write(addr, val int) error {
	if !r.Contains(addr) {
		return errors.Wrapf(ErrOutOfRange, "write addr=%d size=%d", addr, len(r.mem))
	}

	r.mem[addr] = val
	return nil
}

// Project returns the live words [addr, addr+sz). Writes through the slice
// are visible to later reads.
func (r *RAM) Project(addr, sz int) ([]int, error) {
	if sz < 0 || !r.Contains(addr) || addr+sz > len(r.mem) {
		return nil, errors.Wrapf(ErrOutOfRange, "error projecting addr=%d, size=%d", addr, sz)
	}

	return r.mem[addr : addr+sz], nil
}
