package device

import (
	"fmt"
	"io"
	"sync"

	"github.com/lnvaderZlM/CS-446/log"
)

// Console is a sharable, write-only output device. Each write prints the
// address and value on its own line.
type Console struct {
	mu sync.Mutex
	id int
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) ID() int      { return c.id }
func (c *Console) SetID(id int) { c.id = id }

func (c *Console) Sharable() bool  { return true }
func (c *Console) Available() bool { return true }
func (c *Console) Readable() bool  { return false }
func (c *Console) Writeable() bool { return true }

func (c *Console) Read(addr int) int {
	return 0
}

func (c *Console) Write(addr, data int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := fmt.Fprintf(c.w, "CONSOLE[%d]: %d\n", addr, data); err != nil {
		log.L.Error("console write failed", "id", c.id, "error", err)
	}
}
