package device

import (
	"math/rand"
	"sync"

	"github.com/lnvaderZlM/CS-446/log"
)

// Keyboard is a non-sharable, read-only input device. Every read yields a new
// pseudo-random number in [0, 100000).
type Keyboard struct {
	mu  sync.Mutex
	id  int
	rnd *rand.Rand
}

func NewKeyboard(seed int64) *Keyboard {
	rnd := rand.New(rand.NewSource(seed))

	return &Keyboard{
		id:  rnd.Intn(100),
		rnd: rnd,
	}
}

func (k *Keyboard) ID() int      { return k.id }
func (k *Keyboard) SetID(id int) { k.id = id }

func (k *Keyboard) Sharable() bool  { return false }
func (k *Keyboard) Available() bool { return true }
func (k *Keyboard) Readable() bool  { return true }
func (k *Keyboard) Writeable() bool { return false }

func (k *Keyboard) Read(addr int) int {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.rnd.Intn(100000)
}

func (k *Keyboard) Write(addr, data int) {
	log.L.Warn("write to read-only keyboard ignored", "id", k.id, "addr", addr, "data", data)
}
