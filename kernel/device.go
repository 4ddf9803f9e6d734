package kernel

import (
	"sort"
	"sync"

	"github.com/lnvaderZlM/CS-446/device"
	"github.com/pkg/errors"
)

// DeviceHandle is a registry slot. It stays valid for the kernel's lifetime.
type DeviceHandle int

// DeviceInfo binds a registered device to its id and the processes that
// have it open.
type DeviceInfo struct {
	ID     int
	Device device.Device

	mu      sync.RWMutex
	holders map[int]struct{}
}

func (d *DeviceInfo) AddProcess(pid int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.holders[pid] = struct{}{}
}

func (d *DeviceInfo) RemoveProcess(pid int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.holders, pid)
}

func (d *DeviceInfo) ContainsProcess(pid int) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.holders[pid]
	return ok
}

func (d *DeviceInfo) Unused() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.holders) == 0
}

// Holders returns the pids with the device open, ascending.
func (d *DeviceInfo) Holders() []int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]int, 0, len(d.holders))
	for pid := range d.holders {
		out = append(out, pid)
	}

	sort.Ints(out)
	return out
}

type DeviceRegistry struct {
	mu      sync.RWMutex
	entries []*DeviceInfo
}

func NewDeviceRegistry() *DeviceRegistry {
	return &DeviceRegistry{}
}

// Register assigns id to dev and records it.
func (r *DeviceRegistry) Register(dev device.Device, id int) (DeviceHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.ID == id {
			return -1, errors.Wrapf(ErrDuplicateDevice, "id=%d", id)
		}
	}

	dev.SetID(id)

	r.entries = append(r.entries, &DeviceInfo{
		ID:      id,
		Device:  dev,
		holders: make(map[int]struct{}),
	})

	return DeviceHandle(len(r.entries) - 1), nil
}

func (r *DeviceRegistry) Find(id int) (DeviceHandle, *DeviceInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i, e := range r.entries {
		if e.ID == id {
			return DeviceHandle(i), e, true
		}
	}

	return -1, nil, false
}

func (r *DeviceRegistry) Get(h DeviceHandle) (*DeviceInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if h < 0 || int(h) >= len(r.entries) {
		return nil, false
	}

	return r.entries[h], true
}

func (r *DeviceRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}
