package kernel

import (
	"github.com/lnvaderZlM/CS-446/abi"
)

// openBlockAddr is recorded as the address of processes blocked in open.
// Matching on open ignores it.
const openBlockAddr = 100

// OpenDevice gives the running process access to device id. If the device
// is exclusive and held by another process the running process is blocked,
// nothing is pushed and true is returned; the caller must reschedule.
func (k *Kernel) OpenDevice(id int) bool {
	h, info, ok := k.devices.Find(id)
	if !ok {
		k.cpu.PushStack(abi.DeviceNotFound)
		return false
	}

	pid := k.current.Pid

	if info.ContainsProcess(pid) {
		k.cpu.PushStack(abi.AlreadyOpened)
		return false
	}

	if !info.Device.Sharable() && !info.Unused() {
		k.L.Debug("device-block", "pid", pid, "device", id, "holders", info.Holders())
		k.current.Block(h, abi.SysOpen, openBlockAddr)
		return true
	}

	info.AddProcess(pid)
	k.L.Trace("device-open", "pid", pid, "device", id)

	k.cpu.PushStack(abi.Success)
	return false
}

// CloseDevice releases device id and readies every process waiting to open
// it. They contend again when scheduled.
func (k *Kernel) CloseDevice(id int) {
	h, info, ok := k.devices.Find(id)
	if !ok {
		k.cpu.PushStack(abi.DeviceNotFound)
		return
	}

	pid := k.current.Pid

	if !info.ContainsProcess(pid) {
		k.cpu.PushStack(abi.NotOpened)
		return
	}

	info.RemoveProcess(pid)
	k.L.Trace("device-close", "pid", pid, "device", id)

	k.unblockWaiters(h)

	k.cpu.PushStack(abi.Success)
}

// ReadDevice pushes the value read from device id at addr, then success.
func (k *Kernel) ReadDevice(id, addr int) {
	_, info, ok := k.devices.Find(id)
	if !ok {
		k.cpu.PushStack(abi.DeviceNotFound)
		return
	}

	if !info.ContainsProcess(k.current.Pid) {
		k.cpu.PushStack(abi.NotOpened)
		return
	}

	dev := info.Device

	if !dev.Readable() {
		k.cpu.PushStack(abi.WriteOnly)
		if !k.opts.LegacyReadQuirk {
			return
		}
	}

	data := dev.Read(addr)
	k.L.Trace("device-read", "pid", k.current.Pid, "device", id, "addr", addr, "data", data)

	k.cpu.PushStack(data)
	k.cpu.PushStack(abi.Success)
}

func (k *Kernel) WriteDevice(id, addr, data int) {
	_, info, ok := k.devices.Find(id)
	if !ok {
		k.cpu.PushStack(abi.DeviceNotFound)
		return
	}

	if !info.ContainsProcess(k.current.Pid) {
		k.cpu.PushStack(abi.NotOpened)
		return
	}

	dev := info.Device

	if !dev.Writeable() {
		k.cpu.PushStack(abi.ReadOnly)
		return
	}

	dev.Write(addr, data)
	k.L.Trace("device-write", "pid", k.current.Pid, "device", id, "addr", addr, "data", data)

	k.cpu.PushStack(abi.Success)
}

// SelectBlockedProcess returns the first process in table order waiting for
// op on h, or nil.
func (k *Kernel) SelectBlockedProcess(h DeviceHandle, op, addr int) *Process {
	for _, p := range k.processes.Snapshot() {
		if p.IsBlockedFor(h, op, addr) {
			return p
		}
	}

	return nil
}

func (k *Kernel) unblockWaiters(h DeviceHandle) {
	for {
		p := k.SelectBlockedProcess(h, abi.SysOpen, openBlockAddr)
		if p == nil {
			return
		}

		k.L.Debug("device-unblock", "pid", p.Pid, "handle", h)
		p.Unblock()
	}
}

func (k *Kernel) releaseDevices(pid int) {
	for h := DeviceHandle(0); int(h) < k.devices.Len(); h++ {
		info, _ := k.devices.Get(h)
		if !info.ContainsProcess(pid) {
			continue
		}

		k.L.Debug("device-release", "pid", pid, "device", info.ID)
		info.RemoveProcess(pid)
		k.unblockWaiters(h)
	}
}
