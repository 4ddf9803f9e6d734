// Package device defines what the kernel expects from a simulated device and
// provides the drivers the simulator ships with.
package device

type Device interface {
	ID() int
	SetID(id int)

	Sharable() bool
	Available() bool
	Readable() bool
	Writeable() bool

	Read(addr int) int

	// Write may be called on a device that is not writeable by a faulty
	// program. Implementations must tolerate it.
	Write(addr, data int)
}
