// Package abi holds the numbers shared between user programs, the CPU and the
// kernel: opcodes, register indices, system call numbers and the result codes
// device calls leave on the stack.
package abi

// InstrSize is the number of words in one encoded instruction.
const InstrSize = 4

const (
	SET    = 0
	ADD    = 1
	SUB    = 2
	MUL    = 3
	DIV    = 4
	COPY   = 5
	BRANCH = 6
	BNE    = 7
	BLT    = 8
	POP    = 9
	PUSH   = 10
	LOAD   = 11
	SAVE   = 12
	TRAP   = 15
)

var OpNames = map[int]string{
	SET:    "SET",
	ADD:    "ADD",
	SUB:    "SUB",
	MUL:    "MUL",
	DIV:    "DIV",
	COPY:   "COPY",
	BRANCH: "BRANCH",
	BNE:    "BNE",
	BLT:    "BLT",
	POP:    "POP",
	PUSH:   "PUSH",
	LOAD:   "LOAD",
	SAVE:   "SAVE",
	TRAP:   "TRAP",
}

// Register file layout.
const (
	NumGenReg = 5

	PC   = 5
	SP   = 6
	BASE = 7
	LIM  = 8

	NumReg = 9
)

const (
	SysExit     = 0
	SysOutput   = 1
	SysGetPid   = 2
	SysOpen     = 3
	SysClose    = 4
	SysRead     = 5
	SysWrite    = 6
	SysExec     = 7
	SysYield    = 8
	SysCoreDump = 9
)

var SyscallNames = map[int]string{
	SysExit:     "exit",
	SysOutput:   "output",
	SysGetPid:   "getpid",
	SysOpen:     "open",
	SysClose:    "close",
	SysRead:     "read",
	SysWrite:    "write",
	SysExec:     "exec",
	SysYield:    "yield",
	SysCoreDump: "coredump",
}

// Results pushed by the device system calls.
const (
	Success        = 0
	DeviceNotFound = -1
	NotShareable   = -2
	AlreadyOpened  = -3
	NotOpened      = -4
	ReadOnly       = -5
	WriteOnly      = -6
)

// HeaderSize is the number of words reserved at the base of every process
// before its first instruction.
const HeaderSize = InstrSize
