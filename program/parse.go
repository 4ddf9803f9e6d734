package program

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/lnvaderZlM/CS-446/abi"
	"github.com/pkg/errors"
)

var ErrSyntax = errors.New("syntax error")

type operand int

const (
	opReg operand = iota
	opImm
	opAddr
)

var layouts = map[int][]operand{
	abi.SET:    {opReg, opImm},
	abi.ADD:    {opReg, opReg, opReg},
	abi.SUB:    {opReg, opReg, opReg},
	abi.MUL:    {opReg, opReg, opReg},
	abi.DIV:    {opReg, opReg, opReg},
	abi.COPY:   {opReg, opReg},
	abi.BRANCH: {opAddr},
	abi.BNE:    {opReg, opReg, opAddr},
	abi.BLT:    {opReg, opReg, opAddr},
	abi.POP:    {opReg},
	abi.PUSH:   {opReg},
	abi.LOAD:   {opReg, opReg},
	abi.SAVE:   {opReg, opReg},
	abi.TRAP:   {},
}

var opcodes = func() map[string]int {
	m := make(map[string]int, len(abi.OpNames))
	for op, name := range abi.OpNames {
		m[name] = op
	}
	return m
}()

type pending struct {
	line   int
	op     int
	fields []string
}

// Parse assembles SOS assembly. Each non empty line holds one instruction,
// an optional "label:" prefix and an optional "#" comment. Labels resolve to
// the logical address the instruction will have once loaded behind the
// process header. ".alloc N" sets the program's default allocation size.
func Parse(name string, r io.Reader) (*Program, error) {
	var (
		prog   = &Program{Name: name}
		labels = make(map[string]int)
		instrs []pending
	)

	sc := bufio.NewScanner(r)
	lineNo := 0

	for sc.Scan() {
		lineNo++

		line := sc.Text()
		if idx := strings.IndexByte(line, '#'); idx != -1 {
			line = line[:idx]
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if idx := strings.IndexByte(line, ':'); idx != -1 {
			label := strings.TrimSpace(line[:idx])
			if label == "" || strings.ContainsAny(label, " \t") {
				return nil, errors.Wrapf(ErrSyntax, "%s:%d: bad label %q", name, lineNo, label)
			}

			if _, dup := labels[label]; dup {
				return nil, errors.Wrapf(ErrSyntax, "%s:%d: duplicate label %q", name, lineNo, label)
			}

			labels[label] = abi.HeaderSize + len(instrs)*abi.InstrSize
			line = strings.TrimSpace(line[idx+1:])
			if line == "" {
				continue
			}
		}

		fields := strings.Fields(line)

		if fields[0] == ".alloc" {
			if len(fields) != 2 {
				return nil, errors.Wrapf(ErrSyntax, "%s:%d: .alloc takes one argument", name, lineNo)
			}

			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, errors.Wrapf(ErrSyntax, "%s:%d: bad .alloc size %q", name, lineNo, fields[1])
			}

			prog.DefaultAllocSize = n
			continue
		}

		op, ok := opcodes[strings.ToUpper(fields[0])]
		if !ok {
			return nil, errors.Wrapf(ErrSyntax, "%s:%d: unknown instruction %q", name, lineNo, fields[0])
		}

		if want := len(layouts[op]); len(fields)-1 != want {
			return nil, errors.Wrapf(ErrSyntax, "%s:%d: %s takes %d operands, got %d",
				name, lineNo, abi.OpNames[op], want, len(fields)-1)
		}

		instrs = append(instrs, pending{line: lineNo, op: op, fields: fields[1:]})
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}

	for _, in := range instrs {
		word := [abi.InstrSize]int{in.op}

		for i, kind := range layouts[in.op] {
			v, err := operandValue(kind, in.fields[i], labels)
			if err != nil {
				return nil, errors.Wrapf(err, "%s:%d", name, in.line)
			}

			word[i+1] = v
		}

		prog.words = append(prog.words, word[:]...)
	}

	return prog, nil
}

func operandValue(kind operand, s string, labels map[string]int) (int, error) {
	switch kind {
	case opReg:
		ls := strings.ToLower(s)
		if len(ls) == 2 && ls[0] == 'r' && ls[1] >= '0' && ls[1] < '0'+abi.NumGenReg {
			return int(ls[1] - '0'), nil
		}

		return 0, errors.Wrapf(ErrSyntax, "bad register %q", s)
	default:
		if addr, ok := labels[s]; ok {
			return addr, nil
		}

		n, err := strconv.Atoi(s)
		if err != nil {
			if kind == opAddr {
				return 0, errors.Wrapf(ErrSyntax, "unknown label %q", s)
			}

			return 0, errors.Wrapf(ErrSyntax, "bad immediate %q", s)
		}

		return n, nil
	}
}
