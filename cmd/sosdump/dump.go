package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/lnvaderZlM/CS-446/abi"
	"github.com/lnvaderZlM/CS-446/kernel"
	"github.com/lnvaderZlM/CS-446/loader"
	"github.com/lnvaderZlM/CS-446/program"
	"github.com/spf13/pflag"
)

var fRaw = pflag.Bool("raw", false, "also dump the encoded words")

func dump(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	l := loader.NewLoader(nil)

	prog, err := l.LoadFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("\n[program]\n")
	tr := tabwriter.NewWriter(os.Stdout, 4, 8, 1, ' ', 0)
	fmt.Fprintf(tr, "name\t%s\n", prog.Name)
	fmt.Fprintf(tr, "key\t%s\n", loader.Key(src))
	fmt.Fprintf(tr, "instructions\t%d\n", prog.Instructions())
	fmt.Fprintf(tr, "size\t%d\n", prog.Size())
	fmt.Fprintf(tr, "alloc\t%d\n", kernel.AllocSize(prog))
	tr.Flush()

	fmt.Printf("\n[code]\n")
	tr = tabwriter.NewWriter(os.Stdout, 4, 8, 1, ' ', 0)
	fmt.Fprintf(tr, "%d\t%s\t(header)\n", 0, program.FormatInstr([]int{abi.BRANCH, abi.HeaderSize, 0, 0}))
	if err := prog.Disassemble(tr); err != nil {
		return err
	}
	tr.Flush()

	if *fRaw {
		fmt.Printf("\n[words]\n")
		spew.Dump(prog.Export())
	}

	return nil
}

func main() {
	pflag.Parse()

	if pflag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [--raw] program.asm...\n", os.Args[0])
		os.Exit(2)
	}

	for _, path := range pflag.Args() {
		if err := dump(path); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, err)
			os.Exit(1)
		}
	}
}
