package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	sos "github.com/lnvaderZlM/CS-446"
	clog "github.com/lnvaderZlM/CS-446/log"
	"github.com/spf13/pflag"
)

var (
	def = sos.DefaultConfig()

	fRAM        = pflag.IntP("ram", "m", def.RAMSize, "words of simulated RAM")
	fMaxCycles  = pflag.Int("max-cycles", def.MaxCycles, "stop after this many instructions (0 = no limit)")
	fSeed       = pflag.Int64P("seed", "s", def.Seed, "seed for the scheduler, exec and the keyboard")
	fExecPolicy = pflag.String("exec-policy", def.ExecPolicy, "how EXEC picks a program: random or least-used")
	fLegacyRead = pflag.Bool("legacy-read", false, "keep reading after a write-only device reports an error")
	fKeyboard   = pflag.Int("keyboard-id", def.KeyboardID, "device id of the keyboard")
	fConsole    = pflag.Int("console-id", def.ConsoleID, "device id of the console")
	fInit       = pflag.IntP("init", "i", 0, "start only the first N programs (0 = all)")
	fLogLevel   = pflag.String("log-level", "", "trace, debug, info, warn or error")
)

func main() {
	cpuprofile := os.Getenv("CPUPROFILE")
	if cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		fmt.Printf("pprof: profiling started\n")
	}

	pflag.Parse()

	if *fLogLevel != "" && !clog.SetLevel(*fLogLevel) {
		log.Fatalf("unknown log level %q", *fLogLevel)
	}

	if pflag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] program.asm...\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(2)
	}

	cfg := sos.DefaultConfig()
	cfg.RAMSize = *fRAM
	cfg.MaxCycles = *fMaxCycles
	cfg.Seed = *fSeed
	cfg.ExecPolicy = *fExecPolicy
	cfg.LegacyReadQuirk = *fLegacyRead
	cfg.KeyboardID = *fKeyboard
	cfg.ConsoleID = *fConsole

	sys, err := sos.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	progs, err := sys.LoadFiles(pflag.Args()...)
	if err != nil {
		log.Fatal(err)
	}

	if *fInit > 0 && *fInit < len(progs) {
		progs = progs[:*fInit]
	}

	if err := sys.Boot(progs...); err != nil {
		log.Fatal(err)
	}

	term, err := sys.Run(context.Background())

	if cpuprofile != "" {
		pprof.StopCPUProfile()
		fmt.Printf("pprof: profiling finished\n")
	}

	clog.L.Info("simulation finished", "termination", term, "cycles", sys.CPU.Cycles())

	if err != nil {
		log.Fatal(err)
	}
}
