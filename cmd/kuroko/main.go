// Command kuroko runs a single Kuroko source file to completion and exits.
// It is a script runner, not a REPL: interactive line editing is one of the
// external collaborators the core library deliberately leaves out (§1
// "Out of scope").
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kuroko-lang/krk"
	"github.com/kuroko-lang/krk/internal/logio"
)

func main() {
	var (
		memLimit   uint
		frameLimit uint
		gcStress   bool
	)
	flag.UintVar(&memLimit, "mem-limit", 0, "byte ceiling for the heap (0: unbounded)")
	flag.UintVar(&frameLimit, "frame-limit", 0, "call-depth ceiling (0: default)")
	flag.BoolVar(&gcStress, "gc-stress", false, "collect garbage on every allocation")
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer os.Exit(log.ExitCode())

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: kuroko <script.krk>")
		log.Errorf("missing script argument")
		return
	}
	path := args[0]

	var opts []krk.VMOption
	if memLimit != 0 {
		opts = append(opts, krk.WithMemoryLimit(int64(memLimit)))
	}
	if frameLimit != 0 {
		opts = append(opts, krk.WithFrameLimit(int(frameLimit)))
	}
	if gcStress {
		opts = append(opts, krk.WithGCStress(true))
	}

	vm := krk.NewVM(opts...)

	data, err := os.ReadFile(path)
	if err != nil {
		log.ErrorIf(err)
		return
	}
	if _, runErr := krk.Interpret(vm, string(data), path); runErr != nil {
		if kerr, ok := runErr.(*krk.KurokoError); ok {
			krk.WriteTraceback(os.Stderr, kerr, path, string(data))
			log.Errorf("unhandled exception in %s", path)
			return
		}
		log.ErrorIf(runErr)
	}
}
