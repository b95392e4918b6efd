// Command bfjit compiles a Brainfuck source file through the AST/CIR
// pipeline described in SPEC_FULL.md and either JIT-executes it, emits its
// textual SSA IR, or dumps its CIR — per the flags below.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/brainfork/bfjit/internal/ast"
	"github.com/brainfork/bfjit/internal/cir"
	"github.com/brainfork/bfjit/internal/diag"
	"github.com/brainfork/bfjit/internal/dump"
	"github.com/brainfork/bfjit/internal/exec"
	"github.com/brainfork/bfjit/internal/lower"
	"github.com/brainfork/bfjit/internal/ssa"
	"github.com/brainfork/bfjit/internal/token"
)

var (
	runJIT   = flag.Bool("i", false, "JIT-compile and run.")
	outFile  = flag.String("o", "", "Emit textual SSA IR to FILE.")
	optimize = flag.Bool("O", false, "Enable the CIR optimization pipeline (canonicalize + simple-loop elim).")
	lPasses  = flag.Bool("L", false, "Run one CIR dead-store-elimination pass after -O (no effect without -O). No host-SSA optimizer passes are run.")
	dumpCIR  = flag.Bool("p", false, "Dump the CIR (canonicalized, and optimized if -O) to the diagnostic stream.")
	tapeSize = flag.Int("s", 10000, "Tape size in cells.")
)

func main() {
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: bfjit [options] <sourcefile>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(flag.Arg(0), os.Stdin, os.Stdout); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: bfjit [options] <sourcefile>")
	flag.PrintDefaults()
}

// run drives one compile of the source file at path; stdin/stdout are
// threaded through explicitly so the JIT path is testable without the
// process's real standard streams.
func run(path string, stdin io.Reader, stdout io.Writer) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return diag.Usagef("reading source file: %v", err)
	}

	root, err := ast.Parse(token.NewScanner(src))
	if err != nil {
		return err
	}

	// The CIR is always built and canonicalized, independent of -O, so -p
	// has something to show; -O additionally eliminates simple loops (and
	// -L's dead-store pass) and switches lowering to go through CIR
	// instead of the AST directly (spec §6).
	c := cir.Canonicalize(cir.Translate(root))
	if *optimize {
		c = cir.EliminateSimpleLoops(c)
		if *lPasses {
			c = cir.DeadStoreElim(c)
		}
	} else if *lPasses {
		log.Printf("-L has no effect without -O: there is no CIR loop structure left to clean up")
	}

	if *dumpCIR {
		if err := dump.Write(os.Stderr, c); err != nil {
			return diag.Backendf(err, "writing CIR dump")
		}
	}

	var builder *ssa.Builder
	if *optimize {
		builder = lower.CIR(c, *tapeSize)
	} else {
		builder = lower.AST(root, *tapeSize)
	}

	if *outFile != "" {
		if err := os.WriteFile(*outFile, []byte(builder.String()), 0644); err != nil {
			return diag.Usagef("writing IR output: %v", err)
		}
	}

	if *runJIT {
		if err := exec.Run(builder.Module, stdin, stdout); err != nil {
			return err
		}
	}

	return nil
}
