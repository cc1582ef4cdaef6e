package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/eownerdead/minicc/internal/errors"
	"github.com/eownerdead/minicc/internal/ir"
	"github.com/eownerdead/minicc/internal/irtext"
)

// minicc-ir reads a textual-IR file, runs the middle-end pipeline over
// every function it declares, and prints each function's IR once the whole
// pipeline (mem2reg, SCCP, register allocation, spill rewrite) has run. It
// mirrors cmd/kanso-cli's shape (read a file, parse, report, print,
// colorized status) but drives the IR core instead of the Kanso front end;
// the CLI is ambient tooling around the core, not part of it.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: minicc-ir <file.ir> [registers]")
		os.Exit(1)
	}

	path := os.Args[1]
	registers := 7
	if len(os.Args) >= 3 {
		if n, err := parsePositiveInt(os.Args[2]); err == nil {
			registers = n
		}
	}

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read %s: %s", path, err)
		os.Exit(1)
	}

	module, err := irtext.Parse(path, string(source))
	if err != nil {
		irtext.ReportParseError(string(source), err)
		os.Exit(1)
	}

	reporter := errors.NewErrorReporter(path, string(source))
	for _, name := range module.SortedFunctionNames() {
		if err := runPipeline(reporter, module, name, registers); err != nil {
			os.Exit(1)
		}
	}

	color.Green("✅ Successfully compiled %s", path)
}

func runPipeline(reporter *errors.ErrorReporter, module *ir.Module, name string, registers int) error {
	fn := module.Functions[name]

	preds := ir.Predecessors(fn)
	dom := ir.Dominators(fn, preds)
	domFrontier := ir.DominanceFrontier(fn, preds, dom)

	mem2regResult := ir.Mem2Reg(fn, preds, domFrontier)
	for _, warning := range mem2regResult.Warnings {
		fmt.Print(reporter.FormatError(warning))
	}

	if err := ir.SCCP(fn); err != nil {
		if ce, ok := err.(errors.CompilerError); ok {
			fmt.Print(reporter.FormatError(ce))
		} else {
			color.Red("%s", err)
		}
		return err
	}

	locations := ir.Allocate(fn, registers)
	ir.MaterializeSpills(fn, locations)

	fmt.Printf("-- %s (after mem2reg + sccp + regalloc, k=%d) --\n", name, registers)
	fmt.Print(ir.PrintFunction(fn))
	return nil
}

func parsePositiveInt(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not a number: %q", s)
		}
		n = n*10 + int(r-'0')
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return n, nil
}
