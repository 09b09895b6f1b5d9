// Command ember runs Ember source files, drops into a REPL when given
// none, and can disassemble a compiled chunk — mirroring cmd/funxy/main.go's
// plain os.Args dispatch (no CLI framework in the teacher, none here either).
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/emberlox/ember/internal/config"
	"github.com/emberlox/ember/internal/diagnostics"
	"github.com/emberlox/ember/internal/disasm"
	"github.com/emberlox/ember/internal/parser"
	"github.com/emberlox/ember/internal/replhistory"
	"github.com/emberlox/ember/internal/vm"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "this is a bug in ember, please report it.")
			os.Exit(1)
		}
	}()

	if handleHelp() {
		return
	}
	if handleDisasm() {
		return
	}
	if handleRunFile() {
		return
	}
	runRepl()
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  %s                    start the REPL\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s <file>             run an %s source file\n", os.Args[0], config.SourceFileExt)
	fmt.Fprintf(os.Stderr, "  %s disasm <file>      print a file's disassembled bytecode\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  -stress-gc            force a GC collection on every allocation\n")
	fmt.Fprintf(os.Stderr, "  -trace-exec           ignored; the VM has no execution tracer\n")
}

func handleHelp() bool {
	if len(os.Args) < 2 {
		return false
	}
	switch os.Args[1] {
	case "-help", "--help", "help":
		usage()
		return true
	}
	return false
}

func hasFlag(args []string, name string) bool {
	for _, a := range args {
		if a == name {
			return true
		}
	}
	return false
}

func loadProjectConfig() *config.ProjectConfig {
	cfg, err := config.LoadProjectFile("ember.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return &config.ProjectConfig{}
	}
	return cfg
}

func handleDisasm() bool {
	if len(os.Args) < 3 || os.Args[1] != "disasm" {
		return false
	}
	path := os.Args[2]
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ember: %v\n", err)
		os.Exit(1)
	}

	program, errs := parser.Parse(string(source), 0)
	if len(errs) > 0 {
		reportAll(string(source), errs)
		os.Exit(1)
	}
	machine := vm.New(os.Stdout)
	fn, errs := vm.Compile(program, machine.GC())
	if len(errs) > 0 {
		reportAll(string(source), errs)
		os.Exit(1)
	}
	fmt.Print(disasm.Function(fn, filepath.Base(path)))

	if hasFlag(os.Args[3:], "-gc-stats") {
		fmt.Fprintln(os.Stdout, machine.GCStats())
	}
	return true
}

func handleRunFile() bool {
	if len(os.Args) < 2 {
		return false
	}
	first := os.Args[1]
	if strings.HasPrefix(first, "-") {
		return false
	}

	source, err := os.ReadFile(first)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ember: %v\n", err)
		os.Exit(1)
	}

	cfg := loadProjectConfig()
	machine := vm.New(os.Stdout)
	machine.Configure(cfg.GC.HeapGrowFactor, cfg.GC.InitialThresholdBytes)
	machine.SetStressGC(cfg.Debug.StressGC || hasFlag(os.Args[2:], "-stress-gc"))

	if errs := machine.Run(string(source), 0); len(errs) > 0 {
		reportAll(string(source), errs)
		os.Exit(1)
	}
	return true
}

// runRepl implements the REPL surface spec.md §6 assumes: a cumulative
// source buffer with base-offset tracking, so spans stay correct across
// inputs (see SPEC_FULL.md §5, grounded on original_source/src/repl.rs's
// use of a persistent editor + history — reedline/tree-sitter highlighting
// are out of scope here, but the cumulative-buffer/base-offset contract
// and a persisted history are carried forward).
func runRepl() {
	cfg := loadProjectConfig()
	machine := vm.New(os.Stdout)
	machine.Configure(cfg.GC.HeapGrowFactor, cfg.GC.InitialThresholdBytes)
	machine.SetStressGC(cfg.Debug.StressGC)

	historyPath := "ember_history.sqlite"
	hist, err := replhistory.Open(historyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: REPL history disabled: %v\n", err)
		hist = nil
	} else {
		defer hist.Close()
	}

	fmt.Printf("ember %s — :history, :gc, :quit\n", config.Version)

	var cumulative strings.Builder
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()

		switch strings.TrimSpace(line) {
		case ":quit", ":exit":
			return
		case ":gc":
			fmt.Println(machine.GCStats())
			continue
		case ":history":
			printHistory(hist)
			continue
		}

		base := cumulative.Len()
		cumulative.WriteString(line)
		cumulative.WriteByte('\n')

		var output strings.Builder
		machine.SetOutput(&output)

		runID := uuid.New().String()
		errs := machine.Run(line, base)
		machine.SetOutput(os.Stdout)

		if len(errs) > 0 {
			reportAll(cumulative.String(), errs)
		} else {
			fmt.Print(output.String())
		}

		if hist != nil {
			stats := machine.GCStats()
			_ = hist.Append(runID, line, output.String(), stats.Cycles, stats.BytesLive)
		}
	}
}

func printHistory(hist *replhistory.Store) {
	if hist == nil {
		fmt.Println("(history disabled)")
		return
	}
	entries, err := hist.Recent(20)
	if err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
		return
	}
	for _, e := range entries {
		fmt.Printf("%s  %s\n", e.RecordedAt.Format("15:04:05"), e.Input)
	}
}

func reportAll(source string, errs []*diagnostics.Error) {
	reporter := diagnostics.NewReporter()
	for _, e := range errs {
		reporter.Report(os.Stderr, source, e)
	}
}
