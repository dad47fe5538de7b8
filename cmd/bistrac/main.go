// Command bistrac is the bistra kernel compiler CLI.
//
// Usage:
//
//	bistrac [options] <input.bs>
//
// Examples:
//
//	bistrac kernel.bs                 # Parse, verify, write bytecode to stdout
//	bistrac -t kernel.bs              # Autotune and write the best variant's bytecode to stdout
//	bistrac -t -o kernel.bc kernel.bs  # Autotune and write bytecode to a file
package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/nadavrot/bistra"
	"github.com/nadavrot/bistra/bytecode"
	"github.com/nadavrot/bistra/emit"
	"github.com/nadavrot/bistra/ir"
	"github.com/nadavrot/bistra/parser"
	"github.com/spf13/cobra"
)

var (
	flagTime    bool
	flagTune    bool
	flagOpt     bool
	flagOut     string
	versionFlag bool
)

// frontend is the parser.Frontend this build is wired to. It is nil until a
// concrete lexer/parser ships — parser.Frontend is specified only by
// interface in this module (see the parser package doc) — so bistrac
// reports a clear error rather than panicking when asked to compile a file.
var frontend parser.Frontend

func version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bistrac [options] <input.bs>",
		Short:         "bistra kernel DSL compiler and autotuner",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE:          runCompile,
	}
	flags := cmd.Flags()
	flags.BoolVarP(&flagTime, "time", "T", false, "print the estimated running time")
	flags.BoolVarP(&flagTune, "tune", "t", false, "autotune the kernel before emitting")
	// spec.md section 6.4 spells this pair "--opt|-O3" — -O3 is gcc-style
	// shorthand, not a single-rune pflag shorthand, so it's registered as
	// its own long flag bound to the same variable rather than as -opt's
	// -o/-p/-t shorthand rune; main rewrites a literal -O3 argument to --O3.
	flags.BoolVar(&flagOpt, "opt", false, "autotune with the canonical tuning chain (same as --tune)")
	flags.BoolVar(&flagOpt, "O3", false, "alias of --opt")
	flags.StringVarP(&flagOut, "out", "o", "", "write compiled bytecode to PATH (default: stdout)")
	flags.BoolVar(&versionFlag, "version", false, "print version")
	return cmd
}

func main() {
	// pflag reads a single-dash "-O3" as shorthand runes, so the gcc-style
	// spelling is rewritten to the registered --O3 long flag before parsing.
	args := append([]string(nil), os.Args[1:]...)
	for i, a := range args {
		if a == "--" {
			break
		}
		if a == "-O3" {
			args[i] = "--O3"
		}
	}
	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCompile(cmd *cobra.Command, args []string) error {
	if versionFlag {
		fmt.Printf("bistrac version %s\n", version())
		return nil
	}
	if len(args) < 1 {
		return fmt.Errorf("no input file specified")
	}
	inputPath := args[0]

	source, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	if frontend == nil {
		return fmt.Errorf("no parser.Frontend wired into this build; cmd/bistrac needs one registered before it can compile source")
	}
	prog, diags, err := frontend.Parse(string(source), inputPath)
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "%s:%d:%d: %s\n", inputPath, d.Line, d.Column, d.Message)
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", inputPath, err)
	}
	if len(diags) > 0 {
		return fmt.Errorf("%s: %d parse error(s)", inputPath, len(diags))
	}

	if errs := ir.Verify(prog); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "verify: %v\n", e)
		}
		return fmt.Errorf("%s: IR failed verification", inputPath)
	}

	ctx := context.Background()
	backend := emit.NewCostModelBackend(emit.DefaultCostModelConfig())

	final := prog
	if flagTune || flagOpt {
		final, err = bistra.TuneWithOptions(ctx, prog, bistra.TuneOptions{Backend: backend, Verify: false})
		if err != nil {
			return fmt.Errorf("tuning %s: %w", inputPath, err)
		}
	}

	if flagTime {
		seconds, err := backend.Evaluate(ctx, final)
		if err != nil {
			return fmt.Errorf("estimating running time: %w", err)
		}
		fmt.Printf("%s: estimated %gs\n", inputPath, seconds)
	}

	return writeOutput(inputPath, final)
}

func writeOutput(inputPath string, prog *ir.Program) error {
	if flagOut == "" {
		return bytecode.Serialize(os.Stdout, prog)
	}
	f, err := os.Create(flagOut)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	if err := bytecode.Serialize(f, prog); err != nil {
		return fmt.Errorf("writing bytecode: %w", err)
	}
	fmt.Printf("Successfully compiled %s to %s\n", inputPath, flagOut)
	return nil
}
