package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-nyx/bytecode"
	"github.com/cwbudde/go-nyx/diag"
	"github.com/spf13/cobra"
)

var (
	disassemble    bool
	compileVerbose bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a nyx source file to bytecode",
	Long: `Compile a nyx program through the full front end — lex, parse, run the
semantic/transform pass pipeline, and emit register-based bytecode — and
print the result as a disassembly.

There is no VM here to execute the emitted Chunk; "compile" exists to
inspect what the emitter produces, not to run it.`,
	Args: cobra.ExactArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().BoolVar(&disassemble, "disassemble", true, "print the disassembled bytecode")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "verbose output")
}

func compileScript(_ *cobra.Command, args []string) error {
	filename := args[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	input := string(data)

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", filename)
	}

	mod, coll := parseSource(filename, input)
	if coll.HasErrors() {
		fmt.Fprint(os.Stderr, coll.Format(true))
		fmt.Fprintln(os.Stderr)
		return fmt.Errorf("parsing failed with %d error(s)", len(coll.Diagnostics))
	}

	runDefaultPasses(mod, input, coll)
	if coll.HasErrors() {
		fmt.Fprint(os.Stderr, coll.Format(true))
		fmt.Fprintln(os.Stderr)
		return fmt.Errorf("semantic analysis failed with %d error(s)", len(coll.Diagnostics))
	}

	emitSink := &diag.Collector{}
	emitter := bytecode.NewEmitter(emitSink, input)
	chunk := emitter.EmitModule(mod)
	if emitSink.HasErrors() {
		fmt.Fprint(os.Stderr, emitSink.Format(true))
		fmt.Fprintln(os.Stderr)
		return fmt.Errorf("bytecode emission failed with %d error(s)", len(emitSink.Diagnostics))
	}

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "  Instructions: %d\n", len(chunk.Code))
		fmt.Fprintf(os.Stderr, "  Constants: %d\n", len(chunk.Constants))
	}

	if disassemble {
		fmt.Print(bytecode.NewDisassembler(chunk).String())
	}

	return nil
}
