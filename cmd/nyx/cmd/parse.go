package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/go-nyx/diag"
	"github.com/cwbudde/go-nyx/ir"
	"github.com/cwbudde/go-nyx/lexer"
	"github.com/cwbudde/go-nyx/parser"
	"github.com/cwbudde/go-nyx/pass"
	"github.com/cwbudde/go-nyx/passes"
	"github.com/spf13/cobra"
)

var (
	parseExpression bool
	skipPasses      bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse nyx source and print its IR",
	Long: `Parse nyx source code, run it through the semantic/transform pass
pipeline, and print the resulting IR in its canonical debug form.

If no file is provided, reads from stdin. Use -e to parse a single
expression from the command line.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVarP(&parseExpression, "expression", "e", false, "parse an expression from the command line")
	parseCmd.Flags().BoolVar(&skipPasses, "no-passes", false, "print the raw parser IR without running the pass pipeline")
}

func runParse(_ *cobra.Command, args []string) error {
	filename, input, err := readSource(parseExpression, args)
	if err != nil {
		return err
	}

	mod, coll := parseSource(filename, input)
	if coll.HasErrors() {
		fmt.Fprint(os.Stderr, coll.Format(true))
		fmt.Fprintln(os.Stderr)
		return fmt.Errorf("parsing failed with %d error(s)", len(coll.Diagnostics))
	}

	if !skipPasses {
		runDefaultPasses(mod, input, coll)
		if coll.HasErrors() {
			fmt.Fprint(os.Stderr, coll.Format(true))
			fmt.Fprintln(os.Stderr)
			return fmt.Errorf("semantic analysis failed with %d error(s)", len(coll.Diagnostics))
		}
	}

	fmt.Println(mod.String())
	return nil
}

func readSource(asExpression bool, args []string) (filename, input string, err error) {
	switch {
	case asExpression:
		if len(args) == 0 {
			return "", "", fmt.Errorf("no expression provided")
		}
		return "<expr>", args[0], nil
	case len(args) > 0:
		data, rerr := os.ReadFile(args[0])
		if rerr != nil {
			return "", "", fmt.Errorf("error reading file: %w", rerr)
		}
		return args[0], string(data), nil
	default:
		data, rerr := io.ReadAll(os.Stdin)
		if rerr != nil {
			return "", "", fmt.Errorf("error reading stdin: %w", rerr)
		}
		return "<stdin>", string(data), nil
	}
}

func parseSource(filename, input string) (*ir.Node, *diag.Collector) {
	coll := &diag.Collector{}
	l := lexer.New(filename, input)
	p := parser.New(l, filename, input, coll)
	return p.ParseProgram(), coll
}

// runDefaultPasses runs every semantic/transform pass in the order the
// emitter expects to see them already applied: constant folding and
// dead-code elimination before the annotation-only analysis passes, so
// method/function/expression analysis see the folded, trimmed tree.
func runDefaultPasses(mod *ir.Node, source string, sink diag.Sink) {
	m := pass.NewManager(
		passes.ConstantFolding{},
		passes.DeadBranchElimination{},
		passes.DeadCodeElimination{},
		passes.MethodAnalysis{},
		passes.FunctionAnalysis{},
		passes.ExpressionAnalysis{},
	)
	ctx := &pass.Context{Sink: sink, Source: source}
	m.Run(mod, ctx)
}
