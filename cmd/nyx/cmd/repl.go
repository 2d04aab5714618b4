package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/cwbudde/go-nyx/diag"
	"github.com/cwbudde/go-nyx/ir"
	"github.com/cwbudde/go-nyx/lexer"
	"github.com/cwbudde/go-nyx/parser"
	"github.com/cwbudde/go-nyx/token"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Read-eval-print loop over the parser, one line at a time",
	Long: `Read nyx source line by line and print each declaration's IR, using
parser.Parser.ParseLine the way a REPL feeds a fresh line into the scanner
whenever the current one turns out syntactically open.

There is no evaluator here, so "eval" means "parse and run the default
pass pipeline" — the loop prints the resulting IR, not a computed value.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(_ *cobra.Command, _ []string) error {
	fmt.Println("nyx repl — Ctrl-D to exit")

	src := newReplSource("<repl>", bufio.NewScanner(os.Stdin))
	coll := &diag.Collector{}
	p := parser.New(src, "<repl>", "", coll)

	for {
		src.resetPrompt()
		coll.Diagnostics = coll.Diagnostics[:0]

		decls := p.ParseLine()
		switch {
		case coll.HasErrors():
			fmt.Println(coll.Format(true))
		case len(decls) > 0:
			line := ir.NewModule("<repl>", decls, decls[0].Span)
			runDefaultPasses(line, "", coll)
			if coll.HasErrors() {
				fmt.Println(coll.Format(true))
			} else {
				for _, decl := range line.Body {
					fmt.Println(decl.String())
				}
			}
		}

		// decls == nil and no diagnostic means ParseLine hit a blank line
		// with nothing behind it; only src.done (the scanner genuinely
		// running out of input, i.e. Ctrl-D) ends the loop.
		if src.done {
			fmt.Println()
			return nil
		}
	}
}

// replSource is a token.Source that re-lexes one input line at a time,
// pulling another from stdin whenever the current line's tokens run out —
// the on-demand feed ParseLine's doc comment describes. It prints its own
// prompt as part of that pull, primary on the first line of a logical
// declaration and a continuation marker on every line after.
type replSource struct {
	file    string
	scanner *bufio.Scanner
	lex     *lexer.Lexer
	first   bool
	done    bool // true once the scanner has run out of input (Ctrl-D)
}

func newReplSource(file string, scanner *bufio.Scanner) *replSource {
	return &replSource{file: file, scanner: scanner, lex: lexer.New(file, ""), first: true}
}

func (s *replSource) resetPrompt() { s.first = true }

func (s *replSource) Next() token.Token {
	for {
		tok := s.lex.Next()
		if tok.Kind != token.EOF {
			return tok
		}
		if !s.pullLine() {
			return tok
		}
	}
}

func (s *replSource) pullLine() bool {
	if s.first {
		fmt.Print("nyx> ")
	} else {
		fmt.Print("...  ")
	}
	s.first = false
	if !s.scanner.Scan() {
		s.done = true
		return false
	}
	s.lex = lexer.New(s.file, s.scanner.Text()+"\n")
	return true
}
