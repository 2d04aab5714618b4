package cmd

import (
	"fmt"

	"github.com/cwbudde/go-nyx/lexer"
	"github.com/cwbudde/go-nyx/token"
	"github.com/spf13/cobra"
)

var (
	lexExpression bool
	showPos       bool
	showKind      bool
	onlyIllegal   bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize nyx source and print the resulting tokens",
	Long: `Tokenize nyx source code and print the resulting token stream, for
debugging the lexer and understanding how source gets cut into tokens.`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().BoolVarP(&lexExpression, "expression", "e", false, "tokenize an expression from the command line")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showKind, "show-kind", false, "show token kind names")
	lexCmd.Flags().BoolVar(&onlyIllegal, "only-illegal", false, "show only illegal tokens")
}

func lexScript(_ *cobra.Command, args []string) error {
	filename, input, err := readSource(lexExpression, args)
	if err != nil {
		return err
	}

	l := lexer.New(filename, input)

	var illegalCount int
	for {
		tok := l.Next()
		if onlyIllegal && tok.Kind != token.Illegal {
			if tok.Kind == token.EOF {
				break
			}
			continue
		}
		printToken(tok)
		if tok.Kind == token.Illegal {
			illegalCount++
		}
		if tok.Kind == token.EOF {
			break
		}
	}

	if illegalCount > 0 {
		return fmt.Errorf("found %d illegal token(s)", illegalCount)
	}
	return nil
}

func printToken(tok token.Token) {
	var out string
	if showKind {
		out = fmt.Sprintf("[%-12s]", tok.Kind)
	}
	if tok.Literal == "" {
		out += fmt.Sprintf(" %s", tok.Kind)
	} else {
		out += fmt.Sprintf(" %q", tok.Literal)
	}
	if showPos {
		out += fmt.Sprintf(" @%d:%d", tok.Span.Start.Line, tok.Span.Start.Column)
	}
	fmt.Println(out)
}
