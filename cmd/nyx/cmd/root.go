package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "nyx",
	Short: "nyx language parser and bytecode compiler",
	Long: `nyx is a front-end toolchain for the nyx scripting language: a lexer,
a recursive-descent parser producing a flattened IR, a semantic/transform
pass pipeline, and a register-based bytecode emitter.

This tool covers the front end and middle end only — it has no VM to run
the emitted bytecode, so "compile" produces a disassembly rather than a
runnable program.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
