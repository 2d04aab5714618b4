// Command nyx is the front-end driver for the nyx scripting language:
// parse, run the semantic passes, and emit bytecode.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-nyx/cmd/nyx/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
