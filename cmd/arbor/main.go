// Command arbor inspects and builds a node tree through its typed
// relational views.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/arbor/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
