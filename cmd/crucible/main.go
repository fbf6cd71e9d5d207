// Command crucible runs sandboxed code verification, either as an HTTP
// service or as one-shot local commands.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/covenantcc/crucible/pkg/cli"
)

func main() {
	if err := cli.Execute(os.Stdout, os.Stderr); err != nil {
		// ErrFailed carries a non-passing outcome that was already
		// printed; everything else is a real error.
		if !errors.Is(err, cli.ErrFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
