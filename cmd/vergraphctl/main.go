// Command vergraphctl is a thin shell around the vergraph library: each
// subcommand loads a wire-format file and applies one operation; the
// mutating ones (put, prune, merge) then write the file back, while get and
// branch only print. It carries no invariants of its own.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
