// Command enfilade drives a handful of built-in demo programs through
// the enfilade runtime's adaptive execution pipeline (§6.1). It is
// scaffolding for exercising and inspecting pkg/enfilade, not a
// language front end: the demos are built directly with the Go
// expression builder, not parsed from a source file.
package main

import (
	"fmt"
	"os"

	"github.com/vassilibykov/enfilade-go/cmd/enfilade/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
