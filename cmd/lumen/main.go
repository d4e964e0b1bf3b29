// Command lumen drives the frontend of the Lumen compiler: preprocess,
// lex, parse, and type-check a source file, optionally dumping any
// intermediate artifact and stopping after a chosen phase.
//
// Grounded on playbymail-ottomap's main.go: a pre-cobra scan of os.Args
// for --version/--build-info (cobra's own flag parsing runs too late for
// these to short-circuit before subcommand resolution), then handing off
// to cobra for everything else.
package main

import (
	"fmt"
	"os"

	"github.com/maloquacious/semver"
)

var version = semver.Version{
	Major: 0,
	Minor: 1,
	Patch: 0,
	Build: semver.Commit(),
}

func main() {
	for _, arg := range os.Args[1:] {
		switch arg {
		case "-version", "--version":
			fmt.Println(version.Short())
			return
		case "-build-info", "--build-info":
			fmt.Println(version.String())
			return
		}
	}

	os.Exit(Execute())
}
