package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cliArgError marks a flag/argument validation failure (exit code 2).
type cliArgError struct{ msg string }

func (e *cliArgError) Error() string { return e.msg }

// userError marks a compiler-observable failure already reported through
// the diagnostic sink (syntax error, type error, preprocessor error) —
// exit code 1 per spec.md §6.
type userError struct{ msg string }

func (e *userError) Error() string { return e.msg }

var cmdRoot = &cobra.Command{
	Use:   "lumen <source>",
	Short: "Lumen compiler frontend",
	Long: `lumen preprocesses, lexes, parses, and type-checks a Lumen source
file. It implements only the frontend of the compiler: no code
generation, linking, or incremental reparsing.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFrontend(args[0], rootFlags)
	},
}

var cmdFrontend = &cobra.Command{
	Use:   "frontend <source>",
	Short: "Run the compiler frontend, grouping step and print options",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFrontend(args[0], frontendSubFlags)
	},
}

var (
	rootFlags        = &frontendFlags{}
	frontendSubFlags = &frontendFlags{}
)

func init() {
	registerFrontendFlags(cmdRoot.Flags(), rootFlags)
	registerFrontendFlags(cmdFrontend.Flags(), frontendSubFlags)
	cmdRoot.AddCommand(cmdFrontend)

	// Cobra's own flag-parsing and argument-count failures are invalid CLI
	// arguments as well (exit code 2).
	cmdRoot.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &cliArgError{err.Error()}
	})
	for _, c := range []*cobra.Command{cmdRoot, cmdFrontend} {
		check := c.Args
		c.Args = func(cmd *cobra.Command, args []string) error {
			if err := check(cmd, args); err != nil {
				return &cliArgError{err.Error()}
			}
			return nil
		}
	}
}

// Execute parses os.Args and runs the selected command, translating the
// result into spec.md §6's exit code table. --help/--help-all are
// intercepted ahead of cobra's own parsing (exactly as main.go intercepts
// --version/--build-info) since cobra's built-in help always exits 0, not
// the 99/98 this frontend requires. A plain --help is routed through
// cmdRoot.Find so "lumen frontend --help" prints the frontend
// subcommand's own help rather than the root command's.
func Execute() int {
	args := os.Args[1:]
	for _, arg := range args {
		if arg == "--help-all" {
			printHelpAll()
			return 98
		}
	}
	if hasHelpFlag(args) {
		target, _, err := cmdRoot.Find(args)
		if err != nil || target == nil {
			target = cmdRoot
		}
		_ = target.Help()
		return 99
	}

	err := cmdRoot.Execute()
	switch {
	case err == nil:
		return 0
	case isCLIArgError(err):
		fmt.Fprintln(os.Stderr, err)
		return 2
	case isUserError(err):
		return 1
	default:
		fmt.Fprintln(os.Stderr, err)
		return 3
	}
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
	}
	return false
}

func isCLIArgError(err error) bool {
	_, ok := err.(*cliArgError)
	return ok
}

func isUserError(err error) bool {
	_, ok := err.(*userError)
	return ok
}

func printHelpAll() {
	fmt.Println(cmdRoot.Long)
	fmt.Println()
	fmt.Println("Compilation-steps:")
	fmt.Println("  --preprocess, --lex, --parse, --sem, --ir, --asm   stop after this phase (mutually exclusive)")
	fmt.Println()
	fmt.Println("Print-options:")
	fmt.Println("  --print-preprocessed[=FILE]  --print-tokens[=FILE]  --print-ast[=FILE]")
	fmt.Println("  --print-types[=FILE]         --print-ir[=FILE]      --print-asm[=FILE]")
	fmt.Println()
	fmt.Println(cmdRoot.UsageString())
}
