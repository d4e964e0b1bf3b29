package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/diag"
	"github.com/lumen-lang/lumen/internal/dump"
	"github.com/lumen-lang/lumen/internal/lexer"
	"github.com/lumen-lang/lumen/internal/parser"
	"github.com/lumen-lang/lumen/internal/source"
	"github.com/lumen-lang/lumen/internal/types"
)

// phase indexes spec.md §6's six compilation steps in their fixed order,
// used both to enforce "at most one step flag" and to reject a print
// option that names a phase after the selected stop-after phase.
type phase int

const (
	phasePreprocess phase = iota
	phaseLex
	phaseParse
	phaseSem
	phaseIR
	phaseASM
)

func (p phase) String() string {
	switch p {
	case phasePreprocess:
		return "preprocess"
	case phaseLex:
		return "lex"
	case phaseParse:
		return "parse"
	case phaseSem:
		return "sem"
	case phaseIR:
		return "ir"
	case phaseASM:
		return "asm"
	default:
		return "?"
	}
}

// frontendFlags mirrors spec.md §6's CLI surface: mutually-exclusive
// compilation-step flags and optional-value print-option flags (each
// defaulting to the literal "stdout" when given without "=FILE", via
// pflag's NoOptDefVal — the same optional-argument idiom CLI11 uses in
// original_source/cli/cli.cpp).
type frontendFlags struct {
	preprocess, lex, parse, sem, ir, asm bool

	printPreprocessed, printTokens, printAST string
	printTypes, printIR, printASM            string
}

func registerFrontendFlags(fs *pflag.FlagSet, f *frontendFlags) {
	fs.BoolVar(&f.preprocess, "preprocess", false, "stop after preprocessing")
	fs.BoolVar(&f.lex, "lex", false, "stop after lexing")
	fs.BoolVar(&f.parse, "parse", false, "stop after parsing")
	fs.BoolVar(&f.sem, "sem", false, "stop after semantic analysis")
	fs.BoolVar(&f.ir, "ir", false, "stop after IR generation (not implemented)")
	fs.BoolVar(&f.asm, "asm", false, "stop after code generation (not implemented)")

	optional := func(name, usage string, dest *string) {
		fs.StringVar(dest, name, "", usage)
		fs.Lookup(name).NoOptDefVal = "stdout"
	}
	optional("print-preprocessed", "print the preprocessed source", &f.printPreprocessed)
	optional("print-tokens", "print the token stream", &f.printTokens)
	optional("print-ast", "print the parsed AST", &f.printAST)
	optional("print-types", "print inferred top-level types", &f.printTypes)
	optional("print-ir", "print the generated IR (not implemented)", &f.printIR)
	optional("print-asm", "print the generated assembly (not implemented)", &f.printASM)
}

// stopAfter resolves the single selected step flag, defaulting to sem
// (the deepest phase this frontend actually implements) when none is
// given, and reports a cliArgError if more than one is set.
func (f *frontendFlags) stopAfter() (phase, error) {
	set := map[phase]bool{
		phasePreprocess: f.preprocess,
		phaseLex:        f.lex,
		phaseParse:      f.parse,
		phaseSem:        f.sem,
		phaseIR:         f.ir,
		phaseASM:        f.asm,
	}
	var chosen phase = -1
	count := 0
	for p, v := range set {
		if v {
			count++
			chosen = p
		}
	}
	if count > 1 {
		return 0, &cliArgError{"at most one compilation-step flag may be given"}
	}
	if count == 0 {
		return phaseSem, nil
	}
	return chosen, nil
}

type printRequest struct {
	phase phase
	dest  string // "" means not requested, else "stdout" or a file path
}

func (f *frontendFlags) printRequests() []printRequest {
	return []printRequest{
		{phasePreprocess, f.printPreprocessed},
		{phaseLex, f.printTokens},
		{phaseParse, f.printAST},
		{phaseSem, f.printTypes},
		{phaseIR, f.printIR},
		{phaseASM, f.printASM},
	}
}

func (f *frontendFlags) validate(stop phase) error {
	for _, r := range f.printRequests() {
		if r.dest == "" {
			continue
		}
		if r.phase > stop {
			return &cliArgError{fmt.Sprintf(
				"--print option for phase %q cannot be used when stopping after phase %q", r.phase, stop)}
		}
	}
	return nil
}

func openDest(dest string) (io.Writer, func(), error) {
	if dest == "" || dest == "stdout" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(dest)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// runFrontend implements spec.md §6.1/§6.2: it drives SourceManager ->
// Lexer -> Parser -> Typer as far as the selected stop-after phase,
// writing any requested print artifact along the way, and reports the
// diagnostic sink's contents to stderr at the end regardless of outcome.
func runFrontend(sourcePath string, f *frontendFlags) (err error) {
	if _, statErr := os.Stat(sourcePath); statErr != nil {
		return &userError{fmt.Sprintf("cannot open %q: %v", sourcePath, statErr)}
	}

	stop, verr := f.stopAfter()
	if verr != nil {
		return verr
	}
	if verr := f.validate(stop); verr != nil {
		return verr
	}

	sink := diag.NewSink()
	formatter := diag.NewFormatterTo(os.Stderr)
	defer func() {
		if r := recover(); r != nil {
			if ip, ok := r.(diag.InternalPanic); ok {
				fmt.Fprintln(os.Stderr, ip.Error())
				err = fmt.Errorf("internal error")
				return
			}
			panic(r)
		}
	}()
	defer func() {
		if sink.HasErrors() {
			formatter.FormatAll(sink)
			if err == nil {
				err = &userError{"compilation failed"}
			}
		} else if len(sink.All()) > 0 {
			formatter.FormatAll(sink)
		}
	}()

	var preprocessedLines []string
	var mgrOpts []source.Option
	if f.printPreprocessed != "" {
		mgrOpts = append(mgrOpts, source.WithLineObserver(func(_, _ int, line string) {
			preprocessedLines = append(preprocessedLines, line)
		}))
	}

	mgr, openErr := source.Open(sink, sourcePath, mgrOpts...)
	if openErr != nil {
		return &userError{openErr.Error()}
	}

	if stop == phasePreprocess {
		for {
			_, ok, fatal := mgr.Next()
			if fatal != nil || !ok {
				break
			}
		}
		return writePreprocessed(f, preprocessedLines)
	}

	var lxOpts []lexer.Option
	var tokens []lexer.Token
	if f.printTokens != "" {
		lxOpts = append(lxOpts, lexer.WithTokenObserver(func(t lexer.Token) {
			tokens = append(tokens, t)
		}))
	}
	lx := lexer.New(sink, mgr, lxOpts...)

	if stop == phaseLex {
		for {
			tok := lx.Next()
			if tok.Kind == lexer.Eof {
				break
			}
		}
		if err := writePreprocessed(f, preprocessedLines); err != nil {
			return err
		}
		return writeTokens(f, sink, tokens)
	}

	p := parser.New(lx, sink)
	prog := p.ParseProgram()

	if stop == phaseParse {
		if err := writePreprocessed(f, preprocessedLines); err != nil {
			return err
		}
		if err := writeTokens(f, sink, tokens); err != nil {
			return err
		}
		return writeAST(f, prog)
	}

	typer := types.NewTyper(sink)
	typer.CheckProgram(prog)

	if err := writePreprocessed(f, preprocessedLines); err != nil {
		return err
	}
	if err := writeTokens(f, sink, tokens); err != nil {
		return err
	}
	if err := writeAST(f, prog); err != nil {
		return err
	}
	if err := writeTypes(f, prog, typer); err != nil {
		return err
	}

	if stop == phaseIR || stop == phaseASM {
		sink.Report(diag.Diagnostic{
			Stage:    diag.StageInternal,
			Severity: diag.SeverityNote,
			Code:     diag.CodeUnimplementedPhase,
			Message:  fmt.Sprintf("%s generation is not implemented in this frontend", stop),
		})
	}

	return nil
}

func writePreprocessed(f *frontendFlags, lines []string) error {
	if f.printPreprocessed == "" {
		return nil
	}
	w, closeFn, err := openDest(f.printPreprocessed)
	if err != nil {
		return &cliArgError{err.Error()}
	}
	defer closeFn()
	dump.Preprocessed(w, lines)
	return nil
}

func writeTokens(f *frontendFlags, sink *diag.Sink, tokens []lexer.Token) error {
	if f.printTokens == "" {
		return nil
	}
	w, closeFn, err := openDest(f.printTokens)
	if err != nil {
		return &cliArgError{err.Error()}
	}
	defer closeFn()
	dump.Tokens(w, sink, tokens)
	return nil
}

func writeAST(f *frontendFlags, prog *ast.Program) error {
	if f.printAST == "" {
		return nil
	}
	w, closeFn, err := openDest(f.printAST)
	if err != nil {
		return &cliArgError{err.Error()}
	}
	defer closeFn()
	dump.AST(w, prog)
	return nil
}

func writeTypes(f *frontendFlags, prog *ast.Program, typer *types.Typer) error {
	if f.printTypes == "" {
		return nil
	}
	w, closeFn, err := openDest(f.printTypes)
	if err != nil {
		return &cliArgError{err.Error()}
	}
	defer closeFn()
	dump.Types(w, prog, typer)
	return nil
}
