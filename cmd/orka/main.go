// Command orka compiles an Orka source file.
//
// The pipeline runs lexing, parsing, lowering to IR, verification, optional
// optimization and, on request, translation to LLVM IR. Diagnostics are
// printed to stderr grouped by phase. The exit status is 1 if any phase
// reported a diagnostic and 2 for a usage error.
//
// Usage:
//
//	orka [flags] <file>
//
// With no output flag the verified IR is printed to stdout.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gmh5225/compiler-orka/internal/codegen"
	"github.com/gmh5225/compiler-orka/internal/ir"
	"github.com/gmh5225/compiler-orka/internal/lexer"
	"github.com/gmh5225/compiler-orka/internal/llvm"
	"github.com/gmh5225/compiler-orka/internal/optimizer"
	"github.com/gmh5225/compiler-orka/internal/parser"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	testLex  bool
	ast      bool
	llvm     bool
	emitLLVM bool
	optimize bool
	verbose  bool
	output   string
	source   string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("orka", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.testLex, "test-lex", false, "print the token stream and stop")
	fs.BoolVar(&opts.ast, "ast", false, "print the syntax tree")
	fs.BoolVar(&opts.llvm, "llvm", false, "print LLVM IR to stdout")
	fs.BoolVar(&opts.emitLLVM, "emit-llvm", false, "write LLVM IR to the output file")
	fs.BoolVar(&opts.optimize, "O", false, "run the optimizer")
	fs.BoolVar(&opts.verbose, "v", false, "report progress on stderr")
	fs.StringVar(&opts.output, "o", "", "output file for -emit-llvm (default: <source>.ll)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: orka [flags] <source-file>\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.New("expected exactly one source file")
	}
	opts.source = fs.Arg(0)

	if opts.output == "" {
		opts.output = strings.TrimSuffix(opts.source, filepath.Ext(opts.source)) + ".ll"
	}
	return opts, nil
}

// run compiles according to args and returns the exit status.
func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "orka: %v\n", err)
		}
		return 2
	}

	c := &compilation{opts: opts, stdout: stdout, stderr: stderr}
	if !c.run() {
		return 1
	}
	return 0
}

// compilation is one run of the pipeline.
type compilation struct {
	opts   *options
	stdout io.Writer
	stderr io.Writer
}

func (c *compilation) run() bool {
	lex, err := lexer.Open(c.opts.source)
	if err != nil {
		fmt.Fprintf(c.stderr, "orka: %v\n", err)
		return false
	}

	if c.opts.testLex {
		tokens, errs := lex.Tokenize()
		for _, tok := range tokens {
			fmt.Fprintln(c.stdout, tok)
		}
		return c.report("Lexical errors", errs)
	}

	tree, errs := parser.New(lex).Parse()
	if c.opts.ast {
		fmt.Fprint(c.stdout, tree)
	}
	if !c.report("Syntax errors", errs) {
		return false
	}
	c.progress("Parsing successful")

	module, errs := codegen.Compile(tree)
	if !c.report("Semantic errors", errs) {
		return false
	}
	c.progress("IR generation successful")

	if !c.verify(module, "IR verification errors") {
		return false
	}

	if c.opts.optimize {
		opt := optimizer.NewOptimizer()
		if c.opts.verbose {
			opt.SetOutput(c.stderr)
		}
		if err := opt.Optimize(module); err != nil {
			fmt.Fprintf(c.stderr, "\nOptimization error: %v\n", err)
			return false
		}
		if !c.verify(module, "IR verification errors after optimization") {
			return false
		}
		c.progress("Optimization successful (%s)", opt.Stats())
	}

	switch {
	case c.opts.llvm || c.opts.emitLLVM:
		return c.emitLLVM(module)
	case !c.opts.ast:
		fmt.Fprint(c.stdout, module)
	}
	return true
}

func (c *compilation) verify(module *ir.Module, title string) bool {
	return c.report(title, module.Verify())
}

func (c *compilation) emitLLVM(module *ir.Module) bool {
	out, err := llvm.Emit(module)
	if err != nil {
		fmt.Fprintf(c.stderr, "\nLLVM emission error: %v\n", err)
		return false
	}

	if c.opts.llvm {
		fmt.Fprint(c.stdout, out)
	}
	if c.opts.emitLLVM {
		if err := os.WriteFile(c.opts.output, []byte(out.String()), 0o644); err != nil {
			fmt.Fprintf(c.stderr, "orka: writing %s: %v\n", c.opts.output, err)
			return false
		}
		c.progress("Wrote %s", c.opts.output)
	}
	return true
}

// report prints errs under title and reports whether there were none.
func (c *compilation) report(title string, errs []error) bool {
	if len(errs) == 0 {
		return true
	}
	fmt.Fprintf(c.stderr, "%s:\n", title)
	for _, err := range errs {
		fmt.Fprintf(c.stderr, "  %v\n", err)
	}
	return false
}

func (c *compilation) progress(format string, args ...interface{}) {
	if c.opts.verbose {
		fmt.Fprintf(c.stderr, "✓ "+format+"\n", args...)
	}
}
