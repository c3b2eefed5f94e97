package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/later-lang/later/ast"
	"github.com/later-lang/later/builtins"
	"github.com/later-lang/later/diag"
	"github.com/later-lang/later/eval"
	"github.com/later-lang/later/linearity"
	"github.com/later-lang/later/parser"
	"github.com/later-lang/later/sourcemap"
	"github.com/later-lang/later/stage"
	"github.com/later-lang/later/value"
)

// errColor/hintColor are the two colors SPEC_FULL.md's ambient-stack section
// promises: red for the diagnostic message itself, cyan for the trailing
// "did you mean" hint - the same red/cyan split the teacher's main/main.go
// and repl/repl.go use for error vs. suggestion text. EnableColor overrides
// fatih/color's own os.Stdout-based TTY guess, since r.color already reflects
// a TTY check against stderr (the stream these actually write to) done once
// in main(); whether these ever fire is entirely gated by r.color below.
var (
	errColor  = color.New(color.FgRed)
	hintColor = color.New(color.FgCyan)
)

func init() {
	errColor.EnableColor()
	hintColor.EnableColor()
}

// run holds one program's pipeline state: the source file and the two
// streams diagnostics/output are split across (spec §6: "stdout receives
// the printed value... stderr receives diagnostics"). debug, when set by
// `later --debug`, dumps the tree (ast.Dump) to stderr right after parsing,
// the same inspection `main/main.go`'s PrintingVisitor gave the teacher.
// color controls whether reportBag/reportRuntimeError colorize their
// output (main.go decides this from --no-color plus a TTY check on
// stderr before constructing run; tests leave it false except the one
// that checks the colored output, matching the
// teacher's own convention of only coloring real terminal output).
type run struct {
	file           *sourcemap.File
	stdout, stderr io.Writer
	debug          bool
	color          bool
	yieldBudget    int
}

func newRun(name, src string, stdout, stderr io.Writer) *run {
	return &run{file: sourcemap.New(name, src), stdout: stdout, stderr: stderr}
}

// exec drives the full pipeline and returns the process exit code (0 on
// success, 1 on any diagnostic or runtime failure, per spec §6).
func (r *run) exec() int {
	root, bag := parser.Parse(r.file)
	if r.debug {
		fmt.Fprint(r.stderr, ast.Dump(root))
	}
	if bag.Len() > 0 {
		r.reportBag(bag)
		return 1
	}

	if bag := stage.Partition(r.file, root); bag.Len() > 0 {
		r.reportBag(bag)
		return 1
	}

	if bag := linearity.Check(r.file, root); bag.Len() > 0 {
		r.reportBag(bag)
		return 1
	}

	ev := eval.NewEvaluator()
	ev.Builtins = builtins.All()
	ev.Writer = r.stdout
	ev.YieldBudget = r.yieldBudget

	result, runErr := ev.Run(root)
	if runErr != nil {
		r.reportRuntimeError(runErr)
		return 1
	}

	if result != value.Nil {
		fmt.Fprintln(r.stdout, value.Print(result))
	}
	return 0
}

// reportBag renders every diagnostic in bag and, when r.color is set,
// colorizes it the way SPEC_FULL.md's ambient-stack section describes:
// the `file:line:col: message` line in red, a trailing "did you mean"
// hint in cyan, snippet/caret lines left plain. diag itself stays
// color-agnostic (so its own tests can assert on exact substrings); the
// colorizing happens only here, in the CLI-facing layer.
func (r *run) reportBag(bag *diag.Bag) {
	items := bag.Items()
	for i, d := range items {
		if i > 0 {
			fmt.Fprintln(r.stderr)
		}
		r.writeColorized(bag.RenderOne(d))
		fmt.Fprintln(r.stderr)
	}
	if n := len(items); n > 1 {
		fmt.Fprintf(r.stderr, "%d errors\n", n)
	}
}

// reportRuntimeError formats a runtime failure the same way static
// diagnostics are formatted (spec §4.6's file:line:col form), falling
// back to the bare Go error text for the rare non-*diag.Error failure
// (e.g. a context-cancellation error surfacing straight from errgroup).
func (r *run) reportRuntimeError(err error) {
	if de, ok := err.(*diag.Error); ok {
		bag := diag.NewBag(r.file)
		r.writeColorized(bag.RenderOne(de.Diagnostic))
		fmt.Fprintln(r.stderr)
		return
	}
	if r.color {
		errColor.Fprintf(r.stderr, "later: %v\n", err)
		return
	}
	fmt.Fprintf(r.stderr, "later: %v\n", err)
}

// writeColorized writes one RenderOne result to stderr, colorizing the
// leading `file:line:col: message` line red and any "= note:" suggestion
// line cyan when r.color is set; other lines (snippet, caret) print plain.
func (r *run) writeColorized(rendered string) {
	if !r.color {
		fmt.Fprint(r.stderr, rendered)
		return
	}
	lines := strings.Split(rendered, "\n")
	for i, line := range lines {
		if i > 0 {
			fmt.Fprintln(r.stderr)
		}
		switch {
		case i == 0:
			errColor.Fprint(r.stderr, line)
		case strings.HasPrefix(strings.TrimSpace(line), "= note:"):
			hintColor.Fprint(r.stderr, line)
		default:
			fmt.Fprint(r.stderr, line)
		}
	}
}
