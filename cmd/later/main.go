// Command later is the CLI driver spec §6 defines: it ingests a single
// `.later` source file, runs it through the lexer/parser, stage
// partitioner, linearity checker, and evaluator in that order, and prints
// the final expression's value (or a diagnostic) the way the teacher's
// main/main.go drives GoMix's own parser+eval pipeline from argv.
//
// later <file>          runs file through the full pipeline
// later <file> --debug  also dumps the parsed tree to stderr
// later repl            starts the interactive debug shell (internal/replx)
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/later-lang/later/internal/replx"
)

func main() {
	var debug, noColor bool
	var yieldBudget int
	root := &cobra.Command{
		Use:           "later <file.later>",
		Short:         "Later - a linear, effectful, structured-concurrency expression language",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				fmt.Fprintln(os.Stderr, "Usage: later <file.later>")
				os.Exit(1)
			}
			// Colorizing is skipped automatically when stderr is not a TTY
			// (matching fatih/color's own convention, checked here directly
			// via its mattn/go-isatty dependency since we write to os.Stderr
			// rather than the color package's stdout-only NoColor default),
			// or whenever --no-color is passed explicitly.
			useColor := !noColor && isatty.IsTerminal(os.Stderr.Fd())
			src, err := os.ReadFile(args[0])
			if err != nil {
				reportColored(useColor, os.Stderr, "later: could not read %s: %v\n", args[0], err)
				os.Exit(1)
			}
			r := newRun(args[0], string(src), os.Stdout, os.Stderr)
			r.debug = debug
			r.color = useColor
			r.yieldBudget = yieldBudget
			os.Exit(r.exec())
			return nil
		},
	}
	root.Flags().BoolVar(&debug, "debug", false, "dump the parsed tree to stderr before running")
	root.Flags().BoolVar(&noColor, "no-color", false, "disable colorized diagnostic output")
	root.Flags().IntVar(&yieldBudget, "yield-budget", 0, "cooperative-yield budget in loop iterations (0 = unlimited)")
	root.AddCommand(&cobra.Command{
		Use:   "repl",
		Short: "start an interactive Later shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			replx.New().Start(os.Stdin, os.Stdout)
			return nil
		},
	})

	if err := root.Execute(); err != nil {
		reportColored(!noColor && isatty.IsTerminal(os.Stderr.Fd()), os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// reportColored writes a red-colorized (or plain, when enabled is false)
// message to w - the same red-for-errors convention reportBag/
// reportRuntimeError apply to the pipeline's own diagnostics, reused here
// for the two ad hoc usage/exec errors that never reach the pipeline.
func reportColored(enabled bool, w io.Writer, format string, args ...any) {
	if enabled {
		errColor.Fprintf(w, format, args...)
		return
	}
	fmt.Fprintf(w, format, args...)
}

// runSource is the testable core of file mode: every diagnostic-producing
// pass runs in order (spec §2's flow: lex+parse -> stage -> linearity ->
// eval -> print), and the first one to report anything halts the
// pipeline there (compile-time kinds never reach the evaluator, per spec
// §7's propagation rule). Splitting this out of main() lets cmd/later's
// tests drive whole programs without touching process exit or real
// stdio, the same separation the teacher draws between main()'s
// os.Exit-laden dispatch and its own pure executeFileWithRecovery.
func runSource(name, src string, stdout, stderr io.Writer) int {
	return newRun(name, src, stdout, stderr).exec()
}
