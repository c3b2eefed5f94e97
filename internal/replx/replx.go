// Package replx is an optional interactive debug shell for Later,
// repurposing the teacher's repl package (chzyer/readline for line
// editing/history, fatih/color for feedback) to drive this module's own
// lex/parse/stage/linearity/eval pipeline one top-level statement at a
// time instead of GoMix's. Unlike file mode (cmd/later's runSource), the
// shell never exits on a diagnostic - it reports and waits for the next
// line, and the evaluator instance (and its top-level environment) is
// shared across lines so a `let` on one line is visible to the next.
package replx

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/later-lang/later/builtins"
	"github.com/later-lang/later/diag"
	"github.com/later-lang/later/env"
	"github.com/later-lang/later/eval"
	"github.com/later-lang/later/linearity"
	"github.com/later-lang/later/parser"
	"github.com/later-lang/later/sourcemap"
	"github.com/later-lang/later/stage"
	"github.com/later-lang/later/value"
)

var (
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)
)

const (
	banner = `  _           _
 | |    __ _ | |_  ___  _ __
 | |   / _` + "`" + ` || __|/ _ \| '__|
 | |__| (_| || |_|  __/| |
 |_____\__,_| \__|\___||_|
`
	version = "v0.1.0"
	line    = "----------------------------------------------------------------"
	prompt  = "later >>> "
)

// Shell is one REPL session: a fresh evaluator and a persistent
// top-level environment that survives across lines, mirroring the
// teacher's single long-lived `evaluator` field in repl.Repl.Start.
type Shell struct {
	ev       *eval.Evaluator
	topLevel *env.Env
	file     int // count of lines evaluated; every line's source name is "<repl>"
}

// New builds a Shell with every builtin registered.
func New() *Shell {
	ev := eval.NewEvaluator()
	ev.Builtins = builtins.All()
	return &Shell{ev: ev, topLevel: env.New(nil)}
}

// PrintBanner writes the startup banner, version line, and usage hints.
func (s *Shell) PrintBanner(w io.Writer) {
	blueColor.Fprintf(w, "%s\n", line)
	greenColor.Fprintf(w, "%s\n", banner)
	blueColor.Fprintf(w, "%s\n", line)
	yellowColor.Fprintln(w, "Later "+version)
	blueColor.Fprintf(w, "%s\n", line)
	cyanColor.Fprintln(w, "Type an expression and press enter.")
	cyanColor.Fprintln(w, "Type '.exit' to quit.")
	blueColor.Fprintf(w, "%s\n", line)
}

// Start runs the read-eval-print loop until EOF or '.exit'.
func (s *Shell) Start(r io.Reader, w io.Writer) {
	s.PrintBanner(w)

	rl, err := readline.New(prompt)
	if err != nil {
		redColor.Fprintf(w, "later: could not start line editor: %v\n", err)
		return
	}
	defer rl.Close()

	for {
		input, err := rl.Readline()
		if err != nil {
			w.Write([]byte("\n"))
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == ".exit" {
			return
		}
		rl.SaveHistory(input)
		s.eval(w, input)
	}
}

// eval parses, checks, and runs one line against the shell's persistent
// top-level environment, reporting any diagnostic in red and any result
// in yellow - the REPL never suppresses a nil result the way file mode
// does, since seeing `nil` echoed back is useful interactively.
func (s *Shell) eval(w io.Writer, input string) {
	s.file++
	file := sourcemap.New("<repl>", input)

	root, bag := parser.Parse(file)
	if bag.Len() > 0 {
		redColor.Fprint(w, bag.Render())
		return
	}
	if bag := stage.Partition(file, root); bag.Len() > 0 {
		redColor.Fprint(w, bag.Render())
		return
	}
	if bag := linearity.Check(file, root); bag.Len() > 0 {
		redColor.Fprint(w, bag.Render())
		return
	}

	s.ev.Writer = w
	ctx, _ := s.ev.RootCtx()
	result, sig := s.ev.Eval(root, s.topLevel, ctx)
	if sig != nil {
		if de, ok := sig.(*diag.Error); ok {
			nb := diag.NewBag(file)
			redColor.Fprintln(w, nb.RenderOne(de.Diagnostic))
		} else {
			redColor.Fprintf(w, "%v\n", sig)
		}
		return
	}
	if err := ctx.Wait(); err != nil {
		redColor.Fprintf(w, "%v\n", err)
		return
	}
	yellowColor.Fprintln(w, value.Print(result))
}
