// Package eval's Evaluator generalizes the teacher's single struct (one
// per program, holding a parser reference, a scope, a builtin table, and
// an output writer) into one Evaluator per Later program: no parser
// reference (diagnostics carry their own span, rendered by diag.Bag, not
// threaded through the evaluator), no Types map (Later has no
// user-declared struct types), but still exactly one registered builtin
// table and one output writer — the two pieces of program-wide state a
// tree-walking evaluator with otherwise no state of its own (the call
// stack is Go's own, one frame per ast.Node) actually needs.
package eval

import (
	"context"
	"io"
	"os"

	"github.com/later-lang/later/sourcemap"
	"github.com/later-lang/later/value"
)

// Evaluator is one program's tree-walking interpreter.
type Evaluator struct {
	Builtins     map[string]BuiltinFunc
	Writer       io.Writer
	YieldBudget  int // cooperative-yield budget per spec §4.5/§9; 0 means unlimited
	nurseryIDGen int64
}

// BuiltinFunc is the signature every name in Evaluator.Builtins implements.
// It takes the evaluating Ctx (so higher-order builtins like `map`/`filter`
// can call back into a closure, and `send`/`recv` can observe cancellation)
// rather than the bare args the teacher's std.CallbackFunc takes, since
// Later's builtins need more of the evaluator than GoMix's did. span is
// the call site, for builtins that raise their own diagnostics (`assert`,
// bounds/type checks).
type BuiltinFunc func(ev *Evaluator, ctx *Ctx, args []value.Value, span sourcemap.Span) (value.Value, error)

// NewEvaluator builds an Evaluator with no builtins registered; callers
// (cmd/later, tests) populate Builtins via the builtins package's
// registration function.
func NewEvaluator() *Evaluator {
	return &Evaluator{Builtins: make(map[string]BuiltinFunc), Writer: os.Stdout}
}

// RootCtx creates the Ctx for a fresh program run: the root supervisor,
// no active handlers, not in a cleanup block.
func (ev *Evaluator) RootCtx() (*Ctx, context.Context) {
	n, ctx := ev.newNursery(context.Background(), nil)
	return &Ctx{Nursery: n}, ctx
}
