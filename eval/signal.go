package eval

import (
	"github.com/later-lang/later/diag"
	"github.com/later-lang/later/sourcemap"
	"github.com/later-lang/later/value"
)

// Signal is what Eval returns alongside a value.Value (Eval(node, env,
// ctx) (value.Value, eval.Signal)). A nil Signal means normal
// completion. Every other case is an ordinary Go error so it propagates
// through plain return values the way the teacher's eval package
// propagates `*objects.Error`, rather than panic/recover — but unlike the
// teacher's single wrapper type, break/continue/effect-unwind are distinct
// concrete types the evaluator switches on instead of one object carrying
// a discriminant field, since Go lets the type switch itself be the
// discriminant.
type Signal = error

// breakSignal unwinds to the nearest enclosing Loop, carrying break's
// value (nil Value for a bare `break`).
type breakSignal struct{ Value value.Value }

func (b *breakSignal) Error() string { return "break outside of loop" }

// continueSignal unwinds to the nearest enclosing Loop's head.
type continueSignal struct{}

func (*continueSignal) Error() string { return "continue outside of loop" }

// abandonSignal unwinds a handler body's continuation after the handler
// returned a value without calling resume (spec §4.5: "the continuation
// is dropped"). It is only ever consumed by the *ast.Handle dispatcher
// that owns the goroutine raising it; seeing one anywhere else is an
// interpreter bug, not a program-level failure.
type abandonSignal struct{}

func (*abandonSignal) Error() string { return "continuation dropped" }

// fault builds a runtime diagnostic (spec §7 Runtime kind) wrapped as a Go
// error via diag.Error, the same adapter used everywhere else a runtime
// failure needs to travel as an ordinary return value.
func fault(span sourcemap.Span, format string, args ...any) error {
	return diag.NewError(diag.New(diag.KindRuntime, span, format, args...))
}

// Fault is fault, exported for the builtins package so a builtin's own
// type/arity/bounds checks raise the same Runtime-kind diagnostic shape
// as the evaluator's own.
func Fault(span sourcemap.Span, format string, args ...any) error {
	return fault(span, format, args...)
}
