package eval

import (
	"fmt"
	"strings"

	"github.com/later-lang/later/ast"
	"github.com/later-lang/later/env"
	"github.com/later-lang/later/value"
)

// deferredAction is one `defer expr` pushed onto a block's defer stack: the
// expression to run and the env it closes over, snapshotted at push time
// (spec §4.5 "capturing by value" — later mutation of a variable `defer`
// referenced must not change what the deferred action sees).
type deferredAction struct {
	expr ast.Node
	env  *env.Env
}

// evalDefer pushes v.Expr onto the innermost block's defer stack (threaded
// through Ctx.defers by evalBlock) and evaluates to nil itself.
func (ev *Evaluator) evalDefer(v *ast.Defer, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	if ctx.defers == nil {
		return value.Nil, fault(v.Span(), "internal: defer outside of any block scope")
	}
	*ctx.defers = append(*ctx.defers, deferredAction{expr: v.Expr, env: snapshotEnv(en)})
	return value.Nil, nil
}

// snapshotEnv flattens every binding visible from en (innermost shadowing
// wins) into a single fresh, parentless Env, so a later mutation of the
// original binding cannot be observed by a deferred action that already
// captured its value.
func snapshotEnv(en *env.Env) *env.Env {
	seen := make(map[string]bool)
	snap := env.New(nil)
	for cur := en; cur != nil; cur = cur.Parent() {
		for _, name := range cur.Names() {
			if seen[name] {
				continue
			}
			seen[name] = true
			if slot, ok := cur.LookupLocal(name); ok {
				snap.Define(name, slot.Value, false, false)
			}
		}
	}
	return snap
}

// runDefers executes actions in strict LIFO order (spec I4), regardless of
// whether the block they belonged to exited normally, via break/continue,
// or via a fault. A deferred action's own failure does not stop the rest
// from running (spec I4's "a deferred action's own failure does not
// prevent siblings from running"); every failure is collected and reported
// as a single composite fault, with the first as primary.
func (ev *Evaluator) runDefers(actions []deferredAction, ctx *Ctx) Signal {
	if len(actions) == 0 {
		return nil
	}
	cleanupCtx := ctx.child()
	cleanupCtx.InCleanup = true
	var faults []error
	for i := len(actions) - 1; i >= 0; i-- {
		a := actions[i]
		_, sig := ev.Eval(a.expr, a.env, cleanupCtx)
		switch sig.(type) {
		case nil:
			// ok
		case *breakSignal:
			faults = append(faults, fault(a.expr.Span(), "break is not allowed inside a defer"))
		case *continueSignal:
			faults = append(faults, fault(a.expr.Span(), "continue is not allowed inside a defer"))
		case *unhandledEffect:
			faults = append(faults, fault(a.expr.Span(), "unhandled effect in defer"))
		default:
			faults = append(faults, sig)
		}
	}
	if len(faults) == 0 {
		return nil
	}
	if len(faults) == 1 {
		return faults[0]
	}
	var extra []string
	for _, f := range faults[1:] {
		extra = append(extra, f.Error())
	}
	return fault(actions[0].expr.Span(), "%s (and %d more cleanup failure(s): %s)", faults[0].Error(), len(extra), strings.Join(extra, "; "))
}

// RunCleanup drives a Resource's fallible cleanup to completion (spec
// §4.5 "fallible cleanup with retry"): it loops the cleanup function while
// it reports value.DecisionRetry, stops cleanly on DecisionAbandon, and
// stops on DecisionOK. cleanupRetryLimit bounds the loop (an unbounded retry
// would hang the interpreter on a cleanup that never settles; spec leaves
// the bound implementation-defined the way it leaves the yield budget
// implementation-defined).
const cleanupRetryLimit = 1000

func RunCleanup(r *value.Resource) error {
	if r.Cleanup == nil {
		return nil
	}
	for attempt := 1; attempt <= cleanupRetryLimit; attempt++ {
		decision, err := r.Cleanup()
		r.CleanupLog = append(r.CleanupLog, value.CleanupLogEntry{Attempt: attempt, Err: err})
		switch decision {
		case value.DecisionRetry:
			continue
		case value.DecisionAbandon:
			return nil
		default: // DecisionOK
			return err
		}
	}
	return fmt.Errorf("cleanup did not settle after %d attempts", cleanupRetryLimit)
}
