// Package eval implements Later's tree-walking evaluator (spec component
// G): one Evaluator per program, dispatching on ast.Node by type switch —
// the same shape as the teacher's eval/evaluator.go entry point — but
// generalized to value.Value's closed variant set, env.Env's linearity-
// aware slots, and spec §4.5's three stacks (environment, handler,
// supervisor) instead of the teacher's single scope.Scope and sentinel
// Break/Continue/Return objects. Control flow that the teacher represents
// as specially-typed values flowing through Eval's single return is
// represented here as Go's own multi-return: a Signal (ordinary error)
// alongside the value.Value, so `break`/`continue`/effect-unwind are
// distinct concrete types the evaluator switches on rather than values
// threaded through the value system itself.
package eval

import (
	"github.com/later-lang/later/ast"
	"github.com/later-lang/later/env"
	"github.com/later-lang/later/sourcemap"
	"github.com/later-lang/later/value"
)

// Run evaluates root as a whole program: a fresh root environment, a fresh
// root nursery, and a final wait for every top-level spawned task before
// reporting the program's result (spec I3, "no task outlives its
// supervisor" applies to the program's own implicit top-level nursery
// too).
func (ev *Evaluator) Run(root *ast.Block) (value.Value, error) {
	rootEnv := env.New(nil)
	ctx, _ := ev.RootCtx()
	v, sig := ev.Eval(root, rootEnv, ctx)
	if sig != nil {
		return v, sig
	}
	if err := ctx.Nursery.wait(); err != nil {
		return v, err
	}
	return v, nil
}

// Eval dispatches n to its evaluation rule, threading en (the lexical
// binding chain) and ctx (handler stack + nursery + cleanup flag)
// unchanged except where a rule introduces a new scope of one kind or the
// other.
func (ev *Evaluator) Eval(n ast.Node, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	if n == nil {
		return value.Nil, nil
	}
	switch v := n.(type) {
	case *ast.Lit:
		return ev.evalLit(v), nil
	case *ast.InterpString:
		return ev.evalInterpString(v, en, ctx)
	case *ast.Ident:
		return ev.evalIdent(v, en)
	case *ast.Bin:
		return ev.evalBin(v, en, ctx)
	case *ast.Un:
		return ev.evalUn(v, en, ctx)
	case *ast.If:
		return ev.evalIf(v, en, ctx)
	case *ast.Loop:
		return ev.evalLoop(v, en, ctx)
	case *ast.Break:
		return ev.evalBreak(v, en, ctx)
	case *ast.Continue:
		return value.Nil, &continueSignal{}
	case *ast.Block:
		return ev.evalBlock(v, env.New(en), ctx)
	case *ast.Let:
		return ev.evalLet(v, en, ctx)
	case *ast.Assign:
		return ev.evalAssign(v, en, ctx)
	case *ast.Fn:
		return ev.evalFn(v, en), nil
	case *ast.Call:
		return ev.evalCall(v, en, ctx)
	case *ast.Field:
		return ev.evalField(v, en, ctx)
	case *ast.Index:
		return ev.evalIndex(v, en, ctx)
	case *ast.List:
		return ev.evalList(v, en, ctx)
	case *ast.Object:
		return ev.evalObject(v, en, ctx)
	case *ast.Spread:
		return ev.Eval(v.Value, en, ctx)
	case *ast.As:
		return ev.evalAs(v, en, ctx)
	case *ast.Match:
		return ev.evalMatch(v, en, ctx)
	case *ast.Defer:
		return ev.evalDefer(v, en, ctx)
	case *ast.Handle:
		return ev.evalHandle(v, en, ctx)
	case *ast.Perform:
		return ev.evalPerform(v, en, ctx)
	case *ast.Resume:
		return ev.evalResume(v, en, ctx)
	case *ast.Spawn:
		return ev.evalSpawn(v, en, ctx)
	case *ast.All:
		return ev.evalAll(v, en, ctx)
	case *ast.Race:
		return ev.evalRace(v, en, ctx)
	case *ast.Await:
		return ev.evalAwait(v, en, ctx)
	case *ast.Timeout:
		return ev.evalTimeout(v, en, ctx)
	case *ast.Import:
		return value.Nil, nil
	case *ast.StageMark:
		return ev.Eval(v.Body, en, ctx)
	case *ast.Pipe:
		return value.Nil, fault(v.Span(), "internal: unresolved pipe expression reached evaluation")
	default:
		return value.Nil, fault(n.Span(), "internal: no evaluation rule for %s", n.Kind())
	}
}

// evalBlock runs each statement of b in sequence inside its own scope en,
// collecting `defer`s pushed directly in this block and running them LIFO
// on every exit path — normal fallthrough, an escaping break/continue, or
// a fault — per spec I4 ("deferred actions execute in strict LIFO order on
// any scope exit") and §4.5's "innermost scope's defer stack".
func (ev *Evaluator) evalBlock(b *ast.Block, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	blockCtx := ctx.child()
	var defers []deferredAction
	blockCtx.defers = &defers

	var result value.Value = value.Nil
	var sig Signal
	for _, stmt := range b.Stmts {
		result, sig = ev.Eval(stmt, en, blockCtx)
		if sig != nil {
			break
		}
	}
	cleanupSig := ev.runDefers(defers, ctx)
	if sig != nil {
		return value.Nil, sig
	}
	if cleanupSig != nil {
		return value.Nil, cleanupSig
	}
	return result, nil
}

// cancellationCheck raises the `cancel` effect when this task's cancel
// flag is set and evaluation is not currently inside a cleanup block
// (spec §4.5: loop heads, await, channel ops, and perform are cancellation
// points; cleanup masks the check so cleanups can complete). handled is
// false when there was nothing to do.
func (ev *Evaluator) cancellationCheck(en *env.Env, ctx *Ctx, span sourcemap.Span) (value.Value, Signal, bool) {
	if ctx.InCleanup || !ctx.isCancelled() {
		return value.Nil, nil, false
	}
	v, sig := ev.performEffect("cancel", nil, span, en, ctx)
	if uh, ok := sig.(*unhandledEffect); ok && uh.name == "cancel" {
		return value.Nil, fault(span, "cancelled"), true
	}
	return v, sig, true
}

// CheckCancel is cancellationCheck, exported for builtins whose blocking
// loops (`send`/`recv` on a would-block channel) are themselves
// cancellation points (spec §4.5) but have no env.Env of their own to pass
// through — performEffect never dereferences it, so nil is safe here.
func (ev *Evaluator) CheckCancel(ctx *Ctx, span sourcemap.Span) error {
	_, sig, handled := ev.cancellationCheck(nil, ctx, span)
	if !handled {
		return nil
	}
	return sig
}
