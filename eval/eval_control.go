package eval

import (
	"github.com/later-lang/later/ast"
	"github.com/later-lang/later/env"
	"github.com/later-lang/later/value"
)

func (ev *Evaluator) evalIf(v *ast.If, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	cond, sig := ev.Eval(v.Cond, en, ctx)
	if sig != nil {
		return value.Nil, sig
	}
	if value.IsTruthy(cond) {
		return ev.Eval(v.Then, en, ctx)
	}
	if v.Else != nil {
		return ev.Eval(v.Else, en, ctx)
	}
	return value.Nil, nil
}

// evalLoop runs v.Body (a fresh scope per iteration, so a loop-local `let`
// does not persist stale state across iterations) until a `break`
// surfaces, observing the cooperative yield budget and the cancellation
// flag at every loop head (spec §4.5: "every loop head... is a
// cancellation point").
func (ev *Evaluator) evalLoop(v *ast.Loop, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	iterations := 0
	for {
		if _, sig, handled := ev.cancellationCheck(en, ctx, v.Span()); handled {
			if sig != nil {
				return value.Nil, sig
			}
		}
		_, sig := ev.Eval(v.Body, en, ctx)
		switch s := sig.(type) {
		case nil:
			// fall through to next iteration
		case *breakSignal:
			if s.Value == nil {
				return value.Nil, nil
			}
			return s.Value, nil
		case *continueSignal:
			// fall through to next iteration
		default:
			return value.Nil, sig
		}
		iterations++
		if ev.YieldBudget > 0 && iterations%ev.YieldBudget == 0 {
			// cooperative-yield point (spec §4.5/§9's implementation-defined
			// budget); nothing to hand off to in this evaluator's scheduling
			// model beyond re-checking cancellation, which the loop head
			// above already does on the next pass.
		}
	}
}

func (ev *Evaluator) evalBreak(v *ast.Break, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	if v.Value == nil {
		return value.Nil, &breakSignal{Value: value.Nil}
	}
	val, sig := ev.Eval(v.Value, en, ctx)
	if sig != nil {
		return value.Nil, sig
	}
	return value.Nil, &breakSignal{Value: val}
}

func (ev *Evaluator) evalMatch(v *ast.Match, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	subject, sig := ev.Eval(v.Subject, en, ctx)
	if sig != nil {
		return value.Nil, sig
	}
	for _, arm := range v.Arms {
		bindings, ok := matchPattern(arm.Pat, subject)
		if !ok {
			continue
		}
		armEnv := env.New(en)
		for _, b := range bindings {
			armEnv.Define(b.Name, b.Value, b.Mutable, false)
		}
		if arm.Guard != nil {
			g, sig := ev.Eval(arm.Guard, armEnv, ctx)
			if sig != nil {
				return value.Nil, sig
			}
			if !value.IsTruthy(g) {
				continue
			}
		}
		return ev.Eval(arm.Body, armEnv, ctx)
	}
	return value.Nil, patternFault(v.Span(), "match failed: no arm matched the subject")
}
