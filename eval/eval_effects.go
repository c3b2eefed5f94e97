package eval

import (
	"fmt"

	"github.com/later-lang/later/ast"
	"github.com/later-lang/later/env"
	"github.com/later-lang/later/sourcemap"
	"github.com/later-lang/later/value"
)

// unhandledEffect is the Signal a perform produces when no enclosing
// handler declares a case for its name. performEffect returns it and its
// callers turn it into a Runtime fault right away: evalPerform as
// "unhandled effect: <name>", cancellationCheck as "cancelled" for `cancel`.
type unhandledEffect struct {
	name string
	span sourcemap.Span
}

func (u *unhandledEffect) Error() string {
	return fmt.Sprintf("unhandled effect: %s", u.name)
}

// evalHandle installs v.Cases as handlers around v.Body. Later has no
// syntax distinguishing shallow and deep handlers, so every handler here is
// deep (DESIGN.md): a case that calls resume re-enters the body with this
// same handler still installed, so a second `perform` of the same effect
// reaches this handler again rather than the next one out.
//
// Implementation: the body runs on its own goroutine (spec's "reified
// one-shot continuation", realized as a genuinely suspended goroutine
// rather than a captured stack segment, since Go has no first-class
// continuations). This call itself is the dispatcher: it blocks until the
// body either finishes on its own or performs an effect this handler
// declares a case for, at which point it runs that case synchronously
// in-line. `resume` hands control back to the body and recurses into the
// same dispatch loop, so a chain of further performs/resumes nests
// naturally in Go's own call stack instead of needing an explicit trampoline.
func (ev *Evaluator) evalHandle(v *ast.Handle, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	hf := &handlerFrame{
		cases:   make(map[string]handlerCase, len(v.Cases)),
		reqCh:   make(chan performReq),
		doneCh:  make(chan handlerOutcome, 1),
		abortCh: make(chan struct{}),
	}
	for _, hc := range v.Cases {
		hc := hc
		hf.cases[hc.Effect] = handlerCase{
			params: paramNames(hc.Params),
			eval: func(args []value.Value, resume resumeFunc) (value.Value, Signal) {
				caseEnv := env.New(en)
				for i, p := range hc.Params {
					if i >= len(args) {
						break
					}
					bound, err := destructure(p, args[i], hc.Body.Span())
					if err != nil {
						return value.Nil, err
					}
					for _, b := range bound {
						caseEnv.Define(b.Name, b.Value, b.Mutable, false)
					}
				}
				caseCtx := ctx.child()
				caseCtx.resumeFn = resume
				return ev.Eval(hc.Body, caseEnv, caseCtx)
			},
		}
	}

	bodyCtx := ctx.withHandler(hf)
	go func() {
		val, sig := ev.Eval(v.Body, en, bodyCtx)
		hf.finish(val, sig)
	}()

	return ev.dispatch(hf)
}

// dispatch waits for the handled body (or, recursively, a resumed
// continuation) to either settle or perform one of hf's effects.
func (ev *Evaluator) dispatch(hf *handlerFrame) (value.Value, Signal) {
	select {
	case out := <-hf.doneCh:
		return out.value, out.sig
	case req := <-hf.reqCh:
		return ev.runCase(hf, req)
	}
}

// runCase invokes the handler case for req, supplying it a resume closure
// that hands control back to the performing goroutine and recurses into
// dispatch to await whatever happens next. If the case returns without
// ever calling resume, the continuation is dropped (spec §4.5): abortCh is
// closed so the parked perform unwinds via abandonSignal instead of
// blocking forever.
func (ev *Evaluator) runCase(hf *handlerFrame, req performReq) (value.Value, Signal) {
	hc := hf.cases[req.name]
	resumed := false
	resume := func(rv value.Value) (value.Value, Signal) {
		resumed = true
		req.reply <- resumeMsg{value: rv}
		return ev.dispatch(hf)
	}
	result, sig := hc.eval(req.args, resume)
	if !resumed {
		close(hf.abortCh)
	}
	return result, sig
}

// performEffect raises name, searching ctx's handler stack innermost-first
// for a case declaring it, and blocks the calling goroutine until that
// handler either resumes (returning the resumed value) or drops the
// continuation (returning abandonSignal). Returns *unhandledEffect if no
// enclosing handler declares a case for name.
func (ev *Evaluator) performEffect(name string, args []value.Value, span sourcemap.Span, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	for i := len(ctx.Handlers) - 1; i >= 0; i-- {
		hf := ctx.Handlers[i]
		if _, ok := hf.cases[name]; !ok {
			continue
		}
		reply := make(chan resumeMsg)
		select {
		case hf.reqCh <- performReq{name: name, args: args, reply: reply}:
		case <-hf.abortCh:
			return value.Nil, &abandonSignal{}
		}
		select {
		case msg := <-reply:
			return msg.value, nil
		case <-hf.abortCh:
			return value.Nil, &abandonSignal{}
		}
	}
	return value.Nil, &unhandledEffect{name: name, span: span}
}

func (ev *Evaluator) evalPerform(v *ast.Perform, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	if _, csig, handled := ev.cancellationCheck(en, ctx, v.Span()); handled && csig != nil {
		return value.Nil, csig
	}
	args := make([]value.Value, 0, len(v.Args))
	for _, a := range v.Args {
		av, sig := ev.Eval(a, en, ctx)
		if sig != nil {
			return value.Nil, sig
		}
		args = append(args, av)
	}
	val, sig := ev.performEffect(v.Name, args, v.Span(), en, ctx)
	if uh, ok := sig.(*unhandledEffect); ok {
		return value.Nil, fault(v.Span(), "unhandled effect: %s", uh.name)
	}
	return val, sig
}

func (ev *Evaluator) evalResume(v *ast.Resume, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	if ctx.resumeFn == nil {
		return value.Nil, fault(v.Span(), "resume used outside of a handler body")
	}
	val, sig := ev.Eval(v.Value, en, ctx)
	if sig != nil {
		return value.Nil, sig
	}
	return ctx.resumeFn(val)
}

func paramNames(pats []*ast.Pattern) []string {
	names := make([]string, 0, len(pats))
	for _, p := range pats {
		names = append(names, p.BindingNames()...)
	}
	return names
}
