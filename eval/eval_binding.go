package eval

import (
	"github.com/later-lang/later/ast"
	"github.com/later-lang/later/env"
	"github.com/later-lang/later/sourcemap"
	"github.com/later-lang/later/value"
)

// isLinearValue reports whether v is a value the linear/affine discipline
// tracks (spec §5.1): a Resource is always linear; a Closure only when its
// own IsLinear flag is set. By the time the evaluator runs, the linearity
// checker has already accepted the program, so this is bookkeeping for
// env.Slot.Class, not an enforcement point — nothing here rejects anything.
func isLinearValue(v value.Value) bool {
	switch vv := v.(type) {
	case *value.Resource:
		return true
	case *value.Closure:
		return vv.IsLinear
	default:
		return false
	}
}

func (ev *Evaluator) evalLet(v *ast.Let, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	val, sig := ev.Eval(v.Value, en, ctx)
	if sig != nil {
		return value.Nil, sig
	}
	bound, err := destructure(v.Pat, val, v.Span())
	if err != nil {
		return value.Nil, err
	}
	for _, b := range bound {
		en.Define(b.Name, b.Value, b.Mutable || v.Mutable, isLinearValue(b.Value))
	}
	return val, nil
}

func (ev *Evaluator) evalAssign(v *ast.Assign, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	val, sig := ev.Eval(v.Value, en, ctx)
	if sig != nil {
		return value.Nil, sig
	}
	switch target := v.Target.(type) {
	case *ast.Ident:
		if err := en.Assign(target.Name, val); err != nil {
			return value.Nil, fault(v.Span(), "%s", err.Error())
		}
		return val, nil
	case *ast.Field:
		obj, sig := ev.Eval(target.Object, en, ctx)
		if sig != nil {
			return value.Nil, sig
		}
		o, ok := obj.(*value.Object)
		if !ok {
			return value.Nil, fault(v.Span(), value.TypeMismatch("object", obj))
		}
		o.Set(target.Name, val)
		return val, nil
	case *ast.Index:
		obj, sig := ev.Eval(target.Object, en, ctx)
		if sig != nil {
			return value.Nil, sig
		}
		idx, sig := ev.Eval(target.Index, en, ctx)
		if sig != nil {
			return value.Nil, sig
		}
		switch o := obj.(type) {
		case *value.List:
			i, ok := idx.(value.Int)
			if !ok {
				return value.Nil, fault(v.Span(), value.TypeMismatch("int", idx))
			}
			if i.V < 0 || int(i.V) >= len(o.Elems) {
				return value.Nil, fault(v.Span(), "index out of bounds: %d", i.V)
			}
			o.Elems[i.V] = val
			return val, nil
		case *value.Object:
			k, ok := idx.(value.Str)
			if !ok {
				return value.Nil, fault(v.Span(), value.TypeMismatch("str", idx))
			}
			o.Set(k.V, val)
			return val, nil
		default:
			return value.Nil, fault(v.Span(), value.TypeMismatch("list or object", obj))
		}
	default:
		return value.Nil, fault(v.Span(), "invalid assignment target")
	}
}

// evalFn builds a Closure capturing en as-is (spec §3 `Closure {params,
// body, captured-env, is-linear}`). The linearity checker rejects any
// program that would capture a linear binding by move (linearity.go's
// *ast.Fn case), so IsLinear is always false here — no accepted program
// ever produces a closure needing the called-once rule, which is recorded
// as an Open Question resolution in DESIGN.md.
func (ev *Evaluator) evalFn(v *ast.Fn, en *env.Env) *value.Closure {
	params := make([]*ast.Param, len(v.Params))
	for i := range v.Params {
		p := v.Params[i]
		params[i] = &p
	}
	return &value.Closure{
		Name:     v.Name,
		Params:   params,
		Rest:     v.Rest,
		Body:     v.Body,
		Captured: en,
	}
}

func (ev *Evaluator) evalCall(v *ast.Call, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	if ident, ok := v.Callee.(*ast.Ident); ok {
		if _, bound := en.Lookup(ident.Name); !bound {
			if bf, ok := ev.Builtins[ident.Name]; ok {
				args, sig := ev.evalArgs(v.Args, en, ctx)
				if sig != nil {
					return value.Nil, sig
				}
				val, err := bf(ev, ctx, args, v.Span())
				if err != nil {
					return value.Nil, err
				}
				return val, nil
			}
		}
	}

	calleeVal, sig := ev.Eval(v.Callee, en, ctx)
	if sig != nil {
		return value.Nil, sig
	}
	closure, ok := calleeVal.(*value.Closure)
	if !ok {
		return value.Nil, fault(v.Span(), value.TypeMismatch("closure", calleeVal))
	}
	args, sig := ev.evalArgs(v.Args, en, ctx)
	if sig != nil {
		return value.Nil, sig
	}
	return ev.CallClosure(closure, args, v.Span(), ctx)
}

func (ev *Evaluator) evalArgs(nodes []ast.Node, en *env.Env, ctx *Ctx) ([]value.Value, Signal) {
	args := make([]value.Value, 0, len(nodes))
	for _, a := range nodes {
		av, sig := ev.Eval(a, en, ctx)
		if sig != nil {
			return nil, sig
		}
		args = append(args, av)
	}
	return args, nil
}

// CallClosure invokes closure with args. Exported so the builtins package
// can call back into user closures for higher-order operations (`map`,
// `filter`, `reduce`) without eval needing to know about those builtins.
func (ev *Evaluator) CallClosure(closure *value.Closure, args []value.Value, span sourcemap.Span, ctx *Ctx) (value.Value, Signal) {
	if closure.IsLinear {
		if closure.Called {
			return value.Nil, fault(span, "linear closure `%s` already called", closure.Name)
		}
		closure.Called = true
	}
	captured, ok := closure.Captured.(*env.Env)
	if !ok {
		return value.Nil, fault(span, "internal: closure has no captured environment")
	}
	callEnv := env.New(captured)
	for i, p := range closure.Params {
		var av value.Value = value.Nil
		switch {
		case i < len(args):
			av = args[i]
		case p.Default != nil:
			dv, sig := ev.Eval(p.Default, callEnv, ctx)
			if sig != nil {
				return value.Nil, sig
			}
			av = dv
		}
		bound, err := destructure(p.Pat, av, span)
		if err != nil {
			return value.Nil, err
		}
		for _, b := range bound {
			callEnv.Define(b.Name, b.Value, b.Mutable, isLinearValue(b.Value))
		}
	}
	if closure.Rest != "" {
		var extra []value.Value
		if len(args) > len(closure.Params) {
			extra = append(extra, args[len(closure.Params):]...)
		}
		callEnv.Define(closure.Rest, value.NewList(extra...), false, false)
	}

	callCtx := ctx.child()
	callCtx.resumeFn = nil
	return ev.Eval(closure.Body, callEnv, callCtx)
}
