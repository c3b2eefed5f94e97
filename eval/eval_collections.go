package eval

import (
	"github.com/later-lang/later/ast"
	"github.com/later-lang/later/env"
	"github.com/later-lang/later/value"
)

func (ev *Evaluator) evalList(v *ast.List, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	var elems []value.Value
	for _, e := range v.Elems {
		if sp, ok := e.(*ast.Spread); ok {
			sv, sig := ev.Eval(sp.Value, en, ctx)
			if sig != nil {
				return value.Nil, sig
			}
			list, ok := sv.(*value.List)
			if !ok {
				return value.Nil, fault(sp.Span(), value.TypeMismatch("list", sv))
			}
			elems = append(elems, list.Elems...)
			continue
		}
		ev2, sig := ev.Eval(e, en, ctx)
		if sig != nil {
			return value.Nil, sig
		}
		elems = append(elems, ev2)
	}
	return value.NewList(elems...), nil
}

func (ev *Evaluator) evalObject(v *ast.Object, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	obj := value.NewObject()
	for _, f := range v.Fields {
		if f.Spread {
			sv, sig := ev.Eval(f.Value, en, ctx)
			if sig != nil {
				return value.Nil, sig
			}
			src, ok := sv.(*value.Object)
			if !ok {
				return value.Nil, fault(v.Span(), value.TypeMismatch("object", sv))
			}
			for _, k := range src.Keys {
				fv, _ := src.Get(k)
				obj.Set(k, fv)
			}
			continue
		}
		fv, sig := ev.Eval(f.Value, en, ctx)
		if sig != nil {
			return value.Nil, sig
		}
		obj.Set(f.Key, fv)
	}
	return obj, nil
}

func (ev *Evaluator) evalField(v *ast.Field, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	obj, sig := ev.Eval(v.Object, en, ctx)
	if sig != nil {
		return value.Nil, sig
	}
	o, ok := obj.(*value.Object)
	if !ok {
		return value.Nil, fault(v.Span(), value.TypeMismatch("object", obj))
	}
	fv, ok := o.Get(v.Name)
	if !ok {
		return value.Nil, fault(v.Span(), "missing key `%s`", v.Name)
	}
	return fv, nil
}

func (ev *Evaluator) evalIndex(v *ast.Index, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	obj, sig := ev.Eval(v.Object, en, ctx)
	if sig != nil {
		return value.Nil, sig
	}
	idx, sig := ev.Eval(v.Index, en, ctx)
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
		return o.Elems[i.V], nil
	case *value.Object:
		k, ok := idx.(value.Str)
		if !ok {
			return value.Nil, fault(v.Span(), value.TypeMismatch("str", idx))
		}
		fv, ok := o.Get(k.V)
		if !ok {
			return value.Nil, fault(v.Span(), "missing key `%s`", k.V)
		}
		return fv, nil
	default:
		return value.Nil, fault(v.Span(), value.TypeMismatch("list or object", obj))
	}
}

func (ev *Evaluator) evalAs(v *ast.As, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	val, sig := ev.Eval(v.Expr, en, ctx)
	if sig != nil {
		return value.Nil, sig
	}
	en.Define(v.Name, val, false, false)
	return val, nil
}
