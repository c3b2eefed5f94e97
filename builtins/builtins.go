// Package builtins registers the names Later programs can call without a
// user-defined binding (spec §6 "Builtins available to programs"). It
// imports eval directly rather than mirroring the teacher's std.Runtime
// interface-inversion (std defines an abstract Runtime interface eval's
// Evaluator satisfies structurally, so std never imports eval) — there is
// no import cycle to avoid here, since eval.BuiltinFunc's type already
// lives below this package, so the teacher's inversion buys nothing.
//
// Names here must agree with stage.BuiltinCapabilities (which ones need at
// least startup or IO) and linearity.LinearBuiltins (which ones produce a
// linear value) — see DESIGN.md.
package builtins

import (
	"fmt"
	"os"
	"runtime"

	"github.com/later-lang/later/eval"
	"github.com/later-lang/later/sourcemap"
	"github.com/later-lang/later/value"
)

// All returns a fresh builtin table; cmd/later installs it on every new
// Evaluator.
func All() map[string]eval.BuiltinFunc {
	return map[string]eval.BuiltinFunc{
		"print":    biPrint,
		"debug":    biDebug,
		"assert":   biAssert,
		"push":     biPush,
		"pop":      biPop,
		"len":      biLen,
		"map":      biMap,
		"filter":   biFilter,
		"reduce":   biReduce,
		"keys":     biKeys,
		"values":   biValues,
		"has-key":  biHasKey,
		"at":       biAt,
		"drop":     biDrop,
		"open":     biOpen,
		"channel":  biChannel,
		"send":     biSend,
		"recv":     biRecv,
		"close":    biClose,
		"env-get":  biEnvGet,
	}
}

func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Nil
}

func biPrint(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	v := arg(args, 0)
	fmt.Fprintln(ev.Writer, value.Print(v))
	return v, nil
}

func biDebug(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	v := arg(args, 0)
	fmt.Fprintf(ev.Writer, "debug: %s\n", value.Print(v))
	return v, nil
}

func biAssert(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	cond := arg(args, 0)
	if value.IsTruthy(cond) {
		return value.Nil, nil
	}
	if len(args) > 1 {
		if msg, ok := args[1].(value.Str); ok {
			return value.Nil, eval.Fault(span, "assertion failed: %s", msg.V)
		}
	}
	return value.Nil, eval.Fault(span, "assertion failed")
}

func asList(v value.Value, span sourcemap.Span) (*value.List, error) {
	l, ok := v.(*value.List)
	if !ok {
		return nil, eval.Fault(span, value.TypeMismatch("list", v))
	}
	return l, nil
}

func biPush(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	l, err := asList(arg(args, 0), span)
	if err != nil {
		return value.Nil, err
	}
	l.Elems = append(l.Elems, arg(args, 1))
	return l, nil
}

func biPop(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	l, err := asList(arg(args, 0), span)
	if err != nil {
		return value.Nil, err
	}
	if len(l.Elems) == 0 {
		return value.Nil, eval.Fault(span, "pop from empty list")
	}
	last := l.Elems[len(l.Elems)-1]
	l.Elems = l.Elems[:len(l.Elems)-1]
	return last, nil
}

func biLen(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	switch v := arg(args, 0).(type) {
	case *value.List:
		return value.Int{V: int64(len(v.Elems))}, nil
	case *value.Object:
		return value.Int{V: int64(len(v.Keys))}, nil
	case value.Str:
		return value.Int{V: int64(len([]rune(v.V)))}, nil
	default:
		return value.Nil, eval.Fault(span, value.TypeMismatch("list, object, or str", v))
	}
}

func biMap(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	l, err := asList(arg(args, 0), span)
	if err != nil {
		return value.Nil, err
	}
	fn, ok := arg(args, 1).(*value.Closure)
	if !ok {
		return value.Nil, eval.Fault(span, value.TypeMismatch("function", arg(args, 1)))
	}
	out := make([]value.Value, len(l.Elems))
	for i, e := range l.Elems {
		r, sig := ev.CallClosure(fn, []value.Value{e}, span, ctx)
		if sig != nil {
			return value.Nil, sig
		}
		out[i] = r
	}
	return value.NewList(out...), nil
}

func biFilter(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	l, err := asList(arg(args, 0), span)
	if err != nil {
		return value.Nil, err
	}
	fn, ok := arg(args, 1).(*value.Closure)
	if !ok {
		return value.Nil, eval.Fault(span, value.TypeMismatch("function", arg(args, 1)))
	}
	var out []value.Value
	for _, e := range l.Elems {
		r, sig := ev.CallClosure(fn, []value.Value{e}, span, ctx)
		if sig != nil {
			return value.Nil, sig
		}
		if value.IsTruthy(r) {
			out = append(out, e)
		}
	}
	return value.NewList(out...), nil
}

func biReduce(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	l, err := asList(arg(args, 0), span)
	if err != nil {
		return value.Nil, err
	}
	acc := arg(args, 1)
	fn, ok := arg(args, 2).(*value.Closure)
	if !ok {
		return value.Nil, eval.Fault(span, value.TypeMismatch("function", arg(args, 2)))
	}
	for _, e := range l.Elems {
		r, sig := ev.CallClosure(fn, []value.Value{acc, e}, span, ctx)
		if sig != nil {
			return value.Nil, sig
		}
		acc = r
	}
	return acc, nil
}

func asObject(v value.Value, span sourcemap.Span) (*value.Object, error) {
	o, ok := v.(*value.Object)
	if !ok {
		return nil, eval.Fault(span, value.TypeMismatch("object", v))
	}
	return o, nil
}

func biKeys(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	o, err := asObject(arg(args, 0), span)
	if err != nil {
		return value.Nil, err
	}
	out := make([]value.Value, len(o.Keys))
	for i, k := range o.Keys {
		out[i] = value.Str{V: k}
	}
	return value.NewList(out...), nil
}

func biValues(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	o, err := asObject(arg(args, 0), span)
	if err != nil {
		return value.Nil, err
	}
	out := make([]value.Value, len(o.Keys))
	for i, k := range o.Keys {
		out[i], _ = o.Get(k)
	}
	return value.NewList(out...), nil
}

func biHasKey(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	o, err := asObject(arg(args, 0), span)
	if err != nil {
		return value.Nil, err
	}
	k, ok := arg(args, 1).(value.Str)
	if !ok {
		return value.Nil, eval.Fault(span, value.TypeMismatch("str", arg(args, 1)))
	}
	_, present := o.Get(k.V)
	return value.Bool{V: present}, nil
}

// biAt implements negative-index list access (`at(list, i)`): unlike
// `list[i]`, a negative i counts from the end, per ast.Index's own doc
// comment reserving that behaviour for this builtin rather than the
// indexing operator.
func biAt(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	l, err := asList(arg(args, 0), span)
	if err != nil {
		return value.Nil, err
	}
	i, ok := arg(args, 1).(value.Int)
	if !ok {
		return value.Nil, eval.Fault(span, value.TypeMismatch("int", arg(args, 1)))
	}
	idx := i.V
	if idx < 0 {
		idx += int64(len(l.Elems))
	}
	if idx < 0 || idx >= int64(len(l.Elems)) {
		return value.Nil, eval.Fault(span, "index out of bounds: %d", i.V)
	}
	return l.Elems[idx], nil
}

// biDrop runs a linear Resource's cleanup to completion and marks it
// dropped (spec §4.4/§4.5: `drop(x)` is the explicit-drop escape hatch from
// the must-consume rule, and triggers fallible cleanup with retry).
func biDrop(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	r, ok := arg(args, 0).(*value.Resource)
	if !ok {
		return value.Nil, eval.Fault(span, value.TypeMismatch("resource", arg(args, 0)))
	}
	if r.State != value.ResourceLive {
		return value.Nil, eval.Fault(span, "resource already %s", r.State)
	}
	if err := eval.RunCleanup(r); err != nil {
		return value.Nil, eval.Fault(span, "%s", err.Error())
	}
	r.State = value.ResourceDropped
	return value.Nil, nil
}

// biOpen is spec §4.4's illustrative linear-resource constructor: an opaque
// handle with a no-op cleanup, standing in for a real external resource
// (file, lock, connection) the language has no actual IO surface to name
// (spec's Non-goals exclude a filesystem/network API). `kind` names what
// it is; callers exercise the linearity discipline (must consume, via
// `drop` or another consuming builtin) around it regardless of what the
// handle actually is.
func biOpen(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	kind := "resource"
	if k, ok := arg(args, 0).(value.Str); ok {
		kind = k.V
	}
	return &value.Resource{
		ResourceKind: kind,
		Handle:       kind,
		State:        value.ResourceLive,
		Cleanup:      func() (value.Decision, error) { return value.DecisionOK, nil },
	}, nil
}

func biChannel(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	capacity := 0
	if n, ok := arg(args, 0).(value.Int); ok {
		capacity = int(n.V)
	}
	return value.NewChannel(capacity), nil
}

func asChannel(v value.Value, span sourcemap.Span) (*value.Channel, error) {
	c, ok := v.(*value.Channel)
	if !ok {
		return nil, eval.Fault(span, value.TypeMismatch("channel", v))
	}
	return c, nil
}

// biSend blocks until v is accepted onto c or the channel/task is
// cancelled (spec §9 "send(c, v) blocks when full"; §4.5 "channel
// operation... is a cancellation point"). It polls Channel's non-blocking
// TrySend, since Channel intentionally has no blocking primitive of its
// own (value/channel.go: "the `send`/`recv` builtins supply the
// blocking/suspension behaviour").
func biSend(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	c, err := asChannel(arg(args, 0), span)
	if err != nil {
		return value.Nil, err
	}
	v := arg(args, 1)
	for {
		ok, closed := c.TrySend(v)
		if closed {
			return value.Nil, eval.Fault(span, "channel closed")
		}
		if ok {
			return value.Nil, nil
		}
		if sig := ev.CheckCancel(ctx, span); sig != nil {
			return value.Nil, sig
		}
		runtime.Gosched()
	}
}

// biRecv blocks until a value is available on c, c is closed, or the
// current task is cancelled.
func biRecv(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	c, err := asChannel(arg(args, 0), span)
	if err != nil {
		return value.Nil, err
	}
	for {
		v, ok, closed := c.TryRecv()
		if ok {
			return v, nil
		}
		if closed {
			return value.Nil, eval.Fault(span, "channel closed")
		}
		if sig := ev.CheckCancel(ctx, span); sig != nil {
			return value.Nil, sig
		}
		runtime.Gosched()
	}
}

func biClose(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	c, err := asChannel(arg(args, 0), span)
	if err != nil {
		return value.Nil, err
	}
	c.Close()
	return value.Nil, nil
}

func biEnvGet(ev *eval.Evaluator, ctx *eval.Ctx, args []value.Value, span sourcemap.Span) (value.Value, error) {
	name, ok := arg(args, 0).(value.Str)
	if !ok {
		return value.Nil, eval.Fault(span, value.TypeMismatch("str", arg(args, 0)))
	}
	if v, ok := os.LookupEnv(name.V); ok {
		return value.Str{V: v}, nil
	}
	return value.Nil, nil
}
