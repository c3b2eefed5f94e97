package eval

import (
	"math"
	"strings"

	"github.com/later-lang/later/ast"
	"github.com/later-lang/later/env"
	"github.com/later-lang/later/value"
)

func (ev *Evaluator) evalLit(v *ast.Lit) value.Value {
	switch v.LitKind {
	case ast.LitInt:
		return value.Int{V: v.IntVal}
	case ast.LitFloat:
		return value.Float{V: v.FloatVal}
	case ast.LitString:
		return value.Str{V: v.StrVal}
	case ast.LitBool:
		return value.Bool{V: v.BoolVal}
	default:
		return value.Nil
	}
}

func (ev *Evaluator) evalInterpString(v *ast.InterpString, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	var b strings.Builder
	for _, part := range v.Parts {
		pv, sig := ev.Eval(part, en, ctx)
		if sig != nil {
			return value.Nil, sig
		}
		b.WriteString(value.Print(pv))
	}
	return value.Str{V: b.String()}, nil
}

func (ev *Evaluator) evalIdent(v *ast.Ident, en *env.Env) (value.Value, Signal) {
	slot, ok := en.Lookup(v.Name)
	if !ok {
		return value.Nil, fault(v.Span(), "undefined binding `%s`", v.Name)
	}
	return slot.Value, nil
}

func (ev *Evaluator) evalUn(v *ast.Un, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	operand, sig := ev.Eval(v.Operand, en, ctx)
	if sig != nil {
		return value.Nil, sig
	}
	switch v.Op {
	case ast.OpNeg:
		switch o := operand.(type) {
		case value.Int:
			if o.V == math.MinInt64 {
				return value.Nil, fault(v.Span(), "integer overflow")
			}
			return value.Int{V: -o.V}, nil
		case value.Float:
			return value.Float{V: -o.V}, nil
		default:
			return value.Nil, fault(v.Span(), value.TypeMismatch("int or float", operand))
		}
	case ast.OpNot:
		return value.Bool{V: !value.IsTruthy(operand)}, nil
	default:
		return value.Nil, fault(v.Span(), "unknown unary operator %q", v.Op)
	}
}

func (ev *Evaluator) evalBin(v *ast.Bin, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	// `and`/`or` short-circuit, so the right operand is only evaluated when
	// needed, unlike every other operator.
	if v.Op == ast.OpAnd || v.Op == ast.OpOr {
		left, sig := ev.Eval(v.Left, en, ctx)
		if sig != nil {
			return value.Nil, sig
		}
		truthy := value.IsTruthy(left)
		if v.Op == ast.OpAnd && !truthy {
			return left, nil
		}
		if v.Op == ast.OpOr && truthy {
			return left, nil
		}
		return ev.Eval(v.Right, en, ctx)
	}

	left, sig := ev.Eval(v.Left, en, ctx)
	if sig != nil {
		return value.Nil, sig
	}
	right, sig := ev.Eval(v.Right, en, ctx)
	if sig != nil {
		return value.Nil, sig
	}

	switch v.Op {
	case ast.OpEq:
		return value.Bool{V: value.Equal(left, right)}, nil
	case ast.OpNe:
		return value.Bool{V: !value.Equal(left, right)}, nil
	}

	switch v.Op {
	case ast.OpAdd:
		if ls, ok := left.(value.Str); ok {
			rs, ok := right.(value.Str)
			if !ok {
				return value.Nil, fault(v.Span(), value.TypeMismatch("str", right))
			}
			return value.Str{V: ls.V + rs.V}, nil
		}
	}

	switch v.Op {
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return compareOrdered(v, left, right)
	}

	li, lIsInt := left.(value.Int)
	ri, rIsInt := right.(value.Int)
	if lIsInt && rIsInt {
		return intArith(v, li.V, ri.V)
	}
	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok {
		return value.Nil, fault(v.Span(), value.TypeMismatch("int or float", left))
	}
	if !rok {
		return value.Nil, fault(v.Span(), value.TypeMismatch("int or float", right))
	}
	return floatArith(v, lf, rf)
}

func asFloat(v value.Value) (float64, bool) {
	switch v := v.(type) {
	case value.Int:
		return float64(v.V), true
	case value.Float:
		return v.V, true
	default:
		return 0, false
	}
}

func compareOrdered(v *ast.Bin, left, right value.Value) (value.Value, Signal) {
	if ls, ok := left.(value.Str); ok {
		rs, ok := right.(value.Str)
		if !ok {
			return value.Nil, fault(v.Span(), value.TypeMismatch("str", right))
		}
		return value.Bool{V: compareOp(v.Op, strings.Compare(ls.V, rs.V))}, nil
	}
	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		bad := left
		if lok {
			bad = right
		}
		return value.Nil, fault(v.Span(), value.TypeMismatch("comparable value", bad))
	}
	switch {
	case lf < rf:
		return value.Bool{V: compareOp(v.Op, -1)}, nil
	case lf > rf:
		return value.Bool{V: compareOp(v.Op, 1)}, nil
	default:
		return value.Bool{V: compareOp(v.Op, 0)}, nil
	}
}

func compareOp(op ast.BinOp, cmp int) bool {
	switch op {
	case ast.OpLt:
		return cmp < 0
	case ast.OpLe:
		return cmp <= 0
	case ast.OpGt:
		return cmp > 0
	case ast.OpGe:
		return cmp >= 0
	default:
		return false
	}
}

// intArith implements checked 64-bit integer arithmetic (spec §4.5:
// "checked int arithmetic: overflow on add/sub/mul/neg is a runtime error
// `integer overflow`"). Division and modulo by zero are their own runtime
// failure, distinct from overflow.
func intArith(v *ast.Bin, l, r int64) (value.Value, Signal) {
	switch v.Op {
	case ast.OpAdd:
		sum := l + r
		if (r > 0 && sum < l) || (r < 0 && sum > l) {
			return value.Nil, fault(v.Span(), "integer overflow")
		}
		return value.Int{V: sum}, nil
	case ast.OpSub:
		diff := l - r
		if (r < 0 && diff < l) || (r > 0 && diff > l) {
			return value.Nil, fault(v.Span(), "integer overflow")
		}
		return value.Int{V: diff}, nil
	case ast.OpMul:
		if l == 0 || r == 0 {
			return value.Int{V: 0}, nil
		}
		prod := l * r
		if prod/r != l || (l == -1 && r == math.MinInt64) || (r == -1 && l == math.MinInt64) {
			return value.Nil, fault(v.Span(), "integer overflow")
		}
		return value.Int{V: prod}, nil
	case ast.OpDiv:
		if r == 0 {
			return value.Nil, fault(v.Span(), "division by zero")
		}
		if l == math.MinInt64 && r == -1 {
			return value.Nil, fault(v.Span(), "integer overflow")
		}
		return value.Int{V: l / r}, nil
	case ast.OpMod:
		if r == 0 {
			return value.Nil, fault(v.Span(), "division by zero")
		}
		return value.Int{V: l % r}, nil
	default:
		return value.Nil, fault(v.Span(), "unknown binary operator %q", v.Op)
	}
}

// floatArith follows IEEE-754 throughout (spec §4.5: "float arithmetic
// follows IEEE-754; division by zero -> inf; NaN compares unequal to
// everything"), so no overflow/divide-by-zero checks are needed here —
// Go's own float64 ops already produce ±Inf/NaN as IEEE-754 requires.
func floatArith(v *ast.Bin, l, r float64) (value.Value, Signal) {
	switch v.Op {
	case ast.OpAdd:
		return value.Float{V: l + r}, nil
	case ast.OpSub:
		return value.Float{V: l - r}, nil
	case ast.OpMul:
		return value.Float{V: l * r}, nil
	case ast.OpDiv:
		return value.Float{V: l / r}, nil
	case ast.OpMod:
		return value.Float{V: math.Mod(l, r)}, nil
	default:
		return value.Nil, fault(v.Span(), "unknown binary operator %q", v.Op)
	}
}
