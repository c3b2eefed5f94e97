package eval

import (
	"github.com/later-lang/later/ast"
	"github.com/later-lang/later/diag"
	"github.com/later-lang/later/sourcemap"
	"github.com/later-lang/later/value"
)

// patternFault builds a Pattern-kind runtime diagnostic (spec §7's Pattern
// kind also covers a handful of failures only detectable at match/bind
// time, not by a static pass: length-mismatch, missing-key, match-failed).
func patternFault(span sourcemap.Span, format string, args ...any) error {
	return diag.NewError(diag.New(diag.KindPattern, span, format, args...))
}

// boundName is one name a pattern introduces while matching/destructuring
// a value, carrying its own `mut` flag (spec: "binding (x or mut x)").
type boundName struct {
	Name    string
	Value   value.Value
	Mutable bool
}

// matchPattern reports whether v structurally matches pat, and if so every
// name it binds. Used by `match` arms, where a non-match means "try the
// next arm" rather than a failure.
func matchPattern(pat *ast.Pattern, v value.Value) ([]boundName, bool) {
	if pat == nil {
		return nil, true
	}
	switch pat.PatKind {
	case ast.PatWildcard:
		return nil, true
	case ast.PatBinding:
		if pat.Name == "_" || pat.Name == "" {
			return nil, true
		}
		return []boundName{{Name: pat.Name, Value: v, Mutable: pat.Mutable}}, true
	case ast.PatLiteral:
		return nil, value.Equal(literalValue(pat.Literal), v)
	case ast.PatList:
		list, ok := v.(*value.List)
		if !ok {
			return nil, false
		}
		if pat.Rest == "" && len(list.Elems) != len(pat.Elems) {
			return nil, false
		}
		if pat.Rest != "" && len(list.Elems) < len(pat.Elems) {
			return nil, false
		}
		var bound []boundName
		for i, ep := range pat.Elems {
			bs, ok := matchPattern(ep, list.Elems[i])
			if !ok {
				return nil, false
			}
			bound = append(bound, bs...)
		}
		if pat.Rest != "" {
			bound = append(bound, boundName{Name: pat.Rest, Value: value.NewList(append([]value.Value{}, list.Elems[len(pat.Elems):]...)...)})
		}
		return bound, true
	case ast.PatObject:
		obj, ok := v.(*value.Object)
		if !ok {
			return nil, false
		}
		var bound []boundName
		matched := make(map[string]bool)
		for _, f := range pat.Fields {
			fv, ok := obj.Get(f.Key)
			if !ok {
				return nil, false
			}
			matched[f.Key] = true
			bs, ok := matchPattern(f.Pat, fv)
			if !ok {
				return nil, false
			}
			bound = append(bound, bs...)
		}
		if pat.ObjectRest != "" {
			rest := value.NewObject()
			for _, k := range obj.Keys {
				if matched[k] {
					continue
				}
				rv, _ := obj.Get(k)
				rest.Set(k, rv)
			}
			bound = append(bound, boundName{Name: pat.ObjectRest, Value: rest})
		}
		return bound, true
	default:
		return nil, false
	}
}

func literalValue(l *ast.Lit) value.Value {
	if l == nil {
		return value.Nil
	}
	switch l.LitKind {
	case ast.LitInt:
		return value.Int{V: l.IntVal}
	case ast.LitFloat:
		return value.Float{V: l.FloatVal}
	case ast.LitString:
		return value.Str{V: l.StrVal}
	case ast.LitBool:
		return value.Bool{V: l.BoolVal}
	default:
		return value.Nil
	}
}

// destructure is matchPattern's counterpart for `let` and function
// parameter binding, where a shape mismatch is a runtime failure (spec §7
// Pattern: length-mismatch, missing-key) rather than "try the next arm".
func destructure(pat *ast.Pattern, v value.Value, span sourcemap.Span) ([]boundName, error) {
	bound, ok := matchPattern(pat, v)
	if ok {
		return bound, nil
	}
	switch pat.PatKind {
	case ast.PatList:
		return nil, patternFault(span, "list pattern length mismatch")
	case ast.PatObject:
		return nil, patternFault(span, "object pattern missing key")
	default:
		return nil, patternFault(span, "value does not match pattern")
	}
}
