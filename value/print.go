package value

import (
	"math"
	"strconv"
	"strings"
)

// Print renders v in Later's canonical top-level form (spec §4.5): the
// form `print`/the REPL/cmd/later use for the program's result. Strings
// are unquoted at top level but quoted when nested inside a list or
// object, so printing recurses through writeInner for children.
func Print(v Value) string {
	var b strings.Builder
	writeTop(&b, v)
	return b.String()
}

func writeTop(b *strings.Builder, v Value) {
	if s, ok := v.(Str); ok {
		b.WriteString(s.V)
		return
	}
	writeInner(b, v)
}

// writeInner renders v the way it appears nested inside a list/object:
// strings quoted, everything else identical to top-level form.
func writeInner(b *strings.Builder, v Value) {
	switch v := v.(type) {
	case Int:
		b.WriteString(strconv.FormatInt(v.V, 10))
	case Float:
		b.WriteString(formatFloat(v.V))
	case Bool:
		if v.V {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case NilVal:
		b.WriteString("nil")
	case Str:
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(v.V, `"`, `\"`))
		b.WriteByte('"')
	case *List:
		b.WriteByte('[')
		for i, e := range v.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			writeInner(b, e)
		}
		b.WriteByte(']')
	case *Object:
		if len(v.Keys) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{ ")
		for i, k := range v.Keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			val, _ := v.Get(k)
			writeInner(b, val)
		}
		b.WriteString(" }")
	case *Closure:
		b.WriteString("<fn ")
		b.WriteString(v.Name)
		b.WriteByte('>')
	case *Resource:
		b.WriteString("<resource ")
		b.WriteString(v.ResourceKind)
		b.WriteByte('>')
	case EffectToken:
		b.WriteString("<effect-token>")
	case *Channel:
		b.WriteString("<channel>")
	case *Task:
		b.WriteString("<task>")
	case Error:
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(v.Message, `"`, `\"`))
		b.WriteByte('"')
	default:
		b.WriteString("<?>")
	}
}

// formatFloat implements spec §4.5's float rule: always a decimal point
// with at least one fractional digit, and the special spellings for the
// three non-finite IEEE-754 values.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, "eE") {
		// avoid scientific notation; render the fixed-point form instead so
		// the ".<digit>" rule below always applies cleanly.
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
