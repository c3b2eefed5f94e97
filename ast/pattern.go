package ast

// PatternKind discriminates the pattern sub-language (spec §3: "wildcard _,
// binding (x or mut x), list pattern ..., object pattern ..., literal, or
// nested").
type PatternKind int

const (
	PatWildcard PatternKind = iota
	PatBinding
	PatList
	PatObject
	PatLiteral
)

// PatternField is one named entry of an object pattern: `{ key: pat }` or
// the shorthand `{ key }` (Pat nil, filled by the parser to a binding
// pattern named key).
type PatternField struct {
	Key string
	Pat *Pattern
}

// Pattern is the sub-tree used by `let`, function parameters, and `match`
// arms to destructure a value while binding names.
type Pattern struct {
	Meta
	PatKind PatternKind

	// PatBinding
	Name    string
	Mutable bool

	// PatList
	Elems []*Pattern
	Rest  string // bound name of "...r", or "" when the list pattern is fixed with no rest

	// PatObject
	Fields     []PatternField
	ObjectRest string // bound name of "...r" in an object pattern, or ""

	// PatLiteral
	Literal *Lit
}

// BindingNames returns every name a pattern introduces, in left-to-right
// order, used by the linearity analyzer to seed new bindings and by the
// evaluator to destructure matched values.
func (p *Pattern) BindingNames() []string {
	var names []string
	var walk func(p *Pattern)
	walk = func(p *Pattern) {
		if p == nil {
			return
		}
		switch p.PatKind {
		case PatBinding:
			if p.Name != "_" && p.Name != "" {
				names = append(names, p.Name)
			}
		case PatList:
			for _, e := range p.Elems {
				walk(e)
			}
			if p.Rest != "" {
				names = append(names, p.Rest)
			}
		case PatObject:
			for _, f := range p.Fields {
				walk(f.Pat)
			}
			if p.ObjectRest != "" {
				names = append(names, p.ObjectRest)
			}
		}
	}
	walk(p)
	return names
}

// IsWildcard reports whether p is the bare `_` pattern, which per spec
// §4.4 requires the matched value to have no destructor.
func (p *Pattern) IsWildcard() bool {
	return p != nil && p.PatKind == PatWildcard
}
