// Package diag defines Later's diagnostic taxonomy and renderer: the kinds
// of static and runtime failure named in spec §7, the Diagnostic/Bag types,
// and their rendering. The message texts themselves are built at each call
// site (parser, stage, linearity, eval) via New.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/later-lang/later/sourcemap"
)

// Kind classifies a Diagnostic into one of the families spec §7 names.
type Kind string

const (
	KindSyntax    Kind = "Syntax"
	KindResolve   Kind = "Resolve"
	KindLinearity Kind = "Linearity"
	KindBorrow    Kind = "Borrow"
	KindType      Kind = "Type"
	KindStage     Kind = "Stage"
	KindPattern   Kind = "Pattern"
	KindRuntime   Kind = "Runtime"
)

// Diagnostic is a single reported problem, optionally with a suggestion and
// related spans (e.g. the original declaration site of a linear binding).
type Diagnostic struct {
	Kind        Kind
	Span        sourcemap.Span
	Message     string
	Suggestion  string
	RelatedSpan *sourcemap.Span
}

// New builds a Diagnostic with no suggestion or related span.
func New(kind Kind, span sourcemap.Span, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)}
}

// WithSuggestion returns a copy of d carrying a "did you mean ..." hint.
func (d Diagnostic) WithSuggestion(name string) Diagnostic {
	d.Suggestion = fmt.Sprintf("did you mean `%s`?", name)
	return d
}

// WithRelated returns a copy of d pointing at a related span, e.g. the
// introduction site of a value a later error refers to.
func (d Diagnostic) WithRelated(span sourcemap.Span) Diagnostic {
	d.RelatedSpan = &span
	return d
}

// Bag accumulates diagnostics across a pass (lexer, parser, stage,
// linearity) so a failing file can report every problem it finds instead of
// stopping at the first, per spec §4.2's error-recovery requirement.
type Bag struct {
	file  *sourcemap.File
	items []Diagnostic
}

// NewBag creates an empty diagnostic bag for file.
func NewBag(file *sourcemap.File) *Bag {
	return &Bag{file: file}
}

// Add appends d to the bag.
func (b *Bag) Add(d Diagnostic) { b.items = append(b.items, d) }

// Len reports how many diagnostics have been collected.
func (b *Bag) Len() int { return len(b.items) }

// Items returns the accumulated diagnostics in report order.
func (b *Bag) Items() []Diagnostic { return b.items }

// Render formats every diagnostic in the bag using File to resolve spans,
// one diagnostic per paragraph, followed by an "N errors" summary line
// when there is more than one diagnostic (spec §4.2, §4.6).
func (b *Bag) Render() string {
	var out strings.Builder
	for i, d := range b.items {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(b.RenderOne(d))
		out.WriteString("\n")
	}
	if n := len(b.items); n > 1 {
		out.WriteString(fmt.Sprintf("%d errors\n", n))
	}
	return out.String()
}

// RenderOne formats a single diagnostic as:
//
//	file:line:col: <message>
//	<snippet>
//	<caret>
//	  = note: did you mean ...
func (b *Bag) RenderOne(d Diagnostic) string {
	pos := b.file.Position(d.Span.Start)
	var out strings.Builder
	fmt.Fprintf(&out, "%s:%d:%d: %s\n", b.file.Name, pos.Line, pos.Column, d.Message)
	out.WriteString(b.file.Line(d.Span.Start))
	out.WriteString("\n")
	out.WriteString(b.file.Caret(d.Span.Start))
	if d.Suggestion != "" {
		out.WriteString("\n  = note: ")
		out.WriteString(d.Suggestion)
	}
	return out.String()
}

// Suggest returns the candidate in scope closest to name by Levenshtein
// edit distance, when that distance is <= 2 (spec §4.6 "did you mean"),
// or "" when no candidate is close enough.
func Suggest(name string, candidates []string) string {
	best := ""
	bestDist := 3 // anything >2 is not suggested
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted) // deterministic tie-break
	for _, c := range sorted {
		if c == name {
			continue
		}
		if d := levenshtein(name, c); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

// levenshtein computes classic single-character edit distance.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			cur[j] = m
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
