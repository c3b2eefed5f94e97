package ast

import (
	"fmt"
	"strings"
)

// dumpIndent is the per-level indent width, matching the teacher's
// PrintingVisitor convention (main.go's INDENT_SIZE) of 4 spaces per level.
const dumpIndent = 4

// Dump renders node as an indented tree, one line per node showing its
// Kind, id, and stage, used by `later --debug` (cmd/later) to inspect the
// tree right after parsing, before stage partitioning and linearity
// analysis have run (so every stage shown is the default). This replaces
// the teacher's interface-based PrintingVisitor (one Visit method per node
// type) with a single recursive function doing a type switch, per spec §9.
func Dump(n Node) string {
	var b strings.Builder
	dump(&b, n, 0)
	return b.String()
}

func dumpLine(b *strings.Builder, depth int, format string, args ...any) {
	b.WriteString(strings.Repeat(" ", depth*dumpIndent))
	fmt.Fprintf(b, format, args...)
	b.WriteString("\n")
}

func dump(b *strings.Builder, n Node, depth int) {
	if n == nil {
		dumpLine(b, depth, "<nil>")
		return
	}
	switch v := n.(type) {
	case *Lit:
		dumpLine(b, depth, "Lit(#%d, %s) kind=%v", v.ID(), v.Stage(), v.LitKind)
	case *InterpString:
		dumpLine(b, depth, "InterpString(#%d, %s)", v.ID(), v.Stage())
		for _, p := range v.Parts {
			dump(b, p, depth+1)
		}
	case *Ident:
		dumpLine(b, depth, "Ident(#%d, %s) %s", v.ID(), v.Stage(), v.Name)
	case *Bin:
		dumpLine(b, depth, "Bin(#%d, %s) %s", v.ID(), v.Stage(), v.Op)
		dump(b, v.Left, depth+1)
		dump(b, v.Right, depth+1)
	case *Un:
		dumpLine(b, depth, "Un(#%d, %s) %s", v.ID(), v.Stage(), v.Op)
		dump(b, v.Operand, depth+1)
	case *If:
		dumpLine(b, depth, "If(#%d, %s)", v.ID(), v.Stage())
		dump(b, v.Cond, depth+1)
		dump(b, v.Then, depth+1)
		if v.Else != nil {
			dump(b, v.Else, depth+1)
		}
	case *Loop:
		dumpLine(b, depth, "Loop(#%d, %s)", v.ID(), v.Stage())
		dump(b, v.Body, depth+1)
	case *Break:
		dumpLine(b, depth, "Break(#%d, %s)", v.ID(), v.Stage())
		if v.Value != nil {
			dump(b, v.Value, depth+1)
		}
	case *Continue:
		dumpLine(b, depth, "Continue(#%d, %s)", v.ID(), v.Stage())
	case *Block:
		dumpLine(b, depth, "Block(#%d, %s)", v.ID(), v.Stage())
		for _, s := range v.Stmts {
			dump(b, s, depth+1)
		}
	case *Let:
		dumpLine(b, depth, "Let(#%d, %s) mut=%v %s", v.ID(), v.Stage(), v.Mutable, strings.Join(v.Pat.BindingNames(), ","))
		dump(b, v.Value, depth+1)
	case *Assign:
		dumpLine(b, depth, "Assign(#%d, %s)", v.ID(), v.Stage())
		dump(b, v.Target, depth+1)
		dump(b, v.Value, depth+1)
	case *Fn:
		dumpLine(b, depth, "Fn(#%d, %s) name=%q params=%d rest=%q", v.ID(), v.Stage(), v.Name, len(v.Params), v.Rest)
		dump(b, v.Body, depth+1)
	case *Call:
		dumpLine(b, depth, "Call(#%d, %s) args=%d", v.ID(), v.Stage(), len(v.Args))
		dump(b, v.Callee, depth+1)
		for _, a := range v.Args {
			dump(b, a, depth+1)
		}
	case *Field:
		dumpLine(b, depth, "Field(#%d, %s) .%s", v.ID(), v.Stage(), v.Name)
		dump(b, v.Object, depth+1)
	case *Index:
		dumpLine(b, depth, "Index(#%d, %s)", v.ID(), v.Stage())
		dump(b, v.Object, depth+1)
		dump(b, v.Index, depth+1)
	case *List:
		dumpLine(b, depth, "List(#%d, %s) elems=%d", v.ID(), v.Stage(), len(v.Elems))
		for _, e := range v.Elems {
			dump(b, e, depth+1)
		}
	case *Object:
		dumpLine(b, depth, "Object(#%d, %s) fields=%d", v.ID(), v.Stage(), len(v.Fields))
		for _, f := range v.Fields {
			if f.Spread {
				dumpLine(b, depth+1, "...spread")
				dump(b, f.Value, depth+2)
				continue
			}
			dumpLine(b, depth+1, "%s:", f.Key)
			dump(b, f.Value, depth+2)
		}
	case *Spread:
		dumpLine(b, depth, "Spread(#%d, %s)", v.ID(), v.Stage())
		dump(b, v.Value, depth+1)
	case *Pipe:
		dumpLine(b, depth, "Pipe(#%d, %s)", v.ID(), v.Stage())
		dump(b, v.Left, depth+1)
		dump(b, v.Right, depth+1)
	case *As:
		dumpLine(b, depth, "As(#%d, %s) name=%s", v.ID(), v.Stage(), v.Name)
		dump(b, v.Expr, depth+1)
	case *Match:
		dumpLine(b, depth, "Match(#%d, %s) arms=%d", v.ID(), v.Stage(), len(v.Arms))
		dump(b, v.Subject, depth+1)
		for _, arm := range v.Arms {
			dumpLine(b, depth+1, "arm")
			dump(b, arm.Body, depth+2)
		}
	case *Defer:
		dumpLine(b, depth, "Defer(#%d, %s)", v.ID(), v.Stage())
		dump(b, v.Expr, depth+1)
	case *Handle:
		dumpLine(b, depth, "Handle(#%d, %s) cases=%d", v.ID(), v.Stage(), len(v.Cases))
		dump(b, v.Body, depth+1)
		for _, c := range v.Cases {
			dumpLine(b, depth+1, "case %s", c.Effect)
			dump(b, c.Body, depth+2)
		}
	case *Perform:
		dumpLine(b, depth, "Perform(#%d, %s) %s args=%d", v.ID(), v.Stage(), v.Name, len(v.Args))
		for _, a := range v.Args {
			dump(b, a, depth+1)
		}
	case *Resume:
		dumpLine(b, depth, "Resume(#%d, %s)", v.ID(), v.Stage())
		dump(b, v.Value, depth+1)
	case *Spawn:
		dumpLine(b, depth, "Spawn(#%d, %s)", v.ID(), v.Stage())
		dump(b, v.Body, depth+1)
	case *All:
		dumpLine(b, depth, "All(#%d, %s) tasks=%d", v.ID(), v.Stage(), len(v.Tasks))
		for _, t := range v.Tasks {
			dump(b, t, depth+1)
		}
	case *Race:
		dumpLine(b, depth, "Race(#%d, %s) tasks=%d", v.ID(), v.Stage(), len(v.Tasks))
		for _, t := range v.Tasks {
			dump(b, t, depth+1)
		}
	case *Await:
		dumpLine(b, depth, "Await(#%d, %s)", v.ID(), v.Stage())
		dump(b, v.Task, depth+1)
	case *Timeout:
		dumpLine(b, depth, "Timeout(#%d, %s)", v.ID(), v.Stage())
		dump(b, v.Ms, depth+1)
		dump(b, v.Body, depth+1)
	case *Import:
		dumpLine(b, depth, "Import(#%d, %s) %q as %s", v.ID(), v.Stage(), v.Path, v.Alias)
	case *StageMark:
		dumpLine(b, depth, "StageMark(#%d, %s) forced=%s", v.ID(), v.Stage(), v.Forced)
		dump(b, v.Body, depth+1)
	default:
		dumpLine(b, depth, "<unknown node %T>", n)
	}
}

// Walk calls visit for n and every descendant in a pre-order traversal,
// stopping a subtree's descent early when visit returns false. This is the
// one generic tree-walker ast provides; stage/linearity/eval each do their
// own bespoke recursive descent instead of reusing Walk because they need
// to thread extra state (current stage ceiling, scope, environment) that a
// single bool-returning callback cannot carry cleanly.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	switch v := n.(type) {
	case *InterpString:
		for _, p := range v.Parts {
			Walk(p, visit)
		}
	case *Bin:
		Walk(v.Left, visit)
		Walk(v.Right, visit)
	case *Un:
		Walk(v.Operand, visit)
	case *If:
		Walk(v.Cond, visit)
		Walk(v.Then, visit)
		if v.Else != nil {
			Walk(v.Else, visit)
		}
	case *Loop:
		Walk(v.Body, visit)
	case *Break:
		if v.Value != nil {
			Walk(v.Value, visit)
		}
	case *Block:
		for _, s := range v.Stmts {
			Walk(s, visit)
		}
	case *Let:
		Walk(v.Value, visit)
	case *Assign:
		Walk(v.Target, visit)
		Walk(v.Value, visit)
	case *Fn:
		Walk(v.Body, visit)
	case *Call:
		Walk(v.Callee, visit)
		for _, a := range v.Args {
			Walk(a, visit)
		}
	case *Field:
		Walk(v.Object, visit)
	case *Index:
		Walk(v.Object, visit)
		Walk(v.Index, visit)
	case *List:
		for _, e := range v.Elems {
			Walk(e, visit)
		}
	case *Object:
		for _, f := range v.Fields {
			Walk(f.Value, visit)
		}
	case *Spread:
		Walk(v.Value, visit)
	case *Pipe:
		Walk(v.Left, visit)
		Walk(v.Right, visit)
	case *As:
		Walk(v.Expr, visit)
	case *Match:
		Walk(v.Subject, visit)
		for _, arm := range v.Arms {
			if arm.Guard != nil {
				Walk(arm.Guard, visit)
			}
			Walk(arm.Body, visit)
		}
	case *Defer:
		Walk(v.Expr, visit)
	case *Handle:
		Walk(v.Body, visit)
		for _, c := range v.Cases {
			Walk(c.Body, visit)
		}
	case *Perform:
		for _, a := range v.Args {
			Walk(a, visit)
		}
	case *Resume:
		Walk(v.Value, visit)
	case *Spawn:
		Walk(v.Body, visit)
	case *All:
		for _, t := range v.Tasks {
			Walk(t, visit)
		}
	case *Race:
		for _, t := range v.Tasks {
			Walk(t, visit)
		}
	case *Await:
		Walk(v.Task, visit)
	case *Timeout:
		Walk(v.Ms, visit)
		Walk(v.Body, visit)
	case *StageMark:
		Walk(v.Body, visit)
	}
}
