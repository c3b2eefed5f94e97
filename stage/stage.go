// Package stage assigns every expression tree node a Stage (spec component
// E) and enforces the capability table of spec §4.3. Unmarked code always
// runs at the least restrictive stage, runtime; an explicit `comptime { … }`
// or `startup { … }` mark forces every node in its subtree to that stage,
// and forcing a stage that a node's capabilities are incompatible with
// (performing IO, reading the environment, creating a linear resource, or
// reaching for concurrency) is a diagnostic, not a silent downgrade.
package stage

import (
	"github.com/later-lang/later/ast"
	"github.com/later-lang/later/diag"
	"github.com/later-lang/later/sourcemap"
)

// Capability classifies what an expression needs beyond pure computation,
// per spec §4.3's table.
type Capability int

const (
	CapPure Capability = iota
	CapEnvRead
	CapIO
	CapLinearResource
	CapConcurrency
)

// maxStage is the most restrictive stage at which a capability is still
// permitted: CapPure is fine even at comptime; the others require at least
// startup, and CapConcurrency requires runtime outright. Concurrency is
// enforced structurally (spawn/handle/perform/resume/await/all/race/timeout
// are dedicated ast.Node kinds, not calls), so it has no Call-name entry
// below — maxStage[CapConcurrency] documents the rule even though
// checkCallCapability never looks it up.
var maxStage = map[Capability]ast.Stage{
	CapPure:           ast.StageComptime,
	CapEnvRead:        ast.StageStartup,
	CapIO:             ast.StageStartup,
	CapLinearResource: ast.StageStartup,
	CapConcurrency:    ast.StageRuntime,
}

// BuiltinCapabilities names the capability each builtin beyond pure
// computation requires (spec §6's builtin list); a name absent here is
// treated as CapPure. The `builtins` package's registered names must agree
// with this table — see DESIGN.md's stage/builtins entry.
var BuiltinCapabilities = map[string]Capability{
	"print":   CapIO,
	"debug":   CapIO,
	"env-get": CapEnvRead,
	"channel": CapLinearResource,
	"open":    CapLinearResource,
}

// Partition walks root, assigning every node's Stage and collecting
// diagnostics for capability and cross-stage-reference violations. It does
// not fold comptime sub-trees into values, and no other pass does either:
// the evaluator runs a StageMark's body in place, like any other node.
func Partition(file *sourcemap.File, root *ast.Block) *diag.Bag {
	p := &partitioner{bag: diag.NewBag(file)}
	p.node(root, ast.StageRuntime, newScope(nil))
	return p.bag
}

type partitioner struct {
	bag *diag.Bag
}

// scope tracks, per binding name, the Stage forced at the point it was
// defined — the only state needed to catch "a comptime expression
// referenced a value that will not exist until startup/runtime" (spec
// §4.3's "runtime value used in comptime expression").
type scope struct {
	vars   map[string]ast.Stage
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: make(map[string]ast.Stage), parent: parent}
}

func (s *scope) define(name string, st ast.Stage) {
	if name == "" || name == "_" {
		return
	}
	s.vars[name] = st
}

func (s *scope) lookup(name string) (ast.Stage, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if st, ok := cur.vars[name]; ok {
			return st, true
		}
	}
	return ast.StageRuntime, false
}

func (p *partitioner) bindPattern(pat *ast.Pattern, forced ast.Stage, sc *scope) {
	if pat == nil {
		return
	}
	for _, name := range pat.BindingNames() {
		sc.define(name, forced)
	}
}

// requireRuntime reports a violation when a concurrency-only construct
// appears anywhere but an unforced (runtime) context.
func (p *partitioner) requireRuntime(n ast.Node, forced ast.Stage, what string) {
	if forced != ast.StageRuntime {
		p.bag.Add(diag.New(diag.KindStage, n.Span(), "%s not allowed before runtime", what))
	}
}

func (p *partitioner) checkCallCapability(call *ast.Call, forced ast.Stage) {
	ident, ok := call.Callee.(*ast.Ident)
	if !ok {
		return
	}
	cap, known := BuiltinCapabilities[ident.Name]
	if !known || cap == CapPure {
		return
	}
	if forced <= maxStage[cap] {
		return
	}
	switch cap {
	case CapIO:
		p.bag.Add(diag.New(diag.KindStage, call.Span(), "cannot perform IO at compile time"))
	case CapEnvRead:
		p.bag.Add(diag.New(diag.KindStage, call.Span(), "cannot read environment at compile time"))
	case CapLinearResource:
		p.bag.Add(diag.New(diag.KindStage, call.Span(), "linear types not allowed at compile time"))
	}
}

// node assigns forced to n's Stage and recurses, threading sc (the
// stage-scope chain) through binding forms so identifier references can be
// checked against where their value was bound.
func (p *partitioner) node(n ast.Node, forced ast.Stage, sc *scope) {
	if n == nil {
		return
	}
	switch v := n.(type) {
	case *ast.StageMark:
		v.SetStage(v.Forced)
		p.node(v.Body, v.Forced, sc)

	case *ast.Lit:
		v.SetStage(forced)

	case *ast.InterpString:
		v.SetStage(forced)
		for _, part := range v.Parts {
			p.node(part, forced, sc)
		}

	case *ast.Ident:
		v.SetStage(forced)
		if bound, ok := sc.lookup(v.Name); ok && bound < forced {
			p.bag.Add(diag.New(diag.KindStage, v.Span(), "%s value used in %s expression", bound, forced))
		}

	case *ast.Bin:
		v.SetStage(forced)
		p.node(v.Left, forced, sc)
		p.node(v.Right, forced, sc)

	case *ast.Un:
		v.SetStage(forced)
		p.node(v.Operand, forced, sc)

	case *ast.If:
		v.SetStage(forced)
		p.node(v.Cond, forced, sc)
		p.node(v.Then, forced, sc)
		p.node(v.Else, forced, sc)

	case *ast.Loop:
		v.SetStage(forced)
		p.node(v.Body, forced, sc)

	case *ast.Break:
		v.SetStage(forced)
		p.node(v.Value, forced, sc)

	case *ast.Continue:
		v.SetStage(forced)

	case *ast.Block:
		v.SetStage(forced)
		inner := newScope(sc)
		for _, s := range v.Stmts {
			p.node(s, forced, inner)
		}

	case *ast.Let:
		v.SetStage(forced)
		p.node(v.Value, forced, sc)
		p.bindPattern(v.Pat, forced, sc)

	case *ast.Assign:
		v.SetStage(forced)
		p.node(v.Target, forced, sc)
		p.node(v.Value, forced, sc)

	case *ast.Fn:
		v.SetStage(forced)
		inner := newScope(sc)
		for _, param := range v.Params {
			p.node(param.Default, forced, sc)
			p.bindPattern(param.Pat, forced, inner)
		}
		inner.define(v.Rest, forced)
		p.node(v.Body, forced, inner)

	case *ast.Call:
		v.SetStage(forced)
		p.node(v.Callee, forced, sc)
		for _, a := range v.Args {
			p.node(a, forced, sc)
		}
		p.checkCallCapability(v, forced)

	case *ast.Field:
		v.SetStage(forced)
		p.node(v.Object, forced, sc)

	case *ast.Index:
		v.SetStage(forced)
		p.node(v.Object, forced, sc)
		p.node(v.Index, forced, sc)

	case *ast.List:
		v.SetStage(forced)
		for _, e := range v.Elems {
			p.node(e, forced, sc)
		}

	case *ast.Object:
		v.SetStage(forced)
		for i := range v.Fields {
			p.node(v.Fields[i].Value, forced, sc)
		}

	case *ast.Spread:
		v.SetStage(forced)
		p.node(v.Value, forced, sc)

	case *ast.As:
		v.SetStage(forced)
		p.node(v.Expr, forced, sc)
		sc.define(v.Name, forced)

	case *ast.Match:
		v.SetStage(forced)
		p.node(v.Subject, forced, sc)
		for _, arm := range v.Arms {
			armScope := newScope(sc)
			p.bindPattern(arm.Pat, forced, armScope)
			p.node(arm.Guard, forced, armScope)
			p.node(arm.Body, forced, armScope)
		}

	case *ast.Defer:
		v.SetStage(forced)
		p.node(v.Expr, forced, sc)

	case *ast.Handle:
		v.SetStage(forced)
		p.requireRuntime(n, forced, "handle")
		p.node(v.Body, forced, sc)
		for _, c := range v.Cases {
			caseScope := newScope(sc)
			for _, pat := range c.Params {
				p.bindPattern(pat, forced, caseScope)
			}
			p.node(c.Body, forced, caseScope)
		}

	case *ast.Perform:
		v.SetStage(forced)
		p.requireRuntime(n, forced, "perform")
		for _, a := range v.Args {
			p.node(a, forced, sc)
		}

	case *ast.Resume:
		v.SetStage(forced)
		p.requireRuntime(n, forced, "resume")
		p.node(v.Value, forced, sc)

	case *ast.Spawn:
		v.SetStage(forced)
		p.requireRuntime(n, forced, "spawn")
		p.node(v.Body, forced, sc)

	case *ast.All:
		v.SetStage(forced)
		p.requireRuntime(n, forced, "all")
		for _, t := range v.Tasks {
			p.node(t, forced, sc)
		}

	case *ast.Race:
		v.SetStage(forced)
		p.requireRuntime(n, forced, "race")
		for _, t := range v.Tasks {
			p.node(t, forced, sc)
		}

	case *ast.Await:
		v.SetStage(forced)
		p.requireRuntime(n, forced, "await")
		p.node(v.Task, forced, sc)

	case *ast.Timeout:
		v.SetStage(forced)
		p.requireRuntime(n, forced, "timeout")
		p.node(v.Ms, forced, sc)
		p.node(v.Body, forced, sc)

	case *ast.Import:
		v.SetStage(forced)

	default:
		// Pattern and other non-traversed node kinds carry no stage of
		// their own beyond what bindPattern already extracted.
	}
}
