// Package linearity implements Later's linear/affine flow analysis (spec
// component F, §4.4): a single tree walk that both infers which bindings
// carry a linear value (from the structural shape of their initializer —
// there is no separate type-inference pass to consult) and tracks each
// binding's state through the lattice live -> {consumed, moved, dropped},
// live-with-read-borrows, live-with-write-borrow, checking every rule the
// spec names: branch merge, the loop rule, scope-exit, explicit drop,
// closure capture, and the `_` wildcard-destructor rule.
//
// Simplification, recorded per DESIGN.md: Later's grammar has no explicit
// borrow syntax (no `&`/`borrow` token), so a persisting borrow can never
// be written down — this checker therefore tracks full move/consume
// semantics precisely but only recognizes borrows in the one place they
// are syntactically unambiguous (reading through a `Field`/`Index` base),
// and does not attempt to track an outstanding borrow across statements.
package linearity

import (
	"github.com/later-lang/later/ast"
	"github.com/later-lang/later/diag"
	"github.com/later-lang/later/env"
	"github.com/later-lang/later/sourcemap"
)

// LinearBuiltins names builtins whose result is always a linear value.
// `open` is the spec's own illustrative example of a linear-resource
// constructor (§4.4's worked example); `channel` matches stage's
// BuiltinCapabilities entry for the same builtin (coupling noted there).
var LinearBuiltins = map[string]bool{
	"open":    true,
	"channel": true,
}

type binding struct {
	name          string
	isLinear      bool
	hasDestructor bool
	class         env.Class
	declSpan      sourcemap.Span
	// isShadow is true only for an entry copied into this scope because an
	// ancestor's binding was mutated here (consume/drop); false for a
	// genuine local `let`. Distinguishing the two keeps the loop-rule and
	// closure-capture checks from mistaking a same-named local redeclaration
	// for a capture of the outer binding.
	isShadow bool
}

func isTerminal(c env.Class) bool {
	return c == env.ClassConsumed || c == env.ClassMoved || c == env.ClassDropped
}

type scope struct {
	vars   map[string]*binding
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: make(map[string]*binding), parent: parent}
}

func (s *scope) define(name string, isLinear, hasDestructor bool, span sourcemap.Span) {
	if name == "" {
		return
	}
	cls := env.ClassNone
	if isLinear {
		cls = env.ClassLive
	}
	s.vars[name] = &binding{name: name, isLinear: isLinear, hasDestructor: hasDestructor, class: cls, declSpan: span}
}

func (s *scope) lookup(name string) (*binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// shadow returns the binding for name, copying it down from an ancestor
// scope into s first if it was not already declared locally, so mutating
// the returned pointer never affects a sibling branch scope.
func (s *scope) shadow(name string) *binding {
	if b, ok := s.vars[name]; ok {
		return b
	}
	for cur := s.parent; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			cp := *b
			cp.isShadow = true
			s.vars[name] = &cp
			return &cp
		}
	}
	return nil
}

func collectLinearNames(sc *scope) []string {
	seen := map[string]bool{}
	var names []string
	for cur := sc; cur != nil; cur = cur.parent {
		for name, b := range cur.vars {
			if b.isLinear && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// Checker accumulates diagnostics across one program's linearity check.
type Checker struct {
	bag *diag.Bag
}

// Check runs the analyzer over root and returns every diagnostic found.
func Check(file *sourcemap.File, root *ast.Block) *diag.Bag {
	c := &Checker{bag: diag.NewBag(file)}
	top := newScope(nil)
	c.block(root, top)
	return c.bag
}

func (c *Checker) checkScopeExit(sc *scope, span sourcemap.Span) {
	for _, b := range sc.vars {
		if b.isLinear && !isTerminal(b.class) {
			c.bag.Add(diag.New(diag.KindLinearity, span, "linear value `%s` was never consumed", b.name))
		}
	}
}

// block processes n as a scope body, creating a child scope when n is an
// *ast.Block (the common case), and returns the scope whose bindings the
// caller may want to inspect afterward (e.g. Fn for capture-checking). A
// bare single-expression body (no braces) is checked directly in sc and sc
// itself is returned.
func (c *Checker) block(n ast.Node, sc *scope) *scope {
	blk, ok := n.(*ast.Block)
	if !ok {
		c.expr(n, sc)
		return sc
	}
	inner := newScope(sc)
	for _, stmt := range blk.Stmts {
		c.expr(stmt, inner)
	}
	c.checkScopeExit(inner, blk.Span())
	return inner
}

func (c *Checker) useIdent(id *ast.Ident, sc *scope) {
	name, span := id.Name, id.Span()
	b, ok := sc.lookup(name)
	if !ok || !b.isLinear {
		return
	}
	switch b.class {
	case env.ClassLive:
		if shadow := sc.shadow(name); shadow != nil {
			shadow.class = env.ClassConsumed
		}
		id.SetLinearity(&ast.Linearity{Consumes: []string{name}})
	case env.ClassBorrowedImmut, env.ClassBorrowedMut:
		c.bag.Add(diag.New(diag.KindBorrow, span, "cannot consume `%s` while borrowed", name))
	default:
		c.bag.Add(diag.New(diag.KindLinearity, span, "linear value `%s` already consumed", name))
	}
}

func (c *Checker) dropIdent(call *ast.Call, argIdent *ast.Ident, sc *scope) {
	name, span := argIdent.Name, argIdent.Span()
	b, ok := sc.lookup(name)
	if !ok || !b.isLinear {
		return
	}
	switch b.class {
	case env.ClassLive:
		if shadow := sc.shadow(name); shadow != nil {
			shadow.class = env.ClassDropped
		}
		call.SetLinearity(&ast.Linearity{Drops: []string{name}})
	case env.ClassBorrowedImmut, env.ClassBorrowedMut:
		c.bag.Add(diag.New(diag.KindBorrow, span, "cannot consume `%s` while borrowed", name))
	default:
		c.bag.Add(diag.New(diag.KindLinearity, span, "linear value `%s` already consumed", name))
	}
}

// inferLinear decides whether n's evaluated result is a linear value, per
// spec §4.4 ("structs/lists containing linear fields become linear").
// Parameters and closures are conservatively never inferred linear here —
// recorded as an Open Question resolution in DESIGN.md, since the grammar
// gives no type annotation the checker can trust without a type system.
func (c *Checker) inferLinear(n ast.Node, sc *scope) (isLinear, hasDestructor bool) {
	switch v := n.(type) {
	case *ast.Call:
		if ident, ok := v.Callee.(*ast.Ident); ok && LinearBuiltins[ident.Name] {
			return true, true
		}
	case *ast.Ident:
		if b, ok := sc.lookup(v.Name); ok && b.isLinear {
			return true, b.hasDestructor
		}
	case *ast.List:
		for _, e := range v.Elems {
			if isLin, hasDest := c.inferLinear(e, sc); isLin {
				return true, hasDest
			}
		}
	case *ast.Object:
		for _, f := range v.Fields {
			if isLin, hasDest := c.inferLinear(f.Value, sc); isLin {
				return true, hasDest
			}
		}
	}
	return false, false
}

func baseIdent(n ast.Node) (*ast.Ident, bool) {
	switch v := n.(type) {
	case *ast.Ident:
		return v, true
	case *ast.Field:
		return baseIdent(v.Object)
	case *ast.Index:
		return baseIdent(v.Object)
	default:
		return nil, false
	}
}

// expr walks n, consuming linear bindings it references in ordinary use
// positions and enforcing the branch/loop/capture/wildcard rules at the
// constructs that need special handling.
func (c *Checker) expr(n ast.Node, sc *scope) {
	if n == nil {
		return
	}
	switch v := n.(type) {
	case *ast.Lit, *ast.Continue, *ast.Import:
		// no linear content

	case *ast.InterpString:
		for _, p := range v.Parts {
			c.expr(p, sc)
		}

	case *ast.Ident:
		c.useIdent(v, sc)

	case *ast.Bin:
		c.expr(v.Left, sc)
		c.expr(v.Right, sc)

	case *ast.Un:
		c.expr(v.Operand, sc)

	case *ast.Block:
		c.block(v, sc)

	case *ast.Let:
		c.expr(v.Value, sc)
		isLin, hasDest := c.inferLinear(v.Value, sc)
		if v.Pat.IsWildcard() {
			if isLin && hasDest {
				c.bag.Add(diag.New(diag.KindLinearity, v.Span(),
					"linear value with a destructor cannot be bound to `_`"))
			}
			return
		}
		if base, ok := baseIdent(v.Value); ok {
			if _, isDirect := v.Value.(*ast.Ident); !isDirect {
				if b, found := sc.lookup(base.Name); found && b.isLinear {
					c.bag.Add(diag.New(diag.KindLinearity, v.Span(),
						"cannot move out of linear aggregate `%s`; destructure with a pattern instead", base.Name))
				}
			}
		}
		for _, name := range v.Pat.BindingNames() {
			sc.define(name, isLin, hasDest, v.Span())
		}

	case *ast.Assign:
		c.expr(v.Value, sc)

	case *ast.If:
		c.expr(v.Cond, sc)
		names := collectLinearNames(sc)
		// c.block allocates its own child scope and returns it rather than
		// mutating the scope passed in, so the returned scope - not the one
		// constructed here - is what actually accumulated the branch's
		// consume/drop bookkeeping; mergeBranches must look there.
		thenScope := c.block(v.Then, newScope(sc))
		var elseScope *scope
		if v.Else != nil {
			elseScope = c.block(v.Else, newScope(sc))
		} else {
			elseScope = newScope(sc)
		}
		branches := []*scope{thenScope, elseScope}
		c.mergeBranches(sc, names, branches, v.Span())

	case *ast.Loop:
		outerNames := collectLinearNames(sc)
		loopScope := c.block(v.Body, newScope(sc))
		for _, name := range outerNames {
			if b, ok := loopScope.vars[name]; ok && b.isShadow && isTerminal(b.class) {
				c.bag.Add(diag.New(diag.KindLinearity, v.Span(), "cannot consume linear value `%s` in loop", name))
			}
		}

	case *ast.Break:
		for _, b := range sc.vars {
			if b.isLinear && !b.isShadow && !isTerminal(b.class) {
				c.bag.Add(diag.New(diag.KindLinearity, v.Span(),
					"linear value `%s` not consumed before break", b.name))
			}
		}
		c.expr(v.Value, sc)

	case *ast.Fn:
		paramScope := newScope(sc)
		ownNames := map[string]bool{}
		for _, param := range v.Params {
			c.expr(param.Default, sc)
			for _, name := range param.Pat.BindingNames() {
				paramScope.define(name, false, false, v.Span())
				ownNames[name] = true
			}
		}
		if v.Rest != "" {
			paramScope.define(v.Rest, false, false, v.Span())
			ownNames[v.Rest] = true
		}
		bodyScope := c.block(v.Body, paramScope)
		c.checkScopeExit(paramScope, v.Span())
		for name, b := range bodyScope.vars {
			if ownNames[name] || !b.isShadow {
				continue
			}
			if isTerminal(b.class) {
				c.bag.Add(diag.New(diag.KindLinearity, v.Span(),
					"closures may not capture linear value `%s` by move", name))
			}
		}

	case *ast.Call:
		if ident, ok := v.Callee.(*ast.Ident); ok && ident.Name == "drop" && len(v.Args) == 1 {
			if argIdent, isIdent := v.Args[0].(*ast.Ident); isIdent {
				c.dropIdent(v, argIdent, sc)
				return
			}
		}
		c.expr(v.Callee, sc)
		for _, a := range v.Args {
			c.expr(a, sc)
		}

	case *ast.Field:
		if base, ok := v.Object.(*ast.Ident); ok {
			if b, found := sc.lookup(base.Name); found && b.isLinear {
				v.SetLinearity(&ast.Linearity{Borrows: []string{base.Name}})
				break
			}
		}
		c.expr(v.Object, sc)

	case *ast.Index:
		if base, ok := v.Object.(*ast.Ident); ok {
			if b, found := sc.lookup(base.Name); found && b.isLinear {
				v.SetLinearity(&ast.Linearity{Borrows: []string{base.Name}})
				c.expr(v.Index, sc)
				break
			}
		}
		c.expr(v.Object, sc)
		c.expr(v.Index, sc)

	case *ast.List:
		for _, e := range v.Elems {
			c.expr(e, sc)
		}

	case *ast.Object:
		for i := range v.Fields {
			c.expr(v.Fields[i].Value, sc)
		}

	case *ast.Spread:
		c.expr(v.Value, sc)

	case *ast.As:
		c.expr(v.Expr, sc)
		isLin, hasDest := c.inferLinear(v.Expr, sc)
		sc.define(v.Name, isLin, hasDest, v.Span())

	case *ast.Match:
		c.expr(v.Subject, sc)
		names := collectLinearNames(sc)
		var branches []*scope
		for _, arm := range v.Arms {
			armScope := newScope(sc)
			for _, name := range arm.Pat.BindingNames() {
				armScope.define(name, false, false, arm.Pat.Span())
			}
			c.expr(arm.Guard, armScope)
			c.expr(arm.Body, armScope)
			branches = append(branches, armScope)
		}
		c.mergeBranches(sc, names, branches, v.Span())

	case *ast.Defer:
		c.expr(v.Expr, sc)

	case *ast.Handle:
		c.expr(v.Body, sc)
		for _, cs := range v.Cases {
			caseScope := newScope(sc)
			for _, pat := range cs.Params {
				for _, name := range pat.BindingNames() {
					caseScope.define(name, false, false, pat.Span())
				}
			}
			c.expr(cs.Body, caseScope)
		}

	case *ast.Perform:
		for _, a := range v.Args {
			c.expr(a, sc)
		}

	case *ast.Resume:
		c.expr(v.Value, sc)

	case *ast.Spawn:
		c.expr(v.Body, sc)

	case *ast.All:
		for _, t := range v.Tasks {
			c.expr(t, sc)
		}

	case *ast.Race:
		for _, t := range v.Tasks {
			c.expr(t, sc)
		}

	case *ast.Await:
		c.expr(v.Task, sc)

	case *ast.Timeout:
		c.expr(v.Ms, sc)
		c.expr(v.Body, sc)

	case *ast.StageMark:
		c.expr(v.Body, sc)
	}
}

// mergeBranches reconciles the end state of every name in names across all
// branches: agreement (including "all branches consumed it, one way or
// another") keeps that state; disagreement between a still-live branch and
// a consuming one is spec §4.4's "live ⊔ consumed = error". sc is the scope
// the branching construct (If/Match) itself lives in; the reconciled state
// is written back into sc's own binding so statements following the
// construct in the same scope observe the merge's outcome instead of the
// unchanged pre-branch state.
func (c *Checker) mergeBranches(sc *scope, names []string, branches []*scope, span sourcemap.Span) {
	for _, name := range names {
		var classes []env.Class
		for _, b := range branches {
			bd, ok := b.lookup(name)
			if !ok {
				continue
			}
			classes = append(classes, bd.class)
		}
		if len(classes) == 0 {
			continue
		}
		agree := true
		for _, cl := range classes[1:] {
			if cl != classes[0] {
				agree = false
				break
			}
		}
		if agree {
			c.writeBack(sc, name, classes[0])
			continue
		}
		allTerminal := true
		for _, cl := range classes {
			if !isTerminal(cl) {
				allTerminal = false
				break
			}
		}
		if allTerminal {
			c.writeBack(sc, name, env.ClassConsumed)
			continue
		}
		c.bag.Add(diag.New(diag.KindLinearity, span, "linear value `%s` may not be consumed", name))
	}
}

// writeBack updates name's binding as seen from sc to cls, shadowing it down
// from an ancestor scope first if sc has no local entry of its own yet.
func (c *Checker) writeBack(sc *scope, name string, cls env.Class) {
	if b := sc.shadow(name); b != nil {
		b.class = cls
	}
}
