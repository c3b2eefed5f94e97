// Package env implements Later's binding environment: a chain of scopes
// carrying not just values but each binding's linearity class (spec §5.1's
// state lattice). It generalizes the teacher's scope.Scope, which only
// ever tracked a value plus const/let bookkeeping, into something that can
// answer "is this binding still live, consumed, moved, or borrowed" for the
// linearity analyzer and the evaluator alike.
package env

import (
	"fmt"
	"sync/atomic"

	"github.com/later-lang/later/value"
)

// Class is a binding's linearity state (spec §5.1).
type Class int

const (
	// ClassNone is an ordinary (non-linear, affine-none) binding: it may be
	// read any number of times and is never required to be consumed.
	ClassNone Class = iota
	ClassLive
	ClassConsumed
	ClassMoved
	ClassDropped
	ClassBorrowedImmut
	ClassBorrowedMut
)

func (c Class) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassLive:
		return "live"
	case ClassConsumed:
		return "consumed"
	case ClassMoved:
		return "moved"
	case ClassDropped:
		return "dropped"
	case ClassBorrowedImmut:
		return "borrowed-immut"
	case ClassBorrowedMut:
		return "borrowed-mut"
	default:
		return "unknown"
	}
}

// Slot is one binding: its value, whether `mut` was used to declare it,
// its linearity class, and (for ClassBorrowedImmut) how many live
// immutable borrows are outstanding.
type Slot struct {
	Value       value.Value
	Mutable     bool
	IsLinear    bool
	Class       Class
	BorrowCount int
}

var idCounter int64

// Env is one lexical scope: its own bindings plus a pointer to the
// enclosing scope, exactly the chain structure of the teacher's
// scope.Scope, but keyed to Slot instead of a bare value.
type Env struct {
	id     int64
	vars   map[string]*Slot
	parent *Env
}

// New creates a scope with the given parent (nil for the global/root
// scope), mirroring scope.NewScope's contract.
func New(parent *Env) *Env {
	return &Env{
		id:     atomic.AddInt64(&idCounter, 1),
		vars:   make(map[string]*Slot),
		parent: parent,
	}
}

// EnvID satisfies value.Env, letting a *Closure's captured environment be
// compared for identity without value importing env.
func (e *Env) EnvID() int64 { return e.id }

func (e *Env) Parent() *Env { return e.parent }

// Define creates a new binding in this scope only (spec §4.3 `let`). It
// does not check for redeclaration; the parser/resolver layer is
// responsible for rejecting duplicate `let` in the same block where the
// language forbids it.
func (e *Env) Define(name string, v value.Value, mutable, linear bool) {
	class := ClassNone
	if linear {
		class = ClassLive
	}
	e.vars[name] = &Slot{Value: v, Mutable: mutable, IsLinear: linear, Class: class}
}

// Lookup walks the scope chain outward, mirroring scope.Scope.LookUp.
func (e *Env) Lookup(name string) (*Slot, bool) {
	for s := e; s != nil; s = s.parent {
		if slot, ok := s.vars[name]; ok {
			return slot, true
		}
	}
	return nil, false
}

// LookupLocal checks only this scope, not the chain; the evaluator uses it
// when snapshotting a scope for a deferred action.
func (e *Env) LookupLocal(name string) (*Slot, bool) {
	slot, ok := e.vars[name]
	return slot, ok
}

// Assign updates an existing binding wherever in the chain it was defined
// (spec §4.3 `x = value`), mirroring scope.Scope.Assign. It returns an
// "undefined binding" error if no such binding exists and a "cannot
// assign to immutable binding" error if the binding was declared without
// `mut`.
func (e *Env) Assign(name string, v value.Value) error {
	for s := e; s != nil; s = s.parent {
		if slot, ok := s.vars[name]; ok {
			if !slot.Mutable {
				return fmt.Errorf("cannot assign to immutable binding `%s`", name)
			}
			slot.Value = v
			return nil
		}
	}
	return fmt.Errorf("undefined binding `%s`", name)
}

// Child creates a new nested scope.
func (e *Env) Child() *Env { return New(e) }

// Names returns every name bound directly in this scope (not the chain),
// used by the evaluator when snapshotting a scope for a deferred action.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.vars))
	for n := range e.vars {
		names = append(names, n)
	}
	return names
}
