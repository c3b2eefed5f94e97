// Package ast defines Later's immutable expression tree (spec component D).
// Every node is a concrete struct embedding Meta for {id, span, stage} plus
// a Kind() discriminant; there is no per-node-type visitor interface the
// way the teacher repo's parser/node.go defines one; passes that need to
// traverse the tree (ast.Walk, stage.Partition, linearity.Check, eval.Eval)
// are concrete functions with a type switch over Kind(), per spec §9
// ("prefer tagged variants ... visitors are concrete match-on-variant
// procedures").
package ast

import "github.com/later-lang/later/sourcemap"

// NodeID uniquely identifies a node within one parse, stable across passes
// so stage and linearity annotations attached after parsing can be looked
// up by id (e.g. in diagnostics that reference "the declaration of `x`").
type NodeID int

// Stage is the phase at which a node is evaluated (spec §4.3). Runtime is
// the lowest and most permissive stage; the ordering Runtime < Startup
// < Comptime matters for "a node's stage is the lowest stage compatible
// with its capabilities".
type Stage int

const (
	StageRuntime Stage = iota
	StageStartup
	StageComptime
)

func (s Stage) String() string {
	switch s {
	case StageComptime:
		return "comptime"
	case StageStartup:
		return "startup"
	default:
		return "runtime"
	}
}

// Kind discriminates the closed set of expression tree node types named in
// spec §3, plus a small number of pragmatic extensions (InterpString, for
// strings with `{expr}` interpolation).
type Kind int

const (
	KindLit Kind = iota
	KindInterpString
	KindIdent
	KindBin
	KindUn
	KindIf
	KindLoop
	KindBreak
	KindContinue
	KindBlock
	KindLet
	KindAssign
	KindFn
	KindCall
	KindField
	KindIndex
	KindList
	KindObject
	KindSpread
	KindPipe
	KindAs
	KindMatch
	KindDefer
	KindHandle
	KindPerform
	KindResume
	KindSpawn
	KindAll
	KindRace
	KindAwait
	KindTimeout
	KindImport
	KindStageMark
)

var kindNames = map[Kind]string{
	KindLit: "Lit", KindInterpString: "InterpString", KindIdent: "Ident",
	KindBin: "Bin", KindUn: "Un", KindIf: "If", KindLoop: "Loop",
	KindBreak: "Break", KindContinue: "Continue", KindBlock: "Block",
	KindLet: "Let", KindAssign: "Assign", KindFn: "Fn", KindCall: "Call",
	KindField: "Field", KindIndex: "Index", KindList: "List",
	KindObject: "Object", KindSpread: "Spread", KindPipe: "Pipe",
	KindAs: "As", KindMatch: "Match", KindDefer: "Defer",
	KindHandle: "Handle", KindPerform: "Perform", KindResume: "Resume",
	KindSpawn: "Spawn", KindAll: "All", KindRace: "Race",
	KindAwait: "Await", KindTimeout: "Timeout", KindImport: "Import",
	KindStageMark: "StageMark",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Node is satisfied by every tree node. Concrete types embed Meta to get
// ID/Span/Stage for free and add their own Kind() method.
type Node interface {
	ID() NodeID
	Span() sourcemap.Span
	Kind() Kind
	Stage() Stage
	SetStage(Stage)
	Linearity() *Linearity
	SetLinearity(*Linearity)
}

// Meta carries the fields every node shares: {id, span, stage} from spec
// §3 plus the linearity record attached by the analyzer afterwards.
type Meta struct {
	NID   NodeID
	NSpan sourcemap.Span
	NStg  Stage
	NLin  *Linearity
}

func (m *Meta) ID() NodeID                    { return m.NID }
func (m *Meta) Span() sourcemap.Span          { return m.NSpan }
func (m *Meta) Stage() Stage                  { return m.NStg }
func (m *Meta) SetStage(s Stage)              { m.NStg = s }
func (m *Meta) Linearity() *Linearity         { return m.NLin }
func (m *Meta) SetLinearity(l *Linearity)     { m.NLin = l }

// Linearity is the per-node record the analyzer (package linearity)
// attaches after a successful check: which bindings this node consumes,
// borrows, or introduces. Kept here (not in package linearity) so ast stays
// the single owner of "everything hung off a node", matching spec §3
// "every node carries ... a linearity record" after analysis.
type Linearity struct {
	Consumes []string
	Borrows  []string
	Drops    []string
}

// IDGen hands out increasing NodeIDs for one parse.
type IDGen struct{ next NodeID }

func (g *IDGen) Next() NodeID {
	g.next++
	return g.next
}
