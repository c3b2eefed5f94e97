package value

import "github.com/later-lang/later/ast"

// Env is satisfied by env.Env. It is declared here as an opaque interface,
// rather than value importing env directly, because env.Env's slots hold
// value.Value: value must stay below env in the import graph.
type Env interface {
	// EnvID identifies the underlying environment for equality checks
	// (e.g. "is this closure's captured env the current one") without
	// requiring value to know env's fields.
	EnvID() int64
}

// Closure is a function value: its parameter list, body, and the
// environment captured at definition time (spec §3 `Closure {params, body,
// captured-env, is-linear}`). A closure with IsLinear set may be called at
// most once (CallClosure enforces this). evalFn never sets it: the
// linearity checker rejects every closure that captures a linear binding
// by move.
type Closure struct {
	Name     string
	Params   []*ast.Param
	Rest     string // bound name of a `...rest` parameter, or ""
	Body     ast.Node
	Captured Env
	IsLinear bool
	Called   bool // set after first call, to enforce the linear-closure-called-once rule
}

func (*Closure) Kind() Kind { return KindClosure }

// ResourceState is the lifecycle state of a Resource value (spec §3).
type ResourceState int

const (
	ResourceLive ResourceState = iota
	ResourceBorrowed
	ResourceConsumed
	ResourceDropped
)

func (s ResourceState) String() string {
	switch s {
	case ResourceLive:
		return "live"
	case ResourceBorrowed:
		return "borrowed"
	case ResourceConsumed:
		return "consumed"
	case ResourceDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Decision is what a fallible cleanup action reports alongside its error
// (spec §4.5 "Fallible cleanup with retry": "a defer may return a
// retry-descriptor (retry, abandon, ok)"). The defer runner loops a
// cleanup while it reports DecisionRetry, stops looping (without treating
// it as a failure) on DecisionAbandon, and stops looping on DecisionOK.
type Decision int

const (
	DecisionOK Decision = iota
	DecisionRetry
	DecisionAbandon
)

func (d Decision) String() string {
	switch d {
	case DecisionRetry:
		return "retry"
	case DecisionAbandon:
		return "abandon"
	default:
		return "ok"
	}
}

// CleanupFunc runs a resource's cleanup action. It may be retried: a
// fallible cleanup (spec §5.6) returns an error and a Decision telling the
// defer runner whether to retry, abandon, or treat it as settled.
type CleanupFunc func() (Decision, error)

// CleanupLogEntry records one cleanup attempt, kept on the Resource so
// `debug` and diagnostics can show the retry history.
type CleanupLogEntry struct {
	Attempt int
	Err     error
}

// Resource is an opaque handle to something with fallible, linear
// lifecycle: a file, a lock, a connection (spec §3 `Resource {kind,
// opaque-handle, cleanup-fn, state, cleanup-log}`).
type Resource struct {
	ResourceKind string
	Handle       interface{}
	Cleanup      CleanupFunc
	State        ResourceState
	CleanupLog   []CleanupLogEntry
}

func (*Resource) Kind() Kind { return KindResource }

// EffectToken is a payload-free Value with its own printed form. The
// evaluator does not produce it: a `resume()` with no payload resumes the
// `perform` with nil.
type EffectToken struct{}

func (EffectToken) Kind() Kind { return KindEffectToken }
