package eval

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/later-lang/later/value"
)

// handlerFrame is one installed `handle ... with { ... }` instance: the
// effect-name -> case table, and the channel pair the goroutine-pair
// perform/resume protocol uses to hand control between the body's
// goroutine and the dispatcher loop running on the Eval call that created
// this frame (spec §4.5's "reified one-shot continuation", adapted to Go
// as a real suspended goroutine rather than a literal captured stack
// segment, since Go has no first-class continuations to reify).
type handlerFrame struct {
	cases  map[string]handlerCase
	reqCh  chan performReq
	doneCh chan handlerOutcome
	// abortCh is closed when the handler decided not to resume, so a
	// `perform` parked waiting on its reply can unwind instead of blocking
	// forever (the dropped continuation, spec §4.5).
	abortCh chan struct{}
	// settled (set once by finish via compare-and-swap) guards doneCh so
	// only the first outcome of the body is ever sent on it.
	settled int32
}

type handlerCase struct {
	params []string
	eval   func(args []value.Value, resume resumeFunc) (value.Value, Signal)
}

// resumeFunc is what a handler case's `resume(v)` call invokes: it hands v
// back to the suspended `perform` and blocks the handler's own goroutine
// until that continuation either finishes (deep re-install happens by the
// Handle dispatcher looping again) or performs again.
type resumeFunc func(v value.Value) (value.Value, Signal)

type performReq struct {
	name  string
	args  []value.Value
	reply chan resumeMsg
}

type resumeMsg struct {
	value value.Value
}

type handlerOutcome struct {
	value value.Value
	sig   Signal
}

func (hf *handlerFrame) finish(v value.Value, sig Signal) {
	if !atomic.CompareAndSwapInt32(&hf.settled, 0, 1) {
		return
	}
	hf.doneCh <- handlerOutcome{value: v, sig: sig}
}

// nursery is a structured-concurrency scope (spec §3 Supervisor): an
// errgroup.Group (spec's domain-stack pick for "nursery waits for all
// children, first error wins, cancels survivors") plus the bookkeeping
// spec's Supervisor record names beyond what errgroup already gives for
// free: an ordered list of child tasks, so `all` can report failures "in
// sibling order".
type nursery struct {
	id     int64
	parent *nursery
	grp    *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc

	mu       chan struct{} // 1-buffered mutex; see lock/unlock below
	children []*value.Task
}

func (ev *Evaluator) newNursery(parent context.Context, p *nursery) (*nursery, context.Context) {
	cctx, cancel := context.WithCancel(parent)
	g, gctx := errgroup.WithContext(cctx)
	n := &nursery{
		id:     atomic.AddInt64(&ev.nurseryIDGen, 1),
		parent: p,
		grp:    g,
		ctx:    gctx,
		cancel: cancel,
		mu:     make(chan struct{}, 1),
	}
	n.mu <- struct{}{}
	return n, gctx
}

func (n *nursery) SupervisorID() int64 { return n.id }

func (n *nursery) lock()   { <-n.mu }
func (n *nursery) unlock() { n.mu <- struct{}{} }

func (n *nursery) addChild(t *value.Task) {
	n.lock()
	n.children = append(n.children, t)
	n.unlock()
}

// wait blocks for every child task spawned into this nursery to settle
// (spec I3 "supervisor exit waits for all children to terminate"),
// returning the first child failure if any (errgroup.Wait's own
// first-error-wins semantics), after which the nursery's own context is
// cancelled so no late child can straggle past its parent's exit.
func (n *nursery) wait() error {
	err := n.grp.Wait()
	n.cancel()
	return err
}

// Ctx carries the dynamic state threaded through Eval alongside the
// lexical `env.Env` chain: the handler stack and the current task's own
// nursery (spec §4.5's "three stacks... environment, handler, supervisor"
// — environment is env.Env's parent chain, so Ctx only needs to add the
// other two), plus whether evaluation is currently inside a cleanup block
// (cancellation checks are masked there, spec §4.5).
type Ctx struct {
	Nursery   *nursery
	Handlers  []*handlerFrame
	InCleanup bool
	cancelled int32 // this task's own cancel flag; set by Cancel, observed at cancellation points

	// defers points at the innermost *ast.Block currently being evaluated's
	// defer stack, so a *ast.Defer several calls deep (inside an if/match
	// arm nested directly in that block) still pushes onto the right
	// scope's stack. evalBlock re-points this at a fresh slice for its own
	// scope before evaluating its statements.
	defers *[]deferredAction

	// resumeFn is set only while evaluating a handler case's own body
	// (between the matching `perform` and that case's resolution), giving
	// `resume(v)` something to call. nil everywhere else, including inside
	// the handled body itself.
	resumeFn resumeFunc
}

// Cancel sets this task's cancel flag. Idempotent (spec invariant 6:
// "cancelling a task twice is cancelling once").
func (c *Ctx) Cancel() { atomic.StoreInt32(&c.cancelled, 1) }

// Wait blocks for this Ctx's nursery the same way Run does after a
// top-level Eval, exported so callers that drive Eval directly across
// several calls sharing one nursery (internal/replx, one per REPL line)
// can still honor spec I3 without reaching into the unexported nursery
// type themselves.
func (c *Ctx) Wait() error { return c.Nursery.wait() }

// isCancelled observes both this task's own explicit cancel flag and its
// nursery's context, so a parent supervisor cancelling (a sibling failure
// in `all`, `race`'s loser, a `timeout` firing) is also observed here —
// context.Context's own cancellation propagates down the nursery tree for
// free, giving "a cancelled parent cancels all children transitively"
// (spec §4.5) without the evaluator walking the tree itself.
func (c *Ctx) isCancelled() bool {
	if atomic.LoadInt32(&c.cancelled) != 0 {
		return true
	}
	return c.Nursery != nil && c.Nursery.ctx.Err() != nil
}

// child returns a Ctx for a nested lexical scope that shares this Ctx's
// nursery and handler stack (the common case: blocks, if/match arms,
// ordinary function calls all stay on the same task).
func (c *Ctx) child() *Ctx {
	cp := *c
	return &cp
}

// withHandler returns a Ctx with hf pushed as the innermost handler frame.
func (c *Ctx) withHandler(hf *handlerFrame) *Ctx {
	cp := c.child()
	cp.Handlers = append(append([]*handlerFrame{}, c.Handlers...), hf)
	return cp
}
