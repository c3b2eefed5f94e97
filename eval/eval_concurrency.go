package eval

import (
	"time"

	"github.com/later-lang/later/ast"
	"github.com/later-lang/later/diag"
	"github.com/later-lang/later/env"
	"github.com/later-lang/later/sourcemap"
	"github.com/later-lang/later/value"
)

// evalSpawn schedules v.Body as a child task on ctx's nursery (spec §4.5
// "spawn schedules a child on the current supervisor and returns a task
// handle"). The child gets its own nursery (task supervisors form a tree,
// spec §4.5), derived from the parent nursery's context so a cancelled
// parent cancels this child transitively for free via context.Context
// propagation, and runs on its own goroutine — this evaluator trades
// spec's literal single-OS-thread cooperative scheduler for real
// goroutines synchronized through errgroup/context (DESIGN.md), since the
// structured-concurrency invariants spec cares about (I3, cancellation
// propagation, first-error-wins) hold either way.
func (ev *Evaluator) evalSpawn(v *ast.Spawn, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	childNursery, _ := ev.newNursery(ctx.Nursery.ctx, ctx.Nursery)
	task := value.NewTask(childNursery)
	taskCtx := &Ctx{Nursery: childNursery}
	ctx.Nursery.addChild(task)

	ctx.Nursery.grp.Go(func() error {
		val, sig := ev.Eval(v.Body, en, taskCtx)
		if waitErr := childNursery.wait(); sig == nil {
			sig = waitErr
		}
		task.Settle(taskState(sig), val, sig)
		return sig
	})
	return task, nil
}

// taskState maps a task body's outcome to spec's Task state machine:
// `ready -> running -> (completed | failed | cancelled)`.
func taskState(sig Signal) value.TaskState {
	switch {
	case sig == nil:
		return value.TaskDone
	case isCancelledFault(sig):
		return value.TaskCancelled
	default:
		return value.TaskFailed
	}
}

func isCancelledFault(sig Signal) bool {
	de, ok := sig.(*diag.Error)
	return ok && de.Message == "cancelled"
}

func (ev *Evaluator) evalTaskList(nodes []ast.Node, en *env.Env, ctx *Ctx) ([]*value.Task, Signal) {
	tasks := make([]*value.Task, 0, len(nodes))
	for _, n := range nodes {
		tv, sig := ev.Eval(n, en, ctx)
		if sig != nil {
			return nil, sig
		}
		t, ok := tv.(*value.Task)
		if !ok {
			return nil, fault(n.Span(), value.TypeMismatch("task", tv))
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// cancelSiblings cancels every task's nursery except the one at except,
// settled or not; cancel is idempotent
// (nursery.cancel is a context.CancelFunc) so calling it on an already
// finished task's nursery is harmless (spec invariant 6).
func cancelSiblings(tasks []*value.Task, except int) {
	for i, t := range tasks {
		if i == except {
			continue
		}
		if ns, ok := t.Supervisor.(*nursery); ok {
			ns.cancel()
		}
	}
}

// evalAll waits for every task in v.Tasks to settle, returning the list of
// results in order. On the first sibling failure it cancels the surviving
// siblings, still waits for all of them to actually terminate (spec I3),
// and reports the first failure (spec §4.5 "together with cleanup logs in
// sibling order" — realized here as a composite message naming how many
// further siblings also failed, since per-task cleanup logs live on the
// value.Resource each task may have touched, not on the Task itself).
func (ev *Evaluator) evalAll(v *ast.All, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	tasks, sig := ev.evalTaskList(v.Tasks, en, ctx)
	if sig != nil {
		return value.Nil, sig
	}
	if _, csig, handled := ev.cancellationCheck(en, ctx, v.Span()); handled && csig != nil {
		return value.Nil, csig
	}

	type outcome struct {
		idx int
		err error
	}
	doneCh := make(chan outcome, len(tasks))
	for i, t := range tasks {
		i, t := i, t
		go func() {
			<-t.Done
			_, err := t.Result()
			doneCh <- outcome{idx: i, err: err}
		}()
	}

	firstIdx := -1
	for range tasks {
		out := <-doneCh
		if out.err != nil && firstIdx == -1 {
			firstIdx = out.idx
			cancelSiblings(tasks, firstIdx)
		}
	}
	if firstIdx != -1 {
		return value.Nil, compositeTaskFault(v.Span(), tasks, firstIdx)
	}

	results := make([]value.Value, len(tasks))
	for i, t := range tasks {
		results[i], _ = t.Result()
	}
	return value.NewList(results...), nil
}

func compositeTaskFault(span sourcemap.Span, tasks []*value.Task, firstIdx int) error {
	_, primary := tasks[firstIdx].Result()
	extra := 0
	for i, t := range tasks {
		if i == firstIdx {
			continue
		}
		if _, err := t.Result(); err != nil {
			extra++
		}
	}
	if extra == 0 {
		return primary
	}
	return fault(span, "%s (and %d sibling task failure(s))", primary.Error(), extra)
}

// evalRace resolves to whichever task in v.Tasks settles first (success or
// failure) and cancels the rest, still waiting for them to actually
// terminate before returning (spec I3).
func (ev *Evaluator) evalRace(v *ast.Race, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	tasks, sig := ev.evalTaskList(v.Tasks, en, ctx)
	if sig != nil {
		return value.Nil, sig
	}
	if len(tasks) == 0 {
		return value.Nil, fault(v.Span(), "race requires at least one task")
	}
	if _, csig, handled := ev.cancellationCheck(en, ctx, v.Span()); handled && csig != nil {
		return value.Nil, csig
	}

	doneCh := make(chan int, len(tasks))
	for i, t := range tasks {
		i, t := i, t
		go func() { <-t.Done; doneCh <- i }()
	}

	winner := <-doneCh
	cancelSiblings(tasks, winner)
	for i := 1; i < len(tasks); i++ {
		<-doneCh
	}

	val, err := tasks[winner].Result()
	if err != nil {
		return value.Nil, err
	}
	return val, nil
}

// evalAwait suspends the caller until t settles (a cancellation point,
// spec §4.5), yielding its result or propagating its failure.
func (ev *Evaluator) evalAwait(v *ast.Await, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	tv, sig := ev.Eval(v.Task, en, ctx)
	if sig != nil {
		return value.Nil, sig
	}
	t, ok := tv.(*value.Task)
	if !ok {
		return value.Nil, fault(v.Span(), value.TypeMismatch("task", tv))
	}
	if _, csig, handled := ev.cancellationCheck(en, ctx, v.Span()); handled && csig != nil {
		return value.Nil, csig
	}
	select {
	case <-t.Done:
	case <-ctx.Nursery.ctx.Done():
		return value.Nil, fault(v.Span(), "cancelled")
	}
	val, err := t.Result()
	if err != nil {
		return value.Nil, err
	}
	return val, nil
}

// evalTimeout runs v.Body under its own nursery racing a timer (spec §4.5
// "creates a supervisor plus a timer task; whichever completes first
// cancels the other; a timed-out body's cleanup still runs to
// completion") — the cancelled body's own defers still execute (they run
// inside evalBlock/runDefers regardless of how the block's Ctx became
// cancelled) before this call returns.
func (ev *Evaluator) evalTimeout(v *ast.Timeout, en *env.Env, ctx *Ctx) (value.Value, Signal) {
	msv, sig := ev.Eval(v.Ms, en, ctx)
	if sig != nil {
		return value.Nil, sig
	}
	ms, ok := msv.(value.Int)
	if !ok {
		return value.Nil, fault(v.Span(), value.TypeMismatch("int", msv))
	}

	childNursery, _ := ev.newNursery(ctx.Nursery.ctx, ctx.Nursery)
	bodyCtx := &Ctx{Nursery: childNursery}

	type result struct {
		val value.Value
		sig Signal
	}
	resultCh := make(chan result, 1)
	go func() {
		val, sig := ev.Eval(v.Body, en, bodyCtx)
		if waitErr := childNursery.wait(); sig == nil {
			sig = waitErr
		}
		resultCh <- result{val: val, sig: sig}
	}()

	timer := time.NewTimer(time.Duration(ms.V) * time.Millisecond)
	defer timer.Stop()

	select {
	case r := <-resultCh:
		return r.val, r.sig
	case <-timer.C:
		childNursery.cancel()
		<-resultCh // wait for the cancelled body's own cleanup to finish
		return value.Nil, fault(v.Span(), "cancelled")
	}
}
