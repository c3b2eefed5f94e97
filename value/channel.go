package value

import "sync"

// Channel is a bounded FIFO used to move values (including linear ones, by
// move) between tasks (spec §3 `Channel {buf, cap, closed}`, §5.5 "Linear
// values may be transferred across tasks only via channel send"). Send and
// receive are non-blocking primitives here; the `send`/`recv` builtins
// supply the blocking/suspension behaviour by polling them, since whether a
// call suspends the calling task is a scheduling concern, not a Channel
// concern.
type Channel struct {
	mu     sync.Mutex
	buf    []Value
	cap    int
	closed bool
}

func NewChannel(capacity int) *Channel {
	return &Channel{cap: capacity}
}

func (*Channel) Kind() Kind { return KindChannel }

// TrySend attempts a non-blocking send. ok is false when the channel is
// full (caller should suspend and retry); closed is true when the channel
// was already closed (a send to a closed channel is always an error,
// spec §5.5).
func (c *Channel) TrySend(v Value) (ok bool, closed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, true
	}
	if c.cap > 0 && len(c.buf) >= c.cap {
		return false, false
	}
	if c.cap == 0 && len(c.buf) >= 1 {
		// unbuffered channel: one pending value at a time, consumed by the
		// next TryRecv.
		return false, false
	}
	c.buf = append(c.buf, v)
	return true, false
}

// TryRecv attempts a non-blocking receive. ok is false when the channel is
// empty and still open (caller should suspend and retry). When the channel
// is empty and closed, ok is false and closed is true: the caller should
// stop waiting rather than retry.
func (c *Channel) TryRecv() (v Value, ok bool, closed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.buf) > 0 {
		v = c.buf[0]
		c.buf = c.buf[1:]
		return v, true, false
	}
	if c.closed {
		return Nil, false, true
	}
	return Nil, false, false
}

// Close marks the channel closed. Idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Channel) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buf)
}

func (c *Channel) Cap() int { return c.cap }

// TaskState is the lifecycle of a spawned task (spec §3 `Task {state,
// supervisor}`).
type TaskState int

const (
	TaskRunning TaskState = iota
	TaskDone
	TaskFailed
	TaskCancelled
)

func (s TaskState) String() string {
	switch s {
	case TaskRunning:
		return "running"
	case TaskDone:
		return "done"
	case TaskFailed:
		return "failed"
	case TaskCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Supervisor is satisfied by eval's nursery type. Declared as an opaque
// interface for the same reason value.Env is: Task must stay below eval in
// the import graph while still letting a Task value answer "which
// supervisor owns me" for structured-concurrency containment checks
// (spec §5.4's "no task outlives its nursery").
type Supervisor interface {
	SupervisorID() int64
}

// Task is the handle `spawn` returns. State/Result/Err are set once, guarded
// by mu, and read by `await`/`all`/`race`; Done is closed exactly once when
// the task settles, letting waiters block on a channel receive instead of
// polling.
type Task struct {
	mu         sync.Mutex
	state      TaskState
	result     Value
	err        error
	Done       chan struct{}
	Supervisor Supervisor
}

func NewTask(sup Supervisor) *Task {
	return &Task{state: TaskRunning, Done: make(chan struct{}), Supervisor: sup}
}

func (*Task) Kind() Kind { return KindTask }

func (t *Task) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Settle records the task's outcome and wakes any waiters. Calling it more
// than once is a programming error in the evaluator (a task settles
// exactly once) and is ignored past the first call.
func (t *Task) Settle(state TaskState, result Value, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	select {
	case <-t.Done:
		return // already settled
	default:
	}
	t.state = state
	t.result = result
	t.err = err
	close(t.Done)
}

// Result returns the task's outcome; callers must first receive from Done
// (or otherwise know the task has settled).
func (t *Task) Result() (Value, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.err
}
