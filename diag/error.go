package diag

// Error adapts a runtime Diagnostic to Go's error interface so eval can
// propagate it through ordinary return values (spec §4.5 "Runtime kinds
// propagate through the current scope... terminate the program if
// unhandled at top level"). Static-pass diagnostics stay in a Bag instead,
// since those accumulate rather than short-circuit; see diag.Bag.
type Error struct {
	Diagnostic
}

// NewError wraps a runtime Diagnostic as a Go error.
func NewError(d Diagnostic) *Error { return &Error{Diagnostic: d} }

// Error implements the error interface with the bare message, since
// eval-level callers format with file context via Bag.RenderOne only at
// the top level (cmd/later), not on every intermediate propagation.
func (e *Error) Error() string { return e.Message }
