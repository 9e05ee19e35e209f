package fsm

// Machine is the synchronous state machine engine.
//
// A Machine exclusively owns its context for its whole lifetime. The only
// mutating entry point is Send. Machine is not safe for concurrent use.
type Machine[C, M, O any] struct {
	ctx   C
	state State[C, M, O]
	sent  int
}

// New creates a Machine holding ctx in the initial state.
// Returns ErrInvalidState if initial has no name or no handler.
func New[C, M, O any](ctx C, initial State[C, M, O]) (*Machine[C, M, O], error) {
	if !initial.Valid() {
		return nil, &TransitionError{To: initial.Name(), Err: ErrInvalidState}
	}
	return &Machine[C, M, O]{ctx: ctx, state: initial}, nil
}

// State returns the current state name and a snapshot of the context.
// It never mutates the machine.
func (m *Machine[C, M, O]) State() (string, C) {
	return m.state.name, Snapshot(&m.ctx)
}

// Send applies one message to the current state and returns the outputs.
//
// Exactly one handler runs per call. When the handler returns an invalid
// state, its context mutation stands but the machine stays in the current
// state and a *TransitionError is returned.
func (m *Machine[C, M, O]) Send(msg M) ([]O, error) {
	from := m.state.name
	next, outputs := m.state.handler(&m.ctx, msg)
	m.sent++

	if !next.Valid() {
		return outputs, &TransitionError{From: from, To: next.Name(), Err: ErrInvalidState}
	}
	m.state = next
	return outputs, nil
}

// Sent returns the number of messages applied so far.
func (m *Machine[C, M, O]) Sent() int {
	return m.sent
}
