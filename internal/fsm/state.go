package fsm

// Handler is the transition behavior of one state.
//
// A handler mutates ctx in place and returns the next state plus the outputs
// produced by this transition. It must not retain ctx or publish side effects
// through any other channel.
type Handler[C, M, O any] func(ctx *C, msg M) (State[C, M, O], []O)

// State pairs a stable diagnostic name with transition behavior.
//
// The name is the key used by contract registries and in diagnostics. Two
// states with the same name are indistinguishable to a checker.
type State[C, M, O any] struct {
	name    string
	handler Handler[C, M, O]
}

// NewState creates a named state.
func NewState[C, M, O any](name string, handler Handler[C, M, O]) State[C, M, O] {
	return State[C, M, O]{name: name, handler: handler}
}

// Name returns the diagnostic name of the state.
func (s State[C, M, O]) Name() string {
	return s.name
}

// Valid reports whether the state has a name and a handler.
// The zero State is not valid.
func (s State[C, M, O]) Valid() bool {
	return s.name != "" && s.handler != nil
}

// String implements fmt.Stringer.
func (s State[C, M, O]) String() string {
	if s.name == "" {
		return "<invalid>"
	}
	return s.name
}

// Next builds a handler return value.
//
//	return fsm.Next(full)                 // no outputs
//	return fsm.Next(full, Buy{Num: 10})   // one output
func Next[C, M, O any](next State[C, M, O], outputs ...O) (State[C, M, O], []O) {
	if len(outputs) == 0 {
		return next, nil
	}
	return next, outputs
}

// Cloner is implemented by context types that hold references (maps, slices,
// pointers) and need a deep copy for snapshots.
//
// Value-only contexts do not need it: a plain copy is already independent.
type Cloner[C any] interface {
	Clone() C
}

// Snapshot returns an independent copy of ctx, using Clone when C implements
// Cloner[C].
func Snapshot[C any](ctx *C) C {
	if c, ok := any(ctx).(Cloner[C]); ok {
		return c.Clone()
	}
	if c, ok := any(*ctx).(Cloner[C]); ok {
		return c.Clone()
	}
	return *ctx
}
