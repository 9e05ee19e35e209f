// Package fsm implements explicit finite-state machines driven by discrete
// messages.
//
// A machine is a context value plus the current state. A state is a named
// handler: it receives a pointer to the context and one message, mutates the
// context in place, and returns the next state together with zero or more
// outputs. There is no transition table. The state graph exists only in
// handler code, so any validation of legal (from, to) pairs happens outside
// the machine by comparing State names before and after Send.
//
// Outputs are side-effect requests for the caller. The machine never
// interprets or executes them.
//
// # Execution Model
//
// Machine is the synchronous realization: Send runs exactly one handler and
// returns before control goes back to the caller. There is no queue, no
// pending message and no locking. A Machine has exactly one owner. For use
// from several goroutines, wrap it in an actor (see internal/actor), which
// serializes every delivery and every read through one loop.
//
// # Example
//
//	empty := fsm.NewState("empty", func(c *Ctx, m Msg) (fsm.State[Ctx, Msg, Out], []Out) {
//	    c.Count++
//	    return fsm.Next(full)
//	})
//	m, err := fsm.New(Ctx{}, empty)
//	outputs, err := m.Send(Msg{})
//	name, ctx := m.State()
package fsm
