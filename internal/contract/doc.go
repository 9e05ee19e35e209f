// Package contract provides the constraints registry used by the checker.
//
// A Registry stores four kinds of contracts:
//
//   - Precondition: keyed by state name, a predicate over the context
//     before a message is applied in that state.
//   - Postcondition: keyed by state name, a predicate over the context
//     after a message was applied.
//   - Invariant: unkeyed, evaluated after every step regardless of state.
//   - Transition rule: keyed by the ordered (from, to) pair, a rule over the
//     context before and after, the message and the outputs.
//
// Keys are bare strings matching whatever name a state reports. Nothing
// enforces that every reachable state has an entry or that every entry names
// a reachable state.
//
// # Vacuous Truth
//
// Absence of a registered contract is always success, never failure, so a
// machine can be covered a few states at a time. A forgotten registration
// therefore looks like coverage; checker.Report lists visited states and
// transitions that had no contract.
//
// # Registration
//
// Preconditions, postconditions and transition rules hold a single slot per
// key: registering the same key again replaces the earlier entry. Invariants
// append and are evaluated in registration order.
//
// The registry is built before a check run and must not be mutated while a
// run is in progress. It is not safe for concurrent registration and checking.
//
//	reg := contract.NewRegistry[Ctx, Msg, Out]().
//	    Precondition("empty", "empty bowl has no food", func(c Ctx) bool { return c.Contents == 0 }).
//	    Invariant("bowl never overflows", func(c Ctx) bool { return c.Contents <= 100 }).
//	    Transition("full", "empty", "only eating empties the bowl", emptiedByEating)
package contract
