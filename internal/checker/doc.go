// Package checker replays a message sequence against one state machine while
// enforcing the contracts of one registry.
//
// For each message, in order:
//
//  1. Read (from, before) from the machine.
//  2. Check the precondition of from against before. On failure nothing is
//     applied and the run stops.
//  3. Send the message, capturing the outputs. This is the only step that
//     mutates the context or advances the state.
//  4. Read (to, after) from the machine.
//  5. Check the postcondition keyed by from against after, then every
//     invariant against after, then the rule for the exact (from, to) pair.
//
// The first failure stops the run. Failure is fail-fast and non-aggregating:
// the caller learns about exactly the first violation, messages after it are
// never applied, and there is no retry or skip-and-continue.
//
// # Postcondition Wiring
//
// Step 5 evaluates the postcondition of the DEPARTED state against the
// context of the ARRIVED-AT state. This mirrors the behavior the checker
// was first built with and existing contracts may rely on it. A
// postcondition arguably describes the state just entered;
// WithArrivedPostconditions switches to that reading for new contracts.
//
// # Determinism
//
// Every step is stamped with a sequence number from a logical clock, never a
// wall clock. Replaying an identical sequence against two freshly built
// checkers yields identical reports.
package checker
